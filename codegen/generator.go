// Package codegen emits Go source from a resolved project.Project (§4.7).
// Emission walks the project's module tree, ordering each module's types by
// a depth-first post-order over structural dependencies — mirroring
// original_source's requirement that self-referential user types are a hard
// error — then renders one Go source file per module via text/template,
// grounded on the one codegen example in the retrieval pack that emits
// source from a schema (blockberries-cramberry's rust_generator.go).
package codegen

import (
	"fmt"
	"path"
	"sort"

	"github.com/kungfusheep/phenix/project"
)

// Options configures where generated packages live.
type Options struct {
	// ImportPath is the Go import path under which the root module's
	// package is rooted; nested modules get ImportPath + "/" + module path.
	ImportPath string
	// RootPackage names the Go package generated for the project's root
	// module (the schema file passed to the compiler).
	RootPackage string
}

// File is one generated Go source file.
type File struct {
	Path    string // relative to the output directory, e.g. "types.go" or "nested/types.go"
	Package string
	Source  string
}

// Generate renders the whole project to one file per module.
func Generate(proj project.Project, opts Options) ([]File, error) {
	if err := checkNonExhaustive(proj); err != nil {
		return nil, err
	}

	order, err := topoOrder(proj)
	if err != nil {
		return nil, err
	}

	modOf := make(map[project.UserTypeID]project.Module, len(order))
	typeByID := make(map[project.UserTypeID]project.UserType, len(order))
	for _, m := range proj.Modules {
		for _, t := range m.Types {
			modOf[t.ID()] = m
			typeByID[t.ID()] = t
		}
	}

	files := make([]File, 0, len(proj.Modules))
	for _, m := range proj.Modules {
		types := typesForModule(order, m)

		ctx := &goContext{
			opts:     opts,
			module:   m,
			modOf:    modOf,
			typeByID: typeByID,
			imports:  map[string]string{},
		}

		src, err := ctx.render(types)
		if err != nil {
			return nil, fmt.Errorf("generating module %v: %w", m.Path, err)
		}

		files = append(files, File{
			Path:    modulePath(m.Path),
			Package: modulePackageName(m, opts),
			Source:  src,
		})
	}

	return files, nil
}

func modulePath(p project.ModulePath) string {
	if len(p) == 0 {
		return "types.go"
	}
	components := make([]string, len(p))
	for i, c := range p {
		components[i] = packageName(c)
	}
	return path.Join(path.Join(components...), "types.go")
}

func modulePackageName(m project.Module, opts Options) string {
	if len(m.Path) == 0 {
		return opts.RootPackage
	}
	return packageName(m.Path[len(m.Path)-1])
}

func importPath(opts Options, p project.ModulePath) string {
	if len(p) == 0 {
		return opts.ImportPath
	}
	components := make([]string, len(p))
	for i, c := range p {
		components[i] = packageName(c)
	}
	return path.Join(opts.ImportPath, path.Join(components...))
}

// checkNonExhaustive enforces §4.3: only flag enums support the
// non-exhaustive attribute; a non-exhaustive struct or enum is a structural
// compiler error the generator refuses to emit code for.
func checkNonExhaustive(proj project.Project) error {
	for _, m := range proj.Modules {
		for _, ty := range m.Types {
			if ty.Kind == project.KindFlags {
				continue
			}
			if ty.IsNonExhaustive() {
				return fmt.Errorf("type %s is marked non-exhaustive but only flag enums support that attribute", ty.Name())
			}
		}
	}
	return nil
}

// typesForModule filters a project-wide topological order down to the types
// declared in m, preserving relative order.
func typesForModule(order []project.UserType, m project.Module) []project.UserType {
	want := make(map[project.UserTypeID]bool, len(m.Types))
	for _, t := range m.Types {
		want[t.ID()] = true
	}

	out := make([]project.UserType, 0, len(m.Types))
	for _, t := range order {
		if want[t.ID()] {
			out = append(out, t)
		}
	}
	return out
}

// topoOrder computes a project-wide depth-first post-order over structural
// type dependencies (fields for structs, variant fields for enums): every
// type is emitted after the types it structurally embeds. A type found
// "in progress" during its own dependency walk means a cycle — the wire
// format has no representation for self-referential user types (§9), so
// this is a hard error, not a diagnostic.
func topoOrder(proj project.Project) ([]project.UserType, error) {
	byID := make(map[project.UserTypeID]project.UserType)
	for _, m := range proj.Modules {
		for _, t := range m.Types {
			byID[t.ID()] = t
		}
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[project.UserTypeID]int, len(byID))
	order := make([]project.UserType, 0, len(byID))

	var visit func(id project.UserTypeID) error
	visit = func(id project.UserTypeID) error {
		switch state[id] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("cyclic type reference involving type %q", byID[id].Name())
		}

		ty, ok := byID[id]
		if !ok {
			return nil
		}

		state[id] = visiting
		for _, dep := range structuralDeps(ty) {
			if err := visit(dep); err != nil {
				return err
			}
		}
		state[id] = done
		order = append(order, ty)
		return nil
	}

	ids := make([]project.UserTypeID, 0, len(byID))
	for _, m := range proj.Modules {
		for _, t := range m.Types {
			ids = append(ids, t.ID())
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		if err := visit(id); err != nil {
			return nil, err
		}
	}

	return order, nil
}

func structuralDeps(ty project.UserType) []project.UserTypeID {
	var out []project.UserTypeID
	switch ty.Kind {
	case project.KindStruct:
		for _, f := range ty.Struct.Fields {
			out = append(out, typeDeps(f.Type)...)
		}
	case project.KindEnum:
		for _, v := range ty.Enum.Variants {
			for _, f := range v.Fields {
				out = append(out, typeDeps(f.Type)...)
			}
		}
	}
	return out
}

func typeDeps(t project.Type) []project.UserTypeID {
	var out []project.UserTypeID
	if t.ID.IsUser {
		out = append(out, t.ID.User)
	}
	for _, g := range t.Generics {
		out = append(out, typeDeps(g)...)
	}
	return out
}

// isStreamField reports whether f's type is the stream<T> builtin.
func isStreamField(f project.Field) bool {
	return !f.Type.ID.IsUser && f.Type.ID.Builtin == project.Stream
}

// validateStreamPlacement enforces §4.2: a struct carrying a stream field
// must place it last, since decoding a stream consumes the rest of the
// buffer and nothing meaningful could follow it on the wire.
func validateStreamPlacement(fields []project.Field) error {
	for i, f := range fields {
		if isStreamField(f) && i != len(fields)-1 {
			return fmt.Errorf("field %q: a stream field must be the last field in its struct", f.Name)
		}
	}
	return nil
}
