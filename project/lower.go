package project

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/kungfusheep/phenix/db"
	"github.com/kungfusheep/phenix/schema"
)

// ResolveModulePath derives a module's namespace path from its file path
// relative to the root directory, mirroring original_source's
// semantics.rs::resolve_module_path:
//
//   - a file outside the root directory (ancestor escape) collapses to the
//     single component "external".
//   - otherwise each remaining path component has its ".phenix" suffix
//     stripped, leading non-alphabetic characters dropped, and internal
//     runs of non-alphanumeric characters collapsed to one underscore.
//
// ResolveModulePath never special-cases the root file itself: in
// original_source that file's path is hard-coded to empty at the call site
// (lib.rs), since resolve_module_path is only ever invoked for the other
// reachable modules. Lower does the same.
func ResolveModulePath(rootDir, moduleFile string) ModulePath {
	rootParts := splitPath(filepath.Clean(rootDir))
	fileParts := splitPath(filepath.Clean(moduleFile))

	i := 0
	for i < len(rootParts) && i < len(fileParts) && rootParts[i] == fileParts[i] {
		i++
	}

	if i < len(rootParts) || (i < len(fileParts) && fileParts[i] == "..") {
		// Root has components left over the file path didn't share, or the
		// file path climbs out of the root with "..": the module lives
		// above the root directory.
		return ModulePath{"external"}
	}

	remaining := fileParts[i:]
	out := make(ModulePath, 0, len(remaining))
	for _, component := range remaining {
		if n := normalizeComponent(component); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func splitPath(p string) []string {
	p = filepath.ToSlash(p)
	p = strings.TrimPrefix(p, "/")
	if p == "" || p == "." {
		return nil
	}
	return strings.Split(p, "/")
}

// normalizeComponent implements the per-component normalization rule: drop
// a trailing ".phenix", strip leading non-alphabetic runes, then collapse
// runs of non-alphanumeric characters to a single underscore.
func normalizeComponent(component string) string {
	component = strings.TrimSuffix(component, ".phenix")

	runes := []rune(component)
	i := 0
	for i < len(runes) && !isAlpha(runes[i]) {
		i++
	}
	runes = runes[i:]

	var b strings.Builder
	lastWasUnderscore := false
	for _, r := range runes {
		if isAlphaNumeric(r) {
			b.WriteRune(r)
			lastWasUnderscore = false
			continue
		}
		if !lastWasUnderscore {
			b.WriteRune('_')
			lastWasUnderscore = true
		}
	}

	return b.String()
}

func isAlpha(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isAlphaNumeric(r rune) bool {
	return isAlpha(r) || (r >= '0' && r <= '9')
}

// ResolveType lowers a parsed TypeData against a file's name scope:
// built-in names always win (§4.4), anything else must resolve to a
// user-defined item in scope.
func ResolveType(scope map[string]db.ItemID, ty schema.TypeData) (Type, bool) {
	id, ok := resolveTypeID(scope, ty.Name)
	if !ok {
		return Type{}, false
	}

	generics := make([]Type, 0, len(ty.Generics))
	for _, g := range ty.Generics {
		resolved, ok := ResolveType(scope, g)
		if !ok {
			return Type{}, false
		}
		generics = append(generics, resolved)
	}

	return Type{ID: id, Generics: generics}, true
}

func resolveTypeID(scope map[string]db.ItemID, name string) (TypeID, bool) {
	if b, ok := builtinNames[name]; ok {
		return TypeID{Builtin: b}, true
	}

	itemID, ok := scope[name]
	if !ok {
		return TypeID{}, false
	}

	return TypeID{User: UserTypeID(itemID), IsUser: true}, true
}

// MakeDef lowers one item's locally-typed fields against its file's name
// scope into a UserType. ok is false if any field's type failed to
// resolve, in which case the caller must drop the whole item (§7) while
// still being able to report why via the returned field name.
func MakeDef(scope map[string]db.ItemID, id UserTypeID, item schema.ItemData) (UserType, string, bool) {
	switch item.Kind {
	case schema.ItemStruct:
		fields, badField, ok := lowerFields(scope, item.Struct.Fields)
		if !ok {
			return UserType{}, badField, false
		}
		return UserType{Kind: KindStruct, Struct: StructType{ID: id, Name: item.Struct.Name, Fields: fields}}, "", true

	case schema.ItemEnum:
		variants := make([]Variant, 0, len(item.Enum.Variants))
		for _, v := range item.Enum.Variants {
			fields, badField, ok := lowerFields(scope, v.Fields)
			if !ok {
				return UserType{}, badField, false
			}
			variants = append(variants, Variant{Name: v.Name, Fields: fields})
		}
		return UserType{Kind: KindEnum, Enum: EnumType{ID: id, Name: item.Enum.Name, Variants: variants}}, "", true

	case schema.ItemFlags:
		flags := make([]string, 0, len(item.Flags.Flags))
		for _, f := range item.Flags.Flags {
			flags = append(flags, f.Name)
		}
		return UserType{Kind: KindFlags, Flags: FlagsType{ID: id, Name: item.Flags.Name, Flags: flags}}, "", true

	default:
		return UserType{}, "", false
	}
}

func lowerFields(scope map[string]db.ItemID, fields []schema.FieldData) ([]Field, string, bool) {
	out := make([]Field, 0, len(fields))
	for _, f := range fields {
		ty, ok := ResolveType(scope, f.Type)
		if !ok {
			return nil, f.Name, false
		}
		out = append(out, Field{Name: f.Name, Type: ty})
	}
	return out, "", true
}

// Lower builds the full Project for rootPath: the reachable file set
// becomes the module list, each module's path comes from
// ResolveModulePath, and each locally-defined item is lowered via MakeDef.
// Items whose fields fail to resolve are dropped from their module, with a
// db.Diagnostic recorded against database (SPEC_FULL.md §4's stricter take
// on the Open Question in spec.md §7/§9).
func Lower(database *db.Database, rootPath string) (Project, error) {
	root := database.InternFile(rootPath)

	reachable, err := database.Reachable(root)
	if err != nil {
		return Project{}, err
	}

	rootDir := filepath.Dir(rootPath)

	var proj Project
	for i, file := range reachable {
		modID := ModuleID(i)

		// The root file's own module path is always empty, regardless of
		// what ResolveModulePath would compute for it; original_source's
		// lib.rs special-cases this at the call site rather than inside
		// resolve_module_path itself, since that function is never invoked
		// for the root file there.
		var path ModulePath
		if file != root {
			path = ResolveModulePath(rootDir, database.LookupFile(file))
		}

		scope, err := database.Scope(file)
		if err != nil {
			return Project{}, err
		}

		defs, err := database.Defs(file)
		if err != nil {
			return Project{}, err
		}

		types := make([]UserType, 0, len(defs))
		for _, itemID := range defs {
			_, itemData := database.LookupItem(itemID)
			userType, badField, ok := MakeDef(scope, UserTypeID(itemID), itemData)
			if !ok {
				database.AddDiagnostic(db.Diagnostic{
					File:    database.LookupFile(file),
					Message: "dropping " + itemData.Name() + ": field " + badField + " has an unresolved type",
				})
				continue
			}
			types = append(types, userType)
		}

		sortByID(types)

		proj.Modules = append(proj.Modules, Module{ID: modID, Path: path, Types: types})
	}

	return proj, nil
}

func sortByID(types []UserType) {
	sort.Slice(types, func(i, j int) bool { return types[i].ID() < types[j].ID() })
}
