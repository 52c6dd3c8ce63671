package codegen

import (
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/kungfusheep/phenix/project"
)

// goContext carries the state needed to render one module's Go source file:
// which module is being emitted (for same-module vs. cross-module name
// qualification) and the set of imports accumulated while walking its
// types' field types.
type goContext struct {
	opts    Options
	module  project.Module
	modOf   map[project.UserTypeID]project.Module
	typeByID map[project.UserTypeID]project.UserType
	imports map[string]string // import path -> local alias
}

const fileTemplate = `// Code generated by phenix. DO NOT EDIT.

package {{.Package}}

import (
	"github.com/kungfusheep/phenix"
{{range .Imports}}	{{.Alias}} "{{.Path}}"
{{end}})
{{range .Sections}}
{{.}}
{{end}}`

// render builds the complete Go source for this module's file. It renders
// every type's declaration and implementation before assembling the file
// template, since the import list at the top of the file depends on which
// cross-module references the bodies end up using.
func (ctx *goContext) render(types []project.UserType) (string, error) {
	sections := make([]string, 0, len(types)*2)
	for _, ty := range types {
		decl, err := ctx.typeDecl(ty)
		if err != nil {
			return "", err
		}
		impl, err := ctx.typeImpl(ty)
		if err != nil {
			return "", err
		}
		sections = append(sections, decl, impl)
	}

	type importEntry struct{ Alias, Path string }
	entries := make([]importEntry, 0, len(ctx.imports))
	for p, alias := range ctx.imports {
		entries = append(entries, importEntry{Alias: alias, Path: p})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })

	data := struct {
		Package  string
		Imports  []importEntry
		Sections []string
	}{
		Package:  modulePackageName(ctx.module, ctx.opts),
		Imports:  entries,
		Sections: sections,
	}

	tmpl, err := template.New("file").Parse(fileTemplate)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

// qualify returns prefix+TypeName, qualified with the defining module's
// package alias (and registering the import) when id's module differs from
// the module currently being rendered.
func (ctx *goContext) qualify(id project.UserTypeID, prefix string) string {
	ty := ctx.typeByID[id]
	name := prefix + pascalCase(ty.Name())

	mod := ctx.modOf[id]
	if mod.ID == ctx.module.ID {
		return name
	}

	alias := packageAlias(mod.Path)
	ctx.imports[importPath(ctx.opts, mod.Path)] = alias
	return alias + "." + name
}

func packageAlias(p project.ModulePath) string {
	if len(p) == 0 {
		return "root"
	}
	parts := make([]string, len(p))
	for i, c := range p {
		parts[i] = packageName(c)
	}
	return strings.Join(parts, "_")
}

// goType renders t as a Go type expression, qualifying user-type references
// against whichever module defines them.
func (ctx *goContext) goType(t project.Type) string {
	if t.ID.IsUser {
		return ctx.qualify(t.ID.User, "")
	}

	switch t.ID.Builtin {
	case project.Bool:
		return "bool"
	case project.U8:
		return "uint8"
	case project.U16:
		return "uint16"
	case project.U32:
		return "uint32"
	case project.U64:
		return "uint64"
	case project.I8:
		return "int8"
	case project.I16:
		return "int16"
	case project.I32:
		return "int32"
	case project.I64:
		return "int64"
	case project.F32:
		return "float32"
	case project.F64, project.Float:
		return "float64"
	case project.Uint:
		return "uint64"
	case project.Sint:
		return "int64"
	case project.String:
		return "string"
	case project.Vector:
		return "[]" + ctx.goType(t.Generics[0])
	case project.Stream:
		return "phenix.Stream[" + ctx.goType(t.Generics[0]) + "]"
	default:
		return "any"
	}
}

// builtinFuncNames returns the phenix package's Encode/Decode/Recognize
// function names for a scalar (non-container) builtin. "float" has no
// runtime function of its own distinct from "f64" — both ride on
// EncodeFloat64's varint-compacted layout (see DESIGN.md).
func builtinFuncNames(b project.BuiltinType) (encode, decode, recognize string, ok bool) {
	switch b {
	case project.Bool:
		return "EncodeBool", "DecodeBool", "RecognizeBool", true
	case project.U8:
		return "EncodeU8", "DecodeU8", "RecognizeU8", true
	case project.U16:
		return "EncodeU16", "DecodeU16", "RecognizeU16", true
	case project.U32:
		return "EncodeU32", "DecodeU32", "RecognizeU32", true
	case project.U64:
		return "EncodeU64", "DecodeU64", "RecognizeU64", true
	case project.I8:
		return "EncodeI8", "DecodeI8", "RecognizeI8", true
	case project.I16:
		return "EncodeI16", "DecodeI16", "RecognizeI16", true
	case project.I32:
		return "EncodeI32", "DecodeI32", "RecognizeI32", true
	case project.I64:
		return "EncodeI64", "DecodeI64", "RecognizeI64", true
	case project.F32:
		return "EncodeFloat32", "DecodeFloat32", "RecognizeFloat32", true
	case project.F64, project.Float:
		return "EncodeFloat64", "DecodeFloat64", "RecognizeFloat64", true
	case project.Uint:
		return "EncodeUint", "DecodeUint", "RecognizeUint", true
	case project.Sint:
		return "EncodeSint", "DecodeSint", "RecognizeSint", true
	case project.String:
		return "EncodeString", "DecodeString", "RecognizeString", true
	default:
		return "", "", "", false
	}
}

// userEncodeCall renders the statement that encodes expr, whose type is the
// user-defined type id, into w. Structs expose Encode as a pointer-receiver
// method (the shape phenix.StructCodec documents); enums and flag types have
// no method to hang it on (an interface and a generic alias, respectively)
// and so get a free EncodeT function instead.
func (ctx *goContext) userEncodeCall(id project.UserTypeID, expr string) string {
	if ctx.typeByID[id].Kind == project.KindStruct {
		return fmt.Sprintf("%s.Encode(w)", expr)
	}
	return fmt.Sprintf("%s(%s, w)", ctx.qualify(id, "Encode"), expr)
}

// encodeFuncExpr renders a function value usable as a Vector encodeItem
// callback for element type t.
func (ctx *goContext) encodeFuncExpr(t project.Type) string {
	if t.ID.IsUser {
		if ctx.typeByID[t.ID.User].Kind == project.KindStruct {
			return fmt.Sprintf("func(item %s, w phenix.Writer) { item.Encode(w) }", ctx.goType(t))
		}
		return ctx.qualify(t.ID.User, "Encode")
	}

	switch t.ID.Builtin {
	case project.Vector:
		return fmt.Sprintf("func(item %s, w phenix.Writer) { phenix.EncodeVector(item, w, %s) }",
			ctx.goType(t), ctx.encodeFuncExpr(t.Generics[0]))
	default:
		if encode, _, _, ok := builtinFuncNames(t.ID.Builtin); ok {
			return "phenix." + encode
		}
		return "nil"
	}
}

// decodeFuncExpr renders a function value usable as a Vector decodeItem
// callback for element type t.
func (ctx *goContext) decodeFuncExpr(t project.Type) string {
	if t.ID.IsUser {
		return ctx.qualify(t.ID.User, "Decode")
	}

	switch t.ID.Builtin {
	case project.Vector:
		return fmt.Sprintf("func(c *phenix.ByteCursor) ([]%s, error) { return phenix.DecodeVector(c, %s) }",
			ctx.goType(t.Generics[0]), ctx.decodeFuncExpr(t.Generics[0]))
	default:
		if _, decode, _, ok := builtinFuncNames(t.ID.Builtin); ok {
			return "phenix." + decode
		}
		return "nil"
	}
}

// recognizeFuncExpr renders an error-only recognizeItem callback for use as
// a Vector element recognizer (RecognizeVector discards the value).
func (ctx *goContext) recognizeFuncExpr(t project.Type) string {
	if t.ID.IsUser {
		fn := ctx.qualify(t.ID.User, "Recognize")
		return fmt.Sprintf("func(c *phenix.ByteCursor) error { _, err := %s(c); return err }", fn)
	}

	switch t.ID.Builtin {
	case project.Vector:
		return fmt.Sprintf("func(c *phenix.ByteCursor) error { _, err := phenix.RecognizeVector[%s](c, %s); return err }",
			ctx.goType(t.Generics[0]), ctx.recognizeFuncExpr(t.Generics[0]))
	default:
		if _, _, recognize, ok := builtinFuncNames(t.ID.Builtin); ok {
			return fmt.Sprintf("func(c *phenix.ByteCursor) error { _, err := phenix.%s(c); return err }", recognize)
		}
		return "nil"
	}
}

// encodeFieldStmt renders the statement that encodes expr (a struct field
// access or enum variant field access) of type t into w. Stream fields
// encode to zero bytes (§4.2), so the statement is empty.
func (ctx *goContext) encodeFieldStmt(expr string, t project.Type) string {
	if t.ID.IsUser {
		return ctx.userEncodeCall(t.ID.User, expr)
	}

	switch t.ID.Builtin {
	case project.Vector:
		return fmt.Sprintf("phenix.EncodeVector(%s, w, %s)", expr, ctx.encodeFuncExpr(t.Generics[0]))
	case project.Stream:
		return ""
	default:
		if encode, _, _, ok := builtinFuncNames(t.ID.Builtin); ok {
			return fmt.Sprintf("phenix.%s(%s, w)", encode, expr)
		}
		return ""
	}
}

// decodeFieldStmt renders the statement(s) that decode local variable
// varName of type t from c, returning early with zeroExpr on error. Stream
// fields never fail: capturing their origin offset cannot run out of bytes.
func (ctx *goContext) decodeFieldStmt(varName string, t project.Type, zeroExpr string) []string {
	if !t.ID.IsUser && t.ID.Builtin == project.Stream {
		return []string{fmt.Sprintf("%s := phenix.DecodeStream[%s](c)", varName, ctx.goType(t.Generics[0]))}
	}

	var call string
	switch {
	case t.ID.IsUser:
		call = fmt.Sprintf("%s(c)", ctx.qualify(t.ID.User, "Decode"))
	case t.ID.Builtin == project.Vector:
		call = fmt.Sprintf("phenix.DecodeVector(c, %s)", ctx.decodeFuncExpr(t.Generics[0]))
	default:
		if _, decode, _, ok := builtinFuncNames(t.ID.Builtin); ok {
			call = fmt.Sprintf("phenix.%s(c)", decode)
		}
	}

	return []string{
		fmt.Sprintf("%s, err := %s", varName, call),
		"if err != nil {",
		fmt.Sprintf("\treturn %s, err", zeroExpr),
		"}",
	}
}

// recognizeFieldStmt renders the statement(s) that advance c past a field of
// type t without materializing it, returning early with zeroExpr on error.
// Stream fields contribute nothing: they encode to zero bytes, so there is
// nothing in the owning value's own byte range to recognize.
func (ctx *goContext) recognizeFieldStmt(t project.Type, zeroExpr string) []string {
	if !t.ID.IsUser && t.ID.Builtin == project.Stream {
		return nil
	}

	var call string
	switch {
	case t.ID.IsUser:
		call = fmt.Sprintf("%s(c)", ctx.qualify(t.ID.User, "Recognize"))
	case t.ID.Builtin == project.Vector:
		call = fmt.Sprintf("phenix.RecognizeVector[%s](c, %s)", ctx.goType(t.Generics[0]), ctx.recognizeFuncExpr(t.Generics[0]))
	default:
		if _, _, recognize, ok := builtinFuncNames(t.ID.Builtin); ok {
			call = fmt.Sprintf("phenix.%s(c)", recognize)
		}
	}

	return []string{
		fmt.Sprintf("if _, err := %s; err != nil {", call),
		fmt.Sprintf("\treturn %s, err", zeroExpr),
		"}",
	}
}

func (ctx *goContext) typeDecl(ty project.UserType) (string, error) {
	switch ty.Kind {
	case project.KindStruct:
		return ctx.structDecl(ty.Struct)
	case project.KindEnum:
		return ctx.enumDecl(ty.Enum)
	case project.KindFlags:
		return ctx.flagsDecl(ty.Flags), nil
	default:
		return "", fmt.Errorf("unknown user type kind for %q", ty.Name())
	}
}

func (ctx *goContext) typeImpl(ty project.UserType) (string, error) {
	switch ty.Kind {
	case project.KindStruct:
		return ctx.structImpl(ty.Struct)
	case project.KindEnum:
		return ctx.enumImpl(ty.Enum)
	case project.KindFlags:
		return ctx.flagsImpl(ty), nil
	default:
		return "", fmt.Errorf("unknown user type kind for %q", ty.Name())
	}
}

func (ctx *goContext) structDecl(ty project.StructType) (string, error) {
	if err := validateStreamPlacement(ty.Fields); err != nil {
		return "", fmt.Errorf("struct %s: %w", ty.Name, err)
	}

	name := pascalCase(ty.Name)
	var b strings.Builder
	fmt.Fprintf(&b, "type %s struct {\n", name)
	for _, f := range ty.Fields {
		fmt.Fprintf(&b, "\t%s %s\n", pascalCase(f.Name), ctx.goType(f.Type))
	}
	b.WriteString("}")
	return b.String(), nil
}

func (ctx *goContext) structImpl(ty project.StructType) (string, error) {
	name := pascalCase(ty.Name)

	var b strings.Builder

	fmt.Fprintf(&b, "func (v *%s) Encode(w phenix.Writer) {\n", name)
	for _, f := range ty.Fields {
		stmt := ctx.encodeFieldStmt("v."+pascalCase(f.Name), f.Type)
		if stmt == "" {
			continue
		}
		fmt.Fprintf(&b, "\t%s\n", stmt)
	}
	b.WriteString("}\n\n")

	fmt.Fprintf(&b, "func Decode%s(c *phenix.ByteCursor) (%s, error) {\n", name, name)
	assigns := make([]string, 0, len(ty.Fields))
	for _, f := range ty.Fields {
		varName := fieldVarName(f.Name)
		for _, line := range ctx.decodeFieldStmt(varName, f.Type, name+"{}") {
			fmt.Fprintf(&b, "\t%s\n", line)
		}
		assigns = append(assigns, fmt.Sprintf("%s: %s,", pascalCase(f.Name), varName))
	}
	fmt.Fprintf(&b, "\treturn %s{\n", name)
	for _, a := range assigns {
		fmt.Fprintf(&b, "\t\t%s\n", a)
	}
	b.WriteString("\t}, nil\n}\n\n")

	fmt.Fprintf(&b, "func Recognize%s(c *phenix.ByteCursor) (phenix.ByteWindow[%s], error) {\n", name, name)
	b.WriteString("\tstart := c.Offset()\n")
	for _, f := range ty.Fields {
		for _, line := range ctx.recognizeFieldStmt(f.Type, fmt.Sprintf("phenix.ByteWindow[%s]{}", name)) {
			fmt.Fprintf(&b, "\t%s\n", line)
		}
	}
	fmt.Fprintf(&b, "\treturn phenix.NewByteWindow[%s](c.Origin(), start, c.Offset()), nil\n}\n\n", name)

	fmt.Fprintf(&b, "func RecognizeParts%s(c *phenix.ByteCursor) (phenix.PartsIterator, error) {\n", name)
	b.WriteString("\tvar parts []phenix.Part\n")
	field := 0
	for _, f := range ty.Fields {
		if isStreamField(f) {
			field++
			continue
		}
		wvar := fmt.Sprintf("w%d", field)
		fmt.Fprintf(&b, "\t%s, err := %s(c)\n", wvar, recognizeCallFor(ctx, f.Type))
		b.WriteString("\tif err != nil {\n")
		b.WriteString("\t\treturn nil, err\n")
		b.WriteString("\t}\n")
		fmt.Fprintf(&b, "\tparts = append(parts, phenix.Part{Field: %d, Present: true, Window: %s.Bytes()})\n", field, wvar)
		field++
	}
	b.WriteString("\treturn phenix.NewPartsIterator(parts), nil\n}")

	return b.String(), nil
}

// recognizeCallFor renders the bare Recognize function name for a
// (non-stream) field type, for direct use in RecognizeParts<Name> where the
// window itself (not just an error) is needed.
func recognizeCallFor(ctx *goContext, t project.Type) string {
	if t.ID.IsUser {
		return ctx.qualify(t.ID.User, "Recognize")
	}
	if t.ID.Builtin == project.Vector {
		return fmt.Sprintf("func(c *phenix.ByteCursor) (phenix.ByteWindow[%s], error) { return phenix.RecognizeVector[%s](c, %s) }",
			ctx.goType(t), ctx.goType(t.Generics[0]), ctx.recognizeFuncExpr(t.Generics[0]))
	}
	_, _, recognize, _ := builtinFuncNames(t.ID.Builtin)
	return "phenix." + recognize
}

func fieldVarName(name string) string {
	return "f" + pascalCase(name)
}

func (ctx *goContext) enumDecl(ty project.EnumType) (string, error) {
	name := pascalCase(ty.Name)

	var b strings.Builder
	fmt.Fprintf(&b, "// %s is a generated sum type: exactly one of its variant\n", name)
	b.WriteString("// types below implements it.\n")
	fmt.Fprintf(&b, "type %s interface {\n\tis%s()\n}\n\n", name, name)

	for i, v := range ty.Variants {
		vname := name + pascalCase(v.Name)
		if len(v.Fields) == 0 {
			fmt.Fprintf(&b, "type %s struct{}\n", vname)
		} else {
			fmt.Fprintf(&b, "type %s struct {\n", vname)
			for _, f := range v.Fields {
				fmt.Fprintf(&b, "\t%s %s\n", pascalCase(f.Name), ctx.goType(f.Type))
			}
			b.WriteString("}\n")
		}
		fmt.Fprintf(&b, "func (%s) is%s() {}", vname, name)
		if i != len(ty.Variants)-1 {
			b.WriteString("\n\n")
		}
	}

	return b.String(), nil
}

func (ctx *goContext) enumImpl(ty project.EnumType) (string, error) {
	if len(ty.Variants) > 256 {
		return "", fmt.Errorf("enum %s: %d variants exceeds the 256-variant strict discriminant (§4.1)", ty.Name, len(ty.Variants))
	}

	name := pascalCase(ty.Name)
	var b strings.Builder

	fmt.Fprintf(&b, "func Encode%s(v %s, w phenix.Writer) {\n", name, name)
	b.WriteString("\tswitch vv := v.(type) {\n")
	for i, variant := range ty.Variants {
		vname := name + pascalCase(variant.Name)
		fmt.Fprintf(&b, "\tcase %s:\n", vname)
		fmt.Fprintf(&b, "\t\tphenix.EncodeDiscriminant(%d, w)\n", i)
		for _, f := range variant.Fields {
			stmt := ctx.encodeFieldStmt("vv."+pascalCase(f.Name), f.Type)
			if stmt != "" {
				fmt.Fprintf(&b, "\t\t%s\n", stmt)
			}
		}
	}
	b.WriteString("\t}\n}\n\n")

	fmt.Fprintf(&b, "func Decode%s(c *phenix.ByteCursor) (%s, error) {\n", name, name)
	b.WriteString("\ttag, err := phenix.DecodeDiscriminant(c)\n")
	b.WriteString("\tif err != nil {\n\t\treturn nil, err\n\t}\n\n")
	b.WriteString("\tswitch tag {\n")
	for i, variant := range ty.Variants {
		vname := name + pascalCase(variant.Name)
		fmt.Fprintf(&b, "\tcase %d:\n", i)
		assigns := make([]string, 0, len(variant.Fields))
		for _, f := range variant.Fields {
			varName := fieldVarName(f.Name)
			for _, line := range ctx.decodeFieldStmt(varName, f.Type, "nil") {
				fmt.Fprintf(&b, "\t\t%s\n", line)
			}
			assigns = append(assigns, fmt.Sprintf("%s: %s", pascalCase(f.Name), varName))
		}
		fmt.Fprintf(&b, "\t\treturn %s{%s}, nil\n", vname, strings.Join(assigns, ", "))
	}
	fmt.Fprintf(&b, "\tdefault:\n\t\treturn nil, phenix.NewInvalidPrefix(c, \"unknown %s variant\")\n", name)
	b.WriteString("\t}\n}\n\n")

	fmt.Fprintf(&b, "func Recognize%s(c *phenix.ByteCursor) (phenix.ByteWindow[%s], error) {\n", name, name)
	b.WriteString("\tstart := c.Offset()\n")
	b.WriteString("\ttag, err := phenix.DecodeDiscriminant(c)\n")
	zero := fmt.Sprintf("phenix.ByteWindow[%s]{}", name)
	fmt.Fprintf(&b, "\tif err != nil {\n\t\treturn %s, err\n\t}\n\n", zero)
	b.WriteString("\tswitch tag {\n")
	for i, variant := range ty.Variants {
		fmt.Fprintf(&b, "\tcase %d:\n", i)
		if len(variant.Fields) == 0 {
			b.WriteString("\t\t// no fields\n")
		}
		for _, f := range variant.Fields {
			for _, line := range ctx.recognizeFieldStmt(f.Type, zero) {
				fmt.Fprintf(&b, "\t\t%s\n", line)
			}
		}
	}
	fmt.Fprintf(&b, "\tdefault:\n\t\treturn %s, phenix.NewInvalidPrefix(c, \"unknown %s variant\")\n", zero, name)
	b.WriteString("\t}\n\n")
	fmt.Fprintf(&b, "\treturn phenix.NewByteWindow[%s](c.Origin(), start, c.Offset()), nil\n}", name)

	return b.String(), nil
}

func (ctx *goContext) flagsDecl(ty project.FlagsType) string {
	name := pascalCase(ty.Name)
	flagType := name + "Flag"

	var b strings.Builder
	fmt.Fprintf(&b, "type %s int\n\n", flagType)
	b.WriteString("const (\n")
	for i, f := range ty.Flags {
		if i == 0 {
			fmt.Fprintf(&b, "\t%s%s %s = iota\n", flagType, pascalCase(f), flagType)
		} else {
			fmt.Fprintf(&b, "\t%s%s\n", flagType, pascalCase(f))
		}
	}
	b.WriteString(")\n\n")
	fmt.Fprintf(&b, "type %s = phenix.Flags[%s]", name, flagType)
	return b.String()
}

func (ctx *goContext) flagsImpl(ty project.UserType) string {
	name := pascalCase(ty.Flags.Name)
	flagType := name + "Flag"
	k := len(ty.Flags.Flags)

	var b strings.Builder
	if ty.IsNonExhaustive() {
		fmt.Fprintf(&b, "func Encode%s(f %s, w phenix.Writer) {\n\tphenix.EncodeFlagsRelaxed(f, w)\n}\n\n", name, name)
		fmt.Fprintf(&b, "func Decode%s(c *phenix.ByteCursor) (%s, error) {\n\treturn phenix.DecodeFlagsRelaxed[%s](c)\n}\n\n", name, name, flagType)
		fmt.Fprintf(&b, "func Recognize%s(c *phenix.ByteCursor) (phenix.ByteWindow[%s], error) {\n\treturn phenix.RecognizeFlagsRelaxed[%s](c)\n}", name, name, flagType)
		return b.String()
	}

	fmt.Fprintf(&b, "func Encode%s(f %s, w phenix.Writer) {\n\tphenix.EncodeFlagsExhaustive(f, %d, w)\n}\n\n", name, name, k)
	fmt.Fprintf(&b, "func Decode%s(c *phenix.ByteCursor) (%s, error) {\n\treturn phenix.DecodeFlagsExhaustive[%s](c, %d)\n}\n\n", name, name, flagType, k)
	fmt.Fprintf(&b, "func Recognize%s(c *phenix.ByteCursor) (phenix.ByteWindow[%s], error) {\n\treturn phenix.RecognizeFlagsExhaustive[%s](c, %d)\n}", name, name, flagType, k)
	return b.String()
}
