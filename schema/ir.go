package schema

// This file lowers a parsed CST (§4.4) into the item/type IR the def
// database and project lowering consume (§4.5-4.6), mirroring the shape of
// the original compiler's ir.rs: one *Data struct per syntax construct,
// built with a from-AST conversion that fails (returns false) only when a
// required child is itself missing, which can happen after error recovery.

// ItemKind distinguishes the three top-level item shapes a schema file can
// declare.
type ItemKind uint8

const (
	ItemStruct ItemKind = iota
	ItemEnum
	ItemFlags
)

// ItemData is one top-level struct/enum/flags declaration, already
// stripped of syntax and trivia. Exactly one of Struct/Enum/Flags is set,
// selected by Kind.
type ItemData struct {
	Kind   ItemKind
	Struct StructData
	Enum   EnumData
	Flags  FlagsData
}

// Name returns the declared item's name regardless of kind.
func (i ItemData) Name() string {
	switch i.Kind {
	case ItemStruct:
		return i.Struct.Name
	case ItemEnum:
		return i.Enum.Name
	case ItemFlags:
		return i.Flags.Name
	default:
		return ""
	}
}

type StructData struct {
	Name   string
	Fields []FieldData
}

type EnumData struct {
	Name     string
	Variants []VariantData
}

type FlagsData struct {
	Name  string
	Flags []FlagData
}

type FieldData struct {
	Name string
	Type TypeData
}

type VariantData struct {
	Name   string
	Fields []FieldData
}

type FlagData struct {
	Name string
}

// TypeData is a parsed (but not yet resolved) type reference: a bare name
// plus its generic arguments, e.g. `vector<string>` lowers to
// TypeData{Name: "vector", Generics: []TypeData{{Name: "string"}}}.
type TypeData struct {
	Name     string
	Generics []TypeData
}

// ImportData is one `import` statement: either a star-import of every
// public name, or an explicit list of (possibly renamed) aliases.
type ImportData struct {
	Star    bool
	Aliases []AliasData
	Path    string
}

type AliasData struct {
	From string
	To   string
}

// Root is the fully lowered contents of one schema file: its locally
// defined items, in declaration order, and its import statements.
type Root struct {
	Items   []ItemData
	Imports []ImportData
}

// Lower walks a parsed CST's root node and lowers every recognizable item
// and import. Nodes that failed to produce a name (e.g. an error-recovered
// fragment) are skipped, matching the original compiler's filter_map
// behavior in database/ir.rs's module_defs.
func Lower(root *Node) Root {
	var out Root

	for _, el := range root.Children {
		if el.Node == nil {
			continue
		}

		switch el.Node.Kind {
		case KindStructDef:
			if data, ok := structDataFromNode(el.Node); ok {
				out.Items = append(out.Items, ItemData{Kind: ItemStruct, Struct: data})
			}
		case KindEnumDef:
			if data, ok := enumDataFromNode(el.Node); ok {
				out.Items = append(out.Items, ItemData{Kind: ItemEnum, Enum: data})
			}
		case KindFlagsDef:
			if data, ok := flagsDataFromNode(el.Node); ok {
				out.Items = append(out.Items, ItemData{Kind: ItemFlags, Flags: data})
			}
		case KindImport:
			if data, ok := importDataFromNode(el.Node); ok {
				out.Imports = append(out.Imports, data)
			}
		}
	}

	return out
}

func nameOf(n *Node) (string, bool) {
	nameNode, ok := n.FirstChild(KindName)
	if !ok {
		return "", false
	}
	toks := nameNode.Tokens()
	if len(toks) == 0 {
		return "", false
	}
	return toks[0].Text, true
}

func structDataFromNode(n *Node) (StructData, bool) {
	name, ok := nameOf(n)
	if !ok {
		return StructData{}, false
	}

	var fields []FieldData
	for _, fieldNode := range n.ChildNodes(KindField) {
		if f, ok := fieldDataFromNode(fieldNode); ok {
			fields = append(fields, f)
		}
	}

	return StructData{Name: name, Fields: fields}, true
}

func enumDataFromNode(n *Node) (EnumData, bool) {
	name, ok := nameOf(n)
	if !ok {
		return EnumData{}, false
	}

	var variants []VariantData
	for _, variantNode := range n.ChildNodes(KindVariant) {
		if v, ok := variantDataFromNode(variantNode); ok {
			variants = append(variants, v)
		}
	}

	return EnumData{Name: name, Variants: variants}, true
}

func flagsDataFromNode(n *Node) (FlagsData, bool) {
	name, ok := nameOf(n)
	if !ok {
		return FlagsData{}, false
	}

	var flags []FlagData
	for _, flagNode := range n.ChildNodes(KindFlag) {
		if flagName, ok := nameOf(flagNode); ok {
			flags = append(flags, FlagData{Name: flagName})
		}
	}

	return FlagsData{Name: name, Flags: flags}, true
}

func fieldDataFromNode(n *Node) (FieldData, bool) {
	name, ok := nameOf(n)
	if !ok {
		return FieldData{}, false
	}

	typeNode, ok := n.FirstChild(KindType)
	if !ok {
		return FieldData{}, false
	}

	ty, ok := typeDataFromNode(typeNode)
	if !ok {
		return FieldData{}, false
	}

	return FieldData{Name: name, Type: ty}, true
}

func variantDataFromNode(n *Node) (VariantData, bool) {
	name, ok := nameOf(n)
	if !ok {
		return VariantData{}, false
	}

	var fields []FieldData
	for _, fieldNode := range n.ChildNodes(KindField) {
		if f, ok := fieldDataFromNode(fieldNode); ok {
			fields = append(fields, f)
		}
	}

	return VariantData{Name: name, Fields: fields}, true
}

func typeDataFromNode(n *Node) (TypeData, bool) {
	name, ok := nameOf(n)
	if !ok {
		return TypeData{}, false
	}

	var generics []TypeData
	for _, genNode := range n.ChildNodes(KindType) {
		if g, ok := typeDataFromNode(genNode); ok {
			generics = append(generics, g)
		}
	}

	return TypeData{Name: name, Generics: generics}, true
}

func importDataFromNode(n *Node) (ImportData, bool) {
	if _, ok := n.FirstToken(KindStar); ok {
		pathTok, ok := n.FirstToken(KindString)
		if !ok {
			return ImportData{}, false
		}
		return ImportData{Star: true, Path: StringValue(pathTok)}, true
	}

	var aliases []AliasData
	for _, aliasNode := range n.ChildNodes(KindAlias) {
		names := aliasNode.ChildNodes(KindName)
		if len(names) == 0 {
			continue
		}
		from := firstTokenText(names[0])
		to := from
		if len(names) > 1 {
			to = firstTokenText(names[len(names)-1])
		}
		if from == "" {
			continue
		}
		aliases = append(aliases, AliasData{From: from, To: to})
	}

	pathTok, ok := n.FirstToken(KindString)
	if !ok {
		return ImportData{}, false
	}

	return ImportData{Aliases: aliases, Path: StringValue(pathTok)}, true
}

func firstTokenText(n *Node) string {
	toks := n.Tokens()
	if len(toks) == 0 {
		return ""
	}
	return toks[0].Text
}
