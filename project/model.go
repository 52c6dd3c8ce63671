// Package project holds the canonical, fully-resolved project model the
// code generator consumes (§4.6): modules with stable IDs and paths,
// user types with resolved type references.
package project

// BuiltinType enumerates the schema language's built-in type names (§4.4).
type BuiltinType uint8

const (
	Bool BuiltinType = iota
	U8
	U16
	U32
	U64
	I8
	I16
	I32
	I64
	F32
	F64
	Uint
	Sint
	Float
	String
	Vector
	Stream
)

var builtinNames = map[string]BuiltinType{
	"bool":   Bool,
	"u8":     U8,
	"u16":    U16,
	"u32":    U32,
	"u64":    U64,
	"i8":     I8,
	"i16":    I16,
	"i32":    I32,
	"i64":    I64,
	"f32":    F32,
	"f64":    F64,
	"uint":   Uint,
	"sint":   Sint,
	"float":  Float,
	"string": String,
	"vector": Vector,
	"stream": Stream,
}

func (b BuiltinType) String() string {
	for name, kind := range builtinNames {
		if kind == b {
			return name
		}
	}
	return "unknown"
}

// UserTypeID identifies a user-defined struct/enum/flags declaration,
// unique across the whole project.
type UserTypeID int

// TypeID is either a built-in kind or a reference to a user-defined type.
type TypeID struct {
	Builtin BuiltinType
	User    UserTypeID
	IsUser  bool
}

// Type is a resolved type reference: a TypeID plus its ordered generic
// arguments (e.g. vector<string> has 1 generic, string has 0).
type Type struct {
	ID       TypeID
	Generics []Type
}

// Attribute annotates a user type or field. Only NonExhaustive exists
// today, restricted to flag enums (§4.3).
type Attribute uint8

const (
	AttrNonExhaustive Attribute = iota
)

type Field struct {
	Name  string
	Type  Type
	Attrs []Attribute
}

type Variant struct {
	Name   string
	Fields []Field
	Attrs  []Attribute
}

type StructType struct {
	ID     UserTypeID
	Name   string
	Fields []Field
	Attrs  []Attribute
}

type EnumType struct {
	ID       UserTypeID
	Name     string
	Variants []Variant
	Attrs    []Attribute
}

type FlagsType struct {
	ID    UserTypeID
	Name  string
	Flags []string
	Attrs []Attribute
}

// UserTypeKind discriminates which of Struct/Enum/Flags a UserType holds.
type UserTypeKind uint8

const (
	KindStruct UserTypeKind = iota
	KindEnum
	KindFlags
)

// UserType is one struct/enum/flags declaration lowered into the project
// model. Exactly one of Struct/Enum/Flags is populated, selected by Kind.
type UserType struct {
	Kind   UserTypeKind
	Struct StructType
	Enum   EnumType
	Flags  FlagsType
}

func (t UserType) ID() UserTypeID {
	switch t.Kind {
	case KindStruct:
		return t.Struct.ID
	case KindEnum:
		return t.Enum.ID
	case KindFlags:
		return t.Flags.ID
	default:
		return 0
	}
}

func (t UserType) Name() string {
	switch t.Kind {
	case KindStruct:
		return t.Struct.Name
	case KindEnum:
		return t.Enum.Name
	case KindFlags:
		return t.Flags.Name
	default:
		return ""
	}
}

func (t UserType) Attributes() []Attribute {
	switch t.Kind {
	case KindStruct:
		return t.Struct.Attrs
	case KindEnum:
		return t.Enum.Attrs
	case KindFlags:
		return t.Flags.Attrs
	default:
		return nil
	}
}

// IsNonExhaustive reports whether t carries the NonExhaustive attribute.
// Only flag enums support it (§4.3); structs/enums with it set are a
// compiler error the generator refuses to emit code for.
func (t UserType) IsNonExhaustive() bool {
	for _, a := range t.Attributes() {
		if a == AttrNonExhaustive {
			return true
		}
	}
	return false
}

// ModuleID identifies one module within a Project, dense starting at 0.
type ModuleID int

// ModulePath is a module's namespace path, e.g. []string{"nested"} for a
// file one directory below the root, or nil for the root module itself.
type ModulePath []string

// Module is one reachable schema file lowered to its stable path and the
// user types it declares, in definition order re-sorted by UserTypeID
// (§4.6) so cross-module references resolve deterministically.
type Module struct {
	ID    ModuleID
	Path  ModulePath
	Types []UserType
}

// Project is the full lowered compile unit: every reachable module, in
// the order Reachable(root) produced them, with module IDs 0..N.
type Project struct {
	Modules []Module
}
