// Package schema is the schema language front end: tokenizer, event-driven
// CST parser with error recovery, and the lowered item/type IR the rest of
// the compiler consumes.
package schema

import "fmt"

// Kind identifies the lexical or syntactic category of a token or CST node.
type Kind uint8

const (
	KindEOF Kind = iota
	KindError

	// Trivia.
	KindWhitespace
	KindComment

	// Literals and identifiers.
	KindIdent
	KindString

	// Keywords.
	KindKwStruct
	KindKwEnum
	KindKwFlags
	KindKwImport
	KindKwFrom
	KindKwAs

	// Punctuation.
	KindStar
	KindLBrace
	KindRBrace
	KindColon
	KindComma
	KindLAngle
	KindRAngle

	// CST node kinds (never produced by the lexer).
	KindRoot
	KindStructDef
	KindEnumDef
	KindFlagsDef
	KindImport
	KindAlias
	KindField
	KindVariant
	KindFlag
	KindName
	KindType
	KindErrorNode
)

func (k Kind) String() string {
	switch k {
	case KindEOF:
		return "EOF"
	case KindError:
		return "Error"
	case KindWhitespace:
		return "Whitespace"
	case KindComment:
		return "Comment"
	case KindIdent:
		return "Ident"
	case KindString:
		return "String"
	case KindKwStruct:
		return "struct"
	case KindKwEnum:
		return "enum"
	case KindKwFlags:
		return "flags"
	case KindKwImport:
		return "import"
	case KindKwFrom:
		return "from"
	case KindKwAs:
		return "as"
	case KindStar:
		return "*"
	case KindLBrace:
		return "{"
	case KindRBrace:
		return "}"
	case KindColon:
		return ":"
	case KindComma:
		return ","
	case KindLAngle:
		return "<"
	case KindRAngle:
		return ">"
	case KindRoot:
		return "Root"
	case KindStructDef:
		return "StructDef"
	case KindEnumDef:
		return "EnumDef"
	case KindFlagsDef:
		return "FlagsDef"
	case KindImport:
		return "Import"
	case KindAlias:
		return "Alias"
	case KindField:
		return "Field"
	case KindVariant:
		return "Variant"
	case KindFlag:
		return "Flag"
	case KindName:
		return "Name"
	case KindType:
		return "Type"
	case KindErrorNode:
		return "ErrorNode"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// isItemDef reports whether k starts a top-level item definition; the
// parser's error recovery skips forward to the next such token.
func (k Kind) isItemDef() bool {
	return k == KindKwStruct || k == KindKwEnum || k == KindKwFlags
}

// isTrivia reports whether k is whitespace or a comment.
func (k Kind) isTrivia() bool {
	return k == KindWhitespace || k == KindComment
}

var keywords = map[string]Kind{
	"struct": KindKwStruct,
	"enum":   KindKwEnum,
	"flags":  KindKwFlags,
	"import": KindKwImport,
	"from":   KindKwFrom,
	"as":     KindKwAs,
}

// Token is one lexical unit: a kind, its exact source text, and its
// position as a byte offset plus 1-based line:col for diagnostics.
type Token struct {
	Kind Kind
	Text string
	Pos  Position
}

// Position is a 1-based line:col location with the underlying byte offset.
type Position struct {
	Offset int
	Line   int
	Col    int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}
