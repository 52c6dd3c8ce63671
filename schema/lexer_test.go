package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(tokens []Token) []Kind {
	out := make([]Kind, len(tokens))
	for i, t := range tokens {
		out[i] = t.Kind
	}
	return out
}

func TestTokenizeStruct(t *testing.T) {
	src := `struct Message { from: string, to: string }`
	tokens := Tokenize(src)

	var significant []Token
	for _, tok := range tokens {
		if !tok.Kind.isTrivia() && tok.Kind != KindEOF {
			significant = append(significant, tok)
		}
	}

	want := []Kind{
		KindKwStruct, KindIdent, KindLBrace,
		KindIdent, KindColon, KindIdent, KindComma,
		KindIdent, KindColon, KindIdent,
		KindRBrace,
	}
	assert.Equal(t, want, kinds(significant))
}

func TestTokenizeLineColumns(t *testing.T) {
	src := "struct A {\n  x: u8\n}"
	tokens := Tokenize(src)

	var xTok Token
	for _, tok := range tokens {
		if tok.Kind == KindIdent && tok.Text == "x" {
			xTok = tok
		}
	}

	require.Equal(t, "x", xTok.Text)
	assert.Equal(t, 2, xTok.Pos.Line)
	assert.Equal(t, 3, xTok.Pos.Col)
}

func TestTokenizeComment(t *testing.T) {
	src := "// a comment\nstruct A {}"
	tokens := Tokenize(src)
	require.NotEmpty(t, tokens)
	assert.Equal(t, KindComment, tokens[0].Kind)
	assert.Equal(t, "// a comment", tokens[0].Text)
}

func TestTokenizeStringLiteral(t *testing.T) {
	tokens := Tokenize(`import * from "nested.phenix"`)

	var strTok Token
	for _, tok := range tokens {
		if tok.Kind == KindString {
			strTok = tok
		}
	}

	assert.Equal(t, `"nested.phenix"`, strTok.Text)
	assert.Equal(t, "nested.phenix", StringValue(strTok))
}

func TestTokenizeUnterminatedStringIsError(t *testing.T) {
	tokens := Tokenize(`"unterminated`)
	require.NotEmpty(t, tokens)
	assert.Equal(t, KindError, tokens[0].Kind)
}
