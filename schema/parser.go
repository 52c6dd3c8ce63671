package schema

import "fmt"

// ParseError is a single diagnostic produced while parsing, carrying the
// position the lexer/parser had reached when it was raised.
type ParseError struct {
	Message string
	Pos     Position
}

func (e ParseError) Error() string {
	return fmt.Sprintf("%s @ %s", e.Message, e.Pos)
}

// Parse is the result of parsing one schema file: the root CST node plus
// any errors recovered from along the way. Lex/parse errors never prevent
// a root node from being produced (§7) — later queries still run against
// whatever items were recovered.
type Parse struct {
	Root   *Node
	Errors []ParseError
}

// ParseSource tokenizes and parses src into a concrete syntax tree, recovering
// from syntax errors by skipping to the next item-definition keyword.
func ParseSource(src string) Parse {
	p := &parser{lexer: NewLexer(src), b: newBuilder()}
	p.parseRoot()
	return Parse{Root: p.b.finish(), Errors: p.errors}
}

type parser struct {
	lexer  *Lexer
	b      *builder
	errors []ParseError
	peeked *Token
}

func (p *parser) parseRoot() {
	p.eatTrivia()

	for {
		tok, ok := p.peek()
		if !ok {
			break
		}

		switch tok.Kind {
		case KindKwStruct:
			if !p.parseStruct() {
				p.recover()
			}
		case KindKwEnum:
			if !p.parseEnum() {
				p.recover()
			}
		case KindKwFlags:
			if !p.parseFlags() {
				p.recover()
			}
		case KindKwImport:
			if !p.parseImport() {
				p.recover()
			}
		case KindError:
			p.errorAt(fmt.Sprintf("lexer error: unrecognized character %q", tok.Text))
			p.makeErrorNode()
		default:
			p.errorAt(fmt.Sprintf("unexpected token %s", tok.Kind))
			p.makeErrorNode()
		}

		p.eatTrivia()
	}
}

func (p *parser) peek() (Token, bool) {
	if p.peeked == nil {
		tok := p.lexer.Next()
		p.peeked = &tok
	}
	if p.peeked.Kind == KindEOF {
		return *p.peeked, false
	}
	return *p.peeked, true
}

func (p *parser) bump() {
	if p.peeked != nil {
		p.b.token(*p.peeked)
		p.peeked = nil
		return
	}
	tok := p.lexer.Next()
	if tok.Kind != KindEOF {
		p.b.token(tok)
	}
}

func (p *parser) expect(kind Kind) bool {
	tok, ok := p.peek()
	if !ok || tok.Kind != kind {
		return false
	}
	p.bump()
	return true
}

func (p *parser) eatTrivia() {
	for {
		tok, ok := p.peek()
		if !ok || !tok.Kind.isTrivia() {
			return
		}
		p.bump()
	}
}

func (p *parser) errorAt(msg string) {
	pos := p.lexer.pos()
	if p.peeked != nil {
		pos = p.peeked.Pos
	}
	p.errors = append(p.errors, ParseError{Message: msg, Pos: pos})
}

func (p *parser) makeErrorNode() {
	p.b.startNode(KindErrorNode)
	p.bump()
	p.b.finishNode()
}

// recover reports the current token as unexpected, wraps it in an error
// node, and skips forward to the next item-definition keyword so the rest
// of the file can still be parsed.
func (p *parser) recover() {
	if tok, ok := p.peek(); ok {
		p.errorAt(fmt.Sprintf("unexpected token %s while parsing item", tok.Kind))
	} else {
		p.errorAt("unexpected eof while parsing item")
	}
	p.makeErrorNode()

	for {
		tok, ok := p.peek()
		if !ok || tok.Kind.isItemDef() {
			return
		}
		p.bump()
	}
}

func (p *parser) parseName() bool {
	p.eatTrivia()
	p.b.startNode(KindName)
	ok := p.expect(KindIdent)
	p.b.finishNode()
	return ok
}

func (p *parser) parseType() bool {
	p.eatTrivia()
	p.b.startNode(KindType)
	defer p.b.finishNode()

	if !p.parseName() {
		return false
	}
	p.eatTrivia()

	tok, ok := p.peek()
	if ok && tok.Kind == KindLAngle {
		p.bump()
		for {
			p.eatTrivia()
			if !p.parseType() {
				return false
			}
			p.eatTrivia()

			tok, ok := p.peek()
			if !ok {
				return false
			}
			switch tok.Kind {
			case KindComma:
				p.bump()
			case KindRAngle:
				p.bump()
				return true
			default:
				return false
			}
		}
	}

	return true
}

func (p *parser) parseField() bool {
	p.eatTrivia()
	p.b.startNode(KindField)
	defer p.b.finishNode()

	if !p.parseName() {
		return false
	}
	p.eatTrivia()
	if !p.expect(KindColon) {
		return false
	}
	p.eatTrivia()
	return p.parseType()
}

func (p *parser) parseFlag() bool {
	p.eatTrivia()
	p.b.startNode(KindFlag)
	defer p.b.finishNode()
	return p.parseName()
}

func (p *parser) parseVariant() bool {
	p.eatTrivia()
	p.b.startNode(KindVariant)
	defer p.b.finishNode()

	if !p.parseName() {
		return false
	}
	p.eatTrivia()

	tok, ok := p.peek()
	if !ok {
		return false
	}

	switch tok.Kind {
	case KindLBrace:
		p.bump()
		p.eatTrivia()
		return p.parseDefBody(p.parseField)
	case KindComma:
		return true
	default:
		// Trailing variant at end-of-enum with no comma and no body.
		return true
	}
}

// parseDefBody parses a comma-separated, optionally-trailing-comma-terminated
// list of items up to the closing '}', already having consumed the opening
// brace.
func (p *parser) parseDefBody(item func() bool) bool {
	for {
		p.eatTrivia()
		tok, ok := p.peek()
		if !ok {
			return false
		}

		switch tok.Kind {
		case KindIdent:
			if !item() {
				return false
			}
			p.eatTrivia()

			if p.expect(KindComma) {
				continue
			}

			p.eatTrivia()
			return p.expect(KindRBrace)
		case KindRBrace:
			p.bump()
			return true
		default:
			return false
		}
	}
}

func (p *parser) parseStruct() bool {
	p.b.startNode(KindStructDef)
	defer p.b.finishNode()

	if !p.expect(KindKwStruct) {
		return false
	}
	p.eatTrivia()
	if !p.parseName() {
		return false
	}
	p.eatTrivia()
	if !p.expect(KindLBrace) {
		return false
	}
	return p.parseDefBody(p.parseField)
}

func (p *parser) parseEnum() bool {
	p.b.startNode(KindEnumDef)
	defer p.b.finishNode()

	if !p.expect(KindKwEnum) {
		return false
	}
	p.eatTrivia()
	if !p.parseName() {
		return false
	}
	p.eatTrivia()
	if !p.expect(KindLBrace) {
		return false
	}
	return p.parseDefBody(p.parseVariant)
}

func (p *parser) parseFlags() bool {
	p.b.startNode(KindFlagsDef)
	defer p.b.finishNode()

	if !p.expect(KindKwFlags) {
		return false
	}
	p.eatTrivia()
	if !p.parseName() {
		return false
	}
	p.eatTrivia()
	if !p.expect(KindLBrace) {
		return false
	}
	return p.parseDefBody(p.parseFlag)
}

func (p *parser) parseAlias() bool {
	p.eatTrivia()
	p.b.startNode(KindAlias)
	defer p.b.finishNode()

	if !p.parseName() {
		return false
	}
	p.eatTrivia()

	if p.expect(KindKwAs) {
		p.eatTrivia()
		if !p.parseName() {
			return false
		}
		p.eatTrivia()
	}

	return true
}

func (p *parser) parseImport() bool {
	p.b.startNode(KindImport)
	defer p.b.finishNode()

	if !p.expect(KindKwImport) {
		return false
	}
	p.eatTrivia()

	tok, ok := p.peek()
	if !ok {
		return false
	}

	switch tok.Kind {
	case KindStar:
		p.bump()
		p.eatTrivia()
	case KindIdent:
		for {
			if !p.parseAlias() {
				return false
			}

			tok, ok := p.peek()
			if !ok {
				return false
			}
			if tok.Kind == KindComma {
				p.bump()
				p.eatTrivia()
				continue
			}
			if tok.Kind == KindKwFrom {
				break
			}
			return false
		}
	default:
		return false
	}

	if !p.expect(KindKwFrom) {
		return false
	}
	p.eatTrivia()

	return p.expect(KindString)
}
