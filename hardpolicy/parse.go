package hardpolicy

import (
	"fmt"
	"regexp"

	"github.com/nsg-ethz/snowcap/fwstate"
	"github.com/nsg-ethz/snowcap/pkg/serrors"
)

// ErrParse is the sentinel InputError for a malformed LTL formula string,
// per spec.md §7: "InputError — ... ill-typed LTL", rejected before any
// search starts.
var ErrParse = serrors.New("invalid hard-policy formula")

// Parse compiles the textual grammar of spec.md §6 into a Formula tree,
// resolving atom identifiers through namer. It is a small hand-written
// recursive-descent parser, grounded in the teacher's own
// private/path/pathpol policy-sequence parser rather than a generated one;
// see DESIGN.md.
//
//	formula  := unary | binary | atom | '(' formula ')'
//	unary    := ('G'|'F'|'X'|'!') formula
//	binary   := formula ('U'|'&&'|'||'|'->') formula
//	atom     := 'reach' '(' id ',' id ')'
//	          | 'path' '(' id ',' id ',' regex ')'
//	          | 'noloop' '(' id ',' id ')'
func Parse(src string, namer Namer) (*Formula, error) {
	p := &parser{lex: newLexer(src), namer: namer}
	p.next()
	f, err := p.parseBinary(0)
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, serrors.Wrap(fmt.Sprintf("unexpected trailing token %q", p.tok.text), ErrParse)
	}
	return f, nil
}

type parser struct {
	lex   *lexer
	namer Namer
	tok   token
}

func (p *parser) next() { p.tok = p.lex.next() }

// precedence table for the binary connectives, loosest to tightest:
// '->' < '||' < '&&' < 'U'. This matches common LTL tooling convention and
// keeps "a && b U c" parsing as "a && (b U c)".
func precedence(k tokKind) int {
	switch k {
	case tokImplies:
		return 1
	case tokOr:
		return 2
	case tokAnd:
		return 3
	case tokUntil:
		return 4
	default:
		return -1
	}
}

func (p *parser) parseBinary(minPrec int) (*Formula, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		prec := precedence(p.tok.kind)
		if prec < 0 || prec < minPrec {
			return left, nil
		}
		op := p.tok.kind
		p.next()
		right, err := p.parseBinary(prec + 1)
		if err != nil {
			return nil, err
		}
		switch op {
		case tokAnd:
			left = andF(left, right)
		case tokOr:
			left = orF(left, right)
		case tokImplies:
			left = impliesF(left, right)
		case tokUntil:
			left = untilF(left, right)
		}
	}
}

func (p *parser) parseUnary() (*Formula, error) {
	switch p.tok.kind {
	case tokG:
		p.next()
		f, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return globallyF(f), nil
	case tokF:
		p.next()
		f, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return finallyF(f), nil
	case tokX:
		p.next()
		f, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return nextF(f), nil
	case tokNot:
		p.next()
		f, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return notF(f), nil
	default:
		return p.parseAtomOrParen()
	}
}

func (p *parser) parseAtomOrParen() (*Formula, error) {
	switch p.tok.kind {
	case tokLParen:
		p.next()
		f, err := p.parseBinary(0)
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tokRParen {
			return nil, serrors.Wrap("expected ')'", ErrParse)
		}
		p.next()
		return f, nil
	case tokIdent:
		return p.parseAtom()
	default:
		return nil, serrors.Wrap(fmt.Sprintf("unexpected token %q", p.tok.text), ErrParse)
	}
}

func (p *parser) parseAtom() (*Formula, error) {
	name := p.tok.text
	p.next()
	if p.tok.kind != tokLParen {
		return nil, serrors.Wrap(fmt.Sprintf("expected '(' after %q", name), ErrParse)
	}
	p.next()

	switch name {
	case "reach":
		src, dst, err := p.parseTwoIDs()
		if err != nil {
			return nil, err
		}
		srcID, dstID, prefix, err := p.resolve(src, dst)
		if err != nil {
			return nil, err
		}
		return atomF(Reachable{Src: srcID, Dst: dstID, Prefix: prefix, srcName: src, dstName: dst}), nil

	case "noloop":
		src, dst, err := p.parseTwoIDs()
		if err != nil {
			return nil, err
		}
		srcID, _, prefix, err := p.resolve(src, dst)
		if err != nil {
			return nil, err
		}
		return atomF(NotLoop{Src: srcID, Prefix: prefix, srcName: src, dstName: dst}), nil

	case "path":
		if p.tok.kind != tokIdent {
			return nil, serrors.Wrap("expected identifier", ErrParse)
		}
		src := p.tok.text
		p.next()
		if err := p.expectComma(); err != nil {
			return nil, err
		}
		if p.tok.kind != tokIdent {
			return nil, serrors.Wrap("expected identifier", ErrParse)
		}
		dst := p.tok.text
		p.next()
		if err := p.expectComma(); err != nil {
			return nil, err
		}
		if p.tok.kind != tokRegex {
			return nil, serrors.Wrap("expected regex literal", ErrParse)
		}
		waypointSrc := p.tok.text
		re, err := regexp.Compile(waypointSrc)
		if err != nil {
			return nil, serrors.Wrap(fmt.Sprintf("invalid waypoint regex %q", waypointSrc), ErrParse, "err", err)
		}
		p.next()
		if p.tok.kind != tokRParen {
			return nil, serrors.Wrap("expected ')'", ErrParse)
		}
		p.next()
		srcID, dstID, prefix, err := p.resolve(src, dst)
		if err != nil {
			return nil, err
		}
		return atomF(PathCondition{
			Src: srcID, Dst: dstID, Prefix: prefix, Waypoint: re,
			srcName: src, dstName: dst, waypointSrc: waypointSrc,
		}), nil

	default:
		return nil, serrors.Wrap(fmt.Sprintf("unknown atom %q", name), ErrParse)
	}
}

func (p *parser) parseTwoIDs() (string, string, error) {
	if p.tok.kind != tokIdent {
		return "", "", serrors.Wrap("expected identifier", ErrParse)
	}
	src := p.tok.text
	p.next()
	if err := p.expectComma(); err != nil {
		return "", "", err
	}
	if p.tok.kind != tokIdent {
		return "", "", serrors.Wrap("expected identifier", ErrParse)
	}
	dst := p.tok.text
	p.next()
	if p.tok.kind != tokRParen {
		return "", "", serrors.Wrap("expected ')'", ErrParse)
	}
	p.next()
	return src, dst, nil
}

func (p *parser) expectComma() error {
	if p.tok.kind != tokComma {
		return serrors.Wrap("expected ','", ErrParse)
	}
	p.next()
	return nil
}

// resolve looks up the router ids for src and dst, and the prefix dst
// originates (the prefix a "reach(src,dst)"-style atom tests for), through
// the Namer supplied to Parse.
func (p *parser) resolve(src, dst string) (fwstate.RouterId, fwstate.RouterId, fwstate.Prefix, error) {
	srcID, ok := p.namer.RouterID(src)
	if !ok {
		return 0, 0, 0, serrors.Wrap(fmt.Sprintf("unknown router %q", src), ErrParse)
	}
	dstID, ok := p.namer.RouterID(dst)
	if !ok {
		return 0, 0, 0, serrors.Wrap(fmt.Sprintf("unknown router %q", dst), ErrParse)
	}
	prefix, ok := p.namer.PrefixOf(dst)
	if !ok {
		return 0, 0, 0, serrors.Wrap(fmt.Sprintf("router %q does not originate a prefix", dst), ErrParse)
	}
	return srcID, dstID, prefix, nil
}

// --- lexer ---

type tokKind int

const (
	tokEOF tokKind = iota
	tokIdent
	tokRegex
	tokComma
	tokLParen
	tokRParen
	tokG
	tokF
	tokX
	tokNot
	tokAnd
	tokOr
	tokImplies
	tokUntil
)

type token struct {
	kind tokKind
	text string
}

type lexer struct {
	src []rune
	pos int
}

func newLexer(s string) *lexer { return &lexer{src: []rune(s)} }

func (l *lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) next() token {
	for l.pos < len(l.src) && (l.src[l.pos] == ' ' || l.src[l.pos] == '\t' || l.src[l.pos] == '\n') {
		l.pos++
	}
	if l.pos >= len(l.src) {
		return token{kind: tokEOF}
	}
	c := l.src[l.pos]
	switch c {
	case '(':
		l.pos++
		return token{kind: tokLParen, text: "("}
	case ')':
		l.pos++
		return token{kind: tokRParen, text: ")"}
	case ',':
		l.pos++
		return token{kind: tokComma, text: ","}
	case '!':
		l.pos++
		return token{kind: tokNot, text: "!"}
	case '&':
		if l.pos+1 < len(l.src) && l.src[l.pos+1] == '&' {
			l.pos += 2
			return token{kind: tokAnd, text: "&&"}
		}
	case '|':
		if l.pos+1 < len(l.src) && l.src[l.pos+1] == '|' {
			l.pos += 2
			return token{kind: tokOr, text: "||"}
		}
	case '-':
		if l.pos+1 < len(l.src) && l.src[l.pos+1] == '>' {
			l.pos += 2
			return token{kind: tokImplies, text: "->"}
		}
	case '\'', '"':
		return l.lexRegex(c)
	}
	if isIdentStart(c) {
		return l.lexIdent()
	}
	l.pos++
	return token{kind: tokEOF, text: string(c)}
}

func (l *lexer) lexRegex(quote rune) token {
	l.pos++ // opening quote
	start := l.pos
	for l.pos < len(l.src) && l.src[l.pos] != quote {
		l.pos++
	}
	text := string(l.src[start:l.pos])
	if l.pos < len(l.src) {
		l.pos++ // closing quote
	}
	return token{kind: tokRegex, text: text}
}

func isIdentStart(c rune) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func (l *lexer) lexIdent() token {
	start := l.pos
	for l.pos < len(l.src) && isIdentStart(l.src[l.pos]) {
		l.pos++
	}
	text := string(l.src[start:l.pos])
	switch text {
	case "G":
		return token{kind: tokG, text: text}
	case "F":
		return token{kind: tokF, text: text}
	case "X":
		return token{kind: tokX, text: text}
	case "U":
		return token{kind: tokUntil, text: text}
	default:
		return token{kind: tokIdent, text: text}
	}
}
