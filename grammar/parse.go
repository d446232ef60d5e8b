// Package grammar parses GBNF grammar text and recognizes inputs against it.
//
// The supported dialect is the one jsongram emits and llama.cpp accepts:
// rules of the form `name ::= body`, double-quoted literals, character
// classes, groups, alternation with `|`, and the postfix operators `?`, `*`,
// `+` and `{m}`, `{m,}`, `{m,n}`. A rule body may continue on the next line
// inside parentheses or after a `|`.
package grammar

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// SyntaxError reports a parse failure at a 1-based line and column.
type SyntaxError struct {
	Line, Col int
	Msg       string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("grammar: %d:%d: %s", e.Line, e.Col, e.Msg)
}

// Grammar is a parsed, closed set of rules.
type Grammar struct {
	rules map[string]*expr
	order []string
}

// Rules returns the rule names in definition order.
func (g *Grammar) Rules() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Has reports whether a rule with the given name is defined.
func (g *Grammar) Has(name string) bool {
	_, ok := g.rules[name]
	return ok
}

type exprKind int

const (
	exprLiteral exprKind = iota
	exprClass
	exprAny
	exprRef
	exprSeq
	exprAlt
	exprRepeat
)

type expr struct {
	kind  exprKind
	lit   []rune
	class charClass
	ref   string
	items []*expr
	min   int
	max   int // -1 means unbounded
}

type charClass struct {
	negate bool
	ranges [][2]rune
}

func (c charClass) matches(r rune) bool {
	in := false
	for _, rg := range c.ranges {
		if r >= rg[0] && r <= rg[1] {
			in = true
			break
		}
	}
	return in != c.negate
}

// Parse parses grammar text. Every referenced rule must be defined.
func Parse(text string) (*Grammar, error) {
	p := &parser{src: []rune(text), line: 1, col: 1}
	g := &Grammar{rules: map[string]*expr{}}
	for {
		p.skipSpace(true)
		if p.eof() {
			break
		}
		line, col := p.line, p.col
		name := p.name()
		if name == "" {
			return nil, p.errorf("expected rule name")
		}
		p.skipSpace(false)
		if !p.consume("::=") {
			return nil, p.errorf("expected ::= after %q", name)
		}
		p.skipSpace(true)
		body, err := p.alternatives(false)
		if err != nil {
			return nil, err
		}
		if _, dup := g.rules[name]; dup {
			return nil, &SyntaxError{Line: line, Col: col, Msg: fmt.Sprintf("rule %q redefined", name)}
		}
		g.rules[name] = body
		g.order = append(g.order, name)
		p.skipSpace(false)
		if !p.eof() && !p.newline() {
			return nil, p.errorf("unexpected %q after rule %q", string(p.peek()), name)
		}
	}
	if missing := g.undefined(); len(missing) > 0 {
		return nil, fmt.Errorf("grammar: undefined rules: %s", strings.Join(missing, ", "))
	}
	return g, nil
}

func (g *Grammar) undefined() []string {
	seen := map[string]struct{}{}
	var walk func(e *expr)
	walk = func(e *expr) {
		if e.kind == exprRef {
			if _, ok := g.rules[e.ref]; !ok {
				seen[e.ref] = struct{}{}
			}
		}
		for _, it := range e.items {
			walk(it)
		}
	}
	for _, name := range g.order {
		walk(g.rules[name])
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

type parser struct {
	src       []rune
	pos       int
	line, col int
}

func (p *parser) eof() bool  { return p.pos >= len(p.src) }
func (p *parser) peek() rune { return p.src[p.pos] }

func (p *parser) advance() rune {
	r := p.src[p.pos]
	p.pos++
	if r == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
	return r
}

func (p *parser) errorf(format string, a ...any) error {
	return &SyntaxError{Line: p.line, Col: p.col, Msg: fmt.Sprintf(format, a...)}
}

func (p *parser) consume(s string) bool {
	rs := []rune(s)
	if p.pos+len(rs) > len(p.src) {
		return false
	}
	for i, r := range rs {
		if p.src[p.pos+i] != r {
			return false
		}
	}
	for range rs {
		p.advance()
	}
	return true
}

// skipSpace skips blanks and comments; newlines only when newlineOK.
func (p *parser) skipSpace(newlineOK bool) {
	for !p.eof() {
		switch r := p.peek(); {
		case r == '#':
			for !p.eof() && p.peek() != '\n' {
				p.advance()
			}
		case r == ' ' || r == '\t':
			p.advance()
		case (r == '\n' || r == '\r') && newlineOK:
			p.advance()
		default:
			return
		}
	}
}

func (p *parser) newline() bool {
	if p.eof() {
		return false
	}
	if r := p.peek(); r == '\n' || r == '\r' {
		p.advance()
		return true
	}
	return false
}

func isNameRune(r rune) bool {
	return r == '_' || r == '-' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func (p *parser) name() string {
	start := p.pos
	for !p.eof() && isNameRune(p.peek()) {
		p.advance()
	}
	return string(p.src[start:p.pos])
}

func (p *parser) alternatives(nested bool) (*expr, error) {
	var alts []*expr
	for {
		seq, err := p.sequence(nested)
		if err != nil {
			return nil, err
		}
		alts = append(alts, seq)
		if p.eof() || p.peek() != '|' {
			break
		}
		p.advance()
		p.skipSpace(true)
	}
	if len(alts) == 1 {
		return alts[0], nil
	}
	return &expr{kind: exprAlt, items: alts}, nil
}

func (p *parser) sequence(nested bool) (*expr, error) {
	var items []*expr
	for !p.eof() {
		var (
			e   *expr
			err error
		)
		switch r := p.peek(); {
		case r == '"':
			e, err = p.literal()
		case r == '[':
			e, err = p.class()
		case r == '.':
			p.advance()
			e = &expr{kind: exprAny}
		case r == '(':
			p.advance()
			p.skipSpace(true)
			e, err = p.alternatives(true)
			if err == nil {
				p.skipSpace(true)
				if p.eof() || p.peek() != ')' {
					err = p.errorf("expected )")
				} else {
					p.advance()
				}
			}
		case isNameRune(r):
			e = &expr{kind: exprRef, ref: p.name()}
		default:
			return &expr{kind: exprSeq, items: items}, nil
		}
		if err != nil {
			return nil, err
		}
		e, err = p.postfix(e)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
		p.skipSpace(nested)
	}
	return &expr{kind: exprSeq, items: items}, nil
}

func (p *parser) postfix(e *expr) (*expr, error) {
	for !p.eof() {
		switch p.peek() {
		case '*':
			p.advance()
			e = &expr{kind: exprRepeat, items: []*expr{e}, min: 0, max: -1}
		case '+':
			p.advance()
			e = &expr{kind: exprRepeat, items: []*expr{e}, min: 1, max: -1}
		case '?':
			p.advance()
			e = &expr{kind: exprRepeat, items: []*expr{e}, min: 0, max: 1}
		case '{':
			p.advance()
			lo, hi, err := p.bounds()
			if err != nil {
				return nil, err
			}
			e = &expr{kind: exprRepeat, items: []*expr{e}, min: lo, max: hi}
		default:
			return e, nil
		}
	}
	return e, nil
}

// bounds parses the inside of {m}, {m,} or {m,n} after the opening brace.
func (p *parser) bounds() (int, int, error) {
	num := func() (int, bool) {
		start := p.pos
		for !p.eof() && p.peek() >= '0' && p.peek() <= '9' {
			p.advance()
		}
		if start == p.pos {
			return 0, false
		}
		n, _ := strconv.Atoi(string(p.src[start:p.pos]))
		return n, true
	}
	lo, ok := num()
	if !ok {
		return 0, 0, p.errorf("expected repetition count")
	}
	hi := lo
	if p.consume(",") {
		if n, ok := num(); ok {
			hi = n
		} else {
			hi = -1
		}
	}
	if !p.consume("}") {
		return 0, 0, p.errorf("expected }")
	}
	if hi >= 0 && hi < lo {
		return 0, 0, p.errorf("repetition max %d below min %d", hi, lo)
	}
	return lo, hi, nil
}

func (p *parser) literal() (*expr, error) {
	p.advance() // opening quote
	var out []rune
	for {
		if p.eof() {
			return nil, p.errorf("unterminated literal")
		}
		r := p.advance()
		switch r {
		case '"':
			return &expr{kind: exprLiteral, lit: out}, nil
		case '\n':
			return nil, p.errorf("newline in literal")
		case '\\':
			esc, err := p.escape()
			if err != nil {
				return nil, err
			}
			out = append(out, esc)
		default:
			out = append(out, r)
		}
	}
}

func (p *parser) escape() (rune, error) {
	if p.eof() {
		return 0, p.errorf("dangling escape")
	}
	switch r := p.advance(); r {
	case 'n':
		return '\n', nil
	case 'r':
		return '\r', nil
	case 't':
		return '\t', nil
	case 'x':
		return p.hex(2)
	case 'u':
		return p.hex(4)
	case 'U':
		return p.hex(8)
	case '\\', '"', '[', ']', '-', '^':
		return r, nil
	default:
		return 0, p.errorf("unknown escape \\%c", r)
	}
}

func (p *parser) hex(n int) (rune, error) {
	if p.pos+n > len(p.src) {
		return 0, p.errorf("short hex escape")
	}
	v, err := strconv.ParseUint(string(p.src[p.pos:p.pos+n]), 16, 32)
	if err != nil {
		return 0, p.errorf("bad hex escape")
	}
	for i := 0; i < n; i++ {
		p.advance()
	}
	return rune(v), nil
}

func (p *parser) class() (*expr, error) {
	p.advance() // [
	var c charClass
	if !p.eof() && p.peek() == '^' {
		p.advance()
		c.negate = true
	}
	for {
		if p.eof() {
			return nil, p.errorf("unterminated character class")
		}
		if p.peek() == ']' {
			p.advance()
			return &expr{kind: exprClass, class: c}, nil
		}
		lo, err := p.classChar()
		if err != nil {
			return nil, err
		}
		hi := lo
		if p.pos+1 < len(p.src) && p.peek() == '-' && p.src[p.pos+1] != ']' {
			p.advance()
			if hi, err = p.classChar(); err != nil {
				return nil, err
			}
		}
		c.ranges = append(c.ranges, [2]rune{lo, hi})
	}
}

func (p *parser) classChar() (rune, error) {
	r := p.advance()
	if r == '\\' {
		return p.escape()
	}
	return r, nil
}
