package gbnf

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/reoring/jsongram/internal/ir"
)

// KeyPolicy selects how object members are constrained.
type KeyPolicy int

const (
	// KeysRelaxed accepts any subset of the known keys, in any order, with
	// repeats. Required keys are not enforced.
	KeysRelaxed KeyPolicy = iota
	// KeysDeclared accepts required fields in recorded order followed by the
	// optional ones; required keys must be present, optional keys may be
	// omitted, and no key may repeat.
	KeysDeclared
)

func (p KeyPolicy) String() string {
	switch p {
	case KeysRelaxed:
		return "relaxed"
	case KeysDeclared:
		return "declared"
	default:
		return "KeyPolicy(" + strconv.Itoa(int(p)) + ")"
	}
}

// Options configures Generate.
type Options struct {
	RootName  string // name of the entry rule; "root" when empty
	Hint      string // preferred name of the top-level node; "root" when empty
	Separator string // rule-name separator; "_" when empty, llama.cpp needs "-"
	Keys      KeyPolicy
}

// Rule is one named production.
type Rule struct {
	Name string
	Body string
}

func (r Rule) String() string { return r.Name + " ::= " + r.Body }

// Result is a generated grammar.
type Result struct {
	Text  string
	Root  string // entry rule name, as configured
	Entry string // rule the root line points at
	Rules []Rule // generated rules in emission order (prelude and root excluded)
}

// Rule returns the generated rule with the given name.
func (r *Result) Rule(name string) (Rule, bool) {
	for _, rule := range r.Rules {
		if rule.Name == name {
			return rule, true
		}
	}
	return Rule{}, false
}

// ErrBadSeparator is returned for separators that are not made of '_' or '-'.
var ErrBadSeparator = errors.New("gbnf: separator must consist of '_' or '-'")

// Generate renders the tree rooted at root as a grammar. Each distinct node
// is emitted once; repeated references to the same NodeID reuse its rule.
func Generate(a *ir.Arena, root ir.NodeID, opt Options) (*Result, error) {
	if opt.RootName == "" {
		opt.RootName = "root"
	}
	if opt.Separator == "" {
		opt.Separator = "_"
	}
	if strings.Trim(opt.Separator, "_-") != "" {
		return nil, ErrBadSeparator
	}
	if !validRuleName(opt.RootName) {
		return nil, fmt.Errorf("gbnf: invalid root rule name %q", opt.RootName)
	}
	for _, r := range Prelude {
		if r.Name == opt.RootName {
			return nil, fmt.Errorf("gbnf: root rule name %q is taken by the prelude", opt.RootName)
		}
	}
	if root < 0 || int(root) >= a.Len() {
		return nil, fmt.Errorf("gbnf: root node %d out of range", root)
	}
	hint := opt.Hint
	if hint == "" {
		hint = "root"
	}
	g := &generator{
		arena: a,
		opt:   opt,
		memo:  make(map[ir.NodeID]string),
		names: newNamer(opt.Separator, opt.RootName, RuleWS, RuleString, RuleInt, RuleNumber),
	}
	entry := g.emit(root, Sanitize(hint, opt.Separator), "val")
	if g.err != nil {
		return nil, g.err
	}

	var b strings.Builder
	b.WriteString(Rule{Name: opt.RootName, Body: entry}.String())
	b.WriteByte('\n')
	for _, r := range Prelude {
		b.WriteString(r.String())
		b.WriteByte('\n')
	}
	for _, r := range g.rules {
		b.WriteString(r.String())
		b.WriteByte('\n')
	}
	return &Result{Text: b.String(), Root: opt.RootName, Entry: entry, Rules: g.rules}, nil
}

type generator struct {
	arena *ir.Arena
	opt   Options
	memo  map[ir.NodeID]string
	names *namer
	rules []Rule
	err   error
}

func (g *generator) add(name, body string) {
	g.rules = append(g.rules, Rule{Name: name, Body: body})
}

// emit returns the rule name for node id, emitting it (and its children) on
// first sight. leafPrefix names leaf rules: "val" for values, "elem" for
// array elements.
func (g *generator) emit(id ir.NodeID, hint, leafPrefix string) string {
	if name, ok := g.memo[id]; ok {
		return name
	}
	n := g.arena.Node(id)
	var name string
	switch n.Kind {
	case ir.KindArray:
		elemHint := hint
		if !g.arena.Node(n.Element).Kind.IsLeaf() {
			elemHint = g.names.join(hint, "item")
		}
		elem := g.emit(n.Element, elemHint, "elem")
		name = g.names.unique(g.names.join("array", hint))
		g.add(name, repeated(`"["`, elem, `"]"`))
	case ir.KindObject:
		name = g.emitObject(n, hint)
	default:
		name = g.names.unique(g.names.join(leafPrefix, hint))
		g.add(name, leafBody(n.Kind))
	}
	g.memo[id] = name
	return name
}

func leafBody(k ir.Kind) string {
	switch k {
	case ir.KindString:
		return RuleString
	case ir.KindInteger:
		return RuleInt
	case ir.KindNumber:
		return RuleNumber
	case ir.KindBoolean:
		return `"true" | "false"`
	default:
		return `"null"`
	}
}

// repeated renders open ( item ( "," item )* )? close with ws around
// every separator; the empty sequence is always allowed.
func repeated(open, item, close string) string {
	return open + ` ws ( ` + item + ` ( ws "," ws ` + item + ` )* )? ws ` + close
}

type pairRule struct {
	name     string
	optional bool
}

func (g *generator) emitObject(n ir.Node, hint string) string {
	var pairs []pairRule
	field := func(optional bool) func(string, ir.NodeID) {
		return func(key string, child ir.NodeID) {
			frag := Sanitize(key, g.opt.Separator)
			val := g.emit(child, g.names.join(hint, frag), "val")
			if optional {
				val = `( ` + val + ` | "null" )`
			}
			lit, err := KeyLiteral(key)
			if err != nil && g.err == nil {
				g.err = err
			}
			name := g.names.unique(g.names.join("pair", hint, frag))
			g.add(name, lit+` ws ":" ws `+val)
			pairs = append(pairs, pairRule{name: name, optional: optional})
		}
	}
	ir.Each(n.Required, field(false))
	ir.Each(n.Optional, field(true))

	name := g.names.unique(g.names.join("object", hint))
	if len(pairs) == 0 {
		g.add(name, `"{" ws "}"`)
		return name
	}
	if g.opt.Keys == KeysDeclared {
		g.add(name, g.declaredBody(hint, pairs))
		return name
	}
	alts := make([]string, len(pairs))
	for i, p := range pairs {
		alts[i] = p.name
	}
	member := g.names.unique(g.names.join("member", hint))
	g.add(member, strings.Join(alts, " | "))
	g.add(name, repeated(`"{"`, member, `"}"`))
	return name
}

// declaredBody emits the chain rules for KeysDeclared and returns the object
// body. fields_i matches a non-empty run starting at pair i with nothing
// before it; more_i matches the (possibly empty) rest after something has
// already been written.
func (g *generator) declaredBody(hint string, pairs []pairRule) string {
	n := len(pairs)
	more := make([]string, n+1) // more[i] for pair index i (0-based); more[n] is empty
	for i := n - 1; i >= 1; i-- {
		p := pairs[i]
		body := `ws "," ws ` + p.name
		if p.optional {
			body = `( ` + body + ` )?`
		}
		if more[i+1] != "" {
			body += " " + more[i+1]
		}
		more[i] = g.names.unique(g.names.join("more", hint, strconv.Itoa(i+1)))
		g.add(more[i], body)
	}
	first := make([]string, n+1)
	for i := n - 1; i >= 0; i-- {
		p := pairs[i]
		body := p.name
		if more[i+1] != "" {
			body += " " + more[i+1]
		}
		if p.optional && i+1 < n {
			body += " | " + first[i+1]
		}
		first[i] = g.names.unique(g.names.join("fields", hint, strconv.Itoa(i+1)))
		g.add(first[i], body)
	}
	inner := first[0]
	if !hasRequired(pairs) {
		inner = `( ` + inner + ` )?`
	}
	return `"{" ws ` + inner + ` ws "}"`
}

func validRuleName(s string) bool {
	for _, r := range s {
		if !isWordRune(r) && r != '_' && r != '-' {
			return false
		}
	}
	return s != ""
}

func hasRequired(pairs []pairRule) bool {
	for _, p := range pairs {
		if !p.optional {
			return true
		}
	}
	return false
}
