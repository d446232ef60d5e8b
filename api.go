package jsongram

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/reoring/jsongram/grammar"
	"github.com/reoring/jsongram/internal/gbnf"
	"github.com/reoring/jsongram/internal/ir"
)

// Rule is one named production of a compiled grammar.
type Rule = gbnf.Rule

// Grammar is the result of a compilation.
type Grammar struct {
	Text  string // full grammar text, one rule per line
	Root  string // entry rule name
	Entry string // rule the entry rule delegates to
	Rules []Rule // generated rules, prelude and entry excluded
	// Issues holds non-fatal findings such as fields whose shape could only
	// be partially inferred.
	Issues Issues
}

func (g *Grammar) String() string { return g.Text }

// Check reports whether input is accepted by the grammar's entry rule.
func (g *Grammar) Check(input string) (bool, error) {
	p, err := grammar.Parse(g.Text)
	if err != nil {
		return false, err
	}
	return p.Accepts(g.Root, input), nil
}

// Named can be implemented by a Decodable to choose the hint used for its
// top-level rules when CompileOpt.Name is empty.
type Named interface {
	GrammarName() string
}

// Compile infers the shape of v by running v.Decode against a recorder and
// renders it as a grammar with default options.
func Compile(v Decodable) (*Grammar, error) {
	return CompileWith(v, CompileOpt{})
}

// CompileWith is Compile with explicit options.
//
// Inference is best effort: a nested value whose Decode fails is recorded as
// null and reported in Grammar.Issues. Compilation fails with Issues carrying
// unsupported_schema when nothing could be recorded for v, and with
// depth_exceeded when nesting passes opt.MaxDepth.
func CompileWith(v Decodable, opt CompileOpt) (*Grammar, error) {
	inf, err := infer(v, opt)
	if err != nil {
		return nil, err
	}
	res, err := gbnf.Generate(inf.arena, inf.root, gbnf.Options{
		RootName:  opt.RootRule,
		Hint:      rootHint(v, opt),
		Separator: opt.Separator,
		Keys:      opt.Keys,
	})
	if err != nil {
		return nil, err
	}
	return &Grammar{Text: res.Text, Root: res.Root, Entry: res.Entry, Rules: res.Rules, Issues: inf.issues}, nil
}

// Infer returns the shape recorded for v without rendering a grammar.
func Infer(v Decodable) (*Shape, error) {
	return InferWith(v, CompileOpt{})
}

// InferWith is Infer with explicit options; only MaxDepth is consulted.
func InferWith(v Decodable, opt CompileOpt) (*Shape, error) {
	inf, err := infer(v, opt)
	if err != nil {
		return nil, err
	}
	return exportShape(inf.arena, inf.root), nil
}

type inference struct {
	arena  *ir.Arena
	root   ir.NodeID
	issues Issues
}

func infer(v Decodable, opt CompileOpt) (*inference, error) {
	name := typeName(v)
	v = nonNil(v)
	if v == nil {
		return nil, Issues{IssueAt("", CodeUnsupportedSchema, "nil value", ErrUnsupportedSchema)}
	}
	s := &session{arena: ir.NewArena(), maxDepth: opt.maxDepth()}
	slot := s.arena.NewSlot()
	err := (&recorder{s: s, slot: slot}).drive(v)
	if s.fatal != nil {
		return nil, s.issues
	}
	root, ok := s.arena.Read(slot)
	if !ok {
		cause := ErrUnsupportedSchema
		if err != nil {
			cause = fmt.Errorf("%w: %w", ErrUnsupportedSchema, err)
		}
		return nil, AppendIssues(s.issues, IssueAt("", CodeUnsupportedSchema, name, cause))
	}
	if err != nil {
		s.issues = AppendIssues(s.issues, IssueAt("", CodePartialInference, err.Error(), err))
	}
	return &inference{arena: s.arena, root: root, issues: s.issues}, nil
}

// nonNil replaces a typed nil pointer with a pointer to a fresh zero value
// so that Compile((*T)(nil)) works.
func nonNil(v Decodable) Decodable {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || !rv.IsNil() {
		return v
	}
	if d, ok := reflect.New(rv.Type().Elem()).Interface().(Decodable); ok {
		return d
	}
	return nil
}

func rootHint(v Decodable, opt CompileOpt) string {
	if opt.Name != "" {
		return opt.Name
	}
	if n, ok := v.(Named); ok {
		if h := n.GrammarName(); h != "" {
			return h
		}
	}
	if h := strings.ToLower(typeName(v)); h != "" {
		return h
	}
	return "root"
}

// typeName returns the bare Go type name behind v, pointers removed and type
// arguments dropped.
func typeName(v any) string {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	n := t.Name()
	if i := strings.IndexByte(n, '['); i >= 0 {
		n = n[:i]
	}
	return n
}
