package grammar

import "sort"

// Accepts reports whether the whole input is derivable from rule. Unknown
// rules accept nothing.
func (g *Grammar) Accepts(rule, input string) bool {
	if !g.Has(rule) {
		return false
	}
	m := &matcher{g: g, in: []rune(input), memo: map[memoKey]*memoEntry{}}
	for _, end := range m.rule(rule, 0) {
		if end == len(m.in) {
			return true
		}
	}
	return false
}

// Prefixes reports the lengths (in runes) of every prefix of input derivable
// from rule, in increasing order.
func (g *Grammar) Prefixes(rule, input string) []int {
	if !g.Has(rule) {
		return nil
	}
	m := &matcher{g: g, in: []rune(input), memo: map[memoKey]*memoEntry{}}
	return m.rule(rule, 0)
}

type memoKey struct {
	rule string
	pos  int
}

type memoEntry struct {
	ends []int
}

// matcher evaluates expressions over sets of input positions. Each rule is
// evaluated at most once per start offset; a rule re-entered at the same
// offset while still being evaluated (left recursion) contributes nothing.
type matcher struct {
	g    *Grammar
	in   []rune
	memo map[memoKey]*memoEntry
}

func (m *matcher) rule(name string, pos int) []int {
	k := memoKey{rule: name, pos: pos}
	if e, ok := m.memo[k]; ok {
		return e.ends
	}
	e := &memoEntry{}
	m.memo[k] = e
	e.ends = m.eval(m.g.rules[name], []int{pos})
	return e.ends
}

func (m *matcher) eval(e *expr, starts []int) []int {
	if len(starts) == 0 {
		return nil
	}
	switch e.kind {
	case exprLiteral:
		var out []int
		for _, s := range starts {
			if m.hasLiteral(s, e.lit) {
				out = append(out, s+len(e.lit))
			}
		}
		return normalize(out)
	case exprClass:
		var out []int
		for _, s := range starts {
			if s < len(m.in) && e.class.matches(m.in[s]) {
				out = append(out, s+1)
			}
		}
		return out
	case exprAny:
		var out []int
		for _, s := range starts {
			if s < len(m.in) {
				out = append(out, s+1)
			}
		}
		return out
	case exprRef:
		var out []int
		for _, s := range starts {
			out = append(out, m.rule(e.ref, s)...)
		}
		return normalize(out)
	case exprSeq:
		cur := starts
		for _, it := range e.items {
			cur = m.eval(it, cur)
			if len(cur) == 0 {
				return nil
			}
		}
		return cur
	case exprAlt:
		var out []int
		for _, it := range e.items {
			out = append(out, m.eval(it, starts)...)
		}
		return normalize(out)
	case exprRepeat:
		return m.repeat(e, starts)
	}
	return nil
}

func (m *matcher) repeat(e *expr, starts []int) []int {
	item := e.items[0]
	cur := starts
	for i := 0; i < e.min; i++ {
		cur = m.eval(item, cur)
		if len(cur) == 0 {
			return nil
		}
	}
	if e.max == e.min {
		return cur
	}
	seen := make(map[int]struct{}, len(cur))
	for _, p := range cur {
		seen[p] = struct{}{}
	}
	out := append([]int(nil), cur...)
	frontier := cur
	for i := e.min; e.max < 0 || i < e.max; i++ {
		var fresh []int
		for _, p := range m.eval(item, frontier) {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			fresh = append(fresh, p)
		}
		if len(fresh) == 0 {
			break
		}
		out = append(out, fresh...)
		frontier = fresh
	}
	return normalize(out)
}

func (m *matcher) hasLiteral(at int, lit []rune) bool {
	if at+len(lit) > len(m.in) {
		return false
	}
	for i, r := range lit {
		if m.in[at+i] != r {
			return false
		}
	}
	return true
}

// normalize sorts and de-duplicates a position set in place.
func normalize(ps []int) []int {
	if len(ps) < 2 {
		return ps
	}
	sort.Ints(ps)
	out := ps[:1]
	for _, p := range ps[1:] {
		if p != out[len(out)-1] {
			out = append(out, p)
		}
	}
	return out
}
