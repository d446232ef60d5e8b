package gbnf

import (
	"strconv"
	"strings"
)

// Sanitize maps s onto a rule-name fragment: every run of characters outside
// [A-Za-z0-9] becomes a single sep, and leading/trailing separators are
// trimmed. An empty result becomes "x".
func Sanitize(s, sep string) string {
	var b strings.Builder
	pending := false
	for _, r := range s {
		if isWordRune(r) {
			if pending && b.Len() > 0 {
				b.WriteString(sep)
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}
	if b.Len() == 0 {
		return "x"
	}
	return b.String()
}

func isWordRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// namer hands out rule names that are unique within one grammar.
type namer struct {
	sep  string
	used map[string]struct{}
}

func newNamer(sep string, reserved ...string) *namer {
	n := &namer{sep: sep, used: make(map[string]struct{}, 32)}
	for _, r := range reserved {
		n.used[r] = struct{}{}
	}
	return n
}

// join glues already-sanitized fragments with the separator.
func (n *namer) join(parts ...string) string {
	nonEmpty := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, n.sep)
}

// unique returns base, or base with the smallest numeric suffix (starting at
// 2) that has not been handed out yet.
func (n *namer) unique(base string) string {
	name := base
	for i := 2; ; i++ {
		if _, taken := n.used[name]; !taken {
			break
		}
		name = base + n.sep + strconv.Itoa(i)
	}
	n.used[name] = struct{}{}
	return name
}
