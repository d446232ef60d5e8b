package gbnf

import (
	"bytes"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
)

// Literal renders s as a double-quoted grammar literal. Backslash, quote and
// the common control characters get their short escapes; any other byte below
// 0x20 and DEL use \xHH.
func Literal(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if c < 0x20 || c == 0x7F {
				fmt.Fprintf(&b, `\x%02X`, c)
				continue
			}
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// JSONString renders name as a JSON string token (quotes included). HTML
// characters are left alone so the key text stays what a model would write.
func JSONString(name string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(name); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// KeyLiteral is the grammar literal matching the JSON text of key name. The
// name is JSON-escaped first and the result is then escaped as a grammar
// literal; these are independent layers. The encoder writes U+2028 and U+2029
// as \u escapes, so those two runes become an alternation that also accepts
// the raw character.
func KeyLiteral(name string) (string, error) {
	js, err := JSONString(name)
	if err != nil {
		return "", fmt.Errorf("gbnf: quoting key %q: %w", name, err)
	}
	var parts []string
	start := 0
	for i := 0; i < len(js); i++ {
		if js[i] != '\\' {
			continue
		}
		if i+6 <= len(js) && (js[i+1:i+6] == "u2028" || js[i+1:i+6] == "u2029") {
			if i > start {
				parts = append(parts, Literal(js[start:i]))
			}
			raw := "\u2028"
			if js[i+5] == '9' {
				raw = "\u2029"
			}
			parts = append(parts, "( "+Literal(raw)+" | "+Literal(js[i:i+6])+" )")
			start = i + 6
			i += 5
			continue
		}
		i++
	}
	if start == 0 {
		return Literal(js), nil
	}
	if start < len(js) {
		parts = append(parts, Literal(js[start:]))
	}
	return strings.Join(parts, " "), nil
}
