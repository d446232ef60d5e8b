package i18n

import "testing"

var codes = []string{
	"unsupported_schema", "depth_exceeded", "partial_inference",
	"invalid_type", "invalid_value", "required", "duplicate_key", "parse_error",
}

func TestTranslator_DefaultAndJapanese(t *testing.T) {
	defer SetLanguage("en")

	en := map[string]string{}
	for _, c := range codes {
		msg := T(c, nil)
		if msg == c || msg == "" {
			t.Fatalf("expected a human message for %s, got %q", c, msg)
		}
		en[c] = msg
	}

	SetLanguage("ja")
	for _, c := range codes {
		if msg := T(c, nil); msg == en[c] || msg == c {
			t.Fatalf("expected japanese message for %s, got %q", c, msg)
		}
	}
}

func TestTranslator_Data(t *testing.T) {
	if got := T("unsupported_schema", map[string]string{"type": "main.Empty"}); got != "no shape could be inferred for main.Empty" {
		t.Fatalf("unsupported_schema = %q", got)
	}
	if got := T("invalid_type", map[string]string{"expected": "integer"}); got != "invalid type: expected integer" {
		t.Fatalf("invalid_type = %q", got)
	}
	if got := T("no_such_code", nil); got != "no_such_code" {
		t.Fatalf("unknown code = %q", got)
	}
}

type upper struct{}

func (upper) Message(code string, _ map[string]string) string { return "X:" + code }

func TestSetTranslator(t *testing.T) {
	SetTranslator(upper{})
	defer SetTranslator(nil)
	if got := T("required", nil); got != "X:required" {
		t.Fatalf("custom translator = %q", got)
	}
}
