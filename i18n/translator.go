package i18n

import "sync"

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "key" or "expected").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "unsupported_schema":
			return "型の形状を推論できません"
		case "depth_exceeded":
			return "入れ子が深すぎます（再帰型の可能性があります）"
		case "partial_inference":
			return "形状の一部を推論できず null として扱いました"
		case "invalid_type":
			return "型が不正です"
		case "invalid_value":
			return "値が不正です"
		case "required":
			return "必須プロパティが不足しています"
		case "duplicate_key":
			return "キーが重複しています"
		case "parse_error":
			return "解析エラー"
		}
	default: // "en"
		switch code {
		case "unsupported_schema":
			if t := data["type"]; t != "" {
				return "no shape could be inferred for " + t
			}
			return "no shape could be inferred"
		case "depth_exceeded":
			return "nesting too deep (recursive type?)"
		case "partial_inference":
			return "shape partially inferred; defaulted to null"
		case "invalid_type":
			if e := data["expected"]; e != "" {
				return "invalid type: expected " + e
			}
			return "invalid type"
		case "invalid_value":
			return "invalid value"
		case "required":
			return "required property missing"
		case "duplicate_key":
			return "duplicate key"
		case "parse_error":
			return "parse error"
		}
	}
	return code
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	mu.Lock()
	currentTranslator = dictTranslator{lang: lang}
	mu.Unlock()
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
