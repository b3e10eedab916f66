package i18n

import "strings"

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "expected", "path" or "component").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg := t.base(code)
	if c := data["component"]; c != "" {
		switch t.lang {
		case "ja":
			msg += "（" + c + "）"
		default:
			msg += " in " + c
		}
	}
	if e := data["expected"]; e != "" {
		switch t.lang {
		case "ja":
			msg += ": " + e + " が必要です"
		default:
			msg += ": expected " + e
		}
	}
	return msg
}

func (t dictTranslator) base(code string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "invalid_type":
			return "型が不正です"
		case "required":
			return "必須プロパティが不足しています"
		case "invalid_enum":
			return "許可されていない値です"
		case "duplicate_key":
			return "キーが重複しています"
		case "parse_error":
			return "解析エラー"
		case "invalid_key":
			return "存在しないキーです"
		case "shape_mismatch":
			return "異なる基底シェイプです"
		case "not_declared":
			return "宣言されていないフィールドです"
		}
	default: // "en"
		switch code {
		case "invalid_type":
			return "invalid type"
		case "required":
			return "required property missing"
		case "invalid_enum":
			return "value not allowed"
		case "duplicate_key":
			return "duplicate key"
		case "parse_error":
			return "parse error"
		case "invalid_key":
			return "invalid key"
		case "shape_mismatch":
			return "base shape mismatch"
		case "not_declared":
			return "field not declared"
		}
	}
	return code
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	lang = strings.ToLower(lang)
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
