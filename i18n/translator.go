package i18n

import "strings"

// Translator retrieves localized messages for diagnostic codes.
// data provides parameters to embed in the message (for example "type" or
// "expected"); placeholders are written as {name}.
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var dictionaries = map[string]map[string]string{
	"en": {
		"unknown_attribute_name":  "type {type} does not have an attribute named {field}",
		"invalid_attribute_count": "invalid attribute count: expected {expected}, found {found}",
		"invalid_json_content":    "invalid JSON content: {detail}",
		"unexpected_json_token":   "unexpected JSON token: {token}",
		"unresolvable_type_name":  "type {type} was not found in the schema",
	},
	"ja": {
		"unknown_attribute_name":  "型 {type} には属性 {field} がありません",
		"invalid_attribute_count": "属性の数が不正です: 期待値 {expected}、実際 {found}",
		"invalid_json_content":    "JSON の内容が不正です: {detail}",
		"unexpected_json_token":   "予期しない JSON トークンです: {token}",
		"unresolvable_type_name":  "型 {type} がスキーマに見つかりません",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	tmpl, ok := dictionaries[t.lang][code]
	if !ok {
		if tmpl, ok = dictionaries["en"][code]; !ok {
			return code
		}
	}
	return expand(tmpl, data)
}

func expand(tmpl string, data map[string]string) string {
	if len(data) == 0 {
		return tmpl
	}
	pairs := make([]string, 0, 2*len(data))
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if _, ok := dictionaries[lang]; !ok {
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
