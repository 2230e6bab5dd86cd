package persona

import "strings"

type Language string

const (
	Turkish Language = "tr"
	English Language = "en"

	DefaultLanguage = Turkish
)

// ParseLanguage accepts "tr" or "en" in any case.
func ParseLanguage(s string) (Language, bool) {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case Turkish:
		return Turkish, true
	case English:
		return English, true
	}
	return "", false
}

// OrDefault maps unknown or empty values to DefaultLanguage.
func (l Language) OrDefault() Language {
	if parsed, ok := ParseLanguage(string(l)); ok {
		return parsed
	}
	return DefaultLanguage
}

// DisplayName is the language name written in the viewer's language.
func (l Language) DisplayName(viewer Language) string {
	switch {
	case l == English && viewer == Turkish:
		return "İngilizce"
	case l == English:
		return "English"
	case viewer == Turkish:
		return "Türkçe"
	default:
		return "Turkish"
	}
}

// Directive is the English name used in the model instruction suffix.
func (l Language) Directive() string {
	if l.OrDefault() == English {
		return "English"
	}
	return "Turkish"
}
