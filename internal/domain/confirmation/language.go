package confirmation

import "strings"

// Language identifies the voice language of a session.
type Language string

const (
	// English is the default language and the fallback for every lookup.
	English Language = "english"
	// Hinglish is Hindi, usually transliterated into Latin script by recognizers.
	Hinglish Language = "hinglish"
	// Marathi is Marathi in Devanagari or Latin transliteration.
	Marathi Language = "marathi"
)

// DefaultLanguage is used when settings carry no or an unknown language.
const DefaultLanguage = English

// languageAliases maps locale codes and legacy names to a Language.
//
//nolint:gochecknoglobals // Read-only lookup table.
var languageAliases = map[string]Language{
	"english":  English,
	"en":       English,
	"en-us":    English,
	"en-in":    English,
	"hinglish": Hinglish,
	"hindi":    Hinglish,
	"hi":       Hinglish,
	"hi-in":    Hinglish,
	"marathi":  Marathi,
	"mr":       Marathi,
	"mr-in":    Marathi,
}

// ParseLanguage normalizes a language name or locale code.
// It reports false and returns DefaultLanguage for unknown input.
func ParseLanguage(s string) (Language, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, "_", "-")

	if lang, ok := languageAliases[key]; ok {
		return lang, true
	}

	return DefaultLanguage, false
}

// Locale returns the recognizer locale used for the language.
func (l Language) Locale() string {
	switch l {
	case Hinglish:
		return "hi-IN"
	case Marathi:
		return "mr-IN"
	default:
		return "en-US"
	}
}

// String implements fmt.Stringer.
func (l Language) String() string {
	return string(l)
}
