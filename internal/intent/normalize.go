package intent

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// minTokenRunes is the shortest token the token pass considers.
const minTokenRunes = 3

//nolint:gochecknoglobals // Stateless replacer, safe for concurrent use.
var apostrophes = strings.NewReplacer("’", "'", "‘", "'", "`", "'", "ʼ", "'")

// normalize folds s to NFC lower case with straight apostrophes and single spaces.
// A new Caser is built per call because cases.Caser is not safe for concurrent use.
func normalize(s string) string {
	s = norm.NFC.String(s)
	s = cases.Lower(language.Und).String(s)
	s = apostrophes.Replace(s)

	return strings.Join(strings.Fields(s), " ")
}

// tokenize splits on whitespace and punctuation.
func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
}

// words splits on whitespace and punctuation but keeps apostrophes, so that
// contractions such as "can't" survive as one word.
func words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		if r == '\'' {
			return false
		}

		return unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
}

// short reports whether s is too short to be matched as a fragment.
func short(s string) bool {
	return utf8.RuneCountInString(s) < minTokenRunes
}

// normalizeAll normalizes and deduplicates a keyword list, dropping empties.
func normalizeAll(list []string) []string {
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))

	for _, item := range list {
		n := normalize(item)
		if n == "" {
			continue
		}

		if _, ok := seen[n]; ok {
			continue
		}

		seen[n] = struct{}{}
		out = append(out, n)
	}

	return out
}
