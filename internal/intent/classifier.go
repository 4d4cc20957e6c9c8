package intent

import (
	"strings"
	"unicode/utf8"

	"github.com/antzucaro/matchr"

	domain "github.com/oshokin/guardian/internal/domain/confirmation"
)

// defaultFuzzyThreshold is the Jaro-Winkler score above which a garbled word
// counts as a negation word, e.g. "nahii" for "nahi".
const defaultFuzzyThreshold = 0.92

// minFuzzyRunes is the shortest word compared fuzzily against negation words.
const minFuzzyRunes = 4

// Pass names the step that decided a verdict.
type Pass string

const (
	// PassNone means nothing matched.
	PassNone Pass = "none"
	// PassPhrase means a whole affirmative keyword was found.
	PassPhrase Pass = "phrase"
	// PassToken means a token partially matched an affirmative keyword.
	PassToken Pass = "token"
	// PassNegation means a negating pattern reversed the match.
	PassNegation Pass = "negation"
	// PassDistress means a distress term reversed the match.
	PassDistress Pass = "distress"
)

// Verdict explains a classification.
type Verdict struct {
	// Intent is the classification result.
	Intent domain.Intent
	// Keyword is the vocabulary entry that decided the verdict.
	Keyword string
	// Candidate is the normalized utterance the keyword was found in.
	Candidate string
	// Pass is the step that produced the verdict.
	Pass Pass
}

// vocabulary is the normalized, ready-to-match form of Keywords.
type vocabulary struct {
	phrases  []string
	singles  []string
	negation []string
	patterns []string
	distress []string
}

// Classifier maps recognized candidates to an Intent. It is read-only after
// construction and safe for concurrent use.
type Classifier struct {
	vocab          map[domain.Language]*vocabulary
	fuzzyThreshold float64
}

// options collects constructor settings.
type options struct {
	extra          map[domain.Language]Keywords
	fuzzyThreshold float64
}

// Option configures a Classifier.
type Option func(*options)

// WithKeywords extends the built-in vocabulary of lang.
func WithKeywords(lang domain.Language, kw Keywords) Option {
	return func(o *options) {
		o.extra[lang] = o.extra[lang].Extend(kw)
	}
}

// WithFuzzyThreshold overrides the Jaro-Winkler threshold for negation words.
func WithFuzzyThreshold(threshold float64) Option {
	return func(o *options) {
		if threshold > 0 && threshold <= 1 {
			o.fuzzyThreshold = threshold
		}
	}
}

// New builds a classifier over the default vocabulary plus any extensions.
func New(opts ...Option) *Classifier {
	o := &options{
		extra:          make(map[domain.Language]Keywords),
		fuzzyThreshold: defaultFuzzyThreshold,
	}

	for _, opt := range opts {
		opt(o)
	}

	sets := DefaultKeywords()
	for lang, kw := range o.extra {
		sets[lang] = sets[lang].Extend(kw)
	}

	c := &Classifier{
		vocab:          make(map[domain.Language]*vocabulary, len(sets)),
		fuzzyThreshold: o.fuzzyThreshold,
	}

	for lang, kw := range sets {
		c.vocab[lang] = compile(kw)
	}

	return c
}

// compile normalizes a keyword set.
func compile(kw Keywords) *vocabulary {
	v := &vocabulary{
		phrases:  normalizeAll(kw.Affirmative),
		negation: normalizeAll(kw.Negation),
		patterns: normalizeAll(kw.Patterns),
		distress: normalizeAll(kw.Distress),
	}

	for _, phrase := range v.phrases {
		if len(tokenize(phrase)) == 1 && !short(phrase) {
			v.singles = append(v.singles, phrase)
		}
	}

	return v
}

// Classify returns the intent of candidates spoken in lang.
func (c *Classifier) Classify(candidates []string, lang domain.Language) domain.Intent {
	return c.Evaluate(candidates, lang).Intent
}

// Evaluate classifies candidates and explains which keyword decided.
func (c *Classifier) Evaluate(candidates []string, lang domain.Language) Verdict {
	v, ok := c.vocab[lang]
	if !ok {
		v = c.vocab[domain.DefaultLanguage]
	}

	normalized := make([]string, 0, len(candidates))

	for _, candidate := range candidates {
		if n := normalize(candidate); n != "" {
			normalized = append(normalized, n)
		}
	}

	verdict, found := matchPhrase(normalized, v)
	if !found {
		verdict, found = matchToken(normalized, v)
	}

	if !found {
		return Verdict{Intent: domain.IntentUnknown, Pass: PassNone}
	}

	if keyword, candidate, negated := c.negated(normalized, v); negated {
		return Verdict{Intent: domain.IntentNegative, Keyword: keyword, Candidate: candidate, Pass: PassNegation}
	}

	if keyword, candidate, distressed := distressed(normalized, v); distressed {
		return Verdict{Intent: domain.IntentNegative, Keyword: keyword, Candidate: candidate, Pass: PassDistress}
	}

	return verdict
}

// matchPhrase finds the first candidate containing an affirmative keyword.
func matchPhrase(candidates []string, v *vocabulary) (Verdict, bool) {
	for _, candidate := range candidates {
		tokens := tokenize(candidate)

		for _, keyword := range v.phrases {
			if containsKeyword(candidate, tokens, keyword) {
				return Verdict{
					Intent:    domain.IntentAffirmative,
					Keyword:   keyword,
					Candidate: candidate,
					Pass:      PassPhrase,
				}, true
			}
		}
	}

	return Verdict{}, false
}

// matchToken finds the first token that partially matches a single-word keyword.
func matchToken(candidates []string, v *vocabulary) (Verdict, bool) {
	for _, candidate := range candidates {
		for _, token := range tokenize(candidate) {
			if short(token) {
				continue
			}

			for _, keyword := range v.singles {
				if strings.Contains(keyword, token) || strings.Contains(token, keyword) {
					return Verdict{
						Intent:    domain.IntentAffirmative,
						Keyword:   keyword,
						Candidate: candidate,
						Pass:      PassToken,
					}, true
				}
			}
		}
	}

	return Verdict{}, false
}

// negated reports a candidate holding both a negation word and a negating pattern.
func (c *Classifier) negated(candidates []string, v *vocabulary) (string, string, bool) {
	for _, candidate := range candidates {
		if !c.hasNegation(words(candidate), v.negation) {
			continue
		}

		for _, pattern := range v.patterns {
			if strings.Contains(candidate, pattern) {
				return pattern, candidate, true
			}
		}
	}

	return "", "", false
}

// hasNegation matches words exactly, or fuzzily when both sides are long enough.
func (c *Classifier) hasNegation(ws, negation []string) bool {
	for _, w := range ws {
		for _, n := range negation {
			if w == n {
				return true
			}

			if utf8.RuneCountInString(w) < minFuzzyRunes || utf8.RuneCountInString(n) < minFuzzyRunes {
				continue
			}

			if matchr.JaroWinkler(w, n, false) >= c.fuzzyThreshold {
				return true
			}
		}
	}

	return false
}

// distressed reports the first candidate mentioning a distress term.
func distressed(candidates []string, v *vocabulary) (string, string, bool) {
	for _, candidate := range candidates {
		tokens := tokenize(candidate)

		for _, term := range v.distress {
			if containsKeyword(candidate, tokens, term) {
				return term, candidate, true
			}
		}
	}

	return "", "", false
}

// containsKeyword matches short keywords as whole tokens and longer ones as substrings.
func containsKeyword(candidate string, tokens []string, keyword string) bool {
	if !short(keyword) {
		return candidate == keyword || strings.Contains(candidate, keyword)
	}

	for _, token := range tokens {
		if token == keyword {
			return true
		}
	}

	return false
}
