package intent

import (
	domain "github.com/oshokin/guardian/internal/domain/confirmation"
)

// Keywords is the vocabulary of one language.
type Keywords struct {
	// Affirmative words and phrases mean "I am fine".
	Affirmative []string `yaml:"affirmative"`
	// Negation words may reverse an affirmative phrase.
	Negation []string `yaml:"negation"`
	// Patterns are negating phrases such as "not okay".
	Patterns []string `yaml:"patterns"`
	// Distress terms always turn an affirmative answer into a negative one.
	Distress []string `yaml:"distress"`
}

// Extend returns k with the entries of other appended.
func (k Keywords) Extend(other Keywords) Keywords {
	return Keywords{
		Affirmative: append(append([]string(nil), k.Affirmative...), other.Affirmative...),
		Negation:    append(append([]string(nil), k.Negation...), other.Negation...),
		Patterns:    append(append([]string(nil), k.Patterns...), other.Patterns...),
		Distress:    append(append([]string(nil), k.Distress...), other.Distress...),
	}
}

// englishNegatedPatterns are shared by every language because recognizers
// often fall back to English transcriptions.
func englishNegatedPatterns() []string {
	return []string{
		"not ok", "not fine", "not good", "not alright", "not all right",
		"not well", "not safe", "not better", "not really", "no i'm not",
		"can't get up", "cannot get up", "can not get up",
		"can't move", "cannot move", "don't feel good", "don't feel well",
	}
}

// DefaultKeywords returns the built-in vocabulary.
func DefaultKeywords() map[domain.Language]Keywords {
	return map[domain.Language]Keywords{
		domain.English: {
			Affirmative: []string{
				"yes", "yeah", "yep", "ok", "okay", "fine", "alright", "all right",
				"good", "better", "safe", "hmm",
				"i am fine", "i'm fine", "i am okay", "i'm okay", "i am good", "i'm good",
				"i'm safe", "i'm alright", "doing fine",
			},
			Negation: []string{"no", "not", "don't", "dont", "cant", "can't", "won't", "cannot", "never"},
			Patterns: englishNegatedPatterns(),
			Distress: []string{
				"help", "hurt", "pain", "injur", "bleed", "ambulance", "doctor",
				"emergency", "broke", "unsafe", "dizzy", "can't breathe",
			},
		},
		domain.Hinglish: {
			Affirmative: []string{
				"haan", "ha", "ji", "jee", "theek", "thik", "bilkul", "accha", "achha",
				"yes", "ok", "okay", "fine",
				"haan ji", "ji haan", "theek hai", "thik hai", "thik hu", "theek hoon",
				"main theek hoon", "mai thik hu",
				"हां", "हाँ", "हा", "जी", "ठीक", "थीक", "ठीक है", "मैं ठीक हूँ",
			},
			Negation: []string{"nahi", "nahin", "nai", "na", "mat", "no", "नहीं", "नही", "ना"},
			Patterns: append([]string{
				"theek nahi", "thik nahi", "theek nahin", "thik nahin",
				"nahi theek", "nahi thik", "accha nahi", "achha nahi",
				"ठीक नहीं", "ठीक नही", "नहीं ठीक",
			}, englishNegatedPatterns()...),
			Distress: []string{
				"bachao", "madad", "dard", "chot", "khoon", "uth nahi", "nahi uth",
				"help", "hurt", "pain", "ambulance", "doctor",
				"बचाओ", "मदद", "दर्द", "चोट",
			},
		},
		domain.Marathi: {
			Affirmative: []string{
				"ho", "hoy", "barobar", "bara", "thik", "theek", "yes", "ok", "okay",
				"thik ahe", "thik aahe", "bara ahe", "mi thik ahe", "ho barobar",
				"mala kahi jhala nahi",
				"हो", "होय", "बरं", "बरा", "ठीक", "ठीक आहे", "मी ठीक आहे", "बरं आहे",
			},
			Negation: []string{"nahi", "naahi", "nako", "no", "नाही", "नको"},
			Patterns: append([]string{
				"thik nahi", "bara nahi", "theek nahi", "thik nahi ahe",
				"ठीक नाही", "बरं नाही", "बरा नाही",
			}, englishNegatedPatterns()...),
			Distress: []string{
				"madat", "vachva", "dukhat", "dukhtay", "lagla",
				"help", "hurt", "pain", "ambulance", "doctor",
				"मदत", "वाचवा", "दुखत", "लागलं",
			},
		},
	}
}
