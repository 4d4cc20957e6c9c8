// Package phrase holds the spoken prompts of the confirmation flow keyed by
// language. Lookups are pure and fall back to English.
package phrase

import (
	domain "github.com/oshokin/guardian/internal/domain/confirmation"
)

// Key names a fixed prompt.
type Key string

const (
	// FallDetected asks the user whether they are fine.
	FallDetected Key = "fall_detected"
	// ConfirmationReceived acknowledges a positive answer.
	ConfirmationReceived Key = "confirmation_received"
	// NoResponse announces a retry.
	NoResponse Key = "no_response"
	// EmergencyTriggered announces the escalation.
	EmergencyTriggered Key = "emergency_triggered"
	// TakeCare closes a resolved session.
	TakeCare Key = "take_care"
)

// Keys lists every prompt in playback order of a full session.
func Keys() []Key {
	return []Key{FallDetected, NoResponse, ConfirmationReceived, TakeCare, EmergencyTriggered}
}

// Catalog maps language to prompt text.
type Catalog struct {
	phrases map[domain.Language]map[Key]string
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return &Catalog{
		phrases: map[domain.Language]map[Key]string{
			domain.English: {
				FallDetected:         "We detected a fall. Are you okay?",
				ConfirmationReceived: "We received your confirmation. Take care.",
				NoResponse:           "No response detected. Trying again.",
				EmergencyTriggered:   "Triggering emergency alert.",
				TakeCare:             "Please take care of yourself.",
			},
			domain.Hinglish: {
				FallDetected:         "Kya aap theek hai?",
				ConfirmationReceived: "Aapke confirmation mil gaya hai. Apna dhyan rakhiye.",
				NoResponse:           "Koi jawab nahi mila. Dobara puchhte hain.",
				EmergencyTriggered:   "Emergency alert bhej rahe hain.",
				TakeCare:             "Kripya apna dhyan rakhiye.",
			},
			domain.Marathi: {
				FallDetected:         "Tumhi theek aahat ka?",
				ConfirmationReceived: "Tumcha confirmation milala aahe. Swataachi kaaljee ghya.",
				NoResponse:           "Uttara milala nahi. Punha prayatna karto.",
				EmergencyTriggered:   "Emergency alert pathavat aahe.",
				TakeCare:             "Krupaya swataachi kaaljee ghya.",
			},
		},
	}
}

// Lookup returns the text for key in lang. Missing pairs fall back to
// English, and an unknown key to the key itself.
func (c *Catalog) Lookup(key Key, lang domain.Language) string {
	if text, ok := c.phrases[lang][key]; ok && text != "" {
		return text
	}

	if text, ok := c.phrases[domain.DefaultLanguage][key]; ok && text != "" {
		return text
	}

	return string(key)
}

// Merge returns a new catalog with overrides applied on top of c.
// Override languages are parsed with domain.ParseLanguage; unknown language
// names are skipped and reported.
func (c *Catalog) Merge(overrides map[string]map[string]string) (*Catalog, []string) {
	merged := &Catalog{
		phrases: make(map[domain.Language]map[Key]string, len(c.phrases)),
	}

	for lang, texts := range c.phrases {
		copied := make(map[Key]string, len(texts))
		for k, v := range texts {
			copied[k] = v
		}

		merged.phrases[lang] = copied
	}

	var skipped []string

	for name, texts := range overrides {
		lang, ok := domain.ParseLanguage(name)
		if !ok {
			skipped = append(skipped, name)
			continue
		}

		if merged.phrases[lang] == nil {
			merged.phrases[lang] = make(map[Key]string, len(texts))
		}

		for k, v := range texts {
			merged.phrases[lang][Key(k)] = v
		}
	}

	return merged, skipped
}
