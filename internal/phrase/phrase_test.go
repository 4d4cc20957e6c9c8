package phrase

import (
	"testing"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/guardian/internal/domain/confirmation"
)

// TestLookup_Fallbacks verifies the language and key fallbacks.
func TestLookup_Fallbacks(t *testing.T) {
	t.Parallel()

	c := Default()

	require.Equal(t, "Kya aap theek hai?", c.Lookup(FallDetected, domain.Hinglish))
	require.Equal(t, "We detected a fall. Are you okay?", c.Lookup(FallDetected, domain.Language("tamil")))
	require.Equal(t, "mystery", c.Lookup(Key("mystery"), domain.Marathi))

	for _, key := range Keys() {
		for _, lang := range []domain.Language{domain.English, domain.Hinglish, domain.Marathi} {
			require.NotEqual(t, string(key), c.Lookup(key, lang), "%s/%s", key, lang)
		}
	}
}

// TestMerge verifies overrides do not mutate the source catalog.
func TestMerge(t *testing.T) {
	t.Parallel()

	base := Default()

	merged, skipped := base.Merge(map[string]map[string]string{
		"en":     {"fall_detected": "Are you hurt?"},
		"hi-IN":  {"take_care": "Dhyan rakhna."},
		"elvish": {"fall_detected": "Mae govannen?"},
	})

	require.Equal(t, []string{"elvish"}, skipped)
	require.Equal(t, "Are you hurt?", merged.Lookup(FallDetected, domain.English))
	require.Equal(t, "Dhyan rakhna.", merged.Lookup(TakeCare, domain.Hinglish))
	require.Equal(t, "We detected a fall. Are you okay?", base.Lookup(FallDetected, domain.English))
}
