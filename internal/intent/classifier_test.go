package intent

import (
	"testing"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/guardian/internal/domain/confirmation"
)

// TestClassify_Table covers the affirmative, negative and unknown paths per language.
func TestClassify_Table(t *testing.T) {
	t.Parallel()

	c := New()

	cases := []struct {
		name       string
		candidates []string
		lang       domain.Language
		want       domain.Intent
	}{
		{"plain yes", []string{"yes I am fine"}, domain.English, domain.IntentAffirmative},
		{"not okay", []string{"I am not okay"}, domain.English, domain.IntentNegative},
		{"not fine uppercase", []string{"NOT FINE"}, domain.English, domain.IntentNegative},
		{"cannot get up", []string{"I can't get up, okay?"}, domain.English, domain.IntentNegative},
		{"curly apostrophe", []string{"I’m okay"}, domain.English, domain.IntentAffirmative},
		{"distress wins", []string{"okay just help me please"}, domain.English, domain.IntentNegative},
		{"hurt is unknown", []string{"I am hurt"}, domain.English, domain.IntentUnknown},
		{"silence", nil, domain.English, domain.IntentUnknown},
		{"blank candidates", []string{"", "   "}, domain.English, domain.IntentUnknown},
		{"short keyword as token", []string{"ok"}, domain.English, domain.IntentAffirmative},
		{"short keyword inside word", []string{"broken"}, domain.English, domain.IntentUnknown},
		{"garbled token", []string{"oka"}, domain.English, domain.IntentAffirmative},
		{"hinglish theek", []string{"main thik hoon"}, domain.Hinglish, domain.IntentAffirmative},
		{"hinglish devanagari", []string{"हाँ मैं ठीक हूँ"}, domain.Hinglish, domain.IntentAffirmative},
		{"hinglish negated", []string{"theek nahi hoon"}, domain.Hinglish, domain.IntentNegative},
		{"hinglish devanagari negated", []string{"मैं ठीक नहीं हूँ"}, domain.Hinglish, domain.IntentNegative},
		{"hinglish partial", []string{"thee"}, domain.Hinglish, domain.IntentAffirmative},
		{"hinglish ha not in what", []string{"what happened"}, domain.Hinglish, domain.IntentUnknown},
		{"hinglish plain no", []string{"nahi"}, domain.Hinglish, domain.IntentUnknown},
		{"hinglish distress", []string{"haan bachao"}, domain.Hinglish, domain.IntentNegative},
		{"marathi hoy", []string{"होय"}, domain.Marathi, domain.IntentAffirmative},
		{"marathi nothing happened", []string{"mala kahi jhala nahi"}, domain.Marathi, domain.IntentAffirmative},
		{"marathi negated", []string{"ठीक नाही"}, domain.Marathi, domain.IntentNegative},
		{"unknown language uses english", []string{"yeah"}, domain.Language("klingon"), domain.IntentAffirmative},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.want, c.Classify(tc.candidates, tc.lang))
		})
	}
}

// TestClassify_Idempotent verifies that classification is a pure function.
func TestClassify_Idempotent(t *testing.T) {
	t.Parallel()

	c := New()
	candidates := []string{"I am not okay", "I am okay"}

	first := c.Evaluate(candidates, domain.English)
	second := c.Evaluate(candidates, domain.English)

	require.Equal(t, first, second)
	require.Equal(t, domain.IntentNegative, first.Intent)
	require.Equal(t, PassNegation, first.Pass)
	require.Equal(t, []string{"I am not okay", "I am okay"}, candidates)
}

// TestEvaluate_RankingPreserved verifies the best-ranked matching candidate is reported.
func TestEvaluate_RankingPreserved(t *testing.T) {
	t.Parallel()

	v := New().Evaluate([]string{"something else", "yep fine", "yes"}, domain.English)

	require.Equal(t, domain.IntentAffirmative, v.Intent)
	require.Equal(t, "yep fine", v.Candidate)
	require.Equal(t, PassPhrase, v.Pass)

	v = New().Evaluate([]string{"thee"}, domain.Hinglish)
	require.Equal(t, PassToken, v.Pass)
	require.Equal(t, "theek", v.Keyword)
}

// TestNegation_Fuzzy verifies garbled negation words still flip the result.
func TestNegation_Fuzzy(t *testing.T) {
	t.Parallel()

	c := New()
	require.Equal(t, domain.IntentNegative, c.Classify([]string{"theek nahii"}, domain.Hinglish))

	strict := New(WithFuzzyThreshold(1))
	v := strict.Evaluate([]string{"ठीक नहींं"}, domain.Hinglish)
	require.Equal(t, domain.IntentAffirmative, v.Intent)
}

// TestWithKeywords verifies configured vocabulary extends the defaults.
func TestWithKeywords(t *testing.T) {
	t.Parallel()

	c := New(WithKeywords(domain.English, Keywords{
		Affirmative: []string{"Right as rain"},
		Distress:    []string{"Heart"},
	}))

	require.Equal(t, domain.IntentAffirmative, c.Classify([]string{"right as rain"}, domain.English))
	require.Equal(t, domain.IntentNegative, c.Classify([]string{"right as rain but my heart"}, domain.English))
	require.Equal(t, domain.IntentAffirmative, New().Classify([]string{"yes"}, domain.English))
}
