package confirmation

// Intent is the classified meaning of a spoken response.
type Intent int

const (
	// IntentUnknown means nothing recognizable was said. It escalates like
	// IntentNegative but is kept apart for logging.
	IntentUnknown Intent = iota
	// IntentAffirmative means the user confirmed being unharmed.
	IntentAffirmative
	// IntentNegative means the user denied being fine.
	IntentNegative
)

// String implements fmt.Stringer.
func (i Intent) String() string {
	switch i {
	case IntentAffirmative:
		return "affirmative"
	case IntentNegative:
		return "negative"
	default:
		return "unknown"
	}
}

// ParseIntent converts the String form back to an Intent.
// Unrecognized input yields IntentUnknown.
func ParseIntent(s string) Intent {
	switch s {
	case "affirmative":
		return IntentAffirmative
	case "negative":
		return IntentNegative
	default:
		return IntentUnknown
	}
}
