package escalation

import (
	"strings"
	"unicode"
)

const (
	// minPhoneDigits admits short emergency numbers such as 112.
	minPhoneDigits = 3
	// maxPhoneDigits is the E.164 limit.
	maxPhoneDigits = 15
)

const (
	alertHeadline = "EMERGENCY ALERT: A fall has been detected by Guardian Fall Detector."
	alertDetails  = "The user was unable to confirm they are okay. Please check on them immediately."
	alertHindi    = "आपातकालीन अलर्ट: गिरने का पता चला है। उपयोगकर्ता यह पुष्टि करने में असमर्थ थे कि वे ठीक हैं। कृपया तुरंत उनकी जाँच करें।"
)

// ComposeMessage builds the alert text sent to the contact.
// The location line is added only when locationURL is set.
func ComposeMessage(locationURL string) string {
	lines := []string{alertHeadline, alertDetails, alertHindi}

	if locationURL = strings.TrimSpace(locationURL); locationURL != "" {
		lines = append(lines, "Location: "+locationURL)
	}

	return strings.Join(lines, "\n")
}

// ValidContact reports whether contact looks like a dialable phone number:
// an optional leading "+", digits and the usual separators.
func ValidContact(contact string) bool {
	contact = strings.TrimSpace(contact)
	contact = strings.TrimPrefix(contact, "+")

	digits := 0

	for _, r := range contact {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '-' || r == '(' || r == ')' || r == '.' || unicode.IsSpace(r):
		default:
			return false
		}
	}

	return digits >= minPhoneDigits && digits <= maxPhoneDigits
}
