//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"fmt"
	"os"
	"os/user"
)

// DetectSource builds the default fall source identifier "ctl:user@host"
// used when a fall is reported by hand.
func DetectSource() (string, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return "", fmt.Errorf("hostname: %w", err)
	}

	currentUser, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("current user: %w", err)
	}

	return fmt.Sprintf("ctl:%s@%s", currentUser.Username, hostname), nil
}
