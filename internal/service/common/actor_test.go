//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestDetectSource ensures hostname and username are part of the source id.
func TestDetectSource(t *testing.T) {
	t.Parallel()

	source, err := DetectSource()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(source, "ctl:"))
	require.Contains(t, source, "@")
}
