package monitor

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/guardian/internal/config"
)

func TestResolveListenAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		config    string
		override  string
		want      string
		wantError bool
	}{
		{name: "override wins", config: "127.0.0.1:7000", override: ":9000", want: ":9000"},
		{name: "config address", config: "127.0.0.1:7000", want: "127.0.0.1:7000"},
		{name: "missing", wantError: true},
		{name: "no port", config: "localhost", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := resolveListenAddress(tt.config, tt.override)
			if tt.wantError {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestConfigPath(t *testing.T) {
	t.Parallel()

	require.Equal(t, config.DefaultConfigFilename, configPath(""))
	require.Equal(t, "custom.yaml", configPath("custom.yaml"))
}

func TestRun_MissingConfig(t *testing.T) {
	t.Parallel()

	err := Run(context.Background(), &Options{
		ConfigPath: filepath.Join(t.TempDir(), "absent.yaml"),
		Force:      true,
	})
	require.Error(t, err)
}
