package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/guardian/internal/domain/confirmation"
	"github.com/oshokin/guardian/internal/intent"
)

// TestValidate checks required fields and format validations for Config.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Missing socket.
	err := Validate(new(Config))
	require.ErrorIs(t, err, errServerSocketRequired)

	// Bad socket.
	err = Validate(&Config{ServerAddress: "bad:address"})
	require.Error(t, err)

	// Defaults are filled in.
	cfg := &Config{ServerAddress: "127.0.0.1:0"}
	require.NoError(t, Validate(cfg))
	require.Equal(t, DefaultTimeout, cfg.Timeout)
	require.Equal(t, DefaultLogLevel, cfg.LogLevel)
	require.Equal(t, "console", cfg.LogFormat)
	require.Equal(t, AuditDriverFile, cfg.Audit.Driver)
	require.Equal(t, DefaultAuditFilename, cfg.Audit.Path)

	cfg = &Config{ServerAddress: "127.0.0.1:0", Audit: Audit{Driver: AuditDriverSQLite}}
	require.NoError(t, Validate(cfg))
	require.Equal(t, DefaultAuditDatabase, cfg.Audit.Path)
}

// TestValidate_Rejects checks every section reports its own problems.
func TestValidate_Rejects(t *testing.T) {
	t.Parallel()

	cases := map[string]Config{
		"log level":      {LogLevel: "loud"},
		"log format":     {LogFormat: "xml"},
		"metrics":        {MetricsAddress: "nowhere"},
		"attempts":       {Engine: Engine{MaxAttempts: -1}},
		"listen timeout": {Engine: Engine{ListenTimeout: -time.Second}},
		"language":       {Settings: Settings{VoiceLanguage: "klingon"}},
		"location":       {Settings: Settings{LocationURL: "not a url"}},
		"audit driver":   {Audit: Audit{Driver: "postgres"}},
		"phrase lang":    {Phrases: map[string]map[string]string{"elvish": {"take_care": "x"}}},
		"phrase key":     {Phrases: map[string]map[string]string{"en": {"goodbye": "x"}}},
		"keyword lang":   {Keywords: map[string]intent.Keywords{"elvish": {}}},
	}

	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cfg.ServerAddress = "127.0.0.1:0"
			require.ErrorIs(t, Validate(&cfg), ErrInvalid)
		})
	}
}

// TestSettings_Language checks the legacy field and fallbacks.
func TestSettings_Language(t *testing.T) {
	t.Parallel()

	require.Equal(t, domain.Hinglish, Settings{VoiceLanguage: "hi-IN"}.Language())
	require.Equal(t, domain.Marathi, Settings{LanguagePreference: "marathi"}.Language())
	require.Equal(t, domain.English, Settings{LanguagePreference: "tamil"}.Language())

	enabled, disabled := true, false
	require.True(t, Settings{}.VoiceConfirmationEnabled())
	require.True(t, Settings{VoiceConfirmation: &enabled}.VoiceConfirmationEnabled())
	require.False(t, Settings{VoiceConfirmation: &disabled}.VoiceConfirmationEnabled())
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	disabled := false

	cfg := &Config{
		ServerAddress: "127.0.0.1:50051",
		Engine:        Engine{MaxAttempts: 3, ListenTimeout: 8 * time.Second},
		Settings: Settings{
			VoiceLanguage:     "marathi",
			EmergencyContact:  "+911234567890",
			VoiceConfirmation: &disabled,
			LocationURL:       "https://maps.example/home",
		},
		Phrases:  map[string]map[string]string{"en": {"take_care": "Stay safe"}},
		Keywords: map[string]intent.Keywords{"english": {Affirmative: []string{"right as rain"}}},
	}
	cfg.Commands.Message = []string{"sms-send", "{contact}", "{message}"}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.ServerAddress, loaded.ServerAddress)
	require.Equal(t, 8*time.Second, loaded.Engine.ListenTimeout)
	require.Equal(t, domain.Marathi, loaded.Settings.Language())
	require.False(t, loaded.Settings.VoiceConfirmationEnabled())
	require.Equal(t, []string{"sms-send", "{contact}", "{message}"}, loaded.Commands.Message)
	require.Equal(t, "Stay safe", loaded.Phrases["en"]["take_care"])
	require.Len(t, loaded.KeywordOptions(), 1)

	// File exists with restricted permissions.
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(DefaultFilePermissions), info.Mode().Perm())
}

// TestLoad_Handwritten checks durations and the legacy language field parse from YAML.
func TestLoad_Handwritten(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), DefaultConfigFilename)
	contents := []byte(`server_addr: 127.0.0.1:50052
engine:
  listen_timeout: 15s
  retry_pause: 1500ms
settings:
  language_preference: hinglish
  emergency_contact: "112"
audit:
  driver: sqlite
commands:
  siren: [paplay, /usr/share/sounds/alarm.oga]
  timeout: 10s
`)
	require.NoError(t, os.WriteFile(path, contents, DefaultFilePermissions))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 15*time.Second, cfg.Engine.ListenTimeout)
	require.Equal(t, 1500*time.Millisecond, cfg.Engine.RetryPause)
	require.Equal(t, domain.Hinglish, cfg.Settings.Language())
	require.Equal(t, "112", cfg.Settings.EmergencyContact)
	require.Equal(t, DefaultAuditDatabase, cfg.Audit.Path)
	require.Equal(t, []string{"paplay", "/usr/share/sounds/alarm.oga"}, cfg.Commands.Siren)
	require.Equal(t, 10*time.Second, cfg.Commands.Timeout)
}

// TestLoadMissing checks a missing file surfaces an error.
func TestLoadMissing(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
