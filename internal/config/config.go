package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/guardian/internal/capability/command"
	domain "github.com/oshokin/guardian/internal/domain/confirmation"
	"github.com/oshokin/guardian/internal/intent"
	"github.com/oshokin/guardian/internal/logger"
	"github.com/oshokin/guardian/internal/phrase"
)

// Config holds the settings shared by the guardian binaries.
type Config struct {
	// ServerAddress is the gRPC address of the monitor daemon.
	ServerAddress string `yaml:"server_addr"`
	// MetricsAddress serves /metrics when set.
	MetricsAddress string `yaml:"metrics_addr,omitempty"`
	// Timeout is the duration for RPC calls made by guardian-ctl.
	Timeout time.Duration `yaml:"timeout"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// LogFormat is console or json.
	LogFormat string `yaml:"log_format"`
	// Engine holds the confirmation bounds.
	Engine Engine `yaml:"engine"`
	// Settings are the user preferences, reloaded while the daemon runs.
	Settings Settings `yaml:"settings"`
	// Audit selects where session records are stored.
	Audit Audit `yaml:"audit"`
	// Commands are the notify and alarm programs.
	Commands Commands `yaml:"commands"`
	// Phrases override prompt texts: language -> phrase key -> text.
	Phrases map[string]map[string]string `yaml:"phrases,omitempty"`
	// Keywords extend the classifier vocabulary per language.
	Keywords map[string]intent.Keywords `yaml:"keywords,omitempty"`
}

// Engine holds the confirmation engine bounds. Zero values select the engine defaults.
type Engine struct {
	MaxAttempts   int           `yaml:"max_attempts"`
	ListenTimeout time.Duration `yaml:"listen_timeout"`
	PromptTimeout time.Duration `yaml:"prompt_timeout"`
	RetryPause    time.Duration `yaml:"retry_pause"`
	ReleaseGrace  time.Duration `yaml:"release_grace"`
	// PromptDuration is how long the relay adapter treats a prompt as playing.
	PromptDuration time.Duration `yaml:"prompt_duration"`
}

// Settings are the live user preferences.
type Settings struct {
	// VoiceLanguage is the session language, e.g. "hinglish" or "hi-IN".
	VoiceLanguage string `yaml:"voice_language"`
	// LanguagePreference is the legacy name of VoiceLanguage, read when it is empty.
	LanguagePreference string `yaml:"language_preference,omitempty"`
	// EmergencyContact is the phone number alerted on escalation.
	EmergencyContact string `yaml:"emergency_contact"`
	// VoiceConfirmation enables prompting; absent means enabled.
	VoiceConfirmation *bool `yaml:"voice_confirmation,omitempty"`
	// LocationURL is added to the alert message when set.
	LocationURL string `yaml:"location_url,omitempty"`
}

// Audit selects the audit repository.
type Audit struct {
	// Driver is "file" or "sqlite".
	Driver string `yaml:"driver"`
	// Path is the audit file or database.
	Path string `yaml:"path"`
}

// Commands are the capability programs.
type Commands struct {
	command.Templates `yaml:",inline"`

	// Timeout bounds message and call commands.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

const (
	// DefaultConfigFilename is the default filename for guardian settings.
	DefaultConfigFilename = "guardian-settings.yaml"

	// DefaultAuditFilename is the default JSON-lines audit file.
	DefaultAuditFilename = "guardian-audit.jsonl"

	// DefaultAuditDatabase is the default SQLite audit database.
	DefaultAuditDatabase = "guardian-audit.db"

	// DefaultTimeout is the default duration for network operations.
	DefaultTimeout = 5 * time.Second

	// DefaultLogLevel is used when log_level is empty.
	DefaultLogLevel = "info"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

const (
	// AuditDriverFile stores records as JSON lines.
	AuditDriverFile = "file"
	// AuditDriverSQLite stores records in SQLite.
	AuditDriverSQLite = "sqlite"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errServerSocketRequired is returned when server address is missing.
	errServerSocketRequired = errors.New("server address must be provided")
	// ErrInvalid wraps every validation failure other than a missing server address.
	ErrInvalid = errors.New("invalid configuration")
)

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes Config to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions: the file holds a phone number.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings and fills in defaults.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.ServerAddress == "" {
		return errServerSocketRequired
	}

	if _, err := net.ResolveTCPAddr("tcp", cfg.ServerAddress); err != nil {
		return fmt.Errorf("invalid server socket: %w", err)
	}

	if cfg.MetricsAddress != "" {
		if _, err := net.ResolveTCPAddr("tcp", cfg.MetricsAddress); err != nil {
			return fmt.Errorf("%w: metrics address: %w", ErrInvalid, err)
		}
	}

	// Set default timeout if not specified
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if err := validateLogging(cfg); err != nil {
		return err
	}

	if err := cfg.Engine.validate(); err != nil {
		return err
	}

	if err := cfg.Settings.validate(); err != nil {
		return err
	}

	if err := cfg.Audit.validate(); err != nil {
		return err
	}

	return validateVocabulary(cfg)
}

// validateLogging checks the log level and format.
func validateLogging(cfg *Config) error {
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}

	if _, ok := logger.ParseLogLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("%w: unknown log level %q", ErrInvalid, cfg.LogLevel)
	}

	switch logger.Format(cfg.LogFormat) {
	case "":
		cfg.LogFormat = string(logger.FormatConsole)
	case logger.FormatConsole, logger.FormatJSON:
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalid, cfg.LogFormat)
	}

	return nil
}

// validate rejects negative bounds.
func (e Engine) validate() error {
	durations := map[string]time.Duration{
		"listen_timeout":  e.ListenTimeout,
		"prompt_timeout":  e.PromptTimeout,
		"retry_pause":     e.RetryPause,
		"release_grace":   e.ReleaseGrace,
		"prompt_duration": e.PromptDuration,
	}

	for name, d := range durations {
		if d < 0 {
			return fmt.Errorf("%w: engine.%s must not be negative", ErrInvalid, name)
		}
	}

	if e.MaxAttempts < 0 {
		return fmt.Errorf("%w: engine.max_attempts must not be negative", ErrInvalid)
	}

	return nil
}

// validate checks the language and location URL.
func (s Settings) validate() error {
	if s.VoiceLanguage != "" {
		if _, ok := domain.ParseLanguage(s.VoiceLanguage); !ok {
			return fmt.Errorf("%w: unknown voice language %q", ErrInvalid, s.VoiceLanguage)
		}
	}

	if s.LocationURL != "" {
		if _, err := url.ParseRequestURI(s.LocationURL); err != nil {
			return fmt.Errorf("%w: location url: %w", ErrInvalid, err)
		}
	}

	return nil
}

// Language returns the session language. The legacy field is read when
// voice_language is empty; unknown values select English.
func (s Settings) Language() domain.Language {
	name := s.VoiceLanguage
	if name == "" {
		name = s.LanguagePreference
	}

	lang, _ := domain.ParseLanguage(name)

	return lang
}

// VoiceConfirmationEnabled reports whether the user is prompted before escalating.
func (s Settings) VoiceConfirmationEnabled() bool {
	return s.VoiceConfirmation == nil || *s.VoiceConfirmation
}

// validate checks the driver and fills in the default path.
func (a *Audit) validate() error {
	switch a.Driver {
	case "":
		a.Driver = AuditDriverFile
	case AuditDriverFile, AuditDriverSQLite:
	default:
		return fmt.Errorf("%w: unknown audit driver %q", ErrInvalid, a.Driver)
	}

	if a.Path != "" {
		return nil
	}

	if a.Driver == AuditDriverSQLite {
		a.Path = DefaultAuditDatabase
	} else {
		a.Path = DefaultAuditFilename
	}

	return nil
}

// validateVocabulary checks phrase and keyword overrides name known languages and keys.
func validateVocabulary(cfg *Config) error {
	keys := phrase.Keys()

	for name, texts := range cfg.Phrases {
		if _, ok := domain.ParseLanguage(name); !ok {
			return fmt.Errorf("%w: phrases: unknown language %q", ErrInvalid, name)
		}

		for key := range texts {
			if !slices.Contains(keys, phrase.Key(key)) {
				return fmt.Errorf("%w: phrases.%s: unknown phrase %q", ErrInvalid, name, key)
			}
		}
	}

	for name := range cfg.Keywords {
		if _, ok := domain.ParseLanguage(name); !ok {
			return fmt.Errorf("%w: keywords: unknown language %q", ErrInvalid, name)
		}
	}

	return nil
}

// KeywordOptions converts keyword overrides to classifier options.
func (c *Config) KeywordOptions() []intent.Option {
	opts := make([]intent.Option, 0, len(c.Keywords))

	for name, kw := range c.Keywords {
		lang, ok := domain.ParseLanguage(name)
		if !ok {
			continue
		}

		opts = append(opts, intent.WithKeywords(lang, kw))
	}

	return opts
}
