package settings

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/oshokin/guardian/internal/config"
	domain "github.com/oshokin/guardian/internal/domain/confirmation"
	"github.com/oshokin/guardian/internal/logger"
)

// reloadDebounce collapses the burst of events an editor produces on save.
const reloadDebounce = 100 * time.Millisecond

// ErrNoPath is returned by Reload and Watch when the store has no backing file.
var ErrNoPath = errors.New("settings file is not set")

// Store holds the current preferences. It is safe for concurrent use.
type Store struct {
	path     string
	onChange func(old, next config.Settings)

	mu      sync.RWMutex
	current config.Settings
}

// Option configures a Store.
type Option func(*Store)

// WithFile backs the store by a settings file for Reload and Watch.
func WithFile(path string) Option {
	return func(s *Store) {
		s.path = filepath.Clean(path)
	}
}

// WithChangeHandler is called after every successful reload that changed something.
func WithChangeHandler(fn func(old, next config.Settings)) Option {
	return func(s *Store) {
		s.onChange = fn
	}
}

// New creates a store holding initial.
func New(initial config.Settings, opts ...Option) *Store {
	s := &Store{current: initial}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// PreferredLanguage returns the session language.
func (s *Store) PreferredLanguage() domain.Language {
	return s.Current().Language()
}

// EmergencyContact returns the configured contact, possibly empty.
func (s *Store) EmergencyContact() string {
	return s.Current().EmergencyContact
}

// VoiceConfirmationEnabled reports whether the user is prompted.
func (s *Store) VoiceConfirmationEnabled() bool {
	return s.Current().VoiceConfirmationEnabled()
}

// LocationURL returns the location link added to alerts.
func (s *Store) LocationURL() string {
	return s.Current().LocationURL
}

// Current returns a copy of the preferences.
func (s *Store) Current() config.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.current
}

// Update replaces the preferences.
func (s *Store) Update(next config.Settings) {
	s.mu.Lock()
	old := s.current
	s.current = next
	s.mu.Unlock()

	if s.onChange != nil && !equal(old, next) {
		s.onChange(old, next)
	}
}

// Reload reads the settings file. An invalid file keeps the current preferences.
func (s *Store) Reload(ctx context.Context) error {
	if s.path == "" {
		return ErrNoPath
	}

	cfg, err := config.Load(s.path)
	if err != nil {
		return fmt.Errorf("reload settings: %w", err)
	}

	s.Update(cfg.Settings)

	logger.InfoKV(ctx, "Settings reloaded",
		"language", cfg.Settings.Language(),
		"voice_confirmation", cfg.Settings.VoiceConfirmationEnabled(),
		"contact_set", cfg.Settings.EmergencyContact != "",
	)

	return nil
}

// Watch reloads the settings whenever the file changes, until ctx is done.
// The parent directory is watched so editors that replace the file are seen.
func (s *Store) Watch(ctx context.Context) error {
	if s.path == "" {
		return ErrNoPath
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create settings watcher: %w", err)
	}

	defer func() {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.WarnKV(ctx, "Failed to close settings watcher", "error", closeErr)
		}
	}()

	if err = watcher.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("watch settings directory: %w", err)
	}

	logger.InfoKV(ctx, "Watching settings file", "path", s.path)

	debounce := time.NewTimer(reloadDebounce)
	debounce.Stop()

	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(event.Name) != s.path {
				continue
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				debounce.Reset(reloadDebounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			logger.WarnKV(ctx, "Settings watcher error", "error", err)
		case <-debounce.C:
			if err := s.Reload(ctx); err != nil {
				logger.WarnKV(ctx, "Keeping previous settings", "error", err)
			}
		}
	}
}

// equal compares two preference sets.
func equal(a, b config.Settings) bool {
	return a.VoiceLanguage == b.VoiceLanguage &&
		a.LanguagePreference == b.LanguagePreference &&
		a.EmergencyContact == b.EmergencyContact &&
		a.VoiceConfirmationEnabled() == b.VoiceConfirmationEnabled() &&
		a.LocationURL == b.LocationURL
}
