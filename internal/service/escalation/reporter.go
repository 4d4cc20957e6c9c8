package escalation

import (
	"context"
	"sync"
	"time"

	"github.com/oshokin/guardian/internal/logger"
)

// defaultJournalSize is how many errors a Journal keeps.
const defaultJournalSize = 32

// LogReporter writes reported errors to the context logger.
type LogReporter struct{}

// ReportError logs err at error level.
func (LogReporter) ReportError(ctx context.Context, err error) {
	if err == nil {
		return
	}

	logger.ErrorKV(ctx, "Escalation error", "error", err)
}

// ReportedError is one journal entry.
type ReportedError struct {
	// At is when the error was reported.
	At time.Time
	// Message is the error text.
	Message string
}

// Journal logs reported errors and keeps the most recent ones for status queries.
type Journal struct {
	mu      sync.Mutex
	entries []ReportedError
	size    int
	now     func() time.Time
}

// NewJournal creates a journal holding up to size entries.
func NewJournal(size int) *Journal {
	if size <= 0 {
		size = defaultJournalSize
	}

	return &Journal{
		size: size,
		now:  time.Now,
	}
}

// ReportError logs err and appends it to the journal.
func (j *Journal) ReportError(ctx context.Context, err error) {
	if err == nil {
		return
	}

	LogReporter{}.ReportError(ctx, err)

	j.mu.Lock()
	defer j.mu.Unlock()

	j.entries = append(j.entries, ReportedError{At: j.now(), Message: err.Error()})
	if extra := len(j.entries) - j.size; extra > 0 {
		j.entries = append(j.entries[:0:0], j.entries[extra:]...)
	}
}

// Recent returns the kept entries, oldest first.
func (j *Journal) Recent() []ReportedError {
	j.mu.Lock()
	defer j.mu.Unlock()

	return append([]ReportedError(nil), j.entries...)
}
