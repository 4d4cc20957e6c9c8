package audit

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/oshokin/guardian/internal/domain/confirmation"
)

// Drivers accepted by Open.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

var (
	// errRecordIsNotSet is returned when a nil record is provided.
	errRecordIsNotSet = errors.New("record is not set")
	// ErrUnknownDriver is returned by Open for unsupported drivers.
	ErrUnknownDriver = errors.New("unknown audit driver")
)

// Repository defines persistence operations for session records.
type Repository interface {
	// Append stores rec.
	Append(ctx context.Context, rec *domain.Record) error
	// List returns up to limit records, newest first. A non-positive limit returns all.
	List(ctx context.Context, limit int) ([]*domain.Record, error)
	// Close releases the storage.
	Close() error
}

// Open creates the repository for driver at path.
func Open(ctx context.Context, driver, path string) (Repository, error) {
	switch driver {
	case DriverFile, "":
		return NewFileRepository(path), nil
	case DriverSQLite:
		return NewSQLiteRepository(ctx, path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}
