package audit

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/guardian/internal/domain/confirmation"
)

// auditFilePermissions restricts the audit file, which holds phone numbers.
const auditFilePermissions = 0o600

// maxLineSize bounds one audit line.
const maxLineSize = 1 << 20

// FileRepository appends records to a JSON-lines file.
type FileRepository struct {
	// path is the filesystem location of the audit file.
	path string
	// mu serializes access to the file.
	mu sync.Mutex
}

// NewFileRepository creates a repository that appends to the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Append writes rec as one protojson line.
func (r *FileRepository) Append(_ context.Context, rec *domain.Record) error {
	s, err := Encode(rec)
	if err != nil {
		return err
	}

	data, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, auditFilePermissions)
	if err != nil {
		return fmt.Errorf("open audit file: %w", err)
	}

	if _, err = f.Write(append(data, '\n')); err != nil {
		_ = f.Close()

		return fmt.Errorf("write audit file: %w", err)
	}

	if err = f.Close(); err != nil {
		return fmt.Errorf("close audit file: %w", err)
	}

	return nil
}

// List reads the file and returns the newest records first.
// A missing file holds no records.
func (r *FileRepository) List(_ context.Context, limit int) ([]*domain.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("read audit file: %w", err)
	}

	var records []*domain.Record

	scanner := bufio.NewScanner(bytes.NewReader(contents))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for line := 1; scanner.Scan(); line++ {
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		var s structpb.Struct
		if err = protojson.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("decode audit line %d: %w", line, err)
		}

		rec, decodeErr := Decode(&s)
		if decodeErr != nil {
			return nil, fmt.Errorf("decode audit line %d: %w", line, decodeErr)
		}

		records = append(records, rec)
	}

	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan audit file: %w", err)
	}

	slices.Reverse(records)

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	return records, nil
}

// Close is a no-op; the file is opened per call.
func (r *FileRepository) Close() error {
	return nil
}
