package linkstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"devtrack/internal/model"
)

// ErrNotLinked is returned when no spreadsheet has been linked yet.
var ErrNotLinked = errors.New("no spreadsheet linked")

// Store persists the pointer to the currently linked spreadsheet.
type Store interface {
	Load() (*model.SheetLink, error)
	Save(link *model.SheetLink) error
	Clear() error
}

// fileStore keeps the pointer as a single JSON object in one file.
type fileStore struct {
	mu       sync.Mutex
	filename string
}

// NewFileStore creates a Store backed by the given file. The file is not
// required to exist; a missing file simply means nothing is linked.
func NewFileStore(filename string) (Store, error) {
	if filename == "" {
		return nil, fmt.Errorf("link file path is required")
	}
	return &fileStore{filename: filename}, nil
}

type linkRecord struct {
	SpreadsheetID string `json:"spreadsheet_id"`
	LinkedAt      string `json:"linked_at,omitempty"`
}

func (s *fileStore) Load() (*model.SheetLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotLinked
		}
		return nil, fmt.Errorf("read link file: %w", err)
	}

	var rec linkRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("parse link file: %w", err)
	}
	if rec.SpreadsheetID == "" {
		return nil, ErrNotLinked
	}

	link := &model.SheetLink{SpreadsheetID: rec.SpreadsheetID}
	if rec.LinkedAt != "" {
		// A malformed timestamp only loses LinkedAt, never the link itself.
		_ = link.LinkedAt.UnmarshalText([]byte(rec.LinkedAt))
	}
	return link, nil
}

func (s *fileStore) Save(link *model.SheetLink) error {
	if link == nil || link.SpreadsheetID == "" {
		return fmt.Errorf("spreadsheet id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec := linkRecord{SpreadsheetID: link.SpreadsheetID}
	if !link.LinkedAt.IsZero() {
		ts, err := link.LinkedAt.MarshalText()
		if err != nil {
			return fmt.Errorf("encode linked_at: %w", err)
		}
		rec.LinkedAt = string(ts)
	}

	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode link file: %w", err)
	}
	return os.WriteFile(s.filename, append(b, '\n'), 0644)
}

func (s *fileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.filename); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove link file: %w", err)
	}
	return nil
}
