package history

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/neeleshseerapu/termagent/internal/domain"
	"github.com/neeleshseerapu/termagent/internal/ports"
)

// FileStore appends history records to a jsonl file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Save implements ports.HistoryRepository.
func (f *FileStore) Save(record domain.HistoryRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(f.path), domain.DirectoryPermissions); err != nil {
		return err
	}
	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, domain.SecureFilePermissions)
	if err != nil {
		return err
	}
	defer file.Close()
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	_, err = file.Write(append(data, '\n'))
	return err
}

// Path returns the backing file path.
func (f *FileStore) Path() string {
	return f.path
}

// Clear removes the history file.
func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Records returns entries newest first, skipping lines that do not decode.
func (f *FileStore) Records(limit int, search string) ([]domain.HistoryRecord, error) {
	all, err := f.readAll()
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(search)
	var records []domain.HistoryRecord
	for i := len(all) - 1; i >= 0; i-- {
		rec := all[i]
		if needle != "" &&
			!strings.Contains(strings.ToLower(rec.Prompt), needle) &&
			!strings.Contains(strings.ToLower(rec.Command), needle) {
			continue
		}
		records = append(records, rec)
		if limit > 0 && len(records) == limit {
			break
		}
	}
	return records, nil
}

// ExportJSON copies the records, oldest first, to dest.
func (f *FileStore) ExportJSON(dest string) error {
	records, err := f.readAll()
	if err != nil {
		return err
	}
	return writeJSONLines(dest, records)
}

func (f *FileStore) readAll() ([]domain.HistoryRecord, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var records []domain.HistoryRecord
	for _, line := range bytes.Split(bytes.TrimSpace(data), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var rec domain.HistoryRecord
		if err := json.Unmarshal(line, &rec); err == nil {
			records = append(records, rec)
		}
	}
	return records, nil
}

func writeJSONLines(dest string, records []domain.HistoryRecord) error {
	file, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer file.Close()
	encoder := json.NewEncoder(file)
	for _, rec := range records {
		if err := encoder.Encode(rec); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
	}
	return nil
}

func reversed(records []domain.HistoryRecord) []domain.HistoryRecord {
	out := make([]domain.HistoryRecord, len(records))
	for i, rec := range records {
		out[len(records)-1-i] = rec
	}
	return out
}

var _ ports.HistoryRepository = (*FileStore)(nil)
