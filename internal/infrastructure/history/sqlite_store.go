// Package history archives session turns across runs.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/neeleshseerapu/termagent/internal/domain"
	"github.com/neeleshseerapu/termagent/internal/pkg/filesystem"
	"github.com/neeleshseerapu/termagent/internal/ports"
)

// Open returns the archive for path. Paths ending in .jsonl use a plain
// append-only file; anything else is a SQLite database.
func Open(path string) (ports.HistoryRepository, error) {
	path = filesystem.ExpandHome(path)
	if path == "" {
		path = filepath.Join(filesystem.AppDir(), "history.db")
	}
	if strings.HasSuffix(path, ".jsonl") {
		return NewFileStore(path), nil
	}
	store, err := NewSQLiteStore(path)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// SQLiteStore persists history in a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// NewSQLiteStore creates (or opens) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	store := &SQLiteStore{db: db, path: path}
	if err := store.init(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialise history database: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS turns (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT,
		timestamp TEXT,
		prompt TEXT,
		command TEXT,
		explanation TEXT,
		model TEXT,
		working_dir TEXT,
		executed INTEGER,
		success INTEGER,
		exit_code INTEGER,
		outcome TEXT,
		execution_time_ms INTEGER
	);`)
	return err
}

// Save inserts a new record.
func (s *SQLiteStore) Save(record domain.HistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`INSERT INTO turns
		(session_id, timestamp, prompt, command, explanation, model, working_dir, executed, success, exit_code, outcome, execution_time_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.SessionID,
		record.Timestamp.UTC().Format(domain.TimestampFormat),
		record.Prompt,
		record.Command,
		record.Explanation,
		record.Model,
		record.WorkingDir,
		boolToInt(record.Executed),
		boolToInt(record.Success),
		record.ExitCode,
		string(record.Outcome),
		record.ExecutionTimeMS,
	)
	if err != nil {
		return fmt.Errorf("save history record: %w", err)
	}
	return nil
}

// Records returns entries newest first. Zero limit means all; search matches
// the prompt or the command.
func (s *SQLiteStore) Records(limit int, search string) ([]domain.HistoryRecord, error) {
	builder := strings.Builder{}
	builder.WriteString(`SELECT session_id, timestamp, prompt, command, explanation, model, working_dir,
		executed, success, exit_code, outcome, execution_time_ms FROM turns`)
	var args []interface{}
	if search != "" {
		builder.WriteString(" WHERE prompt LIKE ? OR command LIKE ?")
		args = append(args, "%"+search+"%", "%"+search+"%")
	}
	builder.WriteString(" ORDER BY id DESC")
	if limit > 0 {
		builder.WriteString(" LIMIT ?")
		args = append(args, limit)
	}

	rows, err := s.db.Query(builder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var records []domain.HistoryRecord
	for rows.Next() {
		var rec domain.HistoryRecord
		var ts, outcome string
		var executed, success int
		if err := rows.Scan(&rec.SessionID, &ts, &rec.Prompt, &rec.Command, &rec.Explanation, &rec.Model,
			&rec.WorkingDir, &executed, &success, &rec.ExitCode, &outcome, &rec.ExecutionTimeMS); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		if t, err := time.Parse(domain.TimestampFormat, ts); err == nil {
			rec.Timestamp = t
		}
		rec.Executed = executed == 1
		rec.Success = success == 1
		rec.Outcome = domain.Outcome(outcome)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Clear deletes all history entries.
func (s *SQLiteStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.Exec("DELETE FROM turns"); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// ExportJSON writes every record, oldest first, to dest as JSON lines.
func (s *SQLiteStore) ExportJSON(dest string) error {
	records, err := s.Records(0, "")
	if err != nil {
		return err
	}
	return writeJSONLines(dest, reversed(records))
}

// Path returns the sqlite database path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ ports.HistoryRepository = (*SQLiteStore)(nil)
