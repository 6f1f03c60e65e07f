package upload

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// StateDB tracks which workout files have been successfully uploaded to avoid re-sending.
type StateDB struct {
	db *sql.DB
}

// OpenStateDB opens (or creates) the SQLite state database at dir/state.db.
func OpenStateDB(dir string) (*StateDB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "state.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS uploaded_files (
		name        TEXT PRIMARY KEY,
		size        INTEGER NOT NULL,
		hash        TEXT NOT NULL,
		uploaded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating state table: %w", err)
	}

	return &StateDB{db: db}, nil
}

// Hashes returns the hash of every uploaded file by name.
func (s *StateDB) Hashes() (map[string]string, error) {
	rows, err := s.db.Query(`SELECT name, hash FROM uploaded_files`)
	if err != nil {
		return nil, fmt.Errorf("querying uploaded files: %w", err)
	}
	defer rows.Close()

	hashes := make(map[string]string)
	for rows.Next() {
		var name, hash string
		if err := rows.Scan(&name, &hash); err != nil {
			return nil, fmt.Errorf("scanning uploaded file: %w", err)
		}
		hashes[name] = hash
	}
	return hashes, rows.Err()
}

// MarkUploaded records that a file was successfully uploaded.
func (s *StateDB) MarkUploaded(name string, size int64, hash string) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO uploaded_files (name, size, hash) VALUES (?, ?, ?)`,
		name, size, hash,
	)
	return err
}

// Forget removes a file from the state, after it was deleted remotely.
func (s *StateDB) Forget(name string) error {
	_, err := s.db.Exec(`DELETE FROM uploaded_files WHERE name = ?`, name)
	return err
}

// Close closes the state database.
func (s *StateDB) Close() error {
	return s.db.Close()
}
