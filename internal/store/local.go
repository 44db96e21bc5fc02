// Package store persists exemplar collections and projects to SQLite. The
// in-memory stores in internal/vault stay authoritative at runtime; this
// adapter loads them at startup and writes them back on change.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"

	"olivetti/internal/brief"
	"olivetti/internal/embedding"
	"olivetti/internal/logging"
	"olivetti/internal/vault"
)

// LocalStore is the SQLite persistence adapter.
type LocalStore struct {
	db     *sql.DB
	mu     sync.Mutex
	dbPath string
}

// NewLocalStore opens (or creates) the SQLite database at path.
func NewLocalStore(path string) (*LocalStore, error) {
	timer := logging.StartTimer(logging.CategoryStore, "NewLocalStore")
	defer timer.Stop()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("Failed to set sqlite busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreDebug("Failed to set sqlite journal_mode=WAL: %v", err)
	}

	s := &LocalStore{db: db, dbPath: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logging.Store("LocalStore ready at %s", path)
	return s, nil
}

// initialize creates the schema if absent.
func (s *LocalStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS samples (
		namespace   TEXT NOT NULL,
		collection  TEXT NOT NULL,
		lane        TEXT NOT NULL,
		position    INTEGER NOT NULL,
		text        TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		word_count  INTEGER NOT NULL,
		PRIMARY KEY (namespace, collection, lane, position)
	);

	CREATE TABLE IF NOT EXISTS collections (
		namespace  TEXT NOT NULL,
		collection TEXT NOT NULL,
		PRIMARY KEY (namespace, collection)
	);

	CREATE TABLE IF NOT EXISTS projects (
		name        TEXT PRIMARY KEY,
		draft       TEXT NOT NULL DEFAULT '',
		settings    TEXT NOT NULL DEFAULT '',
		story_bible TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMP NOT NULL,
		updated_at  TIMESTAMP NOT NULL
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *LocalStore) Close() error {
	return s.db.Close()
}

// SaveVault writes a store's full contents under its namespace, replacing
// whatever was persisted before.
func (s *LocalStore) SaveVault(v *vault.Store) error {
	timer := logging.StartTimer(logging.CategoryStore, "SaveVault")
	defer timer.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := v.Snapshot()
	ns := v.Namespace()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM samples WHERE namespace = ?", ns); err != nil {
		return fmt.Errorf("failed to clear samples: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM collections WHERE namespace = ?", ns); err != nil {
		return fmt.Errorf("failed to clear collections: %w", err)
	}

	insertColl, err := tx.Prepare("INSERT INTO collections (namespace, collection) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer insertColl.Close()

	insertSample, err := tx.Prepare(`INSERT INTO samples
		(namespace, collection, lane, position, text, fingerprint, word_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer insertSample.Close()

	total := 0
	for name, coll := range snap {
		if _, err := insertColl.Exec(ns, name); err != nil {
			return fmt.Errorf("failed to insert collection %q: %w", name, err)
		}
		for lane, samples := range coll {
			for pos, sample := range samples {
				fp, err := encodeFingerprint(sample.Fingerprint)
				if err != nil {
					return fmt.Errorf("failed to encode fingerprint: %w", err)
				}
				if _, err := insertSample.Exec(ns, name, string(lane), pos, sample.Text, fp, sample.WordCount); err != nil {
					return fmt.Errorf("failed to insert sample: %w", err)
				}
				total++
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	logging.StoreDebug("SaveVault: %s persisted %d collections, %d samples", ns, len(snap), total)
	return nil
}

// LoadVault replaces a store's contents with what is persisted under its
// namespace. A namespace with no rows loads as empty.
func (s *LocalStore) LoadVault(v *vault.Store) error {
	timer := logging.StartTimer(logging.CategoryStore, "LoadVault")
	defer timer.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()

	ns := v.Namespace()
	snap := make(map[string]map[vault.Lane][]vault.Sample)

	collRows, err := s.db.Query("SELECT collection FROM collections WHERE namespace = ?", ns)
	if err != nil {
		return fmt.Errorf("failed to query collections: %w", err)
	}
	defer collRows.Close()
	for collRows.Next() {
		var name string
		if err := collRows.Scan(&name); err != nil {
			return fmt.Errorf("failed to scan collection: %w", err)
		}
		snap[name] = make(map[vault.Lane][]vault.Sample)
	}
	if err := collRows.Err(); err != nil {
		return fmt.Errorf("failed to read collections: %w", err)
	}

	rows, err := s.db.Query(`SELECT collection, lane, text, fingerprint, word_count
		FROM samples WHERE namespace = ?
		ORDER BY collection, lane, position`, ns)
	if err != nil {
		return fmt.Errorf("failed to query samples: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			name, laneName, text, fp string
			wordCount                int
		)
		if err := rows.Scan(&name, &laneName, &text, &fp, &wordCount); err != nil {
			return fmt.Errorf("failed to scan sample: %w", err)
		}

		lane, err := vault.ParseLane(laneName)
		if err != nil {
			return fmt.Errorf("corrupt sample row: %w", err)
		}
		fingerprint, err := decodeFingerprint(fp)
		if err != nil {
			return fmt.Errorf("corrupt fingerprint: %w", err)
		}

		coll, ok := snap[name]
		if !ok {
			coll = make(map[vault.Lane][]vault.Sample)
			snap[name] = coll
		}
		coll[lane] = append(coll[lane], vault.Sample{
			Text:        text,
			Fingerprint: fingerprint,
			WordCount:   wordCount,
		})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read samples: %w", err)
	}

	v.Restore(snap)
	logging.StoreDebug("LoadVault: %s loaded %d collections", ns, len(snap))
	return nil
}

// Project is a persisted writing project: the draft plus its settings and
// story bible.
type Project struct {
	Name      string
	Draft     string
	Settings  brief.Settings
	Bible     brief.StoryBible
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SaveProject inserts or updates a project. CreatedAt is preserved on
// update; UpdatedAt is always refreshed.
func (s *LocalStore) SaveProject(p *Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := yaml.Marshal(p.Settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	bible, err := yaml.Marshal(p.Bible)
	if err != nil {
		return fmt.Errorf("failed to marshal story bible: %w", err)
	}

	now := time.Now().UTC()
	_, err = s.db.Exec(`INSERT INTO projects (name, draft, settings, story_bible, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			draft = excluded.draft,
			settings = excluded.settings,
			story_bible = excluded.story_bible,
			updated_at = excluded.updated_at`,
		p.Name, p.Draft, string(settings), string(bible), now, now)
	if err != nil {
		return fmt.Errorf("failed to save project %q: %w", p.Name, err)
	}
	return nil
}

// LoadProject fetches a project by name. Returns sql.ErrNoRows via the
// wrapped error when the project does not exist.
func (s *LocalStore) LoadProject(name string) (*Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		p                Project
		settings, bible  string
		created, updated time.Time
	)
	err := s.db.QueryRow(`SELECT name, draft, settings, story_bible, created_at, updated_at
		FROM projects WHERE name = ?`, name).
		Scan(&p.Name, &p.Draft, &settings, &bible, &created, &updated)
	if err != nil {
		return nil, fmt.Errorf("failed to load project %q: %w", name, err)
	}

	if err := yaml.Unmarshal([]byte(settings), &p.Settings); err != nil {
		return nil, fmt.Errorf("corrupt settings for %q: %w", name, err)
	}
	if err := yaml.Unmarshal([]byte(bible), &p.Bible); err != nil {
		return nil, fmt.Errorf("corrupt story bible for %q: %w", name, err)
	}
	p.CreatedAt = created
	p.UpdatedAt = updated
	return &p, nil
}

// ListProjects returns project names, most recently updated first.
func (s *LocalStore) ListProjects() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT name FROM projects ORDER BY updated_at DESC, name")
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan project name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// DeleteProject removes a project. Reports whether a row was deleted.
func (s *LocalStore) DeleteProject(name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("DELETE FROM projects WHERE name = ?", name)
	if err != nil {
		return false, fmt.Errorf("failed to delete project %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// encodeFingerprint serializes a fingerprint as a JSON array.
func encodeFingerprint(fp embedding.Fingerprint) (string, error) {
	if fp == nil {
		fp = embedding.Fingerprint{}
	}
	out, err := json.Marshal([]float64(fp))
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// decodeFingerprint parses a JSON array fingerprint.
func decodeFingerprint(s string) (embedding.Fingerprint, error) {
	var vals []float64
	if err := json.Unmarshal([]byte(s), &vals); err != nil {
		return nil, err
	}
	return embedding.Fingerprint(vals), nil
}
