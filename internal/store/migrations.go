package store

import (
	"fmt"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "people: individuals in the family graph",
		SQL: `
CREATE TABLE people (
    id          TEXT PRIMARY KEY,
    seq         INTEGER NOT NULL,
    name        TEXT NOT NULL CHECK (length(trim(name)) > 0),
    sex         TEXT NOT NULL DEFAULT '' CHECK (sex IN ('', 'female', 'male')),
    born        TEXT,
    died        TEXT,
    birth_place TEXT NOT NULL DEFAULT '',
    occupation  TEXT NOT NULL DEFAULT '',
    notes       TEXT NOT NULL DEFAULT '',
    saved_at    INTEGER NOT NULL
);

CREATE UNIQUE INDEX idx_people_seq  ON people(seq);
CREATE INDEX        idx_people_name ON people(name COLLATE NOCASE);
`,
	},
	{
		Version:     2,
		Description: "relationships: parent-child and partnership edges",
		SQL: `
CREATE TABLE relationships (
    id       TEXT PRIMARY KEY,
    seq      INTEGER NOT NULL,
    kind     TEXT NOT NULL CHECK (kind IN ('parent_child', 'partnership')),
    from_id  TEXT NOT NULL,
    to_id    TEXT NOT NULL,
    married  TEXT,
    divorced TEXT,
    notes    TEXT NOT NULL DEFAULT '',
    saved_at INTEGER NOT NULL,

    CHECK (from_id <> to_id),
    UNIQUE (kind, from_id, to_id),
    FOREIGN KEY (from_id) REFERENCES people(id) ON DELETE CASCADE,
    FOREIGN KEY (to_id)   REFERENCES people(id) ON DELETE CASCADE
);

CREATE UNIQUE INDEX idx_rel_seq  ON relationships(seq);
CREATE INDEX        idx_rel_from ON relationships(from_id);
CREATE INDEX        idx_rel_to   ON relationships(to_id);
`,
	},
}

func (db *DB) migrate() error {
	// Create schema_versions table if it doesn't exist
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM schema_versions WHERE version = ?", m.Version).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the current schema version.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&version)
	return version, err
}
