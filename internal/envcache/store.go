// Package envcache gives internal/env.Cache an optional sqlite-backed
// persistent companion (spec §4.B, SPEC_FULL.md "Domain stack"): a
// long-running groundctl batch process can record which environments
// were warm across a restart instead of starting stone cold every time.
//
// It persists binding metadata (name, ordinal, type) rather than full
// ir.Expr values — there is no surface parser in this module to turn a
// serialized expression back into IR, so a restored row seeds an
// env.Env with untyped-value bindings (Value: nil) rather than a byte-
// perfect replay. That's enough to warm type-directed lookups; a cache
// miss on the exact inlined value just falls back to the slow path.
package envcache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/relground/ground/internal/env"
	"github.com/relground/ground/internal/ir"
	"github.com/relground/ground/internal/typesystem"
)

// Store is a sqlite-backed companion to env.Cache.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) a sqlite database at path and ensures
// its schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening envcache db: %w", err)
	}
	const schema = `
CREATE TABLE IF NOT EXISTS environments (
	type_system TEXT NOT NULL,
	session TEXT NOT NULL,
	foreign_value_map TEXT NOT NULL,
	include_builtins INTEGER NOT NULL,
	bindings TEXT NOT NULL,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (type_system, session, foreign_value_map, include_builtins)
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating envcache schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

type bindingRow struct {
	Name    string `json:"name"`
	Ordinal int    `json:"ordinal"`
	Type    string `json:"type"`
}

// Save snapshots e's visible bindings under key, replacing any prior row.
func (s *Store) Save(key env.CacheKey, e *env.Env) error {
	rows := make([]bindingRow, 0, len(e.Bindings()))
	for _, b := range e.Bindings() {
		rows = append(rows, bindingRow{Name: b.Pat.Name, Ordinal: b.Pat.Ordinal, Type: b.Typ.String()})
	}
	blob, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("marshaling envcache row: %w", err)
	}
	_, err = s.db.Exec(`
INSERT INTO environments (type_system, session, foreign_value_map, include_builtins, bindings, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (type_system, session, foreign_value_map, include_builtins)
DO UPDATE SET bindings = excluded.bindings, updated_at = excluded.updated_at`,
		key.TypeSystem, key.Session, key.ForeignValueMap, boolToInt(key.IncludeBuiltins), string(blob), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("saving envcache row: %w", err)
	}
	return nil
}

// UpdatedAt reports when key's row was last saved, for callers that want
// to report how stale a warmed environment is (e.g. via humanize.Time).
func (s *Store) UpdatedAt(key env.CacheKey) (time.Time, bool, error) {
	row := s.db.QueryRow(`
SELECT updated_at FROM environments
WHERE type_system = ? AND session = ? AND foreign_value_map = ? AND include_builtins = ?`,
		key.TypeSystem, key.Session, key.ForeignValueMap, boolToInt(key.IncludeBuiltins))
	var ts int64
	if err := row.Scan(&ts); err != nil {
		if err == sql.ErrNoRows {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("loading envcache timestamp: %w", err)
	}
	return time.Unix(ts, 0), true, nil
}

// Load rehydrates the bindings persisted under key into a fresh Env
// chain (type-only; see package doc). Returns (nil, false, nil) on a
// clean miss.
func (s *Store) Load(key env.CacheKey) (*env.Env, bool, error) {
	row := s.db.QueryRow(`
SELECT bindings FROM environments
WHERE type_system = ? AND session = ? AND foreign_value_map = ? AND include_builtins = ?`,
		key.TypeSystem, key.Session, key.ForeignValueMap, boolToInt(key.IncludeBuiltins))

	var blob string
	if err := row.Scan(&blob); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("loading envcache row: %w", err)
	}

	var rows []bindingRow
	if err := json.Unmarshal([]byte(blob), &rows); err != nil {
		return nil, false, fmt.Errorf("unmarshaling envcache row: %w", err)
	}

	bindings := make([]env.Binding, len(rows))
	for i, r := range rows {
		// The persisted type is a printed string, not a parseable one
		// (no surface parser in this module); wrap it as an opaque
		// named type so restored bindings stay distinguishable by name
		// without claiming a structural type we can't reconstruct.
		restored := typesystem.TData{Name: r.Type}
		bindings[i] = env.Binding{
			Pat: &ir.IdPattern{Name: r.Name, Ordinal: r.Ordinal, Typ: restored},
			Typ: restored,
		}
	}
	var e *env.Env
	e = e.BulkBind(bindings)
	return e, true, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
