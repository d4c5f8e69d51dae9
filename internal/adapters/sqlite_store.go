package adapters

import (
	"context"
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"taxtree/internal/ports"
	"taxtree/internal/types"
)

const storeSchema = `
CREATE TABLE taxa (
	pos INTEGER PRIMARY KEY,
	id TEXT NOT NULL UNIQUE,
	parent_id TEXT NOT NULL,
	name TEXT NOT NULL,
	rank TEXT NOT NULL
);
CREATE INDEX idx_taxa_parent ON taxa(parent_id);
CREATE INDEX idx_taxa_name ON taxa(name);
CREATE TABLE meta (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`

// SQLiteTreeStore exports a tree into a fresh sqlite file, one row per
// node in record stream order.
type SQLiteTreeStore struct{}

func NewSQLiteTreeStore() SQLiteTreeStore {
	return SQLiteTreeStore{}
}

func (SQLiteTreeStore) Export(path string, rootID string, records []types.Record) error {
	if err := ensureParent(path); err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to replace " + path).
			WithCause(err)
	}
	db, err := openSQLite(path, false)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, storeSchema); err != nil {
		return storeError("create schema", err)
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return storeError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO taxa (pos, id, parent_id, name, rank) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return storeError("prepare insert", err)
	}
	defer stmt.Close()
	for pos, rec := range records {
		if _, err := stmt.ExecContext(ctx, pos, rec.ID, rec.ParentID, rec.Name, rec.Rank); err != nil {
			return storeError("insert taxon "+rec.ID, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO meta (key, value) VALUES ('root_id', ?)`, rootID); err != nil {
		return storeError("record root", err)
	}
	if err := tx.Commit(); err != nil {
		return storeError("commit", err)
	}
	return nil
}

func storeError(step string, err error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("sqlite export: " + step).
		WithCause(err)
}

func ensureParent(path string) error {
	if path == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("output path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create output directory").
			WithCause(err)
	}
	return nil
}

var _ ports.TreeExportPort = SQLiteTreeStore{}
