package adapters

import (
	"context"
	"database/sql"
	"os"

	"github.com/ZanzyTHEbar/errbuilder-go"
	_ "modernc.org/sqlite"

	"taxtree/internal/ports"
	"taxtree/internal/types"
)

const sfgaRootID = "root"

const sfgaQuery = `
SELECT t.col__id,
       COALESCE(t.col__parent_id, ''),
       COALESCE(n.col__scientific_name, ''),
       COALESCE(n.col__rank_id, '')
FROM taxon t
LEFT JOIN name n ON n.col__id = t.col__name_id
ORDER BY t.rowid`

const storeQuery = `SELECT id, parent_id, name, rank FROM taxa ORDER BY pos`

// SQLiteSource streams records from a sqlite database. It serves both
// SFGA archives (taxon joined with name) and trees written by
// SQLiteTreeStore.
type SQLiteSource struct {
	Path  string
	Root  string
	query string
}

// NewSFGASource reads an SFGA sqlite file. SFGA has several top level
// taxa, so the root "root" is normally synthesized.
func NewSFGASource(path string, root string) SQLiteSource {
	if root == "" {
		root = sfgaRootID
	}
	return SQLiteSource{Path: path, Root: root, query: sfgaQuery}
}

// OpenSQLiteTreeSource reads a tree exported by SQLiteTreeStore. When root
// is empty, the root recorded at export time is used.
func OpenSQLiteTreeSource(ctx context.Context, path string, root string) (SQLiteSource, error) {
	if root == "" {
		db, err := openSQLite(path, true)
		if err != nil {
			return SQLiteSource{}, err
		}
		defer db.Close()
		err = db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'root_id'`).Scan(&root)
		if err != nil {
			return SQLiteSource{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("sqlite tree has no recorded root: " + path).
				WithCause(err)
		}
	}
	return SQLiteSource{Path: path, Root: root, query: storeQuery}, nil
}

func (s SQLiteSource) RootID() string {
	return s.Root
}

func (s SQLiteSource) Records(ctx context.Context, yield func(types.Record) error) error {
	db, err := openSQLite(s.Path, true)
	if err != nil {
		return err
	}
	defer db.Close()

	query := s.query
	if query == "" {
		query = storeQuery
	}
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to query taxa from " + s.Path).
			WithCause(err)
	}
	defer rows.Close()
	for rows.Next() {
		var rec types.Record
		if err := rows.Scan(&rec.ID, &rec.ParentID, &rec.Name, &rec.Rank); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("failed to scan taxon row").
				WithCause(err)
		}
		if err := yield(rec); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read taxa from " + s.Path).
			WithCause(err)
	}
	return nil
}

func openSQLite(path string, readOnly bool) (*sql.DB, error) {
	if readOnly {
		if _, err := os.Stat(path); err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg("sqlite file not found: " + path).
				WithCause(err)
		}
		path += "?mode=ro"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to open sqlite " + path).
			WithCause(err)
	}
	return db, nil
}

var _ ports.RecordSource = SQLiteSource{}
