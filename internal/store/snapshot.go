package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

const stateTable = "card_states"

var stateColumns = []string{"id", "last_reviewed", "recall_streak", "easiness_factor", "interval_secs", "failed"}

// SQLiteBackend stores the snapshot as one row per item in a SQLite database.
type SQLiteBackend struct {
	dsn string
	drv *entsql.Driver
}

var _ Backend = (*SQLiteBackend)(nil)

// OpenSQLite opens (creating if needed) the SQLite database at dsn.
// It applies recommended pragmas and creates the state table.
func OpenSQLite(dsn string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Pragmas are per connection; keep a single one.
	db.SetMaxOpenConns(1)

	// The first statement is where SQLite notices a file that is not a database.
	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, &CorruptError{Path: dsn, Err: fmt.Errorf("apply pragmas: %w", err)}
	}

	drv := entsql.OpenDB(dialect.SQLite, db)
	if err := createSchema(context.Background(), drv); err != nil {
		drv.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteBackend{dsn: dsn, drv: drv}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (b *SQLiteBackend) DB() *sql.DB {
	return b.drv.DB()
}

func (b *SQLiteBackend) Location() string { return b.dsn }

// Close closes the database connection.
func (b *SQLiteBackend) Close() error {
	return b.drv.Close()
}

func (b *SQLiteBackend) Load(ctx context.Context) (map[string]RecordData, error) {
	d := entsql.Dialect(dialect.SQLite)
	query, args := d.Select(stateColumns...).
		From(d.Table(stateTable)).
		OrderBy("id").
		Query()

	var rows entsql.Rows
	if err := b.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, &CorruptError{Path: b.dsn, Err: err}
	}
	defer rows.Close()

	var records map[string]RecordData
	for rows.Next() {
		var (
			id     string
			rd     RecordData
			failed int
		)
		if err := rows.Scan(&id, &rd.LastReviewed, &rd.RecallStreak, &rd.EasinessFactor, &rd.IntervalSecs, &failed); err != nil {
			return nil, &CorruptError{Path: b.dsn, Err: err}
		}
		rd.Failed = failed != 0
		if records == nil {
			records = make(map[string]RecordData)
		}
		records[id] = rd
	}
	if err := rows.Err(); err != nil {
		return nil, &CorruptError{Path: b.dsn, Err: err}
	}
	return records, nil
}

// Save replaces every row inside a single transaction.
func (b *SQLiteBackend) Save(ctx context.Context, records map[string]RecordData) error {
	tx, err := b.drv.Tx(ctx)
	if err != nil {
		return &WriteError{Path: b.dsn, Err: fmt.Errorf("begin: %w", err)}
	}

	if err := replaceAll(ctx, tx, records); err != nil {
		_ = tx.Rollback()
		return &WriteError{Path: b.dsn, Err: err}
	}
	if err := tx.Commit(); err != nil {
		return &WriteError{Path: b.dsn, Err: fmt.Errorf("commit: %w", err)}
	}
	return nil
}

func replaceAll(ctx context.Context, tx dialect.Tx, records map[string]RecordData) error {
	d := entsql.Dialect(dialect.SQLite)

	query, args := d.Delete(stateTable).Query()
	if err := tx.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("clear %s: %w", stateTable, err)
	}

	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		rd := records[id]
		failed := 0
		if rd.Failed {
			failed = 1
		}
		query, args := d.Insert(stateTable).
			Columns(stateColumns...).
			Values(id, rd.LastReviewed, rd.RecallStreak, rd.EasinessFactor, rd.IntervalSecs, failed).
			Query()
		if err := tx.Exec(ctx, query, args, nil); err != nil {
			return fmt.Errorf("insert %q: %w", id, err)
		}
	}
	return nil
}

func (b *SQLiteBackend) Reset(ctx context.Context) error {
	query, args := entsql.Dialect(dialect.SQLite).Delete(stateTable).Query()
	if err := b.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("reset %s: %w", stateTable, err)
	}
	return nil
}

// stateSchema is the only table. The query builder has no DDL support, so it
// is spelled out.
const stateSchema = `CREATE TABLE IF NOT EXISTS card_states (
	id              TEXT PRIMARY KEY,
	last_reviewed   TEXT NOT NULL,
	recall_streak   INTEGER NOT NULL,
	easiness_factor REAL NOT NULL,
	interval_secs   INTEGER NOT NULL,
	failed          INTEGER NOT NULL
)`

func createSchema(ctx context.Context, drv *entsql.Driver) error {
	return drv.Exec(ctx, stateSchema, []any{}, nil)
}

// applyPragmas configures SQLite for optimal single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}
