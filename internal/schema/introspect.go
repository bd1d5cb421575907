// Package schema reads table and column names from the target SQLite
// database and renders them as a compact text block for prompt grounding.
package schema

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/asksql/asksql/internal/observability"
)

type Table struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
}

type Descriptor struct {
	Tables []Table `json:"tables"`
}

// Text renders one "Name(col1, col2, ...)" line per table.
func (d Descriptor) Text() string {
	lines := make([]string, 0, len(d.Tables))
	for _, table := range d.Tables {
		lines = append(lines, fmt.Sprintf("%s(%s)", table.Name, strings.Join(table.Columns, ", ")))
	}
	return strings.Join(lines, "\n")
}

// placeholderText stands in when the database cannot be introspected, so the
// translation prompt still names the tables the sample database usually has.
// The model may hallucinate columns in this mode; query execution will report
// the real failure.
const placeholderText = `albums
artists
customers
employees
genres
invoices
invoice_items
media_types
playlists
playlist_track
tracks`

type Introspector struct {
	path   string
	logger *slog.Logger
}

func NewIntrospector(path string, logger *slog.Logger) *Introspector {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Introspector{path: path, logger: logger}
}

// Describe enumerates all tables and their columns in declaration order.
// The descriptor is regenerated on every call; nothing is cached.
func (i *Introspector) Describe(ctx context.Context) (Descriptor, error) {
	db, err := sql.Open("sqlite", "file:"+i.path+"?mode=ro")
	if err != nil {
		return Descriptor{}, fmt.Errorf("open database %q: %w", i.path, err)
	}
	defer func() { _ = db.Close() }()

	if err := db.PingContext(ctx); err != nil {
		return Descriptor{}, fmt.Errorf("ping database %q: %w", i.path, err)
	}

	names, err := tableNames(ctx, db)
	if err != nil {
		return Descriptor{}, err
	}

	descriptor := Descriptor{Tables: make([]Table, 0, len(names))}
	for _, name := range names {
		columns, err := tableColumns(ctx, db, name)
		if err != nil {
			return Descriptor{}, err
		}
		descriptor.Tables = append(descriptor.Tables, Table{Name: name, Columns: columns})
	}
	return descriptor, nil
}

// DescribeText renders the schema for prompt use. Introspection failures are
// never surfaced: the static placeholder keeps the pipeline operational.
func (i *Introspector) DescribeText(ctx context.Context) string {
	descriptor, err := i.Describe(ctx)
	if err != nil {
		i.logger.WarnContext(ctx, "schema introspection failed, using placeholder",
			slog.String("path", i.path),
			slog.Any("error", err),
		)
		observability.IncrementSchemaPlaceholder()
		return placeholderText
	}
	return descriptor.Text()
}

func tableNames(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tables: %w", err)
	}
	return names, nil
}

func tableColumns(ctx context.Context, db *sql.DB, table string) ([]string, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(table)))
	if err != nil {
		return nil, fmt.Errorf("table info for %q: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	var columns []string
	for rows.Next() {
		var (
			cid          int
			name         string
			columnType   string
			notNull      int
			defaultValue sql.NullString
			pk           int
		)
		if err := rows.Scan(&cid, &name, &columnType, &notNull, &defaultValue, &pk); err != nil {
			return nil, fmt.Errorf("scan column for %q: %w", table, err)
		}
		columns = append(columns, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns for %q: %w", table, err)
	}
	return columns, nil
}

func quoteIdent(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}
