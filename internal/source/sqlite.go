package source

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/javiermolinar/notecal/internal/group"
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLite reads records from an existing table with the columns
// id, name, deadline, topics and created_at.
type SQLite struct {
	db    *sql.DB
	query string
}

// NewSQLite opens the database at path read-only. The database must exist.
func NewSQLite(path, table string) (*SQLite, error) {
	if table == "" {
		table = DefaultTable
	}
	if !identifier.MatchString(table) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db, err := sql.Open("sqlite", readOnlyDSN(path))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return &SQLite{
		db: db,
		query: `
			SELECT id, name, deadline, topics
			FROM ` + table + `
			ORDER BY created_at, rowid
		`,
	}, nil
}

// readOnlyDSN builds a read-only SQLite URI for path. The path is escaped so
// that '?' and '#' in file names are not taken as URI delimiters.
func readOnlyDSN(path string) string {
	u := url.URL{Path: path}
	return "file:" + u.EscapedPath() + "?mode=ro"
}

// dateValue undoes the driver's rendering of a DATE column value as
// midnight UTC, so the deadline is read as a calendar date in the run's zone.
func dateValue(s string) string {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil || t.Location() != time.UTC {
		return s
	}
	if t.Hour() != 0 || t.Minute() != 0 || t.Second() != 0 || t.Nanosecond() != 0 {
		return s
	}
	return t.Format("2006-01-02")
}

// Records returns every row in creation order.
func (s *SQLite) Records(ctx context.Context) ([]group.Record, error) {
	rows, err := s.db.QueryContext(ctx, s.query)
	if err != nil {
		return nil, fmt.Errorf("querying items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("reading columns: %w", err)
	}
	dateDeadline := strings.EqualFold(cols[2].DatabaseTypeName(), "DATE")

	var records []group.Record
	for rows.Next() {
		var (
			r        group.Record
			name     sql.NullString
			deadline sql.NullString
			topics   sql.NullString
		)
		if err := rows.Scan(&r.ID, &name, &deadline, &topics); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		r.Name = name.String
		r.Deadline = deadline.String
		if dateDeadline {
			r.Deadline = dateValue(r.Deadline)
		}
		r.Topics = topics.String
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating items: %w", err)
	}

	return records, nil
}

// Close releases database resources.
func (s *SQLite) Close() error {
	return s.db.Close()
}
