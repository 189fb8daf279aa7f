// Package source reads upstream item records for the scheduler.
//
// Sources are read-only: they never create, migrate or modify the data they
// read from.
package source

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/javiermolinar/notecal/internal/group"
)

// Source kinds accepted by Open.
const (
	KindFile   = "file"
	KindSQLite = "sqlite"
)

// DefaultTable is the table read by the SQLite source when none is configured.
const DefaultTable = "items"

// Source errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported source format")
	ErrUnknownKind       = errors.New("unknown source kind")
	ErrInvalidTable      = errors.New("invalid table name")
	ErrEmptyPath         = errors.New("source path cannot be empty")
)

// Source provides item records.
type Source interface {
	Records(ctx context.Context) ([]group.Record, error)
	Close() error
}

// Open returns the Source for kind. An empty kind is inferred from the path:
// .db, .sqlite and .sqlite3 files are read as SQLite, anything else as a file.
func Open(kind, path, table string) (Source, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	if kind == "" {
		kind = inferKind(path)
	}

	switch strings.ToLower(kind) {
	case KindFile:
		return NewFile(path)
	case KindSQLite:
		return NewSQLite(path, table)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

func inferKind(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return KindSQLite
	default:
		return KindFile
	}
}
