package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/javiermolinar/notecal/internal/group"
)

// document is the on-disk layout shared by all file formats.
type document struct {
	Items []group.Record `toml:"items" yaml:"items" json:"items"`
}

type decodeFunc func([]byte, any) error

// File reads records from a TOML, YAML or JSON document holding an
// "items" list. The file is re-read on every call to Records.
type File struct {
	path   string
	decode decodeFunc
}

// NewFile creates a File source. The format is chosen by extension.
func NewFile(path string) (*File, error) {
	decode, err := decoderFor(path)
	if err != nil {
		return nil, err
	}
	return &File{path: path, decode: decode}, nil
}

func decoderFor(path string) (decodeFunc, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		return toml.Unmarshal, nil
	case ".yaml", ".yml":
		return yaml.Unmarshal, nil
	case ".json":
		return json.Unmarshal, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Path returns the file being read.
func (f *File) Path() string {
	return f.path
}

// Records reads and decodes the file.
func (f *File) Records(ctx context.Context) ([]group.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("reading source file: %w", err)
	}

	var doc document
	if err := f.decode(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing source file %s: %w", f.path, err)
	}
	return doc.Items, nil
}

// Close is a no-op; the file is not held open between reads.
func (f *File) Close() error {
	return nil
}
