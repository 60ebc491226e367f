// Package format names the card formats, guesses them from file names and
// routes reads and writes to the matching transformer.
package format

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cdb-transformer/internal/card"
	"cdb-transformer/internal/cdb"
	"cdb-transformer/internal/script"
	"cdb-transformer/internal/setcode"
	"cdb-transformer/internal/sqltext"
	"cdb-transformer/internal/xyyz"
	"cdb-transformer/internal/yamlcard"

	"github.com/rs/zerolog"
)

// Format identifies a card representation.
type Format string

const (
	Xyyz   Format = "xyyz"
	SQL    Format = "sql"
	CDB    Format = "cdb"
	Script Format = "script"
	YAML   Format = "yaml"
)

// All lists every format.
var All = []Format{Xyyz, SQL, CDB, Script, YAML}

var extensions = map[string]Format{
	".txt":  Xyyz,
	".xyyz": Xyyz,
	".sql":  SQL,
	".cdb":  CDB,
	".lua":  Script,
	".yaml": YAML,
	".yml":  YAML,
}

// Parse resolves a format name.
func Parse(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range All {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q", name)
}

// Guess picks the format from the extension of path.
func Guess(path string) (Format, bool) {
	f, ok := extensions[strings.ToLower(filepath.Ext(path))]
	return f, ok
}

func (f Format) String() string { return string(f) }

// Set implements pflag.Value.
func (f *Format) Set(s string) error {
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// Type implements pflag.Value.
func (f *Format) Type() string { return "format" }

// Registry holds one transformer per text format.
type Registry struct {
	Xyyz   *xyyz.Codec
	SQL    *sqltext.Transformer
	Script *script.Transformer
	YAML   *yamlcard.Transformer
}

// NewRegistry wires every transformer to the same set table and logger.
func NewRegistry(sets *setcode.Table, maxLineLength int, logger *zerolog.Logger) *Registry {
	codec := &xyyz.Codec{Sets: sets, Logger: logger}
	return &Registry{
		Xyyz:   codec,
		SQL:    sqltext.New(),
		Script: script.New(codec, maxLineLength),
		YAML:   yamlcard.New(),
	}
}

// Transformer returns the text transformer for f. CDB is file-only and
// has none.
func (r *Registry) Transformer(f Format) (card.Transformer, error) {
	switch f {
	case Xyyz:
		return r.Xyyz, nil
	case SQL:
		return r.SQL, nil
	case Script:
		return r.Script, nil
	case YAML:
		return r.YAML, nil
	}
	return nil, fmt.Errorf("format %s has no text form", f)
}

// Read decodes the cards in a stream.
func (r *Registry) Read(f Format, in io.Reader) ([]card.Card, error) {
	t, err := r.Transformer(f)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("read %s input: %w", f, err)
	}
	return t.FromText(string(data))
}

// ReadFile decodes the cards in the file at path.
func (r *Registry) ReadFile(ctx context.Context, f Format, path string) ([]card.Card, error) {
	if f == CDB {
		return cdb.Read(ctx, path)
	}
	t, err := r.Transformer(f)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	cards, err := t.FromText(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cards, nil
}

// Write encodes cards to a stream, records separated by a blank line.
func (r *Registry) Write(f Format, out io.Writer, cards []card.Card) error {
	t, err := r.Transformer(f)
	if err != nil {
		return err
	}
	text, err := card.Join(t, cards)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(out, text); err != nil {
		return fmt.Errorf("write %s output: %w", f, err)
	}
	return nil
}

// WriteFile stores cards at path. CDB upserts into the database and
// Script rewrites one script per card, with {id} in path replaced by the
// code; the other formats overwrite the file.
func (r *Registry) WriteFile(ctx context.Context, f Format, path string, cards []card.Card) error {
	switch f {
	case CDB:
		return cdb.Write(ctx, path, cards)
	case Script:
		return r.Script.SaveTo(cards, path)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer file.Close()

	if err := r.Write(f, file, cards); err != nil {
		return err
	}
	return file.Close()
}
