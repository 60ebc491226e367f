// Package setcode maps 16-bit series identifiers to display names and
// packs up to four of them into a card's 64-bit setcode field.
//
// A Table is immutable once built. The process-wide holder in global.go
// swaps whole tables, so readers see either the old or the new one.
package setcode

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"cdb-transformer/internal/card"

	"golang.org/x/sync/errgroup"
)

// Keyword starts every relevant line of a strings configuration file.
const Keyword = "!setname"

// Separator joins series names in the text format.
const Separator = "、"

// Table is an immutable id <-> name snapshot.
type Table struct {
	names map[uint16]string
	ids   map[string]uint16
}

// Empty is the table used before anything is loaded.
var Empty = &Table{names: map[uint16]string{}, ids: map[string]uint16{}}

// New builds a table from an id -> name map.
func New(names map[uint16]string) *Table {
	t := &Table{
		names: make(map[uint16]string, len(names)),
		ids:   make(map[string]uint16, len(names)),
	}
	for id, name := range names {
		t.names[id] = name
	}
	t.index()
	return t
}

// index builds the reverse map. When two ids share a name the lowest id wins.
func (t *Table) index() {
	ids := make([]uint16, 0, len(t.names))
	for id := range t.names {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	for _, id := range ids {
		t.ids[t.names[id]] = id
	}
}

// Len is the number of ids in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.names)
}

// Name looks up the display name of id.
func (t *Table) Name(id uint16) (string, bool) {
	if t == nil {
		return "", false
	}
	name, ok := t.names[id]
	return name, ok
}

// ID looks up the id of a display name.
func (t *Table) ID(name string) (uint16, bool) {
	if t == nil {
		return 0, false
	}
	id, ok := t.ids[name]
	return id, ok
}

// Names returns a copy of the id -> name map.
func (t *Table) Names() map[uint16]string {
	out := make(map[uint16]string, t.Len())
	if t == nil {
		return out
	}
	for id, name := range t.names {
		out[id] = name
	}
	return out
}

// parseInto reads strings configuration lines into names. Later lines for
// the same id overwrite earlier ones.
func parseInto(r io.Reader, names map[uint16]string) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		id, name, ok := parseLine(scanner.Text())
		if ok {
			names[id] = name
		}
	}
	return scanner.Err()
}

// parseLine decodes `!setname 0x<hex> <name>[\t<suffix>]`.
func parseLine(line string) (uint16, string, bool) {
	line = strings.TrimRight(line, "\r")
	rest, ok := strings.CutPrefix(line, Keyword)
	if !ok || rest == "" || (rest[0] != ' ' && rest[0] != '\t') {
		return 0, "", false
	}
	rest = strings.TrimLeft(rest, " \t")
	idx := strings.IndexAny(rest, " \t")
	if idx < 0 {
		return 0, "", false
	}
	hex := strings.TrimPrefix(strings.TrimPrefix(rest[:idx], "0x"), "0X")
	id, err := strconv.ParseUint(hex, 16, 16)
	if err != nil {
		return 0, "", false
	}
	name := strings.TrimLeft(rest[idx:], " \t")
	name, _, _ = strings.Cut(name, "\t")
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, "", false
	}
	return uint16(id), name, true
}

// Parse builds a table from one strings configuration source.
func Parse(r io.Reader) (*Table, error) {
	names := make(map[uint16]string)
	if err := parseInto(r, names); err != nil {
		return nil, fmt.Errorf("scan strings conf: %w", err)
	}
	return New(names), nil
}

// FromString builds a table from configuration text supplied directly.
func FromString(text string) *Table {
	// A strings.Reader cannot fail, only overlong lines can.
	t, err := Parse(strings.NewReader(text))
	if err != nil {
		return Empty
	}
	return t
}

// Load reads every path concurrently and merges them in argument order, so
// later files overwrite earlier ones for the same id. Any unreadable path
// fails the whole load.
func Load(paths ...string) (*Table, error) {
	parts := make([]map[uint16]string, len(paths))

	var g errgroup.Group
	for i, path := range paths {
		g.Go(func() error {
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open strings conf %s: %w", path, err)
			}
			defer f.Close()

			names := make(map[uint16]string)
			if err := parseInto(f, names); err != nil {
				return fmt.Errorf("scan strings conf %s: %w", path, err)
			}
			parts[i] = names
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make(map[uint16]string)
	for _, names := range parts {
		for id, name := range names {
			merged[id] = name
		}
	}
	return New(merged), nil
}

// Encode turns a `、`-separated list of names into a setcode. Tokens of the
// form 0x<hex> are taken verbatim. Each resolved id is added after shifting
// the accumulator left by 16 bits, so the first name lands in the highest
// populated slot. Unresolved tokens are skipped and reported.
func (t *Table) Encode(names string) (uint64, card.Diagnostics) {
	var (
		setcode uint64
		diags   card.Diagnostics
	)
	for _, token := range strings.Split(names, Separator) {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		id, ok := t.resolve(token)
		if !ok {
			diags = append(diags, card.Diagnostic{
				Kind:    card.UnknownSet,
				Token:   token,
				Message: "cannot recognize set",
			})
			continue
		}
		setcode = setcode<<16 + uint64(id)
	}
	return setcode, diags
}

func (t *Table) resolve(token string) (uint16, bool) {
	if hex, ok := strings.CutPrefix(token, "0x"); ok {
		id, err := strconv.ParseUint(hex, 16, 16)
		if err == nil {
			return uint16(id), true
		}
	}
	return t.ID(token)
}

// Slots returns the four 16-bit slots of setcode, lowest first.
func Slots(setcode uint64) [4]uint16 {
	return [4]uint16{
		uint16(setcode),
		uint16(setcode >> 16),
		uint16(setcode >> 32),
		uint16(setcode >> 48),
	}
}

// Decode lists the non-zero slots of setcode lowest first, by name when
// known and as a 0x literal otherwise.
func (t *Table) Decode(setcode uint64) string {
	var names []string
	for _, id := range Slots(setcode) {
		if id == 0 {
			continue
		}
		if name, ok := t.Name(id); ok {
			names = append(names, name)
		} else {
			names = append(names, fmt.Sprintf("0x%x", id))
		}
	}
	return strings.Join(names, Separator)
}
