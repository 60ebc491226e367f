// Package sqltext renders cards as SQL statements for the card database
// schema and reads such scripts back.
package sqltext

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"cdb-transformer/internal/card"
	"cdb-transformer/internal/cdb"
	"cdb-transformer/internal/row"
)

// Transformer is the SQL text format.
type Transformer struct{}

// New creates a SQL transformer.
func New() *Transformer {
	return &Transformer{}
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func ints(vs ...int64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return strings.Join(parts, ",")
}

// ToText renders one INSERT OR REPLACE per table.
func (t *Transformer) ToText(c card.Card) (string, error) {
	r := row.FromCard(c)

	var b strings.Builder
	b.WriteString("INSERT OR REPLACE INTO datas(id,ot,alias,setcode,type,atk,def,level,race,attribute,category) VALUES(")
	b.WriteString(ints(r.ID, r.OT, r.Alias, r.Setcode, r.Type, r.Atk, r.Def, r.Level, r.Race, r.Attribute, r.Category))
	b.WriteString(");\n")

	b.WriteString(`INSERT OR REPLACE INTO texts(id,name,"desc"`)
	for i := 1; i <= row.TextSlots; i++ {
		fmt.Fprintf(&b, ",str%d", i)
	}
	b.WriteString(") VALUES(")
	b.WriteString(strconv.FormatInt(r.ID, 10))
	b.WriteString(",")
	b.WriteString(quote(r.Name))
	b.WriteString(",")
	b.WriteString(quote(r.Desc))
	for _, s := range r.Str {
		b.WriteString(",")
		b.WriteString(quote(s))
	}
	b.WriteString(");")
	return b.String(), nil
}

// FromText executes text against a scratch in-memory database that has
// the card tables, then reads the rows back.
func (t *Transformer) FromText(text string) ([]card.Card, error) {
	return t.Read(context.Background(), text)
}

// Read is FromText with a caller context.
func (t *Transformer) Read(ctx context.Context, text string) ([]card.Card, error) {
	d, err := cdb.Open(ctx, cdb.Memory)
	if err != nil {
		return nil, err
	}
	defer d.Close()

	if err := d.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) != "" {
		if err := d.Exec(ctx, text); err != nil {
			return nil, err
		}
	}
	return d.Cards(ctx)
}
