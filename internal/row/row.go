// Package row maps cards onto the two-table layout of card databases:
//
//	datas(id, ot, alias, setcode, type, atk, def, level, race, attribute, category)
//	texts(id, name, desc, str1, ..., str16)
//
// Pendulum scales share the level column and Link arrows share the def
// column, so the mapping is not a plain field copy.
package row

import (
	"cdb-transformer/internal/card"
)

// TextSlots is the number of strN hint columns.
const TextSlots = 16

// Schema creates both tables when missing.
const Schema = `CREATE TABLE IF NOT EXISTS datas(id integer primary key,ot integer,alias integer,setcode integer,type integer,atk integer,def integer,level integer,race integer,attribute integer,category integer);
CREATE TABLE IF NOT EXISTS texts(id integer primary key,name text,"desc" text,str1 text,str2 text,str3 text,str4 text,str5 text,str6 text,str7 text,str8 text,str9 text,str10 text,str11 text,str12 text,str13 text,str14 text,str15 text,str16 text);`

const (
	lscaleShift = 24
	rscaleShift = 16
	levelMask   = 0xff
	scaleMask   = 0xff
)

// Row is one card in column form.
type Row struct {
	ID        int64
	OT        int64
	Alias     int64
	Setcode   int64
	Type      int64
	Atk       int64
	Def       int64
	Level     int64
	Race      int64
	Attribute int64
	Category  int64
	Name      string
	Desc      string
	Str       [TextSlots]string
}

// FromCard flattens c. The Draft OT bit is dropped and hints past the
// sixteenth are cut.
func FromCard(c card.Card) Row {
	r := Row{
		ID:        int64(c.Code),
		OT:        int64(c.OT & card.OTStorable),
		Alias:     int64(c.Alias),
		Setcode:   int64(c.Setcode),
		Type:      int64(c.Type),
		Atk:       int64(c.Attack),
		Def:       int64(c.Defense),
		Level:     int64(c.Level),
		Race:      int64(c.Race),
		Attribute: int64(c.Attribute),
		Category:  int64(c.Category),
		Name:      c.Name,
		Desc:      c.Desc,
		Str:       PackTexts(c.Texts),
	}
	if c.Type.Has(card.TypePendulum) {
		lscale := int64(c.LScale & scaleMask)
		rscale := int64(c.RScale & scaleMask)
		r.Level |= lscale<<lscaleShift | rscale<<rscaleShift
	}
	if c.Type.Has(card.TypeLink) {
		r.Def = int64(c.LinkMarker & card.LinkAll)
	}
	return r
}

// Card rebuilds the record. Stat columns are only read for monsters.
func (r Row) Card() card.Card {
	c := card.Card{
		Code:     uint32(r.ID),
		Name:     r.Name,
		Desc:     r.Desc,
		Alias:    uint32(r.Alias),
		Setcode:  uint64(r.Setcode),
		Type:     card.Type(r.Type),
		OT:       card.OT(r.OT),
		Category: card.Category(uint32(r.Category)),
		Texts:    UnpackTexts(r.Str),
	}
	if !c.IsMonster() {
		return c
	}

	level := uint32(r.Level)
	c.Attribute = card.Attribute(r.Attribute)
	c.Race = card.Race(r.Race)
	c.Attack = int32(r.Atk)
	c.Defense = int32(r.Def)
	if c.Type.Has(card.TypeLink) {
		c.LinkMarker = card.LinkMarker(r.Def) & card.LinkAll
	}
	if c.Type.Has(card.TypePendulum) {
		c.LScale = (level >> lscaleShift) & scaleMask
		c.RScale = (level >> rscaleShift) & scaleMask
	}
	c.Level = level & levelMask
	return c
}

// PackTexts spreads hints over the fixed columns.
func PackTexts(texts []string) [TextSlots]string {
	var out [TextSlots]string
	copy(out[:], texts)
	return out
}

// UnpackTexts keeps column positions and drops trailing empty columns.
func UnpackTexts(cols [TextSlots]string) []string {
	last := -1
	for i, s := range cols {
		if s != "" {
			last = i
		}
	}
	if last < 0 {
		return nil
	}
	out := make([]string, last+1)
	copy(out, cols[:last+1])
	return out
}

// DatasArgs lists the datas values in column order.
func (r Row) DatasArgs() []any {
	return []any{r.ID, r.OT, r.Alias, r.Setcode, r.Type, r.Atk, r.Def, r.Level, r.Race, r.Attribute, r.Category}
}

// TextsArgs lists the texts values in column order.
func (r Row) TextsArgs() []any {
	args := make([]any, 0, 3+TextSlots)
	args = append(args, r.ID, r.Name, r.Desc)
	for _, s := range r.Str {
		args = append(args, s)
	}
	return args
}

// Dest returns scan targets for the joined datas+texts column order used
// by DatasArgs followed by texts name, desc, str1..str16.
func (r *Row) Dest() []any {
	dest := []any{
		&r.ID, &r.OT, &r.Alias, &r.Setcode, &r.Type, &r.Atk, &r.Def,
		&r.Level, &r.Race, &r.Attribute, &r.Category, &r.Name, &r.Desc,
	}
	for i := range r.Str {
		dest = append(dest, &r.Str[i])
	}
	return dest
}
