package card

// PackInfo is the provenance of a printed card.
type PackInfo struct {
	PackID string   `yaml:"pack_id"`
	Pack   string   `yaml:"pack,omitempty"`
	Rarity []string `yaml:"rarity,omitempty"`
	Date   string   `yaml:"date,omitempty"`
}

// Range is the half-open byte span [Start, End) a record occupied in its source text.
type Range struct {
	Start int
	End   int
}

// Card is the record every format reads and writes.
//
// Level and Defense are storage slots whose meaning depends on Type: Level
// holds the rank of Xyz monsters and the rating of Link monsters, Defense
// holds the arrow bits of Link monsters. Use Stats to read them by meaning.
type Card struct {
	Code       uint32     `yaml:"code"`
	Name       string     `yaml:"name"`
	Desc       string     `yaml:"desc"`
	Alias      uint32     `yaml:"alias,omitempty"`
	Setcode    uint64     `yaml:"setcode,omitempty"`
	Type       Type       `yaml:"type"`
	Level      uint32     `yaml:"level,omitempty"`
	Attribute  Attribute  `yaml:"attribute,omitempty"`
	Race       Race       `yaml:"race,omitempty"`
	Attack     int32      `yaml:"attack,omitempty"`
	Defense    int32      `yaml:"defense,omitempty"`
	LScale     uint32     `yaml:"lscale,omitempty"`
	RScale     uint32     `yaml:"rscale,omitempty"`
	LinkMarker LinkMarker `yaml:"link_marker,omitempty"`
	OT         OT         `yaml:"ot"`
	Category   Category   `yaml:"category,omitempty"`
	Texts      []string   `yaml:"texts,omitempty"`
	Pack       *PackInfo  `yaml:"pack,omitempty"`
	Range      *Range     `yaml:"-"`
}

// Sentinel stat values.
const (
	StatInfinite int32 = -1
	StatUnknown  int32 = -2
)

// New returns an empty card with the default OT.
func New(code uint32, name string) Card {
	return Card{Code: code, Name: name, OT: OTDefault}
}

func (c *Card) IsMonster() bool { return c.Type.Has(TypeMonster) }

func (c *Card) IsSpell() bool { return c.Type.Has(TypeSpell) }

func (c *Card) IsTrap() bool { return c.Type.Has(TypeTrap) }

func (c *Card) IsDraft() bool { return c.OT.Has(OTDraft) }

// MonsterStats is the meaning of a monster's Level (and, for Link
// monsters, Defense) slot. It is one of StarLevel, Rank or LinkRating.
type MonsterStats interface {
	monsterStats()
}

type StarLevel uint32

type Rank uint32

type LinkRating struct {
	Rating  uint32
	Markers LinkMarker
}

func (StarLevel) monsterStats()  {}
func (Rank) monsterStats()       {}
func (LinkRating) monsterStats() {}

// Stats interprets the overloaded storage slots. It returns nil for non-monsters.
func (c *Card) Stats() MonsterStats {
	switch {
	case !c.IsMonster():
		return nil
	case c.Type.Has(TypeLink):
		return LinkRating{Rating: c.Level, Markers: c.LinkMarker}
	case c.Type.Has(TypeXyz):
		return Rank(c.Level)
	default:
		return StarLevel(c.Level)
	}
}

// SetStats writes s back into the flat storage slots and the matching Type bit.
func (c *Card) SetStats(s MonsterStats) {
	switch v := s.(type) {
	case StarLevel:
		c.Type &^= TypeXyz | TypeLink
		c.Level = uint32(v)
	case Rank:
		c.Type = (c.Type &^ TypeLink) | TypeXyz
		c.Level = uint32(v)
	case LinkRating:
		c.Type = (c.Type &^ TypeXyz) | TypeLink
		c.Level = v.Rating
		c.LinkMarker = v.Markers & LinkAll
		c.Defense = int32(c.LinkMarker)
	}
}

// WithoutDraft drops cards carrying the draft OT bit, keeping order.
func WithoutDraft(cards []Card) []Card {
	out := make([]Card, 0, len(cards))
	for _, c := range cards {
		if !c.IsDraft() {
			out = append(out, c)
		}
	}
	return out
}
