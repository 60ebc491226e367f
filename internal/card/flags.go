package card

import "math/bits"

// Flag is the constraint shared by every bit-set type in this package.
type Flag interface {
	~uint32 | ~uint64
}

// Members returns the single-bit members of set in ascending bit order.
func Members[T Flag](set T) []T {
	var out []T
	v := uint64(set)
	for v != 0 {
		b := uint64(1) << bits.TrailingZeros64(v)
		out = append(out, T(b))
		v &^= b
	}
	return out
}

// Attribute is the monster attribute bit-set.
type Attribute uint32

const (
	AttributeEarth Attribute = 1 << iota
	AttributeWater
	AttributeFire
	AttributeWind
	AttributeLight
	AttributeDark
	AttributeDivine

	AttributeAll = AttributeEarth | AttributeWater | AttributeFire | AttributeWind |
		AttributeLight | AttributeDark | AttributeDivine
)

func (a Attribute) IsEmpty() bool { return a == 0 }

func (a Attribute) Has(f Attribute) bool { return f != 0 && a&f == f }

func (a Attribute) Members() []Attribute { return Members(a & AttributeAll) }

// Race is the monster race bit-set.
type Race uint32

const (
	RaceWarrior Race = 1 << iota
	RaceSpellcaster
	RaceFairy
	RaceFiend
	RaceZombie
	RaceMachine
	RaceAqua
	RacePyro
	RaceRock
	RaceWindbeast
	RacePlant
	RaceInsect
	RaceThunder
	RaceDragon
	RaceBeast
	RaceBeastWarrior
	RaceDinosaur
	RaceFish
	RaceSeaSerpent
	RaceReptile
	RacePsychic
	RaceDivine
	RaceCreatorGod
	RaceWyrm
	RaceCyberse

	RaceAll Race = 1<<25 - 1
)

func (r Race) IsEmpty() bool { return r == 0 }

func (r Race) Has(f Race) bool { return f != 0 && r&f == f }

func (r Race) Members() []Race { return Members(r & RaceAll) }

// Type is the card type bit-set. Bit 0x8 is unassigned.
type Type uint32

const (
	TypeMonster       Type = 0x1
	TypeSpell         Type = 0x2
	TypeTrap          Type = 0x4
	TypeNormal        Type = 0x10
	TypeEffect        Type = 0x20
	TypeFusion        Type = 0x40
	TypeRitual        Type = 0x80
	TypeTrapMonster   Type = 0x100
	TypeSpirit        Type = 0x200
	TypeUnion         Type = 0x400
	TypeDual          Type = 0x800
	TypeTuner         Type = 0x1000
	TypeSynchro       Type = 0x2000
	TypeToken         Type = 0x4000
	TypeQuickPlay     Type = 0x10000
	TypeContinuous    Type = 0x20000
	TypeEquip         Type = 0x40000
	TypeField         Type = 0x80000
	TypeCounter       Type = 0x100000
	TypeFlip          Type = 0x200000
	TypeToon          Type = 0x400000
	TypeXyz           Type = 0x800000
	TypePendulum      Type = 0x1000000
	TypeSpecialSummon Type = 0x2000000
	TypeLink          Type = 0x4000000
)

const (
	// TypeExtraDeck are the summoning kinds whose non-effect monsters carry
	// neither Normal nor Effect. Ritual monsters follow the same rule.
	TypeExtraDeck = TypeFusion | TypeRitual | TypeSynchro | TypeXyz | TypeLink

	// TypeSummonKinds are rendered first in a monster's subtype list.
	TypeSummonKinds = TypeNormal | TypeFusion | TypeRitual | TypeSynchro | TypeXyz |
		TypePendulum | TypeSpecialSummon | TypeLink

	// TypeSubKinds follow the summon kinds in a monster's subtype list.
	TypeSubKinds = TypeFlip | TypeToken | TypeSpirit | TypeUnion | TypeToon | TypeDual | TypeTuner

	TypeSpellKinds = TypeQuickPlay | TypeContinuous | TypeEquip | TypeField | TypeRitual
	TypeTrapKinds  = TypeContinuous | TypeCounter
)

func (t Type) IsEmpty() bool { return t == 0 }

func (t Type) Has(f Type) bool { return f != 0 && t&f == f }

// Any reports whether t shares at least one bit with f.
func (t Type) Any(f Type) bool { return t&f != 0 }

func (t Type) Members() []Type { return Members(t) }

// LinkMarker is the link arrow bit-set. 0x10 is the centre and never used.
type LinkMarker uint32

const (
	LinkBottomLeft  LinkMarker = 0x1
	LinkBottom      LinkMarker = 0x2
	LinkBottomRight LinkMarker = 0x4
	LinkLeft        LinkMarker = 0x8
	LinkCenter      LinkMarker = 0x10
	LinkRight       LinkMarker = 0x20
	LinkTopLeft     LinkMarker = 0x40
	LinkTop         LinkMarker = 0x80
	LinkTopRight    LinkMarker = 0x100

	LinkAll = LinkBottomLeft | LinkBottom | LinkBottomRight | LinkLeft |
		LinkRight | LinkTopLeft | LinkTop | LinkTopRight
)

func (l LinkMarker) IsEmpty() bool { return l&LinkAll == 0 }

func (l LinkMarker) Has(f LinkMarker) bool { return f != 0 && l&f == f }

func (l LinkMarker) Members() []LinkMarker { return Members(l & LinkAll) }

// Count is the number of arrows, i.e. the link rating the markers imply.
func (l LinkMarker) Count() int { return bits.OnesCount32(uint32(l & LinkAll)) }

// OT is the ownership/territory bit-set.
type OT uint32

const (
	OTOCG    OT = 0x1
	OTTCG    OT = 0x2
	OTCustom OT = 0x4
	OTSC     OT = 0x8
	// OTDraft only exists in the text format; database columns cannot hold it.
	OTDraft OT = 0x10

	OTDefault   = OTOCG | OTTCG
	OTSCRelease = OTOCG | OTTCG | OTSC
	OTStorable  = OTOCG | OTTCG | OTCustom | OTSC
)

func (o OT) IsEmpty() bool { return o == 0 }

func (o OT) Has(f OT) bool { return f != 0 && o&f == f }

func (o OT) Members() []OT { return Members(o) }

// IsDefault reports whether o is exactly OCG&TCG.
func (o OT) IsDefault() bool { return o == OTDefault }

// Category is the effect classification bit-set, 32 independent tags.
type Category uint32

func (c Category) IsEmpty() bool { return c == 0 }

func (c Category) Has(f Category) bool { return f != 0 && c&f == f }

func (c Category) Members() []Category { return Members(c) }
