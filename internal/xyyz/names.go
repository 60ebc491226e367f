package xyyz

import (
	"sort"

	"cdb-transformer/internal/card"
)

// nameTable is a bidirectional bit <-> display string table.
type nameTable[T card.Flag] struct {
	names  map[T]string
	values map[string]T
}

// newNameTable indexes entries. When two bits share a display string the
// lower bit wins on reverse lookup.
func newNameTable[T card.Flag](entries map[T]string) nameTable[T] {
	t := nameTable[T]{names: entries, values: make(map[string]T, len(entries))}
	keys := make([]T, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] > keys[j] })
	for _, k := range keys {
		t.values[entries[k]] = k
	}
	return t
}

func (t nameTable[T]) name(v T) (string, bool) {
	s, ok := t.names[v]
	return s, ok
}

func (t nameTable[T]) value(s string) (T, bool) {
	v, ok := t.values[s]
	return v, ok
}

// list returns the table sorted by bit value.
func (t nameTable[T]) list() []Name[T] {
	out := make([]Name[T], 0, len(t.names))
	for v, s := range t.names {
		out = append(out, Name[T]{Value: v, Display: s})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Value < out[j].Value })
	return out
}

// Name is one entry of a display name table.
type Name[T card.Flag] struct {
	Value   T
	Display string
}

const (
	attributeNone = "无"
	raceNone      = "无种族"
	kindNormal    = "通常"
	otNone        = "None"
)

var attributeNames = newNameTable(map[card.Attribute]string{
	card.AttributeEarth:  "地",
	card.AttributeWater:  "水",
	card.AttributeFire:   "炎",
	card.AttributeWind:   "风",
	card.AttributeLight:  "光",
	card.AttributeDark:   "暗",
	card.AttributeDivine: "神",
})

var raceNames = newNameTable(map[card.Race]string{
	card.RaceWarrior:      "战士",
	card.RaceSpellcaster:  "魔法使",
	card.RaceFairy:        "天使",
	card.RaceFiend:        "恶魔",
	card.RaceZombie:       "不死",
	card.RaceMachine:      "机械",
	card.RaceAqua:         "水",
	card.RacePyro:         "炎",
	card.RaceRock:         "岩石",
	card.RaceWindbeast:    "鸟兽",
	card.RacePlant:        "植物",
	card.RaceInsect:       "昆虫",
	card.RaceThunder:      "雷",
	card.RaceDragon:       "龙",
	card.RaceBeast:        "兽",
	card.RaceBeastWarrior: "兽战士",
	card.RaceDinosaur:     "恐龙",
	card.RaceFish:         "鱼",
	card.RaceSeaSerpent:   "海龙",
	card.RaceReptile:      "爬行类",
	card.RacePsychic:      "念动力",
	card.RaceDivine:       "神",
	card.RaceCreatorGod:   "创世神",
	card.RaceWyrm:         "幻龙",
	card.RaceCyberse:      "电子界",
})

var typeNames = newNameTable(map[card.Type]string{
	card.TypeMonster:       "怪兽",
	card.TypeSpell:         "魔法",
	card.TypeTrap:          "陷阱",
	card.TypeNormal:        "通常",
	card.TypeEffect:        "效果",
	card.TypeFusion:        "融合",
	card.TypeRitual:        "仪式",
	card.TypeTrapMonster:   "陷阱怪兽",
	card.TypeSpirit:        "灵魂",
	card.TypeUnion:         "同盟",
	card.TypeDual:          "二重",
	card.TypeTuner:         "调整",
	card.TypeSynchro:       "同调",
	card.TypeToken:         "衍生物",
	card.TypeQuickPlay:     "速攻",
	card.TypeContinuous:    "永续",
	card.TypeEquip:         "装备",
	card.TypeField:         "场地",
	card.TypeCounter:       "反击",
	card.TypeFlip:          "反转",
	card.TypeToon:          "卡通",
	card.TypeXyz:           "超量",
	card.TypePendulum:      "灵摆",
	card.TypeSpecialSummon: "特殊召唤",
	card.TypeLink:          "连接",
})

// typeSynonyms is consulted only while decoding a monster subtype.
var typeSynonyms = newNameTable(map[card.Type]string{
	card.TypeNormal: "非效果",
})

// The right arrow keeps the emoji presentation selector existing files use.
var linkMarkerNames = newNameTable(map[card.LinkMarker]string{
	card.LinkBottomLeft:  "↙",
	card.LinkBottom:      "↓",
	card.LinkBottomRight: "↘",
	card.LinkLeft:        "←",
	card.LinkRight:       "➡️",
	card.LinkTopLeft:     "↖",
	card.LinkTop:         "↑",
	card.LinkTopRight:    "↗",
})

// otNames holds single bits and the combinations that have their own label.
var otNames = newNameTable(map[card.OT]string{
	card.OTOCG:       "OCG",
	card.OTTCG:       "TCG",
	card.OTDefault:   "OT",
	card.OTCustom:    "Custom",
	card.OTSC:        "SCONLY",
	card.OTSCRelease: "SC",
	card.OTDraft:     "Draft",
})

var categoryNames = newNameTable(map[card.Category]string{
	0x1:        "魔陷破坏",
	0x2:        "怪兽破坏",
	0x4:        "卡片除外",
	0x8:        "送去墓地",
	0x10:       "返回手卡",
	0x20:       "返回卡组",
	0x40:       "手卡破坏",
	0x80:       "卡组破坏",
	0x100:      "抽卡辅助",
	0x200:      "卡组检索",
	0x400:      "卡片回收",
	0x800:      "表示形式",
	0x1000:     "控制权",
	0x2000:     "攻守变化",
	0x4000:     "穿刺伤害",
	0x8000:     "多次攻击",
	0x10000:    "攻击限制",
	0x20000:    "直接攻击",
	0x40000:    "特殊召唤",
	0x80000:    "衍生物",
	0x100000:   "种族相关",
	0x200000:   "属性相关",
	0x400000:   "LP伤害",
	0x800000:   "LP回复",
	0x1000000:  "破坏耐性",
	0x2000000:  "效果耐性",
	0x4000000:  "指示物",
	0x8000000:  "幸运",
	0x10000000: "融合相关",
	0x20000000: "同调相关",
	0x40000000: "超量相关",
	0x80000000: "效果无效",
})

// AttributeNames lists the attribute display names in bit order.
func AttributeNames() []Name[card.Attribute] { return attributeNames.list() }

// RaceNames lists the race display names in bit order.
func RaceNames() []Name[card.Race] { return raceNames.list() }

// TypeNames lists the type display names in bit order.
func TypeNames() []Name[card.Type] { return typeNames.list() }

// LinkMarkerNames lists the arrow glyphs in bit order.
func LinkMarkerNames() []Name[card.LinkMarker] { return linkMarkerNames.list() }

// OTNames lists the OT labels, combinations included, in value order.
func OTNames() []Name[card.OT] { return otNames.list() }

// CategoryNames lists the category tags in bit order.
func CategoryNames() []Name[card.Category] { return categoryNames.list() }
