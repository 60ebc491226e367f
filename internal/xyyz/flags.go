package xyyz

import (
	"strings"

	"cdb-transformer/internal/card"
)

const (
	flagSeparator     = "/"
	otSeparator       = "&"
	categorySeparator = "、"
	textSeparator     = "、"
)

func unknown(token, what string) card.Diagnostic {
	return card.Diagnostic{Kind: card.UnknownToken, Token: token, Message: "cannot recognize " + what}
}

// joinNames renders the members of set through t, ascending.
func joinNames[T card.Flag](t nameTable[T], members []T, sep string) string {
	parts := make([]string, 0, len(members))
	for _, m := range members {
		if s, ok := t.name(m); ok {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, sep)
}

// decodeNames ORs together every token t recognizes. Empty tokens are
// skipped, unknown ones are reported and dropped.
func decodeNames[T card.Flag](t nameTable[T], tokens []string, what string) (T, card.Diagnostics) {
	var (
		set   T
		diags card.Diagnostics
	)
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		v, ok := t.value(tok)
		if !ok {
			diags = append(diags, unknown(tok, what))
			continue
		}
		set |= v
	}
	return set, diags
}

// FormatAttribute joins the attribute names with "/", or renders 无 when empty.
func FormatAttribute(a card.Attribute) string {
	if a.IsEmpty() {
		return attributeNone
	}
	return joinNames(attributeNames, a.Members(), flagSeparator)
}

func ParseAttribute(s string) (card.Attribute, card.Diagnostics) {
	if s == attributeNone {
		return 0, nil
	}
	return decodeNames(attributeNames, strings.Split(s, flagSeparator), "attribute")
}

// FormatRace joins the race names with "/", or renders 无种族 when empty.
func FormatRace(r card.Race) string {
	if r.IsEmpty() {
		return raceNone
	}
	return joinNames(raceNames, r.Members(), flagSeparator)
}

func ParseRace(s string) (card.Race, card.Diagnostics) {
	if s == raceNone {
		return 0, nil
	}
	return decodeNames(raceNames, strings.Split(s, flagSeparator), "race")
}

// isRaceName reports whether token names a race, 无种族 included.
func isRaceName(token string) bool {
	if token == raceNone {
		return true
	}
	_, ok := raceNames.value(token)
	return ok
}

// FormatKind renders a spell or trap as <kind><魔法|陷阱>, kind 通常 when
// no kind bit is set. Monsters and empty types render as "".
func FormatKind(t card.Type) string {
	var base, kinds card.Type
	switch {
	case t.Has(card.TypeSpell):
		base, kinds = card.TypeSpell, card.TypeSpellKinds
	case t.Has(card.TypeTrap):
		base, kinds = card.TypeTrap, card.TypeTrapKinds
	default:
		return ""
	}
	kind := kindNormal
	if members := (t & kinds).Members(); len(members) > 0 {
		kind, _ = typeNames.name(members[0])
	}
	name, _ := typeNames.name(base)
	return kind + name
}

// ParseKind is the inverse of FormatKind. 通常 adds no kind bit.
func ParseKind(s string) (card.Type, card.Diagnostics) {
	for _, base := range []card.Type{card.TypeSpell, card.TypeTrap} {
		suffix, _ := typeNames.name(base)
		prefix, ok := strings.CutSuffix(s, suffix)
		if !ok {
			continue
		}
		if prefix == kindNormal || prefix == "" {
			return base, nil
		}
		kinds := card.TypeSpellKinds
		if base == card.TypeTrap {
			kinds = card.TypeTrapKinds
		}
		if v, ok := typeNames.value(prefix); ok && kinds.Has(v) {
			return base | v, nil
		}
		return base, card.Diagnostics{unknown(prefix, "card kind")}
	}
	return 0, card.Diagnostics{{Kind: card.Structure, Token: s, Message: "neither monster stats nor a spell/trap kind"}}
}

// FormatSubtype renders a monster's summon kinds, then its sub kinds, as
// "/a/b". Extra deck monsters without Effect get a 通常 tag after the
// summon kinds. Effect itself is never rendered.
func FormatSubtype(t card.Type) string {
	tags := make([]string, 0, 4)
	for _, m := range (t & card.TypeSummonKinds).Members() {
		name, _ := typeNames.name(m)
		tags = append(tags, name)
	}
	if t.Any(card.TypeExtraDeck) && !t.Has(card.TypeEffect) && !t.Has(card.TypeNormal) {
		tags = append(tags, kindNormal)
	}
	for _, m := range (t & card.TypeSubKinds).Members() {
		name, _ := typeNames.name(m)
		tags = append(tags, name)
	}
	if len(tags) == 0 {
		return ""
	}
	return flagSeparator + strings.Join(tags, flagSeparator)
}

// normalTokens records where 通常 appeared in a subtype list. A token
// ahead of an extra deck kind is the Normal bit itself; one after it, or
// with no extra deck kind following, is the non-effect tag.
type normalTokens struct {
	leading bool
	tag     bool
}

func (n normalTokens) any() bool { return n.leading || n.tag }

// decodeSubtypeTokens maps tokens through the type table, then the synonym
// table.
func decodeSubtypeTokens(tokens []string) (t card.Type, normal normalTokens, diags card.Diagnostics) {
	pending := false
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		v, ok := typeNames.value(tok)
		if !ok {
			if v, ok = typeSynonyms.value(tok); ok {
				normal.tag = true
				t |= v
				continue
			}
		}
		if !ok {
			diags = append(diags, unknown(tok, "monster type"))
			continue
		}
		switch {
		case v == card.TypeNormal:
			pending = true
		case card.TypeExtraDeck.Any(v) && pending:
			normal.leading = true
			pending = false
		}
		t |= v
	}
	if pending {
		normal.tag = true
	}
	return t, normal, diags
}

// withEffectRule undoes the non-effect tagging of FormatSubtype: extra deck
// monsters are effect monsters unless tagged 通常, and keep the Normal bit
// only when it was listed ahead of their kind. Other monsters are effect
// monsters unless Normal or Token.
func withEffectRule(t card.Type, normal normalTokens) card.Type {
	if t.Any(card.TypeExtraDeck) {
		if !normal.any() {
			return t | card.TypeEffect
		}
		t &^= card.TypeNormal | card.TypeEffect
		if normal.leading {
			t |= card.TypeNormal
		}
		return t
	}
	if !normal.any() && !t.Has(card.TypeToken) {
		t |= card.TypeEffect
	}
	return t
}

// ParseSubtype decodes a "/"-separated subtype string into Type bits,
// Monster not included.
func ParseSubtype(s string) (card.Type, card.Diagnostics) {
	t, normal, diags := decodeSubtypeTokens(strings.Split(s, flagSeparator))
	return withEffectRule(t, normal), diags
}

// FormatLinkMarkers renders arrows as "[a][b]" in bit order.
func FormatLinkMarkers(l card.LinkMarker) string {
	return "[" + joinNames(linkMarkerNames, l.Members(), "][") + "]"
}

func ParseLinkMarkers(s string) (card.LinkMarker, card.Diagnostics) {
	s = strings.TrimPrefix(strings.TrimSuffix(strings.TrimSpace(s), "]"), "[")
	return decodeNames(linkMarkerNames, strings.Split(s, "]["), "link marker")
}

// FormatOT renders "" for the default OCG&TCG, None for no bits, a
// dedicated label when the exact combination has one, and otherwise the
// "&"-joined single labels.
func FormatOT(o card.OT) string {
	switch {
	case o.IsDefault():
		return ""
	case o.IsEmpty():
		return otNone
	}
	if s, ok := otNames.name(o); ok {
		return s
	}
	return joinNames(otNames, o.Members(), otSeparator)
}

func ParseOT(s string) (card.OT, card.Diagnostics) {
	if strings.TrimSpace(s) == otNone {
		return 0, nil
	}
	tokens := strings.Split(s, otSeparator)
	for i := range tokens {
		tokens[i] = strings.TrimSpace(tokens[i])
	}
	return decodeNames(otNames, tokens, "ot")
}

// FormatCategory joins the category tags with "、" in bit order.
func FormatCategory(c card.Category) string {
	return joinNames(categoryNames, c.Members(), categorySeparator)
}

func ParseCategory(s string) (card.Category, card.Diagnostics) {
	tokens := strings.Split(s, categorySeparator)
	for i := range tokens {
		tokens[i] = strings.TrimSpace(tokens[i])
	}
	return decodeNames(categoryNames, tokens, "category")
}
