package xyyz

import (
	"strconv"
	"strings"

	"cdb-transformer/internal/card"
	"cdb-transformer/internal/setcode"
)

func formatStat(n int32) string {
	switch n {
	case card.StatUnknown:
		return statQuery
	case card.StatInfinite:
		return statInf
	}
	return strconv.FormatInt(int64(n), 10)
}

// FormatLevel renders the level slot as 星, 阶 or LINK- by monster kind.
func FormatLevel(c card.Card) string {
	switch s := c.Stats().(type) {
	case card.Rank:
		return strconv.FormatUint(uint64(s), 10) + levelRank
	case card.LinkRating:
		return levelLink + strconv.FormatUint(uint64(s.Rating), 10)
	case card.StarLevel:
		return strconv.FormatUint(uint64(s), 10) + levelStar
	}
	return ""
}

func formatPack(p *card.PackInfo) string {
	return "[" + strings.Join([]string{p.PackID, p.Pack, strings.Join(p.Rarity, flagSeparator), p.Date}, "|") + "]"
}

// formatHeader renders the first line of a record.
func formatHeader(c card.Card) string {
	var b strings.Builder
	if c.Pack != nil {
		b.WriteString(formatPack(c.Pack))
	}
	b.WriteString(c.Name)
	b.WriteByte('(')
	b.WriteString(strconv.FormatUint(uint64(c.Code), 10))
	if c.Alias > 0 {
		b.WriteString("=>")
		b.WriteString(strconv.FormatUint(uint64(c.Alias), 10))
	}
	b.WriteString(") ")

	if c.IsMonster() {
		b.WriteString(FormatAttribute(c.Attribute))
		b.WriteByte(' ')
		b.WriteString(FormatLevel(c))
		b.WriteByte(' ')
		b.WriteString(FormatRace(c.Race))
		b.WriteString(FormatSubtype(c.Type))
		b.WriteByte(' ')
		b.WriteString(formatStat(c.Attack))
		if c.Type.Has(card.TypeLink) {
			b.WriteByte(' ')
			b.WriteString(FormatLinkMarkers(c.LinkMarker))
		} else {
			b.WriteByte(' ')
			b.WriteString(formatStat(c.Defense))
		}
	} else {
		b.WriteString(FormatKind(c.Type))
	}

	if !c.OT.IsDefault() {
		b.WriteString(" (")
		b.WriteString(FormatOT(c.OT))
		b.WriteByte(')')
	}
	return b.String()
}

// format renders the full text block of c. Blocks are joined by newlines
// with no trailing separator; the description line is always present.
func format(c card.Card, sets *setcode.Table) string {
	lines := []string{formatHeader(c)}
	if c.IsMonster() && c.Type.Has(card.TypePendulum) {
		lines = append(lines, "←"+strconv.FormatUint(uint64(c.LScale), 10)+" "+scaleLabel+" "+
			strconv.FormatUint(uint64(c.RScale), 10)+"→")
	}
	if c.Setcode != 0 {
		if names := sets.Decode(c.Setcode); names != "" {
			lines = append(lines, labelSeries+names)
		}
	}
	lines = append(lines, c.Desc)
	if !c.Category.IsEmpty() {
		lines = append(lines, labelCategory+FormatCategory(c.Category))
	}
	if len(c.Texts) > 0 {
		lines = append(lines, labelTexts+strings.Join(c.Texts, textSeparator))
	}
	return strings.Join(lines, "\n")
}
