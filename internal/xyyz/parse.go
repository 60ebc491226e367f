package xyyz

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"cdb-transformer/internal/card"
	"cdb-transformer/internal/setcode"
)

// Continuation line labels, checked in this order.
const (
	labelSeriesRaw = "系列字段："
	labelSeries    = "系列："
	labelCategory  = "效果分类："
	labelTexts     = "提示文本："
)

const (
	levelStar  = "星"
	levelRank  = "阶"
	levelLink  = "LINK-"
	scaleLabel = "【灵摆】"
	statInf    = "∞"
	statQuery  = "?"
)

// headerPattern matches `[pack]name(code=>alias) rest`.
var headerPattern = regexp.MustCompile(`^(?:\[([^\]]*)\])?(.+)\((\d+)(?:\s*=>\s*(\d+)\s*)?\)\s+(.+)$`)

// otPattern splits a trailing parenthesized OT group off the header rest.
var otPattern = regexp.MustCompile(`^(.*?)\s*\(([^()]*)\)$`)

// statPattern matches `attribute level race[/subtype] atk [def] [markers]`.
var statPattern = regexp.MustCompile(`^(\S+)\s+(\S+)\s+(\S+)\s+(\d+|\?|∞)(?:\s+(\d+|\?|∞))?(?:\s*(\[.*\]))?$`)

var pendulumPattern = regexp.MustCompile(`^←(\d+)\s*` + scaleLabel + `\s*(\d+)→$`)

// parser is the single-pass line state machine. current is the open record.
type parser struct {
	sets     *setcode.Table
	cards    []card.Card
	current  *card.Card
	spanOpen bool
	lineNum  int
	diags    card.Diagnostics
}

func newParser(sets *setcode.Table) *parser {
	return &parser{sets: sets}
}

func (p *parser) report(ds ...card.Diagnostic) {
	p.diags = append(p.diags, card.Diagnostics(ds).AtLine(p.lineNum)...)
}

// run parses text into records. Offsets in Range are byte offsets.
func (p *parser) run(text string) ([]card.Card, card.Diagnostics) {
	offset := 0
	for _, raw := range strings.Split(text, "\n") {
		start := offset
		offset += len(raw) + 1
		p.lineNum++

		line := strings.TrimSuffix(raw, "\r")
		switch {
		case strings.HasPrefix(line, "#"):
			continue
		case strings.TrimSpace(line) == "":
			p.closeSpan(start)
			continue
		}
		if p.header(line, start) {
			continue
		}
		p.continuation(line)
	}
	p.flush(len(text))
	return p.cards, p.diags
}

func (p *parser) closeSpan(at int) {
	if p.current != nil && p.spanOpen {
		p.current.Range.End = at
		p.spanOpen = false
	}
}

func (p *parser) flush(at int) {
	if p.current == nil {
		return
	}
	p.closeSpan(at)
	p.cards = append(p.cards, *p.current)
	p.current = nil
}

// header opens a new record when line is a header line.
func (p *parser) header(line string, start int) bool {
	m := headerPattern.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	p.flush(start)

	c := card.New(p.number(m[3]), m[2])
	c.Range = &card.Range{Start: start, End: -1}
	if m[4] != "" {
		c.Alias = p.number(m[4])
	}
	if strings.HasPrefix(line, "[") && !strings.HasPrefix(m[2], "[") {
		c.Pack = parsePack(m[1])
	}

	rest := strings.TrimRightFunc(m[5], unicode.IsSpace)
	if om := otPattern.FindStringSubmatch(rest); om != nil {
		ot, diags := ParseOT(om[2])
		p.report(diags...)
		c.OT = ot
		rest = om[1]
	}

	if !p.stats(&c, rest) {
		t, diags := ParseKind(rest)
		p.report(diags...)
		c.Type = t
	}

	p.current = &c
	p.spanOpen = true
	return true
}

// stats decodes the monster stat segment. It reports false when rest is
// not shaped like one, leaving c untouched.
func (p *parser) stats(c *card.Card, rest string) bool {
	m := statPattern.FindStringSubmatch(rest)
	if m == nil || (m[5] == "" && m[6] == "") {
		return false
	}

	attribute, diags := ParseAttribute(m[1])
	p.report(diags...)
	c.Attribute = attribute

	level, levelType := p.level(m[2])
	c.Level = level
	if m[6] != "" {
		levelType |= card.TypeLink
	}

	tokens := strings.Split(m[3], flagSeparator)
	race, diags := ParseRace(tokens[0])
	p.report(diags...)
	i := 1
	for ; i < len(tokens) && isRaceName(tokens[i]); i++ {
		r, _ := ParseRace(tokens[i])
		race |= r
	}
	c.Race = race

	subtype, normal, diags := decodeSubtypeTokens(tokens[i:])
	p.report(diags...)
	c.Type = withEffectRule(subtype|levelType, normal) | card.TypeMonster

	c.Attack = p.stat(m[4])
	if m[5] != "" {
		c.Defense = p.stat(m[5])
	}
	if m[6] != "" {
		markers, diags := ParseLinkMarkers(m[6])
		p.report(diags...)
		c.LinkMarker = markers
		c.Defense = int32(markers)
	}
	return true
}

// level decodes `8星`, `4阶` (Xyz) or `LINK-2` (Link).
func (p *parser) level(s string) (uint32, card.Type) {
	var (
		digits string
		t      card.Type
	)
	switch {
	case strings.HasSuffix(s, levelStar):
		digits = strings.TrimSuffix(s, levelStar)
	case strings.HasSuffix(s, levelRank):
		digits, t = strings.TrimSuffix(s, levelRank), card.TypeXyz
	case strings.HasPrefix(s, levelLink):
		digits, t = strings.TrimPrefix(s, levelLink), card.TypeLink
	default:
		p.report(card.Diagnostic{Kind: card.UnknownToken, Token: s, Message: "cannot recognize level"})
		return 0, 0
	}
	return p.number(strings.TrimSpace(digits)), t
}

// stat decodes an attack or defense value, ∞ and ? included.
func (p *parser) stat(s string) int32 {
	switch s {
	case statInf:
		return card.StatInfinite
	case statQuery:
		return card.StatUnknown
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		p.report(card.Diagnostic{Kind: card.BadNumber, Token: s, Message: "invalid stat"})
		return 0
	}
	return int32(n)
}

// number decodes an unsigned decimal, substituting 0 when malformed.
func (p *parser) number(s string) uint32 {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		p.report(card.Diagnostic{Kind: card.BadNumber, Token: s, Message: "invalid number"})
		return 0
	}
	return uint32(n)
}

// continuation applies a non-header line to the open record.
func (p *parser) continuation(line string) {
	c := p.current
	if c == nil {
		return
	}

	if c.Type.Has(card.TypePendulum) {
		if m := pendulumPattern.FindStringSubmatch(line); m != nil {
			c.LScale = p.number(m[1])
			c.RScale = p.number(m[2])
			return
		}
	}

	switch {
	case strings.HasPrefix(line, labelSeriesRaw):
		code, diags := p.sets.Encode(strings.TrimPrefix(line, labelSeriesRaw))
		p.report(diags...)
		c.Setcode = code
	case strings.HasPrefix(line, labelSeries):
		code, diags := p.sets.Encode(strings.TrimPrefix(line, labelSeries))
		p.report(diags...)
		c.Setcode |= code
	case strings.HasPrefix(line, labelCategory):
		category, diags := ParseCategory(strings.TrimPrefix(line, labelCategory))
		p.report(diags...)
		c.Category = category
	case strings.HasPrefix(line, labelTexts):
		c.Texts = strings.Split(strings.TrimPrefix(line, labelTexts), textSeparator)
	case c.Desc == "":
		c.Desc = line
	default:
		c.Desc += "\n" + line
	}
}

// parsePack decodes `pack_id|pack|rarity/rarity|date`.
func parsePack(s string) *card.PackInfo {
	fields := strings.SplitN(s, "|", 4)
	for len(fields) < 4 {
		fields = append(fields, "")
	}
	info := &card.PackInfo{PackID: fields[0], Pack: fields[1], Date: fields[3]}
	if fields[2] != "" {
		info.Rarity = strings.Split(fields[2], flagSeparator)
	}
	return info
}
