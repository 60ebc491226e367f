package xyyz

import (
	"bytes"
	"strings"
	"testing"

	"cdb-transformer/internal/card"
	"cdb-transformer/internal/setcode"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseOne(t *testing.T, c *Codec, text string) card.Card {
	t.Helper()
	cards, diags := c.Parse(text)
	require.Empty(t, diags)
	require.Len(t, cards, 1)
	return cards[0]
}

func TestParse_SpecialSummonMonster(t *testing.T) {
	text := "骄傲与灵魂之龙(100000000) 暗 8星 龙/特殊召唤 2500 2500\n这张卡不能通常召唤。"
	c := New(setcode.Empty)

	got := parseOne(t, c, text)

	assert.Equal(t, uint32(100000000), got.Code)
	assert.Equal(t, "骄傲与灵魂之龙", got.Name)
	assert.Equal(t, card.AttributeDark, got.Attribute)
	assert.Equal(t, uint32(8), got.Level)
	assert.Equal(t, card.RaceDragon, got.Race)
	assert.Equal(t, card.TypeMonster|card.TypeSpecialSummon|card.TypeEffect, got.Type)
	assert.Equal(t, int32(2500), got.Attack)
	assert.Equal(t, int32(2500), got.Defense)
	assert.Equal(t, "这张卡不能通常召唤。", got.Desc)
	assert.Equal(t, card.OTDefault, got.OT)

	assert.Equal(t, text, c.Format(got))
}

func TestParse_LinkMonster(t *testing.T) {
	c := New(setcode.Empty)

	got := parseOne(t, c, "连接蜘蛛(98978921) 地 LINK-2 电子界/连接 1000 [↓][↘]\n效果")

	assert.True(t, got.Type.Has(card.TypeMonster|card.TypeLink))
	assert.True(t, got.Type.Has(card.TypeEffect))
	assert.Equal(t, uint32(2), got.Level)
	assert.Equal(t, card.LinkBottom|card.LinkBottomRight, got.LinkMarker)
	assert.Equal(t, int32(card.LinkBottom|card.LinkBottomRight), got.Defense)
	assert.Equal(t, card.LinkRating{Rating: 2, Markers: card.LinkBottom | card.LinkBottomRight}, got.Stats())

	assert.Equal(t, "连接蜘蛛(98978921) 地 LINK-2 电子界/连接 1000 [↓][↘]\n效果", c.Format(got))
}

func TestParse_LinkWithDefenseColumn(t *testing.T) {
	c := New(setcode.Empty)

	got := parseOne(t, c, "连接蜘蛛(98978921) 地 LINK-2 电子界/连接 1000 6 [↓][↘]\n效果")

	assert.Equal(t, card.TypeMonster|card.TypeLink|card.TypeEffect, got.Type)
	assert.Equal(t, int32(1000), got.Attack)
	assert.Equal(t, card.LinkBottom|card.LinkBottomRight, got.LinkMarker)
	assert.Equal(t, int32(card.LinkBottom|card.LinkBottomRight), got.Defense)
	assert.Equal(t, "连接蜘蛛(98978921) 地 LINK-2 电子界/连接 1000 [↓][↘]\n效果", c.Format(got))
}

func TestParse_LinkWithoutSubtypeTag(t *testing.T) {
	got := parseOne(t, New(setcode.Empty), "X(1) 暗 LINK-1 电子界 0 [↑]\n")

	assert.Equal(t, card.TypeMonster|card.TypeLink|card.TypeEffect, got.Type)
	assert.Equal(t, card.LinkTop, got.LinkMarker)
}

func TestParse_XyzRank(t *testing.T) {
	c := New(setcode.Empty)
	got := parseOne(t, c, "No.39 希望皇 霍普(84013237) 光 4阶 战士/超量 2500 2000\n效果")

	assert.Equal(t, "No.39 希望皇 霍普", got.Name)
	assert.Equal(t, card.Rank(4), got.Stats())
	assert.Equal(t, card.TypeMonster|card.TypeXyz|card.TypeEffect, got.Type)
	assert.Equal(t, "No.39 希望皇 霍普(84013237) 光 4阶 战士/超量 2500 2000\n效果", c.Format(got))
}

func TestStatSentinels(t *testing.T) {
	c := New(setcode.Empty)
	got := parseOne(t, c, "X(1) 暗 8星 龙 ∞ ?\n")

	assert.Equal(t, card.StatInfinite, got.Attack)
	assert.Equal(t, card.StatUnknown, got.Defense)

	cd := card.New(2, "Y")
	cd.Type = card.TypeMonster | card.TypeEffect
	cd.Level = 1
	cd.Attribute = card.AttributeLight
	cd.Race = card.RaceFairy
	cd.Attack = card.StatUnknown
	cd.Defense = card.StatInfinite
	assert.Equal(t, "Y(2) 光 1星 天使 ? ∞\n", c.Format(cd))
}

func TestFusionNonEffectRoundTrip(t *testing.T) {
	c := New(setcode.Empty)

	cd := card.New(1, "融合体")
	cd.Type = card.TypeMonster | card.TypeFusion
	cd.Level = 6
	cd.Attribute = card.AttributeDark
	cd.Race = card.RaceDragon
	cd.Attack = 2400
	cd.Defense = 2000

	text := c.Format(cd)
	assert.Equal(t, "融合体(1) 暗 6星 龙/融合/通常 2400 2000\n", text)

	got := parseOne(t, c, text)
	assert.Equal(t, card.TypeMonster|card.TypeFusion, got.Type)
	assert.False(t, got.Type.Has(card.TypeEffect))
	assert.False(t, got.Type.Has(card.TypeNormal))
}

func TestExtraDeckNormalBit(t *testing.T) {
	c := New(setcode.Empty)

	testCases := []struct {
		name string
		in   card.Type
		text string
	}{
		{name: "fusion normal", in: card.TypeMonster | card.TypeFusion | card.TypeNormal, text: "X(1) 暗 6星 龙/通常/融合 2400 2000\n"},
		{name: "fusion non-effect", in: card.TypeMonster | card.TypeFusion, text: "X(1) 暗 6星 龙/融合/通常 2400 2000\n"},
		{name: "fusion effect", in: card.TypeMonster | card.TypeFusion | card.TypeEffect, text: "X(1) 暗 6星 龙/融合 2400 2000\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cd := card.New(1, "X")
			cd.Type = tc.in
			cd.Level = 6
			cd.Attribute = card.AttributeDark
			cd.Race = card.RaceDragon
			cd.Attack = 2400
			cd.Defense = 2000

			require.Equal(t, tc.text, c.Format(cd))
			assert.Equal(t, tc.in, parseOne(t, c, tc.text).Type)
		})
	}
}

func TestHeaderTrailingWhitespace(t *testing.T) {
	c := New(setcode.Empty)

	testCases := []struct {
		name string
		text string
		want card.Type
		ot   card.OT
	}{
		{name: "monster", text: "X(1) 暗 4星 龙 100 100 \n效果", want: card.TypeMonster | card.TypeEffect, ot: card.OTDefault},
		{name: "monster tab", text: "X(1) 暗 4星 龙 100 100\t\n效果", want: card.TypeMonster | card.TypeEffect, ot: card.OTDefault},
		{name: "monster with ot", text: "X(1) 暗 4星 龙 100 100 (Custom) \n效果", want: card.TypeMonster | card.TypeEffect, ot: card.OTCustom},
		{name: "spell", text: "X(1) 速攻魔法 \n效果", want: card.TypeSpell | card.TypeQuickPlay, ot: card.OTDefault},
		{name: "trap crlf", text: "X(1) 反击陷阱 \r\n效果", want: card.TypeTrap | card.TypeCounter, ot: card.OTDefault},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := parseOne(t, c, tc.text)
			assert.Equal(t, tc.want, got.Type)
			assert.Equal(t, tc.ot, got.OT)
			assert.Equal(t, "效果", got.Desc)
			if got.Type.Has(card.TypeMonster) {
				assert.Equal(t, int32(100), got.Attack)
				assert.Equal(t, uint32(4), got.Level)
			}
		})
	}
}

func TestMainDeckNormalAndToken(t *testing.T) {
	c := New(setcode.Empty)

	normal := parseOne(t, c, "X(1) 光 8星 龙/通常 3000 2500\n")
	assert.Equal(t, card.TypeMonster|card.TypeNormal, normal.Type)

	synonym := parseOne(t, c, "X(1) 光 8星 龙/非效果 3000 2500\n")
	assert.Equal(t, card.TypeMonster|card.TypeNormal, synonym.Type)

	token := parseOne(t, c, "X(2) 地 1星 兽/衍生物 0 0\n")
	assert.Equal(t, card.TypeMonster|card.TypeToken, token.Type)
}

func TestMultipleRaces(t *testing.T) {
	c := New(setcode.Empty)
	got := parseOne(t, c, "X(1) 暗 4星 龙/战士/调整 1000 1000\n")

	assert.Equal(t, card.RaceDragon|card.RaceWarrior, got.Race)
	assert.Equal(t, card.TypeMonster|card.TypeTuner|card.TypeEffect, got.Type)
	assert.Equal(t, "X(1) 暗 4星 战士/龙/调整 1000 1000\n", c.Format(got))
}

func TestPendulum(t *testing.T) {
	c := New(setcode.Empty)
	text := "P(7) 暗 4星 魔法使/灵摆 1200 800\n←3 【灵摆】 5→\n灵摆效果"

	got := parseOne(t, c, text)
	assert.Equal(t, card.TypeMonster|card.TypePendulum|card.TypeEffect, got.Type)
	assert.Equal(t, uint32(3), got.LScale)
	assert.Equal(t, uint32(5), got.RScale)
	assert.Equal(t, "灵摆效果", got.Desc)
	assert.Equal(t, text, c.Format(got))

	// The scale line is plain text on non-pendulum records.
	other := parseOne(t, c, "Q(8) 暗 4星 魔法使 1200 800\n←3 【灵摆】 5→")
	assert.Equal(t, "←3 【灵摆】 5→", other.Desc)
	assert.Zero(t, other.LScale)
}

func TestSpellAndTrapKinds(t *testing.T) {
	c := New(setcode.Empty)

	testCases := []struct {
		line string
		want card.Type
	}{
		{line: "A(1) 通常魔法", want: card.TypeSpell},
		{line: "A(1) 速攻魔法", want: card.TypeSpell | card.TypeQuickPlay},
		{line: "A(1) 仪式魔法", want: card.TypeSpell | card.TypeRitual},
		{line: "A(1) 场地魔法", want: card.TypeSpell | card.TypeField},
		{line: "A(1) 通常陷阱", want: card.TypeTrap},
		{line: "A(1) 永续陷阱", want: card.TypeTrap | card.TypeContinuous},
		{line: "A(1) 反击陷阱", want: card.TypeTrap | card.TypeCounter},
	}

	for _, tc := range testCases {
		t.Run(tc.line, func(t *testing.T) {
			got := parseOne(t, c, tc.line+"\n描述")
			assert.Equal(t, tc.want, got.Type)
			assert.Equal(t, tc.line+"\n描述", c.Format(got))
		})
	}
}

func TestOT(t *testing.T) {
	c := New(setcode.Empty)

	testCases := []struct {
		suffix string
		want   card.OT
	}{
		{suffix: "", want: card.OTDefault},
		{suffix: " (OCG)", want: card.OTOCG},
		{suffix: " (Custom)", want: card.OTCustom},
		{suffix: " (SC)", want: card.OTSCRelease},
		{suffix: " (Custom&Draft)", want: card.OTCustom | card.OTDraft},
		{suffix: " (None)", want: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.suffix, func(t *testing.T) {
			text := "A(1) 暗 4星 龙 100 100" + tc.suffix + "\n"
			got := parseOne(t, c, text)
			assert.Equal(t, tc.want, got.OT)
			assert.Equal(t, text, c.Format(got))

			spell := parseOne(t, c, "B(2) 装备魔法"+tc.suffix+"\n")
			assert.Equal(t, tc.want, spell.OT)
			assert.Equal(t, card.TypeSpell|card.TypeEquip, spell.Type)
		})
	}

	cards, _ := c.Parse("A(1) 暗 4星 龙 100 100 (Custom&Draft)\n\nB(2) 通常魔法\n")
	require.Len(t, cards, 2)
	assert.Len(t, card.WithoutDraft(cards), 1)
}

func TestAliasAndPack(t *testing.T) {
	c := New(setcode.Empty)
	text := "[LOB-001|传说之蓝眼白龙|UR/SR|2002-03-08]青眼白龙(89631140=>89631139) 光 8星 龙/通常 3000 2500\n以高攻击力著称的传说之龙。"

	got := parseOne(t, c, text)
	assert.Equal(t, "青眼白龙", got.Name)
	assert.Equal(t, uint32(89631140), got.Code)
	assert.Equal(t, uint32(89631139), got.Alias)
	require.NotNil(t, got.Pack)
	assert.Equal(t, card.PackInfo{
		PackID: "LOB-001",
		Pack:   "传说之蓝眼白龙",
		Rarity: []string{"UR", "SR"},
		Date:   "2002-03-08",
	}, *got.Pack)
	assert.Equal(t, text, c.Format(got))

	spaced := parseOne(t, c, "X(2 => 1) 通常魔法\n")
	assert.Equal(t, uint32(1), spaced.Alias)
}

func TestSetcodeLines(t *testing.T) {
	c := New(setcode.New(map[uint16]string{0x1: "甲", 0x2: "乙"}))

	got := parseOne(t, c, "X(1) 通常魔法\n系列：甲\n描述")
	assert.Equal(t, uint64(0x1), got.Setcode)
	assert.Equal(t, "X(1) 通常魔法\n系列：甲\n描述", c.Format(got))

	got = parseOne(t, c, "X(1) 通常魔法\n系列：甲、乙\n描述")
	assert.Equal(t, uint64(0x10002), got.Setcode)

	// Two named sets come back in slot order, so a second pass swaps the slots.
	text := c.Format(got)
	assert.Equal(t, "X(1) 通常魔法\n系列：乙、甲\n描述", text)
	got = parseOne(t, c, text)
	assert.Equal(t, uint64(0x20001), got.Setcode)
	assert.Equal(t, text, c.Format(got))

	got = parseOne(t, c, "X(1) 通常魔法\n系列字段：0x77\n系列：乙\n描述")
	assert.Equal(t, uint64(0x77|0x2), got.Setcode)

	cards, diags := c.Parse("X(1) 通常魔法\n系列：丙\n描述")
	require.Len(t, cards, 1)
	require.Len(t, diags, 1)
	assert.Equal(t, card.UnknownSet, diags[0].Kind)
	assert.Equal(t, 2, diags[0].Line)
	assert.Zero(t, cards[0].Setcode)
}

func TestCategoryAndTexts(t *testing.T) {
	c := New(setcode.Empty)
	text := "X(1) 通常魔法\n描述\n效果分类：魔陷破坏、怪兽破坏\n提示文本：第一、、第三"

	got := parseOne(t, c, text)
	assert.Equal(t, card.Category(0x3), got.Category)
	assert.Equal(t, []string{"第一", "", "第三"}, got.Texts)
	assert.Equal(t, text, c.Format(got))
}

func TestMultilineDescription(t *testing.T) {
	c := New(setcode.Empty)
	text := "X(1) 暗 4星 龙 100 100\n①：第一段。\n②：第二段。"

	got := parseOne(t, c, text)
	assert.Equal(t, "①：第一段。\n②：第二段。", got.Desc)
	assert.Equal(t, text, c.Format(got))
}

func TestSpans(t *testing.T) {
	text := "# comment\nA(1) 暗 4星 龙 100 100\n甲\n\n\nB(2) 通常魔法\n乙"
	cards, diags := New(setcode.Empty).Parse(text)
	require.Empty(t, diags)
	require.Len(t, cards, 2)

	first, second := cards[0].Range, cards[1].Range
	require.NotNil(t, first)
	require.NotNil(t, second)

	assert.Equal(t, strings.Index(text, "A("), first.Start)
	assert.Equal(t, strings.Index(text, "\n\n")+1, first.End)
	assert.Equal(t, "A(1) 暗 4星 龙 100 100\n甲\n", text[first.Start:first.End])

	assert.Equal(t, strings.Index(text, "B("), second.Start)
	assert.Equal(t, len(text), second.End)
	assert.Equal(t, "B(2) 通常魔法\n乙", text[second.Start:second.End])
}

func TestSpans_AdjacentHeaders(t *testing.T) {
	text := "A(1) 通常魔法\nB(2) 通常陷阱\n"
	cards, _ := New(setcode.Empty).Parse(text)
	require.Len(t, cards, 2)

	assert.Equal(t, card.Range{Start: 0, End: strings.Index(text, "B(")}, *cards[0].Range)
	assert.Empty(t, cards[0].Desc)
}

func TestParse_Edges(t *testing.T) {
	c := New(setcode.Empty)

	cards, diags := c.Parse("")
	assert.Empty(t, cards)
	assert.Empty(t, diags)

	cards, _ = c.Parse("孤立的描述\n\nA(1) 通常魔法\r\n描述\r\n")
	require.Len(t, cards, 1)
	assert.Equal(t, "描述", cards[0].Desc)

	got := parseOne(t, c, "A(1) 通常魔法\n参见(12345)\n描述")
	assert.Equal(t, "参见(12345)\n描述", got.Desc)
}

func TestParse_Diagnostics(t *testing.T) {
	c := New(setcode.Empty)
	text := "A(1) 暗 8星 龙 100 100\n\nB(2) 紫 8星 龙/怪 100 100\n\nC(3) 奇怪的东西"

	cards, diags := c.Parse(text)
	require.Len(t, cards, 3)
	require.Len(t, diags, 3)

	assert.Equal(t, card.Diagnostic{Line: 3, Kind: card.UnknownToken, Token: "紫", Message: "cannot recognize attribute"}, diags[0])
	assert.Equal(t, card.Diagnostic{Line: 3, Kind: card.UnknownToken, Token: "怪", Message: "cannot recognize monster type"}, diags[1])
	assert.Equal(t, 5, diags[2].Line)
	assert.Equal(t, card.Structure, diags[2].Kind)

	assert.Zero(t, cards[1].Attribute)
	assert.Equal(t, card.TypeMonster|card.TypeEffect, cards[1].Type)
	assert.True(t, cards[2].Type.IsEmpty())
}

func TestFromText_LogsDiagnostics(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	c := &Codec{Sets: setcode.Empty, Logger: &logger}

	cards, err := c.FromText("A(1) 暗 8星 龙/怪 100 100\n")
	require.NoError(t, err)
	require.Len(t, cards, 1)

	out := buf.String()
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"kind":"unknown-token"`)
	assert.Contains(t, out, `"token":"怪"`)
	assert.Contains(t, out, "cannot recognize monster type")
}

func TestCodec_UsesGlobalTable(t *testing.T) {
	t.Cleanup(func() { setcode.Store(nil) })
	setcode.ReloadFromString("!setname 0x5 全局\n")

	got := parseOne(t, &Codec{}, "X(1) 通常魔法\n系列：全局\n")
	assert.Equal(t, uint64(0x5), got.Setcode)
}

func TestJoin_Idempotent(t *testing.T) {
	c := New(setcode.New(map[uint16]string{0x8: "英雄"}))
	text := strings.Join([]string{
		"骄傲与灵魂之龙(100000000) 暗 8星 龙/特殊召唤 2500 2500\n这张卡不能通常召唤。",
		"连接蜘蛛(98978921) 地 LINK-2 电子界/连接 1000 [↓][↘]\n效果",
		"元素英雄 新宇侠(89943723) 光 7星 战士/融合 2500 2000 (OCG)\n系列：英雄\n效果\n效果分类：卡片除外",
		"P(7) 暗 4星 魔法使/灵摆/调整 1200 800\n←3 【灵摆】 5→\n灵摆效果",
		"X(5) 速攻魔法 (Custom)\n描述\n提示文本：甲、乙",
	}, card.RecordSeparator)

	cards, err := c.FromText(text)
	require.NoError(t, err)
	require.Len(t, cards, 5)

	once, err := card.Join(c, cards)
	require.NoError(t, err)
	assert.Equal(t, text, once)

	again, err := card.Convert(c, c, once)
	require.NoError(t, err)
	assert.Equal(t, once, again)
}
