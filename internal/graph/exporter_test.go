package graph

import (
	"context"
	"os"
	"testing"

	"cdb-transformer/internal/card"
	"cdb-transformer/internal/setcode"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCards() []card.Card {
	link := card.New(98978921, "连接蜘蛛")
	link.Type = card.TypeMonster | card.TypeLink | card.TypeEffect
	link.Attribute = card.AttributeEarth
	link.Race = card.RaceCyberse
	link.Attack = 1000
	link.SetStats(card.LinkRating{Rating: 2, Markers: card.LinkBottom | card.LinkBottomRight})
	link.Setcode = 0x1002<<16 | 0x2

	alt := card.New(98978922, "连接蜘蛛")
	alt.Alias = 98978921
	alt.Type = link.Type
	alt.SetStats(link.Stats())
	alt.Setcode = 0x2

	spell := card.New(55144522, "强欲之壶")
	spell.Type = card.TypeSpell | card.TypeQuickPlay
	spell.Pack = &card.PackInfo{PackID: "LOB-042"}

	return []card.Card{link, alt, spell}
}

func TestCardParams(t *testing.T) {
	rows := cardParams(sampleCards())
	require.Len(t, rows, 3)

	assert.Equal(t, int64(98978921), rows[0]["code"])
	props := rows[0]["props"].(map[string]any)
	assert.Equal(t, "连接蜘蛛", props["name"])
	assert.Equal(t, "怪兽", props["kind"])
	assert.Equal(t, "地", props["attribute"])
	assert.Equal(t, "电子界", props["race"])
	assert.Equal(t, "LINK-2", props["level"])
	assert.Equal(t, int64(1000), props["atk"])
	assert.Equal(t, "[↓][↘]", props["markers"])
	assert.NotContains(t, props, "def")
	assert.NotContains(t, props, "lscale")
	assert.Equal(t, "", props["ot"])

	props = rows[2]["props"].(map[string]any)
	assert.Equal(t, "速攻魔法", props["kind"])
	assert.Equal(t, "LOB-042", props["pack_id"])
	assert.NotContains(t, props, "atk")
}

func TestCardParams_Pendulum(t *testing.T) {
	c := card.New(1, "灵摆")
	c.Type = card.TypeMonster | card.TypePendulum | card.TypeEffect
	c.Level = 4
	c.Defense = 1200
	c.LScale, c.RScale = 1, 8

	props := cardParams([]card.Card{c})[0]["props"].(map[string]any)
	assert.Equal(t, int64(1200), props["def"])
	assert.Equal(t, int64(1), props["lscale"])
	assert.Equal(t, int64(8), props["rscale"])
	assert.Equal(t, "4星", props["level"])
}

func TestAliasParams(t *testing.T) {
	rows := aliasParams(sampleCards())
	require.Len(t, rows, 1)
	assert.Equal(t, map[string]any{"code": int64(98978922), "alias": int64(98978921)}, rows[0])
}

func TestSeriesParams(t *testing.T) {
	table := setcode.New(map[uint16]string{0x2: "连接", 0x1002: "连接·蜘蛛"})

	series, members := seriesParams(sampleCards(), table)
	assert.Equal(t, []map[string]any{
		{"id": int64(0x2), "name": "连接"},
		{"id": int64(0x1002), "name": "连接·蜘蛛"},
	}, series)
	assert.Equal(t, []map[string]any{
		{"code": int64(98978921), "series": int64(0x2)},
		{"code": int64(98978921), "series": int64(0x1002)},
		{"code": int64(98978922), "series": int64(0x2)},
	}, members)
}

func TestSeriesParams_UnknownName(t *testing.T) {
	c := card.New(7, "x")
	c.Setcode = 0xabc

	series, _ := seriesParams([]card.Card{c}, nil)
	require.Len(t, series, 1)
	assert.Equal(t, "0xabc", series[0]["name"])
}

func TestToList(t *testing.T) {
	rows := []map[string]any{{"a": int64(1)}, {"b": int64(2)}}
	list := toList(rows)
	require.Len(t, list, 2)
	assert.Equal(t, rows[1], list[1])
}

// TestExportLive runs against the Neo4j instance named by
// CDBT_TEST_NEO4J_URI. Card and Series nodes are deleted first.
func TestExportLive(t *testing.T) {
	uri := os.Getenv("CDBT_TEST_NEO4J_URI")
	if uri == "" {
		t.Skip("CDBT_TEST_NEO4J_URI not set")
	}

	ctx := context.Background()
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(
		os.Getenv("CDBT_TEST_NEO4J_USER"), os.Getenv("CDBT_TEST_NEO4J_PASSWORD"), ""))
	require.NoError(t, err)
	defer driver.Close(ctx)

	session := driver.NewSession(ctx, neo4j.SessionConfig{})
	_, err = session.Run(ctx, "MATCH (n) WHERE n:Card OR n:Series DETACH DELETE n", nil)
	require.NoError(t, err)
	require.NoError(t, session.Close(ctx))

	exporter := NewExporter(driver)
	exporter.batchSize = 2
	require.NoError(t, exporter.EnsureSchema(ctx))

	table := setcode.New(map[uint16]string{0x2: "连接", 0x1002: "连接·蜘蛛"})
	require.NoError(t, exporter.Export(ctx, sampleCards(), table))
	require.NoError(t, exporter.Export(ctx, sampleCards(), table))

	refs, err := exporter.CardsInSeries(ctx, "连接")
	require.NoError(t, err)
	assert.Equal(t, []CardRef{
		{Code: 98978921, Name: "连接蜘蛛"},
		{Code: 98978922, Name: "连接蜘蛛"},
	}, refs)

	refs, err = exporter.CardsInSeries(ctx, "不存在")
	require.NoError(t, err)
	assert.Empty(t, refs)
}
