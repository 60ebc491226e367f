// Package graph exports a card pool into Neo4j: one Card node per code,
// one Series node per set code id, with ALIAS_OF and IN_SERIES edges.
package graph

import (
	"context"
	"fmt"
	"sort"

	"cdb-transformer/internal/card"
	"cdb-transformer/internal/setcode"
	"cdb-transformer/internal/worker"
	"cdb-transformer/internal/xyyz"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"
)

// DefaultBatchSize is the number of rows sent per UNWIND statement.
const DefaultBatchSize = 1000

// Exporter writes cards into the graph.
type Exporter struct {
	driver    neo4j.DriverWithContext
	batchSize int
}

// NewExporter creates a new exporter.
func NewExporter(driver neo4j.DriverWithContext) *Exporter {
	return &Exporter{driver: driver, batchSize: DefaultBatchSize}
}

// EnsureSchema creates constraints on the Neo4j database.
func (e *Exporter) EnsureSchema(ctx context.Context) error {
	session := e.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	constraints := []string{
		"CREATE CONSTRAINT IF NOT EXISTS FOR (c:Card) REQUIRE c.code IS UNIQUE",
		"CREATE CONSTRAINT IF NOT EXISTS FOR (s:Series) REQUIRE s.id IS UNIQUE",
		"CREATE INDEX IF NOT EXISTS FOR (s:Series) ON (s.name)",
	}

	for _, c := range constraints {
		if _, err := session.Run(ctx, c, nil); err != nil {
			return fmt.Errorf("create constraint: %w", err)
		}
	}

	log.Info().Msg("Graph schema ensured")
	return nil
}

const (
	// Re-exported cards drop their outgoing edges so removed aliases and
	// series do not linger.
	mergeCards = `
		UNWIND $rows AS row
		MERGE (c:Card {code: row.code})
		SET c = row.props, c.code = row.code
		WITH c
		OPTIONAL MATCH (c)-[r:ALIAS_OF|IN_SERIES]->()
		DELETE r
	`
	mergeAliases = `
		UNWIND $rows AS row
		MATCH (c:Card {code: row.code})
		MERGE (o:Card {code: row.alias})
		MERGE (c)-[:ALIAS_OF]->(o)
	`
	mergeSeries = `
		UNWIND $rows AS row
		MERGE (s:Series {id: row.id})
		SET s.name = row.name
	`
	mergeMembership = `
		UNWIND $rows AS row
		MATCH (c:Card {code: row.code})
		MATCH (s:Series {id: row.series})
		MERGE (c)-[:IN_SERIES]->(s)
	`
)

// Export merges cards into the graph. Series names come from table.
func (e *Exporter) Export(ctx context.Context, cards []card.Card, table *setcode.Table) error {
	session := e.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	series, members := seriesParams(cards, table)
	steps := []struct {
		name  string
		query string
		rows  []map[string]any
	}{
		{"cards", mergeCards, cardParams(cards)},
		{"aliases", mergeAliases, aliasParams(cards)},
		{"series", mergeSeries, series},
		{"memberships", mergeMembership, members},
	}

	for _, step := range steps {
		for _, chunk := range worker.Batch(step.rows, e.batchSize) {
			result, err := session.Run(ctx, step.query, map[string]any{"rows": toList(chunk)})
			if err == nil {
				_, err = result.Consume(ctx)
			}
			if err != nil {
				return fmt.Errorf("merge %s: %w", step.name, err)
			}
		}
		log.Debug().Str("step", step.name).Int("rows", len(step.rows)).Msg("Merged graph rows")
	}

	log.Info().
		Int("cards", len(cards)).
		Int("series", len(series)).
		Msg("Exported cards to graph")
	return nil
}

// toList widens rows to the []any the driver packs as a list.
func toList(rows []map[string]any) []any {
	list := make([]any, len(rows))
	for i, r := range rows {
		list[i] = r
	}
	return list
}

// cardParams builds one row per card. Neo4j integers are int64.
func cardParams(cards []card.Card) []map[string]any {
	rows := make([]map[string]any, 0, len(cards))
	for _, c := range cards {
		props := map[string]any{
			"name": c.Name,
			"desc": c.Desc,
			"ot":   xyyz.FormatOT(c.OT),
		}
		if c.IsMonster() {
			props["kind"] = "怪兽"
			props["subtype"] = xyyz.FormatSubtype(c.Type)
			props["attribute"] = xyyz.FormatAttribute(c.Attribute)
			props["race"] = xyyz.FormatRace(c.Race)
			props["level"] = xyyz.FormatLevel(c)
			props["atk"] = int64(c.Attack)
			if _, link := c.Stats().(card.LinkRating); link {
				props["markers"] = xyyz.FormatLinkMarkers(c.LinkMarker)
			} else {
				props["def"] = int64(c.Defense)
			}
			if c.Type.Has(card.TypePendulum) {
				props["lscale"] = int64(c.LScale)
				props["rscale"] = int64(c.RScale)
			}
		} else {
			props["kind"] = xyyz.FormatKind(c.Type)
		}
		if c.Pack != nil {
			props["pack_id"] = c.Pack.PackID
		}

		rows = append(rows, map[string]any{
			"code":  int64(c.Code),
			"props": props,
		})
	}
	return rows
}

func aliasParams(cards []card.Card) []map[string]any {
	var rows []map[string]any
	for _, c := range cards {
		if c.Alias == 0 {
			continue
		}
		rows = append(rows, map[string]any{
			"code":  int64(c.Code),
			"alias": int64(c.Alias),
		})
	}
	return rows
}

// seriesParams lists the distinct series ids used by cards, ordered by
// id, and one membership row per card and series.
func seriesParams(cards []card.Card, table *setcode.Table) (series, members []map[string]any) {
	seen := make(map[uint16]bool)
	for _, c := range cards {
		for _, id := range setcode.Slots(c.Setcode) {
			if id == 0 {
				continue
			}
			members = append(members, map[string]any{
				"code":   int64(c.Code),
				"series": int64(id),
			})
			seen[id] = true
		}
	}

	ids := make([]uint16, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		name, ok := table.Name(id)
		if !ok {
			name = fmt.Sprintf("0x%x", id)
		}
		series = append(series, map[string]any{
			"id":   int64(id),
			"name": name,
		})
	}
	return series, members
}
