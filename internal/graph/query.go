package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"
)

// CardRef identifies a card node.
type CardRef struct {
	Code uint32
	Name string
}

// CardsInSeries lists the cards linked to the series called name,
// ordered by code.
func (e *Exporter) CardsInSeries(ctx context.Context, name string) ([]CardRef, error) {
	session := e.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (c:Card)-[:IN_SERIES]->(s:Series {name: $name})
		RETURN c.code AS code, c.name AS name
		ORDER BY code
	`, map[string]any{"name": name})
	if err != nil {
		return nil, fmt.Errorf("query series %s: %w", name, err)
	}

	var refs []CardRef
	for result.Next(ctx) {
		record := result.Record()
		code, _ := record.Get("code")
		cardName, _ := record.Get("name")

		var ref CardRef
		if n, ok := code.(int64); ok {
			ref.Code = uint32(n)
		}
		ref.Name, _ = cardName.(string)
		refs = append(refs, ref)
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("read series %s: %w", name, err)
	}

	log.Debug().Str("series", name).Int("cards", len(refs)).Msg("Series query complete")
	return refs, nil
}
