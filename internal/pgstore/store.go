// Package pgstore keeps a PostgreSQL copy of the card pool so other tools
// can query it with SQL.
package pgstore

import (
	"context"
	"fmt"

	"cdb-transformer/internal/card"
	"cdb-transformer/internal/row"
	"cdb-transformer/internal/textutil"
	"cdb-transformer/internal/worker"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// DefaultBatchSize is the number of upserts sent per round trip.
const DefaultBatchSize = 500

const schema = `
CREATE TABLE IF NOT EXISTS cards (
	id           BIGINT PRIMARY KEY,
	ot           BIGINT NOT NULL DEFAULT 0,
	alias        BIGINT NOT NULL DEFAULT 0,
	setcode      BIGINT NOT NULL DEFAULT 0,
	type         BIGINT NOT NULL DEFAULT 0,
	atk          BIGINT NOT NULL DEFAULT 0,
	def          BIGINT NOT NULL DEFAULT 0,
	level        BIGINT NOT NULL DEFAULT 0,
	race         BIGINT NOT NULL DEFAULT 0,
	attribute    BIGINT NOT NULL DEFAULT 0,
	category     BIGINT NOT NULL DEFAULT 0,
	name         TEXT NOT NULL DEFAULT '',
	description  TEXT NOT NULL DEFAULT '',
	texts        TEXT[] NOT NULL DEFAULT '{}',
	pack_id      TEXT,
	pack_name    TEXT,
	rarity       TEXT[],
	release_date TEXT,
	digest       TEXT NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS cards_name_idx ON cards (name);
CREATE INDEX IF NOT EXISTS cards_setcode_idx ON cards (setcode) WHERE setcode <> 0;
`

// upsertSQL skips the write when the stored digest already matches.
const upsertSQL = `
INSERT INTO cards (id, ot, alias, setcode, type, atk, def, level, race, attribute, category,
                   name, description, texts, pack_id, pack_name, rarity, release_date, digest)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
ON CONFLICT (id) DO UPDATE SET
	ot = EXCLUDED.ot,
	alias = EXCLUDED.alias,
	setcode = EXCLUDED.setcode,
	type = EXCLUDED.type,
	atk = EXCLUDED.atk,
	def = EXCLUDED.def,
	level = EXCLUDED.level,
	race = EXCLUDED.race,
	attribute = EXCLUDED.attribute,
	category = EXCLUDED.category,
	name = EXCLUDED.name,
	description = EXCLUDED.description,
	texts = EXCLUDED.texts,
	pack_id = EXCLUDED.pack_id,
	pack_name = EXCLUDED.pack_name,
	rarity = EXCLUDED.rarity,
	release_date = EXCLUDED.release_date,
	digest = EXCLUDED.digest,
	updated_at = now()
WHERE cards.digest <> EXCLUDED.digest
`

const listSQL = `
SELECT id, ot, alias, setcode, type, atk, def, level, race, attribute, category,
       name, description, texts, pack_id, pack_name, rarity, release_date
FROM cards
ORDER BY id
`

// DB is the part of *pgxpool.Pool the store uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

var _ DB = (*pgxpool.Pool)(nil)

// Store persists cards in the cards table.
type Store struct {
	db        DB
	batchSize int
}

// New creates a store on db.
func New(db DB) *Store {
	return &Store{db: db, batchSize: DefaultBatchSize}
}

// EnsureSchema creates the table and indexes.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create cards schema: %w", err)
	}
	log.Info().Msg("Card store schema ensured")
	return nil
}

// upsertArgs lays c out in upsertSQL parameter order.
func upsertArgs(c card.Card) []any {
	r := row.FromCard(c)

	texts := row.UnpackTexts(r.Str)
	if texts == nil {
		texts = []string{}
	}

	var packID, packName, releaseDate any
	var rarity []string
	if c.Pack != nil {
		packID, packName, releaseDate = c.Pack.PackID, c.Pack.Pack, c.Pack.Date
		rarity = c.Pack.Rarity
	}

	args := append(r.DatasArgs(), r.Name, r.Desc, texts, packID, packName, rarity, releaseDate)
	return append(args, textutil.Hash(fmt.Sprintf("%v", args)))
}

// Upsert writes cards in batches and returns how many rows changed.
// Cards whose stored copy is identical are not rewritten.
func (s *Store) Upsert(ctx context.Context, cards []card.Card) (int, error) {
	changed := 0
	for _, chunk := range worker.Batch(cards, s.batchSize) {
		batch := &pgx.Batch{}
		for _, c := range chunk {
			batch.Queue(upsertSQL, upsertArgs(c)...)
		}

		n, err := s.send(ctx, batch, chunk)
		changed += n
		if err != nil {
			return changed, err
		}
	}

	log.Info().Int("cards", len(cards)).Int("changed", changed).Msg("Upserted cards")
	return changed, nil
}

func (s *Store) send(ctx context.Context, batch *pgx.Batch, chunk []card.Card) (int, error) {
	results := s.db.SendBatch(ctx, batch)
	defer results.Close()

	changed := 0
	for _, c := range chunk {
		tag, err := results.Exec()
		if err != nil {
			return changed, fmt.Errorf("upsert card %d: %w", c.Code, err)
		}
		changed += int(tag.RowsAffected())
	}
	return changed, nil
}

// List reads every stored card ordered by code.
func (s *Store) List(ctx context.Context) ([]card.Card, error) {
	rows, err := s.db.Query(ctx, listSQL)
	if err != nil {
		return nil, fmt.Errorf("query cards: %w", err)
	}
	defer rows.Close()

	var cards []card.Card
	for rows.Next() {
		var (
			r                             row.Row
			texts, rarity                 []string
			packID, packName, releaseDate *string
		)
		dest := append(r.Dest()[:13], &texts, &packID, &packName, &rarity, &releaseDate)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		r.Str = row.PackTexts(texts)

		c := r.Card()
		if packID != nil {
			c.Pack = &card.PackInfo{PackID: *packID, Rarity: rarity}
			if packName != nil {
				c.Pack.Pack = *packName
			}
			if releaseDate != nil {
				c.Pack.Date = *releaseDate
			}
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cards: %w", err)
	}
	return cards, nil
}
