// Package xyyz reads and writes the xyyz card notation:
//
//	骄傲与灵魂之龙(100000000) 暗 8星 龙/特殊召唤 2500 2500 (Custom)
//	系列：<series>、<series>
//	这张卡不能通常召唤。
//	效果分类：<category>、<category>
//	提示文本：<hint>、<hint>
//
// A header line opens a record. Monsters carry a stat segment, spells and
// traps a kind such as 速攻魔法. Pendulum monsters may follow the header
// with `←l 【灵摆】 r→`. Any other non-blank line is description text.
//
// Decoding is permissive: unknown tokens are dropped and reported as
// diagnostics rather than failing the parse.
package xyyz

import (
	"cdb-transformer/internal/card"
	"cdb-transformer/internal/setcode"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Codec is the xyyz transformer.
type Codec struct {
	// Sets resolves series names. Nil means the process-wide table,
	// snapshotted once per call.
	Sets *setcode.Table
	// Logger receives diagnostics from FromText. Nil means the global logger.
	Logger *zerolog.Logger
}

// New creates a codec bound to sets.
func New(sets *setcode.Table) *Codec {
	return &Codec{Sets: sets}
}

func (c *Codec) table() *setcode.Table {
	if c.Sets != nil {
		return c.Sets
	}
	return setcode.Current()
}

func (c *Codec) logger() *zerolog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return &log.Logger
}

// Format renders one card.
func (c *Codec) Format(cd card.Card) string {
	return format(cd, c.table())
}

// Parse reads every record in text along with the problems it recovered from.
func (c *Codec) Parse(text string) ([]card.Card, card.Diagnostics) {
	return newParser(c.table()).run(text)
}

// ToText implements card.Transformer.
func (c *Codec) ToText(cd card.Card) (string, error) {
	return c.Format(cd), nil
}

// FromText implements card.Transformer. Diagnostics go to the logger at
// warn level; the error is always nil.
func (c *Codec) FromText(text string) ([]card.Card, error) {
	cards, diags := c.Parse(text)
	l := c.logger()
	for _, d := range diags {
		l.Warn().
			Int("line", d.Line).
			Str("kind", string(d.Kind)).
			Str("token", d.Token).
			Msg(d.Message)
	}
	l.Debug().Int("cards", len(cards)).Int("diagnostics", len(diags)).Msg("Parsed cards")
	return cards, nil
}
