package card

import (
	"fmt"
	"strings"
)

// RecordSeparator separates serialized records in a batch.
const RecordSeparator = "\n\n"

// Transformer converts between Card records and one text format.
// Any two implementations compose into a format-to-format conversion.
type Transformer interface {
	ToText(c Card) (string, error)
	FromText(text string) ([]Card, error)
}

// Join serializes every card with t and separates them with a blank line.
func Join(t Transformer, cards []Card) (string, error) {
	parts := make([]string, 0, len(cards))
	for _, c := range cards {
		s, err := t.ToText(c)
		if err != nil {
			return "", fmt.Errorf("serialize card %d: %w", c.Code, err)
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, RecordSeparator), nil
}

// Convert reads text with from and writes the records with to.
func Convert(from, to Transformer, text string) (string, error) {
	cards, err := from.FromText(text)
	if err != nil {
		return "", err
	}
	return Join(to, cards)
}
