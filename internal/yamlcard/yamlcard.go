// Package yamlcard dumps and loads cards as YAML documents, one document
// per card.
package yamlcard

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"cdb-transformer/internal/card"

	"gopkg.in/yaml.v3"
)

const documentStart = "---\n"

// Transformer is the YAML format.
type Transformer struct{}

// New creates a YAML transformer.
func New() *Transformer {
	return &Transformer{}
}

// ToText renders c as a single YAML document with an explicit start
// marker, so joined records form a valid multi-document stream.
func (t *Transformer) ToText(c card.Card) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return "", fmt.Errorf("encode card %d: %w", c.Code, err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encode card %d: %w", c.Code, err)
	}
	return documentStart + strings.TrimSuffix(buf.String(), "\n"), nil
}

// FromText reads a stream of documents. A document may hold a single card
// mapping or a sequence of cards.
func (t *Transformer) FromText(text string) ([]card.Card, error) {
	dec := yaml.NewDecoder(strings.NewReader(text))

	var cards []card.Card
	for i := 0; ; i++ {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return cards, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decode document %d: %w", i, err)
		}
		if len(doc.Content) == 0 {
			continue
		}

		switch node := doc.Content[0]; node.Kind {
		case yaml.SequenceNode:
			var batch []card.Card
			if err := node.Decode(&batch); err != nil {
				return nil, fmt.Errorf("decode document %d: %w", i, err)
			}
			cards = append(cards, batch...)
		case yaml.MappingNode:
			var c card.Card
			if err := node.Decode(&c); err != nil {
				return nil, fmt.Errorf("decode document %d: %w", i, err)
			}
			cards = append(cards, c)
		default:
			return nil, fmt.Errorf("decode document %d: expected a card or a list of cards", i)
		}
	}
}
