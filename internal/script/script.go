// Package script keeps a card's text as a comment banner at the top of its
// Lua script:
//
//	-----------------------------------------
//	--- 王家的人柱(172016025) 通常陷阱 (Custom)
//	--- ①：当自己场上有「王家长眠之谷」存在时才能发动。
//	---    双方玩家把卡组·额外卡组中的怪兽卡全部送去墓地。
//	-----------------------------------------
//
// Long lines wrap after a sentence end and continue indented by three
// spaces.
package script

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"cdb-transformer/internal/card"
	"cdb-transformer/internal/textutil"
	"cdb-transformer/internal/xyyz"

	"github.com/rs/zerolog/log"
)

// DefaultMaxLineLength is the wrap width in display columns.
const DefaultMaxLineLength = 100

// IDPlaceholder in a SaveTo path is replaced by the card code.
const IDPlaceholder = "{id}"

const (
	linePrefix   = "--- "
	indent       = "   "
	sentenceEnd  = "。"
	rulePrefix   = "----"
	ruleOverhang = 5
)

var bannerPattern = regexp.MustCompile(`^-{4,}(\n--.*)*\n-{4,}`)

// Transformer renders xyyz text inside a script banner.
type Transformer struct {
	Codec         *xyyz.Codec
	MaxLineLength int
}

// New creates a script transformer. maxLineLength <= 0 selects the default.
func New(codec *xyyz.Codec, maxLineLength int) *Transformer {
	if maxLineLength <= 0 {
		maxLineLength = DefaultMaxLineLength
	}
	return &Transformer{Codec: codec, MaxLineLength: maxLineLength}
}

// wrap splits line after sentence ends so that no output line exceeds
// limit columns, unless a single sentence is longer than that.
func wrap(line string, limit int) []string {
	var (
		out     []string
		current strings.Builder
		content bool
	)
	for _, sentence := range strings.SplitAfter(line, sentenceEnd) {
		if sentence == "" {
			continue
		}
		if content && textutil.Width(current.String())+textutil.Width(sentence) > limit {
			out = append(out, current.String())
			current.Reset()
			current.WriteString(indent)
		}
		current.WriteString(sentence)
		content = true
	}
	return append(out, current.String())
}

// ToText wraps the xyyz text of c into a banner.
func (t *Transformer) ToText(c card.Card) (string, error) {
	text, err := t.Codec.ToText(c)
	if err != nil {
		return "", err
	}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		lines = append(lines, wrap(line, t.MaxLineLength)...)
	}

	width := 0
	for _, line := range lines {
		width = max(width, textutil.Width(line))
	}
	rule := strings.Repeat("-", width+ruleOverhang)

	var b strings.Builder
	b.WriteString(rule)
	for _, line := range lines {
		b.WriteString("\n")
		b.WriteString(linePrefix)
		b.WriteString(line)
	}
	b.WriteString("\n")
	b.WriteString(rule)
	return b.String(), nil
}

// Extract returns the xyyz text held by the first banner in script.
// Lines indented past the prefix continue the previous line.
func Extract(script string) string {
	var (
		b      strings.Builder
		inside bool
	)
	for _, raw := range strings.Split(strings.ReplaceAll(script, "\r", ""), "\n") {
		line := strings.TrimSpace(raw)
		if strings.HasPrefix(line, rulePrefix) {
			if inside {
				break
			}
			inside = true
			continue
		}
		if !inside || !strings.HasPrefix(line, "---") {
			continue
		}
		body := strings.TrimLeft(line, "-")
		if !strings.HasPrefix(body, "  ") && b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(strings.TrimSpace(body))
	}
	return b.String()
}

// FromText parses the banner of a script.
func (t *Transformer) FromText(text string) ([]card.Card, error) {
	return t.Codec.FromText(Extract(text))
}

// ReplaceBanner puts banner in place of the leading banner of script, or
// in front of it when there is none.
func ReplaceBanner(script, banner string) string {
	if loc := bannerPattern.FindStringIndex(script); loc != nil {
		return banner + script[loc[1]:]
	}
	if script == "" {
		return banner + "\n"
	}
	return banner + "\n" + script
}

// SaveTo writes the banner of each card into the script at path, with
// {id} replaced by the card code. Existing script bodies are kept.
func (t *Transformer) SaveTo(cards []card.Card, path string) error {
	for _, c := range cards {
		banner, err := t.ToText(c)
		if err != nil {
			return err
		}

		target := strings.ReplaceAll(path, IDPlaceholder, strconv.FormatUint(uint64(c.Code), 10))
		existing, err := os.ReadFile(target)
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("read script %s: %w", target, err)
		}

		if err := os.WriteFile(target, []byte(ReplaceBanner(string(existing), banner)), 0644); err != nil {
			return fmt.Errorf("write script %s: %w", target, err)
		}
		log.Debug().Str("path", target).Uint32("code", c.Code).Msg("Wrote script banner")
	}
	return nil
}
