package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"cdb-transformer/internal/filewalker"
	"cdb-transformer/internal/format"
	"cdb-transformer/internal/xyyz"

	colorize "github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func checkCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "check [sources...]",
		Short: "Report xyyz records that decode with problems or do not round-trip",
		Long: `Parses xyyz sources (stdin when none are given) and prints every
diagnostic, plus every record whose source text differs from how it would
be written back. Exits non-zero when anything is reported.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, g)
			if err != nil {
				return err
			}

			ctx, cancel := setupContext()
			defer cancel()

			problems, err := runCheck(ctx, newRegistry(cfg).Xyyz, args, cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if problems > 0 {
				return fmt.Errorf("found %d problems", problems)
			}
			return nil
		},
	}
}

// runCheck handles the `check` command and returns the number of problems.
func runCheck(ctx context.Context, codec *xyyz.Codec, sources []string, in io.Reader, out io.Writer) (int, error) {
	if len(sources) == 0 {
		data, err := io.ReadAll(in)
		if err != nil {
			return 0, fmt.Errorf("read stdin: %w", err)
		}
		cards, problems := checkText(out, codec, "<stdin>", string(data))
		summarize(out, cards, problems)
		return problems, nil
	}

	entries, err := filewalker.NewWalker(format.Xyyz).Expand(sources)
	if err != nil {
		return 0, err
	}

	var cards, problems int
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return problems, err
		}
		if entry.Format != format.Xyyz {
			log.Warn().Str("path", entry.Path).Str("format", entry.Format.String()).Msg("Skipping non-xyyz source")
			continue
		}

		data, err := os.ReadFile(entry.Path)
		if err != nil {
			return problems, fmt.Errorf("read source: %w", err)
		}
		n, p := checkText(out, codec, entry.Path, string(data))
		cards += n
		problems += p
	}

	summarize(out, cards, problems)
	return problems, nil
}

// checkText reports the problems in one source and returns the number of
// cards and problems found.
func checkText(out io.Writer, codec *xyyz.Codec, name, text string) (int, int) {
	cards, diags := codec.Parse(text)

	var lines []string
	mismatches := 0
	for _, d := range diags {
		lines = append(lines, "  "+colorize.YellowString("%s", d))
	}

	for _, c := range cards {
		if c.Range == nil {
			continue
		}
		source := strings.TrimRight(text[c.Range.Start:c.Range.End], "\n")
		written := strings.TrimRight(codec.Format(c), "\n")
		expected := written
		if c.Desc == "" {
			// The blank description line ends the span; label lines after it
			// still belong to the record but fall outside the range.
			expected, _, _ = strings.Cut(written, "\n\n")
		}
		if source == expected {
			continue
		}

		mismatches++
		line := strings.Count(text[:c.Range.Start], "\n") + 1
		lines = append(lines, "  "+colorize.YellowString("line %d: %s(%d) does not round-trip", line, c.Name, c.Code))
		for _, l := range strings.Split(source, "\n") {
			lines = append(lines, "    "+colorize.RedString("- %s", l))
		}
		for _, l := range strings.Split(written, "\n") {
			lines = append(lines, "    "+colorize.GreenString("+ %s", l))
		}
	}

	if len(lines) > 0 {
		fmt.Fprintln(out, colorize.CyanString("%s", name))
		for _, l := range lines {
			fmt.Fprintln(out, l)
		}
	}
	return len(cards), len(diags) + mismatches
}

func summarize(out io.Writer, cards, problems int) {
	if problems == 0 {
		fmt.Fprintln(out, colorize.GreenString("%d cards checked, no problems", cards))
		return
	}
	fmt.Fprintln(out, colorize.RedString("%d cards checked, %d problems", cards, problems))
}
