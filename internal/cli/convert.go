package cli

import (
	"context"
	"fmt"
	"io"

	"cdb-transformer/internal/card"
	"cdb-transformer/internal/config"
	"cdb-transformer/internal/filewalker"
	"cdb-transformer/internal/format"
	"cdb-transformer/internal/textutil"
	"cdb-transformer/internal/worker"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type convertOptions struct {
	from       format.Format
	to         format.Format
	output     string
	allowDraft bool
	maxLine    int
}

func convertCmd(g *globalFlags) *cobra.Command {
	opts := &convertOptions{}
	cmd := &cobra.Command{
		Use:   "convert [sources...]",
		Short: "Convert card records between formats",
		Long: `Reads every source (files, or directories walked for known extensions)
and writes the combined cards in source order.

The input format is guessed from the file extension and falls back to
--from-format. Without sources the input is read from stdin. Without --to
the result is written to stdout. Draft cards are dropped unless
--allow-draft is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, g)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("allow-draft") {
				cfg.AllowDraft = opts.allowDraft
			}
			if cmd.Flags().Changed("max-line-length") {
				cfg.MaxLineLength = opts.maxLine
			}

			ctx, cancel := setupContext()
			defer cancel()

			return runConvert(ctx, cfg, opts, args, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().Var(&opts.from, "from-format", "input format for unrecognized files and stdin: xyyz, sql, cdb, script, yaml")
	cmd.Flags().Var(&opts.to, "to-format", "output format, guessed from --to when omitted")
	cmd.Flags().StringVarP(&opts.output, "to", "o", "", "output file; {id} is replaced by the card code for scripts")
	cmd.Flags().BoolVar(&opts.allowDraft, "allow-draft", false, "keep cards marked as drafts")
	cmd.Flags().IntVar(&opts.maxLine, "max-line-length", 0, "wrap width of script banners")

	return cmd
}

// runConvert handles the `convert` command.
func runConvert(ctx context.Context, cfg *config.Config, opts *convertOptions, sources []string, in io.Reader, out io.Writer) error {
	registry := newRegistry(cfg)

	cards, err := readSources(ctx, cfg, registry, opts.from, sources, in)
	if err != nil {
		return err
	}

	if !cfg.AllowDraft {
		for _, c := range cards {
			if c.IsDraft() {
				log.Debug().Uint32("code", c.Code).Str("name", textutil.Truncate(c.Name, 30)).Msg("Dropping draft card")
			}
		}
		kept := card.WithoutDraft(cards)
		if dropped := len(cards) - len(kept); dropped > 0 {
			log.Info().Int("dropped", dropped).Msg("Skipped draft cards, pass --allow-draft to keep them")
		}
		cards = kept
	}

	target := outputFormat(opts)
	if opts.output == "" {
		return registry.Write(target, out, cards)
	}
	if err := registry.WriteFile(ctx, target, opts.output, cards); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}

	log.Info().
		Int("cards", len(cards)).
		Str("format", target.String()).
		Str("output", opts.output).
		Msg("Conversion complete")
	return nil
}

// outputFormat picks --to-format, else the format of --to, else xyyz.
func outputFormat(opts *convertOptions) format.Format {
	if opts.to != "" {
		return opts.to
	}
	if opts.output != "" {
		if f, ok := format.Guess(opts.output); ok {
			return f
		}
		log.Warn().Str("path", opts.output).Msg("Cannot determine the output format, writing xyyz")
	}
	return format.Xyyz
}

// readSources decodes every source through the worker pool and
// concatenates the cards in source order. No sources means stdin.
func readSources(ctx context.Context, cfg *config.Config, registry *format.Registry, from format.Format, sources []string, in io.Reader) ([]card.Card, error) {
	if len(sources) == 0 {
		if from == "" {
			from = format.Xyyz
		}
		log.Debug().Str("format", from.String()).Msg("Reading cards from stdin")
		return registry.Read(from, in)
	}

	entries, err := filewalker.NewWalker(from).Expand(sources)
	if err != nil {
		return nil, err
	}

	log.Debug().Int("files", len(entries)).Msg("Reading sources")

	pool := worker.NewPool[filewalker.FileEntry, []card.Card](cfg.WorkerCount,
		func(ctx context.Context, entry filewalker.FileEntry) ([]card.Card, error) {
			return registry.ReadFile(ctx, entry.Format, entry.Path)
		},
	)

	perFile, err := worker.Collect(pool.Execute(ctx, entries))
	if err != nil {
		return nil, err
	}

	var cards []card.Card
	for _, fileCards := range perFile {
		cards = append(cards, fileCards...)
	}
	return cards, nil
}
