package cli

import (
	"context"
	"fmt"

	"cdb-transformer/internal/card"
	"cdb-transformer/internal/config"
	"cdb-transformer/internal/format"
	"cdb-transformer/internal/graph"
	"cdb-transformer/internal/pgstore"
	"cdb-transformer/internal/setcode"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type pushOptions struct {
	from       format.Format
	allowDraft bool
}

// pushCmd builds a command that reads sources like convert does and hands
// the cards to push.
func pushCmd(g *globalFlags, use, short string, push func(context.Context, *config.Config, []card.Card) error) *cobra.Command {
	opts := &pushOptions{}
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, g)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("allow-draft") {
				cfg.AllowDraft = opts.allowDraft
			}

			ctx, cancel := setupContext()
			defer cancel()

			cards, err := readSources(ctx, cfg, newRegistry(cfg), opts.from, args, nil)
			if err != nil {
				return err
			}
			if !cfg.AllowDraft {
				cards = card.WithoutDraft(cards)
			}
			return push(ctx, cfg, cards)
		},
	}

	cmd.Flags().Var(&opts.from, "from-format", "input format for unrecognized files: xyyz, sql, cdb, script, yaml")
	cmd.Flags().BoolVar(&opts.allowDraft, "allow-draft", false, "keep cards marked as drafts")

	return cmd
}

func pushPgCmd(g *globalFlags) *cobra.Command {
	return pushCmd(g, "push-pg <sources...>", "Upsert cards into the PostgreSQL card table", runPushPg)
}

func pushGraphCmd(g *globalFlags) *cobra.Command {
	return pushCmd(g, "push-graph <sources...>", "Export cards and their series into Neo4j", runPushGraph)
}

// runPushPg handles the `push-pg` command.
func runPushPg(ctx context.Context, cfg *config.Config, cards []card.Card) error {
	pool, err := connectPostgres(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	store := pgstore.New(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}

	changed, err := store.Upsert(ctx, cards)
	if err != nil {
		return fmt.Errorf("push cards: %w", err)
	}

	log.Info().Int("cards", len(cards)).Int("changed", changed).Msg("PostgreSQL push complete")
	return nil
}

// runPushGraph handles the `push-graph` command.
func runPushGraph(ctx context.Context, cfg *config.Config, cards []card.Card) error {
	driver, err := connectNeo4j(ctx, cfg)
	if err != nil {
		return err
	}
	defer driver.Close(ctx)

	exporter := graph.NewExporter(driver)
	if err := exporter.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := exporter.Export(ctx, cards, setcode.Current()); err != nil {
		return fmt.Errorf("push cards: %w", err)
	}

	log.Info().Int("cards", len(cards)).Msg("Neo4j push complete")
	return nil
}
