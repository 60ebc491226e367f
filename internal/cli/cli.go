package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cdb-transformer/internal/config"
	"cdb-transformer/internal/format"
	"cdb-transformer/internal/setcode"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	strings    []string
	logLevel   string
	workers    int
}

// Execute runs the CLI application.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	g := &globalFlags{}
	rootCmd := &cobra.Command{
		Use:          "cdbtrans",
		Short:        "Convert card databases to and from the xyyz text notation",
		Long:         "Converts card records between xyyz text, SQL statements, .cdb databases, Lua script banners and YAML, and publishes card pools to PostgreSQL and Neo4j.",
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&g.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/cdb-transformer/config.toml)")
	flags.StringSliceVar(&g.strings, "strings", nil, "strings.conf files that name the card series")
	flags.StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.IntVar(&g.workers, "workers", 0, "number of files read in parallel")

	rootCmd.AddCommand(convertCmd(g))
	rootCmd.AddCommand(checkCmd(g))
	rootCmd.AddCommand(pushPgCmd(g))
	rootCmd.AddCommand(pushGraphCmd(g))

	return rootCmd
}

// loadConfig layers the command line over the file and environment
// settings, applies the log level and loads the series table.
func loadConfig(cmd *cobra.Command, g *globalFlags) (*config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("strings") {
		cfg.StringsPaths = g.strings
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = g.logLevel
	}
	if flags.Changed("workers") {
		cfg.WorkerCount = g.workers
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	zerolog.SetGlobalLevel(level)

	if len(cfg.StringsPaths) > 0 {
		if err := setcode.Reload(cfg.StringsPaths...); err != nil {
			return nil, fmt.Errorf("load series names: %w", err)
		}
		log.Debug().Int("series", setcode.Current().Len()).Msg("Loaded series names")
	}
	return cfg, nil
}

// newRegistry builds transformers that follow the process-wide series table.
func newRegistry(cfg *config.Config) *format.Registry {
	return format.NewRegistry(nil, cfg.MaxLineLength, &log.Logger)
}

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			log.Warn().Msg("Received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// connectPostgres opens and pings a pool.
func connectPostgres(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect PostgreSQL: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping PostgreSQL: %w", err)
	}
	log.Info().Msg("Connected to PostgreSQL")
	return pool, nil
}

// connectNeo4j opens a driver and verifies connectivity.
func connectNeo4j(ctx context.Context, cfg *config.Config) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.Neo4jURI, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""))
	if err != nil {
		return nil, fmt.Errorf("connect Neo4j: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("verify Neo4j connectivity: %w", err)
	}
	log.Info().Msg("Connected to Neo4j")
	return driver, nil
}
