// main.go
//
// gamegrid CLI entry point.
// Commands:
//   - serve    run the HTTP API with periodic catalog refresh
//   - harvest  fetch the game catalog once and archive it
//   - generate write a day's puzzle (with valid answers) as JSON
//
// Configuration comes from the environment (and .env); see internal/config.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/gamegrid/internal/config"
	"github.com/robalobadob/gamegrid/internal/harvest"
	"github.com/robalobadob/gamegrid/internal/igdb"
)

// cfg is loaded once before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "gamegrid",
	Short:         "Daily video game grid puzzle server",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return err
		}
		cfg = c
		setupLogging(cfg.Log)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(harvestCmd)
	rootCmd.AddCommand(generateCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("gamegrid")
		stop()
		os.Exit(1)
	}
}

func setupLogging(l config.Log) {
	if lvl, err := zerolog.ParseLevel(l.Level); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	zerolog.TimeFieldFormat = time.RFC3339
	if l.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

// newSource picks IGDB when credentials are configured and the mock catalog
// otherwise.
func newSource() (harvest.Source, error) {
	if !cfg.HasIGDB() {
		log.Warn().Msg("IGDB credentials not set, using mock game data")
		return harvest.MockSource(), nil
	}
	return igdb.New(cfg.IGDB)
}
