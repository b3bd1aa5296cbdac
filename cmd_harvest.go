package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/gamegrid/internal/database"
	"github.com/robalobadob/gamegrid/internal/games"
	"github.com/robalobadob/gamegrid/internal/harvest"
)

var harvestOut string

var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Fetch the game catalog once and archive it",
	Long: `Fetches the game catalog from IGDB (or the mock source without
credentials), stores it in the database archive used by serve at startup
and optionally writes it to a JSON file.`,
	Args: cobra.NoArgs,
	RunE: runHarvest,
}

func init() {
	harvestCmd.Flags().StringVarP(&harvestOut, "out", "o", "", "also write the fetched games as JSON to this file")
}

func runHarvest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	db, err := database.Open(cfg.Database.URL)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		return err
	}

	src, err := newSource()
	if err != nil {
		return err
	}
	snap, err := harvest.NewRefresher(src, games.NewStore(), games.NewArchive(db), 0).Refresh(ctx)
	if err != nil {
		return fmt.Errorf("harvest: %w", err)
	}

	if harvestOut != "" {
		b, err := json.MarshalIndent(snap.Games(), "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(harvestOut, b, 0o644); err != nil {
			return err
		}
	}
	log.Info().Int("games", snap.Len()).Str("out", harvestOut).Msg("harvest complete")
	return nil
}
