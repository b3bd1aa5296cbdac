package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/gamegrid/internal/category"
	"github.com/robalobadob/gamegrid/internal/daily"
	"github.com/robalobadob/gamegrid/internal/database"
	"github.com/robalobadob/gamegrid/internal/games"
)

var (
	generateDate  string
	generateOut   string
	generateIndex string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a day's puzzle with its valid answers as JSON",
	Long: `Builds the puzzle for --date (default: today, UTC) from the archived
game catalog and writes it, including every valid answer per cell, to --out
(default stdout). --index additionally writes a title search index.`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&generateDate, "date", "", "puzzle date as YYYY-MM-DD (default today)")
	generateCmd.Flags().StringVarP(&generateOut, "out", "o", "", "output file (default stdout)")
	generateCmd.Flags().StringVar(&generateIndex, "index", "", "write a search index of all games to this file")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	date := time.Now().UTC()
	if generateDate != "" {
		d, err := daily.ParseDateKey(generateDate)
		if err != nil {
			return fmt.Errorf("--date: %w", err)
		}
		date = d
	}

	db, err := database.Open(cfg.Database.URL)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		return err
	}
	snap, err := games.NewArchive(db).Load(ctx)
	if err != nil {
		return err
	}
	if snap.Len() == 0 {
		log.Warn().Msg("game archive is empty, run `gamegrid harvest` first; the fallback grid will be used")
	}
	catalog, err := category.Load(cfg.Refresh.CategoriesFile)
	if err != nil {
		return err
	}

	store := games.NewStore()
	store.Swap(snap)
	puzzle := daily.NewService(func() *category.Catalog { return catalog }, store, cfg.Grid).Build(date)

	if err := writeJSONFile(generateOut, cmd.OutOrStdout(), puzzle); err != nil {
		return err
	}
	if generateIndex != "" {
		index := make([]games.Summary, 0, snap.Len())
		for _, g := range snap.Games() {
			index = append(index, g.Summary())
		}
		sort.Slice(index, func(i, j int) bool { return index[i].Title < index[j].Title })
		if err := writeJSONFile(generateIndex, nil, index); err != nil {
			return err
		}
	}
	log.Info().Str("puzzle", puzzle.ID).Bool("fallback", puzzle.Grid.Fallback).Msg("puzzle generated")
	return nil
}

// writeJSONFile writes v to path, or to fallback when path is empty.
func writeJSONFile(path string, fallback io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	if path == "" {
		_, err = fallback.Write(b)
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
