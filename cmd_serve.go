package main

import (
	"context"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/robalobadob/gamegrid/internal/category"
	"github.com/robalobadob/gamegrid/internal/daily"
	"github.com/robalobadob/gamegrid/internal/database"
	"github.com/robalobadob/gamegrid/internal/games"
	"github.com/robalobadob/gamegrid/internal/harvest"
	"github.com/robalobadob/gamegrid/internal/httpserver"
	"github.com/robalobadob/gamegrid/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serves the daily puzzle API. The game catalog is restored from the
database archive at startup and refreshed from upstream every
REFRESH_INTERVAL. Send SIGHUP to reload CATEGORIES_FILE.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	db, err := database.Open(cfg.Database.URL)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		return err
	}

	catalogs, err := newCatalogHolder(cfg.Refresh.CategoriesFile)
	if err != nil {
		return err
	}

	gameStore := games.NewStore()
	src, err := newSource()
	if err != nil {
		return err
	}
	refresher := harvest.NewRefresher(src, gameStore, games.NewArchive(db), cfg.Refresh.Interval)
	if err := refresher.Restore(ctx); err != nil {
		log.Warn().Err(err).Msg("restore archive")
	}

	puzzles := daily.NewService(catalogs.Current, gameStore, cfg.Grid)
	srv := httpserver.New(httpserver.Deps{
		Games:    gameStore,
		Catalog:  catalogs.Current,
		Puzzles:  puzzles,
		Sessions: store.NewMemoryStore(),
		DB:       db,
		Server:   cfg.Server,
		Auth:     cfg.Auth,
		Rules:    cfg.Rules,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return refresher.Run(gctx) })
	g.Go(func() error { return catalogs.reloadOnHangup(gctx) })
	g.Go(func() error {
		addr := ":" + cfg.Server.Port
		log.Info().Str("addr", addr).Int("categories", catalogs.Current().Len()).Msg("starting gamegrid")
		return srv.ListenAndServe(gctx, addr)
	})
	return g.Wait()
}

// catalogHolder serves the active category catalog; reloads take effect on
// the next puzzle generation.
type catalogHolder struct {
	path string
	cur  atomic.Pointer[category.Catalog]
}

func newCatalogHolder(path string) (*catalogHolder, error) {
	h := &catalogHolder{path: path}
	if err := h.reload(); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *catalogHolder) Current() *category.Catalog { return h.cur.Load() }

func (h *catalogHolder) reload() error {
	c, err := category.Load(h.path)
	if err != nil {
		return err
	}
	h.cur.Store(c)
	log.Info().Int("version", c.Version).Int("categories", c.Len()).Msg("category catalog loaded")
	return nil
}

func (h *catalogHolder) reloadOnHangup(ctx context.Context) error {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-hup:
			if err := h.reload(); err != nil {
				log.Error().Err(err).Msg("reload categories, keeping previous catalog")
			}
		}
	}
}
