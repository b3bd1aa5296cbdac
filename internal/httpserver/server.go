// internal/httpserver/server.go
//
// HTTP server wiring for the Gamegrid backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, access log).
//   - Public endpoints: "/", "/health", "/categories", "/categories/intersection".
//   - Game metadata endpoints: POST /games/search, GET /games/{id}.
//   - Daily puzzle endpoints (optional auth): mounted under /puzzle.
//   - Auth + profile endpoints: /auth/*, /stats/me, /results/mine.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Optional auth decorates requests with user context when a valid token is present;
//     routes still run for guests, who are tracked by an anonymous cookie.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/gamegrid/internal/category"
	"github.com/robalobadob/gamegrid/internal/config"
	"github.com/robalobadob/gamegrid/internal/daily"
	"github.com/robalobadob/gamegrid/internal/database"
	"github.com/robalobadob/gamegrid/internal/game"
	"github.com/robalobadob/gamegrid/internal/games"
	"github.com/robalobadob/gamegrid/internal/grid"
	"github.com/robalobadob/gamegrid/internal/store"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Games    *games.Store
	Catalog  daily.CatalogFunc
	Puzzles  *daily.Service
	Sessions store.Store
	DB       *database.DB
	Server   config.Server
	Auth     config.Auth
	Rules    game.Rules
}

// Server bundles the router and its dependencies.
type Server struct {
	r       *chi.Mux
	games   *games.Store
	catalog daily.CatalogFunc
	puzzles *daily.Service
	store   store.Store
	results *daily.Store
	db      *database.DB
	cfg     config.Server
	auth    config.Auth
	rules   game.Rules

	pruneMu    sync.Mutex
	lastPuzzle string
}

// New constructs a Server, installs middleware, and registers routes.
func New(d Deps) *Server {
	s := &Server{
		r:       chi.NewRouter(),
		games:   d.Games,
		catalog: d.Catalog,
		puzzles: d.Puzzles,
		store:   d.Sessions,
		results: daily.NewStore(d.DB),
		db:      d.DB,
		cfg:     d.Server,
		auth:    d.Auth,
		rules:   d.Rules,
	}
	if s.cfg.ClientOrigin == "" {
		s.cfg.ClientOrigin = "http://localhost:5173"
	}
	if s.auth.CookieName == "" {
		s.auth.CookieName = "gamegrid_token"
	}
	if s.auth.JWTExpiryDays <= 0 {
		s.auth.JWTExpiryDays = 14
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(requestLogger)                   // one line per request
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(s.cors)                          // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"service":"gamegrid","endpoints":["/health","/categories","/games/search","/puzzle/today","/auth/*"]}`))
	})
	s.r.Get("/health", s.handleHealth)

	// Catalog + metadata (public)
	s.r.Get("/categories", s.handleCategories)
	s.r.Post("/categories/intersection", s.handleIntersection)
	s.r.Post("/games/search", s.handleSearch)
	s.r.Get("/games/{id}", s.handleGame)

	// Daily puzzle: OPTIONAL AUTH (guests can play; results persisted on finish)
	s.mountPuzzle(s.r.With(s.withOptionalAuth()))

	// Auth + profile/stats
	s.mountAuthRoutes()

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- hs.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := hs.Shutdown(shutCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger writes one zerolog line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("took", time.Since(start)).
			Str("req_id", chimw.GetReqID(r.Context())).
			Msg("http")
	})
}

// ------------------------------ helpers ------------------------------------

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// decode reads a size-limited JSON body into dst.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(dst)
}

// ------------------------------ catalog ------------------------------------

type healthRes struct {
	OK        bool       `json:"ok"`
	Games     int        `json:"games"`
	FetchedAt *time.Time `json:"fetchedAt"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := s.games.Current()
	res := healthRes{OK: true, Games: snap.Len()}
	if t := snap.FetchedAt(); !t.IsZero() {
		res.FetchedAt = &t
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	cat := s.catalog()
	writeJSON(w, http.StatusOK, map[string]any{
		"version":    cat.Version,
		"categories": cat.All(),
	})
}

type intersectionReq struct {
	RowCategory *category.Category `json:"rowCategory"`
	ColCategory *category.Category `json:"colCategory"`
}

// handleIntersection reports whether any cached game satisfies both categories.
func (s *Server) handleIntersection(w http.ResponseWriter, r *http.Request) {
	var req intersectionReq
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if !completeCategory(req.RowCategory) || !completeCategory(req.ColCategory) {
		writeError(w, http.StatusBadRequest, "rowCategory and colCategory need type and value")
		return
	}
	valid := grid.HasIntersection(*req.RowCategory, *req.ColCategory, s.games.Current())
	writeJSON(w, http.StatusOK, map[string]bool{"valid": valid})
}

func completeCategory(c *category.Category) bool {
	return c != nil && c.Type != "" && strings.TrimSpace(c.Value) != ""
}

// ------------------------------- games -------------------------------------

const searchLimit = 20

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	writeJSON(w, http.StatusOK, s.games.Current().Search(req.Query, searchLimit))
}

func (s *Server) handleGame(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid game id")
		return
	}
	g, ok := s.games.Current().Lookup(id)
	if !ok {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}
	writeJSON(w, http.StatusOK, g)
}
