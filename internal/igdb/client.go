// internal/igdb/client.go
//
// IGDB catalog client.
//
// Responsibilities:
//   - Obtain and refresh Twitch app tokens (OAuth2 client credentials).
//   - Page through /games with an Apicalypse query, rate limited.
//   - Normalize upstream records into games.Game.
//
// Environment (via config):
//   IGDB_CLIENT_ID / IGDB_CLIENT_SECRET   app credentials
//   IGDB_BASE_URL / IGDB_TOKEN_URL        endpoints (overridable for tests)
package igdb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/robalobadob/gamegrid/internal/games"
)

const (
	DefaultBaseURL  = "https://api.igdb.com/v4"
	DefaultTokenURL = "https://id.twitch.tv/oauth2/token"
	DefaultPageSize = 500
	DefaultMaxGames = 500
	DefaultRate     = 4 // requests per second allowed by IGDB
)

var ErrNoCredentials = errors.New("igdb: client id and secret are required")

// Config holds client settings.
type Config struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	TokenURL     string
	PageSize     int
	MaxGames     int
	RatePerSec   float64
	HTTPClient   *http.Client // base transport; token refresh uses it too
}

// Client fetches games from IGDB.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
}

// New builds a client. The returned client refreshes its token on expiry.
func New(cfg Config) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, ErrNoCredentials
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.MaxGames <= 0 {
		cfg.MaxGames = DefaultMaxGames
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = DefaultRate
	}
	base := cfg.HTTPClient
	if base == nil {
		base = &http.Client{Timeout: 30 * time.Second}
	}

	cc := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	httpClient := cc.Client(tokenCtx)
	httpClient.Timeout = base.Timeout

	return &Client{
		cfg:     cfg,
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), 1),
	}, nil
}

// gamesQuery asks for popular main games with everything the predicates need.
const gamesQuery = `fields name, first_release_date, total_rating_count,
    genres.name, platforms.name,
    involved_companies.company.name, involved_companies.developer, involved_companies.publisher,
    collection.name, cover.url;
where total_rating_count > 10 & category = (0, 8, 9);
sort total_rating_count desc;
limit %d;
offset %d;`

// Fetch pages through /games until MaxGames records or an empty page.
func (c *Client) Fetch(ctx context.Context) ([]games.Game, error) {
	var out []games.Game
	for offset := 0; len(out) < c.cfg.MaxGames; offset += c.cfg.PageSize {
		limit := c.cfg.PageSize
		if rest := c.cfg.MaxGames - len(out); rest < limit {
			limit = rest
		}
		var page []apiGame
		if err := c.post(ctx, "games", fmt.Sprintf(gamesQuery, limit, offset), &page); err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		for _, g := range page {
			out = append(out, g.normalize())
		}
		log.Debug().Int("fetched", len(out)).Msg("igdb page")
		if len(page) < limit {
			break
		}
	}
	return out, nil
}

// post sends an Apicalypse body to endpoint and decodes the JSON reply.
func (c *Client) post(ctx context.Context, endpoint, query string, dst any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/" + endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBufferString(query))
	if err != nil {
		return err
	}
	req.Header.Set("Client-ID", c.cfg.ClientID)
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("igdb %s: %w", endpoint, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("igdb %s: status %d: %s", endpoint, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("igdb %s: decode: %w", endpoint, err)
	}
	return nil
}
