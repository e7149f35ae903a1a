// Package auth provides the cached, revalidatable auth snapshot pages and
// live sessions read to gate navigation.
package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"soup_web/internal/api"
	"soup_web/internal/cache"
	"soup_web/internal/layout"
)

// Fetch outcomes reported to the Observer.
const (
	OutcomeHit       = "hit"
	OutcomeFetched   = "fetched"
	OutcomeFailed    = "failed"
	OutcomePending   = "pending"
	OutcomeAnonymous = "anonymous"
)

// Fetcher is the API surface the provider needs.
type Fetcher interface {
	Auth(ctx context.Context, cookie string) (api.AuthData, error)
}

// Config holds provider configuration
type Config struct {
	// TTL for cached snapshots
	TTL time.Duration

	// RenderBudget bounds how long Snapshot waits for a fetch in flight.
	RenderBudget time.Duration

	// Logger for structured logging
	Logger *slog.Logger

	// Observer receives one outcome per Snapshot call.
	Observer func(outcome string)

	// IgnoreCookies names cookies this app sets for itself. They are
	// stripped before keying the cache and calling the API, so a resize or
	// a theme toggle does not look like a new session.
	IgnoreCookies []string
}

// DefaultConfig returns the default provider configuration
func DefaultConfig() Config {
	return Config{
		TTL:          time.Minute,
		RenderBudget: 150 * time.Millisecond,
	}
}

// Provider resolves AuthSnapshots per session cookie. Results are cached,
// concurrent fetches for one cookie share a single API call, and anything
// short of a completed fetch reads as unauthenticated.
type Provider struct {
	fetcher Fetcher
	cache   cache.Cache
	group   singleflight.Group
	cfg     Config
	logger  *slog.Logger
	ignore  map[string]bool
}

// NewProvider creates a provider.
func NewProvider(fetcher Fetcher, c cache.Cache, cfg Config) *Provider {
	def := DefaultConfig()
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	if cfg.RenderBudget <= 0 {
		cfg.RenderBudget = def.RenderBudget
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ignore := make(map[string]bool, len(cfg.IgnoreCookies))
	for _, name := range cfg.IgnoreCookies {
		ignore[name] = true
	}
	return &Provider{fetcher: fetcher, cache: c, cfg: cfg, logger: logger, ignore: ignore}
}

type cachedSnapshot struct {
	Authenticated bool   `json:"authenticated"`
	UserID        string `json:"user_id,omitempty"`
	DisplayName   string `json:"display_name,omitempty"`
	AvatarURL     string `json:"avatar_url,omitempty"`
}

func (c cachedSnapshot) snapshot() layout.AuthSnapshot {
	return layout.AuthSnapshot{
		Authenticated: c.Authenticated,
		UserID:        c.UserID,
		DisplayName:   c.DisplayName,
		AvatarURL:     c.AvatarURL,
	}
}

func fromAuthData(d api.AuthData) cachedSnapshot {
	if !d.Success {
		return cachedSnapshot{}
	}
	s := cachedSnapshot{
		Authenticated: true,
		DisplayName:   d.Username,
		AvatarURL:     d.ProfileImage,
	}
	if d.UserID != 0 {
		s.UserID = strconv.FormatInt(d.UserID, 10)
	}
	return s
}

// Key derives the cache key for a cookie header. Raw cookies never reach
// the cache.
func Key(cookie string) string {
	sum := sha256.Sum256([]byte(cookie))
	return "auth:" + hex.EncodeToString(sum[:])
}

// sessionCookies reduces a Cookie header to the cookies the API may care
// about, sorted by name so the key does not depend on browser order.
// Malformed pairs are dropped.
func (p *Provider) sessionCookies(header string) string {
	if header == "" {
		return ""
	}
	req := &http.Request{Header: http.Header{"Cookie": {header}}}
	var pairs []string
	for _, c := range req.Cookies() {
		if p.ignore[c.Name] {
			continue
		}
		pairs = append(pairs, c.Name+"="+c.Value)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, "; ")
}

// Snapshot resolves the snapshot for the request's cookies.
func (p *Provider) Snapshot(ctx context.Context, r *http.Request) layout.AuthSnapshot {
	return p.SnapshotFor(ctx, r.Header.Get("Cookie"))
}

// SnapshotFor resolves the snapshot for a cookie header, waiting at most the
// render budget. A fetch that outlives the budget keeps running and fills
// the cache for the next render.
func (p *Provider) SnapshotFor(ctx context.Context, cookie string) layout.AuthSnapshot {
	cookie = p.sessionCookies(cookie)
	if cookie == "" {
		p.observe(OutcomeAnonymous)
		return layout.AuthSnapshot{}
	}

	key := Key(cookie)
	if snap, ok := p.cached(ctx, key); ok {
		p.observe(OutcomeHit)
		return snap
	}

	timer := time.NewTimer(p.cfg.RenderBudget)
	defer timer.Stop()

	select {
	case res := <-p.fetch(ctx, key, cookie):
		if res.Err != nil {
			p.observe(OutcomeFailed)
			return layout.AuthSnapshot{}
		}
		p.observe(OutcomeFetched)
		return res.Val.(cachedSnapshot).snapshot()
	case <-timer.C:
		p.observe(OutcomePending)
		return layout.AuthSnapshot{}
	case <-ctx.Done():
		p.observe(OutcomePending)
		return layout.AuthSnapshot{}
	}
}

// Revalidate drops the cached snapshot and waits for a fresh fetch, bounded
// only by ctx. It is the retry path after a failed or pending fetch.
func (p *Provider) Revalidate(ctx context.Context, cookie string) layout.AuthSnapshot {
	cookie = p.sessionCookies(cookie)
	if cookie == "" {
		return layout.AuthSnapshot{}
	}

	key := Key(cookie)
	if err := p.cache.Delete(ctx, key); err != nil {
		p.logger.Warn("auth cache delete failed", "error", err)
	}

	select {
	case res := <-p.fetch(ctx, key, cookie):
		if res.Err != nil {
			p.observe(OutcomeFailed)
			return layout.AuthSnapshot{}
		}
		p.observe(OutcomeFetched)
		return res.Val.(cachedSnapshot).snapshot()
	case <-ctx.Done():
		p.observe(OutcomePending)
		return layout.AuthSnapshot{}
	}
}

func (p *Provider) cached(ctx context.Context, key string) (layout.AuthSnapshot, bool) {
	raw, err := p.cache.Get(ctx, key)
	if err != nil {
		if !cache.IsMiss(err) {
			p.logger.Warn("auth cache get failed", "error", err)
		}
		return layout.AuthSnapshot{}, false
	}

	var c cachedSnapshot
	if err := json.Unmarshal(raw, &c); err != nil {
		p.logger.Warn("auth cache entry corrupt", "error", err)
		return layout.AuthSnapshot{}, false
	}
	return c.snapshot(), true
}

func (p *Provider) fetch(ctx context.Context, key, cookie string) <-chan singleflight.Result {
	// The shared fetch must not die with the first caller's request.
	fetchCtx := context.WithoutCancel(ctx)

	return p.group.DoChan(key, func() (any, error) {
		data, err := p.fetcher.Auth(fetchCtx, cookie)
		if err != nil {
			// failures are not cached so the next attempt retries
			p.logger.Warn("auth fetch failed", "error", err)
			return nil, err
		}

		snap := fromAuthData(data)
		raw, err := json.Marshal(snap)
		if err == nil {
			if err := p.cache.Set(fetchCtx, key, raw, p.cfg.TTL); err != nil {
				p.logger.Warn("auth cache set failed", "error", err)
			}
		}
		return snap, nil
	})
}

func (p *Provider) observe(outcome string) {
	if p.cfg.Observer != nil {
		p.cfg.Observer(outcome)
	}
}
