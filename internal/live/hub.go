package live

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"soup_web/internal/theme"
	"soup_web/internal/views"
)

const (
	// Maximum message size allowed from the page. Editor text arrives in
	// events, so this is larger than a control channel would need.
	maxMessageSize = 64 << 10

	// Batches queued for a slow client before it is disconnected.
	sendBuffer = 64
)

// Config holds live transport configuration
type Config struct {
	// AllowedOrigins lists accepted Origin values. Empty means same host
	// only; "*" accepts any origin.
	AllowedOrigins []string

	// WriteTimeout bounds every frame write.
	WriteTimeout time.Duration

	// PingInterval is how often the server pings. A tab that misses pongs
	// for slightly longer is dropped.
	PingInterval time.Duration

	// AuthTimeout bounds a revalidation triggered by a gated navigation.
	AuthTimeout time.Duration

	// CloseGrace is how long a tab gets to answer the close frame on
	// shutdown before its connection is dropped.
	CloseGrace time.Duration

	Logger *slog.Logger
}

// DefaultConfig returns the default live configuration
func DefaultConfig() Config {
	return Config{
		WriteTimeout: 10 * time.Second,
		PingInterval: 30 * time.Second,
		AuthTimeout:  2 * time.Second,
		CloseGrace:   time.Second,
	}
}

// Deps are the collaborators every session shares.
type Deps struct {
	Shell     *views.Shell
	Auth      AuthSource
	Themes    *theme.Store
	ThemeHook theme.TransitionHook
	Metrics   Recorder
}

// Hub accepts live connections and tracks their sessions.
type Hub struct {
	cfg      Config
	deps     Deps
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu       sync.Mutex
	sessions map[string]*conn
	closed   bool
}

// NewHub creates a hub. Shell and Auth are required.
func NewHub(cfg Config, deps Deps) (*Hub, error) {
	if deps.Shell == nil || deps.Auth == nil {
		return nil, errors.New("live: hub needs a shell and an auth source")
	}
	defaults := DefaultConfig()
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaults.WriteTimeout
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = defaults.PingInterval
	}
	if cfg.AuthTimeout <= 0 {
		cfg.AuthTimeout = defaults.AuthTimeout
	}
	if cfg.CloseGrace <= 0 {
		cfg.CloseGrace = defaults.CloseGrace
	}
	if deps.Metrics == nil {
		deps.Metrics = nopRecorder{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	h := &Hub{
		cfg:      cfg,
		deps:     deps,
		logger:   logger,
		sessions: make(map[string]*conn),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     h.checkOrigin,
	}
	return h, nil
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if len(h.cfg.AllowedOrigins) == 0 {
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
	for _, allowed := range h.cfg.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

// ServeHTTP upgrades the request and runs the session until the tab goes
// away.
// Endpoint: GET /live
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()
	if closed {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader already replied
		h.logger.Warn("websocket upgrade failed", "error", err, "remote_addr", r.RemoteAddr)
		return
	}

	cookie := r.Header.Get("Cookie")
	authCtx, cancel := context.WithTimeout(r.Context(), h.cfg.AuthTimeout)
	snap := h.deps.Auth.SnapshotFor(authCtx, cookie)
	cancel()

	mode := theme.Light
	if h.deps.Themes != nil {
		mode = h.deps.Themes.Current(r)
	}

	id := uuid.NewString()
	sess, err := newSession(id, cookie, snap, mode, h.deps, h.logger)
	if err != nil {
		h.logger.Error("failed to create live session", "error", err)
		ws.Close()
		return
	}

	c := &conn{hub: h, ws: ws, sess: sess, send: make(chan []byte, sendBuffer)}
	if !h.register(c) {
		ws.Close()
		return
	}

	go c.writePump()
	c.readPump()
}

func (h *Hub) register(c *conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.sessions[c.sess.id] = c
	h.deps.Metrics.SessionOpened()
	h.logger.Info("live session opened", "session_id", c.sess.id, "sessions", len(h.sessions))
	return true
}

func (h *Hub) unregister(c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.sessions[c.sess.id]; !ok {
		return
	}
	delete(h.sessions, c.sess.id)
	h.deps.Metrics.SessionClosed()
	h.logger.Info("live session closed", "session_id", c.sess.id, "sessions", len(h.sessions))
}

// Count returns the number of connected sessions.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Close stops accepting sessions, disconnects every tab and waits for their
// teardown. Tabs still connected when ctx is done are dropped without the
// close handshake.
func (h *Hub) Close(ctx context.Context) error {
	h.mu.Lock()
	h.closed = true
	conns := make([]*conn, 0, len(h.sessions))
	for _, c := range h.sessions {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		c.shutdown(h.cfg.CloseGrace)
	}

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for h.Count() > 0 {
		select {
		case <-ctx.Done():
			// hijacked conns outlive http.Server.Shutdown
			for _, c := range conns {
				c.ws.Close()
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// conn is the transport half of a session: a read pump that feeds events to
// the session one at a time and a write pump that owns every write.
type conn struct {
	hub  *Hub
	ws   *websocket.Conn
	sess *session
	send chan []byte
}

func (c *conn) readPump() {
	defer func() {
		c.sess.close()
		c.hub.unregister(c)
		close(c.send)
		c.ws.Close()
	}()

	pongWait := c.hub.cfg.PingInterval * 10 / 9
	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	ctx := context.Background()
	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.sess.logger.Warn("live read failed", "error", err)
			}
			return
		}
		c.ws.SetReadDeadline(time.Now().Add(pongWait))

		var ev Event
		if err := json.Unmarshal(message, &ev); err != nil {
			c.enqueue([]Patch{errorPatch("malformed event")})
			continue
		}

		evCtx, cancel := context.WithTimeout(ctx, c.hub.cfg.AuthTimeout)
		patches, err := c.sess.handle(evCtx, ev)
		cancel()

		if len(patches) > 0 && !c.enqueue(patches) {
			return
		}
		if err != nil {
			return
		}
	}
}

// enqueue hands one batch to the write pump. A client too slow to drain
// its buffer is disconnected.
func (c *conn) enqueue(patches []Patch) bool {
	data, err := json.Marshal(patches)
	if err != nil {
		c.sess.logger.Error("failed to encode patches", "error", err)
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		c.sess.logger.Warn("live client too slow, disconnecting")
		return false
	}
}

func (c *conn) writePump() {
	ticker := time.NewTicker(c.hub.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteTimeout))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteTimeout))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// shutdown asks the tab to go away within grace. The read pump notices and
// tears the session down on its own goroutine.
func (c *conn) shutdown(grace time.Duration) {
	deadline := time.Now().Add(grace)
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	if err := c.ws.WriteControl(websocket.CloseMessage, msg, deadline); err != nil {
		c.ws.Close()
		return
	}
	c.ws.SetReadDeadline(deadline)
}
