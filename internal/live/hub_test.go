package live

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soup_web/internal/views"
)

func newTestHub(t *testing.T, cfg Config) (*Hub, *httptest.Server, *countingRecorder) {
	t.Helper()
	rec := &countingRecorder{}
	cfg.Logger = discard()
	hub, err := NewHub(cfg, Deps{
		Shell:   views.NewShell(views.ShellConfig{Logger: discard()}),
		Auth:    &fakeAuth{},
		Metrics: rec,
	})
	require.NoError(t, err)

	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)
	return hub, srv, rec
}

func dial(t *testing.T, srv *httptest.Server, origin string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	return websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), header)
}

func readBatch(t *testing.T, ws *websocket.Conn) []Patch {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	var patches []Patch
	require.NoError(t, ws.ReadJSON(&patches))
	return patches
}

func TestNewHub_RequiresCollaborators(t *testing.T) {
	_, err := NewHub(Config{}, Deps{})
	assert.Error(t, err)
}

func TestHub_SessionRoundTrip(t *testing.T) {
	hub, srv, rec := newTestHub(t, Config{})

	ws, _, err := dial(t, srv, srv.URL)
	require.NoError(t, err)

	require.NoError(t, ws.WriteJSON(Event{Type: EventHello, Path: "/", Width: 400}))
	assert.Equal(t, []string{OpGate, OpGate}, ops(readBatch(t, ws)))
	assert.Equal(t, 1, hub.Count())

	require.NoError(t, ws.WriteJSON(Event{Type: EventMenu}))
	assert.Equal(t, []Patch{drawerPatch(true)}, readBatch(t, ws))

	require.NoError(t, ws.WriteJSON(Event{Type: EventNav, Index: 1}))
	assert.Equal(t, []Patch{navigatePatch("/projects"), drawerPatch(false)}, readBatch(t, ws),
		"navigation and close arrive in one frame")

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("{not json")))
	assert.Equal(t, []string{OpError}, ops(readBatch(t, ws)))

	ws.Close()
	assert.Eventually(t, func() bool { return hub.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, rec.opened)
}

func TestHub_RejectsForeignOrigin(t *testing.T) {
	_, srv, _ := newTestHub(t, Config{})

	_, resp, err := dial(t, srv, "https://evil.example")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestHub_AllowedOrigins(t *testing.T) {
	_, srv, _ := newTestHub(t, Config{AllowedOrigins: []string{"https://soup.example"}})

	ws, _, err := dial(t, srv, "https://soup.example")
	require.NoError(t, err)
	ws.Close()

	_, _, err = dial(t, srv, srv.URL)
	assert.Error(t, err)
}

func TestHub_CloseDisconnectsSessions(t *testing.T) {
	hub, srv, _ := newTestHub(t, Config{})

	ws, _, err := dial(t, srv, "")
	require.NoError(t, err)
	defer ws.Close()
	require.NoError(t, ws.WriteJSON(Event{Type: EventHello, Path: "/", Width: 1280}))
	readBatch(t, ws)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, hub.Close(ctx))
	assert.Equal(t, 0, hub.Count())

	_, _, err = ws.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure))

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestHub_CloseDropsUnresponsiveTabs(t *testing.T) {
	hub, srv, rec := newTestHub(t, Config{CloseGrace: time.Minute, WriteTimeout: time.Minute})

	ws, _, err := dial(t, srv, "")
	require.NoError(t, err)
	defer ws.Close()
	require.NoError(t, ws.WriteJSON(Event{Type: EventHello, Path: "/", Width: 1280}))
	readBatch(t, ws)

	// the client never reads, so the close frame goes unanswered
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	start := time.Now()
	err = hub.Close(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)

	assert.Eventually(t, func() bool { return hub.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, rec.closed)
}
