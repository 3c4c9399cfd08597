package stream

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-anim/engine/world"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func dial(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readSnapshot(t *testing.T, conn *websocket.Conn) world.Snapshot {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	kind, b, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, kind)

	var snap world.Snapshot
	require.NoError(t, json.Unmarshal(b, &snap))
	return snap
}

func TestPublishReachesClients(t *testing.T) {
	h := NewHub()
	srv := httptest.NewServer(h.Handler("/ws"))
	defer srv.Close()
	defer h.Close()

	a := dial(t, srv, "/ws")
	b := dial(t, srv, "/ws")
	assert.Empty(t, readSnapshot(t, a).Rigs)
	assert.Empty(t, readSnapshot(t, b).Rigs)
	assert.Equal(t, 2, h.Clients())

	snap := world.Snapshot{World: "demo", Tick: 3, Rigs: []world.RigSnapshot{{
		ID:     1,
		Name:   "hero",
		States: []world.StateSnapshot{{Name: "walk", Playing: true, WeightResult: 1}},
		Events: []world.EventRecord{{Type: "start", Name: "walk", State: "walk"}},
	}}}
	require.NoError(t, h.Publish(snap))

	for _, conn := range []*websocket.Conn{a, b} {
		got := readSnapshot(t, conn)
		assert.Equal(t, snap, got)
	}
}

func TestSnapshotWireFields(t *testing.T) {
	h := NewHub()
	srv := httptest.NewServer(h.Handler("/ws"))
	defer srv.Close()
	defer h.Close()

	conn := dial(t, srv, "/ws")
	readSnapshot(t, conn)

	require.NoError(t, h.Publish(world.Snapshot{World: "demo", Tick: 2, Rigs: []world.RigSnapshot{{
		Name:   "hero",
		Last:   "attack",
		States: []world.StateSnapshot{{Name: "walk"}, {Name: "attack", Layer: 1, Group: "combat", Additive: true}},
		Events: []world.EventRecord{{Type: "frame", Name: "hit", Bone: "hand_r"}},
	}}}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, b, err := conn.ReadMessage()
	require.NoError(t, err)
	require.True(t, gjson.ValidBytes(b))

	assert.Equal(t, "demo", gjson.GetBytes(b, "world").String())
	assert.Equal(t, int64(2), gjson.GetBytes(b, "tick").Int())
	assert.Equal(t, "attack", gjson.GetBytes(b, "rigs.0.last").String())
	assert.Equal(t, int64(2), gjson.GetBytes(b, "rigs.0.states.#").Int())
	assert.Equal(t, []string{"walk", "attack"}, toStrings(gjson.GetBytes(b, "rigs.0.states.#.name").Array()))
	assert.True(t, gjson.GetBytes(b, "rigs.0.states.1.additive").Bool())
	assert.Equal(t, "hand_r", gjson.GetBytes(b, `rigs.0.events.#(name=="hit").bone`).String())
}

func toStrings(results []gjson.Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.String()
	}
	return out
}

func TestLateClientGetsLatest(t *testing.T) {
	h := NewHub()
	srv := httptest.NewServer(h.Handler(""))
	defer srv.Close()
	defer h.Close()

	require.NoError(t, h.Publish(world.Snapshot{World: "demo", Tick: 7, Rigs: []world.RigSnapshot{}}))

	conn := dial(t, srv, "/ws")
	assert.Equal(t, uint64(7), readSnapshot(t, conn).Tick)
}

func TestHealth(t *testing.T) {
	h := NewHub()
	srv := httptest.NewServer(h.Handler("/ws"))
	defer srv.Close()

	require.NoError(t, h.Publish(world.Snapshot{}))
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, float64(0), body["clients"])
	assert.Equal(t, float64(1), body["published"])
}

func TestOriginCheck(t *testing.T) {
	h := NewHub(WithCheckOrigin(func(origin string) bool { return origin == "http://allowed" }))
	srv := httptest.NewServer(h.Handler("/ws"))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://evil"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Zero(t, h.Clients())
}

func TestClosedClientIsDropped(t *testing.T) {
	h := NewHub()
	srv := httptest.NewServer(h.Handler("/ws"))
	defer srv.Close()

	conn := dial(t, srv, "/ws")
	readSnapshot(t, conn)
	require.Equal(t, 1, h.Clients())

	conn.Close()
	assert.Eventually(t, func() bool { return h.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}
