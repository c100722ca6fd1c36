package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/chess-arena/internal/arena"
	"github.com/park285/chess-arena/internal/bot"
	"github.com/park285/chess-arena/internal/domain"
	"github.com/park285/chess-arena/internal/msgcat"
	"github.com/park285/chess-arena/internal/registry"
	"github.com/park285/chess-arena/pkg/arenadto"
)

func newTestServer(t *testing.T) (*httptest.Server, *arena.Manager, *registry.Registry) {
	t.Helper()
	cat, err := msgcat.New("")
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	proposer := bot.NewLocalProposer()
	proposer.SetRandomSeed(7)

	reg := registry.New()
	mgr := arena.NewManager(arena.Deps{
		Registry: reg,
		Proposer: proposer,
		Catalog:  cat,
	})
	srv := httptest.NewServer(NewServer(mgr, reg, cat).Handler())
	t.Cleanup(srv.Close)
	return srv, mgr, reg
}

func dial(t *testing.T, srv *httptest.Server, identity string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	if identity != "" {
		url += "?identity=" + identity
	}
	c, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = c.Close(websocket.StatusNormalClosure, "test done") })
	return c
}

// readUntil consumes frames until one matches pred.
func readUntil(t *testing.T, c *websocket.Conn, what string, pred func(arenadto.Notification) bool) arenadto.Notification {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		var n arenadto.Notification
		if err := wsjson.Read(ctx, c, &n); err != nil {
			t.Fatalf("reading until %s: %v", what, err)
		}
		if pred(n) {
			return n
		}
	}
}

func send(t *testing.T, c *websocket.Conn, cmd arenadto.Command) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := wsjson.Write(ctx, c, cmd); err != nil {
		t.Fatalf("write %s: %v", cmd.Type, err)
	}
}

func TestHealthz(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestIdentityAllocatedWhenAbsent(t *testing.T) {
	srv, _, _ := newTestServer(t)
	c := dial(t, srv, "")

	hello := readUntil(t, c, "identity frame", func(n arenadto.Notification) bool {
		return n.Type == arenadto.TypeIdentity
	})
	if hello.Identity == "" {
		t.Fatal("allocated identity is empty")
	}
}

func TestBotMatchOverWire(t *testing.T) {
	srv, _, _ := newTestServer(t)
	c := dial(t, srv, "alice")

	readUntil(t, c, "identity frame", func(n arenadto.Notification) bool {
		return n.Type == arenadto.TypeIdentity && n.Identity == "alice"
	})

	send(t, c, arenadto.Command{
		Type:           arenadto.TypeCreateGame,
		OpponentType:   string(domain.OpponentBot),
		PreferredColor: "white",
		Difficulty:     "level1",
	})
	started := readUntil(t, c, "game_started", func(n arenadto.Notification) bool {
		return n.Type == arenadto.TypeGameStarted
	})
	if started.Side != string(domain.SideWhite) || started.Position == "" {
		t.Fatalf("game_started = %+v", started)
	}

	send(t, c, arenadto.Command{
		Type: arenadto.TypeMakeMove, MatchID: started.MatchID, From: "e2", To: "e4",
	})
	readUntil(t, c, "own move echo", func(n arenadto.Notification) bool {
		return n.Type == arenadto.TypeMoveMade && n.From == "e2"
	})
	readUntil(t, c, "bot reply", func(n arenadto.Notification) bool {
		return n.Type == arenadto.TypeMoveMade && n.SideToMove == string(domain.SideWhite)
	})
}

func TestInvalidMoveSurfacesAsError(t *testing.T) {
	srv, _, _ := newTestServer(t)
	c := dial(t, srv, "alice")

	send(t, c, arenadto.Command{
		Type:           arenadto.TypeCreateGame,
		OpponentType:   string(domain.OpponentBot),
		PreferredColor: "white",
		Difficulty:     "level1",
	})
	started := readUntil(t, c, "game_started", func(n arenadto.Notification) bool {
		return n.Type == arenadto.TypeGameStarted
	})

	send(t, c, arenadto.Command{
		Type: arenadto.TypeMakeMove, MatchID: started.MatchID, From: "e2", To: "e5",
	})
	failure := readUntil(t, c, "error frame", func(n arenadto.Notification) bool {
		return n.Type == arenadto.TypeError
	})
	if failure.Message == "" {
		t.Fatal("error frame carries no message")
	}
}

func TestUnknownCommandRejected(t *testing.T) {
	srv, _, _ := newTestServer(t)
	c := dial(t, srv, "alice")

	send(t, c, arenadto.Command{Type: "frobnicate"})
	failure := readUntil(t, c, "error frame", func(n arenadto.Notification) bool {
		return n.Type == arenadto.TypeError
	})
	if failure.Message == "" {
		t.Fatal("error frame carries no message")
	}
}

func TestMatchesEndpointListsAwaiting(t *testing.T) {
	srv, mgr, reg := newTestServer(t)

	// an awaiting open-queue match created out of band
	sink := &recordingConn{}
	reg.Register("alice", sink)
	if err := mgr.CreateMatch(context.Background(), "alice", arena.CreateRequest{
		OpponentKind: domain.OpponentOpenQueue, Mode: "standard",
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	resp, err := http.Get(srv.URL + "/matches")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	var list []arenadto.MatchSummary
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 1 || list[0].Mode != "standard" {
		t.Fatalf("listing = %+v", list)
	}
}

type recordingConn struct{}

func (recordingConn) Send(any) error { return nil }
