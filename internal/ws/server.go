// Package ws is the live transport: one WebSocket per participant
// connection, JSON command frames in, JSON notification frames out, plus
// the small read-only HTTP surface (awaiting-match listing, health).
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/chess-arena/internal/arena"
	"github.com/park285/chess-arena/internal/domain"
	"github.com/park285/chess-arena/internal/msgcat"
	"github.com/park285/chess-arena/internal/obslog"
	"github.com/park285/chess-arena/internal/registry"
	"github.com/park285/chess-arena/pkg/arenadto"
)

const (
	outboundBuffer = 64
	writeTimeout   = 10 * time.Second
)

type Server struct {
	mgr *arena.Manager
	reg *registry.Registry
	cat *msgcat.Catalog
}

func NewServer(mgr *arena.Manager, reg *registry.Registry, cat *msgcat.Catalog) *Server {
	return &Server{mgr: mgr, reg: reg, cat: cat}
}

// Handler returns the full HTTP surface.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/matches", s.handleMatches)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

func (s *Server) handleMatches(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.mgr.ListAwaiting()); err != nil {
		obslog.L().Debug("matches listing write failed", zap.Error(err))
	}
}

// conn adapts one WebSocket to the registry's Conn contract. Outbound
// frames go through a buffered channel drained by a single writer
// goroutine, which keeps per-match broadcast order without ever blocking
// the arbitrator.
type conn struct {
	ws  *websocket.Conn
	out chan arenadto.Notification

	closeOnce sync.Once
	done      chan struct{}
}

func newConn(ws *websocket.Conn) *conn {
	return &conn{ws: ws, out: make(chan arenadto.Notification, outboundBuffer), done: make(chan struct{})}
}

func (c *conn) Send(v any) error {
	n, ok := v.(arenadto.Notification)
	if !ok {
		return arena.ErrBadRequest
	}
	select {
	case <-c.done:
		return context.Canceled
	case c.out <- n:
		return nil
	default:
		// a reader this far behind is beyond saving
		c.shutdown()
		return context.Canceled
	}
}

func (c *conn) shutdown() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *conn) writeLoop(ctx context.Context) {
	for {
		select {
		case <-c.done:
			return
		case <-ctx.Done():
			return
		case n := <-c.out:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(wctx, c.ws, n)
			cancel()
			if err != nil {
				c.shutdown()
				return
			}
		}
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	sock, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		obslog.L().Debug("ws accept failed", zap.Error(err))
		return
	}

	identity := strings.TrimSpace(r.URL.Query().Get("identity"))
	if identity == "" || identity == domain.BotIdentity {
		identity = s.reg.AllocateIdentity()
	}

	c := newConn(sock)
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go c.writeLoop(ctx)

	s.reg.Register(identity, c)
	obslog.L().Info("connection open", zap.String("identity", identity))

	// tell the client who it is; matters on the allocated-identity path
	_ = c.Send(arenadto.Notification{Type: arenadto.TypeIdentity, Identity: identity})

	defer func() {
		s.reg.Unregister(identity, c)
		c.shutdown()
		_ = sock.Close(websocket.StatusNormalClosure, "bye")
		obslog.L().Info("connection closed", zap.String("identity", identity))
	}()

	for {
		var cmd arenadto.Command
		if err := wsjson.Read(ctx, sock, &cmd); err != nil {
			return
		}
		s.dispatch(ctx, identity, c, cmd)
		select {
		case <-c.done:
			return
		default:
		}
	}
}

// dispatch runs one command and converts arbitration failures into error
// notifications for the requester.
func (s *Server) dispatch(ctx context.Context, identity string, c *conn, cmd arenadto.Command) {
	var err error
	switch cmd.Type {
	case arenadto.TypeCreateGame:
		err = s.mgr.CreateMatch(ctx, identity, arena.CreateRequest{
			OpponentKind:   domain.OpponentKind(cmd.OpponentType),
			PreferredColor: cmd.PreferredColor,
			Mode:           cmd.Mode,
			TimeControl:    cmd.TimeControl,
			Difficulty:     cmd.Difficulty,
		})
	case arenadto.TypeJoinChallenge:
		err = s.mgr.JoinChallenge(ctx, identity, cmd.Token)
	case arenadto.TypeMakeMove:
		err = s.mgr.MakeMove(ctx, identity, cmd.MatchID, cmd.From, cmd.To, cmd.Promotion)
	case arenadto.TypeResign:
		err = s.mgr.Resign(ctx, identity, cmd.MatchID)
	case arenadto.TypeResetGame:
		err = s.mgr.Reset(ctx, identity, cmd.MatchID)
	default:
		_ = c.Send(arenadto.Notification{
			Type:    arenadto.TypeError,
			Message: s.cat.Text("error.unknown_command", nil),
		})
		return
	}
	if err != nil {
		obslog.L().Debug("command rejected",
			zap.String("identity", identity), zap.String("type", cmd.Type), zap.Error(err))
		_ = c.Send(arenadto.Notification{
			Type:    arenadto.TypeError,
			MatchID: cmd.MatchID,
			Message: s.mgr.ErrorMessage(err),
		})
	}
}
