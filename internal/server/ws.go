package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/coinhop/internal/control"
	"github.com/MrWong99/coinhop/internal/game"
)

// Websocket message types.
const (
	msgHello   = "hello"
	msgState   = "state"
	msgOutcome = "outcome"
	msgCommand = "command"
	msgError   = "error"
)

// wsOut is a server-to-client frame.
type wsOut struct {
	Type     string           `json:"type"`
	ClientID string           `json:"client_id,omitempty"`
	State    *game.Snapshot   `json:"state,omitempty"`
	Outcome  *control.Outcome `json:"outcome,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// wsIn is a client-to-server frame.
type wsIn struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// handleWebsocket streams world snapshots to the client and plays the
// commands it sends. The client gets a hello frame with the current state on
// connect, a state frame after every world change, and an outcome frame for
// each command it sends.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.originPatterns,
	})
	if err != nil {
		slog.Debug("server: websocket accept failed", "err", err)
		return
	}
	defer conn.CloseNow()

	id := uuid.NewString()
	log := slog.With("client_id", id)

	ctx := r.Context()
	s.metrics.ActiveClients.Add(ctx, 1)
	defer s.metrics.ActiveClients.Add(context.WithoutCancel(ctx), -1)

	updates, unsubscribe := s.ctl.World().Subscribe()
	defer unsubscribe()

	snap := s.ctl.World().Snapshot()
	if err := wsjson.Write(ctx, conn, wsOut{Type: msgHello, ClientID: id, State: &snap}); err != nil {
		log.Debug("server: websocket hello failed", "err", err)
		return
	}
	log.Info("server: websocket client connected")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			var in wsIn
			if err := wsjson.Read(gctx, conn, &in); err != nil {
				return err
			}
			msg := wsOut{Type: msgError}
			switch in.Type {
			case msgCommand:
				out := s.ctl.Play(gctx, in.Text)
				msg = wsOut{Type: msgOutcome, Outcome: &out}
			default:
				msg.Error = fmt.Sprintf("unknown message type %q", in.Type)
			}
			if err := wsjson.Write(gctx, conn, msg); err != nil {
				return err
			}
		}
	})
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case snap := <-updates:
				if err := wsjson.Write(gctx, conn, wsOut{Type: msgState, State: &snap}); err != nil {
					return err
				}
			}
		}
	})

	err = g.Wait()
	switch status := websocket.CloseStatus(err); {
	case status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway:
		log.Info("server: websocket client disconnected")
	case errors.Is(err, context.Canceled):
		conn.Close(websocket.StatusGoingAway, "server shutting down")
	default:
		log.Warn("server: websocket closed", "err", err)
	}
}
