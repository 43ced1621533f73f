package server

import (
	"context"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"

	"github.com/goliatone/go-formstate/internal/dashboard"
	"github.com/goliatone/go-formstate/pkg/confirm"
)

// Message is pushed to websocket subscribers. Snapshot messages carry the
// whole page; button messages only the save bar view.
type Message struct {
	Type     string              `json:"type"`
	Snapshot *dashboard.Snapshot `json:"snapshot,omitempty"`
	Button   *confirm.View       `json:"button,omitempty"`
}

// watch upgrades to a websocket, sends the current snapshot and then one
// message per coalesced change until the client goes away.
func (s *Server) watch(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.logger.Warn("websocket accept", zap.Error(err))
		return
	}
	defer conn.CloseNow()

	sub, unsubscribe := sess.subscribe()
	defer unsubscribe()

	// Reads only detect the close; clients never send.
	ctx := conn.CloseRead(r.Context())

	snap := sess.page.Snapshot()
	if err := s.send(ctx, conn, Message{Type: MessageSnapshot, Snapshot: &snap}); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case <-sub.signal:
		}

		pending := sub.take()
		var msg Message
		switch {
		case pending&pendingSnapshot != 0:
			snap := sess.page.Snapshot()
			msg = Message{Type: MessageSnapshot, Snapshot: &snap}
		case pending&pendingButton != 0:
			view := sess.page.SaveBar(false)
			msg = Message{Type: MessageButton, Button: &view}
		default:
			continue
		}
		if err := s.send(ctx, conn, msg); err != nil {
			return
		}
	}
}

func (s *Server) send(ctx context.Context, conn *websocket.Conn, msg Message) error {
	if err := wsjson.Write(ctx, conn, msg); err != nil {
		if websocket.CloseStatus(err) == -1 {
			s.logger.Debug("websocket write", zap.Error(err))
		}
		return err
	}
	return nil
}
