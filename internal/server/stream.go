package server

import (
	"context"
	"net/http"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const streamWriteWait = 10 * time.Second

// streamMessage is one frame pushed to a websocket client.
type streamMessage struct {
	Type     string      `json:"type"` // "snapshot" or "search"
	Snapshot interface{} `json:"snapshot,omitempty"`
	Query    string      `json:"query,omitempty"`
	Results  interface{} `json:"results,omitempty"`
	Error    string      `json:"error,omitempty"`
}

// clientMessage is one frame received from a websocket client.
type clientMessage struct {
	Type  string `json:"type"` // "search"
	Query string `json:"query"`
}

// handleStream handles GET /api/stream: a websocket that pushes a fresh
// snapshot after every recompute and carries interactive symbol search.
// Typing is debounced server-side, so a burst of search frames produces one
// upstream request and one result frame for the final query.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("Websocket accept failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "closed")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	snapshots := s.app.Store.Subscribe()
	defer s.app.Store.Unsubscribe(snapshots)

	searcher := s.app.NewSearcher()
	defer searcher.Close()

	// Initial state so the client renders without waiting for a change.
	if err := s.writeStream(ctx, conn, streamMessage{
		Type:     "snapshot",
		Snapshot: s.app.Store.Snapshot(),
	}); err != nil {
		return
	}

	// Read loop: search frames feed the debounced searcher.
	go func() {
		defer cancel()
		for {
			var msg clientMessage
			if err := wsjson.Read(ctx, conn, &msg); err != nil {
				return
			}
			if msg.Type == "search" {
				searcher.Search(msg.Query)
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			if err := s.writeStream(ctx, conn, streamMessage{Type: "snapshot", Snapshot: snap}); err != nil {
				return
			}
		case outcome := <-searcher.Results():
			msg := streamMessage{
				Type:    "search",
				Query:   outcome.Query,
				Results: outcome.Results,
			}
			if outcome.Err != nil {
				msg.Error = outcome.Err.Error()
			}
			if err := s.writeStream(ctx, conn, msg); err != nil {
				return
			}
		}
	}
}

func (s *Server) writeStream(ctx context.Context, conn *websocket.Conn, msg streamMessage) error {
	wctx, cancel := context.WithTimeout(ctx, streamWriteWait)
	defer cancel()
	return wsjson.Write(wctx, conn, msg)
}
