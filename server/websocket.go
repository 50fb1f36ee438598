package server

import (
	"net/http"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// handleWebsocket pushes the current state, then every committed state, as JSON
// text messages. Client messages are ignored.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		s.log.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "")

	states, cancel := s.dash.Subscribe()
	defer cancel()

	ctx := conn.CloseRead(r.Context())
	if err := wsjson.Write(ctx, conn, s.dash.Snapshot()); err != nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case <-s.base.Done():
			conn.Close(websocket.StatusGoingAway, "server shutting down")
			return
		case st, ok := <-states:
			if !ok {
				return
			}
			if err := wsjson.Write(ctx, conn, st); err != nil {
				s.log.Debug().Err(err).Msg("Websocket client gone")
				return
			}
		}
	}
}
