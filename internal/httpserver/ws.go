package httpserver

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/SeamusWaldron/cubetac"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second

	// frames buffered per client before it starts missing them
	clientBuffer = 32
)

func (s *Server) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if s.opts.AllowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == s.opts.AllowedOrigin
		},
	}
}

// handleWS pushes a render state to the client on every change. Clients
// only listen; moves go through the POST routes.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	up := s.upgrader()
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	frames, cancel, err := s.ctrl.Subscribe(r.Context(), clientBuffer)
	if err != nil {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "session stopped"))
		return
	}
	defer cancel()

	if m := s.opts.Metrics; m != nil {
		m.ClientConnected()
		defer m.ClientDisconnected()
	}
	log.Debug().Str("remote", r.RemoteAddr).Msg("websocket client connected")

	closed := make(chan struct{})
	go readPump(conn, closed)
	writePump(conn, frames, closed)

	log.Debug().Str("remote", r.RemoteAddr).Msg("websocket client disconnected")
}

// readPump drains client messages so control frames are processed, and
// signals closed when the connection drops.
func readPump(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writePump(conn *websocket.Conn, frames <-chan cubetac.RenderState, closed <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case frame, ok := <-frames:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "session stopped"))
				return
			}
			if err := conn.WriteJSON(frame); err != nil {
				log.Debug().Err(err).Msg("websocket write failed")
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-closed:
			return
		}
	}
}
