package rpc

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 50 * time.Second
	wsSendBuffer = 256
)

// WebSocketServer upgrades connections and attaches them to the publisher's
// event stream.
type WebSocketServer struct {
	upgrader websocket.Upgrader
	pub      *Publisher
	logger   *zap.Logger
}

func NewWebSocketServer(pub *Publisher, logger *zap.Logger) *WebSocketServer {
	return &WebSocketServer{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		pub:    pub,
		logger: logger,
	}
}

type wsConn struct {
	conn *websocket.Conn
	send chan []byte
}

// ServeHTTP handles the websocket upgrade and runs the connection until the
// client goes away.
func (ws *WebSocketServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := ws.upgrader.Upgrade(w, r, nil)
	if err != nil {
		ws.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &wsConn{
		conn: conn,
		send: make(chan []byte, wsSendBuffer),
	}
	ws.pub.add(c)
	ws.logger.Debug("websocket subscriber connected", zap.String("remote", conn.RemoteAddr().String()))

	go ws.writeLoop(c)
	ws.readLoop(c)
}

// readLoop consumes client frames to service pings and detect closure. The
// stream is publish-only; inbound messages are discarded.
func (ws *WebSocketServer) readLoop(c *wsConn) {
	defer func() {
		ws.pub.remove(c)
		close(c.send)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	_ = c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (ws *WebSocketServer) writeLoop(c *wsConn) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
