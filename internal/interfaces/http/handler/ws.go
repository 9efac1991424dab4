package handler

import (
	"net/http"
	"time"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/tubesage/backend/internal/infrastructure/log"
	infraWS "github.com/tubesage/backend/internal/infrastructure/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// WSHandler WebSocket 进度推送处理器
type WSHandler struct {
	hub      *infraWS.Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewWSHandler 创建 WebSocket 处理器
func NewWSHandler(hub *infraWS.Hub) *WSHandler {
	return &WSHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // 本机服务，允许所有来源
			},
		},
		logger: log.NewModuleLogger("interfaces", "ws_handler"),
	}
}

// Serve 升级连接并推送摄取进度事件
// GET /ws
func (h *WSHandler) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("failed to upgrade connection", "error", err)
		return
	}

	wsConn := &infraWS.Connection{
		Send: make(chan []byte, 256),
	}
	h.hub.Register(wsConn)

	go h.writePump(conn, wsConn)
	go h.readPump(conn, wsConn)
}

// writePump 将 Hub 广播的消息写到客户端
func (h *WSHandler) writePump(conn *websocket.Conn, wsConn *infraWS.Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case data, ok := <-wsConn.Send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub 已关闭该连接
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump 丢弃客户端消息，只用于感知连接关闭
func (h *WSHandler) readPump(conn *websocket.Conn, wsConn *infraWS.Connection) {
	defer func() {
		h.hub.Unregister(wsConn)
		_ = conn.Close()
	}()

	conn.SetReadLimit(1024)
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
