package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/james-see/tasteofcontrol/pkg/engine"
	"github.com/james-see/tasteofcontrol/pkg/logger"
)

const clientBuffer = 16

// hub fans measures out to websocket clients. Slow clients drop messages
// rather than stall the session.
type hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]chan []byte
}

func newHub() *hub {
	return &hub{clients: make(map[*websocket.Conn]chan []byte)}
}

func (h *hub) add(conn *websocket.Conn) chan []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch := make(chan []byte, clientBuffer)
	h.clients[conn] = ch
	return ch
}

func (h *hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.clients[conn]; ok {
		close(ch)
		delete(h.clients, conn)
	}
}

func (h *hub) broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.clients {
		select {
		case ch <- msg:
		default:
		}
	}
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// publish runs inside Session.Advance.
func (s *Server) publish(m *engine.Measure) {
	msg, err := json.Marshal(newMeasureResponse(m))
	if err != nil {
		logger.Error("Failed to encode measure", err, logger.Fields{"measure": m.Number})
		return
	}
	s.hub.broadcast(msg)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleStream godoc
// @Summary Live measures
// @Description Websocket pushing one MeasureResponse per composed measure
// @Tags score
// @Router /api/v1/stream [get]
func (s *Server) handleStream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("Websocket upgrade failed", logger.Fields{"error": err.Error()})
		return
	}
	ch := s.hub.add(conn)

	// reader: detect the client going away
	go func() {
		defer s.hub.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for msg := range ch {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
	_ = conn.Close()
}
