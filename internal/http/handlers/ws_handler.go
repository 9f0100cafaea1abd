package handlers

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ecop-onboarding/backend/internal/auth"
	"github.com/ecop-onboarding/backend/internal/events"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// WSHub fans request lifecycle events out to connected admin dashboards.
// Connections authorize through the same gate as the REST admin endpoints.
type WSHub struct {
	gate       auth.Gate
	subscriber events.Subscriber
	log        *zap.Logger
	mu         sync.RWMutex
	conns      map[*websocket.Conn]struct{}
}

func NewWSHub(gate auth.Gate, subscriber events.Subscriber, log *zap.Logger) *WSHub {
	return &WSHub{
		gate:       gate,
		subscriber: subscriber,
		log:        log,
		conns:      make(map[*websocket.Conn]struct{}),
	}
}

func (h *WSHub) Start(ctx context.Context) {
	if err := h.subscriber.Subscribe(ctx, events.StreamRequests, func(event events.Event) {
		h.broadcast(event)
	}); err != nil {
		h.log.Error("event subscription failed", zap.Error(err))
	}
}

func (h *WSHub) broadcast(event events.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for conn := range h.conns {
		_ = conn.WriteMessage(websocket.TextMessage, data)
	}
}

// WSUpgradeMiddleware checks for websocket upgrade
func WSUpgradeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

func (h *WSHub) HandleWS(conn *websocket.Conn) {
	caller := auth.Caller{
		Address: conn.Query("address"),
		Token:   conn.Query("token"),
	}
	if !h.gate.Authorize(caller) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"Unauthorized: Admin access required"}`))
		conn.Close()
		return
	}

	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.conns, conn)
		h.mu.Unlock()
		conn.Close()
	}()

	// Read loop (keep alive / pings)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
