package handler

import (
	"fmt"

	"phone-order-be/internal/pkg/logger"
	internalWS "phone-order-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// KitchenHandler upgrades kitchen screens to websockets.
type KitchenHandler struct {
	hub    *internalWS.Hub
	auth   fiber.Handler
	logger logger.ILogger
}

func NewKitchenHandler(hub *internalWS.Hub, auth fiber.Handler, log logger.ILogger) *KitchenHandler {
	return &KitchenHandler{hub: hub, auth: auth, logger: log}
}

func (h *KitchenHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/kitchen/ws", h.auth, h.requireUpgrade, websocket.New(h.serve))
}

func (h *KitchenHandler) requireUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return c.Next()
}

// serve names the screen by its ?station= query, falling back to the staff
// token subject.
func (h *KitchenHandler) serve(conn *websocket.Conn) {
	station := conn.Query("station")
	if station == "" {
		station = fmt.Sprint(conn.Locals("staff_id"))
	}
	h.logger.Info("KitchenHandler", "Kitchen screen connected", map[string]interface{}{"station": station})
	internalWS.ServeWs(h.hub, conn, station)
}
