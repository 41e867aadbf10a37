package notify

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
)

const heartbeatInterval = 25 * time.Second

type Handler struct {
	hub *Hub
}

func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

// StreamOrder godoc
// @Summary      Order event stream
// @Description  Server-sent events for one order: chat messages and status changes.
// @Tags         events
// @Produce      text/event-stream
// @Param        orderID path string true "Order ID"
// @Router       /orders/{orderID}/events [get]
func (h *Handler) StreamOrder(c *gin.Context) {
	events, cancel := h.hub.Subscribe(c.Request.Context(), OrderTopic(c.Param("orderID")))
	defer cancel()
	stream(c, events)
}

// StreamAdmin godoc
// @Summary      Admin activity stream
// @Description  Server-sent events for new orders and recharge requests.
// @Tags         admin,events
// @Produce      text/event-stream
// @Security     BearerAuth
// @Router       /admin/events [get]
func (h *Handler) StreamAdmin(c *gin.Context) {
	events, cancel := h.hub.Subscribe(c.Request.Context(), TopicOrdersNew, TopicRechargesNew)
	defer cancel()
	stream(c, events)
}

func stream(c *gin.Context, events <-chan Event) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent("message", event)
			return true
		case <-heartbeat.C:
			c.SSEvent("ping", nil)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
