package chat

import (
	"context"
	"errors"
	"net/http"

	"boompay/internal/api"
	"boompay/internal/metrics"
	"boompay/internal/notify"
	"boompay/internal/order"
	"boompay/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Handler struct {
	repo      Repository
	orderRepo order.Repository
	publisher notify.Publisher
}

func NewHandler(db *sqlx.DB, publisher notify.Publisher) *Handler {
	return &Handler{
		repo:      NewRepository(db),
		orderRepo: order.NewRepository(db),
		publisher: publisher,
	}
}

// ownOrder resolves the order and checks it belongs to the calling token.
func (h *Handler) ownOrder(c *gin.Context) (*order.Order, bool) {
	tok, exists := token.FromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "token not authenticated"})
		return nil, false
	}

	o, err := h.orderRepo.GetByID(c.Request.Context(), c.Param("orderID"))
	if err != nil || o.TokenID != tok.ID {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "order not found"})
		return nil, false
	}

	return o, true
}

// ListMessages godoc
// @Summary      List order messages
// @Tags         chat
// @Security     BearerAuth
// @Produce      json
// @Param        orderID path string true "Order ID"
// @Success      200 {array} chat.OrderMessage
// @Failure      404 {object} api.ErrorResponse
// @Router       /orders/{orderID}/messages [get]
func (h *Handler) ListMessages(c *gin.Context) {
	o, ok := h.ownOrder(c)
	if !ok {
		return
	}

	h.list(c, o.ID)
}

// SendMessage godoc
// @Summary      Send a message on an order
// @Tags         chat
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        orderID path string true "Order ID"
// @Param        request body chat.SendMessageRequest true "Message"
// @Success      201 {object} chat.OrderMessage
// @Failure      404 {object} api.ErrorResponse
// @Router       /orders/{orderID}/messages [post]
func (h *Handler) SendMessage(c *gin.Context) {
	o, ok := h.ownOrder(c)
	if !ok {
		return
	}

	h.send(c, o.ID, SenderCustomer)
}

// MarkRead godoc
// @Summary      Mark order messages read
// @Tags         chat
// @Security     BearerAuth
// @Produce      json
// @Param        orderID path string true "Order ID"
// @Success      200 {object} api.MessageResponse
// @Router       /orders/{orderID}/messages/read [post]
func (h *Handler) MarkRead(c *gin.Context) {
	o, ok := h.ownOrder(c)
	if !ok {
		return
	}

	if _, err := h.repo.MarkRead(c.Request.Context(), o.ID, SenderCustomer); err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to mark messages read"})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "messages marked read"})
}

// Unread godoc
// @Summary      Count unread staff messages on an order
// @Tags         chat
// @Security     BearerAuth
// @Produce      json
// @Param        orderID path string true "Order ID"
// @Success      200 {object} chat.UnreadResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /orders/{orderID}/messages/unread [get]
func (h *Handler) Unread(c *gin.Context) {
	o, ok := h.ownOrder(c)
	if !ok {
		return
	}

	h.unread(c, o.ID, SenderCustomer)
}

// AdminListMessages godoc
// @Summary      List order messages
// @Tags         admin,chat
// @Security     BearerAuth
// @Produce      json
// @Param        orderID path string true "Order ID"
// @Success      200 {array} chat.OrderMessage
// @Router       /admin/orders/{orderID}/messages [get]
func (h *Handler) AdminListMessages(c *gin.Context) {
	orderID := c.Param("orderID")
	if _, err := h.orderRepo.GetByID(c.Request.Context(), orderID); err != nil {
		h.orderError(c, err)
		return
	}

	h.list(c, orderID)
}

// AdminSendMessage godoc
// @Summary      Reply on an order
// @Tags         admin,chat
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        orderID path string true "Order ID"
// @Param        request body chat.SendMessageRequest true "Message"
// @Success      201 {object} chat.OrderMessage
// @Router       /admin/orders/{orderID}/messages [post]
func (h *Handler) AdminSendMessage(c *gin.Context) {
	orderID := c.Param("orderID")
	if _, err := h.orderRepo.GetByID(c.Request.Context(), orderID); err != nil {
		h.orderError(c, err)
		return
	}

	h.send(c, orderID, SenderAdmin)
}

// AdminMarkRead godoc
// @Summary      Mark customer messages read
// @Tags         admin,chat
// @Security     BearerAuth
// @Produce      json
// @Param        orderID path string true "Order ID"
// @Success      200 {object} api.MessageResponse
// @Router       /admin/orders/{orderID}/messages/read [post]
func (h *Handler) AdminMarkRead(c *gin.Context) {
	if _, err := h.repo.MarkRead(c.Request.Context(), c.Param("orderID"), SenderAdmin); err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to mark messages read"})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "messages marked read"})
}

// AdminUnread godoc
// @Summary      Count unread customer messages on an order
// @Tags         admin,chat
// @Security     BearerAuth
// @Produce      json
// @Param        orderID path string true "Order ID"
// @Success      200 {object} chat.UnreadResponse
// @Router       /admin/orders/{orderID}/messages/unread [get]
func (h *Handler) AdminUnread(c *gin.Context) {
	orderID := c.Param("orderID")
	if _, err := h.orderRepo.GetByID(c.Request.Context(), orderID); err != nil {
		h.orderError(c, err)
		return
	}

	h.unread(c, orderID, SenderAdmin)
}

func (h *Handler) unread(c *gin.Context, orderID, readerType string) {
	count, err := h.repo.UnreadCount(c.Request.Context(), orderID, readerType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to count unread messages"})
		return
	}

	c.JSON(http.StatusOK, UnreadResponse{Unread: count})
}

func (h *Handler) orderError(c *gin.Context, err error) {
	if errors.Is(err, order.ErrOrderNotFound) {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "order not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load order"})
}

func (h *Handler) list(c *gin.Context, orderID string) {
	messages, err := h.repo.ListByOrder(c.Request.Context(), orderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to list messages"})
		return
	}

	c.JSON(http.StatusOK, messages)
}

func (h *Handler) send(c *gin.Context, orderID, senderType string) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	m, err := h.repo.Append(c.Request.Context(), orderID, senderType, req.Message)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to send message"})
		return
	}

	metrics.RecordChatMessage(senderType)
	h.publish(c.Request.Context(), m)

	c.JSON(http.StatusCreated, m)
}

func (h *Handler) publish(ctx context.Context, m *OrderMessage) {
	if h.publisher == nil {
		return
	}
	_ = h.publisher.Publish(ctx, notify.OrderTopic(m.OrderID), notify.Event{
		Type: "chat_message",
		Data: map[string]interface{}{
			"id":          m.ID,
			"order_id":    m.OrderID,
			"sender_type": m.SenderType,
			"message":     m.Message,
		},
	})
}
