package order

import (
	"errors"
	"net/http"
	"strconv"

	"boompay/internal/api"
	"boompay/internal/catalog"
	"boompay/internal/coupon"
	"boompay/internal/notify"
	"boompay/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Handler struct {
	service Service
	repo    Repository
}

func NewHandler(db *sqlx.DB, publisher notify.Publisher) *Handler {
	repo := NewRepository(db)
	return &Handler{
		service: NewService(repo, catalog.NewRepository(db), coupon.NewRepository(db), publisher),
		repo:    repo,
	}
}

// Purchase godoc
// @Summary      Place an order
// @Description  Buys a product option. Stock-backed options deliver immediately; manual options open a pending order.
// @Tags         orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body order.PurchaseRequest true "Purchase payload"
// @Success      201 {object} order.Order
// @Failure      400 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /orders [post]
func (h *Handler) Purchase(c *gin.Context) {
	tok, exists := token.FromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "token not authenticated"})
		return
	}

	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	o, err := h.service.Purchase(c.Request.Context(), tok, req)
	if err != nil {
		h.purchaseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, o)
}

func (h *Handler) purchaseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, token.ErrTokenBlocked):
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "token is blocked"})
	case errors.Is(err, token.ErrInsufficientBalance):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "insufficient balance"})
	case errors.Is(err, catalog.ErrOptionNotFound), errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, ErrOptionUnavailable):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "product option not available"})
	case errors.Is(err, catalog.ErrInsufficientStock):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "not enough stock"})
	case errors.Is(err, coupon.ErrCouponNotFound), errors.Is(err, coupon.ErrCouponInactive),
		errors.Is(err, coupon.ErrCouponExpired), errors.Is(err, coupon.ErrCouponExhausted):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "coupon cannot be applied"})
	case errors.Is(err, ErrMissingFulfillmentData), errors.Is(err, ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to place order"})
	}
}

// ListMine godoc
// @Summary      List my orders
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Success      200 {array} order.Order
// @Router       /orders [get]
func (h *Handler) ListMine(c *gin.Context) {
	tok, exists := token.FromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "token not authenticated"})
		return
	}

	orders, err := h.repo.ListByToken(c.Request.Context(), tok.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to list orders"})
		return
	}

	c.JSON(http.StatusOK, orders)
}

// GetMine godoc
// @Summary      Get one of my orders
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        orderID path string true "Order ID"
// @Success      200 {object} order.Order
// @Failure      404 {object} api.ErrorResponse
// @Router       /orders/{orderID} [get]
func (h *Handler) GetMine(c *gin.Context) {
	tok, exists := token.FromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "token not authenticated"})
		return
	}

	o, err := h.repo.GetByID(c.Request.Context(), c.Param("orderID"))
	if err != nil || o.TokenID != tok.ID {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "order not found"})
		return
	}

	c.JSON(http.StatusOK, o)
}

// Cancel godoc
// @Summary      Cancel a pending order
// @Description  Only pending orders can be cancelled. The total is refunded to the token.
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        orderID path string true "Order ID"
// @Success      200 {object} api.MessageResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /orders/{orderID}/cancel [post]
func (h *Handler) Cancel(c *gin.Context) {
	tok, exists := token.FromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "token not authenticated"})
		return
	}

	if _, err := h.service.Cancel(c.Request.Context(), tok, c.Param("orderID")); err != nil {
		switch {
		case errors.Is(err, ErrOrderNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "order not found"})
		case errors.Is(err, ErrCannotCancel):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "order can no longer be cancelled"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to cancel order"})
		}
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "order cancelled and refunded"})
}

// List godoc
// @Summary      List orders
// @Tags         admin,orders
// @Security     BearerAuth
// @Produce      json
// @Param        status query string false "Filter by status"
// @Param        limit  query int    false "Page size"
// @Param        offset query int    false "Page offset"
// @Success      200 {array} order.OrderWithDetails
// @Router       /admin/orders [get]
func (h *Handler) List(c *gin.Context) {
	status := c.Query("status")
	if status != "" && !ValidStatus(status) {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid status"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	orders, err := h.repo.List(c.Request.Context(), status, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to list orders"})
		return
	}

	c.JSON(http.StatusOK, orders)
}

// Get godoc
// @Summary      Get an order
// @Tags         admin,orders
// @Security     BearerAuth
// @Produce      json
// @Param        orderID path string true "Order ID"
// @Success      200 {object} order.Order
// @Failure      404 {object} api.ErrorResponse
// @Router       /admin/orders/{orderID} [get]
func (h *Handler) Get(c *gin.Context) {
	o, err := h.repo.GetByID(c.Request.Context(), c.Param("orderID"))
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load order"})
		return
	}

	c.JSON(http.StatusOK, o)
}

// Transition godoc
// @Summary      Change order status
// @Description  Moves an order to in_progress, completed or rejected. Rejection refunds the customer.
// @Tags         admin,orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        orderID path string true "Order ID"
// @Param        request body order.TransitionRequest true "Target status"
// @Success      200 {object} order.Order
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /admin/orders/{orderID}/status [patch]
func (h *Handler) Transition(c *gin.Context) {
	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	o, err := h.service.Transition(c.Request.Context(), c.Param("orderID"), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrOrderNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "order not found"})
		case errors.Is(err, ErrInvalidTransition):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "invalid status transition"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to update order"})
		}
		return
	}

	c.JSON(http.StatusOK, o)
}
