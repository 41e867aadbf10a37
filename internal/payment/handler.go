package payment

import (
	"errors"
	"net/http"

	"boompay/internal/api"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Handler struct {
	repo Repository
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{repo: NewRepository(db)}
}

// ListVisible godoc
// @Summary      List payment methods
// @Description  Active and publicly visible methods, in display order.
// @Tags         payments
// @Produce      json
// @Success      200 {array} payment.PaymentMethod
// @Router       /payment-methods [get]
func (h *Handler) ListVisible(c *gin.Context) {
	methods, err := h.repo.ListVisible(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to list payment methods"})
		return
	}

	c.JSON(http.StatusOK, methods)
}

// ListAll godoc
// @Summary      List all payment methods
// @Tags         admin,payments
// @Security     BearerAuth
// @Produce      json
// @Success      200 {array} payment.PaymentMethod
// @Router       /admin/payment-methods [get]
func (h *Handler) ListAll(c *gin.Context) {
	methods, err := h.repo.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to list payment methods"})
		return
	}

	c.JSON(http.StatusOK, methods)
}

// Create godoc
// @Summary      Create a payment method
// @Tags         admin,payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body payment.MethodRequest true "Payment method"
// @Success      201 {object} payment.PaymentMethod
// @Failure      400 {object} api.ErrorResponse
// @Router       /admin/payment-methods [post]
func (h *Handler) Create(c *gin.Context) {
	var req MethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	m, err := h.repo.Create(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to create payment method"})
		return
	}

	c.JSON(http.StatusCreated, m)
}

// Update godoc
// @Summary      Update a payment method
// @Tags         admin,payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        methodID path string true "Payment method ID"
// @Param        request body payment.MethodRequest true "Payment method"
// @Success      200 {object} payment.PaymentMethod
// @Failure      404 {object} api.ErrorResponse
// @Router       /admin/payment-methods/{methodID} [put]
func (h *Handler) Update(c *gin.Context) {
	var req MethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	m, err := h.repo.Update(c.Request.Context(), c.Param("methodID"), req)
	if err != nil {
		if errors.Is(err, ErrMethodNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "payment method not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to update payment method"})
		return
	}

	c.JSON(http.StatusOK, m)
}

// Delete godoc
// @Summary      Delete a payment method
// @Tags         admin,payments
// @Security     BearerAuth
// @Produce      json
// @Param        methodID path string true "Payment method ID"
// @Success      200 {object} api.MessageResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /admin/payment-methods/{methodID} [delete]
func (h *Handler) Delete(c *gin.Context) {
	if err := h.repo.Delete(c.Request.Context(), c.Param("methodID")); err != nil {
		if errors.Is(err, ErrMethodNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "payment method not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to delete payment method"})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "payment method deleted"})
}
