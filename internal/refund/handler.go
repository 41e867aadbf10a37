package refund

import (
	"errors"
	"net/http"
	"strconv"

	"boompay/internal/api"
	"boompay/internal/metrics"
	"boompay/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Handler struct {
	repo Repository
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{repo: NewRepository(db)}
}

// Submit godoc
// @Summary      Submit a refund request
// @Tags         refunds
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body refund.SubmitRequest true "Refund payload"
// @Success      201 {object} refund.RefundRequest
// @Failure      400 {object} api.ErrorResponse
// @Router       /refunds [post]
func (h *Handler) Submit(c *gin.Context) {
	tok, exists := token.FromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "token not authenticated"})
		return
	}

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	request, err := h.repo.Create(c.Request.Context(), tok.ID, req.OrderID, req.Reason)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to submit refund request"})
		return
	}

	c.JSON(http.StatusCreated, request)
}

// ListMine godoc
// @Summary      List my refund requests
// @Tags         refunds
// @Security     BearerAuth
// @Produce      json
// @Success      200 {array} refund.RefundRequest
// @Router       /refunds [get]
func (h *Handler) ListMine(c *gin.Context) {
	tok, exists := token.FromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "token not authenticated"})
		return
	}

	requests, err := h.repo.ListByToken(c.Request.Context(), tok.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to list refund requests"})
		return
	}

	c.JSON(http.StatusOK, requests)
}

// List godoc
// @Summary      List refund requests
// @Tags         admin,refunds
// @Security     BearerAuth
// @Produce      json
// @Param        status query string false "Filter by status"
// @Param        limit  query int    false "Page size"
// @Param        offset query int    false "Page offset"
// @Success      200 {array} refund.RefundWithToken
// @Router       /admin/refunds [get]
func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	requests, err := h.repo.List(c.Request.Context(), c.Query("status"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to list refund requests"})
		return
	}

	c.JSON(http.StatusOK, requests)
}

// Approve godoc
// @Summary      Approve a refund request
// @Description  Records the decision. Settling the money is handled through the order, not here.
// @Tags         admin,refunds
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        refundID path string true "Refund request ID"
// @Param        request body refund.DecisionRequest false "Optional notes"
// @Success      200 {object} refund.RefundRequest
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /admin/refunds/{refundID}/approve [post]
func (h *Handler) Approve(c *gin.Context) {
	h.decide(c, StatusApproved)
}

// Reject godoc
// @Summary      Reject a refund request
// @Tags         admin,refunds
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        refundID path string true "Refund request ID"
// @Param        request body refund.DecisionRequest false "Optional notes"
// @Success      200 {object} refund.RefundRequest
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /admin/refunds/{refundID}/reject [post]
func (h *Handler) Reject(c *gin.Context) {
	h.decide(c, StatusRejected)
}

func (h *Handler) decide(c *gin.Context, status string) {
	var req DecisionRequest
	_ = c.ShouldBindJSON(&req)

	request, err := h.repo.Decide(c.Request.Context(), c.Param("refundID"), status, req.AdminNotes)
	if err != nil {
		switch {
		case errors.Is(err, ErrRefundNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "refund request not found"})
		case errors.Is(err, ErrAlreadyProcessed):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "refund request already processed"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to update refund request"})
		}
		return
	}

	metrics.RecordRefundDecision(status)
	c.JSON(http.StatusOK, request)
}
