package recharge

import (
	"errors"
	"net/http"
	"strconv"

	"boompay/internal/api"
	"boompay/internal/notify"
	"boompay/internal/storage"
	"boompay/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Handler struct {
	service Service
	repo    Repository
	store   *storage.Store
}

func NewHandler(db *sqlx.DB, store *storage.Store, publisher notify.Publisher) *Handler {
	repo := NewRepository(db)
	return &Handler{
		service: NewService(repo, token.NewRepository(db), publisher),
		repo:    repo,
		store:   store,
	}
}

// Submit godoc
// @Summary      Submit a recharge request
// @Description  Records a top-up request with an optional payment proof image. Without a token a new credential is issued.
// @Tags         recharges
// @Accept       multipart/form-data
// @Produce      json
// @Param        amount                formData string true  "Amount"
// @Param        token                 formData string false "Existing token credential"
// @Param        payment_method_id     formData string false "Payment method"
// @Param        sender_name           formData string false "Sender name"
// @Param        sender_phone          formData string false "Sender phone"
// @Param        transaction_reference formData string false "Transaction reference"
// @Param        proof_image           formData file   false "Payment proof image"
// @Success      201 {object} recharge.SubmitResult
// @Failure      400 {object} api.ErrorResponse
// @Router       /recharges [post]
func (h *Handler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	var proofImageURL *string
	if fh, err := c.FormFile("proof_image"); err == nil {
		url, err := h.store.Save(fh)
		if err != nil {
			switch {
			case errors.Is(err, storage.ErrFileTooLarge), errors.Is(err, storage.ErrUnsupportedType):
				c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
			default:
				c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to store proof image"})
			}
			return
		}
		proofImageURL = &url
	}

	result, err := h.service.Submit(c.Request.Context(), req, proofImageURL)
	if err != nil {
		if proofImageURL != nil {
			// the request never persisted, drop the orphaned upload
			_ = h.store.Remove(*proofImageURL)
		}
		switch {
		case errors.Is(err, ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid amount"})
		case errors.Is(err, token.ErrTokenNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "token not found"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to submit recharge request"})
		}
		return
	}

	c.JSON(http.StatusCreated, result)
}

// ListMine godoc
// @Summary      List my recharge requests
// @Tags         recharges
// @Security     BearerAuth
// @Produce      json
// @Success      200 {array} recharge.RechargeRequest
// @Router       /recharges [get]
func (h *Handler) ListMine(c *gin.Context) {
	tok, exists := token.FromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "token not authenticated"})
		return
	}

	requests, err := h.repo.ListByToken(c.Request.Context(), tok.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to list recharge requests"})
		return
	}

	c.JSON(http.StatusOK, requests)
}

// List godoc
// @Summary      List recharge requests
// @Tags         admin,recharges
// @Security     BearerAuth
// @Produce      json
// @Param        status query string false "Filter by status"
// @Param        limit  query int    false "Page size"
// @Param        offset query int    false "Page offset"
// @Success      200 {array} recharge.RechargeWithToken
// @Router       /admin/recharges [get]
func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	requests, err := h.repo.List(c.Request.Context(), c.Query("status"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to list recharge requests"})
		return
	}

	c.JSON(http.StatusOK, requests)
}

// Approve godoc
// @Summary      Approve a recharge request
// @Description  Credits the token and marks the request approved. Approving twice returns a conflict.
// @Tags         admin,recharges
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        rechargeID path string true "Recharge request ID"
// @Param        request body recharge.DecisionRequest false "Optional admin note"
// @Success      200 {object} recharge.RechargeRequest
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /admin/recharges/{rechargeID}/approve [post]
func (h *Handler) Approve(c *gin.Context) {
	var req DecisionRequest
	_ = c.ShouldBindJSON(&req)

	request, err := h.service.Approve(c.Request.Context(), c.Param("rechargeID"), req.AdminNote)
	if err != nil {
		h.decisionError(c, err)
		return
	}

	c.JSON(http.StatusOK, request)
}

// Reject godoc
// @Summary      Reject a recharge request
// @Tags         admin,recharges
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        rechargeID path string true "Recharge request ID"
// @Param        request body recharge.DecisionRequest false "Optional admin note"
// @Success      200 {object} recharge.RechargeRequest
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /admin/recharges/{rechargeID}/reject [post]
func (h *Handler) Reject(c *gin.Context) {
	var req DecisionRequest
	_ = c.ShouldBindJSON(&req)

	request, err := h.service.Reject(c.Request.Context(), c.Param("rechargeID"), req.AdminNote)
	if err != nil {
		h.decisionError(c, err)
		return
	}

	c.JSON(http.StatusOK, request)
}

func (h *Handler) decisionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrRechargeNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "recharge request not found"})
	case errors.Is(err, ErrAlreadyProcessed):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "recharge request already processed"})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to update recharge request"})
	}
}
