package token

import (
	"errors"
	"net/http"
	"strconv"

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

func NewHandlerWithRepo(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// @Summary      Verify a bearer token
// @Description  Resolves a wallet token and returns its balance. Blocked tokens still resolve so the balance can be displayed.
// @Tags         tokens
// @Accept       json
// @Produce      json
// @Param        request body token.VerifyRequest true "Token credential"
// @Success      200 {object} token.Token
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /tokens/verify [post]
func (h *Handler) Verify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "token is required"})
		return
	}

	t, err := h.repo.Resolve(c.Request.Context(), req.Token)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "token not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to verify token"})
		return
	}

	c.JSON(http.StatusOK, t)
}

// @Summary      List tokens
// @Tags         admin,tokens
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} token.Token
// @Router       /admin/tokens [get]
func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	tokens, err := h.repo.List(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to list tokens"})
		return
	}

	c.JSON(http.StatusOK, tokens)
}

// @Summary      Create a token
// @Description  Admin-only: creates a wallet token with an optional starting balance.
// @Tags         admin,tokens
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body token.CreateTokenRequest true "Initial balance"
// @Success      201 {object} token.Token
// @Failure      400 {object} api.ErrorResponse
// @Router       /admin/tokens [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	if req.Balance.IsNegative() {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "balance cannot be negative"})
		return
	}

	credential, err := GenerateCredential()
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to generate token"})
		return
	}

	t, err := h.repo.Create(c.Request.Context(), credential, req.Balance)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to create token"})
		return
	}

	c.JSON(http.StatusCreated, t)
}

// @Summary      Credit or debit a token
// @Description  Admin-only manual balance adjustment. Positive amounts credit, negative amounts debit; debits never overdraw.
// @Tags         admin,tokens
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        tokenID path string true "Token ID"
// @Param        request body token.AdjustBalanceRequest true "Signed amount"
// @Success      200 {object} token.Token
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      422 {object} api.ErrorResponse
// @Router       /admin/tokens/{tokenID}/balance [post]
func (h *Handler) AdjustBalance(c *gin.Context) {
	tokenID := c.Param("tokenID")

	var req AdjustBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Amount.IsZero() {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "amount must be a non-zero number"})
		return
	}

	ctx := c.Request.Context()

	var err error
	if req.Amount.IsPositive() {
		_, err = h.repo.Credit(ctx, tokenID, req.Amount)
	} else {
		_, err = h.repo.Debit(ctx, tokenID, req.Amount.Neg())
	}
	if err != nil {
		switch {
		case errors.Is(err, ErrTokenNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "token not found"})
		case errors.Is(err, ErrInsufficientBalance):
			c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{Error: "insufficient balance"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to adjust balance"})
		}
		return
	}

	t, err := h.repo.GetByID(ctx, tokenID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load token"})
		return
	}

	c.JSON(http.StatusOK, t)
}

// @Summary      Block or unblock a token
// @Tags         admin,tokens
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        tokenID path string true "Token ID"
// @Param        request body token.SetBlockedRequest true "Blocked flag"
// @Success      200 {object} api.MessageResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /admin/tokens/{tokenID}/blocked [post]
func (h *Handler) SetBlocked(c *gin.Context) {
	tokenID := c.Param("tokenID")

	var req SetBlockedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.repo.SetBlocked(c.Request.Context(), tokenID, req.Blocked); err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "token not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to update token"})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "token updated"})
}

// @Summary      Delete a token
// @Tags         admin,tokens
// @Produce      json
// @Security     BearerAuth
// @Param        tokenID path string true "Token ID"
// @Success      200 {object} api.MessageResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /admin/tokens/{tokenID} [delete]
func (h *Handler) Delete(c *gin.Context) {
	tokenID := c.Param("tokenID")

	if err := h.repo.Delete(c.Request.Context(), tokenID); err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "token not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to delete token"})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "token deleted"})
}
