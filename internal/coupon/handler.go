package coupon

import (
	"errors"
	"net/http"
	"time"

	"boompay/internal/api"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type PreviewRequest struct {
	Code   string          `json:"code" binding:"required"`
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

type PreviewResponse struct {
	Code          string          `json:"code"`
	DiscountType  string          `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
}

type Handler struct {
	repo Repository
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{repo: NewRepository(db)}
}

func NewHandlerWithRepo(repo Repository) *Handler {
	return &Handler{repo: repo}
}

func validDiscountType(t string) bool {
	return t == DiscountPercentage || t == DiscountFixed
}

// @Summary      Preview a coupon discount
// @Description  Checks a coupon against an order amount without redeeming it.
// @Tags         coupons
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body coupon.PreviewRequest true "Code and order amount"
// @Success      200 {object} coupon.PreviewResponse
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /coupons/preview [post]
func (h *Handler) Preview(c *gin.Context) {
	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	cp, err := h.repo.GetByCode(c.Request.Context(), req.Code)
	if err != nil {
		if errors.Is(err, ErrCouponNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "coupon not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to check coupon"})
		return
	}

	if err := cp.CanRedeem(time.Now()); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	discount := cp.DiscountFor(req.Amount)
	c.JSON(http.StatusOK, PreviewResponse{
		Code:          cp.Code,
		DiscountType:  cp.DiscountType,
		DiscountValue: cp.DiscountValue,
		Discount:      discount,
		Total:         req.Amount.Sub(discount),
	})
}

// @Summary      List coupons
// @Tags         admin,coupons
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} coupon.Coupon
// @Router       /admin/coupons [get]
func (h *Handler) List(c *gin.Context) {
	coupons, err := h.repo.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to list coupons"})
		return
	}

	c.JSON(http.StatusOK, coupons)
}

// @Summary      Create a coupon
// @Tags         admin,coupons
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body coupon.CreateCouponRequest true "Coupon payload"
// @Success      201 {object} coupon.Coupon
// @Failure      400 {object} api.ErrorResponse
// @Router       /admin/coupons [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	if !validDiscountType(req.DiscountType) || req.DiscountValue.LessThanOrEqual(decimal.Zero) {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid discount"})
		return
	}

	cp, err := h.repo.Create(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to create coupon"})
		return
	}

	c.JSON(http.StatusCreated, cp)
}

// @Summary      Update a coupon
// @Tags         admin,coupons
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        couponID path string true "Coupon ID"
// @Param        request body coupon.UpdateCouponRequest true "Coupon payload"
// @Success      200 {object} coupon.Coupon
// @Failure      404 {object} api.ErrorResponse
// @Router       /admin/coupons/{couponID} [put]
func (h *Handler) Update(c *gin.Context) {
	var req UpdateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	if !validDiscountType(req.DiscountType) || req.DiscountValue.LessThanOrEqual(decimal.Zero) {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid discount"})
		return
	}

	cp, err := h.repo.Update(c.Request.Context(), c.Param("couponID"), req)
	if err != nil {
		if errors.Is(err, ErrCouponNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "coupon not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to update coupon"})
		return
	}

	c.JSON(http.StatusOK, cp)
}

// @Summary      Delete a coupon
// @Tags         admin,coupons
// @Produce      json
// @Security     BearerAuth
// @Param        couponID path string true "Coupon ID"
// @Success      200 {object} api.MessageResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /admin/coupons/{couponID} [delete]
func (h *Handler) Delete(c *gin.Context) {
	if err := h.repo.Delete(c.Request.Context(), c.Param("couponID")); err != nil {
		if errors.Is(err, ErrCouponNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "coupon not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to delete coupon"})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "coupon deleted"})
}
