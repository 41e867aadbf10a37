package settings

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

// GetPublic godoc
// @Summary      Read a public setting
// @Description  Whitelisted keys only, e.g. dollar_rate.
// @Tags         settings
// @Produce      json
// @Param        key path string true "Setting key"
// @Success      200 {object} settings.Setting
// @Failure      404 {object} api.ErrorResponse
// @Router       /settings/{key} [get]
func (h *Handler) GetPublic(c *gin.Context) {
	key := c.Param("key")
	if !IsPublicKey(key) {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "setting not found"})
		return
	}

	s, err := h.repo.Get(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, ErrSettingNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "setting not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load setting"})
		return
	}

	c.JSON(http.StatusOK, s)
}

// List godoc
// @Summary      List settings
// @Tags         admin,settings
// @Security     BearerAuth
// @Produce      json
// @Success      200 {array} settings.Setting
// @Router       /admin/settings [get]
func (h *Handler) List(c *gin.Context) {
	all, err := h.repo.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to list settings"})
		return
	}

	c.JSON(http.StatusOK, all)
}

// Upsert godoc
// @Summary      Set a setting
// @Tags         admin,settings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        key path string true "Setting key"
// @Param        request body settings.UpsertRequest true "Value"
// @Success      200 {object} settings.Setting
// @Failure      400 {object} api.ErrorResponse
// @Router       /admin/settings/{key} [put]
func (h *Handler) Upsert(c *gin.Context) {
	var req UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	s, err := h.repo.Upsert(c.Request.Context(), c.Param("key"), req.Value)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to save setting"})
		return
	}

	c.JSON(http.StatusOK, s)
}
