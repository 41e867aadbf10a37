package news

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

// ListActive godoc
// @Summary      List published news
// @Description  Active announcements, newest first.
// @Tags         news
// @Produce      json
// @Success      200 {array} news.NewsItem
// @Router       /news [get]
func (h *Handler) ListActive(c *gin.Context) {
	items, err := h.repo.ListActive(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to list news"})
		return
	}

	c.JSON(http.StatusOK, items)
}

// ListAll godoc
// @Summary      List all news items
// @Tags         admin,news
// @Security     BearerAuth
// @Produce      json
// @Success      200 {array} news.NewsItem
// @Router       /admin/news [get]
func (h *Handler) ListAll(c *gin.Context) {
	items, err := h.repo.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to list news"})
		return
	}

	c.JSON(http.StatusOK, items)
}

// Create godoc
// @Summary      Publish a news item
// @Tags         admin,news
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body news.NewsRequest true "News item"
// @Success      201 {object} news.NewsItem
// @Failure      400 {object} api.ErrorResponse
// @Router       /admin/news [post]
func (h *Handler) Create(c *gin.Context) {
	var req NewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	item, err := h.repo.Create(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to create news item"})
		return
	}

	c.JSON(http.StatusCreated, item)
}

// Update godoc
// @Summary      Edit a news item
// @Tags         admin,news
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        newsID path string true "News item ID"
// @Param        request body news.NewsRequest true "News item"
// @Success      200 {object} news.NewsItem
// @Failure      404 {object} api.ErrorResponse
// @Router       /admin/news/{newsID} [put]
func (h *Handler) Update(c *gin.Context) {
	var req NewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	item, err := h.repo.Update(c.Request.Context(), c.Param("newsID"), req)
	if err != nil {
		if errors.Is(err, ErrNewsNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "news item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to update news item"})
		return
	}

	c.JSON(http.StatusOK, item)
}

// SetActive godoc
// @Summary      Show or hide a news item
// @Tags         admin,news
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        newsID path string true "News item ID"
// @Param        request body news.SetActiveRequest true "Visibility flag"
// @Success      200 {object} news.NewsItem
// @Failure      404 {object} api.ErrorResponse
// @Router       /admin/news/{newsID}/active [post]
func (h *Handler) SetActive(c *gin.Context) {
	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	item, err := h.repo.SetActive(c.Request.Context(), c.Param("newsID"), *req.IsActive)
	if err != nil {
		if errors.Is(err, ErrNewsNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "news item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to update news item"})
		return
	}

	c.JSON(http.StatusOK, item)
}

// Delete godoc
// @Summary      Delete a news item
// @Tags         admin,news
// @Security     BearerAuth
// @Produce      json
// @Param        newsID path string true "News item ID"
// @Success      200 {object} api.MessageResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /admin/news/{newsID} [delete]
func (h *Handler) Delete(c *gin.Context) {
	if err := h.repo.Delete(c.Request.Context(), c.Param("newsID")); err != nil {
		if errors.Is(err, ErrNewsNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "news item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to delete news item"})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "news item deleted"})
}
