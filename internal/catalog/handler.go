package catalog

import (
	"errors"
	"net/http"
	"strings"

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

// @Summary      Browse the catalog
// @Description  Active products with their active options and current stock counts, in display order.
// @Tags         catalog
// @Produce      json
// @Success      200 {array} catalog.ProductWithOptions
// @Failure      500 {object} api.ErrorResponse
// @Router       /products [get]
func (h *Handler) ListCatalog(c *gin.Context) {
	ctx := c.Request.Context()

	products, err := h.repo.ListActiveProducts(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load catalog"})
		return
	}

	result := make([]ProductWithOptions, 0, len(products))
	for _, p := range products {
		options, err := h.repo.ListActiveOptions(ctx, p.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load catalog"})
			return
		}
		result = append(result, ProductWithOptions{Product: p, Options: options})
	}

	c.JSON(http.StatusOK, result)
}

// @Summary      List all products
// @Tags         admin,catalog
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} catalog.Product
// @Router       /admin/products [get]
func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.repo.ListProducts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to list products"})
		return
	}

	c.JSON(http.StatusOK, products)
}

// @Summary      Create a product
// @Tags         admin,catalog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body catalog.CreateProductRequest true "Product payload"
// @Success      201 {object} catalog.Product
// @Failure      400 {object} api.ErrorResponse
// @Router       /admin/products [post]
func (h *Handler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	p, err := h.repo.CreateProduct(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to create product"})
		return
	}

	c.JSON(http.StatusCreated, p)
}

// @Summary      Update a product
// @Tags         admin,catalog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        productID path string true "Product ID"
// @Param        request body catalog.UpdateProductRequest true "Product payload"
// @Success      200 {object} catalog.Product
// @Failure      404 {object} api.ErrorResponse
// @Router       /admin/products/{productID} [put]
func (h *Handler) UpdateProduct(c *gin.Context) {
	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	p, err := h.repo.UpdateProduct(c.Request.Context(), c.Param("productID"), req)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to update product"})
		return
	}

	c.JSON(http.StatusOK, p)
}

// @Summary      Delete a product
// @Tags         admin,catalog
// @Produce      json
// @Security     BearerAuth
// @Param        productID path string true "Product ID"
// @Success      200 {object} api.MessageResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /admin/products/{productID} [delete]
func (h *Handler) DeleteProduct(c *gin.Context) {
	if err := h.repo.DeleteProduct(c.Request.Context(), c.Param("productID")); err != nil {
		if errors.Is(err, ErrProductNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to delete product"})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "product deleted"})
}

// @Summary      Create a product option
// @Tags         admin,catalog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        productID path string true "Product ID"
// @Param        request body catalog.CreateOptionRequest true "Option payload"
// @Success      201 {object} catalog.ProductOption
// @Failure      400 {object} api.ErrorResponse
// @Router       /admin/products/{productID}/options [post]
func (h *Handler) CreateOption(c *gin.Context) {
	var req CreateOptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	if req.Price.IsNegative() {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "price cannot be negative"})
		return
	}

	if req.Type != "" && !ValidFulfillmentType(req.Type) {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid fulfillment type"})
		return
	}

	o, err := h.repo.CreateOption(c.Request.Context(), c.Param("productID"), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to create option"})
		return
	}

	c.JSON(http.StatusCreated, o)
}

// @Summary      Update a product option
// @Tags         admin,catalog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        optionID path string true "Option ID"
// @Param        request body catalog.UpdateOptionRequest true "Option payload"
// @Success      200 {object} catalog.ProductOption
// @Failure      404 {object} api.ErrorResponse
// @Router       /admin/options/{optionID} [put]
func (h *Handler) UpdateOption(c *gin.Context) {
	var req UpdateOptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	if req.Price.IsNegative() || !ValidFulfillmentType(req.Type) {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid option payload"})
		return
	}

	o, err := h.repo.UpdateOption(c.Request.Context(), c.Param("optionID"), req)
	if err != nil {
		if errors.Is(err, ErrOptionNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "option not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to update option"})
		return
	}

	c.JSON(http.StatusOK, o)
}

// @Summary      Delete a product option
// @Tags         admin,catalog
// @Produce      json
// @Security     BearerAuth
// @Param        optionID path string true "Option ID"
// @Success      200 {object} api.MessageResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /admin/options/{optionID} [delete]
func (h *Handler) DeleteOption(c *gin.Context) {
	if err := h.repo.DeleteOption(c.Request.Context(), c.Param("optionID")); err != nil {
		if errors.Is(err, ErrOptionNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "option not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to delete option"})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "option deleted"})
}

// @Summary      Add stock items
// @Description  One item per line of the content field. Returns how many items were added.
// @Tags         admin,stock
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        optionID path string true "Option ID"
// @Param        request body catalog.AddStockRequest true "Stock payload"
// @Success      201 {object} api.MessageResponse
// @Failure      400 {object} api.ErrorResponse
// @Router       /admin/options/{optionID}/stock [post]
func (h *Handler) AddStock(c *gin.Context) {
	var req AddStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	var contents []string
	for _, line := range strings.Split(req.Content, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			contents = append(contents, trimmed)
		}
	}
	if len(contents) == 0 {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "no stock items in payload"})
		return
	}

	inserted, err := h.repo.AddStock(c.Request.Context(), c.Param("optionID"), contents)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to add stock"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"added": inserted})
}

// @Summary      List stock items for an option
// @Tags         admin,stock
// @Produce      json
// @Security     BearerAuth
// @Param        optionID path string true "Option ID"
// @Success      200 {array} catalog.StockItem
// @Router       /admin/options/{optionID}/stock [get]
func (h *Handler) ListStock(c *gin.Context) {
	items, err := h.repo.ListStock(c.Request.Context(), c.Param("optionID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to list stock"})
		return
	}

	c.JSON(http.StatusOK, items)
}

// @Summary      Delete an unsold stock item
// @Tags         admin,stock
// @Produce      json
// @Security     BearerAuth
// @Param        itemID path string true "Stock item ID"
// @Success      200 {object} api.MessageResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /admin/stock/{itemID} [delete]
func (h *Handler) DeleteStockItem(c *gin.Context) {
	if err := h.repo.DeleteStockItem(c.Request.Context(), c.Param("itemID")); err != nil {
		if errors.Is(err, ErrStockItemNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "stock item not found"})
			return
		}
		if errors.Is(err, ErrStockItemSold) {
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "stock item is already sold"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to delete stock item"})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "stock item deleted"})
}
