package catalog

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pos-backend/internal/auth"
)

// ProductRequest is the body for creating or updating a product.
type ProductRequest struct {
	Name          string `json:"name" binding:"required"`
	UnitPrice     string `json:"unit_price" binding:"required"`
	StockQuantity int    `json:"stock_quantity" binding:"gte=0"`
}

// Handler contains the HTTP handlers for the product catalog.
type Handler struct {
	useCase *CatalogUseCase
	logger  *zap.Logger
}

// NewHandler creates a new catalog Handler.
func NewHandler(useCase *CatalogUseCase, logger *zap.Logger) *Handler {
	return &Handler{useCase: useCase, logger: logger}
}

func (h *Handler) parseInput(c *gin.Context) (ProductInput, bool) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return ProductInput{}, false
	}

	price, err := decimal.NewFromString(req.UnitPrice)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unit_price must be a decimal string"})
		return ProductInput{}, false
	}

	return ProductInput{Name: req.Name, UnitPrice: price, StockQuantity: req.StockQuantity}, true
}

// CreateProduct adds a product to the caller's catalog.
func (h *Handler) CreateProduct(c *gin.Context) {
	in, ok := h.parseInput(c)
	if !ok {
		return
	}

	product, err := h.useCase.CreateProduct(c.Request.Context(), auth.CurrentUserID(c), in)
	if err != nil {
		h.reject(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// GetProduct returns one product.
func (h *Handler) GetProduct(c *gin.Context) {
	product, err := h.useCase.GetProduct(c.Request.Context(), c.Param("id"), auth.CurrentUserID(c))
	if err != nil {
		h.reject(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// ListProducts returns the caller's products, optionally filtered by name.
func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.useCase.ListProducts(c.Request.Context(), auth.CurrentUserID(c), c.Query("name"))
	if err != nil {
		h.reject(c, err)
		return
	}
	if products == nil {
		products = []Product{}
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// UpdateProduct replaces the editable fields of a product.
func (h *Handler) UpdateProduct(c *gin.Context) {
	in, ok := h.parseInput(c)
	if !ok {
		return
	}

	product, err := h.useCase.UpdateProduct(c.Request.Context(), c.Param("id"), auth.CurrentUserID(c), in)
	if err != nil {
		h.reject(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// DeleteProduct removes a product.
func (h *Handler) DeleteProduct(c *gin.Context) {
	err := h.useCase.DeleteProduct(c.Request.Context(), c.Param("id"), auth.CurrentUserID(c))
	if err != nil {
		h.reject(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) reject(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrEmptyName) || errors.Is(err, ErrInvalidPrice) || errors.Is(err, ErrInvalidStock):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error("catalog request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "catalog operation failed"})
	}
}
