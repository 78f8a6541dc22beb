package sales

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pos-backend/internal/auth"
	"pos-backend/internal/notify"
)

// CreateSaleRequest is the request body for committing a sale.
type CreateSaleRequest struct {
	Items []SaleLine `json:"items" binding:"required,min=1,dive"`
}

// Handler contains the HTTP handlers for sales.
type Handler struct {
	processor *SaleProcessor
	notifier  *notify.Notifier
	logger    *zap.Logger
}

// NewHandler creates a new sales Handler. notifier may be nil when no
// webhook is configured.
func NewHandler(processor *SaleProcessor, notifier *notify.Notifier, logger *zap.Logger) *Handler {
	return &Handler{processor: processor, notifier: notifier, logger: logger}
}

// CreateSale commits a cart as one transaction.
func (h *Handler) CreateSale(c *gin.Context) {
	var req CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	txn, err := h.processor.ProcessSale(c.Request.Context(), SaleRequest{
		OwnerID: auth.CurrentUserID(c),
		Items:   req.Items,
	})
	if err != nil {
		h.rejectSale(c, err)
		return
	}

	if h.notifier != nil {
		h.notifier.SaleCommitted(c.Request.Context(), notify.SaleEvent{
			TransactionID: txn.ID,
			OwnerID:       txn.OwnerID,
			TotalAmount:   txn.TotalAmount.String(),
			LineCount:     len(txn.Items),
		})
	}

	c.JSON(http.StatusCreated, txn)
}

// GetSale returns one committed transaction with its line items.
func (h *Handler) GetSale(c *gin.Context) {
	txn, err := h.processor.GetSale(c.Request.Context(), c.Param("id"), auth.CurrentUserID(c))
	if err != nil {
		if errors.Is(err, ErrTransactionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("get sale failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable"})
		return
	}
	c.JSON(http.StatusOK, txn)
}

// ListSales returns the owner's committed transactions, newest first.
func (h *Handler) ListSales(c *gin.Context) {
	txns, err := h.processor.ListSales(c.Request.Context(), auth.CurrentUserID(c))
	if err != nil {
		h.logger.Error("list sales failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable"})
		return
	}
	if txns == nil {
		txns = []Transaction{}
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txns})
}

// rejectSale maps the sale error taxonomy onto HTTP statuses:
// validation 400, unknown product 404, insufficient stock 409, storage
// fault 503.
func (h *Handler) rejectSale(c *gin.Context, err error) {
	var notFound *ProductNotFoundError
	var short *InsufficientStockError
	var storage *StorageError

	switch {
	case errors.Is(err, ErrEmptyCart) || errors.Is(err, ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "product_id": notFound.ProductID})
	case errors.As(err, &short):
		c.JSON(http.StatusConflict, gin.H{
			"error":      err.Error(),
			"product_id": short.ProductID,
			"requested":  short.Requested,
			"available":  short.Available,
		})
	case errors.As(err, &storage):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sale rolled back, storage unavailable"})
	default:
		h.logger.Error("unclassified sale failure", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process sale"})
	}
}
