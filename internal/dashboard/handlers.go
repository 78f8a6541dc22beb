package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pos-backend/internal/auth"
)

// Handler contains the HTTP handler for the dashboard.
type Handler struct {
	useCase *DashboardUseCase
	logger  *zap.Logger
}

// NewHandler creates a new dashboard Handler.
func NewHandler(useCase *DashboardUseCase, logger *zap.Logger) *Handler {
	return &Handler{useCase: useCase, logger: logger}
}

// Summary returns the caller's dashboard rollup.
func (h *Handler) Summary(c *gin.Context) {
	summary, err := h.useCase.Summary(c.Request.Context(), auth.CurrentUserID(c))
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable"})
		return
	}
	c.JSON(http.StatusOK, summary)
}
