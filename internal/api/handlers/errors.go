// server/internal/api/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"spare-parts-api-server/internal/inventory"
)

// respondError ánh xạ lỗi nghiệp vụ sang mã HTTP và body thống nhất
// {"error": <loại lỗi>, "message": <chi tiết>}.
func respondError(c *gin.Context, err error) {
	var insufficient *inventory.InsufficientStockError
	if errors.As(err, &insufficient) {
		c.JSON(http.StatusConflict, gin.H{
			"error":   "InsufficientStock",
			"message": err.Error(),
			"pieces":  insufficient.PieceRefs,
		})
		return
	}

	switch {
	case errors.Is(err, inventory.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "ValidationError", "message": err.Error()})
	case errors.Is(err, inventory.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"error": "InvalidQuantity", "message": err.Error()})
	case errors.Is(err, inventory.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "NotFound", "message": err.Error()})
	case errors.Is(err, inventory.ErrQuoteAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "QuoteAlreadyExists", "message": err.Error()})
	case errors.Is(err, inventory.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "InvalidTransition", "message": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal", "message": err.Error()})
	}
}
