// server/internal/api/handlers/ledger_handler.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"spare-parts-api-server/internal/store"
)

type LedgerHandler struct {
	Ledger *store.LedgerStore
}

// GetMovements liệt kê sổ cái nhập xuất, mới nhất trước. Lọc được theo
// loại thao tác (PURCHASE, ORDER, WITHDRAWAL, QUICK_WITHDRAWAL) và giới
// hạn số dòng.
func (h *LedgerHandler) GetMovements(c *gin.Context) {
	limit := int64(200)
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ValidationError", "message": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	entries, err := h.Ledger.List(c.Request.Context(), c.Query("operation"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query movements", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, entries)
}

// GetMovementsByPiece liệt kê lịch sử nhập xuất của một linh kiện.
func (h *LedgerHandler) GetMovementsByPiece(c *gin.Context) {
	entries, err := h.Ledger.ListByPiece(c.Request.Context(), c.Param("ref"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query movements", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, entries)
}
