// server/internal/api/handlers/order_handler.go
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"spare-parts-api-server/internal/procurement"
	"spare-parts-api-server/internal/socket"
)

type OrderHandler struct {
	Saga      *procurement.OrderPlacementSaga
	Reception *procurement.Reception
	Hub       *socket.Hub
}

type PlaceOrderRequest struct {
	Qty          int        `json:"qty" binding:"required"`
	UnitPrice    float64    `json:"unitPrice"`
	OrderDate    *time.Time `json:"orderDate"`
	Note         string     `json:"note"`
	SubmissionNo string     `json:"submissionNo"`
	DocumentKey  string     `json:"documentKey"`
}

type ReceivePartialRequest struct {
	Qty int `json:"qty" binding:"required"`
}

// PlaceOrder đặt hàng một linh kiện. Các bước phụ thất bại được trả về
// trong mảng warnings thay vì làm hỏng request.
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := procurement.PlaceOrderInput{
		PieceRef:     c.Param("ref"),
		Qty:          req.Qty,
		UnitPrice:    req.UnitPrice,
		Note:         req.Note,
		SubmissionNo: req.SubmissionNo,
		DocumentKey:  req.DocumentKey,
		Actor:        c.GetString("user_email"),
	}
	if req.OrderDate != nil {
		input.OrderDate = *req.OrderDate
	}

	result, err := h.Saga.PlaceOrder(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	h.broadcast("order_placed", result.Piece.PieceRef, result.Piece.OnOrderQty)

	c.JSON(http.StatusOK, gin.H{
		"status":        "success",
		"piece":         result.Piece,
		"submissionRef": result.SubmissionRef,
		"warnings":      result.Warnings,
	})
}

// ReceiveTotal nhận toàn bộ số lượng còn thiếu của đơn đang mở.
func (h *OrderHandler) ReceiveTotal(c *gin.Context) {
	result, err := h.Reception.ReceiveTotal(c.Request.Context(), c.Param("ref"), c.GetString("user_email"))
	if err != nil {
		respondError(c, err)
		return
	}

	h.broadcast("order_received", result.Piece.PieceRef, result.ReceivedQty)

	c.JSON(http.StatusOK, gin.H{
		"status":      "success",
		"piece":       result.Piece,
		"receivedQty": result.ReceivedQty,
		"warnings":    result.Warnings,
	})
}

// ReceivePartial nhận một phần số lượng của đơn đang mở.
func (h *OrderHandler) ReceivePartial(c *gin.Context) {
	var req ReceivePartialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.Reception.ReceivePartial(c.Request.Context(), c.Param("ref"), req.Qty, c.GetString("user_email"))
	if err != nil {
		respondError(c, err)
		return
	}

	h.broadcast("order_received", result.Piece.PieceRef, result.ReceivedQty)

	c.JSON(http.StatusOK, gin.H{
		"status":      "success",
		"piece":       result.Piece,
		"receivedQty": result.ReceivedQty,
		"warnings":    result.Warnings,
	})
}

// broadcast đẩy sự kiện đặt/nhận hàng cho các client websocket.
func (h *OrderHandler) broadcast(event, pieceRef string, qty int) {
	if h.Hub == nil {
		return
	}
	notification := map[string]interface{}{
		"event":    event,
		"pieceRef": pieceRef,
		"qty":      qty,
	}
	notificationJSON, _ := json.Marshal(notification)
	h.Hub.Broadcast(notificationJSON)
}
