// server/internal/api/handlers/approval_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"spare-parts-api-server/internal/procurement"
)

type ApprovalHandler struct {
	Gate *procurement.ApprovalGate
}

type ApprovalDecisionRequest struct {
	Note string `json:"note"`
}

// SubmitApproval đưa một linh kiện vào hàng đợi phê duyệt mua.
func (h *ApprovalHandler) SubmitApproval(c *gin.Context) {
	piece, err := h.Gate.Submit(c.Request.Context(), c.Param("ref"), c.GetString("user_email"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "piece": piece})
}

// ApprovePiece duyệt yêu cầu mua đang chờ.
func (h *ApprovalHandler) ApprovePiece(c *gin.Context) {
	// Ghi chú là tuỳ chọn, body rỗng vẫn hợp lệ.
	var req ApprovalDecisionRequest
	_ = c.ShouldBindJSON(&req)

	piece, err := h.Gate.Approve(c.Request.Context(), c.Param("ref"), c.GetString("user_email"), req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "piece": piece})
}

// RefusePiece từ chối yêu cầu mua đang chờ. Bắt buộc có lý do.
func (h *ApprovalHandler) RefusePiece(c *gin.Context) {
	var req ApprovalDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	piece, err := h.Gate.Refuse(c.Request.Context(), c.Param("ref"), c.GetString("user_email"), req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "piece": piece})
}

// ResetApproval đưa linh kiện bị từ chối về trạng thái chờ duyệt.
func (h *ApprovalHandler) ResetApproval(c *gin.Context) {
	piece, err := h.Gate.Reset(c.Request.Context(), c.Param("ref"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "piece": piece})
}
