// server/internal/api/handlers/submission_handler.go
package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"spare-parts-api-server/internal/procurement"
	"spare-parts-api-server/internal/s3"
	"spare-parts-api-server/internal/store"
)

type SubmissionHandler struct {
	Tracker  *procurement.SubmissionTracker
	Store    *store.SubmissionStore
	Uploader *s3.Uploader
}

type CreateSubmissionRequest struct {
	SupplierRef     string   `json:"supplierRef" binding:"required"`
	RecipientEmails []string `json:"recipientEmails" binding:"required"`
	Subject         string   `json:"subject"`
	Body            string   `json:"body"`
	Lines           []struct {
		PieceRef     string `json:"pieceRef" binding:"required"`
		RequestedQty int    `json:"requestedQty" binding:"required"`
	} `json:"lines" binding:"required"`
}

type RecordQuoteRequest struct {
	PieceRef      string  `json:"pieceRef" binding:"required"`
	UnitPrice     float64 `json:"unitPrice"`
	DeliveryDelay string  `json:"deliveryDelay"`
	Comment       string  `json:"comment"`
}

type TransitionRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

type SetReminderRequest struct {
	ReminderDate *time.Time `json:"reminderDate"`
}

// CreateSubmission gửi một yêu cầu báo giá mới cho nhà cung cấp.
func (h *SubmissionHandler) CreateSubmission(c *gin.Context) {
	var req CreateSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := procurement.CreateSubmissionInput{
		SupplierRef:     req.SupplierRef,
		RecipientEmails: req.RecipientEmails,
		Subject:         req.Subject,
		Body:            req.Body,
		CreatedBy:       c.GetString("user_email"),
	}
	for _, line := range req.Lines {
		input.Lines = append(input.Lines, procurement.CreateSubmissionLine{
			PieceRef:     line.PieceRef,
			RequestedQty: line.RequestedQty,
		})
	}

	sub, err := h.Tracker.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "submission": sub})
}

// GetAllSubmissions liệt kê submission, lọc theo trạng thái và nhà cung cấp.
func (h *SubmissionHandler) GetAllSubmissions(c *gin.Context) {
	subs, err := h.Store.List(c.Request.Context(), c.Query("status"), c.Query("supplierRef"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query submissions", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, subs)
}

// GetSubmissionByRef trả về một submission kèm các báo giá đã ghi nhận.
func (h *SubmissionHandler) GetSubmissionByRef(c *gin.Context) {
	ref := c.Param("ref")

	sub, err := h.Store.FindByRef(c.Request.Context(), ref)
	if err != nil {
		respondError(c, err)
		return
	}

	quotes, err := h.Store.ListQuotes(c.Request.Context(), ref)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query quotes", "details": err.Error()})
		return
	}

	response := gin.H{"submission": sub, "quotes": quotes}
	if sub.AttachmentKey != "" && h.Uploader != nil {
		response["attachmentUrl"] = h.Uploader.ObjectURL(sub.AttachmentKey)
	}

	c.JSON(http.StatusOK, response)
}

// RecordQuote ghi nhận báo giá của nhà cung cấp cho một dòng linh kiện.
// Mỗi cặp submission + linh kiện chỉ ghi được một lần.
func (h *SubmissionHandler) RecordQuote(c *gin.Context) {
	var req RecordQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quote, err := h.Tracker.RecordQuote(c.Request.Context(), c.Param("ref"),
		req.PieceRef, req.UnitPrice, req.DeliveryDelay, req.Comment, c.GetString("user_email"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "quote": quote})
}

// UpdateSubmissionStatus chuyển trạng thái một submission theo đồ thị cho phép.
func (h *SubmissionHandler) UpdateSubmissionStatus(c *gin.Context) {
	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Tracker.Transition(c.Request.Context(), c.Param("ref"), req.Status, req.Note); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Submission status updated successfully"})
}

// SetReminder đặt hoặc xoá ngày nhắc theo dõi của một submission.
func (h *SubmissionHandler) SetReminder(c *gin.Context) {
	var req SetReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Tracker.SetReminder(c.Request.Context(), c.Param("ref"), req.ReminderDate); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Reminder updated successfully"})
}

// UploadAttachment tải chứng từ (PDF báo giá) lên S3 rồi gắn vào submission.
func (h *SubmissionHandler) UploadAttachment(c *gin.Context) {
	ref := c.Param("ref")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is required", "details": err.Error()})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open uploaded file", "details": err.Error()})
		return
	}
	defer file.Close()

	objectKey := fmt.Sprintf("submissions/%s/%s-%s", ref, uuid.New().String()[:8], fileHeader.Filename)
	url, err := h.Uploader.UploadFile(c.Request.Context(), file, objectKey, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload file", "details": err.Error()})
		return
	}

	if err := h.Tracker.Attach(c.Request.Context(), ref, objectKey); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "attachmentKey": objectKey, "attachmentUrl": url})
}

// GetAttachmentURL trả về URL tải chứng từ của một submission.
func (h *SubmissionHandler) GetAttachmentURL(c *gin.Context) {
	sub, err := h.Store.FindByRef(c.Request.Context(), c.Param("ref"))
	if err != nil {
		respondError(c, err)
		return
	}
	if sub.AttachmentKey == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "NotFound", "message": "submission has no attachment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"attachmentUrl": h.Uploader.ObjectURL(sub.AttachmentKey)})
}

// DeleteSubmission xoá một submission đã kết thúc.
func (h *SubmissionHandler) DeleteSubmission(c *gin.Context) {
	if err := h.Tracker.Delete(c.Request.Context(), c.Param("ref")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Submission deleted successfully"})
}
