// server/internal/models/submission.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Các trạng thái của một yêu cầu báo giá gửi cho nhà cung cấp.
const (
	SubmissionSent          = "SENT"
	SubmissionPriceReceived = "PRICE_RECEIVED"
	SubmissionOrdered       = "ORDERED"
	SubmissionCancelled     = "CANCELLED"
)

// SubmissionLine là một dòng linh kiện trong yêu cầu báo giá.
type SubmissionLine struct {
	PieceRef           string  `bson:"pieceRef" json:"pieceRef"`
	PieceName          string  `bson:"pieceName" json:"pieceName"`
	PartNumber         string  `bson:"partNumber,omitempty" json:"partNumber"`
	RequestedQty       int     `bson:"requestedQty" json:"requestedQty"`
	UnitPriceAtRequest float64 `bson:"unitPriceAtRequest" json:"unitPriceAtRequest"`
}

// Submission là document yêu cầu báo giá trong MongoDB.
type Submission struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SubmissionRef   string             `bson:"submissionRef" json:"submissionRef"` // Ví dụ "SUB-1A2B3C4D"
	SupplierRef     string             `bson:"supplierRef,omitempty" json:"supplierRef"`
	RecipientEmails []string           `bson:"recipientEmails" json:"recipientEmails"`
	Subject         string             `bson:"subject,omitempty" json:"subject"`
	Body            string             `bson:"body,omitempty" json:"body"`
	Lines           []SubmissionLine   `bson:"lines" json:"lines"`
	Status          string             `bson:"status" json:"status"` // SENT, PRICE_RECEIVED, ORDERED, CANCELLED
	StatusNote      string             `bson:"statusNote,omitempty" json:"statusNote,omitempty"`
	ReminderDate    *time.Time         `bson:"reminderDate,omitempty" json:"reminderDate,omitempty"`
	AttachmentKey   string             `bson:"attachmentKey,omitempty" json:"attachmentKey,omitempty"`
	AutoCreated     bool               `bson:"autoCreated" json:"autoCreated"`
	CreatedBy       string             `bson:"createdBy" json:"createdBy"`
	SentAt          time.Time          `bson:"sentAt" json:"sentAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// IsTerminal cho biết submission đã kết thúc vòng đời hay chưa.
func (s *Submission) IsTerminal() bool {
	return s.Status == SubmissionOrdered || s.Status == SubmissionCancelled
}

// HasPiece kiểm tra xem submission có chứa dòng cho linh kiện này không.
func (s *Submission) HasPiece(pieceRef string) bool {
	for _, line := range s.Lines {
		if line.PieceRef == pieceRef {
			return true
		}
	}
	return false
}

// PriceQuote là báo giá một dòng linh kiện của một submission.
// Mỗi cặp (submissionRef, pieceRef) chỉ được ghi một lần, ràng buộc bằng
// unique index trong MongoDB.
type PriceQuote struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SubmissionRef string             `bson:"submissionRef" json:"submissionRef"`
	PieceRef      string             `bson:"pieceRef" json:"pieceRef"`
	UnitPrice     float64            `bson:"unitPrice" json:"unitPrice"`
	DeliveryDelay string             `bson:"deliveryDelay,omitempty" json:"deliveryDelay"` // Văn bản tự do, ví dụ "2-3 semaines"
	Comment       string             `bson:"comment,omitempty" json:"comment"`
	RecordedBy    string             `bson:"recordedBy" json:"recordedBy"`
	RecordedAt    time.Time          `bson:"recordedAt" json:"recordedAt"`
}
