// server/internal/models/piece.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Các trạng thái phê duyệt của một linh kiện.
const (
	ApprovalPending  = "PENDING"
	ApprovalApproved = "APPROVED"
	ApprovalRefused  = "REFUSED"
)

// Piece là document linh kiện trong MongoDB.
type Piece struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PieceRef           string             `bson:"pieceRef" json:"pieceRef"` // Mã duy nhất, ví dụ "PC-1a2b3c4d"
	Name               string             `bson:"name" json:"name"`
	Description        string             `bson:"description,omitempty" json:"description"`
	PartNumber         string             `bson:"partNumber,omitempty" json:"partNumber"`
	SupplierPartNumber string             `bson:"supplierPartNumber,omitempty" json:"supplierPartNumber"`
	SupplierRef        string             `bson:"supplierRef,omitempty" json:"supplierRef"`
	AltSupplierRef     string             `bson:"altSupplierRef,omitempty" json:"altSupplierRef"`
	ManufacturerRef    string             `bson:"manufacturerRef,omitempty" json:"manufacturerRef"`
	StorageLocation    string             `bson:"storageLocation,omitempty" json:"storageLocation"`

	StockQty  int     `bson:"stockQty" json:"stockQty"`
	MinQty    int     `bson:"minQty" json:"minQty"`
	MaxQty    int     `bson:"maxQty" json:"maxQty"`
	UnitPrice float64 `bson:"unitPrice" json:"unitPrice"`

	// Các trường theo dõi đơn hàng đang mở.
	// OutstandingQty luôn bằng OnOrderQty - ReceivedQty và không bao giờ âm.
	OnOrderQty     int        `bson:"onOrderQty" json:"onOrderQty"`
	ReceivedQty    int        `bson:"receivedQty" json:"receivedQty"`
	OutstandingQty int        `bson:"outstandingQty" json:"outstandingQty"`
	OrderDate      *time.Time `bson:"orderDate,omitempty" json:"orderDate,omitempty"`
	OrderNote      string     `bson:"orderNote,omitempty" json:"orderNote,omitempty"`
	SubmissionNo   string     `bson:"submissionNo,omitempty" json:"submissionNo,omitempty"`

	Discontinued bool `bson:"discontinued" json:"discontinued"`

	// Phê duyệt mua hàng.
	ApprovalStatus      string `bson:"approvalStatus" json:"approvalStatus"` // PENDING, APPROVED, REFUSED
	ApprovalNote        string `bson:"approvalNote,omitempty" json:"approvalNote,omitempty"`
	ApprovalActor       string `bson:"approvalActor,omitempty" json:"approvalActor,omitempty"`
	ApprovalRequestedBy string `bson:"approvalRequestedBy,omitempty" json:"approvalRequestedBy,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
