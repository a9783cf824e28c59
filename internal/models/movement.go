// server/internal/models/movement.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Các loại thao tác trong sổ cái chuyển động kho.
const (
	OpPurchase        = "PURCHASE"
	OpOrder           = "ORDER"
	OpWithdrawal      = "WITHDRAWAL"
	OpQuickWithdrawal = "QUICK_WITHDRAWAL"
)

// MovementEntry là một dòng bất biến trong sổ cái chuyển động kho.
// Sổ cái chỉ append; ngoại lệ duy nhất là việc đóng một dòng ORDER đang mở
// khi nhận đủ hàng (ghi ReceivedAt và LeadTimeDays để phục vụ báo cáo).
type MovementEntry struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Seq          int64              `bson:"seq" json:"seq"`
	Operation    string             `bson:"operation" json:"operation"` // PURCHASE, ORDER, WITHDRAWAL, QUICK_WITHDRAWAL
	PieceRef     string             `bson:"pieceRef" json:"pieceRef"`
	PieceName    string             `bson:"pieceName" json:"pieceName"`
	PartNumber   string             `bson:"partNumber,omitempty" json:"partNumber"`
	Quantity     int                `bson:"quantity" json:"quantity"` // Dương khi nhập, âm khi xuất
	Actor        string             `bson:"actor" json:"actor"`
	Comment      string             `bson:"comment,omitempty" json:"comment"`
	OrderedAt    *time.Time         `bson:"orderedAt,omitempty" json:"orderedAt,omitempty"`
	ReceivedAt   *time.Time         `bson:"receivedAt,omitempty" json:"receivedAt,omitempty"`
	LeadTimeDays *int               `bson:"leadTimeDays,omitempty" json:"leadTimeDays,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}
