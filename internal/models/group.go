// server/internal/models/group.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GroupPiece là một linh kiện thuộc bộ (kit) với số lượng cần cho một lần rút.
type GroupPiece struct {
	PieceRef    string `bson:"pieceRef" json:"pieceRef"`
	RequiredQty int    `bson:"requiredQty" json:"requiredQty"`
	Position    int    `bson:"position" json:"position"` // Thứ tự hiển thị trong bộ
}

// Group là một bộ linh kiện (kit) dùng cho bảo trì một thiết bị.
type Group struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GroupRef    string             `bson:"groupRef" json:"groupRef"` // Ví dụ "GRP-1a2b3c4d"
	Category    string             `bson:"category" json:"category"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description"`
	Pieces      []GroupPiece       `bson:"pieces" json:"pieces"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
