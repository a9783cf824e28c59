// server/internal/models/supplier.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Supplier là nhà cung cấp nhận các yêu cầu báo giá.
type Supplier struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Ref       string             `bson:"ref" json:"ref"` // Ví dụ "SUP-1a2b3c4d"
	Name      string             `bson:"name" json:"name"`
	Emails    []string           `bson:"emails,omitempty" json:"emails"`
	Phone     string             `bson:"phone,omitempty" json:"phone"`
	Website   string             `bson:"website,omitempty" json:"website"`
	Comment   string             `bson:"comment,omitempty" json:"comment"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Manufacturer là hãng sản xuất linh kiện.
type Manufacturer struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Ref       string             `bson:"ref" json:"ref"`
	Name      string             `bson:"name" json:"name"`
	Website   string             `bson:"website,omitempty" json:"website"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Department là bộ phận sử dụng linh kiện, dùng để gắn nhãn khi rút kho.
type Department struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Ref       string             `bson:"ref" json:"ref"`
	Name      string             `bson:"name" json:"name"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
