// server/internal/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Các vai trò người dùng.
const (
	RoleAdmin       = "admin"
	RoleStorekeeper = "storekeeper"
	RoleViewer      = "viewer"
)

// User struct matches the document in MongoDB
type User struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email         string             `bson:"email" json:"email"`
	Name          string             `bson:"name" json:"name"`
	Password      string             `bson:"password" json:"-"`
	Role          string             `bson:"role" json:"role"` // admin, storekeeper, viewer
	DepartmentRef string             `bson:"departmentRef,omitempty" json:"departmentRef"`
	Status        string             `bson:"status" json:"status"` // active, disabled
	NotifyReorder bool               `bson:"notifyReorder" json:"notifyReorder"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
