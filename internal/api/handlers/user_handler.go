// server/internal/api/handlers/user_handler.go
package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"spare-parts-api-server/internal/auth"
	"spare-parts-api-server/internal/models"
)

type UserHandler struct {
	DB *mongo.Database
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type CreateUserRequest struct {
	Email         string `json:"email" binding:"required,email"`
	Name          string `json:"name" binding:"required"`
	Password      string `json:"password" binding:"required,min=6"`
	Role          string `json:"role" binding:"required"`
	DepartmentRef string `json:"departmentRef"`
	NotifyReorder bool   `json:"notifyReorder"`
}

type UpdateUserRequest struct {
	Name          string `json:"name"`
	Role          string `json:"role"`
	DepartmentRef string `json:"departmentRef"`
	Status        string `json:"status"`
	NotifyReorder *bool  `json:"notifyReorder"`
}

// Login xác thực email/mật khẩu và trả về JWT.
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	err := h.DB.Collection("users").FindOne(c.Request.Context(), bson.M{"email": req.Email}).Decode(&user)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	if user.Status != "active" {
		c.JSON(http.StatusForbidden, gin.H{"error": "Account is disabled"})
		return
	}

	if !auth.CheckPasswordHash(req.Password, user.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := auth.GenerateJWT(user.Email, user.Name, user.Role)
	if err != nil {
		log.Printf("CRITICAL: Failed to generate JWT for %s: %v", user.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"token":  token,
		"user":   user,
	})
}

// CreateUser tạo tài khoản mới (chỉ admin).
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Role != models.RoleAdmin && req.Role != models.RoleStorekeeper && req.Role != models.RoleViewer {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Role must be one of: admin, storekeeper, viewer"})
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	now := time.Now()
	user := models.User{
		Email:         req.Email,
		Name:          req.Name,
		Password:      hashed,
		Role:          req.Role,
		DepartmentRef: req.DepartmentRef,
		Status:        "active",
		NotifyReorder: req.NotifyReorder,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if _, err := h.DB.Collection("users").InsertOne(c.Request.Context(), user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "message": "User " + req.Email + " created successfully"})
}

// GetAllUsers liệt kê tài khoản (chỉ admin).
func (h *UserHandler) GetAllUsers(c *gin.Context) {
	cursor, err := h.DB.Collection("users").Find(c.Request.Context(), bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query users", "details": err.Error()})
		return
	}

	var users []models.User
	if err := cursor.All(c.Request.Context(), &users); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode users", "details": err.Error()})
		return
	}
	if users == nil {
		users = []models.User{}
	}

	c.JSON(http.StatusOK, users)
}

// UpdateUser cập nhật thông tin tài khoản (chỉ admin).
func (h *UserHandler) UpdateUser(c *gin.Context) {
	email := c.Param("email")

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	set := bson.M{"updatedAt": time.Now()}
	if req.Name != "" {
		set["name"] = req.Name
	}
	if req.Role != "" {
		if req.Role != models.RoleAdmin && req.Role != models.RoleStorekeeper && req.Role != models.RoleViewer {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Role must be one of: admin, storekeeper, viewer"})
			return
		}
		set["role"] = req.Role
	}
	if req.DepartmentRef != "" {
		set["departmentRef"] = req.DepartmentRef
	}
	if req.Status != "" {
		if req.Status != "active" && req.Status != "disabled" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Status must be active or disabled"})
			return
		}
		set["status"] = req.Status
	}
	if req.NotifyReorder != nil {
		set["notifyReorder"] = *req.NotifyReorder
	}

	result, err := h.DB.Collection("users").UpdateOne(c.Request.Context(), bson.M{"email": email}, bson.M{"$set": set})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user", "details": err.Error()})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "User updated successfully"})
}

// ChangePassword cho phép user đổi mật khẩu của chính mình.
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req struct {
		OldPassword string `json:"oldPassword" binding:"required"`
		NewPassword string `json:"newPassword" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email := c.GetString("user_email")

	var user models.User
	if err := h.DB.Collection("users").FindOne(c.Request.Context(), bson.M{"email": email}).Decode(&user); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if !auth.CheckPasswordHash(req.OldPassword, user.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Old password is incorrect"})
		return
	}

	hashed, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	_, err = h.DB.Collection("users").UpdateOne(c.Request.Context(),
		bson.M{"email": email},
		bson.M{"$set": bson.M{"password": hashed, "updatedAt": time.Now()}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update password", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Password changed successfully"})
}

// DeleteUser xoá tài khoản (chỉ admin).
func (h *UserHandler) DeleteUser(c *gin.Context) {
	email := c.Param("email")

	if email == c.GetString("user_email") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot delete your own account"})
		return
	}

	result, err := h.DB.Collection("users").DeleteOne(c.Request.Context(), bson.M{"email": email})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user", "details": err.Error()})
		return
	}
	if result.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "User deleted successfully"})
}
