// server/internal/api/handlers/group_handler.go
package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"spare-parts-api-server/internal/models"
	"spare-parts-api-server/internal/procurement"
)

type GroupHandler struct {
	DB     *mongo.Database
	Engine *procurement.KitWithdrawalEngine
}

type CreateGroupRequest struct {
	Category    string              `json:"category" binding:"required"`
	Name        string              `json:"name" binding:"required"`
	Description string              `json:"description"`
	Pieces      []models.GroupPiece `json:"pieces"`
}

type UpdateGroupRequest struct {
	Category    *string              `json:"category"`
	Name        *string              `json:"name"`
	Description *string              `json:"description"`
	Pieces      *[]models.GroupPiece `json:"pieces"`
}

type WithdrawKitRequest struct {
	Quantities map[string]int `json:"quantities"`
	Comment    string         `json:"comment"`
}

// CreateGroup tạo một bộ linh kiện mới.
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	for _, gp := range req.Pieces {
		if gp.RequiredQty < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "InvalidQuantity", "message": fmt.Sprintf("requiredQty for piece %s must not be negative", gp.PieceRef)})
			return
		}
	}

	now := time.Now()
	group := models.Group{
		GroupRef:    fmt.Sprintf("GRP-%s", uuid.New().String()[:8]),
		Category:    req.Category,
		Name:        req.Name,
		Description: req.Description,
		Pieces:      req.Pieces,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if group.Pieces == nil {
		group.Pieces = []models.GroupPiece{}
	}

	if _, err := h.DB.Collection("groups").InsertOne(c.Request.Context(), group); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create group", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "group": group})
}

// GetAllGroups liệt kê các bộ linh kiện, lọc theo nhóm thiết bị.
func (h *GroupHandler) GetAllGroups(c *gin.Context) {
	filter := bson.M{}
	if category := c.Query("category"); category != "" {
		filter["category"] = category
	}

	cursor, err := h.DB.Collection("groups").Find(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query groups", "details": err.Error()})
		return
	}

	var groups []models.Group
	if err := cursor.All(c.Request.Context(), &groups); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode groups", "details": err.Error()})
		return
	}
	if groups == nil {
		groups = []models.Group{}
	}

	c.JSON(http.StatusOK, groups)
}

// GetGroupByRef trả về một bộ linh kiện.
func (h *GroupHandler) GetGroupByRef(c *gin.Context) {
	group, err := h.findGroup(c, c.Param("ref"))
	if err != nil {
		return
	}
	c.JSON(http.StatusOK, group)
}

// UpdateGroup cập nhật thông tin hoặc danh sách linh kiện của một bộ.
func (h *GroupHandler) UpdateGroup(c *gin.Context) {
	ref := c.Param("ref")

	var req UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	set := bson.M{"updatedAt": time.Now()}
	if req.Category != nil {
		set["category"] = *req.Category
	}
	if req.Name != nil {
		set["name"] = *req.Name
	}
	if req.Description != nil {
		set["description"] = *req.Description
	}
	if req.Pieces != nil {
		for _, gp := range *req.Pieces {
			if gp.RequiredQty < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "InvalidQuantity", "message": fmt.Sprintf("requiredQty for piece %s must not be negative", gp.PieceRef)})
				return
			}
		}
		set["pieces"] = *req.Pieces
	}

	result, err := h.DB.Collection("groups").UpdateOne(c.Request.Context(), bson.M{"groupRef": ref}, bson.M{"$set": set})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update group", "details": err.Error()})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "NotFound", "message": "group " + ref + " not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Group updated successfully"})
}

// DeleteGroup xoá một bộ linh kiện.
func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	result, err := h.DB.Collection("groups").DeleteOne(c.Request.Context(), bson.M{"groupRef": c.Param("ref")})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete group", "details": err.Error()})
		return
	}
	if result.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "NotFound", "message": "group not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Group deleted successfully"})
}

// WithdrawKit rút cả bộ linh kiện khỏi kho cho một lần bảo trì.
// Hoặc tất cả các dòng được trừ, hoặc không dòng nào.
func (h *GroupHandler) WithdrawKit(c *gin.Context) {
	var req WithdrawKitRequest
	_ = c.ShouldBindJSON(&req) // body rỗng thì dùng số lượng mặc định của bộ

	group, err := h.findGroup(c, c.Param("ref"))
	if err != nil {
		return
	}

	lines, err := h.Engine.Withdraw(c.Request.Context(), group, req.Quantities, c.GetString("user_email"), req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "withdrawn": lines})
}

// findGroup đọc một group theo ref, tự trả lỗi HTTP khi không tìm thấy.
func (h *GroupHandler) findGroup(c *gin.Context, ref string) (*models.Group, error) {
	var group models.Group
	err := h.DB.Collection("groups").FindOne(c.Request.Context(), bson.M{"groupRef": ref}).Decode(&group)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "NotFound", "message": fmt.Sprintf("group %s not found", ref)})
		return nil, err
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query group", "details": err.Error()})
		return nil, err
	}
	return &group, nil
}
