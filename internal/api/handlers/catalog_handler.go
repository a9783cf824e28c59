// server/internal/api/handlers/catalog_handler.go
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
)

// CatalogHandler quản lý các danh mục phụ: nhà cung cấp, hãng sản xuất,
// bộ phận.
type CatalogHandler struct {
	DB *mongo.Database
}

type CreateSupplierRequest struct {
	Name    string   `json:"name" binding:"required"`
	Emails  []string `json:"emails"`
	Phone   string   `json:"phone"`
	Website string   `json:"website"`
	Comment string   `json:"comment"`
}

type UpdateSupplierRequest struct {
	Name    *string   `json:"name"`
	Emails  *[]string `json:"emails"`
	Phone   *string   `json:"phone"`
	Website *string   `json:"website"`
	Comment *string   `json:"comment"`
}

type CreateNamedRefRequest struct {
	Name    string `json:"name" binding:"required"`
	Website string `json:"website"`
}

// CreateSupplier tạo nhà cung cấp mới.
func (h *CatalogHandler) CreateSupplier(c *gin.Context) {
	var req CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	supplier := models.Supplier{
		Ref:       fmt.Sprintf("SUP-%s", uuid.New().String()[:8]),
		Name:      req.Name,
		Emails:    req.Emails,
		Phone:     req.Phone,
		Website:   req.Website,
		Comment:   req.Comment,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := h.DB.Collection("suppliers").InsertOne(c.Request.Context(), supplier); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create supplier", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "supplier": supplier})
}

// GetAllSuppliers liệt kê nhà cung cấp.
func (h *CatalogHandler) GetAllSuppliers(c *gin.Context) {
	cursor, err := h.DB.Collection("suppliers").Find(c.Request.Context(), bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query suppliers", "details": err.Error()})
		return
	}

	var suppliers []models.Supplier
	if err := cursor.All(c.Request.Context(), &suppliers); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode suppliers", "details": err.Error()})
		return
	}
	if suppliers == nil {
		suppliers = []models.Supplier{}
	}

	c.JSON(http.StatusOK, suppliers)
}

// UpdateSupplier cập nhật thông tin nhà cung cấp.
func (h *CatalogHandler) UpdateSupplier(c *gin.Context) {
	ref := c.Param("ref")

	var req UpdateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	set := bson.M{"updatedAt": time.Now()}
	if req.Name != nil {
		set["name"] = *req.Name
	}
	if req.Emails != nil {
		set["emails"] = *req.Emails
	}
	if req.Phone != nil {
		set["phone"] = *req.Phone
	}
	if req.Website != nil {
		set["website"] = *req.Website
	}
	if req.Comment != nil {
		set["comment"] = *req.Comment
	}

	result, err := h.DB.Collection("suppliers").UpdateOne(c.Request.Context(), bson.M{"ref": ref}, bson.M{"$set": set})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update supplier", "details": err.Error()})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "NotFound", "message": "supplier " + ref + " not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Supplier updated successfully"})
}

// DeleteSupplier xoá nhà cung cấp.
func (h *CatalogHandler) DeleteSupplier(c *gin.Context) {
	result, err := h.DB.Collection("suppliers").DeleteOne(c.Request.Context(), bson.M{"ref": c.Param("ref")})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete supplier", "details": err.Error()})
		return
	}
	if result.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "NotFound", "message": "supplier not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Supplier deleted successfully"})
}

// CreateManufacturer tạo hãng sản xuất mới.
func (h *CatalogHandler) CreateManufacturer(c *gin.Context) {
	var req CreateNamedRefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	manufacturer := models.Manufacturer{
		Ref:       fmt.Sprintf("MFR-%s", uuid.New().String()[:8]),
		Name:      req.Name,
		Website:   req.Website,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := h.DB.Collection("manufacturers").InsertOne(c.Request.Context(), manufacturer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create manufacturer", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "manufacturer": manufacturer})
}

// GetAllManufacturers liệt kê hãng sản xuất.
func (h *CatalogHandler) GetAllManufacturers(c *gin.Context) {
	cursor, err := h.DB.Collection("manufacturers").Find(c.Request.Context(), bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query manufacturers", "details": err.Error()})
		return
	}

	var manufacturers []models.Manufacturer
	if err := cursor.All(c.Request.Context(), &manufacturers); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode manufacturers", "details": err.Error()})
		return
	}
	if manufacturers == nil {
		manufacturers = []models.Manufacturer{}
	}

	c.JSON(http.StatusOK, manufacturers)
}

// CreateDepartment tạo bộ phận mới.
func (h *CatalogHandler) CreateDepartment(c *gin.Context) {
	var req CreateNamedRefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	department := models.Department{
		Ref:       fmt.Sprintf("DEP-%s", uuid.New().String()[:8]),
		Name:      req.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := h.DB.Collection("departments").InsertOne(c.Request.Context(), department); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create department", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "department": department})
}

// GetAllDepartments liệt kê bộ phận.
func (h *CatalogHandler) GetAllDepartments(c *gin.Context) {
	cursor, err := h.DB.Collection("departments").Find(c.Request.Context(), bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query departments", "details": err.Error()})
		return
	}

	var departments []models.Department
	if err := cursor.All(c.Request.Context(), &departments); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode departments", "details": err.Error()})
		return
	}
	if departments == nil {
		departments = []models.Department{}
	}

	c.JSON(http.StatusOK, departments)
}
