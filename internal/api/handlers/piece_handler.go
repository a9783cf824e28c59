// server/internal/api/handlers/piece_handler.go
package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"spare-parts-api-server/internal/inventory"
	"spare-parts-api-server/internal/models"
	"spare-parts-api-server/internal/procurement"
	"spare-parts-api-server/internal/store"
)

type PieceHandler struct {
	DB     *mongo.Database
	Pieces *store.PieceStore
	Engine *procurement.KitWithdrawalEngine
}

type CreatePieceRequest struct {
	Name               string  `json:"name" binding:"required"`
	Description        string  `json:"description"`
	PartNumber         string  `json:"partNumber"`
	SupplierPartNumber string  `json:"supplierPartNumber"`
	SupplierRef        string  `json:"supplierRef"`
	AltSupplierRef     string  `json:"altSupplierRef"`
	ManufacturerRef    string  `json:"manufacturerRef"`
	StorageLocation    string  `json:"storageLocation"`
	StockQty           int     `json:"stockQty"`
	MinQty             int     `json:"minQty"`
	MaxQty             int     `json:"maxQty"`
	UnitPrice          float64 `json:"unitPrice"`
}

type UpdatePieceRequest struct {
	Name               *string  `json:"name"`
	Description        *string  `json:"description"`
	PartNumber         *string  `json:"partNumber"`
	SupplierPartNumber *string  `json:"supplierPartNumber"`
	SupplierRef        *string  `json:"supplierRef"`
	AltSupplierRef     *string  `json:"altSupplierRef"`
	ManufacturerRef    *string  `json:"manufacturerRef"`
	StorageLocation    *string  `json:"storageLocation"`
	StockQty           *int     `json:"stockQty"`
	MinQty             *int     `json:"minQty"`
	MaxQty             *int     `json:"maxQty"`
	UnitPrice          *float64 `json:"unitPrice"`
	Discontinued       *bool    `json:"discontinued"`
}

// CreatePiece tạo linh kiện mới trong danh mục.
func (h *PieceHandler) CreatePiece(c *gin.Context) {
	var req CreatePieceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.StockQty < 0 || req.MinQty < 0 || req.MaxQty < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "InvalidQuantity", "message": "quantities must not be negative"})
		return
	}

	now := time.Now()
	piece := models.Piece{
		PieceRef:           fmt.Sprintf("PC-%s", uuid.New().String()[:8]),
		Name:               req.Name,
		Description:        req.Description,
		PartNumber:         req.PartNumber,
		SupplierPartNumber: req.SupplierPartNumber,
		SupplierRef:        req.SupplierRef,
		AltSupplierRef:     req.AltSupplierRef,
		ManufacturerRef:    req.ManufacturerRef,
		StorageLocation:    req.StorageLocation,
		StockQty:           req.StockQty,
		MinQty:             req.MinQty,
		MaxQty:             req.MaxQty,
		UnitPrice:          req.UnitPrice,
		ApprovalStatus:     models.ApprovalPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if _, err := h.DB.Collection("pieces").InsertOne(c.Request.Context(), piece); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create piece", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "piece": piece})
}

// GetAllPieces liệt kê linh kiện, lọc theo từ khoá và trạng thái tồn kho.
func (h *PieceHandler) GetAllPieces(c *gin.Context) {
	filter := bson.M{}

	if search := c.Query("search"); search != "" {
		regex := bson.M{"$regex": search, "$options": "i"}
		filter["$or"] = []bson.M{
			{"name": regex},
			{"partNumber": regex},
			{"pieceRef": regex},
			{"supplierPartNumber": regex},
		}
	}
	if c.Query("discontinued") == "false" {
		filter["discontinued"] = false
	}
	if supplierRef := c.Query("supplierRef"); supplierRef != "" {
		filter["supplierRef"] = supplierRef
	}

	cursor, err := h.DB.Collection("pieces").Find(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query pieces", "details": err.Error()})
		return
	}

	var pieces []models.Piece
	if err := cursor.All(c.Request.Context(), &pieces); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode pieces", "details": err.Error()})
		return
	}
	if pieces == nil {
		pieces = []models.Piece{}
	}

	c.JSON(http.StatusOK, pieces)
}

// GetPieceByRef trả về một linh kiện kèm trạng thái tồn kho tính toán.
func (h *PieceHandler) GetPieceByRef(c *gin.Context) {
	piece, err := h.Pieces.FindByRef(c.Request.Context(), c.Param("ref"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"piece":       piece,
		"stockStatus": inventory.Status(piece.StockQty, piece.MinQty),
		"qtyToOrder":  inventory.QtyToOrder(piece.StockQty, piece.MinQty),
	})
}

// UpdatePiece cập nhật các trường danh mục của một linh kiện.
func (h *PieceHandler) UpdatePiece(c *gin.Context) {
	ref := c.Param("ref")

	var req UpdatePieceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	set := bson.M{"updatedAt": time.Now()}
	setString := func(key string, v *string) {
		if v != nil {
			set[key] = *v
		}
	}
	setString("name", req.Name)
	setString("description", req.Description)
	setString("partNumber", req.PartNumber)
	setString("supplierPartNumber", req.SupplierPartNumber)
	setString("supplierRef", req.SupplierRef)
	setString("altSupplierRef", req.AltSupplierRef)
	setString("manufacturerRef", req.ManufacturerRef)
	setString("storageLocation", req.StorageLocation)
	if req.StockQty != nil {
		if *req.StockQty < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "InvalidQuantity", "message": "stockQty must not be negative"})
			return
		}
		set["stockQty"] = *req.StockQty
	}
	if req.MinQty != nil {
		set["minQty"] = *req.MinQty
	}
	if req.MaxQty != nil {
		set["maxQty"] = *req.MaxQty
	}
	if req.UnitPrice != nil {
		set["unitPrice"] = *req.UnitPrice
	}
	if req.Discontinued != nil {
		set["discontinued"] = *req.Discontinued
	}

	result, err := h.DB.Collection("pieces").UpdateOne(c.Request.Context(), bson.M{"pieceRef": ref}, bson.M{"$set": set})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update piece", "details": err.Error()})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "NotFound", "message": "piece " + ref + " not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Piece updated successfully"})
}

// DeletePiece xoá linh kiện khỏi danh mục. Linh kiện có đơn đang mở thì
// không xoá được.
func (h *PieceHandler) DeletePiece(c *gin.Context) {
	ref := c.Param("ref")

	result, err := h.DB.Collection("pieces").DeleteOne(c.Request.Context(),
		bson.M{"pieceRef": ref, "onOrderQty": bson.M{"$lte": 0}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete piece", "details": err.Error()})
		return
	}
	if result.DeletedCount == 0 {
		count, cErr := h.DB.Collection("pieces").CountDocuments(c.Request.Context(), bson.M{"pieceRef": ref})
		if cErr == nil && count > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "InvalidTransition", "message": "piece has an open order"})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "NotFound", "message": "piece " + ref + " not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Piece deleted successfully"})
}

// GetPiecesToOrder liệt kê linh kiện dưới ngưỡng cần đặt hàng, kèm số
// lượng đề nghị đặt.
func (h *PieceHandler) GetPiecesToOrder(c *gin.Context) {
	pieces, err := h.Pieces.ListNeedingReorder(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query pieces", "details": err.Error()})
		return
	}

	type toOrderLine struct {
		models.Piece
		QtyToOrder  int                  `json:"qtyToOrder"`
		StockStatus inventory.StockStatus `json:"stockStatus"`
	}

	lines := make([]toOrderLine, 0, len(pieces))
	for _, p := range pieces {
		lines = append(lines, toOrderLine{
			Piece:       p,
			QtyToOrder:  inventory.QtyToOrder(p.StockQty, p.MinQty),
			StockStatus: inventory.Status(p.StockQty, p.MinQty),
		})
	}

	c.JSON(http.StatusOK, lines)
}

// GetPiecesOnOrder liệt kê linh kiện đang có đơn hàng mở.
func (h *PieceHandler) GetPiecesOnOrder(c *gin.Context) {
	cursor, err := h.DB.Collection("pieces").Find(c.Request.Context(), bson.M{"onOrderQty": bson.M{"$gt": 0}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query pieces", "details": err.Error()})
		return
	}

	var pieces []models.Piece
	if err := cursor.All(c.Request.Context(), &pieces); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode pieces", "details": err.Error()})
		return
	}
	if pieces == nil {
		pieces = []models.Piece{}
	}

	c.JSON(http.StatusOK, pieces)
}

// GetStats trả về thống kê tổng quan kho.
func (h *PieceHandler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()
	col := h.DB.Collection("pieces")

	total, err := col.CountDocuments(ctx, bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count pieces", "details": err.Error()})
		return
	}

	critical, err := col.CountDocuments(ctx, bson.M{
		"minQty": bson.M{"$gt": 0},
		"$expr":  bson.M{"$lt": bson.A{"$stockQty", "$minQty"}},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count critical pieces", "details": err.Error()})
		return
	}

	onOrder, err := col.CountDocuments(ctx, bson.M{"onOrderQty": bson.M{"$gt": 0}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count on-order pieces", "details": err.Error()})
		return
	}

	toOrder, err := h.Pieces.ListNeedingReorder(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query pieces to order", "details": err.Error()})
		return
	}

	// Tổng giá trị tồn kho = sum(stockQty * unitPrice).
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"value": bson.M{"$sum": bson.M{"$multiply": bson.A{"$stockQty", "$unitPrice"}}},
		}}},
	}
	cursor, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate stock value", "details": err.Error()})
		return
	}
	var agg []struct {
		Value float64 `bson:"value"`
	}
	if err := cursor.All(ctx, &agg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode stock value", "details": err.Error()})
		return
	}
	stockValue := 0.0
	if len(agg) > 0 {
		stockValue = agg[0].Value
	}

	c.JSON(http.StatusOK, gin.H{
		"totalPieces":    total,
		"criticalPieces": critical,
		"piecesOnOrder":  onOrder,
		"piecesToOrder":  len(toOrder),
		"stockValue":     stockValue,
	})
}

// QuickWithdraw rút nhanh một đơn vị khỏi tồn kho.
func (h *PieceHandler) QuickWithdraw(c *gin.Context) {
	result, err := h.Engine.QuickWithdraw(c.Request.Context(), c.Param("ref"), c.GetString("user_email"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "piece": result.Piece, "warnings": result.Warnings})
}
