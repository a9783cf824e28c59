// server/internal/store/ledger_store.go
package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"spare-parts-api-server/internal/inventory"
	"spare-parts-api-server/internal/models"
)

// nextSeq cấp số thứ tự tăng dần cho sổ cái qua collection "counters".
func nextSeq(ctx context.Context, db *mongo.Database) (int64, error) {
	var doc struct {
		Value int64 `bson:"value"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := db.Collection("counters").FindOneAndUpdate(ctx,
		bson.M{"_id": "movements"},
		bson.M{"$inc": bson.M{"value": 1}},
		opts,
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("allocate movement seq: %w", err)
	}
	return doc.Value, nil
}

// LedgerStore ghi và đọc sổ cái chuyển động kho. Sổ cái chỉ append; API
// không có thao tác sửa hay xoá dòng, trừ CloseOrderEntry.
type LedgerStore struct {
	DB *mongo.Database
}

func NewLedgerStore(db *mongo.Database) *LedgerStore {
	return &LedgerStore{DB: db}
}

func (s *LedgerStore) movements() *mongo.Collection {
	return s.DB.Collection("movements")
}

// Append thêm một dòng mới vào sổ cái và gán số thứ tự.
func (s *LedgerStore) Append(ctx context.Context, entry *models.MovementEntry) error {
	seq, err := nextSeq(ctx, s.DB)
	if err != nil {
		return err
	}
	entry.Seq = seq
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if _, err := s.movements().InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("append movement entry: %w", err)
	}
	return nil
}

// List đọc sổ cái mới nhất trước, lọc theo loại thao tác nếu có.
func (s *LedgerStore) List(ctx context.Context, operation string, limit int64) ([]models.MovementEntry, error) {
	filter := bson.M{}
	if operation != "" {
		filter["operation"] = operation
	}
	return s.find(ctx, filter, limit)
}

// ListByPiece đọc các dòng sổ cái của một linh kiện, mới nhất trước.
func (s *LedgerStore) ListByPiece(ctx context.Context, pieceRef string) ([]models.MovementEntry, error) {
	return s.find(ctx, bson.M{"pieceRef": pieceRef}, 0)
}

func (s *LedgerStore) find(ctx context.Context, filter bson.M, limit int64) ([]models.MovementEntry, error) {
	opts := options.Find().SetSort(bson.M{"seq": -1})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := s.movements().Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("query movements: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []models.MovementEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("decode movements: %w", err)
	}
	if entries == nil {
		entries = []models.MovementEntry{}
	}
	return entries, nil
}

// CloseOrderEntry đóng dòng ORDER đang mở gần nhất của linh kiện: ghi ngày
// nhận và số ngày giao hàng thực tế. Đây là cập nhật duy nhất được phép trên
// một dòng đã ghi.
func (s *LedgerStore) CloseOrderEntry(ctx context.Context, pieceRef string, receivedAt time.Time) error {
	filter := bson.M{
		"pieceRef":   pieceRef,
		"operation":  models.OpOrder,
		"receivedAt": bson.M{"$exists": false},
	}
	var entry models.MovementEntry
	opts := options.FindOne().SetSort(bson.M{"seq": -1})
	err := s.movements().FindOne(ctx, filter, opts).Decode(&entry)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return fmt.Errorf("open order entry for piece %q: %w", pieceRef, inventory.ErrNotFound)
		}
		return fmt.Errorf("find open order entry for %q: %w", pieceRef, err)
	}

	update := bson.M{"$set": bson.M{"receivedAt": receivedAt}}
	if entry.OrderedAt != nil {
		leadDays := int(receivedAt.Sub(*entry.OrderedAt).Hours() / 24)
		if leadDays < 0 {
			leadDays = 0
		}
		update["$set"].(bson.M)["leadTimeDays"] = leadDays
	}
	if _, err := s.movements().UpdateOne(ctx, bson.M{"_id": entry.ID}, update); err != nil {
		return fmt.Errorf("close order entry for %q: %w", pieceRef, err)
	}
	return nil
}
