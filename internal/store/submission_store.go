// server/internal/store/submission_store.go
package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"spare-parts-api-server/internal/inventory"
	"spare-parts-api-server/internal/models"
)

// SubmissionStore thao tác trên collection "submissions" và "price_quotes".
type SubmissionStore struct {
	DB *mongo.Database
}

func NewSubmissionStore(db *mongo.Database) *SubmissionStore {
	return &SubmissionStore{DB: db}
}

func (s *SubmissionStore) submissions() *mongo.Collection {
	return s.DB.Collection("submissions")
}

func (s *SubmissionStore) quotes() *mongo.Collection {
	return s.DB.Collection("price_quotes")
}

// Insert lưu một submission mới.
func (s *SubmissionStore) Insert(ctx context.Context, sub *models.Submission) error {
	result, err := s.submissions().InsertOne(ctx, sub)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		sub.ID = oid
	}
	return nil
}

// FindByRef tìm submission theo submissionRef.
func (s *SubmissionStore) FindByRef(ctx context.Context, ref string) (*models.Submission, error) {
	var sub models.Submission
	err := s.submissions().FindOne(ctx, bson.M{"submissionRef": ref}).Decode(&sub)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("submission %q: %w", ref, inventory.ErrNotFound)
		}
		return nil, fmt.Errorf("find submission %q: %w", ref, err)
	}
	return &sub, nil
}

// List đọc danh sách submission, lọc theo trạng thái và nhà cung cấp nếu có.
func (s *SubmissionStore) List(ctx context.Context, status, supplierRef string) ([]models.Submission, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	if supplierRef != "" {
		filter["supplierRef"] = supplierRef
	}
	opts := options.Find().SetSort(bson.M{"sentAt": -1})
	cursor, err := s.submissions().Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer cursor.Close(ctx)

	var subs []models.Submission
	if err := cursor.All(ctx, &subs); err != nil {
		return nil, fmt.Errorf("decode submissions: %w", err)
	}
	if subs == nil {
		subs = []models.Submission{}
	}
	return subs, nil
}

// FindOpenForPiece trả về submission chưa kết thúc gần nhất có chứa linh kiện.
func (s *SubmissionStore) FindOpenForPiece(ctx context.Context, pieceRef string) (*models.Submission, error) {
	filter := bson.M{
		"status":         bson.M{"$in": []string{models.SubmissionSent, models.SubmissionPriceReceived}},
		"lines.pieceRef": pieceRef,
	}
	opts := options.FindOne().SetSort(bson.M{"sentAt": -1})
	var sub models.Submission
	err := s.submissions().FindOne(ctx, filter, opts).Decode(&sub)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("open submission for piece %q: %w", pieceRef, inventory.ErrNotFound)
		}
		return nil, fmt.Errorf("find open submission for %q: %w", pieceRef, err)
	}
	return &sub, nil
}

// Transition chuyển trạng thái submission, chỉ khi trạng thái hiện tại nằm
// trong danh sách from. ModifiedCount == 0 trên document tồn tại nghĩa là
// bước chuyển không hợp lệ.
func (s *SubmissionStore) Transition(ctx context.Context, ref string, from []string, to, note string) error {
	filter := bson.M{"submissionRef": ref, "status": bson.M{"$in": from}}
	update := bson.M{"$set": bson.M{
		"status":     to,
		"statusNote": note,
		"updatedAt":  time.Now(),
	}}
	res, err := s.submissions().UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("transition submission %q: %w", ref, err)
	}
	if res.MatchedCount == 0 {
		count, cErr := s.submissions().CountDocuments(ctx, bson.M{"submissionRef": ref})
		if cErr != nil {
			return fmt.Errorf("transition submission %q: %w", ref, cErr)
		}
		if count == 0 {
			return fmt.Errorf("submission %q: %w", ref, inventory.ErrNotFound)
		}
		return fmt.Errorf("submission %q cannot move to %s: %w", ref, to, inventory.ErrInvalidTransition)
	}
	return nil
}

// RecordQuote ghi báo giá cho một dòng. Unique index trên
// (submissionRef, pieceRef) bảo đảm mỗi dòng chỉ có một báo giá.
func (s *SubmissionStore) RecordQuote(ctx context.Context, quote *models.PriceQuote) error {
	result, err := s.quotes().InsertOne(ctx, quote)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("quote for submission %q piece %q: %w",
				quote.SubmissionRef, quote.PieceRef, inventory.ErrQuoteAlreadyExists)
		}
		return fmt.Errorf("record quote: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		quote.ID = oid
	}
	return nil
}

// ListQuotes đọc các báo giá đã ghi của một submission.
func (s *SubmissionStore) ListQuotes(ctx context.Context, submissionRef string) ([]models.PriceQuote, error) {
	cursor, err := s.quotes().Find(ctx, bson.M{"submissionRef": submissionRef})
	if err != nil {
		return nil, fmt.Errorf("query quotes: %w", err)
	}
	defer cursor.Close(ctx)

	var quotes []models.PriceQuote
	if err := cursor.All(ctx, &quotes); err != nil {
		return nil, fmt.Errorf("decode quotes: %w", err)
	}
	if quotes == nil {
		quotes = []models.PriceQuote{}
	}
	return quotes, nil
}

// SetAttachment gắn (hoặc thay) file đính kèm, chỉ khi submission chưa kết thúc.
func (s *SubmissionStore) SetAttachment(ctx context.Context, ref, objectKey string) error {
	filter := bson.M{
		"submissionRef": ref,
		"status":        bson.M{"$in": []string{models.SubmissionSent, models.SubmissionPriceReceived}},
	}
	update := bson.M{"$set": bson.M{"attachmentKey": objectKey, "updatedAt": time.Now()}}
	res, err := s.submissions().UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("attach to submission %q: %w", ref, err)
	}
	if res.MatchedCount == 0 {
		count, cErr := s.submissions().CountDocuments(ctx, bson.M{"submissionRef": ref})
		if cErr != nil {
			return fmt.Errorf("attach to submission %q: %w", ref, cErr)
		}
		if count == 0 {
			return fmt.Errorf("submission %q: %w", ref, inventory.ErrNotFound)
		}
		return fmt.Errorf("submission %q is closed: %w", ref, inventory.ErrInvalidTransition)
	}
	return nil
}

// SetReminderDate đặt ngày nhắc lại cho một submission.
func (s *SubmissionStore) SetReminderDate(ctx context.Context, ref string, at *time.Time) error {
	update := bson.M{"$set": bson.M{"updatedAt": time.Now()}}
	if at != nil {
		update["$set"].(bson.M)["reminderDate"] = *at
	} else {
		update["$unset"] = bson.M{"reminderDate": ""}
	}
	res, err := s.submissions().UpdateOne(ctx, bson.M{"submissionRef": ref}, update)
	if err != nil {
		return fmt.Errorf("set reminder for submission %q: %w", ref, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("submission %q: %w", ref, inventory.ErrNotFound)
	}
	return nil
}

// ListStaleSent trả về các submission còn ở trạng thái SENT đã gửi trước
// mốc thời gian cho trước hoặc đã đến ngày nhắc lại.
func (s *SubmissionStore) ListStaleSent(ctx context.Context, sentBefore time.Time) ([]models.Submission, error) {
	now := time.Now()
	filter := bson.M{
		"status": models.SubmissionSent,
		"$or": bson.A{
			bson.M{"sentAt": bson.M{"$lt": sentBefore}},
			bson.M{"reminderDate": bson.M{"$lte": now}},
		},
	}
	cursor, err := s.submissions().Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("query stale submissions: %w", err)
	}
	defer cursor.Close(ctx)

	var subs []models.Submission
	if err := cursor.All(ctx, &subs); err != nil {
		return nil, fmt.Errorf("decode stale submissions: %w", err)
	}
	if subs == nil {
		subs = []models.Submission{}
	}
	return subs, nil
}

// Delete xoá một submission đã kết thúc. Submission đang mở không xoá được.
func (s *SubmissionStore) Delete(ctx context.Context, ref string) error {
	filter := bson.M{
		"submissionRef": ref,
		"status":        bson.M{"$in": []string{models.SubmissionOrdered, models.SubmissionCancelled}},
	}
	res, err := s.submissions().DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("delete submission %q: %w", ref, err)
	}
	if res.DeletedCount == 0 {
		count, cErr := s.submissions().CountDocuments(ctx, bson.M{"submissionRef": ref})
		if cErr != nil {
			return fmt.Errorf("delete submission %q: %w", ref, cErr)
		}
		if count == 0 {
			return fmt.Errorf("submission %q: %w", ref, inventory.ErrNotFound)
		}
		return fmt.Errorf("submission %q is still open: %w", ref, inventory.ErrInvalidTransition)
	}
	return nil
}
