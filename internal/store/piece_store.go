// server/internal/store/piece_store.go
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

// PieceStore thực hiện các thao tác ghi có điều kiện trên collection "pieces".
// Mọi thao tác thay đổi số lượng là một lệnh UpdateOne/FindOneAndUpdate duy nhất
// với filter kiểm tra trạng thái hiện tại; ModifiedCount == 0 nghĩa là có
// request khác đã thắng trước.
type PieceStore struct {
	DB *mongo.Database
}

func NewPieceStore(db *mongo.Database) *PieceStore {
	return &PieceStore{DB: db}
}

func (s *PieceStore) pieces() *mongo.Collection {
	return s.DB.Collection("pieces")
}

// FindByRef tìm linh kiện theo pieceRef.
func (s *PieceStore) FindByRef(ctx context.Context, ref string) (*models.Piece, error) {
	var piece models.Piece
	err := s.pieces().FindOne(ctx, bson.M{"pieceRef": ref}).Decode(&piece)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("piece %q: %w", ref, inventory.ErrNotFound)
		}
		return nil, fmt.Errorf("find piece %q: %w", ref, err)
	}
	return &piece, nil
}

// ListNeedingReorder trả về các linh kiện tụt dưới ngưỡng tối thiểu mà chưa
// có đơn nào đang mở.
func (s *PieceStore) ListNeedingReorder(ctx context.Context) ([]models.Piece, error) {
	filter := bson.M{
		"onOrderQty": bson.M{"$lte": 0},
		"minQty":     bson.M{"$gt": 0},
		"$expr":      bson.M{"$lt": bson.A{"$stockQty", "$minQty"}},
	}
	cursor, err := s.pieces().Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("query pieces needing reorder: %w", err)
	}
	defer cursor.Close(ctx)

	var pieces []models.Piece
	if err := cursor.All(ctx, &pieces); err != nil {
		return nil, fmt.Errorf("decode pieces: %w", err)
	}
	if pieces == nil {
		pieces = []models.Piece{}
	}
	return pieces, nil
}

// exists phân biệt "không tìm thấy" với "sai trạng thái" sau khi một update
// có điều kiện không khớp document nào.
func (s *PieceStore) exists(ctx context.Context, ref string) (bool, error) {
	count, err := s.pieces().CountDocuments(ctx, bson.M{"pieceRef": ref})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// conditionalUpdate chạy một update có điều kiện và ánh xạ kết quả rỗng
// thành ErrNotFound hoặc lỗi trạng thái do caller cung cấp.
func (s *PieceStore) conditionalUpdate(ctx context.Context, ref string, filter, update bson.M, stateErr error) (*models.Piece, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var piece models.Piece
	err := s.pieces().FindOneAndUpdate(ctx, filter, update, opts).Decode(&piece)
	if err == nil {
		return &piece, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, fmt.Errorf("update piece %q: %w", ref, err)
	}
	ok, exErr := s.exists(ctx, ref)
	if exErr != nil {
		return nil, fmt.Errorf("update piece %q: %w", ref, exErr)
	}
	if !ok {
		return nil, fmt.Errorf("piece %q: %w", ref, inventory.ErrNotFound)
	}
	return nil, stateErr
}

// SubmitApproval đưa linh kiện vào hàng chờ phê duyệt. Gọi lại khi đang
// PENDING là hợp lệ (chỉ cập nhật người yêu cầu).
func (s *PieceStore) SubmitApproval(ctx context.Context, ref, requestedBy string) (*models.Piece, error) {
	filter := bson.M{"pieceRef": ref, "approvalStatus": models.ApprovalPending}
	update := bson.M{"$set": bson.M{
		"approvalRequestedBy": requestedBy,
		"updatedAt":           time.Now(),
	}}
	return s.conditionalUpdate(ctx, ref, filter, update,
		fmt.Errorf("approval already decided for piece %q: %w", ref, inventory.ErrInvalidTransition))
}

// Approve chuyển PENDING -> APPROVED.
func (s *PieceStore) Approve(ctx context.Context, ref, actor, note string) (*models.Piece, error) {
	filter := bson.M{"pieceRef": ref, "approvalStatus": models.ApprovalPending}
	update := bson.M{"$set": bson.M{
		"approvalStatus": models.ApprovalApproved,
		"approvalActor":  actor,
		"approvalNote":   note,
		"updatedAt":      time.Now(),
	}}
	return s.conditionalUpdate(ctx, ref, filter, update,
		fmt.Errorf("piece %q is not pending approval: %w", ref, inventory.ErrInvalidTransition))
}

// Refuse chuyển PENDING -> REFUSED. Lý do bắt buộc, engine đã kiểm tra.
func (s *PieceStore) Refuse(ctx context.Context, ref, actor, note string) (*models.Piece, error) {
	filter := bson.M{"pieceRef": ref, "approvalStatus": models.ApprovalPending}
	update := bson.M{"$set": bson.M{
		"approvalStatus": models.ApprovalRefused,
		"approvalActor":  actor,
		"approvalNote":   note,
		"updatedAt":      time.Now(),
	}}
	return s.conditionalUpdate(ctx, ref, filter, update,
		fmt.Errorf("piece %q is not pending approval: %w", ref, inventory.ErrInvalidTransition))
}

// ResetApproval chuyển REFUSED -> PENDING và xoá ghi chú/người quyết định cũ.
func (s *PieceStore) ResetApproval(ctx context.Context, ref string) (*models.Piece, error) {
	filter := bson.M{"pieceRef": ref, "approvalStatus": models.ApprovalRefused}
	update := bson.M{
		"$set":   bson.M{"approvalStatus": models.ApprovalPending, "updatedAt": time.Now()},
		"$unset": bson.M{"approvalNote": "", "approvalActor": ""},
	}
	return s.conditionalUpdate(ctx, ref, filter, update,
		fmt.Errorf("piece %q is not refused: %w", ref, inventory.ErrInvalidTransition))
}

// PlaceOrder ghi nhận một đơn đặt hàng mới trên linh kiện.
// Đây là bước bắt buộc thành công của saga đặt hàng.
func (s *PieceStore) PlaceOrder(ctx context.Context, ref string, qty int, unitPrice float64, orderDate time.Time, note, submissionNo string) (*models.Piece, error) {
	filter := bson.M{"pieceRef": ref}
	update := bson.M{"$set": bson.M{
		"onOrderQty":     qty,
		"receivedQty":    0,
		"outstandingQty": qty,
		"orderDate":      orderDate,
		"orderNote":      note,
		"unitPrice":      unitPrice,
		"submissionNo":   submissionNo,
		"updatedAt":      time.Now(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var piece models.Piece
	err := s.pieces().FindOneAndUpdate(ctx, filter, update, opts).Decode(&piece)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("piece %q: %w", ref, inventory.ErrNotFound)
		}
		return nil, fmt.Errorf("place order on piece %q: %w", ref, err)
	}
	return &piece, nil
}

// ReceiveTotal nhận toàn bộ phần còn lại của đơn đang mở.
// Tồn kho tăng đúng bằng outstanding rồi các trường đơn hàng được xoá sạch;
// lịch sử số lượng nằm trong sổ cái, không nằm trên document linh kiện.
func (s *PieceStore) ReceiveTotal(ctx context.Context, ref string) (*models.Piece, int, error) {
	current, err := s.FindByRef(ctx, ref)
	if err != nil {
		return nil, 0, err
	}
	if current.OutstandingQty <= 0 {
		return nil, 0, fmt.Errorf("piece %q has no outstanding order: %w", ref, inventory.ErrInvalidTransition)
	}

	outstanding := current.OutstandingQty
	// Filter khoá trên giá trị outstanding vừa đọc: nếu một reception khác
	// chen ngang, update này không khớp document nào.
	filter := bson.M{"pieceRef": ref, "outstandingQty": outstanding}
	update := bson.M{
		"$inc": bson.M{"stockQty": outstanding},
		"$set": bson.M{
			"onOrderQty":     0,
			"receivedQty":    0,
			"outstandingQty": 0,
			"updatedAt":      time.Now(),
		},
		"$unset": bson.M{"orderDate": "", "orderNote": "", "submissionNo": ""},
	}
	piece, err := s.conditionalUpdate(ctx, ref, filter, update,
		fmt.Errorf("piece %q was modified concurrently: %w", ref, inventory.ErrInvalidTransition))
	if err != nil {
		return nil, 0, err
	}
	return piece, outstanding, nil
}

// ReceivePartial nhận một phần đơn đang mở. Filter yêu cầu outstanding đủ lớn,
// nên số lượng quá mức hay đơn đã đóng đều không khớp document nào.
func (s *PieceStore) ReceivePartial(ctx context.Context, ref string, qty int) (*models.Piece, error) {
	filter := bson.M{"pieceRef": ref, "outstandingQty": bson.M{"$gte": qty}}
	update := bson.M{
		"$inc": bson.M{"stockQty": qty, "receivedQty": qty, "outstandingQty": -qty},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	piece, err := s.conditionalUpdate(ctx, ref, filter, update,
		fmt.Errorf("quantity %d exceeds outstanding for piece %q: %w", qty, ref, inventory.ErrInvalidQuantity))
	if err != nil {
		return nil, err
	}

	// Lần nhận cuối đưa outstanding về 0: đóng các trường đơn hàng.
	if piece.OutstandingQty == 0 && piece.OnOrderQty > 0 {
		closeFilter := bson.M{"pieceRef": ref, "outstandingQty": 0, "onOrderQty": bson.M{"$gt": 0}}
		closeUpdate := bson.M{
			"$set":   bson.M{"onOrderQty": 0, "receivedQty": 0, "updatedAt": time.Now()},
			"$unset": bson.M{"orderDate": "", "orderNote": "", "submissionNo": ""},
		}
		if closed, err := s.conditionalUpdate(ctx, ref, closeFilter, closeUpdate, nil); err == nil && closed != nil {
			piece = closed
		}
	}
	return piece, nil
}

// QuickWithdraw rút nhanh một đơn vị khỏi kho.
func (s *PieceStore) QuickWithdraw(ctx context.Context, ref string) (*models.Piece, error) {
	filter := bson.M{"pieceRef": ref, "stockQty": bson.M{"$gt": 0}}
	update := bson.M{
		"$inc": bson.M{"stockQty": -1},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	return s.conditionalUpdate(ctx, ref, filter, update,
		fmt.Errorf("piece %q has no stock left: %w", ref, inventory.ErrInvalidQuantity))
}

// KitLine là một dòng rút kho trong một lần rút bộ.
type KitLine struct {
	PieceRef   string
	PieceName  string
	PartNumber string
	Qty        int
	Comment    string
}

// WithdrawKit trừ kho tất cả các dòng và ghi một dòng sổ cái WITHDRAWAL cho
// mỗi linh kiện, tất cả trong một transaction. Bất kỳ dòng nào không đủ tồn
// kho tại thời điểm commit sẽ huỷ toàn bộ.
func (s *PieceStore) WithdrawKit(ctx context.Context, lines []KitLine, actor string) error {
	session, err := s.DB.Client().StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	movements := s.DB.Collection("movements")
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		now := time.Now()
		for _, line := range lines {
			filter := bson.M{"pieceRef": line.PieceRef, "stockQty": bson.M{"$gte": line.Qty}}
			update := bson.M{
				"$inc": bson.M{"stockQty": -line.Qty},
				"$set": bson.M{"updatedAt": now},
			}
			res, err := s.pieces().UpdateOne(sc, filter, update)
			if err != nil {
				return nil, fmt.Errorf("withdraw piece %q: %w", line.PieceRef, err)
			}
			if res.ModifiedCount == 0 {
				// Tồn kho đã đổi giữa lúc kiểm tra và lúc commit.
				return nil, &inventory.InsufficientStockError{PieceRefs: []string{line.PieceRef}}
			}

			seq, err := nextSeq(sc, s.DB)
			if err != nil {
				return nil, err
			}
			entry := models.MovementEntry{
				Seq:        seq,
				Operation:  models.OpWithdrawal,
				PieceRef:   line.PieceRef,
				PieceName:  line.PieceName,
				PartNumber: line.PartNumber,
				Quantity:   -line.Qty,
				Actor:      actor,
				Comment:    line.Comment,
				CreatedAt:  now,
			}
			if _, err := movements.InsertOne(sc, entry); err != nil {
				return nil, fmt.Errorf("append withdrawal entry for %q: %w", line.PieceRef, err)
			}
		}
		return nil, nil
	})
	return err
}
