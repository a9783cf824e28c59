// server/internal/procurement/order.go
package procurement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"spare-parts-api-server/internal/inventory"
	"spare-parts-api-server/internal/models"
)

// OrderPieceStore là phần của kho linh kiện mà saga đặt hàng cần.
type OrderPieceStore interface {
	PlaceOrder(ctx context.Context, ref string, qty int, unitPrice float64, orderDate time.Time, note, submissionNo string) (*models.Piece, error)
}

// OrderSubmissionStore là phần của kho submission mà saga đặt hàng cần.
type OrderSubmissionStore interface {
	FindOpenForPiece(ctx context.Context, pieceRef string) (*models.Submission, error)
	Insert(ctx context.Context, sub *models.Submission) error
	Transition(ctx context.Context, ref string, from []string, to, note string) error
	RecordQuote(ctx context.Context, quote *models.PriceQuote) error
	SetAttachment(ctx context.Context, ref, objectKey string) error
}

// PlaceOrderInput là dữ liệu đầu vào của một lần đặt hàng.
type PlaceOrderInput struct {
	PieceRef     string
	Qty          int
	UnitPrice    float64
	OrderDate    time.Time
	Note         string
	SubmissionNo string
	DocumentKey  string
	Actor        string
}

// PlaceOrderResult là kết quả đặt hàng: linh kiện đã cập nhật, submission
// liên quan và các cảnh báo từ những bước phụ bị lỗi.
type PlaceOrderResult struct {
	Piece         *models.Piece  `json:"piece"`
	SubmissionRef string         `json:"submissionRef,omitempty"`
	Warnings      []StepFailure  `json:"warnings,omitempty"`
}

// OrderPlacementSaga thực hiện đặt hàng một linh kiện. Bước 1 (cập nhật
// linh kiện) bắt buộc thành công; các bước sau chạy tuần tự và best-effort:
// ghi sổ cái, tìm hoặc tạo submission, ghi báo giá theo giá đặt, gắn chứng
// từ, chuyển submission sang ORDERED, thông báo. Lỗi của bước phụ trở thành
// cảnh báo trong kết quả thay vì làm hỏng cả request.
type OrderPlacementSaga struct {
	Pieces   OrderPieceStore
	Subs     OrderSubmissionStore
	Ledger   Ledger
	Notifier Notifier
	Log      *zap.Logger

	now    func() time.Time
	newRef func() string
}

func NewOrderPlacementSaga(pieces OrderPieceStore, subs OrderSubmissionStore, ledger Ledger, notifier Notifier, log *zap.Logger) *OrderPlacementSaga {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderPlacementSaga{
		Pieces:   pieces,
		Subs:     subs,
		Ledger:   ledger,
		Notifier: notifier,
		Log:      log,
		now:      time.Now,
		newRef:   NewSubmissionRef,
	}
}

// PlaceOrder chạy saga đặt hàng.
func (s *OrderPlacementSaga) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*PlaceOrderResult, error) {
	if input.Qty <= 0 {
		return nil, fmt.Errorf("order quantity must be positive: %w", inventory.ErrInvalidQuantity)
	}
	orderDate := input.OrderDate
	if orderDate.IsZero() {
		orderDate = s.now()
	}

	// Bước 1, bắt buộc: ghi đơn hàng lên document linh kiện.
	piece, err := s.Pieces.PlaceOrder(ctx, input.PieceRef, input.Qty, input.UnitPrice, orderDate, input.Note, input.SubmissionNo)
	if err != nil {
		return nil, err
	}

	steps := newSagaSteps(s.Log.With(zap.String("pieceRef", piece.PieceRef)))

	// Bước 2: dòng ORDER trong sổ cái.
	steps.run("ledger_order_entry", func() error {
		return s.Ledger.Append(ctx, &models.MovementEntry{
			Operation:  models.OpOrder,
			PieceRef:   piece.PieceRef,
			PieceName:  piece.Name,
			PartNumber: piece.PartNumber,
			Quantity:   input.Qty,
			Actor:      input.Actor,
			Comment:    input.Note,
			OrderedAt:  &orderDate,
		})
	})

	// Bước 3: tìm submission đang mở cho linh kiện, không có thì tạo mới.
	var sub *models.Submission
	steps.run("resolve_submission", func() error {
		found, err := s.Subs.FindOpenForPiece(ctx, piece.PieceRef)
		if err == nil {
			sub = found
			return nil
		}
		if !errors.Is(err, inventory.ErrNotFound) {
			return err
		}
		now := s.now()
		created := &models.Submission{
			SubmissionRef: s.newRef(),
			SupplierRef:   piece.SupplierRef,
			Lines: []models.SubmissionLine{{
				PieceRef:           piece.PieceRef,
				PieceName:          piece.Name,
				PartNumber:         piece.PartNumber,
				RequestedQty:       input.Qty,
				UnitPriceAtRequest: input.UnitPrice,
			}},
			Status:      models.SubmissionSent,
			StatusNote:  "created during order placement",
			AutoCreated: true,
			CreatedBy:   input.Actor,
			SentAt:      now,
			UpdatedAt:   now,
		}
		if err := s.Subs.Insert(ctx, created); err != nil {
			return err
		}
		sub = created
		return nil
	})

	if sub != nil {
		// Bước 4: ghi báo giá theo giá đặt. Báo giá đã có từ trước thì giữ
		// nguyên, không coi là lỗi.
		steps.run("record_quote", func() error {
			err := s.Subs.RecordQuote(ctx, &models.PriceQuote{
				SubmissionRef: sub.SubmissionRef,
				PieceRef:      piece.PieceRef,
				UnitPrice:     input.UnitPrice,
				Comment:       "recorded during order placement",
				RecordedBy:    input.Actor,
				RecordedAt:    s.now(),
			})
			if errors.Is(err, inventory.ErrQuoteAlreadyExists) {
				return nil
			}
			return err
		})

		// Bước 5: gắn chứng từ đặt hàng nếu có. Phải gắn trước khi submission
		// chuyển sang ORDERED, vì submission đã đóng không nhận file nữa.
		if input.DocumentKey != "" {
			steps.run("attach_document", func() error {
				return s.Subs.SetAttachment(ctx, sub.SubmissionRef, input.DocumentKey)
			})
		}

		// Bước 6: chuyển submission sang ORDERED.
		steps.run("submission_ordered", func() error {
			note := input.Note
			if note == "" {
				note = fmt.Sprintf("ordered on %s", orderDate.Format("2006-01-02"))
			}
			return s.Subs.Transition(ctx, sub.SubmissionRef,
				[]string{models.SubmissionSent, models.SubmissionPriceReceived},
				models.SubmissionOrdered, note)
		})
	}

	if s.Notifier != nil {
		steps.run("notify_order_placed", func() error {
			return s.Notifier.OrderPlaced(ctx, piece, input.Qty)
		})
	}

	result := &PlaceOrderResult{Piece: piece, Warnings: steps.failures}
	if sub != nil {
		result.SubmissionRef = sub.SubmissionRef
	}
	return result, nil
}
