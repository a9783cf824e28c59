// server/internal/procurement/reception.go
package procurement

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"spare-parts-api-server/internal/inventory"
	"spare-parts-api-server/internal/models"
)

// ReceivingStore là phần của kho linh kiện mà nghiệp vụ nhận hàng cần.
type ReceivingStore interface {
	ReceiveTotal(ctx context.Context, ref string) (*models.Piece, int, error)
	ReceivePartial(ctx context.Context, ref string, qty int) (*models.Piece, error)
}

// ReceptionLedger là phần sổ cái mà nghiệp vụ nhận hàng cần: thêm dòng
// PURCHASE và đóng dòng ORDER đang mở.
type ReceptionLedger interface {
	Append(ctx context.Context, entry *models.MovementEntry) error
	CloseOrderEntry(ctx context.Context, pieceRef string, receivedAt time.Time) error
}

// ReceptionResult là kết quả một lần nhận hàng.
type ReceptionResult struct {
	Piece       *models.Piece `json:"piece"`
	ReceivedQty int           `json:"receivedQty"`
	Warnings    []StepFailure `json:"warnings,omitempty"`
}

// Reception xử lý nhận hàng cho một đơn đang mở, toàn bộ hoặc từng phần.
// Cập nhật tồn kho là bước bắt buộc; ghi sổ cái chạy best-effort sau đó.
type Reception struct {
	Pieces ReceivingStore
	Ledger ReceptionLedger
	Log    *zap.Logger

	now func() time.Time
}

func NewReception(pieces ReceivingStore, ledger ReceptionLedger, log *zap.Logger) *Reception {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reception{Pieces: pieces, Ledger: ledger, Log: log, now: time.Now}
}

// ReceiveTotal nhận toàn bộ phần còn lại của đơn đang mở, rồi ghi dòng
// PURCHASE và đóng dòng ORDER tương ứng trong sổ cái.
func (r *Reception) ReceiveTotal(ctx context.Context, ref, actor string) (*ReceptionResult, error) {
	piece, received, err := r.Pieces.ReceiveTotal(ctx, ref)
	if err != nil {
		return nil, err
	}

	now := r.now()
	steps := newSagaSteps(r.Log.With(zap.String("pieceRef", ref)))
	steps.run("ledger_purchase_entry", func() error {
		return r.Ledger.Append(ctx, &models.MovementEntry{
			Operation:  models.OpPurchase,
			PieceRef:   piece.PieceRef,
			PieceName:  piece.Name,
			PartNumber: piece.PartNumber,
			Quantity:   received,
			Actor:      actor,
			ReceivedAt: &now,
		})
	})
	steps.run("close_order_entry", func() error {
		return r.Ledger.CloseOrderEntry(ctx, ref, now)
	})

	return &ReceptionResult{Piece: piece, ReceivedQty: received, Warnings: steps.failures}, nil
}

// ReceivePartial nhận một phần của đơn đang mở. Lần nhận đưa phần còn lại
// về 0 cũng đóng dòng ORDER trong sổ cái.
func (r *Reception) ReceivePartial(ctx context.Context, ref string, qty int, actor string) (*ReceptionResult, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("received quantity must be positive: %w", inventory.ErrInvalidQuantity)
	}

	piece, err := r.Pieces.ReceivePartial(ctx, ref, qty)
	if err != nil {
		return nil, err
	}

	now := r.now()
	steps := newSagaSteps(r.Log.With(zap.String("pieceRef", ref)))
	steps.run("ledger_purchase_entry", func() error {
		return r.Ledger.Append(ctx, &models.MovementEntry{
			Operation:  models.OpPurchase,
			PieceRef:   piece.PieceRef,
			PieceName:  piece.Name,
			PartNumber: piece.PartNumber,
			Quantity:   qty,
			Actor:      actor,
			ReceivedAt: &now,
		})
	})
	if piece.OutstandingQty == 0 {
		steps.run("close_order_entry", func() error {
			return r.Ledger.CloseOrderEntry(ctx, ref, now)
		})
	}

	return &ReceptionResult{Piece: piece, ReceivedQty: qty, Warnings: steps.failures}, nil
}
