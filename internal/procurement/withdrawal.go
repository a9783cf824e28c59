// server/internal/procurement/withdrawal.go
package procurement

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"spare-parts-api-server/internal/inventory"
	"spare-parts-api-server/internal/models"
	"spare-parts-api-server/internal/store"
)

// WithdrawalStore là phần của kho linh kiện mà nghiệp vụ rút kho cần.
type WithdrawalStore interface {
	FindByRef(ctx context.Context, ref string) (*models.Piece, error)
	WithdrawKit(ctx context.Context, lines []store.KitLine, actor string) error
	QuickWithdraw(ctx context.Context, ref string) (*models.Piece, error)
}

// QuickWithdrawResult là kết quả một lần rút nhanh.
type QuickWithdrawResult struct {
	Piece    *models.Piece `json:"piece"`
	Warnings []StepFailure `json:"warnings,omitempty"`
}

// KitWithdrawalEngine rút cả bộ linh kiện cho một lần bảo trì. Hoặc tất cả
// các dòng được trừ kho và ghi sổ, hoặc không dòng nào cả.
type KitWithdrawalEngine struct {
	Pieces WithdrawalStore
	Ledger Ledger
	Log    *zap.Logger
}

func NewKitWithdrawalEngine(pieces WithdrawalStore, ledger Ledger, log *zap.Logger) *KitWithdrawalEngine {
	if log == nil {
		log = zap.NewNop()
	}
	return &KitWithdrawalEngine{Pieces: pieces, Ledger: ledger, Log: log}
}

// Withdraw rút các linh kiện của một bộ. overrides cho phép chỉnh số lượng
// từng linh kiện; không có override thì dùng RequiredQty của bộ, tự hạ xuống
// mức tồn kho hiện có. Số lượng 0 bỏ qua linh kiện đó. Bất kỳ số lượng yêu
// cầu nào vượt tồn kho làm cả lần rút thất bại, kèm danh sách đầy đủ các
// linh kiện thiếu.
func (e *KitWithdrawalEngine) Withdraw(ctx context.Context, group *models.Group, overrides map[string]int, actor, comment string) ([]store.KitLine, error) {
	var lines []store.KitLine
	var insufficient []string

	for _, gp := range group.Pieces {
		qty, overridden := overrides[gp.PieceRef]
		if !overridden {
			qty = gp.RequiredQty
		}
		if qty < 0 {
			return nil, fmt.Errorf("withdrawal quantity for piece %q must not be negative: %w",
				gp.PieceRef, inventory.ErrInvalidQuantity)
		}

		piece, err := e.Pieces.FindByRef(ctx, gp.PieceRef)
		if err != nil {
			return nil, err
		}

		// Số lượng mặc định tự co theo tồn kho; số lượng chỉ định tay thì không.
		if !overridden && qty > piece.StockQty {
			qty = piece.StockQty
		}
		if qty == 0 {
			continue
		}
		if qty > piece.StockQty {
			insufficient = append(insufficient, gp.PieceRef)
			continue
		}

		lines = append(lines, store.KitLine{
			PieceRef:   piece.PieceRef,
			PieceName:  piece.Name,
			PartNumber: piece.PartNumber,
			Qty:        qty,
			Comment:    comment,
		})
	}

	if len(insufficient) > 0 {
		return nil, &inventory.InsufficientStockError{PieceRefs: insufficient}
	}
	if len(lines) == 0 {
		return nil, &inventory.ValidationError{Field: "pieces", Reason: "nothing to withdraw"}
	}

	if err := e.Pieces.WithdrawKit(ctx, lines, actor); err != nil {
		return nil, err
	}

	e.Log.Info("kit withdrawn",
		zap.String("groupRef", group.GroupRef),
		zap.Int("lines", len(lines)),
		zap.String("actor", actor),
	)
	return lines, nil
}

// QuickWithdraw rút nhanh một đơn vị của một linh kiện, ghi sổ best-effort.
func (e *KitWithdrawalEngine) QuickWithdraw(ctx context.Context, ref, actor string) (*QuickWithdrawResult, error) {
	piece, err := e.Pieces.QuickWithdraw(ctx, ref)
	if err != nil {
		return nil, err
	}

	steps := newSagaSteps(e.Log.With(zap.String("pieceRef", ref)))
	steps.run("ledger_quick_withdrawal_entry", func() error {
		return e.Ledger.Append(ctx, &models.MovementEntry{
			Operation:  models.OpQuickWithdrawal,
			PieceRef:   piece.PieceRef,
			PieceName:  piece.Name,
			PartNumber: piece.PartNumber,
			Quantity:   -1,
			Actor:      actor,
		})
	})

	return &QuickWithdrawResult{Piece: piece, Warnings: steps.failures}, nil
}
