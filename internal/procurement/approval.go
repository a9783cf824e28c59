// server/internal/procurement/approval.go
package procurement

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"spare-parts-api-server/internal/inventory"
	"spare-parts-api-server/internal/models"
)

// ApprovalStore là phần của kho linh kiện mà cổng phê duyệt cần.
type ApprovalStore interface {
	FindByRef(ctx context.Context, ref string) (*models.Piece, error)
	SubmitApproval(ctx context.Context, ref, requestedBy string) (*models.Piece, error)
	Approve(ctx context.Context, ref, actor, note string) (*models.Piece, error)
	Refuse(ctx context.Context, ref, actor, note string) (*models.Piece, error)
	ResetApproval(ctx context.Context, ref string) (*models.Piece, error)
}

// ApprovalGate quản lý vòng đời phê duyệt mua của linh kiện:
// PENDING -> APPROVED hoặc REFUSED, REFUSED -> PENDING khi reset.
type ApprovalGate struct {
	Pieces   ApprovalStore
	Notifier Notifier
	Log      *zap.Logger
}

func NewApprovalGate(pieces ApprovalStore, notifier Notifier, log *zap.Logger) *ApprovalGate {
	if log == nil {
		log = zap.NewNop()
	}
	return &ApprovalGate{Pieces: pieces, Notifier: notifier, Log: log}
}

// Submit đưa linh kiện vào hàng chờ phê duyệt. Gọi lại khi đã PENDING
// là hợp lệ và chỉ cập nhật người yêu cầu.
func (g *ApprovalGate) Submit(ctx context.Context, ref, requestedBy string) (*models.Piece, error) {
	return g.Pieces.SubmitApproval(ctx, ref, requestedBy)
}

// Approve chấp thuận yêu cầu mua đang chờ. Ghi chú không bắt buộc.
func (g *ApprovalGate) Approve(ctx context.Context, ref, actor, note string) (*models.Piece, error) {
	piece, err := g.Pieces.Approve(ctx, ref, actor, note)
	if err != nil {
		return nil, err
	}
	g.notifyDecision(ctx, piece)
	return piece, nil
}

// Refuse từ chối yêu cầu mua đang chờ. Lý do bắt buộc.
func (g *ApprovalGate) Refuse(ctx context.Context, ref, actor, note string) (*models.Piece, error) {
	if strings.TrimSpace(note) == "" {
		return nil, &inventory.ValidationError{Field: "note", Reason: "a reason is required when refusing"}
	}
	piece, err := g.Pieces.Refuse(ctx, ref, actor, note)
	if err != nil {
		return nil, err
	}
	g.notifyDecision(ctx, piece)
	return piece, nil
}

// Reset mở lại một yêu cầu đã bị từ chối để xem xét lần nữa.
func (g *ApprovalGate) Reset(ctx context.Context, ref string) (*models.Piece, error) {
	return g.Pieces.ResetApproval(ctx, ref)
}

func (g *ApprovalGate) notifyDecision(ctx context.Context, piece *models.Piece) {
	if g.Notifier == nil {
		return
	}
	if err := g.Notifier.ApprovalDecided(ctx, piece); err != nil {
		g.Log.Error("failed to notify approval decision",
			zap.String("pieceRef", piece.PieceRef),
			zap.Error(err),
		)
	}
}
