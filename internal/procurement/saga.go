// server/internal/procurement/saga.go
package procurement

import (
	"context"

	"go.uber.org/zap"

	"spare-parts-api-server/internal/models"
)

// StepFailure mô tả một bước phụ bị lỗi sau khi bước chính đã commit.
// Request vẫn thành công; client nhận danh sách cảnh báo để xử lý tay.
type StepFailure struct {
	Step  string `json:"step"`
	Error string `json:"error"`
}

// Notifier gửi thông báo ra kênh ngoài (webhook). Mọi lời gọi đều
// best-effort: lỗi chỉ được ghi log hoặc trả về dưới dạng cảnh báo.
type Notifier interface {
	SubmissionSent(ctx context.Context, sub *models.Submission) error
	SubmissionReminder(ctx context.Context, sub *models.Submission) error
	ApprovalDecided(ctx context.Context, piece *models.Piece) error
	OrderPlaced(ctx context.Context, piece *models.Piece, qty int) error
	ReorderAlert(ctx context.Context, pieces []models.Piece) error
}

// Ledger là phần ghi của sổ cái chuyển động kho.
type Ledger interface {
	Append(ctx context.Context, entry *models.MovementEntry) error
}

// sagaSteps gom lỗi của các bước best-effort, mỗi bước có tên riêng.
type sagaSteps struct {
	log      *zap.Logger
	failures []StepFailure
}

func newSagaSteps(log *zap.Logger) *sagaSteps {
	if log == nil {
		log = zap.NewNop()
	}
	return &sagaSteps{log: log}
}

// run chạy một bước; lỗi được ghi log và giữ lại, không lan ra ngoài.
func (s *sagaSteps) run(name string, fn func() error) {
	if err := fn(); err != nil {
		s.log.Error("best-effort step failed",
			zap.String("step", name),
			zap.Error(err),
		)
		s.failures = append(s.failures, StepFailure{Step: name, Error: err.Error()})
	}
}
