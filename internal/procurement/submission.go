// server/internal/procurement/submission.go
package procurement

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"spare-parts-api-server/internal/inventory"
	"spare-parts-api-server/internal/models"
)

// SubmissionStore là phần của kho submission mà tracker cần.
type SubmissionStore interface {
	Insert(ctx context.Context, sub *models.Submission) error
	FindByRef(ctx context.Context, ref string) (*models.Submission, error)
	Transition(ctx context.Context, ref string, from []string, to, note string) error
	RecordQuote(ctx context.Context, quote *models.PriceQuote) error
	SetAttachment(ctx context.Context, ref, objectKey string) error
	SetReminderDate(ctx context.Context, ref string, at *time.Time) error
	Delete(ctx context.Context, ref string) error
}

// PieceReader chỉ đọc linh kiện, dùng để dựng các dòng submission.
type PieceReader interface {
	FindByRef(ctx context.Context, ref string) (*models.Piece, error)
}

// Đồ thị chuyển trạng thái của submission: khoá là trạng thái đích,
// giá trị là các trạng thái nguồn hợp lệ.
var submissionTransitions = map[string][]string{
	models.SubmissionPriceReceived: {models.SubmissionSent},
	models.SubmissionOrdered:       {models.SubmissionPriceReceived},
	models.SubmissionCancelled:     {models.SubmissionSent, models.SubmissionPriceReceived},
	// Quay lui khi báo giá ghi nhầm.
	models.SubmissionSent: {models.SubmissionPriceReceived},
}

// SubmissionTracker quản lý vòng đời yêu cầu báo giá gửi nhà cung cấp.
type SubmissionTracker struct {
	Subs     SubmissionStore
	Pieces   PieceReader
	Notifier Notifier
	Log      *zap.Logger

	now    func() time.Time
	newRef func() string
}

func NewSubmissionTracker(subs SubmissionStore, pieces PieceReader, notifier Notifier, log *zap.Logger) *SubmissionTracker {
	if log == nil {
		log = zap.NewNop()
	}
	return &SubmissionTracker{
		Subs:     subs,
		Pieces:   pieces,
		Notifier: notifier,
		Log:      log,
		now:      time.Now,
		newRef:   NewSubmissionRef,
	}
}

// NewSubmissionRef sinh mã submission mới, ví dụ "SUB-1A2B3C4D".
func NewSubmissionRef() string {
	return fmt.Sprintf("SUB-%s", strings.ToUpper(uuid.New().String()[:8]))
}

// CreateSubmissionLine là một dòng trong yêu cầu tạo submission.
type CreateSubmissionLine struct {
	PieceRef     string
	RequestedQty int
}

// CreateSubmissionInput là dữ liệu đầu vào để tạo submission mới.
type CreateSubmissionInput struct {
	SupplierRef     string
	RecipientEmails []string
	Subject         string
	Body            string
	Lines           []CreateSubmissionLine
	CreatedBy       string
}

// Create gửi một yêu cầu báo giá mới: kiểm tra dữ liệu, chốt ảnh chụp tên,
// mã hãng và giá hiện tại của từng linh kiện rồi lưu ở trạng thái SENT.
// Thông báo ra ngoài là best-effort.
func (t *SubmissionTracker) Create(ctx context.Context, input CreateSubmissionInput) (*models.Submission, error) {
	if len(input.Lines) == 0 {
		return nil, &inventory.ValidationError{Field: "lines", Reason: "at least one line is required"}
	}
	if len(input.RecipientEmails) == 0 {
		return nil, &inventory.ValidationError{Field: "recipientEmails", Reason: "at least one recipient is required"}
	}

	lines := make([]models.SubmissionLine, 0, len(input.Lines))
	for _, in := range input.Lines {
		if in.RequestedQty <= 0 {
			return nil, &inventory.ValidationError{
				Field:  "lines",
				Reason: fmt.Sprintf("requested quantity for piece %q must be positive", in.PieceRef),
			}
		}
		piece, err := t.Pieces.FindByRef(ctx, in.PieceRef)
		if err != nil {
			return nil, err
		}
		lines = append(lines, models.SubmissionLine{
			PieceRef:           piece.PieceRef,
			PieceName:          piece.Name,
			PartNumber:         piece.PartNumber,
			RequestedQty:       in.RequestedQty,
			UnitPriceAtRequest: piece.UnitPrice,
		})
	}

	now := t.now()
	sub := &models.Submission{
		SubmissionRef:   t.newRef(),
		SupplierRef:     input.SupplierRef,
		RecipientEmails: input.RecipientEmails,
		Subject:         input.Subject,
		Body:            input.Body,
		Lines:           lines,
		Status:          models.SubmissionSent,
		CreatedBy:       input.CreatedBy,
		SentAt:          now,
		UpdatedAt:       now,
	}
	if err := t.Subs.Insert(ctx, sub); err != nil {
		return nil, err
	}

	if t.Notifier != nil {
		if err := t.Notifier.SubmissionSent(ctx, sub); err != nil {
			t.Log.Error("failed to notify submission sent",
				zap.String("submissionRef", sub.SubmissionRef),
				zap.Error(err),
			)
		}
	}
	return sub, nil
}

// RecordQuote ghi báo giá nhận được cho một dòng của submission.
// Mỗi dòng chỉ ghi được một lần; linh kiện không thuộc submission bị từ chối.
func (t *SubmissionTracker) RecordQuote(ctx context.Context, submissionRef, pieceRef string, unitPrice float64, deliveryDelay, comment, recordedBy string) (*models.PriceQuote, error) {
	if unitPrice < 0 {
		return nil, &inventory.ValidationError{Field: "unitPrice", Reason: "must not be negative"}
	}

	sub, err := t.Subs.FindByRef(ctx, submissionRef)
	if err != nil {
		return nil, err
	}
	if sub.IsTerminal() {
		return nil, fmt.Errorf("submission %q is closed: %w", submissionRef, inventory.ErrInvalidTransition)
	}
	if !sub.HasPiece(pieceRef) {
		return nil, &inventory.ValidationError{
			Field:  "pieceRef",
			Reason: fmt.Sprintf("piece %q is not part of submission %q", pieceRef, submissionRef),
		}
	}

	quote := &models.PriceQuote{
		SubmissionRef: submissionRef,
		PieceRef:      pieceRef,
		UnitPrice:     unitPrice,
		DeliveryDelay: deliveryDelay,
		Comment:       comment,
		RecordedBy:    recordedBy,
		RecordedAt:    t.now(),
	}
	if err := t.Subs.RecordQuote(ctx, quote); err != nil {
		return nil, err
	}
	return quote, nil
}

// Transition chuyển trạng thái submission theo đồ thị cho phép.
func (t *SubmissionTracker) Transition(ctx context.Context, ref, to, note string) error {
	from, ok := submissionTransitions[to]
	if !ok {
		return &inventory.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown target status %q", to)}
	}
	return t.Subs.Transition(ctx, ref, from, to, note)
}

// Attach gắn file đính kèm vào submission chưa kết thúc. Gắn lại sẽ thay
// file cũ.
func (t *SubmissionTracker) Attach(ctx context.Context, ref, objectKey string) error {
	return t.Subs.SetAttachment(ctx, ref, objectKey)
}

// SetReminder đặt (hoặc xoá) ngày nhắc lại.
func (t *SubmissionTracker) SetReminder(ctx context.Context, ref string, at *time.Time) error {
	return t.Subs.SetReminderDate(ctx, ref, at)
}

// Delete xoá một submission đã kết thúc.
func (t *SubmissionTracker) Delete(ctx context.Context, ref string) error {
	return t.Subs.Delete(ctx, ref)
}
