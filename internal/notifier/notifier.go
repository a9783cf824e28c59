// server/internal/notifier/notifier.go
package notifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"spare-parts-api-server/config"
	"spare-parts-api-server/internal/models"
)

// Client gửi các sự kiện mua hàng đến webhook thông báo (email/chat do hệ
// thống bên ngoài quyết định). Tất cả lời gọi là best-effort: caller chỉ
// ghi log hoặc gom thành cảnh báo khi lỗi.
type Client struct {
	httpClient *resty.Client
}

// NewClient dựng client webhook từ cấu hình. URL rỗng tạo client tắt tiếng,
// mọi lời gọi thành no-op.
func NewClient(cfg config.NotifierConfig) *Client {
	if cfg.WebhookURL == "" {
		return &Client{}
	}

	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.WebhookURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(10 * time.Second)

	return &Client{httpClient: restyClient}
}

func (c *Client) post(ctx context.Context, event string, payload map[string]interface{}) error {
	if c.httpClient == nil {
		return nil
	}
	payload["event"] = event
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		Post("")
	if err != nil {
		return fmt.Errorf("post %s notification: %w", event, err)
	}
	if resp.IsError() {
		return fmt.Errorf("post %s notification: webhook returned %s", event, resp.Status())
	}
	return nil
}

// SubmissionSent báo một yêu cầu báo giá vừa gửi cho nhà cung cấp.
func (c *Client) SubmissionSent(ctx context.Context, sub *models.Submission) error {
	return c.post(ctx, "submission_sent", map[string]interface{}{
		"submissionRef": sub.SubmissionRef,
		"supplierRef":   sub.SupplierRef,
		"recipients":    sub.RecipientEmails,
		"subject":       sub.Subject,
		"lineCount":     len(sub.Lines),
	})
}

// SubmissionReminder nhắc một yêu cầu báo giá gửi đã lâu chưa có phản hồi.
func (c *Client) SubmissionReminder(ctx context.Context, sub *models.Submission) error {
	return c.post(ctx, "submission_reminder", map[string]interface{}{
		"submissionRef": sub.SubmissionRef,
		"supplierRef":   sub.SupplierRef,
		"recipients":    sub.RecipientEmails,
		"sentAt":        sub.SentAt,
	})
}

// ApprovalDecided báo kết quả phê duyệt cho người đã yêu cầu mua.
func (c *Client) ApprovalDecided(ctx context.Context, piece *models.Piece) error {
	return c.post(ctx, "approval_decided", map[string]interface{}{
		"pieceRef":    piece.PieceRef,
		"pieceName":   piece.Name,
		"status":      piece.ApprovalStatus,
		"note":        piece.ApprovalNote,
		"decidedBy":   piece.ApprovalActor,
		"requestedBy": piece.ApprovalRequestedBy,
	})
}

// OrderPlaced báo một đơn đặt hàng vừa được ghi nhận.
func (c *Client) OrderPlaced(ctx context.Context, piece *models.Piece, qty int) error {
	return c.post(ctx, "order_placed", map[string]interface{}{
		"pieceRef":  piece.PieceRef,
		"pieceName": piece.Name,
		"qty":       qty,
		"unitPrice": piece.UnitPrice,
	})
}

// ReorderAlert báo danh sách linh kiện đã tụt dưới ngưỡng cần đặt lại.
func (c *Client) ReorderAlert(ctx context.Context, pieces []models.Piece) error {
	items := make([]map[string]interface{}, 0, len(pieces))
	for _, p := range pieces {
		items = append(items, map[string]interface{}{
			"pieceRef":  p.PieceRef,
			"pieceName": p.Name,
			"stockQty":  p.StockQty,
			"minQty":    p.MinQty,
		})
	}
	return c.post(ctx, "reorder_alert", map[string]interface{}{
		"pieces": items,
	})
}
