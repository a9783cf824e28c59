// server/internal/scheduler/scheduler.go
package scheduler

import (
	"context"
	"encoding/json"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"spare-parts-api-server/config"
	"spare-parts-api-server/internal/inventory"
	"spare-parts-api-server/internal/procurement"
	"spare-parts-api-server/internal/socket"
	"spare-parts-api-server/internal/store"
)

// Scheduler chạy các việc định kỳ: nhắc các submission gửi lâu chưa có
// phản hồi và cảnh báo linh kiện cần đặt lại hàng.
type Scheduler struct {
	cron     *cron.Cron
	subs     *store.SubmissionStore
	pieces   *store.PieceStore
	notifier procurement.Notifier
	hub      *socket.Hub
	cfg      config.SchedulerConfig
	logger   *zap.Logger
}

func New(cfg config.SchedulerConfig, subs *store.SubmissionStore, pieces *store.PieceStore, notifier procurement.Notifier, hub *socket.Hub, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:     cron.New(),
		subs:     subs,
		pieces:   pieces,
		notifier: notifier,
		hub:      hub,
		cfg:      cfg,
		logger:   logger,
	}
}

// Start đăng ký các job và khởi động cron. Biểu thức cron lấy từ cấu hình,
// mặc định chạy mỗi sáng.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("cron", s.cfg.CronSpec))

	if _, err := s.cron.AddFunc(s.cfg.CronSpec, s.runSubmissionReminders); err != nil {
		s.logger.Error("failed to schedule submission reminders", zap.Error(err))
	}
	if _, err := s.cron.AddFunc(s.cfg.CronSpec, s.runReorderAlerts); err != nil {
		s.logger.Error("failed to schedule reorder alerts", zap.Error(err))
	}

	s.cron.Start()
}

// Stop dừng cron.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

// runSubmissionReminders tìm các submission còn SENT quá hạn hoặc đã đến
// ngày nhắc lại và gửi thông báo nhắc. Job chỉ đọc, không đổi trạng thái.
func (s *Scheduler) runSubmissionReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-s.cfg.ReminderAfter())
	stale, err := s.subs.ListStaleSent(ctx, cutoff)
	if err != nil {
		s.logger.Error("failed to list stale submissions", zap.Error(err))
		return
	}

	for i := range stale {
		sub := &stale[i]
		if err := s.notifier.SubmissionReminder(ctx, sub); err != nil {
			s.logger.Error("failed to send submission reminder",
				zap.String("submissionRef", sub.SubmissionRef),
				zap.Error(err),
			)
		}
	}
	if len(stale) > 0 {
		s.logger.Info("submission reminders sent", zap.Int("count", len(stale)))
	}
}

// runReorderAlerts quét các linh kiện tụt dưới ngưỡng tối thiểu mà chưa có
// đơn đang mở, gửi webhook và phát cảnh báo qua WebSocket.
func (s *Scheduler) runReorderAlerts() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pieces, err := s.pieces.ListNeedingReorder(ctx)
	if err != nil {
		s.logger.Error("failed to list pieces needing reorder", zap.Error(err))
		return
	}
	if len(pieces) == 0 {
		return
	}

	if err := s.notifier.ReorderAlert(ctx, pieces); err != nil {
		s.logger.Error("failed to send reorder alert", zap.Error(err))
	}

	for i := range pieces {
		alert := map[string]interface{}{
			"event":    "stock_alert",
			"pieceRef": pieces[i].PieceRef,
			"name":     pieces[i].Name,
			"stockQty": pieces[i].StockQty,
			"minQty":   pieces[i].MinQty,
			"status":   inventory.Status(pieces[i].StockQty, pieces[i].MinQty),
		}
		alertJSON, _ := json.Marshal(alert)
		s.hub.Broadcast(alertJSON)
	}
	s.logger.Info("reorder alerts broadcast", zap.Int("count", len(pieces)))
}
