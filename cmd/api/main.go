// server/cmd/api/main.go
package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"spare-parts-api-server/config"
	"spare-parts-api-server/internal/api/routes"
	"spare-parts-api-server/internal/auth"
	"spare-parts-api-server/internal/database"
	"spare-parts-api-server/internal/notifier"
	"spare-parts-api-server/internal/procurement"
	"spare-parts-api-server/internal/s3"
	"spare-parts-api-server/internal/scheduler"
	"spare-parts-api-server/internal/socket"
	"spare-parts-api-server/internal/store"
	"spare-parts-api-server/pkg/logger"
)

func main() {
	// 1. Load configuration
	_ = godotenv.Load()
	cfg, err := config.LoadConfig("./config")
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}

	zapLogger := logger.Must(logger.New())
	defer zapLogger.Sync()

	auth.SetSecret(cfg.JWT.Secret)

	// 2. Kết nối MongoDB
	db, err := database.Connect(context.Background(), cfg.Mongo.URI, cfg.Mongo.DBName)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	// 3. Index và dữ liệu khởi tạo
	if err := database.EnsureIndexes(context.Background(), db); err != nil {
		log.Fatalf("Failed to ensure indexes: %v", err)
	}
	if err := database.SeedAdmin(db); err != nil {
		log.Fatalf("Failed to seed admin: %v", err)
	}

	// 4. Khởi tạo các store
	pieces := store.NewPieceStore(db)
	subs := store.NewSubmissionStore(db)
	ledger := store.NewLedgerStore(db)

	// 5. Các thành phần phụ: webhook, websocket hub, S3
	notifyClient := notifier.NewClient(cfg.Notifier)
	wsHub := socket.NewHub()

	s3Uploader, err := s3.NewUploader(cfg.S3)
	if err != nil {
		log.Fatalf("Failed to initialize S3 uploader: %v", err)
	}

	// 6. Các engine nghiệp vụ
	engines := routes.Engines{
		Approval:   procurement.NewApprovalGate(pieces, notifyClient, logger.Named(zapLogger, "approval")),
		Tracker:    procurement.NewSubmissionTracker(subs, pieces, notifyClient, logger.Named(zapLogger, "submission")),
		Saga:       procurement.NewOrderPlacementSaga(pieces, subs, ledger, notifyClient, logger.Named(zapLogger, "order")),
		Reception:  procurement.NewReception(pieces, ledger, logger.Named(zapLogger, "reception")),
		Withdrawal: procurement.NewKitWithdrawalEngine(pieces, ledger, logger.Named(zapLogger, "withdrawal")),
	}

	// 7. Cron nhắc báo giá và cảnh báo đặt hàng lại
	sched := scheduler.New(cfg.Scheduler, subs, pieces, notifyClient, wsHub, logger.Named(zapLogger, "scheduler"))
	sched.Start()
	defer sched.Stop()

	// 8. Truyền tất cả các thành phần cần thiết vào router
	router := routes.SetupRouter(cfg, db, pieces, subs, ledger, engines, s3Uploader, wsHub)

	// 9. Start server
	zapLogger.Info("starting API server", zap.String("port", cfg.Server.Port))
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
