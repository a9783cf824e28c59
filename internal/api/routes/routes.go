// server/internal/api/routes/routes.go
package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"spare-parts-api-server/config"
	"spare-parts-api-server/internal/api/handlers"
	"spare-parts-api-server/internal/api/middleware"
	"spare-parts-api-server/internal/models"
	"spare-parts-api-server/internal/procurement"
	"spare-parts-api-server/internal/s3"
	"spare-parts-api-server/internal/socket"
	"spare-parts-api-server/internal/store"
)

// Engines gom các nghiệp vụ kho mà router cần.
type Engines struct {
	Approval   *procurement.ApprovalGate
	Tracker    *procurement.SubmissionTracker
	Saga       *procurement.OrderPlacementSaga
	Reception  *procurement.Reception
	Withdrawal *procurement.KitWithdrawalEngine
}

// SetupRouter nhận vào các thành phần phụ thuộc và thiết lập các route
func SetupRouter(
	cfg config.Config,
	db *mongo.Database,
	pieces *store.PieceStore,
	subs *store.SubmissionStore,
	ledger *store.LedgerStore,
	engines Engines,
	s3Uploader *s3.Uploader,
	wsHub *socket.Hub,
) *gin.Engine {
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(cors.Default())

	// Khởi tạo các handlers
	userHandler := &handlers.UserHandler{DB: db}
	pieceHandler := &handlers.PieceHandler{DB: db, Pieces: pieces, Engine: engines.Withdrawal}
	approvalHandler := &handlers.ApprovalHandler{Gate: engines.Approval}
	submissionHandler := &handlers.SubmissionHandler{Tracker: engines.Tracker, Store: subs, Uploader: s3Uploader}
	orderHandler := &handlers.OrderHandler{Saga: engines.Saga, Reception: engines.Reception, Hub: wsHub}
	groupHandler := &handlers.GroupHandler{DB: db, Engine: engines.Withdrawal}
	ledgerHandler := &handlers.LedgerHandler{Ledger: ledger}
	catalogHandler := &handlers.CatalogHandler{DB: db}
	webSocketHandler := &handlers.WebSocketHandler{Hub: wsHub}

	apiV1 := router.Group("/api/v1")
	{
		// Route cho WebSocket
		apiV1.GET("/ws", webSocketHandler.ServeWs)

		// === CÁC ROUTE KHÔNG YÊU CẦU XÁC THỰC ===
		auth := apiV1.Group("/auth")
		{
			auth.POST("/login", userHandler.Login)
		}

		// === CÁC ROUTE YÊU CẦU XÁC THỰC (PROTECTED) ===

		// Nhóm API quản trị, yêu cầu vai trò "admin"
		admin := apiV1.Group("/admin")
		admin.Use(middleware.Authenticate())
		admin.Use(middleware.Authorize(models.RoleAdmin))
		{
			admin.POST("/users", userHandler.CreateUser)
			admin.GET("/users", userHandler.GetAllUsers)
			admin.PUT("/users/:email", userHandler.UpdateUser)
			admin.DELETE("/users/:email", userHandler.DeleteUser)
		}

		// Nhóm các API nghiệp vụ chính
		businessRoutes := apiV1.Group("/")
		businessRoutes.Use(middleware.Authenticate())
		businessRoutes.Use(middleware.Authorize(models.RoleAdmin, models.RoleStorekeeper, models.RoleViewer))
		{
			businessRoutes.POST("/auth/change-password", userHandler.ChangePassword)

			// Quản lý linh kiện
			pieceRoutes := businessRoutes.Group("/pieces")
			{
				// Route chỉ đọc cho mọi vai trò
				pieceRoutes.GET("/", pieceHandler.GetAllPieces)
				pieceRoutes.GET("/toorder", pieceHandler.GetPiecesToOrder)
				pieceRoutes.GET("/onorder", pieceHandler.GetPiecesOnOrder)
				pieceRoutes.GET("/stats", pieceHandler.GetStats)
				pieceRoutes.GET("/:ref", pieceHandler.GetPieceByRef)
				pieceRoutes.GET("/:ref/movements", ledgerHandler.GetMovementsByPiece)

				// Route ghi cho admin và storekeeper
				writePieceRoutes := pieceRoutes.Group("/")
				writePieceRoutes.Use(middleware.Authorize(models.RoleAdmin, models.RoleStorekeeper))
				{
					writePieceRoutes.POST("/", pieceHandler.CreatePiece)
					writePieceRoutes.PUT("/:ref", pieceHandler.UpdatePiece)
					writePieceRoutes.DELETE("/:ref", pieceHandler.DeletePiece)
					writePieceRoutes.POST("/:ref/quick-withdraw", pieceHandler.QuickWithdraw)

					// Đặt và nhận hàng
					writePieceRoutes.POST("/:ref/order", orderHandler.PlaceOrder)
					writePieceRoutes.POST("/:ref/receive", orderHandler.ReceiveTotal)
					writePieceRoutes.POST("/:ref/receive-partial", orderHandler.ReceivePartial)

					// Phê duyệt mua: mọi người gửi yêu cầu, chỉ admin quyết định
					writePieceRoutes.POST("/:ref/approval/submit", approvalHandler.SubmitApproval)
				}

				approvalDecisionRoutes := pieceRoutes.Group("/")
				approvalDecisionRoutes.Use(middleware.Authorize(models.RoleAdmin))
				{
					approvalDecisionRoutes.POST("/:ref/approval/approve", approvalHandler.ApprovePiece)
					approvalDecisionRoutes.POST("/:ref/approval/refuse", approvalHandler.RefusePiece)
					approvalDecisionRoutes.POST("/:ref/approval/reset", approvalHandler.ResetApproval)
				}
			}

			// Yêu cầu báo giá (submissions)
			submissionRoutes := businessRoutes.Group("/submissions")
			{
				submissionRoutes.GET("/", submissionHandler.GetAllSubmissions)
				submissionRoutes.GET("/:ref", submissionHandler.GetSubmissionByRef)
				submissionRoutes.GET("/:ref/attachment", submissionHandler.GetAttachmentURL)

				writeSubmissionRoutes := submissionRoutes.Group("/")
				writeSubmissionRoutes.Use(middleware.Authorize(models.RoleAdmin, models.RoleStorekeeper))
				{
					writeSubmissionRoutes.POST("/", submissionHandler.CreateSubmission)
					writeSubmissionRoutes.POST("/:ref/quotes", submissionHandler.RecordQuote)
					writeSubmissionRoutes.PUT("/:ref/status", submissionHandler.UpdateSubmissionStatus)
					writeSubmissionRoutes.PUT("/:ref/reminder", submissionHandler.SetReminder)
					writeSubmissionRoutes.POST("/:ref/attachment", submissionHandler.UploadAttachment)
					writeSubmissionRoutes.DELETE("/:ref", submissionHandler.DeleteSubmission)
				}
			}

			// Bộ linh kiện (kits)
			groupRoutes := businessRoutes.Group("/groups")
			{
				groupRoutes.GET("/", groupHandler.GetAllGroups)
				groupRoutes.GET("/:ref", groupHandler.GetGroupByRef)

				writeGroupRoutes := groupRoutes.Group("/")
				writeGroupRoutes.Use(middleware.Authorize(models.RoleAdmin, models.RoleStorekeeper))
				{
					writeGroupRoutes.POST("/", groupHandler.CreateGroup)
					writeGroupRoutes.PUT("/:ref", groupHandler.UpdateGroup)
					writeGroupRoutes.DELETE("/:ref", groupHandler.DeleteGroup)
					writeGroupRoutes.POST("/:ref/withdraw", groupHandler.WithdrawKit)
				}
			}

			// Sổ cái nhập xuất
			businessRoutes.GET("/movements", ledgerHandler.GetMovements)

			// Danh mục phụ
			suppliers := businessRoutes.Group("/suppliers")
			{
				suppliers.GET("/", catalogHandler.GetAllSuppliers)

				writeSuppliers := suppliers.Group("/")
				writeSuppliers.Use(middleware.Authorize(models.RoleAdmin, models.RoleStorekeeper))
				{
					writeSuppliers.POST("/", catalogHandler.CreateSupplier)
					writeSuppliers.PUT("/:ref", catalogHandler.UpdateSupplier)
					writeSuppliers.DELETE("/:ref", catalogHandler.DeleteSupplier)
				}
			}

			manufacturers := businessRoutes.Group("/manufacturers")
			{
				manufacturers.GET("/", catalogHandler.GetAllManufacturers)

				writeManufacturers := manufacturers.Group("/")
				writeManufacturers.Use(middleware.Authorize(models.RoleAdmin, models.RoleStorekeeper))
				{
					writeManufacturers.POST("/", catalogHandler.CreateManufacturer)
				}
			}

			departments := businessRoutes.Group("/departments")
			{
				departments.GET("/", catalogHandler.GetAllDepartments)

				writeDepartments := departments.Group("/")
				writeDepartments.Use(middleware.Authorize(models.RoleAdmin, models.RoleStorekeeper))
				{
					writeDepartments.POST("/", catalogHandler.CreateDepartment)
				}
			}
		}
	}

	return router
}
