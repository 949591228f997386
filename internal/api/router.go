package api

import (
	"time" // Cache lifetimes

	"campus_wallet/internal/account"      // Account operations
	"campus_wallet/internal/gateway"      // Data gateway
	"campus_wallet/internal/inventory"    // Inventory operations
	"campus_wallet/internal/middleware"   // Auth middleware
	"campus_wallet/internal/notification" // Notification feed
	"campus_wallet/internal/realtime"     // Websocket hub
	"campus_wallet/internal/wallet"       // Wallet services

	"github.com/gin-gonic/gin"                                // Gin web framework
	"github.com/prometheus/client_golang/prometheus/promhttp" // Metrics endpoint
	"github.com/redis/go-redis/v9"                            // Redis client
)

// Deps bundles everything the routes need
type Deps struct {
	Store     *gateway.Store
	Avatars   *gateway.AvatarStore
	Redis     *redis.Client
	Accounts  *account.Service
	Recorder  *wallet.Recorder
	History   *wallet.Aggregator
	Deriver   *notification.Deriver
	Inventory *inventory.Service
	Hub       *realtime.Hub
	JWTSecret string
	CacheTTL  time.Duration // Lifetime of cached admin listings
}

// Routes registers every endpoint on r
func Routes(r *gin.Engine, d Deps) {
	auth := middleware.JWTAuthMiddleware(d.JWTSecret, d.Redis) // JWT guard shared by protected groups

	// Public routes
	r.POST("/user", RegisterHandler(d.Accounts, d.Redis))            // Registration endpoint
	r.POST("/user/login", LoginHandler(d.Accounts))                  // Login endpoint
	r.POST("/user/recovery", RecoveryHandler(d.Accounts))            // Reset token endpoint
	r.POST("/user/recovery/reset", ResetPasswordHandler(d.Accounts)) // Password reset endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))                 // Prometheus metrics
	if d.Avatars != nil {
		r.Static("/avatars", d.Avatars.Dir()) // Public avatar bucket
	}

	// Session and profile routes (protected by JWT)
	userGroup := r.Group("/user", auth)
	userGroup.DELETE("/session", SignOutHandler(d.Accounts))      // Sign-out endpoint
	userGroup.PUT("/password", ChangePasswordHandler(d.Accounts)) // Change password endpoint
	profileGroup := r.Group("/profile", auth)
	profileGroup.GET("", GetProfileHandler(d.Accounts))             // Get profile endpoint
	profileGroup.PUT("", UpdateProfileHandler(d.Accounts, d.Redis)) // Update profile endpoint
	profileGroup.POST("/avatar", UploadAvatarHandler(d.Accounts))   // Avatar upload endpoint

	// Wallet routes (protected by JWT)
	walletGroup := r.Group("/wallet", auth)
	walletGroup.GET("", GetWalletHandler(d.Recorder.Balances()))                            // Get wallet endpoint
	walletGroup.GET("/recipients", SearchRecipientsHandler(d.Recorder))                     // Recipient search endpoint
	walletGroup.POST("/transactions", CreateTransactionHandler(d.Recorder, d.Hub, d.Redis)) // Record transaction endpoint
	walletGroup.GET("/transactions", TransactionHistoryHandler(d.History))                  // Transaction history endpoint
	walletGroup.GET("/transactions/status", HistoryStatusHandler(d.History))                // History state endpoint
	walletGroup.GET("/transactions/export", ExportHistoryHandler(d.History))                // XLSX export endpoint
	walletGroup.GET("/ws", WalletWSHandler(d.Hub, d.Recorder.Balances()))                   // Realtime endpoint

	// Budget and notification routes (protected by JWT)
	budgetGroup := r.Group("/budgets", auth)
	budgetGroup.GET("", ListBudgetsHandler(d.Store))   // List budgets endpoint
	budgetGroup.POST("", CreateBudgetHandler(d.Store)) // Create budget endpoint
	notificationGroup := r.Group("/notifications", auth)
	notificationGroup.GET("", NotificationFeedHandler(d.Deriver))                       // Feed endpoint
	notificationGroup.POST("/:source/:id/read", MarkNotificationReadHandler(d.Deriver)) // Mark read endpoint

	// Inventory routes (protected by JWT)
	inventoryGroup := r.Group("/inventory", auth)
	inventoryGroup.GET("/products", ListProductsHandler(d.Inventory))       // List products endpoint
	inventoryGroup.GET("/products/:serial", GetProductHandler(d.Inventory)) // Barcode lookup endpoint
	inventoryGroup.POST("/products", CreateProductHandler(d.Inventory))     // Create product endpoint
	inventoryGroup.GET("/summary", InventorySummaryHandler(d.Inventory))    // Stock summary endpoint
	inventoryGroup.POST("/stock-out", StockOutHandler(d.Inventory))         // Barcode stock-out endpoint

	// Admin routes (protected, admin only)
	adminGroup := r.Group("/admin", auth, middleware.AdminOnlyMiddleware(d.Store))
	adminGroup.GET("/users", ListUsersHandler(d.Store, d.Redis, d.CacheTTL))               // List users endpoint
	adminGroup.GET("/transactions", ListTransactionsHandler(d.Store, d.Redis, d.CacheTTL)) // List transactions endpoint
}
