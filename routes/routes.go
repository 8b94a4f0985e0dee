package routes

import (
	"water-delivery-api/handlers"
	"water-delivery-api/middleware"
	"water-delivery-api/models"
	"water-delivery-api/realtime"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, hub *realtime.Hub) {
	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		// Auth
		public.POST("/auth/register", handlers.Register)
		public.POST("/auth/login", handlers.Login)
		public.POST("/auth/forgot-password", handlers.ForgotPassword)
		public.POST("/auth/reset-password", handlers.ResetPassword)

		// Price table & lifecycle info (no auth needed)
		public.GET("/prices", handlers.GetPrices)
		public.GET("/state-machine", handlers.GetStateMachineInfo)
	}

	// ── Authenticated routes ───────────────────────────────────────
	auth := r.Group("/api")
	auth.Use(middleware.AuthRequired())
	{
		auth.GET("/profile", handlers.GetProfile)
		auth.PUT("/profile", handlers.UpdateProfile)
		auth.PUT("/profile/password", handlers.ChangePassword)

		auth.GET("/notifications", handlers.GetMyNotifications)
		auth.PUT("/notifications/:id/read", handlers.MarkNotificationRead)
	}

	// Realtime channel: per-user room
	ws := r.Group("/ws")
	ws.Use(middleware.AuthRequired())
	{
		ws.GET("", hub.HandleWebSocket)
	}

	// ── Customer routes ────────────────────────────────────────────
	customer := r.Group("/api")
	customer.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleCustomer))
	{
		customer.POST("/orders", handlers.PlaceOrder)
		customer.GET("/orders", handlers.GetMyOrders)
		customer.GET("/orders/:id", handlers.GetOrderDetail)
		customer.PUT("/orders/:id/cancel", handlers.CancelOrder)

		customer.POST("/subscriptions", handlers.CreateSubscription)
		customer.GET("/subscriptions", handlers.GetMySubscriptions)
		customer.PUT("/subscriptions/:id/cancel", handlers.CancelSubscription)

		customer.POST("/payments", handlers.CreatePayment)
		customer.POST("/ratings", handlers.CreateRating)
		customer.POST("/issues", handlers.CreateIssue)
		customer.GET("/issues", handlers.GetMyIssues)
		customer.POST("/bottle-returns", handlers.CreateBottleReturn)
	}

	// ── Worker routes ──────────────────────────────────────────────
	worker := r.Group("/api/worker")
	worker.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleWorker, models.RoleAdmin))
	{
		worker.GET("/orders", handlers.GetMyDeliveries)
		worker.PUT("/orders/:id/status", handlers.UpdateDeliveryStatus)
	}

	// ── Admin routes ───────────────────────────────────────────────
	admin := r.Group("/api/admin")
	admin.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleAdmin))
	{
		admin.GET("/orders", handlers.AdminGetAllOrders)
		admin.PUT("/orders/:id/assign", handlers.AssignOrder)
		admin.POST("/orders/auto-assign", handlers.AutoAssignOrders)

		admin.GET("/dashboard", handlers.AdminDashboard)
		admin.GET("/reports", handlers.AdminReports)

		admin.GET("/users", handlers.AdminGetAllUsers)
		admin.DELETE("/users/:id", handlers.AdminDeleteUser)
		admin.GET("/workers", handlers.GetWorkers)
		admin.PUT("/workers/:id", handlers.UpdateWorker)

		admin.POST("/promos", handlers.AdminCreatePromo)
		admin.GET("/promos", handlers.AdminListPromos)
		admin.PUT("/promos/:id", handlers.AdminUpdatePromo)
		admin.DELETE("/promos/:id", handlers.AdminDeletePromo)

		admin.GET("/issues", handlers.AdminGetAllIssues)
		admin.PUT("/issues/:id", handlers.AdminUpdateIssue)

		admin.POST("/branches", handlers.AdminCreateBranch)
		admin.GET("/branches", handlers.AdminListBranches)
		admin.PUT("/branches/:id", handlers.AdminUpdateBranch)

		admin.POST("/pricing-rules", handlers.AdminCreatePricingRule)
		admin.GET("/pricing-rules", handlers.AdminListPricingRules)
		admin.DELETE("/pricing-rules/:id", handlers.AdminDeletePricingRule)

		admin.PUT("/settings/ordering", handlers.SetOrderingPaused)
		admin.POST("/subscriptions/run", handlers.RunSubscriptions)
	}
}
