package server

import (
	"github.com/labstack/echo/v4"

	"example.com/debt-tracker/internal/handlers"
)

type routes struct {
	auth          *handlers.AuthHandler
	debts         *handlers.DebtHandler
	payments      *handlers.PaymentHandler
	plan          *handlers.PlanHandler
	stats         *handlers.StatsHandler
	achievements  *handlers.AchievementHandler
	notifications *handlers.NotificationHandler
	admin         *handlers.AdminHandler
	health        echo.HandlerFunc

	authMiddleware  echo.MiddlewareFunc
	adminMiddleware echo.MiddlewareFunc
	authRateLimiter echo.MiddlewareFunc
}

func registerRoutes(e *echo.Echo, r routes) {
	e.GET("/health", r.health)

	api := e.Group("/api/v1")
	api.GET("/health", r.health)

	authGroup := api.Group("/auth", r.authRateLimiter)
	authGroup.POST("/register", r.auth.Register)
	authGroup.POST("/login", r.auth.Login)
	authGroup.POST("/refresh", r.auth.Refresh)
	authGroup.POST("/logout", r.auth.Logout)
	authGroup.GET("/me", r.auth.Me, r.authMiddleware)

	debts := api.Group("/debts", r.authMiddleware)
	debts.GET("", r.debts.List)
	debts.POST("", r.debts.Create)
	debts.GET("/upcoming", r.debts.Upcoming)
	debts.GET("/types", r.debts.Types)
	debts.GET("/export/csv", r.debts.ExportCSV)
	debts.GET("/:id", r.debts.Get)
	debts.PUT("/:id", r.debts.Update)
	debts.DELETE("/:id", r.debts.Delete)
	debts.GET("/:id/payments", r.payments.List)
	debts.POST("/:id/payments", r.payments.Create)

	plan := api.Group("/plan", r.authMiddleware)
	plan.GET("/summary", r.plan.Summary)
	plan.GET("/summary/pdf", r.plan.SummaryPDF)

	api.GET("/dashboard", r.stats.Dashboard, r.authMiddleware)

	stats := api.Group("/stats", r.authMiddleware)
	stats.GET("/overview", r.stats.Overview)
	stats.GET("/by-type", r.stats.ByType)
	stats.GET("/monthly-payments", r.stats.MonthlyPayments)

	achievements := api.Group("/achievements", r.authMiddleware)
	achievements.GET("", r.achievements.List)
	achievements.GET("/me", r.achievements.Mine)

	notifications := api.Group("/notifications", r.authMiddleware)
	notifications.GET("/stream", r.notifications.Stream)

	admin := api.Group("/admin", r.authMiddleware, r.adminMiddleware)
	admin.GET("/users", r.admin.ListUsers)
	admin.GET("/usage", r.admin.Usage)
	admin.POST("/badges", r.admin.CreateBadge)
}
