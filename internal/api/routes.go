package api

import (
	"github.com/gin-gonic/gin"

	"urbaneye/backend/internal/api/handler"
	"urbaneye/backend/internal/auth"
	"urbaneye/backend/internal/models"
)

// RegisterRoutes mounts the full HTTP surface on the engine.
func RegisterRoutes(r *gin.Engine, h *handler.Handler) {
	secret := h.Config.JWTSecret

	r.GET("/health", h.Health)
	r.GET("/health/ml", h.MLHealth)

	a := r.Group("/api/auth")
	{
		a.POST("/signup", h.Signup)
		a.POST("/login", h.Login)
		a.POST("/admin/signup", h.AdminSignup)
		a.POST("/admin/login", h.AdminLogin)
		// Legacy route names kept for older clients; same functions, no
		// route-table tricks.
		a.POST("/admin-signup", h.AdminSignup)
		a.POST("/admin-login", h.AdminLogin)
	}

	authed := r.Group("/api", auth.Middleware(secret))
	{
		authed.GET("/auth/me", h.Me)

		authed.POST("/complaints", h.CreateComplaint)
		authed.GET("/complaints", h.ListComplaints)
		authed.GET("/complaints/stats/overview", h.StatsOverview)
		authed.GET("/complaints/:id", h.GetComplaint)
		authed.PUT("/complaints/:id", h.UpdateComplaint)
		authed.DELETE("/complaints/:id", h.DeleteComplaint)
	}

	admin := r.Group("/api", auth.Middleware(secret, models.RoleAdmin))
	{
		admin.PATCH("/complaints/:id/status", h.UpdateStatus)
	}

	r.GET("/ws/notifications", auth.Middleware(secret, models.RoleAdmin), h.ServeNotifications)
}
