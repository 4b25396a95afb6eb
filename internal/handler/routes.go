package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/dekut-devs/clearance-api/internal/middleware"
	"github.com/dekut-devs/clearance-api/internal/service"
)

// Handlers bundles the API surface for route registration.
type Handlers struct {
	Clearance *ClearanceHandler
	Bookings  *BookingHandler
	Auth      *AuthHandler
	Settings  *SettingsHandler
	Payments  *PaymentHandler
	Uploads   *UploadHandler
}

// RegisterRoutes mounts the API under /api.
func RegisterRoutes(r *gin.Engine, h Handlers, authService *service.AuthService) {
	api := r.Group("/api")

	api.POST("/auth/staff/login", h.Auth.StaffLogin)
	api.POST("/auth/student/login", h.Auth.StudentLogin)
	api.GET("/settings", h.Settings.Get)

	// Upload and download endpoints authenticate via the signed token
	// embedded in the path.
	api.PUT("/uploads/:token", h.Uploads.Upload)
	api.GET("/files/:token", h.Uploads.Download)

	authed := api.Group("", middleware.JWT(authService))
	{
		authed.GET("/auth/me", h.Auth.Me)

		authed.POST("/requests", h.Clearance.Create)
		authed.GET("/requests", h.Clearance.List)
		authed.GET("/requests/export", middleware.RequireAdmin(), h.Clearance.Export)
		authed.GET("/requests/:id", h.Clearance.Get)
		authed.PATCH("/requests/:id/clearance/:department", middleware.DepartmentAccess(), h.Clearance.Decide)
		authed.PATCH("/requests/:id/settings", h.Clearance.UpdateAlertSettings)
		authed.GET("/requests/:id/certificate", h.Clearance.Certificate)
		authed.DELETE("/requests/:id", middleware.RequireAdmin(), h.Clearance.Delete)

		authed.POST("/bookings", h.Bookings.Create)
		authed.GET("/bookings", h.Bookings.List)
		authed.GET("/bookings/:id", h.Bookings.Get)
		authed.PATCH("/bookings/:id", middleware.RequireStaff(), h.Bookings.Update)

		authed.POST("/payments/gown", h.Payments.PayForGown)

		authed.POST("/uploads/sign", h.Uploads.Sign)

		authed.GET("/staff", middleware.RequireAdmin(), h.Auth.ListStaff)
		authed.PUT("/settings", middleware.RequireAdmin(), h.Settings.Update)
	}
}
