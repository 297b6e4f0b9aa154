package httpapi

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rollcall/internal/account"
	"rollcall/internal/auth"
)

// Routes mounts the API surface. Everything under the guard requires a valid
// session token; register and login stay public.
func Routes(r *gin.Engine, h *Handler, guard gin.HandlerFunc) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	api.POST("/register", h.Register)
	api.POST("/login", h.Login)

	protected := api.Group("", guard)
	protected.GET("/schedules", h.ListSchedules)
	protected.GET("/attendance/history", h.AttendanceHistory)

	teacherOnly := auth.RequireRole(account.RoleTeacher)
	protected.POST("/schedules", teacherOnly, h.CreateSchedule)
	protected.POST("/generate_qr", teacherOnly, h.GenerateQR)
	protected.GET("/attendance/:schedule_id", teacherOnly, h.ListAttendanceForSchedule)

	protected.POST("/attendance", auth.RequireRole(account.RoleStudent), h.RecordAttendance)
}
