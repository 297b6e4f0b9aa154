package httpapi

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"rollcall/internal/account"
	"rollcall/internal/attendance"
	"rollcall/internal/auth"
	"rollcall/internal/schedule"
	"rollcall/internal/store"
)

// Handler exposes the attendance service over HTTP.
type Handler struct {
	accounts   *account.Service
	schedules  *schedule.Service
	attendance *attendance.Service
	db         *store.DB
	redis      *store.Redis
}

// New creates a handler over the three domain services.
func New(accounts *account.Service, schedules *schedule.Service, att *attendance.Service, db *store.DB, rds *store.Redis) *Handler {
	return &Handler{accounts: accounts, schedules: schedules, attendance: att, db: db, redis: rds}
}

func apiError(c *gin.Context, status int, kind, msg string) {
	c.JSON(status, gin.H{"error": msg, "code": kind})
}

// fail maps domain sentinels onto the wire taxonomy. Anything unrecognized is
// a storage failure and reported generically.
func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, account.ErrNotFound):
		apiError(c, http.StatusNotFound, "not_found", "account not found")
	case errors.Is(err, account.ErrDuplicateUsername):
		apiError(c, http.StatusBadRequest, "duplicate_username", "username already exists")
	case errors.Is(err, account.ErrLocked):
		apiError(c, http.StatusForbidden, "account_locked", "account is locked, try again later")
	case errors.Is(err, account.ErrInvalidCredentials):
		apiError(c, http.StatusUnauthorized, "invalid_credentials", "invalid password")
	case errors.Is(err, account.ErrInvalidRole):
		apiError(c, http.StatusBadRequest, "invalid_role", "role must be Teacher or Student")
	case errors.Is(err, schedule.ErrInvalidWindow):
		apiError(c, http.StatusBadRequest, "invalid_window", "schedule end must be after start")
	case errors.Is(err, schedule.ErrNotFound):
		apiError(c, http.StatusNotFound, "not_found", "schedule not found")
	case errors.Is(err, attendance.ErrInvalidToken):
		apiError(c, http.StatusBadRequest, "invalid_token", "invalid attendance token")
	case errors.Is(err, attendance.ErrTokenExpired):
		apiError(c, http.StatusBadRequest, "token_expired", "attendance token has expired")
	case errors.Is(err, attendance.ErrDuplicate):
		apiError(c, http.StatusBadRequest, "duplicate_attendance", "attendance already recorded")
	default:
		log.Printf("storage failure: %v", err)
		apiError(c, http.StatusInternalServerError, "storage_failure", "storage failure")
	}
}

// ---------- Health ----------

func (h *Handler) Healthz(c *gin.Context) {
	redisHealthy := h.redis.Healthy(c.Request.Context())
	dbHealthy := h.db != nil && h.db.Client.PingContext(c.Request.Context()) == nil
	status := http.StatusOK
	if !redisHealthy || !dbHealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
}

// ---------- Auth ----------

type registerRequest struct {
	Username  string `json:"username" binding:"required"`
	Password  string `json:"password" binding:"required"`
	UserType  string `json:"user_type" binding:"required"`
	Name      string `json:"name"`
	StudentID string `json:"student_id"`
	Section   string `json:"section"`
}

func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	_, err := h.accounts.Register(c.Request.Context(), req.Username, req.Password, req.UserType, req.Name, req.StudentID, req.Section)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "user registered successfully"})
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	token, acct, err := h.accounts.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		loginAttempts.WithLabelValues(loginResult(err)).Inc()
		h.fail(c, err)
		return
	}
	loginAttempts.WithLabelValues("success").Inc()
	c.JSON(http.StatusOK, gin.H{
		"token":     token,
		"user_type": acct.Role,
		"name":      acct.Name,
		"section":   acct.Section,
	})
}

func loginResult(err error) string {
	switch {
	case errors.Is(err, account.ErrNotFound):
		return "not_found"
	case errors.Is(err, account.ErrLocked):
		return "locked"
	case errors.Is(err, account.ErrInvalidCredentials):
		return "bad_credentials"
	default:
		return "error"
	}
}

// ---------- Schedules ----------

type createScheduleRequest struct {
	Section   string    `json:"section" binding:"required"`
	Subject   string    `json:"subject" binding:"required"`
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
}

func (h *Handler) CreateSchedule(c *gin.Context) {
	var req createScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	acct := auth.CurrentAccount(c)
	sched, err := h.schedules.Create(c.Request.Context(), acct.ID, req.Section, req.Subject, req.StartTime, req.EndTime)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, sched)
}

func (h *Handler) ListSchedules(c *gin.Context) {
	acct := auth.CurrentAccount(c)
	scheds, err := h.schedules.ListFor(c.Request.Context(), acct)
	if err != nil {
		h.fail(c, err)
		return
	}
	if scheds == nil {
		scheds = []schedule.Schedule{}
	}
	c.JSON(http.StatusOK, scheds)
}

type generateQRRequest struct {
	ScheduleID int64 `json:"schedule_id" binding:"required"`
}

func (h *Handler) GenerateQR(c *gin.Context) {
	var req generateQRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	acct := auth.CurrentAccount(c)
	token, expiry, err := h.schedules.IssueToken(c.Request.Context(), acct.ID, req.ScheduleID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"qr_code": token, "expiry": expiry})
}

// ---------- Attendance ----------

type recordAttendanceRequest struct {
	QRCode string `json:"qr_code" binding:"required"`
}

func (h *Handler) RecordAttendance(c *gin.Context) {
	var req recordAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	acct := auth.CurrentAccount(c)
	rec, conf, err := h.attendance.Record(c.Request.Context(), acct.ID, req.QRCode)
	if err != nil {
		h.fail(c, err)
		return
	}
	attendanceRecorded.Inc()
	c.JSON(http.StatusOK, gin.H{
		"message":   "attendance recorded successfully",
		"schedule":  conf,
		"timestamp": rec.RecordedAt,
	})
}

func (h *Handler) ListAttendanceForSchedule(c *gin.Context) {
	scheduleID, err := strconv.ParseInt(c.Param("schedule_id"), 10, 64)
	if err != nil {
		apiError(c, http.StatusBadRequest, "bad_request", "schedule_id must be an integer")
		return
	}
	acct := auth.CurrentAccount(c)
	entries, err := h.attendance.ListForSchedule(c.Request.Context(), acct.ID, scheduleID)
	if err != nil {
		h.fail(c, err)
		return
	}
	if entries == nil {
		entries = []attendance.ScheduleEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

func (h *Handler) AttendanceHistory(c *gin.Context) {
	acct := auth.CurrentAccount(c)
	entries, err := h.attendance.HistoryFor(c.Request.Context(), acct)
	if err != nil {
		h.fail(c, err)
		return
	}
	if entries == nil {
		entries = []attendance.HistoryEntry{}
	}
	c.JSON(http.StatusOK, entries)
}
