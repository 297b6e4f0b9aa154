package httpapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rollcall_login_attempts_total",
		Help: "Login attempts by outcome.",
	}, []string{"result"})

	attendanceRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rollcall_attendance_records_total",
		Help: "Attendance records successfully written.",
	})
)
