package app

import (
	"database/sql"
	"net/http"

	"go-attendance/internal/attendance"
	"go-attendance/internal/audit"
	"go-attendance/internal/calendar"
	"go-attendance/internal/device"
	"go-attendance/internal/employee"
	"go-attendance/internal/messaging/kafka"
	"go-attendance/internal/middleware"
	"go-attendance/internal/payroll"
	"go-attendance/internal/rbac"
	"go-attendance/internal/rbac/infra"
	"go-attendance/internal/rbac/rbac_http"
	"go-attendance/internal/shared/clock"
	"go-attendance/internal/shared/lock"
	"go-attendance/internal/timesheet"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	cfg Config,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
	logger *zap.Logger,
) error {
	zone, err := clock.NewZone(cfg.TZOffset, clock.System())
	if err != nil {
		return err
	}
	locker := lock.NewRedis(rdb)

	// --- Repositories ---
	attendanceRepo := attendance.NewRepository(gormDB)
	auditRepo := audit.NewRepository(gormDB)
	calendarRepo := calendar.NewRepository(gormDB)
	deviceRepo := device.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)
	payrollRepo := payroll.NewRepository(gormDB)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(enforcer, logger)
	auth := middleware.AuthMiddleware(cfg.JWTSecret)

	// --- Services ---
	// The cache is built first: attendance, calendar and employee invalidate
	// through it, and the payroll repository answers the lock checks.
	timesheetCache := timesheet.NewCache(rdb)

	auditService := audit.NewService(auditRepo, logger)
	employeeService := employee.NewService(db, employeeRepo, timesheetCache, logger)
	deviceService := device.NewService(db, deviceRepo, locker, auditService, outboxRepo, logger)
	attendanceService := attendance.NewService(db, attendanceRepo, locker, auditService, payrollRepo, timesheetCache, zone, logger)
	calendarService := calendar.NewService(db, calendarRepo, locker, auditService, outboxRepo, payrollRepo, timesheetCache, zone, logger)
	timesheetService := timesheet.NewService(attendanceService, calendarService, employeeRepo, timesheetCache, zone, logger)
	payrollService := payroll.NewService(db, payrollRepo, employeeRepo, timesheetService, calendarService, locker, auditService, outboxRepo, zone, logger)

	// --- Handlers ---
	attendanceHandler := attendance.NewHandler(attendanceService)
	auditHandler := audit.NewHandler(auditService)
	calendarHandler := calendar.NewHandler(calendarService)
	deviceHandler := device.NewHandler(deviceService)
	employeeHandler := employee.NewHandler(employeeService, logger)
	payrollHandler := payroll.NewHandler(payrollService)
	rbacHandler := rbac.NewHandler(rbacService)
	timesheetHandler := timesheet.NewHandler(timesheetService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		attendance.RegisterRoutes(api, attendanceHandler, rbacService, auth, rdb, rate.Limit(cfg.CheckInRate), logger)
		audit.RegisterRoutes(api, auditHandler, rbacService, auth, logger)
		calendar.RegisterRoutes(api, calendarHandler, rbacService, auth, logger)
		device.RegisterRoutes(api, deviceHandler, rbacService, auth, logger)
		employee.RegisterRoutes(api, employeeHandler, rbacService, auth, logger)
		payroll.RegisterRoutes(api, payrollHandler, rbacService, auth, rdb, logger)
		timesheet.RegisterRoutes(api, timesheetHandler, rbacService, auth, logger)
		rbac_http.RegisterRoutes(api, rbacHandler, auth)
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return nil
}
