package app

import (
	"net/http"

	"go-hris-iam/internal/auth"
	"go-hris-iam/internal/company"
	"go-hris-iam/internal/credential"
	"go-hris-iam/internal/employee"
	"go-hris-iam/internal/messaging/kafka"
	"go-hris-iam/internal/middleware"
	"go-hris-iam/internal/notification"
	"go-hris-iam/internal/oauth"
	"go-hris-iam/internal/secrettoken"
	"go-hris-iam/internal/shared/counter"
	"go-hris-iam/internal/storage"
	"go-hris-iam/internal/token"
	"go-hris-iam/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Modules holds everything the HTTP surface is built from. BuildApp fills it
// from real infrastructure; tests fill it with in-memory repositories.
type Modules struct {
	Users     user.Repository
	Companies company.Repository
	Employees employee.Repository
	Counter   counter.Repository
	Outbox    kafka.OutboxRepository

	Hasher   credential.Hasher
	Issuer   *token.Issuer
	Secrets  *secrettoken.Factory
	Verifier oauth.Verifier
	Notifier notification.Sender
	Files    storage.FileDeleter
	Redis    *redis.Client

	AppBaseURL string
	Logger     *zap.Logger
}

func registerModules(router *gin.Engine, m Modules) {
	logger := m.Logger
	if logger == nil {
		logger = zap.L()
	}

	// --- Services ---
	sync := employee.NewSynchronizer(employee.SyncDeps{
		Users:      m.Users,
		Employees:  m.Employees,
		Counter:    m.Counter,
		Hasher:     m.Hasher,
		Notifier:   m.Notifier,
		Files:      m.Files,
		Outbox:     m.Outbox,
		AppBaseURL: m.AppBaseURL,
	}, logger)
	employeeService := employee.NewService(m.Employees, sync, logger)
	companyService := company.NewService(m.Companies, m.Outbox, m.Files, logger)
	userService := user.NewService(m.Users, m.Hasher, logger)
	authService := auth.NewService(auth.Deps{
		Users:      m.Users,
		Companies:  m.Companies,
		Employees:  m.Employees,
		Hasher:     m.Hasher,
		Issuer:     m.Issuer,
		Secrets:    m.Secrets,
		Verifier:   m.Verifier,
		Notifier:   m.Notifier,
		AppBaseURL: m.AppBaseURL,
	}, logger)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService, logger)
	employeeHandler := employee.NewHandler(employeeService, logger)
	companyHandler := company.NewHandler(companyService, logger)
	userHandler := user.NewHandler(userService, logger)

	guard := middleware.TenantGuard(m.Issuer, user.NewPrincipalFinder(m.Users))

	router.Use(middleware.RequestID(), middleware.Metrics())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler, guard, logger)
		employee.RegisterRoutes(api, employeeHandler, guard, m.Redis, logger)
		company.RegisterRoutes(api, companyHandler, guard, logger)
		user.RegisterRoutes(api, userHandler, guard, logger)
	}
}
