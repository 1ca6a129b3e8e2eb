// Package app wires configuration, storage, services and HTTP handlers
// into a runnable server.
package app

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"gerador/internal/config"
	"gerador/internal/database"
	"gerador/internal/handlers"
	"gerador/internal/logger"
	"gerador/internal/metrics"
	"gerador/internal/middleware"
	"gerador/internal/repositories"
	"gerador/internal/services"
	"gerador/pkg/rabbitmq"
)

var customLog = logger.NewLogger()

// MemoryDSN selects the in-memory repositories instead of a database.
const MemoryDSN = "memory"

// App is a configured server together with the resources it owns.
type App struct {
	Fiber *fiber.App
	cfg   *config.Config
	db    *gorm.DB         // nil with MemoryDSN
	mq    *rabbitmq.Client // nil when RABBITMQ_URL is empty
}

type repos struct {
	users repositories.UserRepository
	forms repositories.FormRepository
	logs  repositories.ProcessingLogRepository
}

// NewApp opens the configured storage and message broker and builds the
// HTTP server. A broker that cannot be reached is logged and skipped.
func NewApp(cfg *config.Config) (*App, error) {
	logger.SetLevel(cfg.LogLevel)
	a := &App{cfg: cfg}

	var r repos
	if cfg.DatabaseDSN == MemoryDSN {
		customLog.Warnln("Using in-memory repositories, data is lost on restart")
		r = repos{
			users: repositories.NewMockUserRepository(),
			forms: repositories.NewMockFormRepository(),
			logs:  repositories.NewMockProcessingLogRepository(),
		}
	} else {
		db, err := database.Open(cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		a.db = db
		r = repos{
			users: repositories.NewGORMUserRepository(db, cfg.QueryTimeout),
			forms: repositories.NewGORMFormRepository(db, cfg.QueryTimeout),
			logs:  repositories.NewGORMProcessingLogRepository(db, cfg.QueryTimeout),
		}
	}

	var events services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Exchange: cfg.RabbitMQExchange})
		if err != nil {
			customLog.Warnf("RabbitMQ unavailable, events disabled: %v", err)
		} else {
			a.mq = mq
			events = mq
		}
	}

	a.Fiber = a.buildServer(r, events)
	return a, nil
}

func (a *App) buildServer(r repos, events services.EventPublisher) *fiber.App {
	authService := services.NewAuthService(r.users, a.cfg.JWTSecret, a.cfg.JWTExpiration)
	logService := services.NewProcessingLogService(r.logs)
	formService := services.NewFormService(r.forms, services.NewSubmissionPolicy(r.forms), logService, events)
	userService := services.NewUserService(r.users, r.forms, r.logs)
	limiter := middleware.NewRateLimiter(a.cfg.SubmitRatePerSecond, a.cfg.SubmitRateBurst)

	app := fiber.New(fiber.Config{
		AppName:      "Gerador Forms API",
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${locals:requestid} | ${status} | ${latency} | ${method} ${path}\n",
	}))
	app.Use(cors.New(corsConfig(a.cfg.CORSOrigins)))
	app.Use(middleware.Metrics())

	app.Get("/health", a.handleHealth)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	apiV1 := app.Group("/api/v1")
	handlers.NewAuthHandler(authService).RegisterRoutes(apiV1)
	handlers.NewFormHandler(formService, authService, limiter).RegisterRoutes(apiV1)
	handlers.NewUserHandler(userService, authService).RegisterRoutes(apiV1)
	handlers.NewProcessingLogHandler(logService, authService).RegisterRoutes(apiV1)

	return app
}

func corsConfig(origins string) cors.Config {
	cfg := cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}
	// Credentials cannot be combined with a wildcard origin.
	if !strings.Contains(origins, "*") {
		cfg.AllowCredentials = true
	}
	return cfg
}

// errorHandler renders errors no handler turned into a response.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	} else {
		customLog.WithField("request_id", c.Locals("requestid")).Errorf("Unhandled error on %s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(code).JSON(fiber.Map{"message": message})
}

func (a *App) handleHealth(c *fiber.Ctx) error {
	status := fiber.Map{
		"status":   "healthy",
		"time":     time.Now().Format(time.RFC3339),
		"database": "memory",
		"rabbitmq": "disabled",
	}
	code := fiber.StatusOK

	if a.db != nil {
		status["database"] = "connected"
		if sqlDB, err := a.db.DB(); err != nil || sqlDB.Ping() != nil {
			status["database"] = "unreachable"
			status["status"] = "degraded"
			code = fiber.StatusServiceUnavailable
		}
	}
	if a.mq != nil {
		status["rabbitmq"] = "connected"
	}
	return c.Status(code).JSON(status)
}

// StartConsumers starts the notification consumer when a broker is configured.
func (a *App) StartConsumers() error {
	if a.mq == nil {
		return nil
	}
	customLog.Infoln("Starting RabbitMQ consumer for form notifications...")
	return a.mq.ConsumeNotifications(rabbitmq.LogNotification)
}

// Listen serves HTTP on the configured port until Shutdown.
func (a *App) Listen() error {
	customLog.Infof("Starting server on port %s", a.cfg.Port)
	return a.Fiber.Listen(a.cfg.Port)
}

// Shutdown stops the server and releases the broker and database.
func (a *App) Shutdown() error {
	var errs []error
	if err := a.Fiber.Shutdown(); err != nil {
		errs = append(errs, err)
	}
	if a.mq != nil {
		if err := a.mq.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.db != nil {
		if err := database.Close(a.db); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
