// Package app wires configuration, repositories and services into the fiber
// application. main and the integration tests both build the server here.
package app

import (
	"time"

	"timely/internal/config"
	"timely/internal/handlers"
	"timely/internal/middleware"
	"timely/internal/repositories"
	"timely/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// Deps are the collaborators of the application. Events and LimiterStorage
// are optional.
type Deps struct {
	Config         *config.Config
	UserRepo       repositories.UserRepository
	SessionRepo    repositories.SessionRepository
	Logger         *zap.Logger
	Events         services.EventPublisher
	LimiterStorage fiber.Storage
	// Now overrides the clock of the services; nil means time.Now.
	Now func() time.Time
}

// App is the assembled HTTP application.
type App struct {
	Fiber          *fiber.App
	Auth           *services.AuthService
	Activity       *services.ActivityService
	SessionHandler *handlers.SessionHandler
}

// New builds the fiber application with middleware and routes.
func New(d Deps) *App {
	cfg := d.Config
	now := d.Now
	if now == nil {
		now = time.Now
	}

	issuer := services.NewSessionIssuer(cfg.JWTSecret, cfg.SessionTTL).WithClock(now)
	hasher := services.NewSecretHasher(cfg.BcryptCost)
	authService := services.NewAuthService(d.UserRepo, issuer, hasher, cfg.Location, d.Logger).WithClock(now)
	activityService := services.NewActivityService(d.UserRepo, d.SessionRepo, cfg.Location, d.Logger).WithClock(now)
	userService := services.NewUserService(d.UserRepo)
	if d.Events != nil {
		authService.WithEvents(d.Events)
		activityService.WithEvents(d.Events)
	}

	cookie := middleware.NewSessionCookie(cfg.CookieSecure, cfg.CookieSameSite)
	authRequired := middleware.AuthRequired(authService, cookie, d.Logger)
	optionalAuth := middleware.OptionalAuth(authService, cookie, d.Logger)

	f := fiber.New(fiber.Config{
		AppName:               "timely",
		DisableStartupMessage: true,
		ErrorHandler:          handlers.ErrorHandler(d.Logger),
	})

	f.Use(recover.New())
	f.Use(helmet.New())
	f.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: true,
	}))
	f.Use(logger.New())

	api := f.Group("/api")
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   now().Format(time.RFC3339),
		})
	})

	limits := cfg.RateLimit
	api.Use(middleware.RateLimit("api", limits.APIMax, limits.APIWindow, d.LimiterStorage, false,
		"Too many requests from this IP, please try again later."))
	tokenLimiter := middleware.RateLimit("token", limits.TokenGenMax, limits.TokenGenWindow, d.LimiterStorage, false,
		"Too many accounts created from this IP, please try again later.")
	authLimiter := middleware.RateLimit("auth", limits.AuthMax, limits.AuthWindow, d.LimiterStorage, true,
		"Too many authentication attempts, please try again later.")

	authHandler := handlers.NewAuthHandler(authService, cookie)
	authHandler.RegisterRoutes(api, handlers.AuthRoutes{
		Register: tokenLimiter,
		Login:    authLimiter,
		Optional: optionalAuth,
		Required: authRequired,
	})

	handlers.NewUserHandler(userService).RegisterRoutes(api, authRequired)

	sessionHandler := handlers.NewSessionHandler(activityService)
	sessionHandler.RegisterRoutes(api, authRequired)

	return &App{
		Fiber:          f,
		Auth:           authService,
		Activity:       activityService,
		SessionHandler: sessionHandler,
	}
}
