package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/userhub/account-api/internal/api/handler"
	"github.com/userhub/account-api/internal/api/middleware"
	"github.com/userhub/account-api/internal/core/ports"
	"github.com/userhub/account-api/internal/core/service"
	mongodb "github.com/userhub/account-api/internal/infrastructure/db/mongo"
	redisdb "github.com/userhub/account-api/internal/infrastructure/db/redis"
)

// Deps bundles the collaborators the router wires into handlers.
type Deps struct {
	DB        *mongo.Database
	Redis     *redis.Client
	Hasher    ports.CredentialHasher
	Tokens    ports.TokenService
	Files     ports.FileStore
	UploadDir string
	Logger    zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("accounts"))

	// --- Dependencies ---
	accountRepo := mongodb.NewAccountRepository(deps.DB)
	limiter := redisdb.NewLoginLimiter(deps.Redis, 0, 0)
	accountService := service.NewAccountService(accountRepo, deps.Hasher, deps.Tokens, limiter, deps.Logger)
	accountHandler := handler.NewAccountHandler(accountService, deps.Files)
	authMiddleware := middleware.Auth(deps.Tokens)

	// --- Account routes ---
	e.POST("/register", accountHandler.Register)
	e.POST("/login", accountHandler.Login)
	e.PUT("/change-password", accountHandler.ChangePassword, authMiddleware)
	e.PUT("/user/:id/photo", accountHandler.UpdateProfilePicture, authMiddleware)
	e.PUT("/user/:id", accountHandler.UpdateUser, authMiddleware)
	e.DELETE("/user/:id", accountHandler.DeleteUser, authMiddleware)

	// --- Static profile pictures ---
	e.Static("/uploads", deps.UploadDir)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.DB, deps.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/docs/*", echoswagger.WrapHandler)

	return e
}
