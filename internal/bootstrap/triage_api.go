package bootstrap

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"

	httpadapter "triage_server/adapter/in/http"
	"triage_server/config"
	"triage_server/infra/middleware"
)

// NewAPI assembles the fiber app over an existing dependency graph.
func NewAPI(cfg *config.Config, deps *Dependencies) *fiber.App {
	log := deps.Log

	app := fiber.New(fiber.Config{
		ErrorHandler:          middleware.ErrorHandler(log),
		DisableStartupMessage: cfg.IsProduction(),

		ReadBufferSize:  16384,
		WriteBufferSize: 16384,

		// go-json is substantially faster than encoding/json for these
		// payload shapes.
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,

		BodyLimit: cfg.BodyLimitMB * 1024 * 1024,
	})

	// Global middleware stack (order matters)
	app.Use(middleware.Recover(log))
	app.Use(middleware.RequestID())
	app.Use(middleware.UserID())
	app.Use(middleware.RequestLogger(log))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, X-Request-ID, X-User-ID",
	}))
	app.Use(compress.New())

	httpadapter.NewHealthHandler(deps.DB, deps.Redis).Register(app)

	api := app.Group("/api/v1")
	if cfg.RateLimitPerMin > 0 {
		api.Use(middleware.NewRateLimiter(cfg.RateLimitPerMin, time.Minute).Handler())
	}
	httpadapter.NewClassifyHandler(deps.Pipeline, deps.EmailRepo, deps.Settings, deps.ResultCache).Register(api)
	if deps.Views != nil {
		httpadapter.NewQueueHandler(deps.Views).Register(api)
	}
	if deps.Settings != nil {
		httpadapter.NewSettingsHandler(deps.Settings).Register(api)
	}

	return app
}
