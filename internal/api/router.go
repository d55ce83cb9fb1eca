package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	swagger "github.com/go-swagno/swagno-fiber/swagger"
	"github.com/saturnino-fabrica-de-software/vigia/internal/api/docs"
	"github.com/saturnino-fabrica-de-software/vigia/internal/api/handler"
	"github.com/saturnino-fabrica-de-software/vigia/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/vigia/internal/database"
	"github.com/saturnino-fabrica-de-software/vigia/internal/ws"
)

type Dependencies struct {
	Employees  handler.EmployeeService
	Cameras    handler.CameraService
	PPE        handler.PPEService
	Alerts     handler.AlertLister
	Dispatcher handler.FrameDispatcher
	Hub        *ws.Hub
	DB         database.Pinger

	// IngestRateLimit caps HTTP frames per camera per minute; zero uses the default
	IngestRateLimit int
}

type Router struct {
	app         *fiber.App
	logger      *slog.Logger
	deps        *Dependencies
	rateLimiter *middleware.RateLimiter
}

// NewRouter builds the app. With nil deps only health and docs are mounted.
func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "Vigia API",
		BodyLimit:    16 * 1024 * 1024,
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	var db database.Pinger
	if r.deps != nil {
		db = r.deps.DB
	}
	healthHandler := handler.NewHealthHandler(db)
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	if r.deps == nil {
		return
	}

	if r.deps.Hub != nil {
		r.app.Get("/ws", ws.UpgradeMiddleware(), ws.Handler(r.deps.Hub))
	}

	api := r.app.Group("/api", middleware.AuditOrigin())

	cameraHandler := handler.NewCameraHandler(r.deps.Cameras)
	api.Post("/camera", cameraHandler.Register)
	api.Get("/cameras", cameraHandler.List)

	r.rateLimiter = middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Max: r.deps.IngestRateLimit,
	})
	frameHandler := handler.NewFrameHandler(r.deps.Dispatcher)
	api.Post("/cameras/:id/frames", r.rateLimiter.Handler(), frameHandler.Ingest)

	ppeHandler := handler.NewPPEHandler(r.deps.PPE)
	api.Post("/setPPE", ppeHandler.Set)
	api.Get("/ppe", ppeHandler.Get)

	employeeHandler := handler.NewEmployeeHandler(r.deps.Employees)
	api.Post("/employees", employeeHandler.Enroll)
	api.Post("/employees/:id/embedding", employeeHandler.EnrollEmbedding)
	api.Get("/employees", employeeHandler.List)

	alertHandler := handler.NewAlertHandler(r.deps.Alerts)
	api.Get("/ppe_alerts", alertHandler.ListPPE)
	api.Get("/unauthorized_alerts", alertHandler.ListUnauthorized)
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	if r.rateLimiter != nil {
		r.rateLimiter.Stop()
	}
	return r.app.Shutdown()
}
