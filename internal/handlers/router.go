package handlers

import (
	"printfleet/internal/app"
	"printfleet/internal/handlers/middleware"
	"printfleet/internal/logger"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	middleware middleware.Middleware
	log        logger.Logger
	router     fiber.Router
}

func Router(router fiber.Router, app *app.App) (err error) {
	router.Use(app.Middleware.TraceID())

	setupWebSocketRoute(router, app)

	api := router.Group("/api")
	HealthHandler(api, app.Config)

	protected := api.Group("/", app.Middleware.RequireAuth(app.IdentityService))
	NewScheduleHandler(*app, protected).Register()
	NewMaintainHandler(*app, protected).Register()
	NewPrinterHandler(*app, protected).Register()
	NewUploadHandler(*app, protected).Register()

	return nil
}

func setupWebSocketRoute(router fiber.Router, app *app.App) {
	router.Use("/ws", app.Websocket.Upgrade)
	router.Get("/ws", app.Websocket.Handler())
}
