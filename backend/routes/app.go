package routes

import (
	"errors"

	"academy/backend/metrics"
	"academy/backend/middleware"
	"academy/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// NewApp builds the fiber application with the shared middleware stack and every route.
func NewApp(d Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "academy",
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: d.Cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	if d.Logger != nil {
		app.Use(middleware.LoggingMiddleware(d.Logger))
	}
	app.Use(metrics.Middleware())

	SetupRoutes(app, d)
	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return utils.Error(c, code, err)
}
