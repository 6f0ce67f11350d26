// Package routers assembles the Fiber application.
package routers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	authControllers "lms/controllers/auth"
	courseControllers "lms/controllers/course"
	"lms/middleware"
	"lms/routers/authRoutes"
	"lms/routers/courseRoutes"
	"lms/routers/uploadRoutes"
	authService "lms/services/auth"
	courseService "lms/services/course"
	"lms/storage"
)

type Deps struct {
	APIPrefix      string
	RequestTimeout time.Duration
	AccessLog      bool

	Auth    *authService.Service
	Courses *courseService.Service
	// Local is set when uploads are kept on disk and served by this process.
	Local *storage.LocalStorage
}

func New(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler,
		BodyLimit:    50 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",        // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))
	if deps.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
		}))
	}

	if deps.Local != nil {
		uploadRoutes.SetupUploadRoutes(app, deps.Local)
	}

	api := app.Group(deps.APIPrefix)
	if deps.RequestTimeout > 0 {
		api.Use(middleware.Timeout(deps.RequestTimeout))
	}

	authRoutes.SetupAuthRoutes(api, authControllers.New(deps.Auth))

	courses := courseControllers.New(deps.Courses)
	courseRoutes.SetupAdminCourseRoutes(api, courses)
	courseRoutes.SetupCourseRoutes(api, courses)

	return app
}
