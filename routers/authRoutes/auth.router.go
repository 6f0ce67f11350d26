package authRoutes

import (
	"github.com/gofiber/fiber/v2"

	authControllers "lms/controllers/auth"
	"lms/middleware"
	authValidators "lms/validators/auth"
)

func SetupAuthRoutes(api fiber.Router, h *authControllers.Handler) {
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authValidators.Register(), h.Register)
	authGroup.Post("/login", authValidators.Login(), h.Login)
	authGroup.Get("/login/history", middleware.JWTMiddleware, authValidators.LoginHistory(), h.LoginHistoryList)
	authGroup.Put("/password", middleware.JWTMiddleware, authValidators.ChangePassword(), h.ChangeLoginPassword)
}
