package authValidator

import (
	"github.com/gofiber/fiber/v2"

	authService "lms/services/auth"
	"lms/validators"
)

func Register() fiber.Handler {
	return validators.Body[authService.RegisterInput]("validatedRegister")
}

func Login() fiber.Handler {
	return validators.Body[authService.LoginInput]("validatedLogin")
}

func ChangePassword() fiber.Handler {
	return validators.Body[authService.ChangePasswordInput]("validatedChangePassword")
}

func LoginHistory() fiber.Handler {
	return validators.Query[authService.HistoryFilter]("validatedLoginHistory")
}
