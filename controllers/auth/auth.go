package authController

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"lms/apperr"
	"lms/middleware"
	authService "lms/services/auth"
)

type Handler struct {
	svc *authService.Service
}

func New(svc *authService.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Register(c *fiber.Ctx) error {
	reqData := c.Locals("validatedRegister").(*authService.RegisterInput)

	user, err := h.svc.Register(c.UserContext(), *reqData)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User registered successfully.", user)
}

func (h *Handler) Login(c *fiber.Ctx) error {
	reqData := c.Locals("validatedLogin").(*authService.LoginInput)

	ip := c.IP()
	if forwarded := c.Get("X-Forwarded-For"); forwarded != "" {
		ip = strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}

	user, err := h.svc.Login(c.UserContext(), *reqData, authService.Client{IP: ip, Device: c.Get("User-Agent")})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	token, err := middleware.GenerateJWT(user.ID, user.Name, user.Role, user.Email)
	if err != nil {
		return middleware.ErrorResponse(c, apperr.Internal(err, "Failed to generate token"))
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful.", fiber.Map{
		"user":  user,
		"token": token,
	})
}

func (h *Handler) LoginHistoryList(c *fiber.Ctx) error {
	filter := c.Locals("validatedLoginHistory").(*authService.HistoryFilter)

	history, pg, err := h.svc.LoginHistory(c.UserContext(), middleware.Auth(c), *filter)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login History List.", fiber.Map{
		"loginTracking": history,
		"pagination":    pg,
	})
}

func (h *Handler) ChangeLoginPassword(c *fiber.Ctx) error {
	reqData := c.Locals("validatedChangePassword").(*authService.ChangePasswordInput)

	if err := h.svc.ChangePassword(c.UserContext(), middleware.Auth(c), *reqData); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Password changed successfully.", nil)
}
