package middleware

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"lms/apperr"
	"lms/config"
	"lms/models"
)

const authLocal = "auth"

// GenerateJWT generates a JWT token for the user
func GenerateJWT(userID uint, name, role, email string) (string, error) {
	claims := jwt.MapClaims{
		"userId": userID,
		"name":   name,
		"role":   role,
		"email":  email,
		"iat":    time.Now().Unix(),                     // issued at
		"exp":    time.Now().Add(24 * time.Hour).Unix(), // expiry 24h
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	jwtSecret := []byte(config.AppConfig.JWTKey)

	return token.SignedString(jwtSecret)
}

// JWTMiddleware is a middleware to check for valid JWT token in the request
func JWTMiddleware(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return ErrorResponse(c, apperr.Unauthorized("Missing or invalid Authorization header"))
	}

	// The token should be prefixed with "Bearer "
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ErrorResponse(c, apperr.Unauthorized("Invalid Authorization header format"))
	}
	tokenString := authHeader[len("Bearer "):]

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.AppConfig.JWTKey), nil
	})
	if err != nil || !token.Valid {
		return ErrorResponse(c, apperr.Unauthorized("Invalid or expired token"))
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ErrorResponse(c, apperr.Unauthorized("Invalid token payload"))
	}
	// JWT numbers decode as float64
	userID, ok := claims["userId"].(float64)
	if !ok || userID <= 0 {
		return ErrorResponse(c, apperr.Unauthorized("Invalid token payload"))
	}
	role, _ := claims["role"].(string)
	if role == "" {
		role = models.RoleUser
	}

	c.Locals("userId", uint(userID))
	c.Locals(authLocal, models.AuthContext{UserID: uint(userID), Role: role})

	return c.Next()
}

// RequireAdmin rejects callers whose token does not carry the admin role.
// It must run after JWTMiddleware.
func RequireAdmin(c *fiber.Ctx) error {
	auth, ok := c.Locals(authLocal).(models.AuthContext)
	if !ok {
		return ErrorResponse(c, apperr.Unauthorized("Unauthorized!"))
	}
	if !auth.IsAdmin() {
		return ErrorResponse(c, apperr.Forbidden("You do not have permission to access this resource!"))
	}
	return c.Next()
}

// Auth returns the identity stored by JWTMiddleware.
func Auth(c *fiber.Ctx) models.AuthContext {
	auth, _ := c.Locals(authLocal).(models.AuthContext)
	return auth
}
