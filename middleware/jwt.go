package middleware

import (
	"aims/config"
	"aims/services"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// GenerateJWT generates a JWT token for an operator. Token issuance lives in
// the surrounding platform; this helper exists for tooling and tests.
func GenerateJWT(userID uint, name, role, email string) (string, error) {
	claims := jwt.MapClaims{
		"userId": userID,
		"name":   name,
		"role":   role,
		"email":  email,
		"iat":    time.Now().Unix(),
		"exp":    time.Now().Add(24 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	jwtSecret := []byte(config.AppConfig.JWTKey)

	return token.SignedString(jwtSecret)
}

// JWTMiddleware is a middleware to check for valid JWT token in the request
func JWTMiddleware(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status":  false,
			"message": "Missing or invalid Authorization header",
		})
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status":  false,
			"message": "Invalid Authorization header format",
		})
	}

	tokenString := authHeader[len("Bearer "):]

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		jwtSecret := []byte(config.AppConfig.JWTKey)
		return jwtSecret, nil
	})

	if err != nil || !token.Valid {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status":  false,
			"message": "Invalid or expired token",
		})
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["userId"] == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status":  false,
			"message": "Invalid token payload",
		})
	}

	// JWT claims are typically stored as float64, so cast it
	userID := claims["userId"].(float64)
	c.Locals("userId", uint(userID))

	return c.Next()
}

func JsonResponse(c *fiber.Ctx, statusCode int, status bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Validation failed!", errors)
}

// ServiceErrorResponse maps the typed service errors onto HTTP responses so
// the operator sees "cannot approve: ..." instead of a generic failure.
func ServiceErrorResponse(c *fiber.Ctx, err error) error {
	var (
		invalidState *services.InvalidStateError
		validation   *services.ValidationError
		notFound     *services.NotFoundError
		conflict     *services.ConflictError
		gateway      *services.GatewayError
	)

	switch {
	case errors.As(err, &validation):
		return ValidationErrorResponse(c, validation.Fields)
	case errors.As(err, &notFound):
		return JsonResponse(c, fiber.StatusNotFound, false, notFound.Error(), nil)
	case errors.As(err, &invalidState):
		return JsonResponse(c, fiber.StatusConflict, false, invalidState.Error(), nil)
	case errors.As(err, &conflict):
		return JsonResponse(c, fiber.StatusConflict, false, conflict.Error(), nil)
	case errors.As(err, &gateway):
		code := fiber.StatusBadGateway
		if gateway.Timeout {
			code = fiber.StatusGatewayTimeout
		}
		return JsonResponse(c, code, false, "Payment gateway unavailable, please retry!", nil)
	default:
		return JsonResponse(c, fiber.StatusInternalServerError, false, "Something went wrong!", nil)
	}
}
