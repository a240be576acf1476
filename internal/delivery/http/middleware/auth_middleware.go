package middleware

import (
	"net/http"
	"strings"

	"bizhub/internal/domain/entity"
	"bizhub/internal/domain/service"

	"github.com/labstack/echo/v4"
)

// Context keys set by Authenticate for downstream handlers.
const (
	ContextKeyUserID      = "userID"
	ContextKeyAccountType = "accountType"
)

// AuthMiddleware provides middleware for JWT authentication and authorization.
type AuthMiddleware struct {
	tokenSvc service.TokenService
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc}
}

// Authenticate validates the bearer access token and stores the caller's
// identity on the request context.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Authorization header is missing"})
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid token format, must be Bearer token"})
		}

		claims, err := m.tokenSvc.ValidateAccessToken(tokenString)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or expired token"})
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyAccountType, claims.AccountType)

		return next(c)
	}
}

// RequireAccountType gates a route group to accounts inside the scope. It
// must be used AFTER the Authenticate middleware.
func (m *AuthMiddleware) RequireAccountType(scope entity.AccountScope) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			accountType, ok := c.Get(ContextKeyAccountType).(entity.AccountType)
			if !ok {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "Permission denied: account type missing"})
			}

			if !scope.Allows(accountType) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "Permission denied: '" + accountType.String() + "' accounts cannot use this endpoint"})
			}

			return next(c)
		}
	}
}
