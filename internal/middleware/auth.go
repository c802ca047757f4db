package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// AdminKeyMiddleware gates the admin listing routes on the shared operator
// secret presented in the X-Admin-Key header. Exact string comparison.
func AdminKeyMiddleware(adminKey string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if adminKey == "" || c.Request().Header.Get("X-Admin-Key") != adminKey {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			}
			return next(c)
		}
	}
}
