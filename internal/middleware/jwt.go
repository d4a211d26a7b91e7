package middleware // reusable HTTP middleware for the register API

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// JWTAuth returns an Echo middleware that validates a Bearer access
// token and injects its identity claims into the request context.
// The token is minted by the surrounding storefront's auth system;
// this service only verifies it.  Handlers read the stored values via
// c.Get: "operator" (the subject), "tenant_id", "register_id" and
// "role".  Missing tenant or register claims are rejected here so
// handlers never have to re-check them.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			// Parse with HS256 and our secret; reject any other
			// signing method.
			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}

			tenant, _ := claims["tenant_id"].(string)
			registerID, _ := claims["register_id"].(string)
			if tenant == "" || registerID == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token missing tenant or register claim"})
			}

			c.Set("operator", claims["sub"])
			c.Set("tenant_id", tenant)
			c.Set("register_id", registerID)
			c.Set("role", claims["role"])
			return next(c)
		}
	}
}
