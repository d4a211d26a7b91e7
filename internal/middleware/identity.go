package middleware

// identity.go provides helpers shared across middleware files for
// reading the identity claims JWTAuth stored on the context.  When no
// token is present "anon" is returned so rate-limit keys still group
// sensibly.

import "github.com/labstack/echo/v4"

// currentOperator returns the operator id stored by JWTAuth, or
// "anon" for unauthenticated requests.
func currentOperator(c echo.Context) string {
	if v := c.Get("operator"); v != nil {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return "anon"
}

// currentTenant returns the tenant id stored by JWTAuth, or the empty
// string for unauthenticated requests.
func currentTenant(c echo.Context) string {
	if v := c.Get("tenant_id"); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
