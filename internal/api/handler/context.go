package handler

import "github.com/labstack/echo/v4"

// actor names the operator behind a request for audit logging. Without the
// admin guard there is no identity and the request is attributed to "anonymous".
func actor(c echo.Context) string {
	if username, ok := c.Get("username").(string); ok && username != "" {
		return username
	}
	return "anonymous"
}
