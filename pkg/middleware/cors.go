package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4/middleware"
)

// CORSConfig returns the CORS configuration used by the application.
// Centralised here so that both main.go and tests reference the same config.
// Extra origins from configuration (staging, previews) are appended to the
// built-in set.
func CORSConfig(extraOrigins []string) middleware.CORSConfig {
	origins := []string{
		"http://localhost:3000",     // Development
		"http://localhost:5173",     // Development (vite)
		"https://docuforge.app",     // Production
		"https://www.docuforge.app", // Production WWW
	}
	origins = append(origins, extraOrigins...)

	return middleware.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowCredentials: true,
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
		},
	}
}
