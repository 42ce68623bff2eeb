package middleware

import (
	"log/slog"
	"slices"

	"rental-backend/internal/pkg/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewCORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	corsCfg := cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     cfg.AllowMethods,
		AllowHeaders:     cfg.AllowHeaders,
		ExposeHeaders:    exposeRequestID(cfg.ExposeHeaders),
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}
	slog.Info("cors configured", "allow_origins", cfg.AllowOrigins, "expose_headers", corsCfg.ExposeHeaders)
	return cors.New(corsCfg)
}

// Browsers can read the request id only when it is exposed.
func exposeRequestID(headers []string) []string {
	if slices.Contains(headers, RequestIDHeader) {
		return headers
	}
	return append(slices.Clone(headers), RequestIDHeader)
}
