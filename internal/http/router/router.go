// Package router assembles the Gin engine from the registered domain modules.
package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	apphttp "homesafe_backend/internal/http"
	"homesafe_backend/platform/httpkit"
)

// New builds the Gin engine: global middleware, health endpoint, route
// groups, and one RegisterRoutes call per module.
func New(app *apphttp.App) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(httpkit.RequestID())
	engine.Use(httpkit.RequestLogger(app.Logger))
	engine.Use(httpkit.SecurityHeaders())
	engine.Use(corsMiddleware(app))

	limiter := httpkit.NewIPRateLimiter(50, 100, app.Logger)
	engine.Use(limiter.RateLimit())

	engine.GET("/api/health", healthHandler(app))

	authMiddleware := httpkit.AuthRequired(app.Config)

	v1 := engine.Group("/api/v1")
	protected := v1.Group("")
	protected.Use(authMiddleware)
	admin := v1.Group("/admin")
	admin.Use(authMiddleware, httpkit.RequireRole("admin"))
	internal := v1.Group("/internal")
	internal.Use(authMiddleware, httpkit.RequireRole("service"))

	ctx := &apphttp.RouterContext{
		Engine:         engine,
		V1:             v1,
		Protected:      protected,
		Admin:          admin,
		Internal:       internal,
		Config:         app.Config,
		AuthMiddleware: authMiddleware,
	}

	for _, m := range app.Modules {
		m.RegisterRoutes(ctx)
		app.Logger.Info("module routes registered", "module", m.Name())
	}

	return engine
}

func corsMiddleware(app *apphttp.App) gin.HandlerFunc {
	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: app.Config.GetCORSAllowCreds(),
		MaxAge:           12 * time.Hour,
	}
	if app.Config.GetCORSAllowAll() {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = app.Config.GetCORSOrigins()
	}
	return cors.New(corsCfg)
}

func healthHandler(app *apphttp.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := app.Health.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
