// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wayfarer/internal/http/handlers"
	"wayfarer/internal/http/middleware"
	"wayfarer/internal/service"
)

func NewRouter(hub *service.Hub) http.Handler {
	r := gin.New()
	r.Use(middleware.Logging(), middleware.Recovery())

	sessionHandler := handlers.NewSessionHandler(hub)
	r.POST("/api/sessions", sessionHandler.Create)
	r.GET("/api/sessions/:id", sessionHandler.Get)
	r.DELETE("/api/sessions/:id", sessionHandler.End)
	r.POST("/api/sessions/:id/message", sessionHandler.Message)
	r.POST("/api/sessions/:id/plan", sessionHandler.BuildPlan)
	r.GET("/api/sessions/:id/plan", sessionHandler.GetPlan)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	return r
}
