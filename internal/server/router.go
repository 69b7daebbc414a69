package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/promptform/promptform/internal/handlers"
	"github.com/promptform/promptform/internal/middleware"
)

type RouterConfig struct {
	AllowedOrigins    []string
	AuthMiddleware    *middleware.AuthMiddleware
	GenerationHandler *handlers.GenerationHandler
	FormHandler       *handlers.FormHandler
	PublicFormHandler *handlers.PublicFormHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// Public: healthcheck and the shareable form link.
	router.GET("/healthcheck", handlers.HealthCheck)
	router.GET("/f/:id", cfg.PublicFormHandler.Render)
	router.POST("/f/:id/submissions", cfg.PublicFormHandler.Submit)

	// Protected: builder-side API.
	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireAuth())

	api.POST("/forms/generate", cfg.GenerationHandler.Generate)
	api.POST("/forms/generate/clarify", cfg.GenerationHandler.Clarify)

	api.POST("/forms", cfg.FormHandler.Create)
	api.GET("/forms", cfg.FormHandler.List)
	api.GET("/forms/:id", cfg.FormHandler.Get)
	api.PATCH("/forms/:id/accepting", cfg.FormHandler.SetAccepting)
	api.DELETE("/forms/:id", cfg.FormHandler.Delete)
	api.GET("/forms/:id/submissions", cfg.FormHandler.ListSubmissions)
	api.DELETE("/submissions/:id", cfg.FormHandler.DeleteSubmission)

	return router
}
