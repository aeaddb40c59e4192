package handlers

import (
	"net/http"

	"cardcms/internal/logger"
	"cardcms/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Login is the only unauthenticated API endpoint
	api := router.Group("/api")
	api.POST("/login", h.login)

	// Card CRUD (protected)
	cards := api.Group("/cards", h.authMiddleware)
	{
		cards.GET("", h.listCards)
		cards.POST("", h.createCard)
		cards.PUT("/:id", h.updateCard)
		cards.DELETE("/:id", h.deleteCard)
	}

	// Content snapshot feed (HTTP upgrade, same port)
	router.GET("/ws", h.wsConnect)

	return router
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}
