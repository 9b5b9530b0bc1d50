package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewRouter builds the gin engine with middleware and every route.
func NewRouter(h *Handlers, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), AccessLog(logger))
	RegisterRoutes(r, h)
	return r
}

func RegisterRoutes(r *gin.Engine, h *Handlers) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/health", h.health)
		api.GET("/cards", h.listCards)
		api.GET("/deck", h.getDeck)
		api.POST("/deck/add", h.addCard)
		api.POST("/deck/remove", h.removeCard)
		api.POST("/deck/faction", h.setFactions)
		api.POST("/deck/name", h.setName)
		api.GET("/deck/export", h.exportDeck)
		api.GET("/deck/qr", h.deckQR)
		api.GET("/deck/image", h.deckImage)
	}
}
