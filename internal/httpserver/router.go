package httpserver

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if len(deps.AllowedOrigins) > 0 {
		// Cookies only flow cross-origin when origins are listed explicitly.
		corsCfg.AllowOrigins = deps.AllowedOrigins
		corsCfg.AllowCredentials = true
	} else {
		corsCfg.AllowAllOrigins = true
	}
	if err := corsCfg.Validate(); err != nil {
		return nil, err
	}
	router.Use(cors.New(corsCfg))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	h := &cartHandlers{svc: deps.CartSvc, logger: logger, cookies: deps.Cookies}
	router.POST("/cart", h.create)
	router.GET("/cart", h.get)
	router.POST("/cart/lines", h.addLines)
	router.PUT("/cart/lines", h.updateLines)
	router.DELETE("/cart/lines", h.removeLines)
	router.POST("/cart/coupons", h.applyCoupon)
	router.DELETE("/cart/coupons/:code", h.removeCoupon)

	return router, nil
}
