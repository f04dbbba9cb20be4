package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

type Options struct {
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
}

type Controller struct {
	router *gin.Engine
}

func NewController(handler *Handler, options Options) (*Controller, error) {
	if handler == nil {
		return nil, fmt.Errorf("обработчик API не задан")
	}

	router := gin.New()
	router.Use(gin.Recovery(), RequestMetricsMiddleware())

	if len(options.AllowedOrigins) > 0 {
		corsMiddleware, err := newCors(options.AllowedOrigins)
		if err != nil {
			return nil, err
		}
		router.Use(corsMiddleware)
	}

	if options.RateLimitRPS > 0 {
		burst := options.RateLimitBurst
		if burst <= 0 {
			burst = 1
		}
		router.Use(RateLimitMiddleware(rate.NewLimiter(rate.Limit(options.RateLimitRPS), burst)))
	}

	api := router.Group("/api")
	{
		api.GET("/health", handler.GetHealth)
		api.GET("/locations", handler.GetLocations)
		api.GET("/devices", handler.GetDevices)
		api.GET("/device/:number/history", handler.GetDeviceHistory)
		api.POST("/snapshot_all", handler.SnapshotAllDevices)
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return &Controller{router: router}, nil
}

func newCors(origins []string) (gin.HandlerFunc, error) {
	config := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}

	for _, origin := range origins {
		if origin == "*" {
			config.AllowAllOrigins = true
			return cors.New(config), nil
		}
		if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return nil, fmt.Errorf("некорректный источник CORS: %q", origin)
		}
	}
	config.AllowOrigins = origins

	return cors.New(config), nil
}

func (c *Controller) Handler() http.Handler {
	return c.router
}

func (c *Controller) Run(port int32) error {
	return c.router.Run(fmt.Sprintf(":%d", port))
}
