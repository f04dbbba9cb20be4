package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/daniil11ru/mdmtrack/cli/tracker/metrics"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var rateLimitExempt = map[string]struct{}{
	"/api/health": {},
	"/metrics":    {},
}

func RateLimitMiddleware(limiter *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := rateLimitExempt[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		if !limiter.Allow() {
			log.WithFields(log.Fields{"ip": c.ClientIP(), "path": c.Request.URL.Path}).Warn("Превышен лимит запросов")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "превышен лимит запросов"})
			return
		}

		c.Next()
	}
}

func RequestMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		latency := time.Since(started)

		metrics.APIRequestDuration.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Observe(latency.Seconds())
		log.WithFields(log.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  status,
			"latency": latency,
		}).Debug("HTTP-запрос обработан")
	}
}
