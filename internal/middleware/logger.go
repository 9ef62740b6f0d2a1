package middleware

import (
	"time"

	"Lee_Microblog/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RequestLogger 替换 gin.Logger，按状态码选日志级别
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		var ev *zerolog.Event
		switch {
		case status >= 500:
			ev = log.Error()
		case status >= 400:
			ev = log.Warn()
		default:
			ev = log.Debug()
		}
		if len(c.Errors) > 0 {
			ev = ev.Err(c.Errors.Last())
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("took", time.Since(start)).
			Str("ip", c.ClientIP()).
			Uint64("user", UserID(c)).
			Msg("request")
	}
}

// Metrics 按路由模板统计，未匹配的路由归为 unmatched
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
