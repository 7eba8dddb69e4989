package observability

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// unmatchedRoute labels requests that hit no registered route so probes for
// arbitrary paths cannot grow the metric label set.
const unmatchedRoute = "unmatched"

// RequestLogger logs one line per request. Paths listed in quiet are logged at
// debug level when they succeed.
func RequestLogger(logger zerolog.Logger, quiet ...string) gin.HandlerFunc {
	quietSet := make(map[string]struct{}, len(quiet))
	for _, p := range quiet {
		quietSet[p] = struct{}{}
	}
	return func(c *gin.Context) {
		start := time.Now()
		upgrade := isUpgrade(c)
		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		var event *zerolog.Event
		switch {
		case status >= 500:
			event = logger.Error()
		case status >= 400:
			event = logger.Warn()
		default:
			if _, ok := quietSet[path]; ok {
				event = logger.Debug()
			} else {
				event = logger.Info()
			}
		}

		event = event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP())
		if id := c.Query("session"); id != "" {
			event = event.Str("session", id)
		}
		if upgrade {
			event = event.Bool("websocket", true)
		} else {
			event = event.Int("bytes", c.Writer.Size())
		}
		event.Msg("http_request")
	}
}

// RequestMetricsMiddleware records request counts and latency per route.
func RequestMetricsMiddleware(node string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		RecordHTTPRequest(node, c.Request.Method, routeLabel(c), c.Writer.Status(), time.Since(start))
	}
}

func routeLabel(c *gin.Context) string {
	if path := c.FullPath(); path != "" {
		return path
	}
	return unmatchedRoute
}

func isUpgrade(c *gin.Context) bool {
	return strings.EqualFold(c.GetHeader("Upgrade"), "websocket")
}
