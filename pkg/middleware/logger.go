package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/gNutty/vesselradar/pkg/appctx"
	"github.com/labstack/echo/v4"
)

// AccessLog writes one line per request at a level matching its status.
// Successful requests under a quiet prefix, such as health checks, are not logged.
func AccessLog(logger ectologger.Logger, quietPrefixes ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}

			req, res := c.Request(), c.Response()
			if res.Status < http.StatusBadRequest && hasPrefix(req.URL.Path, quietPrefixes) {
				return nil
			}

			ctx := req.Context()
			log := logger.WithContext(ctx).WithFields(map[string]any{
				"request_id":  appctx.GetRequestID(ctx),
				"method":      req.Method,
				"route":       c.Path(),
				"query":       req.URL.RawQuery,
				"status":      res.Status,
				"duration_ms": time.Since(start).Milliseconds(),
				"bytes":       res.Size,
			})
			switch {
			case res.Status >= http.StatusInternalServerError:
				log.Error("Request failed")
			case res.Status >= http.StatusBadRequest:
				log.Warn("Request rejected")
			default:
				log.Info("Request")
			}
			return nil
		}
	}
}

func hasPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
