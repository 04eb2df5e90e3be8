package middleware

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"realestate-agent/internal/logging"
)

// RequestLogger writes one structured line per request through the service logger
func RequestLogger() echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := map[string]interface{}{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency_ms": v.Latency.Milliseconds(),
				"remote_ip":  v.RemoteIP,
			}
			if id, ok := c.Get("request_id").(string); ok {
				fields["request_id"] = id
			}

			logger := logging.GetGlobalLogger()
			if v.Error != nil {
				logger.WithError(v.Error).Error("HTTP request failed", fields)
				return nil
			}
			logger.Info("HTTP request", fields)
			return nil
		},
	})
}
