package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"realestate-agent/internal/metrics"
)

// Metrics records request counts and latency per route template
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			metrics.ObserveHTTP(route, c.Request().Method, status, time.Since(start))
			return err
		}
	}
}
