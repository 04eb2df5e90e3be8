package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"realestate-agent/pkg/models"
	"realestate-agent/pkg/utils"
)

// RequestValidation assigns a request id and enforces the body size limit
func RequestValidation(bodyLimit int64) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = utils.GenerateRequestID()
			}
			c.Set("request_id", requestID)
			c.Response().Header().Set(echo.HeaderXRequestID, requestID)

			if c.Request().Method == http.MethodPost && bodyLimit > 0 {
				if c.Request().ContentLength > bodyLimit {
					return c.JSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{
						Error:     "request_too_large",
						Detail:    "Request body too large",
						RequestID: requestID,
						Timestamp: time.Now(),
					})
				}
				// chunked bodies carry no Content-Length
				c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, bodyLimit)
			}

			return next(c)
		}
	}
}
