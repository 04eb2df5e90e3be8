package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"realestate-agent/internal/logging"
	"realestate-agent/pkg/models"
	"realestate-agent/pkg/utils"
)

var validate = validator.New()

// Analyzer is the part of the analysis service the handler needs
type Analyzer interface {
	Analyze(ctx context.Context, criteria models.SearchCriteria) (*models.AnalysisResult, error)
}

// AnalyzeHandler runs a synchronous property search and market analysis
func AnalyzeHandler(svc Analyzer) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		reqID := requestID(c)
		logger := logging.LogWithRequestID(reqID)

		logger.Info("Analyze request received")

		criteria := models.NewSearchCriteria()
		if err := c.Bind(&criteria); err != nil {
			logger.WithError(err).Warn("Failed to bind request")

			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				return respondError(c, reqID, &utils.CustomError{
					Code:    http.StatusRequestEntityTooLarge,
					Type:    "request_too_large",
					Message: "Request body too large",
				})
			}

			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &typeErr) {
				return respondError(c, reqID, utils.NewValidationError("field "+typeErr.Field+" must be of type "+typeErr.Type.String()))
			}

			return respondError(c, reqID, &utils.CustomError{
				Code:    http.StatusBadRequest,
				Type:    "invalid_request",
				Message: "Invalid request format",
			})
		}

		if err := validate.Struct(&criteria); err != nil {
			logger.WithError(err).Warn("Request validation failed")
			return respondError(c, reqID, utils.NewValidationError(err.Error()))
		}

		result, err := svc.Analyze(c.Request().Context(), criteria)
		if err != nil {
			logger.WithError(err).Error("Analyze request failed")
			return respondError(c, reqID, err)
		}

		logger.WithFields(map[string]interface{}{
			"processing_time":  utils.FormatDuration(time.Since(start)),
			"city":             criteria.City,
			"total_properties": result.TotalProperties,
		}).Info("Analyze request completed successfully")

		return c.JSON(http.StatusOK, result)
	}
}

// respondError writes err as an ErrorResponse with the status it carries
func respondError(c echo.Context, reqID string, err error) error {
	cerr := utils.AsCustomError(err)
	return c.JSON(cerr.Code, models.ErrorResponse{
		Error:     cerr.Type,
		Detail:    cerr.Description(),
		RequestID: reqID,
		Timestamp: time.Now(),
	})
}

// requestID returns the id assigned by the request middleware, or a fresh one
func requestID(c echo.Context) string {
	if id, ok := c.Get("request_id").(string); ok && id != "" {
		return id
	}
	return utils.GenerateRequestID()
}
