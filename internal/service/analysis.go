package service

import (
	"context"
	"strings"
	"time"

	"realestate-agent/internal/agent"
	"realestate-agent/internal/config"
	"realestate-agent/internal/logging"
	"realestate-agent/internal/metrics"
	"realestate-agent/pkg/models"
	"realestate-agent/pkg/utils"
)

const noSpecialFeatures = "None specified"

// AnalysisService validates a search request, hands it to the analyzer
// and reshapes the outcome into an AnalysisResult
type AnalysisService struct {
	credentials config.Credentials
	analyzer    agent.Analyzer
	logger      logging.Logger
}

// NewAnalysisService binds the process-wide credentials to an analyzer
func NewAnalysisService(credentials config.Credentials, analyzer agent.Analyzer) *AnalysisService {
	return &AnalysisService{
		credentials: credentials,
		analyzer:    analyzer,
		logger:      logging.GetGlobalLogger().WithField("component", "analysis_service"),
	}
}

// Credentials returns the keys the service was built with
func (s *AnalysisService) Credentials() config.Credentials {
	return s.credentials
}

// Analyze runs one synchronous analysis. Errors are *utils.CustomError values
// carrying the HTTP status to answer with.
func (s *AnalysisService) Analyze(ctx context.Context, criteria models.SearchCriteria) (*models.AnalysisResult, error) {
	if len(criteria.SelectedWebsites) == 0 {
		metrics.ObserveAnalysis("rejected")
		return nil, utils.NewBadRequestError("selected_websites must not be empty")
	}
	if !s.credentials.HasScrapingKey() {
		metrics.ObserveAnalysis("rejected")
		return nil, utils.NewConfigurationError("FIRECRAWL_API_KEY is not set")
	}
	if !s.credentials.HasLLMKey() {
		metrics.ObserveAnalysis("rejected")
		return nil, utils.NewConfigurationError("LLM_API_KEY is not set")
	}

	input := agent.AnalysisInput{
		City:        criteria.City,
		State:       criteria.State,
		Criteria:    BuildUserCriteria(criteria),
		Sources:     criteria.SelectedWebsites,
		Credentials: s.credentials,
	}

	s.logger.Info("Starting analysis", map[string]interface{}{
		"city":    input.City,
		"state":   input.State,
		"sources": strings.Join(input.Sources, ","),
	})

	start := time.Now()
	outcome := s.analyzer.Run(ctx, input, agent.NoopProgress{})
	if outcome.Failed() {
		metrics.ObserveAnalysis("failure")
		s.logger.Error("Analysis failed", map[string]interface{}{
			"city":     input.City,
			"error":    outcome.FailureMessage(),
			"duration": utils.FormatDuration(time.Since(start)),
		})
		return nil, utils.NewAnalysisError(outcome.FailureMessage())
	}

	metrics.ObserveAnalysis("success")
	if outcome.Result().Properties == nil {
		// defaulted to an empty list; a stricter contract could reject this instead
		s.logger.Warn("Analyzer returned no properties field", map[string]interface{}{"city": input.City})
	}
	result := toAnalysisResult(outcome.Result())

	s.logger.Info("Analysis completed", map[string]interface{}{
		"city":       input.City,
		"properties": result.TotalProperties,
		"duration":   utils.FormatDuration(time.Since(start)),
	})
	return result, nil
}

// BuildUserCriteria derives the buyer preferences handed to the analyzer
func BuildUserCriteria(criteria models.SearchCriteria) models.UserCriteria {
	return models.UserCriteria{
		BudgetRange:     utils.FormatBudgetRange(criteria.MinPrice, criteria.MaxPrice),
		PropertyType:    criteria.PropertyType,
		Bedrooms:        criteria.Bedrooms,
		Bathrooms:       criteria.Bathrooms,
		MinSqft:         criteria.MinSqft,
		SpecialFeatures: utils.GetStringOrDefault(criteria.SpecialFeatures, noSpecialFeatures),
	}
}

func toAnalysisResult(r agent.Result) *models.AnalysisResult {
	properties := r.Properties
	if properties == nil {
		properties = []map[string]interface{}{}
	}
	return &models.AnalysisResult{
		Properties:         properties,
		MarketAnalysis:     r.MarketAnalysis,
		PropertyValuations: r.PropertyValuations,
		TotalProperties:    r.TotalProperties,
	}
}
