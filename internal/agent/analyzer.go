package agent

import (
	"context"

	"realestate-agent/internal/config"
	"realestate-agent/pkg/models"
)

// AnalysisInput is everything one sequential analysis needs
type AnalysisInput struct {
	City        string
	State       string
	Criteria    models.UserCriteria
	Sources     []string
	Credentials config.Credentials
}

// Analyzer runs a property search and market analysis.
// Implementations report progress through sink and never panic on upstream errors:
// every failure comes back as a failed Outcome.
type Analyzer interface {
	Run(ctx context.Context, input AnalysisInput, sink ProgressSink) Outcome
}

// Result is the payload of a successful analysis
type Result struct {
	Properties         []map[string]interface{}
	MarketAnalysis     string
	PropertyValuations string
	TotalProperties    int
}

// Outcome is either a Result or a failure message, never both
type Outcome struct {
	result  Result
	failure string
	failed  bool
}

// Success wraps a result
func Success(result Result) Outcome {
	return Outcome{result: result}
}

// Failure wraps a failure message
func Failure(message string) Outcome {
	return Outcome{failure: message, failed: true}
}

func (o Outcome) Failed() bool {
	return o.failed
}

// FailureMessage is empty for successful outcomes
func (o Outcome) FailureMessage() string {
	return o.failure
}

// Result is the zero Result for failed outcomes
func (o Outcome) Result() Result {
	return o.result
}
