package agent

import "realestate-agent/internal/logging"

// ProgressSink receives progress updates while an analysis runs.
// fraction is in [0,1]; activity may be empty.
type ProgressSink interface {
	Update(fraction float64, status, activity string)
}

// NoopProgress discards every update
type NoopProgress struct{}

func (NoopProgress) Update(float64, string, string) {}

// ProgressFunc adapts a function to ProgressSink
type ProgressFunc func(fraction float64, status, activity string)

func (f ProgressFunc) Update(fraction float64, status, activity string) {
	f(fraction, status, activity)
}

// LoggingProgress writes updates to a logger at debug level
type LoggingProgress struct {
	Logger logging.Logger
}

func (p LoggingProgress) Update(fraction float64, status, activity string) {
	fields := map[string]interface{}{
		"progress": fraction,
		"status":   status,
	}
	if activity != "" {
		fields["activity"] = activity
	}
	p.Logger.Debug("Analysis progress", fields)
}
