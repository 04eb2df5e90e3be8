package models

import "time"

// AnalysisResult represents the response from an analyze request
type AnalysisResult struct {
	Properties         []map[string]interface{} `json:"properties"`
	MarketAnalysis     string                   `json:"market_analysis"`
	PropertyValuations string                   `json:"property_valuations"`
	TotalProperties    int                      `json:"total_properties"`
}

// StatusResponse is the constant body of the basic health check
type StatusResponse struct {
	Status string `json:"status"`
}

// HealthResponse represents the detailed health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Uptime    time.Duration     `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string    `json:"error"`
	Detail    string    `json:"detail"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}
