package ratelimit

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"realestate-agent/internal/config"
	"realestate-agent/internal/logging"
)

// ErrCircuitOpen is returned by Wait while a domain's circuit breaker is open
var ErrCircuitOpen = fmt.Errorf("circuit breaker open")

// CircuitState represents the state of a circuit breaker
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

func (cs CircuitState) String() string {
	switch cs {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

type domainLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
	requests int64
	failures int64
}

type circuitBreaker struct {
	failureCount int
	lastFailTime time.Time
	state        CircuitState
}

// DomainStats is a snapshot of one domain's limiter and breaker
type DomainStats struct {
	Requests     int64     `json:"requests"`
	Failures     int64     `json:"failures"`
	LastSeen     time.Time `json:"last_seen"`
	CircuitState string    `json:"circuit_state"`
	FailureCount int       `json:"failure_count"`
}

// RateLimiter throttles scrapes per listing domain and trips a circuit
// breaker after repeated failures. Safe for concurrent use.
type RateLimiter struct {
	limit        rate.Limit
	burst        int
	maxFailures  int
	resetTimeout time.Duration
	idleTimeout  time.Duration

	mu       sync.Mutex
	limiters map[string]*domainLimiter
	breakers map[string]*circuitBreaker
	now      func() time.Time

	logger    logging.Logger
	stop      chan struct{}
	closeOnce sync.Once
}

// NewRateLimiter creates a limiter from cfg.Scraper and starts its cleanup goroutine
func NewRateLimiter(cfg *config.Config) *RateLimiter {
	burst := cfg.Scraper.Burst
	if burst < 1 {
		burst = 1
	}

	rl := &RateLimiter{
		limit:        rate.Limit(float64(cfg.Scraper.RateLimit) / 60.0),
		burst:        burst,
		maxFailures:  cfg.Scraper.CircuitMaxFailures,
		resetTimeout: cfg.Scraper.CircuitResetTimeout,
		idleTimeout:  10 * time.Minute,
		limiters:     make(map[string]*domainLimiter),
		breakers:     make(map[string]*circuitBreaker),
		now:          time.Now,
		logger:       logging.GetGlobalLogger().WithField("component", "rate_limiter"),
		stop:         make(chan struct{}),
	}

	go rl.cleanupRoutine(5 * time.Minute)

	return rl
}

// Wait blocks until a request to domain is allowed or ctx is done.
// It fails fast with ErrCircuitOpen while the domain's breaker is open.
func (rl *RateLimiter) Wait(ctx context.Context, domain string) error {
	domain = strings.ToLower(domain)

	rl.mu.Lock()
	if !rl.allowByCircuit(domain) {
		rl.mu.Unlock()
		rl.logger.Debug("Request rejected by circuit breaker", map[string]interface{}{"domain": domain})
		return fmt.Errorf("%s: %w", domain, ErrCircuitOpen)
	}
	limiter := rl.getDomainLimiter(domain)
	limiter.requests++
	limiter.lastSeen = rl.now()
	rl.mu.Unlock()

	return limiter.limiter.Wait(ctx)
}

// RecordSuccess closes a half-open breaker
func (rl *RateLimiter) RecordSuccess(domain string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	domain = strings.ToLower(domain)
	if cb, exists := rl.breakers[domain]; exists {
		if cb.state == CircuitHalfOpen {
			rl.logger.Info("Circuit breaker closed after successful request", map[string]interface{}{"domain": domain})
		}
		cb.state = CircuitClosed
		cb.failureCount = 0
	}
}

// RecordFailure counts a failure and opens the breaker once the threshold is hit
func (rl *RateLimiter) RecordFailure(domain string, err error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	domain = strings.ToLower(domain)

	if limiter, exists := rl.limiters[domain]; exists {
		limiter.failures++
	}

	cb := rl.getCircuitBreaker(domain)
	cb.failureCount++
	cb.lastFailTime = rl.now()

	// a failed trial request in half-open reopens immediately
	if cb.state == CircuitHalfOpen || (cb.state == CircuitClosed && cb.failureCount >= rl.maxFailures) {
		cb.state = CircuitOpen
		fields := map[string]interface{}{
			"domain":   domain,
			"failures": cb.failureCount,
		}
		if err != nil {
			fields["error"] = err.Error()
		}
		rl.logger.Warn("Circuit breaker opened due to failures", fields)
	}
}

// State returns the current breaker state of domain
func (rl *RateLimiter) State(domain string) CircuitState {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	domain = strings.ToLower(domain)
	rl.allowByCircuit(domain)
	if cb, exists := rl.breakers[domain]; exists {
		return cb.state
	}
	return CircuitClosed
}

// GetAllStats returns statistics for all tracked domains
func (rl *RateLimiter) GetAllStats() map[string]DomainStats {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	stats := make(map[string]DomainStats)
	for domain, limiter := range rl.limiters {
		s := stats[domain]
		s.Requests = limiter.requests
		s.Failures = limiter.failures
		s.LastSeen = limiter.lastSeen
		s.CircuitState = CircuitClosed.String()
		stats[domain] = s
	}
	for domain, cb := range rl.breakers {
		s := stats[domain]
		s.CircuitState = cb.state.String()
		s.FailureCount = cb.failureCount
		stats[domain] = s
	}
	return stats
}

// Stop stops the cleanup goroutine; safe to call more than once
func (rl *RateLimiter) Stop() {
	rl.closeOnce.Do(func() { close(rl.stop) })
}

// allowByCircuit must be called with rl.mu held
func (rl *RateLimiter) allowByCircuit(domain string) bool {
	cb, exists := rl.breakers[domain]
	if !exists {
		return true
	}

	switch cb.state {
	case CircuitOpen:
		if rl.now().Sub(cb.lastFailTime) > rl.resetTimeout {
			cb.state = CircuitHalfOpen
			rl.logger.Info("Circuit breaker transitioned to half-open", map[string]interface{}{"domain": domain})
			return true
		}
		return false
	default:
		return true
	}
}

func (rl *RateLimiter) getDomainLimiter(domain string) *domainLimiter {
	if limiter, exists := rl.limiters[domain]; exists {
		return limiter
	}

	limiter := &domainLimiter{
		limiter:  rate.NewLimiter(rl.limit, rl.burst),
		lastSeen: rl.now(),
	}
	rl.limiters[domain] = limiter

	rl.logger.Debug("Created new domain rate limiter", map[string]interface{}{
		"domain": domain,
		"rate":   float64(rl.limit),
		"burst":  rl.burst,
	})
	return limiter
}

func (rl *RateLimiter) getCircuitBreaker(domain string) *circuitBreaker {
	if cb, exists := rl.breakers[domain]; exists {
		return cb
	}
	cb := &circuitBreaker{state: CircuitClosed}
	rl.breakers[domain] = cb
	return cb
}

func (rl *RateLimiter) cleanupRoutine(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stop:
			return
		}
	}
}

// cleanup drops limiters idle longer than idleTimeout and closed breakers without recent failures
func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.idleTimeout)
	removed := 0

	for domain, limiter := range rl.limiters {
		if limiter.lastSeen.Before(cutoff) {
			delete(rl.limiters, domain)
			removed++
		}
	}

	for domain, cb := range rl.breakers {
		if cb.state == CircuitClosed && cb.lastFailTime.Before(cutoff) {
			delete(rl.breakers, domain)
		}
	}

	if removed > 0 {
		rl.logger.Info("Cleaned up unused rate limiters", map[string]interface{}{"removed_count": removed})
	}
}

// DomainOf extracts the lower-cased host of rawURL
func DomainOf(rawURL string) string {
	parsedURL, err := url.Parse(rawURL)
	if err != nil || parsedURL.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(parsedURL.Hostname())
}
