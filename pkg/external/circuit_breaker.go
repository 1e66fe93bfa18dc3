package external

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/medemi-triage-server/internal/domain"
)

// Circuit breaker defaults for the extraction endpoint.
const (
	defaultBreakerMaxRequests  = 5
	defaultBreakerInterval     = 30 * time.Second
	defaultBreakerTimeout      = 60 * time.Second
	defaultBreakerFailureRatio = 0.6
	defaultBreakerMinRequests  = 3
)

// NewCircuitBreaker builds a breaker that trips once at least MinRequests
// calls were seen in the interval and FailureRatio of them failed.
func NewCircuitBreaker(name string, cfg domain.CircuitBreakerConfig, logger *logrus.Logger) *gobreaker.CircuitBreaker {
	cfg = withBreakerDefaults(cfg)

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if logger == nil {
				return
			}
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})
}

func withBreakerDefaults(cfg domain.CircuitBreakerConfig) domain.CircuitBreakerConfig {
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = defaultBreakerMaxRequests
	}
	if cfg.Interval == 0 {
		cfg.Interval = defaultBreakerInterval
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultBreakerTimeout
	}
	if cfg.FailureRatio <= 0 {
		cfg.FailureRatio = defaultBreakerFailureRatio
	}
	if cfg.MinRequests == 0 {
		cfg.MinRequests = defaultBreakerMinRequests
	}
	return cfg
}
