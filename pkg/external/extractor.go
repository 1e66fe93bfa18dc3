package external

import (
	"context"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/medemi-triage-server/internal/domain"
)

const (
	defaultExtractionTimeout = 30 * time.Second
	defaultMemoryCacheItems  = 1000
	defaultExtractionTTL     = time.Hour
	extractorBreakerName     = "extractor"
)

// ErrMalformedExtraction is returned when the model reply holds no
// decodable JSON object.
var ErrMalformedExtraction = errors.New("extraction reply is not a JSON object")

// ExtractorOptions carries the optional collaborators of an LLMExtractor.
type ExtractorOptions struct {
	// Cache is the shared Redis tier. Nil disables it.
	Cache *CacheClient
	// MemoryItems sizes the in-process tier; zero uses the default.
	MemoryItems int
}

// LLMExtractor implements domain.Extractor on top of a chat completion
// endpoint. Calls are bounded by a timeout, rate limited and guarded by a
// circuit breaker; decoded results are cached in process and, optionally,
// in Redis. Extract never fails: every problem yields an empty result.
type LLMExtractor struct {
	client   CompletionClient
	model    string
	timeout  time.Duration
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker
	memory   *lru.Cache[string, domain.ExtractionResult]
	cache    *CacheClient
	cacheTTL time.Duration
	caching  bool
	logger   *logrus.Logger
}

// NewLLMExtractor creates a new extractor
func NewLLMExtractor(client CompletionClient, cfg domain.ExtractorConfig, opts ExtractorOptions, logger *logrus.Logger) (*LLMExtractor, error) {
	if client == nil {
		return nil, errors.New("completion client is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultExtractionTimeout
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = defaultExtractionTTL
	}

	items := opts.MemoryItems
	if items <= 0 {
		items = defaultMemoryCacheItems
	}
	memory, err := lru.New[string, domain.ExtractionResult](items)
	if err != nil {
		return nil, fmt.Errorf("failed to create extraction cache: %w", err)
	}

	return &LLMExtractor{
		client:   client,
		model:    orDefault(cfg.Model, DefaultLLMModel),
		timeout:  timeout,
		limiter:  rate.NewLimiter(limit, burst),
		breaker:  NewCircuitBreaker(extractorBreakerName, cfg.CircuitBreaker, logger),
		memory:   memory,
		cache:    opts.Cache,
		cacheTTL: cacheTTL,
		caching:  cfg.CacheEnabled,
		logger:   logger,
	}, nil
}

// Extract returns the structured fields found in the narrative and transcript.
func (e *LLMExtractor) Extract(ctx context.Context, narrative, transcript string) domain.ExtractionResult {
	prompt := BuildExtractionPrompt(narrative, transcript)
	key := ExtractionCacheKey(e.model, prompt)

	if result, ok := e.lookup(ctx, key); ok {
		return result
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	result, err := e.extract(callCtx, prompt)
	if err != nil {
		e.logger.WithFields(logrus.Fields{
			"error":          err.Error(),
			"breaker_state":  e.breaker.State().String(),
			"has_transcript": transcript != "",
		}).Warn("Extraction failed, continuing with empty result")
		return domain.ExtractionResult{}
	}

	e.remember(ctx, key, result)
	return result
}

// BreakerState reports the extraction circuit breaker state.
func (e *LLMExtractor) BreakerState() gobreaker.State {
	return e.breaker.State()
}

func (e *LLMExtractor) extract(ctx context.Context, prompt string) (domain.ExtractionResult, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return domain.ExtractionResult{}, fmt.Errorf("rate limit wait failed: %w", err)
	}

	reply, err := e.breaker.Execute(func() (interface{}, error) {
		return e.client.Complete(ctx, prompt)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return domain.ExtractionResult{}, fmt.Errorf("%w (circuit breaker open)", domain.ErrExtractionUnavailable)
		}
		return domain.ExtractionResult{}, fmt.Errorf("%w: %v", domain.ErrExtractionUnavailable, err)
	}

	result, ok := DecodeExtraction(reply.(string))
	if !ok {
		return domain.ExtractionResult{}, ErrMalformedExtraction
	}
	return result, nil
}

func (e *LLMExtractor) lookup(ctx context.Context, key string) (domain.ExtractionResult, bool) {
	if !e.caching {
		return domain.ExtractionResult{}, false
	}
	if result, ok := e.memory.Get(key); ok {
		return result, true
	}
	if e.cache == nil {
		return domain.ExtractionResult{}, false
	}

	result, found, err := e.cache.GetExtraction(ctx, key)
	if err != nil {
		e.logger.WithError(err).Debug("Extraction cache lookup failed")
		return domain.ExtractionResult{}, false
	}
	if found {
		e.memory.Add(key, result)
	}
	return result, found
}

func (e *LLMExtractor) remember(ctx context.Context, key string, result domain.ExtractionResult) {
	if !e.caching {
		return
	}
	e.memory.Add(key, result)
	if e.cache == nil {
		return
	}
	if err := e.cache.SetExtraction(ctx, key, result, e.cacheTTL); err != nil {
		// Log cache error but don't fail the request
		e.logger.WithError(err).Debug("Failed to cache extraction result")
	}
}
