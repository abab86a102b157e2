package advisor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"arthasync/internal/cache"
	"arthasync/internal/log"
	"arthasync/internal/metrics"
)

// Outcome label values recorded for each Advise call.
const (
	OutcomeGenerated = "generated"
	OutcomeCached    = "cached"
	OutcomeDisabled  = "disabled"
	OutcomeEmpty     = "empty"
	OutcomeFailed    = "failed"
)

const (
	DefaultTimeout   = 20 * time.Second
	defaultCacheSize = 32
)

// Options tune an Advisor. Zero values pick the defaults.
type Options struct {
	// Timeout bounds one provider call.
	Timeout time.Duration
	// CacheTTL keeps successful answers for identical prompts. Zero disables caching.
	CacheTTL  time.Duration
	CacheSize int
	Logger    *log.Logger
}

// Advisor wraps a TextGenerator with fallbacks, a per-call timeout, request
// collapsing and an optional response cache.
type Advisor struct {
	gen     TextGenerator
	timeout time.Duration
	cache   *cache.LRUCache[string]
	group   singleflight.Group
	logger  *log.Logger
}

// New creates an Advisor. A nil generator runs in disabled mode.
func New(gen TextGenerator, opts Options) *Advisor {
	a := &Advisor{
		gen:     gen,
		timeout: opts.Timeout,
		logger:  opts.Logger,
	}
	if a.timeout <= 0 {
		a.timeout = DefaultTimeout
	}
	if a.logger == nil {
		a.logger = log.New(log.DefaultConfig())
	}
	a.logger = a.logger.WithComponent(log.ComponentAdvisor)
	if opts.CacheTTL > 0 {
		size := opts.CacheSize
		if size <= 0 {
			size = defaultCacheSize
		}
		a.cache = cache.NewLRUCache[string](size, opts.CacheTTL)
	}
	return a
}

// Enabled reports whether a provider is configured.
func (a *Advisor) Enabled() bool {
	return a.gen != nil
}

// Cache exposes the response cache for periodic cleanup. It is nil when
// caching is off.
func (a *Advisor) Cache() cache.Cleaner {
	if a.cache == nil {
		return nil
	}
	return a.cache
}

// CacheStats reports response cache counters. All zero when caching is off.
func (a *Advisor) CacheStats() cache.Stats {
	if a.cache == nil {
		return cache.Stats{}
	}
	return a.cache.Stats()
}

// Advise returns advice for in, or a localized fallback. It never fails.
func (a *Advisor) Advise(ctx context.Context, in Input) string {
	lang := in.Language
	if a.gen == nil {
		metrics.AdviceRequests.WithLabelValues(OutcomeDisabled).Inc()
		return DisabledMessage(lang)
	}

	req := Request{SystemPersona: Persona, Prompt: BuildPrompt(in), Language: lang}
	key := cacheKey(req)

	if a.cache != nil {
		if text, ok := a.cache.Get(key); ok {
			metrics.AdviceRequests.WithLabelValues(OutcomeCached).Inc()
			return text
		}
	}

	v, err, shared := a.group.Do(key, func() (any, error) {
		// Detached from the first caller so a cancelled request does not
		// fail the others waiting on the same key.
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
		defer cancel()

		start := time.Now()
		text, err := a.gen.Generate(callCtx, req)
		metrics.AdviceLatency.Observe(time.Since(start).Seconds())
		return text, err
	})
	if err != nil {
		metrics.AdviceRequests.WithLabelValues(OutcomeFailed).Inc()
		errType := log.ErrorTypeNetwork
		if errors.Is(err, context.DeadlineExceeded) {
			errType = log.ErrorTypeTimeout
		}
		a.logger.WarnContext(ctx, "Advice generation failed",
			log.FieldError, err.Error(),
			"error_type", errType,
			"shared", shared)
		return UnavailableMessage(lang)
	}

	text, _ := v.(string)
	text = strings.TrimSpace(text)
	if text == "" {
		metrics.AdviceRequests.WithLabelValues(OutcomeEmpty).Inc()
		return EmptyMessage(lang)
	}

	if a.cache != nil {
		a.cache.Set(key, text)
	}
	metrics.AdviceRequests.WithLabelValues(OutcomeGenerated).Inc()
	a.logger.DebugContext(ctx, "Advice generated", "length", len(text), "shared", shared)
	return text
}

func cacheKey(req Request) string {
	h := sha256.New()
	h.Write([]byte(req.Language))
	h.Write([]byte{0})
	h.Write([]byte(req.Prompt))
	return hex.EncodeToString(h.Sum(nil))
}
