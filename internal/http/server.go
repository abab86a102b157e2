package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"arthasync/internal/app"
	"arthasync/internal/log"
	"arthasync/internal/metrics"
	"arthasync/internal/middleware/ratelimit"
	"arthasync/internal/middleware/security"
	"arthasync/internal/middleware/trace"
)

const (
	readHeaderTimeout = 10 * time.Second
	readTimeout       = 15 * time.Second
	// writeTimeout must cover one advice generation call.
	writeTimeout = 90 * time.Second
	idleTimeout  = 120 * time.Second
	readyTimeout = 5 * time.Second
)

// Options configures a Server. Zero values disable the optional parts.
type Options struct {
	Logger *log.Logger
	// RateLimitPerMinute per client address. Zero disables limiting.
	RateLimitPerMinute int
	// Ready checks the persistence backend for /readyz.
	Ready func(ctx context.Context) error
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
}

// Server serves the JSON API over an app.Controller.
type Server struct {
	http.Server
	ctrl     *app.Controller
	logger   *log.Logger
	limiter  *ratelimit.Limiter
	detector *security.Detector
	ready    func(ctx context.Context) error
	started  time.Time
}

// NewServer wires routes and middleware. The controller must be loaded
// before the server starts accepting requests.
func NewServer(addr string, ctrl *app.Controller, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		ctrl:     ctrl,
		logger:   logger,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector: security.NewDetector(logger),
		ready:    opts.Ready,
		started:  time.Now(),
	}

	mux := http.NewServeMux()
	s.routes(mux, opts.Metrics)

	var handler http.Handler = mux
	handler = s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, s.detector.ExtractClientIP(r),
			log.FieldPath, r.URL.Path)
		ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded").Write(w)
	})(handler)
	handler = s.detector.Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = log.RequestIDMiddleware(trace.RequestID)(handler)
	handler = log.Middleware(logger)(handler)
	handler = trace.NewMiddleware(logger, s.detector.ExtractClientIP).Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux, metricsHandler http.Handler) {
	s.handle(mux, "GET /healthz", s.handleHealth, false)
	s.handle(mux, "GET /readyz", s.handleReady, false)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}

	s.handle(mux, "GET /api/lock", s.handleLockState, false)
	s.handle(mux, "POST /api/unlock", s.handleUnlock, false)

	s.handle(mux, "GET /api/dashboard", s.handleDashboard, true)
	s.handle(mux, "GET /api/transactions", s.handleListTransactions, true)
	s.handle(mux, "POST /api/incomes", s.handleCreateIncome, true)
	s.handle(mux, "POST /api/expenses", s.handleCreateExpense, true)
	s.handle(mux, "DELETE /api/incomes/{id}", s.handleDeleteIncome, true)
	s.handle(mux, "DELETE /api/expenses/{id}", s.handleDeleteExpense, true)
	s.handle(mux, "GET /api/categories", s.handleListCategories, true)
	s.handle(mux, "POST /api/categories", s.handleCreateCategory, true)
	s.handle(mux, "DELETE /api/categories/{id}", s.handleDeleteCategory, true)
	s.handle(mux, "GET /api/payment-methods", s.handlePaymentMethods, true)
	s.handle(mux, "GET /api/budgets", s.handleBudgets, true)
	s.handle(mux, "PUT /api/budgets", s.handleSetBudget, true)
	s.handle(mux, "GET /api/settings", s.handleGetSettings, true)
	s.handle(mux, "PATCH /api/settings", s.handleUpdateSettings, true)
	s.handle(mux, "GET /api/advice", s.handleAdvice, true)
}

// handle registers h under pattern. Gated routes answer 423 while the PIN
// gate is locked.
func (s *Server) handle(mux *http.ServeMux, pattern string, h http.HandlerFunc, gated bool) {
	var handler http.Handler = h
	if gated {
		handler = s.requireUnlocked(handler)
	}
	mux.Handle(pattern, instrument(pattern, handler))
}

func (s *Server) requireUnlocked(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.ctrl.IsLocked() {
			LockedError().Write(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// instrument records request count and latency under the route pattern,
// never the raw path, to keep label cardinality bounded.
func instrument(pattern string, next http.Handler) http.Handler {
	method, route, ok := strings.Cut(pattern, " ")
	if !ok {
		method, route = "ANY", pattern
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		metrics.HTTPRequests.WithLabelValues(method, route, fmt.Sprintf("%dxx", rec.status/100)).Inc()
		metrics.HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (rec *statusRecorder) WriteHeader(code int) {
	if !rec.wroteHeader {
		rec.status = code
		rec.wroteHeader = true
	}
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Unwrap() http.ResponseWriter {
	return rec.ResponseWriter
}

// Shutdown stops accepting requests and releases the rate limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.Server.Shutdown(ctx)
}
