// Package main implements the farsight web server for Farcaster audience
// analysis.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/maypok86/otter/v2"

	"github.com/yanlabs/farsight/pkg/agent"
	"github.com/yanlabs/farsight/pkg/gemini"
)

var (
	port         = flag.String("port", "8080", "Port for web server (or set PORT)")
	farcasterKey = flag.String("farcaster-key", "", "Farcaster API key (or set FARCASTER_API_KEY)")
	geminiAPIKey = flag.String("gemini-key", "", "Gemini API key (or set GEMINI_API_KEY)")
	geminiModel  = flag.String("gemini-model", gemini.DefaultModel, "Gemini model to use (or set GEMINI_MODEL)")
	searchAPIKey = flag.String("search-key", "", "Web search API key (or set SEARCH_API_KEY)")
	cacheDir     = flag.String("cache-dir", "", "Cache directory (or set CACHE_DIR)")
	verbose      = flag.Bool("verbose", false, "Enable verbose logging")
	version      = flag.Bool("version", false, "Show version")
)

type rateLimiter struct {
	requests map[string][]time.Time
	mu       sync.Mutex
}

func newRateLimiter() *rateLimiter {
	return &rateLimiter{
		requests: make(map[string][]time.Time),
	}
}

func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-time.Minute)

	var valid []time.Time
	for _, t := range rl.requests[ip] {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}

	// Rate limit: 15 requests per minute per IP
	if len(valid) >= 15 {
		rl.requests[ip] = valid
		return false
	}

	rl.requests[ip] = append(valid, now)
	return true
}

func main() {
	_ = godotenv.Load()

	flag.Parse()

	if *version {
		fmt.Println("farsight Server v1.2.0")
		return
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if *port == "8080" && os.Getenv("PORT") != "" {
		*port = os.Getenv("PORT")
	}
	if *farcasterKey == "" {
		*farcasterKey = os.Getenv("FARCASTER_API_KEY")
	}
	if *geminiAPIKey == "" {
		*geminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if *geminiModel == gemini.DefaultModel && os.Getenv("GEMINI_MODEL") != "" {
		*geminiModel = os.Getenv("GEMINI_MODEL")
	}
	if *searchAPIKey == "" {
		*searchAPIKey = os.Getenv("SEARCH_API_KEY")
	}
	if *cacheDir == "" {
		*cacheDir = os.Getenv("CACHE_DIR")
	}

	// Missing credentials are fatal at startup; once serving, a request must
	// never take the process down.
	missing := []string{}
	if *farcasterKey == "" {
		missing = append(missing, "FARCASTER_API_KEY")
	}
	if *geminiAPIKey == "" {
		missing = append(missing, "GEMINI_API_KEY")
	}
	if *searchAPIKey == "" {
		missing = append(missing, "SEARCH_API_KEY")
	}
	if len(missing) > 0 {
		logger.Error("missing required credentials", "keys", strings.Join(missing, ", "))
		os.Exit(1)
	}

	logger.Info("server configuration",
		"port", *port,
		"verbose", *verbose,
		"cache_dir", *cacheDir,
		"gemini_model", *geminiModel)

	analyzer := agent.NewWithLogger(context.Background(), logger,
		agent.WithFarcasterAPIKey(*farcasterKey),
		agent.WithGeminiAPIKey(*geminiAPIKey),
		agent.WithGeminiModel(*geminiModel),
		agent.WithSearchAPIKey(*searchAPIKey),
		agent.WithCacheDir(*cacheDir),
	)
	defer func() {
		if err := analyzer.Close(); err != nil {
			logger.Error("failed to close analyzer", "error", err)
		}
	}()

	responses := otter.Must(&otter.Options[string, []byte]{
		MaximumSize:      10_000,
		ExpiryCalculator: otter.ExpiryWriting[string, []byte](15 * time.Minute),
	})

	s := &server{
		analyzer:  analyzer,
		responses: responses,
		limiter:   newRateLimiter(),
		logger:    logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /api/v1/optimal", s.fidHandler("optimal", func(ctx context.Context, fid string) (any, error) {
		return s.analyzer.OptimalTime(ctx, fid)
	}))
	mux.HandleFunc("POST /api/v1/fans", s.fidHandler("fans", func(ctx context.Context, fid string) (any, error) {
		return s.analyzer.TopFans(ctx, fid)
	}))
	mux.HandleFunc("POST /api/v1/persona", s.fidHandler("persona", func(ctx context.Context, fid string) (any, error) {
		return s.analyzer.Persona(ctx, fid)
	}))
	mux.HandleFunc("POST /api/v1/report", s.fidHandler("report", func(ctx context.Context, fid string) (any, error) {
		return s.analyzer.WeeklyReport(ctx, fid)
	}))
	mux.HandleFunc("POST /api/v1/cast", s.fidHandler("cast", func(ctx context.Context, fid string) (any, error) {
		return s.analyzer.CastIdeas(ctx, fid)
	}))
	mux.HandleFunc("POST /api/v1/trending", s.handleTrending)

	srv := &http.Server{
		Addr:              ":" + *port,
		Handler:           s.wrap(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", *port)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
	logger.Info("server stopped")
}

type server struct {
	analyzer  *agent.Analyzer
	responses *otter.Cache[string, []byte]
	limiter   *rateLimiter
	logger    *slog.Logger
}

func (s *server) wrap(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := fmt.Sprintf("%d-%d", time.Now().Unix(), time.Now().Nanosecond())
		w.Header().Set("X-Request-ID", requestID)

		defer func() {
			if err := recover(); err != nil {
				const size = 64 << 10
				buf := make([]byte, size)
				buf = buf[:runtime.Stack(buf, false)]

				s.logger.Error("PANIC: request handler crashed",
					"error", err,
					"path", r.URL.Path,
					"method", r.Method,
					"request_id", requestID,
					"client_ip", clientIP(r),
					"stack", string(buf))
				http.Error(w, "Internal server error", http.StatusInternalServerError)
			}
		}()

		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")

		if strings.HasPrefix(r.URL.Path, "/api/") {
			w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
		}

		handler.ServeHTTP(w, r)
	})
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"status": "ok"}); err != nil {
		s.logger.Error("failed to encode health response", "error", err)
	}
}

// fidHandler builds a handler for an operation keyed by a single FID.
func (s *server) fidHandler(op string, analyze func(context.Context, string) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := w.Header().Get("X-Request-ID")
		ip := clientIP(r)

		if !s.limiter.allow(ip) {
			s.logger.Warn("rate limit exceeded", "request_id", requestID, "client_ip", ip, "op", op)
			http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
			return
		}

		var req struct {
			FID string `json:"fid"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.logger.Warn("invalid request body", "request_id", requestID, "op", op, "error", err)
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
		req.FID = strings.TrimSpace(req.FID)

		cacheKey := op + ":" + req.FID
		if data, found := s.responses.GetIfPresent(cacheKey); found {
			s.writeJSON(w, requestID, op, data, "hit")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 90*time.Second)
		defer cancel()

		report, err := analyze(ctx, req.FID)
		if err != nil {
			// Operations only error on invalid input; everything upstream is
			// recovered into the report itself.
			s.logger.Warn("rejected request", "request_id", requestID, "op", op, "fid", req.FID, "error", err)
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		data, err := json.Marshal(report)
		if err != nil {
			s.logger.Error("JSON encoding failed", "request_id", requestID, "op", op, "error", err)
			http.Error(w, "Encoding failed", http.StatusInternalServerError)
			return
		}
		s.responses.Set(cacheKey, data)

		s.writeJSON(w, requestID, op, data, "miss")
		s.logger.Info("request completed",
			"request_id", requestID,
			"op", op,
			"fid", req.FID,
			"duration_ms", time.Since(start).Milliseconds())
	}
}

func (s *server) handleTrending(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := w.Header().Get("X-Request-ID")
	ip := clientIP(r)

	if !s.limiter.allow(ip) {
		s.logger.Warn("rate limit exceeded", "request_id", requestID, "client_ip", ip, "op", "trending")
		http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
		return
	}

	if data, found := s.responses.GetIfPresent("trending"); found {
		s.writeJSON(w, requestID, "trending", data, "hit")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 90*time.Second)
	defer cancel()

	report, err := s.analyzer.Trending(ctx)
	if err != nil {
		s.logger.Error("trending analysis failed", "request_id", requestID, "error", err)
		writeError(w, http.StatusInternalServerError, "Trending analysis failed")
		return
	}

	data, err := json.Marshal(report)
	if err != nil {
		s.logger.Error("JSON encoding failed", "request_id", requestID, "op", "trending", "error", err)
		http.Error(w, "Encoding failed", http.StatusInternalServerError)
		return
	}
	s.responses.Set("trending", data)

	s.writeJSON(w, requestID, "trending", data, "miss")
	s.logger.Info("request completed",
		"request_id", requestID,
		"op", "trending",
		"duration_ms", time.Since(start).Milliseconds())
}

func (s *server) writeJSON(w http.ResponseWriter, requestID, op string, data []byte, cacheState string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", cacheState)
	if _, err := w.Write(data); err != nil {
		s.logger.Error("failed to write response",
			"request_id", requestID,
			"op", op,
			"error", err,
			"response_size", len(data))
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func clientIP(r *http.Request) string {
	return strings.Split(r.RemoteAddr, ":")[0]
}
