// Package server is the small backend the portfolio page calls for view counts
// and judge statistics. It proxies the upstream services so the page never
// holds the counter token.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/goccy/go-json"
	"github.com/huangsam/folio/internal/contract"
	"github.com/huangsam/folio/internal/logging"
	"github.com/huangsam/folio/schema"
)

// failedCount is returned by /get_views when the counter cannot be reached.
const failedCount = -1

// shutdownTimeout bounds the graceful shutdown after the context is cancelled.
const shutdownTimeout = 5 * time.Second

// counterResponse is the body of the counter service's increment endpoint.
type counterResponse struct {
	Data *struct {
		UpCount *int `json:"up_count"`
	} `json:"data"`
}

// judgeProxyResponse wraps the upstream solved-problem object.
type judgeProxyResponse struct {
	Data json.RawMessage `json:"data"`
}

// Proxy serves the backend endpoints.
type Proxy struct {
	cfg    *contract.Config
	client *http.Client
}

// NewProxy creates a proxy for cfg. A nil client uses one with the configured timeout.
func NewProxy(cfg *contract.Config, client *http.Client) *Proxy {
	if client == nil {
		client = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	return &Proxy{cfg: cfg, client: client}
}

// Router returns the chi router with CORS open to all origins.
func (p *Proxy) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/get_views", p.handleGetViews)
	r.Get("/get_leetcode_stats", p.handleGetJudgeStats)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return r
}

// handleGetViews increments the counter and returns the new count. Every
// failure is reported in-band as a count of -1 with status 200.
func (p *Proxy) handleGetViews(w http.ResponseWriter, r *http.Request) {
	count, err := p.incrementViews(r.Context())
	if err != nil {
		logging.Warn().Err(err).Msg("view counter unavailable")
		count = failedCount
	}
	writeJSON(w, http.StatusOK, schema.ViewsResponse{Count: &count})
}

func (p *Proxy) incrementViews(ctx context.Context) (int, error) {
	if p.cfg.CounterURL == "" {
		return 0, errors.New("counter-url is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.CounterURL+"/up", nil)
	if err != nil {
		return 0, err
	}
	if p.cfg.CounterToken != "" {
		req.Header.Set("Authorization", "Bearer "+p.cfg.CounterToken)
	}

	var body counterResponse
	if err := p.do(req, &body); err != nil {
		return 0, err
	}
	if body.Data == nil || body.Data.UpCount == nil {
		return 0, errors.New("counter response has no up_count")
	}
	return *body.Data.UpCount + 1, nil
}

// handleGetJudgeStats relays the solved-problem object for the configured user.
func (p *Proxy) handleGetJudgeStats(w http.ResponseWriter, r *http.Request) {
	if p.cfg.JudgeUsername == "" {
		logging.Warn().Msg("judge-username is not configured")
		writeJSON(w, http.StatusBadGateway, judgeProxyResponse{Data: json.RawMessage("null")})
		return
	}

	url := fmt.Sprintf("%s/%s/solved", p.cfg.JudgeUpstream, p.cfg.JudgeUsername)
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, url, nil)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, judgeProxyResponse{Data: json.RawMessage("null")})
		return
	}

	var stats map[string]any
	if err := p.do(req, &stats); err != nil || stats == nil {
		logging.Warn().Err(err).Str("url", url).Msg("judge upstream unavailable")
		writeJSON(w, http.StatusBadGateway, judgeProxyResponse{Data: json.RawMessage("null")})
		return
	}

	data, err := json.Marshal(stats)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, judgeProxyResponse{Data: json.RawMessage("null")})
		return
	}
	writeJSON(w, http.StatusOK, judgeProxyResponse{Data: data})
}

// do sends req and decodes a 2xx JSON body into out.
func (p *Proxy) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("upstream %s returned status %d", req.URL.Redacted(), resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode upstream response: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error().Err(err).Msg("failed to write response")
	}
}

// requestLogging logs one line per request with the chi request id.
func requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logging.Info().
			Str("request_id", chimiddleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// Serve listens on cfg.ListenAddr until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, cfg *contract.Config) error {
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           NewProxy(cfg, nil).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", cfg.ListenAddr).Msg("backend listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		return nil
	}
}
