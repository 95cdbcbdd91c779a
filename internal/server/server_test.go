package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rein-network/rein-node/internal/block"
	"github.com/rein-network/rein-node/internal/btcmsg"
	"github.com/rein-network/rein-node/internal/config"
	"github.com/rein-network/rein-node/internal/expiry"
	"github.com/rein-network/rein-node/internal/order"
	"github.com/rein-network/rein-node/internal/services"
	"github.com/rein-network/rein-node/internal/validate"
)

type unreachableQuerier struct{}

func (unreachableQuerier) Query(context.Context, block.Source, string, string) (block.Response, error) {
	return block.Response{}, errors.New("connection refused")
}

func newTestServer(t *testing.T, configure ...func(*config.NodeEnvironment)) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	oracle, err := block.NewOracle(block.NewCache(block.NewMemoryStore(), false), unreachableQuerier{},
		block.OracleConfig{Workers: 1, Resolution: block.ResolutionPlurality}, logger)
	if err != nil {
		t.Fatalf("NewOracle: %v", err)
	}

	svc := &services.Services{
		Validator: validate.NewValidator(btcmsg.NewVerifier(false), logger),
		Oracle:    oracle,
		Sources:   []block.Source{{Name: "oracle1", URL: "http://127.0.0.1:1/"}},
		Expiry:    expiry.NewFilter(oracle, logger),
		Orders:    order.NewService(nil, order.DefaultFlow),
	}
	cfg := &config.NodeEnvironment{
		Environment:           "test",
		MaxRequestSize:        1024,
		MaxDocumentSize:       512,
		RateLimitRPS:          0,
		ServerShutdownTimeout: time.Second,
	}
	for _, fn := range configure {
		fn(cfg)
	}
	return NewServer(nil, svc, cfg, logger)
}

func TestRoutes(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name     string
		method   string
		path     string
		body      string
		wantCode  int
		wantLimit string
	}{
		{"liveness", http.MethodGet, "/health/live", "", http.StatusOK, "1024"},
		{"version", http.MethodGet, "/version", "", http.StatusOK, "1024"},
		{"verify", http.MethodPost, "/v1/signatures/verify", "not signed", http.StatusOK, "512"},
		{"unresolvable block", http.MethodGet, "/v1/blocks/" + strings.Repeat("0", 64), "", http.StatusBadGateway, "1024"},
		{"request too large", http.MethodPost, "/v1/signatures/verify", strings.Repeat("x", 2048), http.StatusRequestEntityTooLarge, "1024"},
		{"document too large", http.MethodPost, "/v1/signatures/verify", strings.Repeat("x", 600), http.StatusRequestEntityTooLarge, "512"},
		{"attach document too large", http.MethodPost, "/v1/orders/job-1/documents", strings.Repeat("x", 600), http.StatusRequestEntityTooLarge, "512"},
		{"posting batch above the document limit", http.MethodPost, "/v1/postings/live", `{"documents":["` + strings.Repeat("x", 600) + `"]}`, http.StatusOK, "1024"},
		{"unknown route", http.MethodGet, "/v2/orders", "", http.StatusNotFound, "1024"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body)))

			if rr.Code != tt.wantCode {
				t.Fatalf("got status %d, want %d: %s", rr.Code, tt.wantCode, rr.Body.String())
			}
			if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
				t.Error("security headers not set")
			}
			if got := rr.Header().Get("X-Max-Request-Size"); got != tt.wantLimit {
				t.Errorf("X-Max-Request-Size: got %q, want %q", got, tt.wantLimit)
			}
		})
	}
}

func TestOracleRoutesRateLimit(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.NodeEnvironment) {
		cfg.OracleRateLimitRPS = 1
		cfg.OracleRateLimitBurst = 1
	})

	request := func(method, path, body string) int {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.RemoteAddr = "192.0.2.1:1234"
		rr := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rr, req)
		return rr.Code
	}

	blockPath := "/v1/blocks/" + strings.Repeat("0", 64)
	if code := request(http.MethodGet, blockPath, ""); code != http.StatusBadGateway {
		t.Fatalf("first block lookup: got status %d", code)
	}
	if code := request(http.MethodPost, "/v1/postings/live", `{"documents":[]}`); code != http.StatusTooManyRequests {
		t.Errorf("oracle routes share the client budget: got status %d, want 429", code)
	}
	// routes that never reach an oracle are not affected
	if code := request(http.MethodPost, "/v1/signatures/verify", "not signed"); code != http.StatusOK {
		t.Errorf("verify: got status %d", code)
	}
}
