package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rein-network/rein-node/internal/config"
	"github.com/rein-network/rein-node/internal/logger"
	"github.com/rein-network/rein-node/internal/server/handlers"
	reinmiddleware "github.com/rein-network/rein-node/internal/server/middleware"
	"github.com/rein-network/rein-node/internal/services"
	"github.com/rein-network/rein-node/internal/version"
)

type Server struct {
	pool     *pgxpool.Pool
	config   *config.NodeEnvironment
	logger   *slog.Logger
	router   *chi.Mux
	services *services.Services
}

func NewServer(
	pool *pgxpool.Pool,
	svc *services.Services,
	cfg *config.NodeEnvironment,
	logger *slog.Logger,
) *Server {
	server := &Server{
		pool:     pool,
		config:   cfg,
		logger:   logger,
		router:   chi.NewRouter(),
		services: svc,
	}

	server.setupMiddleware()
	server.registerRoutes()

	return server
}

// Handler returns the router (used by tests).
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(logger.RequestLogging(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(reinmiddleware.SecurityHeaders(s.config.Environment))
	s.router.Use(reinmiddleware.BodyLimit(s.config.MaxRequestSize))
	s.router.Use(reinmiddleware.RateLimit(reinmiddleware.Limit{
		Scope:             "api",
		RequestsPerSecond: s.config.RateLimitRPS,
		Burst:             s.config.RateLimitBurst,
	}))
}

func (s *Server) registerRoutes() {
	signatures := handlers.NewSignatureHandler(s.services.Validator)
	orders := handlers.NewOrderHandler(s.services.Orders, s.services.Validator)
	blocks := handlers.NewBlockHandler(s.services.Oracle, s.services.Sources)
	postings := handlers.NewPostingHandler(s.services.Validator, s.services.Expiry, s.services.Sources)

	s.router.Get("/health/live", handlers.HandleHealth)
	s.router.Get("/health/ready", handlers.HandleReadiness(s.services.Queries))
	s.router.Get("/version", handlers.HandleVersion(version.Get(), s.config.Testnet))

	// single armored documents
	documentLimit := reinmiddleware.BodyLimit(s.config.MaxDocumentSize)

	// routes that can query every oracle in the registry
	oracleLimit := reinmiddleware.RateLimit(reinmiddleware.Limit{
		Scope:             "oracle",
		RequestsPerSecond: s.config.OracleRateLimitRPS,
		Burst:             s.config.OracleRateLimitBurst,
		PerClient:         true,
	})

	s.router.Route("/v1", func(r chi.Router) {
		r.Route("/signatures", func(r chi.Router) {
			r.Use(documentLimit)
			r.Post("/verify", signatures.HandleVerify)
			r.Post("/enrollment", signatures.HandleEnrollment)
			r.Post("/chain", signatures.HandleChain)
		})

		r.Get("/orders/{jobID}/state", orders.HandleState)
		r.With(documentLimit).Post("/orders/{jobID}/documents", orders.HandleAttach)
		r.Get("/users/{identity}/orders", orders.HandleUserOrders)

		r.With(oracleLimit).Get("/blocks/{hash}", blocks.HandleGetBlock)
		r.With(oracleLimit).Post("/postings/live", postings.HandleLive)
	})
}

func (s *Server) Start(ctx context.Context) error {
	serverAddr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	httpServer := &http.Server{
		Addr:         serverAddr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("service listening",
			slog.String("environment", s.config.Environment),
			slog.Bool("testnet", s.config.Testnet),
			slog.String("address", serverAddr))

		err := httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			serverErrors <- fmt.Errorf("server failed to start: %w", err)
		}
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), s.config.ServerShutdownTimeout)
	defer shutdownCancel()

	s.logger.Info("shutting down HTTP server")

	err := httpServer.Shutdown(shutdownCtx)
	if err != nil {
		s.logger.Warn("HTTP server shutdown error",
			slog.String("error", err.Error()))
		return fmt.Errorf("HTTP server shutdown failed: %w", err)
	}

	s.logger.Info("HTTP server shutdown complete")
	return nil
}

func (s *Server) DatabaseShutdown() {
	if s.pool != nil {
		s.pool.Close()
		s.logger.Info("database connection closed")
	}
}
