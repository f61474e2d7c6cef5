// Package api exposes the board's read-only views over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/suiboard/suiboard-backend/internal/board/service"
	"github.com/suiboard/suiboard-backend/pkg/logging"
)

type Server struct {
	router     *mux.Router
	httpServer *http.Server
	logger     logging.Logger
}

func NewServer(svc *service.Service, port string, logger logging.Logger) *Server {
	router := mux.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", "Accept", "Origin", "X-Requested-With"},
	})

	s := &Server{
		router: router,
		logger: logger,
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%s", port),
			Handler:      corsHandler.Handler(router),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
	}

	s.routes(svc)
	return s
}

func (s *Server) routes(svc *service.Service) {
	handler := NewHandler(svc, s.logger)

	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(mux.CORSMethodMiddleware(api))

	api.HandleFunc("/board/{address}", handler.GetBoard).Methods("GET")
	api.HandleFunc("/leaderboard", handler.GetLeaderboard).Methods("GET")
	api.HandleFunc("/activity", handler.GetActivity).Methods("GET")
	api.HandleFunc("/proposals", handler.GetProposals).Methods("GET")
	api.HandleFunc("/listings", handler.GetListings).Methods("GET")
	api.HandleFunc("/staking", handler.GetStakingStats).Methods("GET")
	api.HandleFunc("/health", handler.GetHealth).Methods("GET")

	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")
}

func (s *Server) Start() error {
	s.logger.Infof("Starting API server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("API server failed: %w", err)
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down API server...")
	return s.httpServer.Shutdown(ctx)
}
