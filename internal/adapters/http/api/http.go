// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/okian/puckpicks/internal/domain/types"
	"github.com/okian/puckpicks/pkg/logger"
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	Rounds(ctx context.Context) ([]int, error)
	Board(ctx context.Context, userID string, round int) (types.Board, error)
	Card(ctx context.Context, userID, slug string) (types.SeriesCard, error)
	SubmitPrediction(ctx context.Context, userID, slug, score string) (types.SeriesCard, error)
	Scores() []string
}

// Server wires HTTP routes for the picks API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	seriesHandler *SeriesHandler
	logger        logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		seriesHandler: NewSeriesHandler(deps),
		logger:        logger.Named("api"),
	}
}

// Register attaches all HTTP routes to router.
func (s *Server) Register(_ context.Context, router *mux.Router) {
	router.Use(RecoveryMiddleware(s.logger), MetricsMiddleware)

	router.HandleFunc("/healthz", s.healthHandler.HandleHealth).Methods(http.MethodGet).Name("healthz")
	router.Handle("/metrics", s.healthHandler.MetricsHandler()).Methods(http.MethodGet).Name("metrics")
	router.HandleFunc("/stats", s.statsHandler.HandleStats).Methods(http.MethodGet).Name("stats")

	router.HandleFunc("/scores", s.seriesHandler.HandleScores).Methods(http.MethodGet).Name("scores")
	router.HandleFunc("/rounds", s.seriesHandler.HandleRounds).Methods(http.MethodGet).Name("rounds")
	router.HandleFunc("/rounds/{round:[0-9]+}/series", s.seriesHandler.HandleBoard).Methods(http.MethodGet).Name("board")
	router.HandleFunc("/series/{slug}", s.seriesHandler.HandleCard).Methods(http.MethodGet).Name("card")
	router.HandleFunc("/series/{slug}/prediction", s.seriesHandler.HandlePutPrediction).Methods(http.MethodPut).Name("prediction")
}
