package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/pagetrail/pagetrail-server/internal/domain"
)

func (s *Server) registerStatsRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getStats",
		Method:      http.MethodGet,
		Path:        "/api/v1/stats",
		Summary:     "Reading stats",
		Description: "Library counts plus pages, sessions and finished books within a period",
		Tags:        []string{"Stats"},
	}, s.handleGetStats)
}

// StatsInput selects the stats period.
type StatsInput struct {
	Period string `query:"period" enum:"day,week,month,year,all" default:"all" doc:"Time window for reading activity"`
}

// StatsOutput wraps the stats for Huma.
type StatsOutput struct {
	Body *domain.ReadingStats
}

func (s *Server) handleGetStats(ctx context.Context, input *StatsInput) (*StatsOutput, error) {
	stats, err := s.services.Stats.Summary(ctx, domain.StatsPeriod(input.Period))
	if err != nil {
		return nil, err
	}
	return &StatsOutput{Body: stats}, nil
}
