package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getHealth",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server status and version; requires no authentication",
		Tags:        []string{"Health"},
	}, s.handleHealth)
}

// HealthResponse reports server liveness.
type HealthResponse struct {
	Status  string `json:"status" doc:"Always 'ok' when the server is up"`
	Version string `json:"version" doc:"Server version"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealth(_ context.Context, _ *struct{}) (*HealthOutput, error) {
	return &HealthOutput{Body: HealthResponse{
		Status:  "ok",
		Version: Version,
	}}, nil
}
