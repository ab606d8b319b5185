package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/promptvaultapp/promptvault-server/internal/domain"
)

func (s *Server) registerStatsRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getStats",
		Method:      http.MethodGet,
		Path:        "/api/v1/stats",
		Summary:     "Get stats",
		Description: "Returns library-wide usage statistics",
		Tags:        []string{"Stats"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleStats)

	huma.Register(s.api, huma.Operation{
		OperationID: "listCategories",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories",
		Summary:     "List categories",
		Description: "Returns all categories in use with their prompt counts",
		Tags:        []string{"Stats"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListCategories)

	huma.Register(s.api, huma.Operation{
		OperationID: "listTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags",
		Summary:     "List tags",
		Description: "Returns all tags in use with their prompt counts",
		Tags:        []string{"Stats"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListTags)
}

// === DTOs ===

// StatsOutput wraps the stats response for Huma.
type StatsOutput struct {
	Body domain.Stats
}

// ListCategoriesResponse contains the categories in use.
type ListCategoriesResponse struct {
	Categories []domain.CategoryCount `json:"categories" doc:"Categories with prompt counts, most-populated first"`
}

// ListCategoriesOutput wraps the categories response for Huma.
type ListCategoriesOutput struct {
	Body ListCategoriesResponse
}

// ListTagsResponse contains tag usage counts.
type ListTagsResponse struct {
	Tags map[string]int `json:"tags" doc:"Tag name to prompt count"`
}

// ListTagsOutput wraps the tags response for Huma.
type ListTagsOutput struct {
	Body ListTagsResponse
}

// === Handlers ===

func (s *Server) handleStats(ctx context.Context, _ *struct{}) (*StatsOutput, error) {
	stats, err := s.prompts.Stats(ctx)
	if err != nil {
		return nil, err
	}

	return &StatsOutput{Body: *stats}, nil
}

func (s *Server) handleListCategories(ctx context.Context, _ *struct{}) (*ListCategoriesOutput, error) {
	categories, err := s.prompts.Categories(ctx)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []domain.CategoryCount{}
	}

	return &ListCategoriesOutput{Body: ListCategoriesResponse{Categories: categories}}, nil
}

func (s *Server) handleListTags(ctx context.Context, _ *struct{}) (*ListTagsOutput, error) {
	tags, err := s.prompts.TagCounts(ctx)
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = map[string]int{}
	}

	return &ListTagsOutput{Body: ListTagsResponse{Tags: tags}}, nil
}
