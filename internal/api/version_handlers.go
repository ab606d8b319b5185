package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/promptvaultapp/promptvault-server/internal/domain"
)

func (s *Server) registerVersionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listPromptVersions",
		Method:      http.MethodGet,
		Path:        "/api/v1/prompts/{slug}/versions",
		Summary:     "List versions",
		Description: "Returns the version ledger for a prompt, newest first",
		Tags:        []string{"Versions"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListVersions)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPromptVersion",
		Method:      http.MethodGet,
		Path:        "/api/v1/prompts/{slug}/versions/{version}",
		Summary:     "Get version",
		Description: "Returns a single ledger entry",
		Tags:        []string{"Versions"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetVersion)

	huma.Register(s.api, huma.Operation{
		OperationID: "restorePromptVersion",
		Method:      http.MethodPost,
		Path:        "/api/v1/prompts/{slug}/versions/{version}/restore",
		Summary:     "Restore version",
		Description: "Copies an old version's content forward as a new version",
		Tags:        []string{"Versions"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRestoreVersion)
}

// === DTOs ===

// VersionResponse contains a version ledger entry in API responses.
type VersionResponse struct {
	ID         string    `json:"id" doc:"Version ID"`
	PromptID   string    `json:"prompt_id" doc:"Owning prompt ID"`
	Version    int       `json:"version" doc:"Version number"`
	Content    string    `json:"content" doc:"Content snapshot"`
	ChangeNote string    `json:"change_note,omitempty" doc:"Note recorded with this version"`
	CreatedAt  time.Time `json:"created_at" doc:"Creation time"`
}

func toVersionResponse(v *domain.PromptVersion) VersionResponse {
	return VersionResponse{
		ID:         v.ID,
		PromptID:   v.PromptID,
		Version:    v.Version,
		Content:    v.Content,
		ChangeNote: v.ChangeNote,
		CreatedAt:  v.CreatedAt,
	}
}

// ListVersionsInput contains parameters for listing versions.
type ListVersionsInput struct {
	Slug string `path:"slug" doc:"Prompt slug"`
}

// ListVersionsResponse contains the version ledger of a prompt.
type ListVersionsResponse struct {
	Versions []VersionResponse `json:"versions" doc:"Ledger entries, newest first"`
}

// ListVersionsOutput wraps the list versions response for Huma.
type ListVersionsOutput struct {
	Body ListVersionsResponse
}

// GetVersionInput contains parameters for getting a single version.
type GetVersionInput struct {
	Slug    string `path:"slug" doc:"Prompt slug"`
	Version int    `path:"version" minimum:"1" doc:"Version number"`
}

// VersionOutput wraps a single version response for Huma.
type VersionOutput struct {
	Body VersionResponse
}

// RestoreVersionInput contains parameters for restoring a version.
type RestoreVersionInput struct {
	Slug    string `path:"slug" doc:"Prompt slug"`
	Version int    `path:"version" minimum:"1" doc:"Version number to restore"`
}

// === Handlers ===

func (s *Server) handleListVersions(ctx context.Context, input *ListVersionsInput) (*ListVersionsOutput, error) {
	versions, err := s.prompts.Versions(ctx, input.Slug)
	if err != nil {
		return nil, err
	}

	resp := make([]VersionResponse, len(versions))
	for i, v := range versions {
		resp[i] = toVersionResponse(v)
	}

	return &ListVersionsOutput{Body: ListVersionsResponse{Versions: resp}}, nil
}

func (s *Server) handleGetVersion(ctx context.Context, input *GetVersionInput) (*VersionOutput, error) {
	v, err := s.prompts.GetVersion(ctx, input.Slug, input.Version)
	if err != nil {
		return nil, err
	}

	return &VersionOutput{Body: toVersionResponse(v)}, nil
}

func (s *Server) handleRestoreVersion(ctx context.Context, input *RestoreVersionInput) (*PromptOutput, error) {
	p, err := s.prompts.RestoreVersion(ctx, input.Slug, input.Version)
	if err != nil {
		return nil, err
	}

	return &PromptOutput{Body: toPromptResponse(p)}, nil
}
