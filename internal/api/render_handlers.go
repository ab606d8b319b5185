package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"github.com/promptvaultapp/promptvault-server/internal/http/response"
	"github.com/promptvaultapp/promptvault-server/internal/template"
)

func (s *Server) registerRenderRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "renderPrompt",
		Method:      http.MethodPost,
		Path:        "/api/v1/prompts/{slug}/render",
		Summary:     "Render prompt",
		Description: "Substitutes variables into a template prompt and records a use",
		Tags:        []string{"Render"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRenderPrompt)

	huma.Register(s.api, huma.Operation{
		OperationID: "validateTemplate",
		Method:      http.MethodPost,
		Path:        "/api/v1/templates/validate",
		Summary:     "Validate template",
		Description: "Checks template syntax without storing anything",
		Tags:        []string{"Render"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleValidateTemplate)

	// Plain GET variant for quick shell use: every query parameter
	// becomes a string variable. Registered outside huma because the
	// variable names are not known ahead of time.
	s.router.Get("/api/v1/prompts/{slug}/render", s.handleRenderPromptGet)
}

// === DTOs ===

// RenderPromptRequest is the request body for rendering a prompt.
type RenderPromptRequest struct {
	Variables map[string]any `json:"variables,omitempty" doc:"Variable values; specs with defaults fill in the rest"`
}

// RenderPromptInput wraps the render request for Huma.
type RenderPromptInput struct {
	Slug string `path:"slug" doc:"Prompt slug"`
	Body RenderPromptRequest
}

// RenderPromptResponse contains the rendered prompt content.
type RenderPromptResponse struct {
	Slug     string `json:"slug" doc:"Prompt slug"`
	Version  int    `json:"version" doc:"Prompt version that was rendered"`
	Rendered string `json:"rendered" doc:"Rendered content"`
}

// RenderPromptOutput wraps the render response for Huma.
type RenderPromptOutput struct {
	Body RenderPromptResponse
}

// ValidateTemplateRequest is the request body for validating a template.
type ValidateTemplateRequest struct {
	Content string `json:"content" validate:"required" doc:"Template content to check"`
}

// ValidateTemplateInput wraps the validate request for Huma.
type ValidateTemplateInput struct {
	Body ValidateTemplateRequest
}

// ValidateTemplateResponse reports the outcome of a syntax check.
type ValidateTemplateResponse struct {
	Valid      bool     `json:"valid" doc:"Whether the template parses"`
	Error      string   `json:"error,omitempty" doc:"Syntax error when invalid"`
	IsTemplate bool     `json:"is_template" doc:"Whether the content contains template markers"`
	Variables  []string `json:"variables" doc:"Variable names referenced by the template"`
}

// ValidateTemplateOutput wraps the validate response for Huma.
type ValidateTemplateOutput struct {
	Body ValidateTemplateResponse
}

// === Handlers ===

func (s *Server) handleRenderPrompt(ctx context.Context, input *RenderPromptInput) (*RenderPromptOutput, error) {
	rendered, p, err := s.prompts.Render(ctx, input.Slug, input.Body.Variables)
	if err != nil {
		return nil, err
	}

	return &RenderPromptOutput{Body: RenderPromptResponse{
		Slug:     p.Slug,
		Version:  p.Version,
		Rendered: rendered,
	}}, nil
}

func (s *Server) handleValidateTemplate(ctx context.Context, input *ValidateTemplateInput) (*ValidateTemplateOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	valid, syntaxErr := template.Validate(input.Body.Content)

	resp := ValidateTemplateResponse{
		Valid:      valid,
		Error:      syntaxErr,
		IsTemplate: template.IsTemplate(input.Body.Content),
	}
	if valid {
		resp.Variables = template.ExtractVariables(input.Body.Content)
	}
	if resp.Variables == nil {
		resp.Variables = []string{}
	}

	return &ValidateTemplateOutput{Body: resp}, nil
}

// handleRenderPromptGet renders a prompt from query parameters only.
// Multi-valued parameters keep their first value.
func (s *Server) handleRenderPromptGet(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	variables := make(map[string]any)
	for name, values := range r.URL.Query() {
		if len(values) > 0 {
			variables[name] = values[0]
		}
	}

	rendered, p, err := s.prompts.Render(r.Context(), slug, variables)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, RenderPromptResponse{
		Slug:     p.Slug,
		Version:  p.Version,
		Rendered: rendered,
	}, s.logger)
}
