package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/promptvaultapp/promptvault-server/internal/domain"
	"github.com/promptvaultapp/promptvault-server/internal/service"
	"github.com/promptvaultapp/promptvault-server/internal/store"
	"github.com/promptvaultapp/promptvault-server/internal/template"
)

func (s *Server) registerPromptRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listPrompts",
		Method:      http.MethodGet,
		Path:        "/api/v1/prompts",
		Summary:     "List prompts",
		Description: "Returns prompts matching the given filters",
		Tags:        []string{"Prompts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListPrompts)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createPrompt",
		Method:        http.MethodPost,
		Path:          "/api/v1/prompts",
		Summary:       "Create prompt",
		Description:   "Creates a new prompt; template metadata is detected from the content unless supplied",
		Tags:          []string{"Prompts"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreatePrompt)

	huma.Register(s.api, huma.Operation{
		OperationID: "getRandomPrompt",
		Method:      http.MethodGet,
		Path:        "/api/v1/prompts/random",
		Summary:     "Get random prompt",
		Description: "Returns a random prompt, optionally filtered by category or tag",
		Tags:        []string{"Prompts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRandomPrompt)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPrompt",
		Method:      http.MethodGet,
		Path:        "/api/v1/prompts/{slug}",
		Summary:     "Get prompt",
		Description: "Returns a prompt by slug, optionally recording a use",
		Tags:        []string{"Prompts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetPrompt)

	huma.Register(s.api, huma.Operation{
		OperationID: "updatePrompt",
		Method:      http.MethodPatch,
		Path:        "/api/v1/prompts/{slug}",
		Summary:     "Update prompt",
		Description: "Applies a partial update; content changes open a new version",
		Tags:        []string{"Prompts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdatePrompt)

	huma.Register(s.api, huma.Operation{
		OperationID: "deletePrompt",
		Method:      http.MethodDelete,
		Path:        "/api/v1/prompts/{slug}",
		Summary:     "Delete prompt",
		Description: "Deletes a prompt and its version history",
		Tags:        []string{"Prompts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeletePrompt)

	huma.Register(s.api, huma.Operation{
		OperationID: "addPromptNote",
		Method:      http.MethodPost,
		Path:        "/api/v1/prompts/{slug}/notes",
		Summary:     "Add note",
		Description: "Appends to the prompt's success or failure notes without touching its version",
		Tags:        []string{"Prompts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAddNote)
}

// === DTOs ===

// PromptResponse contains prompt data in API responses.
type PromptResponse struct {
	ID           string                      `json:"id" doc:"Prompt ID"`
	Slug         string                      `json:"slug" doc:"URL-safe slug"`
	Title        string                      `json:"title" doc:"Prompt title"`
	Content      string                      `json:"content" doc:"Prompt content"`
	Description  string                      `json:"description,omitempty" doc:"Short description"`
	Category     string                      `json:"category,omitempty" doc:"Category name"`
	Tags         []string                    `json:"tags" doc:"Tags"`
	SourceURL    string                      `json:"source_url,omitempty" doc:"Where the prompt came from"`
	IsTemplate   bool                        `json:"is_template" doc:"Whether the content is a template"`
	TemplateVars map[string]template.VarSpec `json:"template_vars,omitempty" doc:"Template variable specs"`
	SuccessNotes string                      `json:"success_notes,omitempty" doc:"Accumulated notes on what worked"`
	FailureNotes string                      `json:"failure_notes,omitempty" doc:"Accumulated notes on what did not"`
	RelatedSlugs []string                    `json:"related_slugs" doc:"Slugs of related prompts"`
	Version      int                         `json:"version" doc:"Current version number"`
	UseCount     int                         `json:"use_count" doc:"Number of recorded uses"`
	LastUsedAt   *time.Time                  `json:"last_used_at,omitempty" doc:"Time of last use"`
	CreatedAt    time.Time                   `json:"created_at" doc:"Creation time"`
	UpdatedAt    time.Time                   `json:"updated_at" doc:"Last update time"`
}

func toPromptResponse(p *domain.Prompt) PromptResponse {
	return PromptResponse{
		ID:           p.ID,
		Slug:         p.Slug,
		Title:        p.Title,
		Content:      p.Content,
		Description:  p.Description,
		Category:     p.Category,
		Tags:         p.Tags,
		SourceURL:    p.SourceURL,
		IsTemplate:   p.IsTemplate,
		TemplateVars: p.TemplateVars,
		SuccessNotes: p.SuccessNotes,
		FailureNotes: p.FailureNotes,
		RelatedSlugs: p.RelatedSlugs,
		Version:      p.Version,
		UseCount:     p.UseCount,
		LastUsedAt:   p.LastUsedAt,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// PromptOutput wraps a single prompt response for Huma.
type PromptOutput struct {
	Body PromptResponse
}

// ListPromptsInput contains filter parameters for listing prompts.
type ListPromptsInput struct {
	Search   string   `query:"q" doc:"Substring match on title, content, and description"`
	Category string   `query:"category" doc:"Filter by category"`
	Tags     []string `query:"tag" doc:"Filter by tag; repeat to require all"`
	Sort     string   `query:"sort" enum:"recent,popular,updated,created" doc:"Sort order (default: updated)"`
	Limit    int      `query:"limit" minimum:"0" maximum:"500" doc:"Maximum number of prompts to return (0 means no limit)"`
	Offset   int      `query:"offset" minimum:"0" doc:"Number of prompts to skip"`
}

// ListPromptsResponse contains a page of prompts.
type ListPromptsResponse struct {
	Prompts []PromptResponse `json:"prompts" doc:"Matching prompts"`
	Total   int              `json:"total" doc:"Total matches before pagination"`
	Limit   int              `json:"limit,omitempty" doc:"Applied limit"`
	Offset  int              `json:"offset,omitempty" doc:"Applied offset"`
}

// ListPromptsOutput wraps the list prompts response for Huma.
type ListPromptsOutput struct {
	Body ListPromptsResponse
}

// CreatePromptRequest is the request body for creating a prompt.
type CreatePromptRequest struct {
	Title        string                      `json:"title" validate:"required,min=1,max=200" doc:"Prompt title"`
	Content      string                      `json:"content" validate:"required" doc:"Prompt content"`
	Slug         string                      `json:"slug,omitempty" validate:"omitempty,slug,max=100" doc:"Explicit slug; derived from the title when omitted"`
	Description  string                      `json:"description,omitempty" validate:"omitempty,max=2000" doc:"Short description"`
	Category     string                      `json:"category,omitempty" validate:"omitempty,max=100" doc:"Category name"`
	Tags         []string                    `json:"tags,omitempty" doc:"Tags"`
	SourceURL    string                      `json:"source_url,omitempty" validate:"omitempty,url,max=2000" doc:"Where the prompt came from"`
	IsTemplate   *bool                       `json:"is_template,omitempty" doc:"Pin template detection instead of deriving it"`
	TemplateVars map[string]template.VarSpec `json:"template_vars,omitempty" doc:"Explicit template variable specs"`
	SuccessNotes string                      `json:"success_notes,omitempty" doc:"Initial success notes"`
	FailureNotes string                      `json:"failure_notes,omitempty" doc:"Initial failure notes"`
	RelatedSlugs []string                    `json:"related_slugs,omitempty" doc:"Slugs of related prompts"`
}

// CreatePromptInput wraps the create prompt request for Huma.
type CreatePromptInput struct {
	Body CreatePromptRequest
}

// GetPromptInput contains parameters for getting a prompt.
type GetPromptInput struct {
	Slug  string `path:"slug" doc:"Prompt slug"`
	Track bool   `query:"track" doc:"Record a use of this prompt"`
}

// UpdatePromptRequest is the request body for updating a prompt.
type UpdatePromptRequest struct {
	Title        *string                     `json:"title,omitempty" validate:"omitempty,min=1,max=200" doc:"Prompt title"`
	Content      *string                     `json:"content,omitempty" doc:"Prompt content"`
	Description  *string                     `json:"description,omitempty" validate:"omitempty,max=2000" doc:"Short description"`
	Category     *string                     `json:"category,omitempty" validate:"omitempty,max=100" doc:"Category name"`
	Tags         []string                    `json:"tags,omitempty" doc:"Replacement tag set"`
	SourceURL    *string                     `json:"source_url,omitempty" validate:"omitempty,url,max=2000" doc:"Where the prompt came from"`
	IsTemplate   *bool                       `json:"is_template,omitempty" doc:"Pin template detection"`
	TemplateVars map[string]template.VarSpec `json:"template_vars,omitempty" doc:"Explicit template variable specs"`
	RelatedSlugs []string                    `json:"related_slugs,omitempty" doc:"Replacement related slug set"`
	ChangeNote   string                      `json:"change_note,omitempty" validate:"omitempty,max=500" doc:"Note recorded with the new version when content changes"`
}

// UpdatePromptInput wraps the update prompt request for Huma.
type UpdatePromptInput struct {
	Slug string `path:"slug" doc:"Prompt slug"`
	Body UpdatePromptRequest
}

// DeletePromptInput contains parameters for deleting a prompt.
type DeletePromptInput struct {
	Slug string `path:"slug" doc:"Prompt slug"`
}

// RandomPromptInput contains filter parameters for picking a random prompt.
type RandomPromptInput struct {
	Category string `query:"category" doc:"Filter by category"`
	Tag      string `query:"tag" doc:"Filter by tag"`
}

// AddNoteRequest is the request body for appending notes. At least one
// of the two logs has to receive something.
type AddNoteRequest struct {
	Success string `json:"success,omitempty" doc:"Note to append to the success log"`
	Failure string `json:"failure,omitempty" doc:"Note to append to the failure log"`
}

// AddNoteInput wraps the add note request for Huma.
type AddNoteInput struct {
	Slug string `path:"slug" doc:"Prompt slug"`
	Body AddNoteRequest
}

// MessageResponse contains a human-readable confirmation.
type MessageResponse struct {
	Message string `json:"message" doc:"Confirmation message"`
}

// MessageOutput wraps a message response for Huma.
type MessageOutput struct {
	Body MessageResponse
}

// === Handlers ===

func (s *Server) handleListPrompts(ctx context.Context, input *ListPromptsInput) (*ListPromptsOutput, error) {
	prompts, total, err := s.prompts.List(ctx, store.ListParams{
		Search:   input.Search,
		Category: input.Category,
		Tags:     input.Tags,
		Sort:     input.Sort,
		Limit:    input.Limit,
		Offset:   input.Offset,
	})
	if err != nil {
		return nil, err
	}

	resp := make([]PromptResponse, len(prompts))
	for i, p := range prompts {
		resp[i] = toPromptResponse(p)
	}

	return &ListPromptsOutput{Body: ListPromptsResponse{
		Prompts: resp,
		Total:   total,
		Limit:   input.Limit,
		Offset:  input.Offset,
	}}, nil
}

func (s *Server) handleCreatePrompt(ctx context.Context, input *CreatePromptInput) (*PromptOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	p, err := s.prompts.Create(ctx, service.CreateParams{
		Title:        input.Body.Title,
		Content:      input.Body.Content,
		Slug:         input.Body.Slug,
		Description:  input.Body.Description,
		Category:     input.Body.Category,
		Tags:         input.Body.Tags,
		IsTemplate:   input.Body.IsTemplate,
		TemplateVars: input.Body.TemplateVars,
		SourceURL:    input.Body.SourceURL,
		SuccessNotes: input.Body.SuccessNotes,
		FailureNotes: input.Body.FailureNotes,
		RelatedSlugs: input.Body.RelatedSlugs,
	})
	if err != nil {
		return nil, err
	}

	return &PromptOutput{Body: toPromptResponse(p)}, nil
}

func (s *Server) handleGetPrompt(ctx context.Context, input *GetPromptInput) (*PromptOutput, error) {
	p, err := s.prompts.Get(ctx, input.Slug, input.Track)
	if err != nil {
		return nil, err
	}

	return &PromptOutput{Body: toPromptResponse(p)}, nil
}

func (s *Server) handleUpdatePrompt(ctx context.Context, input *UpdatePromptInput) (*PromptOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	p, err := s.prompts.Update(ctx, input.Slug, domain.UpdateFields{
		Title:        input.Body.Title,
		Content:      input.Body.Content,
		Description:  input.Body.Description,
		Category:     input.Body.Category,
		Tags:         input.Body.Tags,
		IsTemplate:   input.Body.IsTemplate,
		TemplateVars: input.Body.TemplateVars,
		SourceURL:    input.Body.SourceURL,
		RelatedSlugs: input.Body.RelatedSlugs,
	}, input.Body.ChangeNote)
	if err != nil {
		return nil, err
	}

	return &PromptOutput{Body: toPromptResponse(p)}, nil
}

func (s *Server) handleDeletePrompt(ctx context.Context, input *DeletePromptInput) (*MessageOutput, error) {
	if err := s.prompts.Delete(ctx, input.Slug); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Prompt deleted"}}, nil
}

func (s *Server) handleRandomPrompt(ctx context.Context, input *RandomPromptInput) (*PromptOutput, error) {
	p, err := s.prompts.Random(ctx, store.RandomParams{
		Category: input.Category,
		Tag:      input.Tag,
	})
	if err != nil {
		return nil, err
	}

	return &PromptOutput{Body: toPromptResponse(p)}, nil
}

func (s *Server) handleAddNote(ctx context.Context, input *AddNoteInput) (*PromptOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	p, err := s.prompts.AddNote(ctx, input.Slug, input.Body.Success, input.Body.Failure)
	if err != nil {
		return nil, err
	}

	return &PromptOutput{Body: toPromptResponse(p)}, nil
}
