// Package service contains the business logic between the HTTP layer
// and the store.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/promptvaultapp/promptvault-server/internal/domain"
	apperrors "github.com/promptvaultapp/promptvault-server/internal/errors"
	"github.com/promptvaultapp/promptvault-server/internal/id"
	"github.com/promptvaultapp/promptvault-server/internal/slug"
	"github.com/promptvaultapp/promptvault-server/internal/store"
	"github.com/promptvaultapp/promptvault-server/internal/template"
)

const initialChangeNote = "Initial version"

// separator between appended note entries.
const noteSeparator = "\n\n---\n\n"

// createAttempts bounds the slug retry loop when concurrent creates
// race for the same candidate.
const createAttempts = 3

// PromptService orchestrates prompt CRUD, the version ledger and
// template rendering.
type PromptService struct {
	store  store.Store
	logger *slog.Logger
}

// NewPromptService creates a new prompt service.
func NewPromptService(store store.Store, logger *slog.Logger) *PromptService {
	return &PromptService{
		store:  store,
		logger: logger,
	}
}

// CreateParams carries the caller-supplied fields for a new prompt.
type CreateParams struct {
	Title        string
	Content      string
	Slug         string
	Description  string
	Category     string
	Tags         []string
	IsTemplate   *bool
	TemplateVars map[string]template.VarSpec
	SourceURL    string
	SuccessNotes string
	FailureNotes string
	RelatedSlugs []string
}

// Create stores a new prompt with version 1 in its ledger. The slug
// comes from params.Slug verbatim when set, otherwise it is derived
// from the title with a numeric suffix on collision.
func (s *PromptService) Create(ctx context.Context, params CreateParams) (*domain.Prompt, error) {
	isTemplate, vars := template.DeriveMetadata(params.Content, params.IsTemplate, params.TemplateVars)

	var lastErr error
	for attempt := 0; attempt < createAttempts; attempt++ {
		slugValue, err := slug.Resolve(ctx, params.Slug, params.Title, s.store.SlugExists)
		if err != nil {
			return nil, err
		}

		now := time.Now().UTC()
		prompt := &domain.Prompt{
			ID:           id.MustGenerate(id.PrefixPrompt),
			Slug:         slugValue,
			Title:        params.Title,
			Content:      params.Content,
			Description:  params.Description,
			Category:     params.Category,
			Tags:         params.Tags,
			SourceURL:    params.SourceURL,
			IsTemplate:   isTemplate,
			TemplateVars: vars,
			SuccessNotes: params.SuccessNotes,
			FailureNotes: params.FailureNotes,
			RelatedSlugs: params.RelatedSlugs,
			Version:      1,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if prompt.Tags == nil {
			prompt.Tags = []string{}
		}
		if prompt.RelatedSlugs == nil {
			prompt.RelatedSlugs = []string{}
		}
		initial := &domain.PromptVersion{
			ID:         id.MustGenerate(id.PrefixVersion),
			PromptID:   prompt.ID,
			Version:    1,
			Content:    prompt.Content,
			ChangeNote: initialChangeNote,
			CreatedAt:  now,
		}

		err = s.store.CreatePrompt(ctx, prompt, initial)
		if err == nil {
			s.logger.Info("prompt created",
				"slug", prompt.Slug,
				"id", prompt.ID,
				"is_template", prompt.IsTemplate,
			)
			return prompt, nil
		}
		// An explicit slug that collides is the caller's problem; a
		// derived one lost a race and can be re-resolved.
		if !errors.Is(err, store.ErrAlreadyExists) || params.Slug != "" {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// Get returns a prompt by slug. With trackUsage it also counts the
// read as a use.
func (s *PromptService) Get(ctx context.Context, slugValue string, trackUsage bool) (*domain.Prompt, error) {
	prompt, err := s.store.GetPromptBySlug(ctx, slugValue)
	if err != nil {
		return nil, err
	}
	if trackUsage {
		now := time.Now().UTC()
		if err := s.store.IncrementUsage(ctx, prompt.ID, now); err != nil {
			return nil, err
		}
		prompt.UseCount++
		prompt.LastUsedAt = &now
	}
	return prompt, nil
}

// Update applies a partial update. A content change opens a new ledger
// entry with changeNote attached; anything else leaves the version
// untouched.
func (s *PromptService) Update(ctx context.Context, slugValue string, fields domain.UpdateFields, changeNote string) (*domain.Prompt, error) {
	prompt, err := s.store.GetPromptBySlug(ctx, slugValue)
	if err != nil {
		return nil, err
	}

	prevVersion := prompt.Version
	newVersion := domain.ApplyUpdate(prompt, fields, changeNote, time.Now().UTC())
	if newVersion != nil {
		newVersion.ID = id.MustGenerate(id.PrefixVersion)
	}

	if err := s.store.UpdatePrompt(ctx, prompt, prevVersion, newVersion); err != nil {
		return nil, err
	}

	s.logger.Info("prompt updated",
		"slug", prompt.Slug,
		"version", prompt.Version,
		"new_version", newVersion != nil,
	)
	return prompt, nil
}

// Delete removes a prompt and its entire ledger.
func (s *PromptService) Delete(ctx context.Context, slugValue string) error {
	prompt, err := s.store.GetPromptBySlug(ctx, slugValue)
	if err != nil {
		return err
	}
	if err := s.store.DeletePrompt(ctx, prompt.ID); err != nil {
		return err
	}
	s.logger.Info("prompt deleted", "slug", slugValue, "id", prompt.ID)
	return nil
}

// List returns prompts matching params and the total match count.
func (s *PromptService) List(ctx context.Context, params store.ListParams) ([]*domain.Prompt, int, error) {
	switch params.Sort {
	case "", store.SortRecent, store.SortPopular, store.SortUpdated, store.SortCreated:
	default:
		return nil, 0, apperrors.Validationf("unknown sort order %q", params.Sort)
	}
	return s.store.ListPrompts(ctx, params)
}

// Random picks one prompt from the optionally filtered pool.
func (s *PromptService) Random(ctx context.Context, params store.RandomParams) (*domain.Prompt, error) {
	return s.store.RandomPrompt(ctx, params)
}

// Versions returns a prompt's ledger, newest first.
func (s *PromptService) Versions(ctx context.Context, slugValue string) ([]*domain.PromptVersion, error) {
	prompt, err := s.store.GetPromptBySlug(ctx, slugValue)
	if err != nil {
		return nil, err
	}
	return s.store.ListVersions(ctx, prompt.ID)
}

// GetVersion returns one ledger entry.
func (s *PromptService) GetVersion(ctx context.Context, slugValue string, version int) (*domain.PromptVersion, error) {
	prompt, err := s.store.GetPromptBySlug(ctx, slugValue)
	if err != nil {
		return nil, err
	}
	return s.store.GetVersion(ctx, prompt.ID, version)
}

// RestoreVersion makes an old version's content current again. The
// restore is an ordinary content update, so it appends a new ledger
// entry rather than rewriting history. Restoring the version whose
// content already matches is a no-op.
func (s *PromptService) RestoreVersion(ctx context.Context, slugValue string, version int) (*domain.Prompt, error) {
	prompt, err := s.store.GetPromptBySlug(ctx, slugValue)
	if err != nil {
		return nil, err
	}
	old, err := s.store.GetVersion(ctx, prompt.ID, version)
	if err != nil {
		return nil, err
	}

	note := fmt.Sprintf("Restored from version %d", version)
	return s.Update(ctx, slugValue, domain.UpdateFields{Content: &old.Content}, note)
}

// Render substitutes variables into a prompt's content and counts the
// render as a use. Defaults declared on the prompt's variable specs
// fill in for variables the caller omitted.
func (s *PromptService) Render(ctx context.Context, slugValue string, variables map[string]any) (string, *domain.Prompt, error) {
	prompt, err := s.store.GetPromptBySlug(ctx, slugValue)
	if err != nil {
		return "", nil, err
	}

	merged := make(map[string]any, len(variables))
	for name, spec := range prompt.TemplateVars {
		if spec.Default != "" {
			merged[name] = spec.Default
		}
	}
	for name, value := range variables {
		merged[name] = value
	}

	rendered, err := template.Render(prompt.Content, merged)
	if err != nil {
		return "", nil, err
	}

	now := time.Now().UTC()
	if err := s.store.IncrementUsage(ctx, prompt.ID, now); err != nil {
		return "", nil, err
	}
	prompt.UseCount++
	prompt.LastUsedAt = &now

	return rendered, prompt, nil
}

// AddNote appends to the prompt's success and failure logs. Each log
// only grows; an empty argument leaves its log alone, and at least one
// has to be non-empty. Notes never touch the version ledger.
func (s *PromptService) AddNote(ctx context.Context, slugValue, successNote, failureNote string) (*domain.Prompt, error) {
	if successNote == "" && failureNote == "" {
		return nil, apperrors.Validation("provide a success or failure note")
	}

	prompt, err := s.store.GetPromptBySlug(ctx, slugValue)
	if err != nil {
		return nil, err
	}

	var fields domain.UpdateFields
	if successNote != "" {
		combined := appendNote(prompt.SuccessNotes, successNote)
		fields.SuccessNotes = &combined
	}
	if failureNote != "" {
		combined := appendNote(prompt.FailureNotes, failureNote)
		fields.FailureNotes = &combined
	}
	return s.Update(ctx, slugValue, fields, "")
}

func appendNote(log, note string) string {
	if log == "" {
		return note
	}
	return log + noteSeparator + note
}

// Categories returns the categories in use with their prompt counts,
// most-populated first.
func (s *PromptService) Categories(ctx context.Context) ([]domain.CategoryCount, error) {
	return s.store.ListCategories(ctx)
}

// TagCounts returns every tag in use with its prompt count.
func (s *PromptService) TagCounts(ctx context.Context) (map[string]int, error) {
	return s.store.TagCounts(ctx)
}

// Stats returns the library-level summary.
func (s *PromptService) Stats(ctx context.Context) (*domain.Stats, error) {
	return s.store.Stats(ctx)
}
