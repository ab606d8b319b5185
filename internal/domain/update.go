package domain

import (
	"time"

	"github.com/promptvaultapp/promptvault-server/internal/template"
)

// UpdateFields carries a partial update to a prompt. Nil pointers mean
// "leave unchanged", which keeps an empty string distinct from an
// omitted field.
type UpdateFields struct {
	Title        *string
	Content      *string
	Description  *string
	Category     *string
	Tags         []string
	SourceURL    *string
	IsTemplate   *bool
	TemplateVars map[string]template.VarSpec
	SuccessNotes *string
	FailureNotes *string
	RelatedSlugs []string
}

// ContentChanged reports whether the update supplies content that
// differs from current. The comparison is exact: whitespace and casing
// count, and re-submitting identical content is not a change.
func (f *UpdateFields) ContentChanged(current string) bool {
	return f.Content != nil && *f.Content != current
}

// ApplyUpdate mutates p in place with the supplied fields and decides
// whether the change opens a new ledger entry. When the content changed
// it bumps the version and returns the PromptVersion to record; any
// other combination of field changes returns nil and leaves the version
// where it is. Template metadata is re-derived whenever content changes
// and the caller did not pin it explicitly.
func ApplyUpdate(p *Prompt, fields UpdateFields, changeNote string, now time.Time) *PromptVersion {
	contentChanged := fields.ContentChanged(p.Content)

	if fields.Title != nil {
		p.Title = *fields.Title
	}
	if fields.Content != nil {
		p.Content = *fields.Content
	}
	if fields.Description != nil {
		p.Description = *fields.Description
	}
	if fields.Category != nil {
		p.Category = *fields.Category
	}
	if fields.Tags != nil {
		p.Tags = fields.Tags
	}
	if fields.SourceURL != nil {
		p.SourceURL = *fields.SourceURL
	}
	if fields.RelatedSlugs != nil {
		p.RelatedSlugs = fields.RelatedSlugs
	}

	switch {
	case fields.TemplateVars != nil:
		isTemplate, vars := template.DeriveMetadata(p.Content, fields.IsTemplate, fields.TemplateVars)
		p.IsTemplate = isTemplate
		p.TemplateVars = vars
	case contentChanged:
		p.IsTemplate, p.TemplateVars = template.DeriveMetadata(p.Content, fields.IsTemplate, nil)
	case fields.IsTemplate != nil:
		// Pinning the flag without new content or vars must not wipe the
		// stored descriptors; renders rely on their defaults.
		p.IsTemplate = *fields.IsTemplate
	}

	if fields.SuccessNotes != nil {
		p.SuccessNotes = *fields.SuccessNotes
	}
	if fields.FailureNotes != nil {
		p.FailureNotes = *fields.FailureNotes
	}

	p.UpdatedAt = now

	if !contentChanged {
		return nil
	}

	p.Version++
	return &PromptVersion{
		PromptID:   p.ID,
		Version:    p.Version,
		Content:    p.Content,
		ChangeNote: changeNote,
		CreatedAt:  now,
	}
}
