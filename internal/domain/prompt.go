// Package domain contains the core business entities and domain logic for the PromptVault prompt library.
package domain

import (
	"time"

	"github.com/promptvaultapp/promptvault-server/internal/template"
)

// Prompt is a stored prompt with its tagging, template metadata and
// usage counters. Content always reflects the latest version in the
// ledger.
type Prompt struct {
	ID           string                      `json:"id"`
	Slug         string                      `json:"slug"`
	Title        string                      `json:"title"`
	Content      string                      `json:"content"`
	Description  string                      `json:"description,omitempty"`
	Category     string                      `json:"category,omitempty"`
	Tags         []string                    `json:"tags"`
	SourceURL    string                      `json:"source_url,omitempty"`
	IsTemplate   bool                        `json:"is_template"`
	TemplateVars map[string]template.VarSpec `json:"template_vars,omitempty"`
	SuccessNotes string                      `json:"success_notes,omitempty"`
	FailureNotes string                      `json:"failure_notes,omitempty"`
	RelatedSlugs []string                    `json:"related_slugs"`
	Version      int                         `json:"version"`
	UseCount     int                         `json:"use_count"`
	LastUsedAt   *time.Time                  `json:"last_used_at,omitempty"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
}

// PromptVersion is one immutable entry in a prompt's version ledger.
type PromptVersion struct {
	ID         string    `json:"id"`
	PromptID   string    `json:"prompt_id"`
	Version    int       `json:"version"`
	Content    string    `json:"content"`
	ChangeNote string    `json:"change_note,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// HasTag reports whether the prompt carries the given tag.
func (p *Prompt) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// CategoryCount pairs a category name with its prompt count.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Stats is the library-level summary returned by the stats endpoint.
type Stats struct {
	TotalPrompts   int            `json:"total_prompts"`
	TotalTemplates int            `json:"total_templates"`
	TotalUses      int            `json:"total_uses"`
	Categories     map[string]int `json:"categories"`
	Tags           map[string]int `json:"tags"`
	MostUsed       []PromptRef    `json:"most_used"`
	RecentlyUsed   []PromptRef    `json:"recently_used"`
	RecentlyAdded  []PromptRef    `json:"recently_added"`
}

// PromptRef is the abbreviated prompt shape used inside stats listings.
type PromptRef struct {
	Slug       string     `json:"slug"`
	Title      string     `json:"title"`
	UseCount   int        `json:"use_count"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
