// Package store defines the persistence interface for the PromptVault server.
package store

import (
	"context"
	"time"

	"github.com/promptvaultapp/promptvault-server/internal/domain"
)

// Sort orders accepted by List.
const (
	SortRecent  = "recent"  // most recently used first
	SortPopular = "popular" // highest use count first
	SortUpdated = "updated" // most recently updated first
	SortCreated = "created" // most recently created first
)

// ListParams filters and orders a prompt listing. Zero values mean
// "no filter". All filters combine with AND; multiple tags all have
// to be present.
type ListParams struct {
	Search   string
	Category string
	Tags     []string
	Sort     string
	Limit    int
	Offset   int
}

// RandomParams narrows the pool Random picks from.
type RandomParams struct {
	Category string
	Tag      string
}

// Store defines the interface for all persistence operations.
type Store interface {
	// Lifecycle
	Close() error

	// Prompts
	CreatePrompt(ctx context.Context, prompt *domain.Prompt, initial *domain.PromptVersion) error
	GetPrompt(ctx context.Context, id string) (*domain.Prompt, error)
	GetPromptBySlug(ctx context.Context, slug string) (*domain.Prompt, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	UpdatePrompt(ctx context.Context, prompt *domain.Prompt, prevVersion int, newVersion *domain.PromptVersion) error
	DeletePrompt(ctx context.Context, id string) error
	ListPrompts(ctx context.Context, params ListParams) ([]*domain.Prompt, int, error)
	RandomPrompt(ctx context.Context, params RandomParams) (*domain.Prompt, error)
	IncrementUsage(ctx context.Context, id string, usedAt time.Time) error

	// Versions
	ListVersions(ctx context.Context, promptID string) ([]*domain.PromptVersion, error)
	GetVersion(ctx context.Context, promptID string, version int) (*domain.PromptVersion, error)

	// Aggregates
	ListCategories(ctx context.Context) ([]domain.CategoryCount, error)
	TagCounts(ctx context.Context) (map[string]int, error)
	Stats(ctx context.Context) (*domain.Stats, error)
}
