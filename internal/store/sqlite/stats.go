package sqlite

import (
	"context"
	"database/sql"

	"github.com/promptvaultapp/promptvault-server/internal/domain"
)

// ListCategories returns the non-empty categories in use with their
// prompt counts, most-populated first. Ties break alphabetically so the
// order is stable.
func (s *Store) ListCategories(ctx context.Context) ([]domain.CategoryCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category, COUNT(*) FROM prompts
		WHERE category IS NOT NULL AND category != ''
		GROUP BY category
		ORDER BY COUNT(*) DESC, category ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []domain.CategoryCount{}
	for rows.Next() {
		var c domain.CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// TagCounts returns every tag in use with the number of prompts
// carrying it.
func (s *Store) TagCounts(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT tag, COUNT(*) FROM prompt_tags GROUP BY tag`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var tag string
		var n int
		if err := rows.Scan(&tag, &n); err != nil {
			return nil, err
		}
		counts[tag] = n
	}
	return counts, rows.Err()
}

// Stats assembles the library-level summary.
func (s *Store) Stats(ctx context.Context) (*domain.Stats, error) {
	stats := &domain.Stats{
		Categories: map[string]int{},
	}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(is_template), 0),
			COALESCE(SUM(use_count), 0)
		FROM prompts`).Scan(&stats.TotalPrompts, &stats.TotalTemplates, &stats.TotalUses)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT category, COUNT(*) FROM prompts
		WHERE category IS NOT NULL AND category != ''
		GROUP BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var c string
		var n int
		if err := rows.Scan(&c, &n); err != nil {
			return nil, err
		}
		stats.Categories[c] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stats.Tags, err = s.TagCounts(ctx)
	if err != nil {
		return nil, err
	}

	stats.MostUsed, err = s.promptRefs(ctx, `
		SELECT slug, title, use_count, last_used_at, created_at FROM prompts
		WHERE use_count > 0 ORDER BY use_count DESC LIMIT 5`)
	if err != nil {
		return nil, err
	}
	stats.RecentlyUsed, err = s.promptRefs(ctx, `
		SELECT slug, title, use_count, last_used_at, created_at FROM prompts
		WHERE last_used_at IS NOT NULL ORDER BY last_used_at DESC LIMIT 5`)
	if err != nil {
		return nil, err
	}
	stats.RecentlyAdded, err = s.promptRefs(ctx, `
		SELECT slug, title, use_count, last_used_at, created_at FROM prompts
		ORDER BY created_at DESC LIMIT 5`)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

func (s *Store) promptRefs(ctx context.Context, query string) ([]domain.PromptRef, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	refs := []domain.PromptRef{}
	for rows.Next() {
		var ref domain.PromptRef
		var lastUsedAt sql.NullString
		var createdAt string
		if err := rows.Scan(&ref.Slug, &ref.Title, &ref.UseCount, &lastUsedAt, &createdAt); err != nil {
			return nil, err
		}
		ref.LastUsedAt, err = parseNullableTime(lastUsedAt)
		if err != nil {
			return nil, err
		}
		ref.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}
