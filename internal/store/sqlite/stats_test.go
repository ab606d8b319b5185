package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/promptvaultapp/promptvault-server/internal/domain"
)

func TestStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := testPrompt(t, "alpha-prompt")
	a.Category = "engineering"
	a.Tags = []string{"go"}
	a.IsTemplate = true
	mustCreate(t, s, a)

	b := testPrompt(t, "beta-prompt")
	b.Category = "engineering"
	b.Tags = []string{"go", "sql"}
	mustCreate(t, s, b)

	c := testPrompt(t, "gamma-prompt")
	c.Category = "writing"
	c.Tags = []string{}
	mustCreate(t, s, c)

	now := time.Now().UTC()
	s.IncrementUsage(ctx, a.ID, now)
	s.IncrementUsage(ctx, a.ID, now.Add(time.Minute))
	s.IncrementUsage(ctx, b.ID, now.Add(2*time.Minute))

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}

	if stats.TotalPrompts != 3 {
		t.Errorf("expected 3 prompts, got %d", stats.TotalPrompts)
	}
	if stats.TotalTemplates != 1 {
		t.Errorf("expected 1 template, got %d", stats.TotalTemplates)
	}
	if stats.TotalUses != 3 {
		t.Errorf("expected 3 uses, got %d", stats.TotalUses)
	}
	if stats.Categories["engineering"] != 2 || stats.Categories["writing"] != 1 {
		t.Errorf("category counts mismatch: %+v", stats.Categories)
	}
	if stats.Tags["go"] != 2 || stats.Tags["sql"] != 1 {
		t.Errorf("tag counts mismatch: %+v", stats.Tags)
	}

	if len(stats.MostUsed) != 2 {
		t.Fatalf("expected 2 most used, got %d", len(stats.MostUsed))
	}
	if stats.MostUsed[0].Slug != "alpha-prompt" || stats.MostUsed[0].UseCount != 2 {
		t.Errorf("most used mismatch: %+v", stats.MostUsed[0])
	}

	if len(stats.RecentlyUsed) != 2 {
		t.Fatalf("expected 2 recently used, got %d", len(stats.RecentlyUsed))
	}
	if stats.RecentlyUsed[0].Slug != "beta-prompt" {
		t.Errorf("recently used mismatch: %+v", stats.RecentlyUsed[0])
	}

	if len(stats.RecentlyAdded) != 3 {
		t.Errorf("expected 3 recently added, got %d", len(stats.RecentlyAdded))
	}
}

func TestStatsEmptyStore(t *testing.T) {
	s := newTestStore(t)

	stats, err := s.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalPrompts != 0 || stats.TotalUses != 0 {
		t.Errorf("expected zero stats, got %+v", stats)
	}
	if len(stats.MostUsed) != 0 || len(stats.Categories) != 0 {
		t.Errorf("expected empty collections, got %+v", stats)
	}
}

func TestListCategories(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cats, err := s.ListCategories(ctx)
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(cats) != 0 {
		t.Errorf("expected no categories, got %+v", cats)
	}

	for slug, cat := range map[string]string{
		"one":   "writing",
		"two":   "engineering",
		"three": "engineering",
		"four":  "",
	} {
		p := testPrompt(t, slug)
		p.Category = cat
		mustCreate(t, s, p)
	}

	cats, err = s.ListCategories(ctx)
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	want := []domain.CategoryCount{
		{Category: "engineering", Count: 2},
		{Category: "writing", Count: 1},
	}
	if len(cats) != 2 || cats[0] != want[0] || cats[1] != want[1] {
		t.Errorf("expected counted categories ordered by count, got %+v", cats)
	}
}

func TestTagCounts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := testPrompt(t, "a")
	a.Tags = []string{"go", "review"}
	mustCreate(t, s, a)

	b := testPrompt(t, "b")
	b.Tags = []string{"go"}
	mustCreate(t, s, b)

	counts, err := s.TagCounts(ctx)
	if err != nil {
		t.Fatalf("tag counts: %v", err)
	}
	if counts["go"] != 2 || counts["review"] != 1 {
		t.Errorf("tag counts mismatch: %+v", counts)
	}
}
