package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/promptvaultapp/promptvault-server/internal/domain"
	"github.com/promptvaultapp/promptvault-server/internal/id"
	"github.com/promptvaultapp/promptvault-server/internal/store"
)

func TestListVersionsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := testPrompt(t, "ledger")
	mustCreate(t, s, p)

	for v := 2; v <= 4; v++ {
		p.Content = "draft " + string(rune('0'+v))
		p.Version = v
		ver := &domain.PromptVersion{
			ID:        id.MustGenerate(id.PrefixVersion),
			PromptID:  p.ID,
			Version:   v,
			Content:   p.Content,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.UpdatePrompt(ctx, p, v-1, ver); err != nil {
			t.Fatalf("update to v%d: %v", v, err)
		}
	}

	versions, err := s.ListVersions(ctx, p.ID)
	if err != nil {
		t.Fatalf("list versions: %v", err)
	}
	if len(versions) != 4 {
		t.Fatalf("expected 4 versions, got %d", len(versions))
	}
	for i, v := range versions {
		if want := 4 - i; v.Version != want {
			t.Errorf("position %d: expected version %d, got %d", i, want, v.Version)
		}
	}
	if versions[len(versions)-1].ChangeNote != "Initial version" {
		t.Errorf("expected initial change note, got %q", versions[len(versions)-1].ChangeNote)
	}
}

func TestListVersionsPromptNotFound(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.ListVersions(context.Background(), "pmt_missing"); err != store.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetVersion(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := testPrompt(t, "versioned")
	mustCreate(t, s, p)

	v, err := s.GetVersion(ctx, p.ID, 1)
	if err != nil {
		t.Fatalf("get version: %v", err)
	}
	if v.Content != p.Content || v.Version != 1 {
		t.Errorf("version mismatch: %+v", v)
	}

	if _, err := s.GetVersion(ctx, p.ID, 99); err != store.ErrVersionNotFound {
		t.Errorf("expected ErrVersionNotFound, got %v", err)
	}
}
