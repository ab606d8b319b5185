// Package main provides a tool to seed the database with sample prompts.
//
// This creates a handful of prompts, including templates, and records
// some usage so list sorting and stats have data to work with.
//
// Usage:
//
//	DATABASE_PATH=~/.promptvault/prompts.db go run ./cmd/seed
//	go run ./cmd/seed --uses 20  # Record more usage events
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/promptvaultapp/promptvault-server/internal/domain"
	"github.com/promptvaultapp/promptvault-server/internal/service"
	"github.com/promptvaultapp/promptvault-server/internal/store/sqlite"
)

var uses = flag.Int("uses", 10, "Number of usage events to record across seeded prompts")

func main() {
	flag.Parse()

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to get home directory: %v", err)
		}
		dbPath = filepath.Join(home, ".promptvault", "prompts.db")
	}

	fmt.Printf("Opening database at: %s\n", dbPath)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	st, err := sqlite.Open(dbPath, logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	svc := service.NewPromptService(st, logger)
	ctx := context.Background()

	seeded := make([]string, 0, len(samplePrompts))
	for _, params := range samplePrompts {
		prompt, err := svc.Create(ctx, params)
		if err != nil {
			log.Printf("Skipping %q: %v", params.Title, err)
			continue
		}
		fmt.Printf("Created %s (version %d)\n", prompt.Slug, prompt.Version)
		seeded = append(seeded, prompt.Slug)
	}

	if len(seeded) == 0 {
		log.Fatal("No prompts were created. Is the database already seeded?")
	}

	// Record usage across the seeded prompts so sorting by popularity
	// and recency has something to chew on.
	for i := 0; i < *uses; i++ {
		slug := seeded[rand.Intn(len(seeded))]
		if _, err := svc.Get(ctx, slug, true); err != nil {
			log.Printf("Failed to record use of %s: %v", slug, err)
		}
	}
	fmt.Printf("Recorded %d usage events across %d prompts\n", *uses, len(seeded))

	// A couple of edits so the version ledgers are not all flat.
	content := "Review the following code for correctness, clarity, and idiomatic style.\n\n" +
		"Focus on:\n- Error handling\n- Naming\n- Edge cases\n\n{{ code }}"
	if _, err := svc.Update(ctx, "code-review", domain.UpdateFields{Content: &content}, "Added focus areas"); err != nil {
		log.Printf("Failed to update code-review: %v", err)
	} else {
		fmt.Println("Updated code-review to version 2")
	}

	fmt.Println("Done")
}

var samplePrompts = []service.CreateParams{
	{
		Title:    "Code Review",
		Slug:     "code-review",
		Content:  "Review the following code for correctness and clarity.\n\n{{ code }}",
		Category: "coding",
		Tags:     []string{"review", "go"},
	},
	{
		Title:        "Commit Message",
		Slug:         "commit-message",
		Description:  "Writes a conventional commit message from a diff",
		Content:      "Write a concise commit message for this diff:\n\n{{ diff }}",
		Category:     "coding",
		Tags:         []string{"git"},
		SourceURL:    "https://www.conventionalcommits.org/en/v1.0.0/",
		RelatedSlugs: []string{"code-review"},
	},
	{
		Title:    "Summarize Article",
		Slug:     "summarize",
		Content:  "Summarize the following article in {{ sentences | default(3) }} sentences:\n\n{{ text }}",
		Category: "writing",
		Tags:     []string{"summary"},
	},
	{
		Title:    "Friendly Email",
		Slug:     "friendly-email",
		Content:  "Write a {{ tone | default(\"friendly\") }} email to {{ recipient }} about {{ topic }}.",
		Category: "writing",
		Tags:     []string{"email"},
	},
	{
		Title:        "Daily Standup",
		Slug:         "daily-standup",
		Content:      "Yesterday I worked on X. Today I will work on Y. No blockers.",
		Category:     "work",
		Tags:         []string{"status"},
		SuccessNotes: "Plain snippet, not a template",
	},
}
