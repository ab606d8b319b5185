// Package main provides a tool to inspect the prompt database directly.
//
// This bypasses the HTTP API and reads straight from the SQLite file,
// which is useful when debugging version ledgers or template detection.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/promptvaultapp/promptvault-server/internal/store"
	"github.com/promptvaultapp/promptvault-server/internal/store/sqlite"
)

func main() {
	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to get home directory: %v", err)
		}
		dbPath = filepath.Join(home, ".promptvault", "prompts.db")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	st, err := sqlite.Open(dbPath, logger)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer st.Close()

	ctx := context.Background()

	fmt.Println("=== Database Inspection ===")
	fmt.Println()

	prompts, total, err := st.ListPrompts(ctx, store.ListParams{Limit: 500})
	if err != nil {
		log.Fatalf("Failed to list prompts: %v", err)
	}

	templates := 0
	multiVersion := 0
	totalVersions := 0

	for _, p := range prompts {
		versions, err := st.ListVersions(ctx, p.ID)
		if err != nil {
			log.Printf("Error reading versions for %s: %v", p.Slug, err)
			continue
		}
		totalVersions += len(versions)

		if p.IsTemplate {
			templates++
		}
		if len(versions) > 1 {
			multiVersion++
		}

		fmt.Printf("Prompt: %s\n", p.Title)
		fmt.Printf("  ID: %s\n", p.ID)
		fmt.Printf("  Slug: %s\n", p.Slug)
		fmt.Printf("  Version: %d (%d in ledger)\n", p.Version, len(versions))
		fmt.Printf("  Uses: %d\n", p.UseCount)
		if p.IsTemplate {
			vars := make([]string, 0, len(p.TemplateVars))
			for name := range p.TemplateVars {
				vars = append(vars, name)
			}
			fmt.Printf("  Template vars: %s\n", strings.Join(vars, ", "))
		}
		if p.Version != len(versions) {
			fmt.Printf("  WARNING: current version %d does not match ledger length %d\n",
				p.Version, len(versions))
		}
		fmt.Println()
	}

	fmt.Println("=== Summary ===")
	fmt.Printf("Total prompts: %d\n", total)
	fmt.Printf("Templates: %d\n", templates)
	fmt.Printf("Prompts with edits: %d\n", multiVersion)
	fmt.Printf("Total versions: %d\n", totalVersions)
	if total > 0 {
		fmt.Printf("Average versions per prompt: %.1f\n", float64(totalVersions)/float64(total))
	}
}
