package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptvaultapp/promptvault-server/internal/backup"
	"github.com/promptvaultapp/promptvault-server/internal/config"
	"github.com/promptvaultapp/promptvault-server/internal/service"
	"github.com/promptvaultapp/promptvault-server/internal/store/sqlite"
)

const testAPIKey = "test-api-key"

// testEnvelope mirrors the wire envelope for decoding in tests.
type testEnvelope[T any] struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
}

// testErrorEnvelope mirrors the coded error envelope.
type testErrorEnvelope struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details"`
}

// testServer wraps the API server for handler testing.
type testServer struct {
	*Server
	api humatest.TestAPI
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	dir := t.TempDir()
	st, err := sqlite.Open(filepath.Join(dir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	cfg := &config.Config{
		Auth: config.AuthConfig{
			APIKey:               testAPIKey,
			AllowLocalhostBypass: false,
		},
	}

	backups := backup.NewService(st, filepath.Join(dir, "backups"), logger)
	s := NewServer(cfg, service.NewPromptService(st, logger), backups, logger)

	return &testServer{
		Server: s,
		api:    humatest.Wrap(t, s.api),
	}
}

func authHeader() string {
	return "Authorization: Bearer " + testAPIKey
}

// createPrompt is a helper that creates a prompt and fails the test on error.
func (ts *testServer) createPrompt(t *testing.T, body map[string]any) PromptResponse {
	t.Helper()

	resp := ts.api.Post("/api/v1/prompts", authHeader(), body)
	require.Equal(t, http.StatusCreated, resp.Code, "Create failed: %s", resp.Body.String())

	var envelope testEnvelope[PromptResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.True(t, envelope.Success)

	return envelope.Data
}

// === Tests ===

func TestCreatePrompt_DerivesSlugAndMetadata(t *testing.T) {
	ts := setupTestServer(t)

	p := ts.createPrompt(t, map[string]any{
		"title":   "Code Review Helper",
		"content": "Review this {{ language }} code:\n{{ code }}",
		"tags":    []string{"review", "coding"},
	})

	assert.Equal(t, "code-review-helper", p.Slug)
	assert.True(t, p.IsTemplate)
	assert.Equal(t, 1, p.Version)
	assert.ElementsMatch(t, []string{"review", "coding"}, p.Tags)

	vars := make([]string, 0, len(p.TemplateVars))
	for name := range p.TemplateVars {
		vars = append(vars, name)
	}
	assert.ElementsMatch(t, []string{"language", "code"}, vars)
}

func TestCreatePrompt_ExplicitSlugConflict(t *testing.T) {
	ts := setupTestServer(t)

	ts.createPrompt(t, map[string]any{
		"title":   "First",
		"content": "first",
		"slug":    "taken",
	})

	resp := ts.api.Post("/api/v1/prompts", authHeader(), map[string]any{
		"title":   "Second",
		"content": "second",
		"slug":    "taken",
	})
	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestCreatePrompt_MissingTitle(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/prompts", authHeader(), map[string]any{
		"content": "no title",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestGetPrompt_TrackRecordsUse(t *testing.T) {
	ts := setupTestServer(t)

	ts.createPrompt(t, map[string]any{
		"title":   "Daily Standup",
		"content": "What did you do yesterday?",
	})

	resp := ts.api.Get("/api/v1/prompts/daily-standup", authHeader())
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[PromptResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, 0, envelope.Data.UseCount)
	assert.Nil(t, envelope.Data.LastUsedAt)

	resp = ts.api.Get("/api/v1/prompts/daily-standup?track=true", authHeader())
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, 1, envelope.Data.UseCount)
	assert.NotNil(t, envelope.Data.LastUsedAt)
}

func TestGetPrompt_NotFound(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/prompts/missing", authHeader())
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestUpdatePrompt_ContentChangeOpensVersion(t *testing.T) {
	ts := setupTestServer(t)

	ts.createPrompt(t, map[string]any{
		"title":   "Summarizer",
		"content": "Summarize this text.",
	})

	resp := ts.api.Patch("/api/v1/prompts/summarizer", authHeader(), map[string]any{
		"content":     "Summarize this text in {{ style }} style.",
		"change_note": "Added style variable",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[PromptResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, 2, envelope.Data.Version)
	assert.True(t, envelope.Data.IsTemplate)
}

func TestUpdatePrompt_MetadataOnlyKeepsVersion(t *testing.T) {
	ts := setupTestServer(t)

	ts.createPrompt(t, map[string]any{
		"title":   "Summarizer",
		"content": "Summarize this text.",
	})

	resp := ts.api.Patch("/api/v1/prompts/summarizer", authHeader(), map[string]any{
		"title":    "Better Summarizer",
		"category": "writing",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[PromptResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, 1, envelope.Data.Version)
	assert.Equal(t, "Better Summarizer", envelope.Data.Title)
	assert.Equal(t, "writing", envelope.Data.Category)
}

func TestDeletePrompt(t *testing.T) {
	ts := setupTestServer(t)

	ts.createPrompt(t, map[string]any{
		"title":   "Doomed",
		"content": "soon gone",
	})

	resp := ts.api.Delete("/api/v1/prompts/doomed", authHeader())
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/prompts/doomed", authHeader())
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.api.Delete("/api/v1/prompts/doomed", authHeader())
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestListPrompts_Filters(t *testing.T) {
	ts := setupTestServer(t)

	ts.createPrompt(t, map[string]any{
		"title":    "Go Review",
		"content":  "Review Go code",
		"category": "coding",
		"tags":     []string{"go"},
	})
	ts.createPrompt(t, map[string]any{
		"title":    "Python Review",
		"content":  "Review Python code",
		"category": "coding",
		"tags":     []string{"python"},
	})
	ts.createPrompt(t, map[string]any{
		"title":    "Blog Outline",
		"content":  "Outline a blog post",
		"category": "writing",
	})

	var envelope testEnvelope[ListPromptsResponse]

	resp := ts.api.Get("/api/v1/prompts", authHeader())
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, 3, envelope.Data.Total)

	resp = ts.api.Get("/api/v1/prompts?category=coding", authHeader())
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, 2, envelope.Data.Total)

	resp = ts.api.Get("/api/v1/prompts?tag=python", authHeader())
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Prompts, 1)
	assert.Equal(t, "python-review", envelope.Data.Prompts[0].Slug)

	resp = ts.api.Get("/api/v1/prompts?q=outline", authHeader())
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Prompts, 1)
	assert.Equal(t, "blog-outline", envelope.Data.Prompts[0].Slug)

	resp = ts.api.Get("/api/v1/prompts?limit=2&offset=2", authHeader())
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, 3, envelope.Data.Total)
	assert.Len(t, envelope.Data.Prompts, 1)
}

func TestListPrompts_BadSortRejected(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/prompts?sort=sideways", authHeader())
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestRandomPrompt(t *testing.T) {
	ts := setupTestServer(t)

	ts.createPrompt(t, map[string]any{
		"title":    "Only One",
		"content":  "the only prompt",
		"category": "misc",
	})

	resp := ts.api.Get("/api/v1/prompts/random", authHeader())
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[PromptResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "only-one", envelope.Data.Slug)

	resp = ts.api.Get("/api/v1/prompts/random?category=nope", authHeader())
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestAddNote_AppendsWithoutVersionBump(t *testing.T) {
	ts := setupTestServer(t)

	ts.createPrompt(t, map[string]any{
		"title":         "Noted",
		"content":       "content",
		"success_notes": "first note",
	})

	resp := ts.api.Post("/api/v1/prompts/noted/notes", authHeader(), map[string]any{
		"success": "second note",
		"failure": "went off the rails once",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[PromptResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "first note\n\n---\n\nsecond note", envelope.Data.SuccessNotes)
	assert.Equal(t, "went off the rails once", envelope.Data.FailureNotes)
	assert.Equal(t, 1, envelope.Data.Version)
}

func TestAddNote_EmptyBodyRejected(t *testing.T) {
	ts := setupTestServer(t)

	ts.createPrompt(t, map[string]any{
		"title":   "Quiet",
		"content": "content",
	})

	resp := ts.api.Post("/api/v1/prompts/quiet/notes", authHeader(), map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
}

func TestCreatePrompt_SourceAndRelated(t *testing.T) {
	ts := setupTestServer(t)

	p := ts.createPrompt(t, map[string]any{
		"title":         "Sourced",
		"content":       "content",
		"source_url":    "https://example.com/prompts/42",
		"related_slugs": []string{"other-prompt"},
	})

	assert.Equal(t, "https://example.com/prompts/42", p.SourceURL)
	assert.Equal(t, []string{"other-prompt"}, p.RelatedSlugs)

	// PATCH replaces the related set and can change the source.
	resp := ts.api.Patch("/api/v1/prompts/sourced", authHeader(), map[string]any{
		"source_url":    "https://example.com/prompts/43",
		"related_slugs": []string{"a", "b"},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[PromptResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "https://example.com/prompts/43", envelope.Data.SourceURL)
	assert.Equal(t, []string{"a", "b"}, envelope.Data.RelatedSlugs)
	assert.Equal(t, 1, envelope.Data.Version)
}

func TestCreatePrompt_BadSourceURL(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/prompts", authHeader(), map[string]any{
		"title":      "Bad Source",
		"content":    "content",
		"source_url": "not a url",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
