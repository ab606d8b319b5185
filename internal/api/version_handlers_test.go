package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListVersions_NewestFirst(t *testing.T) {
	ts := setupTestServer(t)

	ts.createPrompt(t, map[string]any{
		"title":   "Evolving",
		"content": "v1 content",
	})

	resp := ts.api.Patch("/api/v1/prompts/evolving", authHeader(), map[string]any{
		"content":     "v2 content",
		"change_note": "Second draft",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/prompts/evolving/versions", authHeader())
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[ListVersionsResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Versions, 2)

	assert.Equal(t, 2, envelope.Data.Versions[0].Version)
	assert.Equal(t, "v2 content", envelope.Data.Versions[0].Content)
	assert.Equal(t, "Second draft", envelope.Data.Versions[0].ChangeNote)
	assert.Equal(t, 1, envelope.Data.Versions[1].Version)
	assert.Equal(t, "Initial version", envelope.Data.Versions[1].ChangeNote)
}

func TestListVersions_UnknownPrompt(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/prompts/missing/versions", authHeader())
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestGetVersion(t *testing.T) {
	ts := setupTestServer(t)

	ts.createPrompt(t, map[string]any{
		"title":   "Single",
		"content": "only content",
	})

	resp := ts.api.Get("/api/v1/prompts/single/versions/1", authHeader())
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[VersionResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, 1, envelope.Data.Version)
	assert.Equal(t, "only content", envelope.Data.Content)

	resp = ts.api.Get("/api/v1/prompts/single/versions/9", authHeader())
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestRestoreVersion(t *testing.T) {
	ts := setupTestServer(t)

	ts.createPrompt(t, map[string]any{
		"title":   "Rolling",
		"content": "original",
	})

	resp := ts.api.Patch("/api/v1/prompts/rolling", authHeader(), map[string]any{
		"content": "rewritten",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post("/api/v1/prompts/rolling/versions/1/restore", authHeader())
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[PromptResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, 3, envelope.Data.Version)
	assert.Equal(t, "original", envelope.Data.Content)

	resp = ts.api.Get("/api/v1/prompts/rolling/versions", authHeader())
	require.Equal(t, http.StatusOK, resp.Code)

	var versions testEnvelope[ListVersionsResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &versions))
	require.Len(t, versions.Data.Versions, 3)
	assert.Equal(t, "Restored from version 1", versions.Data.Versions[0].ChangeNote)
}
