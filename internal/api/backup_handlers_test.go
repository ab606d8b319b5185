package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptvaultapp/promptvault-server/internal/backup"
)

func TestBackupLifecycle(t *testing.T) {
	ts := setupTestServer(t)
	ts.createPrompt(t, map[string]any{
		"title":   "Keep Me",
		"content": "important prompt",
	})

	// No backups yet.
	resp := ts.api.Get("/api/v1/backups", authHeader())
	require.Equal(t, http.StatusOK, resp.Code)

	var list testEnvelope[ListBackupsResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))
	assert.Equal(t, 0, list.Data.Total)
	assert.Empty(t, list.Data.Backups)

	// Create one.
	resp = ts.api.Post("/api/v1/backups", authHeader())
	require.Equal(t, http.StatusCreated, resp.Code)

	var created testEnvelope[backup.Info]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	assert.Contains(t, created.Data.ID, "backup-")
	assert.Greater(t, created.Data.Size, int64(0))

	// It shows up in the list.
	resp = ts.api.Get("/api/v1/backups", authHeader())
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))
	require.Equal(t, 1, list.Data.Total)
	assert.Equal(t, created.Data.ID, list.Data.Backups[0].ID)

	// Delete it.
	resp = ts.api.Delete("/api/v1/backups/"+created.Data.ID, authHeader())
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/backups", authHeader())
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))
	assert.Equal(t, 0, list.Data.Total)
}

func TestDeleteBackupNotFound(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Delete("/api/v1/backups/backup-19990101-000000.db", authHeader())
	require.Equal(t, http.StatusNotFound, resp.Code)
}
