package backup

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptvaultapp/promptvault-server/internal/store/sqlite"
)

func setupService(t *testing.T) *Service {
	t.Helper()

	dir := t.TempDir()
	st, err := sqlite.Open(filepath.Join(dir, "test.db"), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	return NewService(st, filepath.Join(dir, "backups"), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCreateAndList(t *testing.T) {
	svc := setupService(t)

	info, err := svc.Create(context.Background())
	require.NoError(t, err)
	assert.Contains(t, info.ID, "backup-")
	assert.Greater(t, info.Size, int64(0))
	assert.WithinDuration(t, time.Now(), info.CreatedAt, time.Minute)

	backups, err := svc.List()
	require.NoError(t, err)
	require.Len(t, backups, 1)
	assert.Equal(t, info.ID, backups[0].ID)
	assert.Equal(t, info.Size, backups[0].Size)
}

func TestListEmpty(t *testing.T) {
	svc := setupService(t)

	// Backup dir does not exist until the first Create.
	backups, err := svc.List()
	require.NoError(t, err)
	assert.Empty(t, backups)
}

func TestCreateSameSecond(t *testing.T) {
	svc := setupService(t)

	_, err := svc.Create(context.Background())
	require.NoError(t, err)

	// A second snapshot within the same second replaces the first file.
	_, err = svc.Create(context.Background())
	require.NoError(t, err)

	backups, err := svc.List()
	require.NoError(t, err)
	assert.NotEmpty(t, backups)
}

func TestDelete(t *testing.T) {
	svc := setupService(t)

	info, err := svc.Create(context.Background())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(info.ID))

	backups, err := svc.List()
	require.NoError(t, err)
	assert.Empty(t, backups)

	assert.ErrorIs(t, svc.Delete(info.ID), ErrBackupNotFound)
}

func TestDeleteRejectsBadID(t *testing.T) {
	svc := setupService(t)

	for _, id := range []string{
		"",
		"../test.db",
		"backup-..\\..\\evil.db",
		"notabackup.txt",
		"backup-20260101-000000.zip",
	} {
		assert.ErrorIs(t, svc.Delete(id), ErrBackupNotFound, "id %q", id)
	}
}

func TestPath(t *testing.T) {
	svc := setupService(t)

	info, err := svc.Create(context.Background())
	require.NoError(t, err)

	path, err := svc.Path(info.ID)
	require.NoError(t, err)
	assert.Equal(t, info.ID, filepath.Base(path))

	_, err = svc.Path("backup-19990101-000000.db")
	assert.ErrorIs(t, err, ErrBackupNotFound)
}
