// Package backup manages database snapshots for the PromptVault server.
package backup

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/promptvaultapp/promptvault-server/internal/store"
)

const (
	backupPrefix = "backup-"
	backupSuffix = ".db"
)

// ErrBackupNotFound is returned when a named backup does not exist.
var ErrBackupNotFound = &store.Error{Code: http.StatusNotFound, Message: "backup not found"}

// Snapshotter writes a consistent copy of the database to a file.
type Snapshotter interface {
	Snapshot(ctx context.Context, path string) error
}

// Info describes a single backup file.
type Info struct {
	ID        string    `json:"id" doc:"Backup file name"`
	Size      int64     `json:"size" doc:"File size in bytes"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
}

// Service creates and manages database snapshots.
type Service struct {
	db        Snapshotter
	backupDir string
	logger    *slog.Logger
}

// NewService creates a backup service writing snapshots into backupDir.
func NewService(db Snapshotter, backupDir string, logger *slog.Logger) *Service {
	return &Service{
		db:        db,
		backupDir: backupDir,
		logger:    logger,
	}
}

// Create writes a new timestamped snapshot and returns its info.
func (s *Service) Create(ctx context.Context) (*Info, error) {
	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		return nil, fmt.Errorf("create backup dir: %w", err)
	}

	id := backupPrefix + time.Now().UTC().Format("20060102-150405") + backupSuffix
	path := filepath.Join(s.backupDir, id)

	// VACUUM INTO refuses to overwrite; a leftover file from a backup
	// taken within the same second is removed first.
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("clear stale backup: %w", err)
	}

	if err := s.db.Snapshot(ctx, path); err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat backup: %w", err)
	}

	s.logger.Info("Backup created", "id", id, "size", stat.Size())

	return &Info{
		ID:        id,
		Size:      stat.Size(),
		CreatedAt: stat.ModTime().UTC(),
	}, nil
}

// List returns all backups, newest first.
func (s *Service) List() ([]Info, error) {
	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Info{}, nil
		}
		return nil, fmt.Errorf("read backup dir: %w", err)
	}

	backups := make([]Info, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, backupPrefix) || !strings.HasSuffix(name, backupSuffix) {
			continue
		}
		stat, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, Info{
			ID:        name,
			Size:      stat.Size(),
			CreatedAt: stat.ModTime().UTC(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].ID > backups[j].ID
	})

	return backups, nil
}

// Delete removes a backup by ID.
func (s *Service) Delete(id string) error {
	if !validID(id) {
		return ErrBackupNotFound
	}

	if err := os.Remove(filepath.Join(s.backupDir, id)); err != nil {
		if os.IsNotExist(err) {
			return ErrBackupNotFound
		}
		return fmt.Errorf("delete backup: %w", err)
	}

	s.logger.Info("Backup deleted", "id", id)
	return nil
}

// Path returns the filesystem path of a backup by ID.
func (s *Service) Path(id string) (string, error) {
	if !validID(id) {
		return "", ErrBackupNotFound
	}
	path := filepath.Join(s.backupDir, id)
	if _, err := os.Stat(path); err != nil {
		return "", ErrBackupNotFound
	}
	return path, nil
}

// validID rejects names that could escape the backup directory.
func validID(id string) bool {
	return id != "" &&
		!strings.ContainsAny(id, "/\\") &&
		strings.HasPrefix(id, backupPrefix) &&
		strings.HasSuffix(id, backupSuffix)
}
