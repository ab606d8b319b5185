package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/promptvaultapp/promptvault-server/internal/backup"
)

func (s *Server) registerBackupRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createBackup",
		Method:        http.MethodPost,
		Path:          "/api/v1/backups",
		Summary:       "Create backup",
		Description:   "Creates a new database snapshot",
		Tags:          []string{"Backups"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleCreateBackup)

	huma.Register(s.api, huma.Operation{
		OperationID: "listBackups",
		Method:      http.MethodGet,
		Path:        "/api/v1/backups",
		Summary:     "List backups",
		Description: "Returns all database snapshots, newest first",
		Tags:        []string{"Backups"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListBackups)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBackup",
		Method:      http.MethodDelete,
		Path:        "/api/v1/backups/{id}",
		Summary:     "Delete backup",
		Description: "Removes a database snapshot",
		Tags:        []string{"Backups"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteBackup)
}

// === DTOs ===

// BackupOutput wraps a single backup response for Huma.
type BackupOutput struct {
	Body backup.Info
}

// ListBackupsResponse contains all backups.
type ListBackupsResponse struct {
	Backups []backup.Info `json:"backups" doc:"Backups, newest first"`
	Total   int           `json:"total" doc:"Number of backups"`
}

// ListBackupsOutput wraps the list response for Huma.
type ListBackupsOutput struct {
	Body ListBackupsResponse
}

// DeleteBackupInput identifies a backup by ID.
type DeleteBackupInput struct {
	ID string `path:"id" doc:"Backup file name"`
}

// === Handlers ===

func (s *Server) handleCreateBackup(ctx context.Context, _ *struct{}) (*BackupOutput, error) {
	info, err := s.backups.Create(ctx)
	if err != nil {
		return nil, err
	}

	return &BackupOutput{Body: *info}, nil
}

func (s *Server) handleListBackups(_ context.Context, _ *struct{}) (*ListBackupsOutput, error) {
	backups, err := s.backups.List()
	if err != nil {
		return nil, err
	}

	return &ListBackupsOutput{Body: ListBackupsResponse{Backups: backups, Total: len(backups)}}, nil
}

func (s *Server) handleDeleteBackup(_ context.Context, input *DeleteBackupInput) (*MessageOutput, error) {
	if err := s.backups.Delete(input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Backup deleted"}}, nil
}
