package sqlite

import (
	"context"
	"database/sql"

	"github.com/promptvaultapp/promptvault-server/internal/domain"
	"github.com/promptvaultapp/promptvault-server/internal/store"
)

const versionColumns = `id, prompt_id, version, content, change_note, created_at`

func scanVersion(scanner interface{ Scan(dest ...any) error }) (*domain.PromptVersion, error) {
	var v domain.PromptVersion

	var (
		changeNote sql.NullString
		createdAt  string
	)

	err := scanner.Scan(
		&v.ID,
		&v.PromptID,
		&v.Version,
		&v.Content,
		&changeNote,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	if changeNote.Valid {
		v.ChangeNote = changeNote.String
	}
	v.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	return &v, nil
}

// insertVersion writes one ledger entry inside an open transaction.
func insertVersion(ctx context.Context, tx *sql.Tx, v *domain.PromptVersion) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO prompt_versions (id, prompt_id, version, content, change_note, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		v.ID,
		v.PromptID,
		v.Version,
		v.Content,
		nullString(v.ChangeNote),
		formatTime(v.CreatedAt),
	)
	return err
}

// ListVersions returns a prompt's ledger entries, newest first.
// Returns store.ErrNotFound if the prompt does not exist.
func (s *Store) ListVersions(ctx context.Context, promptID string) ([]*domain.PromptVersion, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM prompts WHERE id = ?`, promptID).Scan(&one)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+versionColumns+` FROM prompt_versions
		 WHERE prompt_id = ? ORDER BY version DESC`, promptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []*domain.PromptVersion
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return versions, nil
}

// GetVersion retrieves one ledger entry by prompt and version number.
// Returns store.ErrVersionNotFound if the entry does not exist.
func (s *Store) GetVersion(ctx context.Context, promptID string, version int) (*domain.PromptVersion, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+versionColumns+` FROM prompt_versions
		 WHERE prompt_id = ? AND version = ?`, promptID, version)

	v, err := scanVersion(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrVersionNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}
