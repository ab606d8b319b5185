package sqlite

import (
	"context"
	"database/sql"
	"github.com/go-json-experiment/json"
	"fmt"
	"strings"
	"time"

	"github.com/promptvaultapp/promptvault-server/internal/domain"
	"github.com/promptvaultapp/promptvault-server/internal/store"
	"github.com/promptvaultapp/promptvault-server/internal/template"
)

// promptColumns is the ordered list of columns selected in prompt queries.
// Must match the scan order in scanPrompt.
const promptColumns = `id, slug, title, content, description, category, tags,
	source_url, is_template, template_vars, success_notes, failure_notes,
	related_slugs, version, use_count, last_used_at, created_at, updated_at`

// scanPrompt scans a sql.Row (or sql.Rows via its Scan method) into a domain.Prompt.
func scanPrompt(scanner interface{ Scan(dest ...any) error }) (*domain.Prompt, error) {
	var p domain.Prompt

	var (
		description  sql.NullString
		category     sql.NullString
		tagsJSON     string
		sourceURL    sql.NullString
		isTemplate   int
		templateVars sql.NullString
		successNotes sql.NullString
		failureNotes sql.NullString
		relatedJSON  string
		lastUsedAt   sql.NullString
		createdAt    string
		updatedAt    string
	)

	err := scanner.Scan(
		&p.ID,
		&p.Slug,
		&p.Title,
		&p.Content,
		&description,
		&category,
		&tagsJSON,
		&sourceURL,
		&isTemplate,
		&templateVars,
		&successNotes,
		&failureNotes,
		&relatedJSON,
		&p.Version,
		&p.UseCount,
		&lastUsedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		p.Description = description.String
	}
	if category.Valid {
		p.Category = category.String
	}
	if sourceURL.Valid {
		p.SourceURL = sourceURL.String
	}
	if successNotes.Valid {
		p.SuccessNotes = successNotes.String
	}
	if failureNotes.Valid {
		p.FailureNotes = failureNotes.String
	}
	p.IsTemplate = isTemplate != 0

	if err := json.Unmarshal([]byte(tagsJSON), &p.Tags); err != nil {
		return nil, fmt.Errorf("unmarshal tags: %w", err)
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if err := json.Unmarshal([]byte(relatedJSON), &p.RelatedSlugs); err != nil {
		return nil, fmt.Errorf("unmarshal related_slugs: %w", err)
	}
	if p.RelatedSlugs == nil {
		p.RelatedSlugs = []string{}
	}
	if templateVars.Valid && templateVars.String != "" {
		if err := json.Unmarshal([]byte(templateVars.String), &p.TemplateVars); err != nil {
			return nil, fmt.Errorf("unmarshal template_vars: %w", err)
		}
	}

	p.LastUsedAt, err = parseNullableTime(lastUsedAt)
	if err != nil {
		return nil, err
	}
	p.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	p.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// marshalStringList serializes tags and related_slugs columns, with nil
// normalized to an empty JSON array.
func marshalStringList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("marshal string list: %w", err)
	}
	return string(data), nil
}

func marshalTemplateVars(vars map[string]template.VarSpec) (sql.NullString, error) {
	if len(vars) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(vars)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshal template_vars: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// CreatePrompt inserts a new prompt together with its initial ledger
// entry in one transaction. Returns store.ErrAlreadyExists on a
// duplicate slug.
func (s *Store) CreatePrompt(ctx context.Context, p *domain.Prompt, initial *domain.PromptVersion) error {
	tagsJSON, err := marshalStringList(p.Tags)
	if err != nil {
		return err
	}
	relatedJSON, err := marshalStringList(p.RelatedSlugs)
	if err != nil {
		return err
	}
	varsJSON, err := marshalTemplateVars(p.TemplateVars)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO prompts (id, slug, title, content, description, category, tags,
			source_url, is_template, template_vars, success_notes, failure_notes,
			related_slugs, version, use_count, last_used_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, NULL, ?, ?)`,
		p.ID,
		p.Slug,
		p.Title,
		p.Content,
		nullString(p.Description),
		nullString(p.Category),
		tagsJSON,
		nullString(p.SourceURL),
		boolToInt(p.IsTemplate),
		varsJSON,
		nullString(p.SuccessNotes),
		nullString(p.FailureNotes),
		relatedJSON,
		p.Version,
		formatTime(p.CreatedAt),
		formatTime(p.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}

	if err := replaceTags(ctx, tx, p.ID, p.Tags); err != nil {
		return err
	}
	if initial != nil {
		if err := insertVersion(ctx, tx, initial); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetPrompt retrieves a prompt by its ID.
// Returns store.ErrNotFound if the prompt does not exist.
func (s *Store) GetPrompt(ctx context.Context, id string) (*domain.Prompt, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+promptColumns+` FROM prompts WHERE id = ?`, id)

	p, err := scanPrompt(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetPromptBySlug retrieves a prompt by its slug.
// Returns store.ErrNotFound if the prompt does not exist.
func (s *Store) GetPromptBySlug(ctx context.Context, slug string) (*domain.Prompt, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+promptColumns+` FROM prompts WHERE slug = ?`, slug)

	p, err := scanPrompt(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// SlugExists reports whether any prompt already owns the slug.
func (s *Store) SlugExists(ctx context.Context, slug string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM prompts WHERE slug = ?`, slug).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// UpdatePrompt writes the prompt row, its tag set and, when newVersion
// is non-nil, the new ledger entry in one transaction. The write is
// guarded by prevVersion: if the stored version no longer matches, the
// prompt changed concurrently and store.ErrConflict is returned.
func (s *Store) UpdatePrompt(ctx context.Context, p *domain.Prompt, prevVersion int, newVersion *domain.PromptVersion) error {
	tagsJSON, err := marshalStringList(p.Tags)
	if err != nil {
		return err
	}
	relatedJSON, err := marshalStringList(p.RelatedSlugs)
	if err != nil {
		return err
	}
	varsJSON, err := marshalTemplateVars(p.TemplateVars)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE prompts
		SET slug = ?, title = ?, content = ?, description = ?, category = ?,
			tags = ?, source_url = ?, is_template = ?, template_vars = ?,
			success_notes = ?, failure_notes = ?, related_slugs = ?,
			version = ?, updated_at = ?
		WHERE id = ? AND version = ?`,
		p.Slug,
		p.Title,
		p.Content,
		nullString(p.Description),
		nullString(p.Category),
		tagsJSON,
		nullString(p.SourceURL),
		boolToInt(p.IsTemplate),
		varsJSON,
		nullString(p.SuccessNotes),
		nullString(p.FailureNotes),
		relatedJSON,
		p.Version,
		formatTime(p.UpdatedAt),
		p.ID,
		prevVersion,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var one int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM prompts WHERE id = ?`, p.ID).Scan(&one)
		if err == sql.ErrNoRows {
			return store.ErrNotFound
		}
		if err != nil {
			return err
		}
		return store.ErrConflict
	}

	if err := replaceTags(ctx, tx, p.ID, p.Tags); err != nil {
		return err
	}
	if newVersion != nil {
		if err := insertVersion(ctx, tx, newVersion); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// DeletePrompt removes a prompt; version rows and tag rows cascade.
// Returns store.ErrNotFound if the prompt does not exist.
func (s *Store) DeletePrompt(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM prompts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// IncrementUsage bumps the use counter and stamps last_used_at.
func (s *Store) IncrementUsage(ctx context.Context, id string, usedAt time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE prompts SET use_count = use_count + 1, last_used_at = ?
		WHERE id = ?`,
		formatTime(usedAt), id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListPrompts returns prompts matching params plus the total match
// count before limit/offset.
func (s *Store) ListPrompts(ctx context.Context, params store.ListParams) ([]*domain.Prompt, int, error) {
	where, args := buildPromptFilter(params.Search, params.Category, params.Tags)

	var total int
	countQuery := `SELECT COUNT(*) FROM prompts` + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + promptColumns + ` FROM prompts` + where + orderClause(params.Sort)
	queryArgs := args
	if params.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		queryArgs = append(queryArgs, params.Limit, params.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, queryArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	prompts := []*domain.Prompt{}
	for rows.Next() {
		p, err := scanPrompt(rows)
		if err != nil {
			return nil, 0, err
		}
		prompts = append(prompts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return prompts, total, nil
}

// RandomPrompt picks one prompt uniformly from the filtered pool.
// Returns store.ErrNotFound when the pool is empty.
func (s *Store) RandomPrompt(ctx context.Context, params store.RandomParams) (*domain.Prompt, error) {
	var tags []string
	if params.Tag != "" {
		tags = []string{params.Tag}
	}
	where, args := buildPromptFilter("", params.Category, tags)

	row := s.db.QueryRowContext(ctx,
		`SELECT `+promptColumns+` FROM prompts`+where+` ORDER BY RANDOM() LIMIT 1`,
		args...)

	p, err := scanPrompt(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// buildPromptFilter assembles the WHERE clause shared by ListPrompts,
// RandomPrompt and the count query.
func buildPromptFilter(search, category string, tags []string) (string, []any) {
	var conds []string
	var args []any

	if search != "" {
		pattern := "%" + search + "%"
		conds = append(conds, `(title LIKE ? OR content LIKE ? OR description LIKE ?)`)
		args = append(args, pattern, pattern, pattern)
	}
	if category != "" {
		conds = append(conds, `category = ?`)
		args = append(args, category)
	}
	for _, tag := range tags {
		conds = append(conds, `id IN (SELECT prompt_id FROM prompt_tags WHERE tag = ?)`)
		args = append(args, tag)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return ` WHERE ` + strings.Join(conds, " AND "), args
}

func orderClause(sort string) string {
	switch sort {
	case store.SortRecent:
		// Unused prompts sort after recently used ones.
		return ` ORDER BY last_used_at IS NULL ASC, last_used_at DESC`
	case store.SortPopular:
		return ` ORDER BY use_count DESC, updated_at DESC`
	case store.SortCreated:
		return ` ORDER BY created_at DESC`
	default:
		return ` ORDER BY updated_at DESC`
	}
}

// replaceTags rewrites the prompt_tags rows for a prompt.
func replaceTags(ctx context.Context, tx *sql.Tx, promptID string, tags []string) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM prompt_tags WHERE prompt_id = ?`, promptID); err != nil {
		return err
	}
	for _, tag := range tags {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO prompt_tags (prompt_id, tag) VALUES (?, ?)`,
			promptID, tag); err != nil {
			return err
		}
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
