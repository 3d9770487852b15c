// Copyright (c) 2026 EduSeek. All rights reserved.
// Author: quang.leminh.dev@gmail.com

package school

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eduseek/eduseek/internal/platform/apperr"
	"github.com/eduseek/eduseek/pkg/pagination"
)

// PostgresRepository implements the Repository interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the Repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const schoolColumns = "id, name, slug, city, address, description, ownerusername, createdat, updatedat"

// likeEscaper neutralizes LIKE/ILIKE metacharacters in user-supplied search
// text, so a query for "%" matches a literal percent sign instead of every row.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLikePattern returns the filter text safe for embedding in an ILIKE
// pattern with the default backslash escape character.
func escapeLikePattern(text string) string {
	return likeEscaper.Replace(text)
}

// List returns a page of schools matching the filter plus the total count.
//
// Filtering is intentionally simple: case-insensitive substring on name,
// exact match on city. Both are optional and combined with AND.
func (repository *PostgresRepository) List(ctx context.Context, filter Filter, page pagination.Params) ([]School, int, error) {
	const query = `
		SELECT ` + schoolColumns + `, COUNT(*) OVER() AS total
		FROM catalog.school
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR city = $2)
		ORDER BY name
		LIMIT $3 OFFSET $4`

	rows, err := repository.pool.Query(ctx, query, escapeLikePattern(filter.Query), filter.City, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_school_repo_list_failed: %w", err)
	}
	defer rows.Close()

	schools := make([]School, 0, page.Limit)
	total := 0

	for rows.Next() {
		var school School
		if err := rows.Scan(
			&school.ID,
			&school.Name,
			&school.Slug,
			&school.City,
			&school.Address,
			&school.Description,
			&school.OwnerUsername,
			&school.CreatedAt,
			&school.UpdatedAt,
			&total,
		); err != nil {
			return nil, 0, fmt.Errorf("postgres_school_repo_scan_failed: %w", err)
		}
		schools = append(schools, school)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_school_repo_rows_failed: %w", err)
	}

	return schools, total, nil
}

// FindBySlug retrieves a school by its unique slug.
func (repository *PostgresRepository) FindBySlug(ctx context.Context, slug string) (*School, error) {
	const query = `
		SELECT ` + schoolColumns + `
		FROM catalog.school
		WHERE slug = $1`

	school := &School{}
	err := repository.pool.QueryRow(ctx, query, slug).Scan(
		&school.ID,
		&school.Name,
		&school.Slug,
		&school.City,
		&school.Address,
		&school.Description,
		&school.OwnerUsername,
		&school.CreatedAt,
		&school.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("School")
		}
		return nil, fmt.Errorf("postgres_school_repo_find_by_slug_failed: %w", err)
	}

	return school, nil
}

// Create persists a new school listing.
func (repository *PostgresRepository) Create(ctx context.Context, school *School) error {
	const query = `
		INSERT INTO catalog.school (
			id, name, slug, city, address, description, ownerusername, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	now := time.Now()
	if school.CreatedAt.IsZero() {
		school.CreatedAt = now
	}
	school.UpdatedAt = now

	_, err := repository.pool.Exec(ctx, query,
		school.ID,
		school.Name,
		school.Slug,
		school.City,
		school.Address,
		school.Description,
		school.OwnerUsername,
		school.CreatedAt,
		school.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_school_repo_create_failed: %w", err)
	}

	return nil
}

// Update persists changes to mutable listing fields.
func (repository *PostgresRepository) Update(ctx context.Context, school *School) error {
	const query = `
		UPDATE catalog.school
		SET name = $2, city = $3, address = $4, description = $5, updatedat = $6
		WHERE id = $1`

	school.UpdatedAt = time.Now()
	_, err := repository.pool.Exec(ctx, query,
		school.ID,
		school.Name,
		school.City,
		school.Address,
		school.Description,
		school.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_school_repo_update_failed: %w", err)
	}

	return nil
}
