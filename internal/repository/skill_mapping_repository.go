package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/talentbridge/match-api/internal/models"
)

// SkillMappingRepository persists the admin-curated athletic skill mapping
// table. The scoring path only reads; writes arrive through the admin API.
type SkillMappingRepository struct {
	db *sqlx.DB
}

// NewSkillMappingRepository constructs the repository.
func NewSkillMappingRepository(db *sqlx.DB) *SkillMappingRepository {
	return &SkillMappingRepository{db: db}
}

// GetByID returns one mapping row.
func (r *SkillMappingRepository) GetByID(ctx context.Context, id string) (*models.SkillMapping, error) {
	const query = `SELECT id, sport, position, professional_skill, transfer_strength, skill_category, description, created_at, updated_at
		FROM athletic_skill_mappings WHERE id = $1`
	var mapping models.SkillMapping
	if err := r.db.GetContext(ctx, &mapping, query, id); err != nil {
		return nil, err
	}
	return &mapping, nil
}

// ListBySport returns every mapping for a sport, position-specific and
// sport-wide rows alike. Position fallback happens in the transfer index.
func (r *SkillMappingRepository) ListBySport(ctx context.Context, sport string) ([]models.SkillMapping, error) {
	const query = `SELECT id, sport, position, professional_skill, transfer_strength, skill_category, description, created_at, updated_at
		FROM athletic_skill_mappings WHERE LOWER(sport) = LOWER($1) ORDER BY position ASC, professional_skill ASC`
	mappings := []models.SkillMapping{}
	if err := r.db.SelectContext(ctx, &mappings, query, sport); err != nil {
		return nil, err
	}
	return mappings, nil
}

// List returns every mapping, for the admin surface.
func (r *SkillMappingRepository) List(ctx context.Context) ([]models.SkillMapping, error) {
	const query = `SELECT id, sport, position, professional_skill, transfer_strength, skill_category, description, created_at, updated_at
		FROM athletic_skill_mappings ORDER BY sport ASC, position ASC, professional_skill ASC`
	mappings := []models.SkillMapping{}
	if err := r.db.SelectContext(ctx, &mappings, query); err != nil {
		return nil, err
	}
	return mappings, nil
}

// Upsert creates or updates a mapping row keyed by (sport, position,
// professional_skill).
func (r *SkillMappingRepository) Upsert(ctx context.Context, mapping *models.SkillMapping) error {
	if mapping.ID == "" {
		mapping.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if mapping.CreatedAt.IsZero() {
		mapping.CreatedAt = now
	}
	mapping.UpdatedAt = now

	const query = `INSERT INTO athletic_skill_mappings (id, sport, position, professional_skill, transfer_strength, skill_category, description, created_at, updated_at)
		VALUES (:id, :sport, :position, :professional_skill, :transfer_strength, :skill_category, :description, :created_at, :updated_at)
		ON CONFLICT (sport, position, professional_skill) DO UPDATE
		SET transfer_strength = EXCLUDED.transfer_strength,
		    skill_category = EXCLUDED.skill_category,
		    description = EXCLUDED.description,
		    updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, mapping); err != nil {
		return fmt.Errorf("upsert skill mapping: %w", err)
	}
	return nil
}
