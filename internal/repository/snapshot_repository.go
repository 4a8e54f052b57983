package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/talentbridge/match-api/internal/models"
)

// SnapshotRepository reads the externally-owned profile, listing and tenant
// tables. Strictly read-only: the engine never mutates these rows.
type SnapshotRepository struct {
	db *sqlx.DB
}

// NewSnapshotRepository constructs the repository.
func NewSnapshotRepository(db *sqlx.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// GetStudent loads one student profile snapshot.
func (r *SnapshotRepository) GetStudent(ctx context.Context, studentID string) (*models.StudentProfile, error) {
	const query = `SELECT id, tenant_id, full_name, skills, hours_per_week, sport, position, active, updated_at
		FROM student_profiles WHERE id = $1`
	var student models.StudentProfile
	if err := r.db.GetContext(ctx, &student, query, studentID); err != nil {
		return nil, err
	}
	return &student, nil
}

// GetListing loads one listing snapshot.
func (r *SnapshotRepository) GetListing(ctx context.Context, listingID string) (*models.Listing, error) {
	const query = `SELECT id, tenant_id, title, required_skills, category, hours_per_week, status, published_at, updated_at
		FROM listings WHERE id = $1`
	var listing models.Listing
	if err := r.db.GetContext(ctx, &listing, query, listingID); err != nil {
		return nil, err
	}
	return &listing, nil
}

// GetTenant loads one tenant snapshot.
func (r *SnapshotRepository) GetTenant(ctx context.Context, tenantID string) (*models.Tenant, error) {
	const query = `SELECT id, name, marketplace_type, created_at FROM tenants WHERE id = $1`
	var tenant models.Tenant
	if err := r.db.GetContext(ctx, &tenant, query, tenantID); err != nil {
		return nil, err
	}
	return &tenant, nil
}

// ListPublishedListings returns every published listing for a tenant.
func (r *SnapshotRepository) ListPublishedListings(ctx context.Context, tenantID string) ([]models.Listing, error) {
	const query = `SELECT id, tenant_id, title, required_skills, category, hours_per_week, status, published_at, updated_at
		FROM listings WHERE tenant_id = $1 AND status = 'PUBLISHED' ORDER BY published_at DESC, id ASC`
	listings := []models.Listing{}
	if err := r.db.SelectContext(ctx, &listings, query, tenantID); err != nil {
		return nil, err
	}
	return listings, nil
}

// ListActiveStudents returns every active student in a tenant.
func (r *SnapshotRepository) ListActiveStudents(ctx context.Context, tenantID string) ([]models.StudentProfile, error) {
	const query = `SELECT id, tenant_id, full_name, skills, hours_per_week, sport, position, active, updated_at
		FROM student_profiles WHERE tenant_id = $1 AND active = true ORDER BY id ASC`
	students := []models.StudentProfile{}
	if err := r.db.SelectContext(ctx, &students, query, tenantID); err != nil {
		return nil, err
	}
	return students, nil
}
