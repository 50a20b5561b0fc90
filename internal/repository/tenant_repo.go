package repository

import (
	"context"

	"github.com/teampop/popcommerce/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TenantRepository handles the durable registry of onboarded merchants.
type TenantRepository struct {
	db *gorm.DB
}

// NewTenantRepository creates a new TenantRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *TenantRepository: repository instance bound to db.
func NewTenantRepository(db *gorm.DB) *TenantRepository {
	return &TenantRepository{db: db}
}

// Upsert inserts a tenant record or refreshes the existing row for the
// same domain.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - tenant: tenant record to persist.
// Returns:
//   - error: non-nil if the write fails.
func (r *TenantRepository) Upsert(ctx context.Context, tenant *domain.Tenant) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "domain"}},
		DoUpdates: clause.AssignmentColumns([]string{"index_name", "product_count", "updated_at"}),
	}).Create(tenant).Error
}

// GetByID retrieves a tenant by id.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: tenant id.
// Returns:
//   - *domain.Tenant: tenant record if found.
//   - error: non-nil if lookup fails.
func (r *TenantRepository) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	var tenant domain.Tenant
	if err := r.db.WithContext(ctx).First(&tenant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

// GetByDomain retrieves a tenant by its onboarded domain.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - siteDomain: merchant site domain.
// Returns:
//   - *domain.Tenant: tenant record if found.
//   - error: non-nil if lookup fails.
func (r *TenantRepository) GetByDomain(ctx context.Context, siteDomain string) (*domain.Tenant, error) {
	var tenant domain.Tenant
	if err := r.db.WithContext(ctx).First(&tenant, "domain = ?", siteDomain).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

// List returns tenants ordered by creation time, newest first.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - limit: maximum number of records to return.
//   - offset: number of records to skip.
// Returns:
//   - []domain.Tenant: tenant records.
//   - error: non-nil if retrieval fails.
func (r *TenantRepository) List(ctx context.Context, limit, offset int) ([]domain.Tenant, error) {
	var tenants []domain.Tenant
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&tenants).Error
	return tenants, err
}
