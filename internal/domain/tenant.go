package domain

import "time"

// Tenant is the durable record of an onboarded merchant. Unlike ingest
// jobs, tenant rows survive restarts so install snippets and dashboards
// can recover the tenant id for a domain later.
type Tenant struct {
	ID           string    `gorm:"type:text;primaryKey" json:"tenant_id"`
	Domain       string    `gorm:"type:text;not null;uniqueIndex:idx_tenants_domain" json:"domain"`
	IndexName    string    `gorm:"type:text;not null" json:"index_name"`
	ProductCount int       `gorm:"default:0" json:"product_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the database table name for Tenant.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (Tenant) TableName() string {
	return "tenants"
}
