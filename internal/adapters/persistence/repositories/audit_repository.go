package repositories

import (
	"context"

	"smartlocker/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// auditRepository implements AuditRepository interface
type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new audit log repository
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

// Record appends an audit entry. Entries are never updated or deleted.
func (r *auditRepository) Record(ctx context.Context, entry *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListRecent returns the most recent entries, newest first
func (r *auditRepository) ListRecent(ctx context.Context, limit int) ([]*models.AuditLog, error) {
	var entries []*models.AuditLog
	err := r.db.WithContext(ctx).
		Order("timestamp DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
