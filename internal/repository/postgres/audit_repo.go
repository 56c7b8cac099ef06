package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/rfox/draftroom/internal/domain"
	"gorm.io/gorm"
)

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *auditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, entry *domain.AuditEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *auditRepository) ListByLeague(ctx context.Context, leagueID uuid.UUID, limit int) ([]*domain.AuditEntry, error) {
	var entries []*domain.AuditEntry
	err := r.db.WithContext(ctx).
		Where("league_id = ?", leagueID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
