package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/rfox/draftroom/internal/domain"
	"gorm.io/gorm"
)

type queueRepository struct {
	db *gorm.DB
}

func NewQueueRepository(db *gorm.DB) *queueRepository {
	return &queueRepository{db: db}
}

func (r *queueRepository) Add(ctx context.Context, entry *domain.QueueEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *queueRepository) Remove(ctx context.Context, captainID, playerID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&domain.QueueEntry{}, "captain_id = ? AND player_id = ?", captainID, playerID).Error
}

func (r *queueRepository) ListByCaptain(ctx context.Context, captainID uuid.UUID) ([]*domain.QueueEntry, error) {
	var entries []*domain.QueueEntry
	err := r.db.WithContext(ctx).
		Where("captain_id = ?", captainID).
		Order("position ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Reorder is the same two-phase write as captain draft positions: park every
// entry on the negative of its target position, then write the final values.
// Run inside a transaction so a failure restores the previous order.
func (r *queueRepository) Reorder(ctx context.Context, captainID uuid.UUID, orderedPlayerIDs []uuid.UUID) error {
	for i, playerID := range orderedPlayerIDs {
		res := r.db.WithContext(ctx).Model(&domain.QueueEntry{}).
			Where("captain_id = ? AND player_id = ?", captainID, playerID).
			Update("position", -(i + 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return gorm.ErrRecordNotFound
		}
	}

	for i, playerID := range orderedPlayerIDs {
		err := r.db.WithContext(ctx).Model(&domain.QueueEntry{}).
			Where("captain_id = ? AND player_id = ?", captainID, playerID).
			Update("position", i+1).Error
		if err != nil {
			return err
		}
	}
	return nil
}
