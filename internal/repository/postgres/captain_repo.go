package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/rfox/draftroom/internal/domain"
	"gorm.io/gorm"
)

type captainRepository struct {
	db *gorm.DB
}

func NewCaptainRepository(db *gorm.DB) *captainRepository {
	return &captainRepository{db: db}
}

func (r *captainRepository) Create(ctx context.Context, captain *domain.Captain) error {
	return r.db.WithContext(ctx).Create(captain).Error
}

func (r *captainRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Captain, error) {
	var captain domain.Captain
	err := r.db.WithContext(ctx).First(&captain, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &captain, nil
}

func (r *captainRepository) GetByAccessToken(ctx context.Context, leagueID uuid.UUID, token string) (*domain.Captain, error) {
	var captain domain.Captain
	err := r.db.WithContext(ctx).
		First(&captain, "league_id = ? AND access_token = ?", leagueID, token).Error
	if err != nil {
		return nil, err
	}
	return &captain, nil
}

func (r *captainRepository) Update(ctx context.Context, captain *domain.Captain) error {
	return r.db.WithContext(ctx).Save(captain).Error
}

func (r *captainRepository) ListByLeague(ctx context.Context, leagueID uuid.UUID) ([]*domain.Captain, error) {
	var captains []*domain.Captain
	err := r.db.WithContext(ctx).
		Where("league_id = ?", leagueID).
		Order("draft_position ASC").
		Find(&captains).Error
	if err != nil {
		return nil, err
	}
	return captains, nil
}

// ReorderPositions rewrites the league's draft order as a two-phase write.
// Positions carry a unique index, so writing the final values directly can
// collide with a row that has not moved yet; parking every row on the
// negative of its target first makes both phases collision-free. Run inside
// a transaction: any failure must roll back to the pre-reorder order.
func (r *captainRepository) ReorderPositions(ctx context.Context, leagueID uuid.UUID, orderedIDs []uuid.UUID) error {
	for i, id := range orderedIDs {
		res := r.db.WithContext(ctx).Model(&domain.Captain{}).
			Where("id = ? AND league_id = ?", id, leagueID).
			Update("draft_position", -(i + 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return gorm.ErrRecordNotFound
		}
	}

	for i, id := range orderedIDs {
		err := r.db.WithContext(ctx).Model(&domain.Captain{}).
			Where("id = ? AND league_id = ?", id, leagueID).
			Update("draft_position", i+1).Error
		if err != nil {
			return err
		}
	}
	return nil
}
