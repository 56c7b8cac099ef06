package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/rfox/draftroom/internal/domain"
	"gorm.io/gorm"
)

type pickRepository struct {
	db *gorm.DB
}

func NewPickRepository(db *gorm.DB) *pickRepository {
	return &pickRepository{db: db}
}

func (r *pickRepository) Create(ctx context.Context, pick *domain.DraftPick) error {
	return r.db.WithContext(ctx).Create(pick).Error
}

func (r *pickRepository) ListByLeague(ctx context.Context, leagueID uuid.UUID) ([]*domain.DraftPick, error) {
	var picks []*domain.DraftPick
	err := r.db.WithContext(ctx).
		Where("league_id = ?", leagueID).
		Order("pick_number ASC").
		Find(&picks).Error
	if err != nil {
		return nil, err
	}
	return picks, nil
}

func (r *pickRepository) CountByLeague(ctx context.Context, leagueID uuid.UUID) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.DraftPick{}).
		Where("league_id = ?", leagueID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *pickRepository) GetLast(ctx context.Context, leagueID uuid.UUID) (*domain.DraftPick, error) {
	var pick domain.DraftPick
	err := r.db.WithContext(ctx).
		Where("league_id = ?", leagueID).
		Order("pick_number DESC").
		First(&pick).Error
	if err != nil {
		return nil, err
	}
	return &pick, nil
}

func (r *pickRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.DraftPick{}, "id = ?", id).Error
}

func (r *pickRepository) DeleteByLeague(ctx context.Context, leagueID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.DraftPick{}, "league_id = ?", leagueID).Error
}
