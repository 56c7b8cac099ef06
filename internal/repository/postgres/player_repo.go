package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/rfox/draftroom/internal/domain"
	"gorm.io/gorm"
)

type playerRepository struct {
	db *gorm.DB
}

func NewPlayerRepository(db *gorm.DB) *playerRepository {
	return &playerRepository{db: db}
}

func (r *playerRepository) Create(ctx context.Context, player *domain.Player) error {
	return r.db.WithContext(ctx).Create(player).Error
}

func (r *playerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Player, error) {
	var player domain.Player
	err := r.db.WithContext(ctx).First(&player, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &player, nil
}

func (r *playerRepository) ListByLeague(ctx context.Context, leagueID uuid.UUID) ([]*domain.Player, error) {
	var players []*domain.Player
	err := r.db.WithContext(ctx).
		Where("league_id = ?", leagueID).
		Order("name ASC").
		Find(&players).Error
	if err != nil {
		return nil, err
	}
	return players, nil
}

func (r *playerRepository) MarkDrafted(ctx context.Context, playerID, captainID uuid.UUID, pickNumber int) error {
	res := r.db.WithContext(ctx).Model(&domain.Player{}).
		Where("id = ? AND drafted_by IS NULL", playerID).
		Updates(map[string]interface{}{
			"drafted_by":  captainID,
			"pick_number": pickNumber,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != 1 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *playerRepository) ClearDrafted(ctx context.Context, playerID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&domain.Player{}).
		Where("id = ?", playerID).
		Updates(map[string]interface{}{
			"drafted_by":  nil,
			"pick_number": nil,
		}).Error
}

func (r *playerRepository) ClearAllDrafted(ctx context.Context, leagueID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&domain.Player{}).
		Where("league_id = ?", leagueID).
		Updates(map[string]interface{}{
			"drafted_by":  nil,
			"pick_number": nil,
		}).Error
}
