package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rfox/draftroom/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type leagueRepository struct {
	db *gorm.DB
}

func NewLeagueRepository(db *gorm.DB) *leagueRepository {
	return &leagueRepository{db: db}
}

func (r *leagueRepository) Create(ctx context.Context, league *domain.League) error {
	return r.db.WithContext(ctx).Create(league).Error
}

func (r *leagueRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.League, error) {
	var league domain.League
	err := r.db.WithContext(ctx).First(&league, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &league, nil
}

// GetByIDForUpdate takes a row lock so concurrent committers serialize on the
// league. Callers must be inside a transaction for the lock to mean anything.
func (r *leagueRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.League, error) {
	var league domain.League
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&league, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &league, nil
}

func (r *leagueRepository) Update(ctx context.Context, league *domain.League) error {
	return r.db.WithContext(ctx).Save(league).Error
}

func (r *leagueRepository) ListByOwner(ctx context.Context, userID uuid.UUID) ([]*domain.League, error) {
	var leagues []*domain.League
	err := r.db.WithContext(ctx).
		Where("created_by = ?", userID).
		Order("created_at DESC").
		Find(&leagues).Error
	if err != nil {
		return nil, err
	}
	return leagues, nil
}

func (r *leagueRepository) ListByStatus(ctx context.Context, status domain.LeagueStatus) ([]*domain.League, error) {
	var leagues []*domain.League
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Find(&leagues).Error
	if err != nil {
		return nil, err
	}
	return leagues, nil
}

func (r *leagueRepository) ListScheduledToStart(ctx context.Context, now time.Time) ([]*domain.League, error) {
	var leagues []*domain.League
	err := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_start_at IS NOT NULL AND scheduled_start_at <= ?", domain.LeagueStatusNotStarted, now).
		Find(&leagues).Error
	if err != nil {
		return nil, err
	}
	return leagues, nil
}
