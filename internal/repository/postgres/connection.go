package postgres

import (
	"context"

	"github.com/rfox/draftroom/internal/domain"
	"github.com/rfox/draftroom/internal/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewConnection(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	// Auto-migrate tables
	err = db.AutoMigrate(
		&domain.User{},
		&domain.UserSession{},
		&domain.League{},
		&domain.Captain{},
		&domain.Player{},
		&domain.DraftPick{},
		&domain.QueueEntry{},
		&domain.AuditEntry{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		User:    NewUserRepository(db),
		Session: NewSessionRepository(db),
		League:  NewLeagueRepository(db),
		Captain: NewCaptainRepository(db),
		Player:  NewPlayerRepository(db),
		Pick:    NewPickRepository(db),
		Queue:   NewQueueRepository(db),
		Audit:   NewAuditRepository(db),
	}
}

type transactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) *transactor {
	return &transactor{db: db}
}

// Transact binds a fresh set of repositories to one database transaction.
// fn returning an error rolls the whole transaction back.
func (t *transactor) Transact(ctx context.Context, fn func(repos *repository.Repositories) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
