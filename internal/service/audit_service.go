package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rfox/draftroom/internal/domain"
	"github.com/rfox/draftroom/internal/repository"
	"github.com/rs/zerolog/log"
)

type AuditService struct {
	auditRepo repository.AuditRepository
}

func NewAuditService(auditRepo repository.AuditRepository) *AuditService {
	return &AuditService{auditRepo: auditRepo}
}

// Record writes one audit entry. It never fails the calling operation: a
// lost audit row is logged and forgotten.
func (s *AuditService) Record(ctx context.Context, leagueID uuid.UUID, action string, actor domain.Actor, metadata map[string]any) {
	entry := &domain.AuditEntry{
		ID:        uuid.New(),
		LeagueID:  leagueID,
		Action:    action,
		ActorType: actor.Type,
		ActorID:   actor.ID(),
		IP:        actor.IP,
	}

	if metadata != nil {
		raw, err := json.Marshal(metadata)
		if err != nil {
			log.Warn().Err(err).Str("action", action).Msg("Failed to marshal audit metadata")
		} else {
			entry.Metadata = raw
		}
	}

	if err := s.auditRepo.Create(ctx, entry); err != nil {
		log.Warn().Err(err).
			Str("league_id", leagueID.String()).
			Str("action", action).
			Msg("Failed to record audit entry")
	}
}

func (s *AuditService) ListByLeague(ctx context.Context, leagueID uuid.UUID, limit int) ([]*domain.AuditEntry, error) {
	return s.auditRepo.ListByLeague(ctx, leagueID, limit)
}
