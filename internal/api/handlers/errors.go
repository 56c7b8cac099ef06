package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rfox/draftroom/internal/domain"
	"github.com/rs/zerolog/log"
)

// writeDraftError puts a draft rejection on the wire. Expected rejections
// carry their code in a JSON error body so racing clients can tell "someone
// beat me to it" apart from real failures; anything unclassified is a 500.
func writeDraftError(w http.ResponseWriter, err error) {
	var draftErr *domain.DraftError
	if !errors.As(err, &draftErr) {
		log.Error().Err(err).Msg("Draft operation failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	status := http.StatusConflict
	switch draftErr.Code {
	case domain.CodeNotYourTurn, domain.CodeTokenMismatch:
		status = http.StatusForbidden
	case domain.CodeInfrastructure:
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"code":    string(draftErr.Code),
			"message": draftErr.Message,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
