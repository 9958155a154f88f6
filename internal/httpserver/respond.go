package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/sortlab/apps/go-server/internal/game"
	"github.com/robalobadob/sortlab/apps/go-server/internal/lessons"
	"github.com/robalobadob/sortlab/apps/go-server/internal/store"
)

// errorRes is the body of every non-2xx response.
type errorRes struct {
	Error   string         `json:"error"`
	Message string         `json:"message,omitempty"`
	Session *game.Snapshot `json:"session,omitempty"` // unchanged state after a rejected action
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorRes{Error: code, Message: message})
}

// respondErr maps a domain error to a status and code.
// snap, when non-nil, is echoed back so the client can resync.
func respondErr(w http.ResponseWriter, err error, snap *game.Snapshot) {
	status, code := classify(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
		respondJSON(w, status, errorRes{Error: code})
		return
	}
	respondJSON(w, status, errorRes{Error: code, Message: err.Error(), Session: snap})
}

// classify checks the wrong-state sentinels before ErrIncomplete so a
// repeated submit reports why it failed.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, game.ErrUnknownItem):
		return http.StatusUnprocessableEntity, "unknown_item"
	case errors.Is(err, game.ErrUnknownGroup):
		return http.StatusUnprocessableEntity, "unknown_group"
	case errors.Is(err, game.ErrInvalidLesson):
		return http.StatusUnprocessableEntity, "invalid_lesson"
	case errors.Is(err, lessons.ErrLastGroup):
		return http.StatusUnprocessableEntity, "last_group"
	case errors.Is(err, game.ErrNotSubmitted):
		return http.StatusConflict, "not_submitted"
	case errors.Is(err, game.ErrAlreadySubmitted):
		return http.StatusConflict, "already_submitted"
	case errors.Is(err, game.ErrAlreadyCompleted):
		return http.StatusConflict, "already_completed"
	case errors.Is(err, game.ErrIncomplete):
		return http.StatusConflict, "incomplete"
	case errors.Is(err, lessons.ErrNotFound), errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "not_found"
	}
	return http.StatusInternalServerError, "internal"
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
