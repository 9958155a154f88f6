// internal/httpserver/routes_sessions.go
//
// Play session endpoints.
// Responsibilities:
//   - POST /sessions            : start a session on a lesson, issue its token
//   - GET  /sessions/{id}       : current snapshot
//   - POST /sessions/{id}/...   : place, unplace, submit, reset, complete
//   - DELETE /sessions/{id}     : leave the lesson
//
// Every action answers with the resulting snapshot. A rejected action
// answers with the error and the unchanged snapshot.

package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/sortlab/apps/go-server/internal/game"
)

type startReq struct {
	LessonID string `json:"lessonId"`
}

type startRes struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expiresAt"`
	Session   game.Snapshot `json:"session"`
}

type placeReq struct {
	ItemID  string `json:"itemId"`
	GroupID string `json:"groupId"`
}

type completeRes struct {
	Score    int           `json:"score"`
	Headline string        `json:"headline"`
	Session  game.Snapshot `json:"session"`
}

func (s *Server) mountSessions() {
	s.r.Post("/sessions", s.handleStart)
	s.r.Route("/sessions/{id}", func(r chi.Router) {
		r.Use(s.requireSession)
		r.Get("/", s.handleSnapshot)
		r.Delete("/", s.handleLeave)
		r.Post("/place", s.handlePlace)
		r.Post("/unplace", s.handleUnplace)
		r.Post("/submit", s.sessionAction((*game.Session).Submit))
		r.Post("/reset", s.sessionAction((*game.Session).Reset))
		r.Post("/complete", s.handleComplete)
	})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startReq
	if err := decodeJSON(r, &req); err != nil || req.LessonID == "" {
		respondError(w, http.StatusBadRequest, "bad_request", "lessonId required")
		return
	}
	lesson, err := s.lessons.Get(r.Context(), req.LessonID)
	if err != nil {
		respondErr(w, err, nil)
		return
	}

	sess, err := game.New(lesson,
		game.WithShuffler(s.shuffler()),
		game.WithOnComplete(func(score int) {
			log.Info().Str("lesson", lesson.ID).Int("score", score).Msg("lesson completed")
		}),
	)
	if err != nil {
		respondErr(w, err, nil)
		return
	}
	if err := s.store.Save(r.Context(), sess); err != nil {
		respondErr(w, err, nil)
		return
	}

	token, exp, err := s.signSessionToken(sess.ID(), lesson.ID)
	if err != nil {
		respondErr(w, err, nil)
		return
	}
	s.setSessionCookie(w, sess.ID(), token, exp)

	log.Info().Str("session", sess.ID()).Str("lesson", lesson.ID).Msg("session started")
	respondJSON(w, http.StatusCreated, startRes{Token: token, ExpiresAt: exp, Session: sess.Snapshot()})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	s.sessionAction(nil)(w, r)
}

func (s *Server) handleLeave(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.Delete(r.Context(), id); err != nil {
		respondErr(w, err, nil)
		return
	}
	s.clearSessionCookie(w, id)
	c, _ := r.Context().Value(claimsCtxKey).(sessionClaims)
	log.Info().Str("session", id).Str("lesson", c.Lesson).Msg("session left")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePlace(w http.ResponseWriter, r *http.Request) {
	var req placeReq
	if err := decodeJSON(r, &req); err != nil || req.ItemID == "" || req.GroupID == "" {
		respondError(w, http.StatusBadRequest, "bad_request", "itemId and groupId required")
		return
	}
	s.sessionAction(func(sess *game.Session) error {
		return sess.Place(req.ItemID, req.GroupID)
	})(w, r)
}

func (s *Server) handleUnplace(w http.ResponseWriter, r *http.Request) {
	var req placeReq
	if err := decodeJSON(r, &req); err != nil || req.ItemID == "" {
		respondError(w, http.StatusBadRequest, "bad_request", "itemId required")
		return
	}
	s.sessionAction(func(sess *game.Session) error {
		return sess.Unplace(req.ItemID)
	})(w, r)
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	var (
		snap  game.Snapshot
		score int
	)
	err := s.withSession(r, func(sess *game.Session) error {
		err := sess.Complete()
		snap = sess.Snapshot()
		score, _ = sess.Score()
		return err
	}, &snap)
	if err != nil {
		s.respondAction(w, err, snap)
		return
	}
	respondJSON(w, http.StatusOK, completeRes{Score: score, Headline: game.Headline(score), Session: snap})
}

// sessionAction runs act (nil = read only) on the session named in the path
// and answers with the resulting snapshot.
func (s *Server) sessionAction(act func(*game.Session) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var snap game.Snapshot
		err := s.withSession(r, func(sess *game.Session) error {
			var err error
			if act != nil {
				err = act(sess)
			}
			snap = sess.Snapshot()
			return err
		}, &snap)
		if err != nil {
			s.respondAction(w, err, snap)
			return
		}
		respondJSON(w, http.StatusOK, snap)
	}
}

// withSession runs fn under the store's per-session lock. snap is
// zeroed when the session itself could not be found.
func (s *Server) withSession(r *http.Request, fn func(*game.Session) error, snap *game.Snapshot) error {
	found := false
	err := s.store.Update(r.Context(), chi.URLParam(r, "id"), func(sess *game.Session) error {
		found = true
		return fn(sess)
	})
	if !found {
		*snap = game.Snapshot{}
	}
	return err
}

func (s *Server) respondAction(w http.ResponseWriter, err error, snap game.Snapshot) {
	if snap.SessionID == "" {
		respondErr(w, err, nil)
		return
	}
	respondErr(w, err, &snap)
}
