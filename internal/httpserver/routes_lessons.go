// internal/httpserver/routes_lessons.go
//
// Lesson catalog endpoints.
// Responsibilities:
//   - GET  /lessons               : browse (?q= text, ?category= exact)
//   - GET  /lessons/categories    : distinct categories
//   - GET  /lessons/daily         : lesson of the day (?date=YYYY-MM-DD, default today UTC)
//   - GET  /lessons/schedule      : upcoming daily picks (?from=YYYY-MM-DD&days=N, max 31)
//   - GET  /lessons/{id}          : playable lesson without the answer key
//   - GET  /lessons/{id}/preview  : start-screen sample (?limit=)
//   - POST /drafts                : build a lesson from authoring ops (not stored)

package httpserver

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/sortlab/apps/go-server/internal/game"
	"github.com/robalobadob/sortlab/apps/go-server/internal/lessons"
)

// publicLesson is a lesson as a player may see it.
type publicLesson struct {
	ID     string            `json:"id"`
	Title  string            `json:"title"`
	Items  []game.PublicItem `json:"items"`
	Groups []game.Group      `json:"groups"`
}

const maxScheduleDays = 31

type draftReq struct {
	Title string       `json:"title"`
	Ops   []lessons.Op `json:"ops"`
}

type draftRes struct {
	Lesson  game.Lesson     `json:"lesson"`
	Summary lessons.Summary `json:"summary"`
}

func (s *Server) mountLessons() {
	s.r.Route("/lessons", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Get("/categories", s.handleCategories)
		r.Get("/daily", s.handleDaily)
		r.Get("/schedule", s.handleSchedule)
		r.Get("/{id}", s.handleLesson)
		r.Get("/{id}/preview", s.handlePreview)
	})
	s.r.Post("/drafts", s.handleDraft)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	q := lessons.Query{
		Text:     r.URL.Query().Get("q"),
		Category: r.URL.Query().Get("category"),
	}
	list, err := s.lessons.List(r.Context(), q)
	if err != nil {
		respondErr(w, err, nil)
		return
	}
	if list == nil {
		list = []lessons.Summary{}
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.lessons.Categories(r.Context())
	if err != nil {
		respondErr(w, err, nil)
		return
	}
	if cats == nil {
		cats = []string{}
	}
	respondJSON(w, http.StatusOK, cats)
}

// dayParam reads a YYYY-MM-DD query parameter, defaulting to today (UTC).
func (s *Server) dayParam(r *http.Request, name string) (time.Time, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return s.now().UTC(), true
	}
	t, err := time.Parse(lessons.DayLayout, v)
	return t, err == nil
}

func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	day, ok := s.dayParam(r, "date")
	if !ok {
		respondError(w, http.StatusBadRequest, "bad_request", "date must be YYYY-MM-DD")
		return
	}
	picks, err := lessons.Schedule(r.Context(), s.lessons, day, 1, s.cfg.DailySalt)
	if err != nil {
		respondErr(w, err, nil)
		return
	}
	respondJSON(w, http.StatusOK, picks[0])
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	from, ok := s.dayParam(r, "from")
	if !ok {
		respondError(w, http.StatusBadRequest, "bad_request", "from must be YYYY-MM-DD")
		return
	}
	days := 7
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxScheduleDays {
			respondError(w, http.StatusBadRequest, "bad_request", "days must be between 1 and 31")
			return
		}
		days = n
	}
	picks, err := lessons.Schedule(r.Context(), s.lessons, from, days, s.cfg.DailySalt)
	if err != nil {
		respondErr(w, err, nil)
		return
	}
	respondJSON(w, http.StatusOK, picks)
}

func (s *Server) handleLesson(w http.ResponseWriter, r *http.Request) {
	l, err := s.lessons.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, err, nil)
		return
	}
	items := make([]game.PublicItem, 0, len(l.Items))
	for _, it := range l.Items {
		items = append(items, it.Public())
	}
	respondJSON(w, http.StatusOK, publicLesson{ID: l.ID, Title: l.Title, Items: items, Groups: l.Groups})
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "bad_request", "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	l, err := s.lessons.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, err, nil)
		return
	}
	respondJSON(w, http.StatusOK, game.Preview(l, s.shuffler(), limit))
}

// handleDraft replays the authoring ops on a fresh draft and returns the
// resulting lesson. Nothing is stored; the lesson is only logged. Like the
// authoring form, any title is accepted, including an empty one.
func (s *Server) handleDraft(w http.ResponseWriter, r *http.Request) {
	var req draftReq
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", "invalid json")
		return
	}
	d := lessons.NewDraft()
	d.Title = req.Title
	for i, op := range req.Ops {
		if err := d.Apply(op); err != nil {
			err = fmt.Errorf("op %d: %w", i, err)
			if status, _ := classify(err); status == http.StatusInternalServerError {
				respondError(w, http.StatusBadRequest, "bad_op", err.Error())
				return
			}
			respondErr(w, err, nil)
			return
		}
	}
	l, err := d.Lesson("draft-" + uuid.NewString())
	if err != nil {
		respondErr(w, err, nil)
		return
	}
	sum := lessons.Entry{Lesson: l}.Summary()
	log.Info().
		Str("lesson", l.ID).
		Str("title", l.Title).
		Int("items", sum.ItemCount).
		Int("groups", sum.GroupCount).
		Msg("lesson drafted")
	respondJSON(w, http.StatusCreated, draftRes{Lesson: l, Summary: sum})
}
