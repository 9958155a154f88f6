// internal/game/engine.go
//
// Core game engine for a single sorting session.
// Responsibilities:
//   - Create sessions from a lesson (every item unplaced, shuffled order).
//   - Apply placement actions while playing (place/unplace).
//   - Grade on submit and compute the percentage score.
//   - Track state transitions: playing → submitted → completed, with reset.
//
// Notes:
//   - A Session is single-threaded; callers serialize access (see store).
//   - The on-complete callback runs after the transition to completed,
//     so anything it calls back into the session is rejected.
//   - Session IDs are UUIDs unless WithID is given.

package game

import (
	"fmt"

	"github.com/google/uuid"
)

// Session is one play of one lesson.
type Session struct {
	id         string
	lesson     Lesson
	itemIndex  map[string]int // Item.ID → index into lesson.Items
	groupIndex map[string]int // Group.ID → index into lesson.Groups

	placements []Placement // parallel to lesson.Items
	order      []int       // presentation order, indexes into lesson.Items
	state      State
	score      int
	correct    int

	shuffler   Shuffler
	onComplete func(score int)
}

// Option configures a Session at construction time.
type Option func(*Session)

// WithID fixes the session identifier.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// WithShuffler overrides the presentation-order source (tests use a seeded one).
func WithShuffler(sh Shuffler) Option {
	return func(s *Session) { s.shuffler = sh }
}

// WithOnComplete registers the one-shot final score notification.
// fn runs inside Complete after the session is already completed, so any
// action it attempts on the session is rejected. It should not block;
// hand long work off to a goroutine.
func WithOnComplete(fn func(score int)) Option {
	return func(s *Session) { s.onComplete = fn }
}

// New constructs a session for lesson.
//
// Validation rules:
//   - Lesson must have at least one item and one group.
//   - Item and group ids must be non-empty and unique.
//
// Items whose CorrectGroupID references no group are accepted; they can
// never be graded correct.
func New(lesson Lesson, opts ...Option) (*Session, error) {
	if len(lesson.Items) == 0 {
		return nil, fmt.Errorf("%w: lesson %q has no items", ErrInvalidLesson, lesson.ID)
	}
	if len(lesson.Groups) == 0 {
		return nil, fmt.Errorf("%w: lesson %q has no groups", ErrInvalidLesson, lesson.ID)
	}

	s := &Session{
		lesson: Lesson{
			ID:     lesson.ID,
			Title:  lesson.Title,
			Items:  append([]Item(nil), lesson.Items...),
			Groups: append([]Group(nil), lesson.Groups...),
		},
		itemIndex:  make(map[string]int, len(lesson.Items)),
		groupIndex: make(map[string]int, len(lesson.Groups)),
	}
	for i, g := range s.lesson.Groups {
		if g.ID == "" {
			return nil, fmt.Errorf("%w: group %d has no id", ErrInvalidLesson, i)
		}
		if _, dup := s.groupIndex[g.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate group id %q", ErrInvalidLesson, g.ID)
		}
		s.groupIndex[g.ID] = i
	}
	for i, it := range s.lesson.Items {
		if it.ID == "" {
			return nil, fmt.Errorf("%w: item %d has no id", ErrInvalidLesson, i)
		}
		if _, dup := s.itemIndex[it.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate item id %q", ErrInvalidLesson, it.ID)
		}
		s.itemIndex[it.ID] = i
	}

	for _, o := range opts {
		o(s)
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	if s.shuffler == nil {
		s.shuffler = NewShuffler()
	}
	s.restart()
	return s, nil
}

// restart puts the session into a fresh playing state with a new order.
func (s *Session) restart() {
	s.placements = make([]Placement, len(s.lesson.Items))
	for i, it := range s.lesson.Items {
		s.placements[i] = Placement{ItemID: it.ID}
	}
	s.order = s.shuffler.Perm(len(s.lesson.Items))
	s.state = StatePlaying
	s.score = 0
	s.correct = 0
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// LessonID returns the id of the lesson being played.
func (s *Session) LessonID() string { return s.lesson.ID }

// State returns the current state.
func (s *Session) State() State { return s.state }

// Score returns the graded percentage; ok is false before submission.
func (s *Session) Score() (score int, ok bool) {
	if s.state == StatePlaying {
		return 0, false
	}
	return s.score, true
}

// Place moves an item into a group.
func (s *Session) Place(itemID, groupID string) error {
	if err := s.requirePlaying(); err != nil {
		return err
	}
	i, ok := s.itemIndex[itemID]
	if !ok {
		return fmt.Errorf("place %q: %w", itemID, ErrUnknownItem)
	}
	if _, ok := s.groupIndex[groupID]; !ok {
		return fmt.Errorf("place %q into %q: %w", itemID, groupID, ErrUnknownGroup)
	}
	s.placements[i].GroupID = groupID
	return nil
}

// Unplace returns an item to the unplaced pool.
func (s *Session) Unplace(itemID string) error {
	if err := s.requirePlaying(); err != nil {
		return err
	}
	i, ok := s.itemIndex[itemID]
	if !ok {
		return fmt.Errorf("unplace %q: %w", itemID, ErrUnknownItem)
	}
	s.placements[i].GroupID = ""
	return nil
}

// Submit grades every placement and computes the score.
// Requires playing with every item placed; anything else is ErrIncomplete
// (outside playing it also wraps ErrAlreadySubmitted or ErrAlreadyCompleted).
func (s *Session) Submit() error {
	if err := s.requirePlaying(); err != nil {
		// Still an incomplete submit; the state sentinel says why.
		return fmt.Errorf("submit: %w: %w", ErrIncomplete, err)
	}
	if n := s.remaining(); n > 0 {
		return fmt.Errorf("submit: %d remaining: %w", n, ErrIncomplete)
	}

	correct := 0
	for i := range s.placements {
		ok := s.placements[i].GroupID == s.lesson.Items[i].CorrectGroupID
		s.placements[i].Correct = &ok
		if ok {
			correct++
		}
	}
	s.correct = correct
	s.score = Percent(correct, len(s.lesson.Items))
	s.state = StateSubmitted
	return nil
}

// Complete finishes a submitted session and reports the score once.
func (s *Session) Complete() error {
	switch s.state {
	case StateCompleted:
		return fmt.Errorf("complete: %w", ErrAlreadyCompleted)
	case StatePlaying:
		return fmt.Errorf("complete: %w", ErrNotSubmitted)
	}
	s.state = StateCompleted
	if s.onComplete != nil {
		s.onComplete(s.score)
	}
	return nil
}

// Reset starts a new attempt with a fresh order. Not allowed once completed.
func (s *Session) Reset() error {
	if s.state == StateCompleted {
		return fmt.Errorf("reset: %w", ErrAlreadyCompleted)
	}
	s.restart()
	return nil
}

// Unplaced returns the ids of unplaced items in presentation order.
func (s *Session) Unplaced() []string {
	out := make([]string, 0, len(s.order))
	for _, i := range s.order {
		if !s.placements[i].Placed() {
			out = append(out, s.lesson.Items[i].ID)
		}
	}
	return out
}

// Placement returns the current placement of an item.
func (s *Session) Placement(itemID string) (Placement, error) {
	i, ok := s.itemIndex[itemID]
	if !ok {
		return Placement{}, fmt.Errorf("placement %q: %w", itemID, ErrUnknownItem)
	}
	p := s.placements[i]
	if p.Correct != nil {
		c := *p.Correct
		p.Correct = &c
	}
	return p, nil
}

// Snapshot copies the session into a render-ready view.
// Items appear in presentation order both in the pool and inside groups.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		SessionID: s.id,
		LessonID:  s.lesson.ID,
		Title:     s.lesson.Title,
		State:     s.state,
		Unplaced:  []ItemView{},
		Groups:    make([]GroupView, len(s.lesson.Groups)),
		Total:     len(s.lesson.Items),
	}
	for gi, g := range s.lesson.Groups {
		snap.Groups[gi] = GroupView{Group: g, Items: []ItemView{}}
	}
	for _, i := range s.order {
		p := s.placements[i]
		v := ItemView{PublicItem: s.lesson.Items[i].Public(), GroupID: p.GroupID}
		if p.Correct != nil {
			c := *p.Correct
			v.Correct = &c
		}
		if !p.Placed() {
			snap.Unplaced = append(snap.Unplaced, v)
			continue
		}
		gi := s.groupIndex[p.GroupID]
		snap.Groups[gi].Items = append(snap.Groups[gi].Items, v)
	}
	snap.Remaining = len(snap.Unplaced)
	if s.state != StatePlaying {
		score, correct := s.score, s.correct
		snap.Score, snap.CorrectCount = &score, &correct
	}
	return snap
}

// requirePlaying rejects placement-phase actions outside of playing.
func (s *Session) requirePlaying() error {
	switch s.state {
	case StateSubmitted:
		return ErrAlreadySubmitted
	case StateCompleted:
		return ErrAlreadyCompleted
	}
	return nil
}

// remaining counts unplaced items.
func (s *Session) remaining() int {
	n := 0
	for _, p := range s.placements {
		if !p.Placed() {
			n++
		}
	}
	return n
}
