// internal/game/types.go
//
// Core type definitions for the sorting game engine.
// Defines:
//   - Item, Group, Lesson: immutable lesson content and answer key.
//   - State: coarse session state (playing/submitted/completed).
//   - Placement: per-item assignment and graded outcome.
//   - Snapshot: read-only view of a session for rendering.

package game

// State represents the lifecycle stage of a play session.
// Possible values:
//   - "playing":   items may be placed/unplaced freely.
//   - "submitted": placements are frozen and graded.
//   - "completed": final score reported; terminal.
type State string

const (
	StatePlaying   State = "playing"
	StateSubmitted State = "submitted"
	StateCompleted State = "completed"
)

// Item is a single card the player sorts into a group.
type Item struct {
	ID             string `json:"id" yaml:"id"`
	Text           string `json:"text" yaml:"text"`
	Image          string `json:"image,omitempty" yaml:"image,omitempty"`
	Icon           string `json:"icon,omitempty" yaml:"icon,omitempty"`
	CorrectGroupID string `json:"correctGroupId" yaml:"correctGroupId"` // answer key
}

// Group is a labeled target the player sorts items into.
type Group struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
	Color string `json:"color" yaml:"color"`
}

// Lesson is the content of one play session. The engine never mutates it.
type Lesson struct {
	ID     string  `json:"id" yaml:"id"`
	Title  string  `json:"title" yaml:"title"`
	Items  []Item  `json:"items" yaml:"items"`
	Groups []Group `json:"groups" yaml:"groups"`
}

// Placement holds the engine-owned state for one item.
type Placement struct {
	ItemID  string // Item.ID
	GroupID string // "" while unplaced
	Correct *bool  // nil until graded
}

// Placed reports whether the item currently sits in a group.
func (p Placement) Placed() bool { return p.GroupID != "" }

// PublicItem is an Item without its answer key.
type PublicItem struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Image string `json:"image,omitempty"`
	Icon  string `json:"icon,omitempty"`
}

// Public strips the answer key from an item.
func (it Item) Public() PublicItem {
	return PublicItem{ID: it.ID, Text: it.Text, Image: it.Image, Icon: it.Icon}
}

// ItemView is an item card as rendered in a snapshot.
type ItemView struct {
	PublicItem
	GroupID string `json:"groupId,omitempty"`
	Correct *bool  `json:"correct,omitempty"`
}

// GroupView is a group with the items currently placed in it.
type GroupView struct {
	Group
	Items []ItemView `json:"items"`
}

// Snapshot is a point-in-time copy of a session.
// Score and CorrectCount are only set once the session has been graded.
type Snapshot struct {
	SessionID    string      `json:"sessionId"`
	LessonID     string      `json:"lessonId"`
	Title        string      `json:"title"`
	State        State       `json:"state"`
	Unplaced     []ItemView  `json:"unplaced"`
	Groups       []GroupView `json:"groups"`
	Remaining    int         `json:"remaining"`
	Total        int         `json:"total"`
	CorrectCount *int        `json:"correctCount,omitempty"`
	Score        *int        `json:"score,omitempty"`
}
