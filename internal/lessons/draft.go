package lessons

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/robalobadob/sortlab/apps/go-server/internal/game"
)

// Palette is the color cycle for new draft groups.
var Palette = []string{"chart-1", "chart-2", "chart-3", "chart-4", "chart-5"}

// ErrLastGroup is returned when removing a draft's only group.
var ErrLastGroup = errors.New("cannot remove the last group")

// Draft is an in-progress lesson from the authoring form. Drafts are never
// stored; Lesson() turns one into something a session can be started from.
type Draft struct {
	Title    string
	Groups   []game.Group
	Items    []game.Item // CorrectGroupID is the group the item was added to
	Selected string      // group new items go into
}

// NewDraft starts with two empty groups, the first one selected.
func NewDraft() *Draft {
	return &Draft{
		Groups: []game.Group{
			{ID: "1", Title: "Group 1", Color: Palette[0]},
			{ID: "2", Title: "Group 2", Color: Palette[1]},
		},
		Selected: "1",
	}
}

// AddGroup appends a group with the next numeric id and palette color.
func (d *Draft) AddGroup() game.Group {
	n := len(d.Groups)
	g := game.Group{
		ID:    nextID(len(d.Groups), func(i int) string { return d.Groups[i].ID }),
		Title: fmt.Sprintf("Group %d", n+1),
		Color: Palette[n%len(Palette)],
	}
	d.Groups = append(d.Groups, g)
	return g
}

// RenameGroup sets a group's title.
func (d *Draft) RenameGroup(id, title string) error {
	i := d.groupIndex(id)
	if i < 0 {
		return fmt.Errorf("rename %q: %w", id, game.ErrUnknownGroup)
	}
	d.Groups[i].Title = title
	return nil
}

// RemoveGroup deletes a group and every item assigned to it.
// The last remaining group cannot be removed.
func (d *Draft) RemoveGroup(id string) error {
	i := d.groupIndex(id)
	if i < 0 {
		return fmt.Errorf("remove %q: %w", id, game.ErrUnknownGroup)
	}
	if len(d.Groups) <= 1 {
		return ErrLastGroup
	}
	d.Groups = append(d.Groups[:i:i], d.Groups[i+1:]...)

	kept := d.Items[:0:0]
	for _, it := range d.Items {
		if it.CorrectGroupID != id {
			kept = append(kept, it)
		}
	}
	d.Items = kept

	if d.Selected == id {
		d.Selected = d.Groups[0].ID
	}
	return nil
}

// Select makes id the group new items go into.
func (d *Draft) Select(id string) error {
	if d.groupIndex(id) < 0 {
		return fmt.Errorf("select %q: %w", id, game.ErrUnknownGroup)
	}
	d.Selected = id
	return nil
}

// AddItem adds an item to the selected group. Blank text is ignored and
// reported with ok=false.
func (d *Draft) AddItem(text string) (item game.Item, ok bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return game.Item{}, false
	}
	item = game.Item{
		ID:             nextID(len(d.Items), func(i int) string { return d.Items[i].ID }),
		Text:           text,
		CorrectGroupID: d.Selected,
	}
	d.Items = append(d.Items, item)
	return item, true
}

// RemoveItem deletes an item.
func (d *Draft) RemoveItem(id string) error {
	for i, it := range d.Items {
		if it.ID == id {
			d.Items = append(d.Items[:i:i], d.Items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("remove item %q: %w", id, game.ErrUnknownItem)
}

// Lesson builds the lesson described by the draft. It fails with
// game.ErrInvalidLesson when the draft could not be played.
func (d *Draft) Lesson(id string) (game.Lesson, error) {
	l := game.Lesson{
		ID:     id,
		Title:  strings.TrimSpace(d.Title),
		Items:  append([]game.Item{}, d.Items...),
		Groups: append([]game.Group{}, d.Groups...),
	}
	if _, err := game.New(l, game.WithShuffler(game.NewSeededShuffler(0))); err != nil {
		return game.Lesson{}, err
	}
	return l, nil
}

// Op is one authoring-form action, as sent by the client.
type Op struct {
	Op    string `json:"op"` // addGroup | renameGroup | removeGroup | select | addItem | removeItem
	ID    string `json:"id,omitempty"`
	Title string `json:"title,omitempty"`
	Text  string `json:"text,omitempty"`
}

// Apply runs one op against the draft.
func (d *Draft) Apply(op Op) error {
	switch op.Op {
	case "addGroup":
		d.AddGroup()
		return nil
	case "renameGroup":
		return d.RenameGroup(op.ID, op.Title)
	case "removeGroup":
		return d.RemoveGroup(op.ID)
	case "select":
		return d.Select(op.ID)
	case "addItem":
		d.AddItem(op.Text)
		return nil
	case "removeItem":
		return d.RemoveItem(op.ID)
	}
	return fmt.Errorf("unknown draft op %q", op.Op)
}

func (d *Draft) groupIndex(id string) int {
	for i, g := range d.Groups {
		if g.ID == id {
			return i
		}
	}
	return -1
}

// nextID is max(numeric ids)+1; non-numeric ids are ignored.
func nextID(n int, at func(int) string) string {
	hi := 0
	for i := 0; i < n; i++ {
		if v, err := strconv.Atoi(at(i)); err == nil && v > hi {
			hi = v
		}
	}
	return strconv.Itoa(hi + 1)
}
