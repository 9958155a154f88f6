package game

// DefaultPreviewSize is how many items the start screen shows.
const DefaultPreviewSize = 8

// LessonPreview is what a player sees before starting: a random sample of
// items (without the answer key) and the groups to sort into.
type LessonPreview struct {
	LessonID  string       `json:"lessonId"`
	Title     string       `json:"title"`
	Items     []PublicItem `json:"items"`
	Groups    []Group      `json:"groups"`
	ItemCount int          `json:"itemCount"`
}

// Preview samples up to limit items of lesson in random order.
// A non-positive limit means DefaultPreviewSize.
func Preview(lesson Lesson, sh Shuffler, limit int) LessonPreview {
	if limit <= 0 {
		limit = DefaultPreviewSize
	}
	if sh == nil {
		sh = NewShuffler()
	}
	perm := sh.Perm(len(lesson.Items))
	if len(perm) > limit {
		perm = perm[:limit]
	}
	items := make([]PublicItem, 0, len(perm))
	for _, i := range perm {
		items = append(items, lesson.Items[i].Public())
	}
	return LessonPreview{
		LessonID:  lesson.ID,
		Title:     lesson.Title,
		Items:     items,
		Groups:    append([]Group{}, lesson.Groups...),
		ItemCount: len(lesson.Items),
	}
}
