package game

import "errors"

// Sentinel errors returned by Session operations. Callers match them with
// errors.Is; the returned errors carry the offending id via wrapping.
// A rejected action never changes the session.
var (
	ErrInvalidLesson    = errors.New("invalid lesson")
	ErrUnknownItem      = errors.New("unknown item")
	ErrUnknownGroup     = errors.New("unknown group")
	ErrIncomplete       = errors.New("not all items placed")
	ErrNotSubmitted     = errors.New("session not submitted")
	ErrAlreadySubmitted = errors.New("session already submitted")
	ErrAlreadyCompleted = errors.New("session already completed")
)
