// internal/lessons/daily.go
//
// "Lesson of the day".
//
// The pick for a day is HMAC-SHA256(salt, YYYY-MM-DD) read as a big-endian
// uint64, modulo the number of lessons in the id-ordered catalog. Everyone
// sees the same lesson for a UTC day; changing the salt reshuffles the
// calendar without touching the catalog.

package lessons

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// DayLayout is the date format used for day keys.
const DayLayout = "2006-01-02"

// DateKey returns t as YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format(DayLayout)
}

// dayIndex maps a day onto [0, n). Returns 0 when n <= 0.
func dayIndex(day time.Time, salt string, n int) int {
	if n <= 0 {
		return 0
	}
	mac := hmac.New(sha256.New, []byte(salt))
	mac.Write([]byte(DateKey(day)))
	v := binary.BigEndian.Uint64(mac.Sum(nil)[:8])
	return int(v % uint64(n))
}

// DailyPick is the lesson chosen for one day.
type DailyPick struct {
	Date   string  `json:"date"`
	Lesson Summary `json:"lesson"`
}

// Daily returns the lesson of the day for now.
func Daily(ctx context.Context, c Catalog, now time.Time, salt string) (Summary, error) {
	picks, err := Schedule(ctx, c, now, 1, salt)
	if err != nil {
		return Summary{}, err
	}
	return picks[0].Lesson, nil
}

// Schedule returns the daily picks for days consecutive days starting at
// from. days < 1 is treated as 1.
func Schedule(ctx context.Context, c Catalog, from time.Time, days int, salt string) ([]DailyPick, error) {
	all, err := c.List(ctx, Query{})
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, ErrNotFound
	}
	if days < 1 {
		days = 1
	}
	out := make([]DailyPick, 0, days)
	for i := 0; i < days; i++ {
		day := from.UTC().AddDate(0, 0, i)
		out = append(out, DailyPick{Date: DateKey(day), Lesson: all[dayIndex(day, salt, len(all))]})
	}
	return out, nil
}
