package service

import (
	"time"

	"github.com/eventwish/wishadmin/internal/model"
)

// ResolveWindow maps a named time filter to a concrete [start, end)
// instant range against the given clock and time zone. Nil bounds mean
// unbounded on that side; all-time resolves to (nil, nil).
//
// "today" and "yesterday" are calendar-day boundaries in loc; the rolling
// windows count back from the query instant and stay open-ended, so a
// share created between window resolution and query execution still
// cannot leak in (it would be created after now).
func ResolveWindow(filter model.TimeFilter, now time.Time, loc *time.Location) (start, end *time.Time) {
	local := now.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	switch filter {
	case model.FilterToday:
		tomorrow := midnight.AddDate(0, 0, 1)
		return &midnight, &tomorrow

	case model.FilterYesterday:
		yesterday := midnight.AddDate(0, 0, -1)
		return &yesterday, &midnight

	case model.FilterLast7:
		from := now.Add(-7 * 24 * time.Hour)
		return &from, nil

	case model.FilterLast30:
		from := now.Add(-30 * 24 * time.Hour)
		return &from, nil

	case model.FilterThisMonth:
		firstOfMonth := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
		return &firstOfMonth, nil

	case model.FilterLastMonth:
		firstOfMonth := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
		firstOfPrev := firstOfMonth.AddDate(0, -1, 0)
		return &firstOfPrev, &firstOfMonth
	}

	// "" and "all" mean all-time.
	return nil, nil
}
