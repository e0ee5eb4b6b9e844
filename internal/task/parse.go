package task

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/saharsh3008/task/internal/model"
)

// Edge parsers shared by the HTTP and CLI collaborators. The store itself
// assumes well-typed input and never calls these.

var (
	ErrInvalidPriority = errors.New("priority must be low, medium or high")
	ErrInvalidWeekday  = errors.New("weekday must be 0-6 or a day name")
	ErrInvalidDate     = errors.New("date must be YYYY-MM-DD, YYYY-MM-DD HH:MM or RFC3339")
)

func ParsePriority(s string) (model.Priority, error) {
	p := model.Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPriority, s)
	}
	return p, nil
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tues": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// ParseWeekdays accepts comma separated indices or names ("1,3" or
// "mon,wed") and returns a sorted set without duplicates.
func ParseWeekdays(s string) (model.Weekdays, error) {
	var out model.Weekdays
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		if d, ok := weekdayNames[part]; ok {
			out = append(out, d)
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidWeekday, part)
		}
		out = append(out, time.Weekday(n))
	}
	return NormalizeWeekdays(out)
}

// NormalizeWeekdays range-checks, sorts and dedupes days.
func NormalizeWeekdays(days model.Weekdays) (model.Weekdays, error) {
	for _, d := range days {
		if d < time.Sunday || d > time.Saturday {
			return nil, fmt.Errorf("%w: %d", ErrInvalidWeekday, d)
		}
	}
	out := slices.Clone(days)
	slices.Sort(out)
	return slices.Compact(out), nil
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	dateLayout,
}

// ParseDate parses s in loc. A bare date means local midnight.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}
