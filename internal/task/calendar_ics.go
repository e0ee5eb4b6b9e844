package task

import (
	"fmt"
	"strings"
	"time"

	"github.com/saharsh3008/task/internal/model"
)

const icsDateLayout = "20060102"

var icsDays = [...]string{"SU", "MO", "TU", "WE", "TH", "FR", "SA"}

// BuildTaskCalendarICS builds a simple iCalendar event for a task.
// A due date is required so the exported event has a concrete start date.
func BuildTaskCalendarICS(t model.Task, now time.Time) (string, error) {
	if t.DueDate == nil {
		return "", fmt.Errorf("task due date required for calendar export")
	}
	due := t.DueDate.In(now.Location())
	start := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, due.Location())
	end := start.AddDate(0, 0, 1)

	title := strings.TrimSpace(t.Title)
	if title == "" {
		title = "Task"
	}
	desc := strings.TrimSpace(t.Description)

	uid := fmt.Sprintf("task-%s@taskdeck", strings.TrimSpace(t.ID))
	if strings.TrimSpace(t.ID) == "" {
		uid = fmt.Sprintf("task-export-%d@taskdeck", now.UnixNano())
	}

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//taskdeck//Task Export//EN",
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
		"BEGIN:VEVENT",
		"UID:" + escapeICSText(uid),
		"DTSTAMP:" + now.UTC().Format("20060102T150405Z"),
		"SUMMARY:" + escapeICSText(title),
		"DTSTART;VALUE=DATE:" + start.Format(icsDateLayout),
		"DTEND;VALUE=DATE:" + end.Format(icsDateLayout),
	}
	if desc != "" {
		lines = append(lines, "DESCRIPTION:"+escapeICSText(desc))
	}
	if rrule := recurrenceToICSRRULE(t.RecurrenceDays); rrule != "" {
		lines = append(lines, "RRULE:"+rrule)
	}
	if t.Reminder != nil {
		lines = append(lines,
			"BEGIN:VALARM",
			"ACTION:DISPLAY",
			"DESCRIPTION:"+escapeICSText(title),
			"TRIGGER;VALUE=DATE-TIME:"+t.Reminder.UTC().Format("20060102T150405Z"),
			"END:VALARM",
		)
	}
	lines = append(lines, "END:VEVENT", "END:VCALENDAR", "")

	return strings.Join(lines, "\r\n"), nil
}

func recurrenceToICSRRULE(days model.Weekdays) string {
	if len(days) == 0 {
		return ""
	}
	codes := make([]string, 0, len(days))
	for _, d := range days {
		if d >= time.Sunday && d <= time.Saturday {
			codes = append(codes, icsDays[d])
		}
	}
	if len(codes) == 0 {
		return ""
	}
	return "FREQ=WEEKLY;BYDAY=" + strings.Join(codes, ",")
}

func escapeICSText(s string) string {
	repl := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\r\n", "\\n",
		"\n", "\\n",
		"\r", "\\n",
	)
	return repl.Replace(s)
}
