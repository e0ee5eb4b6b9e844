package task

import (
	"regexp"
	"strings"

	"github.com/saharsh3008/task/internal/model"
)

type QueryKind int

const (
	QueryNone QueryKind = iota
	QueryPriority
	QueryStatus
	QueryText
)

// Query is a parsed search string. Exactly one of Priority, Done or Text is
// meaningful, selected by Kind.
type Query struct {
	Kind     QueryKind
	Priority model.Priority
	Done     bool
	Text     string
}

var priorityQuery = regexp.MustCompile(`^priority:(low|medium|high)$`)

// ParseSearch resolves raw into one search branch, first match wins:
// priority:<p>, is:done, is:pending, then substring text. Surrounding
// whitespace is ignored for the structured tokens only; text is matched as
// typed, so a query of " " finds titles containing a space.
func ParseSearch(raw string) Query {
	if raw == "" {
		return Query{Kind: QueryNone}
	}
	text := strings.ToLower(raw)
	token := strings.TrimSpace(text)
	if m := priorityQuery.FindStringSubmatch(token); m != nil {
		return Query{Kind: QueryPriority, Priority: model.Priority(m[1])}
	}
	switch token {
	case "is:done":
		return Query{Kind: QueryStatus, Done: true}
	case "is:pending":
		return Query{Kind: QueryStatus, Done: false}
	}
	return Query{Kind: QueryText, Text: text}
}

func (q Query) Match(t *model.Task) bool {
	switch q.Kind {
	case QueryPriority:
		return t.Priority == q.Priority
	case QueryStatus:
		return t.Completed == q.Done
	case QueryText:
		return strings.Contains(strings.ToLower(t.Title), q.Text) ||
			strings.Contains(strings.ToLower(t.Description), q.Text)
	default:
		return true
	}
}
