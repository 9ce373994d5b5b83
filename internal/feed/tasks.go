package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// DefaultTasksURL is the Todoist API v1 base.
const DefaultTasksURL = "https://api.todoist.com/api/v1"

const (
	leafEmoji     = "\U0001F343"
	leafIcon      = "\ue22f"
	recurringIcon = "\uf021"
	maxTaskPages  = 20
)

// Todoist fetches the tasks of one project that are due today or overdue.
type Todoist struct {
	BaseURL   string
	Token     string
	ProjectID string
	Client    *http.Client
	// Now defaults to time.Now.
	Now func() time.Time
}

type dueTask struct {
	content   string
	due       time.Time
	recurring bool
}

// Tasks implements TaskFeed. Overdue tasks are annotated with their due
// date in parentheses; recurring tasks get a refresh icon.
func (t *Todoist) Tasks(ctx context.Context) ([]string, error) {
	if t.Token == "" {
		return nil, fmt.Errorf("tasks: %w: no api token", ErrUnavailable)
	}
	now := time.Now
	if t.Now != nil {
		now = t.Now
	}
	today := civilDate(now())

	var due []dueTask
	cursor := ""
	for page := 0; ; page++ {
		if page == maxTaskPages {
			return nil, fmt.Errorf("tasks: %w: more than %d pages", ErrUnavailable, maxTaskPages)
		}
		body, err := t.page(ctx, cursor)
		if err != nil {
			return nil, fmt.Errorf("tasks: %w", err)
		}
		var next string
		due, next, err = appendDue(due, body, today)
		if err != nil {
			return nil, fmt.Errorf("tasks: %w", err)
		}
		if next == "" {
			break
		}
		cursor = next
	}

	sort.SliceStable(due, func(i, j int) bool { return due[i].due.Before(due[j].due) })

	lines := make([]string, 0, len(due))
	for _, d := range due {
		lines = append(lines, formatTask(d, today))
	}
	return lines, nil
}

func (t *Todoist) page(ctx context.Context, cursor string) ([]byte, error) {
	base := t.BaseURL
	if base == "" {
		base = DefaultTasksURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	u = u.JoinPath("tasks")
	q := u.Query()
	if t.ProjectID != "" {
		q.Set("project_id", t.ProjectID)
	}
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+t.Token)
	return getJSON(ctx, t.Client, req)
}

// appendDue adds the tasks of one page that are due on or before today and
// returns the cursor of the next page.
func appendDue(due []dueTask, body []byte, today time.Time) ([]dueTask, string, error) {
	if !gjson.ValidBytes(body) {
		return nil, "", fmt.Errorf("%w: malformed json", ErrUnavailable)
	}
	doc := gjson.ParseBytes(body)
	results := doc.Get("results")
	if !results.IsArray() {
		return nil, "", fmt.Errorf("%w: no results list", ErrUnavailable)
	}
	for _, r := range results.Array() {
		date := r.Get("due.date").String()
		if date == "" {
			continue
		}
		if len(date) > len("2006-01-02") {
			date = date[:len("2006-01-02")]
		}
		d, err := time.Parse("2006-01-02", date)
		if err != nil {
			return nil, "", fmt.Errorf("%w: due date %q: %v", ErrUnavailable, date, err)
		}
		if d.After(today) {
			continue
		}
		due = append(due, dueTask{
			content:   r.Get("content").String(),
			due:       d,
			recurring: r.Get("due.is_recurring").Bool(),
		})
	}
	return due, doc.Get("next_cursor").String(), nil
}

func formatTask(d dueTask, today time.Time) string {
	s := strings.ReplaceAll(d.content, leafEmoji, leafIcon)
	if d.recurring {
		s += " " + recurringIcon
	}
	if d.due.Before(today) {
		s += " " + d.due.Format("(02 Jan)")
	}
	return s
}
