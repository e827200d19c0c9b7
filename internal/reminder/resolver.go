package reminder

import (
	"strings"
	"time"
)

// Notification is the renderable result of joining a claimed row to its
// optional task and client. Resolve does no I/O; everything it needs
// was fetched by the claim join.
type Notification struct {
	Subject  string
	Audience string
	When     time.Time
	Body     string
}

// Resolve shapes a claimed row into a notification. Subject prefers the
// task title, then the reminder title, then a generic fallback; the
// timestamp prefers the task due time over the scheduled time.
func Resolve(c Claimed) Notification {
	n := Notification{
		Subject: strings.TrimSpace(c.Title),
		When:    c.ScheduledAt,
		Body:    strings.TrimSpace(c.Message),
	}

	if c.TaskTitle != nil && strings.TrimSpace(*c.TaskTitle) != "" {
		n.Subject = strings.TrimSpace(*c.TaskTitle)
	}
	if n.Subject == "" {
		n.Subject = "Reminder"
	}

	if c.TaskDueAt != nil {
		n.When = *c.TaskDueAt
	}

	if c.ClientName != nil {
		n.Audience = strings.TrimSpace(*c.ClientName)
	}

	return n
}

// ComposeText renders the single plain-text message a channel delivers.
func ComposeText(n Notification) string {
	var b strings.Builder
	b.WriteString(n.Subject)
	if n.Audience != "" {
		b.WriteString(" - ")
		b.WriteString(n.Audience)
	}
	b.WriteString(" (")
	b.WriteString(n.When.Format(time.RFC1123))
	b.WriteString(")")
	if n.Body != "" {
		b.WriteString("\n")
		b.WriteString(n.Body)
	}
	return b.String()
}
