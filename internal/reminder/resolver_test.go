package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func strptr(s string) *string { return &s }

func TestResolveSubjectFallbacks(t *testing.T) {
	sched := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		row  Claimed
		want string
	}{
		{"task title wins", Claimed{Title: "reminder title", TaskTitle: strptr("call the lead")}, "call the lead"},
		{"reminder title when no task", Claimed{Title: "reminder title"}, "reminder title"},
		{"blank task title skipped", Claimed{Title: "reminder title", TaskTitle: strptr("   ")}, "reminder title"},
		{"generic fallback", Claimed{Title: "  "}, "Reminder"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.row.ScheduledAt = sched
			assert.Equal(t, tt.want, Resolve(tt.row).Subject)
		})
	}
}

func TestResolveWhenPrefersTaskDue(t *testing.T) {
	sched := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	due := sched.Add(48 * time.Hour)

	n := Resolve(Claimed{Title: "t", ScheduledAt: sched, TaskDueAt: &due})
	assert.Equal(t, due, n.When)

	n = Resolve(Claimed{Title: "t", ScheduledAt: sched})
	assert.Equal(t, sched, n.When)
}

func TestComposeText(t *testing.T) {
	when := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	out := ComposeText(Notification{Subject: "Follow up", Audience: "Acme Corp", When: when, Body: "bring the quote"})
	assert.Contains(t, out, "Follow up - Acme Corp")
	assert.Contains(t, out, when.Format(time.RFC1123))
	assert.Contains(t, out, "bring the quote")

	out = ComposeText(Notification{Subject: "Follow up", When: when})
	assert.NotContains(t, out, " - ")
	assert.NotContains(t, out, "\n")
}
