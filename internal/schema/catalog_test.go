package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCapabilities(t *testing.T) {
	caps := CapabilitiesFor(map[string][]string{
		"reminders": {"id", "tenant_id", "status"},
		"tasks":     {"id", "title"},
	})

	assert.True(t, caps.TableExists("reminders"))
	assert.False(t, caps.TableExists("clients"))

	assert.True(t, caps.Has("reminders", "status"))
	assert.False(t, caps.Has("reminders", "claimed_by"))
	assert.False(t, caps.Has("clients", "phone"))

	assert.ElementsMatch(t, []string{"id", "title"}, caps.Columns("tasks"))
	assert.Nil(t, caps.Columns("clients"))
}

func TestEmptyCapabilities(t *testing.T) {
	var caps Capabilities

	assert.False(t, caps.TableExists("reminders"))
	assert.False(t, caps.Has("reminders", "id"))
	assert.Nil(t, caps.Columns("reminders"))
}
