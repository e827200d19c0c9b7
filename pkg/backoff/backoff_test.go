package backoff

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExponentialJitterBounds(t *testing.T) {
	base := time.Minute
	max := time.Hour

	for attempt := 1; attempt <= 10; attempt++ {
		d := ExponentialJitter(base, max, attempt)

		expected := base << (attempt - 1)
		if expected > max {
			expected = max
		}
		lo := time.Duration(float64(expected) * 0.8)
		hi := time.Duration(float64(expected) * 1.2)

		assert.GreaterOrEqual(t, d, lo, "attempt %d", attempt)
		assert.LessOrEqual(t, d, hi, "attempt %d", attempt)
	}
}

func TestExponentialJitterNonPositiveAttempt(t *testing.T) {
	d := ExponentialJitter(time.Second, time.Minute, 0)
	assert.GreaterOrEqual(t, d, 800*time.Millisecond)
	assert.LessOrEqual(t, d, 1200*time.Millisecond)
}
