package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFake_SetAndAdvance(t *testing.T) {
	start := time.Date(2026, 2, 7, 9, 0, 0, 0, time.UTC)
	c := NewFake(start)
	assert.Equal(t, start, c.Now())

	c.Advance(90 * time.Minute)
	assert.Equal(t, start.Add(90*time.Minute), c.Now())

	later := start.AddDate(0, 0, 3)
	c.Set(later)
	assert.Equal(t, later, c.Now())
}

func TestStartOfDay(t *testing.T) {
	ts := time.Date(2026, 2, 7, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 2, 7, 0, 0, 0, 0, time.UTC), StartOfDay(ts))
}

func TestSameDay(t *testing.T) {
	a := time.Date(2026, 2, 7, 0, 0, 0, 0, time.UTC)
	b := time.Date(2026, 2, 7, 23, 59, 0, 0, time.UTC)
	c := time.Date(2026, 2, 8, 0, 0, 0, 0, time.UTC)
	assert.True(t, SameDay(a, b, time.UTC))
	assert.False(t, SameDay(b, c, time.UTC))
}
