package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFrameMetrics(t *testing.T) {
	m := NewFrameMetrics()

	reported := false
	for i := 0; i < 60; i++ {
		if m.Update(20 * time.Millisecond) {
			reported = true
		}
	}

	assert.True(t, reported)
	assert.Equal(t, float64(51), m.FPS())
	assert.InDelta(t, 20.0, m.FrameTime(), 1e-9)
}

func TestClock(t *testing.T) {
	base := time.Unix(100, 0)
	now := base
	c := &Clock{now: func() time.Time { return now }}

	c.Update()
	assert.Zero(t, c.Elapsed())

	c.Start()
	now = base.Add(250 * time.Millisecond)
	c.Update()
	assert.Equal(t, 250*time.Millisecond, c.Elapsed())

	c.Stop()
	now = base.Add(time.Second)
	c.Update()
	assert.Equal(t, 250*time.Millisecond, c.Elapsed())
}
