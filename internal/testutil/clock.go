package testutil

import "sync"

// SampleClock hands out capture timestamps at a fixed step.
//
// Stroke fixtures built from one SampleClock share a time axis, so a
// test can lay out several strokes with known gaps between them.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SampleClock struct {
	mu   sync.Mutex
	now  int64
	step int64
}

// NewSampleClock creates a clock whose first Next() returns start.
// A step of 0 defaults to 16ms, the usual tablet sampling interval.
func NewSampleClock(start, step int64) *SampleClock {
	if step == 0 {
		step = 16
	}
	return &SampleClock{now: start - step, step: step}
}

// Next advances by one step and returns the new timestamp.
func (c *SampleClock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += c.step
	return c.now
}

// Current returns the last timestamp handed out without advancing.
func (c *SampleClock) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Skip advances the clock by ms without producing a sample, e.g. to
// leave a pen-up gap of known length between two strokes.
func (c *SampleClock) Skip(ms int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += ms
}
