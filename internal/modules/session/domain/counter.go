package domain

// Counter accumulates a progress measure that resets at milestones, such as
// experience within a level.
type Counter struct {
	Last    int64
	LastMax int64
	Total   int64
	Seen    bool
}

// RolloverDelta is the progress between two observations. A drop in value
// means the old ceiling was reached and the counter restarted. The result
// is never negative.
func RolloverDelta(old, oldMax, value int64) int64 {
	var delta int64
	if value >= old {
		delta = value - old
	} else {
		delta = (oldMax - old) + value
	}
	if delta < 0 {
		return 0
	}
	return delta
}

// Observe records a reading and returns the delta added to Total. The first
// reading only sets the baseline.
func (c *Counter) Observe(value, ceiling int64) int64 {
	if !c.Seen {
		c.Last, c.LastMax, c.Seen = value, ceiling, true
		return 0
	}
	delta := RolloverDelta(c.Last, c.LastMax, value)
	c.Total += delta
	c.Last = value
	c.LastMax = ceiling
	return delta
}
