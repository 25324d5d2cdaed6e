package gate

import "sync/atomic"

// atomicCounter is a small int counter safe for concurrent add/load, used
// for the gate's queue-depth gauge.
type atomicCounter struct {
	v atomic.Int64
}

func (c *atomicCounter) add(delta int) {
	c.v.Add(int64(delta))
}

func (c *atomicCounter) load() int {
	return int(c.v.Load())
}
