// Package pool provides pooled scratch buffers for the compress codecs,
// so block compression does not allocate a worst-case destination per call.
package pool

import "sync"

const (
	// ScratchDefaultSize is the capacity of a freshly pooled scratch buffer.
	ScratchDefaultSize = 64 * 1024
	// ScratchMaxThreshold is the largest scratch buffer returned to the
	// pool; bigger ones are dropped to avoid retaining bloat.
	ScratchMaxThreshold = 4 * 1024 * 1024
)

// Scratch is a reusable byte slice wrapper handed out by the pool.
type Scratch struct {
	B []byte
}

var scratchPool = sync.Pool{
	New: func() any {
		return &Scratch{B: make([]byte, 0, ScratchDefaultSize)}
	},
}

// GetScratch retrieves a scratch buffer with length at least n.
func GetScratch(n int) *Scratch {
	s, _ := scratchPool.Get().(*Scratch)
	if cap(s.B) < n {
		s.B = make([]byte, n)
	} else {
		s.B = s.B[:n]
	}

	return s
}

// PutScratch returns a scratch buffer to the pool for reuse.
func PutScratch(s *Scratch) {
	if s == nil || cap(s.B) > ScratchMaxThreshold {
		return
	}
	s.B = s.B[:0]
	scratchPool.Put(s)
}
