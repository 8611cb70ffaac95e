package conversation

import (
	"hash/fnv"
	"sync"
)

const lockStripes = 64

// stripedLocks serializes work per session id inside one process without
// keeping a mutex per session alive forever.
type stripedLocks struct {
	stripes [lockStripes]sync.Mutex
}

func (l *stripedLocks) lock(sessionID string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	m := &l.stripes[h.Sum32()%lockStripes]
	m.Lock()
	return m.Unlock
}
