// File: internal/session/idgen.go
// Author: momentics <momentics@gmail.com>
//
// Process-wide monotonic session id counter (spec §3 "id"). Grounded on the
// teacher's internal/session/store.go sharded manager design, but replaced
// with a single atomic counter: the spec requires strict, never-reused
// ordering, which sharding (the teacher's throughput optimization) would
// undermine.
package session

import "sync/atomic"

var nextID uint64

// NextID returns the next monotonically increasing session id, starting
// at 1.
func NextID() uint64 {
	return atomic.AddUint64(&nextID, 1)
}
