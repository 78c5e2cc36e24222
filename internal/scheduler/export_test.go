package scheduler

import (
	"time"

	"github.com/antigravity/skane-transit/internal/timetable"
)

// NewWithIndexForTest builds a ready Scheduler directly from a pre-built
// index, bypassing the feed client and the network calls a real static
// refresh makes. It lets other packages' tests exercise query-path code
// against a known fixture index without standing up a fake upstream feed.
func NewWithIndexForTest(idx *timetable.Index, serviceDate time.Time, loc *time.Location) *Scheduler {
	s := &Scheduler{loc: loc}
	s.cur = &snapshot{idx: idx, serviceDate: serviceDate}
	s.ready.Store(true)
	return s
}
