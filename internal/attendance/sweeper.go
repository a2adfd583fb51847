package attendance

import (
	"context"
	"log"
	"sync/atomic"
	"time"
)

// Sweeper auto-closes stale open attendance records at shift end plus the
// grace buffer. It runs as a suture-supervised service: Serve ticks on a
// fixed interval until its context is cancelled, and a panic inside a run is
// the supervisor's problem, not the process's.
//
// Records flagged overtime or double duty are never swept; shift end is not
// the true end of work for those, so a human has to clock them out.
type Sweeper struct {
	Store    Store
	Interval time.Duration

	// Now is a test seam; nil means time.Now.
	Now func() time.Time

	running atomic.Bool
}

func NewSweeper(store Store, interval time.Duration) *Sweeper {
	return &Sweeper{Store: store, Interval: interval}
}

func (s *Sweeper) String() string { return "attendance-sweeper" }

// Serve implements suture.Service.
func (s *Sweeper) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	log.Printf("Attendance sweeper running every %s", s.Interval)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			// Reentrancy guard: if a previous run is still going, skip this
			// tick instead of stacking overlapping sweeps.
			if !s.running.CompareAndSwap(false, true) {
				log.Println("Sweep still in progress, skipping this tick")
				continue
			}
			s.RunOnce()
			s.running.Store(false)
		}
	}
}

// RunOnce performs a single sweep pass. Failures on individual records are
// logged and skipped; the next scheduled run retries them.
func (s *Sweeper) RunOnce() {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}

	candidates, err := s.Store.SweepCandidates(DateOf(now))
	if err != nil {
		log.Println("Sweep: failed to list open records: ", err)
		return
	}

	grace := time.Duration(s.Store.GraceMinutes()) * time.Minute

	closed := 0
	for _, rec := range candidates {
		shiftEnd, err := s.Store.StaffShiftEnd(rec.StaffID)
		if err != nil {
			// Staff row gone (deleted account); leave the record alone.
			continue
		}

		instant := AutoClockOutInstant(rec.AttendanceDate, shiftEnd, grace)
		if now.Before(instant) {
			continue
		}

		// Close with the computed instant, actor nil (system action). The
		// CAS in CloseIfOpen makes a concurrent manual clock-out win cleanly.
		ok, err := s.Store.CloseIfOpen(rec.ID, instant, nil, nil, "", nil)
		if err != nil {
			log.Printf("Sweep: failed to close record %s: %v", rec.ID, err)
			continue
		}
		if ok {
			closed++
		}
	}

	if closed > 0 {
		log.Printf("Sweep: auto clocked out %d record(s)", closed)
	}
}
