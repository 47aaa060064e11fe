package worker

import (
    "context"
    "log"
    "time"
)

// HoldReleaser releases provisional bookings whose hold window has
// passed and reports how many it freed.
type HoldReleaser interface {
    ReleaseExpired(ctx context.Context) (int, error)
}

// ExpirySweeper periodically releases expired provisional bookings so
// abandoned seats return to the pool even when nobody requests the
// showing again.  Booking requests also expire holds lazily; the
// sweeper is the safety net for idle showings.
type ExpirySweeper struct {
    releaser HoldReleaser
    interval time.Duration
    stopCh   chan struct{}
    doneCh   chan struct{}
}

// NewExpirySweeper constructs a sweeper that runs every interval.  A
// non-positive interval falls back to one minute.
func NewExpirySweeper(releaser HoldReleaser, interval time.Duration) *ExpirySweeper {
    if releaser == nil {
        panic("nil releaser passed to NewExpirySweeper")
    }
    if interval <= 0 {
        interval = time.Minute
    }
    return &ExpirySweeper{
        releaser: releaser,
        interval: interval,
        stopCh:   make(chan struct{}),
        doneCh:   make(chan struct{}),
    }
}

// Start launches the sweep loop in its own goroutine.  One sweep runs
// immediately so a restart does not wait a full interval to clear
// holds that expired while the process was down.
func (s *ExpirySweeper) Start() {
    go s.run()
}

// Stop signals the loop to exit and blocks until the in-flight sweep,
// if any, has finished.
func (s *ExpirySweeper) Stop() {
    close(s.stopCh)
    <-s.doneCh
}

func (s *ExpirySweeper) run() {
    defer close(s.doneCh)
    ticker := time.NewTicker(s.interval)
    defer ticker.Stop()

    s.sweep()
    for {
        select {
        case <-s.stopCh:
            return
        case <-ticker.C:
            s.sweep()
        }
    }
}

// sweep releases expired holds once.  Each sweep is bounded so a slow
// database cannot wedge the loop.
func (s *ExpirySweeper) sweep() {
    ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
    defer cancel()

    n, err := s.releaser.ReleaseExpired(ctx)
    if err != nil {
        log.Printf("expiry sweep failed: %v", err)
        return
    }
    if n > 0 {
        log.Printf("expiry sweep released %d expired booking(s)", n)
    }
}
