package scheduler

import (
	"context"
	"log"
	"time"
)

// Start runs the materializer once per day at the given wall-clock hour,
// blocking until ctx is cancelled. The 24h spacing keeps runs from ever
// overlapping; a failed run is simply retried by the next one.
func Start(ctx context.Context, m *Materializer, runHour int) {
	if runHour < 0 || runHour > 23 {
		runHour = 0
	}

	for {
		next := nextRunAt(time.Now(), runHour)
		log.Printf("materializer scheduled for %s", next.Format(time.RFC3339))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Println("materializer scheduler stopped")
			return
		case now := <-timer.C:
			if _, err := m.Run(ctx, now); err != nil {
				log.Printf("materializer run failed: %v", err)
			}
		}
	}
}

// nextRunAt returns the next occurrence of runHour strictly after now.
func nextRunAt(now time.Time, runHour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), runHour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
