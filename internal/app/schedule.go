package app

import (
	"context"
	"sort"
	"time"
)

// scheduleDaily fires fn at the given hours (minute 0) in the app timezone.
func (a *App) scheduleDaily(ctx context.Context, hours []int, fn func()) {
	for {
		next := nextDailyFire(time.Now().In(a.loc), hours)
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			fn()
		}
	}
}

// scheduleEvery fires fn on wall-clock interval boundaries (every hour at
// :00 for a 60-minute interval).
func (a *App) scheduleEvery(ctx context.Context, every time.Duration, fn func()) {
	for {
		next := nextTick(time.Now().In(a.loc), every)
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			fn()
		}
	}
}

// nextDailyFire returns the earliest fire time strictly after now at one of
// the given hours today, or the first hour tomorrow.
func nextDailyFire(now time.Time, hours []int) time.Time {
	if len(hours) == 0 {
		return now.AddDate(0, 0, 1)
	}
	sorted := append([]int(nil), hours...)
	sort.Ints(sorted)

	for _, h := range sorted {
		fire := time.Date(now.Year(), now.Month(), now.Day(), h, 0, 0, 0, now.Location())
		if fire.After(now) {
			return fire
		}
	}
	d := now.AddDate(0, 0, 1)
	return time.Date(d.Year(), d.Month(), d.Day(), sorted[0], 0, 0, 0, now.Location())
}

func nextTick(now time.Time, every time.Duration) time.Time {
	return now.Truncate(every).Add(every)
}
