package display

import (
	"context"
	"log"
	"time"

	"weather-panel/internal/fetcher"
	"weather-panel/internal/model"
)

// UpdateHook is notified after each committed combined update.
type UpdateHook func(current model.CurrentConditions, forecast []model.ForecastEntry, lastUpdate time.Time)

// Loop drives the fetcher on a fixed tick and re-renders when a new
// combined update has been committed.
type Loop struct {
	fetcher     *fetcher.Fetcher
	console     *Console
	refresh     time.Duration
	onUpdate    UpdateHook
	lastRefresh time.Time
}

func NewLoop(f *fetcher.Fetcher, console *Console, refresh time.Duration, onUpdate UpdateHook) *Loop {
	if refresh <= 0 {
		refresh = 5 * time.Second
	}
	return &Loop{
		fetcher:  f,
		console:  console,
		refresh:  refresh,
		onUpdate: onUpdate,
	}
}

// Run ticks until the context is canceled.
func (l *Loop) Run(ctx context.Context) {
	log.Printf("Starting display loop with refresh %s", l.refresh)

	l.tick(ctx)

	ticker := time.NewTicker(l.refresh)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Display loop stopped")
			return
		case <-ticker.C:
			l.tick(ctx)
		}
	}
}

func (l *Loop) tick(ctx context.Context) {
	l.fetcher.UpdateData(ctx)

	lastUpdate := l.fetcher.LastUpdate()
	if !lastUpdate.After(l.lastRefresh) {
		return
	}
	l.lastRefresh = lastUpdate

	l.console.Print()
	if l.onUpdate != nil {
		current, ok := l.fetcher.Current()
		if ok {
			l.onUpdate(current, l.fetcher.Forecast(), lastUpdate)
		}
	}
	log.Println("Display data updated.")
}
