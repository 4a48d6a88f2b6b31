package prober

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/vikash-mehta62/radiology-final-09-sub003/internal/domain/repository"
)

// DefaultWatchInterval applies when a Watcher has no positive Interval.
const DefaultWatchInterval = time.Minute

// Watcher repeats checks on a fixed interval until its context is cancelled.
type Watcher struct {
	Out      io.Writer
	Interval time.Duration
	Probers  []*Prober
}

// Run performs an immediate round, then one round per tick. It returns the number of rounds run.
func (w *Watcher) Run(ctx context.Context) int {
	interval := w.Interval
	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	log.Printf("[Watch] 👀 Checking %d target(s) every %s", len(w.Probers), interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	rounds := 0
	for {
		w.round(ctx)
		rounds++

		if ctx.Err() != nil {
			log.Printf("[Watch] 🛑 Stopped after %d round(s)", rounds)
			return rounds
		}
		select {
		case <-ctx.Done():
			log.Printf("[Watch] 🛑 Stopped after %d round(s)", rounds)
			return rounds
		case <-ticker.C:
		}
	}
}

func (w *Watcher) round(ctx context.Context) {
	for _, p := range w.Probers {
		if ctx.Err() != nil {
			return
		}
		o := p.Check(ctx)
		mark := "✅"
		switch {
		case o.Succeeded():
		case o.Kind == repository.KindSkipped:
			mark = "⏸️ "
		default:
			mark = "❌"
		}
		fmt.Fprintf(w.Out, "%s %s %-10s %s (%s)\n",
			o.CheckedAt.Format(time.RFC3339), mark, o.Target, o.Message(), o.Latency.Round(time.Millisecond))
	}
}
