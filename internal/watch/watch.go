// Package watch re-runs the connectivity suite on an interval,
// maintains the per-target report store, and feeds the WebSocket
// broadcaster. This is the continuous counterpart of the one-shot
// connectivity test.
package watch

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/netbuddy/netbuddy/internal/config"
	"github.com/netbuddy/netbuddy/internal/probe"
	"github.com/netbuddy/netbuddy/internal/report"
	"github.com/netbuddy/netbuddy/internal/ws"
)

type Watcher struct {
	cfg         *config.Config
	store       *report.Store
	broadcaster *ws.Broadcaster
	pinger      probe.Pinger

	// lastStatus tracks the previously observed classification per
	// target so status transitions are logged exactly once.
	lastStatus map[string]report.Status
}

func NewWatcher(cfg *config.Config, store *report.Store, broadcaster *ws.Broadcaster, pinger probe.Pinger) *Watcher {
	return &Watcher{
		cfg:         cfg,
		store:       store,
		broadcaster: broadcaster,
		pinger:      pinger,
		lastStatus:  make(map[string]report.Status),
	}
}

func (w *Watcher) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.Watch.PollInterval.Std())
	defer ticker.Stop()

	log.Printf("Watch started with targets: %v", w.cfg.Targets)

	// Initial poll
	w.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("Watch stopped")
			return
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

// poll probes every target concurrently, then commits results to the
// store in target order. The commit and the broadcast queueing happen
// under the store lock so HTTP readers never observe states that
// WebSocket clients haven't been queued to hear about.
func (w *Watcher) poll(ctx context.Context) {
	now := time.Now()
	targets := w.cfg.Targets
	if len(targets) == 0 {
		targets = probe.DefaultTargets
	}

	results := make([]probe.Result, len(targets))
	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Add(1)
		go func(i int, target string) {
			defer wg.Done()
			results[i] = w.pinger.Ping(ctx, target)
		}(i, target)
	}
	wg.Wait()

	threshold := w.cfg.FailThreshold()
	updates := make([]*report.TargetState, 0, len(targets))
	for i, target := range targets {
		state, ok := w.store.Get(target)
		if !ok {
			state = &report.TargetState{Target: target}
		}

		errText := ""
		if results[i].Err != nil {
			errText = results[i].Err.Error()
		}
		state.RecordResult(results[i].OK, errText, now)
		updates = append(updates, state)

		status := state.Status(threshold)
		if prev, seen := w.lastStatus[target]; !seen || prev != status {
			log.Printf("[%s] status: %s (consecutive failures: %d)", target, status, state.ConsecutiveFailures)
			w.lastStatus[target] = status
		}
	}

	w.store.BatchUpdateAndNotify(updates, func() {
		w.broadcaster.QueueUpdate(updates)
	})

	summary := probe.Summarize(results)
	w.broadcaster.BroadcastSummary(summary.Passed, summary.Total, summary.Percent())
}
