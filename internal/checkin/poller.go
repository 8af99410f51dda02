package checkin

import (
	"context"
	"log"
	"time"

	"github.com/sharmila-j/church-checkin-gateway/utils"
)

// ============================
// ⏱️ Background pollers
// Two cadences drive reconciliation: a fast realtime loop for the
// selected event's attendance snapshot and a slow loop for the event
// list. Both install whole replacements; a tick that loses the race
// with a newer write simply gets overwritten by the next one.

// Poller runs the two refresh loops against one engine.
type Poller struct {
	engine            *Engine
	realtimeInterval  time.Duration
	eventListInterval time.Duration
}

func NewPoller(engine *Engine, realtimeInterval, eventListInterval time.Duration) *Poller {
	if realtimeInterval <= 0 {
		realtimeInterval = 5 * time.Second
	}
	if eventListInterval <= 0 {
		eventListInterval = 30 * time.Second
	}
	return &Poller{
		engine:            engine,
		realtimeInterval:  realtimeInterval,
		eventListInterval: eventListInterval,
	}
}

// Start launches both loops. They stop when ctx is cancelled.
func (p *Poller) Start(ctx context.Context) {
	go p.runRealtime(ctx)
	go p.runEventList(ctx)
	log.Printf("✅ Pollers started (realtime %s, events %s)", p.realtimeInterval, p.eventListInterval)
}

// runRealtime polls the selected event's attendance snapshot. With no
// selection the tick is skipped entirely, so an idle station generates
// no upstream traffic.
func (p *Poller) runRealtime(ctx context.Context) {
	ticker := time.NewTicker(p.realtimeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if p.engine.SelectedEventID() == "" {
				utils.PollTicksTotal.WithLabelValues("realtime", "suspended").Inc()
				continue
			}
			if err := p.engine.RefreshRealtime(ctx); err != nil {
				utils.PollTicksTotal.WithLabelValues("realtime", "error").Inc()
				log.Printf("⚠️ Realtime poll failed: %v", err)
				continue
			}
			utils.PollTicksTotal.WithLabelValues("realtime", "ok").Inc()
		}
	}
}

// runEventList keeps the joined event list current on the slow cadence.
func (p *Poller) runEventList(ctx context.Context) {
	ticker := time.NewTicker(p.eventListInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.engine.RefreshEvents(ctx); err != nil {
				utils.PollTicksTotal.WithLabelValues("events", "error").Inc()
				log.Printf("⚠️ Event list poll failed: %v", err)
				continue
			}
			utils.PollTicksTotal.WithLabelValues("events", "ok").Inc()
		}
	}
}
