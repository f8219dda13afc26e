package maintenance

import (
	"time"

	"github.com/L33hy/cse340/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Pruner removes old account activity rows on a cron schedule so the audit
// trail does not grow without bound.
type Pruner struct {
	activitySvc services.ActivityServiceProvider
	schedule    cron.Schedule
	retention   time.Duration
	done        chan bool
}

// NewPruner creates a pruner. expr is a standard five-field cron expression;
// retention is how much history to keep.
func NewPruner(activitySvc services.ActivityServiceProvider, expr string, retention time.Duration) (*Pruner, error) {
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, err
	}
	return &Pruner{
		activitySvc: activitySvc,
		schedule:    schedule,
		retention:   retention,
		done:        make(chan bool),
	}, nil
}

// Run starts the pruner's loop. It blocks until Stop is called.
func (p *Pruner) Run() {
	log.Info().Msg("Starting activity pruner")
	for {
		next := p.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-p.done:
			timer.Stop()
			log.Info().Msg("Stopping activity pruner")
			return
		case <-timer.C:
			p.prune()
		}
	}
}

// Stop halts the pruner.
func (p *Pruner) Stop() {
	p.done <- true
}

func (p *Pruner) prune() {
	removed, err := p.activitySvc.PruneOlderThan(p.retention)
	if err != nil {
		log.Error().Err(err).Msg("Failed to prune account activity")
		return
	}
	if removed > 0 {
		log.Info().Int64("removed", removed).Msg("Pruned old account activity")
	}
}
