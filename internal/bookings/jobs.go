package bookings

import (
	"context"
	"time"

	"festbook/pkg/logger"
)

// Janitor disposes abandoned booking sessions in the background
type Janitor struct {
	service  Service
	interval time.Duration
	log      *logger.Logger
	done     chan struct{}
}

func NewJanitor(service Service, interval time.Duration, log *logger.Logger) *Janitor {
	if interval <= 0 {
		interval = time.Minute
	}
	if log == nil {
		log = logger.GetDefault()
	}
	return &Janitor{
		service:  service,
		interval: interval,
		log:      log,
		done:     make(chan struct{}),
	}
}

// Start runs the sweep loop until Stop or ctx ends
func (j *Janitor) Start(ctx context.Context) {
	go j.run(ctx)
	j.log.InfoWithContext(ctx, "booking session janitor started", map[string]interface{}{
		"interval": j.interval.String(),
	})
}

func (j *Janitor) Stop() {
	close(j.done)
}

func (j *Janitor) run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := j.service.SweepIdle(ctx); n > 0 {
				j.log.InfoWithContext(ctx, "expired booking sessions disposed", map[string]interface{}{"count": n})
			}
		case <-j.done:
			return
		case <-ctx.Done():
			return
		}
	}
}
