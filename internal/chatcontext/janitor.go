package chatcontext

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Janitor периодически чистит истории неактивных пользователей.
type Janitor struct {
	store    Store
	ttl      time.Duration
	interval time.Duration
	log      *zap.SugaredLogger
	now      func() time.Time
	cron     *cron.Cron
}

func NewJanitor(store Store, ttl, interval time.Duration, log *zap.SugaredLogger) *Janitor {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Janitor{
		store:    store,
		ttl:      ttl,
		interval: interval,
		log:      log,
		now:      time.Now,
	}
}

// Sweep — один проход очистки
func (j *Janitor) Sweep(ctx context.Context) (int, error) {
	n, err := j.store.EvictIdle(ctx, j.now().Add(-j.ttl))
	if err != nil {
		j.log.Errorw("[janitor] evict idle failed", "error", err)
		return 0, err
	}
	if n > 0 {
		j.log.Infow("[janitor] evicted idle contexts", "users", n, "ttl", j.ttl.String())
	}
	return n, nil
}

// Start запускает cron; при ttl <= 0 очистка выключена.
func (j *Janitor) Start() error {
	if j.ttl <= 0 {
		j.log.Infow("[janitor] disabled")
		return nil
	}
	if j.interval <= 0 {
		j.interval = j.ttl
	}

	c := cron.New()
	every := fmt.Sprintf("@every %s", j.interval)
	if _, err := c.AddFunc(every, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_, _ = j.Sweep(ctx)
	}); err != nil {
		return fmt.Errorf("schedule janitor %q: %w", every, err)
	}

	c.Start()
	j.cron = c
	j.log.Infow("[janitor] started", "every", j.interval.String(), "ttl", j.ttl.String())
	return nil
}

func (j *Janitor) Stop() {
	if j.cron == nil {
		return
	}
	<-j.cron.Stop().Done()
}
