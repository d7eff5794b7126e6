package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/gofiber/fiber/v2/log"

	"github.com/i474232898/weather-cache-api/internal/store"
	"github.com/i474232898/weather-cache-api/internal/weather"
)

// Lookuper is the lookup operation used to warm the cache.
type Lookuper interface {
	Lookup(ctx context.Context, city string) (weather.Record, bool, error)
}

// Scheduler periodically looks up configured cities so their cache entries
// are populated, and purges expired entries from backends that keep them.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   Lookuper
	cities    []string
	interval  time.Duration

	purger        store.Purger
	purgeInterval time.Duration
}

// New creates a new Scheduler.
func New(cities []string, interval time.Duration, service Lookuper) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		service:   service,
		cities:    cities,
		interval:  interval,
	}
}

// WithPurger registers a periodic purge of expired entries.
func (s *Scheduler) WithPurger(p store.Purger, every time.Duration) *Scheduler {
	s.purger = p
	s.purgeInterval = every
	return s
}

// Start schedules the jobs and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	scheduled := false

	if len(s.cities) == 0 {
		log.Info("scheduler: no cities configured; cache warming disabled")
	} else {
		interval := s.interval
		if interval <= 0 {
			interval = 6 * time.Hour
		}
		if _, err := s.scheduler.Every(interval).Do(s.warm); err != nil {
			return err
		}
		scheduled = true
	}

	if s.purger != nil && s.purgeInterval > 0 {
		if _, err := s.scheduler.Every(s.purgeInterval).Do(s.purge); err != nil {
			return err
		}
		scheduled = true
	}

	if scheduled {
		s.scheduler.StartAsync()
	}
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// warm looks up every configured city concurrently. Lookup only calls the
// provider for cities missing from the cache.
func (s *Scheduler) warm() {
	log.Debug("scheduler: running cache warm job")

	var wg sync.WaitGroup
	for _, city := range s.cities {
		wg.Add(1)
		go func(city string) {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			_, found, err := s.service.Lookup(ctx, city)
			switch {
			case err != nil:
				log.Warnw("scheduler: warm lookup failed", "city", city, "error", err)
			case !found:
				log.Warnw("scheduler: provider has no data for warm city", "city", city)
			}
		}(city)
	}
	wg.Wait()
	log.Debug("scheduler: completed cache warm job")
}

func (s *Scheduler) purge() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := s.purger.PurgeExpired(ctx)
	if err != nil {
		log.Warnw("scheduler: purge failed", "error", err)
		return
	}
	if n > 0 {
		log.Infow("scheduler: purged expired cache entries", "count", n)
	}
}
