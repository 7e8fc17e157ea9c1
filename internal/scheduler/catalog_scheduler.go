package scheduler

import (
	"context"
	"time"

	"github.com/ikkim/foodgram-backend/internal/app/service"
	"github.com/ikkim/foodgram-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

const refreshTimeout = time.Minute

// CatalogScheduler periodically reloads the tag and ingredient caches.
type CatalogScheduler struct {
	cron       *cron.Cron
	spec       string
	refreshers []service.CatalogRefresher
}

func NewCatalogScheduler(spec string, refreshers ...service.CatalogRefresher) *CatalogScheduler {
	return &CatalogScheduler{
		cron:       cron.New(),
		spec:       spec,
		refreshers: refreshers,
	}
}

// RefreshNow reloads every catalog once. A failing refresher does not stop the others.
func (s *CatalogScheduler) RefreshNow(ctx context.Context) error {
	var firstErr error
	for _, refresher := range s.refreshers {
		if err := refresher.Refresh(ctx); err != nil {
			logger.Error("Catalog refresh failed", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Start warms the caches and schedules the periodic refresh.
func (s *CatalogScheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		logger.Info("Starting scheduled catalog refresh")

		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		if err := s.RefreshNow(ctx); err != nil {
			return
		}

		logger.Info("Scheduled catalog refresh finished")
	})
	if err != nil {
		logger.Error("Failed to add cron job for catalog refresh", err, map[string]interface{}{
			"spec": s.spec,
		})
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()
	if err := s.RefreshNow(ctx); err != nil {
		logger.Warn("Initial catalog cache warm-up failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	s.cron.Start()
	logger.Info("Catalog scheduler started", map[string]interface{}{
		"spec": s.spec,
	})
	return nil
}

// Stop waits for a running refresh to finish.
func (s *CatalogScheduler) Stop() {
	logger.Info("Stopping catalog scheduler...")
	<-s.cron.Stop().Done()
	logger.Info("Catalog scheduler stopped")
}
