package collector

import (
	"context"
	"log"
	"sync"
	"time"

	"skycast/internal/forecaster"
	"skycast/internal/mqtt"
	"skycast/internal/storage"
)

// Collector periodically runs a forecast lookup, stores a snapshot, and
// publishes the result to MQTT.
type Collector struct {
	forecaster *forecaster.Forecaster
	db         *storage.Database
	publisher  *mqtt.Publisher
	interval   time.Duration
	enabled    bool

	mu           sync.RWMutex
	latestResult *forecaster.Result
	isCollecting bool
}

type CollectorConfig struct {
	Forecaster *forecaster.Forecaster
	Database   *storage.Database
	Publisher  *mqtt.Publisher
	Interval   time.Duration
	Enabled    bool
}

func NewCollector(cfg CollectorConfig) *Collector {
	return &Collector{
		forecaster: cfg.Forecaster,
		db:         cfg.Database,
		publisher:  cfg.Publisher,
		interval:   cfg.Interval,
		enabled:    cfg.Enabled,
	}
}

func (c *Collector) Start(ctx context.Context) error {
	if !c.enabled {
		log.Println("Collector is disabled")
		return nil
	}

	c.mu.Lock()
	c.isCollecting = true
	c.mu.Unlock()

	log.Printf("Starting collector with interval %s", c.interval)

	// Initial collection
	c.collect(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Collector stopped")
			c.mu.Lock()
			c.isCollecting = false
			c.mu.Unlock()
			return nil
		case <-ticker.C:
			c.collect(ctx)
		}
	}
}

func (c *Collector) collect(ctx context.Context) {
	fetchCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	result, err := c.forecaster.Lookup(fetchCtx, 0)
	if err != nil {
		log.Printf("Error collecting forecast: %v", err)
		return
	}

	c.mu.Lock()
	c.latestResult = result
	c.mu.Unlock()

	if c.db != nil {
		if err := c.db.SaveSnapshot(result); err != nil {
			log.Printf("Error saving snapshot: %v", err)
		}
	}

	if c.publisher != nil {
		if err := c.publisher.Publish(result); err != nil {
			log.Printf("Error publishing to MQTT: %v", err)
		}
	}

	log.Printf("Collected: sunset=%d astro=%d milkyway=%d avg_cloud=%.0f%% moon=%s",
		result.Ratings.SunsetRating, result.Ratings.AstroRating,
		result.Ratings.MilkyWayRating, result.AvgTotalCloud,
		result.Ratings.MoonInterference)
}

func (c *Collector) GetLatestResult() *forecaster.Result {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.latestResult
}

func (c *Collector) IsCollecting() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isCollecting
}

// CollectOnce runs a single lookup outside the periodic loop, for the CLI.
func (c *Collector) CollectOnce(ctx context.Context) (*forecaster.Result, error) {
	result, err := c.forecaster.Lookup(ctx, 0)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.latestResult = result
	c.mu.Unlock()

	return result, nil
}

func (c *Collector) Stop() {
	if c.publisher != nil {
		c.publisher.Close()
	}
	if c.db != nil {
		c.db.Close()
	}
}
