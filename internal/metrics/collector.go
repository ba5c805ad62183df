package metrics

import (
	"context"
	"time"

	"github.com/rolinkstone/new-talawang-sub001/internal/model"
	"gorm.io/gorm"
)

// Collector periodically refreshes gauge metrics from the database
type Collector struct {
	db       *gorm.DB
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewCollector creates a collector
func NewCollector(db *gorm.DB, interval time.Duration) *Collector {
	ctx, cancel := context.WithCancel(context.Background())
	return &Collector{
		db:       db,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Start starts the collection loop
func (c *Collector) Start() {
	go c.collect()
}

// Stop stops the collection loop and waits for it to exit
func (c *Collector) Stop() {
	c.cancel()
	<-c.done
}

// collect refreshes the gauges on every tick
func (c *Collector) collect() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	defer close(c.done)

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			_ = UpdateDatabaseConnections(c.db)
			c.updateStatusGauges()
		}
	}
}

// updateStatusGauges refreshes kegiatan_by_status from a grouped count
func (c *Collector) updateStatusGauges() {
	type row struct {
		Status string
		Total  int64
	}
	var rows []row
	if err := c.db.Model(&model.KegiatanModel{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Find(&rows).Error; err != nil {
		return
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Total
	}
	for _, status := range model.AllStatuses() {
		UpdateKegiatanByStatus(string(status), float64(counts[string(status)]))
	}
}
