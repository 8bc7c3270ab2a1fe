package pebbledb

import (
	"errors"

	"github.com/cockroachdb/pebble"
	"github.com/prometheus/client_golang/prometheus"
)

// RegisterMetrics exports disk and compaction gauges for b.
func (b *Backend) RegisterMetrics(reg prometheus.Registerer) error {
	gauges := []prometheus.Collector{
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "itte_pebble_disk_usage_bytes",
			Help: "Disk space used by the pebble store.",
		}, b.metric(func(m *pebble.Metrics) float64 { return float64(m.DiskSpaceUsage()) })),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "itte_pebble_memtable_bytes",
			Help: "Bytes held in pebble memtables.",
		}, b.metric(func(m *pebble.Metrics) float64 { return float64(m.MemTable.Size) })),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "itte_pebble_compactions",
			Help: "Number of pebble compactions since open.",
		}, b.metric(func(m *pebble.Metrics) float64 { return float64(m.Compact.Count) })),
	}
	for _, g := range gauges {
		if err := reg.Register(g); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	return nil
}

func (b *Backend) metric(read func(*pebble.Metrics) float64) func() float64 {
	return func() float64 {
		b.mu.RLock()
		defer b.mu.RUnlock()
		if b.db == nil {
			return 0
		}
		return read(b.db.Metrics())
	}
}
