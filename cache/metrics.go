package cache

import (
	"github.com/prometheus/client_golang/prometheus"
)

// StatsSource 可导出统计信息的缓存
type StatsSource interface {
	Name() string
	Stats() Stats
}

// Collector 以 Prometheus 指标导出一组缓存的统计信息，按 cache 标签区分
type Collector struct {
	sources []StatsSource

	hits      *prometheus.Desc
	misses    *prometheus.Desc
	evictions *prometheus.Desc
	expires   *prometheus.Desc
	size      *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector 创建采集器；指标名为 <namespace>_cache_*
func NewCollector(namespace string, sources ...StatsSource) *Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "cache", name), help, []string{"cache"}, nil)
	}
	return &Collector{
		sources:   sources,
		hits:      desc("hits_total", "Cache lookups that found a live entry"),
		misses:    desc("misses_total", "Cache lookups that found no live entry"),
		evictions: desc("evictions_total", "Entries removed to respect the size limit"),
		expires:   desc("expires_total", "Entries removed after idling past the TTL"),
		size:      desc("entries", "Current number of entries"),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.hits
	ch <- c.misses
	ch <- c.evictions
	ch <- c.expires
	ch <- c.size
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, src := range c.sources {
		s := src.Stats()
		name := src.Name()
		ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(s.Hits), name)
		ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(s.Misses), name)
		ch <- prometheus.MustNewConstMetric(c.evictions, prometheus.CounterValue, float64(s.Evictions), name)
		ch <- prometheus.MustNewConstMetric(c.expires, prometheus.CounterValue, float64(s.Expires), name)
		ch <- prometheus.MustNewConstMetric(c.size, prometheus.GaugeValue, float64(s.Size), name)
	}
}
