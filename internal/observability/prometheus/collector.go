// Package prometheus exports Executor pool statistics as Prometheus metrics.
package prometheus

import (
	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/phrazzld/taskpool/internal/task"
)

// PoolInfoProvider provides current pool statistics snapshots.
type PoolInfoProvider interface {
	PoolInfo() task.PoolInfo
}

// Collector adapts PoolInfo snapshots to Prometheus metrics. Each scrape
// takes one consistent snapshot, so the gauges and counters in a single
// scrape agree with each other.
type Collector struct {
	provider PoolInfoProvider

	active    *prom.Desc
	queued    *prom.Desc
	workers   *prom.Desc
	submitted *prom.Desc
	completed *prom.Desc
	failed    *prom.Desc
	cancelled *prom.Desc
}

// NewCollector creates a collector reading snapshots from provider.
func NewCollector(namespace string, provider PoolInfoProvider) *Collector {
	if namespace == "" {
		namespace = "taskpool"
	}
	return &Collector{
		provider: provider,
		active: prom.NewDesc(prom.BuildFQName(namespace, "", "active_tasks"),
			"Number of tasks currently running.", nil, nil),
		queued: prom.NewDesc(prom.BuildFQName(namespace, "", "queued_tasks"),
			"Number of tasks waiting for a free worker.", nil, nil),
		workers: prom.NewDesc(prom.BuildFQName(namespace, "", "max_workers"),
			"Configured worker count.", nil, nil),
		submitted: prom.NewDesc(prom.BuildFQName(namespace, "", "submitted_total"),
			"Total number of submitted tasks.", nil, nil),
		completed: prom.NewDesc(prom.BuildFQName(namespace, "", "completed_total"),
			"Total number of completed tasks.", nil, nil),
		failed: prom.NewDesc(prom.BuildFQName(namespace, "", "failed_total"),
			"Total number of failed tasks.", nil, nil),
		cancelled: prom.NewDesc(prom.BuildFQName(namespace, "", "cancelled_total"),
			"Total number of cancelled tasks.", nil, nil),
	}
}

// Register creates a collector and registers it with reg. A nil reg uses the
// default registerer.
func Register(namespace string, reg prom.Registerer, provider PoolInfoProvider) (*Collector, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	c := NewCollector(namespace, provider)
	if err := reg.Register(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Describe implements prom.Collector.
func (c *Collector) Describe(ch chan<- *prom.Desc) {
	ch <- c.active
	ch <- c.queued
	ch <- c.workers
	ch <- c.submitted
	ch <- c.completed
	ch <- c.failed
	ch <- c.cancelled
}

// Collect implements prom.Collector.
func (c *Collector) Collect(ch chan<- prom.Metric) {
	info := c.provider.PoolInfo()
	ch <- prom.MustNewConstMetric(c.active, prom.GaugeValue, float64(info.ActiveCount))
	ch <- prom.MustNewConstMetric(c.queued, prom.GaugeValue, float64(info.QueuedCount))
	ch <- prom.MustNewConstMetric(c.workers, prom.GaugeValue, float64(info.MaxWorkers))
	ch <- prom.MustNewConstMetric(c.submitted, prom.CounterValue, float64(info.SubmittedTotal))
	ch <- prom.MustNewConstMetric(c.completed, prom.CounterValue, float64(info.CompletedTotal))
	ch <- prom.MustNewConstMetric(c.failed, prom.CounterValue, float64(info.FailedTotal))
	ch <- prom.MustNewConstMetric(c.cancelled, prom.CounterValue, float64(info.CancelledTotal))
}
