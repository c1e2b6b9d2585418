package query

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"dbmap/errors"
)

// Metrics 执行器的 Prometheus 指标：按操作与结果计数，按操作统计耗时
type Metrics struct {
	commands *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics 创建指标；注册由调用方通过 Register 完成
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commands_total",
				Help:      "Executed commands by operation and result",
			},
			[]string{"operation", "result"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "command_duration_seconds",
				Help:      "Command execution latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// Register 注册到 reg
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.commands, m.duration} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// observe result 为 ok 或小写的错误码
func (m *Metrics) observe(operation string, elapsed time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = strings.ToLower(string(errors.GetErrorCode(err)))
	}
	m.commands.WithLabelValues(operation, result).Inc()
	m.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}
