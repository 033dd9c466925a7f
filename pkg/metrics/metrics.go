package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "udp2amqp"

// Metrics 转发链路与 Supervisor 的 Prometheus 指标
// 所有方法对 nil 接收者安全，未启用 metrics 时直接传 nil
type Metrics struct {
	registry *prometheus.Registry

	DatagramsReceived prometheus.Counter
	BytesReceived     prometheus.Counter
	ReceiveErrors     prometheus.Counter
	PublishErrors     prometheus.Counter
	PublishDuration   prometheus.Histogram
	ConnectFailures   prometheus.Counter
	ReconnectAttempts prometheus.Counter
	Backoff           prometheus.Gauge
	Ready             prometheus.Gauge
}

// New 创建并注册指标（独立 registry，避免全局状态）
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		DatagramsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "datagrams_received_total",
			Help:      "Total UDP datagrams received",
		}),
		BytesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_received_total",
			Help:      "Total payload bytes received from UDP",
		}),
		ReceiveErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "receive_errors_total",
			Help:      "UDP receive errors",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "AMQP publish errors",
		}),
		PublishDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "publish_duration_seconds",
			Help:      "Time to publish one datagram to AMQP",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		}),
		ConnectFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connect_failures_total",
			Help:      "Failed AMQP connect attempts",
		}),
		ReconnectAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconnect_attempts_total",
			Help:      "Reconnect cycles scheduled after a transient failure",
		}),
		Backoff: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "backoff_seconds",
			Help:      "Delay applied before the latest reconnect",
		}),
		Ready: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ready",
			Help:      "1 when the bridge is connected and forwarding",
		}),
	}

	m.registry.MustRegister(
		m.DatagramsReceived,
		m.BytesReceived,
		m.ReceiveErrors,
		m.PublishErrors,
		m.PublishDuration,
		m.ConnectFailures,
		m.ReconnectAttempts,
		m.Backoff,
		m.Ready,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler 返回 /metrics HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveDatagram 记录收到的数据报
func (m *Metrics) ObserveDatagram(size int) {
	if m == nil {
		return
	}
	m.DatagramsReceived.Inc()
	m.BytesReceived.Add(float64(size))
}

// ObserveReceiveError 记录 UDP 接收错误
func (m *Metrics) ObserveReceiveError() {
	if m == nil {
		return
	}
	m.ReceiveErrors.Inc()
}

// ObservePublish 记录一次发布（成功或失败）
func (m *Metrics) ObservePublish(elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.PublishErrors.Inc()
		return
	}
	m.PublishDuration.Observe(elapsed.Seconds())
}

// ObserveConnectFailure 记录连接失败
func (m *Metrics) ObserveConnectFailure() {
	if m == nil {
		return
	}
	m.ConnectFailures.Inc()
}

// ObserveRetry 记录一次重连调度
func (m *Metrics) ObserveRetry(delay time.Duration) {
	if m == nil {
		return
	}
	m.ReconnectAttempts.Inc()
	m.Backoff.Set(delay.Seconds())
}

// SetReady 同步就绪状态
func (m *Metrics) SetReady(ready bool) {
	if m == nil {
		return
	}
	if ready {
		m.Ready.Set(1)
	} else {
		m.Ready.Set(0)
	}
}
