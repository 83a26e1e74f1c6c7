// Package metrics 前台业务与 HTTP 的 Prometheus 指标
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultNamespace = "frontdesk"

// Metrics 指标集合，nil 接收者上的记录方法为空操作
type Metrics struct {
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	cacheHitsTotal    *prometheus.CounterVec
	cacheMissesTotal  *prometheus.CounterVec
	mqttMessagesTotal *prometheus.CounterVec

	stayTransitions   *prometheus.CounterVec
	paymentsTotal     *prometheus.CounterVec
	paymentsAmount    *prometheus.CounterVec
	roomStatusChanges *prometheus.CounterVec
	outboxDispatched  *prometheus.CounterVec
	bookingConflicts  prometheus.Counter
	occupiedRooms     prometheus.Gauge
}

var (
	defaultMetrics *Metrics
	initOnce       sync.Once
)

// Init 注册到默认注册表，只有第一次调用的 namespace 生效
func Init(namespace string) *Metrics {
	initOnce.Do(func() {
		defaultMetrics = New(namespace, prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

// GetMetrics 默认指标集合
func GetMetrics() *Metrics {
	return Init("")
}

// New 注册到指定注册表
func New(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = defaultNamespace
	}
	f := promauto.With(reg)
	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		return f.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help}, labels)
	}
	gauge := func(name, help string) prometheus.Gauge {
		return f.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help})
	}

	return &Metrics{
		httpRequestsTotal: counter("http_requests_total", "HTTP requests by route and status", "method", "route", "status"),
		httpRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2.5, 9),
		}, []string{"method", "route"}),
		httpRequestsInFlight: gauge("http_requests_in_flight", "HTTP requests being served"),

		cacheHitsTotal:    counter("cache_hits_total", "Redis cache hits", "cache"),
		cacheMissesTotal:  counter("cache_misses_total", "Redis cache misses", "cache"),
		mqttMessagesTotal: counter("mqtt_messages_total", "MQTT messages by topic", "topic", "direction"),

		stayTransitions:   counter("stay_transitions_total", "Stay lifecycle transitions", "transition"),
		paymentsTotal:     counter("payments_total", "Registered payments", "type"),
		paymentsAmount:    counter("payments_amount_total", "Sum of registered payment amounts", "type"),
		roomStatusChanges: counter("room_status_changes_total", "Room status changes by new status", "status"),
		outboxDispatched:  counter("outbox_dispatched_total", "Outbox events by kind and result", "kind", "result"),
		bookingConflicts: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_conflicts_total",
			Help:      "Bookings rejected for overlapping an active stay",
		}),
		occupiedRooms: gauge("occupied_rooms", "Rooms currently in Ocupado status"),
	}
}

// Middleware 按路由模板统计请求，/metrics 本身不计
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		m.httpRequestsInFlight.Inc()
		defer m.httpRequestsInFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		m.httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler 默认注册表的抓取端点
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

func (m *Metrics) RecordCacheHit(cache string) {
	if m != nil {
		m.cacheHitsTotal.WithLabelValues(cache).Inc()
	}
}

func (m *Metrics) RecordCacheMiss(cache string) {
	if m != nil {
		m.cacheMissesTotal.WithLabelValues(cache).Inc()
	}
}

// RecordMQTTMessage direction 为 outbound 或 inbound
func (m *Metrics) RecordMQTTMessage(topic, direction string) {
	if m != nil {
		m.mqttMessagesTotal.WithLabelValues(topic, direction).Inc()
	}
}

// RecordStayTransition reserve、check_in、check_out、cancel 等
func (m *Metrics) RecordStayTransition(transition string) {
	if m != nil {
		m.stayTransitions.WithLabelValues(transition).Inc()
	}
}

// RecordPayment 按付款类型累计笔数和金额
func (m *Metrics) RecordPayment(paymentType string, amount float64) {
	if m == nil {
		return
	}
	m.paymentsTotal.WithLabelValues(paymentType).Inc()
	m.paymentsAmount.WithLabelValues(paymentType).Add(amount)
}

func (m *Metrics) RecordRoomStatus(status string) {
	if m != nil {
		m.roomStatusChanges.WithLabelValues(status).Inc()
	}
}

// RecordOutbox result 为 sent、skipped、retry 或 failed
func (m *Metrics) RecordOutbox(kind, result string) {
	if m != nil {
		m.outboxDispatched.WithLabelValues(kind, result).Inc()
	}
}

func (m *Metrics) RecordBookingConflict() {
	if m != nil {
		m.bookingConflicts.Inc()
	}
}

// SetOccupiedRooms 由定时任务刷新
func (m *Metrics) SetOccupiedRooms(count float64) {
	if m != nil {
		m.occupiedRooms.Set(count)
	}
}
