package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sixpine"

// 下单结果标签
const (
	CheckoutCommitted = "committed"
	CheckoutReplayed  = "replayed"
	CheckoutFailed    = "failed"
)

var (
	registry = prometheus.NewRegistry()

	checkoutTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkout_total",
		Help:      "Checkout attempts by outcome and error kind.",
	}, []string{"outcome", "error_kind"})

	checkoutDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "checkout_duration_seconds",
		Help:      "Checkout latency by outcome.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"outcome"})

	stockConflictTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkout_stock_conflicts_total",
		Help:      "Cart lines rejected by stock validation at commit.",
	})

	transitionTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_transitions_total",
		Help:      "Order status transitions by kind, target status and result.",
	}, []string{"kind", "to", "result"})

	webhookTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_webhook_events_total",
		Help:      "Payment webhook events by result.",
	}, []string{"result"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and status code.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

func init() {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		checkoutTotal,
		checkoutDuration,
		stockConflictTotal,
		transitionTotal,
		webhookTotal,
		httpDuration,
	)
}

// Handler /metrics 输出
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
}

// Registry 返回指标注册表
func Registry() *prometheus.Registry {
	return registry
}

// ObserveCheckout 记录一次下单结果
func ObserveCheckout(outcome, errorKind string, elapsed time.Duration) {
	checkoutTotal.WithLabelValues(outcome, errorKind).Inc()
	checkoutDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// AddStockConflicts 记录库存冲突行数
func AddStockConflicts(count int) {
	if count > 0 {
		stockConflictTotal.Add(float64(count))
	}
}

// IncTransition 记录状态流转
func IncTransition(kind, to, result string) {
	transitionTotal.WithLabelValues(kind, to, result).Inc()
}

// IncWebhook 记录支付回调处理结果
func IncWebhook(result string) {
	webhookTotal.WithLabelValues(result).Inc()
}

// ObserveHTTP 记录 HTTP 请求耗时
func ObserveHTTP(method, route, status string, elapsed time.Duration) {
	httpDuration.WithLabelValues(method, route, status).Observe(elapsed.Seconds())
}
