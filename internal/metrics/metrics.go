package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boompay_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "boompay_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	OrdersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boompay_orders_total",
			Help: "Total number of orders created",
		},
		[]string{"fulfillment", "status"},
	)

	OrderCancellationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "boompay_order_cancellations_total",
			Help: "Total number of customer order cancellations",
		},
	)

	StockItemsSoldTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "boompay_stock_items_sold_total",
			Help: "Total number of stock items sold",
		},
	)

	RechargeDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boompay_recharge_decisions_total",
			Help: "Total number of recharge requests decided",
		},
		[]string{"status"},
	)

	RefundDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boompay_refund_decisions_total",
			Help: "Total number of refund requests decided",
		},
		[]string{"status"},
	)

	ChatMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boompay_chat_messages_total",
			Help: "Total number of order chat messages sent",
		},
		[]string{"sender"},
	)

	CouponRedemptionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "boompay_coupon_redemptions_total",
			Help: "Total number of coupon redemptions on successful orders",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordOrder(fulfillment, status string) {
	OrdersTotal.WithLabelValues(fulfillment, status).Inc()
}

func RecordOrderCancellation() {
	OrderCancellationsTotal.Inc()
}

func RecordStockSold(n int) {
	StockItemsSoldTotal.Add(float64(n))
}

func RecordRechargeDecision(status string) {
	RechargeDecisionsTotal.WithLabelValues(status).Inc()
}

func RecordRefundDecision(status string) {
	RefundDecisionsTotal.WithLabelValues(status).Inc()
}

func RecordChatMessage(sender string) {
	ChatMessagesTotal.WithLabelValues(sender).Inc()
}

func RecordCouponRedemption() {
	CouponRedemptionsTotal.Inc()
}
