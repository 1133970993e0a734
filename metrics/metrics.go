package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	OrdersPlaced = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "shop",
		Name:      "orders_placed_total",
		Help:      "Total number of orders recorded.",
	})

	CheckoutFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shop",
		Name:      "checkout_failures_total",
		Help:      "Checkout attempts aborted before payment confirmation, by stage.",
	}, []string{"stage"})

	ReconciliationFaults = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "shop",
		Name:      "reconciliation_faults_total",
		Help:      "Failures after payment confirmation that need manual reconciliation.",
	})
)

func init() {
	prometheus.MustRegister(OrdersPlaced, CheckoutFailures, ReconciliationFaults)
}

// Handler serves the prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
