// Package metrics exposes Prometheus counters for the reservation core.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "goat",
			Name:      "booking_created_total",
			Help:      "Count of bookings created by initial status.",
		},
		[]string{"status"},
	)

	ownerDecision = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "goat",
			Name:      "owner_decision_total",
			Help:      "Count of owner decisions over bookings.",
		},
		[]string{"decision"},
	)

	bookingDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "goat",
			Name:      "booking_deleted_total",
			Help:      "Count of bookings deleted outright.",
		},
	)

	storeError = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "goat",
			Name:      "store_error_total",
			Help:      "Count of failed record-store calls by operation.",
		},
		[]string{"op"},
	)

	dayRollover = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "goat",
			Name:      "day_rollover_total",
			Help:      "Count of local-midnight day boundaries crossed.",
		},
	)

	httpRequest = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "goat",
			Name:      "http_request_total",
			Help:      "Count of API requests by handler.",
		},
		[]string{"handler"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingCreated, ownerDecision, bookingDeleted, storeError, dayRollover, httpRequest)
	})
}

func IncBookingCreated(status string) {
	bookingCreated.WithLabelValues(status).Inc()
}

func IncOwnerDecision(decision string) {
	ownerDecision.WithLabelValues(decision).Inc()
}

func IncBookingDeleted() {
	bookingDeleted.Inc()
}

func IncStoreError(op string) {
	storeError.WithLabelValues(op).Inc()
}

func IncDayRollover() {
	dayRollover.Inc()
}

func IncHTTP(handler string) {
	httpRequest.WithLabelValues(handler).Inc()
}
