// Package metrics holds the Prometheus collectors of the portal. They are
// registered with the default registry on import.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"team-portal/internal/models"
)

const namespace = "portal"

// ClockEventsTotal counts ledger operations.
// Labels:
//   - action: clock_in, clock_out or occurrence
//   - result: ok, conflict, invalid, not_found, forbidden or error
var ClockEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "clock_events_total",
		Help:      "Total number of time clock operations by outcome.",
	},
	[]string{"action", "result"},
)

// OutsideWorkHoursTotal counts clock-ins accepted outside the configured schedule.
var OutsideWorkHoursTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "clock_in_outside_work_hours_total",
		Help:      "Clock-ins registered outside the user's work schedule.",
	},
)

// OrderTransitionsTotal counts service order status changes by target status.
var OrderTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "service_order_transitions_total",
		Help:      "Service order status changes by resulting status.",
	},
	[]string{"status"},
)

// HTTPRequestDuration observes API latency.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route, method and status code.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"route", "method", "status"},
)

// BotCommandsTotal counts Telegram commands handled.
var BotCommandsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bot_commands_total",
		Help:      "Telegram bot commands handled.",
	},
	[]string{"command"},
)

// Result maps an operation error to the result label.
func Result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case models.IsConflict(err):
		return "conflict"
	case models.IsValidation(err):
		return "invalid"
	case models.IsNotFound(err):
		return "not_found"
	case errors.Is(err, models.ErrForbidden):
		return "forbidden"
	default:
		return "error"
	}
}
