package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ukonnect"

var (
	RemoteCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "remote_calls_total",
		Help:      "Remote API calls by operation and outcome.",
	}, []string{"op", "outcome"})

	UploadAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gallery_upload_attempts_total",
		Help:      "Photo upload attempts by outcome.",
	}, []string{"outcome"})

	OutboxPending = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "attendance_outbox_pending",
		Help:      "Attendance records waiting for server acknowledgement.",
	})

	LoansCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "loans_created_total",
		Help:      "Loans confirmed by the server.",
	})

	ServerRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "devserver",
		Name:      "requests_total",
		Help:      "Devserver requests by route and status class.",
	}, []string{"method", "route", "status"})
)

// Register attaches every collector to reg. Collectors keep counting when
// unregistered, they are just not exported.
func Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{RemoteCalls, UploadAttempts, OutboxPending, LoansCreated, ServerRequests} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
