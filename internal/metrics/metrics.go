package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RoomsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "roomcast",
		Name:      "rooms_created_total",
		Help:      "Rooms successfully created on the provider.",
	})

	RoomsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "roomcast",
		Name:      "rooms_deleted_total",
		Help:      "Rooms deleted through this service.",
	})

	JoinsAdmitted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "roomcast",
		Name:      "joins_admitted_total",
		Help:      "Join requests that received a token.",
	})

	JoinsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "roomcast",
		Name:      "joins_rejected_total",
		Help:      "Join requests rejected, by reason.",
	}, []string{"reason"})

	ProviderErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "roomcast",
		Name:      "provider_errors_total",
		Help:      "Failed calls to the media provider, by operation.",
	}, []string{"op"})

	UpdateSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "roomcast",
		Name:      "update_subscribers",
		Help:      "Currently active room update subscriptions.",
	})
)
