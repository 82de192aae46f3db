package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	admissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "barmaster",
			Name:      "admissions_total",
			Help:      "Admission attempts by outcome (granted or rejection reason).",
		},
		[]string{"outcome"},
	)

	floorReadFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "barmaster",
			Name:      "floor_read_failures_total",
			Help:      "Floor snapshot reads downgraded to an empty collection.",
		},
		[]string{"collection"},
	)

	unknownTableStates = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "barmaster",
			Name:      "unknown_table_states_total",
			Help:      "Tables loaded with an operational state outside the known set.",
		},
	)

	floorLoadDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "barmaster",
			Name:      "floor_load_duration_seconds",
			Help:      "Time to load a floor snapshot.",
			Buckets:   prometheus.DefBuckets,
		},
	)

	sessionEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "barmaster",
			Name:      "session_events_total",
			Help:      "Sessions opened by login and closed by explicit logout. TTL expiry is not counted.",
		},
		[]string{"event"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(admissions, floorReadFailures, unknownTableStates, floorLoadDuration, sessionEvents)
	})
}

func IncAdmission(outcome string) {
	admissions.WithLabelValues(outcome).Inc()
}

func IncFloorReadFailure(collection string) {
	floorReadFailures.WithLabelValues(collection).Inc()
}

func AddUnknownTableStates(n int) {
	unknownTableStates.Add(float64(n))
}

func ObserveFloorLoad(seconds float64) {
	floorLoadDuration.Observe(seconds)
}

func SessionOpened() {
	sessionEvents.WithLabelValues("opened").Inc()
}

func SessionClosed() {
	sessionEvents.WithLabelValues("closed").Inc()
}
