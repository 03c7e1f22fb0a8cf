package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"

	"gem_market/internal/domain/value"
)

const namespace = "gem_market"

// Recorder счётчики жизненного цикла сделок.
type Recorder struct {
	transitions *prometheus.CounterVec
	failures    *prometheus.CounterVec
	initiated   prometheus.Counter
}

func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deal_transitions_total",
			Help:      "Deal stage transitions by deal type and target stage.",
		}, []string{"deal_type", "stage"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "side_effect_failures_total",
			Help:      "Best-effort side effects that failed after the main change was saved.",
		}, []string{"kind"}),
		initiated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deals_initiated_total",
			Help:      "Buyer deals initiated from a cart.",
		}),
	}

	reg.MustRegister(r.transitions, r.failures, r.initiated)

	return r
}

func (r *Recorder) DealInitiated() {
	r.initiated.Inc()
}

func (r *Recorder) DealTransition(dealType value.DealType, stage value.Stage) {
	r.transitions.WithLabelValues(dealType.String(), stage.String()).Inc()
}

func (r *Recorder) SideEffectFailure(kind string) {
	r.failures.WithLabelValues(kind).Inc()
}
