// Package metrics exposes provisioning counters in Prometheus format.
package metrics

import (
	"github.com/cleverty/endpoint-provisioner/interfaces"
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder holds the provisioning collectors. A nil *Recorder is valid and
// records nothing.
type Recorder struct {
	triggers     *prometheus.CounterVec
	grants       *prometheus.CounterVec
	stepFailures *prometheus.CounterVec
	initialized  prometheus.Gauge
}

func NewRecorder(namespace string, reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		triggers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "triggers_total",
			Help:      "Dispatched provisioning triggers by command and outcome.",
		}, []string{"command", "outcome"}),
		grants: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "capability_grants_total",
			Help:      "Capability grant attempts by outcome.",
		}, []string{"outcome"}),
		stepFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "setup_step_failures_total",
			Help:      "Failed full-setup steps by step name.",
		}, []string{"step"}),
		initialized: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "static_config_applied",
			Help:      "1 once the static engine configuration has been applied.",
		}),
	}

	for _, c := range []prometheus.Collector{r.triggers, r.grants, r.stepFailures, r.initialized} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Recorder) ObserveTrigger(cmd interfaces.Command, ok bool) {
	if r == nil {
		return
	}
	r.triggers.WithLabelValues(cmd.String(), outcome(ok)).Inc()
}

func (r *Recorder) ObserveGrants(batch interfaces.GrantBatchResult) {
	if r == nil {
		return
	}
	failed := len(batch.Failed())
	r.grants.WithLabelValues("succeeded").Add(float64(len(batch.All()) - failed))
	r.grants.WithLabelValues("failed").Add(float64(failed))
}

func (r *Recorder) ObserveStepFailure(step string) {
	if r == nil {
		return
	}
	r.stepFailures.WithLabelValues(step).Inc()
}

func (r *Recorder) SetInitialized(done bool) {
	if r == nil {
		return
	}
	if done {
		r.initialized.Set(1)
	} else {
		r.initialized.Set(0)
	}
}

func outcome(ok bool) string {
	if ok {
		return "ok"
	}
	return "failed"
}
