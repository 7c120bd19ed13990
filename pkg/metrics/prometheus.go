// Package metrics exports step registration metrics to Prometheus.
//
//	obs, err := metrics.NewPrometheusObserver(prometheus.DefaultRegisterer)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	wf := api.MustWorkflow("checkout", api.WithObserver(obs))
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/petrijr/stepflow/pkg/api"
)

const namespace = "stepflow"

// PrometheusObserver is an api.Observer that maintains Prometheus metrics:
//
//	stepflow_steps_registered_total{workflow}
//	stepflow_steps_replaced_total{workflow}
//	stepflow_steps_rejected_total{workflow}
//	stepflow_workflow_validations_total{workflow,result}
//	stepflow_step_num_workers{workflow,step}
type PrometheusObserver struct {
	registered  *prometheus.CounterVec
	replaced    *prometheus.CounterVec
	rejected    *prometheus.CounterVec
	validations *prometheus.CounterVec
	workers     *prometheus.GaugeVec
}

var _ api.Observer = (*PrometheusObserver)(nil)

// NewPrometheusObserver creates the collectors and registers them with reg.
func NewPrometheusObserver(reg prometheus.Registerer) (*PrometheusObserver, error) {
	o := &PrometheusObserver{
		registered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_registered_total",
			Help:      "Steps added to a workflow under a new name.",
		}, []string{"workflow"}),
		replaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_replaced_total",
			Help:      "Steps that replaced an existing step of the same name.",
		}, []string{"workflow"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_rejected_total",
			Help:      "Step registrations that failed validation.",
		}, []string{"workflow"}),
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflow_validations_total",
			Help:      "Workflow graph validations by result.",
		}, []string{"workflow", "result"}),
		workers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "step_num_workers",
			Help:      "Declared maximum concurrent invocations per step.",
		}, []string{"workflow", "step"}),
	}

	for _, c := range []prometheus.Collector{o.registered, o.replaced, o.rejected, o.validations, o.workers} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (o *PrometheusObserver) OnStepRegistered(wf *api.Workflow, step *api.Step) {
	o.registered.WithLabelValues(wf.Name()).Inc()
	o.workers.WithLabelValues(wf.Name(), step.Name()).Set(float64(step.Config().NumWorkers()))
}

func (o *PrometheusObserver) OnStepReplaced(wf *api.Workflow, previous, step *api.Step) {
	o.replaced.WithLabelValues(wf.Name()).Inc()
	o.workers.WithLabelValues(wf.Name(), step.Name()).Set(float64(step.Config().NumWorkers()))
}

func (o *PrometheusObserver) OnStepRejected(wf *api.Workflow, stepName string, err error) {
	o.rejected.WithLabelValues(wf.Name()).Inc()
}

func (o *PrometheusObserver) OnWorkflowValidated(wf *api.Workflow, err error) {
	result := "ok"
	if err != nil {
		result = "invalid"
	}
	o.validations.WithLabelValues(wf.Name(), result).Inc()
}
