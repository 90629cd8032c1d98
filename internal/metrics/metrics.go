// Package metrics exposes engine activity as Prometheus collectors.
package metrics

import (
	"context"

	"github.com/aretw0/fable/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector counts engine events. Attach it with fable.WithLifecycleHooks(c.Hooks()).
type Collector struct {
	BlocksEntered *prometheus.CounterVec
	Directives    *prometheus.CounterVec
	Choices       prometheus.Counter
	Halts         *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
// A nil reg leaves them unregistered.
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		BlocksEntered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fable_blocks_entered_total",
			Help: "Number of times a block was entered.",
		}, []string{"file"}),
		Directives: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fable_directives_total",
			Help: "Directives applied to game state.",
		}, []string{"op"}),
		Choices: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fable_choices_total",
			Help: "Reader choices accepted.",
		}),
		Halts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fable_halts_total",
			Help: "Executions halted, by reason.",
		}, []string{"reason"}),
	}
	if reg != nil {
		reg.MustRegister(c.BlocksEntered, c.Directives, c.Choices, c.Halts)
	}
	return c
}

// Hooks returns lifecycle hooks feeding c.
func (c *Collector) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnBlockEnter: func(_ context.Context, e *domain.BlockEvent) {
			c.BlocksEntered.WithLabelValues(e.File).Inc()
		},
		OnDirective: func(_ context.Context, e *domain.DirectiveEvent) {
			c.Directives.WithLabelValues(string(e.Directive.Op)).Inc()
		},
		OnChoice: func(context.Context, *domain.ChoiceEvent) {
			c.Choices.Inc()
		},
		OnHalt: func(_ context.Context, e *domain.HaltEvent) {
			c.Halts.WithLabelValues(e.Reason).Inc()
		},
	}
}
