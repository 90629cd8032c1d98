package metrics_test

import (
	"context"
	"testing"

	"github.com/aretw0/fable"
	"github.com/aretw0/fable/internal/metrics"
	"github.com/aretw0/fable/pkg/adapters/memory"
	"github.com/aretw0/fable/pkg/domain"
	"github.com/aretw0/fable/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = ports.RendererFunc(func(context.Context, domain.Span) error { return nil })

func TestCollector_CountsEngineEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.New(reg)

	eng, err := fable.New("", fable.WithLoader(memory.NewLoader(map[string]string{
		"a.story": ":- start\n=- incr counter:gold 2\n=- set flag:seen\n*- On -> next\n:- next\nbye\n",
	})), fable.WithLifecycleHooks(c.Hooks()))
	require.NoError(t, err)
	require.NoError(t, eng.Sync(context.Background()))

	ctx := context.Background()
	exec, err := eng.Start(ctx, discard, nil, "a.story", "")
	require.NoError(t, err)
	require.NoError(t, eng.Choose(ctx, discard, exec, 0))

	assert.Equal(t, 2.0, testutil.ToFloat64(c.BlocksEntered.WithLabelValues("a.story")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Directives.WithLabelValues("incr_counter")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Directives.WithLabelValues("set_flag")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Choices))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Halts.WithLabelValues(domain.HaltBlockExhausted)))

	n, err := testutil.GatherAndCount(reg, "fable_halts_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNew_NilRegisterer(t *testing.T) {
	assert.NotPanics(t, func() {
		c := metrics.New(nil)
		c.Hooks().OnChoice(context.Background(), &domain.ChoiceEvent{})
	})
}
