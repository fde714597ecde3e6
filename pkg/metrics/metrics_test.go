package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegistry(t *testing.T) {
	if Registry == nil {
		t.Error("Registry should not be nil")
	}

	if Registry != prometheus.DefaultRegisterer {
		t.Error("Registry should be the default Prometheus registerer")
	}
}

func TestFactoryRegistersCollectors(t *testing.T) {
	c := Factory.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "metrics_test_total",
		Help:      "Counter used by the metrics package tests",
	})
	c.Add(2)

	if got := testutil.ToFloat64(c); got != 2 {
		t.Errorf("counter = %v, want 2", got)
	}

	// A second registration under the same name must be rejected by the shared registry.
	err := Registry.Register(prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "metrics_test_total",
		Help:      "Counter used by the metrics package tests",
	}))
	if err == nil {
		t.Error("expected duplicate registration to fail")
	}
}
