package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterAndCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	regOK.Store(false)
	if err := Register(reg); err != nil {
		t.Fatalf("Register: %v", err)
	}
	// re-registering is a no-op
	if err := Register(reg); err != nil {
		t.Fatalf("second Register: %v", err)
	}

	IncStart("drools-api")
	IncStart("drools-api")
	IncStale("drools-api")

	if v := testutil.ToFloat64(serviceStarts.WithLabelValues("drools-api")); v != 2 {
		t.Fatalf("starts_total = %v, want 2", v)
	}
	if v := testutil.ToFloat64(stalePIDFiles.WithLabelValues("drools-api")); v != 1 {
		t.Fatalf("stale_pidfiles_total = %v, want 1", v)
	}
}
