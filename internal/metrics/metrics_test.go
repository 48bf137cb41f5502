package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterIsIdempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := Register(reg); err != nil {
		t.Fatalf("second register: %v", err)
	}
}

func TestObserveAnalysisLabels(t *testing.T) {
	before := testutil.ToFloat64(analysesTotal.WithLabelValues(OutcomeSuccess))
	ObserveAnalysis(120*time.Millisecond, "anything")
	if got := testutil.ToFloat64(analysesTotal.WithLabelValues(OutcomeSuccess)); got != before+1 {
		t.Fatalf("expected unknown outcome to count as success, got %f", got-before)
	}

	invalid := testutil.ToFloat64(analysesTotal.WithLabelValues(OutcomeInvalid))
	ObserveAnalysis(-time.Second, OutcomeInvalid)
	if got := testutil.ToFloat64(analysesTotal.WithLabelValues(OutcomeInvalid)); got != invalid+1 {
		t.Fatalf("expected invalid outcome to be counted")
	}

	patterns := testutil.ToFloat64(patternsDetectedTotal.WithLabelValues("frequency"))
	AddPattern("frequency")
	if got := testutil.ToFloat64(patternsDetectedTotal.WithLabelValues("frequency")); got != patterns+1 {
		t.Fatalf("expected pattern counter to increase")
	}
}
