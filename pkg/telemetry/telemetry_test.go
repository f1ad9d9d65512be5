package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegistryRegistersAllInstruments(t *testing.T) {
	reg := Registry()
	if reg == nil {
		t.Fatal("Registry returned nil")
	}
	if got := Registry(); got != reg {
		t.Error("Registry should return the same instance on subsequent calls")
	}
}

func TestRecordErrorIncrementsCounter(t *testing.T) {
	before := testutil.ToFloat64(ParseErrorsTotal.WithLabelValues("syntax"))
	RecordError("syntax")
	after := testutil.ToFloat64(ParseErrorsTotal.WithLabelValues("syntax"))
	if after != before+1 {
		t.Errorf("ParseErrorsTotal[syntax] = %v, want %v", after, before+1)
	}
}
