package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistersOnGivenRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Validations.WithLabelValues("Appointment", ResultValid).Inc()
	m.Validations.WithLabelValues("Appointment", ResultValid).Inc()
	m.Violations.WithLabelValues("Appointment", "MissingRequired").Add(3)

	if got := testutil.ToFloat64(m.Validations.WithLabelValues("Appointment", ResultValid)); got != 2 {
		t.Errorf("validations = %v, want 2", got)
	}
	if n := testutil.CollectAndCount(m.Violations); n != 1 {
		t.Errorf("violation series = %d, want 1", n)
	}

	// A second set on a fresh registry must not collide.
	_ = New(nil)
}

func TestWriteTextfile(t *testing.T) {
	m := New(nil)
	m.Classifications.WithLabelValues("heartRate", "Critical").Inc()

	path := filepath.Join(t.TempDir(), "emr.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := `emr_vital_classifications_total{channel="heartRate",severity="Critical"} 1`
	if !strings.Contains(string(data), want) {
		t.Errorf("textfile missing %q:\n%s", want, data)
	}
}
