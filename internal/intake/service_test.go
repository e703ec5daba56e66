package intake

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/afmhelaluddin77/EMR/internal/emr"
	"github.com/afmhelaluddin77/EMR/internal/fhir/r4"
	"github.com/afmhelaluddin77/EMR/internal/observability/metrics"
	"github.com/afmhelaluddin77/EMR/internal/validation"
	"github.com/afmhelaluddin77/EMR/internal/vitals"
)

const validAppointment = `{
	"resourceType": "Appointment",
	"id": "appt-1",
	"status": "booked",
	"start": "2024-03-01T09:00:00Z",
	"end": "2024-03-01T09:30:00Z",
	"minutesDuration": 30,
	"participant": [{"actor": {"reference": "Patient/p1"}, "status": "accepted"}]
}`

const invalidAppointment = `{
	"resourceType": "Appointment",
	"status": "scheduled",
	"participant": []
}`

func newService(t *testing.T, cfg Config) (*Service, *metrics.Metrics) {
	t.Helper()
	m := metrics.New(nil)
	return New(cfg, m, nil), m
}

func TestValidateResource(t *testing.T) {
	svc, m := newService(t, Config{Workers: 2, CacheSize: 16})
	ctx := context.Background()

	res, err := svc.ValidateResource(ctx, r4.KindAppointment, []byte(validAppointment))
	if err != nil {
		t.Fatalf("ValidateResource() error = %v", err)
	}
	if !res.Valid() {
		t.Errorf("expected valid, got %v", res.Violations)
	}

	res, err = svc.ValidateResource(ctx, r4.KindAppointment, []byte(invalidAppointment))
	if err != nil {
		t.Fatalf("ValidateResource() error = %v", err)
	}
	if len(res.Filter(validation.InvalidEnumValue)) != 1 || len(res.Filter(validation.MissingRequired)) != 1 {
		t.Errorf("unexpected violations %v", res.Violations)
	}

	if got := testutil.ToFloat64(m.Validations.WithLabelValues("Appointment", metrics.ResultValid)); got != 1 {
		t.Errorf("valid count = %v", got)
	}
	if got := testutil.ToFloat64(m.Validations.WithLabelValues("Appointment", metrics.ResultInvalid)); got != 1 {
		t.Errorf("invalid count = %v", got)
	}
	if got := testutil.ToFloat64(m.Violations.WithLabelValues("Appointment", string(validation.MissingRequired))); got != 1 {
		t.Errorf("MissingRequired count = %v", got)
	}
}

func TestValidateResourceCaches(t *testing.T) {
	svc, m := newService(t, Config{CacheSize: 16})
	ctx := context.Background()

	first, _ := svc.ValidateResource(ctx, r4.KindAppointment, []byte(invalidAppointment))
	first.Violations[0].Message = "mutated"
	second, _ := svc.ValidateResource(ctx, r4.KindAppointment, []byte(invalidAppointment))

	if second.Violations[0].Message == "mutated" {
		t.Error("cached result shared with caller")
	}
	if got := testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")); got != 1 {
		t.Errorf("cache hits = %v, want 1", got)
	}

	// The same payload under different options is a different entry.
	strict := New(Config{CacheSize: 16, RequireID: true}, m, nil)
	res, _ := strict.ValidateResource(ctx, r4.KindAppointment, []byte(invalidAppointment))
	if len(res.Violations) != len(second.Violations)+1 {
		t.Errorf("RequireID should add the id violation: %v", res.Violations)
	}
}

func TestValidateResourcePrecondition(t *testing.T) {
	svc, m := newService(t, Config{})
	ctx := context.Background()

	_, err := svc.ValidateResource(ctx, r4.KindAppointment, []byte(`{"status": 7`))
	if !errors.Is(err, validation.ErrMalformedResource) {
		t.Errorf("expected ErrMalformedResource, got %v", err)
	}
	_, err = svc.ValidateResource(ctx, r4.ResourceKind("Patient"), []byte(`{}`))
	if !errors.Is(err, validation.ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
	if got := testutil.ToFloat64(m.Validations.WithLabelValues("Appointment", metrics.ResultError)); got != 1 {
		t.Errorf("error count = %v", got)
	}
}

func TestValidateBatch(t *testing.T) {
	svc, _ := newService(t, Config{Workers: 4})

	var items []Item
	for i := 0; i < 20; i++ {
		payload := validAppointment
		switch i % 3 {
		case 1:
			payload = invalidAppointment
		case 2:
			payload = `not json`
		}
		items = append(items, Item{ID: fmt.Sprintf("item-%d", i), Kind: r4.KindAppointment, Payload: []byte(payload)})
	}
	items = append(items, Item{Kind: r4.KindAppointment, Payload: []byte(validAppointment)})

	results, err := svc.ValidateBatch(context.Background(), items)
	if err != nil {
		t.Fatalf("ValidateBatch() error = %v", err)
	}
	if len(results) != len(items) {
		t.Fatalf("got %d results for %d items", len(results), len(items))
	}
	for i, r := range results[:20] {
		if r.ID != items[i].ID {
			t.Fatalf("result %d has id %s", i, r.ID)
		}
		switch i % 3 {
		case 0:
			if r.Err != nil || !r.Result.Valid() {
				t.Errorf("item %d: %v %v", i, r.Err, r.Result.Violations)
			}
		case 1:
			if r.Err != nil || r.Result.Valid() {
				t.Errorf("item %d should be invalid", i)
			}
		case 2:
			if !errors.Is(r.Err, validation.ErrMalformedResource) {
				t.Errorf("item %d error = %v", i, r.Err)
			}
		}
	}
	if results[20].ID == "" {
		t.Error("item without id should get a generated one")
	}
}

func TestValidateBatchCancelled(t *testing.T) {
	svc, _ := newService(t, Config{Workers: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items := []Item{{Kind: r4.KindAppointment, Payload: []byte(validAppointment)}}
	results, err := svc.ValidateBatch(ctx, items)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if len(results) != 1 || results[0].Err == nil {
		t.Errorf("cancelled item should carry an error: %+v", results)
	}
}

func TestClassifyVitals(t *testing.T) {
	svc, m := newService(t, Config{DerivedBMI: true})

	current := vitals.Reading{
		HeartRate: &vitals.Measurement{Value: 130, Unit: "bpm"},
		Height:    &vitals.Measurement{Value: 180, Unit: "cm"},
		Weight:    &vitals.Measurement{Value: 81, Unit: "kg"},
	}
	res := svc.ClassifyVitals(context.Background(), current, nil)

	if res[vitals.HeartRate].Severity != vitals.Critical {
		t.Errorf("heart rate = %+v", res[vitals.HeartRate])
	}
	if _, ok := res[vitals.BMI]; !ok {
		t.Error("derived BMI should be classified when enabled")
	}
	if got := testutil.ToFloat64(m.Classifications.WithLabelValues("heartRate", "Critical")); got != 1 {
		t.Errorf("classification count = %v", got)
	}
}

func TestValidateExtension(t *testing.T) {
	svc, m := newService(t, Config{})
	ext := &emr.AppointmentExtension{AppointmentID: "appt-1"}

	res := svc.ValidateExtension(context.Background(), ext)
	if res.Valid() {
		t.Error("incomplete extension should be invalid")
	}
	if got := testutil.ToFloat64(m.ExtensionChecks.WithLabelValues(metrics.ResultInvalid)); got != 1 {
		t.Errorf("extension check count = %v", got)
	}
}
