// Package integration runs fixture payloads through the intake service.
package integration

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/afmhelaluddin77/EMR/internal/emr"
	"github.com/afmhelaluddin77/EMR/internal/fhir/r4"
	"github.com/afmhelaluddin77/EMR/internal/intake"
	"github.com/afmhelaluddin77/EMR/internal/validation"
	"github.com/afmhelaluddin77/EMR/internal/vitals"
	"github.com/afmhelaluddin77/EMR/pkg/idempotency"
)

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile("../fixtures/" + name)
	if err != nil {
		t.Skipf("fixture not found: %v", err)
	}
	return data
}

func newService() *intake.Service {
	return intake.New(intake.Config{Workers: 4, CacheSize: 64}, nil, nil)
}

func TestValidFixtures(t *testing.T) {
	svc := newService()
	fixtures := map[string]r4.ResourceKind{
		"medication_request_lisinopril.json": r4.KindMedicationRequest,
		"appointment_booked.json":            r4.KindAppointment,
		"practitioner_npi.json":              r4.KindPractitioner,
		"medication_lisinopril.json":         r4.KindMedication,
	}

	for name, kind := range fixtures {
		t.Run(name, func(t *testing.T) {
			res, err := svc.ValidateResource(context.Background(), kind, loadFixture(t, name))
			if err != nil {
				t.Fatalf("validation failed: %v", err)
			}
			if !res.Valid() {
				t.Errorf("expected no violations, got %v", res.Violations)
			}
			if res.ResourceKind != kind {
				t.Errorf("ResourceKind = %s", res.ResourceKind)
			}
		})
	}
}

func TestLisinoprilGetters(t *testing.T) {
	var m r4.MedicationRequest
	if err := m.FromJSON(loadFixture(t, "medication_request_lisinopril.json")); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if system, code := m.GetMedicationCode(); system != "rxnorm" || code != "314076" {
		t.Errorf("GetMedicationCode() = %s, %s", system, code)
	}
	if m.GetRefillsAllowed() != 3 || !m.IsSubstitutionAllowed() {
		t.Errorf("dispense details lost: refills=%d", m.GetRefillsAllowed())
	}
	bounds, err := m.DosageInstruction[0].Timing.Repeat.GetBounds()
	if err != nil {
		t.Fatalf("GetBounds: %v", err)
	}
	if p, ok := bounds.(*r4.Period); !ok || p.End != "2024-06-01" {
		t.Errorf("bounds = %#v", bounds)
	}
}

func TestConflictingMedicationRequest(t *testing.T) {
	res, err := newService().ValidateResource(context.Background(), r4.KindMedicationRequest,
		loadFixture(t, "medication_request_conflicting.json"))
	if err != nil {
		t.Fatalf("validation failed: %v", err)
	}

	want := []validation.Violation{
		{Path: "subject", Kind: validation.MissingRequired},
		{Path: "medication[x]", Kind: validation.ChoiceConflict},
		{Path: "dosageInstruction[0].asNeeded[x]", Kind: validation.ChoiceConflict},
		{Path: "dosageInstruction[0].timing.repeat.boundsPeriod", Kind: validation.InvalidRange},
		{Path: "dosageInstruction[0].timing.repeat.frequencyMax", Kind: validation.InvalidRange},
		{Path: "dosageInstruction[0].doseAndRate[0].doseRange", Kind: validation.IncomparableUnits},
	}
	if len(res.Violations) != len(want) {
		t.Fatalf("got %d violations, want %d: %v", len(res.Violations), len(want), res.Violations)
	}
	for i, w := range want {
		got := res.Violations[i]
		if got.Path != w.Path || got.Kind != w.Kind {
			t.Errorf("violation %d = %s %s, want %s %s", i, got.Path, got.Kind, w.Path, w.Kind)
		}
	}

	out := res.ToOperationOutcome()
	if len(out.Issue) != len(want) || out.Issue[1].Code != r4.IssueStructure {
		t.Errorf("unexpected outcome %+v", out.Issue)
	}
}

func TestInconsistentAppointment(t *testing.T) {
	res, err := newService().ValidateResource(context.Background(), r4.KindAppointment,
		loadFixture(t, "appointment_inconsistent.json"))
	if err != nil {
		t.Fatalf("validation failed: %v", err)
	}

	want := []struct {
		path string
		kind validation.ViolationKind
	}{
		{"participant[0].status", validation.InvalidEnumValue},
		{"start", validation.InvalidRange},
		{"minutesDuration", validation.InconsistentDerivedValue},
	}
	if len(res.Violations) != len(want) {
		t.Fatalf("got %v", res.Violations)
	}
	for i, w := range want {
		if res.Violations[i].Path != w.path || res.Violations[i].Kind != w.kind {
			t.Errorf("violation %d = %v, want %s %s", i, res.Violations[i], w.path, w.kind)
		}
	}
}

func TestFixtureBatch(t *testing.T) {
	names := []string{
		"appointment_booked.json",
		"appointment_inconsistent.json",
		"medication_request_lisinopril.json",
		"medication_request_conflicting.json",
	}
	kinds := []r4.ResourceKind{r4.KindAppointment, r4.KindAppointment, r4.KindMedicationRequest, r4.KindMedicationRequest}

	items := make([]intake.Item, len(names))
	for i, name := range names {
		items[i] = intake.Item{ID: name, Kind: kinds[i], Payload: loadFixture(t, name)}
	}
	results, err := newService().ValidateBatch(context.Background(), items)
	if err != nil {
		t.Fatalf("batch failed: %v", err)
	}
	for i, r := range results {
		if r.ID != names[i] || r.Err != nil {
			t.Fatalf("result %d = %+v", i, r)
		}
		if wantValid := i%2 == 0; r.Result.Valid() != wantValid {
			t.Errorf("%s valid = %v, want %v", r.ID, r.Result.Valid(), wantValid)
		}
	}
}

func TestVitalsFixtures(t *testing.T) {
	var baseline, febrile vitals.Reading
	if err := json.Unmarshal(loadFixture(t, "vitals_baseline.json"), &baseline); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if err := json.Unmarshal(loadFixture(t, "vitals_febrile.json"), &febrile); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	svc := intake.New(intake.Config{DerivedBMI: true}, nil, nil)

	base := svc.ClassifyVitals(context.Background(), baseline, nil)
	if base.Worst() != vitals.Normal {
		t.Errorf("baseline worst = %s: %v", base.Worst(), base)
	}
	if bmi, ok := base[vitals.BMI]; !ok || bmi.Severity != vitals.Normal {
		t.Errorf("derived BMI = %+v, %v", bmi, ok)
	}

	res := svc.ClassifyVitals(context.Background(), febrile, &baseline)
	want := map[vitals.Channel]vitals.Classification{
		vitals.Temperature:      {Severity: vitals.Critical, Trend: vitals.Up},
		vitals.BloodPressure:    {Severity: vitals.Caution, Trend: vitals.Up},
		vitals.HeartRate:        {Severity: vitals.Critical, Trend: vitals.Up},
		vitals.RespiratoryRate:  {Severity: vitals.Normal, Trend: vitals.Flat},
		vitals.OxygenSaturation: {Severity: vitals.Caution, Trend: vitals.Down},
		vitals.Weight:           {Severity: vitals.Normal, Trend: vitals.Down},
	}
	for ch, w := range want {
		if got := res[ch]; got != w {
			t.Errorf("%s = %+v, want %+v", ch, got, w)
		}
	}
	if _, ok := res[vitals.Height]; ok {
		t.Error("height absent from the reading should not be classified")
	}
	if _, ok := res[vitals.BMI]; ok {
		t.Error("BMI needs height in the same reading")
	}
}

func TestExtensionFixture(t *testing.T) {
	var ext emr.AppointmentExtension
	if err := json.Unmarshal(loadFixture(t, "appointment_extension.json"), &ext); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	var appt r4.Appointment
	if err := json.Unmarshal(loadFixture(t, "appointment_booked.json"), &appt); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if res := newService().ValidateExtension(context.Background(), &ext); !res.Valid() {
		t.Errorf("extension fixture invalid: %v", res.Violations)
	}
	if !ext.LinksTo(&appt) {
		t.Error("extension should link to its appointment")
	}

	idx := emr.NewIndex()
	if err := idx.Put(ext); err != nil {
		t.Fatal(err)
	}
	if orphans := idx.Orphans([]string{appt.ID}); len(orphans) != 0 {
		t.Errorf("unexpected orphans %v", orphans)
	}
}

func TestPayloadKeyStableAcrossReads(t *testing.T) {
	a := idempotency.PayloadKey(loadFixture(t, "appointment_booked.json"), string(r4.KindAppointment))
	b := idempotency.PayloadKey(loadFixture(t, "appointment_booked.json"), string(r4.KindAppointment))
	c := idempotency.PayloadKey(loadFixture(t, "appointment_inconsistent.json"), string(r4.KindAppointment))
	if a != b {
		t.Error("same payload should produce same key")
	}
	if a == c {
		t.Error("different payloads should produce different keys")
	}
}
