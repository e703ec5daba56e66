package emr

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/afmhelaluddin77/EMR/internal/fhir/r4"
	"github.com/afmhelaluddin77/EMR/internal/validation"
)

func validExtension() AppointmentExtension {
	coverage := 80.0
	return AppointmentExtension{
		AppointmentID:    "appt-1",
		CreatedBy:        "frontdesk",
		LastModifiedBy:   "dr.lopez",
		LastModifiedDate: "2024-03-01T09:45:00Z",
		Department:       "Cardiology",
		Room:             "3B",
		BillingStatus:    BillingPending,
		InsuranceInfo: &InsuranceInfo{
			Provider:     "Acme Health",
			PolicyNumber: "POL-778",
			Coverage:     &coverage,
		},
	}
}

func TestExtensionValid(t *testing.T) {
	ext := validExtension()
	if res := ext.Validate(); !res.Valid() {
		t.Errorf("expected valid extension, got %v", res.Violations)
	}

	ext.InsuranceInfo = nil
	if res := ext.Validate(); !res.Valid() {
		t.Errorf("insurance is optional, got %v", res.Violations)
	}
}

func TestExtensionViolations(t *testing.T) {
	over := 120.0
	ext := AppointmentExtension{
		AppointmentID:    "appt-1",
		LastModifiedBy:   "dr.lopez",
		LastModifiedDate: "yesterday",
		Department:       "Cardiology",
		FollowUpRequired: true,
		BillingStatus:    "refunded",
		InsuranceInfo:    &InsuranceInfo{PolicyNumber: "POL-1", Coverage: &over},
	}

	res := ext.Validate()
	got := map[string]validation.ViolationKind{}
	for _, v := range res.Violations {
		got[v.Path] = v.Kind
	}
	want := map[string]validation.ViolationKind{
		"createdBy":              validation.MissingRequired,
		"lastModifiedDate":       validation.InvalidRange,
		"followUpDate":           validation.MissingRequired,
		"billingStatus":          validation.InvalidEnumValue,
		"insuranceInfo.provider": validation.MissingRequired,
		"insuranceInfo.coverage": validation.InvalidRange,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("violations = %v\nwant %v", got, want)
	}

	out := res.ToOperationOutcome()
	if !out.HasErrors() || len(out.Issue) != len(want) {
		t.Errorf("unexpected outcome: %+v", out)
	}
}

func TestInsuranceCoverageRequired(t *testing.T) {
	ext := validExtension()
	ext.InsuranceInfo.Coverage = nil

	res := ext.Validate()
	if len(res.Violations) != 1 {
		t.Fatalf("expected one violation, got %v", res.Violations)
	}
	if v := res.Violations[0]; v.Path != "insuranceInfo.coverage" || v.Kind != validation.MissingRequired {
		t.Errorf("unexpected violation %v", v)
	}
}

func TestFollowUpDate(t *testing.T) {
	tests := []struct {
		name     string
		required bool
		date     string
		valid    bool
	}{
		{"not required, absent", false, "", true},
		{"required, date", true, "2024-04-01", true},
		{"required, datetime", true, "2024-04-01T10:00:00-05:00", true},
		{"required, absent", true, "", false},
		{"malformed", false, "04/01/2024", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext := validExtension()
			ext.FollowUpRequired = tt.required
			ext.FollowUpDate = tt.date
			if got := ext.Validate().Valid(); got != tt.valid {
				t.Errorf("Valid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestExtensionWireNames(t *testing.T) {
	data := []byte(`{
		"appointmentId": "appt-9",
		"createdBy": "a",
		"lastModifiedBy": "b",
		"lastModifiedDate": "2024-03-01T09:45:00.123Z",
		"department": "Oncology",
		"billingStatus": "paid",
		"insuranceInfo": {"provider": "P", "policyNumber": "N", "coverage": 0}
	}`)
	var ext AppointmentExtension
	if err := json.Unmarshal(data, &ext); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ext.AppointmentID != "appt-9" || ext.BillingStatus != BillingPaid {
		t.Errorf("unexpected decode: %+v", ext)
	}
	if res := ext.Validate(); !res.Valid() {
		t.Errorf("zero coverage is valid, got %v", res.Violations)
	}
}

func TestLinksTo(t *testing.T) {
	ext := validExtension()
	if !ext.LinksTo(&r4.Appointment{ID: "appt-1"}) {
		t.Error("expected link on exact id")
	}
	if ext.LinksTo(&r4.Appointment{ID: "APPT-1"}) {
		t.Error("link must be an exact match")
	}
	if ext.LinksTo(nil) {
		t.Error("nil appointment never links")
	}
}

func TestIndex(t *testing.T) {
	idx := NewIndex()
	if err := idx.Put(AppointmentExtension{}); err != ErrMissingAppointmentID {
		t.Errorf("Put without key: got %v", err)
	}

	a := validExtension()
	b := validExtension()
	b.AppointmentID = "appt-2"
	c := validExtension()
	c.AppointmentID = "appt-3"
	for _, ext := range []AppointmentExtension{a, b, c} {
		if err := idx.Put(ext); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	if idx.Len() != 3 {
		t.Errorf("Len() = %d", idx.Len())
	}

	b.Department = "Radiology"
	_ = idx.Put(b)
	if got, _ := idx.Get("appt-2"); got.Department != "Radiology" {
		t.Errorf("Put should replace, got %q", got.Department)
	}

	if got := idx.Orphans([]string{"appt-2"}); !reflect.DeepEqual(got, []string{"appt-1", "appt-3"}) {
		t.Errorf("Orphans() = %v", got)
	}

	if !idx.Delete("appt-3") || idx.Delete("appt-3") {
		t.Error("Delete should report presence once")
	}
	if _, ok := idx.Get("appt-3"); ok {
		t.Error("deleted extension still present")
	}
}

func TestIndexJoin(t *testing.T) {
	idx := NewIndex()
	_ = idx.Put(validExtension())

	appts := []*r4.Appointment{
		r4.NewAppointment("appt-0", r4.AppointmentBooked),
		r4.NewAppointment("appt-1", r4.AppointmentArrived),
		nil,
	}
	joined := idx.Join(appts)
	if len(joined) != 3 {
		t.Fatalf("Join returned %d rows", len(joined))
	}
	if joined[0].Extension != nil {
		t.Error("appt-0 has no extension")
	}
	if joined[1].Extension == nil || joined[1].Extension.Department != "Cardiology" {
		t.Errorf("appt-1 join = %+v", joined[1].Extension)
	}
	if joined[2].Appointment != nil || joined[2].Extension != nil {
		t.Error("nil appointment should join to nothing")
	}

	joined[1].Extension.Department = "changed"
	if got, _ := idx.Get("appt-1"); got.Department != "Cardiology" {
		t.Error("Join must not expose stored state")
	}
}
