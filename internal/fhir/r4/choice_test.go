package r4

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestSetMedicationClearsOtherMember(t *testing.T) {
	m := &MedicationRequest{}
	m.SetMedication(&CodeableConcept{Text: "Lisinopril 10 MG Oral Tablet"})
	m.SetMedication(&Reference{Reference: "Medication/med-1"})

	if m.MedicationCodeableConcept != nil {
		t.Error("medicationCodeableConcept should be cleared")
	}
	got, err := m.GetMedication()
	if err != nil {
		t.Fatalf("GetMedication: %v", err)
	}
	ref, ok := got.(*Reference)
	if !ok || ref.Reference != "Medication/med-1" {
		t.Errorf("unexpected medication: %#v", got)
	}
}

func TestGetMedicationConflictAndMissing(t *testing.T) {
	m := &MedicationRequest{}
	if _, err := m.GetMedication(); !errors.Is(err, ErrChoiceMissing) {
		t.Errorf("expected ErrChoiceMissing, got %v", err)
	}

	m.MedicationCodeableConcept = &CodeableConcept{Text: "x"}
	m.MedicationReference = &Reference{Reference: "Medication/1"}
	if _, err := m.GetMedication(); !errors.Is(err, ErrChoiceConflict) {
		t.Errorf("expected ErrChoiceConflict, got %v", err)
	}
}

func TestAtMostOneGroupsAllowEmpty(t *testing.T) {
	m := &MedicationRequest{}
	v, err := m.GetReported()
	if err != nil || v != nil {
		t.Errorf("GetReported() = %v, %v; want nil, nil", v, err)
	}

	d := &Dosage{}
	if v, err := d.GetAsNeeded(); err != nil || v != nil {
		t.Errorf("GetAsNeeded() = %v, %v; want nil, nil", v, err)
	}
}

func TestFlagSetterWritesWireBoolean(t *testing.T) {
	s := &Substitution{AllowedCodeableConcept: &CodeableConcept{Text: "generic only"}}
	s.SetAllowed(Flag(false))

	if s.AllowedCodeableConcept != nil {
		t.Error("allowedCodeableConcept should be cleared")
	}
	if s.AllowedBoolean == nil || *s.AllowedBoolean {
		t.Fatalf("allowedBoolean = %v, want false", s.AllowedBoolean)
	}

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"allowedBoolean":false}` {
		t.Errorf("unexpected wire form: %s", data)
	}
}

func TestSetRateAndBounds(t *testing.T) {
	dr := &DoseAndRate{RateQuantity: NewQuantity(5, "mL/h")}
	dr.SetRate(&Ratio{Numerator: NewQuantity(1, "mg"), Denominator: NewQuantity(1, "h")})
	if dr.RateQuantity != nil || dr.RateRatio == nil {
		t.Errorf("SetRate did not keep the group exclusive: %+v", dr)
	}

	r := &TimingRepeat{BoundsDuration: &Duration{}}
	r.SetBounds(&Period{Start: "2024-01-01"})
	if r.BoundsDuration != nil || r.BoundsPeriod == nil {
		t.Errorf("SetBounds did not keep the group exclusive: %+v", r)
	}
	r.SetBounds(nil)
	if v, _ := r.GetBounds(); v != nil {
		t.Errorf("SetBounds(nil) should clear the group, got %v", v)
	}
}

func TestAnnotationAuthor(t *testing.T) {
	a := &Annotation{Text: "take with food"}
	a.SetAuthor(AuthorName("Dr. Lopez"))
	got, err := a.GetAuthor()
	if err != nil {
		t.Fatalf("GetAuthor: %v", err)
	}
	if got != AuthorName("Dr. Lopez") {
		t.Errorf("GetAuthor() = %v", got)
	}

	a.AuthorReference = &Reference{Reference: "Practitioner/p1"}
	if _, err := a.GetAuthor(); !errors.Is(err, ErrChoiceConflict) {
		t.Errorf("expected ErrChoiceConflict, got %v", err)
	}
}

func TestMedicationRequestChoiceGroups(t *testing.T) {
	m := &MedicationRequest{
		MedicationCodeableConcept: &CodeableConcept{Text: "Amoxicillin"},
		DosageInstruction: []Dosage{{
			Timing: &Timing{Repeat: &TimingRepeat{}},
			DoseAndRate: []DoseAndRate{{
				DoseRange:    &Range{},
				DoseQuantity: NewQuantity(500, "mg"),
			}},
		}},
		Substitution: &Substitution{},
	}

	groups := m.ChoiceGroups()
	paths := make([]string, len(groups))
	for i, g := range groups {
		paths[i] = g.Path
	}
	want := []string{
		"reported[x]",
		"medication[x]",
		"dosageInstruction[0].timing.repeat.bounds[x]",
		"dosageInstruction[0].asNeeded[x]",
		"dosageInstruction[0].doseAndRate[0].dose[x]",
		"dosageInstruction[0].doseAndRate[0].rate[x]",
		"substitution.allowed[x]",
	}
	if len(paths) != len(want) {
		t.Fatalf("got paths %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("path[%d] = %q, want %q", i, paths[i], want[i])
		}
	}

	dose := groups[4]
	if !dose.Conflict() {
		t.Error("dose[x] should be in conflict")
	}
	if len(dose.Populated) != 2 || dose.Populated[0] != "doseRange" || dose.Populated[1] != "doseQuantity" {
		t.Errorf("unexpected populated members: %v", dose.Populated)
	}
	if !groups[1].ExactlyOne || groups[1].Missing() {
		t.Errorf("medication[x] should be exactly-one and satisfied: %+v", groups[1])
	}
}

func TestMedicationIngredientGroups(t *testing.T) {
	m := &Medication{Ingredient: []MedicationIngredient{
		{ItemReference: &Reference{Reference: "Substance/s1"}},
		{},
	}}
	groups := m.ChoiceGroups()
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Missing() || groups[0].Conflict() {
		t.Errorf("ingredient[0] should be satisfied: %+v", groups[0])
	}
	if !groups[1].Missing() || groups[1].Path != "ingredient[1].item[x]" {
		t.Errorf("ingredient[1] should be missing: %+v", groups[1])
	}

	if _, err := m.Ingredient[1].GetItem(); !errors.Is(err, ErrChoiceMissing) {
		t.Errorf("expected ErrChoiceMissing, got %v", err)
	}
}
