package r4

import (
	"encoding/json"
	"fmt"
)

// MedicationRequest represents a FHIR R4 MedicationRequest resource.
// This is the primary resource for prescription orders.
type MedicationRequest struct {
	ResourceType string       `json:"resourceType"`
	ID           string       `json:"id,omitempty"`
	Meta         *Meta        `json:"meta,omitempty"`
	Identifier   []Identifier `json:"identifier,omitempty"`

	// Status of the prescription
	Status       MedicationRequestStatus `json:"status"`
	StatusReason *CodeableConcept        `json:"statusReason,omitempty"`

	// Intent of the request
	Intent MedicationRequestIntent `json:"intent"`

	Category     []CodeableConcept `json:"category,omitempty"`
	Priority     RequestPriority   `json:"priority,omitempty"`
	DoNotPerform *bool             `json:"doNotPerform,omitempty"`

	// reported[x], at most one
	ReportedBoolean   *bool      `json:"reportedBoolean,omitempty"`
	ReportedReference *Reference `json:"reportedReference,omitempty"`

	// medication[x], exactly one
	MedicationCodeableConcept *CodeableConcept `json:"medicationCodeableConcept,omitempty"`
	MedicationReference       *Reference       `json:"medicationReference,omitempty"`

	// Subject (patient) for whom the medication is prescribed
	Subject               *Reference  `json:"subject,omitempty"`
	Encounter             *Reference  `json:"encounter,omitempty"`
	SupportingInformation []Reference `json:"supportingInformation,omitempty"`
	AuthoredOn            string      `json:"authoredOn,omitempty"`

	Requester     *Reference       `json:"requester,omitempty"`
	Performer     *Reference       `json:"performer,omitempty"`
	PerformerType *CodeableConcept `json:"performerType,omitempty"`
	Recorder      *Reference       `json:"recorder,omitempty"`

	ReasonCode            []CodeableConcept `json:"reasonCode,omitempty"`
	ReasonReference       []Reference       `json:"reasonReference,omitempty"`
	InstantiatesCanonical []string          `json:"instantiatesCanonical,omitempty"`
	InstantiatesURI       []string          `json:"instantiatesUri,omitempty"`
	BasedOn               []Reference       `json:"basedOn,omitempty"`
	GroupIdentifier       *Identifier       `json:"groupIdentifier,omitempty"`
	CourseOfTherapyType   *CodeableConcept  `json:"courseOfTherapyType,omitempty"`
	Insurance             []Reference       `json:"insurance,omitempty"`
	Note                  []Annotation      `json:"note,omitempty"`

	DosageInstruction []Dosage         `json:"dosageInstruction,omitempty"`
	DispenseRequest   *DispenseRequest `json:"dispenseRequest,omitempty"`
	Substitution      *Substitution    `json:"substitution,omitempty"`

	PriorPrescription *Reference  `json:"priorPrescription,omitempty"`
	DetectedIssue     []Reference `json:"detectedIssue,omitempty"`
	EventHistory      []Reference `json:"eventHistory,omitempty"`
}

// DispenseRequest contains information about the requested dispensing.
type DispenseRequest struct {
	InitialFill            *InitialFill `json:"initialFill,omitempty"`
	DispenseInterval       *Duration    `json:"dispenseInterval,omitempty"`
	ValidityPeriod         *Period      `json:"validityPeriod,omitempty"`
	NumberOfRepeatsAllowed *int         `json:"numberOfRepeatsAllowed,omitempty"`
	Quantity               *Quantity    `json:"quantity,omitempty"`
	ExpectedSupplyDuration *Duration    `json:"expectedSupplyDuration,omitempty"`
	Performer              *Reference   `json:"performer,omitempty"`
}

// InitialFill contains information about the initial dispensing.
type InitialFill struct {
	Quantity *Quantity `json:"quantity,omitempty"`
	Duration *Duration `json:"duration,omitempty"`
}

// Substitution contains information about medication substitution.
type Substitution struct {
	AllowedBoolean         *bool            `json:"allowedBoolean,omitempty"`
	AllowedCodeableConcept *CodeableConcept `json:"allowedCodeableConcept,omitempty"`
	Reason                 *CodeableConcept `json:"reason,omitempty"`
}

// Dosage contains dosage instructions for the medication.
type Dosage struct {
	Sequence                 *int              `json:"sequence,omitempty"`
	Text                     string            `json:"text,omitempty"`
	AdditionalInstruction    []CodeableConcept `json:"additionalInstruction,omitempty"`
	PatientInstruction       string            `json:"patientInstruction,omitempty"`
	Timing                   *Timing           `json:"timing,omitempty"`
	AsNeededBoolean          *bool             `json:"asNeededBoolean,omitempty"`
	AsNeededCodeableConcept  *CodeableConcept  `json:"asNeededCodeableConcept,omitempty"`
	Site                     *CodeableConcept  `json:"site,omitempty"`
	Route                    *CodeableConcept  `json:"route,omitempty"`
	Method                   *CodeableConcept  `json:"method,omitempty"`
	DoseAndRate              []DoseAndRate     `json:"doseAndRate,omitempty"`
	MaxDosePerPeriod         *Ratio            `json:"maxDosePerPeriod,omitempty"`
	MaxDosePerAdministration *Quantity         `json:"maxDosePerAdministration,omitempty"`
	MaxDosePerLifetime       *Quantity         `json:"maxDosePerLifetime,omitempty"`
}

// DoseAndRate contains dose/rate information.
type DoseAndRate struct {
	Type         *CodeableConcept `json:"type,omitempty"`
	DoseRange    *Range           `json:"doseRange,omitempty"`
	DoseQuantity *Quantity        `json:"doseQuantity,omitempty"`
	RateRatio    *Ratio           `json:"rateRatio,omitempty"`
	RateRange    *Range           `json:"rateRange,omitempty"`
	RateQuantity *Quantity        `json:"rateQuantity,omitempty"`
}

// Timing contains timing information for dosage.
type Timing struct {
	Event  []string         `json:"event,omitempty"`
	Repeat *TimingRepeat    `json:"repeat,omitempty"`
	Code   *CodeableConcept `json:"code,omitempty"`
}

// TimingRepeat contains repeat details for timing. Each X/XMax pair
// must satisfy XMax >= X when both are set.
type TimingRepeat struct {
	BoundsDuration *Duration     `json:"boundsDuration,omitempty"`
	BoundsRange    *Range        `json:"boundsRange,omitempty"`
	BoundsPeriod   *Period       `json:"boundsPeriod,omitempty"`
	Count          *int          `json:"count,omitempty"`
	CountMax       *int          `json:"countMax,omitempty"`
	Duration       *float64      `json:"duration,omitempty"`
	DurationMax    *float64      `json:"durationMax,omitempty"`
	DurationUnit   UnitsOfTime   `json:"durationUnit,omitempty"`
	Frequency      *int          `json:"frequency,omitempty"`
	FrequencyMax   *int          `json:"frequencyMax,omitempty"`
	Period         *float64      `json:"period,omitempty"`
	PeriodMax      *float64      `json:"periodMax,omitempty"`
	PeriodUnit     UnitsOfTime   `json:"periodUnit,omitempty"`
	DayOfWeek      []DayOfWeek   `json:"dayOfWeek,omitempty"`
	TimeOfDay      []string      `json:"timeOfDay,omitempty"`
	When           []EventTiming `json:"when,omitempty"`
	Offset         *int          `json:"offset,omitempty"`
}

func (m *MedicationRequest) medicationGroup() ChoiceGroup {
	return newGroup("medication[x]", true,
		member{"medicationCodeableConcept", m.MedicationCodeableConcept != nil},
		member{"medicationReference", m.MedicationReference != nil},
	)
}

func (m *MedicationRequest) reportedGroup() ChoiceGroup {
	return newGroup("reported[x]", false,
		member{"reportedBoolean", m.ReportedBoolean != nil},
		member{"reportedReference", m.ReportedReference != nil},
	)
}

// GetMedication returns medication[x]. The group is exactly-one.
func (m *MedicationRequest) GetMedication() (MedicationItem, error) {
	if err := m.medicationGroup().check(); err != nil {
		return nil, err
	}
	if m.MedicationCodeableConcept != nil {
		return m.MedicationCodeableConcept, nil
	}
	return m.MedicationReference, nil
}

// SetMedication populates medication[x] with v and clears the other member.
func (m *MedicationRequest) SetMedication(v MedicationItem) {
	m.MedicationCodeableConcept, m.MedicationReference = nil, nil
	switch x := v.(type) {
	case *CodeableConcept:
		m.MedicationCodeableConcept = x
	case *Reference:
		m.MedicationReference = x
	}
}

// GetReported returns reported[x], nil when absent.
func (m *MedicationRequest) GetReported() (ReportedValue, error) {
	if err := m.reportedGroup().check(); err != nil {
		return nil, err
	}
	switch {
	case m.ReportedBoolean != nil:
		return Flag(*m.ReportedBoolean), nil
	case m.ReportedReference != nil:
		return m.ReportedReference, nil
	}
	return nil, nil
}

// SetReported populates reported[x] with v and clears the other member.
func (m *MedicationRequest) SetReported(v ReportedValue) {
	m.ReportedBoolean, m.ReportedReference = nil, nil
	switch x := v.(type) {
	case Flag:
		m.ReportedBoolean = flagPtr(x)
	case *Reference:
		m.ReportedReference = x
	}
}

func (d *Dosage) asNeededGroup(path string) ChoiceGroup {
	return newGroup(path, false,
		member{"asNeededBoolean", d.AsNeededBoolean != nil},
		member{"asNeededCodeableConcept", d.AsNeededCodeableConcept != nil},
	)
}

// GetAsNeeded returns asNeeded[x], nil when absent.
func (d *Dosage) GetAsNeeded() (AsNeededValue, error) {
	if err := d.asNeededGroup("asNeeded[x]").check(); err != nil {
		return nil, err
	}
	switch {
	case d.AsNeededBoolean != nil:
		return Flag(*d.AsNeededBoolean), nil
	case d.AsNeededCodeableConcept != nil:
		return d.AsNeededCodeableConcept, nil
	}
	return nil, nil
}

// SetAsNeeded populates asNeeded[x] with v and clears the other member.
func (d *Dosage) SetAsNeeded(v AsNeededValue) {
	d.AsNeededBoolean, d.AsNeededCodeableConcept = nil, nil
	switch x := v.(type) {
	case Flag:
		d.AsNeededBoolean = flagPtr(x)
	case *CodeableConcept:
		d.AsNeededCodeableConcept = x
	}
}

func (dr *DoseAndRate) doseGroup(path string) ChoiceGroup {
	return newGroup(path, false,
		member{"doseRange", dr.DoseRange != nil},
		member{"doseQuantity", dr.DoseQuantity != nil},
	)
}

func (dr *DoseAndRate) rateGroup(path string) ChoiceGroup {
	return newGroup(path, false,
		member{"rateRatio", dr.RateRatio != nil},
		member{"rateRange", dr.RateRange != nil},
		member{"rateQuantity", dr.RateQuantity != nil},
	)
}

// GetDose returns dose[x], nil when absent.
func (dr *DoseAndRate) GetDose() (DoseValue, error) {
	if err := dr.doseGroup("dose[x]").check(); err != nil {
		return nil, err
	}
	switch {
	case dr.DoseRange != nil:
		return dr.DoseRange, nil
	case dr.DoseQuantity != nil:
		return dr.DoseQuantity, nil
	}
	return nil, nil
}

// SetDose populates dose[x] with v and clears the other member.
func (dr *DoseAndRate) SetDose(v DoseValue) {
	dr.DoseRange, dr.DoseQuantity = nil, nil
	switch x := v.(type) {
	case *Range:
		dr.DoseRange = x
	case *Quantity:
		dr.DoseQuantity = x
	}
}

// GetRate returns rate[x], nil when absent.
func (dr *DoseAndRate) GetRate() (RateValue, error) {
	if err := dr.rateGroup("rate[x]").check(); err != nil {
		return nil, err
	}
	switch {
	case dr.RateRatio != nil:
		return dr.RateRatio, nil
	case dr.RateRange != nil:
		return dr.RateRange, nil
	case dr.RateQuantity != nil:
		return dr.RateQuantity, nil
	}
	return nil, nil
}

// SetRate populates rate[x] with v and clears the other members.
func (dr *DoseAndRate) SetRate(v RateValue) {
	dr.RateRatio, dr.RateRange, dr.RateQuantity = nil, nil, nil
	switch x := v.(type) {
	case *Ratio:
		dr.RateRatio = x
	case *Range:
		dr.RateRange = x
	case *Quantity:
		dr.RateQuantity = x
	}
}

func (r *TimingRepeat) boundsGroup(path string) ChoiceGroup {
	return newGroup(path, false,
		member{"boundsDuration", r.BoundsDuration != nil},
		member{"boundsRange", r.BoundsRange != nil},
		member{"boundsPeriod", r.BoundsPeriod != nil},
	)
}

// GetBounds returns bounds[x], nil when absent.
func (r *TimingRepeat) GetBounds() (BoundsValue, error) {
	if err := r.boundsGroup("bounds[x]").check(); err != nil {
		return nil, err
	}
	switch {
	case r.BoundsDuration != nil:
		return r.BoundsDuration, nil
	case r.BoundsRange != nil:
		return r.BoundsRange, nil
	case r.BoundsPeriod != nil:
		return r.BoundsPeriod, nil
	}
	return nil, nil
}

// SetBounds populates bounds[x] with v and clears the other members.
func (r *TimingRepeat) SetBounds(v BoundsValue) {
	r.BoundsDuration, r.BoundsRange, r.BoundsPeriod = nil, nil, nil
	switch x := v.(type) {
	case *Duration:
		r.BoundsDuration = x
	case *Range:
		r.BoundsRange = x
	case *Period:
		r.BoundsPeriod = x
	}
}

func (s *Substitution) allowedGroup(path string) ChoiceGroup {
	return newGroup(path, false,
		member{"allowedBoolean", s.AllowedBoolean != nil},
		member{"allowedCodeableConcept", s.AllowedCodeableConcept != nil},
	)
}

// GetAllowed returns allowed[x], nil when absent.
func (s *Substitution) GetAllowed() (AllowedValue, error) {
	if err := s.allowedGroup("allowed[x]").check(); err != nil {
		return nil, err
	}
	switch {
	case s.AllowedBoolean != nil:
		return Flag(*s.AllowedBoolean), nil
	case s.AllowedCodeableConcept != nil:
		return s.AllowedCodeableConcept, nil
	}
	return nil, nil
}

// SetAllowed populates allowed[x] with v and clears the other member.
func (s *Substitution) SetAllowed(v AllowedValue) {
	s.AllowedBoolean, s.AllowedCodeableConcept = nil, nil
	switch x := v.(type) {
	case Flag:
		s.AllowedBoolean = flagPtr(x)
	case *CodeableConcept:
		s.AllowedCodeableConcept = x
	}
}

// ChoiceGroups returns every choice-group instance in walk order.
func (m *MedicationRequest) ChoiceGroups() []ChoiceGroup {
	groups := []ChoiceGroup{m.reportedGroup(), m.medicationGroup()}
	groups = append(groups, notesGroups(m.Note)...)
	for i := range m.DosageInstruction {
		d := &m.DosageInstruction[i]
		base := fmt.Sprintf("dosageInstruction[%d]", i)
		if d.Timing != nil && d.Timing.Repeat != nil {
			groups = append(groups, d.Timing.Repeat.boundsGroup(base+".timing.repeat.bounds[x]"))
		}
		groups = append(groups, d.asNeededGroup(base+".asNeeded[x]"))
		for j := range d.DoseAndRate {
			dr := &d.DoseAndRate[j]
			p := fmt.Sprintf("%s.doseAndRate[%d]", base, j)
			groups = append(groups, dr.doseGroup(p+".dose[x]"), dr.rateGroup(p+".rate[x]"))
		}
	}
	if m.Substitution != nil {
		groups = append(groups, m.Substitution.allowedGroup("substitution.allowed[x]"))
	}
	return groups
}

// GetPatientID extracts the patient ID from the Subject reference.
func (m *MedicationRequest) GetPatientID() string {
	if m.Subject != nil && m.Subject.Reference != "" {
		return extractIDFromReference(m.Subject.Reference)
	}
	return ""
}

// GetMedicationCode extracts the primary medication code, preferring RxNorm over NDC.
func (m *MedicationRequest) GetMedicationCode() (system, code string) {
	if c := codeIn(m.MedicationCodeableConcept, SystemRxNorm); c != "" {
		return "rxnorm", c
	}
	if c := codeIn(m.MedicationCodeableConcept, SystemNDC); c != "" {
		return "ndc", c
	}
	if m.MedicationCodeableConcept != nil && len(m.MedicationCodeableConcept.Coding) > 0 {
		first := m.MedicationCodeableConcept.Coding[0]
		return first.System, first.Code
	}
	return "", ""
}

// GetMedicationDisplay returns the display name of the medication.
func (m *MedicationRequest) GetMedicationDisplay() string {
	switch {
	case m.MedicationCodeableConcept != nil && m.MedicationCodeableConcept.Text != "":
		return m.MedicationCodeableConcept.Text
	case m.MedicationCodeableConcept != nil && len(m.MedicationCodeableConcept.Coding) > 0:
		return m.MedicationCodeableConcept.Coding[0].Display
	case m.MedicationReference != nil:
		return m.MedicationReference.Display
	}
	return ""
}

// GetRefillsAllowed returns the number of refills authorized.
func (m *MedicationRequest) GetRefillsAllowed() int {
	if m.DispenseRequest == nil || m.DispenseRequest.NumberOfRepeatsAllowed == nil {
		return 0
	}
	return *m.DispenseRequest.NumberOfRepeatsAllowed
}

// IsSubstitutionAllowed returns whether substitution is allowed.
func (m *MedicationRequest) IsSubstitutionAllowed() bool {
	if m.Substitution == nil || m.Substitution.AllowedBoolean == nil {
		return true
	}
	return *m.Substitution.AllowedBoolean
}

// GetSigText returns the first dosage instruction text.
func (m *MedicationRequest) GetSigText() string {
	if len(m.DosageInstruction) > 0 {
		return m.DosageInstruction[0].Text
	}
	return ""
}

// ToJSON serializes the MedicationRequest to JSON.
func (m *MedicationRequest) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// FromJSON deserializes a MedicationRequest from JSON.
func (m *MedicationRequest) FromJSON(data []byte) error {
	return json.Unmarshal(data, m)
}
