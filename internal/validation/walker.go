package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/afmhelaluddin77/EMR/internal/fhir/r4"
)

// phase orders violations in the result: all findings of an earlier phase
// precede those of a later one, regardless of where they occur in the walk.
type phase int

const (
	phaseRequired phase = iota
	phaseEnum
	phaseChoice
	phasePeriod
	phaseRange
	phaseConsistency
	numPhases
)

// walker visits a resource once and files each finding under its phase.
type walker struct {
	opts    options
	buckets [numPhases][]Violation
}

func (w *walker) add(p phase, path string, kind ViolationKind, format string, args ...any) {
	w.buckets[p] = append(w.buckets[p], Violation{Path: path, Kind: kind, Message: fmt.Sprintf(format, args...)})
}

func (w *walker) violations() []Violation {
	var out []Violation
	for _, b := range w.buckets {
		out = append(out, b...)
	}
	return out
}

func at(path string, i int) string {
	return fmt.Sprintf("%s[%d]", path, i)
}

func join(path, field string) string {
	if path == "" {
		return field
	}
	return path + "." + field
}

func (w *walker) required(path string, missing bool) {
	if missing {
		w.add(phaseRequired, path, MissingRequired, "%s is required", path)
	}
}

func (w *walker) id(id string) {
	if w.opts.requireID {
		w.required("id", id == "")
	}
}

// code checks membership of a closed value set. The empty value means absent.
func (w *walker) code(path string, c r4.Code) {
	v := c.String()
	if v == "" || c.Valid() {
		return
	}
	w.add(phaseEnum, path, InvalidEnumValue, "%q is not one of [%s]", v, strings.Join(c.Allowed(), ", "))
}

func (w *walker) choices(groups []r4.ChoiceGroup) {
	for _, g := range groups {
		switch {
		case g.Conflict():
			w.add(phaseChoice, g.Path, ChoiceConflict, "only one of %s may be populated", strings.Join(g.Populated, ", "))
		case g.Missing():
			w.add(phaseChoice, g.Path, MissingRequired, "%s is required", g.Path)
		}
	}
}

func (w *walker) identifier(path string, id *r4.Identifier) {
	if id == nil {
		return
	}
	w.code(join(path, "use"), id.Use)
	w.period(join(path, "period"), id.Period)
	w.reference(join(path, "assigner"), id.Assigner)
}

func (w *walker) identifiers(path string, ids []r4.Identifier) {
	for i := range ids {
		w.identifier(at(path, i), &ids[i])
	}
}

func (w *walker) reference(path string, r *r4.Reference) {
	if r == nil {
		return
	}
	w.identifier(join(path, "identifier"), r.Identifier)
}

func (w *walker) references(path string, refs []r4.Reference) {
	for i := range refs {
		w.reference(at(path, i), &refs[i])
	}
}

func (w *walker) period(path string, p *r4.Period) {
	if p == nil {
		return
	}
	w.ordered(path, p.Start, p.End)
}

// ordered reports start > end. Equal values pass.
func (w *walker) ordered(path, start, end string) {
	if start == "" || end == "" {
		return
	}
	if compareDateTimes(start, end) > 0 {
		w.add(phasePeriod, path, InvalidRange, "start %s is after end %s", start, end)
	}
}

func (w *walker) quantity(path string, q *r4.Quantity) {
	if q == nil {
		return
	}
	w.code(join(path, "comparator"), q.Comparator)
}

func (w *walker) duration(path string, d *r4.Duration) {
	if d == nil {
		return
	}
	w.code(join(path, "comparator"), d.Comparator)
}

func (w *walker) ratio(path string, r *r4.Ratio) {
	if r == nil {
		return
	}
	w.quantity(join(path, "numerator"), r.Numerator)
	w.quantity(join(path, "denominator"), r.Denominator)
}

func (w *walker) rangeValue(path string, r *r4.Range) {
	if r == nil {
		return
	}
	w.quantity(join(path, "low"), r.Low)
	w.quantity(join(path, "high"), r.High)
	if r.Low == nil || r.High == nil || r.Low.Value == nil || r.High.Value == nil {
		return
	}
	if !comparableUnits(r.Low, r.High) {
		w.add(phaseRange, path, IncomparableUnits, "low unit %s and high unit %s cannot be compared", unitLabel(r.Low), unitLabel(r.High))
		return
	}
	if *r.Low.Value > *r.High.Value {
		w.add(phaseRange, path, InvalidRange, "low %g is greater than high %g", *r.Low.Value, *r.High.Value)
	}
}

func (w *walker) annotations(path string, notes []r4.Annotation) {
	for i := range notes {
		p := at(path, i)
		w.required(join(p, "text"), notes[i].Text == "")
		w.reference(join(p, "authorReference"), notes[i].AuthorReference)
	}
}

func (w *walker) names(path string, names []r4.HumanName) {
	for i := range names {
		p := at(path, i)
		w.code(join(p, "use"), names[i].Use)
		w.period(join(p, "period"), names[i].Period)
	}
}

func (w *walker) telecoms(path string, cps []r4.ContactPoint) {
	for i := range cps {
		p := at(path, i)
		w.code(join(p, "system"), cps[i].System)
		w.code(join(p, "use"), cps[i].Use)
		w.period(join(p, "period"), cps[i].Period)
	}
}

func (w *walker) addresses(path string, addrs []r4.Address) {
	for i := range addrs {
		p := at(path, i)
		w.code(join(p, "use"), addrs[i].Use)
		w.code(join(p, "type"), addrs[i].Type)
		w.period(join(p, "period"), addrs[i].Period)
	}
}

func (w *walker) appointment(a *r4.Appointment) {
	w.id(a.ID)
	w.required("status", a.Status == "")
	w.code("status", a.Status)
	w.identifiers("identifier", a.Identifier)
	w.references("reasonReference", a.ReasonReference)
	w.references("supportingInformation", a.SupportingInformation)
	w.ordered("start", a.Start, a.End)
	w.references("slot", a.Slot)
	w.references("basedOn", a.BasedOn)

	w.required("participant", len(a.Participant) == 0)
	for i := range a.Participant {
		p := &a.Participant[i]
		path := at("participant", i)
		w.reference(join(path, "actor"), p.Actor)
		w.code(join(path, "required"), p.Required)
		w.required(join(path, "status"), p.Status == "")
		w.code(join(path, "status"), p.Status)
		w.period(join(path, "period"), p.Period)
	}
	for i := range a.RequestedPeriod {
		w.period(at("requestedPeriod", i), &a.RequestedPeriod[i])
	}

	w.choices(a.ChoiceGroups())
	w.appointmentDuration(a)
}

// appointmentDuration checks minutesDuration against start and end at minute
// granularity. It only applies when all three are present and both instants parse.
func (w *walker) appointmentDuration(a *r4.Appointment) {
	if a.MinutesDuration == nil {
		return
	}
	start, end, ok := a.Window()
	if !ok {
		return
	}
	got := int(end.Truncate(time.Minute).Sub(start.Truncate(time.Minute)) / time.Minute)
	if got != *a.MinutesDuration {
		w.add(phaseConsistency, "minutesDuration", InconsistentDerivedValue,
			"minutesDuration is %d but start and end are %d minutes apart", *a.MinutesDuration, got)
	}
}

func (w *walker) medication(m *r4.Medication) {
	w.id(m.ID)
	w.identifiers("identifier", m.Identifier)
	w.code("status", m.Status)
	w.reference("manufacturer", m.Manufacturer)
	w.ratio("amount", m.Amount)
	for i := range m.Ingredient {
		in := &m.Ingredient[i]
		path := at("ingredient", i)
		w.reference(join(path, "itemReference"), in.ItemReference)
		w.ratio(join(path, "strength"), in.Strength)
	}
	w.choices(m.ChoiceGroups())
}

func (w *walker) medicationRequest(m *r4.MedicationRequest) {
	w.id(m.ID)
	w.identifiers("identifier", m.Identifier)
	w.required("status", m.Status == "")
	w.code("status", m.Status)
	w.required("intent", m.Intent == "")
	w.code("intent", m.Intent)
	w.code("priority", m.Priority)
	w.reference("reportedReference", m.ReportedReference)
	w.reference("medicationReference", m.MedicationReference)
	w.required("subject", !hasTarget(m.Subject))
	w.reference("subject", m.Subject)
	w.reference("encounter", m.Encounter)
	w.references("supportingInformation", m.SupportingInformation)
	w.reference("requester", m.Requester)
	w.reference("performer", m.Performer)
	w.reference("recorder", m.Recorder)
	w.references("reasonReference", m.ReasonReference)
	w.references("basedOn", m.BasedOn)
	w.identifier("groupIdentifier", m.GroupIdentifier)
	w.references("insurance", m.Insurance)
	w.annotations("note", m.Note)

	for i := range m.DosageInstruction {
		w.dosage(at("dosageInstruction", i), &m.DosageInstruction[i])
	}
	if dr := m.DispenseRequest; dr != nil {
		if dr.InitialFill != nil {
			w.quantity("dispenseRequest.initialFill.quantity", dr.InitialFill.Quantity)
			w.duration("dispenseRequest.initialFill.duration", dr.InitialFill.Duration)
		}
		w.duration("dispenseRequest.dispenseInterval", dr.DispenseInterval)
		w.period("dispenseRequest.validityPeriod", dr.ValidityPeriod)
		w.quantity("dispenseRequest.quantity", dr.Quantity)
		w.duration("dispenseRequest.expectedSupplyDuration", dr.ExpectedSupplyDuration)
		w.reference("dispenseRequest.performer", dr.Performer)
	}
	w.reference("priorPrescription", m.PriorPrescription)
	w.references("detectedIssue", m.DetectedIssue)
	w.references("eventHistory", m.EventHistory)

	w.choices(m.ChoiceGroups())
}

// hasTarget reports whether a reference names something: a literal
// reference, a logical identifier or a display.
func hasTarget(r *r4.Reference) bool {
	return r != nil && (r.Reference != "" || r.Identifier != nil || r.Display != "")
}

func (w *walker) dosage(path string, d *r4.Dosage) {
	if d.Timing != nil && d.Timing.Repeat != nil {
		w.timingRepeat(join(path, "timing.repeat"), d.Timing.Repeat)
	}
	for i := range d.DoseAndRate {
		dr := &d.DoseAndRate[i]
		p := at(join(path, "doseAndRate"), i)
		w.rangeValue(join(p, "doseRange"), dr.DoseRange)
		w.quantity(join(p, "doseQuantity"), dr.DoseQuantity)
		w.ratio(join(p, "rateRatio"), dr.RateRatio)
		w.rangeValue(join(p, "rateRange"), dr.RateRange)
		w.quantity(join(p, "rateQuantity"), dr.RateQuantity)
	}
	w.ratio(join(path, "maxDosePerPeriod"), d.MaxDosePerPeriod)
	w.quantity(join(path, "maxDosePerAdministration"), d.MaxDosePerAdministration)
	w.quantity(join(path, "maxDosePerLifetime"), d.MaxDosePerLifetime)
}

func (w *walker) timingRepeat(path string, r *r4.TimingRepeat) {
	w.duration(join(path, "boundsDuration"), r.BoundsDuration)
	w.rangeValue(join(path, "boundsRange"), r.BoundsRange)
	w.period(join(path, "boundsPeriod"), r.BoundsPeriod)

	w.code(join(path, "durationUnit"), r.DurationUnit)
	w.code(join(path, "periodUnit"), r.PeriodUnit)
	for i, d := range r.DayOfWeek {
		w.code(at(join(path, "dayOfWeek"), i), d)
	}
	for i, e := range r.When {
		w.code(at(join(path, "when"), i), e)
	}

	intPair(w, join(path, "countMax"), r.Count, r.CountMax)
	floatPair(w, join(path, "durationMax"), r.Duration, r.DurationMax)
	intPair(w, join(path, "frequencyMax"), r.Frequency, r.FrequencyMax)
	floatPair(w, join(path, "periodMax"), r.Period, r.PeriodMax)
}

func intPair(w *walker, path string, base, limit *int) {
	if base != nil && limit != nil && *limit < *base {
		w.add(phaseRange, path, InvalidRange, "%d is less than %d", *limit, *base)
	}
}

func floatPair(w *walker, path string, base, limit *float64) {
	if base != nil && limit != nil && *limit < *base {
		w.add(phaseRange, path, InvalidRange, "%g is less than %g", *limit, *base)
	}
}

func (w *walker) practitioner(p *r4.Practitioner) {
	w.id(p.ID)
	w.identifiers("identifier", p.Identifier)
	w.names("name", p.Name)
	w.telecoms("telecom", p.Telecom)
	w.addresses("address", p.Address)
	w.code("gender", p.Gender)
	for i := range p.Qualification {
		q := &p.Qualification[i]
		path := at("qualification", i)
		w.identifiers(join(path, "identifier"), q.Identifier)
		w.required(join(path, "code"), q.Code == nil || (len(q.Code.Coding) == 0 && q.Code.Text == ""))
		w.period(join(path, "period"), q.Period)
		w.reference(join(path, "issuer"), q.Issuer)
	}
	w.choices(p.ChoiceGroups())
}
