package r4

import (
	"strings"
	"time"
)

// Appointment represents a FHIR R4 Appointment resource.
type Appointment struct {
	ResourceType string       `json:"resourceType"`
	ID           string       `json:"id,omitempty"`
	Meta         *Meta        `json:"meta,omitempty"`
	Identifier   []Identifier `json:"identifier,omitempty"`

	Status            AppointmentStatus `json:"status"`
	CancelationReason *CodeableConcept  `json:"cancelationReason,omitempty"`

	ServiceCategory []CodeableConcept `json:"serviceCategory,omitempty"`
	ServiceType     []CodeableConcept `json:"serviceType,omitempty"`
	Specialty       []CodeableConcept `json:"specialty,omitempty"`
	AppointmentType *CodeableConcept  `json:"appointmentType,omitempty"`
	ReasonCode      []CodeableConcept `json:"reasonCode,omitempty"`
	ReasonReference []Reference       `json:"reasonReference,omitempty"`

	// Priority is any number; lower is conventionally more urgent.
	Priority              *float64    `json:"priority,omitempty"`
	Description           string      `json:"description,omitempty"`
	SupportingInformation []Reference `json:"supportingInformation,omitempty"`

	// Start and End are instants; MinutesDuration must agree with them when all three are set.
	Start           string      `json:"start,omitempty"`
	End             string      `json:"end,omitempty"`
	MinutesDuration *int        `json:"minutesDuration,omitempty"`
	Slot            []Reference `json:"slot,omitempty"`
	Created         string      `json:"created,omitempty"`

	Comment            string      `json:"comment,omitempty"`
	PatientInstruction string      `json:"patientInstruction,omitempty"`
	BasedOn            []Reference `json:"basedOn,omitempty"`

	Participant     []AppointmentParticipant `json:"participant"`
	RequestedPeriod []Period                 `json:"requestedPeriod,omitempty"`
}

// AppointmentParticipant is one attendee of an appointment.
type AppointmentParticipant struct {
	Type     []CodeableConcept   `json:"type,omitempty"`
	Actor    *Reference          `json:"actor,omitempty"`
	Required ParticipantRequired `json:"required,omitempty"`
	Status   ParticipationStatus `json:"status"`
	Period   *Period             `json:"period,omitempty"`
}

// NewAppointment returns an Appointment with its resourceType set.
func NewAppointment(id string, status AppointmentStatus) *Appointment {
	return &Appointment{ResourceType: string(KindAppointment), ID: id, Status: status}
}

// AddParticipant appends a participant referencing actor.
func (a *Appointment) AddParticipant(actor string, status ParticipationStatus) {
	a.Participant = append(a.Participant, AppointmentParticipant{
		Actor:  &Reference{Reference: actor},
		Status: status,
	})
}

// GetPatientID returns the id of the first participant that references a Patient.
func (a *Appointment) GetPatientID() string {
	return a.actorID("Patient/")
}

// GetPractitionerID returns the id of the first participant that references a Practitioner.
func (a *Appointment) GetPractitionerID() string {
	return a.actorID("Practitioner/")
}

func (a *Appointment) actorID(prefix string) string {
	for _, p := range a.Participant {
		if p.Actor != nil && strings.HasPrefix(p.Actor.Reference, prefix) {
			return extractIDFromReference(p.Actor.Reference)
		}
	}
	return ""
}

// Window parses Start and End. ok is false unless both are RFC 3339 instants.
func (a *Appointment) Window() (start, end time.Time, ok bool) {
	var err error
	if start, err = time.Parse(time.RFC3339, a.Start); err != nil {
		return time.Time{}, time.Time{}, false
	}
	if end, err = time.Parse(time.RFC3339, a.End); err != nil {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// ChoiceGroups returns the choice groups present in the appointment.
// Appointment itself declares none.
func (a *Appointment) ChoiceGroups() []ChoiceGroup {
	return nil
}
