package r4

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCode is returned when a literal is not a member of a closed value set.
var ErrInvalidCode = errors.New("invalid code")

// CodeError reports a literal rejected by a Parse constructor.
type CodeError struct {
	Field   string
	Value   string
	Allowed []string
}

func (e *CodeError) Error() string {
	return fmt.Sprintf("%s: %q is not one of [%s]", e.Field, e.Value, strings.Join(e.Allowed, ", "))
}

func (e *CodeError) Unwrap() error {
	return ErrInvalidCode
}

// Code is implemented by every closed enumeration in this package.
// The zero value of each enumeration means "absent".
type Code interface {
	String() string
	Valid() bool
	Allowed() []string
}

type codeSet[T ~string] []T

func (s codeSet[T]) contains(v T) bool {
	for _, c := range s {
		if c == v {
			return true
		}
	}
	return false
}

func (s codeSet[T]) strings() []string {
	out := make([]string, len(s))
	for i, c := range s {
		out[i] = string(c)
	}
	return out
}

func parseCode[T ~string](set codeSet[T], field, v string) (T, error) {
	if set.contains(T(v)) {
		return T(v), nil
	}
	return "", &CodeError{Field: field, Value: v, Allowed: set.strings()}
}

// ResourceKind selects which resource contract a payload is checked against.
type ResourceKind string

const (
	KindAppointment       ResourceKind = "Appointment"
	KindMedication        ResourceKind = "Medication"
	KindMedicationRequest ResourceKind = "MedicationRequest"
	KindPractitioner      ResourceKind = "Practitioner"
)

var resourceKinds = codeSet[ResourceKind]{KindAppointment, KindMedication, KindMedicationRequest, KindPractitioner}

func (k ResourceKind) String() string  { return string(k) }
func (k ResourceKind) Valid() bool     { return resourceKinds.contains(k) }
func (k ResourceKind) Allowed() []string { return resourceKinds.strings() }

// ParseResourceKind returns the kind named by v.
func ParseResourceKind(v string) (ResourceKind, error) {
	return parseCode(resourceKinds, "resourceType", v)
}

// AppointmentStatus is the lifecycle status of an Appointment.
type AppointmentStatus string

const (
	AppointmentProposed       AppointmentStatus = "proposed"
	AppointmentPending        AppointmentStatus = "pending"
	AppointmentBooked         AppointmentStatus = "booked"
	AppointmentArrived        AppointmentStatus = "arrived"
	AppointmentFulfilled      AppointmentStatus = "fulfilled"
	AppointmentCancelled      AppointmentStatus = "cancelled"
	AppointmentNoShow         AppointmentStatus = "noshow"
	AppointmentEnteredInError AppointmentStatus = "entered-in-error"
	AppointmentCheckedIn      AppointmentStatus = "checked-in"
	AppointmentWaitlist       AppointmentStatus = "waitlist"
)

var appointmentStatuses = codeSet[AppointmentStatus]{
	AppointmentProposed, AppointmentPending, AppointmentBooked, AppointmentArrived,
	AppointmentFulfilled, AppointmentCancelled, AppointmentNoShow,
	AppointmentEnteredInError, AppointmentCheckedIn, AppointmentWaitlist,
}

func (s AppointmentStatus) String() string    { return string(s) }
func (s AppointmentStatus) Valid() bool       { return appointmentStatuses.contains(s) }
func (s AppointmentStatus) Allowed() []string { return appointmentStatuses.strings() }

// ParseAppointmentStatus returns the status named by v.
func ParseAppointmentStatus(v string) (AppointmentStatus, error) {
	return parseCode(appointmentStatuses, "Appointment.status", v)
}

// ParticipantRequired says whether a participant must attend.
type ParticipantRequired string

const (
	ParticipantRequiredRequired    ParticipantRequired = "required"
	ParticipantRequiredOptional    ParticipantRequired = "optional"
	ParticipantRequiredInformation ParticipantRequired = "information-only"
)

var participantRequired = codeSet[ParticipantRequired]{
	ParticipantRequiredRequired, ParticipantRequiredOptional, ParticipantRequiredInformation,
}

func (r ParticipantRequired) String() string    { return string(r) }
func (r ParticipantRequired) Valid() bool       { return participantRequired.contains(r) }
func (r ParticipantRequired) Allowed() []string { return participantRequired.strings() }

// ParseParticipantRequired returns the value named by v.
func ParseParticipantRequired(v string) (ParticipantRequired, error) {
	return parseCode(participantRequired, "Appointment.participant.required", v)
}

// ParticipationStatus is a participant's response to an appointment.
type ParticipationStatus string

const (
	ParticipationAccepted    ParticipationStatus = "accepted"
	ParticipationDeclined    ParticipationStatus = "declined"
	ParticipationTentative   ParticipationStatus = "tentative"
	ParticipationNeedsAction ParticipationStatus = "needs-action"
)

var participationStatuses = codeSet[ParticipationStatus]{
	ParticipationAccepted, ParticipationDeclined, ParticipationTentative, ParticipationNeedsAction,
}

func (s ParticipationStatus) String() string    { return string(s) }
func (s ParticipationStatus) Valid() bool       { return participationStatuses.contains(s) }
func (s ParticipationStatus) Allowed() []string { return participationStatuses.strings() }

// ParseParticipationStatus returns the status named by v.
func ParseParticipationStatus(v string) (ParticipationStatus, error) {
	return parseCode(participationStatuses, "Appointment.participant.status", v)
}

// IdentifierUse is the purpose of an identifier.
type IdentifierUse string

const (
	IdentifierUsual     IdentifierUse = "usual"
	IdentifierOfficial  IdentifierUse = "official"
	IdentifierTemp      IdentifierUse = "temp"
	IdentifierSecondary IdentifierUse = "secondary"
	IdentifierOld       IdentifierUse = "old"
)

var identifierUses = codeSet[IdentifierUse]{
	IdentifierUsual, IdentifierOfficial, IdentifierTemp, IdentifierSecondary, IdentifierOld,
}

func (u IdentifierUse) String() string    { return string(u) }
func (u IdentifierUse) Valid() bool       { return identifierUses.contains(u) }
func (u IdentifierUse) Allowed() []string { return identifierUses.strings() }

// ParseIdentifierUse returns the use named by v.
func ParseIdentifierUse(v string) (IdentifierUse, error) {
	return parseCode(identifierUses, "Identifier.use", v)
}

// MedicationStatus is the status of a Medication definition.
type MedicationStatus string

const (
	MedicationActive         MedicationStatus = "active"
	MedicationInactive       MedicationStatus = "inactive"
	MedicationEnteredInError MedicationStatus = "entered-in-error"
)

var medicationStatuses = codeSet[MedicationStatus]{MedicationActive, MedicationInactive, MedicationEnteredInError}

func (s MedicationStatus) String() string    { return string(s) }
func (s MedicationStatus) Valid() bool       { return medicationStatuses.contains(s) }
func (s MedicationStatus) Allowed() []string { return medicationStatuses.strings() }

// ParseMedicationStatus returns the status named by v.
func ParseMedicationStatus(v string) (MedicationStatus, error) {
	return parseCode(medicationStatuses, "Medication.status", v)
}

// MedicationRequestStatus is the lifecycle status of a prescription.
type MedicationRequestStatus string

const (
	StatusActive         MedicationRequestStatus = "active"
	StatusOnHold         MedicationRequestStatus = "on-hold"
	StatusCancelled      MedicationRequestStatus = "cancelled"
	StatusCompleted      MedicationRequestStatus = "completed"
	StatusEnteredInError MedicationRequestStatus = "entered-in-error"
	StatusStopped        MedicationRequestStatus = "stopped"
	StatusDraft          MedicationRequestStatus = "draft"
	StatusUnknown        MedicationRequestStatus = "unknown"
)

var medicationRequestStatuses = codeSet[MedicationRequestStatus]{
	StatusActive, StatusOnHold, StatusCancelled, StatusCompleted,
	StatusEnteredInError, StatusStopped, StatusDraft, StatusUnknown,
}

func (s MedicationRequestStatus) String() string    { return string(s) }
func (s MedicationRequestStatus) Valid() bool       { return medicationRequestStatuses.contains(s) }
func (s MedicationRequestStatus) Allowed() []string { return medicationRequestStatuses.strings() }

// ParseMedicationRequestStatus returns the status named by v.
func ParseMedicationRequestStatus(v string) (MedicationRequestStatus, error) {
	return parseCode(medicationRequestStatuses, "MedicationRequest.status", v)
}

// MedicationRequestIntent is the authority level of a prescription.
type MedicationRequestIntent string

const (
	IntentProposal      MedicationRequestIntent = "proposal"
	IntentPlan          MedicationRequestIntent = "plan"
	IntentOrder         MedicationRequestIntent = "order"
	IntentOriginalOrder MedicationRequestIntent = "original-order"
	IntentReflexOrder   MedicationRequestIntent = "reflex-order"
	IntentFillerOrder   MedicationRequestIntent = "filler-order"
	IntentInstanceOrder MedicationRequestIntent = "instance-order"
	IntentOption        MedicationRequestIntent = "option"
)

var medicationRequestIntents = codeSet[MedicationRequestIntent]{
	IntentProposal, IntentPlan, IntentOrder, IntentOriginalOrder,
	IntentReflexOrder, IntentFillerOrder, IntentInstanceOrder, IntentOption,
}

func (i MedicationRequestIntent) String() string    { return string(i) }
func (i MedicationRequestIntent) Valid() bool       { return medicationRequestIntents.contains(i) }
func (i MedicationRequestIntent) Allowed() []string { return medicationRequestIntents.strings() }

// ParseMedicationRequestIntent returns the intent named by v.
func ParseMedicationRequestIntent(v string) (MedicationRequestIntent, error) {
	return parseCode(medicationRequestIntents, "MedicationRequest.intent", v)
}

// RequestPriority is the urgency of a request.
type RequestPriority string

const (
	PriorityRoutine RequestPriority = "routine"
	PriorityUrgent  RequestPriority = "urgent"
	PriorityASAP    RequestPriority = "asap"
	PriorityStat    RequestPriority = "stat"
)

var requestPriorities = codeSet[RequestPriority]{PriorityRoutine, PriorityUrgent, PriorityASAP, PriorityStat}

func (p RequestPriority) String() string    { return string(p) }
func (p RequestPriority) Valid() bool       { return requestPriorities.contains(p) }
func (p RequestPriority) Allowed() []string { return requestPriorities.strings() }

// ParseRequestPriority returns the priority named by v.
func ParseRequestPriority(v string) (RequestPriority, error) {
	return parseCode(requestPriorities, "MedicationRequest.priority", v)
}

// Comparator qualifies how a quantity value is to be understood.
type Comparator string

const (
	ComparatorLess           Comparator = "<"
	ComparatorLessOrEqual    Comparator = "<="
	ComparatorGreaterOrEqual Comparator = ">="
	ComparatorGreater        Comparator = ">"
)

var comparators = codeSet[Comparator]{ComparatorLess, ComparatorLessOrEqual, ComparatorGreaterOrEqual, ComparatorGreater}

func (c Comparator) String() string    { return string(c) }
func (c Comparator) Valid() bool       { return comparators.contains(c) }
func (c Comparator) Allowed() []string { return comparators.strings() }

// ParseComparator returns the comparator named by v.
func ParseComparator(v string) (Comparator, error) {
	return parseCode(comparators, "Quantity.comparator", v)
}

// UnitsOfTime is a UCUM unit for timing durations and periods.
type UnitsOfTime string

const (
	UnitSecond UnitsOfTime = "s"
	UnitMinute UnitsOfTime = "min"
	UnitHour   UnitsOfTime = "h"
	UnitDay    UnitsOfTime = "d"
	UnitWeek   UnitsOfTime = "wk"
	UnitMonth  UnitsOfTime = "mo"
	UnitYear   UnitsOfTime = "a"
)

var unitsOfTime = codeSet[UnitsOfTime]{UnitSecond, UnitMinute, UnitHour, UnitDay, UnitWeek, UnitMonth, UnitYear}

func (u UnitsOfTime) String() string    { return string(u) }
func (u UnitsOfTime) Valid() bool       { return unitsOfTime.contains(u) }
func (u UnitsOfTime) Allowed() []string { return unitsOfTime.strings() }

// ParseUnitsOfTime returns the unit named by v.
func ParseUnitsOfTime(v string) (UnitsOfTime, error) {
	return parseCode(unitsOfTime, "Timing.repeat.periodUnit", v)
}

// DayOfWeek is a day code used in timing schedules.
type DayOfWeek string

const (
	Monday    DayOfWeek = "mon"
	Tuesday   DayOfWeek = "tue"
	Wednesday DayOfWeek = "wed"
	Thursday  DayOfWeek = "thu"
	Friday    DayOfWeek = "fri"
	Saturday  DayOfWeek = "sat"
	Sunday    DayOfWeek = "sun"
)

var daysOfWeek = codeSet[DayOfWeek]{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

func (d DayOfWeek) String() string    { return string(d) }
func (d DayOfWeek) Valid() bool       { return daysOfWeek.contains(d) }
func (d DayOfWeek) Allowed() []string { return daysOfWeek.strings() }

// ParseDayOfWeek returns the day named by v.
func ParseDayOfWeek(v string) (DayOfWeek, error) {
	return parseCode(daysOfWeek, "Timing.repeat.dayOfWeek", v)
}

// EventTiming is a real-world event relating to a dosing schedule.
type EventTiming string

const (
	TimingMorning        EventTiming = "MORN"
	TimingEarlyMorning   EventTiming = "MORN.early"
	TimingLateMorning    EventTiming = "MORN.late"
	TimingNoon           EventTiming = "NOON"
	TimingAfternoon      EventTiming = "AFT"
	TimingEarlyAfternoon EventTiming = "AFT.early"
	TimingLateAfternoon  EventTiming = "AFT.late"
	TimingEvening        EventTiming = "EVE"
	TimingEarlyEvening   EventTiming = "EVE.early"
	TimingLateEvening    EventTiming = "EVE.late"
	TimingNight          EventTiming = "NIGHT"
	TimingAfterSleep     EventTiming = "PHS"
	TimingBedtime        EventTiming = "HS"
	TimingWake           EventTiming = "WAKE"
	TimingMeal           EventTiming = "C"
	TimingBreakfast      EventTiming = "CM"
	TimingLunch          EventTiming = "CD"
	TimingDinner         EventTiming = "CV"
	TimingBeforeMeal     EventTiming = "AC"
	TimingBeforeBreak    EventTiming = "ACM"
	TimingBeforeLunch    EventTiming = "ACD"
	TimingBeforeDinner   EventTiming = "ACV"
	TimingAfterMeal      EventTiming = "PC"
	TimingAfterBreakfast EventTiming = "PCM"
	TimingAfterLunch     EventTiming = "PCD"
	TimingAfterDinner    EventTiming = "PCV"
)

var eventTimings = codeSet[EventTiming]{
	TimingMorning, TimingEarlyMorning, TimingLateMorning, TimingNoon,
	TimingAfternoon, TimingEarlyAfternoon, TimingLateAfternoon,
	TimingEvening, TimingEarlyEvening, TimingLateEvening, TimingNight,
	TimingAfterSleep, TimingBedtime, TimingWake,
	TimingMeal, TimingBreakfast, TimingLunch, TimingDinner,
	TimingBeforeMeal, TimingBeforeBreak, TimingBeforeLunch, TimingBeforeDinner,
	TimingAfterMeal, TimingAfterBreakfast, TimingAfterLunch, TimingAfterDinner,
}

func (e EventTiming) String() string    { return string(e) }
func (e EventTiming) Valid() bool       { return eventTimings.contains(e) }
func (e EventTiming) Allowed() []string { return eventTimings.strings() }

// ParseEventTiming returns the event named by v.
func ParseEventTiming(v string) (EventTiming, error) {
	return parseCode(eventTimings, "Timing.repeat.when", v)
}

// NameUse is the purpose of a human name.
type NameUse string

const (
	NameUsual     NameUse = "usual"
	NameOfficial  NameUse = "official"
	NameTemp      NameUse = "temp"
	NameNickname  NameUse = "nickname"
	NameAnonymous NameUse = "anonymous"
	NameOld       NameUse = "old"
	NameMaiden    NameUse = "maiden"
)

var nameUses = codeSet[NameUse]{NameUsual, NameOfficial, NameTemp, NameNickname, NameAnonymous, NameOld, NameMaiden}

func (u NameUse) String() string    { return string(u) }
func (u NameUse) Valid() bool       { return nameUses.contains(u) }
func (u NameUse) Allowed() []string { return nameUses.strings() }

// ParseNameUse returns the use named by v.
func ParseNameUse(v string) (NameUse, error) {
	return parseCode(nameUses, "HumanName.use", v)
}

// ContactPointSystem is the telecommunications form of a contact point.
type ContactPointSystem string

const (
	ContactPhone ContactPointSystem = "phone"
	ContactFax   ContactPointSystem = "fax"
	ContactEmail ContactPointSystem = "email"
	ContactPager ContactPointSystem = "pager"
	ContactURL   ContactPointSystem = "url"
	ContactSMS   ContactPointSystem = "sms"
	ContactOther ContactPointSystem = "other"
)

var contactPointSystems = codeSet[ContactPointSystem]{
	ContactPhone, ContactFax, ContactEmail, ContactPager, ContactURL, ContactSMS, ContactOther,
}

func (s ContactPointSystem) String() string    { return string(s) }
func (s ContactPointSystem) Valid() bool       { return contactPointSystems.contains(s) }
func (s ContactPointSystem) Allowed() []string { return contactPointSystems.strings() }

// ParseContactPointSystem returns the system named by v.
func ParseContactPointSystem(v string) (ContactPointSystem, error) {
	return parseCode(contactPointSystems, "ContactPoint.system", v)
}

// ContactPointUse is the purpose of a contact point.
type ContactPointUse string

const (
	ContactUseHome   ContactPointUse = "home"
	ContactUseWork   ContactPointUse = "work"
	ContactUseTemp   ContactPointUse = "temp"
	ContactUseOld    ContactPointUse = "old"
	ContactUseMobile ContactPointUse = "mobile"
)

var contactPointUses = codeSet[ContactPointUse]{ContactUseHome, ContactUseWork, ContactUseTemp, ContactUseOld, ContactUseMobile}

func (u ContactPointUse) String() string    { return string(u) }
func (u ContactPointUse) Valid() bool       { return contactPointUses.contains(u) }
func (u ContactPointUse) Allowed() []string { return contactPointUses.strings() }

// ParseContactPointUse returns the use named by v.
func ParseContactPointUse(v string) (ContactPointUse, error) {
	return parseCode(contactPointUses, "ContactPoint.use", v)
}

// AddressUse is the purpose of an address.
type AddressUse string

const (
	AddressHome    AddressUse = "home"
	AddressWork    AddressUse = "work"
	AddressTemp    AddressUse = "temp"
	AddressOld     AddressUse = "old"
	AddressBilling AddressUse = "billing"
)

var addressUses = codeSet[AddressUse]{AddressHome, AddressWork, AddressTemp, AddressOld, AddressBilling}

func (u AddressUse) String() string    { return string(u) }
func (u AddressUse) Valid() bool       { return addressUses.contains(u) }
func (u AddressUse) Allowed() []string { return addressUses.strings() }

// ParseAddressUse returns the use named by v.
func ParseAddressUse(v string) (AddressUse, error) {
	return parseCode(addressUses, "Address.use", v)
}

// AddressType distinguishes postal and physical addresses.
type AddressType string

const (
	AddressPostal   AddressType = "postal"
	AddressPhysical AddressType = "physical"
	AddressBoth     AddressType = "both"
)

var addressTypes = codeSet[AddressType]{AddressPostal, AddressPhysical, AddressBoth}

func (t AddressType) String() string    { return string(t) }
func (t AddressType) Valid() bool       { return addressTypes.contains(t) }
func (t AddressType) Allowed() []string { return addressTypes.strings() }

// ParseAddressType returns the type named by v.
func ParseAddressType(v string) (AddressType, error) {
	return parseCode(addressTypes, "Address.type", v)
}

// AdministrativeGender is the gender used for administrative purposes.
type AdministrativeGender string

const (
	GenderMale    AdministrativeGender = "male"
	GenderFemale  AdministrativeGender = "female"
	GenderOther   AdministrativeGender = "other"
	GenderUnknown AdministrativeGender = "unknown"
)

var genders = codeSet[AdministrativeGender]{GenderMale, GenderFemale, GenderOther, GenderUnknown}

func (g AdministrativeGender) String() string    { return string(g) }
func (g AdministrativeGender) Valid() bool       { return genders.contains(g) }
func (g AdministrativeGender) Allowed() []string { return genders.strings() }

// ParseAdministrativeGender returns the gender named by v.
func ParseAdministrativeGender(v string) (AdministrativeGender, error) {
	return parseCode(genders, "Practitioner.gender", v)
}
