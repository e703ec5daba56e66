// Package validation checks clinical resources against their structural contract.
//
// Validation never fails on data-quality defects; those are collected as
// Violations in the Result. An error is returned only when the input cannot be
// checked at all (see ErrMalformedResource and ErrUnknownKind).
package validation

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/afmhelaluddin77/EMR/internal/fhir/r4"
)

// ViolationKind classifies a data-quality defect.
type ViolationKind string

const (
	MissingRequired          ViolationKind = "MissingRequired"
	InvalidEnumValue         ViolationKind = "InvalidEnumValue"
	ChoiceConflict           ViolationKind = "ChoiceConflict"
	InvalidRange             ViolationKind = "InvalidRange"
	IncomparableUnits        ViolationKind = "IncomparableUnits"
	InconsistentDerivedValue ViolationKind = "InconsistentDerivedValue"
)

// IssueCode returns the OperationOutcome issue type for the kind.
func (k ViolationKind) IssueCode() string {
	switch k {
	case MissingRequired:
		return r4.IssueRequired
	case InvalidEnumValue:
		return r4.IssueCodeInvalid
	case ChoiceConflict:
		return r4.IssueStructure
	case InvalidRange, IncomparableUnits:
		return r4.IssueValue
	case InconsistentDerivedValue:
		return r4.IssueInvariant
	default:
		return r4.IssueInvalid
	}
}

// Violation is a single defect found in a resource.
type Violation struct {
	Path    string        `json:"path"`
	Kind    ViolationKind `json:"kind"`
	Message string        `json:"message"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s (%s)", v.Path, v.Message, v.Kind)
}

// Result is the outcome of validating one resource.
type Result struct {
	ResourceKind r4.ResourceKind `json:"resourceKind"`
	Violations   []Violation     `json:"violations,omitempty"`
}

// Valid reports whether no violations were found.
func (r Result) Valid() bool {
	return len(r.Violations) == 0
}

// Filter returns the violations of the given kind, in order.
func (r Result) Filter(kind ViolationKind) []Violation {
	var out []Violation
	for _, v := range r.Violations {
		if v.Kind == kind {
			out = append(out, v)
		}
	}
	return out
}

// ToOperationOutcome renders the result as a FHIR OperationOutcome.
func (r Result) ToOperationOutcome() *r4.OperationOutcome {
	issues := make([]r4.OperationOutcomeIssue, 0, len(r.Violations))
	for _, v := range r.Violations {
		issues = append(issues, r4.OperationOutcomeIssue{
			Severity:    r4.SeverityError,
			Code:        v.Kind.IssueCode(),
			Diagnostics: v.Message,
			Expression:  []string{v.Path},
		})
	}
	return r4.NewOperationOutcome(issues...)
}

var (
	// ErrMalformedResource means the input is not a resource of the requested kind.
	ErrMalformedResource = errors.New("malformed resource")
	// ErrUnknownKind means the resource kind selector is not supported.
	ErrUnknownKind = errors.New("unknown resource kind")
)

// PreconditionError describes why a resource could not be validated.
type PreconditionError struct {
	ResourceKind r4.ResourceKind
	Reason       string
	Err          error
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("validate %s: %s: %v", e.ResourceKind, e.Reason, e.Err)
}

func (e *PreconditionError) Unwrap() error {
	return e.Err
}

func malformed(kind r4.ResourceKind, format string, args ...any) error {
	return &PreconditionError{ResourceKind: kind, Reason: fmt.Sprintf(format, args...), Err: ErrMalformedResource}
}

type options struct {
	requireID bool
}

// Option configures a validation run.
type Option func(*options)

// RequireID makes id mandatory, as for update operations.
func RequireID() Option {
	return func(o *options) { o.requireID = true }
}

// Validate checks resource against the contract of kind. resource must be an
// r4 resource value or pointer matching kind. The input is never modified.
func Validate(resource any, kind r4.ResourceKind, opts ...Option) (Result, error) {
	if !kind.Valid() {
		return Result{}, &PreconditionError{ResourceKind: kind, Reason: "unsupported resource kind", Err: ErrUnknownKind}
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	w := &walker{opts: o}

	switch kind {
	case r4.KindAppointment:
		a, err := as[r4.Appointment](resource, kind)
		if err != nil {
			return Result{}, err
		}
		if err := checkResourceType(a.ResourceType, kind); err != nil {
			return Result{}, err
		}
		w.appointment(a)
	case r4.KindMedication:
		m, err := as[r4.Medication](resource, kind)
		if err != nil {
			return Result{}, err
		}
		if err := checkResourceType(m.ResourceType, kind); err != nil {
			return Result{}, err
		}
		w.medication(m)
	case r4.KindMedicationRequest:
		m, err := as[r4.MedicationRequest](resource, kind)
		if err != nil {
			return Result{}, err
		}
		if err := checkResourceType(m.ResourceType, kind); err != nil {
			return Result{}, err
		}
		w.medicationRequest(m)
	case r4.KindPractitioner:
		p, err := as[r4.Practitioner](resource, kind)
		if err != nil {
			return Result{}, err
		}
		if err := checkResourceType(p.ResourceType, kind); err != nil {
			return Result{}, err
		}
		w.practitioner(p)
	}

	return Result{ResourceKind: kind, Violations: w.violations()}, nil
}

// ValidateJSON decodes data as a resource of kind and validates it.
// JSON that does not fit the resource shape is a precondition error.
func ValidateJSON(data []byte, kind r4.ResourceKind, opts ...Option) (Result, error) {
	resource, err := Decode(data, kind)
	if err != nil {
		return Result{}, err
	}
	return Validate(resource, kind, opts...)
}

// Decode unmarshals data into the r4 type for kind and returns a pointer to it.
func Decode(data []byte, kind r4.ResourceKind) (any, error) {
	var resource any
	switch kind {
	case r4.KindAppointment:
		resource = &r4.Appointment{}
	case r4.KindMedication:
		resource = &r4.Medication{}
	case r4.KindMedicationRequest:
		resource = &r4.MedicationRequest{}
	case r4.KindPractitioner:
		resource = &r4.Practitioner{}
	default:
		return nil, &PreconditionError{ResourceKind: kind, Reason: "unsupported resource kind", Err: ErrUnknownKind}
	}
	if err := json.Unmarshal(data, resource); err != nil {
		return nil, &PreconditionError{ResourceKind: kind, Reason: "decode: " + err.Error(), Err: ErrMalformedResource}
	}
	return resource, nil
}

func as[T any](resource any, kind r4.ResourceKind) (*T, error) {
	switch v := resource.(type) {
	case nil:
		return nil, malformed(kind, "nil resource")
	case *T:
		if v == nil {
			return nil, malformed(kind, "nil resource")
		}
		return v, nil
	case T:
		return &v, nil
	}
	return nil, malformed(kind, "unexpected type %T", resource)
}

func checkResourceType(rt string, kind r4.ResourceKind) error {
	if rt != "" && rt != string(kind) {
		return malformed(kind, "resourceType is %q", rt)
	}
	return nil
}
