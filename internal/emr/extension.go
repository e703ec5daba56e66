// Package emr holds EMR-specific records that extend base clinical resources.
//
// Extensions refer to their base resource by identifier only. They never
// embed or own the base resource, and nothing here enforces that the base
// exists; see Index.Orphans for detecting dangling links.
package emr

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/afmhelaluddin77/EMR/internal/fhir/r4"
	"github.com/afmhelaluddin77/EMR/internal/validation"
)

// BillingStatus is the billing state of an appointment.
type BillingStatus string

const (
	BillingPending   BillingStatus = "pending"
	BillingBilled    BillingStatus = "billed"
	BillingPaid      BillingStatus = "paid"
	BillingCancelled BillingStatus = "cancelled"
)

// InsuranceInfo is the coverage applied to an appointment.
type InsuranceInfo struct {
	Provider     string   `json:"provider" validate:"required"`
	PolicyNumber string   `json:"policyNumber" validate:"required"`
	Coverage     *float64 `json:"coverage" validate:"required,gte=0,lte=100"`
}

// AppointmentExtension carries EMR data for one Appointment. AppointmentID
// must equal the base Appointment id verbatim.
type AppointmentExtension struct {
	AppointmentID    string         `json:"appointmentId" validate:"required"`
	CreatedBy        string         `json:"createdBy" validate:"required"`
	LastModifiedBy   string         `json:"lastModifiedBy" validate:"required"`
	LastModifiedDate string         `json:"lastModifiedDate" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Department       string         `json:"department" validate:"required"`
	Room             string         `json:"room,omitempty"`
	Notes            string         `json:"notes,omitempty"`
	FollowUpRequired bool           `json:"followUpRequired,omitempty"`
	FollowUpDate     string         `json:"followUpDate,omitempty" validate:"required_if=FollowUpRequired true,omitempty,fhirdate"`
	BillingStatus    BillingStatus  `json:"billingStatus" validate:"required,oneof=pending billed paid cancelled"`
	InsuranceInfo    *InsuranceInfo `json:"insuranceInfo,omitempty" validate:"omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("fhirdate", validateFHIRDate); err != nil {
		panic(fmt.Sprintf("emr: register fhirdate: %v", err))
	}
	return v
}

// validateFHIRDate accepts YYYY-MM-DD or an RFC 3339 date-time.
func validateFHIRDate(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if _, err := time.Parse(time.DateOnly, s); err == nil {
		return true
	}
	_, err := time.Parse(time.RFC3339, s)
	return err == nil
}

// Validate checks the extension's struct tags and reports failures with the
// same violation kinds as resource validation.
func (e *AppointmentExtension) Validate() validation.Result {
	var result validation.Result
	err := validate.Struct(e)
	if err == nil {
		return result
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		result.Violations = append(result.Violations, validation.Violation{
			Kind:    validation.InvalidRange,
			Message: err.Error(),
		})
		return result
	}
	for _, fe := range errs {
		result.Violations = append(result.Violations, toViolation(fe))
	}
	return result
}

func toViolation(fe validator.FieldError) validation.Violation {
	path := fe.Namespace()
	if i := strings.IndexByte(path, '.'); i >= 0 {
		path = path[i+1:]
	}

	v := validation.Violation{Path: path}
	switch fe.Tag() {
	case "required", "required_if":
		v.Kind = validation.MissingRequired
		v.Message = path + " is required"
	case "oneof":
		v.Kind = validation.InvalidEnumValue
		v.Message = "value is not one of [" + strings.Join(strings.Fields(fe.Param()), ", ") + "]"
	case "gte":
		v.Kind = validation.InvalidRange
		v.Message = "must be at least " + fe.Param()
	case "lte":
		v.Kind = validation.InvalidRange
		v.Message = "must be at most " + fe.Param()
	case "datetime", "fhirdate":
		v.Kind = validation.InvalidRange
		v.Message = "is not a valid date"
	default:
		v.Kind = validation.InvalidRange
		v.Message = "failed " + fe.Tag()
	}
	return v
}

// LinksTo reports whether the extension belongs to appointment a.
func (e *AppointmentExtension) LinksTo(a *r4.Appointment) bool {
	return a != nil && a.ID != "" && a.ID == e.AppointmentID
}
