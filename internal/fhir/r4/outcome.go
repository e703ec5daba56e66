package r4

// Issue severities.
const (
	SeverityFatal       = "fatal"
	SeverityError       = "error"
	SeverityWarning     = "warning"
	SeverityInformation = "information"
)

// Issue type codes used by this module.
const (
	IssueRequired    = "required"
	IssueCodeInvalid = "code-invalid"
	IssueStructure   = "structure"
	IssueValue       = "value"
	IssueInvariant   = "invariant"
	IssueInvalid     = "invalid"
	IssueInformation = "informational"
)

// OperationOutcome represents a FHIR OperationOutcome resource.
type OperationOutcome struct {
	ResourceType string                  `json:"resourceType"`
	Issue        []OperationOutcomeIssue `json:"issue"`
}

// OperationOutcomeIssue represents a single issue in an OperationOutcome.
type OperationOutcomeIssue struct {
	Severity    string           `json:"severity"` // fatal | error | warning | information
	Code        string           `json:"code"`
	Details     *CodeableConcept `json:"details,omitempty"`
	Diagnostics string           `json:"diagnostics,omitempty"`
	Expression  []string         `json:"expression,omitempty"`
}

// NewOperationOutcome creates a new OperationOutcome with the given issues.
// An empty issue list yields a single informational "all OK" issue.
func NewOperationOutcome(issues ...OperationOutcomeIssue) *OperationOutcome {
	if len(issues) == 0 {
		issues = []OperationOutcomeIssue{{
			Severity:    SeverityInformation,
			Code:        IssueInformation,
			Diagnostics: "All OK",
		}}
	}
	return &OperationOutcome{
		ResourceType: "OperationOutcome",
		Issue:        issues,
	}
}

// NewErrorOutcome creates an OperationOutcome with a single error issue.
func NewErrorOutcome(code, diagnostics string) *OperationOutcome {
	return NewOperationOutcome(OperationOutcomeIssue{
		Severity:    SeverityError,
		Code:        code,
		Diagnostics: diagnostics,
	})
}

// HasErrors reports whether any issue is an error or fatal.
func (o *OperationOutcome) HasErrors() bool {
	for _, issue := range o.Issue {
		if issue.Severity == SeverityError || issue.Severity == SeverityFatal {
			return true
		}
	}
	return false
}
