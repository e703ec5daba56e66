// Package r4 provides FHIR R4 data structures for the EMR clinical resource model.
package r4

// Meta contains identity and versioning metadata about a resource.
type Meta struct {
	VersionID   string   `json:"versionId,omitempty"`
	LastUpdated string   `json:"lastUpdated,omitempty"`
	Source      string   `json:"source,omitempty"`
	Profile     []string `json:"profile,omitempty"`
	Security    []Coding `json:"security,omitempty"`
	Tag         []Coding `json:"tag,omitempty"`
}

// Identifier represents a FHIR Identifier. Uniqueness is the caller's concern.
type Identifier struct {
	Use      IdentifierUse    `json:"use,omitempty"`
	Type     *CodeableConcept `json:"type,omitempty"`
	System   string           `json:"system,omitempty"`
	Value    string           `json:"value,omitempty"`
	Period   *Period          `json:"period,omitempty"`
	Assigner *Reference       `json:"assigner,omitempty"`
}

// CodeableConcept represents a controlled-vocabulary concept with a free-text fallback.
type CodeableConcept struct {
	Coding []Coding `json:"coding,omitempty"`
	Text   string   `json:"text,omitempty"`
}

// Coding represents a code from a terminology system.
type Coding struct {
	System       string `json:"system,omitempty"`
	Version      string `json:"version,omitempty"`
	Code         string `json:"code,omitempty"`
	Display      string `json:"display,omitempty"`
	UserSelected bool   `json:"userSelected,omitempty"`
}

// Reference points at another resource. It is never dereferenced here.
type Reference struct {
	Reference  string      `json:"reference,omitempty"`
	Type       string      `json:"type,omitempty"`
	Identifier *Identifier `json:"identifier,omitempty"`
	Display    string      `json:"display,omitempty"`
}

// IsEmpty reports whether no part of the reference is populated.
func (r *Reference) IsEmpty() bool {
	return r == nil || (r.Reference == "" && r.Type == "" && r.Identifier == nil && r.Display == "")
}

// Period is a time range; both ends are ISO-8601 strings and optional.
type Period struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// Quantity represents a measured amount.
type Quantity struct {
	Value      *float64   `json:"value,omitempty"`
	Comparator Comparator `json:"comparator,omitempty"`
	Unit       string     `json:"unit,omitempty"`
	System     string     `json:"system,omitempty"`
	Code       string     `json:"code,omitempty"`
}

// NewQuantity returns a UCUM-free quantity carrying value and unit.
func NewQuantity(value float64, unit string) *Quantity {
	return &Quantity{Value: &value, Unit: unit}
}

// Duration is a Quantity with a temporal unit.
type Duration struct {
	Value      *float64   `json:"value,omitempty"`
	Comparator Comparator `json:"comparator,omitempty"`
	Unit       string     `json:"unit,omitempty"`
	System     string     `json:"system,omitempty"`
	Code       string     `json:"code,omitempty"`
}

// Range represents a low/high pair of quantities.
type Range struct {
	Low  *Quantity `json:"low,omitempty"`
	High *Quantity `json:"high,omitempty"`
}

// Ratio represents a ratio between two quantities.
type Ratio struct {
	Numerator   *Quantity `json:"numerator,omitempty"`
	Denominator *Quantity `json:"denominator,omitempty"`
}

// Annotation represents a note or comment.
type Annotation struct {
	AuthorReference *Reference `json:"authorReference,omitempty"`
	AuthorString    string     `json:"authorString,omitempty"`
	Time            string     `json:"time,omitempty"`
	Text            string     `json:"text"`
}

// HumanName represents a human name.
type HumanName struct {
	Use    NameUse  `json:"use,omitempty"`
	Text   string   `json:"text,omitempty"`
	Family string   `json:"family,omitempty"`
	Given  []string `json:"given,omitempty"`
	Prefix []string `json:"prefix,omitempty"`
	Suffix []string `json:"suffix,omitempty"`
	Period *Period  `json:"period,omitempty"`
}

// Address represents a postal address.
type Address struct {
	Use        AddressUse  `json:"use,omitempty"`
	Type       AddressType `json:"type,omitempty"`
	Text       string      `json:"text,omitempty"`
	Line       []string    `json:"line,omitempty"`
	City       string      `json:"city,omitempty"`
	District   string      `json:"district,omitempty"`
	State      string      `json:"state,omitempty"`
	PostalCode string      `json:"postalCode,omitempty"`
	Country    string      `json:"country,omitempty"`
	Period     *Period     `json:"period,omitempty"`
}

// ContactPoint represents a contact detail.
type ContactPoint struct {
	System ContactPointSystem `json:"system,omitempty"`
	Value  string             `json:"value,omitempty"`
	Use    ContactPointUse    `json:"use,omitempty"`
	Rank   int                `json:"rank,omitempty"`
	Period *Period            `json:"period,omitempty"`
}

// Attachment carries inline or referenced content such as a photo.
type Attachment struct {
	ContentType string `json:"contentType,omitempty"`
	Language    string `json:"language,omitempty"`
	Data        string `json:"data,omitempty"`
	URL         string `json:"url,omitempty"`
	Size        int    `json:"size,omitempty"`
	Hash        string `json:"hash,omitempty"`
	Title       string `json:"title,omitempty"`
	Creation    string `json:"creation,omitempty"`
}

// Common code systems
const (
	SystemRxNorm = "http://www.nlm.nih.gov/research/umls/rxnorm"
	SystemNDC    = "http://hl7.org/fhir/sid/ndc"
	SystemSNOMED = "http://snomed.info/sct"
	SystemLOINC  = "http://loinc.org"
	SystemNPI    = "http://hl7.org/fhir/sid/us-npi"
	SystemUCUM   = "http://unitsofmeasure.org"
)

// extractIDFromReference extracts the ID from a FHIR reference string.
func extractIDFromReference(ref string) string {
	// Handle references like "Patient/123" or "urn:uuid:123"
	for i := len(ref) - 1; i >= 0; i-- {
		if ref[i] == '/' || ref[i] == ':' {
			return ref[i+1:]
		}
	}
	return ref
}
