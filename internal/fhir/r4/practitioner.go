package r4

import "strings"

// Practitioner represents a FHIR R4 Practitioner resource.
type Practitioner struct {
	ResourceType  string                      `json:"resourceType"`
	ID            string                      `json:"id,omitempty"`
	Meta          *Meta                       `json:"meta,omitempty"`
	Identifier    []Identifier                `json:"identifier,omitempty"`
	Active        *bool                       `json:"active,omitempty"`
	Name          []HumanName                 `json:"name,omitempty"`
	Telecom       []ContactPoint              `json:"telecom,omitempty"`
	Address       []Address                   `json:"address,omitempty"`
	Gender        AdministrativeGender        `json:"gender,omitempty"`
	BirthDate     string                      `json:"birthDate,omitempty"`
	Photo         []Attachment                `json:"photo,omitempty"`
	Qualification []PractitionerQualification `json:"qualification,omitempty"`
	Communication []CodeableConcept           `json:"communication,omitempty"`
}

// PractitionerQualification represents a practitioner's qualifications.
// Code is required.
type PractitionerQualification struct {
	Identifier []Identifier     `json:"identifier,omitempty"`
	Code       *CodeableConcept `json:"code,omitempty"`
	Period     *Period          `json:"period,omitempty"`
	Issuer     *Reference       `json:"issuer,omitempty"`
}

// GetNPI returns the practitioner's NPI.
func (p *Practitioner) GetNPI() string {
	for _, id := range p.Identifier {
		if id.System == SystemNPI {
			return id.Value
		}
	}
	return ""
}

// GetOfficialName returns the practitioner's official name, or the first available.
func (p *Practitioner) GetOfficialName() *HumanName {
	for i := range p.Name {
		if p.Name[i].Use == NameOfficial {
			return &p.Name[i]
		}
	}
	if len(p.Name) > 0 {
		return &p.Name[0]
	}
	return nil
}

// GetFullName returns the practitioner's full name as a string,
// e.g. "Dr. Ana Lopez, MD".
func (p *Practitioner) GetFullName() string {
	name := p.GetOfficialName()
	if name == nil {
		return ""
	}
	if name.Text != "" {
		return name.Text
	}
	parts := append(append([]string{}, name.Prefix...), name.Given...)
	if name.Family != "" {
		parts = append(parts, name.Family)
	}
	full := strings.Join(parts, " ")
	for _, suffix := range name.Suffix {
		full += ", " + suffix
	}
	return full
}

// ChoiceGroups returns the choice groups present in the practitioner.
// Practitioner declares none.
func (p *Practitioner) ChoiceGroups() []ChoiceGroup {
	return nil
}
