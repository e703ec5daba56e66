package r4

// Medication represents a FHIR R4 Medication resource.
type Medication struct {
	ResourceType string                 `json:"resourceType"`
	ID           string                 `json:"id,omitempty"`
	Meta         *Meta                  `json:"meta,omitempty"`
	Identifier   []Identifier           `json:"identifier,omitempty"`
	Code         *CodeableConcept       `json:"code,omitempty"`
	Status       MedicationStatus       `json:"status,omitempty"`
	Manufacturer *Reference             `json:"manufacturer,omitempty"`
	Form         *CodeableConcept       `json:"form,omitempty"`
	Amount       *Ratio                 `json:"amount,omitempty"`
	Ingredient   []MedicationIngredient `json:"ingredient,omitempty"`
	Batch        *MedicationBatch       `json:"batch,omitempty"`
}

// MedicationIngredient is one active or inactive constituent.
type MedicationIngredient struct {
	ItemCodeableConcept *CodeableConcept `json:"itemCodeableConcept,omitempty"`
	ItemReference       *Reference       `json:"itemReference,omitempty"`
	IsActive            *bool            `json:"isActive,omitempty"`
	Strength            *Ratio           `json:"strength,omitempty"`
}

// MedicationBatch identifies the packaged lot.
type MedicationBatch struct {
	LotNumber      string `json:"lotNumber,omitempty"`
	ExpirationDate string `json:"expirationDate,omitempty"`
}

func (in *MedicationIngredient) itemGroup(path string) ChoiceGroup {
	return newGroup(path, true,
		member{"itemCodeableConcept", in.ItemCodeableConcept != nil},
		member{"itemReference", in.ItemReference != nil},
	)
}

// GetItem returns item[x]. The group is exactly-one.
func (in *MedicationIngredient) GetItem() (IngredientItem, error) {
	if err := in.itemGroup("item[x]").check(); err != nil {
		return nil, err
	}
	if in.ItemCodeableConcept != nil {
		return in.ItemCodeableConcept, nil
	}
	return in.ItemReference, nil
}

// SetItem populates item[x] with v and clears the other member.
func (in *MedicationIngredient) SetItem(v IngredientItem) {
	in.ItemCodeableConcept, in.ItemReference = nil, nil
	switch x := v.(type) {
	case *CodeableConcept:
		in.ItemCodeableConcept = x
	case *Reference:
		in.ItemReference = x
	}
}

// GetRxNorm returns the RxNorm code of the medication, if coded.
func (m *Medication) GetRxNorm() string {
	return codeIn(m.Code, SystemRxNorm)
}

// ActiveIngredients returns the ingredients flagged active.
func (m *Medication) ActiveIngredients() []MedicationIngredient {
	var out []MedicationIngredient
	for _, in := range m.Ingredient {
		if in.IsActive != nil && *in.IsActive {
			out = append(out, in)
		}
	}
	return out
}

// ChoiceGroups returns every item[x] group of the ingredient list.
func (m *Medication) ChoiceGroups() []ChoiceGroup {
	var groups []ChoiceGroup
	for i := range m.Ingredient {
		groups = append(groups, m.Ingredient[i].itemGroup(indexed("ingredient", i, "item[x]")))
	}
	return groups
}

func codeIn(cc *CodeableConcept, system string) string {
	if cc == nil {
		return ""
	}
	for _, coding := range cc.Coding {
		if coding.System == system {
			return coding.Code
		}
	}
	return ""
}
