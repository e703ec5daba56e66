package r4

import (
	"errors"
	"fmt"
)

var (
	// ErrChoiceConflict is returned when more than one member of a choice group is populated.
	ErrChoiceConflict = errors.New("choice group has more than one member populated")
	// ErrChoiceMissing is returned when an exactly-one choice group has no member populated.
	ErrChoiceMissing = errors.New("choice group has no member populated")
)

// Flag is the boolean alternative of a choice group, e.g. reportedBoolean.
type Flag bool

// AuthorName is the free-text alternative of Annotation.author[x].
type AuthorName string

// MedicationItem is medication[x]: *CodeableConcept or *Reference.
type MedicationItem interface{ medicationItem() }

// IngredientItem is Medication.ingredient.item[x]: *CodeableConcept or *Reference.
type IngredientItem interface{ ingredientItem() }

// ReportedValue is reported[x]: Flag or *Reference.
type ReportedValue interface{ reportedValue() }

// AsNeededValue is Dosage.asNeeded[x]: Flag or *CodeableConcept.
type AsNeededValue interface{ asNeededValue() }

// DoseValue is doseAndRate.dose[x]: *Range or *Quantity.
type DoseValue interface{ doseValue() }

// RateValue is doseAndRate.rate[x]: *Ratio, *Range or *Quantity.
type RateValue interface{ rateValue() }

// BoundsValue is Timing.repeat.bounds[x]: *Duration, *Range or *Period.
type BoundsValue interface{ boundsValue() }

// AllowedValue is substitution.allowed[x]: Flag or *CodeableConcept.
type AllowedValue interface{ allowedValue() }

// AuthorValue is Annotation.author[x]: *Reference or AuthorName.
type AuthorValue interface{ authorValue() }

func (*CodeableConcept) medicationItem() {}
func (*Reference) medicationItem()       {}

func (*CodeableConcept) ingredientItem() {}
func (*Reference) ingredientItem()       {}

func (Flag) reportedValue()       {}
func (*Reference) reportedValue() {}

func (Flag) asNeededValue()             {}
func (*CodeableConcept) asNeededValue() {}

func (*Range) doseValue()    {}
func (*Quantity) doseValue() {}

func (*Ratio) rateValue()    {}
func (*Range) rateValue()    {}
func (*Quantity) rateValue() {}

func (*Duration) boundsValue() {}
func (*Range) boundsValue()    {}
func (*Period) boundsValue()   {}

func (Flag) allowedValue()             {}
func (*CodeableConcept) allowedValue() {}

func (*Reference) authorValue() {}
func (AuthorName) authorValue() {}

// ChoiceGroup describes one choice-group instance found in a resource.
type ChoiceGroup struct {
	// Path locates the group, e.g. "dosageInstruction[0].asNeeded[x]".
	Path string
	// ExactlyOne is set for groups where an empty group is itself an error.
	ExactlyOne bool
	// Populated lists the wire names of the members that carry a value.
	Populated []string
}

// Conflict reports whether more than one member is populated.
func (g ChoiceGroup) Conflict() bool { return len(g.Populated) > 1 }

// Missing reports whether an exactly-one group is empty.
func (g ChoiceGroup) Missing() bool { return g.ExactlyOne && len(g.Populated) == 0 }

type member struct {
	name string
	set  bool
}

func newGroup(path string, exactlyOne bool, members ...member) ChoiceGroup {
	g := ChoiceGroup{Path: path, ExactlyOne: exactlyOne}
	for _, m := range members {
		if m.set {
			g.Populated = append(g.Populated, m.name)
		}
	}
	return g
}

// check turns a group into the accessor error contract.
func (g ChoiceGroup) check() error {
	if g.Conflict() {
		return fmt.Errorf("%s %v: %w", g.Path, g.Populated, ErrChoiceConflict)
	}
	if g.Missing() {
		return fmt.Errorf("%s: %w", g.Path, ErrChoiceMissing)
	}
	return nil
}

func flagPtr(f Flag) *bool {
	b := bool(f)
	return &b
}

func indexed(prefix string, i int, rest string) string {
	return fmt.Sprintf("%s[%d].%s", prefix, i, rest)
}

func (a *Annotation) authorGroup(path string) ChoiceGroup {
	return newGroup(path, false,
		member{"authorReference", a.AuthorReference != nil},
		member{"authorString", a.AuthorString != ""},
	)
}

// GetAuthor returns author[x], nil when absent.
func (a *Annotation) GetAuthor() (AuthorValue, error) {
	if err := a.authorGroup("author[x]").check(); err != nil {
		return nil, err
	}
	switch {
	case a.AuthorReference != nil:
		return a.AuthorReference, nil
	case a.AuthorString != "":
		return AuthorName(a.AuthorString), nil
	}
	return nil, nil
}

// SetAuthor populates author[x] with v and clears the other member. A nil v clears both.
func (a *Annotation) SetAuthor(v AuthorValue) {
	a.AuthorReference, a.AuthorString = nil, ""
	switch x := v.(type) {
	case *Reference:
		a.AuthorReference = x
	case AuthorName:
		a.AuthorString = string(x)
	}
}

func notesGroups(notes []Annotation) []ChoiceGroup {
	var groups []ChoiceGroup
	for i := range notes {
		groups = append(groups, notes[i].authorGroup(indexed("note", i, "author[x]")))
	}
	return groups
}
