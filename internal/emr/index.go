package emr

import (
	"errors"
	"sort"
	"sync"

	"github.com/afmhelaluddin77/EMR/internal/fhir/r4"
)

// ErrMissingAppointmentID is returned when an extension has no link key.
var ErrMissingAppointmentID = errors.New("extension has no appointmentId")

// Index stores appointment extensions keyed by appointment id. It is safe
// for concurrent use. Removing a base appointment does not cascade here.
type Index struct {
	mu    sync.RWMutex
	byKey map[string]AppointmentExtension
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{byKey: make(map[string]AppointmentExtension)}
}

// Put stores ext, replacing any extension with the same appointment id.
func (x *Index) Put(ext AppointmentExtension) error {
	if ext.AppointmentID == "" {
		return ErrMissingAppointmentID
	}
	x.mu.Lock()
	x.byKey[ext.AppointmentID] = ext
	x.mu.Unlock()
	return nil
}

// Get returns the extension for appointmentID.
func (x *Index) Get(appointmentID string) (AppointmentExtension, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	ext, ok := x.byKey[appointmentID]
	return ext, ok
}

// Delete removes the extension for appointmentID and reports whether one existed.
func (x *Index) Delete(appointmentID string) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	_, ok := x.byKey[appointmentID]
	delete(x.byKey, appointmentID)
	return ok
}

// Len returns the number of stored extensions.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.byKey)
}

// Orphans returns, sorted, the appointment ids of extensions whose base is
// not among knownIDs.
func (x *Index) Orphans(knownIDs []string) []string {
	known := make(map[string]struct{}, len(knownIDs))
	for _, id := range knownIDs {
		known[id] = struct{}{}
	}

	x.mu.RLock()
	var orphans []string
	for id := range x.byKey {
		if _, ok := known[id]; !ok {
			orphans = append(orphans, id)
		}
	}
	x.mu.RUnlock()

	sort.Strings(orphans)
	return orphans
}

// Joined pairs a base appointment with its extension, if any.
type Joined struct {
	Appointment *r4.Appointment
	Extension   *AppointmentExtension
}

// Join pairs each appointment with its extension by exact id match, in input
// order. Extension is nil when none is stored.
func (x *Index) Join(appointments []*r4.Appointment) []Joined {
	x.mu.RLock()
	defer x.mu.RUnlock()

	out := make([]Joined, 0, len(appointments))
	for _, a := range appointments {
		j := Joined{Appointment: a}
		if a != nil {
			if ext, ok := x.byKey[a.ID]; ok {
				j.Extension = &ext
			}
		}
		out = append(out, j)
	}
	return out
}
