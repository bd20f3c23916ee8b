package model

import "fmt"

// CosmicNuID marks a selected record that did not originate from a
// simulated neutrino interaction.
const CosmicNuID = -1

// EventKey identifies one (possibly cosmic) interaction within an event.
type EventKey struct {
	Run    int64
	Subrun int64
	Event  int64
	NuID   int64
}

// EventID drops the neutrino id, leaving the identity of the whole event.
type EventID struct {
	Run    int64
	Subrun int64
	Event  int64
}

// IsCosmic reports whether the key refers to a cosmic-origin record.
func (k EventKey) IsCosmic() bool {
	return k.NuID == CosmicNuID
}

// EventID returns the event-level identity of the key.
func (k EventKey) EventID() EventID {
	return EventID{Run: k.Run, Subrun: k.Subrun, Event: k.Event}
}

func (k EventKey) String() string {
	return fmt.Sprintf("%d/%d/%d/%d", k.Run, k.Subrun, k.Event, k.NuID)
}

func (id EventID) String() string {
	return fmt.Sprintf("%d/%d/%d", id.Run, id.Subrun, id.Event)
}
