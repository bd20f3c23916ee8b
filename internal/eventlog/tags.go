package eventlog

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Well-known line tags.
const (
	// EventTag marks true signal interactions.
	EventTag = "EVENT"

	// NeutrinoTag marks every simulated neutrino interaction.
	NeutrinoTag = "NEUTRINO"

	selectedPrefix = "SELECTED_"
)

// Standard leading columns shared by every tag.
const (
	ColRun    = "run"
	ColSubrun = "subrun"
	ColEvent  = "event"
	ColNuID   = "nu_id"
)

// KeyColumns are the identity columns that lead every header.
var KeyColumns = []string{ColRun, ColSubrun, ColEvent, ColNuID}

// SelectedTag returns the tag of selected candidates for a channel,
// e.g. "1mu1p" -> "SELECTED_1MU1P".
func SelectedTag(channel string) string {
	// A Caser carries state, so one is built per call.
	return selectedPrefix + cases.Upper(language.Und).String(channel)
}

// Header returns KeyColumns followed by the given extra columns.
func Header(columns ...string) []string {
	h := make([]string, 0, len(KeyColumns)+len(columns))
	h = append(h, KeyColumns...)
	return append(h, columns...)
}
