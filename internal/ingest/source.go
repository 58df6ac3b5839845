package ingest

import "time"

// RawReading is one decoded interval record from an external meter-data
// file, before conversion to the canonical form.
type RawReading struct {
	NMI     string
	Serial  string // meter serial number
	Suffix  string // channel suffix, e.g. "E1" or "B1"
	Start   time.Time
	End     time.Time
	Value   float64 // kWh
	Quality string
}

// ChannelListing pairs an NMI with the channel suffixes present for it in a
// source file. Used for pre-import validation.
type ChannelListing struct {
	NMI      string
	Suffixes []string
}

// Source decodes an external interval-data format. The merge engine treats
// the format itself as a black box; internal/nem12 provides the NEM12
// implementation.
type Source interface {
	// Readings returns every interval record in the file. A non-empty nmi
	// restricts the result to that NMI.
	Readings(path, nmi string) ([]RawReading, error)

	// ListNMIs returns each NMI in the file with its channel suffixes.
	ListNMIs(path string) ([]ChannelListing, error)
}
