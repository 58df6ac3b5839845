package store

import (
	"context"
	"time"

	"meter-billing/internal/model"
)

// Store holds the canonical reading dataset. Implementations load the whole
// dataset per operation; the interface exists so an incremental backend can
// be swapped in without touching the merge or billing code.
type Store interface {
	// All returns every stored reading. An empty or missing dataset yields
	// an empty slice, not an error.
	All(ctx context.Context) ([]model.MeterReading, error)

	// ReplaceAll atomically persists the given readings as the complete
	// dataset. On failure the previously persisted state stays intact.
	ReplaceAll(ctx context.Context, readings []model.MeterReading) error

	// LastEntryEnd returns the chronologically latest EndTime among readings
	// for the NMI. ok is false when the NMI has no readings.
	LastEntryEnd(ctx context.Context, nmi string) (last time.Time, ok bool, err error)

	// ReadingsOnDay returns readings whose StartTime falls on the given
	// calendar day. An empty nmi matches all NMIs. Order is not guaranteed.
	ReadingsOnDay(ctx context.Context, nmi string, day time.Time) ([]model.MeterReading, error)

	Close() error
}

// SameDay reports whether two timestamps share a calendar date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
