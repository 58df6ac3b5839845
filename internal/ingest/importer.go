package ingest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"meter-billing/internal/model"
	"meter-billing/internal/store"
)

// DefaultStep is the interval length assumed when deriving the next import
// start from the last stored entry.
const DefaultStep = 30 * time.Minute

// ErrNoBaseline reports an incremental import with neither prior data for
// the NMI nor an explicit from date. User-correctable: supply --from.
var ErrNoBaseline = errors.New("no existing data for NMI and no from date given")

// Importer merges decoded source files into the canonical dataset.
type Importer struct {
	store  store.Store
	source Source
	step   time.Duration
}

func New(st store.Store, src Source, step time.Duration) *Importer {
	if step <= 0 {
		step = DefaultStep
	}
	return &Importer{store: st, source: src, step: step}
}

// Result summarizes one import run.
type Result struct {
	FromDate   time.Time // effective lower bound applied to the batch
	Accepted   int       // readings merged into the dataset
	Duplicates int       // readings rejected because their key already existed
	Filtered   int       // readings dropped by the from-date pre-filter
}

// Import decodes the file, restricts the batch to readings starting at or
// after the from date, then merges it into the store. A zero fromDate means
// "continue after the last stored entry for this NMI"; if the NMI has no
// stored data the import is refused with ErrNoBaseline.
//
// Existing data always wins: an incoming reading whose identity key
// (nmi, register code, start minute) is already stored is counted as a
// duplicate and dropped, even when its value differs.
func (im *Importer) Import(ctx context.Context, path, nmi string, fromDate time.Time) (*Result, error) {
	raw, err := im.source.Readings(path, nmi)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("no data found in %s for NMI %q", path, nmi)
	}

	if fromDate.IsZero() {
		last, ok, err := im.store.LastEntryEnd(ctx, nmi)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("nmi %q: %w", nmi, ErrNoBaseline)
		}
		fromDate = last.Add(im.step)
	}

	res := &Result{FromDate: fromDate}

	kept := raw[:0:0]
	for _, rr := range raw {
		if rr.Start.Before(fromDate) {
			res.Filtered++
			continue
		}
		kept = append(kept, rr)
	}
	incoming := Convert(kept)

	existing, err := im.store.All(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[model.ReadingKey]struct{}, len(existing))
	for _, r := range existing {
		seen[r.Key()] = struct{}{}
	}

	combined := existing
	for _, r := range incoming {
		key := r.Key()
		if _, dup := seen[key]; dup {
			res.Duplicates++
			continue
		}
		seen[key] = struct{}{}
		combined = append(combined, r)
		res.Accepted++
	}

	// Nothing new: leave the persisted file untouched.
	if res.Accepted == 0 {
		return res, nil
	}

	SortCanonical(combined)
	if err := im.store.ReplaceAll(ctx, combined); err != nil {
		return nil, fmt.Errorf("persist merged dataset: %w", err)
	}
	return res, nil
}

// SortCanonical orders readings by (NMI, RegisterCode, StartTime) ascending,
// the invariant order of the persisted dataset.
func SortCanonical(readings []model.MeterReading) {
	sort.Slice(readings, func(i, j int) bool {
		a, b := readings[i], readings[j]
		if a.NMI != b.NMI {
			return a.NMI < b.NMI
		}
		if a.RegisterCode != b.RegisterCode {
			return a.RegisterCode < b.RegisterCode
		}
		return a.StartTime.Before(b.StartTime)
	})
}
