package ingest

import (
	"context"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"meter-billing/internal/model"
	"meter-billing/internal/store/csvfile"
)

// fakeSource returns a canned batch regardless of path.
type fakeSource struct {
	readings []RawReading
}

func (f *fakeSource) Readings(path, nmi string) ([]RawReading, error) {
	var out []RawReading
	for _, r := range f.readings {
		if nmi == "" || r.NMI == nmi {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeSource) ListNMIs(path string) ([]ChannelListing, error) {
	return nil, nil
}

func raw(nmi, serial, suffix string, start time.Time, value float64) RawReading {
	return RawReading{
		NMI:     nmi,
		Serial:  serial,
		Suffix:  suffix,
		Start:   start,
		End:     start.Add(30 * time.Minute),
		Value:   value,
		Quality: "A",
	}
}

func halfHours(nmi, serial, suffix string, start time.Time, values ...float64) []RawReading {
	out := make([]RawReading, 0, len(values))
	for i, v := range values {
		out = append(out, raw(nmi, serial, suffix, start.Add(time.Duration(i)*30*time.Minute), v))
	}
	return out
}

func newImporter(t *testing.T, src Source) (*Importer, *csvfile.Store) {
	t.Helper()
	st := csvfile.New(filepath.Join(t.TempDir(), "readings.csv"))
	return New(st, src, 30*time.Minute), st
}

func TestImportIntoEmptyStoreNeedsFromDate(t *testing.T) {
	start := time.Date(2024, 10, 16, 0, 0, 0, 0, time.UTC)
	src := &fakeSource{readings: halfHours("123", "M1", "E1", start, 1, 2, 3)}
	im, _ := newImporter(t, src)

	_, err := im.Import(context.Background(), "f", "123", time.Time{})
	require.ErrorIs(t, err, ErrNoBaseline)

	res, err := im.Import(context.Background(), "f", "123", start)
	require.NoError(t, err)
	require.Equal(t, 3, res.Accepted)
	require.Equal(t, 0, res.Duplicates)
}

func TestImportIsIdempotent(t *testing.T) {
	start := time.Date(2024, 10, 16, 0, 0, 0, 0, time.UTC)
	src := &fakeSource{readings: halfHours("123", "M1", "E1", start, 1, 2, 3, 4)}
	im, st := newImporter(t, src)
	ctx := context.Background()

	res, err := im.Import(ctx, "f", "123", start)
	require.NoError(t, err)
	require.Equal(t, 4, res.Accepted)

	after, err := st.All(ctx)
	require.NoError(t, err)

	res, err = im.Import(ctx, "f", "123", start)
	require.NoError(t, err)
	require.Equal(t, 0, res.Accepted)
	require.Equal(t, 4, res.Duplicates)

	again, err := st.All(ctx)
	require.NoError(t, err)
	require.Equal(t, after, again)
}

func TestImportExistingWins(t *testing.T) {
	start := time.Date(2024, 10, 16, 0, 0, 0, 0, time.UTC)
	src := &fakeSource{readings: halfHours("123", "M1", "E1", start, 1.5)}
	im, st := newImporter(t, src)
	ctx := context.Background()

	_, err := im.Import(ctx, "f", "123", start)
	require.NoError(t, err)

	// Same key, different value: the stored reading must survive.
	src.readings = halfHours("123", "M1", "E1", start, 9.9)
	res, err := im.Import(ctx, "f", "123", start)
	require.NoError(t, err)
	require.Equal(t, 0, res.Accepted)
	require.Equal(t, 1, res.Duplicates)

	all, err := st.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, 1.5, all[0].ProfileReadValue)
}

func TestImportContinuesAfterLastEntry(t *testing.T) {
	day1 := time.Date(2024, 10, 16, 0, 0, 0, 0, time.UTC)
	src := &fakeSource{readings: halfHours("123", "M1", "E1", day1, 1, 2)}
	im, _ := newImporter(t, src)
	ctx := context.Background()

	_, err := im.Import(ctx, "f", "123", day1)
	require.NoError(t, err)

	// Re-supply the old intervals plus two new ones; without an explicit
	// from date the cutoff is last stored end + one step, so everything
	// starting before it is filtered before dedup even runs.
	src.readings = halfHours("123", "M1", "E1", day1, 1, 2, 3, 4)
	res, err := im.Import(ctx, "f", "123", time.Time{})
	require.NoError(t, err)
	require.Equal(t, day1.Add(90*time.Minute), res.FromDate)
	require.Equal(t, 1, res.Accepted)
	require.Equal(t, 0, res.Duplicates)
	require.Equal(t, 3, res.Filtered)
}

func TestImportSortsCanonically(t *testing.T) {
	start := time.Date(2024, 10, 16, 0, 0, 0, 0, time.UTC)
	// Deliberately shuffled across NMIs, registers and times.
	src := &fakeSource{readings: []RawReading{
		raw("456", "M2", "E1", start.Add(time.Hour), 1),
		raw("123", "M1", "B1", start, 2),
		raw("456", "M2", "E1", start, 3),
		raw("123", "M1", "E1", start, 4),
	}}
	st := csvfile.New(filepath.Join(t.TempDir(), "readings.csv"))
	im := New(st, src, 30*time.Minute)
	ctx := context.Background()

	_, err := im.Import(ctx, "f", "", start)
	require.NoError(t, err)

	all, err := st.All(ctx)
	require.NoError(t, err)
	require.True(t, sort.SliceIsSorted(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.NMI != b.NMI {
			return a.NMI < b.NMI
		}
		if a.RegisterCode != b.RegisterCode {
			return a.RegisterCode < b.RegisterCode
		}
		return a.StartTime.Before(b.StartTime)
	}))

	// Key uniqueness holds over the whole stored set.
	seen := map[model.ReadingKey]bool{}
	for _, r := range all {
		require.False(t, seen[r.Key()], "duplicate key %+v", r.Key())
		seen[r.Key()] = true
	}
}

func TestImportTwoChannelsTwoRegisterCodes(t *testing.T) {
	start := time.Date(2024, 10, 16, 12, 0, 0, 0, time.UTC)
	src := &fakeSource{readings: []RawReading{
		raw("123", "METER01", "E1", start, 0.5),
		raw("123", "METER01", "B1", start, 0.8),
	}}
	im, st := newImporter(t, src)
	ctx := context.Background()

	res, err := im.Import(ctx, "f", "123", start)
	require.NoError(t, err)
	require.Equal(t, 2, res.Accepted)

	all, err := st.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "METER01#B1", all[0].RegisterCode)
	require.Equal(t, model.RateTypeSolar, all[0].RateType)
	require.Equal(t, "METER01#E1", all[1].RegisterCode)
	require.Equal(t, model.RateTypeUsage, all[1].RateType)
}

func TestImportNoDataForNMI(t *testing.T) {
	src := &fakeSource{}
	im, _ := newImporter(t, src)

	_, err := im.Import(context.Background(), "f", "123", time.Now())
	require.Error(t, err)
	require.Contains(t, err.Error(), "no data")
}

func TestConvertSuffixMapping(t *testing.T) {
	start := time.Date(2024, 10, 16, 0, 0, 0, 0, time.UTC)
	got := Convert([]RawReading{
		raw("1", "S", "E1", start, 1),
		raw("1", "S", "B1", start, 1),
		raw("1", "S", "K1", start, 1),
	})
	require.Equal(t, model.RateTypeUsage, got[0].RateType)
	require.Equal(t, model.RateTypeSolar, got[1].RateType)
	require.Equal(t, model.RateTypeOther, got[2].RateType)
	require.Equal(t, "S#K1", got[2].RegisterCode)
}
