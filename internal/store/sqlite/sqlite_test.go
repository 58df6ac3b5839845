package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"meter-billing/internal/model"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "readings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func reading(nmi, register string, start time.Time, value float64) model.MeterReading {
	return model.MeterReading{
		NMI:              nmi,
		DeviceNumber:     "M1",
		DeviceType:       "COMMS4D",
		RegisterCode:     register,
		RateType:         model.RateTypeUsage,
		StartTime:        start,
		EndTime:          start.Add(30 * time.Minute),
		ProfileReadValue: value,
		QualityFlag:      "A",
	}
}

func TestRoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	start := time.Date(2024, 10, 16, 14, 30, 0, 0, time.UTC)
	want := []model.MeterReading{
		reading("123", "M1#B1", start, 0.1),
		reading("123", "M1#E1", start, 0.525),
	}
	want[0].RateType = model.RateTypeSolar

	require.NoError(t, s.ReplaceAll(ctx, want))

	got, err := s.All(ctx)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestReplaceAllReplaces(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	start := time.Date(2024, 10, 16, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.ReplaceAll(ctx, []model.MeterReading{reading("123", "M1#E1", start, 1)}))
	require.NoError(t, s.ReplaceAll(ctx, []model.MeterReading{reading("456", "M2#E1", start, 2)}))

	got, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "456", got[0].NMI)
}

func TestLastEntryEnd(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	older := reading("123", "M1#E1", time.Date(2024, 12, 31, 23, 30, 0, 0, time.UTC), 1)
	newer := reading("123", "M1#E1", time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), 1)
	require.NoError(t, s.ReplaceAll(ctx, []model.MeterReading{older, newer}))

	last, ok, err := s.LastEntryEnd(ctx, "123")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, newer.EndTime, last)

	_, ok, err = s.LastEntryEnd(ctx, "789")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestReadingsOnDay(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	day := time.Date(2024, 10, 16, 0, 0, 0, 0, time.UTC)
	inDay := reading("123", "M1#E1", day.Add(10*time.Hour), 1)
	otherNMI := reading("456", "M2#E1", day.Add(11*time.Hour), 1)
	nextDay := reading("123", "M1#E1", day.AddDate(0, 0, 1), 1)
	require.NoError(t, s.ReplaceAll(ctx, []model.MeterReading{inDay, otherNMI, nextDay}))

	got, err := s.ReadingsOnDay(ctx, "", day)
	require.NoError(t, err)
	require.Len(t, got, 2)

	got, err = s.ReadingsOnDay(ctx, "123", day)
	require.NoError(t, err)
	require.Equal(t, []model.MeterReading{inDay}, got)
}
