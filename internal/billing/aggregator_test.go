package billing

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"meter-billing/internal/model"
	"meter-billing/internal/store/csvfile"
	"meter-billing/internal/tariff"
)

func ptr(f float64) *float64 { return &f }

// testConfig covers the whole year with one season: weekdays split into
// peak 14-20 and off_peak for the rest, weekends flat off_peak. Only the
// off_peak entries pay a feed-in rate.
func testConfig() *tariff.Config {
	return &tariff.Config{
		Vendors: map[string]tariff.Vendor{
			"acme": {
				SupplyCharge: 1.00,
				Periods:      map[string][]int{"all": {1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}},
				Seasons: map[string]tariff.DayRates{
					"all": {
						Weekday: []tariff.RateEntry{
							{Name: "peak", Hours: []string{"14-20"}, Rate: 0.30},
							{Name: "off_peak", Hours: []string{"20-14"}, Rate: 0.20, SolarRate: ptr(0.10)},
						},
						Weekend: []tariff.RateEntry{
							{Name: "off_peak", Hours: []string{"0-0"}, Rate: 0.20, SolarRate: ptr(0.10)},
						},
					},
				},
			},
		},
	}
}

func usage(nmi string, start time.Time, kwh float64) model.MeterReading {
	return model.MeterReading{
		NMI:              nmi,
		DeviceNumber:     "M1",
		DeviceType:       "COMMS4D",
		RegisterCode:     "M1#E1",
		RateType:         model.RateTypeUsage,
		StartTime:        start,
		EndTime:          start.Add(30 * time.Minute),
		ProfileReadValue: kwh,
		QualityFlag:      "A",
	}
}

func solar(nmi string, start time.Time, kwh float64) model.MeterReading {
	r := usage(nmi, start, kwh)
	r.RegisterCode = "M1#B1"
	r.RateType = model.RateTypeSolar
	return r
}

func newAggregator(t *testing.T, cfg *tariff.Config, readings ...model.MeterReading) *Aggregator {
	t.Helper()
	st := csvfile.New(filepath.Join(t.TempDir(), "readings.csv"))
	require.NoError(t, st.ReplaceAll(context.Background(), readings))
	return New(st, tariff.NewResolver(cfg))
}

func TestCostRangeSingleDay(t *testing.T) {
	// Wednesday: 2.0 kWh drawn in the peak window at 0.30, 1.0 kWh exported
	// at midday where off_peak pays 0.10 feed-in, plus the daily supply
	// charge of 1.00.
	day := time.Date(2024, 10, 16, 0, 0, 0, 0, time.UTC)
	a := newAggregator(t, testConfig(),
		usage("123", day.Add(15*time.Hour), 2.0),
		solar("123", day.Add(12*time.Hour), 1.0),
	)

	sum, err := a.CostRange(context.Background(), "acme", day, day)
	require.NoError(t, err)

	require.Equal(t, 1, sum.TotalDays)
	require.InDelta(t, 0.60, sum.TotalUsageCost, 1e-9)
	require.InDelta(t, 0.10, sum.TotalSolarCredit, 1e-9)
	require.InDelta(t, 1.00, sum.TotalSupplyCharges, 1e-9)
	require.InDelta(t, 1.50, sum.NetCost, 1e-9)

	key := day.Format(model.DayKey)
	require.InDelta(t, 0.60, sum.DailyCosts[key], 1e-9)
	require.InDelta(t, 0.10, sum.DailySolar[key], 1e-9)
}

func TestCostRangeSupplyChargeAccruesOnEmptyDays(t *testing.T) {
	day := time.Date(2024, 10, 16, 0, 0, 0, 0, time.UTC)
	a := newAggregator(t, testConfig(), usage("123", day.Add(15*time.Hour), 2.0))

	// Three-day range with readings on the first day only.
	sum, err := a.CostRange(context.Background(), "acme", day, day.AddDate(0, 0, 2))
	require.NoError(t, err)

	require.Equal(t, 3, sum.TotalDays)
	require.InDelta(t, 3.00, sum.TotalSupplyCharges, 1e-9)
	require.InDelta(t, 0.60, sum.TotalUsageCost, 1e-9)
	require.Len(t, sum.DailyCosts, 3)
	require.Zero(t, sum.DailyCosts[day.AddDate(0, 0, 1).Format(model.DayKey)])
	require.Zero(t, sum.DailyCosts[day.AddDate(0, 0, 2).Format(model.DayKey)])
}

func TestCostRangeWeekendUsesWeekendRates(t *testing.T) {
	// Saturday 15:00 falls inside the weekday peak window but weekends are
	// flat off_peak.
	sat := time.Date(2024, 10, 19, 0, 0, 0, 0, time.UTC)
	a := newAggregator(t, testConfig(), usage("123", sat.Add(15*time.Hour), 2.0))

	sum, err := a.CostRange(context.Background(), "acme", sat, sat)
	require.NoError(t, err)
	require.InDelta(t, 0.40, sum.TotalUsageCost, 1e-9)
}

func TestBreakdownPartitionsUsage(t *testing.T) {
	day := time.Date(2024, 10, 16, 0, 0, 0, 0, time.UTC)
	a := newAggregator(t, testConfig(),
		usage("123", day.Add(15*time.Hour), 2.0),
		usage("123", day.Add(18*time.Hour+30*time.Minute), 1.5),
		usage("123", day.Add(3*time.Hour), 4.0),
		solar("123", day.Add(12*time.Hour), 1.0),
	)

	sum, err := a.Breakdown(context.Background(), "acme", day, day)
	require.NoError(t, err)

	peak := sum.Usage[model.RatePeak]
	offPeak := sum.Usage[model.RateOffPeak]
	require.InDelta(t, 3.5, peak.KWh, 1e-9)
	require.InDelta(t, 1.05, peak.Cost, 1e-9)
	require.InDelta(t, 4.0, offPeak.KWh, 1e-9)
	require.InDelta(t, 0.80, offPeak.Cost, 1e-9)
	require.Zero(t, sum.Usage[model.RateShoulder].KWh)

	// The buckets partition the totals exactly.
	var kwh, cost float64
	for _, b := range sum.Usage {
		kwh += b.KWh
		cost += b.Cost
	}
	require.Equal(t, kwh, sum.TotalUsageKWh)
	require.Equal(t, cost, sum.TotalUsageCost)

	require.InDelta(t, 1.0, sum.Solar.KWh, 1e-9)
	require.InDelta(t, 0.10, sum.Solar.Credit, 1e-9)
	require.InDelta(t, sum.TotalUsageCost+1.00, sum.SubTotalCost, 1e-9)
	require.InDelta(t, sum.SubTotalCost-0.10, sum.NetCost, 1e-9)
}

func TestSolarWithoutFeedInRateEarnsNothing(t *testing.T) {
	cfg := testConfig()
	v := cfg.Vendors["acme"]
	season := v.Seasons["all"]
	season.Weekday[1].SolarRate = nil
	v.Seasons["all"] = season
	cfg.Vendors["acme"] = v

	day := time.Date(2024, 10, 16, 0, 0, 0, 0, time.UTC)
	a := newAggregator(t, cfg, solar("123", day.Add(12*time.Hour), 5.0))

	sum, err := a.Breakdown(context.Background(), "acme", day, day)
	require.NoError(t, err)
	require.InDelta(t, 5.0, sum.Solar.KWh, 1e-9)
	require.Zero(t, sum.Solar.Credit)

	cost, err := a.CostRange(context.Background(), "acme", day, day)
	require.NoError(t, err)
	require.Zero(t, cost.TotalSolarCredit)
}

func TestUncoveredHourFailsTheQuery(t *testing.T) {
	cfg := testConfig()
	v := cfg.Vendors["acme"]
	season := v.Seasons["all"]
	season.Weekday = season.Weekday[:1] // peak 14-20 only
	v.Seasons["all"] = season
	cfg.Vendors["acme"] = v

	day := time.Date(2024, 10, 16, 0, 0, 0, 0, time.UTC)
	a := newAggregator(t, cfg, usage("123", day.Add(10*time.Hour), 1.0))

	_, err := a.CostRange(context.Background(), "acme", day, day)
	require.ErrorIs(t, err, tariff.ErrNoRateMatch)

	_, err = a.Breakdown(context.Background(), "acme", day, day)
	require.ErrorIs(t, err, tariff.ErrNoRateMatch)
}

func TestUnknownVendor(t *testing.T) {
	day := time.Date(2024, 10, 16, 0, 0, 0, 0, time.UTC)
	a := newAggregator(t, testConfig())

	_, err := a.CostRange(context.Background(), "nobody", day, day)
	require.ErrorIs(t, err, tariff.ErrConfigNotFound)
}

func TestRejectsInvertedRange(t *testing.T) {
	day := time.Date(2024, 10, 16, 0, 0, 0, 0, time.UTC)
	a := newAggregator(t, testConfig())

	_, err := a.CostRange(context.Background(), "acme", day, day.AddDate(0, 0, -1))
	require.Error(t, err)

	_, err = a.Breakdown(context.Background(), "acme", time.Time{}, day)
	require.Error(t, err)
}
