package model

import "time"

// RateLabel is a billing period label from the tariff configuration
// (typically peak / off_peak / shoulder).
type RateLabel string

const (
	RatePeak     RateLabel = "peak"
	RateOffPeak  RateLabel = "off_peak"
	RateShoulder RateLabel = "shoulder"
)

// DayKey is the map key used for per-day billing figures.
const DayKey = "2006-01-02"

// CostSummary aggregates billed cost over a closed date range.
type CostSummary struct {
	Vendor    string
	StartDate time.Time
	EndDate   time.Time
	TotalDays int

	// Per-day figures keyed by DayKey-formatted date.
	DailyCosts map[string]float64
	DailySolar map[string]float64

	TotalUsageCost     float64
	TotalSolarCredit   float64
	TotalSupplyCharges float64
	// NetCost = TotalUsageCost - TotalSolarCredit + TotalSupplyCharges.
	NetCost float64
}

// BucketTotals accumulates usage attributed to one rate label.
type BucketTotals struct {
	KWh  float64
	Cost float64
}

// SolarTotals accumulates exported energy and its feed-in credit.
type SolarTotals struct {
	KWh    float64
	Credit float64
}

// BreakdownSummary is the per-rate-type variant of a range bill. Every Usage
// reading lands in exactly one bucket, so the buckets partition
// TotalUsageKWh and TotalUsageCost exactly.
type BreakdownSummary struct {
	Vendor    string
	StartDate time.Time
	EndDate   time.Time
	TotalDays int

	Usage map[RateLabel]BucketTotals
	Solar SolarTotals

	TotalUsageKWh      float64
	TotalUsageCost     float64
	TotalSupplyCharges float64
	SubTotalCost       float64 // TotalUsageCost + TotalSupplyCharges
	NetCost            float64 // SubTotalCost - Solar.Credit
}
