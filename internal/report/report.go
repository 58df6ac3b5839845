// Package report renders billing aggregates as fixed-width text for the
// CLI.
package report

import (
	"fmt"
	"io"
	"strings"

	"meter-billing/internal/model"
)

// WriteSummary prints the range totals of a cost summary.
func WriteSummary(w io.Writer, s *model.CostSummary) {
	fmt.Fprintf(w, "Cost summary for %s\n", s.Vendor)
	fmt.Fprintf(w, "Period: %s to %s (%d days)\n\n",
		s.StartDate.Format(model.DayKey), s.EndDate.Format(model.DayKey), s.TotalDays)
	fmt.Fprintf(w, "Total usage cost:    $%8.2f\n", s.TotalUsageCost)
	fmt.Fprintf(w, "Total solar credit:  $%8.2f\n", s.TotalSolarCredit)
	fmt.Fprintf(w, "Supply charges:      $%8.2f\n", s.TotalSupplyCharges)
	fmt.Fprintf(w, "Net cost:            $%8.2f\n", s.NetCost)
}

// WriteBreakdown prints the per-rate-type table of a range bill.
func WriteBreakdown(w io.Writer, b *model.BreakdownSummary) {
	rule := strings.Repeat("-", 45)

	fmt.Fprintf(w, "Cost breakdown for %s\n", b.Vendor)
	fmt.Fprintf(w, "Period: %s to %s (%d days)\n\n",
		b.StartDate.Format(model.DayKey), b.EndDate.Format(model.DayKey), b.TotalDays)

	fmt.Fprintf(w, "%-10s | %11s | %8s | %8s\n", "Period", "Usage (kWh)", "Rate ($)", "Cost ($)")
	fmt.Fprintln(w, rule)
	for _, label := range []model.RateLabel{model.RatePeak, model.RateShoulder, model.RateOffPeak} {
		bucket := b.Usage[label]
		avg := 0.0
		if bucket.KWh > 0 {
			avg = bucket.Cost / bucket.KWh
		}
		fmt.Fprintf(w, "%-10s | %11.2f | %8.4f | %8.2f\n", string(label), bucket.KWh, avg, bucket.Cost)
	}
	for label, bucket := range b.Usage {
		if label == model.RatePeak || label == model.RateShoulder || label == model.RateOffPeak {
			continue
		}
		avg := 0.0
		if bucket.KWh > 0 {
			avg = bucket.Cost / bucket.KWh
		}
		fmt.Fprintf(w, "%-10s | %11.2f | %8.4f | %8.2f\n", string(label), bucket.KWh, avg, bucket.Cost)
	}
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Supply charge %3d days            | %8.2f\n", b.TotalDays, b.TotalSupplyCharges)
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Sub total                         | %8.2f\n", b.SubTotalCost)
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Solar feed-in %6.2f kWh          | %8.2f\n", b.Solar.KWh, -b.Solar.Credit)
	fmt.Fprintf(w, "Net total                         | %8.2f\n", b.NetCost)
	fmt.Fprintln(w, rule)
}
