package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"meter-billing/internal/billing"
	"meter-billing/internal/config"
	"meter-billing/internal/ingest"
	"meter-billing/internal/model"
	"meter-billing/internal/nem12"
	"meter-billing/internal/report"
	"meter-billing/internal/store"
	"meter-billing/internal/tariff"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "import":
		cmdImport(os.Args[2:])
	case "bill":
		cmdBill(os.Args[2:])
	case "breakdown":
		cmdBreakdown(os.Args[2:])
	case "list-nmis":
		cmdListNMIs(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli import --config config.yaml --file meter.nem12.csv --nmi 41032871534 [--from 2024-10-01]")
	fmt.Println("  cli bill --config config.yaml --vendor agl-value-saver-tou --start 2024-10-11 --end 2024-11-10")
	fmt.Println("  cli breakdown --config config.yaml --vendor agl-value-saver-tou --start 2024-10-11 --end 2024-11-10")
	fmt.Println("  cli list-nmis --file meter.nem12.csv")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - import merges a NEM12 file into the canonical dataset, skipping duplicates")
	fmt.Println("  - without --from, import continues after the last stored entry for the NMI")
	fmt.Println("  - breakdown prints a peak/off_peak/shoulder table plus solar feed-in credit")
}

func cmdImport(args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "Path to YAML config")
	filePath := fs.String("file", "", "Path to NEM12 file")
	nmi := fs.String("nmi", "", "NMI to import")
	from := fs.String("from", "", "Optional start date (YYYY-MM-DD); defaults to last entry + one interval")
	_ = fs.Parse(args)

	if *filePath == "" || *nmi == "" {
		fmt.Println("--file and --nmi are required")
		os.Exit(2)
	}

	cfg, st := mustOpen(*cfgPath)
	defer st.Close()

	var fromDate time.Time
	if *from != "" {
		var err error
		fromDate, err = time.Parse(model.DayKey, *from)
		if err != nil {
			fmt.Printf("invalid --from date: %v\n", err)
			os.Exit(2)
		}
	}

	source := nem12.New()

	// Warn before importing an NMI the file does not contain.
	listings, err := source.ListNMIs(*filePath)
	if err != nil {
		fatal(err)
	}
	found := false
	for _, l := range listings {
		if l.NMI == *nmi {
			found = true
			break
		}
	}
	if !found {
		fmt.Printf("warning: NMI %s not found in %s\n", *nmi, *filePath)
	}

	importer := ingest.New(st, source, cfg.Step())
	res, err := importer.Import(context.Background(), *filePath, *nmi, fromDate)
	if err != nil {
		if errors.Is(err, ingest.ErrNoBaseline) {
			fmt.Println("No existing data for this NMI; pass --from to import from an explicit date")
			os.Exit(1)
		}
		fatal(err)
	}

	fmt.Printf("Imported from %s: %d accepted, %d duplicates skipped, %d before cutoff\n",
		res.FromDate.Format(model.DayKey), res.Accepted, res.Duplicates, res.Filtered)
}

func cmdBill(args []string) {
	fs := flag.NewFlagSet("bill", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "Path to YAML config")
	vendor := fs.String("vendor", "", "Tariff vendor name")
	start := fs.String("start", "", "Range start date (YYYY-MM-DD)")
	end := fs.String("end", "", "Range end date (YYYY-MM-DD)")
	_ = fs.Parse(args)

	cfg, st := mustOpen(*cfgPath)
	defer st.Close()

	agg := mustAggregator(cfg, st)
	startDate, endDate := mustRange(*vendor, *start, *end)

	sum, err := agg.CostRange(context.Background(), *vendor, startDate, endDate)
	if err != nil {
		fatal(err)
	}
	report.WriteSummary(os.Stdout, sum)
}

func cmdBreakdown(args []string) {
	fs := flag.NewFlagSet("breakdown", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "Path to YAML config")
	vendor := fs.String("vendor", "", "Tariff vendor name")
	start := fs.String("start", "", "Range start date (YYYY-MM-DD)")
	end := fs.String("end", "", "Range end date (YYYY-MM-DD)")
	_ = fs.Parse(args)

	cfg, st := mustOpen(*cfgPath)
	defer st.Close()

	agg := mustAggregator(cfg, st)
	startDate, endDate := mustRange(*vendor, *start, *end)

	b, err := agg.Breakdown(context.Background(), *vendor, startDate, endDate)
	if err != nil {
		fatal(err)
	}
	report.WriteBreakdown(os.Stdout, b)
}

func cmdListNMIs(args []string) {
	fs := flag.NewFlagSet("list-nmis", flag.ExitOnError)
	filePath := fs.String("file", "", "Path to NEM12 file")
	_ = fs.Parse(args)

	if *filePath == "" {
		fmt.Println("--file is required")
		os.Exit(2)
	}

	listings, err := nem12.New().ListNMIs(*filePath)
	if err != nil {
		fatal(err)
	}
	for _, l := range listings {
		fmt.Printf("%s (channels: %s)\n", l.NMI, strings.Join(l.Suffixes, ", "))
	}
}

func mustOpen(cfgPath string) (*config.Config, store.Store) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fatal(err)
	}
	st, err := cfg.OpenStore()
	if err != nil {
		fatal(err)
	}
	return cfg, st
}

func mustAggregator(cfg *config.Config, st store.Store) *billing.Aggregator {
	tariffs, err := tariff.Load(cfg.Tariffs)
	if err != nil {
		fatal(err)
	}
	return billing.New(st, tariff.NewResolver(tariffs))
}

func mustRange(vendor, start, end string) (time.Time, time.Time) {
	if vendor == "" || start == "" || end == "" {
		fmt.Println("--vendor, --start and --end are required")
		os.Exit(2)
	}
	startDate, err := time.Parse(model.DayKey, start)
	if err != nil {
		fmt.Printf("invalid --start date: %v\n", err)
		os.Exit(2)
	}
	endDate, err := time.Parse(model.DayKey, end)
	if err != nil {
		fmt.Printf("invalid --end date: %v\n", err)
		os.Exit(2)
	}
	return startDate, endDate
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
