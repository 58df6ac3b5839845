// Package nem12 decodes AEMO NEM12 interval-data files into raw readings
// for the merge engine. Only the record types that carry interval data are
// interpreted (100 header, 200 data details, 300 interval data, 900 end);
// event and B2B records (400, 500) are skipped.
package nem12

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"meter-billing/internal/ingest"
)

const dateLayout = "20060102"

// Decoder implements ingest.Source for NEM12 files.
type Decoder struct{}

func New() *Decoder { return &Decoder{} }

// block is the state carried from a 200 record to its 300 records.
type block struct {
	nmi             string
	suffix          string
	serial          string
	intervalMinutes int
}

// Readings decodes every interval value in the file. A non-empty nmi keeps
// only that NMI's blocks.
func (d *Decoder) Readings(path, nmi string) ([]ingest.RawReading, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}

	var out []ingest.RawReading
	var cur *block
	for i, row := range rows {
		switch row[0] {
		case "200":
			b, err := parseDataDetails(row)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", path, i+1, err)
			}
			cur = b
		case "300":
			if cur == nil {
				return nil, fmt.Errorf("%s line %d: 300 record before any 200 record", path, i+1)
			}
			if nmi != "" && cur.nmi != nmi {
				continue
			}
			readings, err := parseIntervalDay(row, cur)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", path, i+1, err)
			}
			out = append(out, readings...)
		case "900":
			return out, nil
		}
	}
	return out, nil
}

// ListNMIs returns each NMI in the file with its channel suffixes, in file
// order.
func (d *Decoder) ListNMIs(path string) ([]ingest.ChannelListing, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}

	var order []string
	channels := map[string][]string{}
	for i, row := range rows {
		if row[0] != "200" {
			continue
		}
		b, err := parseDataDetails(row)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, i+1, err)
		}
		if _, seen := channels[b.nmi]; !seen {
			order = append(order, b.nmi)
		}
		if !contains(channels[b.nmi], b.suffix) {
			channels[b.nmi] = append(channels[b.nmi], b.suffix)
		}
	}

	out := make([]ingest.ChannelListing, 0, len(order))
	for _, n := range order {
		out = append(out, ingest.ChannelListing{NMI: n, Suffixes: channels[n]})
	}
	return out, nil
}

func readRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rd := csv.NewReader(f)
	rd.FieldsPerRecord = -1
	rows, err := rd.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(rows) == 0 || rows[0][0] != "100" {
		return nil, fmt.Errorf("%s: not a NEM12 file (missing 100 header)", path)
	}
	return rows, nil
}

func parseDataDetails(row []string) (*block, error) {
	if len(row) < 9 {
		return nil, fmt.Errorf("200 record has %d fields, need 9", len(row))
	}
	minutes, err := strconv.Atoi(row[8])
	if err != nil || minutes <= 0 || 1440%minutes != 0 {
		return nil, fmt.Errorf("invalid interval length %q", row[8])
	}
	return &block{
		nmi:             row[1],
		suffix:          row[4],
		serial:          row[6],
		intervalMinutes: minutes,
	}, nil
}

func parseIntervalDay(row []string, b *block) ([]ingest.RawReading, error) {
	day, err := time.Parse(dateLayout, row[1])
	if err != nil {
		return nil, fmt.Errorf("interval date %q: %w", row[1], err)
	}

	n := 1440 / b.intervalMinutes
	if len(row) < 2+n+1 {
		return nil, fmt.Errorf("300 record has %d fields, need %d interval values plus quality", len(row), n)
	}
	quality := row[2+n]
	if quality == "" {
		return nil, fmt.Errorf("300 record missing quality method")
	}
	// QualityMethod may carry a method suffix ("A", "S52"); the flag is the
	// leading letter.
	flag := quality[:1]

	step := time.Duration(b.intervalMinutes) * time.Minute
	out := make([]ingest.RawReading, 0, n)
	for i := 0; i < n; i++ {
		value, err := strconv.ParseFloat(row[2+i], 64)
		if err != nil {
			return nil, fmt.Errorf("interval value %d: %w", i+1, err)
		}
		start := day.Add(time.Duration(i) * step)
		out = append(out, ingest.RawReading{
			NMI:     b.nmi,
			Serial:  b.serial,
			Suffix:  b.suffix,
			Start:   start,
			End:     start.Add(step),
			Value:   value,
			Quality: flag,
		})
	}
	return out, nil
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
