// Package csvfile persists the canonical reading dataset as a flat CSV
// table, the format the upstream retailer exports use. The file is loaded
// fully into memory per operation and rewritten atomically on merge.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"meter-billing/internal/model"
	"meter-billing/internal/store"
)

// TimeLayout is the day-first timestamp format used in the canonical file.
// Values that do not parse with this exact layout fail the whole load.
const TimeLayout = "02/01/2006 15:04:05"

var header = []string{
	"AccountNumber", "NMI", "DeviceNumber", "DeviceType", "RegisterCode",
	"RateTypeDescription", "StartDate", "Start Day", "Start Month",
	"Start Quarter", "Start Year", "EndDate", "ProfileReadValue",
	"RegisterReadValue", "QualityFlag",
}

type Store struct {
	path string

	// Serializes load-merge-persist cycles within the process. Cross-process
	// single-writer access remains the operator's contract.
	mu sync.Mutex
}

func New(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Close() error { return nil }

func (s *Store) All(ctx context.Context) ([]model.MeterReading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) ReplaceAll(ctx context.Context, readings []model.MeterReading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(readings)
}

func (s *Store) LastEntryEnd(ctx context.Context, nmi string) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	readings, err := s.load()
	if err != nil {
		return time.Time{}, false, err
	}
	var last time.Time
	found := false
	for _, r := range readings {
		if r.NMI != nmi {
			continue
		}
		if !found || r.EndTime.After(last) {
			last = r.EndTime
			found = true
		}
	}
	return last, found, nil
}

func (s *Store) ReadingsOnDay(ctx context.Context, nmi string, day time.Time) ([]model.MeterReading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	readings, err := s.load()
	if err != nil {
		return nil, err
	}
	var out []model.MeterReading
	for _, r := range readings {
		if nmi != "" && r.NMI != nmi {
			continue
		}
		if store.SameDay(r.StartTime, day) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store) load() ([]model.MeterReading, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	rd := csv.NewReader(f)
	rows, err := rd.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if len(rows[0]) != len(header) {
		return nil, fmt.Errorf("%s: expected %d columns, got %d", s.path, len(header), len(rows[0]))
	}

	readings := make([]model.MeterReading, 0, len(rows)-1)
	for i, row := range rows[1:] {
		r, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", s.path, i+2, err)
		}
		readings = append(readings, r)
	}
	return readings, nil
}

func parseRow(row []string) (model.MeterReading, error) {
	if len(row) != len(header) {
		return model.MeterReading{}, fmt.Errorf("expected %d fields, got %d", len(header), len(row))
	}
	start, err := time.Parse(TimeLayout, row[6])
	if err != nil {
		return model.MeterReading{}, fmt.Errorf("StartDate: %w", err)
	}
	end, err := time.Parse(TimeLayout, row[11])
	if err != nil {
		return model.MeterReading{}, fmt.Errorf("EndDate: %w", err)
	}
	profile, err := strconv.ParseFloat(row[12], 64)
	if err != nil {
		return model.MeterReading{}, fmt.Errorf("ProfileReadValue: %w", err)
	}
	register, err := strconv.ParseFloat(row[13], 64)
	if err != nil {
		return model.MeterReading{}, fmt.Errorf("RegisterReadValue: %w", err)
	}
	return model.MeterReading{
		AccountNumber:     row[0],
		NMI:               row[1],
		DeviceNumber:      row[2],
		DeviceType:        row[3],
		RegisterCode:      row[4],
		RateType:          model.RateTypeDescription(row[5]),
		StartTime:         start,
		EndTime:           end,
		ProfileReadValue:  profile,
		RegisterReadValue: register,
		QualityFlag:       row[14],
	}, nil
}

// write replaces the file contents via temp-file-and-rename so a failed
// write never leaves a partially written dataset behind.
func (s *Store) write(readings []model.MeterReading) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".meterdata-*.csv")
	if err != nil {
		return err
	}
	defer func() {
		if tmp != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range readings {
		if err := w.Write(formatRow(r)); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return err
	}
	tmp = nil
	return nil
}

// formatRow derives the redundant Start Day/Month/Quarter/Year columns from
// StartTime at write time.
func formatRow(r model.MeterReading) []string {
	return []string{
		r.AccountNumber,
		r.NMI,
		r.DeviceNumber,
		r.DeviceType,
		r.RegisterCode,
		string(r.RateType),
		r.StartTime.Format(TimeLayout),
		strconv.Itoa(r.StartTime.Day()),
		strconv.Itoa(int(r.StartTime.Month())),
		strconv.Itoa(model.Quarter(r.StartTime)),
		strconv.Itoa(r.StartTime.Year()),
		r.EndTime.Format(TimeLayout),
		fmtFloat(r.ProfileReadValue),
		fmtFloat(r.RegisterReadValue),
		r.QualityFlag,
	}
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
