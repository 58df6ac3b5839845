// Package sqlite is an alternative Store backend keeping the canonical
// dataset in a local SQLite database instead of the flat CSV file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"meter-billing/internal/model"
)

// timeLayout stores naive local timestamps as fixed-width text so that
// lexicographic order matches chronological order.
const timeLayout = "2006-01-02T15:04:05"

type Store struct {
	db *sql.DB
}

func New(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite: path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS meter_readings (
		account_number TEXT NOT NULL,
		nmi TEXT NOT NULL,
		device_number TEXT NOT NULL,
		device_type TEXT NOT NULL,
		register_code TEXT NOT NULL,
		rate_type TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		profile_read_value REAL NOT NULL,
		register_read_value REAL NOT NULL,
		quality_flag TEXT NOT NULL,
		PRIMARY KEY (nmi, register_code, start_time)
	);`)
	return err
}

func (s *Store) All(ctx context.Context) ([]model.MeterReading, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT account_number, nmi, device_number, device_type, register_code,
		       rate_type, start_time, end_time, profile_read_value,
		       register_read_value, quality_flag
		FROM meter_readings
		ORDER BY nmi, register_code, start_time`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReadings(rows)
}

// ReplaceAll swaps the full dataset inside one transaction, so readers never
// observe a partially replaced table.
func (s *Store) ReplaceAll(ctx context.Context, readings []model.MeterReading) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM meter_readings`); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO meter_readings (
			account_number, nmi, device_number, device_type, register_code,
			rate_type, start_time, end_time, profile_read_value,
			register_read_value, quality_flag
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range readings {
		_, err = stmt.ExecContext(ctx,
			r.AccountNumber,
			r.NMI,
			r.DeviceNumber,
			r.DeviceType,
			r.RegisterCode,
			string(r.RateType),
			r.StartTime.Format(timeLayout),
			r.EndTime.Format(timeLayout),
			r.ProfileReadValue,
			r.RegisterReadValue,
			r.QualityFlag,
		)
		if err != nil {
			return err
		}
	}

	err = tx.Commit()
	return err
}

func (s *Store) LastEntryEnd(ctx context.Context, nmi string) (time.Time, bool, error) {
	var last sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(end_time) FROM meter_readings WHERE nmi = ?`, nmi).Scan(&last)
	if err != nil {
		return time.Time{}, false, err
	}
	if !last.Valid {
		return time.Time{}, false, nil
	}
	t, err := time.Parse(timeLayout, last.String)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("stored end_time %q: %w", last.String, err)
	}
	return t, true, nil
}

func (s *Store) ReadingsOnDay(ctx context.Context, nmi string, day time.Time) ([]model.MeterReading, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	from := dayStart.Format(timeLayout)
	to := dayStart.AddDate(0, 0, 1).Format(timeLayout)

	query := `
		SELECT account_number, nmi, device_number, device_type, register_code,
		       rate_type, start_time, end_time, profile_read_value,
		       register_read_value, quality_flag
		FROM meter_readings
		WHERE start_time >= ? AND start_time < ?`
	args := []any{from, to}
	if nmi != "" {
		query += ` AND nmi = ?`
		args = append(args, nmi)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReadings(rows)
}

func scanReadings(rows *sql.Rows) ([]model.MeterReading, error) {
	var out []model.MeterReading
	for rows.Next() {
		var r model.MeterReading
		var rateType, start, end string
		err := rows.Scan(
			&r.AccountNumber, &r.NMI, &r.DeviceNumber, &r.DeviceType,
			&r.RegisterCode, &rateType, &start, &end,
			&r.ProfileReadValue, &r.RegisterReadValue, &r.QualityFlag,
		)
		if err != nil {
			return nil, err
		}
		r.RateType = model.RateTypeDescription(rateType)
		if r.StartTime, err = time.Parse(timeLayout, start); err != nil {
			return nil, fmt.Errorf("stored start_time %q: %w", start, err)
		}
		if r.EndTime, err = time.Parse(timeLayout, end); err != nil {
			return nil, fmt.Errorf("stored end_time %q: %w", end, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
