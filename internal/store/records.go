package store

import (
	"context"
	"fmt"
	"time"
)

const recordColumns = "id, recorded_at, source, active_window, typing_speed, key_count, is_active, productivity_score"

// Record is one productivity sample.
type Record struct {
	ID                int64     `json:"id" yaml:"id"`
	RecordedAt        time.Time `json:"recorded_at" yaml:"recorded_at"`
	Source            string    `json:"source" yaml:"source"`
	ActiveWindow      string    `json:"active_window" yaml:"active_window"`
	TypingSpeed       float64   `json:"typing_speed" yaml:"typing_speed"`
	KeyCount          int       `json:"key_count" yaml:"key_count"`
	IsActive          bool      `json:"is_active" yaml:"is_active"`
	ProductivityScore float64   `json:"productivity_score" yaml:"productivity_score"`
}

// InsertRecord stores rec and returns its id. A zero RecordedAt is stamped
// with the store clock.
func (s *Store) InsertRecord(ctx context.Context, rec Record) (int64, error) {
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = s.now()
	}
	res, err := s.execWithRetry(ctx,
		`INSERT INTO productivity_records
			(recorded_at, source, active_window, typing_speed, key_count, is_active, productivity_score)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.RecordedAt.UnixMilli(),
		rec.Source,
		rec.ActiveWindow,
		rec.TypingSpeed,
		rec.KeyCount,
		boolToInt(rec.IsActive),
		rec.ProductivityScore,
	)
	if err != nil {
		return 0, fmt.Errorf("insert record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert record id: %w", err)
	}
	return id, nil
}

// QueryTodayStats returns the records captured since local midnight,
// oldest first.
func (s *Store) QueryTodayStats(ctx context.Context) ([]Record, error) {
	ctx = ensureContext(ctx)
	start, end := dayBounds(s.now())
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+recordColumns+" FROM productivity_records WHERE recorded_at >= ? AND recorded_at < ? ORDER BY recorded_at, id",
		start.UnixMilli(), end.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("query today's records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec        Record
			recordedAt int64
			isActive   int64
		)
		if err := rows.Scan(
			&rec.ID,
			&recordedAt,
			&rec.Source,
			&rec.ActiveWindow,
			&rec.TypingSpeed,
			&rec.KeyCount,
			&isActive,
			&rec.ProductivityScore,
		); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.RecordedAt = time.UnixMilli(recordedAt)
		rec.IsActive = isActive != 0
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

func dayBounds(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 0, 1)
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
