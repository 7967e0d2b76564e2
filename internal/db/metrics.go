package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/DevPulseHQ/devpulse-web/internal/metrics"
)

// StoredMetric is one persisted normalized aggregate, unique by
// (source, metric_kind, date). A write to an existing key replaces the
// payload wholesale; payloads are never merged.
type StoredMetric struct {
	ID         int64           `json:"id"`
	Source     metrics.Source  `json:"source"`
	MetricKind metrics.Kind    `json:"metric_kind"`
	Date       string          `json:"date"`
	Payload    json.RawMessage `json:"payload"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// SaveMetric upserts a normalized aggregate under (source, kind, date).
// Last write wins: re-running a backfill for the same key replaces the
// payload instead of accumulating.
func (db *DB) SaveMetric(ctx context.Context, source metrics.Source, kind metrics.Kind, date string, payload json.RawMessage) (*StoredMetric, error) {
	query := `
		INSERT INTO metrics (source, metric_kind, date, payload)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (source, metric_kind, date)
		DO UPDATE SET payload = EXCLUDED.payload, updated_at = NOW()
		RETURNING id, source, metric_kind, to_char(date, 'YYYY-MM-DD'), payload, created_at, updated_at`

	var m StoredMetric
	err := db.conn.QueryRowContext(ctx, query, string(source), string(kind), date, payload).Scan(
		&m.ID,
		&m.Source,
		&m.MetricKind,
		&m.Date,
		&m.Payload,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save metric: %w", err)
	}
	return &m, nil
}

// GetMetrics returns metrics for one (source, kind) ordered by date,
// both range bounds inclusive.
func (db *DB) GetMetrics(ctx context.Context, source metrics.Source, kind metrics.Kind, startDate, endDate string) ([]StoredMetric, error) {
	query := `
		SELECT id, source, metric_kind, to_char(date, 'YYYY-MM-DD'), payload, created_at, updated_at
		FROM metrics
		WHERE source = $1 AND metric_kind = $2
		  AND date >= $3 AND date <= $4
		ORDER BY date`

	rows, err := db.conn.QueryContext(ctx, query, string(source), string(kind), startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query metrics: %w", err)
	}
	defer rows.Close()

	return scanMetrics(rows)
}

// GetAllMetrics returns metrics across all kinds within the date range,
// ordered by source, kind, date. When sources is non-empty, results are
// restricted to those providers.
func (db *DB) GetAllMetrics(ctx context.Context, startDate, endDate string, sources []metrics.Source) ([]StoredMetric, error) {
	query := `
		SELECT id, source, metric_kind, to_char(date, 'YYYY-MM-DD'), payload, created_at, updated_at
		FROM metrics
		WHERE date >= $1 AND date <= $2`
	args := []interface{}{startDate, endDate}

	if len(sources) > 0 {
		names := make([]string, len(sources))
		for i, s := range sources {
			names[i] = string(s)
		}
		query += ` AND source = ANY($3)`
		args = append(args, pq.Array(names))
	}
	query += ` ORDER BY source, metric_kind, date`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query metrics: %w", err)
	}
	defer rows.Close()

	return scanMetrics(rows)
}

func scanMetrics(rows *sql.Rows) ([]StoredMetric, error) {
	var result []StoredMetric
	for rows.Next() {
		var m StoredMetric
		if err := rows.Scan(&m.ID, &m.Source, &m.MetricKind, &m.Date, &m.Payload, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan metric: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate metrics: %w", err)
	}
	return result, nil
}
