package repo

import (
	"context"
	"fmt"
	"time"

	"posterstudio/internal/generation"
	"posterstudio/internal/infra"
	"posterstudio/internal/poster"
	"posterstudio/internal/sqlinline"
)

// GenerationStats aggregates the last 24 hours of generation_logs.
type GenerationStats struct {
	Total          int64            `json:"total"`
	Succeeded      int64            `json:"succeeded"`
	SafetyBlocked  int64            `json:"safety_blocked"`
	RateLimited    int64            `json:"rate_limited"`
	Failed         int64            `json:"failed"`
	AvgAttempts    float64          `json:"avg_attempts"`
	AvgDurationMS  float64          `json:"avg_duration_ms"`
	ByType         map[string]int64 `json:"by_type"`
	WindowStartsAt time.Time        `json:"window_starts_at"`
}

// GenerationRepositoryPG stores generation audit records in PostgreSQL.
type GenerationRepositoryPG struct {
	sql infra.SQLExecutor
	now func() time.Time
}

// NewGenerationRepository constructs the repository.
func NewGenerationRepository(sql infra.SQLExecutor) *GenerationRepositoryPG {
	return &GenerationRepositoryPG{sql: sql, now: time.Now}
}

var _ generation.Recorder = (*GenerationRepositoryPG)(nil)

// EnsureSchema creates the tables used by the service when missing.
func (r *GenerationRepositoryPG) EnsureSchema(ctx context.Context) error {
	for _, q := range []string{sqlinline.QCreateGenerationLogs, sqlinline.QCreateIntegrationTokens} {
		if _, err := r.sql.Exec(ctx, q); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// Record inserts one audit row.
func (r *GenerationRepositoryPG) Record(ctx context.Context, rec generation.Record) error {
	created := rec.CreatedAt
	if created.IsZero() {
		created = r.now().UTC()
	}
	_, err := r.sql.Exec(ctx, sqlinline.QInsertGenerationLog,
		rec.ID,
		rec.RequestID,
		string(rec.PosterType),
		string(rec.AspectRatio),
		string(rec.ModelAspectRatio),
		rec.HasImage,
		rec.HasQRCode,
		rec.Attempts,
		string(rec.Kind),
		rec.Error,
		rec.Duration.Milliseconds(),
		created,
	)
	return err
}

// Summary returns the rolling 24 hour statistics.
func (r *GenerationRepositoryPG) Summary(ctx context.Context) (*GenerationStats, error) {
	s := &GenerationStats{ByType: map[string]int64{}, WindowStartsAt: r.now().UTC().Add(-24 * time.Hour)}
	row := r.sql.QueryRow(ctx, sqlinline.QStatsSummary)
	if err := row.Scan(&s.Total, &s.Succeeded, &s.SafetyBlocked, &s.RateLimited, &s.Failed, &s.AvgAttempts, &s.AvgDurationMS); err != nil {
		return nil, fmt.Errorf("stats summary: %w", err)
	}

	rows, err := r.sql.Query(ctx, sqlinline.QStatsByType)
	if err != nil {
		return nil, fmt.Errorf("stats by type: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var t string
		var n int64
		if err := rows.Scan(&t, &n); err != nil {
			return nil, fmt.Errorf("scan stats by type: %w", err)
		}
		s.ByType[t] = n
	}
	return s, rows.Err()
}

// Recent returns the newest audit records, newest first.
func (r *GenerationRepositoryPG) Recent(ctx context.Context, limit int) ([]generation.Record, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := r.sql.Query(ctx, sqlinline.QRecentGenerationLogs, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []generation.Record
	for rows.Next() {
		var (
			rec               generation.Record
			pt, ratio, mratio string
			kind              string
			durationMS        int64
		)
		if err := rows.Scan(&rec.ID, &rec.RequestID, &pt, &ratio, &mratio,
			&rec.HasImage, &rec.HasQRCode, &rec.Attempts, &kind, &rec.Error, &durationMS, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.PosterType = poster.Type(pt)
		rec.AspectRatio = poster.AspectRatio(ratio)
		rec.ModelAspectRatio = poster.AspectRatio(mratio)
		if kind != "" {
			rec.Kind = generation.Kind(kind)
		}
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		out = append(out, rec)
	}
	return out, rows.Err()
}
