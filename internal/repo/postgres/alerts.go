package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hamed0406/httprobe/internal/domain"
	"github.com/hamed0406/httprobe/internal/repo"
)

const defaultLimit = 100

func (s *Store) Append(ctx context.Context, a *domain.Alert) error {
	if a.Time.IsZero() {
		a.Time = time.Now().UTC()
	}
	details, err := json.Marshal(a.Details)
	if err != nil {
		return fmt.Errorf("encode details: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO alerts (id, probe, url, message, details, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO NOTHING`,
		a.ID, a.Probe, a.URL, a.Message, details, a.Time,
	)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

func (s *Store) Recent(ctx context.Context, limit int) ([]domain.Alert, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, probe, url, message, details, created_at
		   FROM alerts
		  ORDER BY created_at DESC, id DESC
		  LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent alerts: %w", err)
	}
	return scanAlerts(rows)
}

func (s *Store) ByProbe(ctx context.Context, probe string, limit int) ([]domain.Alert, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, probe, url, message, details, created_at
		   FROM alerts
		  WHERE probe = $1
		  ORDER BY created_at DESC, id DESC
		  LIMIT $2`, probe, limit)
	if err != nil {
		return nil, fmt.Errorf("probe alerts: %w", err)
	}
	return scanAlerts(rows)
}

func scanAlerts(rows pgx.Rows) ([]domain.Alert, error) {
	defer rows.Close()

	var out []domain.Alert
	for rows.Next() {
		var (
			a       domain.Alert
			details []byte
		)
		if err := rows.Scan(&a.ID, &a.Probe, &a.URL, &a.Message, &details, &a.Time); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		if err := json.Unmarshal(details, &a.Details); err != nil {
			return nil, fmt.Errorf("decode details of %s: %w", a.ID, err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

var _ repo.AlertLog = (*Store)(nil)
