package postgres

import (
	"context"
	"fmt"

	"github.com/eventloka/server/internal/domain/accounts"
)

var _ accounts.PointRepository = (*PointRepository)(nil)

func (r *PointRepository) Create(ctx context.Context, entry *accounts.PointEntry) (*accounts.PointEntry, error) {
	row := r.queryer().QueryRow(ctx, `
INSERT INTO point_entries (user_id, amount, type)
VALUES ($1, $2, $3)
RETURNING id, created_at
`, entry.UserID, entry.Amount, entry.Type)

	created := *entry
	if err := row.Scan(&created.ID, &created.CreatedAt); err != nil {
		return nil, fmt.Errorf("create point entry: %w", err)
	}
	return &created, nil
}

func (r *PointRepository) ListByUser(ctx context.Context, userID string) ([]accounts.PointEntry, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT id, user_id, amount, type, created_at
  FROM point_entries
 WHERE user_id = $1
 ORDER BY created_at DESC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list point entries: %w", err)
	}
	defer rows.Close()

	entries := make([]accounts.PointEntry, 0)
	for rows.Next() {
		var entry accounts.PointEntry
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Amount, &entry.Type, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan point entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate point entries: %w", err)
	}
	return entries, nil
}

func (r *PointRepository) BalanceByUser(ctx context.Context, userID string) (int64, error) {
	row := r.queryer().QueryRow(ctx, `
SELECT COALESCE(SUM(amount), 0) FROM point_entries WHERE user_id = $1
`, userID)

	var balance int64
	if err := row.Scan(&balance); err != nil {
		return 0, fmt.Errorf("sum point entries: %w", err)
	}
	return balance, nil
}
