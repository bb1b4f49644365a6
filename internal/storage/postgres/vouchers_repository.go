package postgres

import (
	"context"
	"fmt"

	"github.com/eventloka/server/internal/domain/accounts"
)

var _ accounts.VoucherRepository = (*VoucherRepository)(nil)

func (r *VoucherRepository) Create(ctx context.Context, voucher *accounts.Voucher) (*accounts.Voucher, error) {
	row := r.queryer().QueryRow(ctx, `
INSERT INTO vouchers (code, user_id, quota, discount_amount, valid_from, valid_until, is_active)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, created_at
`,
		voucher.Code,
		voucher.UserID,
		voucher.Quota,
		voucher.DiscountAmount,
		voucher.ValidFrom,
		voucher.ValidUntil,
		voucher.IsActive,
	)

	created := *voucher
	if err := row.Scan(&created.ID, &created.CreatedAt); err != nil {
		return nil, fmt.Errorf("create voucher: %w", err)
	}
	return &created, nil
}

func (r *VoucherRepository) ListByUser(ctx context.Context, userID string) ([]accounts.Voucher, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT id, code, user_id, quota, discount_amount, valid_from, valid_until, is_active, created_at
  FROM vouchers
 WHERE user_id = $1
 ORDER BY created_at DESC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list vouchers: %w", err)
	}
	defer rows.Close()

	vouchers := make([]accounts.Voucher, 0)
	for rows.Next() {
		var voucher accounts.Voucher
		if err := rows.Scan(
			&voucher.ID,
			&voucher.Code,
			&voucher.UserID,
			&voucher.Quota,
			&voucher.DiscountAmount,
			&voucher.ValidFrom,
			&voucher.ValidUntil,
			&voucher.IsActive,
			&voucher.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan voucher: %w", err)
		}
		vouchers = append(vouchers, voucher)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vouchers: %w", err)
	}
	return vouchers, nil
}
