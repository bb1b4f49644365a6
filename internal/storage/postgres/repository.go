package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/eventloka/server/internal/domain/accounts"
	"github.com/eventloka/server/internal/domain/events"
)

// Repository implements accounts.Repository with a PostgreSQL backend
// and also exposes the events repository.
type Repository struct {
	db DB
	tx pgx.Tx
}

var _ accounts.Repository = (*Repository)(nil)

func NewRepository(db DB) (*Repository, error) {
	if db == nil {
		return nil, fmt.Errorf("postgres repository: db is nil")
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Users() accounts.UserRepository {
	return &UserRepository{db: r.db, tx: r.tx}
}

func (r *Repository) Organizers() accounts.OrganizerRepository {
	return &OrganizerRepository{db: r.db, tx: r.tx}
}

func (r *Repository) Vouchers() accounts.VoucherRepository {
	return &VoucherRepository{db: r.db, tx: r.tx}
}

func (r *Repository) Points() accounts.PointRepository {
	return &PointRepository{db: r.db, tx: r.tx}
}

func (r *Repository) Events() events.Repository {
	return &EventRepository{db: r.db, tx: r.tx}
}

func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, accounts.Repository) error) error {
	if r.tx != nil {
		return fn(ctx, r)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	wrapped := &Repository{db: r.db, tx: tx}
	if err := fn(ctx, wrapped); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

type UserRepository struct {
	db DB
	tx pgx.Tx
}

type OrganizerRepository struct {
	db DB
	tx pgx.Tx
}

type VoucherRepository struct {
	db DB
	tx pgx.Tx
}

type PointRepository struct {
	db DB
	tx pgx.Tx
}

type EventRepository struct {
	db DB
	tx pgx.Tx
}

func (r *UserRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *OrganizerRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *VoucherRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *PointRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *EventRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}
