package accounts

import (
	"context"
	"time"
)

// Repository groups account-related data access. WithTx runs fn against
// a transactional view; user registration relies on it so the account,
// ledger entry, and voucher land atomically.
type Repository interface {
	Users() UserRepository
	Organizers() OrganizerRepository
	Vouchers() VoucherRepository
	Points() PointRepository

	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
}

// UserRepository lookups return ErrAccountNotFound when no row matches.
type UserRepository interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByReferralCode(ctx context.Context, code string) (*User, error)
	GetByResetToken(ctx context.Context, tokenHash string) (*User, error)
	UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*User, error)
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	SetResetToken(ctx context.Context, id string, tokenHash string, expiry time.Time) error
	// ResetPassword stores the new hash and clears the reset token and
	// expiry in the same statement.
	ResetPassword(ctx context.Context, id string, passwordHash string) error
}

type OrganizerRepository interface {
	Create(ctx context.Context, organizer *Organizer) (*Organizer, error)
	GetByID(ctx context.Context, id string) (*Organizer, error)
	GetByEmail(ctx context.Context, email string) (*Organizer, error)
	GetByUsername(ctx context.Context, username string) (*Organizer, error)
	GetByResetToken(ctx context.Context, tokenHash string) (*Organizer, error)
	UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*Organizer, error)
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	SetResetToken(ctx context.Context, id string, tokenHash string, expiry time.Time) error
	ResetPassword(ctx context.Context, id string, passwordHash string) error
}

type VoucherRepository interface {
	Create(ctx context.Context, voucher *Voucher) (*Voucher, error)
	ListByUser(ctx context.Context, userID string) ([]Voucher, error)
}

type PointRepository interface {
	Create(ctx context.Context, entry *PointEntry) (*PointEntry, error)
	ListByUser(ctx context.Context, userID string) ([]PointEntry, error)
	BalanceByUser(ctx context.Context, userID string) (int64, error)
}
