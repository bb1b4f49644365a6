package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/eventloka/server/internal/domain/accounts"
)

var _ accounts.UserRepository = (*UserRepository)(nil)

const userColumns = `id, username, email, password_hash, first_name, last_name, address,
       phone_number, photo_url, role, referral_code, referred_by_id,
       reset_password_token, reset_password_expiry, created_at, updated_at`

func (r *UserRepository) Create(ctx context.Context, user *accounts.User) (*accounts.User, error) {
	row := r.queryer().QueryRow(ctx, `
INSERT INTO users (username, email, password_hash, first_name, last_name, address,
                   phone_number, photo_url, role, referral_code, referred_by_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING id, created_at, updated_at
`,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Address,
		user.PhoneNumber,
		user.PhotoURL,
		user.Role,
		user.ReferralCode,
		user.ReferredByID,
	)

	created := *user
	if err := row.Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt); err != nil {
		return nil, mapUserConstraint(err)
	}
	return &created, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*accounts.User, error) {
	return r.getBy(ctx, "id = $1", id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*accounts.User, error) {
	return r.getBy(ctx, "email = $1", email)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*accounts.User, error) {
	return r.getBy(ctx, "username = $1", username)
}

func (r *UserRepository) GetByReferralCode(ctx context.Context, code string) (*accounts.User, error) {
	return r.getBy(ctx, "referral_code = $1", code)
}

func (r *UserRepository) GetByResetToken(ctx context.Context, tokenHash string) (*accounts.User, error) {
	return r.getBy(ctx, "reset_password_token = $1", tokenHash)
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id string, update accounts.ProfileUpdate) (*accounts.User, error) {
	row := r.queryer().QueryRow(ctx, `
UPDATE users
   SET first_name = COALESCE($2, first_name),
       last_name = COALESCE($3, last_name),
       address = COALESCE($4, address),
       phone_number = COALESCE($5, phone_number),
       photo_url = COALESCE($6, photo_url),
       updated_at = now()
 WHERE id = $1
RETURNING `+userColumns,
		id,
		update.FirstName,
		update.LastName,
		update.Address,
		update.PhoneNumber,
		update.PhotoURL,
	)
	return scanUser(row)
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	return r.exec(ctx, `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`, id, passwordHash)
}

func (r *UserRepository) SetResetToken(ctx context.Context, id string, tokenHash string, expiry time.Time) error {
	return r.exec(ctx, `
UPDATE users
   SET reset_password_token = $2, reset_password_expiry = $3, updated_at = now()
 WHERE id = $1`, id, tokenHash, expiry)
}

func (r *UserRepository) ResetPassword(ctx context.Context, id string, passwordHash string) error {
	return r.exec(ctx, `
UPDATE users
   SET password_hash = $2,
       reset_password_token = NULL,
       reset_password_expiry = NULL,
       updated_at = now()
 WHERE id = $1`, id, passwordHash)
}

func (r *UserRepository) getBy(ctx context.Context, where string, arg any) (*accounts.User, error) {
	row := r.queryer().QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+where+` LIMIT 1`, arg)
	return scanUser(row)
}

func (r *UserRepository) exec(ctx context.Context, sql string, args ...any) error {
	tag, err := r.queryer().Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return accounts.ErrAccountNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*accounts.User, error) {
	var user accounts.User
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.Address,
		&user.PhoneNumber,
		&user.PhotoURL,
		&user.Role,
		&user.ReferralCode,
		&user.ReferredByID,
		&user.ResetPasswordToken,
		&user.ResetPasswordExpiry,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, accounts.ErrAccountNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &user, nil
}

// mapUserConstraint turns unique-constraint violations into the domain
// conflict errors. The service pre-checks, the constraint is the
// backstop under concurrent registration.
func mapUserConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		switch pgErr.ConstraintName {
		case "users_email_key":
			return accounts.ErrEmailTaken
		case "users_username_key":
			return accounts.ErrUsernameTaken
		}
	}
	return fmt.Errorf("create user: %w", err)
}
