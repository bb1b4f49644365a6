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

var _ accounts.OrganizerRepository = (*OrganizerRepository)(nil)

const organizerColumns = `id, username, email, password_hash, organization_name, address,
       phone_number, photo_url, role, reset_password_token, reset_password_expiry,
       created_at, updated_at`

func (r *OrganizerRepository) Create(ctx context.Context, organizer *accounts.Organizer) (*accounts.Organizer, error) {
	row := r.queryer().QueryRow(ctx, `
INSERT INTO organizers (username, email, password_hash, organization_name, address,
                        phone_number, photo_url, role)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, created_at, updated_at
`,
		organizer.Username,
		organizer.Email,
		organizer.PasswordHash,
		organizer.OrganizationName,
		organizer.Address,
		organizer.PhoneNumber,
		organizer.PhotoURL,
		organizer.Role,
	)

	created := *organizer
	if err := row.Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt); err != nil {
		return nil, mapOrganizerConstraint(err)
	}
	return &created, nil
}

func (r *OrganizerRepository) GetByID(ctx context.Context, id string) (*accounts.Organizer, error) {
	return r.getBy(ctx, "id = $1", id)
}

func (r *OrganizerRepository) GetByEmail(ctx context.Context, email string) (*accounts.Organizer, error) {
	return r.getBy(ctx, "email = $1", email)
}

func (r *OrganizerRepository) GetByUsername(ctx context.Context, username string) (*accounts.Organizer, error) {
	return r.getBy(ctx, "username = $1", username)
}

func (r *OrganizerRepository) GetByResetToken(ctx context.Context, tokenHash string) (*accounts.Organizer, error) {
	return r.getBy(ctx, "reset_password_token = $1", tokenHash)
}

func (r *OrganizerRepository) UpdateProfile(ctx context.Context, id string, update accounts.ProfileUpdate) (*accounts.Organizer, error) {
	row := r.queryer().QueryRow(ctx, `
UPDATE organizers
   SET organization_name = COALESCE($2, organization_name),
       address = COALESCE($3, address),
       phone_number = COALESCE($4, phone_number),
       photo_url = COALESCE($5, photo_url),
       updated_at = now()
 WHERE id = $1
RETURNING `+organizerColumns,
		id,
		update.OrganizationName,
		update.Address,
		update.PhoneNumber,
		update.PhotoURL,
	)
	return scanOrganizer(row)
}

func (r *OrganizerRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	return r.exec(ctx, `UPDATE organizers SET password_hash = $2, updated_at = now() WHERE id = $1`, id, passwordHash)
}

func (r *OrganizerRepository) SetResetToken(ctx context.Context, id string, tokenHash string, expiry time.Time) error {
	return r.exec(ctx, `
UPDATE organizers
   SET reset_password_token = $2, reset_password_expiry = $3, updated_at = now()
 WHERE id = $1`, id, tokenHash, expiry)
}

func (r *OrganizerRepository) ResetPassword(ctx context.Context, id string, passwordHash string) error {
	return r.exec(ctx, `
UPDATE organizers
   SET password_hash = $2,
       reset_password_token = NULL,
       reset_password_expiry = NULL,
       updated_at = now()
 WHERE id = $1`, id, passwordHash)
}

func (r *OrganizerRepository) getBy(ctx context.Context, where string, arg any) (*accounts.Organizer, error) {
	row := r.queryer().QueryRow(ctx, `SELECT `+organizerColumns+` FROM organizers WHERE `+where+` LIMIT 1`, arg)
	return scanOrganizer(row)
}

func (r *OrganizerRepository) exec(ctx context.Context, sql string, args ...any) error {
	tag, err := r.queryer().Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update organizer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return accounts.ErrAccountNotFound
	}
	return nil
}

func scanOrganizer(row pgx.Row) (*accounts.Organizer, error) {
	var organizer accounts.Organizer
	if err := row.Scan(
		&organizer.ID,
		&organizer.Username,
		&organizer.Email,
		&organizer.PasswordHash,
		&organizer.OrganizationName,
		&organizer.Address,
		&organizer.PhoneNumber,
		&organizer.PhotoURL,
		&organizer.Role,
		&organizer.ResetPasswordToken,
		&organizer.ResetPasswordExpiry,
		&organizer.CreatedAt,
		&organizer.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, accounts.ErrAccountNotFound
		}
		return nil, fmt.Errorf("scan organizer: %w", err)
	}
	return &organizer, nil
}

func mapOrganizerConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		switch pgErr.ConstraintName {
		case "organizers_email_key":
			return accounts.ErrEmailTaken
		case "organizers_username_key":
			return accounts.ErrUsernameTaken
		}
	}
	return fmt.Errorf("create organizer: %w", err)
}
