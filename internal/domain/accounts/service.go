package accounts

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/eventloka/server/internal/auth"
)

// Mailer dispatches the password-reset email. Delivery failures must not
// fail the reset request; the service only logs them.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, name, resetLink string) error
}

// Service implements the registration, login, and password-reset
// workflows for both account variants.
type Service struct {
	repo     Repository
	hasher   *auth.PasswordHasher
	tokens   *auth.JWTManager
	mailer   Mailer
	baseURL  string
	resetTTL time.Duration
	logger   zerolog.Logger
}

func NewService(repo Repository, hasher *auth.PasswordHasher, tokens *auth.JWTManager, mailer Mailer, baseURL string, resetTTL time.Duration, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		hasher:   hasher,
		tokens:   tokens,
		mailer:   mailer,
		baseURL:  baseURL,
		resetTTL: resetTTL,
		logger:   logger.With().Str("component", "accounts").Logger(),
	}
}

type RegisterUserParams struct {
	Username     string
	Email        string
	Password     string
	ReferralCode string
}

type RegisterOrganizerParams struct {
	Username         string
	Email            string
	Password         string
	OrganizationName string
}

// RegisterUser creates a new user account. When a referral code is
// supplied it must resolve to an existing user; the referrer is then
// credited with bonus points and the new user receives a welcome
// voucher. All writes happen in one transaction.
func (s *Service) RegisterUser(ctx context.Context, params RegisterUserParams) (*User, error) {
	passwordHash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return nil, err
	}

	referralCode, err := GenerateReferralCode(params.Username)
	if err != nil {
		return nil, err
	}

	var created *User
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		if err := checkUserIdentityFree(ctx, tx.Users(), params.Email, params.Username); err != nil {
			return err
		}

		var referrer *User
		if code := strings.TrimSpace(params.ReferralCode); code != "" {
			referrer, err = tx.Users().GetByReferralCode(ctx, code)
			if err != nil {
				if errors.Is(err, ErrAccountNotFound) {
					return ErrInvalidReferral
				}
				return fmt.Errorf("resolve referral code: %w", err)
			}
		}

		user := &User{
			Username:     params.Username,
			Email:        params.Email,
			PasswordHash: passwordHash,
			FirstName:    "-",
			LastName:     "-",
			Address:      "-",
			PhoneNumber:  "-",
			PhotoURL:     "-",
			Role:         RoleUser,
			ReferralCode: referralCode,
		}
		if referrer != nil {
			user.ReferredByID = &referrer.ID
		}

		created, err = tx.Users().Create(ctx, user)
		if err != nil {
			return err
		}

		if referrer == nil {
			return nil
		}

		if _, err := tx.Points().Create(ctx, &PointEntry{
			UserID: referrer.ID,
			Amount: ReferralBonusPoints,
			Type:   PointTypeEarn,
		}); err != nil {
			return fmt.Errorf("credit referrer: %w", err)
		}

		now := time.Now()
		if _, err := tx.Vouchers().Create(ctx, &Voucher{
			Code:           NewVoucherCode(),
			UserID:         created.ID,
			Quota:          VoucherQuota,
			DiscountAmount: VoucherDiscountAmount,
			ValidFrom:      now,
			ValidUntil:     now.AddDate(0, VoucherValidityMonths, 0),
			IsActive:       true,
		}); err != nil {
			return fmt.Errorf("issue welcome voucher: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", created.ID).
		Str("username", created.Username).
		Bool("referred", created.ReferredByID != nil).
		Msg("user registered")
	return created, nil
}

// RegisterOrganizer creates a new organizer account. No referral or
// voucher logic applies to organizers.
func (s *Service) RegisterOrganizer(ctx context.Context, params RegisterOrganizerParams) (*Organizer, error) {
	passwordHash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.Organizers().GetByEmail(ctx, params.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrAccountNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if _, err := s.repo.Organizers().GetByUsername(ctx, params.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, ErrAccountNotFound) {
		return nil, fmt.Errorf("check username: %w", err)
	}

	created, err := s.repo.Organizers().Create(ctx, &Organizer{
		Username:         params.Username,
		Email:            params.Email,
		PasswordHash:     passwordHash,
		OrganizationName: params.OrganizationName,
		Address:          "-",
		PhoneNumber:      "-",
		PhotoURL:         "-",
		Role:             RoleOrganizer,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("organizer_id", created.ID).
		Str("username", created.Username).
		Msg("organizer registered")
	return created, nil
}

// AuthToken is the result of a successful login.
type AuthToken struct {
	Token     string
	ExpiresAt time.Time
	Subject   auth.Subject
}

// Login resolves the identity as an email when it contains "@" and as a
// username otherwise, checking users before organizers.
func (s *Service) Login(ctx context.Context, identity, password string) (*AuthToken, error) {
	subject, passwordHash, err := s.lookupCredential(ctx, identity)
	if err != nil {
		return nil, err
	}

	if !s.hasher.Compare(password, passwordHash) {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Generate(subject)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	s.logger.Info().
		Str("subject", subject.ID).
		Str("role", subject.Role).
		Msg("login succeeded")
	return &AuthToken{Token: token, ExpiresAt: expiresAt, Subject: subject}, nil
}

// RequestPasswordReset issues a time-boxed reset token for the account
// matching email and dispatches the reset link. The raw token is
// returned to the caller; whether it is exposed over HTTP is the
// handler's decision. A failed email send is logged, not returned: the
// token is already persisted and the account owner can retry.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	token, err := NewResetToken()
	if err != nil {
		return "", err
	}
	tokenHash := HashResetToken(token)
	expiry := time.Now().Add(s.resetTTL)

	var name, to string
	if user, err := s.repo.Users().GetByEmail(ctx, email); err == nil {
		if err := s.repo.Users().SetResetToken(ctx, user.ID, tokenHash, expiry); err != nil {
			return "", fmt.Errorf("store reset token: %w", err)
		}
		name, to = user.Username, user.Email
	} else if !errors.Is(err, ErrAccountNotFound) {
		return "", fmt.Errorf("lookup account: %w", err)
	} else if organizer, err := s.repo.Organizers().GetByEmail(ctx, email); err == nil {
		if err := s.repo.Organizers().SetResetToken(ctx, organizer.ID, tokenHash, expiry); err != nil {
			return "", fmt.Errorf("store reset token: %w", err)
		}
		name, to = organizer.Username, organizer.Email
	} else if errors.Is(err, ErrAccountNotFound) {
		return "", ErrAccountNotFound
	} else {
		return "", fmt.Errorf("lookup account: %w", err)
	}

	resetLink := fmt.Sprintf("%s/reset-password?token=%s", s.baseURL, url.QueryEscape(token))
	if err := s.mailer.SendPasswordReset(ctx, to, name, resetLink); err != nil {
		s.logger.Error().Err(err).Str("email", to).Msg("failed to send password reset email")
	}

	return token, nil
}

// CompletePasswordReset exchanges a valid unexpired token for a new
// password, clearing the token and expiry together.
func (s *Service) CompletePasswordReset(ctx context.Context, token, newPassword string) error {
	tokenHash := HashResetToken(token)

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	if user, err := s.repo.Users().GetByResetToken(ctx, tokenHash); err == nil {
		if expired(user.ResetPasswordExpiry) {
			return ErrInvalidResetToken
		}
		if err := s.repo.Users().ResetPassword(ctx, user.ID, passwordHash); err != nil {
			return fmt.Errorf("reset password: %w", err)
		}
		s.logger.Info().Str("user_id", user.ID).Msg("password reset completed")
		return nil
	} else if !errors.Is(err, ErrAccountNotFound) {
		return fmt.Errorf("lookup reset token: %w", err)
	}

	if organizer, err := s.repo.Organizers().GetByResetToken(ctx, tokenHash); err == nil {
		if expired(organizer.ResetPasswordExpiry) {
			return ErrInvalidResetToken
		}
		if err := s.repo.Organizers().ResetPassword(ctx, organizer.ID, passwordHash); err != nil {
			return fmt.Errorf("reset password: %w", err)
		}
		s.logger.Info().Str("organizer_id", organizer.ID).Msg("password reset completed")
		return nil
	} else if !errors.Is(err, ErrAccountNotFound) {
		return fmt.Errorf("lookup reset token: %w", err)
	}

	return ErrInvalidResetToken
}

// ChangePassword rehashes and stores a new password for an
// authenticated account.
func (s *Service) ChangePassword(ctx context.Context, role, id, newPassword string) error {
	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	switch role {
	case RoleOrganizer:
		return s.repo.Organizers().UpdatePassword(ctx, id, passwordHash)
	default:
		return s.repo.Users().UpdatePassword(ctx, id, passwordHash)
	}
}

func (s *Service) GetUserProfile(ctx context.Context, id string) (*User, error) {
	return s.repo.Users().GetByID(ctx, id)
}

func (s *Service) UpdateUserProfile(ctx context.Context, id string, update ProfileUpdate) (*User, error) {
	return s.repo.Users().UpdateProfile(ctx, id, update)
}

func (s *Service) GetOrganizerProfile(ctx context.Context, id string) (*Organizer, error) {
	return s.repo.Organizers().GetByID(ctx, id)
}

func (s *Service) UpdateOrganizerProfile(ctx context.Context, id string, update ProfileUpdate) (*Organizer, error) {
	return s.repo.Organizers().UpdateProfile(ctx, id, update)
}

func (s *Service) ListPoints(ctx context.Context, userID string) ([]PointEntry, int64, error) {
	entries, err := s.repo.Points().ListByUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	balance, err := s.repo.Points().BalanceByUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return entries, balance, nil
}

func (s *Service) ListVouchers(ctx context.Context, userID string) ([]Voucher, error) {
	return s.repo.Vouchers().ListByUser(ctx, userID)
}

func (s *Service) lookupCredential(ctx context.Context, identity string) (auth.Subject, string, error) {
	byEmail := strings.Contains(identity, "@")

	var user *User
	var err error
	if byEmail {
		user, err = s.repo.Users().GetByEmail(ctx, identity)
	} else {
		user, err = s.repo.Users().GetByUsername(ctx, identity)
	}
	if err == nil {
		return auth.Subject{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			Role:     user.Role,
		}, user.PasswordHash, nil
	}
	if !errors.Is(err, ErrAccountNotFound) {
		return auth.Subject{}, "", fmt.Errorf("lookup user: %w", err)
	}

	var organizer *Organizer
	if byEmail {
		organizer, err = s.repo.Organizers().GetByEmail(ctx, identity)
	} else {
		organizer, err = s.repo.Organizers().GetByUsername(ctx, identity)
	}
	if err == nil {
		return auth.Subject{
			ID:               organizer.ID,
			Username:         organizer.Username,
			Email:            organizer.Email,
			Role:             organizer.Role,
			OrganizationName: organizer.OrganizationName,
		}, organizer.PasswordHash, nil
	}
	if !errors.Is(err, ErrAccountNotFound) {
		return auth.Subject{}, "", fmt.Errorf("lookup organizer: %w", err)
	}
	return auth.Subject{}, "", ErrAccountNotFound
}

func checkUserIdentityFree(ctx context.Context, users UserRepository, email, username string) error {
	if _, err := users.GetByEmail(ctx, email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, ErrAccountNotFound) {
		return fmt.Errorf("check email: %w", err)
	}
	if _, err := users.GetByUsername(ctx, username); err == nil {
		return ErrUsernameTaken
	} else if !errors.Is(err, ErrAccountNotFound) {
		return fmt.Errorf("check username: %w", err)
	}
	return nil
}

func expired(expiry *time.Time) bool {
	return expiry == nil || !expiry.After(time.Now())
}
