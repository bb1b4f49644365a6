package accounts

import "time"

const (
	RoleUser      = "USER"
	RoleOrganizer = "ORGANIZER"
)

const (
	// ReferralBonusPoints is credited to the referrer when a referred
	// user registers.
	ReferralBonusPoints int64 = 10000

	// VoucherDiscountAmount and VoucherQuota describe the welcome voucher
	// issued to a referred user.
	VoucherDiscountAmount int64 = 10000
	VoucherQuota                = 1

	// VoucherValidityMonths is the welcome voucher validity window.
	VoucherValidityMonths = 3

	PointTypeEarn = "EARN"
)

// User is a ticket-buying account. Profile fields default to "-" until
// the user fills them in.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Address      string
	PhoneNumber  string
	PhotoURL     string
	Role         string
	ReferralCode string
	ReferredByID *string

	ResetPasswordToken  *string
	ResetPasswordExpiry *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Organizer is an event-hosting account. It parallels User rather than
// sharing a polymorphic hierarchy; both satisfy the credential surface
// (identity lookup, password hash, reset token state).
type Organizer struct {
	ID               string
	Username         string
	Email            string
	PasswordHash     string
	OrganizationName string
	Address          string
	PhoneNumber      string
	PhotoURL         string
	Role             string

	ResetPasswordToken  *string
	ResetPasswordExpiry *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Voucher is a discount code issued to a referred user at registration.
type Voucher struct {
	ID             string
	Code           string
	UserID         string
	Quota          int
	DiscountAmount int64
	ValidFrom      time.Time
	ValidUntil     time.Time
	IsActive       bool
	CreatedAt      time.Time
}

// PointEntry is one row of the append-only point ledger.
type PointEntry struct {
	ID        string
	UserID    string
	Amount    int64
	Type      string
	CreatedAt time.Time
}

// ProfileUpdate carries the mutable profile fields. Nil fields are left
// unchanged.
type ProfileUpdate struct {
	FirstName        *string
	LastName         *string
	Address          *string
	PhoneNumber      *string
	PhotoURL         *string
	OrganizationName *string
}
