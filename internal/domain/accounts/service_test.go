package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventloka/server/internal/auth"
)

// fakeRepo is an in-memory Repository. WithTx snapshots state and
// restores it when fn fails, mirroring transaction rollback.
type fakeRepo struct {
	users      map[string]*User
	organizers map[string]*Organizer
	vouchers   []Voucher
	points     []PointEntry
	seq        int

	failVoucherCreate bool
	failPointCreate   bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:      make(map[string]*User),
		organizers: make(map[string]*Organizer),
	}
}

func (r *fakeRepo) nextID(prefix string) string {
	r.seq++
	return fmt.Sprintf("%s-%d", prefix, r.seq)
}

func (r *fakeRepo) Users() UserRepository           { return &fakeUsers{r} }
func (r *fakeRepo) Organizers() OrganizerRepository { return &fakeOrganizers{r} }
func (r *fakeRepo) Vouchers() VoucherRepository     { return &fakeVouchers{r} }
func (r *fakeRepo) Points() PointRepository         { return &fakePoints{r} }

func (r *fakeRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	snapshot := r.snapshot()
	if err := fn(ctx, r); err != nil {
		r.restore(snapshot)
		return err
	}
	return nil
}

type repoState struct {
	users      map[string]*User
	organizers map[string]*Organizer
	vouchers   []Voucher
	points     []PointEntry
	seq        int
}

func (r *fakeRepo) snapshot() repoState {
	users := make(map[string]*User, len(r.users))
	for id, u := range r.users {
		copied := *u
		users[id] = &copied
	}
	organizers := make(map[string]*Organizer, len(r.organizers))
	for id, o := range r.organizers {
		copied := *o
		organizers[id] = &copied
	}
	return repoState{
		users:      users,
		organizers: organizers,
		vouchers:   append([]Voucher(nil), r.vouchers...),
		points:     append([]PointEntry(nil), r.points...),
		seq:        r.seq,
	}
}

func (r *fakeRepo) restore(s repoState) {
	r.users = s.users
	r.organizers = s.organizers
	r.vouchers = s.vouchers
	r.points = s.points
	r.seq = s.seq
}

type fakeUsers struct{ r *fakeRepo }

func (f *fakeUsers) Create(_ context.Context, user *User) (*User, error) {
	created := *user
	created.ID = f.r.nextID("user")
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	f.r.users[created.ID] = &created
	out := created
	return &out, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*User, error) {
	if u, ok := f.r.users[id]; ok {
		out := *u
		return &out, nil
	}
	return nil, ErrAccountNotFound
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*User, error) {
	return f.find(func(u *User) bool { return u.Email == email })
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*User, error) {
	return f.find(func(u *User) bool { return u.Username == username })
}

func (f *fakeUsers) GetByReferralCode(_ context.Context, code string) (*User, error) {
	return f.find(func(u *User) bool { return u.ReferralCode == code })
}

func (f *fakeUsers) GetByResetToken(_ context.Context, tokenHash string) (*User, error) {
	return f.find(func(u *User) bool {
		return u.ResetPasswordToken != nil && *u.ResetPasswordToken == tokenHash
	})
}

func (f *fakeUsers) find(match func(*User) bool) (*User, error) {
	for _, u := range f.r.users {
		if match(u) {
			out := *u
			return &out, nil
		}
	}
	return nil, ErrAccountNotFound
}

func (f *fakeUsers) UpdateProfile(_ context.Context, id string, update ProfileUpdate) (*User, error) {
	u, ok := f.r.users[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	if update.FirstName != nil {
		u.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		u.LastName = *update.LastName
	}
	if update.Address != nil {
		u.Address = *update.Address
	}
	if update.PhoneNumber != nil {
		u.PhoneNumber = *update.PhoneNumber
	}
	if update.PhotoURL != nil {
		u.PhotoURL = *update.PhotoURL
	}
	u.UpdatedAt = time.Now()
	out := *u
	return &out, nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id string, passwordHash string) error {
	u, ok := f.r.users[id]
	if !ok {
		return ErrAccountNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (f *fakeUsers) SetResetToken(_ context.Context, id string, tokenHash string, expiry time.Time) error {
	u, ok := f.r.users[id]
	if !ok {
		return ErrAccountNotFound
	}
	u.ResetPasswordToken = &tokenHash
	u.ResetPasswordExpiry = &expiry
	return nil
}

func (f *fakeUsers) ResetPassword(_ context.Context, id string, passwordHash string) error {
	u, ok := f.r.users[id]
	if !ok {
		return ErrAccountNotFound
	}
	u.PasswordHash = passwordHash
	u.ResetPasswordToken = nil
	u.ResetPasswordExpiry = nil
	return nil
}

type fakeOrganizers struct{ r *fakeRepo }

func (f *fakeOrganizers) Create(_ context.Context, organizer *Organizer) (*Organizer, error) {
	created := *organizer
	created.ID = f.r.nextID("org")
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	f.r.organizers[created.ID] = &created
	out := created
	return &out, nil
}

func (f *fakeOrganizers) GetByID(_ context.Context, id string) (*Organizer, error) {
	if o, ok := f.r.organizers[id]; ok {
		out := *o
		return &out, nil
	}
	return nil, ErrAccountNotFound
}

func (f *fakeOrganizers) GetByEmail(_ context.Context, email string) (*Organizer, error) {
	return f.find(func(o *Organizer) bool { return o.Email == email })
}

func (f *fakeOrganizers) GetByUsername(_ context.Context, username string) (*Organizer, error) {
	return f.find(func(o *Organizer) bool { return o.Username == username })
}

func (f *fakeOrganizers) GetByResetToken(_ context.Context, tokenHash string) (*Organizer, error) {
	return f.find(func(o *Organizer) bool {
		return o.ResetPasswordToken != nil && *o.ResetPasswordToken == tokenHash
	})
}

func (f *fakeOrganizers) find(match func(*Organizer) bool) (*Organizer, error) {
	for _, o := range f.r.organizers {
		if match(o) {
			out := *o
			return &out, nil
		}
	}
	return nil, ErrAccountNotFound
}

func (f *fakeOrganizers) UpdateProfile(_ context.Context, id string, update ProfileUpdate) (*Organizer, error) {
	o, ok := f.r.organizers[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	if update.OrganizationName != nil {
		o.OrganizationName = *update.OrganizationName
	}
	if update.Address != nil {
		o.Address = *update.Address
	}
	if update.PhoneNumber != nil {
		o.PhoneNumber = *update.PhoneNumber
	}
	if update.PhotoURL != nil {
		o.PhotoURL = *update.PhotoURL
	}
	o.UpdatedAt = time.Now()
	out := *o
	return &out, nil
}

func (f *fakeOrganizers) UpdatePassword(_ context.Context, id string, passwordHash string) error {
	o, ok := f.r.organizers[id]
	if !ok {
		return ErrAccountNotFound
	}
	o.PasswordHash = passwordHash
	return nil
}

func (f *fakeOrganizers) SetResetToken(_ context.Context, id string, tokenHash string, expiry time.Time) error {
	o, ok := f.r.organizers[id]
	if !ok {
		return ErrAccountNotFound
	}
	o.ResetPasswordToken = &tokenHash
	o.ResetPasswordExpiry = &expiry
	return nil
}

func (f *fakeOrganizers) ResetPassword(_ context.Context, id string, passwordHash string) error {
	o, ok := f.r.organizers[id]
	if !ok {
		return ErrAccountNotFound
	}
	o.PasswordHash = passwordHash
	o.ResetPasswordToken = nil
	o.ResetPasswordExpiry = nil
	return nil
}

type fakeVouchers struct{ r *fakeRepo }

func (f *fakeVouchers) Create(_ context.Context, voucher *Voucher) (*Voucher, error) {
	if f.r.failVoucherCreate {
		return nil, errors.New("voucher insert failed")
	}
	created := *voucher
	created.ID = f.r.nextID("voucher")
	created.CreatedAt = time.Now()
	f.r.vouchers = append(f.r.vouchers, created)
	out := created
	return &out, nil
}

func (f *fakeVouchers) ListByUser(_ context.Context, userID string) ([]Voucher, error) {
	var out []Voucher
	for _, v := range f.r.vouchers {
		if v.UserID == userID {
			out = append(out, v)
		}
	}
	return out, nil
}

type fakePoints struct{ r *fakeRepo }

func (f *fakePoints) Create(_ context.Context, entry *PointEntry) (*PointEntry, error) {
	if f.r.failPointCreate {
		return nil, errors.New("point insert failed")
	}
	created := *entry
	created.ID = f.r.nextID("point")
	created.CreatedAt = time.Now()
	f.r.points = append(f.r.points, created)
	out := created
	return &out, nil
}

func (f *fakePoints) ListByUser(_ context.Context, userID string) ([]PointEntry, error) {
	var out []PointEntry
	for _, p := range f.r.points {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePoints) BalanceByUser(_ context.Context, userID string) (int64, error) {
	var balance int64
	for _, p := range f.r.points {
		if p.UserID == userID {
			balance += p.Amount
		}
	}
	return balance, nil
}

type fakeMailer struct {
	sent []sentMail
	fail bool
}

type sentMail struct {
	to, name, link string
}

func (m *fakeMailer) SendPasswordReset(_ context.Context, to, name, resetLink string) error {
	if m.fail {
		return errors.New("smtp unreachable")
	}
	m.sent = append(m.sent, sentMail{to: to, name: name, link: resetLink})
	return nil
}

func newTestService(repo Repository, mailer Mailer) *Service {
	hasher := auth.NewPasswordHasher()
	tokens := auth.NewJWTManager("test-secret-at-least-32-bytes-long!", time.Hour, "eventloka-test")
	return NewService(repo, hasher, tokens, mailer, "https://app.eventloka.com", time.Hour, zerolog.Nop())
}

func TestRegisterUser(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeMailer{})

	user, err := svc.RegisterUser(context.Background(), RegisterUserParams{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "correcthorse",
	})
	require.NoError(t, err)

	assert.Equal(t, RoleUser, user.Role)
	assert.Equal(t, "-", user.FirstName)
	assert.Equal(t, "-", user.LastName)
	assert.Equal(t, "-", user.Address)
	assert.Equal(t, "-", user.PhoneNumber)
	assert.Equal(t, "-", user.PhotoURL)
	assert.True(t, strings.HasPrefix(user.ReferralCode, "ref_alice_"), "referral code %q", user.ReferralCode)
	assert.Nil(t, user.ReferredByID)
	assert.NotEqual(t, "correcthorse", user.PasswordHash, "password must be stored hashed")

	// No referral: no ledger entries, no vouchers.
	assert.Empty(t, repo.points)
	assert.Empty(t, repo.vouchers)
}

func TestRegisterUser_Conflicts(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeMailer{})

	_, err := svc.RegisterUser(context.Background(), RegisterUserParams{
		Username: "alice", Email: "alice@example.com", Password: "correcthorse",
	})
	require.NoError(t, err)

	_, err = svc.RegisterUser(context.Background(), RegisterUserParams{
		Username: "alice2", Email: "alice@example.com", Password: "correcthorse",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = svc.RegisterUser(context.Background(), RegisterUserParams{
		Username: "alice", Email: "other@example.com", Password: "correcthorse",
	})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestRegisterUser_InvalidReferral(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeMailer{})

	_, err := svc.RegisterUser(context.Background(), RegisterUserParams{
		Username:     "bob",
		Email:        "bob@example.com",
		Password:     "correcthorse",
		ReferralCode: "ref_nobody_zzzz",
	})
	assert.ErrorIs(t, err, ErrInvalidReferral)
	assert.Empty(t, repo.users, "no account may be created on a bad referral")
}

func TestRegisterUser_ReferralRewards(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeMailer{})
	ctx := context.Background()

	alice, err := svc.RegisterUser(ctx, RegisterUserParams{
		Username: "alice", Email: "alice@example.com", Password: "correcthorse",
	})
	require.NoError(t, err)

	bob, err := svc.RegisterUser(ctx, RegisterUserParams{
		Username:     "bob",
		Email:        "bob@example.com",
		Password:     "batterystaple",
		ReferralCode: alice.ReferralCode,
	})
	require.NoError(t, err)

	require.NotNil(t, bob.ReferredByID)
	assert.Equal(t, alice.ID, *bob.ReferredByID)

	// Alice earns the referral bonus.
	entries, balance, err := svc.ListPoints(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ReferralBonusPoints, entries[0].Amount)
	assert.Equal(t, PointTypeEarn, entries[0].Type)
	assert.Equal(t, ReferralBonusPoints, balance)

	// Bob gets the welcome voucher.
	vouchers, err := svc.ListVouchers(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, vouchers, 1)
	voucher := vouchers[0]
	assert.Equal(t, VoucherQuota, voucher.Quota)
	assert.Equal(t, VoucherDiscountAmount, voucher.DiscountAmount)
	assert.True(t, voucher.IsActive)
	assert.True(t, strings.HasPrefix(voucher.Code, "VCR-"))

	wantExpiry := voucher.ValidFrom.AddDate(0, VoucherValidityMonths, 0)
	assert.WithinDuration(t, wantExpiry, voucher.ValidUntil, time.Second)

	// Bob's registration must not reward Bob.
	_, bobBalance, err := svc.ListPoints(ctx, bob.ID)
	require.NoError(t, err)
	assert.Zero(t, bobBalance)
	aliceVouchers, err := svc.ListVouchers(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, aliceVouchers)
}

func TestRegisterUser_ReferralIsAtomic(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeMailer{})
	ctx := context.Background()

	alice, err := svc.RegisterUser(ctx, RegisterUserParams{
		Username: "alice", Email: "alice@example.com", Password: "correcthorse",
	})
	require.NoError(t, err)

	repo.failVoucherCreate = true
	_, err = svc.RegisterUser(ctx, RegisterUserParams{
		Username:     "bob",
		Email:        "bob@example.com",
		Password:     "batterystaple",
		ReferralCode: alice.ReferralCode,
	})
	require.Error(t, err)

	// The whole registration rolls back: no account, no ledger entry.
	_, err = repo.Users().GetByEmail(ctx, "bob@example.com")
	assert.ErrorIs(t, err, ErrAccountNotFound)
	_, balance, err := svc.ListPoints(ctx, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, balance)
}

func TestRegisterOrganizer(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeMailer{})
	ctx := context.Background()

	organizer, err := svc.RegisterOrganizer(ctx, RegisterOrganizerParams{
		Username:         "venuehall",
		Email:            "events@venuehall.com",
		Password:         "correcthorse",
		OrganizationName: "Venue Hall",
	})
	require.NoError(t, err)
	assert.Equal(t, RoleOrganizer, organizer.Role)
	assert.Equal(t, "Venue Hall", organizer.OrganizationName)
	assert.Equal(t, "-", organizer.Address)

	_, err = svc.RegisterOrganizer(ctx, RegisterOrganizerParams{
		Username: "other", Email: "events@venuehall.com", Password: "pw123456789", OrganizationName: "Other",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = svc.RegisterOrganizer(ctx, RegisterOrganizerParams{
		Username: "venuehall", Email: "other@venuehall.com", Password: "pw123456789", OrganizationName: "Other",
	})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestLogin(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeMailer{})
	ctx := context.Background()

	_, err := svc.RegisterUser(ctx, RegisterUserParams{
		Username: "alice", Email: "alice@example.com", Password: "correcthorse",
	})
	require.NoError(t, err)

	t.Run("by email", func(t *testing.T) {
		token, err := svc.Login(ctx, "alice@example.com", "correcthorse")
		require.NoError(t, err)
		assert.NotEmpty(t, token.Token)
		assert.Equal(t, RoleUser, token.Subject.Role)
		assert.Equal(t, "alice", token.Subject.Username)
		assert.True(t, token.ExpiresAt.After(time.Now()))
	})

	t.Run("by username", func(t *testing.T) {
		token, err := svc.Login(ctx, "alice", "correcthorse")
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", token.Subject.Email)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "alice", "wrongpassword")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown identity", func(t *testing.T) {
		_, err := svc.Login(ctx, "nobody", "correcthorse")
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})
}

func TestLogin_Organizer(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeMailer{})
	ctx := context.Background()

	_, err := svc.RegisterOrganizer(ctx, RegisterOrganizerParams{
		Username:         "venuehall",
		Email:            "events@venuehall.com",
		Password:         "correcthorse",
		OrganizationName: "Venue Hall",
	})
	require.NoError(t, err)

	token, err := svc.Login(ctx, "events@venuehall.com", "correcthorse")
	require.NoError(t, err)
	assert.Equal(t, RoleOrganizer, token.Subject.Role)
	assert.Equal(t, "Venue Hall", token.Subject.OrganizationName)
}

func TestRequestPasswordReset(t *testing.T) {
	repo := newFakeRepo()
	mailer := &fakeMailer{}
	svc := newTestService(repo, mailer)
	ctx := context.Background()

	user, err := svc.RegisterUser(ctx, RegisterUserParams{
		Username: "alice", Email: "alice@example.com", Password: "correcthorse",
	})
	require.NoError(t, err)

	token, err := svc.RequestPasswordReset(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// Only the hash is stored.
	stored := repo.users[user.ID]
	require.NotNil(t, stored.ResetPasswordToken)
	assert.NotEqual(t, token, *stored.ResetPasswordToken)
	assert.Equal(t, HashResetToken(token), *stored.ResetPasswordToken)
	require.NotNil(t, stored.ResetPasswordExpiry)
	assert.WithinDuration(t, time.Now().Add(time.Hour), *stored.ResetPasswordExpiry, 5*time.Second)

	// The email carries the reset link.
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "alice@example.com", mailer.sent[0].to)
	assert.Contains(t, mailer.sent[0].link, "https://app.eventloka.com/reset-password?token=")
}

func TestRequestPasswordReset_UnknownEmail(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeMailer{})

	_, err := svc.RequestPasswordReset(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestRequestPasswordReset_EmailFailureStillIssuesToken(t *testing.T) {
	repo := newFakeRepo()
	mailer := &fakeMailer{fail: true}
	svc := newTestService(repo, mailer)
	ctx := context.Background()

	user, err := svc.RegisterUser(ctx, RegisterUserParams{
		Username: "alice", Email: "alice@example.com", Password: "correcthorse",
	})
	require.NoError(t, err)

	token, err := svc.RequestPasswordReset(ctx, "alice@example.com")
	require.NoError(t, err, "a failed email send must not fail the request")
	assert.NotEmpty(t, token)
	assert.NotNil(t, repo.users[user.ID].ResetPasswordToken, "token persists despite the send failure")
}

func TestCompletePasswordReset(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeMailer{})
	ctx := context.Background()

	user, err := svc.RegisterUser(ctx, RegisterUserParams{
		Username: "alice", Email: "alice@example.com", Password: "correcthorse",
	})
	require.NoError(t, err)

	token, err := svc.RequestPasswordReset(ctx, "alice@example.com")
	require.NoError(t, err)

	require.NoError(t, svc.CompletePasswordReset(ctx, token, "newsecret123"))

	// Token and expiry are cleared together.
	stored := repo.users[user.ID]
	assert.Nil(t, stored.ResetPasswordToken)
	assert.Nil(t, stored.ResetPasswordExpiry)

	// Old password no longer works, new one does.
	_, err = svc.Login(ctx, "alice", "correcthorse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "alice", "newsecret123")
	assert.NoError(t, err)

	// The token is single-use.
	err = svc.CompletePasswordReset(ctx, token, "anothersecret")
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestCompletePasswordReset_Expired(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeMailer{})
	ctx := context.Background()

	user, err := svc.RegisterUser(ctx, RegisterUserParams{
		Username: "alice", Email: "alice@example.com", Password: "correcthorse",
	})
	require.NoError(t, err)

	token, err := NewResetToken()
	require.NoError(t, err)
	expired := time.Now().Add(-time.Minute)
	require.NoError(t, repo.Users().SetResetToken(ctx, user.ID, HashResetToken(token), expired))

	err = svc.CompletePasswordReset(ctx, token, "newsecret123")
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestCompletePasswordReset_UnknownToken(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeMailer{})

	err := svc.CompletePasswordReset(context.Background(), "bogus-token", "newsecret123")
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestPasswordReset_Organizer(t *testing.T) {
	repo := newFakeRepo()
	mailer := &fakeMailer{}
	svc := newTestService(repo, mailer)
	ctx := context.Background()

	_, err := svc.RegisterOrganizer(ctx, RegisterOrganizerParams{
		Username:         "venuehall",
		Email:            "events@venuehall.com",
		Password:         "correcthorse",
		OrganizationName: "Venue Hall",
	})
	require.NoError(t, err)

	token, err := svc.RequestPasswordReset(ctx, "events@venuehall.com")
	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)

	require.NoError(t, svc.CompletePasswordReset(ctx, token, "newsecret123"))

	_, err = svc.Login(ctx, "venuehall", "newsecret123")
	assert.NoError(t, err)
}

func TestChangePassword(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeMailer{})
	ctx := context.Background()

	user, err := svc.RegisterUser(ctx, RegisterUserParams{
		Username: "alice", Email: "alice@example.com", Password: "correcthorse",
	})
	require.NoError(t, err)

	require.NoError(t, svc.ChangePassword(ctx, RoleUser, user.ID, "updatedsecret"))

	_, err = svc.Login(ctx, "alice", "updatedsecret")
	assert.NoError(t, err)
}

func TestUpdateUserProfile(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeMailer{})
	ctx := context.Background()

	user, err := svc.RegisterUser(ctx, RegisterUserParams{
		Username: "alice", Email: "alice@example.com", Password: "correcthorse",
	})
	require.NoError(t, err)

	first := "Alice"
	phone := "+6281234567890"
	updated, err := svc.UpdateUserProfile(ctx, user.ID, ProfileUpdate{
		FirstName:   &first,
		PhoneNumber: &phone,
	})
	require.NoError(t, err)

	assert.Equal(t, "Alice", updated.FirstName)
	assert.Equal(t, "+6281234567890", updated.PhoneNumber)
	// Untouched fields keep their placeholders.
	assert.Equal(t, "-", updated.LastName)
	assert.Equal(t, "-", updated.Address)
}

func TestUpdateOrganizerProfile(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeMailer{})
	ctx := context.Background()

	organizer, err := svc.RegisterOrganizer(ctx, RegisterOrganizerParams{
		Username:         "venuehall",
		Email:            "events@venuehall.com",
		Password:         "correcthorse",
		OrganizationName: "Venue Hall",
	})
	require.NoError(t, err)

	name := "Venue Hall Group"
	updated, err := svc.UpdateOrganizerProfile(ctx, organizer.ID, ProfileUpdate{
		OrganizationName: &name,
	})
	require.NoError(t, err)
	assert.Equal(t, "Venue Hall Group", updated.OrganizationName)
}
