package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/eventloka/server/internal/api/problem"
	"github.com/eventloka/server/internal/domain/accounts"
	"github.com/eventloka/server/internal/metrics"
)

// AuthHandler serves registration, login, and password reset.
type AuthHandler struct {
	accounts *accounts.Service
	env      string

	// exposeResetToken echoes the raw reset token in the forgot-password
	// response. Off outside development; the token normally travels only
	// by email.
	exposeResetToken bool
}

func NewAuthHandler(accountsService *accounts.Service, env string, exposeResetToken bool) *AuthHandler {
	return &AuthHandler{
		accounts:         accountsService,
		env:              env,
		exposeResetToken: exposeResetToken,
	}
}

type RegisterUserRequest struct {
	Username     string `json:"username" validate:"required,min=3,max=30,alphanum"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8,max=72"`
	ReferralCode string `json:"referralCode" validate:"omitempty,max=64"`
}

type RegisterOrganizerRequest struct {
	Username         string `json:"username" validate:"required,min=3,max=30,alphanum"`
	Email            string `json:"email" validate:"required,email"`
	Password         string `json:"password" validate:"required,min=8,max=72"`
	OrganizationName string `json:"organizationName" validate:"required,min=2,max=120"`
}

type UserResponse struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Address      string `json:"address"`
	PhoneNumber  string `json:"phoneNumber"`
	PhotoURL     string `json:"photoUrl"`
	Role         string `json:"role"`
	ReferralCode string `json:"referralCode"`
	CreatedAt    string `json:"createdAt"`
}

type OrganizerResponse struct {
	ID               string `json:"id"`
	Username         string `json:"username"`
	Email            string `json:"email"`
	OrganizationName string `json:"organizationName"`
	Address          string `json:"address"`
	PhoneNumber      string `json:"phoneNumber"`
	PhotoURL         string `json:"photoUrl"`
	Role             string `json:"role"`
	CreatedAt        string `json:"createdAt"`
}

func toUserResponse(user *accounts.User) UserResponse {
	return UserResponse{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Address:      user.Address,
		PhoneNumber:  user.PhoneNumber,
		PhotoURL:     user.PhotoURL,
		Role:         user.Role,
		ReferralCode: user.ReferralCode,
		CreatedAt:    user.CreatedAt.Format(time.RFC3339),
	}
}

func toOrganizerResponse(organizer *accounts.Organizer) OrganizerResponse {
	return OrganizerResponse{
		ID:               organizer.ID,
		Username:         organizer.Username,
		Email:            organizer.Email,
		OrganizationName: organizer.OrganizationName,
		Address:          organizer.Address,
		PhoneNumber:      organizer.PhoneNumber,
		PhotoURL:         organizer.PhotoURL,
		Role:             organizer.Role,
		CreatedAt:        organizer.CreatedAt.Format(time.RFC3339),
	}
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterUserRequest
	if !decodeAndValidate(w, r, &req, h.env) {
		return
	}

	user, err := h.accounts.RegisterUser(r.Context(), accounts.RegisterUserParams{
		Username:     req.Username,
		Email:        req.Email,
		Password:     req.Password,
		ReferralCode: req.ReferralCode,
	})
	if err != nil {
		switch {
		case errors.Is(err, accounts.ErrEmailTaken):
			problem.Write(w, r, http.StatusConflict, problem.TypeConflict, "Email already registered", nil, h.env,
				problem.WithDetail("An account with this email already exists."))
		case errors.Is(err, accounts.ErrUsernameTaken):
			problem.Write(w, r, http.StatusConflict, problem.TypeConflict, "Username already taken", nil, h.env,
				problem.WithDetail("An account with this username already exists."))
		case errors.Is(err, accounts.ErrInvalidReferral):
			problem.Write(w, r, http.StatusBadRequest, problem.TypeValidationError, "Invalid referral code", nil, h.env,
				problem.WithDetail("The referral code does not match any account."))
		default:
			problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Registration failed", err, h.env)
		}
		return
	}

	metrics.RegistrationsTotal.WithLabelValues(accounts.RoleUser, boolLabel(user.ReferredByID != nil)).Inc()
	writeJSON(w, r, http.StatusCreated, toUserResponse(user), h.env)
}

// RegisterOrganizer handles POST /api/v1/auth/register/organizer
func (h *AuthHandler) RegisterOrganizer(w http.ResponseWriter, r *http.Request) {
	var req RegisterOrganizerRequest
	if !decodeAndValidate(w, r, &req, h.env) {
		return
	}

	organizer, err := h.accounts.RegisterOrganizer(r.Context(), accounts.RegisterOrganizerParams{
		Username:         req.Username,
		Email:            req.Email,
		Password:         req.Password,
		OrganizationName: req.OrganizationName,
	})
	if err != nil {
		switch {
		case errors.Is(err, accounts.ErrEmailTaken):
			problem.Write(w, r, http.StatusConflict, problem.TypeConflict, "Email already registered", nil, h.env,
				problem.WithDetail("An organizer with this email already exists."))
		case errors.Is(err, accounts.ErrUsernameTaken):
			problem.Write(w, r, http.StatusConflict, problem.TypeConflict, "Username already taken", nil, h.env,
				problem.WithDetail("An organizer with this username already exists."))
		default:
			problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Registration failed", err, h.env)
		}
		return
	}

	metrics.RegistrationsTotal.WithLabelValues(accounts.RoleOrganizer, "false").Inc()
	writeJSON(w, r, http.StatusCreated, toOrganizerResponse(organizer), h.env)
}

type LoginRequest struct {
	// Identity is an email when it contains "@", a username otherwise.
	Identity string `json:"identity" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=72"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
	Role      string `json:"role"`
	Username  string `json:"username"`
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req, h.env) {
		return
	}

	token, err := h.accounts.Login(r.Context(), req.Identity, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, accounts.ErrAccountNotFound):
			metrics.LoginsTotal.WithLabelValues("not_found").Inc()
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Account not found", nil, h.env,
				problem.WithDetail("No account matches this email or username."))
		case errors.Is(err, accounts.ErrInvalidCredentials):
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
			problem.Write(w, r, http.StatusUnauthorized, problem.TypeInvalidCredentials, "Invalid credentials", nil, h.env,
				problem.WithDetail("The password does not match."))
		default:
			problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Login failed", err, h.env)
		}
		return
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	writeJSON(w, r, http.StatusOK, LoginResponse{
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt.Format(time.RFC3339),
		Role:      token.Subject.Role,
		Username:  token.Subject.Username,
	}, h.env)
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ForgotPasswordResponse struct {
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
}

// ForgotPassword handles POST /api/v1/auth/forgot-password
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if !decodeAndValidate(w, r, &req, h.env) {
		return
	}

	token, err := h.accounts.RequestPasswordReset(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, accounts.ErrAccountNotFound) {
			metrics.PasswordResetsTotal.WithLabelValues("request", "error").Inc()
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Account not found", nil, h.env,
				problem.WithDetail("No account matches this email."))
			return
		}
		metrics.PasswordResetsTotal.WithLabelValues("request", "error").Inc()
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Password reset failed", err, h.env)
		return
	}

	metrics.PasswordResetsTotal.WithLabelValues("request", "success").Inc()
	resp := ForgotPasswordResponse{
		Message: "A password reset link has been sent to your email.",
	}
	if h.exposeResetToken {
		resp.Token = token
	}
	writeJSON(w, r, http.StatusOK, resp, h.env)
}

type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// ResetPassword handles PATCH /api/v1/auth/reset-password
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if !decodeAndValidate(w, r, &req, h.env) {
		return
	}

	if err := h.accounts.CompletePasswordReset(r.Context(), req.Token, req.Password); err != nil {
		if errors.Is(err, accounts.ErrInvalidResetToken) {
			metrics.PasswordResetsTotal.WithLabelValues("complete", "error").Inc()
			problem.Write(w, r, http.StatusBadRequest, problem.TypeValidationError, "Invalid or expired reset token", nil, h.env,
				problem.WithDetail("The reset token is invalid or has expired. Request a new one."))
			return
		}
		metrics.PasswordResetsTotal.WithLabelValues("complete", "error").Inc()
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Password reset failed", err, h.env)
		return
	}

	metrics.PasswordResetsTotal.WithLabelValues("complete", "success").Inc()
	writeJSON(w, r, http.StatusOK, map[string]string{
		"message": "Password has been reset. You can now log in.",
	}, h.env)
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
