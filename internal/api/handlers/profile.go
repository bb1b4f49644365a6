package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/eventloka/server/internal/api/middleware"
	"github.com/eventloka/server/internal/api/problem"
	"github.com/eventloka/server/internal/domain/accounts"
)

// ProfileHandler serves the authenticated account's profile, password
// change, points, and vouchers.
type ProfileHandler struct {
	accounts *accounts.Service
	env      string
}

func NewProfileHandler(accountsService *accounts.Service, env string) *ProfileHandler {
	return &ProfileHandler{accounts: accountsService, env: env}
}

type UpdateProfileRequest struct {
	FirstName        *string `json:"firstName" validate:"omitempty,max=100"`
	LastName         *string `json:"lastName" validate:"omitempty,max=100"`
	Address          *string `json:"address" validate:"omitempty,max=255"`
	PhoneNumber      *string `json:"phoneNumber" validate:"omitempty,max=32"`
	PhotoURL         *string `json:"photoUrl" validate:"omitempty,url,max=2048"`
	OrganizationName *string `json:"organizationName" validate:"omitempty,min=2,max=120"`
}

// GetProfile handles GET /api/v1/profile
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r.Context())
	if claims == nil {
		problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Authentication required", nil, h.env)
		return
	}

	if claims.Role == accounts.RoleOrganizer {
		organizer, err := h.accounts.GetOrganizerProfile(r.Context(), claims.Subject)
		if err != nil {
			h.writeLookupError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, toOrganizerResponse(organizer), h.env)
		return
	}

	user, err := h.accounts.GetUserProfile(r.Context(), claims.Subject)
	if err != nil {
		h.writeLookupError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toUserResponse(user), h.env)
}

// UpdateProfile handles PATCH /api/v1/profile
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r.Context())
	if claims == nil {
		problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Authentication required", nil, h.env)
		return
	}

	var req UpdateProfileRequest
	if !decodeAndValidate(w, r, &req, h.env) {
		return
	}

	update := accounts.ProfileUpdate{
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Address:          req.Address,
		PhoneNumber:      req.PhoneNumber,
		PhotoURL:         req.PhotoURL,
		OrganizationName: req.OrganizationName,
	}

	if claims.Role == accounts.RoleOrganizer {
		organizer, err := h.accounts.UpdateOrganizerProfile(r.Context(), claims.Subject, update)
		if err != nil {
			h.writeLookupError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, toOrganizerResponse(organizer), h.env)
		return
	}

	user, err := h.accounts.UpdateUserProfile(r.Context(), claims.Subject, update)
	if err != nil {
		h.writeLookupError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toUserResponse(user), h.env)
}

type ChangePasswordRequest struct {
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// ChangePassword handles PATCH /api/v1/profile/password
func (h *ProfileHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r.Context())
	if claims == nil {
		problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Authentication required", nil, h.env)
		return
	}

	var req ChangePasswordRequest
	if !decodeAndValidate(w, r, &req, h.env) {
		return
	}

	if err := h.accounts.ChangePassword(r.Context(), claims.Role, claims.Subject, req.Password); err != nil {
		h.writeLookupError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]string{"message": "Password updated."}, h.env)
}

type PointEntryResponse struct {
	ID        string `json:"id"`
	Amount    int64  `json:"amount"`
	Type      string `json:"type"`
	CreatedAt string `json:"createdAt"`
}

type PointsResponse struct {
	Balance int64                `json:"balance"`
	Entries []PointEntryResponse `json:"entries"`
}

// ListPoints handles GET /api/v1/profile/points
func (h *ProfileHandler) ListPoints(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r.Context())
	if claims == nil {
		problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Authentication required", nil, h.env)
		return
	}

	entries, balance, err := h.accounts.ListPoints(r.Context(), claims.Subject)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Failed to load points", err, h.env)
		return
	}

	resp := PointsResponse{Balance: balance, Entries: make([]PointEntryResponse, 0, len(entries))}
	for _, entry := range entries {
		resp.Entries = append(resp.Entries, PointEntryResponse{
			ID:        entry.ID,
			Amount:    entry.Amount,
			Type:      entry.Type,
			CreatedAt: entry.CreatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, r, http.StatusOK, resp, h.env)
}

type VoucherResponse struct {
	ID             string `json:"id"`
	Code           string `json:"code"`
	Quota          int    `json:"quota"`
	DiscountAmount int64  `json:"discountAmount"`
	ValidFrom      string `json:"validFrom"`
	ValidUntil     string `json:"validUntil"`
	IsActive       bool   `json:"isActive"`
}

// ListVouchers handles GET /api/v1/profile/vouchers
func (h *ProfileHandler) ListVouchers(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r.Context())
	if claims == nil {
		problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Authentication required", nil, h.env)
		return
	}

	vouchers, err := h.accounts.ListVouchers(r.Context(), claims.Subject)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Failed to load vouchers", err, h.env)
		return
	}

	resp := make([]VoucherResponse, 0, len(vouchers))
	for _, voucher := range vouchers {
		resp = append(resp, VoucherResponse{
			ID:             voucher.ID,
			Code:           voucher.Code,
			Quota:          voucher.Quota,
			DiscountAmount: voucher.DiscountAmount,
			ValidFrom:      voucher.ValidFrom.Format(time.RFC3339),
			ValidUntil:     voucher.ValidUntil.Format(time.RFC3339),
			IsActive:       voucher.IsActive,
		})
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"vouchers": resp}, h.env)
}

func (h *ProfileHandler) writeLookupError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, accounts.ErrAccountNotFound) {
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Account not found", nil, h.env)
		return
	}
	problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Profile operation failed", err, h.env)
}
