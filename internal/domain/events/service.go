package events

import (
	"context"
	"crypto/rand"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Name        string
	Description string
	Category    string
	Location    string
	Price       int64
	Quota       int
	StartsAt    time.Time
	EndsAt      time.Time
	ImageURL    string
	OrganizerID string
}

type FilterError struct {
	Field   string
	Message string
}

func (e FilterError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Event, error) {
	if params.EndsAt.Before(params.StartsAt) {
		return nil, FilterError{Field: "endsAt", Message: "must be on or after startsAt"}
	}

	slug, err := newSlug(params.Name)
	if err != nil {
		return nil, err
	}

	return s.repo.Create(ctx, &Event{
		Slug:        slug,
		Name:        params.Name,
		Description: params.Description,
		Category:    params.Category,
		Location:    params.Location,
		Price:       params.Price,
		Quota:       params.Quota,
		StartsAt:    params.StartsAt,
		EndsAt:      params.EndsAt,
		ImageURL:    params.ImageURL,
		OrganizerID: params.OrganizerID,
	})
}

func (s *Service) List(ctx context.Context, filters Filters, pagination Pagination) (ListResult, error) {
	return s.repo.List(ctx, filters, pagination)
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (*Event, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, FilterError{Field: "slug", Message: "missing"}
	}
	return s.repo.GetBySlug(ctx, slug)
}

func ParseFilters(values url.Values) (Filters, Pagination, error) {
	filters := Filters{
		Category: strings.TrimSpace(values.Get("category")),
		Location: strings.TrimSpace(values.Get("location")),
	}

	pagination := Pagination{Limit: 20}
	limit, err := parseBounded(values, "limit", 20, 1, 100)
	if err != nil {
		return filters, pagination, err
	}
	pagination.Limit = limit

	offset, err := parseBounded(values, "offset", 0, 0, 1<<30)
	if err != nil {
		return filters, pagination, err
	}
	pagination.Offset = offset

	return filters, pagination, nil
}

func parseBounded(values url.Values, field string, fallback, min, max int) (int, error) {
	raw := strings.TrimSpace(values.Get(field))
	if raw == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0, FilterError{Field: field, Message: "must be a number"}
	}
	if parsed < min || parsed > max {
		return 0, FilterError{Field: field, Message: fmt.Sprintf("must be between %d and %d", min, max)}
	}
	return parsed, nil
}

const slugSuffixCharset = "abcdefghijklmnopqrstuvwxyz0123456789"

// newSlug lowercases the name, replaces runs of non-alphanumerics with
// a dash, and appends a random suffix so two events may share a name.
func newSlug(name string) (string, error) {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	base := strings.Trim(b.String(), "-")
	if base == "" {
		base = "event"
	}

	suffix := make([]byte, 6)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("generate slug suffix: %w", err)
	}
	for i := range suffix {
		suffix[i] = slugSuffixCharset[int(suffix[i])%len(slugSuffixCharset)]
	}
	return base + "-" + string(suffix), nil
}
