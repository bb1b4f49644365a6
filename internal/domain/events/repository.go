package events

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("event not found")

type Repository interface {
	Create(ctx context.Context, event *Event) (*Event, error)
	List(ctx context.Context, filters Filters, pagination Pagination) (ListResult, error)
	GetBySlug(ctx context.Context, slug string) (*Event, error)
}
