package events

import "time"

// Event is an organizer-owned listing, addressed publicly by slug.
type Event struct {
	ID          string
	Slug        string
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
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Filters struct {
	Category string
	Location string
}

type Pagination struct {
	Limit  int
	Offset int
}

type ListResult struct {
	Events []Event
	Total  int64
}
