package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/eventloka/server/internal/domain/events"
)

var _ events.Repository = (*EventRepository)(nil)

const eventColumns = `id, slug, name, description, category, location, price, quota,
       starts_at, ends_at, image_url, organizer_id, created_at, updated_at`

func (r *EventRepository) Create(ctx context.Context, event *events.Event) (*events.Event, error) {
	row := r.queryer().QueryRow(ctx, `
INSERT INTO events (slug, name, description, category, location, price, quota,
                    starts_at, ends_at, image_url, organizer_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING id, created_at, updated_at
`,
		event.Slug,
		event.Name,
		event.Description,
		event.Category,
		event.Location,
		event.Price,
		event.Quota,
		event.StartsAt,
		event.EndsAt,
		event.ImageURL,
		event.OrganizerID,
	)

	created := *event
	if err := row.Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return &created, nil
}

func (r *EventRepository) List(ctx context.Context, filters events.Filters, page events.Pagination) (events.ListResult, error) {
	const where = `($1 = '' OR category ILIKE '%' || $1 || '%')
   AND ($2 = '' OR location ILIKE '%' || $2 || '%')`

	row := r.queryer().QueryRow(ctx,
		`SELECT COUNT(*) FROM events WHERE `+where,
		filters.Category, filters.Location)

	var total int64
	if err := row.Scan(&total); err != nil {
		return events.ListResult{}, fmt.Errorf("count events: %w", err)
	}

	rows, err := r.queryer().Query(ctx, `
SELECT `+eventColumns+`
  FROM events
 WHERE `+where+`
 ORDER BY starts_at ASC, id ASC
 LIMIT $3 OFFSET $4
`, filters.Category, filters.Location, page.Limit, page.Offset)
	if err != nil {
		return events.ListResult{}, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	listed := make([]events.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return events.ListResult{}, err
		}
		listed = append(listed, *event)
	}
	if err := rows.Err(); err != nil {
		return events.ListResult{}, fmt.Errorf("iterate events: %w", err)
	}
	return events.ListResult{Events: listed, Total: total}, nil
}

func (r *EventRepository) GetBySlug(ctx context.Context, slug string) (*events.Event, error) {
	row := r.queryer().QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE slug = $1 LIMIT 1`, slug)
	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, events.ErrNotFound
		}
		return nil, err
	}
	return event, nil
}

func scanEvent(row pgx.Row) (*events.Event, error) {
	var event events.Event
	if err := row.Scan(
		&event.ID,
		&event.Slug,
		&event.Name,
		&event.Description,
		&event.Category,
		&event.Location,
		&event.Price,
		&event.Quota,
		&event.StartsAt,
		&event.EndsAt,
		&event.ImageURL,
		&event.OrganizerID,
		&event.CreatedAt,
		&event.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan event: %w", err)
	}
	return &event, nil
}
