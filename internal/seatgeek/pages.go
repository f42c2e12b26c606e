package seatgeek

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/artpar/marquee/internal/paging"
)

// Page sizes used by the listings.
const (
	EventsPerPage = 12
	VenuesPerPage = 24
)

// FetchPage requests one page of endpoint and decodes the list stored
// under itemKey. A page shorter than perPage is the last one.
func FetchPage[T any](ctx context.Context, c *Client, endpoint, itemKey string, page int, query Options, perPage int) (paging.Page[T], error) {
	opts := make(Options, len(query)+2)
	for key, values := range query {
		opts[key] = append([]string(nil), values...)
	}
	opts.Set("page", strconv.Itoa(page))
	opts.Set("per_page", strconv.Itoa(perPage))

	var body map[string]json.RawMessage
	if err := c.Get(ctx, endpoint, opts, &body); err != nil {
		return paging.Page[T]{}, err
	}

	raw, ok := body[itemKey]
	if !ok {
		return paging.Page[T]{}, fmt.Errorf("%w: missing %q", ErrMalformedResponse, itemKey)
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return paging.Page[T]{}, fmt.Errorf("%w: %s: %v", ErrMalformedResponse, itemKey, err)
	}

	return paging.Page[T]{Items: items, HasMore: len(items) == perPage}, nil
}

// DefaultQuery is the default query for both listings: most popular first.
func DefaultQuery() Options {
	return Options{"sort": {"score.desc"}}
}

// EventsFetcher returns a page source for /events. A non-positive
// perPage uses EventsPerPage.
func EventsFetcher(c *Client, perPage int) paging.FetchFunc[Event, Options] {
	if perPage <= 0 {
		perPage = EventsPerPage
	}
	return func(ctx context.Context, page int, query Options) (paging.Page[Event], error) {
		return FetchPage[Event](ctx, c, "/events", "events", page, query, perPage)
	}
}

// VenuesFetcher returns a page source for /venues. A non-positive
// perPage uses VenuesPerPage.
func VenuesFetcher(c *Client, perPage int) paging.FetchFunc[Venue, Options] {
	if perPage <= 0 {
		perPage = VenuesPerPage
	}
	return func(ctx context.Context, page int, query Options) (paging.Page[Venue], error) {
		return FetchPage[Venue](ctx, c, "/venues", "venues", page, query, perPage)
	}
}

// Event fetches one event by id.
func (c *Client) Event(ctx context.Context, id int) (Event, error) {
	var event Event
	if err := c.Get(ctx, fmt.Sprintf("events/%d", id), nil, &event); err != nil {
		return Event{}, fmt.Errorf("event %d: %w", id, err)
	}
	return event, nil
}

// Venue fetches one venue by id.
func (c *Client) Venue(ctx context.Context, id int) (Venue, error) {
	var venue Venue
	if err := c.Get(ctx, fmt.Sprintf("venues/%d", id), nil, &venue); err != nil {
		return Venue{}, fmt.Errorf("venue %d: %w", id, err)
	}
	return venue, nil
}
