package seatgeek

import (
	"context"
	"fmt"
	"strconv"

	"github.com/artpar/marquee/internal/favourites"
	"golang.org/x/sync/errgroup"
)

// ResolveConcurrency bounds parallel lookups in Resolve.
const ResolveConcurrency = 4

// Resolved is a favourite id paired with its display title. Err is set
// when the lookup failed; other items are unaffected.
type Resolved struct {
	Partition favourites.Partition
	ID        int
	Title     string
	Err       error
}

// Resolve looks up every id in set, events first, in id order. Lookups
// run concurrently and failures are recorded per item. The returned
// error is non-nil only if ctx ends.
func (c *Client) Resolve(ctx context.Context, set favourites.Set) ([]Resolved, error) {
	var results []Resolved
	for _, p := range favourites.Partitions {
		for _, id := range set.IDs(p) {
			results = append(results, Resolved{Partition: p, ID: id})
		}
	}

	var g errgroup.Group
	g.SetLimit(ResolveConcurrency)
	for i := range results {
		g.Go(func() error {
			title, err := c.Title(ctx, results[i].Partition, results[i].ID)
			results[i].Title = title
			results[i].Err = err
			return nil
		})
	}
	g.Wait()

	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

// Title looks up the display title of one favourite through the listing
// endpoint filtered by id.
func (c *Client) Title(ctx context.Context, p favourites.Partition, id int) (string, error) {
	opts := Options{"id": {strconv.Itoa(id)}}

	switch p {
	case favourites.Events:
		var body struct {
			Events []Event `json:"events"`
		}
		if err := c.Get(ctx, "/events", opts, &body); err != nil {
			return "", err
		}
		if len(body.Events) == 0 {
			return "", fmt.Errorf("event %d: %w", id, ErrNotFound)
		}
		return body.Events[0].ShortTitle, nil
	case favourites.Venues:
		var body struct {
			Venues []Venue `json:"venues"`
		}
		if err := c.Get(ctx, "/venues", opts, &body); err != nil {
			return "", err
		}
		if len(body.Venues) == 0 {
			return "", fmt.Errorf("venue %d: %w", id, ErrNotFound)
		}
		return body.Venues[0].NameV2, nil
	}
	return "", fmt.Errorf("%w: %q", favourites.ErrUnknownPartition, p)
}
