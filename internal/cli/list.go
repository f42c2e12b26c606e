package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/artpar/marquee/internal/favourites"
	"github.com/artpar/marquee/internal/paging"
	"github.com/artpar/marquee/internal/seatgeek"
)

// ListOptions holds options for the events and venues commands.
type ListOptions struct {
	Pages     int
	StartPage int
	Query     []string
	JSON      bool
}

// NewEventsCommand creates the events command.
func NewEventsCommand(root *RootOptions) *cobra.Command {
	opts := &ListOptions{}

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List upcoming events",
		Long:  "List events by score, fetching successive pages the way the listing scrolls.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := parseQuery(opts.Query)
			if err != nil {
				return err
			}
			application, err := openApp(cmd, root, true)
			if err != nil {
				return err
			}
			defer application.Close()

			loader := application.EventsLoader(query, paging.WithInitialPage(opts.StartPage))
			return runList(cmd, application.Favourites(), loader, opts, favourites.Events,
				func(e seatgeek.Event) int { return e.ID },
				func(e seatgeek.Event) string {
					when, err := e.LocalTime()
					if err != nil {
						when = e.DatetimeUTC
					}
					return fmt.Sprintf("%s | %s, %s | %s", e.ShortTitle, e.Venue.NameV2, e.Venue.DisplayLocation, when)
				})
		},
	}

	addListFlags(cmd, opts)
	return cmd
}

// NewVenuesCommand creates the venues command.
func NewVenuesCommand(root *RootOptions) *cobra.Command {
	opts := &ListOptions{}

	cmd := &cobra.Command{
		Use:   "venues",
		Short: "List venues",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := parseQuery(opts.Query)
			if err != nil {
				return err
			}
			application, err := openApp(cmd, root, true)
			if err != nil {
				return err
			}
			defer application.Close()

			loader := application.VenuesLoader(query, paging.WithInitialPage(opts.StartPage))
			return runList(cmd, application.Favourites(), loader, opts, favourites.Venues,
				func(v seatgeek.Venue) int { return v.ID },
				func(v seatgeek.Venue) string {
					return fmt.Sprintf("%s | %s | %s", v.NameV2, v.DisplayLocation, v.Badge())
				})
		},
	}

	addListFlags(cmd, opts)
	return cmd
}

func addListFlags(cmd *cobra.Command, opts *ListOptions) {
	cmd.Flags().IntVarP(&opts.Pages, "pages", "n", 1, "Number of pages to fetch")
	cmd.Flags().IntVar(&opts.StartPage, "start-page", 1, "First page to fetch")
	cmd.Flags().StringArrayVarP(&opts.Query, "query", "q", nil, "Extra query parameter (format: key=value)")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output as JSON")
}

// parseQuery converts key=value strings to query options.
func parseQuery(pairs []string) (seatgeek.Options, error) {
	query := seatgeek.Options{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid query %q: expected key=value", pair)
		}
		query.Add(key, value)
	}
	return query, nil
}

type listResult[T any] struct {
	Items    []T  `json:"items"`
	NextPage int  `json:"next_page"`
	HasMore  bool `json:"has_more"`
}

func runList[T any](
	cmd *cobra.Command,
	store *favourites.Store,
	loader *paging.Loader[T, seatgeek.Options],
	opts *ListOptions,
	part favourites.Partition,
	id func(T) int,
	line func(T) string,
) error {
	if opts.Pages < 1 {
		return fmt.Errorf("--pages must be at least 1, got %d", opts.Pages)
	}
	ctx := context.Background()

	for i := 0; i < opts.Pages; i++ {
		fetched, err := loader.LoadMore(ctx)
		if err != nil {
			return err
		}
		if !fetched {
			break
		}
	}
	state := loader.State()

	if opts.JSON {
		return writeJSON(cmd, listResult[T]{Items: state.Items, NextPage: state.Page, HasMore: state.HasMore})
	}

	set, err := store.Load(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, item := range state.Items {
		fmt.Fprintf(out, "%s %8d  %s\n", favourites.Marker(set.Has(part, id(item))), id(item), line(item))
	}
	if state.HasMore {
		fmt.Fprintf(out, "\n%d loaded, more from --start-page %d\n", len(state.Items), state.Page)
	} else {
		fmt.Fprintf(out, "\n%d loaded. No more items.\n", len(state.Items))
	}
	return nil
}
