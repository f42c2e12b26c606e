package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/artpar/marquee/internal/favourites"
	"github.com/artpar/marquee/internal/seatgeek"
)

// DetailOptions holds options for the event and venue commands.
type DetailOptions struct {
	JSON bool
}

type eventDetail struct {
	seatgeek.Event
	StartsAt  *time.Time `json:"starts_at,omitempty"`
	LocalTime string     `json:"local_time,omitempty"`
	Image     string     `json:"image,omitempty"`
	Favourite bool       `json:"favourite"`
}

type venueDetail struct {
	seatgeek.Venue
	Favourite bool `json:"favourite"`
}

// NewEventCommand creates the event command.
func NewEventCommand(root *RootOptions) *cobra.Command {
	opts := &DetailOptions{}

	cmd := &cobra.Command{
		Use:   "event ID",
		Short: "Show one event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			application, err := openApp(cmd, root, true)
			if err != nil {
				return err
			}
			defer application.Close()

			ctx := context.Background()
			event, err := application.Client().Event(ctx, id)
			if err != nil {
				return err
			}
			favourite := application.Favourites().IsFavourite(ctx, favourites.Events, id)
			local, timeErr := event.LocalTime()

			if opts.JSON {
				detail := eventDetail{Event: event, LocalTime: local, Image: event.Image(), Favourite: favourite}
				if start, err := event.Start(); err == nil {
					detail.StartsAt = &start
				}
				return writeJSON(cmd, detail)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, event.ShortTitle)
			fmt.Fprintf(out, "Venue:       %s, %s\n", event.Venue.NameV2, event.Venue.DisplayLocation)
			if timeErr != nil {
				fmt.Fprintf(out, "Date:        %s (%v)\n", event.DatetimeUTC, timeErr)
			} else {
				fmt.Fprintf(out, "Date:        %s\n", local)
			}
			if viewer, err := event.ViewerTime(); err == nil {
				fmt.Fprintf(out, "Your time:   %s\n", viewer)
			}
			if image := event.Image(); image != "" {
				fmt.Fprintf(out, "Image:       %s\n", image)
			}
			fmt.Fprintf(out, "Favourite:   %s\n", yesNo(favourite))
			if event.URL != "" {
				fmt.Fprintf(out, "Buy Tickets: %s\n", event.URL)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output as JSON")
	return cmd
}

// NewVenueCommand creates the venue command.
func NewVenueCommand(root *RootOptions) *cobra.Command {
	opts := &DetailOptions{}

	cmd := &cobra.Command{
		Use:   "venue ID",
		Short: "Show one venue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			application, err := openApp(cmd, root, true)
			if err != nil {
				return err
			}
			defer application.Close()

			ctx := context.Background()
			venue, err := application.Client().Venue(ctx, id)
			if err != nil {
				return err
			}
			favourite := application.Favourites().IsFavourite(ctx, favourites.Venues, id)

			if opts.JSON {
				return writeJSON(cmd, venueDetail{Venue: venue, Favourite: favourite})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, venue.NameV2)
			fmt.Fprintf(out, "Location:    %s\n", venue.DisplayLocation)
			fmt.Fprintf(out, "Events:      %s\n", venue.Badge())
			if venue.Timezone != "" {
				fmt.Fprintf(out, "Time zone:   %s\n", venue.Timezone)
			}
			fmt.Fprintf(out, "Favourite:   %s\n", yesNo(favourite))
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output as JSON")
	return cmd
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func writeJSON(cmd *cobra.Command, v any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
