package seatgeek

import (
	"fmt"
	"time"

	"github.com/artpar/marquee/internal/timefmt"
)

// Performer is an act appearing at an event.
type Performer struct {
	Name  string `json:"name,omitempty"`
	Image string `json:"image"`
}

// Venue is a place hosting events.
type Venue struct {
	ID                int    `json:"id"`
	NameV2            string `json:"name_v2"`
	DisplayLocation   string `json:"display_location"`
	Timezone          string `json:"timezone"`
	HasUpcomingEvents bool   `json:"has_upcoming_events"`
	NumUpcomingEvents int    `json:"num_upcoming_events"`
}

// Badge summarises upcoming events, e.g. "3 Upcoming Events".
func (v Venue) Badge() string {
	if !v.HasUpcomingEvents {
		return "No Upcoming Events"
	}
	return fmt.Sprintf("%d Upcoming Events", v.NumUpcomingEvents)
}

// Event is a ticketed event.
type Event struct {
	ID          int         `json:"id"`
	ShortTitle  string      `json:"short_title"`
	DatetimeUTC string      `json:"datetime_utc"`
	Performers  []Performer `json:"performers"`
	Venue       Venue       `json:"venue"`
	URL         string      `json:"url"`
}

// Start parses DatetimeUTC.
func (e Event) Start() (time.Time, error) {
	return timefmt.ParseUTC(e.DatetimeUTC)
}

// LocalTime formats the start in the venue's zone.
func (e Event) LocalTime() (string, error) {
	return timefmt.FormatString(e.DatetimeUTC, e.Venue.Timezone)
}

// ViewerTime formats the start in the viewer's zone.
func (e Event) ViewerTime() (string, error) {
	return timefmt.FormatString(e.DatetimeUTC, "")
}

// Image returns the first performer's image, if any.
func (e Event) Image() string {
	if len(e.Performers) == 0 {
		return ""
	}
	return e.Performers[0].Image
}
