package testserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// Catalogue is the fake upstream data set.
type Catalogue struct {
	Events []map[string]any
	Venues []map[string]any
}

var zones = []struct {
	city string
	zone string
}{
	{"New York, NY", "America/New_York"},
	{"Austin, TX", "America/Chicago"},
	{"London, UK", "Europe/London"},
}

// NewCatalogue generates events with ids 1..events and venues with ids
// 101..100+venues. Even-numbered venues have upcoming events.
func NewCatalogue(events, venues int) *Catalogue {
	c := &Catalogue{}
	for i := 0; i < venues; i++ {
		z := zones[i%len(zones)]
		upcoming := 0
		if i%2 == 0 {
			upcoming = i + 1
		}
		c.Venues = append(c.Venues, map[string]any{
			"id":                  101 + i,
			"name_v2":             fmt.Sprintf("Venue %d", 101+i),
			"display_location":    z.city,
			"timezone":            z.zone,
			"has_upcoming_events": upcoming > 0,
			"num_upcoming_events": upcoming,
		})
	}
	for i := 0; i < events; i++ {
		z := zones[i%len(zones)]
		c.Events = append(c.Events, map[string]any{
			"id":           1 + i,
			"short_title":  fmt.Sprintf("Show %d", 1+i),
			"datetime_utc": fmt.Sprintf("2024-06-%02dT19:30:00", 1+i%28),
			"url":          fmt.Sprintf("https://tickets.example/events/%d", 1+i),
			"performers":   []map[string]string{{"name": fmt.Sprintf("Act %d", 1+i), "image": "https://img.example/act.jpg"}},
			"venue": map[string]any{
				"name_v2":          fmt.Sprintf("Hall %d", i%5),
				"display_location": z.city,
				"timezone":         z.zone,
			},
		})
	}
	return c
}

// listHandler serves a paged listing under key. An id parameter filters
// the listing instead of paging it.
func listHandler(key string, items []map[string]any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		if id := q.Get("id"); id != "" {
			var found []map[string]any
			for _, item := range items {
				if fmt.Sprint(item["id"]) == id {
					found = append(found, item)
				}
			}
			writeJSON(w, map[string]any{key: found})
			return
		}

		page := atoiDefault(q.Get("page"), 1)
		perPage := atoiDefault(q.Get("per_page"), 10)
		start := min((page-1)*perPage, len(items))
		end := min(start+perPage, len(items))
		writeJSON(w, map[string]any{
			key:    items[start:end],
			"meta": map[string]any{"total": len(items), "page": page, "per_page": perPage},
		})
	}
}

// detailHandler serves /prefix/{id}.
func detailHandler(prefix string, items []map[string]any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, prefix)
		for _, item := range items {
			if fmt.Sprint(item["id"]) == id {
				writeJSON(w, item)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		writeJSON(w, map[string]string{"message": "Not Found"})
	}
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func atoiDefault(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
