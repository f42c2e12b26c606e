// Package favourites keeps the set of favourited events and venues in the
// local KV store and broadcasts a signal whenever it changes.
package favourites

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Common errors.
var (
	ErrUnknownPartition = errors.New("unknown favourites partition")
	ErrCorruptState     = errors.New("corrupt favourites state")
)

// Partition names one of the independently keyed favourites collections.
type Partition string

const (
	Venues Partition = "venues"
	Events Partition = "events"
)

// Partitions lists every partition in display order.
var Partitions = []Partition{Events, Venues}

// Membership markers.
const (
	MarkerOn  = "♥"
	MarkerOff = "♡"
)

// Marker returns the glyph shown next to an item.
func Marker(favourite bool) string {
	if favourite {
		return MarkerOn
	}
	return MarkerOff
}

// ParsePartition accepts either the collection name or the item type
// ("venue", "event").
func ParsePartition(s string) (Partition, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "venue", "venues":
		return Venues, nil
	case "event", "events":
		return Events, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPartition, s)
}

// ItemType returns the singular item type for the partition.
func (p Partition) ItemType() string {
	return strings.TrimSuffix(string(p), "s")
}

func (p Partition) valid() bool {
	return p == Venues || p == Events
}

// Set is the persisted favourites record. A key present in a partition
// is always true; removal deletes the key.
type Set struct {
	Venues map[string]bool `json:"venues"`
	Events map[string]bool `json:"events"`
}

// NewSet returns a Set with both partitions empty.
func NewSet() Set {
	return Set{
		Venues: make(map[string]bool),
		Events: make(map[string]bool),
	}
}

func (s *Set) partition(p Partition) map[string]bool {
	if p == Venues {
		return s.Venues
	}
	return s.Events
}

// Has reports whether id is favourited in p.
func (s Set) Has(p Partition, id int) bool {
	return s.partition(p)[strconv.Itoa(id)]
}

// set writes membership for id in p, deleting the key when false.
func (s *Set) set(p Partition, id int, member bool) {
	key := strconv.Itoa(id)
	if member {
		s.partition(p)[key] = true
		return
	}
	delete(s.partition(p), key)
}

// IDs returns the favourited ids in p in ascending order. Keys that are
// not integers are skipped.
func (s Set) IDs(p Partition) []int {
	ids := make([]int, 0, len(s.partition(p)))
	for key, member := range s.partition(p) {
		if !member {
			continue
		}
		id, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Len returns the number of favourites in p.
func (s Set) Len(p Partition) int {
	return len(s.IDs(p))
}

// Empty reports whether both partitions are empty.
func (s Set) Empty() bool {
	return s.Len(Venues) == 0 && s.Len(Events) == 0
}

// normalize creates missing partitions and drops false markers.
func (s *Set) normalize() {
	if s.Venues == nil {
		s.Venues = make(map[string]bool)
	}
	if s.Events == nil {
		s.Events = make(map[string]bool)
	}
	for _, m := range []map[string]bool{s.Venues, s.Events} {
		for key, member := range m {
			if !member {
				delete(m, key)
			}
		}
	}
}

// Decode parses a persisted favourites blob.
func Decode(data []byte) (Set, error) {
	var set Set
	if err := json.Unmarshal(data, &set); err != nil {
		return NewSet(), fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	set.normalize()
	return set, nil
}

// Encode serializes the set in the persisted layout.
func Encode(set Set) ([]byte, error) {
	set.normalize()
	return json.Marshal(set)
}
