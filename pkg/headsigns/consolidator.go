package headsigns

import (
	"cmp"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/travigo/translink-train/pkg/gtfs"
	"github.com/travigo/translink-train/pkg/normalise"
	"github.com/travigo/translink-train/pkg/routes"
	"github.com/travigo/translink-train/pkg/rules"
	"golang.org/x/exp/slices"
)

type State int

const (
	StateUnset State = iota
	StateSet
	StateMerged
)

func (s State) String() string {
	switch s {
	case StateSet:
		return "SET"
	case StateMerged:
		return "MERGED"
	default:
		return "UNSET"
	}
}

// Key identifies one direction of one feed route
type Key struct {
	RouteID   string
	Direction int
}

type Label struct {
	Key
	Line  string
	State State
	Label string
}

type entry struct {
	sync.Mutex

	line  string
	state State
	label string
}

type synonymKey struct {
	line      string
	direction int
}

type synonymSet struct {
	directionSet *rules.DirectionSet
	recognised   map[string]bool
}

// mergeRecord is attached to merge failures so the offending pair can be
// found in the feed.
type mergeRecord struct {
	Route     string
	Line      string
	Direction int
	Existing  string
	Incoming  string
}

// Consolidator tracks the headsign of every (route, direction) and collapses
// conflicting headsigns onto the configured label. Calls for the same key are
// serialised; different keys proceed independently.
type Consolidator struct {
	pipeline   *normalise.Pipeline
	classifier DirectionClassifier
	synonyms   map[synonymKey]*synonymSet

	entriesMutex sync.Mutex
	entries      map[Key]*entry
}

// NewConsolidator indexes the configured synonyms in both their raw and
// headsign-normalised forms. A nil classifier uses FeedDirection.
func NewConsolidator(config *rules.Config, pipeline *normalise.Pipeline, classifier DirectionClassifier) *Consolidator {
	if classifier == nil {
		classifier = FeedDirection{}
	}

	synonyms := map[synonymKey]*synonymSet{}
	for _, directionSet := range config.Directions {
		set := &synonymSet{
			directionSet: directionSet,
			recognised:   map[string]bool{},
		}

		for _, label := range append([]string{directionSet.Label}, directionSet.Synonyms...) {
			set.recognised[fold(label)] = true
			set.recognised[fold(pipeline.Normalize(label, normalise.Headsign))] = true
		}

		synonyms[synonymKey{line: directionSet.Line, direction: directionSet.Direction}] = set
	}

	return &Consolidator{
		pipeline:   pipeline,
		classifier: classifier,
		synonyms:   synonyms,
		entries:    map[Key]*entry{},
	}
}

func fold(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

func (c *Consolidator) entry(key Key, line string) *entry {
	c.entriesMutex.Lock()
	defer c.entriesMutex.Unlock()

	e, exists := c.entries[key]
	if !exists {
		e = &entry{line: line}
		c.entries[key] = e
	}

	return e
}

// Observe classifies the direction of trip and records its cleaned headsign
func (c *Consolidator) Observe(route *routes.ResolvedRoute, trip gtfs.Trip, cleaned string) (string, error) {
	direction, err := c.classifier.Classify(route, trip)
	if err != nil {
		return "", err
	}

	return c.Record(route, direction, cleaned)
}

// Record stores cleaned as the label for the route direction. The first
// label is kept as is, repeats are ignored and a differing label is merged.
func (c *Consolidator) Record(route *routes.ResolvedRoute, direction int, cleaned string) (string, error) {
	e := c.entry(Key{RouteID: route.GTFSRouteID, Direction: direction}, route.LineName)

	e.Lock()
	defer e.Unlock()

	switch e.state {
	case StateUnset:
		e.state = StateSet
		e.label = cleaned

		return e.label, nil
	case StateSet:
		if cleaned == e.label {
			return e.label, nil
		}

		merged, err := c.Merge(route, direction, e.label, cleaned)
		if err != nil {
			return "", err
		}

		log.Debug().
			Str("route", route.GTFSRouteID).
			Int("direction", direction).
			Str("existing", e.label).
			Str("incoming", cleaned).
			Str("label", merged).
			Msg("Merged headsigns")

		e.state = StateMerged
		e.label = merged

		return e.label, nil
	default:
		if cleaned == e.label {
			return e.label, nil
		}

		merged, err := c.Merge(route, direction, e.label, cleaned)
		if err != nil {
			return "", err
		}

		if merged != e.label {
			return "", rules.Inconsistency("headsign", mergeRecord{
				Route:     route.GTFSRouteID,
				Line:      route.LineName,
				Direction: direction,
				Existing:  e.label,
				Incoming:  cleaned,
			}, merged, fmt.Sprintf("contradicts the merged label %q", e.label))
		}

		return e.label, nil
	}
}

// Merge resolves two differing labels of the same route direction against
// its synonym set. Both labels have to be listed in the set.
func (c *Consolidator) Merge(route *routes.ResolvedRoute, direction int, existing string, incoming string) (string, error) {
	record := mergeRecord{
		Route:     route.GTFSRouteID,
		Line:      route.LineName,
		Direction: direction,
		Existing:  existing,
		Incoming:  incoming,
	}

	set, exists := c.synonyms[synonymKey{line: route.LineName, direction: direction}]
	if !exists {
		return "", rules.Inconsistency("headsign", record, route.LineName, fmt.Sprintf("has no synonym set for direction %d", direction))
	}

	for _, label := range []string{existing, incoming} {
		if !set.recognised[fold(label)] {
			return "", rules.Inconsistency("headsign", record, label, "is not a known synonym")
		}
	}

	return set.directionSet.Label, nil
}

func (c *Consolidator) State(key Key) State {
	c.entriesMutex.Lock()
	e, exists := c.entries[key]
	c.entriesMutex.Unlock()

	if !exists {
		return StateUnset
	}

	e.Lock()
	defer e.Unlock()

	return e.state
}

// Labels returns the current label of every recorded route direction, sorted
// by route then direction.
func (c *Consolidator) Labels() []Label {
	c.entriesMutex.Lock()
	keys := make([]Key, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}
	c.entriesMutex.Unlock()

	slices.SortFunc(keys, func(a, b Key) int {
		if a.RouteID != b.RouteID {
			return cmp.Compare(a.RouteID, b.RouteID)
		}

		return cmp.Compare(a.Direction, b.Direction)
	})

	labels := make([]Label, 0, len(keys))
	for _, key := range keys {
		c.entriesMutex.Lock()
		e := c.entries[key]
		c.entriesMutex.Unlock()

		e.Lock()
		labels = append(labels, Label{Key: key, Line: e.line, State: e.state, Label: e.label})
		e.Unlock()
	}

	return labels
}
