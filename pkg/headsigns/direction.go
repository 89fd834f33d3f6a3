package headsigns

import (
	"strings"

	"github.com/travigo/translink-train/pkg/gtfs"
	"github.com/travigo/translink-train/pkg/routes"
	"github.com/travigo/translink-train/pkg/rules"
)

// DirectionClassifier decides which direction of its route a trip runs in.
// Implementations return 0 or 1.
type DirectionClassifier interface {
	Classify(route *routes.ResolvedRoute, trip gtfs.Trip) (int, error)
}

// FeedDirection trusts the direction_id published in the feed
type FeedDirection struct{}

func (FeedDirection) Classify(route *routes.ResolvedRoute, trip gtfs.Trip) (int, error) {
	switch strings.TrimSpace(trip.DirectionID) {
	case "0":
		return 0, nil
	case "1":
		return 1, nil
	default:
		return 0, rules.Inconsistency("trip", trip, trip.DirectionID, "has no usable direction_id")
	}
}
