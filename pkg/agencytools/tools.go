package agencytools

import (
	"cmp"
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"github.com/travigo/translink-train/pkg/gtfs"
	"github.com/travigo/translink-train/pkg/headsigns"
	"github.com/travigo/translink-train/pkg/normalise"
	"github.com/travigo/translink-train/pkg/resolvecache"
	"github.com/travigo/translink-train/pkg/routes"
	"github.com/travigo/translink-train/pkg/rules"
	"github.com/travigo/translink-train/pkg/stops"
	"github.com/travigo/translink-train/pkg/util"
	"golang.org/x/exp/slices"
)

const defaultMaxGoroutines = 50

type ResolvedStop struct {
	StopID   string
	Identity int64
	Name     string
}

// Result is everything a run produced. It is only returned when the whole
// feed resolved without an inconsistency.
type Result struct {
	RunID string

	Routes    []*routes.ResolvedRoute
	Headsigns []headsigns.Label
	Stops     []ResolvedStop

	ExcludedRoutes int
	SkippedTrips   int
}

type Option func(*Tools)

func WithClassifier(classifier headsigns.DirectionClassifier) Option {
	return func(t *Tools) {
		t.classifier = classifier
	}
}

// WithCache replaces the in-memory resolution cache. newCache is called once
// per run with that run's ID.
func WithCache(newCache func(runID string) *resolvecache.Cache) Option {
	return func(t *Tools) {
		t.newCache = newCache
	}
}

func WithMaxGoroutines(maxGoroutines int) Option {
	return func(t *Tools) {
		t.maxGoroutines = maxGoroutines
	}
}

// Tools applies the TransLink rail rules to a parsed GTFS schedule
type Tools struct {
	config   *rules.Config
	pipeline *normalise.Pipeline
	routes   *routes.Resolver
	stops    *stops.Resolver
	services ServiceSnapshot

	classifier    headsigns.DirectionClassifier
	newCache      func(runID string) *resolvecache.Cache
	maxGoroutines int
}

func New(config *rules.Config, services ServiceSnapshot, options ...Option) *Tools {
	pipeline := normalise.FromConfig(config)

	tools := &Tools{
		config:        config,
		pipeline:      pipeline,
		routes:        routes.NewResolver(config, pipeline),
		stops:         stops.NewResolver(pipeline),
		services:      services,
		classifier:    headsigns.FeedDirection{},
		newCache:      resolvecache.NewMemory,
		maxGoroutines: defaultMaxGoroutines,
	}

	for _, option := range options {
		option(tools)
	}

	return tools
}

// Run resolves every in-scope route, consolidates the headsigns of kept trips
// and resolves the stops those trips call at. The first inconsistency aborts
// the run.
func (t *Tools) Run(ctx context.Context, schedule *gtfs.Schedule) (*Result, error) {
	runID := uuid.NewString()
	cache := t.newCache(runID)

	logger := log.With().Str("run", runID).Logger()
	logger.Info().Int("routes", len(schedule.Routes)).Int("trips", len(schedule.Trips)).Msg("Starting rules run")

	resolvedRoutes, err := t.resolveRoutes(ctx, cache, schedule.Routes)
	if err != nil {
		return nil, err
	}

	result := &Result{
		RunID:          runID,
		Routes:         resolvedRoutes,
		ExcludedRoutes: len(schedule.Routes) - len(resolvedRoutes),
	}
	logger.Info().Int("resolved", len(resolvedRoutes)).Int("excluded", result.ExcludedRoutes).Msg("Resolved routes")

	routesByID := map[string]*routes.ResolvedRoute{}
	for _, route := range resolvedRoutes {
		routesByID[route.GTFSRouteID] = route
	}

	if t.services.ExcludingAll() {
		logger.Warn().Msg("Service snapshot excludes every service")
	}

	var keptTrips []gtfs.Trip
	for _, trip := range schedule.Trips {
		if routesByID[trip.RouteID] == nil {
			continue
		}

		if !t.services.Keeps(trip.ServiceID) {
			result.SkippedTrips++
			continue
		}

		keptTrips = append(keptTrips, trip)
	}

	consolidator := headsigns.NewConsolidator(t.config, t.pipeline, t.classifier)
	if err := t.consolidateHeadsigns(ctx, cache, consolidator, routesByID, keptTrips); err != nil {
		return nil, err
	}
	result.Headsigns = consolidator.Labels()

	resolvedStops, err := t.resolveStops(ctx, schedule, keptTrips)
	if err != nil {
		return nil, err
	}
	result.Stops = resolvedStops

	logger.Info().
		Int("headsigns", len(result.Headsigns)).
		Int("stops", len(result.Stops)).
		Int("skipped_trips", result.SkippedTrips).
		Int64("cache_hits", cache.Hits()).
		Int64("cache_misses", cache.Misses()).
		Msg("Finished rules run")

	return result, nil
}

func (t *Tools) resolveRoutes(ctx context.Context, cache *resolvecache.Cache, gtfsRoutes []gtfs.Route) ([]*routes.ResolvedRoute, error) {
	p := pool.NewWithResults[*routes.ResolvedRoute]().
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError().
		WithMaxGoroutines(t.maxGoroutines)

	for _, route := range gtfsRoutes {
		p.Go(func(ctx context.Context) (*routes.ResolvedRoute, error) {
			if cached, hit := resolvecache.Get[routes.ResolvedRoute](ctx, cache, resolvecache.KindRoute, route.ID); hit {
				cached.Line = t.config.Line(cached.LineName)
				if cached.Line != nil {
					return cached, nil
				}
			}

			resolved, err := t.routes.Resolve(route)
			if err != nil {
				return nil, err
			}

			if resolved == nil {
				log.Debug().Str("route", route.ID).Str("short_name", route.ShortName).Msg("Route out of scope")
				return nil, nil
			}

			if err := resolvecache.Set(ctx, cache, resolvecache.KindRoute, route.ID, resolved); err != nil {
				log.Error().Err(err).Str("route", route.ID).Msg("Failed to cache resolved route")
			}

			return resolved, nil
		})
	}

	resolvedRoutes, err := p.Wait()
	if err != nil {
		return nil, err
	}

	util.InPlaceFilter(&resolvedRoutes, func(route *routes.ResolvedRoute) bool {
		return route != nil
	})

	slices.SortFunc(resolvedRoutes, func(a, b *routes.ResolvedRoute) int {
		return cmp.Compare(a.GTFSRouteID, b.GTFSRouteID)
	})

	return resolvedRoutes, nil
}

// normaliseHeadsign cleans raw, reusing the result for every trip of the run
// that carries the same raw headsign.
func (t *Tools) normaliseHeadsign(ctx context.Context, cache *resolvecache.Cache, raw string) string {
	if cached, hit := resolvecache.Get[string](ctx, cache, resolvecache.KindHeadsign, raw); hit {
		return *cached
	}

	cleaned := t.pipeline.Normalize(raw, normalise.Headsign)

	if err := resolvecache.Set(ctx, cache, resolvecache.KindHeadsign, raw, &cleaned); err != nil {
		log.Error().Err(err).Str("headsign", raw).Msg("Failed to cache normalised headsign")
	}

	return cleaned
}

func (t *Tools) consolidateHeadsigns(ctx context.Context, cache *resolvecache.Cache, consolidator *headsigns.Consolidator, routesByID map[string]*routes.ResolvedRoute, trips []gtfs.Trip) error {
	p := pool.New().
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError().
		WithMaxGoroutines(t.maxGoroutines)

	for _, trip := range trips {
		p.Go(func(ctx context.Context) error {
			cleaned := t.normaliseHeadsign(ctx, cache, trip.Headsign)

			_, err := consolidator.Observe(routesByID[trip.RouteID], trip, cleaned)
			return err
		})
	}

	return p.Wait()
}

// referencedStops is every stop called at by trips, or every stop when the
// schedule has no stop times. A stop ID repeated in stops.txt is returned once.
func referencedStops(schedule *gtfs.Schedule, trips []gtfs.Trip) []gtfs.Stop {
	if len(schedule.StopTimes) == 0 {
		seen := map[string]bool{}

		var stops []gtfs.Stop
		for _, stop := range schedule.Stops {
			if !seen[stop.ID] {
				seen[stop.ID] = true
				stops = append(stops, stop)
			}
		}

		return stops
	}

	tripIDs := map[string]bool{}
	for _, trip := range trips {
		tripIDs[trip.ID] = true
	}

	stopIDs := map[string]bool{}
	for _, stopTime := range schedule.StopTimes {
		if tripIDs[stopTime.TripID] {
			stopIDs[stopTime.StopID] = true
		}
	}

	var referenced []gtfs.Stop
	for _, stop := range schedule.Stops {
		if stopIDs[stop.ID] {
			referenced = append(referenced, stop)
			delete(stopIDs, stop.ID)
		}
	}

	for stopID := range stopIDs {
		log.Warn().Str("stop", stopID).Msg("Stop time references a stop missing from the schedule")
	}

	return referenced
}

func (t *Tools) resolveStops(ctx context.Context, schedule *gtfs.Schedule, trips []gtfs.Trip) ([]ResolvedStop, error) {
	p := pool.NewWithResults[ResolvedStop]().
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError().
		WithMaxGoroutines(t.maxGoroutines)

	for _, stop := range referencedStops(schedule, trips) {
		p.Go(func(ctx context.Context) (ResolvedStop, error) {
			identity, err := t.stops.Resolve(stop)
			if err != nil {
				return ResolvedStop{}, err
			}

			return ResolvedStop{
				StopID:   stop.ID,
				Identity: identity,
				Name:     t.stops.Name(stop),
			}, nil
		})
	}

	resolvedStops, err := p.Wait()
	if err != nil {
		return nil, err
	}

	slices.SortFunc(resolvedStops, func(a, b ResolvedStop) int {
		return cmp.Compare(a.Identity, b.Identity)
	})

	return resolvedStops, nil
}
