package agencytools

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/translink-train/pkg/gtfs"
	"github.com/travigo/translink-train/pkg/headsigns"
	"github.com/travigo/translink-train/pkg/resolvecache"
	"github.com/travigo/translink-train/pkg/routes"
	"github.com/travigo/translink-train/pkg/rules"
	"github.com/travigo/translink-train/pkg/stops"
)

func loadConfig(t *testing.T) *rules.Config {
	t.Helper()

	config, err := rules.LoadDirectory("../../data/rules")
	require.NoError(t, err)

	return config
}

func testSchedule() *gtfs.Schedule {
	return &gtfs.Schedule{
		Routes: []gtfs.Route{
			{ID: "6611", ShortName: "980", LongName: "Canada Line", Colour: "0098C9"},
			{ID: "30052", ShortName: "991"},
			{ID: "6612", LongName: "EXPO SKYTRAIN"},
			{ID: "6716", ShortName: "99", LongName: "Commercial-Broadway/UBC (B-Line)"},
		},
		Trips: []gtfs.Trip{
			{ID: "c1", RouteID: "6611", ServiceID: "weekday", DirectionID: "0", Headsign: `"Skytrain to Waterfront Station"`},
			{ID: "c2", RouteID: "6611", ServiceID: "weekday", DirectionID: "0", Headsign: "SKYTRAIN TO BRIDGEPORT STATION"},
			{ID: "c3", RouteID: "6611", ServiceID: "weekday", DirectionID: "1", Headsign: "to yvr-airport station"},
			{ID: "c4", RouteID: "6611", ServiceID: "sunday", DirectionID: "1", Headsign: "Richmond-Brighouse Station"},
			{ID: "m1", RouteID: "30052", ServiceID: "weekday", DirectionID: "1", Headsign: "Millennium Line to VCC–Clark Station"},
			{ID: "e1", RouteID: "6612", ServiceID: "weekday", DirectionID: "0", Headsign: "King George Line to Production Way-University Station"},
			{ID: "b1", RouteID: "6716", ServiceID: "weekday", DirectionID: "0", Headsign: "UBC"},
		},
		Stops: []gtfs.Stop{
			{ID: "12345", Name: "Waterfront Station Canada Line"},
			{ID: "8", Code: "5678", Name: "Stadium-Chinatown Station"},
			{ID: "99", Code: "51234", Name: "UBC Exchange Bay 7"},
			{ID: "20", Name: "Production Way-University Station"},
		},
		StopTimes: []gtfs.StopTime{
			{TripID: "c1", StopID: "12345"},
			{TripID: "e1", StopID: "8"},
			{TripID: "e1", StopID: "20"},
			{TripID: "b1", StopID: "99"},
		},
	}
}

func TestRun(t *testing.T) {
	result, err := New(loadConfig(t), AllServices()).Run(context.Background(), testSchedule())
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 1, result.ExcludedRoutes)
	assert.Equal(t, 0, result.SkippedTrips)

	require.Len(t, result.Routes, 3)
	assert.Equal(t, "30052", result.Routes[0].GTFSRouteID)
	assert.Equal(t, "MIL", result.Routes[0].ShortName)
	assert.Equal(t, "Millennium Line", result.Routes[0].LongName)
	assert.Equal(t, "FDD005", result.Routes[0].Color)
	assert.Equal(t, int64(991), result.Routes[0].ID)
	assert.Equal(t, "CAN", result.Routes[1].ShortName)
	assert.Equal(t, "EXP", result.Routes[2].ShortName)
	assert.Equal(t, int64(992), result.Routes[2].ID)

	assert.Equal(t, []headsigns.Label{
		{Key: headsigns.Key{RouteID: "30052", Direction: 1}, Line: "MIL", State: headsigns.StateSet, Label: "VCC–Clark"},
		{Key: headsigns.Key{RouteID: "6611", Direction: 0}, Line: "CAN", State: headsigns.StateMerged, Label: "Waterfront"},
		{Key: headsigns.Key{RouteID: "6611", Direction: 1}, Line: "CAN", State: headsigns.StateMerged, Label: "YVR / Richmond-Brighouse"},
		{Key: headsigns.Key{RouteID: "6612", Direction: 0}, Line: "EXP", State: headsigns.StateSet, Label: "Prod Way–U"},
	}, result.Headsigns)

	assert.Equal(t, []ResolvedStop{
		{StopID: "8", Identity: 5678, Name: "Stadium-Chinatown"},
		{StopID: "20", Identity: 1000020, Name: "Prod Way–U"},
		{StopID: "12345", Identity: 1012345, Name: "Waterfront"},
	}, result.Stops)
}

func TestRunUnknownHeadsignIsFatal(t *testing.T) {
	schedule := testSchedule()
	schedule.Trips = append(schedule.Trips, gtfs.Trip{ID: "c5", RouteID: "6611", ServiceID: "weekday", DirectionID: "0", Headsign: "Mars Base"})

	result, err := New(loadConfig(t), AllServices()).Run(context.Background(), schedule)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, rules.ErrConfigurationInconsistency)
}

func TestRunConflictingRouteIsFatal(t *testing.T) {
	schedule := testSchedule()
	schedule.Routes = append(schedule.Routes, gtfs.Route{ID: "1", ShortName: "980", LongName: "Expo Line"})

	_, err := New(loadConfig(t), AllServices()).Run(context.Background(), schedule)
	assert.ErrorIs(t, err, rules.ErrConfigurationInconsistency)
}

func TestRunInvalidStopIsFatal(t *testing.T) {
	schedule := testSchedule()
	schedule.Stops = append(schedule.Stops, gtfs.Stop{ID: "WFT", Name: "Waterfront"})
	schedule.StopTimes = append(schedule.StopTimes, gtfs.StopTime{TripID: "c2", StopID: "WFT"})

	_, err := New(loadConfig(t), AllServices()).Run(context.Background(), schedule)
	assert.ErrorIs(t, err, stops.ErrInvalidStopIdentity)
}

func TestRunServiceSnapshot(t *testing.T) {
	result, err := New(loadConfig(t), NewServiceSnapshot([]string{"weekday"})).Run(context.Background(), testSchedule())
	require.NoError(t, err)

	assert.Equal(t, 1, result.SkippedTrips)

	var canadaSouthbound *headsigns.Label
	for i := range result.Headsigns {
		if result.Headsigns[i].RouteID == "6611" && result.Headsigns[i].Direction == 1 {
			canadaSouthbound = &result.Headsigns[i]
		}
	}
	require.NotNil(t, canadaSouthbound)
	assert.Equal(t, headsigns.StateSet, canadaSouthbound.State)
	assert.Equal(t, "YVR-Airport", canadaSouthbound.Label)
}

func TestRunExcludingAllServices(t *testing.T) {
	result, err := New(loadConfig(t), NewServiceSnapshot(nil)).Run(context.Background(), testSchedule())
	require.NoError(t, err)

	assert.Len(t, result.Routes, 3)
	assert.Empty(t, result.Headsigns)
	assert.Empty(t, result.Stops)
	assert.Equal(t, 6, result.SkippedTrips)
}

func TestRunWithoutStopTimesResolvesAllStops(t *testing.T) {
	schedule := testSchedule()
	schedule.StopTimes = nil

	result, err := New(loadConfig(t), AllServices()).Run(context.Background(), schedule)
	require.NoError(t, err)

	assert.Len(t, result.Stops, 4)
}

func TestRunCachesResolutions(t *testing.T) {
	var cache *resolvecache.Cache

	tools := New(loadConfig(t), AllServices(),
		WithMaxGoroutines(1),
		WithCache(func(runID string) *resolvecache.Cache {
			cache = resolvecache.NewMemory(runID)
			return cache
		}),
	)

	result, err := tools.Run(context.Background(), testSchedule())
	require.NoError(t, err)
	require.NotNil(t, cache)
	assert.Equal(t, result.RunID, cache.RunID)

	route, hit := resolvecache.Get[routes.ResolvedRoute](context.Background(), cache, resolvecache.KindRoute, "30052")
	require.True(t, hit)
	assert.Equal(t, "MIL", route.ShortName)
	assert.Nil(t, route.Line)

	headsign, hit := resolvecache.Get[string](context.Background(), cache, resolvecache.KindHeadsign, `"Skytrain to Waterfront Station"`)
	require.True(t, hit)
	assert.Equal(t, "Waterfront", *headsign)

	_, hit = resolvecache.Get[routes.ResolvedRoute](context.Background(), cache, resolvecache.KindRoute, "6716")
	assert.False(t, hit)
}

func TestRunReusesNormalisedHeadsigns(t *testing.T) {
	var cache *resolvecache.Cache

	tools := New(loadConfig(t), AllServices(),
		WithMaxGoroutines(1),
		WithCache(func(runID string) *resolvecache.Cache {
			cache = resolvecache.NewMemory(runID)
			return cache
		}),
	)

	schedule := testSchedule()
	for i := 0; i < 10; i++ {
		trip := schedule.Trips[0]
		trip.ID = fmt.Sprintf("c1-%d", i)
		schedule.Trips = append(schedule.Trips, trip)
	}

	result, err := tools.Run(context.Background(), schedule)
	require.NoError(t, err)
	require.NotNil(t, cache)

	// 4 route lookups and 6 distinct headsigns miss, every repeated headsign hits
	assert.Equal(t, int64(10), cache.Hits())
	assert.Equal(t, int64(10), cache.Misses())

	assert.Contains(t, result.Headsigns, headsigns.Label{
		Key:   headsigns.Key{RouteID: "6611", Direction: 0},
		Line:  "CAN",
		State: headsigns.StateMerged,
		Label: "Waterfront",
	})
}

func TestRunDeduplicatesStops(t *testing.T) {
	schedule := testSchedule()
	schedule.StopTimes = nil
	schedule.Stops = append(schedule.Stops, schedule.Stops[0])

	result, err := New(loadConfig(t), AllServices()).Run(context.Background(), schedule)
	require.NoError(t, err)

	require.Len(t, result.Stops, 4)
	assert.Equal(t, int64(5678), result.Stops[0].Identity)
	assert.Equal(t, "12345", result.Stops[2].StopID)
}

type reversedDirection struct{}

func (reversedDirection) Classify(route *routes.ResolvedRoute, trip gtfs.Trip) (int, error) {
	direction, err := headsigns.FeedDirection{}.Classify(route, trip)
	return 1 - direction, err
}

func TestRunWithClassifier(t *testing.T) {
	schedule := testSchedule()
	schedule.Trips = schedule.Trips[:2]

	_, err := New(loadConfig(t), AllServices(), WithClassifier(reversedDirection{})).Run(context.Background(), schedule)
	assert.ErrorIs(t, err, rules.ErrConfigurationInconsistency)
}

func TestServiceSnapshot(t *testing.T) {
	assert.True(t, AllServices().Keeps("anything"))
	assert.False(t, AllServices().ExcludingAll())

	weekday := NewServiceSnapshot([]string{"weekday"})
	assert.True(t, weekday.Keeps("weekday"))
	assert.False(t, weekday.Keeps("sunday"))
	assert.False(t, weekday.ExcludingAll())

	none := NewServiceSnapshot([]string{})
	assert.True(t, none.ExcludingAll())
	assert.False(t, none.Keeps("weekday"))
}
