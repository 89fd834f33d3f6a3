package stops

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/translink-train/pkg/gtfs"
	"github.com/travigo/translink-train/pkg/normalise"
	"github.com/travigo/translink-train/pkg/rules"
)

func newTestResolver() *Resolver {
	return NewResolver(normalise.New(normalise.Options{
		Acronyms: []string{"YVR", "VCC"},
	}))
}

func TestResolve(t *testing.T) {
	resolver := newTestResolver()

	tests := []struct {
		name     string
		stop     gtfs.Stop
		expected int64
	}{
		{name: "code", stop: gtfs.Stop{ID: "8", Code: "5678"}, expected: 5678},
		{name: "empty code", stop: gtfs.Stop{ID: "12345"}, expected: 1012345},
		{name: "blank code", stop: gtfs.Stop{ID: "12345", Code: "  "}, expected: 1012345},
		{name: "non numeric code", stop: gtfs.Stop{ID: "12345", Code: "WFT"}, expected: 1012345},
		{name: "zero id", stop: gtfs.Stop{ID: "0"}, expected: 1000000},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			identity, err := resolver.Resolve(test.stop)
			require.NoError(t, err)
			assert.Equal(t, test.expected, identity)
		})
	}
}

func TestResolveInvalid(t *testing.T) {
	resolver := newTestResolver()

	for _, stop := range []gtfs.Stop{
		{ID: "WFT"},
		{ID: ""},
		{ID: "99999999999999999999"},
		{ID: "-5", Code: "-5"},
	} {
		_, err := resolver.Resolve(stop)
		require.Error(t, err)

		assert.ErrorIs(t, err, ErrInvalidStopIdentity)
		assert.ErrorIs(t, err, rules.ErrConfigurationInconsistency)

		var inconsistency *rules.InconsistencyError
		require.True(t, errors.As(err, &inconsistency))
		assert.Equal(t, stop, inconsistency.Record)
	}
}

func TestName(t *testing.T) {
	resolver := newTestResolver()

	assert.Equal(t, "Waterfront", resolver.Name(gtfs.Stop{Name: "Waterfront Station Canada Line"}))
	assert.Equal(t, "VCC-Clark P2", resolver.Name(gtfs.Stop{Name: "VCC-CLARK STATION PLATFORM 2"}))
}
