package stops

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/travigo/translink-train/pkg/gtfs"
	"github.com/travigo/translink-train/pkg/normalise"
	"github.com/travigo/translink-train/pkg/rules"
	"github.com/travigo/translink-train/pkg/util"
)

// IdentityOffset is added to the stop ID of stops without a usable code so
// the two numbering schemes never collide.
const IdentityOffset int64 = 1_000_000

var ErrInvalidStopIdentity = fmt.Errorf("invalid stop identity: %w", rules.ErrConfigurationInconsistency)

type Resolver struct {
	pipeline *normalise.Pipeline
}

func NewResolver(pipeline *normalise.Pipeline) *Resolver {
	return &Resolver{
		pipeline: pipeline,
	}
}

// Resolve returns the numeric identity of stop: its code when numeric,
// otherwise IdentityOffset plus its numeric ID.
func (r *Resolver) Resolve(stop gtfs.Stop) (int64, error) {
	code := strings.TrimSpace(stop.Code)
	if util.IsDigitsOnly(code) {
		if identity, err := strconv.ParseInt(code, 10, 64); err == nil {
			return identity, nil
		}
	}

	id := strings.TrimSpace(stop.ID)
	if util.IsDigitsOnly(id) {
		if identity, err := strconv.ParseInt(id, 10, 64); err == nil && identity <= maxStopID {
			return IdentityOffset + identity, nil
		}
	}

	return 0, &rules.InconsistencyError{
		Kind:   "stop",
		Record: stop,
		Value:  stop.ID,
		Reason: "has neither a numeric code nor a numeric id",
		Err:    ErrInvalidStopIdentity,
	}
}

const maxStopID = 1<<63 - 1 - IdentityOffset

// Name is the normalised display name of stop
func (r *Resolver) Name(stop gtfs.Stop) string {
	return r.pipeline.Normalize(stop.Name, normalise.StopName)
}
