package routes

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/travigo/translink-train/pkg/gtfs"
	"github.com/travigo/translink-train/pkg/normalise"
	"github.com/travigo/translink-train/pkg/rules"
	"github.com/travigo/translink-train/pkg/util"
)

// ResolvedRoute is the canonical identity of an in-scope feed route
type ResolvedRoute struct {
	Line     *rules.Line `json:"-"`
	LineName string

	GTFSRouteID string
	ID          int64

	ShortName string
	LongName  string
	Color     string

	TransportType TransportType
	RouteType     int
}

// Resolver fills in route identity from the line tables when the feed leaves
// it blank. It holds no mutable state.
type Resolver struct {
	config   *rules.Config
	pipeline *normalise.Pipeline
}

func NewResolver(config *rules.Config, pipeline *normalise.Pipeline) *Resolver {
	return &Resolver{
		config:   config,
		pipeline: pipeline,
	}
}

func (r *Resolver) lookup(value string) *rules.Line {
	if strings.TrimSpace(value) == "" {
		return nil
	}

	return r.config.LineByIdentifier(value)
}

// InScope reports whether the route belongs to any configured line
func (r *Resolver) InScope(route gtfs.Route) bool {
	return r.lookup(route.ShortName) != nil || r.lookup(route.LongName) != nil
}

// Match returns the single line the route belongs to, or nil when the route
// is out of scope. The short name is checked first; a long name pointing at a
// different line is an inconsistency.
func (r *Resolver) Match(route gtfs.Route) (*rules.Line, error) {
	byShortName := r.lookup(route.ShortName)
	byLongName := r.lookup(route.LongName)

	if byShortName != nil && byLongName != nil && byShortName != byLongName {
		return nil, rules.Inconsistency("route", route, route.ID,
			fmt.Sprintf("matches %s by short name and %s by long name", byShortName.ShortName, byLongName.ShortName))
	}

	if byShortName != nil {
		return byShortName, nil
	}

	return byLongName, nil
}

func (r *Resolver) line(route gtfs.Route) (*rules.Line, error) {
	line, err := r.Match(route)
	if err != nil {
		return nil, err
	}

	if line == nil {
		return nil, rules.Inconsistency("route", route, route.ID, "does not match any line")
	}

	return line, nil
}

func (r *Resolver) ShortName(route gtfs.Route) (string, error) {
	line, err := r.line(route)
	if err != nil {
		return "", err
	}

	return shortName(route, line), nil
}

func shortName(route gtfs.Route, line *rules.Line) string {
	raw := strings.TrimSpace(route.ShortName)
	if raw == "" || util.IsDigitsOnly(raw) {
		return line.ShortName
	}

	return raw
}

func (r *Resolver) LongName(route gtfs.Route) (string, error) {
	line, err := r.line(route)
	if err != nil {
		return "", err
	}

	return r.longName(route, line), nil
}

func (r *Resolver) longName(route gtfs.Route, line *rules.Line) string {
	raw := strings.TrimSpace(route.LongName)
	if raw == "" || util.IsDigitsOnly(raw) {
		return line.LongName
	}

	normalised := r.pipeline.Normalize(raw, normalise.LongName)
	if normalised == "" {
		return line.LongName
	}

	return normalised
}

func (r *Resolver) Color(route gtfs.Route) (string, error) {
	line, err := r.line(route)
	if err != nil {
		return "", err
	}

	return color(route, line), nil
}

var hexColor = regexp.MustCompile(`^[0-9A-F]{6}$`)

func color(route gtfs.Route, line *rules.Line) string {
	raw := strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(route.Colour), "#"))
	if raw == "" {
		return line.Color
	}

	if !hexColor.MatchString(raw) {
		log.Debug().Str("route", route.ID).Str("color", route.Colour).Msg("Ignoring malformed route colour")
		return line.Color
	}

	return raw
}

// ID is the numeric route ID: the raw short name when it is a number,
// otherwise the configured ID of the line.
func (r *Resolver) ID(route gtfs.Route) (int64, error) {
	line, err := r.line(route)
	if err != nil {
		return 0, err
	}

	return routeID(route, line), nil
}

func routeID(route gtfs.Route, line *rules.Line) int64 {
	raw := strings.TrimSpace(route.ShortName)
	if util.IsDigitsOnly(raw) {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return id
		}
	}

	return line.RouteID
}

// Resolve returns nil without an error when the route is out of scope
func (r *Resolver) Resolve(route gtfs.Route) (*ResolvedRoute, error) {
	line, err := r.Match(route)
	if err != nil {
		return nil, err
	}

	if line == nil {
		return nil, nil
	}

	return &ResolvedRoute{
		Line:          line,
		LineName:      line.ShortName,
		GTFSRouteID:   route.ID,
		ID:            routeID(route, line),
		ShortName:     shortName(route, line),
		LongName:      r.longName(route, line),
		Color:         color(route, line),
		TransportType: TransportTypeFromRouteType(r.config.Agency.RouteType),
		RouteType:     r.config.Agency.RouteType,
	}, nil
}
