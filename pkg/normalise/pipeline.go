package normalise

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/travigo/translink-train/pkg/rules"
)

type Target int

const (
	Headsign Target = iota
	StopName
	LongName
)

func (t Target) String() string {
	switch t {
	case Headsign:
		return "headsign"
	case StopName:
		return "stop-name"
	case LongName:
		return "long-name"
	default:
		return fmt.Sprintf("Target(%d)", int(t))
	}
}

// ParseTarget is the inverse of Target.String
func ParseTarget(value string) (Target, error) {
	for _, target := range []Target{Headsign, StopName, LongName} {
		if strings.EqualFold(value, target.String()) {
			return target, nil
		}
	}

	return 0, fmt.Errorf("unknown normalisation target %q", value)
}

// Rule is a single named string transformation
type Rule struct {
	Name  string
	Apply func(string) string
}

type Options struct {
	Contractions []rules.Contraction
	Acronyms     []string
	BrandWords   []string
}

// Pipeline holds the ordered rules for every target. It is safe for
// concurrent use.
type Pipeline struct {
	targets map[Target][]Rule
}

// Passes are repeated until the output stops changing. The built-in rules
// settle within a few passes, so the bound only stops a contraction whose
// replacement keeps matching from looping forever.
const minPassBound = 8

func New(options Options) *Pipeline {
	acronyms := map[string]bool{}
	for _, acronym := range options.Acronyms {
		acronyms[strings.ToUpper(acronym)] = true
	}

	var contractions []Rule
	for _, contraction := range options.Contractions {
		contractions = append(contractions, contractionRule(contraction))
	}

	headsign := []Rule{
		{Name: "quotes", Apply: stripQuotes},
		{Name: "prefix", Apply: stripDirectionalPrefix},
		{Name: "station", Apply: removeStation},
		{Name: "via", Apply: removeVia},
	}
	headsign = append(headsign, contractions...)
	headsign = append(headsign,
		Rule{Name: "dashes", Apply: normaliseDashes},
		Rule{Name: "mc", Apply: fixMcCase},
		Rule{Name: "title-case", Apply: titleCase(acronyms)},
		Rule{Name: "cleanup", Apply: cleanup},
	)

	stopName := []Rule{
		{Name: "quotes", Apply: stripQuotes},
		{Name: "prefix", Apply: stripDirectionalPrefix},
		{Name: "station", Apply: removeStationLine},
	}
	stopName = append(stopName, contractions...)
	stopName = append(stopName,
		Rule{Name: "dashes", Apply: normaliseDashes},
		Rule{Name: "mc", Apply: fixMcCase},
		Rule{Name: "title-case", Apply: titleCase(acronyms)},
		Rule{Name: "platform", Apply: abbreviatePlatform},
		Rule{Name: "street-types", Apply: abbreviateStreetTypes},
		Rule{Name: "cleanup", Apply: cleanup},
	)

	longName := []Rule{
		{Name: "quotes", Apply: stripQuotes},
		{Name: "brand-words", Apply: brandWordRule(options.BrandWords)},
		{Name: "dashes", Apply: normaliseDashes},
		{Name: "mc", Apply: fixMcCase},
		{Name: "title-case", Apply: titleCase(acronyms)},
		{Name: "cleanup", Apply: cleanup},
	}

	return &Pipeline{
		targets: map[Target][]Rule{
			Headsign: headsign,
			StopName: stopName,
			LongName: longName,
		},
	}
}

func FromConfig(config *rules.Config) *Pipeline {
	return New(Options{
		Contractions: config.Contractions,
		Acronyms:     config.Acronyms,
		BrandWords:   config.BrandWords,
	})
}

// Normalize runs the rules of target over raw. Applying Normalize to its own
// output returns that output unchanged.
func (p *Pipeline) Normalize(raw string, target Target) string {
	value := raw

	bound := minPassBound + utf8.RuneCountInString(raw)
	for pass := 0; pass < bound; pass++ {
		next := p.apply(value, target)
		if next == value {
			break
		}

		value = next
	}

	return value
}

func (p *Pipeline) apply(value string, target Target) string {
	for _, rule := range p.targets[target] {
		value = rule.Apply(value)
	}

	return value
}

// Step is the output of one rule during a Trace
type Step struct {
	Rule   string
	Output string
}

// Trace runs a single pass of the rules of target and records every
// intermediate value.
func (p *Pipeline) Trace(raw string, target Target) []Step {
	var steps []Step

	value := raw
	for _, rule := range p.targets[target] {
		value = rule.Apply(value)
		steps = append(steps, Step{Rule: rule.Name, Output: value})
	}

	return steps
}

// Rules returns a copy of the ordered rules for target
func (p *Pipeline) Rules(target Target) []Rule {
	return append([]Rule(nil), p.targets[target]...)
}
