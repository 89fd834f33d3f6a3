package rules

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/travigo/translink-train/pkg/util"
	"golang.org/x/exp/slices"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type directionKey struct {
	line      string
	direction int
}

// Config is the combined, validated set of rule tables. It is built once at
// startup and must not be modified afterwards.
type Config struct {
	Agency Agency

	Lines      []*Line
	Directions []*DirectionSet

	Contractions []Contraction
	Acronyms     []string
	BrandWords   []string

	identifiers map[string]*Line
	shortNames  map[string]*Line
	directions  map[directionKey]*DirectionSet
}

// Build validates and combines the documents. Any defect is returned as an
// *InconsistencyError.
func Build(documents ...Document) (*Config, error) {
	config := &Config{
		identifiers: map[string]*Line{},
		shortNames:  map[string]*Line{},
		directions:  map[directionKey]*DirectionSet{},
	}

	var agency *Agency

	for i, document := range documents {
		if err := validate.Struct(document); err != nil {
			validationError := Inconsistency("document", nil, fmt.Sprintf("#%d", i), "failed validation")
			validationError.Err = err
			return nil, validationError
		}

		if document.Agency != nil {
			if agency != nil {
				return nil, Inconsistency("agency", document.Agency, document.Agency.Name, fmt.Sprintf("duplicates agency %q", agency.Name))
			}

			agency = document.Agency
		}

		for _, line := range document.Lines {
			if err := config.addLine(line); err != nil {
				return nil, err
			}
		}

		config.Directions = append(config.Directions, document.Directions...)
		config.Contractions = append(config.Contractions, document.Contractions...)
		config.Acronyms = append(config.Acronyms, document.Acronyms...)
		config.BrandWords = append(config.BrandWords, document.BrandWords...)
	}

	if agency == nil {
		return nil, Inconsistency("agency", nil, "", "is not configured")
	}
	config.Agency = *agency
	config.Agency.Color = strings.ToUpper(config.Agency.Color)

	if len(config.Lines) == 0 {
		return nil, Inconsistency("line", nil, "", "no lines are configured")
	}

	for _, directionSet := range config.Directions {
		if config.shortNames[directionSet.Line] == nil {
			return nil, Inconsistency("direction", directionSet, directionSet.Line, "references an unknown line")
		}

		key := directionKey{line: directionSet.Line, direction: directionSet.Direction}
		if config.directions[key] != nil {
			return nil, Inconsistency("direction", directionSet, directionSet.Line, fmt.Sprintf("has more than one synonym set for direction %d", directionSet.Direction))
		}

		config.directions[key] = directionSet
	}

	for i := range config.Acronyms {
		config.Acronyms[i] = strings.ToUpper(config.Acronyms[i])
	}
	config.Acronyms = util.RemoveDuplicateStrings(config.Acronyms, nil)

	return config, nil
}

func (c *Config) addLine(line *Line) error {
	if c.shortNames[line.ShortName] != nil {
		return Inconsistency("line", line, line.ShortName, "duplicates the short name of another line")
	}

	for _, identifier := range line.Identifiers {
		folded := util.FoldIdentifier(identifier)
		if folded == "" {
			return Inconsistency("line", line, identifier, "is a blank identifier")
		}

		if existing := c.identifiers[folded]; existing != nil && existing != line {
			return Inconsistency("line", line, identifier, fmt.Sprintf("is already an identifier of %s", existing.ShortName))
		}

		c.identifiers[folded] = line
	}

	line.Color = strings.ToUpper(line.Color)

	c.shortNames[line.ShortName] = line
	c.Lines = append(c.Lines, line)

	return nil
}

// LineByIdentifier returns the line that lists value as one of its
// identifiers, ignoring case and surrounding whitespace.
func (c *Config) LineByIdentifier(value string) *Line {
	return c.identifiers[util.FoldIdentifier(value)]
}

// Line returns the line with the given canonical short name
func (c *Config) Line(shortName string) *Line {
	return c.shortNames[shortName]
}

func (c *Config) DirectionSet(line string, direction int) *DirectionSet {
	return c.directions[directionKey{line: line, direction: direction}]
}

// IsAcronym reports whether word is a configured acronym
func (c *Config) IsAcronym(word string) bool {
	return slices.Contains(c.Acronyms, strings.ToUpper(word))
}
