package normalise

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/travigo/translink-train/pkg/rules"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const canonicalDash = "–"

func stripQuotes(value string) string {
	value = strings.TrimLeft(value, "\"“” \t")
	return strings.TrimRight(value, "\"“”; \t")
}

// A prefix can repeat, as in "SkyTrain to to Waterfront".
var directionalPrefix = regexp.MustCompile(`(?i)^(?:(?:sky\s*train\s+)?(?:-\s*)?(?:platform\s+sign\s+)?(?:[\w' .-]*?\bline\s+)?to\s+)+`)

func stripDirectionalPrefix(value string) string {
	return directionalPrefix.ReplaceAllString(value, "")
}

var station = regexp.MustCompile(`(?i)\bstation\b`)

func removeStation(value string) string {
	return station.ReplaceAllString(value, " ")
}

// Stop names also carry the line they are served by: "Waterfront Station Expo Line"
var stationLine = regexp.MustCompile(`(?i)\bstation(?:\s+[\w-]+\s+line)?\b`)

func removeStationLine(value string) string {
	return stationLine.ReplaceAllString(value, " ")
}

var via = regexp.MustCompile(`(?i)\s+via\s.*$`)

func removeVia(value string) string {
	return via.ReplaceAllString(value, "")
}

var dashSeparator = regexp.MustCompile(`--|[-–—]`)

func contractionRule(contraction rules.Contraction) Rule {
	var words []string
	for _, word := range strings.Fields(contraction.Match) {
		parts := dashSeparator.Split(word, -1)
		for i := range parts {
			parts[i] = regexp.QuoteMeta(parts[i])
		}

		words = append(words, strings.Join(parts, `\s*(?:--|[-–—])\s*`))
	}

	pattern := regexp.MustCompile(`(?i)(^|[^\p{L}\p{N}])` + strings.Join(words, `\s+`) + `($|[^\p{L}\p{N}])`)
	replacement := "${1}" + strings.ReplaceAll(contraction.Replace, "$", "$$") + "${2}"

	return Rule{
		Name: "contraction:" + contraction.Match,
		Apply: func(value string) string {
			return pattern.ReplaceAllString(value, replacement)
		},
	}
}

func brandWordRule(brandWords []string) func(string) string {
	if len(brandWords) == 0 {
		return func(value string) string { return value }
	}

	var alternatives []string
	for _, brandWord := range brandWords {
		alternatives = append(alternatives, strings.Join(strings.Fields(regexp.QuoteMeta(brandWord)), `\s+`))
	}

	pattern := regexp.MustCompile(`(?i)(?:(?:^|\s+)(?:` + strings.Join(alternatives, "|") + `))+$`)

	return func(value string) string {
		return pattern.ReplaceAllString(value, "")
	}
}

var (
	// A run of dashes becomes one en dash when any of them is a long dash.
	longDash   = regexp.MustCompile(`\s*(?:-+\s*)*(?:--|[–—])(?:\s*(?:-|[–—]))*\s*`)
	singleDash = regexp.MustCompile(`[ \t]*-[ \t]*`)
)

func normaliseDashes(value string) string {
	value = longDash.ReplaceAllString(value, canonicalDash)
	return singleDash.ReplaceAllString(value, "-")
}

var mcPrefix = regexp.MustCompile(`\b[Mm][Cc][A-Za-z]{2,}`)

func fixMcCase(value string) string {
	return mcPrefix.ReplaceAllStringFunc(value, func(word string) string {
		return "Mc" + strings.ToUpper(word[2:3]) + strings.ToLower(word[3:])
	})
}

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}\p{N}]+)*`)

func titleCase(acronyms map[string]bool) func(string) string {
	return func(value string) string {
		caser := cases.Title(language.English)

		return wordPattern.ReplaceAllStringFunc(value, func(w string) string {
			upper := strings.ToUpper(w)
			first, _ := utf8.DecodeRuneInString(w)

			switch {
			case acronyms[upper]:
				return upper
			case isMixedCase(w):
				return w
			case unicode.IsDigit(first):
				return strings.ToLower(w)
			default:
				return caser.String(w)
			}
		})
	}
}

// isMixedCase reports whether w has an upper case letter after its first
// rune and at least one lower case letter, as in "McDonald".
func isMixedCase(w string) bool {
	var lower, innerUpper bool

	for i, r := range w {
		if unicode.IsLower(r) {
			lower = true
		}
		if i > 0 && unicode.IsUpper(r) {
			innerUpper = true
		}
	}

	return lower && innerUpper
}

// Only short platform numbers are abbreviated: "Platform 2" or "Platform 12".
var platform = regexp.MustCompile(`(?i)\bplatform(?:\s+platform)*\s+([\p{L}\p{N}]{1,3})($|[^\p{L}\p{N}])`)

func abbreviatePlatform(value string) string {
	return platform.ReplaceAllString(value, "P${1}${2}")
}

type streetType struct {
	pattern     *regexp.Regexp
	replacement string
}

func newStreetType(name string, abbreviation string) streetType {
	return streetType{
		pattern:     regexp.MustCompile(`(?i)\b` + name + `\b`),
		replacement: abbreviation,
	}
}

var streetTypes = []streetType{
	newStreetType("street", "St"),
	newStreetType("avenue", "Ave"),
	newStreetType("road", "Rd"),
	newStreetType("boulevard", "Blvd"),
	newStreetType("drive", "Dr"),
	newStreetType("highway", "Hwy"),
	newStreetType("crescent", "Cres"),
	newStreetType("court", "Ct"),
	newStreetType("parkway", "Pkwy"),
	newStreetType("place", "Pl"),
	newStreetType("square", "Sq"),
	newStreetType("lane", "Ln"),
	newStreetType("terrace", "Terr"),
}

func abbreviateStreetTypes(value string) string {
	for _, streetType := range streetTypes {
		value = streetType.pattern.ReplaceAllString(value, streetType.replacement)
	}

	return value
}

var (
	emptyParentheses    = regexp.MustCompile(`\(\s*\)`)
	whitespace          = regexp.MustCompile(`\s+`)
	spaceBeforeClosing  = regexp.MustCompile(`\s+([,.;:!?)\]])`)
	spaceAfterOpening   = regexp.MustCompile(`([(\[])\s+`)
	repeatedSeparators  = regexp.MustCompile(`([,;/])(?:\s*[,;/])+`)
	slash               = regexp.MustCompile(`\s*/\s*`)
	separatorsAndDashes = " ,;/-" + canonicalDash
)

func cleanup(value string) string {
	for emptyParentheses.MatchString(value) {
		value = emptyParentheses.ReplaceAllString(value, "")
	}
	value = whitespace.ReplaceAllString(value, " ")
	value = spaceBeforeClosing.ReplaceAllString(value, "$1")
	value = spaceAfterOpening.ReplaceAllString(value, "$1")
	value = repeatedSeparators.ReplaceAllString(value, "$1")
	value = slash.ReplaceAllString(value, " / ")

	return strings.Trim(value, separatorsAndDashes)
}
