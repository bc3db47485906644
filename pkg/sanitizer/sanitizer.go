package sanitizer

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/nyaruka/phonenumbers"
)

const MaxNotesLength = 1000

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var (
	reKeepLetters     = regexp.MustCompile(`[^\p{L}]+`)
	reTrimUnderscores = regexp.MustCompile(`_+`)

	supportedRegions = []string{
		"IL",
		"US",
	}
)

func trimAndLower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func collapseUnderscores(s string) string {
	s = reTrimUnderscores.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

func dropControl(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func collapseSpaces(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
			continue
		}
		result.WriteRune(r)
		lastWasSpace = false
	}
	return result.String()
}

// SanitizeName collapses inner whitespace and trims a person, branch or service name.
func SanitizeName(input string) string {
	return Pipeline{dropControl, collapseSpaces}.Apply(input)
}

// SanitizeNotes trims free text, keeps line breaks and caps it at MaxNotesLength runes.
func SanitizeNotes(input string) string {
	s := strings.TrimSpace(dropControl(input))
	if runes := []rune(s); len(runes) > MaxNotesLength {
		s = strings.TrimSpace(string(runes[:MaxNotesLength]))
	}
	return s
}

func SanitizeCategory(input string) string {
	p := Pipeline{
		trimAndLower,
		func(s string) string { return reKeepLetters.ReplaceAllString(s, "_") },
		collapseUnderscores,
	}
	return p.Apply(input)
}

// SanitizePhone returns the E.164 form of phone, or "" when no supported region
// parses it into a number of plausible length. Full validity is not required:
// the metadata lags behind newly allocated mobile ranges.
func SanitizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}

	for _, region := range supportedRegions {
		parsed, err := phonenumbers.Parse(phone, region)
		if err == nil && phonenumbers.IsPossibleNumber(parsed) {
			return phonenumbers.Format(parsed, phonenumbers.E164)
		}
	}
	return ""
}

func SanitizeSlice(values []string, strategy Strategy) []string {
	seen := make(map[string]struct{})
	out := []string{}

	for _, v := range values {
		s := strategy(v)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	return out
}

// SanitizeIDs trims ids and drops blanks and duplicates.
func SanitizeIDs(ids []string) []string {
	return SanitizeSlice(ids, strings.TrimSpace)
}

func ClampRating(rating float64) float64 {
	return min(max(rating, 0), 5)
}
