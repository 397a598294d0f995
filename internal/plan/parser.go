package plan

import (
	"regexp"
	"strconv"
	"strings"
)

// IntervalStructure is a repeated-effort prescription parsed from free text,
// e.g. "4x8min @ Z4" -> 4 repeats of 480 seconds in zone 4.
type IntervalStructure struct {
	Repeats     int
	DurationSec int
	TargetZone  *int   // nil when no zone could be resolved
	Raw         string // the text span that matched, kept for display
}

// Structure validity bounds. Anything outside these is treated as a false
// positive of the pattern match (e.g. "12x400m" splits, dates, bib numbers).
const (
	MinRepeats       = 1
	MaxRepeats       = 20
	MinRepeatSeconds = 10
	MaxRepeatSeconds = 3600
)

// explicitZoneRe matches "z3", "Z 3", "zone 3" style targets.
var explicitZoneRe = regexp.MustCompile(`\bz(?:one)?\s*([1-5])\b`)

// intensityKeywords maps coaching language to a target zone. Order matters:
// the first keyword found in the text wins, so more specific phrases come
// before their substrings ("very easy" before "easy").
var intensityKeywords = []struct {
	word string
	zone int
}{
	{"recovery", 1},
	{"very easy", 1},
	{"easy", 2},
	{"endurance", 2},
	{"aerobic", 2},
	{"tempo", 3},
	{"moderate", 3},
	{"controlled", 3},
	{"threshold", 4},
	{"hard", 4},
	{"lactate", 4},
	{"sweet spot", 4},
	{"vo2max", 5},
	{"vo2", 5},
	{"max", 5},
	{"anaerobic", 5},
}

// ParseIntensityZone infers a target heart-rate zone from free text. An
// explicit "z4" / "zone 4" beats keyword inference. ok is false when the
// text gives no usable signal.
func ParseIntensityZone(text string) (zone int, ok bool) {
	lower := strings.ToLower(text)

	if m := explicitZoneRe.FindStringSubmatch(lower); m != nil {
		z, err := strconv.Atoi(m[1])
		if err == nil && z >= 1 && z <= NumZones {
			return z, true
		}
	}

	for _, kw := range intensityKeywords {
		if strings.Contains(lower, kw.word) {
			return kw.zone, true
		}
	}

	return 0, false
}

// intervalPatterns are tried in declaration order against each text.
// seconds marks patterns whose duration is already in seconds; the rest
// are minutes. Prime and double-prime are the shorthand coaches use for
// minutes and seconds respectively.
var intervalPatterns = []struct {
	re      *regexp.Regexp
	seconds bool
}{
	{regexp.MustCompile(`(\d{1,2})\s*[x×]\s*(\d+)\s*min(?:ute)?s?\b`), false},
	{regexp.MustCompile(`(\d{1,2})\s*[x×]\s*(\d+)'`), false},
	{regexp.MustCompile(`(\d{1,2})\s*[x×]\s*(\d+)\s*sec(?:ond)?s?\b`), true},
	{regexp.MustCompile(`(\d{1,2})\s*[x×]\s*(\d+)"`), true},
}

// ParseIntervalStructure scans the workout's free-text fields for a repeat
// prescription. The texts are tried in order (title, then notes, then the
// intensity target) and the first structurally valid match wins. Returns
// nil when no field describes intervals.
func ParseIntervalStructure(title, notes, intensity string) *IntervalStructure {
	texts := make([]string, 0, 3)
	for _, t := range []string{title, notes, intensity} {
		if strings.TrimSpace(t) != "" {
			texts = append(texts, t)
		}
	}

	for _, text := range texts {
		lower := strings.ToLower(text)
		for _, p := range intervalPatterns {
			loc := p.re.FindStringSubmatchIndex(lower)
			if loc == nil {
				continue
			}

			repeats, err := strconv.Atoi(lower[loc[2]:loc[3]])
			if err != nil {
				continue
			}
			dur, err := strconv.Atoi(lower[loc[4]:loc[5]])
			if err != nil {
				continue
			}
			if !p.seconds {
				dur *= 60
			}

			if repeats < MinRepeats || repeats > MaxRepeats {
				continue
			}
			if dur < MinRepeatSeconds || dur > MaxRepeatSeconds {
				continue
			}

			st := &IntervalStructure{
				Repeats:     repeats,
				DurationSec: dur,
				Raw:         text[loc[0]:loc[1]],
			}
			if z, ok := resolveTargetZone(lower[loc[1]:], intensity); ok {
				st.TargetZone = &z
			}
			return st
		}
	}

	return nil
}

// resolveTargetZone reads the zone from the text trailing the repeat match
// (typically an "@ tempo" or "@ Z4" suffix), falling back to the workout's
// overall intensity target.
func resolveTargetZone(trailing, intensity string) (int, bool) {
	suffix := strings.TrimSpace(trailing)
	suffix = strings.TrimPrefix(suffix, "@")
	if z, ok := ParseIntensityZone(suffix); ok {
		return z, true
	}
	return ParseIntensityZone(intensity)
}
