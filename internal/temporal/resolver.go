package temporal

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ISODate is the calendar-day format used across the ledger.
const ISODate = "2006-01-02"

// writtenNumbers maps German written numbers (the forms that occur in
// "vor X Tagen" and quantity phrases) onto their values.
var writtenNumbers = map[string]int{
	"einem": 1, "einer": 1, "einen": 1, "eine": 1, "ein": 1, "eins": 1,
	"zwei": 2, "drei": 3, "vier": 4, "fünf": 5,
	"sechs": 6, "sieben": 7, "acht": 8, "neun": 9, "zehn": 10,
}

// weekdays maps German weekday names to time.Weekday (Sunday = 0),
// in a fixed scan order so multi-weekday phrases resolve deterministically.
var weekdays = []struct {
	name string
	day  time.Weekday
}{
	{"montag", time.Monday},
	{"dienstag", time.Tuesday},
	{"mittwoch", time.Wednesday},
	{"donnerstag", time.Thursday},
	{"freitag", time.Friday},
	{"samstag", time.Saturday},
	{"sonntag", time.Sunday},
}

var (
	daysAgoRe  = regexp.MustCompile(`vor\s+(\d+|einem|einer|zwei|drei|vier|fünf|sechs|sieben|acht|neun|zehn)\s+tag(?:en?)?`)
	weeksAgoRe = regexp.MustCompile(`(?:vor|letzten?)\s+(\d+|einer|zwei|drei|vier)\s+woche(?:n)?`)
)

// Resolve converts a German date phrase into a calendar date relative to
// referenceDate. The boolean is false when no pattern matched; callers must
// not assume a fallback date exists at this layer.
func Resolve(phrase string, referenceDate time.Time) (time.Time, bool) {
	input := strings.ToLower(strings.TrimSpace(phrase))
	ref := Midnight(referenceDate)

	switch {
	case strings.Contains(input, "vorgestern"):
		return ref.AddDate(0, 0, -2), true
	case strings.Contains(input, "heute"):
		return ref, true
	case strings.Contains(input, "gestern"):
		return ref.AddDate(0, 0, -1), true
	case strings.Contains(input, "morgen") && !strings.Contains(input, "morgens"):
		return ref.AddDate(0, 0, 1), true
	}

	if m := daysAgoRe.FindStringSubmatch(input); m != nil {
		return ref.AddDate(0, 0, -parseNumberWord(m[1])), true
	}

	if m := weeksAgoRe.FindStringSubmatch(input); m != nil {
		return ref.AddDate(0, 0, -7*parseNumberWord(m[1])), true
	}
	if strings.Contains(input, "letzte woche") || strings.Contains(input, "letzten woche") ||
		strings.Contains(input, "vorige woche") {
		return ref.AddDate(0, 0, -7), true
	}

	for _, wd := range weekdays {
		name, target := wd.name, wd.day
		lastWeekRe := regexp.MustCompile(`\b(?:letzten?|vorigen?)\s+` + name + `\b`)
		thisWeekRe := regexp.MustCompile(`\b(?:am\s+)?` + name + `\b`)

		isLastWeek := lastWeekRe.MatchString(input)
		isThisWeek := thisWeekRe.MatchString(input) && !isLastWeek
		if !isLastWeek && !isThisWeek {
			continue
		}

		daysBack := weekdayDaysBack(ref.Weekday(), target)
		if isLastWeek {
			if daysBack == 0 {
				daysBack = 7
			} else {
				daysBack += 7
			}
		}
		return ref.AddDate(0, 0, -daysBack), true
	}

	return time.Time{}, false
}

// weekdayDaysBack returns how many days lie between current and the nearest
// past (or same-day) occurrence of target.
func weekdayDaysBack(current, target time.Weekday) int {
	switch {
	case current == target:
		return 0
	case current > target:
		return int(current - target)
	default:
		return int(current) + (7 - int(target))
	}
}

func parseNumberWord(word string) int {
	if n, err := strconv.Atoi(word); err == nil {
		return n
	}
	if n, ok := writtenNumbers[word]; ok {
		return n
	}
	return 1
}

// AliasTable precomputes every recognized date alias for a reference date:
// the relative keywords, the nearest past occurrence of each weekday, and
// "vor N tag(en)" for N in 1..10 in digit and written form. The table must be
// regenerated per request; reusing it across reference dates is a bug.
func AliasTable(referenceDate time.Time) map[string]time.Time {
	ref := Midnight(referenceDate)
	table := map[string]time.Time{
		"heute":      ref,
		"gestern":    ref.AddDate(0, 0, -1),
		"vorgestern": ref.AddDate(0, 0, -2),
	}

	for _, wd := range weekdays {
		daysBack := weekdayDaysBack(ref.Weekday(), wd.day)
		if daysBack == 0 {
			daysBack = 7 // "montag" said on a Monday means last Monday
		}
		table[wd.name] = ref.AddDate(0, 0, -daysBack)
	}

	for i := 1; i <= 10; i++ {
		date := ref.AddDate(0, 0, -i)
		table[fmt.Sprintf("vor %d tag", i)] = date
		table[fmt.Sprintf("vor %d tagen", i)] = date
	}
	for word, n := range writtenNumbers {
		date := ref.AddDate(0, 0, -n)
		table["vor "+word+" tag"] = date
		table["vor "+word+" tagen"] = date
	}

	return table
}

// LookupAlias scans a message for any alias in the table and returns its
// date. Longer aliases are preferred so "vor 3 tagen" wins over "tag".
func LookupAlias(message string, table map[string]time.Time) (time.Time, bool) {
	lower := strings.ToLower(message)
	var best string
	for alias := range table {
		if strings.Contains(lower, alias) && len(alias) > len(best) {
			best = alias
		}
	}
	if best == "" {
		return time.Time{}, false
	}
	return table[best], true
}

// WithinWindow reports whether date lies within ±365 days of referenceDate.
// Dates outside this window must not be assigned to actions.
func WithinWindow(date, referenceDate time.Time) bool {
	ref := Midnight(referenceDate)
	d := Midnight(date)
	return !d.Before(ref.AddDate(0, 0, -365)) && !d.After(ref.AddDate(0, 0, 365))
}

// Midnight truncates a time to its calendar day in UTC.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Describe renders a date the way a user said it: "heute", "gestern",
// "vorgestern", "vor N Tagen" for up to a week back, else "am DD.MM.YYYY".
func Describe(date, referenceDate time.Time) string {
	ref := Midnight(referenceDate)
	d := Midnight(date)
	diff := int(ref.Sub(d).Hours() / 24)

	switch diff {
	case 0:
		return "heute"
	case 1:
		return "gestern"
	case 2:
		return "vorgestern"
	}
	if diff > 0 && diff <= 7 {
		return fmt.Sprintf("vor %d Tagen", diff)
	}
	return "am " + d.Format("02.01.2006")
}
