package temporal

import (
	"fmt"
	"testing"
	"time"
)

// 2025-01-10 is a Friday.
var ref = time.Date(2025, 1, 10, 14, 30, 0, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolveRelativeKeywords(t *testing.T) {
	tests := []struct {
		phrase string
		want   time.Time
	}{
		{"heute", date(2025, 1, 10)},
		{"was habe ich heute gegessen", date(2025, 1, 10)},
		{"gestern", date(2025, 1, 9)},
		{"vorgestern", date(2025, 1, 8)},
		{"morgen", date(2025, 1, 11)},
	}
	for _, tt := range tests {
		t.Run(tt.phrase, func(t *testing.T) {
			got, ok := Resolve(tt.phrase, ref)
			if !ok {
				t.Fatalf("Resolve(%q) matched nothing", tt.phrase)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Resolve(%q) = %v, want %v", tt.phrase, got, tt.want)
			}
		})
	}
}

func TestResolveDaysAgo(t *testing.T) {
	written := []string{"", "einem", "zwei", "drei", "vier", "fünf", "sechs", "sieben", "acht", "neun", "zehn"}
	for n := 1; n <= 10; n++ {
		want := date(2025, 1, 10).AddDate(0, 0, -n)

		phrase := fmt.Sprintf("vor %d tagen", n)
		got, ok := Resolve(phrase, ref)
		if !ok || !got.Equal(want) {
			t.Errorf("Resolve(%q) = %v/%v, want %v", phrase, got, ok, want)
		}

		phrase = fmt.Sprintf("vor %s tagen", written[n])
		got, ok = Resolve(phrase, ref)
		if !ok || !got.Equal(want) {
			t.Errorf("Resolve(%q) = %v/%v, want %v", phrase, got, ok, want)
		}
	}
}

func TestResolveWeeksAgo(t *testing.T) {
	got, ok := Resolve("vor zwei wochen", ref)
	if !ok || !got.Equal(date(2024, 12, 27)) {
		t.Errorf("vor zwei wochen = %v/%v, want 2024-12-27", got, ok)
	}
	got, ok = Resolve("letzte woche", ref)
	if !ok || !got.Equal(date(2025, 1, 3)) {
		t.Errorf("letzte woche = %v/%v, want 2025-01-03", got, ok)
	}
}

func TestResolveWeekdays(t *testing.T) {
	// Reference is a Friday; nearest past Monday is 2025-01-06.
	got, ok := Resolve("am montag", ref)
	if !ok || !got.Equal(date(2025, 1, 6)) {
		t.Errorf("am montag = %v/%v, want 2025-01-06", got, ok)
	}
	if got.Weekday() != time.Monday {
		t.Errorf("am montag resolved to %v, not a Monday", got.Weekday())
	}

	// "letzten montag" always goes at least 7 days back.
	got, ok = Resolve("letzten montag", ref)
	if !ok || !got.Equal(date(2024, 12, 30)) {
		t.Errorf("letzten montag = %v/%v, want 2024-12-30", got, ok)
	}
	if got.Weekday() != time.Monday {
		t.Errorf("letzten montag resolved to %v, not a Monday", got.Weekday())
	}
	if days := int(date(2025, 1, 10).Sub(got).Hours() / 24); days < 7 {
		t.Errorf("letzten montag only %d days back, want >= 7", days)
	}

	// Same weekday as reference: "am freitag" is today, "letzten freitag" a week ago.
	got, _ = Resolve("am freitag", ref)
	if !got.Equal(date(2025, 1, 10)) {
		t.Errorf("am freitag = %v, want reference date", got)
	}
	got, _ = Resolve("letzten freitag", ref)
	if !got.Equal(date(2025, 1, 3)) {
		t.Errorf("letzten freitag = %v, want 2025-01-03", got)
	}
}

func TestResolveNoMatch(t *testing.T) {
	if _, ok := Resolve("ich habe einen apfel gegessen", ref); ok {
		t.Error("expected no match for a phrase without date expressions")
	}
}

func TestAliasTableConsistency(t *testing.T) {
	table := AliasTable(ref)

	if !table["heute"].Equal(date(2025, 1, 10)) {
		t.Errorf("heute = %v", table["heute"])
	}
	if !table["gestern"].Equal(date(2025, 1, 9)) {
		t.Errorf("gestern = %v", table["gestern"])
	}
	if !table["vorgestern"].Equal(date(2025, 1, 8)) {
		t.Errorf("vorgestern = %v", table["vorgestern"])
	}

	// Every weekday entry lies 1..7 days in the past.
	for _, name := range []string{"montag", "dienstag", "mittwoch", "donnerstag", "freitag", "samstag", "sonntag"} {
		d, ok := table[name]
		if !ok {
			t.Fatalf("missing alias %q", name)
		}
		days := int(date(2025, 1, 10).Sub(d).Hours() / 24)
		if days < 1 || days > 7 {
			t.Errorf("alias %q resolved %d days back, want 1..7", name, days)
		}
	}

	for n := 1; n <= 10; n++ {
		key := fmt.Sprintf("vor %d tagen", n)
		if !table[key].Equal(date(2025, 1, 10).AddDate(0, 0, -n)) {
			t.Errorf("%s = %v", key, table[key])
		}
	}
}

func TestLookupAliasPrefersLongest(t *testing.T) {
	table := AliasTable(ref)
	got, ok := LookupAlias("ich hatte vor 3 tagen einen salat", table)
	if !ok || !got.Equal(date(2025, 1, 7)) {
		t.Errorf("LookupAlias = %v/%v, want 2025-01-07", got, ok)
	}
	if _, ok := LookupAlias("ein apfel", table); ok {
		t.Error("expected no alias match")
	}
}

func TestWithinWindow(t *testing.T) {
	if !WithinWindow(date(2025, 1, 10), ref) {
		t.Error("reference date itself must be within window")
	}
	if !WithinWindow(date(2024, 2, 1), ref) {
		t.Error("11 months back must be within window")
	}
	if WithinWindow(date(2026, 2, 14), ref) {
		t.Error("400 days ahead must be outside window")
	}
	if WithinWindow(date(2023, 12, 1), ref) {
		t.Error("more than a year back must be outside window")
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		d    time.Time
		want string
	}{
		{date(2025, 1, 10), "heute"},
		{date(2025, 1, 9), "gestern"},
		{date(2025, 1, 8), "vorgestern"},
		{date(2025, 1, 5), "vor 5 Tagen"},
		{date(2024, 12, 20), "am 20.12.2024"},
	}
	for _, tt := range tests {
		if got := Describe(tt.d, ref); got != tt.want {
			t.Errorf("Describe(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
