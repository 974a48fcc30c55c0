package extract

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/mkleber/kaltrack/internal/models"
)

// Word boundaries built on \p{L} instead of \b, because \b is ASCII-only and
// fails at umlauts ("äpfel" would never match at the start of a word).
const (
	boundL = `(?:^|[^\p{L}])`
	boundR = `(?:$|[^\p{L}])`
	plural = `(?:s|es|en|n)?`
)

var quantityWords = []struct {
	word string
	n    int
}{
	{"einen", 1}, {"eine", 1}, {"ein", 1}, {"eins", 1},
	{"zwei", 2}, {"drei", 3}, {"vier", 4}, {"fünf", 5},
	{"sechs", 6}, {"sieben", 7}, {"acht", 8}, {"neun", 9}, {"zehn", 10},
}

// unitWords are the measure words that can sit between a count and a food
// term. Plural patterns normalize to the singular unit.
var unitWords = []struct {
	pattern string
	unit    string
}{
	{`stücke?`, "stück"},
	{`scheiben?`, "scheibe"},
	{`portionen?`, "portion"},
	{`becher`, "becher"},
	{`schüsseln?`, "schüssel"},
	{`teller`, "teller"},
	{`gläser`, "glas"},
	{`glas`, "glas"},
	{`tassen?`, "tasse"},
	{`flaschen?`, "flasche"},
}

const unitAlt = `(?:stücke?|scheiben?|portionen?|becher|schüsseln?|teller|gläser|glas|tassen?|flaschen?)`

// termPatterns builds the four match strategies for a lexicon term, in
// priority order: quantified occurrence, consumption verb, written number,
// meal-time phrase.
func termPatterns(term string) []*regexp.Regexp {
	t := regexp.QuoteMeta(term)
	// Short terms take no inflection suffix: "ei" must not swallow "ein".
	suffix := plural
	if utf8.RuneCountInString(term) <= 3 {
		suffix = ""
	}
	return []*regexp.Regexp{
		regexp.MustCompile(boundL + `(?:\d+\s*(?:x\s*)?|stück\s+|portionen?\s+|scheiben?\s+|becher\s+|schüsseln?\s+|teller\s+)?` + t + suffix + boundR),
		regexp.MustCompile(boundL + t + suffix + `\s+(?:gegessen|getrunken|gehabt|hatte|habe|esse|trinke)`),
		regexp.MustCompile(boundL + `(?:einen?|eine|eins|zwei|drei|vier|fünf|sechs|sieben|acht|neun|zehn)\s+` + t + suffix + boundR),
		regexp.MustCompile(boundL + t + suffix + `\s+(?:zum|am|beim|mit)\s+(?:frühstück|mittagessen|abendessen|snack)`),
	}
}

// ExtractFoods scans an utterance for lexicon terms and returns one mention
// per counted unit, so "2 Äpfel" yields two apple mentions that can be
// resolved and removed independently. The result is deduplicated by display
// name; quantity copies of the same term are kept.
func ExtractFoods(utterance string, lexicon Lexicon) []models.FoodMention {
	input := strings.ToLower(utterance)
	var mentions []models.FoodMention
	seen := make(map[string]bool)

	for _, e := range lexicon {
		if seen[e.Display] {
			continue
		}
		for _, term := range e.Terms {
			matched := false
			for _, re := range termPatterns(term) {
				if re.MatchString(input) {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}

			qty := extractQuantity(input, term)
			unit := extractUnit(input, term)
			for i := 0; i < qty; i++ {
				mentions = append(mentions, models.FoodMention{
					RawTerm:        term,
					NormalizedTerm: e.Display,
					Quantity:       1,
					Unit:           unit,
				})
			}
			seen[e.Display] = true
			break
		}
	}
	return mentions
}

// extractQuantity finds the count attached to a matched term: an adjacent
// digit wins (an intervening measure word is allowed, "2 Scheiben Brot"),
// then a written number directly before the term, else 1.
func extractQuantity(input, term string) int {
	re := regexp.MustCompile(`(\d+)\s*(?:x\s*)?(?:` + unitAlt + `\s+)?` + regexp.QuoteMeta(term))
	if m := re.FindStringSubmatch(input); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return n
		}
	}
	for _, qw := range quantityWords {
		if strings.Contains(input, qw.word+" "+term) {
			return qw.n
		}
	}
	return 1
}

// extractUnit finds the measure word directly before a matched term, so
// "2 Scheiben Brot" carries the unit "scheibe". Empty when the utterance
// names no measure.
func extractUnit(input, term string) string {
	for _, uw := range unitWords {
		re := regexp.MustCompile(boundL + `(?:\d+\s*)?` + uw.pattern + `\s+` + regexp.QuoteMeta(term))
		if re.MatchString(input) {
			return uw.unit
		}
	}
	return ""
}
