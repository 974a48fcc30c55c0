package extract

import (
	"regexp"
	"strconv"
	"strings"
)

var waterKeywords = []string{"wasser", "getrunken", "trinken", "liter", "glas", "gläser", "flasche", "ml"}

var (
	literRe  = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(?:l\b|liter)`)
	mlRe     = regexp.MustCompile(`(\d+)\s*(?:ml|milliliter)`)
	glassRe  = regexp.MustCompile(`(\d+)\s*(?:glas|gläser)`)
	bottleRe = regexp.MustCompile(`(\d+)\s*(?:flasche|flaschen)`)
	numberRe = regexp.MustCompile(`(\d+(?:[.,]\d+)?)`)
)

// ExtractWater parses a water amount in liters from an utterance. It only
// triggers when a water keyword is present. Units checked in order: liters,
// milliliters, glasses (0.25 L), bottles (0.5 L); later unit matches override
// earlier ones so the most specific phrasing wins. A bare number above 10 is
// taken as milliliters. A keyword without any amount means one glass: a
// conservative default beats silently ignoring clear intent.
func ExtractWater(utterance string) (float64, bool) {
	input := strings.ToLower(utterance)

	hasKeyword := false
	for _, kw := range waterKeywords {
		if strings.Contains(input, kw) {
			hasKeyword = true
			break
		}
	}
	if !hasKeyword {
		return 0, false
	}

	amount := 0.0
	if m := literRe.FindStringSubmatch(input); m != nil {
		amount = parseDecimal(m[1])
	}
	if m := mlRe.FindStringSubmatch(input); m != nil {
		amount = parseDecimal(m[1]) / 1000
	}
	if m := glassRe.FindStringSubmatch(input); m != nil {
		amount = parseDecimal(m[1]) * 0.25
	}
	if m := bottleRe.FindStringSubmatch(input); m != nil {
		amount = parseDecimal(m[1]) * 0.5
	}

	if amount == 0 {
		if m := numberRe.FindStringSubmatch(input); m != nil {
			n := parseDecimal(m[1])
			if n > 10 {
				n /= 1000
			}
			amount = n
		}
	}
	if amount == 0 {
		amount = 0.25
	}
	return amount, true
}

// parseDecimal accepts both German comma and dot decimal notation.
func parseDecimal(s string) float64 {
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return 0
	}
	return f
}
