package foodkb

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/mkleber/kaltrack/internal/models"
)

// CustomSource supplies user-created food records.
type CustomSource interface {
	ListCustomFoods(ctx context.Context) ([]models.FoodRecord, error)
}

// RemoteSearcher is the product-lookup fallback consulted when no local
// record scores well enough.
type RemoteSearcher interface {
	Search(ctx context.Context, term string, limit int) ([]models.FoodRecord, error)
}

// Resolver matches extracted food terms against the tiered knowledge base:
// user-custom entries, curated system entries, then remote product lookup.
type Resolver struct {
	system []models.FoodRecord
	custom CustomSource
	remote RemoteSearcher
}

// NewResolver builds a resolver over the curated system foods. custom and
// remote may be nil; the corresponding tier is then skipped.
func NewResolver(custom CustomSource, remote RemoteSearcher) *Resolver {
	return &Resolver{system: SystemFoods(), custom: custom, remote: remote}
}

// matchThreshold separates trustworthy database matches from weak ones that
// need the estimation fallback.
const matchThreshold = 70

// substringMatch reports containment in either direction. The contained
// string must have at least 3 runes so that "ei" cannot match inside
// arbitrary words.
func substringMatch(a, b string) bool {
	if utf8.RuneCountInString(a) >= 3 && strings.Contains(b, a) {
		return true
	}
	return utf8.RuneCountInString(b) >= 3 && strings.Contains(a, b)
}

// scoreLocal rates how well a record matches a lowercased query:
// exact name 100, name substring either direction 80, exact alias 90,
// alias substring 70.
func scoreLocal(rec models.FoodRecord, query string) int {
	name := strings.ToLower(rec.Name)
	if name == query {
		return 100
	}
	score := 0
	if substringMatch(name, query) {
		score = 80
	}
	for _, a := range rec.Aliases {
		alias := strings.ToLower(a)
		if alias == query {
			if score < 90 {
				score = 90
			}
		} else if substringMatch(alias, query) {
			if score < 70 {
				score = 70
			}
		}
	}
	return score
}

// scoreRemote rates a remote product name against the query. Remote exact
// matches score 95 so they never outrank a local exact match.
func scoreRemote(rec models.FoodRecord, query string) int {
	name := strings.ToLower(rec.Name)
	if name == query {
		return 95
	}
	if substringMatch(name, query) {
		return 75
	}
	for _, word := range strings.Fields(query) {
		if len(word) > 2 && strings.Contains(name, word) {
			return 60
		}
	}
	return 0
}

// betterCandidate reports whether (rec, score) should replace the current
// best. Equal scores break ties deterministically: shorter name first, then
// lexicographic order.
func betterCandidate(score, bestScore int, rec, best models.FoodRecord) bool {
	if score != bestScore {
		return score > bestScore
	}
	if bestScore == 0 {
		return false
	}
	a, b := strings.ToLower(rec.Name), strings.ToLower(best.Name)
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

// Resolve finds the best knowledge-base match for a food mention and
// computes portion-adjusted nutrition. Below the match threshold it degrades
// to estimation mode, which trusts the mention's own macro values and only
// guesses grams for display.
func (r *Resolver) Resolve(ctx context.Context, mention models.FoodMention) models.ResolvedFood {
	query := strings.ToLower(strings.TrimSpace(mention.NormalizedTerm))
	if query == "" {
		query = strings.ToLower(strings.TrimSpace(mention.RawTerm))
	}

	var best models.FoodRecord
	bestScore := 0

	consider := func(rec models.FoodRecord, score int) {
		if betterCandidate(score, bestScore, rec, best) {
			best = rec
			bestScore = score
		}
	}

	if r.custom != nil {
		customs, err := r.custom.ListCustomFoods(ctx)
		if err != nil {
			log.Printf("food resolve: listing custom foods: %v", err)
		}
		for _, rec := range customs {
			consider(rec, scoreLocal(rec, query))
		}
	}
	for _, rec := range r.system {
		consider(rec, scoreLocal(rec, query))
	}

	if bestScore < matchThreshold && r.remote != nil {
		remote, err := r.remote.Search(ctx, query, 3)
		if err != nil {
			log.Printf("food resolve: remote lookup for %q: %v", query, err)
		}
		for _, rec := range remote {
			consider(rec, scoreRemote(rec, query))
		}
	}

	if bestScore >= matchThreshold {
		return resolveFromRecord(best, bestScore, mention)
	}
	return r.estimate(mention)
}

// resolveFromRecord derives the portion from the mention's calorie figure
// when one is supplied (payload path), else from the record's typical
// portion, and scales the per-100g macros accordingly.
func resolveFromRecord(rec models.FoodRecord, score int, mention models.FoodMention) models.ResolvedFood {
	grams := 100.0
	switch {
	case mention.Calories > 0 && rec.Per100g.Calories > 0:
		grams = math.Round(mention.Calories / rec.Per100g.Calories * 100)
	case len(rec.CommonPortions) > 0:
		grams = rec.CommonPortions[len(rec.CommonPortions)/2].Grams
	}

	portion := models.Portion{Name: fmt.Sprintf("%.0fg", grams), Grams: grams}
	if p, ok := snapToPortion(grams, rec.CommonPortions); ok {
		portion = p
	}

	mult := portion.Grams / 100
	return models.ResolvedFood{
		FoodID:  rec.ID,
		Name:    rec.Name,
		Portion: portion,
		Nutrition: models.Nutrition{
			Calories: math.Round(rec.Per100g.Calories * mult),
			Protein:  round1(rec.Per100g.Protein * mult),
			Carbs:    round1(rec.Per100g.Carbs * mult),
			Fat:      round1(rec.Per100g.Fat * mult),
		},
		Confidence: score,
		Source:     models.SourceDatabaseMatch,
	}
}

// snapToPortion picks the listed common portion closest to the computed gram
// value, but only when it is within 30% relative difference.
func snapToPortion(grams float64, portions []models.Portion) (models.Portion, bool) {
	if len(portions) == 0 {
		return models.Portion{}, false
	}
	closest := portions[0]
	smallest := math.Abs(grams - closest.Grams)
	for _, p := range portions[1:] {
		if diff := math.Abs(grams - p.Grams); diff < smallest {
			smallest = diff
			closest = p
		}
	}
	if closest.Grams > 0 && smallest/closest.Grams <= 0.3 {
		return closest, true
	}
	return models.Portion{}, false
}

// estimate handles mentions no database tier could match. The mention's own
// macro values are kept as ground truth; grams are only estimated for
// display, from curated reference foods where the name allows it.
func (r *Resolver) estimate(mention models.FoodMention) models.ResolvedFood {
	calories := mention.Calories
	nutrition := models.Nutrition{
		Calories: mention.Calories,
		Protein:  mention.Protein,
		Carbs:    mention.Carbs,
		Fat:      mention.Fat,
	}
	if calories == 0 {
		// Lexicon-only mention with no payload macros: assume one generic
		// 200 kcal portion so the draft is at least editable.
		calories = 200
		nutrition.Calories = 200
	}

	grams := math.Round(calories / r.referenceCalories(mention.NormalizedTerm) * 100)
	grams = math.Max(10, math.Min(1000, grams))

	name := mention.NormalizedTerm
	if name == "" {
		name = mention.RawTerm
	}
	return models.ResolvedFood{
		Name:       name,
		Portion:    models.Portion{Name: fmt.Sprintf("%.0fg (geschätzt)", grams), Grams: grams},
		Nutrition:  nutrition,
		Confidence: 50,
		Source:     models.SourceAIEstimation,
	}
}

// referenceCalories returns a per-100g calorie density for gram estimation,
// taken from the curated records for recognizable names, else a generic
// 200 kcal/100g assumption for mixed foods.
func (r *Resolver) referenceCalories(name string) float64 {
	lower := strings.ToLower(name)
	refs := []struct {
		keywords []string
		foodID   string
	}{
		{[]string{"apfel", "apple"}, "apple-001"},
		{[]string{"banane", "banana"}, "banana-001"},
		{[]string{"brot", "bread"}, "bread-white-001"},
	}
	for _, ref := range refs {
		for _, kw := range ref.keywords {
			if strings.Contains(lower, kw) {
				for _, rec := range r.system {
					if rec.ID == ref.foodID {
						return rec.Per100g.Calories
					}
				}
			}
		}
	}
	return 200
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
