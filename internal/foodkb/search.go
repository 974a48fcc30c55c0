package foodkb

import (
	"context"
	"log"
	"sort"
	"strings"

	"github.com/mkleber/kaltrack/internal/models"
)

// Search returns knowledge-base records matching the query, local tiers
// first. Exact name or alias matches sort ahead of substring matches; remote
// products are appended after the local results when includeRemote is set.
func (r *Resolver) Search(ctx context.Context, query string, includeRemote bool) []models.FoodRecord {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var local []models.FoodRecord
	if r.custom != nil {
		customs, err := r.custom.ListCustomFoods(ctx)
		if err != nil {
			log.Printf("food search: listing custom foods: %v", err)
		}
		local = append(local, customs...)
	}
	local = append(local, r.system...)

	var results []models.FoodRecord
	for _, rec := range local {
		if matchesQuery(rec, q) {
			results = append(results, rec)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		ei, ej := isExactMatch(results[i], q), isExactMatch(results[j], q)
		if ei != ej {
			return ei
		}
		return strings.ToLower(results[i].Name) < strings.ToLower(results[j].Name)
	})

	if includeRemote && r.remote != nil {
		remote, err := r.remote.Search(ctx, q, 5)
		if err != nil {
			log.Printf("food search: remote lookup for %q: %v", q, err)
		}
		results = append(results, remote...)
	}
	return results
}

func matchesQuery(rec models.FoodRecord, q string) bool {
	if strings.Contains(strings.ToLower(rec.Name), q) {
		return true
	}
	for _, a := range rec.Aliases {
		if strings.Contains(strings.ToLower(a), q) {
			return true
		}
	}
	return false
}

func isExactMatch(rec models.FoodRecord, q string) bool {
	if strings.ToLower(rec.Name) == q {
		return true
	}
	for _, a := range rec.Aliases {
		if strings.ToLower(a) == q {
			return true
		}
	}
	return false
}
