package ledger

import (
	"context"
	"math"
	"sort"

	"github.com/mkleber/kaltrack/internal/models"
)

// Stats aggregates the ledger over a date range. Macro averages are per
// day with at least one meal; water is averaged over the whole range.
func (s *Store) Stats(ctx context.Context, from, to string) (models.DayStats, error) {
	entries, err := s.GetRange(ctx, from, to)
	if err != nil {
		return models.DayStats{}, err
	}

	stats := models.DayStats{
		TotalDays:      len(entries),
		MealTypeCounts: make(map[string]int),
	}

	var totalCalories, totalProtein, totalCarbs, totalFat, totalWater float64
	foodCounts := make(map[string]int)

	for _, entry := range entries {
		totalWater += entry.Water
		if entry.Weight > 0 {
			stats.WeightProgress = append(stats.WeightProgress, models.WeightPoint{
				Date:   entry.Date,
				Weight: entry.Weight,
			})
		}
		if len(entry.Meals) == 0 {
			continue
		}

		stats.DaysWithMeals++
		for _, meal := range entry.Meals {
			stats.TotalMeals++
			stats.MealTypeCounts[meal.MealType]++
			totalCalories += meal.TotalNutrition.Calories
			totalProtein += meal.TotalNutrition.Protein
			totalCarbs += meal.TotalNutrition.Carbs
			totalFat += meal.TotalNutrition.Fat
			for _, f := range meal.Foods {
				foodCounts[f.Name]++
			}
		}
	}

	if stats.DaysWithMeals > 0 {
		n := float64(stats.DaysWithMeals)
		stats.AvgCalories = math.Round(totalCalories / n)
		stats.AvgProtein = round1(totalProtein / n)
		stats.AvgCarbs = round1(totalCarbs / n)
		stats.AvgFat = round1(totalFat / n)
	}
	if stats.TotalDays > 0 {
		stats.AvgWater = round1(totalWater / float64(stats.TotalDays))
	}

	stats.TopFoods = topFoods(foodCounts, 5)
	return stats, nil
}

func topFoods(counts map[string]int, limit int) []models.FoodCount {
	out := make([]models.FoodCount, 0, len(counts))
	for name, count := range counts {
		out = append(out, models.FoodCount{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
