package foodkb

import "github.com/mkleber/kaltrack/internal/models"

// SystemFoods returns the curated built-in knowledge base. Values are per
// 100g; common portions are ordered small to large so the first entry is a
// sensible minimum.
func SystemFoods() []models.FoodRecord {
	return []models.FoodRecord{
		{
			ID:       "apple-001",
			Name:     "Apfel",
			Category: "fruit",
			Per100g:  models.NutritionPer100g{Calories: 52, Protein: 0.3, Carbs: 14, Fat: 0.2, Fiber: 2.4, Sugar: 10.4},
			CommonPortions: []models.Portion{
				{Name: "1 kleiner Apfel", Grams: 120},
				{Name: "1 mittelgroßer Apfel", Grams: 180},
				{Name: "1 großer Apfel", Grams: 240},
			},
			Aliases: []string{"apple", "äpfel"},
			Origin:  models.OriginSystemCurated,
		},
		{
			ID:       "banana-001",
			Name:     "Banane",
			Category: "fruit",
			Per100g:  models.NutritionPer100g{Calories: 89, Protein: 1.1, Carbs: 23, Fat: 0.3, Fiber: 2.6, Sugar: 12.2},
			CommonPortions: []models.Portion{
				{Name: "1 kleine Banane", Grams: 90},
				{Name: "1 mittelgroße Banane", Grams: 120},
				{Name: "1 große Banane", Grams: 150},
			},
			Aliases: []string{"banana", "bananen"},
			Origin:  models.OriginSystemCurated,
		},
		{
			ID:       "bread-white-001",
			Name:     "Weißbrot",
			Category: "grain",
			Per100g:  models.NutritionPer100g{Calories: 265, Protein: 9, Carbs: 49, Fat: 3.2, Fiber: 2.7},
			CommonPortions: []models.Portion{
				{Name: "1 Scheibe", Grams: 25},
				{Name: "1 dicke Scheibe", Grams: 35},
				{Name: "1 Brötchen", Grams: 60},
			},
			Aliases: []string{"brot", "weissbrot", "white bread", "brötchen"},
			Origin:  models.OriginSystemCurated,
		},
		{
			ID:       "chicken-breast-001",
			Name:     "Hähnchenbrust",
			Category: "meat",
			Per100g:  models.NutritionPer100g{Calories: 165, Protein: 31, Carbs: 0, Fat: 3.6},
			CommonPortions: []models.Portion{
				{Name: "1 kleine Hähnchenbrust", Grams: 120},
				{Name: "1 mittelgroße Hähnchenbrust", Grams: 180},
				{Name: "1 große Hähnchenbrust", Grams: 250},
			},
			Aliases: []string{"chicken", "hähnchen", "huhn", "hühnerbrust"},
			Origin:  models.OriginSystemCurated,
		},
		{
			ID:       "rice-cooked-001",
			Name:     "Reis (gekocht)",
			Category: "grain",
			Per100g:  models.NutritionPer100g{Calories: 130, Protein: 2.7, Carbs: 28, Fat: 0.3, Fiber: 0.4},
			CommonPortions: []models.Portion{
				{Name: "1 kleine Portion", Grams: 100},
				{Name: "1 Portion", Grams: 150},
				{Name: "1 große Portion", Grams: 200},
			},
			Aliases: []string{"rice", "reis", "basmati", "jasmin reis"},
			Origin:  models.OriginSystemCurated,
		},
		{
			ID:       "pasta-cooked-001",
			Name:     "Nudeln (gekocht)",
			Category: "grain",
			Per100g:  models.NutritionPer100g{Calories: 131, Protein: 5, Carbs: 25, Fat: 1.1, Fiber: 1.8},
			CommonPortions: []models.Portion{
				{Name: "1 kleine Portion", Grams: 100},
				{Name: "1 Portion", Grams: 150},
				{Name: "1 große Portion", Grams: 200},
			},
			Aliases: []string{"pasta", "nudeln", "spaghetti", "penne", "fusilli"},
			Origin:  models.OriginSystemCurated,
		},
		{
			ID:       "egg-001",
			Name:     "Ei",
			Category: "other",
			Per100g:  models.NutritionPer100g{Calories: 155, Protein: 13, Carbs: 1.1, Fat: 11, Sodium: 124},
			CommonPortions: []models.Portion{
				{Name: "1 kleines Ei", Grams: 45},
				{Name: "1 mittelgroßes Ei", Grams: 55},
				{Name: "1 großes Ei", Grams: 65},
			},
			Aliases: []string{"egg", "eier"},
			Origin:  models.OriginSystemCurated,
		},
		{
			ID:       "milk-001",
			Name:     "Milch (3,5% Fett)",
			Category: "dairy",
			Per100g:  models.NutritionPer100g{Calories: 64, Protein: 3.4, Carbs: 4.8, Fat: 3.6, Sugar: 4.8},
			CommonPortions: []models.Portion{
				{Name: "1 Glas (200ml)", Grams: 200},
				{Name: "1 Tasse (250ml)", Grams: 250},
				{Name: "1 Liter", Grams: 1000},
			},
			Aliases: []string{"milk", "milch", "vollmilch"},
			Origin:  models.OriginSystemCurated,
		},
		{
			ID:       "cheese-gouda-001",
			Name:     "Gouda Käse",
			Category: "dairy",
			Per100g:  models.NutritionPer100g{Calories: 356, Protein: 25, Carbs: 2.2, Fat: 27, Sodium: 819},
			CommonPortions: []models.Portion{
				{Name: "1 dünne Scheibe", Grams: 15},
				{Name: "1 Scheibe", Grams: 25},
				{Name: "1 dicke Scheibe", Grams: 35},
			},
			Aliases: []string{"käse", "cheese", "gouda"},
			Origin:  models.OriginSystemCurated,
		},
		{
			ID:       "potato-001",
			Name:     "Kartoffel (gekocht)",
			Category: "vegetable",
			Per100g:  models.NutritionPer100g{Calories: 77, Protein: 2, Carbs: 17, Fat: 0.1, Fiber: 2.2},
			CommonPortions: []models.Portion{
				{Name: "1 kleine Kartoffel", Grams: 80},
				{Name: "1 mittelgroße Kartoffel", Grams: 120},
				{Name: "1 große Kartoffel", Grams: 180},
			},
			Aliases: []string{"potato", "kartoffeln", "erdapfel"},
			Origin:  models.OriginSystemCurated,
		},
	}
}
