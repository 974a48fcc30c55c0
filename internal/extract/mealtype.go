package extract

import (
	"strings"
	"time"

	"github.com/mkleber/kaltrack/internal/models"
)

var mealPhrases = []struct {
	mealType string
	phrases  []string
}{
	{models.MealBreakfast, []string{"frühstück", "morgens", "früh"}},
	{models.MealLunch, []string{"mittagessen", "mittag", "lunch"}},
	{models.MealDinner, []string{"abendessen", "abend", "dinner"}},
	{models.MealSnack, []string{"snack", "zwischenmahlzeit", "zwischendurch"}},
}

// DetectMealType infers the meal slot from the utterance, falling back to the
// clock when no meal phrase occurs: before 10 breakfast, before 15 lunch,
// before 20 dinner, else snack.
func DetectMealType(utterance string, now time.Time) string {
	input := strings.ToLower(utterance)
	for _, mp := range mealPhrases {
		for _, p := range mp.phrases {
			if strings.Contains(input, p) {
				return mp.mealType
			}
		}
	}

	switch hour := now.Hour(); {
	case hour < 10:
		return models.MealBreakfast
	case hour < 15:
		return models.MealLunch
	case hour < 20:
		return models.MealDinner
	default:
		return models.MealSnack
	}
}
