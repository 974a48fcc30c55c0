package chatparse

import (
	"context"
	"time"

	"github.com/mkleber/kaltrack/internal/extract"
	"github.com/mkleber/kaltrack/internal/models"
	"github.com/mkleber/kaltrack/internal/temporal"
)

// Fallback runs the rule-based pipeline over the original user utterance:
// water detection plus one add_meal draft grouping every extracted food
// mention under the first date resolved from the utterance, else the
// selected date.
func (p *Parser) Fallback(ctx context.Context, userMessage string, ref time.Time, selectedDate string) []models.ActionDraft {
	date := selectedDate
	if date == "" {
		date = temporal.Midnight(ref).Format(temporal.ISODate)
	}
	if d, ok := temporal.Resolve(userMessage, ref); ok && temporal.WithinWindow(d, ref) {
		date = d.Format(temporal.ISODate)
	}

	var drafts []models.ActionDraft

	if liters, ok := extract.ExtractWater(userMessage); ok {
		drafts = append(drafts, models.ActionDraft{
			Type:        models.ActionAddWater,
			TargetDate:  date,
			Amount:      liters,
			Description: waterDescription(liters, date, ref),
		})
	}

	mentions := extract.ExtractFoods(userMessage, p.lexicon)
	if len(mentions) > 0 {
		foods := make([]models.ResolvedFood, 0, len(mentions))
		for _, m := range mentions {
			foods = append(foods, p.resolver.Resolve(ctx, m))
		}
		drafts = append(drafts, models.ActionDraft{
			Type:        models.ActionAddMeal,
			TargetDate:  date,
			MealType:    extract.DetectMealType(userMessage, ref),
			Foods:       foods,
			Description: mealDescription(foods, date, ref),
		})
	}

	return drafts
}

func fallbackReply(actions []models.ActionDraft) string {
	if len(actions) == 0 {
		return "Das habe ich leider nicht verstanden. Beschreibe mir, was du gegessen oder getrunken hast."
	}
	return "Ich habe deine Eingabe erfasst. Bitte bestätige die Aktionen."
}
