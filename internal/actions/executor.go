package actions

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mkleber/kaltrack/internal/models"
	"github.com/mkleber/kaltrack/internal/temporal"
)

// execute applies one confirmed draft to the ledger. The action type set
// is closed; anything else is an error, not a no-op.
func execute(ctx context.Context, ledger Ledger, d models.ActionDraft, now func() time.Time) error {
	switch d.Type {
	case models.ActionAddMeal:
		if len(d.Foods) == 0 {
			return fmt.Errorf("add_meal without foods")
		}
		return ledger.AddMeal(ctx, d.TargetDate, buildMeal(d, now()))

	case models.ActionAddWater:
		if d.Amount <= 0 {
			return fmt.Errorf("add_water with non-positive amount %v", d.Amount)
		}
		return ledger.AddWater(ctx, d.TargetDate, d.Amount)

	case models.ActionDeleteMeal:
		if d.MealID == "" {
			return fmt.Errorf("delete_meal without meal id")
		}
		return ledger.DeleteMeal(ctx, d.TargetDate, d.MealID)

	case models.ActionEditMeal:
		if d.MealID == "" && d.MealName == "" {
			return fmt.Errorf("edit_meal without meal reference")
		}
		upd := models.MealUpdate{Name: d.NewName, MealType: d.MealType}
		if len(d.Foods) > 0 {
			foods, total := foodsAndTotal(d.Foods)
			upd.Foods = foods
			upd.Total = &total
		}
		return ledger.UpdateMeal(ctx, d.TargetDate, d.MealID, d.MealName, upd)

	case models.ActionClearDay:
		return ledger.ClearDay(ctx, d.TargetDate)

	case models.ActionClearRange:
		return clearRange(ctx, ledger, d.StartDate, d.EndDate)

	case models.ActionUpdateNote:
		if err := ledger.UpdateNote(ctx, d.TargetDate, d.Note, d.Mood); err != nil {
			return err
		}
		if d.Weight > 0 {
			return ledger.TrackWeight(ctx, d.TargetDate, d.Weight)
		}
		return nil

	case models.ActionTrackWeight:
		if d.Weight <= 0 {
			return fmt.Errorf("track_weight with non-positive weight %v", d.Weight)
		}
		return ledger.TrackWeight(ctx, d.TargetDate, d.Weight)

	case models.ActionUpdateProfile:
		if d.Profile == nil {
			return fmt.Errorf("update_profile without profile data")
		}
		return ledger.SaveProfile(ctx, *d.Profile)

	default:
		return fmt.Errorf("unknown action type %q", d.Type)
	}
}

// clearRange clears every day from start to end inclusive.
func clearRange(ctx context.Context, ledger Ledger, start, end string) error {
	from, err := time.Parse(temporal.ISODate, start)
	if err != nil {
		return fmt.Errorf("clear_range start date: %w", err)
	}
	to, err := time.Parse(temporal.ISODate, end)
	if err != nil {
		return fmt.Errorf("clear_range end date: %w", err)
	}
	if to.Before(from) {
		from, to = to, from
	}

	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if err := ledger.ClearDay(ctx, d.Format(temporal.ISODate)); err != nil {
			return fmt.Errorf("clear %s: %w", d.Format(temporal.ISODate), err)
		}
	}
	return nil
}

// foodsAndTotal converts resolved foods into persistable items plus their
// rounded nutrition sum.
func foodsAndTotal(resolved []models.ResolvedFood) ([]models.FoodInMeal, models.Nutrition) {
	foods := make([]models.FoodInMeal, 0, len(resolved))
	var total models.Nutrition

	for _, f := range resolved {
		foods = append(foods, models.FoodInMeal{
			ID:        uuid.NewString(),
			FoodID:    f.FoodID,
			Name:      f.Name,
			Portion:   f.Portion,
			Nutrition: f.Nutrition,
		})
		total.Calories += f.Nutrition.Calories
		total.Protein += f.Nutrition.Protein
		total.Carbs += f.Nutrition.Carbs
		total.Fat += f.Nutrition.Fat
	}

	total.Calories = math.Round(total.Calories)
	total.Protein = round1(total.Protein)
	total.Carbs = round1(total.Carbs)
	total.Fat = round1(total.Fat)
	return foods, total
}

// buildMeal turns a confirmed add_meal draft into a persistable entry.
func buildMeal(d models.ActionDraft, now time.Time) models.MealEntry {
	names := make([]string, 0, len(d.Foods))
	for _, f := range d.Foods {
		names = append(names, f.Name)
	}
	foods, total := foodsAndTotal(d.Foods)

	mealType := d.MealType
	if mealType == "" {
		mealType = models.MealSnack
	}

	return models.MealEntry{
		ID:             uuid.NewString(),
		Name:           strings.Join(names, ", "),
		MealType:       mealType,
		Time:           now.Format("15:04"),
		Foods:          foods,
		TotalNutrition: total,
		Source:         "ai_chat",
		CreatedAt:      now.UTC().Format(time.RFC3339),
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
