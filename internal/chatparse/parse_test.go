package chatparse

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mkleber/kaltrack/internal/foodkb"
	"github.com/mkleber/kaltrack/internal/models"
)

// 2025-01-10 is a Friday.
var ref = time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

func newParser() *Parser {
	return New(foodkb.NewResolver(nil, nil))
}

func TestRepairJSONTwoMissingBraces(t *testing.T) {
	partial := `{"text": "ok", "nested": {"a": 1`
	fixed, outcome := RepairJSON(partial)
	if outcome != PayloadRepaired {
		t.Fatalf("outcome = %v, want PayloadRepaired", outcome)
	}
	if !strings.HasSuffix(fixed, "}}") {
		t.Errorf("fixed = %q, want exactly two appended closing braces", fixed)
	}
	if strings.HasSuffix(fixed, "}}}") {
		t.Errorf("fixed = %q, appended too many braces", fixed)
	}
}

func TestRepairJSONCompleteInput(t *testing.T) {
	in := `{"a": [1, 2]}`
	fixed, outcome := RepairJSON(in)
	if outcome != PayloadComplete || fixed != in {
		t.Errorf("got %q/%v, want unchanged complete payload", fixed, outcome)
	}
}

func TestRepairJSONBracesInsideStrings(t *testing.T) {
	partial := `{"text": "ein Smiley :-} und mehr", "a": {"b": 1`
	fixed, outcome := RepairJSON(partial)
	if outcome != PayloadRepaired {
		t.Fatalf("outcome = %v, want PayloadRepaired (brace inside string must not count)", outcome)
	}
	if !strings.HasSuffix(fixed, "}}") || strings.HasSuffix(fixed, "}}}") {
		t.Errorf("fixed = %q", fixed)
	}
}

func TestRepairJSONUnrecoverable(t *testing.T) {
	if _, outcome := RepairJSON(`das ist kein json {{{"`); outcome != PayloadUnrecoverable {
		t.Errorf("outcome = %v, want PayloadUnrecoverable", outcome)
	}
}

func TestParseCompletePayload(t *testing.T) {
	modelText := `---JSON_START---
{"text": "Erfasst!", "actions": [
  {"type": "add_meal", "foods": [{"name": "Apfel", "calories": 52, "protein": 0.3, "carbs": 14, "fat": 0.2}], "mealType": "snack", "targetDate": "2025-01-09"},
  {"type": "add_meal", "foods": [{"name": "Pizza", "calories": 800, "protein": 30, "carbs": 90, "fat": 35}], "mealType": "dinner", "targetDate": "2025-01-10"}
]}
---JSON_END---

Super! Ich habe beide Tage erfasst - gestern den Apfel und heute die Pizza!`

	res := newParser().Parse(context.Background(), modelText, "Gestern hatte ich einen Apfel und heute Pizza", ref, "2025-01-10")

	if !res.IsComplete {
		t.Errorf("IsComplete = false, want true; note = %q", res.RecoveryNote)
	}
	if len(res.Actions) != 2 {
		t.Fatalf("got %d actions, want 2", len(res.Actions))
	}
	if res.Actions[0].TargetDate != "2025-01-09" || res.Actions[1].TargetDate != "2025-01-10" {
		t.Errorf("dates = %s/%s", res.Actions[0].TargetDate, res.Actions[1].TargetDate)
	}
	if res.Actions[0].Foods[0].FoodID != "apple-001" {
		t.Errorf("first food = %+v, want knowledge-base apple", res.Actions[0].Foods[0])
	}
	// Pizza is not in the knowledge base: estimation keeps the payload macros.
	pizza := res.Actions[1].Foods[0]
	if pizza.Source != models.SourceAIEstimation || pizza.Nutrition.Calories != 800 {
		t.Errorf("pizza = %+v, want ai_estimation with 800 kcal", pizza)
	}
	if !strings.HasPrefix(res.ReplyText, "Super!") {
		t.Errorf("reply = %q, want the text after the end marker", res.ReplyText)
	}
	if !strings.Contains(res.Actions[0].Description, "gestern") {
		t.Errorf("description = %q, want date wording", res.Actions[0].Description)
	}
}

func TestParseCorrectsOutOfRangeDate(t *testing.T) {
	modelText := `---JSON_START---
{"text": "Ok", "actions": [{"type": "add_meal", "foods": [{"name": "Apfel", "calories": 52}], "mealType": "snack", "targetDate": "2026-02-14"}]}
---JSON_END---`

	res := newParser().Parse(context.Background(), modelText, "gestern habe ich einen Apfel gegessen", ref, "2025-01-10")
	if len(res.Actions) != 1 {
		t.Fatalf("got %d actions", len(res.Actions))
	}
	// 400 days ahead is outside the window; the alias in the utterance wins.
	if res.Actions[0].TargetDate != "2025-01-09" {
		t.Errorf("targetDate = %s, want corrected to 2025-01-09", res.Actions[0].TargetDate)
	}
}

func TestParseTruncatedPayloadRepaired(t *testing.T) {
	modelText := `---JSON_START---
{"text": "Ok", "actions": [{"type": "add_water", "amount": 0.5, "targetDate": "2025-01-10"}]`

	res := newParser().Parse(context.Background(), modelText, "heute zwei Gläser Wasser", ref, "2025-01-10")
	if res.IsComplete {
		t.Error("IsComplete = true for a truncated payload")
	}
	if res.RecoveryNote == "" {
		t.Error("missing recovery note")
	}
	if len(res.Actions) != 1 || res.Actions[0].Type != models.ActionAddWater || res.Actions[0].Amount != 0.5 {
		t.Fatalf("actions = %+v, want the recovered add_water", res.Actions)
	}
}

func TestParseFallbackWater(t *testing.T) {
	res := newParser().Parse(context.Background(), "Alles klar!", "Ich habe 2 Gläser Wasser getrunken", ref, "2025-01-10")
	if len(res.Actions) != 1 {
		t.Fatalf("got %d actions, want 1 from fallback", len(res.Actions))
	}
	a := res.Actions[0]
	if a.Type != models.ActionAddWater || a.Amount != 0.5 {
		t.Errorf("action = %+v, want add_water 0.5 L", a)
	}
	if a.TargetDate != "2025-01-10" {
		t.Errorf("targetDate = %s", a.TargetDate)
	}
}

func TestParseFallbackGroupsFoodsUnderOneDate(t *testing.T) {
	res := newParser().Parse(context.Background(), "Verstanden.", "gestern habe ich einen Apfel und eine Banane gegessen", ref, "2025-01-10")
	if len(res.Actions) != 1 {
		t.Fatalf("got %d actions, want one grouped add_meal", len(res.Actions))
	}
	a := res.Actions[0]
	if a.Type != models.ActionAddMeal || a.TargetDate != "2025-01-09" {
		t.Errorf("action = %s/%s", a.Type, a.TargetDate)
	}
	if len(a.Foods) != 2 {
		t.Errorf("foods = %d, want 2", len(a.Foods))
	}
}

func TestParseWholeTextJSON(t *testing.T) {
	modelText := `{"text": "Ok", "actions": [{"type": "add_water", "amount": 1, "targetDate": "2025-01-10"}]}`
	res := newParser().Parse(context.Background(), modelText, "1 Liter Wasser", ref, "2025-01-10")
	if !res.IsComplete || len(res.Actions) != 1 {
		t.Fatalf("result = %+v", res)
	}
	if res.ReplyText != "Ok" {
		t.Errorf("reply = %q, want the payload text field", res.ReplyText)
	}
}

func TestParseConversationalTextNoActions(t *testing.T) {
	res := newParser().Parse(context.Background(), "Gerne! Wie kann ich dir helfen?", "Hallo", ref, "")
	if len(res.Actions) != 0 {
		t.Errorf("actions = %+v, want none", res.Actions)
	}
	if res.ReplyText != "Gerne! Wie kann ich dir helfen?" {
		t.Errorf("reply = %q, want the model text unchanged", res.ReplyText)
	}
	if !res.IsComplete {
		t.Error("IsComplete = false for a plain conversational reply")
	}
}

func TestParseEditMeal(t *testing.T) {
	modelText := `---JSON_START---
{"text": "Angepasst", "actions": [{"type": "edit_meal", "mealId": "m1", "mealType": "dinner", "targetDate": "2025-01-10"}]}
---JSON_END---`
	res := newParser().Parse(context.Background(), modelText, "die Mahlzeit war abends", ref, "2025-01-10")
	if len(res.Actions) != 1 {
		t.Fatalf("actions = %+v, want one edit_meal draft", res.Actions)
	}
	a := res.Actions[0]
	if a.Type != models.ActionEditMeal || a.MealID != "m1" || a.MealType != models.MealDinner {
		t.Errorf("action = %+v", a)
	}

	// Name-based reference with new foods and a rename.
	modelText = `---JSON_START---
{"text": "Ok", "actions": [{"type": "edit_meal", "mealName": "Pizza", "name": "Salat", "foods": [{"name": "Apfel", "calories": 52}], "targetDate": "2025-01-10"}]}
---JSON_END---`
	res = newParser().Parse(context.Background(), modelText, "ändere die Pizza zu Salat mit Apfel", ref, "2025-01-10")
	if len(res.Actions) != 1 {
		t.Fatalf("actions = %+v", res.Actions)
	}
	a = res.Actions[0]
	if a.MealName != "Pizza" || a.NewName != "Salat" || len(a.Foods) != 1 {
		t.Errorf("action = %+v", a)
	}
	if !strings.Contains(a.Description, "Pizza") {
		t.Errorf("description = %q, want the meal reference", a.Description)
	}
}

func TestParseEditMealWithoutChangesDropped(t *testing.T) {
	// No reference, and a reference without any changed field: both dropped.
	for _, payload := range []string{
		`{"text": "Ok", "actions": [{"type": "edit_meal", "mealType": "dinner", "targetDate": "2025-01-10"}]}`,
		`{"text": "Ok", "actions": [{"type": "edit_meal", "mealId": "m1", "targetDate": "2025-01-10"}]}`,
	} {
		modelText := "---JSON_START---\n" + payload + "\n---JSON_END---"
		res := newParser().Parse(context.Background(), modelText, "ändere was", ref, "2025-01-10")
		if len(res.Actions) != 0 {
			t.Errorf("payload %s: actions = %+v, want none", payload, res.Actions)
		}
	}
}

func TestParseUnknownActionTypeDropped(t *testing.T) {
	modelText := `---JSON_START---
{"text": "Ok", "actions": [
  {"type": "create_fitness_plan", "targetDate": "2025-01-10"},
  {"type": "track_weight", "weight": 81.5, "targetDate": "2025-01-10"}
]}
---JSON_END---`
	res := newParser().Parse(context.Background(), modelText, "mein Gewicht heute: 81,5 kg", ref, "2025-01-10")
	if len(res.Actions) != 1 || res.Actions[0].Type != models.ActionTrackWeight {
		t.Fatalf("actions = %+v, want only track_weight", res.Actions)
	}
	if res.Actions[0].Weight != 81.5 {
		t.Errorf("weight = %v", res.Actions[0].Weight)
	}
}
