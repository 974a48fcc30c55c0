package actions

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/mkleber/kaltrack/internal/models"
)

// mockLedger records every write in call order.
type mockLedger struct {
	writes  []string
	meals   []models.MealEntry
	updates []models.MealUpdate
	failOn  string
}

func (l *mockLedger) record(op string) error {
	l.writes = append(l.writes, op)
	if l.failOn != "" && op == l.failOn {
		return errors.New("ledger unavailable")
	}
	return nil
}

func (l *mockLedger) AddMeal(_ context.Context, date string, meal models.MealEntry) error {
	l.meals = append(l.meals, meal)
	return l.record("add_meal " + date)
}

func (l *mockLedger) AddWater(_ context.Context, date string, liters float64) error {
	return l.record(fmt.Sprintf("add_water %s %v", date, liters))
}

func (l *mockLedger) DeleteMeal(_ context.Context, date, mealID string) error {
	return l.record("delete_meal " + date + " " + mealID)
}

func (l *mockLedger) UpdateMeal(_ context.Context, date, mealID, mealName string, upd models.MealUpdate) error {
	l.updates = append(l.updates, upd)
	ref := mealID
	if ref == "" {
		ref = mealName
	}
	return l.record("update_meal " + date + " " + ref)
}

func (l *mockLedger) ClearDay(_ context.Context, date string) error {
	return l.record("clear_day " + date)
}

func (l *mockLedger) UpdateNote(_ context.Context, date, note, mood string) error {
	return l.record("update_note " + date)
}

func (l *mockLedger) TrackWeight(_ context.Context, date string, weight float64) error {
	return l.record(fmt.Sprintf("track_weight %s %v", date, weight))
}

func (l *mockLedger) SaveProfile(_ context.Context, _ models.Profile) error {
	return l.record("save_profile")
}

func mealDraft(date string, foods ...models.ResolvedFood) models.ActionDraft {
	return models.ActionDraft{
		Type:       models.ActionAddMeal,
		TargetDate: date,
		MealType:   models.MealSnack,
		Foods:      foods,
	}
}

func apple() models.ResolvedFood {
	return models.ResolvedFood{
		FoodID:    "apple-001",
		Name:      "Apfel",
		Portion:   models.Portion{Name: "1 mittelgroßer Apfel", Grams: 180},
		Nutrition: models.Nutrition{Calories: 94, Protein: 0.5, Carbs: 25.2, Fat: 0.4},
		Source:    models.SourceDatabaseMatch,
	}
}

func TestConfirmAllExecutesInInsertionOrder(t *testing.T) {
	ledger := &mockLedger{}
	m := NewManager(ledger)

	m.Add([]models.ActionDraft{
		mealDraft("2025-01-10", apple()),
		{Type: models.ActionAddWater, TargetDate: "2025-01-10", Amount: 0.5},
		{Type: models.ActionTrackWeight, TargetDate: "2025-01-10", Weight: 81.5},
	})

	results := m.ConfirmAll(context.Background())
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for _, r := range results {
		if r.Status != StatusCompleted {
			t.Errorf("action %s status = %s, want completed", r.Draft.Type, r.Status)
		}
	}

	want := []string{"add_meal 2025-01-10", "add_water 2025-01-10 0.5", "track_weight 2025-01-10 81.5"}
	if len(ledger.writes) != len(want) {
		t.Fatalf("writes = %v", ledger.writes)
	}
	for i, w := range want {
		if ledger.writes[i] != w {
			t.Errorf("write %d = %q, want %q", i, ledger.writes[i], w)
		}
	}
}

func TestConfirmAllIsolatesFailures(t *testing.T) {
	ledger := &mockLedger{failOn: "add_water 2025-01-10 0.5"}
	m := NewManager(ledger)

	m.Add([]models.ActionDraft{
		mealDraft("2025-01-10", apple()),
		{Type: models.ActionAddWater, TargetDate: "2025-01-10", Amount: 0.5},
		mealDraft("2025-01-09", apple()),
	})

	results := m.ConfirmAll(context.Background())
	if len(results) != 3 {
		t.Fatalf("got %d results", len(results))
	}
	if results[0].Status != StatusCompleted || results[2].Status != StatusCompleted {
		t.Errorf("surrounding actions = %s/%s, want both completed", results[0].Status, results[2].Status)
	}
	if results[1].Status != StatusFailed || results[1].Error == "" {
		t.Errorf("failing action = %+v, want failed with error text", results[1])
	}
}

func TestRejectLeavesLedgerUntouched(t *testing.T) {
	ledger := &mockLedger{}
	m := NewManager(ledger)

	added := m.Add([]models.ActionDraft{mealDraft("2025-01-10", apple())})
	p, err := m.Reject(added[0].ID)
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if p.Status != StatusRejected {
		t.Errorf("status = %s", p.Status)
	}
	if len(ledger.writes) != 0 {
		t.Errorf("ledger writes = %v, want none", ledger.writes)
	}

	if _, err := m.Reject(added[0].ID); !errors.Is(err, ErrNotPending) {
		t.Errorf("second reject err = %v, want ErrNotPending", err)
	}
	if _, err := m.Confirm(context.Background(), added[0].ID); !errors.Is(err, ErrNotPending) {
		t.Errorf("confirm after reject err = %v, want ErrNotPending", err)
	}
}

func TestConfirmUnknownID(t *testing.T) {
	m := NewManager(&mockLedger{})
	if _, err := m.Confirm(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUnknownDraftTypeFailsExecution(t *testing.T) {
	m := NewManager(&mockLedger{})
	added := m.Add([]models.ActionDraft{{Type: "create_fitness_plan", TargetDate: "2025-01-10"}})

	p, err := m.Confirm(context.Background(), added[0].ID)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if p.Status != StatusFailed {
		t.Errorf("status = %s, want failed for unknown type", p.Status)
	}
}

func TestClearRangeCoversEveryDayInclusive(t *testing.T) {
	ledger := &mockLedger{}
	m := NewManager(ledger)

	added := m.Add([]models.ActionDraft{{
		Type:      models.ActionClearRange,
		StartDate: "2025-01-08",
		EndDate:   "2025-01-10",
	}})
	if _, err := m.Confirm(context.Background(), added[0].ID); err != nil {
		t.Fatal(err)
	}

	want := []string{"clear_day 2025-01-08", "clear_day 2025-01-09", "clear_day 2025-01-10"}
	if len(ledger.writes) != len(want) {
		t.Fatalf("writes = %v", ledger.writes)
	}
	for i, w := range want {
		if ledger.writes[i] != w {
			t.Errorf("write %d = %q, want %q", i, ledger.writes[i], w)
		}
	}
}

func TestEditMealExecution(t *testing.T) {
	ledger := &mockLedger{}
	m := NewManager(ledger)

	added := m.Add([]models.ActionDraft{{
		Type:       models.ActionEditMeal,
		TargetDate: "2025-01-10",
		MealName:   "Pizza",
		MealType:   models.MealDinner,
		Foods:      []models.ResolvedFood{apple()},
	}})
	p, err := m.Confirm(context.Background(), added[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if p.Status != StatusCompleted {
		t.Errorf("status = %s", p.Status)
	}
	if len(ledger.writes) != 1 || ledger.writes[0] != "update_meal 2025-01-10 Pizza" {
		t.Errorf("writes = %v", ledger.writes)
	}
	if len(ledger.updates) != 1 {
		t.Fatalf("updates = %+v", ledger.updates)
	}
	upd := ledger.updates[0]
	if upd.MealType != models.MealDinner || len(upd.Foods) != 1 || upd.Total == nil {
		t.Errorf("update = %+v", upd)
	}
	if upd.Total.Calories != 94 {
		t.Errorf("total = %+v", upd.Total)
	}
}

func TestEditMealWithoutReferenceFails(t *testing.T) {
	m := NewManager(&mockLedger{})
	added := m.Add([]models.ActionDraft{{
		Type:       models.ActionEditMeal,
		TargetDate: "2025-01-10",
		MealType:   models.MealLunch,
	}})
	p, err := m.Confirm(context.Background(), added[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if p.Status != StatusFailed {
		t.Errorf("status = %s, want failed without a meal reference", p.Status)
	}
}

func TestBuildMealTotalsAndMetadata(t *testing.T) {
	ledger := &mockLedger{}
	m := NewManager(ledger)

	banana := models.ResolvedFood{
		FoodID:    "banana-001",
		Name:      "Banane",
		Portion:   models.Portion{Name: "1 mittelgroße Banane", Grams: 118},
		Nutrition: models.Nutrition{Calories: 105, Protein: 1.3, Carbs: 26.9, Fat: 0.4},
	}
	added := m.Add([]models.ActionDraft{mealDraft("2025-01-10", apple(), banana)})
	if _, err := m.Confirm(context.Background(), added[0].ID); err != nil {
		t.Fatal(err)
	}
	if len(ledger.meals) != 1 {
		t.Fatalf("meals = %d", len(ledger.meals))
	}

	meal := ledger.meals[0]
	if meal.Name != "Apfel, Banane" {
		t.Errorf("name = %q", meal.Name)
	}
	if meal.Source != "ai_chat" || meal.ID == "" {
		t.Errorf("meal = %+v", meal)
	}
	if len(meal.Foods) != 2 || meal.Foods[0].ID == meal.Foods[1].ID {
		t.Errorf("foods need distinct ids: %+v", meal.Foods)
	}
	total := meal.TotalNutrition
	if total.Calories != 199 || total.Protein != 1.8 || total.Carbs != 52.1 || total.Fat != 0.8 {
		t.Errorf("totals = %+v", total)
	}
}

func TestSweepRespectsGracePeriods(t *testing.T) {
	ledger := &mockLedger{}
	m := NewManager(ledger)

	current := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return current }

	added := m.Add([]models.ActionDraft{
		mealDraft("2025-01-10", apple()),
		{Type: models.ActionAddWater, TargetDate: "2025-01-10", Amount: 0.25},
		mealDraft("2025-01-09", apple()),
	})
	if _, err := m.Confirm(context.Background(), added[0].ID); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Reject(added[1].ID); err != nil {
		t.Fatal(err)
	}
	// added[2] stays pending.

	if n := m.Sweep(); n != 0 {
		t.Errorf("immediate sweep removed %d, want 0", n)
	}

	current = current.Add(rejectedGrace)
	if n := m.Sweep(); n != 1 {
		t.Errorf("sweep after %v removed %d, want the rejected action only", rejectedGrace, n)
	}

	current = current.Add(completedGrace)
	if n := m.Sweep(); n != 1 {
		t.Errorf("sweep removed %d, want the completed action", n)
	}

	left := m.List()
	if len(left) != 1 || left[0].Status != StatusPending {
		t.Errorf("remaining = %+v, want the untouched pending action", left)
	}
}
