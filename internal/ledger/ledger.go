package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mkleber/kaltrack/internal/models"
)

const schema = `
-- One row per calendar day
CREATE TABLE IF NOT EXISTS day_entries (
    date TEXT PRIMARY KEY,
    water REAL NOT NULL DEFAULT 0,
    notes TEXT NOT NULL DEFAULT '',
    mood TEXT NOT NULL DEFAULT '',
    weight REAL NOT NULL DEFAULT 0,
    updated_at TEXT NOT NULL
);

-- Meals reference their day by date
CREATE TABLE IF NOT EXISTS meals (
    id TEXT PRIMARY KEY,
    date TEXT NOT NULL,
    name TEXT NOT NULL,
    meal_type TEXT NOT NULL,
    time TEXT,
    foods TEXT NOT NULL,
    calories REAL NOT NULL,
    protein REAL NOT NULL,
    carbs REAL NOT NULL,
    fat REAL NOT NULL,
    source TEXT NOT NULL,
    created_at TEXT NOT NULL
);

-- User-defined foods, the highest-priority knowledge-base tier
CREATE TABLE IF NOT EXISTS custom_foods (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    category TEXT NOT NULL DEFAULT '',
    per_100g TEXT NOT NULL,
    portions TEXT NOT NULL,
    aliases TEXT NOT NULL,
    created_at TEXT NOT NULL
);

-- Single-row user profile
CREATE TABLE IF NOT EXISTS profile (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    weight REAL NOT NULL DEFAULT 0,
    target_weight REAL NOT NULL DEFAULT 0,
    height REAL NOT NULL DEFAULT 0,
    age INTEGER NOT NULL DEFAULT 0,
    activity_level TEXT NOT NULL DEFAULT '',
    updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_meals_date ON meals(date);
CREATE INDEX IF NOT EXISTS idx_custom_foods_name ON custom_foods(name);
`

// Store is the per-day nutrition ledger backed by SQLite.
type Store struct {
	conn *sql.DB
}

func Open(path string) (*Store, error) {
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.conn.Exec(schema)
	if err != nil {
		return fmt.Errorf("executing migration: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.conn.Close()
}

// GetEntry returns the ledger entry for a date. Days without any data
// come back as an empty entry carrying just the date.
func (s *Store) GetEntry(ctx context.Context, date string) (models.DayEntry, error) {
	entry := models.DayEntry{Date: date}

	err := s.conn.QueryRowContext(ctx, `
		SELECT water, notes, mood, weight, updated_at
		FROM day_entries WHERE date = ?
	`, date).Scan(&entry.Water, &entry.Notes, &entry.Mood, &entry.Weight, &entry.UpdatedAt)
	if err != nil && err != sql.ErrNoRows {
		return entry, err
	}

	meals, err := s.mealsForDate(ctx, date)
	if err != nil {
		return entry, err
	}
	entry.Meals = meals
	return entry, nil
}

func (s *Store) mealsForDate(ctx context.Context, date string) ([]models.MealEntry, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, name, meal_type, time, foods, calories, protein, carbs, fat, source, created_at
		FROM meals WHERE date = ? ORDER BY created_at ASC
	`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meals []models.MealEntry
	for rows.Next() {
		m, err := scanMeal(rows)
		if err != nil {
			return nil, err
		}
		meals = append(meals, m)
	}
	return meals, rows.Err()
}

func scanMeal(rows *sql.Rows) (models.MealEntry, error) {
	var m models.MealEntry
	var mealTime sql.NullString
	var foodsJSON string
	if err := rows.Scan(&m.ID, &m.Name, &m.MealType, &mealTime, &foodsJSON,
		&m.TotalNutrition.Calories, &m.TotalNutrition.Protein,
		&m.TotalNutrition.Carbs, &m.TotalNutrition.Fat,
		&m.Source, &m.CreatedAt); err != nil {
		return m, err
	}
	m.Time = mealTime.String
	if err := json.Unmarshal([]byte(foodsJSON), &m.Foods); err != nil {
		return m, fmt.Errorf("decoding foods for meal %s: %w", m.ID, err)
	}
	return m, nil
}

// AddMeal persists one meal under the given date.
func (s *Store) AddMeal(ctx context.Context, date string, meal models.MealEntry) error {
	foodsJSON, err := json.Marshal(meal.Foods)
	if err != nil {
		return fmt.Errorf("encoding foods: %w", err)
	}

	if err := s.touchDay(ctx, date); err != nil {
		return err
	}
	_, err = s.conn.ExecContext(ctx, `
		INSERT INTO meals (id, date, name, meal_type, time, foods, calories, protein, carbs, fat, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, meal.ID, date, meal.Name, meal.MealType, meal.Time, string(foodsJSON),
		meal.TotalNutrition.Calories, meal.TotalNutrition.Protein,
		meal.TotalNutrition.Carbs, meal.TotalNutrition.Fat,
		meal.Source, meal.CreatedAt)
	return err
}

// AddWater adds liters to a day's water total. The total never drops
// below zero and snaps to quarter-liter steps.
func (s *Store) AddWater(ctx context.Context, date string, liters float64) error {
	entry, err := s.GetEntry(ctx, date)
	if err != nil {
		return err
	}
	total := quarterRound(entry.Water + liters)
	if total < 0 {
		total = 0
	}
	_, err = s.conn.ExecContext(ctx, `
		INSERT INTO day_entries (date, water, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET water = ?, updated_at = ?
	`, date, total, nowStamp(), total, nowStamp())
	return err
}

// DeleteMeal removes one meal. Deleting a meal that does not exist on
// that date is an error, not a no-op.
func (s *Store) DeleteMeal(ctx context.Context, date, mealID string) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM meals WHERE id = ? AND date = ?`, mealID, date)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("meal %s not found on %s", mealID, date)
	}
	return s.touchDay(ctx, date)
}

// UpdateMeal applies a partial edit to one meal. The meal is found by ID
// when given, else by case-insensitive name containment, matching how users
// refer to meals in conversation ("die Pizza von gestern").
func (s *Store) UpdateMeal(ctx context.Context, date, mealID, mealName string, upd models.MealUpdate) error {
	meals, err := s.mealsForDate(ctx, date)
	if err != nil {
		return err
	}

	var meal *models.MealEntry
	for i := range meals {
		if mealID != "" {
			if meals[i].ID == mealID {
				meal = &meals[i]
				break
			}
			continue
		}
		if strings.Contains(strings.ToLower(meals[i].Name), strings.ToLower(mealName)) {
			meal = &meals[i]
			break
		}
	}
	if meal == nil {
		ref := mealName
		if mealID != "" {
			ref = mealID
		}
		return fmt.Errorf("meal %q not found on %s", ref, date)
	}

	if upd.Name != "" {
		meal.Name = upd.Name
	}
	if upd.MealType != "" {
		meal.MealType = upd.MealType
	}
	if len(upd.Foods) > 0 {
		meal.Foods = upd.Foods
		if upd.Total != nil {
			meal.TotalNutrition = *upd.Total
		}
	}

	foodsJSON, err := json.Marshal(meal.Foods)
	if err != nil {
		return fmt.Errorf("encoding foods: %w", err)
	}
	_, err = s.conn.ExecContext(ctx, `
		UPDATE meals SET name = ?, meal_type = ?, foods = ?, calories = ?, protein = ?, carbs = ?, fat = ?
		WHERE id = ? AND date = ?
	`, meal.Name, meal.MealType, string(foodsJSON),
		meal.TotalNutrition.Calories, meal.TotalNutrition.Protein,
		meal.TotalNutrition.Carbs, meal.TotalNutrition.Fat,
		meal.ID, date)
	if err != nil {
		return err
	}
	return s.touchDay(ctx, date)
}

// ClearDay drops all meals and day-level data for a date.
func (s *Store) ClearDay(ctx context.Context, date string) error {
	if _, err := s.conn.ExecContext(ctx, `DELETE FROM meals WHERE date = ?`, date); err != nil {
		return err
	}
	_, err := s.conn.ExecContext(ctx, `DELETE FROM day_entries WHERE date = ?`, date)
	return err
}

// UpdateNote sets the free-text note and mood for a day. Empty inputs
// leave the stored value alone, so a mood-only update keeps the note.
func (s *Store) UpdateNote(ctx context.Context, date, note, mood string) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO day_entries (date, notes, mood, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			notes = CASE WHEN ? <> '' THEN ? ELSE notes END,
			mood = CASE WHEN ? <> '' THEN ? ELSE mood END,
			updated_at = ?
	`, date, note, mood, nowStamp(), note, note, mood, mood, nowStamp())
	return err
}

// TrackWeight records a weight measurement on a day and mirrors it into
// the profile so the latest weight is always at hand.
func (s *Store) TrackWeight(ctx context.Context, date string, weight float64) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO day_entries (date, weight, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET weight = ?, updated_at = ?
	`, date, weight, nowStamp(), weight, nowStamp())
	if err != nil {
		return err
	}
	return s.SaveProfile(ctx, models.Profile{Weight: weight})
}

// GetRange returns one entry per day from 'from' to 'to' inclusive, in
// date order, including empty days.
func (s *Store) GetRange(ctx context.Context, from, to string) ([]models.DayEntry, error) {
	start, err := time.Parse("2006-01-02", from)
	if err != nil {
		return nil, fmt.Errorf("range start: %w", err)
	}
	end, err := time.Parse("2006-01-02", to)
	if err != nil {
		return nil, fmt.Errorf("range end: %w", err)
	}
	if end.Before(start) {
		start, end = end, start
	}

	var entries []models.DayEntry
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		entry, err := s.GetEntry(ctx, d.Format("2006-01-02"))
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *Store) touchDay(ctx context.Context, date string) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO day_entries (date, updated_at) VALUES (?, ?)
		ON CONFLICT(date) DO UPDATE SET updated_at = ?
	`, date, nowStamp(), nowStamp())
	return err
}

func quarterRound(v float64) float64 {
	return math.Round(v*4) / 4
}

func nowStamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
