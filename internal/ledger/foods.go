package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/mkleber/kaltrack/internal/models"
)

// ListCustomFoods returns all user-created food records. This is the
// highest-priority tier the food resolver consults.
func (s *Store) ListCustomFoods(ctx context.Context) ([]models.FoodRecord, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, name, category, per_100g, portions, aliases
		FROM custom_foods ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.FoodRecord
	for rows.Next() {
		var rec models.FoodRecord
		var per100g, portions, aliases string
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Category, &per100g, &portions, &aliases); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(per100g), &rec.Per100g); err != nil {
			return nil, fmt.Errorf("decoding nutrition for food %s: %w", rec.ID, err)
		}
		if err := json.Unmarshal([]byte(portions), &rec.CommonPortions); err != nil {
			return nil, fmt.Errorf("decoding portions for food %s: %w", rec.ID, err)
		}
		if err := json.Unmarshal([]byte(aliases), &rec.Aliases); err != nil {
			return nil, fmt.Errorf("decoding aliases for food %s: %w", rec.ID, err)
		}
		rec.Origin = models.OriginUserCustom
		records = append(records, rec)
	}
	return records, rows.Err()
}

// SaveCustomFood inserts or replaces a user food record. A missing ID is
// assigned; this also promotes remote-lookup records into the custom tier.
func (s *Store) SaveCustomFood(ctx context.Context, rec models.FoodRecord) (models.FoodRecord, error) {
	if rec.Name == "" {
		return rec, fmt.Errorf("food record needs a name")
	}
	if rec.ID == "" {
		rec.ID = "custom-" + uuid.NewString()
	}
	rec.Origin = models.OriginUserCustom
	if rec.Aliases == nil {
		rec.Aliases = []string{}
	}
	if rec.CommonPortions == nil {
		rec.CommonPortions = []models.Portion{}
	}

	per100g, err := json.Marshal(rec.Per100g)
	if err != nil {
		return rec, err
	}
	portions, err := json.Marshal(rec.CommonPortions)
	if err != nil {
		return rec, err
	}
	aliases, err := json.Marshal(rec.Aliases)
	if err != nil {
		return rec, err
	}

	_, err = s.conn.ExecContext(ctx, `
		INSERT INTO custom_foods (id, name, category, per_100g, portions, aliases, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = ?, category = ?, per_100g = ?, portions = ?, aliases = ?
	`, rec.ID, rec.Name, rec.Category, string(per100g), string(portions), string(aliases), nowStamp(),
		rec.Name, rec.Category, string(per100g), string(portions), string(aliases))
	return rec, err
}

// DeleteCustomFood removes a user food record.
func (s *Store) DeleteCustomFood(ctx context.Context, id string) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM custom_foods WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("custom food %s not found", id)
	}
	return nil
}

// GetProfile returns the stored user profile, zero-valued when none was
// saved yet.
func (s *Store) GetProfile(ctx context.Context) (models.Profile, error) {
	var p models.Profile
	err := s.conn.QueryRowContext(ctx, `
		SELECT weight, target_weight, height, age, activity_level, updated_at
		FROM profile WHERE id = 1
	`).Scan(&p.Weight, &p.TargetWeight, &p.Height, &p.Age, &p.ActivityLevel, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return models.Profile{}, nil
	}
	return p, err
}

// SaveProfile merges non-zero fields into the single profile row, so a
// weight-only update keeps height and age.
func (s *Store) SaveProfile(ctx context.Context, p models.Profile) error {
	current, err := s.GetProfile(ctx)
	if err != nil {
		return err
	}

	if p.Weight > 0 {
		current.Weight = p.Weight
	}
	if p.TargetWeight > 0 {
		current.TargetWeight = p.TargetWeight
	}
	if p.Height > 0 {
		current.Height = p.Height
	}
	if p.Age > 0 {
		current.Age = p.Age
	}
	if p.ActivityLevel != "" {
		current.ActivityLevel = p.ActivityLevel
	}

	_, err = s.conn.ExecContext(ctx, `
		INSERT INTO profile (id, weight, target_weight, height, age, activity_level, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			weight = ?, target_weight = ?, height = ?, age = ?, activity_level = ?, updated_at = ?
	`, current.Weight, current.TargetWeight, current.Height, current.Age, current.ActivityLevel, nowStamp(),
		current.Weight, current.TargetWeight, current.Height, current.Age, current.ActivityLevel, nowStamp())
	return err
}
