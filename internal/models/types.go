package models

// FoodOrigin says which tier of the knowledge base a record came from.
const (
	OriginUserCustom    = "user-custom"
	OriginSystemCurated = "system-curated"
	OriginRemoteLookup  = "remote-lookup"
)

// ResolutionSource marks how a food item's nutrition was determined.
const (
	SourceDatabaseMatch = "database_match"
	SourceAIEstimation  = "ai_estimation"
)

// Meal types
const (
	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealDinner    = "dinner"
	MealSnack     = "snack"
)

// Action types the parser may emit. The action dispatcher rejects anything
// outside this set.
const (
	ActionAddMeal       = "add_meal"
	ActionAddWater      = "add_water"
	ActionDeleteMeal    = "delete_meal"
	ActionEditMeal      = "edit_meal"
	ActionClearDay      = "clear_day"
	ActionClearRange    = "clear_range"
	ActionUpdateNote    = "update_note"
	ActionUpdateProfile = "update_profile"
	ActionTrackWeight   = "track_weight"
)

// ActionDraft is a typed, user-confirmable unit produced by parsing one
// utterance. Only the fields matching Type are populated.
type ActionDraft struct {
	Type        string         `json:"type"`
	TargetDate  string         `json:"targetDate"` // YYYY-MM-DD
	Description string         `json:"description"`
	Foods       []ResolvedFood `json:"foods,omitempty"`
	MealType    string         `json:"mealType,omitempty"`
	Amount      float64        `json:"amount,omitempty"` // liters, add_water
	MealID      string         `json:"mealId,omitempty"`
	MealName    string         `json:"mealName,omitempty"` // edit_meal lookup when no id
	NewName     string         `json:"newName,omitempty"`  // edit_meal rename
	StartDate   string         `json:"startDate,omitempty"`
	EndDate     string         `json:"endDate,omitempty"`
	Note        string         `json:"note,omitempty"`
	Mood        string         `json:"mood,omitempty"`
	Weight      float64        `json:"weight,omitempty"`
	Profile     *Profile       `json:"profile,omitempty"`
}

// Nutrition holds portion-level macro values.
type Nutrition struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// NutritionPer100g holds per-100g macro values plus the optional
// micro fields the remote lookup may supply.
type NutritionPer100g struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber,omitempty"`
	Sugar    float64 `json:"sugar,omitempty"`
	Sodium   float64 `json:"sodium,omitempty"`
}

// Portion is a named gram amount, e.g. "1 mittelgroßer Apfel" → 180g.
type Portion struct {
	Name  string  `json:"name"`
	Grams float64 `json:"grams"`
}

// FoodRecord is one entry of the nutrition knowledge base. Immutable once
// fetched; remote-lookup records are ephemeral unless promoted to user-custom.
type FoodRecord struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Category       string           `json:"category"`
	Per100g        NutritionPer100g `json:"nutritionPer100g"`
	CommonPortions []Portion        `json:"commonPortions"`
	Aliases        []string         `json:"aliases"`
	Origin         string           `json:"origin"`
}

// FoodMention is a food term extracted from an utterance, before resolution.
// The macro fields are only set on mentions that came out of a model payload,
// where they serve as estimation input for the resolver.
type FoodMention struct {
	RawTerm        string  `json:"rawTerm"`
	NormalizedTerm string  `json:"normalizedTerm"`
	Quantity       int     `json:"quantity"`
	Unit           string  `json:"unit,omitempty"`
	Calories       float64 `json:"calories,omitempty"`
	Protein        float64 `json:"protein,omitempty"`
	Carbs          float64 `json:"carbs,omitempty"`
	Fat            float64 `json:"fat,omitempty"`
}

// ResolvedFood is a mention after knowledge-base matching or estimation.
type ResolvedFood struct {
	FoodID     string    `json:"foodId,omitempty"`
	Name       string    `json:"name"`
	Portion    Portion   `json:"portion"`
	Nutrition  Nutrition `json:"nutrition"`
	Confidence int       `json:"confidence"`
	Source     string    `json:"source"`
}

// FoodInMeal is a resolved food embedded in a persisted meal entry.
type FoodInMeal struct {
	ID        string    `json:"id"`
	FoodID    string    `json:"foodId,omitempty"`
	Name      string    `json:"name"`
	Portion   Portion   `json:"portion"`
	Nutrition Nutrition `json:"nutrition"`
}

// MealUpdate carries the changed fields of a meal edit. Zero-valued fields
// leave the stored meal untouched; Foods and Total travel together.
type MealUpdate struct {
	Name     string       `json:"name,omitempty"`
	MealType string       `json:"mealType,omitempty"`
	Foods    []FoodInMeal `json:"foods,omitempty"`
	Total    *Nutrition   `json:"totalNutrition,omitempty"`
}

// MealEntry is one meal on a day-ledger entry.
type MealEntry struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	MealType       string       `json:"mealType"`
	Time           string       `json:"time,omitempty"` // HH:MM
	Foods          []FoodInMeal `json:"foods"`
	TotalNutrition Nutrition    `json:"totalNutrition"`
	Source         string       `json:"source"` // "manual", "ai_chat", "quick_add"
	CreatedAt      string       `json:"created_at"`
}

// DayEntry is the per-date ledger record.
type DayEntry struct {
	Date      string      `json:"date"` // YYYY-MM-DD
	Meals     []MealEntry `json:"meals"`
	Water     float64     `json:"water"` // liters, >= 0, steps of 0.25
	Notes     string      `json:"notes,omitempty"`
	Mood      string      `json:"mood,omitempty"`
	Weight    float64     `json:"weight,omitempty"` // kg
	UpdatedAt string      `json:"updated_at"`
}

// DayStats aggregates a date range of the ledger.
type DayStats struct {
	TotalDays      int            `json:"total_days"`
	DaysWithMeals  int            `json:"days_with_meals"`
	TotalMeals     int            `json:"total_meals"`
	AvgCalories    float64        `json:"avg_calories_per_day"`
	AvgProtein     float64        `json:"avg_protein_per_day"`
	AvgCarbs       float64        `json:"avg_carbs_per_day"`
	AvgFat         float64        `json:"avg_fat_per_day"`
	AvgWater       float64        `json:"avg_water_per_day"`
	MealTypeCounts map[string]int `json:"meal_type_distribution"`
	TopFoods       []FoodCount    `json:"top_foods"`
	WeightProgress []WeightPoint  `json:"weight_progress"`
}

type FoodCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type WeightPoint struct {
	Date   string  `json:"date"`
	Weight float64 `json:"weight"`
}

// Profile is the user profile touched by update_profile / track_weight.
// BMR/TDEE math lives outside this core; this is plain storage.
type Profile struct {
	Weight        float64 `json:"weight,omitempty"`
	TargetWeight  float64 `json:"target_weight,omitempty"`
	Height        float64 `json:"height,omitempty"`
	Age           int     `json:"age,omitempty"`
	ActivityLevel string  `json:"activity_level,omitempty"`
	UpdatedAt     string  `json:"updated_at,omitempty"`
}

// ChatMessage is one turn of the model conversation history.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "model"
	Content string `json:"content"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status  string `json:"status"`
	Model   string `json:"model"`
	Ledger  string `json:"ledger"`
	Version string `json:"version"`
}
