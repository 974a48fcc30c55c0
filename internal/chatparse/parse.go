package chatparse

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/mkleber/kaltrack/internal/extract"
	"github.com/mkleber/kaltrack/internal/foodkb"
	"github.com/mkleber/kaltrack/internal/models"
	"github.com/mkleber/kaltrack/internal/temporal"
)

const (
	startMarker = "---JSON_START---"
	endMarker   = "---JSON_END---"
)

var (
	payloadRe = regexp.MustCompile(`(?s)---JSON_START---(.*?)---JSON_END---`)
	partialRe = regexp.MustCompile(`(?s)---JSON_START---(.*)`)
	replyRe   = regexp.MustCompile(`(?s)---JSON_END---\s*(.*)`)
	fenceRe   = regexp.MustCompile("(?s)```(?:json)?.*?```")
)

// Result is the outcome of parsing one model response.
type Result struct {
	IsComplete   bool
	Actions      []models.ActionDraft
	ReplyText    string
	RecoveryNote string
}

// Parser turns model text into confirmable action drafts. When the text
// carries no usable structured payload it degrades to the rule-based
// pipeline over the original user utterance.
type Parser struct {
	resolver *foodkb.Resolver
	lexicon  extract.Lexicon
}

// New creates a parser resolving food terms through the given resolver.
func New(resolver *foodkb.Resolver) *Parser {
	return &Parser{resolver: resolver, lexicon: extract.DefaultLexicon()}
}

// Parse extracts the delimited payload from modelText, repairs truncation
// where possible, validates every target date, and builds action drafts.
// userMessage is the original utterance; it drives date correction and the
// fallback path. selectedDate (YYYY-MM-DD, may be empty) is the caller's
// currently selected day.
func (p *Parser) Parse(ctx context.Context, modelText, userMessage string, referenceDate time.Time, selectedDate string) Result {
	payload := ""
	isComplete := true
	recovery := ""

	switch {
	case payloadRe.MatchString(modelText):
		m := payloadRe.FindStringSubmatch(modelText)
		candidate := strings.TrimSpace(m[1])
		fixed, outcome := RepairJSON(candidate)
		switch outcome {
		case PayloadComplete:
			payload = fixed
		case PayloadRepaired:
			payload = fixed
			isComplete = false
			recovery = "payload was malformed but partially recovered"
		default:
			recovery = "payload could not be parsed"
		}
	case strings.Contains(modelText, startMarker):
		// Start marker without end marker: the response was cut off.
		m := partialRe.FindStringSubmatch(modelText)
		fixed, outcome := RepairJSON(strings.TrimSpace(m[1]))
		if outcome == PayloadUnrecoverable {
			recovery = "payload was truncated and could not be recovered"
		} else {
			payload = fixed
			isComplete = false
			recovery = "payload was truncated but partially recovered"
		}
	default:
		if t := strings.TrimSpace(modelText); gjson.Valid(t) && gjson.Get(t, "actions").Exists() {
			payload = t
		}
	}

	if payload == "" {
		actions := p.Fallback(ctx, userMessage, referenceDate, selectedDate)
		reply := stripArtifacts(modelText)
		if reply == "" || recovery != "" {
			reply = fallbackReply(actions)
		}
		if recovery == "" && len(actions) > 0 {
			recovery = "no structured payload; rule-based fallback applied"
		}
		return Result{IsComplete: recovery == "", Actions: actions, ReplyText: reply, RecoveryNote: recovery}
	}

	actions := p.actionsFromPayload(ctx, payload, userMessage, referenceDate, selectedDate)
	return Result{
		IsComplete:   isComplete,
		Actions:      actions,
		ReplyText:    extractReply(modelText, payload),
		RecoveryNote: recovery,
	}
}

func (p *Parser) actionsFromPayload(ctx context.Context, payload, userMessage string, ref time.Time, selectedDate string) []models.ActionDraft {
	var drafts []models.ActionDraft
	gjson.Get(payload, "actions").ForEach(func(_, a gjson.Result) bool {
		if draft, ok := p.draftFromAction(ctx, a, userMessage, ref, selectedDate); ok {
			drafts = append(drafts, draft)
		}
		return true
	})
	return drafts
}

// draftFromAction builds one typed draft from a payload action. Unknown
// types and actions missing their essential fields are dropped rather than
// failing the whole batch.
func (p *Parser) draftFromAction(ctx context.Context, a gjson.Result, userMessage string, ref time.Time, selectedDate string) (models.ActionDraft, bool) {
	date := p.correctDate(a.Get("targetDate").String(), userMessage, ref, selectedDate)

	switch a.Get("type").String() {
	case models.ActionAddMeal:
		foods := p.resolveFoods(ctx, a.Get("foods"))
		if len(foods) == 0 {
			return models.ActionDraft{}, false
		}
		mealType := a.Get("mealType").String()
		if !validMealType(mealType) {
			mealType = extract.DetectMealType(userMessage, ref)
		}
		return models.ActionDraft{
			Type:        models.ActionAddMeal,
			TargetDate:  date,
			MealType:    mealType,
			Foods:       foods,
			Description: mealDescription(foods, date, ref),
		}, true

	case models.ActionAddWater:
		amount := a.Get("amount").Float()
		if amount <= 0 {
			amount = 0.25
		}
		return models.ActionDraft{
			Type:        models.ActionAddWater,
			TargetDate:  date,
			Amount:      amount,
			Description: waterDescription(amount, date, ref),
		}, true

	case models.ActionDeleteMeal:
		mealID := a.Get("mealId").String()
		if mealID == "" {
			return models.ActionDraft{}, false
		}
		return models.ActionDraft{
			Type:        models.ActionDeleteMeal,
			TargetDate:  date,
			MealID:      mealID,
			Description: fmt.Sprintf("Mahlzeit %s löschen", describeDate(date, ref)),
		}, true

	case models.ActionEditMeal:
		mealID := a.Get("mealId").String()
		mealName := a.Get("mealName").String()
		if mealID == "" && mealName == "" {
			return models.ActionDraft{}, false
		}
		foods := p.resolveFoods(ctx, a.Get("foods"))
		mealType := a.Get("mealType").String()
		if !validMealType(mealType) {
			mealType = ""
		}
		newName := a.Get("name").String()
		if len(foods) == 0 && mealType == "" && newName == "" {
			return models.ActionDraft{}, false
		}
		target := mealName
		if target == "" {
			target = mealID
		}
		return models.ActionDraft{
			Type:        models.ActionEditMeal,
			TargetDate:  date,
			MealID:      mealID,
			MealName:    mealName,
			NewName:     newName,
			MealType:    mealType,
			Foods:       foods,
			Description: fmt.Sprintf("Mahlzeit %q %s anpassen", target, describeDate(date, ref)),
		}, true

	case models.ActionClearDay:
		return models.ActionDraft{
			Type:        models.ActionClearDay,
			TargetDate:  date,
			Description: fmt.Sprintf("Alle Einträge %s löschen", describeDate(date, ref)),
		}, true

	case models.ActionClearRange:
		start := p.correctDate(a.Get("startDate").String(), userMessage, ref, selectedDate)
		end := p.correctDate(a.Get("endDate").String(), userMessage, ref, selectedDate)
		if end < start {
			start, end = end, start
		}
		return models.ActionDraft{
			Type:        models.ActionClearRange,
			TargetDate:  start,
			StartDate:   start,
			EndDate:     end,
			Description: fmt.Sprintf("Alle Einträge von %s bis %s löschen", start, end),
		}, true

	case models.ActionUpdateNote:
		note := a.Get("note").String()
		mood := a.Get("mood").String()
		weight := a.Get("weight").Float()
		if note == "" && mood == "" && weight == 0 {
			return models.ActionDraft{}, false
		}
		return models.ActionDraft{
			Type:        models.ActionUpdateNote,
			TargetDate:  date,
			Note:        note,
			Mood:        mood,
			Weight:      weight,
			Description: fmt.Sprintf("Tagesnotiz %s aktualisieren", describeDate(date, ref)),
		}, true

	case models.ActionUpdateProfile:
		profile := &models.Profile{
			Weight:        a.Get("weight").Float(),
			TargetWeight:  a.Get("targetWeight").Float(),
			Height:        a.Get("height").Float(),
			Age:           int(a.Get("age").Int()),
			ActivityLevel: a.Get("activityLevel").String(),
		}
		if *profile == (models.Profile{}) {
			return models.ActionDraft{}, false
		}
		return models.ActionDraft{
			Type:        models.ActionUpdateProfile,
			TargetDate:  date,
			Profile:     profile,
			Description: "Profil aktualisieren",
		}, true

	case models.ActionTrackWeight:
		weight := a.Get("weight").Float()
		if weight <= 0 {
			return models.ActionDraft{}, false
		}
		return models.ActionDraft{
			Type:        models.ActionTrackWeight,
			TargetDate:  date,
			Weight:      weight,
			Description: fmt.Sprintf("Gewicht %s kg %s eintragen", formatAmount(weight), describeDate(date, ref)),
		}, true
	}

	return models.ActionDraft{}, false
}

// resolveFoods runs every named food of a payload foods array through the
// knowledge-base resolver. Entries without a name are skipped.
func (p *Parser) resolveFoods(ctx context.Context, foodsField gjson.Result) []models.ResolvedFood {
	if !foodsField.IsArray() {
		return nil
	}
	var foods []models.ResolvedFood
	foodsField.ForEach(func(_, f gjson.Result) bool {
		name := f.Get("name").String()
		if name == "" {
			return true
		}
		carbs := f.Get("carbs").Float()
		if carbs == 0 {
			carbs = f.Get("kohlenhydrate").Float()
		}
		fat := f.Get("fat").Float()
		if fat == 0 {
			fat = f.Get("fett").Float()
		}
		foods = append(foods, p.resolver.Resolve(ctx, models.FoodMention{
			RawTerm:        name,
			NormalizedTerm: name,
			Quantity:       1,
			Calories:       f.Get("calories").Float(),
			Protein:        f.Get("protein").Float(),
			Carbs:          carbs,
			Fat:            fat,
		}))
		return true
	})
	return foods
}

// correctDate validates a payload date against the ±365-day window and
// falls back, in order, to a date alias found in the utterance, a secondary
// whole-message parse, the selected date, and finally the reference date.
func (p *Parser) correctDate(raw, userMessage string, ref time.Time, selectedDate string) string {
	if d, err := time.Parse(temporal.ISODate, raw); err == nil && temporal.WithinWindow(d, ref) {
		return raw
	}
	if d, ok := temporal.LookupAlias(userMessage, temporal.AliasTable(ref)); ok {
		return d.Format(temporal.ISODate)
	}
	if d, ok := temporal.Resolve(userMessage, ref); ok && temporal.WithinWindow(d, ref) {
		return d.Format(temporal.ISODate)
	}
	if selectedDate != "" {
		return selectedDate
	}
	return temporal.Midnight(ref).Format(temporal.ISODate)
}

// extractReply returns the natural-language part shown to the user: the
// text after the end marker when it is substantial, else the payload's own
// text field, else a generic confirmation.
func extractReply(modelText, payload string) string {
	if m := replyRe.FindStringSubmatch(modelText); m != nil {
		if reply := stripArtifacts(m[1]); len(reply) > 10 {
			return reply
		}
	}
	if t := gjson.Get(payload, "text").String(); t != "" {
		return t
	}
	return "Lebensmittel erfasst!"
}

// stripArtifacts removes residual payload fragments from a reply.
func stripArtifacts(s string) string {
	s = payloadRe.ReplaceAllString(s, "")
	s = partialRe.ReplaceAllString(s, "")
	s = fenceRe.ReplaceAllString(s, "")
	lines := strings.Split(s, "\n")
	var kept []string
	for _, line := range lines {
		t := strings.TrimSpace(line)
		if strings.HasPrefix(t, "{") && strings.HasSuffix(t, "}") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

func validMealType(mt string) bool {
	switch mt {
	case models.MealBreakfast, models.MealLunch, models.MealDinner, models.MealSnack:
		return true
	}
	return false
}

func describeDate(date string, ref time.Time) string {
	d, err := time.Parse(temporal.ISODate, date)
	if err != nil {
		return "heute"
	}
	return temporal.Describe(d, ref)
}

func mealDescription(foods []models.ResolvedFood, date string, ref time.Time) string {
	names := make([]string, len(foods))
	var calories, protein, carbs, fat float64
	for i, f := range foods {
		names[i] = f.Name
		calories += f.Nutrition.Calories
		protein += f.Nutrition.Protein
		carbs += f.Nutrition.Carbs
		fat += f.Nutrition.Fat
	}
	return fmt.Sprintf("%s %s hinzufügen\n%.0f kcal • %sg Protein • %sg Kohlenhydrate • %sg Fett",
		strings.Join(names, ", "), describeDate(date, ref),
		math.Round(calories), formatAmount(round1(protein)), formatAmount(round1(carbs)), formatAmount(round1(fat)))
}

func waterDescription(amount float64, date string, ref time.Time) string {
	return fmt.Sprintf("%sL Wasser %s hinzufügen", formatAmount(amount), describeDate(date, ref))
}

func formatAmount(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
