package openfood

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/mkleber/kaltrack/internal/models"
)

const defaultBaseURL = "https://world.openfoodfacts.org"

// Client queries the Open Food Facts search API.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewClient creates an Open Food Facts client. baseURL may be empty for the
// public instance.
func NewClient(baseURL, userAgent string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:   baseURL,
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Search queries products by term and converts them into knowledge-base
// records. Products without a name or nutriments are discarded.
func (c *Client) Search(ctx context.Context, term string, limit int) ([]models.FoodRecord, error) {
	params := url.Values{
		"search_terms":  {term},
		"search_simple": {"1"},
		"action":        {"process"},
		"json":          {"1"},
		"page_size":     {fmt.Sprintf("%d", limit)},
		"fields":        {"code,product_name,product_name_de,brands,categories,nutriments,serving_size,quantity"},
	}
	searchURL := c.baseURL + "/cgi/search.pl?" + params.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, "GET", searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("searching products: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openfoodfacts returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	records := parseProducts(body)
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

var servingSizeRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*g`)

// parseProducts converts a search response into food records. The payload is
// probed field by field because product data is user-contributed and ragged.
func parseProducts(body []byte) []models.FoodRecord {
	var records []models.FoodRecord

	gjson.GetBytes(body, "products").ForEach(func(_, p gjson.Result) bool {
		name := p.Get("product_name_de").String()
		if name == "" {
			name = p.Get("product_name").String()
		}
		nutriments := p.Get("nutriments")
		if name == "" || !nutriments.IsObject() {
			return true
		}

		rec := models.FoodRecord{
			ID:       "off-" + p.Get("code").String(),
			Name:     name,
			Category: categoryFromTags(p.Get("categories").String()),
			Per100g:  normalizeNutriments(nutriments),
			Origin:   models.OriginRemoteLookup,
		}

		if m := servingSizeRe.FindStringSubmatch(p.Get("serving_size").String()); m != nil {
			if grams, err := strconv.ParseFloat(m[1], 64); err == nil && grams > 0 {
				rec.CommonPortions = append(rec.CommonPortions, models.Portion{Name: "1 Portion", Grams: grams})
			}
		}
		rec.CommonPortions = append(rec.CommonPortions,
			models.Portion{Name: "100g", Grams: 100},
			models.Portion{Name: "1 kleine Portion", Grams: 50},
			models.Portion{Name: "1 große Portion", Grams: 150},
		)

		for _, brand := range strings.Split(p.Get("brands").String(), ",") {
			if brand = strings.ToLower(strings.TrimSpace(brand)); brand != "" {
				rec.Aliases = append(rec.Aliases, brand)
			}
		}
		if en := p.Get("product_name").String(); en != "" && en != name {
			rec.Aliases = append(rec.Aliases, strings.ToLower(en))
		}

		records = append(records, rec)
		return true
	})

	return records
}

// normalizeNutriments extracts per-100g values, converting kJ to kcal when
// only a raw energy field exists (magnitudes above 1000 are assumed kJ) and
// deriving sodium from salt when needed (salt ≈ 2.5 × sodium).
func normalizeNutriments(n gjson.Result) models.NutritionPer100g {
	calories := n.Get("energy-kcal_100g").Float()
	if calories == 0 {
		calories = n.Get("energy-kcal").Float()
	}
	if calories == 0 {
		energy := n.Get("energy_100g").Float()
		if energy == 0 {
			energy = n.Get("energy").Float()
		}
		if energy > 1000 {
			energy /= 4.184
		}
		calories = energy
	}

	sodium := firstFloat(n, "sodium_100g", "sodium")
	if sodium == 0 {
		sodium = n.Get("salt_100g").Float() * 0.4
	}

	return models.NutritionPer100g{
		Calories: math.Round(calories),
		Protein:  round1(firstFloat(n, "proteins_100g", "proteins")),
		Carbs:    round1(firstFloat(n, "carbohydrates_100g", "carbohydrates")),
		Fat:      round1(firstFloat(n, "fat_100g", "fat")),
		Fiber:    round1(firstFloat(n, "fiber_100g", "fiber")),
		Sugar:    round1(firstFloat(n, "sugars_100g", "sugars")),
		Sodium:   round1(sodium),
	}
}

func firstFloat(n gjson.Result, paths ...string) float64 {
	for _, path := range paths {
		if v := n.Get(path); v.Exists() && v.Float() != 0 {
			return v.Float()
		}
	}
	return 0
}

func categoryFromTags(categories string) string {
	cats := strings.ToLower(categories)
	switch {
	case strings.Contains(cats, "fruit") || strings.Contains(cats, "obst"):
		return "fruit"
	case strings.Contains(cats, "vegetable") || strings.Contains(cats, "gemüse"):
		return "vegetable"
	case strings.Contains(cats, "meat") || strings.Contains(cats, "fleisch"):
		return "meat"
	case strings.Contains(cats, "dairy") || strings.Contains(cats, "milch"):
		return "dairy"
	case strings.Contains(cats, "grain") || strings.Contains(cats, "getreide") ||
		strings.Contains(cats, "bread") || strings.Contains(cats, "brot"):
		return "grain"
	case strings.Contains(cats, "snack") || strings.Contains(cats, "sweet") || strings.Contains(cats, "süß"):
		return "snack"
	case strings.Contains(cats, "beverage") || strings.Contains(cats, "getränk"):
		return "beverage"
	default:
		return "other"
	}
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
