package meal

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"meal-recommender/internal/core/ai"
	"meal-recommender/internal/core/catalog"
	"meal-recommender/internal/infrastructure/config"
	"meal-recommender/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const recommendFixture = `Diet Type, Meal, Dish Combo, Ingredients (per serving), Calories (kcal), Carbs (g), Protein (g), Fat (g), Healthy Tag
Vegetarian, Breakfast, Poha with Peanuts, "poha, peanuts, onion", 280, 42, 8, 9, Light and iron rich
Vegetarian, Lunch, Varan Bhaat, "rice, toor dal, ghee", 420, 68, 14, 8, Complete protein combination
Vegetarian, Dinner, Bhakri with Pithla, "jowar flour, besan, garlic", 380, 55, 12, 10, High fiber
Vegetarian, Evening Snack, Kothimbir Vadi, "besan, coriander", 180, 22, 7, 7, Steamed snack
`

func newTestRecommender(t *testing.T) *Recommender {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "maharastra.csv"), []byte(recommendFixture), 0o644))

	cfg := &config.Config{
		Catalog: config.CatalogConfig{
			Dir:              dir,
			DefaultSource:    "maharashtra",
			MaxFileBytes:     10 << 20,
			MaxRows:          10000,
			MaxInvalidRows:   100,
			MaxResults:       50,
			CacheMaxEntries:  100,
			CacheEvictBuffer: 10,
		},
	}

	loader := catalog.NewLoader(cfg, catalog.NewCache(cfg.Catalog.CacheMaxEntries, cfg.Catalog.CacheEvictBuffer))
	aiSvc := ai.NewService(cfg, nil)
	return NewRecommender(cfg, loader, aiSvc, NewPlanner())
}

func TestRecommender_FullMatch(t *testing.T) {
	r := newTestRecommender(t)
	user := common.UserContext{
		UserID:               "u1",
		Name:                 "Asha",
		Age:                  30,
		DietType:             "veg",
		State:                "maharashtra",
		RequestedIngredients: []string{"poha", "peanuts"},
		RequestedCategory:    "breakfast",
	}

	text := r.Recommend(context.Background(), user)

	assert.Contains(t, text, "Perfect Breakfast Matches for Your Ingredients")
	assert.Contains(t, text, "Your Ingredients: poha, peanuts")
	assert.Contains(t, text, "Diet: Vegetarian")
	assert.Contains(t, text, "Region: Maharashtra")
	assert.Contains(t, text, "1. Poha with Peanuts")
	assert.Contains(t, text, "Match Score:")
	assert.Contains(t, text, "Uses: poha, peanuts")
	assert.Contains(t, text, "meals using your ingredients!")
}

func TestRecommender_TopThreeOnly(t *testing.T) {
	r := newTestRecommender(t)
	user := common.UserContext{
		UserID:               "u1",
		DietType:             "vegetarian",
		State:                "maharashtra",
		RequestedIngredients: []string{"besan"},
		RequestedCategory:    "dinner",
	}

	text := r.Recommend(context.Background(), user)

	assert.Contains(t, text, "1. ")
	assert.NotContains(t, text, "4. ", "at most three recommendations should be listed")
}

func TestRecommender_StaticFallback(t *testing.T) {
	r := newTestRecommender(t)
	user := common.UserContext{
		UserID:               "u1",
		DietType:             "vegetarian",
		RequestedIngredients: []string{"dragonfruit"},
	}

	text := r.Recommend(context.Background(), user)

	assert.Contains(t, text, "No Perfect Meal Matches Found")
	assert.Contains(t, text, "Your Ingredients: dragonfruit")
	assert.Contains(t, text, "Try basic ingredients like rice, dal, vegetables")
}

func TestRecommender_FallbackSuggestsSynonyms(t *testing.T) {
	r := newTestRecommender(t)
	user := common.UserContext{
		UserID:               "u1",
		DietType:             "keto",
		RequestedIngredients: []string{"paneer tikka masala gravy"},
	}

	text := r.Recommend(context.Background(), user)

	if assert.Contains(t, text, "Similar ingredients you could try:") {
		assert.Contains(t, text, "cottage cheese")
	}
}

func TestRecommender_PlanDailyStatic(t *testing.T) {
	r := newTestRecommender(t)
	user := common.UserContext{UserID: "u1", Name: "Asha", Age: 30, DietType: "veg", State: "maharashtra"}

	plan := r.PlanDaily(context.Background(), user)

	assert.Contains(t, plan, "🌅 **BREAKFAST** (7-9 AM)")
	assert.Contains(t, plan, "Poha with Peanuts - 280 calories")
	assert.Contains(t, plan, "☀️ **LUNCH** (12-2 PM)")
}

func TestRecommender_PlanWeekly(t *testing.T) {
	r := newTestRecommender(t)
	user := common.UserContext{UserID: "u1", Name: "Asha", Age: 30, DietType: "veg", State: "maharashtra"}

	plan := r.PlanWeekly(user)

	assert.Contains(t, plan, "**Day 1**")
	assert.Contains(t, plan, "**Day 7**")
}

func TestRecommender_RegionalFoods(t *testing.T) {
	r := newTestRecommender(t)

	assert.Contains(t, r.RegionalFoods("maharashtra"), "Poha")
}
