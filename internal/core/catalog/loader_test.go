package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"meal-recommender/internal/infrastructure/config"
	"meal-recommender/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(dir string) *config.Config {
	return &config.Config{
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
}

func newTestLoader(t *testing.T, dir string) *Loader {
	t.Helper()
	cfg := testConfig(dir)
	return NewLoader(cfg, NewCache(cfg.Catalog.CacheMaxEntries, cfg.Catalog.CacheEvictBuffer))
}

func TestLoader_LoadCSV(t *testing.T) {
	l := newTestLoader(t, "testdata")

	meals := l.Load(common.Query{Source: "maharashtra"})

	require.NotEmpty(t, meals)
	byName := make(map[string]common.Meal, len(meals))
	for _, m := range meals {
		byName[m.Name] = m
	}

	poha, ok := byName["Poha with Peanuts"]
	require.True(t, ok)
	assert.Equal(t, "vegetarian", poha.DietType)
	assert.Equal(t, "breakfast", poha.Category)
	assert.Equal(t, 280.0, poha.Calories)
	assert.Equal(t, 42.0, poha.Macros.Carbs)
	assert.Equal(t, []string{"poha", "peanuts", "onion", "turmeric"}, poha.Ingredients)
	assert.Equal(t, "medium", poha.CalorieBand)
}

func TestLoader_LoadNestedJSON(t *testing.T) {
	l := newTestLoader(t, "testdata")

	meals := l.Load(common.Query{Source: "andhra"})

	require.NotEmpty(t, meals)
	byName := make(map[string]common.Meal, len(meals))
	for _, m := range meals {
		byName[m.Name] = m
	}

	pesarattu, ok := byName["Pesarattu"]
	require.True(t, ok)
	assert.Equal(t, "vegetarian", pesarattu.DietType)
	assert.Equal(t, "breakfast", pesarattu.Category)
	assert.Equal(t, "Andhra Pradesh", pesarattu.Region)

	// 替代欄位名與帶單位的卡路里字串
	curry, ok := byName["Andhra Chicken Curry with Rice"]
	require.True(t, ok)
	assert.Equal(t, "non-vegetarian", curry.DietType)
	assert.Equal(t, 560.0, curry.Calories)
	assert.Equal(t, "high", curry.CalorieBand)
}

func TestLoader_DietFilter(t *testing.T) {
	l := newTestLoader(t, "testdata")

	meals := l.Load(common.Query{Source: "maharashtra", DietType: "veg"})

	require.NotEmpty(t, meals)
	for _, m := range meals {
		assert.Equal(t, "vegetarian", m.DietType)
	}
}

func TestLoader_CategoryFilterGroupsSnacks(t *testing.T) {
	l := newTestLoader(t, "testdata")

	meals := l.Load(common.Query{Source: "maharashtra", Category: "snack"})

	require.NotEmpty(t, meals)
	for _, m := range meals {
		assert.Contains(t, []string{"morning snack", "evening snack"}, m.Category)
	}
}

func TestLoader_UnknownFiltersIgnored(t *testing.T) {
	l := newTestLoader(t, "testdata")

	all := l.Load(common.Query{Source: "maharashtra"})
	filtered := l.Load(common.Query{Source: "maharashtra", DietType: "carnivore", Category: "brunch"})

	assert.Equal(t, len(all), len(filtered), "unknown filter values should be ignored")
}

func TestLoader_MaxResultsClamped(t *testing.T) {
	cfg := testConfig("testdata")
	cfg.Catalog.MaxResults = 3
	l := NewLoader(cfg, NewCache(100, 10))

	meals := l.Load(common.Query{Source: "maharashtra", MaxResults: 999})
	assert.Len(t, meals, 3)

	meals = l.Load(common.Query{Source: "maharashtra", MaxResults: 2})
	assert.Len(t, meals, 2)
}

func TestLoader_UnknownSourceUsesDefault(t *testing.T) {
	l := newTestLoader(t, "testdata")

	fromDefault := l.Load(common.Query{Source: "maharashtra"})
	fromUnknown := l.Load(common.Query{Source: "atlantis"})

	assert.Equal(t, len(fromDefault), len(fromUnknown))
}

func TestLoader_MissingFileFallsBack(t *testing.T) {
	l := newTestLoader(t, t.TempDir())

	meals := l.Load(common.Query{Source: "maharashtra"})

	require.NotEmpty(t, meals, "fallback corpus should be served when the source is unreadable")
	names := make([]string, 0, len(meals))
	for _, m := range meals {
		names = append(names, m.Name)
	}
	assert.Contains(t, names, "Healthy Breakfast Bowl")
}

func TestLoader_OversizedFileFallsBack(t *testing.T) {
	cfg := testConfig("testdata")
	cfg.Catalog.MaxFileBytes = 16
	l := NewLoader(cfg, NewCache(100, 10))

	meals := l.Load(common.Query{Source: "maharashtra"})

	names := make([]string, 0, len(meals))
	for _, m := range meals {
		names = append(names, m.Name)
	}
	assert.Contains(t, names, "Healthy Breakfast Bowl")
}

func TestLoader_SkipsInvalidRows(t *testing.T) {
	dir := t.TempDir()
	csv := `Diet Type, Meal, Dish Combo, Ingredients (per serving), Calories (kcal), Carbs (g), Protein (g), Fat (g), Healthy Tag
Vegetarian, Lunch, Good Meal, "rice, dal", 400, 60, 12, 8, Balanced
Vegetarian, Lunch, Calorie Bomb, "ghee", 5000, 10, 2, 90, Too heavy
Vegetarian, Lunch, , "rice", 300, 50, 8, 5, Nameless
Vegetarian, Lunch, <script>alert(1)</script>, "rice", 300, 50, 8, 5, Hostile
Vegetarian, Dinner, Another Good Meal, "chapati, sabzi", 350, 55, 10, 7, Light
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "maharastra.csv"), []byte(csv), 0o644))
	l := newTestLoader(t, dir)

	meals := l.Load(common.Query{Source: "maharashtra"})

	require.Len(t, meals, 2)
	assert.Equal(t, "Good Meal", meals[0].Name)
	assert.Equal(t, "Another Good Meal", meals[1].Name)
}

func TestLoader_SkipsRowsWithoutIngredients(t *testing.T) {
	dir := t.TempDir()
	csv := `Diet Type, Meal, Dish Combo, Ingredients (per serving), Calories (kcal), Carbs (g), Protein (g), Fat (g), Healthy Tag
Vegetarian, Lunch, Ghost Meal, , 400, 60, 12, 8, No ingredients listed
Vegetarian, Lunch, Real Meal, "rice, dal", 400, 60, 12, 8, Balanced
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "maharastra.csv"), []byte(csv), 0o644))
	l := newTestLoader(t, dir)

	meals := l.Load(common.Query{Source: "maharashtra"})

	require.Len(t, meals, 1)
	assert.Equal(t, "Real Meal", meals[0].Name)
}

func TestLoader_TooManyInvalidRowsFallsBack(t *testing.T) {
	dir := t.TempDir()
	csv := "Diet Type, Meal, Dish Combo, Ingredients (per serving), Calories (kcal), Carbs (g), Protein (g), Fat (g), Healthy Tag\n"
	for i := 0; i < 5; i++ {
		csv += "Vegetarian, Lunch, Bad Meal, \"rice\", -1, 10, 2, 1, Broken\n"
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "maharastra.csv"), []byte(csv), 0o644))

	cfg := testConfig(dir)
	cfg.Catalog.MaxInvalidRows = 3
	l := NewLoader(cfg, NewCache(100, 10))

	meals := l.Load(common.Query{Source: "maharashtra"})

	names := make([]string, 0, len(meals))
	for _, m := range meals {
		names = append(names, m.Name)
	}
	assert.Contains(t, names, "Healthy Breakfast Bowl", "parse abort should serve the fallback corpus")
}

func TestLoader_Windows1252Retry(t *testing.T) {
	dir := t.TempDir()
	// 0xE9 是 Windows-1252 的 é，不是合法 UTF-8
	csv := "Diet Type, Meal, Dish Combo, Ingredients (per serving), Calories (kcal), Carbs (g), Protein (g), Fat (g), Healthy Tag\n" +
		"Vegetarian, Lunch, Saut\xe9ed Greens, \"spinach, garlic\", 150, 12, 6, 5, Iron rich\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "maharastra.csv"), []byte(csv), 0o644))
	l := newTestLoader(t, dir)

	meals := l.Load(common.Query{Source: "maharashtra"})

	require.Len(t, meals, 1)
	assert.Equal(t, "Sautéed Greens", meals[0].Name)
}

func TestLoader_CachesResults(t *testing.T) {
	cache := NewCache(100, 10)
	l := NewLoader(testConfig("testdata"), cache)

	l.Load(common.Query{Source: "maharashtra"})
	require.Equal(t, 1, cache.Len())

	l.Load(common.Query{Source: "maharashtra"})
	stats := cache.Stats()
	assert.Equal(t, int64(1), stats["hits"])
}

func TestLoader_FailureClearsCache(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "maharastra.csv")
	csv := `Diet Type, Meal, Dish Combo, Ingredients (per serving), Calories (kcal), Carbs (g), Protein (g), Fat (g), Healthy Tag
Vegetarian, Lunch, Good Meal, "rice, dal", 400, 60, 12, 8, Balanced
`
	require.NoError(t, os.WriteFile(src, []byte(csv), 0o644))

	cache := NewCache(100, 10)
	l := NewLoader(testConfig(dir), cache)

	l.Load(common.Query{Source: "maharashtra"})
	require.Equal(t, 1, cache.Len())

	require.NoError(t, os.Remove(src))
	l.Load(common.Query{Source: "karnataka"})

	assert.Equal(t, 0, cache.Len(), "load failure should clear cached entries")
}
