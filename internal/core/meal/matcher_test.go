package meal

import (
	"testing"

	"meal-recommender/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatch_ScoresExactIngredient(t *testing.T) {
	meals := []common.Meal{
		{Name: "Dal Fry", Ingredients: []string{"dal", "spices"}, Category: "lunch"},
		{Name: "Plain Salad", Ingredients: []string{"cucumber"}, Category: "lunch"},
	}

	results := Match(meals, []string{"dal"}, "", "")

	require.Len(t, results, 1, "zero score meals should be dropped")
	assert.Equal(t, "Dal Fry", results[0].Meal.Name)
	// 名稱含 dal +8、食材完全相同 +10、同義詞在名稱 +2
	assert.Equal(t, 20, results[0].Score)
	assert.Equal(t, []string{"dal"}, results[0].MatchedIngredients)
}

func TestMatch_PartialIngredientOverlap(t *testing.T) {
	meals := []common.Meal{
		{Name: "Curry", Ingredients: []string{"toor dal", "spices"}},
	}

	results := Match(meals, []string{"dal"}, "", "")

	require.Len(t, results, 1)
	// 雙向子字串 +5、同義詞在食材不再計（elif 鏈）
	assert.Equal(t, 5, results[0].Score)
}

func TestMatch_ReportsOnlyIngredientsFoundInMeal(t *testing.T) {
	meals := []common.Meal{
		{Name: "Salad", Ingredients: []string{"tomato", "cucumber"}},
	}

	results := Match(meals, []string{"tomatoes"}, "", "")

	require.Len(t, results, 1, "bidirectional overlap still scores the meal")
	assert.Empty(t, results[0].MatchedIngredients,
		"a request term longer than the meal ingredient is not reported as used")

	exact := Match(meals, []string{"tomato"}, "", "")
	require.Len(t, exact, 1)
	assert.Equal(t, []string{"tomato"}, exact[0].MatchedIngredients)
}

func TestMatch_SynonymInIngredient(t *testing.T) {
	meals := []common.Meal{
		{Name: "Curry", Ingredients: []string{"lentils", "spices"}},
	}

	results := Match(meals, []string{"dal"}, "", "")

	require.Len(t, results, 1)
	assert.Equal(t, 3, results[0].Score, "synonym overlap should score lowest")
}

func TestMatch_CategoryBonus(t *testing.T) {
	meals := []common.Meal{
		{Name: "Poha", Ingredients: []string{"poha"}, Category: "breakfast"},
		{Name: "Poha Special", Ingredients: []string{"poha"}, Category: "morning"},
	}

	exact := Match(meals, []string{"poha"}, "breakfast", "")
	require.Len(t, exact, 2)
	assert.Equal(t, "Poha", exact[0].Meal.Name, "exact category bonus should outrank variation bonus")
	assert.Equal(t, exact[0].Score-5, exact[1].Score, "variation bonus is five points lower")
}

func TestMatch_RegionBonus(t *testing.T) {
	meals := []common.Meal{
		{Name: "Misal Pav", Ingredients: []string{"moth beans"}, Region: "maharashtra"},
		{Name: "Misal Plate", Ingredients: []string{"moth beans"}, Region: "karnataka"},
	}

	results := Match(meals, []string{"moth beans"}, "", "maharashtra")

	require.Len(t, results, 2)
	assert.Equal(t, "Misal Pav", results[0].Meal.Name)
	assert.Equal(t, results[1].Score+3, results[0].Score)
}

func TestMatch_MedicalScoreDoubled(t *testing.T) {
	meals := []common.Meal{
		{Name: "Safe Meal", Ingredients: []string{"rice"}, MedicalScore: 5},
		{Name: "Neutral Meal", Ingredients: []string{"rice"}, MedicalScore: 0},
	}

	results := Match(meals, []string{"rice"}, "", "")

	require.Len(t, results, 2)
	assert.Equal(t, "Safe Meal", results[0].Meal.Name)
	assert.Equal(t, results[1].Score+10, results[0].Score)
}

func TestMatch_DeduplicatesByNormalizedName(t *testing.T) {
	meals := []common.Meal{
		{Name: "Vada Pav", Ingredients: []string{"potato", "bread"}},
		{Name: "vada-pav", Ingredients: []string{"potato"}},
		{Name: "VADA PAV", Ingredients: []string{"potato", "bread", "chutney"}},
	}

	results := Match(meals, []string{"potato"}, "", "")

	assert.Len(t, results, 1, "name variants should collapse to one entry")
}

func TestMatch_EmptyIngredients(t *testing.T) {
	meals := []common.Meal{{Name: "Anything", Ingredients: []string{"rice"}}}

	assert.Nil(t, Match(meals, nil, "", ""))
	assert.Nil(t, Match(meals, []string{"  "}, "", ""))
}

func TestMatchPartial_SingleIngredientHit(t *testing.T) {
	meals := []common.Meal{
		{Name: "Tomato Soup", Ingredients: []string{"tomato puree", "spices"}},
		{Name: "Plain Rice", Ingredients: []string{"rice"}},
	}

	results := MatchPartial(meals, []string{"tomato"})

	require.Len(t, results, 1)
	assert.Equal(t, "Tomato Soup", results[0].Meal.Name)
	assert.Equal(t, 5, results[0].Score)
	assert.Equal(t, []string{"tomato"}, results[0].MatchedIngredients)
}

func TestMatchPartial_Deduplicates(t *testing.T) {
	meals := []common.Meal{
		{Name: "Egg Curry", Ingredients: []string{"egg"}},
		{Name: "egg curry", Ingredients: []string{"egg", "onion"}},
	}

	results := MatchPartial(meals, []string{"egg"})

	assert.Len(t, results, 1)
}
