package meal

import (
	"strings"
	"testing"

	"meal-recommender/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func planMeals() []common.Meal {
	return []common.Meal{
		{Name: "Poha", Calories: 280, Category: "breakfast"},
		{Name: "Upma", Calories: 250, Category: "breakfast"},
		{Name: "Varan Bhaat", Calories: 420, Category: "lunch"},
		{Name: "Bhakri with Pithla", Calories: 380, Category: "dinner"},
		{Name: "Kothimbir Vadi", Calories: 180, Category: "evening snack"},
	}
}

func TestPlanner_DailyPlanSections(t *testing.T) {
	p := NewPlanner()
	user := common.UserContext{UserID: "u1", Name: "Asha", Age: 30, DietType: "veg", State: "maharashtra"}

	plan := p.DailyPlan(planMeals(), user)

	assert.Contains(t, plan, "Hello! 👋")
	assert.Contains(t, plan, "Here's your meal plan, Asha!")
	assert.Contains(t, plan, "🌅 **BREAKFAST** (7-9 AM)\nPoha - 280 calories")
	assert.Contains(t, plan, "☀️ **LUNCH** (12-2 PM)\nVaran Bhaat - 420 calories")
	assert.Contains(t, plan, "🌙 **DINNER** (7-9 PM)\nBhakri with Pithla - 380 calories")
	assert.Contains(t, plan, "🍎 **SNACK** (3-4 PM)\nKothimbir Vadi - 180 calories")
	assert.Contains(t, plan, "maharashtra cuisine database")
	assert.Contains(t, plan, "vegetarian preferences")
}

func TestPlanner_AgeTones(t *testing.T) {
	p := NewPlanner()
	meals := planMeals()

	young := p.DailyPlan(meals, common.UserContext{UserID: "a", Age: 20})
	mid := p.DailyPlan(meals, common.UserContext{UserID: "b", Age: 30})
	older := p.DailyPlan(meals, common.UserContext{UserID: "c", Age: 55})

	assert.True(t, strings.HasPrefix(young, "Hey there! 🌟"))
	assert.True(t, strings.HasPrefix(mid, "Hello! 👋"))
	assert.True(t, strings.HasPrefix(older, "Greetings! 🙏"))
}

func TestPlanner_RotatesPerUser(t *testing.T) {
	p := NewPlanner()
	user := common.UserContext{UserID: "u1", Age: 30}

	first := p.DailyPlan(planMeals(), user)
	second := p.DailyPlan(planMeals(), user)

	assert.Contains(t, first, "Poha - 280")
	assert.Contains(t, second, "Upma - 250", "repeat requests should rotate within the category")
}

func TestPlanner_IndependentCountersPerUser(t *testing.T) {
	p := NewPlanner()

	p.DailyPlan(planMeals(), common.UserContext{UserID: "u1", Age: 30})
	other := p.DailyPlan(planMeals(), common.UserContext{UserID: "u2", Age: 30})

	assert.Contains(t, other, "Poha - 280", "a fresh user should start from the first meal")
}

func TestPlanner_MissingNameDefaults(t *testing.T) {
	p := NewPlanner()

	plan := p.DailyPlan(planMeals(), common.UserContext{UserID: "u1", Age: 30})

	assert.Contains(t, plan, "Here's your meal plan, User!")
}

func TestPlanner_WeeklyPlanSevenDays(t *testing.T) {
	p := NewPlanner()
	user := common.UserContext{UserID: "u1", Name: "Asha", Age: 30, State: "maharashtra"}

	plan := p.WeeklyPlan(planMeals(), user)

	for day := 1; day <= 7; day++ {
		assert.Contains(t, plan, "**Day "+string(rune('0'+day))+"**")
	}
	assert.Contains(t, plan, "Breakfast:")
	assert.Contains(t, plan, "Snack:")
}

func TestPlanner_WeeklyPlanEmptyMeals(t *testing.T) {
	p := NewPlanner()

	plan := p.WeeklyPlan(nil, common.UserContext{UserID: "u1"})

	assert.Equal(t, FallbackPlanMessage(), plan)
}

func TestFallbackPlanMessage(t *testing.T) {
	msg := FallbackPlanMessage()

	require.Contains(t, msg, "🌅 **BREAKFAST** (7-9 AM)")
	require.Contains(t, msg, "Oats with fruits and nuts - 300 calories")
	require.Contains(t, msg, "💡 These are healthy fallback meals from our database!")
}
