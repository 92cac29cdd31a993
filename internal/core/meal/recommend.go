package meal

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"meal-recommender/internal/core/ai"
	"meal-recommender/internal/core/catalog"
	"meal-recommender/internal/infrastructure/config"
	"meal-recommender/internal/pkg/common"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	maxRecommendations = 3  // 單次回覆的餐點數
	maxContextMeals    = 10 // 交給生成服務當參考的餐點數
	maxSuggestions     = 8  // 後備回覆的同義食材建議數
)

var titleCaser = cases.Title(language.English)

// Recommender 餐點推薦協調器，依序嘗試完整配對、部分配對、外部生成與後備回覆
type Recommender struct {
	config  *config.Config
	loader  *catalog.Loader
	ai      *ai.Service
	planner *Planner
}

// NewRecommender 建立推薦協調器
func NewRecommender(cfg *config.Config, loader *catalog.Loader, aiSvc *ai.Service, planner *Planner) *Recommender {
	return &Recommender{
		config:  cfg,
		loader:  loader,
		ai:      aiSvc,
		planner: planner,
	}
}

// stage 單一推薦階段，回覆非空即結束流程
type stage func(ctx context.Context, user common.UserContext, meals []common.Meal) (string, bool)

// Recommend 依使用者食材產生推薦文字，永遠回覆非空內容
func (r *Recommender) Recommend(ctx context.Context, user common.UserContext) string {
	meals := r.assembleCatalog(user)

	stages := []stage{
		r.fullMatchStage,
		r.partialMatchStage,
		r.generatedStage,
		r.staticFallbackStage,
	}

	for _, s := range stages {
		if text, done := s(ctx, user, meals); done {
			return text
		}
	}
	// staticFallbackStage 永遠成功，不會走到這裡
	return FallbackPlanMessage()
}

// assembleCatalog 組合主要地區與補充地區的餐點，套用使用者偏好
func (r *Recommender) assembleCatalog(user common.UserContext) []common.Meal {
	maxResults := r.config.Catalog.MaxResults

	all := r.loader.Load(common.Query{
		Source:     user.State,
		DietType:   user.DietType,
		MaxResults: maxResults,
	})

	// 補充其他地區增加變化，主要地區已涵蓋者跳過
	state := strings.ToLower(strings.TrimSpace(user.State))
	for _, other := range []string{"karnataka", "andhra"} {
		if state == other {
			continue
		}
		all = append(all, r.loader.Load(common.Query{
			Source:     other,
			MaxResults: maxResults,
		})...)
	}

	filtered := ApplyPreferences(all, user.DietType, user.MedicalCondition)
	common.LogInfo("推薦目錄組合完成",
		zap.String("state", state),
		zap.Int("loaded", len(all)),
		zap.Int("after_preferences", len(filtered)),
	)
	return filtered
}

// fullMatchStage 完整配對階段
func (r *Recommender) fullMatchStage(_ context.Context, user common.UserContext, meals []common.Meal) (string, bool) {
	matches := Match(meals, user.RequestedIngredients, user.RequestedCategory, user.State)
	if len(matches) == 0 {
		return "", false
	}

	top := matches
	if len(top) > maxRecommendations {
		top = top[:maxRecommendations]
	}
	return r.formatMatches(user, top, len(matches), false), true
}

// partialMatchStage 部分配對階段
func (r *Recommender) partialMatchStage(_ context.Context, user common.UserContext, meals []common.Meal) (string, bool) {
	matches := MatchPartial(meals, user.RequestedIngredients)
	if len(matches) == 0 {
		return "", false
	}

	top := matches
	if len(top) > maxRecommendations {
		top = top[:maxRecommendations]
	}
	return r.formatMatches(user, top, len(matches), true), true
}

// generatedStage 外部生成階段，任何錯誤都放行到下一階段
func (r *Recommender) generatedStage(ctx context.Context, user common.UserContext, meals []common.Meal) (string, bool) {
	if !r.ai.Enabled() {
		return "", false
	}

	category := requestedCategory(user)
	prompt := r.buildGenerationPrompt(user, meals, category)

	content, err := r.ai.Complete(ctx, "You are a helpful nutrition expert specializing in Indian cuisine.", prompt)
	if err != nil {
		common.LogWarn("外部生成失敗，改用後備回覆",
			zap.Error(err),
			zap.String("user_id", user.UserID),
		)
		return "", false
	}
	return content, true
}

// staticFallbackStage 後備回覆階段，一定成功
func (r *Recommender) staticFallbackStage(_ context.Context, user common.UserContext, _ []common.Meal) (string, bool) {
	return r.formatStaticFallback(user), true
}

// formatMatches 配對結果的固定文字格式
func (r *Recommender) formatMatches(user common.UserContext, matches []common.MatchResult, total int, partial bool) string {
	category := requestedCategory(user)
	divider := strings.Repeat("─", 40)

	var b strings.Builder
	if partial {
		b.WriteString(fmt.Sprintf("Partial %s Matches for Your Ingredients\n\n", titleCaser.String(category)))
	} else {
		b.WriteString(fmt.Sprintf("Perfect %s Matches for Your Ingredients\n\n", titleCaser.String(category)))
	}
	b.WriteString(fmt.Sprintf("Your Ingredients: %s\n", strings.Join(user.RequestedIngredients, ", ")))
	b.WriteString(fmt.Sprintf("Meal Type: %s\n", titleCaser.String(category)))
	b.WriteString(fmt.Sprintf("Diet: %s\n", titleCaser.String(common.NormalizeDietType(user.DietType))))
	b.WriteString(fmt.Sprintf("Region: %s\n\n", titleCaser.String(user.State)))
	b.WriteString(divider + "\n\n")

	for i, match := range matches {
		m := match.Meal
		mealCategory := m.Category
		if mealCategory == "" {
			mealCategory = "General"
		}

		ingredients := m.Ingredients
		if len(ingredients) > 5 {
			ingredients = ingredients[:5]
		}

		b.WriteString(fmt.Sprintf("%d. %s\n", i+1, m.Name))
		b.WriteString(fmt.Sprintf("Category: %s\n", mealCategory))
		b.WriteString(fmt.Sprintf("Calories: %.0f\n", m.Calories))
		if partial {
			b.WriteString(fmt.Sprintf("Match Score: %d/10 (Partial Match)\n", match.Score))
		} else {
			b.WriteString(fmt.Sprintf("Match Score: %d/10\n", match.Score))
		}
		b.WriteString(fmt.Sprintf("Uses: %s\n", strings.Join(match.MatchedIngredients, ", ")))
		b.WriteString(fmt.Sprintf("Ingredients: %s...\n\n", strings.Join(ingredients, ", ")))
	}

	b.WriteString(divider + "\n")
	if partial {
		b.WriteString(fmt.Sprintf("Found %d partial matches!\n\n", total))
		b.WriteString("💡 Tip: These meals use some of your ingredients. You may need to add more ingredients for a complete meal.")
	} else {
		b.WriteString(fmt.Sprintf("*Found %d meals using your ingredients!*", total))
	}
	return b.String()
}

// buildGenerationPrompt 準備外部生成的提示內容，附上同餐別的參考餐點
func (r *Recommender) buildGenerationPrompt(user common.UserContext, meals []common.Meal, category string) string {
	type contextMeal struct {
		Name        string   `json:"name"`
		Calories    float64  `json:"calories"`
		Ingredients []string `json:"ingredients"`
		Category    string   `json:"category"`
	}

	examples := make([]contextMeal, 0, maxContextMeals)
	for _, m := range meals {
		if !strings.Contains(strings.ToLower(m.Category), strings.ToLower(category)) {
			continue
		}
		examples = append(examples, contextMeal{
			Name:        m.Name,
			Calories:    m.Calories,
			Ingredients: m.Ingredients,
			Category:    m.Category,
		})
		if len(examples) >= maxContextMeals {
			break
		}
	}

	examplesJSON, err := json.MarshalIndent(examples, "", "  ")
	if err != nil {
		examplesJSON = []byte("[]")
	}

	ingredients := strings.Join(user.RequestedIngredients, ", ")
	stateTitle := titleCaser.String(user.State)
	categoryTitle := titleCaser.String(category)

	return fmt.Sprintf(`You are a nutrition expert. Create a realistic %s using these ingredients.

USER INGREDIENTS: %s
MEAL TYPE: %s
DIET: %s
REGION: %s

AVAILABLE %s EXAMPLES (for reference):
%s

INSTRUCTIONS:
1. Create a realistic %s using ONLY the provided ingredients
2. Make it a proper %s that actually exists in %s cuisine
3. Use realistic cooking methods and combinations
4. Don't create fantasy dishes - stick to real Indian %s recipes
5. If ingredients are insufficient, suggest what to add for a complete %s

FORMAT YOUR RESPONSE EXACTLY LIKE THIS:

%s Created from Your Ingredients

Ingredients Used: [list the ingredients you used]
Missing Ingredients: [what you'd need to add for a complete %s]

Recipe:
[Step-by-step cooking instructions for a %s using only the provided ingredients]

Nutritional Info:
Calories: [estimated for %s]
Protein: [estimated]
Carbs: [estimated]

Tips:
[Suggestions for improvement or variations for %s]

Created specifically for your available ingredients as a %s`,
		category, ingredients, category,
		titleCaser.String(common.NormalizeDietType(user.DietType)), stateTitle,
		strings.ToUpper(category), examplesJSON,
		category, category, stateTitle, category, category,
		categoryTitle, category, category, category, category, category)
}

// formatStaticFallback 無配對也無生成能力時的固定回覆
func (r *Recommender) formatStaticFallback(user common.UserContext) string {
	category := requestedCategory(user)

	// 依使用者食材整理同義詞建議
	suggestions := make([]string, 0, maxSuggestions)
	seen := make(map[string]struct{})
	for _, ingredient := range user.RequestedIngredients {
		similar := SynonymsFor(ingredient)
		if len(similar) <= 1 {
			continue
		}
		if len(similar) > 3 {
			similar = similar[:3]
		}
		for _, s := range similar {
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			suggestions = append(suggestions, s)
			if len(suggestions) >= maxSuggestions {
				break
			}
		}
		if len(suggestions) >= maxSuggestions {
			break
		}
	}

	suggestionText := "Try basic ingredients like rice, dal, vegetables"
	if len(suggestions) > 0 {
		suggestionText = strings.Join(suggestions, ", ")
	}

	return fmt.Sprintf(`No Perfect %s Matches Found

Your Ingredients: %s
Meal Type: %s

Suggestions:
1. Add more ingredients - Try adding common items like rice, dal, spices
2. Use regular meal plan - Get complete meal suggestions
3. Try different ingredients - Use more basic ingredients

Common additions for %s in %s %s cuisine:
- Rice, dal, vegetables, spices
- Onions, tomatoes, potatoes
- Oil, salt, turmeric, cumin

Similar ingredients you could try:
%s

Try our regular meal plan feature for complete meal suggestions!`,
		titleCaser.String(category),
		strings.Join(user.RequestedIngredients, ", "),
		titleCaser.String(category),
		category, common.NormalizeDietType(user.DietType), titleCaser.String(user.State),
		suggestionText)
}

// PlanDaily 產生一日餐點計畫，生成能力可用時以目錄餐點為底請外部服務編排
func (r *Recommender) PlanDaily(ctx context.Context, user common.UserContext) string {
	meals := r.assembleCatalog(user)
	if len(meals) == 0 {
		return FallbackPlanMessage()
	}

	if r.ai.Enabled() {
		if text, err := r.generatePlan(ctx, user, meals); err == nil {
			return text
		}
		common.LogWarn("外部生成計畫失敗，改用靜態計畫",
			zap.String("user_id", user.UserID),
		)
	}

	return r.planner.DailyPlan(meals, user)
}

// PlanWeekly 產生七天的餐點計畫
func (r *Recommender) PlanWeekly(user common.UserContext) string {
	meals := r.assembleCatalog(user)
	if len(meals) == 0 {
		return FallbackPlanMessage()
	}
	return r.planner.WeeklyPlan(meals, user)
}

// RegionalFoods 取得地區代表菜色
func (r *Recommender) RegionalFoods(state string) []string {
	return RegionalFoods(state)
}

// generatePlan 以目錄餐點為參考請外部服務產生一日計畫
func (r *Recommender) generatePlan(ctx context.Context, user common.UserContext, meals []common.Meal) (string, error) {
	type contextMeal struct {
		Name         string   `json:"name"`
		Calories     float64  `json:"calories"`
		Carbs        float64  `json:"carbs"`
		Protein      float64  `json:"protein"`
		Fat          float64  `json:"fat"`
		Ingredients  []string `json:"ingredients"`
		Category     string   `json:"category"`
		HealthNote   string   `json:"healthy_tag"`
		MedicalScore int      `json:"medical_score"`
	}

	examples := make([]contextMeal, 0, 15)
	for _, m := range meals {
		examples = append(examples, contextMeal{
			Name:         m.Name,
			Calories:     m.Calories,
			Carbs:        m.Macros.Carbs,
			Protein:      m.Macros.Protein,
			Fat:          m.Macros.Fat,
			Ingredients:  m.Ingredients,
			Category:     m.Category,
			HealthNote:   m.HealthNote,
			MedicalScore: m.MedicalScore,
		})
		if len(examples) >= 15 {
			break
		}
	}

	examplesJSON, err := json.MarshalIndent(examples, "", "  ")
	if err != nil {
		return "", err
	}

	condition := strings.TrimSpace(user.MedicalCondition)
	if condition == "" {
		condition = "None"
	}

	prompt := fmt.Sprintf(`You are a certified nutritionist specializing in therapeutic nutrition. Create an accurate and safe daily meal plan for this user.

USER PROFILE:
Name: %s
Age: %d
Diet: %s
Region: %s
Medical Condition: %s

AVAILABLE MEALS (pre-filtered for safety):
%s

INSTRUCTIONS:
1. ONLY select meals from the provided list
2. Prioritize meals with higher medical_score
3. Create one meal each: Breakfast, Lunch, Dinner, Snack
4. Calculate total calories and nutrients
5. Double-check all selections are safe for %s`,
		displayName(user.Name), user.Age,
		titleCaser.String(common.NormalizeDietType(user.DietType)),
		titleCaser.String(user.State), condition,
		examplesJSON, condition)

	return r.ai.Complete(ctx, "You are a helpful nutrition expert specializing in Indian cuisine.", prompt)
}

// requestedCategory 取使用者指定的餐別，未指定時用通稱
func requestedCategory(user common.UserContext) string {
	category := strings.ToLower(strings.TrimSpace(user.RequestedCategory))
	if category == "" {
		return "meal"
	}
	return category
}
