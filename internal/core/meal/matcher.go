package meal

import (
	"sort"
	"strings"

	"meal-recommender/internal/pkg/common"
)

// 配對評分的固定權重
const (
	scoreNameContains    = 8  // 使用者食材出現在餐點名稱
	scoreExactIngredient = 10 // 與餐點食材完全相同
	scorePartialMatch    = 5  // 任一方向的子字串比對
	scoreSynonymMatch    = 3  // 同義詞出現在餐點食材
	scoreSynonymInName   = 2  // 同義詞出現在餐點名稱
	scoreCategoryExact   = 15 // 餐別完全符合
	scoreCategoryVariant = 10 // 餐別等價寫法符合
	scoreRegionMatch     = 3  // 地區符合
)

// Match 依食材清單對餐點評分，得分為零者不回傳，結果以分數由高至低排序並去重
func Match(meals []common.Meal, ingredients []string, category, region string) []common.MatchResult {
	wanted := normalizeTerms(ingredients)
	if len(wanted) == 0 {
		return nil
	}

	category = strings.ToLower(strings.TrimSpace(category))
	region = strings.ToLower(strings.TrimSpace(region))

	results := make([]common.MatchResult, 0)
	for _, m := range meals {
		score := scoreMeal(m, wanted, category, region)
		if score <= 0 {
			continue
		}
		results = append(results, common.MatchResult{
			Meal:               m,
			Score:              score,
			MatchedIngredients: matchedIngredients(m, wanted),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return dedupeByName(results)
}

// MatchPartial 較寬鬆的比對：任一食材出現即收，固定給低分
func MatchPartial(meals []common.Meal, ingredients []string) []common.MatchResult {
	wanted := normalizeTerms(ingredients)
	if len(wanted) == 0 {
		return nil
	}

	results := make([]common.MatchResult, 0)
	for _, m := range meals {
		name := strings.ToLower(m.Name)
		for _, ingredient := range wanted {
			if strings.Contains(name, ingredient) || ingredientOverlaps(m, ingredient) {
				results = append(results, common.MatchResult{
					Meal:               m,
					Score:              scorePartialMatch,
					MatchedIngredients: []string{ingredient},
				})
				break
			}
		}
	}

	return dedupeByName(results)
}

// scoreMeal 對單一餐點計分
func scoreMeal(m common.Meal, wanted []string, category, region string) int {
	name := strings.ToLower(m.Name)
	score := 0

	for _, ingredient := range wanted {
		if strings.Contains(name, ingredient) {
			score += scoreNameContains
		}

		synonyms := SynonymsFor(ingredient)
		for _, mealIng := range m.Ingredients {
			mealIng = strings.ToLower(strings.TrimSpace(mealIng))
			switch {
			case mealIng == ingredient:
				score += scoreExactIngredient
			case strings.Contains(mealIng, ingredient) || strings.Contains(ingredient, mealIng):
				score += scorePartialMatch
			case containsAnyTerm(mealIng, synonyms):
				score += scoreSynonymMatch
			}
		}

		if containsAnyTerm(name, synonyms) {
			score += scoreSynonymInName
		}
	}

	if category != "" {
		mealCategory := strings.ToLower(m.Category)
		if strings.Contains(mealCategory, category) {
			score += scoreCategoryExact
		} else if containsAnyTerm(mealCategory, CategoryVariations(category)) {
			score += scoreCategoryVariant
		}
	}

	if region != "" && strings.Contains(strings.ToLower(m.Region), region) {
		score += scoreRegionMatch
	}

	// 病症篩選後的安全分數加倍計入
	score += m.MedicalScore * 2

	return score
}

// matchedIngredients 回傳餐點食材清單裡找得到的使用者食材，
// 只看使用者食材是否包含於餐點食材，反向不算對到
func matchedIngredients(m common.Meal, wanted []string) []string {
	matched := make([]string, 0, len(wanted))
	for _, ingredient := range wanted {
		for _, mealIng := range m.Ingredients {
			if strings.Contains(strings.ToLower(mealIng), ingredient) {
				matched = append(matched, ingredient)
				break
			}
		}
	}
	return matched
}

// ingredientOverlaps 任一方向的子字串比對
func ingredientOverlaps(m common.Meal, ingredient string) bool {
	for _, mealIng := range m.Ingredients {
		mealIng = strings.ToLower(strings.TrimSpace(mealIng))
		if strings.Contains(mealIng, ingredient) || strings.Contains(ingredient, mealIng) {
			return true
		}
	}
	return false
}

// dedupeByName 以標準化名稱去重，保留先出現（分數較高）的那筆
func dedupeByName(results []common.MatchResult) []common.MatchResult {
	seen := make(map[string]struct{}, len(results))
	out := make([]common.MatchResult, 0, len(results))
	for _, r := range results {
		key := r.Meal.NormalizedName()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

// containsAnyTerm 檢查字串是否含清單中任一詞
func containsAnyTerm(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}

// normalizeTerms 小寫並去除空白與空項
func normalizeTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
