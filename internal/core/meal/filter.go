package meal

import (
	"sort"
	"strings"

	"meal-recommender/internal/pkg/common"

	"go.uber.org/zap"
)

// ApplyPreferences 依飲食類型與病症篩選餐點。
// 未知的病症不過濾（寧可多給也不誤擋），已知病症會附帶營養上限並填入 MedicalScore。
func ApplyPreferences(meals []common.Meal, dietType, medicalCondition string) []common.Meal {
	meals = applyDietRule(meals, dietType)
	return applyMedicalRule(meals, medicalCondition)
}

// applyDietRule 套用飲食類型規則，偏好的餐點排到前面
func applyDietRule(meals []common.Meal, dietType string) []common.Meal {
	rule, ok := dietRules[common.NormalizeDietType(dietType)]
	if !ok {
		return meals
	}

	preferred := make([]common.Meal, 0)
	rest := make([]common.Meal, 0)

	for _, m := range meals {
		if ingredientsContainAny(m, rule.Avoid, rule.IncludeHealthNote) {
			continue
		}
		if rule.MaxCarbs > 0 && m.Macros.Carbs > rule.MaxCarbs {
			continue
		}

		switch {
		case len(rule.Prefer) > 0 && ingredientsContainAny(m, rule.Prefer, false):
			preferred = append(preferred, m)
		case rule.PreferFatAbove > 0 && m.Macros.Fat > rule.PreferFatAbove:
			preferred = append(preferred, m)
		default:
			rest = append(rest, m)
		}
	}

	return append(preferred, rest...)
}

// applyMedicalRule 套用病症規則，未知病症記警告後放行全部餐點
func applyMedicalRule(meals []common.Meal, condition string) []common.Meal {
	trimmed := strings.ToLower(strings.TrimSpace(condition))
	if trimmed == "" || trimmed == "none" {
		return meals
	}

	rule := findMedicalRule(condition)
	if rule == nil {
		common.LogWarn("未知的病症，略過醫療篩選",
			zap.String("condition", condition),
		)
		return meals
	}

	filtered := make([]common.Meal, 0, len(meals))
	for _, m := range meals {
		if mealContainsAny(m, rule.Avoid) {
			continue
		}
		if rule.MaxCalories > 0 && m.Calories > rule.MaxCalories {
			continue
		}
		if rule.MaxCarbs > 0 && m.Macros.Carbs > rule.MaxCarbs {
			continue
		}
		if rule.MaxProtein > 0 && m.Macros.Protein > rule.MaxProtein {
			continue
		}
		if rule.MaxFat > 0 && m.Macros.Fat > rule.MaxFat {
			continue
		}

		m.MedicalScore = medicalScore(m, rule)
		filtered = append(filtered, m)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].MedicalScore > filtered[j].MedicalScore
	})

	common.LogInfo("醫療篩選完成",
		zap.String("condition", condition),
		zap.Int("before", len(meals)),
		zap.Int("after", len(filtered)),
	)
	return filtered
}

// medicalScore 偏好詞出現在名稱 +5、出現在食材 +3
func medicalScore(m common.Meal, rule *MedicalRule) int {
	name := strings.ToLower(m.Name)
	score := 0
	for _, prefer := range rule.Prefer {
		if strings.Contains(name, prefer) {
			score += 5
		}
		for _, ing := range m.Ingredients {
			if strings.Contains(strings.ToLower(ing), prefer) {
				score += 3
			}
		}
	}
	return score
}

// ingredientsContainAny 飲食規則只看食材欄位，餐點名稱不算數，
// withNote 時連健康備註一起查
func ingredientsContainAny(m common.Meal, terms []string, withNote bool) bool {
	if len(terms) == 0 {
		return false
	}
	note := strings.ToLower(m.HealthNote)
	for _, term := range terms {
		if withNote && strings.Contains(note, term) {
			return true
		}
		for _, ing := range m.Ingredients {
			if strings.Contains(strings.ToLower(ing), term) {
				return true
			}
		}
	}
	return false
}

// mealContainsAny 檢查名稱與食材是否含任一詞，病症規則用這個範圍
func mealContainsAny(m common.Meal, terms []string) bool {
	if len(terms) == 0 {
		return false
	}
	name := strings.ToLower(m.Name)
	for _, term := range terms {
		if strings.Contains(name, term) {
			return true
		}
		for _, ing := range m.Ingredients {
			if strings.Contains(strings.ToLower(ing), term) {
				return true
			}
		}
	}
	return false
}
