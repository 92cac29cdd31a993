package common

import (
	"strconv"
	"strings"
)

// Macros 每份餐點的營養素（克）
type Macros struct {
	Carbs   float64 `json:"carbs"`
	Protein float64 `json:"protein"`
	Fat     float64 `json:"fat"`
}

// Meal 標準化後的餐點紀錄
// 目錄載入邊界是唯一的建構點，下游一律使用這個形狀
type Meal struct {
	Name        string   `json:"name"`
	Ingredients []string `json:"ingredients"`
	Calories    float64  `json:"calories"`
	Macros      Macros   `json:"macros"`
	Category    string   `json:"category"`
	DietType    string   `json:"diet_type"`
	Region      string   `json:"region,omitempty"`
	HealthNote  string   `json:"health_note,omitempty"`
	CalorieBand string   `json:"calorie_band,omitempty"`

	// MedicalScore 由醫療過濾暫時賦值，不屬於餐點身份，也不序列化
	MedicalScore int `json:"-"`
}

// NormalizedName 去重用的標準化名稱
func (m Meal) NormalizedName() string {
	return NormalizeName(m.Name)
}

// HasIngredient 檢查餐點食材是否包含指定子字串（大小寫不敏感）
func (m Meal) HasIngredient(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return false
	}
	for _, ing := range m.Ingredients {
		if strings.Contains(strings.ToLower(ing), term) {
			return true
		}
	}
	return false
}

var nameNormalizer = strings.NewReplacer(" ", "", "\t", "", "-", "", "+", "")

// NormalizeName 將餐點名稱轉為去重鍵：小寫並移除空白與 - / + 符號
// 兩個標準化名稱相同的餐點視為重複，無論來源檔案為何
func NormalizeName(name string) string {
	return nameNormalizer.Replace(strings.ToLower(strings.TrimSpace(name)))
}

// Query 目錄查詢簽名，同時作為有界快取的鍵
type Query struct {
	Source     string `json:"source"`
	DietType   string `json:"diet_type,omitempty"`
	Category   string `json:"category,omitempty"`
	MaxResults int    `json:"max_results"`
}

// Key 將標準化後的查詢欄位串接為快取鍵
func (q Query) Key() string {
	return strings.Join([]string{
		strings.ToLower(strings.TrimSpace(q.Source)),
		strings.ToLower(strings.TrimSpace(q.DietType)),
		strings.ToLower(strings.TrimSpace(q.Category)),
		strconv.Itoa(q.MaxResults),
	}, "_")
}

// MatchResult 單一餐點的配對結果，評分流程結束後即丟棄，不持久化
type MatchResult struct {
	Meal               Meal     `json:"meal"`
	Score              int      `json:"score"`
	MatchedIngredients []string `json:"matched_ingredients"`
}

// UserContext 使用者請求內容，核心只讀取、不修改也不保存
type UserContext struct {
	UserID               string   `json:"user_id"`
	Name                 string   `json:"name"`
	Age                  int      `json:"age"`
	DietType             string   `json:"diet_type"`
	MedicalCondition     string   `json:"medical_condition"`
	State                string   `json:"state"`
	RequestedIngredients []string `json:"ingredients"`
	RequestedCategory    string   `json:"meal_type"`
}

// AllowedDietTypes 允許的飲食類型集合（皆為小寫）
var AllowedDietTypes = map[string]struct{}{
	"vegetarian": {}, "veg": {}, "non-vegetarian": {}, "non-veg": {},
	"vegan": {}, "keto": {}, "eggitarian": {}, "jain": {}, "mixed": {},
	"paleo": {}, "mediterranean": {}, "dash": {}, "low-carb": {},
	"high-protein": {}, "balanced": {},
}

// AllowedCategories 允許的餐點類別集合（皆為小寫）
var AllowedCategories = map[string]struct{}{
	"breakfast": {}, "lunch": {}, "dinner": {}, "snack": {},
	"morning snack": {}, "evening snack": {}, "day total": {},
}

// NormalizeDietType 統一飲食類型寫法：小寫並展開同義縮寫
func NormalizeDietType(diet string) string {
	diet = strings.ToLower(strings.TrimSpace(diet))
	switch diet {
	case "veg":
		return "vegetarian"
	case "non-veg":
		return "non-vegetarian"
	}
	return diet
}

// NormalizeCategory 統一餐點類別寫法
func NormalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}

// IsAllowedDietType 檢查飲食類型是否在允許集合內
func IsAllowedDietType(diet string) bool {
	diet = strings.ToLower(strings.TrimSpace(diet))
	if diet == "" {
		return false
	}
	if _, ok := AllowedDietTypes[diet]; ok {
		return true
	}
	_, ok := AllowedDietTypes[NormalizeDietType(diet)]
	return ok
}

// IsAllowedCategory 檢查餐點類別是否在允許集合內
func IsAllowedCategory(category string) bool {
	_, ok := AllowedCategories[NormalizeCategory(category)]
	return ok
}

// SplitIngredients 將逗號分隔的食材欄位切成標準化的有序序列
func SplitIngredients(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// 卡路里分級的固定門檻
const (
	calorieBandLowMax    = 200
	calorieBandMediumMax = 500
)

// CalorieBand 由卡路里推導 low/medium/high 標籤
func CalorieBand(calories float64) string {
	switch {
	case calories < calorieBandLowMax:
		return "low"
	case calories < calorieBandMediumMax:
		return "medium"
	default:
		return "high"
	}
}
