package catalog

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"meal-recommender/internal/infrastructure/config"
	"meal-recommender/internal/pkg/common"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
)

// sourceFiles 已知地區對應的目錄檔案
var sourceFiles = map[string]string{
	"maharashtra": "maharastra.csv",
	"karnataka":   "karnataka.csv",
	"andhra":      "andhra_dishes.json",
}

// denyPatterns 欄位內容不允許出現的片段（皆以小寫比對）
var denyPatterns = []string{"<script", "javascript:", "<iframe", "onerror=", "<object"}

// Loader 餐點目錄載入器，負責讀檔、解析、驗證與快取
type Loader struct {
	config *config.Config
	cache  *Cache
}

// NewLoader 建立新的目錄載入器
func NewLoader(cfg *config.Config, cache *Cache) *Loader {
	return &Loader{
		config: cfg,
		cache:  cache,
	}
}

// Load 依查詢條件載入餐點，任何失敗都退回內建餐點，不回傳錯誤
func (l *Loader) Load(q common.Query) []common.Meal {
	q = l.normalizeQuery(q)

	key := q.Key()
	if cached, ok := l.cache.Get(key); ok {
		return cached
	}

	meals, err := l.loadSource(q.Source)
	if err != nil {
		common.LogWarn("目錄來源載入失敗，改用內建餐點",
			zap.String("source", q.Source),
			zap.Error(err),
		)
		// 失敗時清空快取，避免殘留半套狀態
		l.cache.Clear()
		return l.applyQuery(FallbackMeals(), q)
	}

	result := l.applyQuery(meals, q)
	l.cache.Put(key, result)

	common.LogInfo("目錄載入完成",
		zap.String("source", q.Source),
		zap.Int("total_rows", len(meals)),
		zap.Int("returned", len(result)),
	)
	return result
}

// normalizeQuery 標準化查詢欄位，未知的篩選值記警告後忽略
func (l *Loader) normalizeQuery(q common.Query) common.Query {
	q.Source = strings.ToLower(strings.TrimSpace(q.Source))
	if q.Source == "" {
		q.Source = l.config.Catalog.DefaultSource
	}

	if q.DietType != "" {
		if common.IsAllowedDietType(q.DietType) {
			q.DietType = common.NormalizeDietType(q.DietType)
		} else {
			common.LogWarn("忽略未知的飲食類型篩選",
				zap.String("diet_type", q.DietType),
			)
			q.DietType = ""
		}
	}

	if q.Category != "" {
		if common.IsAllowedCategory(q.Category) {
			q.Category = common.NormalizeCategory(q.Category)
		} else {
			common.LogWarn("忽略未知的餐點類別篩選",
				zap.String("category", q.Category),
			)
			q.Category = ""
		}
	}

	if q.MaxResults <= 0 || q.MaxResults > l.config.Catalog.MaxResults {
		q.MaxResults = l.config.Catalog.MaxResults
	}
	return q
}

// applyQuery 套用飲食與類別篩選並截斷結果
func (l *Loader) applyQuery(meals []common.Meal, q common.Query) []common.Meal {
	out := make([]common.Meal, 0, len(meals))
	for _, m := range meals {
		if q.DietType != "" && common.NormalizeDietType(m.DietType) != q.DietType {
			continue
		}
		if q.Category != "" && !categoryMatches(m.Category, q.Category) {
			continue
		}
		out = append(out, m)
		if len(out) >= q.MaxResults {
			break
		}
	}
	return out
}

// categoryMatches 比對餐點類別，snack 視為涵蓋早點與午點
func categoryMatches(mealCategory, want string) bool {
	got := common.NormalizeCategory(mealCategory)
	if got == want {
		return true
	}
	if want == "snack" {
		return got == "morning snack" || got == "evening snack"
	}
	return false
}

// loadSource 讀取並解析單一來源檔案
func (l *Loader) loadSource(source string) ([]common.Meal, error) {
	filename, ok := sourceFiles[source]
	if !ok {
		common.LogWarn("未知的目錄來源，改用預設來源",
			zap.String("source", source),
			zap.String("default", l.config.Catalog.DefaultSource),
		)
		source = l.config.Catalog.DefaultSource
		filename, ok = sourceFiles[source]
		if !ok {
			return nil, fmt.Errorf("no catalog file for default source %q", source)
		}
	}

	path := filepath.Join(l.config.Catalog.Dir, filename)

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat catalog file: %w", err)
	}
	if info.Size() > l.config.Catalog.MaxFileBytes {
		return nil, fmt.Errorf("catalog file %s exceeds size limit (%d bytes)", filename, info.Size())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	// 來源檔偶有 Windows-1252 編碼，無效 UTF-8 時重新解碼一次
	if !utf8.Valid(data) {
		decoded, decErr := charmap.Windows1252.NewDecoder().Bytes(data)
		if decErr != nil {
			return nil, fmt.Errorf("decode catalog file: %w", decErr)
		}
		common.LogWarn("目錄檔案非 UTF-8，已用 Windows-1252 重新解碼",
			zap.String("file", filename),
		)
		data = decoded
	}

	var meals []common.Meal
	switch filepath.Ext(filename) {
	case ".csv":
		meals, err = l.parseCSV(data, source)
	case ".json":
		meals, err = l.parseJSON(data, source)
	default:
		return nil, fmt.Errorf("unsupported catalog format: %s", filename)
	}
	if err != nil {
		return nil, err
	}
	if len(meals) == 0 {
		return nil, fmt.Errorf("catalog file %s contains no usable meals", filename)
	}
	return meals, nil
}

// CSV 欄位標題
const (
	colDietType    = "diet type"
	colMeal        = "meal"
	colDishCombo   = "dish combo"
	colIngredients = "ingredients (per serving)"
	colCalories    = "calories (kcal)"
	colCarbs       = "carbs (g)"
	colProtein     = "protein (g)"
	colFat         = "fat (g)"
	colHealthyTag  = "healthy tag"
)

// parseCSV 解析 CSV 目錄，標題列決定欄位位置
func (l *Loader) parseCSV(data []byte, source string) ([]common.Meal, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{colDishCombo, colCalories} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("csv missing required column %q", required)
		}
	}

	field := func(record []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	meals := make([]common.Meal, 0)
	invalid := 0
	rows := 0

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			invalid++
			if invalid > l.config.Catalog.MaxInvalidRows {
				return nil, fmt.Errorf("too many invalid rows (%d)", invalid)
			}
			continue
		}

		rows++
		if rows > l.config.Catalog.MaxRows {
			common.LogWarn("目錄列數超過上限，其餘列忽略",
				zap.Int("max_rows", l.config.Catalog.MaxRows),
			)
			break
		}

		meal := common.Meal{
			Name:        field(record, colDishCombo),
			Ingredients: common.SplitIngredients(field(record, colIngredients)),
			Calories:    parseFloat(field(record, colCalories)),
			Macros: common.Macros{
				Carbs:   parseFloat(field(record, colCarbs)),
				Protein: parseFloat(field(record, colProtein)),
				Fat:     parseFloat(field(record, colFat)),
			},
			Category:   common.NormalizeCategory(field(record, colMeal)),
			DietType:   common.NormalizeDietType(field(record, colDietType)),
			Region:     source,
			HealthNote: field(record, colHealthyTag),
		}

		if err := validateMeal(&meal); err != nil {
			invalid++
			common.LogDebug("略過無效的目錄列",
				zap.String("name", meal.Name),
				zap.Error(err),
			)
			if invalid > l.config.Catalog.MaxInvalidRows {
				return nil, fmt.Errorf("too many invalid rows (%d)", invalid)
			}
			continue
		}
		meals = append(meals, meal)
	}

	return meals, nil
}

// jsonDish 寬鬆的 JSON 餐點結構，同一概念的不同欄位名都收
type jsonDish struct {
	DishName        string          `json:"DishName"`
	FoodItem        string          `json:"Food Item"`
	MainIngredients json.RawMessage `json:"MainIngredients"`
	Ingredients     json.RawMessage `json:"Ingredients"`
	Calories        json.RawMessage `json:"Calories"`
	ApproxCalories  json.RawMessage `json:"approx_calories"`
	Carbs           json.RawMessage `json:"Carbs"`
	Protein         json.RawMessage `json:"Protein"`
	Fat             json.RawMessage `json:"Fat"`
	HealthBenefits  string          `json:"HealthBenefits"`
	Category        string          `json:"Category"`
	Region          string          `json:"Region"`
	SpecialNote     string          `json:"SpecialNote"`
}

// jsonCatalog 巢狀 JSON 目錄：飲食類型 -> 餐別 -> 餐點列表
type jsonCatalog struct {
	DietTypes map[string]map[string][]jsonDish `json:"DietTypes"`
}

// parseJSON 解析 JSON 目錄，支援巢狀與平面兩種結構
func (l *Loader) parseJSON(data []byte, source string) ([]common.Meal, error) {
	var nested jsonCatalog
	if err := common.ParseJSONBytes(data, &nested); err == nil && len(nested.DietTypes) > 0 {
		return l.collectNested(nested, source)
	}

	var flat []jsonDish
	if err := common.ParseJSONBytes(data, &flat); err != nil {
		// 再試一層 Items 包裝
		var wrapped struct {
			Items []jsonDish `json:"items"`
		}
		if err := common.ParseJSONBytes(data, &wrapped); err != nil || len(wrapped.Items) == 0 {
			return nil, fmt.Errorf("unrecognized json catalog layout")
		}
		flat = wrapped.Items
	}

	meals := make([]common.Meal, 0, len(flat))
	invalid := 0
	for i, dish := range flat {
		if i >= l.config.Catalog.MaxRows {
			break
		}
		meal := dish.toMeal("", "", source)
		if err := validateMeal(&meal); err != nil {
			invalid++
			if invalid > l.config.Catalog.MaxInvalidRows {
				return nil, fmt.Errorf("too many invalid rows (%d)", invalid)
			}
			continue
		}
		meals = append(meals, meal)
	}
	return meals, nil
}

// collectNested 展平巢狀結構，外層鍵補進餐點欄位
func (l *Loader) collectNested(catalog jsonCatalog, source string) ([]common.Meal, error) {
	meals := make([]common.Meal, 0)
	invalid := 0
	rows := 0

	for dietType, categories := range catalog.DietTypes {
		for category, dishes := range categories {
			for _, dish := range dishes {
				rows++
				if rows > l.config.Catalog.MaxRows {
					return meals, nil
				}
				meal := dish.toMeal(dietType, category, source)
				if err := validateMeal(&meal); err != nil {
					invalid++
					if invalid > l.config.Catalog.MaxInvalidRows {
						return nil, fmt.Errorf("too many invalid rows (%d)", invalid)
					}
					continue
				}
				meals = append(meals, meal)
			}
		}
	}
	return meals, nil
}

// toMeal 將寬鬆 JSON 餐點轉為標準餐點，外層鍵優先權低於餐點自帶欄位
func (d jsonDish) toMeal(dietType, category, source string) common.Meal {
	name := d.DishName
	if name == "" {
		name = d.FoodItem
	}

	ingredients := rawToStrings(d.MainIngredients)
	if len(ingredients) == 0 {
		ingredients = rawToStrings(d.Ingredients)
	}

	calories := rawToFloat(d.Calories)
	if calories == 0 {
		calories = rawToFloat(d.ApproxCalories)
	}

	mealCategory := d.Category
	if mealCategory == "" {
		mealCategory = category
	}
	region := d.Region
	if region == "" {
		region = source
	}
	note := d.HealthBenefits
	if note == "" {
		note = d.SpecialNote
	}

	return common.Meal{
		Name:        strings.TrimSpace(name),
		Ingredients: ingredients,
		Calories:    calories,
		Macros: common.Macros{
			Carbs:   rawToFloat(d.Carbs),
			Protein: rawToFloat(d.Protein),
			Fat:     rawToFloat(d.Fat),
		},
		Category:   common.NormalizeCategory(mealCategory),
		DietType:   common.NormalizeDietType(dietType),
		Region:     region,
		HealthNote: strings.TrimSpace(note),
	}
}

// rawToStrings 將字串或字串陣列欄位統一轉成序列
func rawToStrings(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		out := make([]string, 0, len(list))
		for _, s := range list {
			s = strings.TrimSpace(s)
			if s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return common.SplitIngredients(single)
	}
	return nil
}

// rawToFloat 將數字或帶單位字串欄位轉成浮點數
func rawToFloat(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return num
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return parseFloat(s)
	}
	return 0
}

// parseFloat 解析可能帶單位或雜訊的數字欄位
func parseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	// 取開頭的數字片段，像 "450 kcal" 或 "45g"
	end := 0
	for end < len(s) && (s[end] == '.' || s[end] == '-' || (s[end] >= '0' && s[end] <= '9')) {
		end++
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0
	}
	return f
}

// 單一欄位長度上限與卡路里上限
const (
	maxFieldLength = 1000
	maxCalories    = 2000
)

// validateMeal 驗證單筆餐點並補上衍生欄位
func validateMeal(m *common.Meal) error {
	if m.Name == "" {
		return fmt.Errorf("missing name")
	}
	if len(m.Ingredients) == 0 {
		return fmt.Errorf("missing ingredients")
	}
	if m.Calories <= 0 || m.Calories > maxCalories {
		return fmt.Errorf("calories out of range: %g", m.Calories)
	}

	fields := append([]string{m.Name, m.HealthNote, m.Category, m.Region}, m.Ingredients...)
	for _, f := range fields {
		if len(f) > maxFieldLength {
			return fmt.Errorf("field exceeds length limit")
		}
		lower := strings.ToLower(f)
		for _, pattern := range denyPatterns {
			if strings.Contains(lower, pattern) {
				return fmt.Errorf("field contains disallowed content")
			}
		}
	}

	m.CalorieBand = common.CalorieBand(m.Calories)
	return nil
}
