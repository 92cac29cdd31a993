package meal

import "strings"

// DietRule 單一飲食類型的篩選規則
type DietRule struct {
	Avoid             []string // 食材含任一詞即排除
	Prefer            []string // 食材含任一詞即排到前面
	MaxCarbs          float64  // 大於 0 時套用碳水上限
	PreferFatAbove    float64  // 大於 0 時偏好脂肪高於此值的餐點
	IncludeHealthNote bool     // 是否一併檢查健康備註欄位
}

// dietRules 各飲食類型的規則表，鍵為標準化後的飲食類型
var dietRules = map[string]DietRule{
	"jain": {
		Avoid:             []string{"onion", "garlic", "potato", "egg", "chicken", "fish", "meat", "prawn"},
		IncludeHealthNote: true,
	},
	"vegan": {
		Avoid: []string{"milk", "ghee", "curd", "egg", "meat", "fish", "chicken"},
	},
	"vegetarian": {
		Avoid: []string{"chicken", "fish", "meat", "prawn", "egg"},
	},
	"non-vegetarian": {
		Prefer: []string{"chicken", "fish", "meat", "prawn", "egg"},
	},
	"eggitarian": {
		Avoid:  []string{"chicken", "fish", "meat", "prawn"},
		Prefer: []string{"egg"},
	},
	"keto": {
		MaxCarbs:       20,
		PreferFatAbove: 10,
	},
	"mixed": {},
}

// MedicalRule 單一病症的篩選規則，上限為 0 表示不套用
type MedicalRule struct {
	Keywords    []string
	Avoid       []string
	Prefer      []string
	MaxCalories float64
	MaxCarbs    float64
	MaxProtein  float64
	MaxFat      float64
}

// medicalRules 病症對應的營養規則
var medicalRules = []MedicalRule{
	{
		Keywords:    []string{"diabetes", "diabetic", "blood sugar", "glucose"},
		Avoid:       []string{"high sugar", "refined carbs", "sweet", "jaggery", "honey"},
		Prefer:      []string{"low glycemic", "fiber rich", "complex carbs", "protein"},
		MaxCarbs:    45,
		MaxCalories: 400,
	},
	{
		Keywords:    []string{"thyroid", "hypothyroid", "hyperthyroid"},
		Avoid:       []string{"goitrogenic foods", "raw cabbage", "soy"},
		Prefer:      []string{"iodine rich", "selenium rich", "protein rich"},
		MaxCalories: 500,
	},
	{
		Keywords: []string{"heart", "cardiac", "cardiovascular", "bp", "blood pressure"},
		Avoid:    []string{"high sodium", "fried", "trans fat", "saturated fat"},
		Prefer:   []string{"low sodium", "heart healthy", "omega 3", "fiber"},
		MaxFat:   15,
	},
	{
		Keywords:    []string{"obesity", "overweight", "weight loss"},
		Avoid:       []string{"high calorie", "fried", "sweet"},
		Prefer:      []string{"low calorie", "high protein", "fiber rich"},
		MaxCalories: 300,
	},
	{
		Keywords:    []string{"kidney", "renal", "creatinine"},
		Avoid:       []string{"high protein", "high potassium", "high sodium"},
		Prefer:      []string{"low protein", "low potassium", "low sodium"},
		MaxProtein:  15,
		MaxCalories: 350,
	},
	{
		Keywords:    []string{"liver", "hepatic"},
		Avoid:       []string{"high fat", "fried", "alcohol"},
		Prefer:      []string{"low fat", "protein rich", "antioxidant"},
		MaxFat:      10,
		MaxCalories: 400,
	},
}

// findMedicalRule 以子字串比對找出病症規則，找不到回傳 nil
func findMedicalRule(condition string) *MedicalRule {
	condition = strings.ToLower(strings.TrimSpace(condition))
	if condition == "" || condition == "none" {
		return nil
	}
	for i := range medicalRules {
		for _, keyword := range medicalRules[i].Keywords {
			if strings.Contains(condition, keyword) {
				return &medicalRules[i]
			}
		}
	}
	return nil
}

// synonymGroups 常見食材的同義與變體
var synonymGroups = map[string][]string{
	"rice":       {"basmati", "brown rice", "white rice", "steamed rice", "rice"},
	"dal":        {"lentils", "toor dal", "moong dal", "masoor dal", "urad dal", "dal"},
	"tomato":     {"tomatoes", "tomato puree", "tomato paste", "tomato"},
	"onion":      {"onions", "red onion", "white onion", "onion"},
	"potato":     {"potatoes", "aloo", "baby potatoes", "potato"},
	"egg":        {"eggs", "boiled egg", "fried egg", "egg"},
	"milk":       {"dairy milk", "cow milk", "buffalo milk", "milk"},
	"flour":      {"wheat flour", "atta", "maida", "all purpose flour", "flour"},
	"oil":        {"cooking oil", "vegetable oil", "ghee", "butter", "oil"},
	"spices":     {"salt", "pepper", "turmeric", "cumin", "coriander", "garam masala", "spices"},
	"vegetables": {"carrot", "beans", "peas", "cabbage", "cauliflower", "vegetables"},
	"chicken":    {"chicken", "chicken breast", "chicken thigh", "chicken meat"},
	"fish":       {"fish", "salmon", "tuna", "mackerel", "fish fillet"},
	"bread":      {"bread", "roti", "chapati", "naan", "paratha"},
	"curd":       {"curd", "yogurt", "dahi"},
	"paneer":     {"paneer", "cottage cheese"},
	"cheese":     {"cheese", "cheddar", "mozzarella"},
	"sugar":      {"sugar", "jaggery", "honey", "sweetener"},
	"salt":       {"salt", "namak"},
	"turmeric":   {"turmeric", "haldi", "turmeric powder"},
	"cumin":      {"cumin", "jeera", "cumin seeds"},
	"coriander":  {"coriander", "dhania", "coriander leaves", "coriander powder"},
}

// SynonymsFor 取得食材的同義詞，鍵以雙向子字串比對；沒有同義組時回傳食材本身
func SynonymsFor(ingredient string) []string {
	ingredient = strings.ToLower(strings.TrimSpace(ingredient))
	for key, group := range synonymGroups {
		if strings.Contains(key, ingredient) || strings.Contains(ingredient, key) {
			return group
		}
	}
	return []string{ingredient}
}

// categoryVariations 餐別在目錄中的等價寫法
var categoryVariations = map[string][]string{
	"breakfast": {"breakfast", "morning", "breakfast meal"},
	"lunch":     {"lunch", "afternoon", "lunch meal"},
	"dinner":    {"dinner", "evening", "dinner meal", "night"},
	"snack":     {"snack", "evening snack", "morning snack", "light meal"},
}

// CategoryVariations 取得餐別的等價寫法，未知餐別回傳自身
func CategoryVariations(category string) []string {
	category = strings.ToLower(strings.TrimSpace(category))
	if v, ok := categoryVariations[category]; ok {
		return v
	}
	return []string{category}
}

// regionalFoods 各邦的代表性菜色
var regionalFoods = map[string][]string{
	"maharashtra": {"Poha", "Misal Pav", "Vada Pav", "Puran Poli"},
	"karnataka":   {"Bisi Bele Bath", "Ragi Mudde", "Mangalore Fish Curry"},
	"andhra":      {"Pesarattu", "Gongura Pachadi", "Andhra Chicken Curry"},
	"tamil nadu":  {"Idli", "Dosa", "Sambar", "Rasam"},
	"kerala":      {"Appam", "Kerala Fish Curry", "Puttu"},
	"punjab":      {"Makki Roti", "Sarson Saag", "Butter Chicken"},
	"bengal":      {"Luchi", "Aloo Posto", "Fish Curry"},
	"gujarat":     {"Dhokla", "Khandvi", "Thepla"},
	"rajasthan":   {"Dal Baati", "Gatte ki Sabzi", "Laal Maas"},
}

// RegionalFoods 取得地區代表菜色，未知地區回傳通用建議
func RegionalFoods(state string) []string {
	if foods, ok := regionalFoods[strings.ToLower(strings.TrimSpace(state))]; ok {
		return foods
	}
	return []string{"Healthy Indian Food"}
}
