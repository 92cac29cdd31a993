package catalog

import "meal-recommender/internal/pkg/common"

// FallbackMeals 來源載入失敗時使用的內建餐點，涵蓋各餐別的基本選項
func FallbackMeals() []common.Meal {
	meals := []common.Meal{
		{
			Name:        "Healthy Breakfast Bowl",
			Ingredients: []string{"oats", "milk", "banana", "nuts"},
			Calories:    300,
			Macros:      common.Macros{Carbs: 45, Protein: 12, Fat: 8},
			Category:    "breakfast",
			DietType:    "vegetarian",
			Region:      "All India",
			HealthNote:  "High fiber, good for digestion",
		},
		{
			Name:        "Nutritious Lunch Plate",
			Ingredients: []string{"rice", "dal", "vegetables", "curd"},
			Calories:    450,
			Macros:      common.Macros{Carbs: 65, Protein: 18, Fat: 10},
			Category:    "lunch",
			DietType:    "vegetarian",
			Region:      "All India",
			HealthNote:  "Balanced protein and carbs",
		},
		{
			Name:        "Light Dinner",
			Ingredients: []string{"chapati", "vegetable curry", "salad"},
			Calories:    350,
			Macros:      common.Macros{Carbs: 50, Protein: 12, Fat: 8},
			Category:    "dinner",
			DietType:    "vegetarian",
			Region:      "All India",
			HealthNote:  "Light and easy to digest",
		},
		{
			Name:        "Healthy Snack",
			Ingredients: []string{"roasted chana", "peanuts"},
			Calories:    150,
			Macros:      common.Macros{Carbs: 15, Protein: 8, Fat: 6},
			Category:    "evening snack",
			DietType:    "vegetarian",
			Region:      "All India",
			HealthNote:  "Protein rich snack",
		},
		{
			Name:        "Rice and Dal",
			Ingredients: []string{"rice", "dal", "ghee"},
			Calories:    250,
			Macros:      common.Macros{Carbs: 40, Protein: 10, Fat: 5},
			Category:    "lunch",
			DietType:    "vegetarian",
			Region:      "All India",
			HealthNote:  "Complete protein combination",
		},
		{
			Name:        "Vegetable Curry",
			Ingredients: []string{"mixed vegetables", "spices", "oil"},
			Calories:    180,
			Macros:      common.Macros{Carbs: 20, Protein: 5, Fat: 9},
			Category:    "dinner",
			DietType:    "vegan",
			Region:      "All India",
			HealthNote:  "Rich in vitamins and minerals",
		},
		{
			Name:        "Chapati",
			Ingredients: []string{"wheat flour", "water"},
			Calories:    120,
			Macros:      common.Macros{Carbs: 25, Protein: 4, Fat: 1},
			Category:    "dinner",
			DietType:    "vegan",
			Region:      "All India",
			HealthNote:  "Whole grain staple",
		},
		{
			Name:        "Mixed Vegetable Salad",
			Ingredients: []string{"cucumber", "tomato", "carrot", "lemon"},
			Calories:    80,
			Macros:      common.Macros{Carbs: 12, Protein: 3, Fat: 1},
			Category:    "morning snack",
			DietType:    "vegan",
			Region:      "All India",
			HealthNote:  "Low calorie, high fiber",
		},
	}

	for i := range meals {
		meals[i].CalorieBand = common.CalorieBand(meals[i].Calories)
	}
	return meals
}
