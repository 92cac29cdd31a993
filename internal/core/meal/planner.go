package meal

import (
	"fmt"
	"strings"
	"sync"

	"meal-recommender/internal/pkg/common"
)

// maxTrackedUsers 輪替計數器追蹤的使用者上限
const maxTrackedUsers = 1000

// Planner 餐點規劃器，為每位使用者輪替選餐避免重複
type Planner struct {
	mu       sync.Mutex
	counters map[string]int
}

// NewPlanner 建立新的規劃器
func NewPlanner() *Planner {
	return &Planner{
		counters: make(map[string]int),
	}
}

// nextOffset 取得並遞增使用者的輪替位移
func (p *Planner) nextOffset(userID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, tracked := p.counters[userID]; !tracked && len(p.counters) >= maxTrackedUsers {
		// 追蹤人數到頂就整個重置，輪替狀態丟了也無妨
		p.counters = make(map[string]int)
	}

	offset := p.counters[userID]
	p.counters[userID] = (offset + 1) % 1000
	return offset
}

// DailyPlan 產生一日餐點計畫文字
func (p *Planner) DailyPlan(meals []common.Meal, user common.UserContext) string {
	offset := p.nextOffset(user.UserID)

	breakfast := pickByCategory(meals, "breakfast", offset, 0)
	lunch := pickByCategory(meals, "lunch", offset, 1)
	dinner := pickByCategory(meals, "dinner", offset, 2)
	snack := pickSnack(meals, offset)

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s Here's your meal plan, %s!\n\n", greetingForAge(user.Age), displayName(user.Name)))

	if breakfast != nil {
		b.WriteString(fmt.Sprintf("🌅 **BREAKFAST** (7-9 AM)\n%s - %.0f calories\n\n", breakfast.Name, breakfast.Calories))
	}
	if lunch != nil {
		b.WriteString(fmt.Sprintf("☀️ **LUNCH** (12-2 PM)\n%s - %.0f calories\n\n", lunch.Name, lunch.Calories))
	}
	if dinner != nil {
		b.WriteString(fmt.Sprintf("🌙 **DINNER** (7-9 PM)\n%s - %.0f calories\n\n", dinner.Name, dinner.Calories))
	}
	if snack != nil {
		b.WriteString(fmt.Sprintf("🍎 **SNACK** (3-4 PM)\n%s - %.0f calories\n\n", snack.Name, snack.Calories))
	}

	b.WriteString(fmt.Sprintf("💡 All meals are from our %s cuisine database based on your %s preferences!", displayState(user.State), common.NormalizeDietType(user.DietType)))
	return b.String()
}

// WeeklyPlan 產生七天、每天四餐的計畫文字
func (p *Planner) WeeklyPlan(meals []common.Meal, user common.UserContext) string {
	if len(meals) == 0 {
		return FallbackPlanMessage()
	}

	offset := p.nextOffset(user.UserID)

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s Here's your 7-day meal plan, %s!\n\n", greetingForAge(user.Age), displayName(user.Name)))

	for day := 0; day < 7; day++ {
		b.WriteString(fmt.Sprintf("**Day %d**\n", day+1))

		dayOffset := offset + day
		sections := []struct {
			label string
			meal  *common.Meal
		}{
			{"Breakfast", pickByCategory(meals, "breakfast", dayOffset, 0)},
			{"Lunch", pickByCategory(meals, "lunch", dayOffset, 1)},
			{"Dinner", pickByCategory(meals, "dinner", dayOffset, 2)},
			{"Snack", pickSnack(meals, dayOffset)},
		}
		for _, s := range sections {
			if s.meal != nil {
				b.WriteString(fmt.Sprintf("%s: %s - %.0f calories\n", s.label, s.meal.Name, s.meal.Calories))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("💡 All meals are from our %s cuisine database based on your %s preferences!", displayState(user.State), common.NormalizeDietType(user.DietType)))
	return b.String()
}

// FallbackPlanMessage 餐點計畫產生失敗時的固定回覆
func FallbackPlanMessage() string {
	return `🌅 **BREAKFAST** (7-9 AM)
Oats with fruits and nuts - 300 calories

☀️ **LUNCH** (12-2 PM)
Brown rice with dal and vegetables - 450 calories

🌙 **DINNER** (7-9 PM)
Roti with sabzi and salad - 350 calories

🍎 **SNACK** (3-4 PM)
Mixed fruits and nuts - 150 calories

💡 These are healthy fallback meals from our database!`
}

// pickByCategory 依餐別輪替選餐，沒有同餐別餐點時退回整體清單
func pickByCategory(meals []common.Meal, category string, offset, fallbackShift int) *common.Meal {
	pool := make([]common.Meal, 0)
	for _, m := range meals {
		if strings.EqualFold(m.Category, category) {
			pool = append(pool, m)
		}
	}
	if len(pool) > 0 {
		picked := pool[offset%len(pool)]
		return &picked
	}
	if len(meals) > fallbackShift {
		picked := meals[(offset+fallbackShift)%len(meals)]
		return &picked
	}
	return nil
}

// pickSnack 早點與午點視為同一池
func pickSnack(meals []common.Meal, offset int) *common.Meal {
	pool := make([]common.Meal, 0)
	for _, m := range meals {
		c := strings.ToLower(m.Category)
		if c == "morning snack" || c == "evening snack" {
			pool = append(pool, m)
		}
	}
	if len(pool) > 0 {
		picked := pool[offset%len(pool)]
		return &picked
	}
	if len(meals) > 3 {
		picked := meals[(offset+3)%len(meals)]
		return &picked
	}
	return nil
}

// greetingForAge 依年齡決定問候語氣
func greetingForAge(age int) string {
	switch {
	case age < 25:
		return "Hey there! 🌟"
	case age < 40:
		return "Hello! 👋"
	default:
		return "Greetings! 🙏"
	}
}

func displayName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "User"
	}
	return name
}

func displayState(state string) string {
	state = strings.TrimSpace(state)
	if state == "" {
		return "Indian"
	}
	return state
}
