package meal

import (
	"net/http"
	"strings"

	mealService "meal-recommender/internal/core/meal"
	"meal-recommender/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxFieldLength 單一請求欄位的長度上限
const maxFieldLength = 1000

// RecommendRequest 食材推薦請求
type RecommendRequest struct {
	UserID           string `json:"user_id,omitempty"`
	Name             string `json:"name,omitempty"`
	Age              int    `json:"age,omitempty"`
	Ingredients      string `json:"ingredients" binding:"required"` // 逗號分隔的食材清單
	MealType         string `json:"meal_type,omitempty"`
	DietType         string `json:"diet_type,omitempty"`
	MedicalCondition string `json:"medical_condition,omitempty"`
	State            string `json:"state,omitempty"`
}

// RecommendResponse 推薦回覆
type RecommendResponse struct {
	Text string `json:"text"`
}

// Handler 餐點推薦處理程序
type Handler struct {
	recommender *mealService.Recommender
}

// NewHandler 創建新的餐點推薦處理程序
func NewHandler(recommender *mealService.Recommender) *Handler {
	return &Handler{
		recommender: recommender,
	}
}

// HandleRecommend 依食材推薦餐點
func (h *Handler) HandleRecommend(c *gin.Context) {
	requestID := ensureRequestID(c)

	common.LogInfo("開始處理餐點推薦請求",
		zap.String("request_id", requestID),
		zap.String("client_ip", c.ClientIP()),
	)

	var req RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogError("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	user, err := buildUserContext(userFields{
		UserID:           req.UserID,
		Name:             req.Name,
		Age:              req.Age,
		DietType:         req.DietType,
		MedicalCondition: req.MedicalCondition,
		State:            req.State,
		Ingredients:      req.Ingredients,
		MealType:         req.MealType,
	})
	if err != nil {
		common.LogWarn("請求欄位驗證失敗",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": common.ErrCodeInvalidRequest})
		return
	}

	if len(user.RequestedIngredients) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one ingredient is required"})
		return
	}

	text := h.recommender.Recommend(c.Request.Context(), user)

	common.LogInfo("餐點推薦完成",
		zap.String("request_id", requestID),
		zap.String("user_id", user.UserID),
		zap.Int("ingredient_count", len(user.RequestedIngredients)),
	)
	c.JSON(http.StatusOK, RecommendResponse{Text: text})
}

// HandleRegionalFoods 取得地區代表菜色
func (h *Handler) HandleRegionalFoods(c *gin.Context) {
	state := strings.TrimSpace(c.Query("state"))
	if state == "" || len(state) > maxFieldLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter state is required"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"state": state,
		"foods": h.recommender.RegionalFoods(state),
	})
}

// userFields 各端點共用的使用者欄位
type userFields struct {
	UserID           string
	Name             string
	Age              int
	DietType         string
	MedicalCondition string
	State            string
	Ingredients      string
	MealType         string
}

// buildUserContext 驗證並組合使用者請求內容
func buildUserContext(f userFields) (common.UserContext, error) {
	for _, field := range []string{f.UserID, f.Name, f.DietType, f.MedicalCondition, f.State, f.Ingredients, f.MealType} {
		if len(field) > maxFieldLength {
			return common.UserContext{}, common.NewValidationError("field exceeds length limit")
		}
	}

	if f.Age < 0 || f.Age > 120 {
		return common.UserContext{}, common.NewValidationError("age out of range")
	}

	// 無法辨識的偏好記警告後忽略，請求照常處理
	if f.DietType != "" && !common.IsAllowedDietType(f.DietType) {
		common.LogWarn("忽略未知的飲食類型",
			zap.String("diet_type", f.DietType),
			zap.String("code", common.ErrCodeUnknownPreference),
		)
		f.DietType = ""
	}

	if f.MealType != "" && !common.IsAllowedCategory(f.MealType) {
		common.LogWarn("忽略未知的餐點類別",
			zap.String("meal_type", f.MealType),
			zap.String("code", common.ErrCodeUnknownPreference),
		)
		f.MealType = ""
	}

	userID := strings.TrimSpace(f.UserID)
	if userID == "" {
		userID = uuid.New().String()
	}

	return common.UserContext{
		UserID:               userID,
		Name:                 strings.TrimSpace(f.Name),
		Age:                  f.Age,
		DietType:             common.NormalizeDietType(f.DietType),
		MedicalCondition:     strings.TrimSpace(f.MedicalCondition),
		State:                strings.ToLower(strings.TrimSpace(f.State)),
		RequestedIngredients: common.SplitIngredients(f.Ingredients),
		RequestedCategory:    common.NormalizeCategory(f.MealType),
	}, nil
}

// ensureRequestID 確保每個請求都有 request ID
func ensureRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.New().String()
		c.Header("X-Request-ID", requestID)
	}
	return requestID
}
