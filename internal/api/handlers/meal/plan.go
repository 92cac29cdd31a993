package meal

import (
	"net/http"

	"meal-recommender/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PlanRequest 餐點計畫請求，不需要食材清單
type PlanRequest struct {
	UserID           string `json:"user_id,omitempty"`
	Name             string `json:"name,omitempty"`
	Age              int    `json:"age,omitempty"`
	DietType         string `json:"diet_type,omitempty"`
	MedicalCondition string `json:"medical_condition,omitempty"`
	State            string `json:"state,omitempty"`
}

// HandlePlanDaily 產生一日餐點計畫
func (h *Handler) HandlePlanDaily(c *gin.Context) {
	user, ok := bindPlanRequest(c)
	if !ok {
		return
	}

	text := h.recommender.PlanDaily(c.Request.Context(), user)
	c.JSON(http.StatusOK, RecommendResponse{Text: text})
}

// HandlePlanWeekly 產生七日餐點計畫
func (h *Handler) HandlePlanWeekly(c *gin.Context) {
	user, ok := bindPlanRequest(c)
	if !ok {
		return
	}

	text := h.recommender.PlanWeekly(user)
	c.JSON(http.StatusOK, RecommendResponse{Text: text})
}

// bindPlanRequest 解析並驗證計畫請求，失敗時直接寫入錯誤回覆
func bindPlanRequest(c *gin.Context) (common.UserContext, bool) {
	requestID := ensureRequestID(c)

	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogError("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return common.UserContext{}, false
	}

	user, err := buildUserContext(userFields{
		UserID:           req.UserID,
		Name:             req.Name,
		Age:              req.Age,
		DietType:         req.DietType,
		MedicalCondition: req.MedicalCondition,
		State:            req.State,
	})
	if err != nil {
		common.LogWarn("請求欄位驗證失敗",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": common.ErrCodeInvalidRequest})
		return common.UserContext{}, false
	}

	common.LogInfo("開始處理餐點計畫請求",
		zap.String("request_id", requestID),
		zap.String("user_id", user.UserID),
		zap.String("diet_type", user.DietType),
	)
	return user, true
}
