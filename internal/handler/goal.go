package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"finmate/internal/middleware"
	"finmate/internal/models"
	"finmate/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GoalHandler serves savings-goal CRUD and deposits.
type GoalHandler struct {
	DB *gorm.DB
}

func NewGoalHandler(db *gorm.DB) *GoalHandler {
	return &GoalHandler{DB: db}
}

type goalReq struct {
	Name         string          `json:"name" binding:"required,max=64"`
	TargetAmount decimal.Decimal `json:"target_amount" binding:"required"`
	Deadline     string          `json:"deadline"`
	Color        string          `json:"color" binding:"max=16"`
	Icon         string          `json:"icon" binding:"max=64"`
}

type goalResp struct {
	ID            uint            `json:"id"`
	Name          string          `json:"name"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	Deadline      *string         `json:"deadline"`
	Color         string          `json:"color"`
	Icon          string          `json:"icon"`
	CreatedAt     time.Time       `json:"created_at"`
}

func toGoalResp(g *models.SavingsGoal) goalResp {
	var deadline *string
	if g.Deadline != nil {
		s := g.Deadline.Format("2006-01-02")
		deadline = &s
	}
	return goalResp{
		ID:            g.ID,
		Name:          g.Name,
		TargetAmount:  g.TargetAmount,
		CurrentAmount: g.CurrentAmount,
		Deadline:      deadline,
		Color:         g.Color,
		Icon:          g.Icon,
		CreatedAt:     g.CreatedAt,
	}
}

func parseGoalReq(c *gin.Context) (*goalReq, *time.Time, bool) {
	var req goalReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return nil, nil, false
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "name is required")
		return nil, nil, false
	}
	if err := util.ValidateAmount(req.TargetAmount); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "target amount must be a positive number")
		return nil, nil, false
	}

	var deadline *time.Time
	if req.Deadline != "" {
		d, err := util.ParseDate(req.Deadline)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid deadline")
			return nil, nil, false
		}
		d = util.DateOnly(d)
		deadline = &d
	}
	return &req, deadline, true
}

func (h *GoalHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	req, deadline, ok := parseGoalReq(c)
	if !ok {
		return
	}

	goal := models.SavingsGoal{
		UserID:        user.ID,
		Name:          req.Name,
		TargetAmount:  req.TargetAmount,
		CurrentAmount: decimal.Zero,
		Deadline:      deadline,
		Color:         req.Color,
		Icon:          req.Icon,
	}
	if err := h.DB.Create(&goal).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "create goal failed")
		return
	}

	util.Success(c, util.Response{"goal": toGoalResp(&goal)})
}

func (h *GoalHandler) List(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	var goals []models.SavingsGoal
	if err := h.DB.Where("user_id = ?", user.ID).
		Order("id ASC").
		Find(&goals).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query goals failed")
		return
	}

	items := make([]goalResp, 0, len(goals))
	for i := range goals {
		items = append(items, toGoalResp(&goals[i]))
	}

	util.Success(c, util.Response{"goals": items})
}

func (h *GoalHandler) ownedGoal(c *gin.Context, userID uint) (*models.SavingsGoal, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return nil, false
	}

	var goal models.SavingsGoal
	if err := h.DB.Where("id = ? AND user_id = ?", id, userID).First(&goal).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "goal not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query goal failed")
		}
		return nil, false
	}
	return &goal, true
}

func (h *GoalHandler) Update(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	goal, ok := h.ownedGoal(c, user.ID)
	if !ok {
		return
	}

	req, deadline, ok := parseGoalReq(c)
	if !ok {
		return
	}

	goal.Name = req.Name
	goal.TargetAmount = req.TargetAmount
	goal.Deadline = deadline
	goal.Color = req.Color
	goal.Icon = req.Icon

	if err := h.DB.Save(goal).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "update goal failed")
		return
	}

	util.Success(c, util.Response{"goal": toGoalResp(goal)})
}

func (h *GoalHandler) Delete(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	goal, ok := h.ownedGoal(c, user.ID)
	if !ok {
		return
	}

	if err := h.DB.Delete(goal).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "delete goal failed")
		return
	}

	util.Success(c, util.Response{"message": "deleted"})
}

type addMoneyReq struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// AddMoney deposits into a goal. Over-saving past the target is allowed and
// never clamped.
func (h *GoalHandler) AddMoney(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	goal, ok := h.ownedGoal(c, user.ID)
	if !ok {
		return
	}

	var req addMoneyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	if err := util.ValidateAmount(req.Amount); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "amount must be a positive number")
		return
	}

	goal.CurrentAmount = goal.CurrentAmount.Add(req.Amount)
	if err := h.DB.Model(goal).Update("current_amount", goal.CurrentAmount).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "update goal failed")
		return
	}

	util.Success(c, util.Response{"goal": toGoalResp(goal)})
}
