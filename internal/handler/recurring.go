package handler

import (
	"net/http"
	"strconv"
	"time"

	"finmate/internal/middleware"
	"finmate/internal/models"
	"finmate/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RecurringHandler serves recurring-transaction template CRUD.
type RecurringHandler struct {
	DB *gorm.DB
}

func NewRecurringHandler(db *gorm.DB) *RecurringHandler {
	return &RecurringHandler{DB: db}
}

type recurringReq struct {
	CategoryID uint            `json:"category_id" binding:"required"`
	Type       string          `json:"type" binding:"required,oneof=income expense"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
	Note       string          `json:"note" binding:"max=255"`
	Frequency  string          `json:"frequency" binding:"omitempty,oneof=monthly"`
	StartDate  string          `json:"start_date" binding:"required"`
}

type recurringResp struct {
	ID          uint            `json:"id"`
	CategoryID  uint            `json:"category_id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Note        string          `json:"note"`
	Frequency   string          `json:"frequency"`
	StartDate   string          `json:"start_date"`
	NextRunDate string          `json:"next_run_date"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
}

func toRecurringResp(t *models.RecurringTransaction) recurringResp {
	return recurringResp{
		ID:          t.ID,
		CategoryID:  t.CategoryID,
		Type:        t.Type,
		Amount:      t.Amount,
		Note:        t.Note,
		Frequency:   t.Frequency,
		StartDate:   t.StartDate.Format("2006-01-02"),
		NextRunDate: t.NextRunDate.Format("2006-01-02"),
		IsActive:    t.IsActive,
		CreatedAt:   t.CreatedAt,
	}
}

func (h *RecurringHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	var req recurringReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	if err := util.ValidateAmount(req.Amount); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "amount must be a positive number")
		return
	}

	if _, err := ownedCategory(h.DB, user.ID, req.CategoryID); err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "category not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query category failed")
		}
		return
	}

	startDate, err := util.ParseDate(req.StartDate)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid start_date")
		return
	}
	startDate = util.DateOnly(startDate)

	tpl := models.RecurringTransaction{
		UserID:      user.ID,
		CategoryID:  req.CategoryID,
		Type:        req.Type,
		Amount:      req.Amount,
		Note:        req.Note,
		Frequency:   "monthly",
		StartDate:   startDate,
		NextRunDate: startDate, // first materialization happens on the start date
		IsActive:    true,
	}
	if err := h.DB.Create(&tpl).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "create template failed")
		return
	}

	util.Success(c, util.Response{"recurring": toRecurringResp(&tpl)})
}

func (h *RecurringHandler) List(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	var tpls []models.RecurringTransaction
	if err := h.DB.Where("user_id = ?", user.ID).
		Order("id ASC").
		Find(&tpls).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query templates failed")
		return
	}

	items := make([]recurringResp, 0, len(tpls))
	for i := range tpls {
		items = append(items, toRecurringResp(&tpls[i]))
	}

	util.Success(c, util.Response{"recurring": items})
}

// ownedTemplate loads a template and verifies ownership.
func (h *RecurringHandler) ownedTemplate(c *gin.Context, userID uint) (*models.RecurringTransaction, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return nil, false
	}

	var tpl models.RecurringTransaction
	if err := h.DB.Where("id = ? AND user_id = ?", id, userID).First(&tpl).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "template not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query template failed")
		}
		return nil, false
	}
	return &tpl, true
}

func (h *RecurringHandler) Update(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	tpl, ok := h.ownedTemplate(c, user.ID)
	if !ok {
		return
	}

	var req recurringReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	if err := util.ValidateAmount(req.Amount); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "amount must be a positive number")
		return
	}

	if _, err := ownedCategory(h.DB, user.ID, req.CategoryID); err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "category not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query category failed")
		}
		return
	}

	startDate, err := util.ParseDate(req.StartDate)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid start_date")
		return
	}
	startDate = util.DateOnly(startDate)

	tpl.CategoryID = req.CategoryID
	tpl.Type = req.Type
	tpl.Amount = req.Amount
	tpl.Note = req.Note
	if startDate.After(tpl.StartDate) {
		// moving the start forward defers the next materialization too
		if tpl.NextRunDate.Before(startDate) {
			tpl.NextRunDate = startDate
		}
	}
	tpl.StartDate = startDate

	if err := h.DB.Save(tpl).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "update template failed")
		return
	}

	util.Success(c, util.Response{"recurring": toRecurringResp(tpl)})
}

type toggleReq struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// Toggle flips a template on or off without touching its schedule.
func (h *RecurringHandler) Toggle(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	tpl, ok := h.ownedTemplate(c, user.ID)
	if !ok {
		return
	}

	var req toggleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "is_active is required")
		return
	}

	if err := h.DB.Model(tpl).Update("is_active", *req.IsActive).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "update template failed")
		return
	}
	tpl.IsActive = *req.IsActive

	util.Success(c, util.Response{"recurring": toRecurringResp(tpl)})
}

func (h *RecurringHandler) Delete(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	tpl, ok := h.ownedTemplate(c, user.ID)
	if !ok {
		return
	}

	if err := h.DB.Delete(tpl).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "delete template failed")
		return
	}

	util.Success(c, util.Response{"message": "deleted"})
}
