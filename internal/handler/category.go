package handler

import (
	"net/http"
	"strconv"
	"strings"

	"finmate/internal/middleware"
	"finmate/internal/models"
	"finmate/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CategoryHandler serves category CRUD.
type CategoryHandler struct {
	DB *gorm.DB
}

func NewCategoryHandler(db *gorm.DB) *CategoryHandler {
	return &CategoryHandler{DB: db}
}

type categoryReq struct {
	Name        string          `json:"name" binding:"required,max=64"`
	Type        string          `json:"type" binding:"required,oneof=income expense"`
	Icon        string          `json:"icon" binding:"max=64"`
	BudgetLimit decimal.Decimal `json:"budget_limit"`
}

type categoryResp struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	Type        string          `json:"type"`
	Icon        string          `json:"icon"`
	BudgetLimit decimal.Decimal `json:"budget_limit"`
}

func toCategoryResp(cat *models.Category) categoryResp {
	return categoryResp{
		ID:          cat.ID,
		Name:        cat.Name,
		Type:        cat.Type,
		Icon:        cat.Icon,
		BudgetLimit: cat.BudgetLimit,
	}
}

func (h *CategoryHandler) List(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	q := h.DB.Where("user_id = ?", user.ID)
	if t := c.Query("type"); t != "" {
		if err := util.ValidateType(t); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "type must be income or expense")
			return
		}
		q = q.Where("type = ?", t)
	}

	var cats []models.Category
	if err := q.Order("id ASC").Find(&cats).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query categories failed")
		return
	}

	items := make([]categoryResp, 0, len(cats))
	for i := range cats {
		items = append(items, toCategoryResp(&cats[i]))
	}

	util.Success(c, util.Response{"categories": items})
}

func (h *CategoryHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	var req categoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "name is required")
		return
	}
	if req.BudgetLimit.IsNegative() {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "budget limit must not be negative")
		return
	}

	cat := models.Category{
		UserID:      user.ID,
		Name:        req.Name,
		Type:        req.Type,
		Icon:        req.Icon,
		BudgetLimit: req.BudgetLimit,
	}
	if err := h.DB.Create(&cat).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "create category failed")
		return
	}

	util.Success(c, util.Response{"category": toCategoryResp(&cat)})
}

func (h *CategoryHandler) Update(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}

	var req categoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "name is required")
		return
	}
	if req.BudgetLimit.IsNegative() {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "budget limit must not be negative")
		return
	}

	// only the owner's category may be touched
	var cat models.Category
	if err := h.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&cat).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "category not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query category failed")
		}
		return
	}

	cat.Name = req.Name
	cat.Type = req.Type
	cat.Icon = req.Icon
	cat.BudgetLimit = req.BudgetLimit

	if err := h.DB.Save(&cat).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "update category failed")
		return
	}

	util.Success(c, util.Response{"category": toCategoryResp(&cat)})
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}

	var cat models.Category
	if err := h.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&cat).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "category not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query category failed")
		}
		return
	}

	// deleting is only safe while no transaction references the category
	var refs int64
	if err := h.DB.Model(&models.Transaction{}).
		Where("category_id = ?", cat.ID).
		Count(&refs).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query transactions failed")
		return
	}
	if refs > 0 {
		util.Error(c, http.StatusConflict, util.CodeConflict, "category still has transactions")
		return
	}

	if err := h.DB.Delete(&cat).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "delete category failed")
		return
	}

	util.Success(c, util.Response{"message": "deleted"})
}
