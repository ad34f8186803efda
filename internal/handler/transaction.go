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

// TransactionHandler serves transaction CRUD.
type TransactionHandler struct {
	DB *gorm.DB
}

func NewTransactionHandler(db *gorm.DB) *TransactionHandler {
	return &TransactionHandler{DB: db}
}

type transactionReq struct {
	CategoryID      uint            `json:"category_id" binding:"required"`
	Type            string          `json:"type" binding:"required,oneof=income expense"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	Note            string          `json:"note" binding:"max=255"`
	TransactionDate string          `json:"transaction_date"`
}

type transactionResp struct {
	ID              uint            `json:"id"`
	CategoryID      uint            `json:"category_id"`
	Type            string          `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	Note            string          `json:"note"`
	TransactionDate time.Time       `json:"transaction_date"`
	CreatedAt       time.Time       `json:"created_at"`
}

func toTransactionResp(tx *models.Transaction) transactionResp {
	return transactionResp{
		ID:              tx.ID,
		CategoryID:      tx.CategoryID,
		Type:            tx.Type,
		Amount:          tx.Amount,
		Note:            tx.Note,
		TransactionDate: tx.TransactionDate,
		CreatedAt:       tx.CreatedAt,
	}
}

// ownedCategory loads a category and verifies it belongs to the user.
func ownedCategory(db *gorm.DB, userID, categoryID uint) (*models.Category, error) {
	var cat models.Category
	if err := db.Where("id = ? AND user_id = ?", categoryID, userID).First(&cat).Error; err != nil {
		return nil, err
	}
	return &cat, nil
}

func (h *TransactionHandler) validateReq(c *gin.Context, userID uint, req *transactionReq) (time.Time, bool) {
	if err := util.ValidateAmount(req.Amount); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "amount must be a positive number")
		return time.Time{}, false
	}

	if _, err := ownedCategory(h.DB, userID, req.CategoryID); err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "category not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query category failed")
		}
		return time.Time{}, false
	}

	txDate := util.DateOnly(time.Now())
	if req.TransactionDate != "" {
		parsed, err := util.ParseDate(req.TransactionDate)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid transaction_date")
			return time.Time{}, false
		}
		txDate = util.DateOnly(parsed)
	}
	return txDate, true
}

func (h *TransactionHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	var req transactionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	txDate, ok := h.validateReq(c, user.ID, &req)
	if !ok {
		return
	}

	tx := models.Transaction{
		UserID:          user.ID,
		CategoryID:      req.CategoryID,
		Type:            req.Type,
		Amount:          req.Amount,
		Note:            req.Note,
		TransactionDate: txDate,
	}
	if err := h.DB.Create(&tx).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "create transaction failed")
		return
	}

	util.Success(c, util.Response{"transaction": toTransactionResp(&tx)})
}

func (h *TransactionHandler) List(c *gin.Context) {
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

	// ?category_ids=1,4,9
	if raw := c.Query("category_ids"); raw != "" {
		var ids []uint
		for _, p := range strings.Split(raw, ",") {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			id, err := strconv.Atoi(p)
			if err != nil || id <= 0 {
				util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid category_ids")
				return
			}
			ids = append(ids, uint(id))
		}
		if len(ids) > 0 {
			q = q.Where("category_id IN ?", ids)
		}
	}

	limit := 0
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid limit")
			return
		}
		if n > 500 {
			n = 500
		}
		limit = n
	}

	var txs []models.Transaction
	q = q.Order("transaction_date DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&txs).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query transactions failed")
		return
	}

	items := make([]transactionResp, 0, len(txs))
	for i := range txs {
		items = append(items, toTransactionResp(&txs[i]))
	}

	util.Success(c, util.Response{"transactions": items})
}

func (h *TransactionHandler) Update(c *gin.Context) {
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

	var req transactionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	var tx models.Transaction
	if err := h.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&tx).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "transaction not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query transaction failed")
		}
		return
	}

	txDate, ok := h.validateReq(c, user.ID, &req)
	if !ok {
		return
	}

	tx.CategoryID = req.CategoryID
	tx.Type = req.Type
	tx.Amount = req.Amount
	tx.Note = req.Note
	tx.TransactionDate = txDate

	if err := h.DB.Save(&tx).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "update transaction failed")
		return
	}

	util.Success(c, util.Response{"transaction": toTransactionResp(&tx)})
}

func (h *TransactionHandler) Delete(c *gin.Context) {
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

	res := h.DB.Where("id = ? AND user_id = ?", id, user.ID).Delete(&models.Transaction{})
	if res.Error != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "delete transaction failed")
		return
	}
	if res.RowsAffected == 0 {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "transaction not found")
		return
	}

	util.Success(c, util.Response{"message": "deleted"})
}
