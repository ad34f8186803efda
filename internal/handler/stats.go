package handler

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"finmate/internal/middleware"
	"finmate/internal/models"
	"finmate/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StatsHandler serves the reporting endpoints. All views are computed on
// demand from the transactions table, scoped to the caller and a period.
type StatsHandler struct {
	DB *gorm.DB
}

func NewStatsHandler(db *gorm.DB) *StatsHandler {
	return &StatsHandler{DB: db}
}

type periodSummary struct {
	TotalIncome  decimal.Decimal `json:"totalIncome"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
	Balance      decimal.Decimal `json:"balance"`
}

// summarize sums income and expense within [start, end).
// Empty periods yield zeros, never nulls.
func (h *StatsHandler) summarize(userID uint, start, end time.Time) (periodSummary, error) {
	rows := []struct {
		Type  string
		Total decimal.Decimal
	}{}
	err := h.DB.Model(&models.Transaction{}).
		Select("type, COALESCE(SUM(amount), 0) AS total").
		Where("user_id = ? AND transaction_date >= ? AND transaction_date < ?", userID, start, end).
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return periodSummary{}, fmt.Errorf("sum transactions: %w", err)
	}

	s := periodSummary{
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
	}
	for _, r := range rows {
		switch r.Type {
		case "income":
			s.TotalIncome = r.Total
		case "expense":
			s.TotalExpense = r.Total
		}
	}
	s.Balance = s.TotalIncome.Sub(s.TotalExpense)
	return s, nil
}

type categoryBreakdownRow struct {
	CategoryID   uint            `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Icon         string          `json:"icon"`
	Total        decimal.Decimal `json:"total"`
	Count        int64           `json:"count"`
	BudgetLimit  decimal.Decimal `json:"budget_limit"`
}

// breakdown groups one transaction type by category within [start, end),
// largest total first. Expense rows carry the category budget limit so the
// client can render budget-vs-actual.
func (h *StatsHandler) breakdown(userID uint, txType string, start, end time.Time) ([]categoryBreakdownRow, error) {
	var rows []categoryBreakdownRow
	err := h.DB.Model(&models.Transaction{}).
		Select("transactions.category_id AS category_id, "+
			"categories.name AS category_name, "+
			"categories.icon AS icon, "+
			"categories.budget_limit AS budget_limit, "+
			"SUM(transactions.amount) AS total, "+
			"COUNT(*) AS count").
		Joins("JOIN categories ON categories.id = transactions.category_id").
		Where("transactions.user_id = ? AND transactions.type = ?", userID, txType).
		Where("transactions.transaction_date >= ? AND transactions.transaction_date < ?", start, end).
		Group("transactions.category_id, categories.name, categories.icon, categories.budget_limit").
		Order("total DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("category breakdown: %w", err)
	}
	if rows == nil {
		rows = []categoryBreakdownRow{}
	}
	return rows, nil
}

// monthRange returns [first of month, first of next month).
func monthRange(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	return start, start.AddDate(0, 1, 0)
}

func yearRange(year int) (time.Time, time.Time) {
	start := time.Date(year, 1, 1, 0, 0, 0, 0, time.Local)
	return start, start.AddDate(1, 0, 0)
}

// parseMonthYear reads and validates ?month=&year= from the query.
func parseMonthYear(c *gin.Context) (int, int, bool) {
	month, err1 := strconv.Atoi(c.Query("month"))
	year, err2 := strconv.Atoi(c.Query("year"))
	if err1 != nil || err2 != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "month and year are required")
		return 0, 0, false
	}
	if err := util.ValidateMonthYear(month, year); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid month or year")
		return 0, 0, false
	}
	return month, year, true
}

// Summary returns income/expense totals for an exact month.
// GET /transactions/summary?month=3&year=2025
func (h *StatsHandler) Summary(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	month, year, ok := parseMonthYear(c)
	if !ok {
		return
	}

	start, end := monthRange(year, month)
	s, err := h.summarize(user.ID, start, end)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "summary failed")
		return
	}

	util.Success(c, util.Response{
		"totalIncome":  s.TotalIncome,
		"totalExpense": s.TotalExpense,
		"balance":      s.Balance,
	})
}

// Statistics returns the summary plus per-category breakdowns for a period.
// GET /transactions/statistics?periodType=month&year=2025&month=3
// GET /transactions/statistics?periodType=year&year=2025
// GET /transactions/statistics?periodType=week&startDate=...&endDate=...
func (h *StatsHandler) Statistics(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	var start, end time.Time
	switch c.Query("periodType") {
	case "month":
		month, year, ok := parseMonthYear(c)
		if !ok {
			return
		}
		start, end = monthRange(year, month)
	case "year":
		year, err := strconv.Atoi(c.Query("year"))
		if err != nil || year < 1970 || year > 9999 {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid year")
			return
		}
		start, end = yearRange(year)
	case "week":
		s, err1 := util.ParseDate(c.Query("startDate"))
		e, err2 := util.ParseDate(c.Query("endDate"))
		if err1 != nil || err2 != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "startDate and endDate are required")
			return
		}
		start = util.DateOnly(s)
		end = util.DateOnly(e).AddDate(0, 0, 1) // endDate is inclusive
		if !start.Before(end) {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "startDate must not be after endDate")
			return
		}
	default:
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "periodType must be month, year or week")
		return
	}

	summary, err := h.summarize(user.ID, start, end)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "statistics failed")
		return
	}
	expense, err := h.breakdown(user.ID, "expense", start, end)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "statistics failed")
		return
	}
	income, err := h.breakdown(user.ID, "income", start, end)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "statistics failed")
		return
	}

	util.Success(c, util.Response{
		"summary":    summary,
		"byExpense":  expense,
		"byIncome":   income,
		"startDate":  start.Format("2006-01-02"),
		"endDate":    end.AddDate(0, 0, -1).Format("2006-01-02"),
		"periodType": c.Query("periodType"),
	})
}

type dailyNet struct {
	Date string          `json:"date"` // YYYY-MM-DD
	Net  decimal.Decimal `json:"net"`  // income - expense, signed
}

// CalendarView returns the month summary, a signed per-day net for days with
// data, and the month's transactions newest-first.
// GET /transactions/calendar-view?month=3&year=2025
func (h *StatsHandler) CalendarView(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	month, year, ok := parseMonthYear(c)
	if !ok {
		return
	}

	start, end := monthRange(year, month)

	var txs []models.Transaction
	if err := h.DB.Where("user_id = ? AND transaction_date >= ? AND transaction_date < ?",
		user.ID, start, end).
		Order("transaction_date DESC, id DESC").
		Find(&txs).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query transactions failed")
		return
	}

	// per-day net, aggregated in Go
	dayMap := make(map[string]decimal.Decimal)
	summary := periodSummary{TotalIncome: decimal.Zero, TotalExpense: decimal.Zero}
	for i := range txs {
		tx := &txs[i]
		key := tx.TransactionDate.Format("2006-01-02")
		net := dayMap[key]
		if tx.Type == "income" {
			net = net.Add(tx.Amount)
			summary.TotalIncome = summary.TotalIncome.Add(tx.Amount)
		} else {
			net = net.Sub(tx.Amount)
			summary.TotalExpense = summary.TotalExpense.Add(tx.Amount)
		}
		dayMap[key] = net
	}
	summary.Balance = summary.TotalIncome.Sub(summary.TotalExpense)

	days := make([]dailyNet, 0, len(dayMap))
	for date, net := range dayMap {
		days = append(days, dailyNet{Date: date, Net: net})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })

	items := make([]transactionResp, 0, len(txs))
	for i := range txs {
		items = append(items, toTransactionResp(&txs[i]))
	}

	util.Success(c, util.Response{
		"summary":      summary,
		"dailyNet":     days,
		"transactions": items,
	})
}

// TopCategories returns the five largest expense categories of a month,
// for the dashboard pie chart.
// GET /transactions/top-categories?month=3&year=2025
func (h *StatsHandler) TopCategories(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	month, year, ok := parseMonthYear(c)
	if !ok {
		return
	}

	start, end := monthRange(year, month)
	rows, err := h.breakdown(user.ID, "expense", start, end)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "top categories failed")
		return
	}
	if len(rows) > 5 {
		rows = rows[:5]
	}

	util.Success(c, util.Response{"categories": rows})
}

type monthWithData struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// MonthsWithData lists the (year, month) pairs that hold at least one
// transaction, newest first, so the client cannot page into empty months.
// GET /transactions/months-with-data
func (h *StatsHandler) MonthsWithData(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	var dates []time.Time
	if err := h.DB.Model(&models.Transaction{}).
		Where("user_id = ?", user.ID).
		Distinct().
		Pluck("transaction_date", &dates).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query transactions failed")
		return
	}

	seen := make(map[monthWithData]bool)
	months := make([]monthWithData, 0)
	for _, d := range dates {
		m := monthWithData{Year: d.Year(), Month: int(d.Month())}
		if !seen[m] {
			seen[m] = true
			months = append(months, m)
		}
	}
	sort.Slice(months, func(i, j int) bool {
		if months[i].Year != months[j].Year {
			return months[i].Year > months[j].Year
		}
		return months[i].Month > months[j].Month
	})

	util.Success(c, util.Response{"months": months})
}
