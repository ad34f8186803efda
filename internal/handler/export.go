package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"finmate/internal/middleware"
	"finmate/internal/models"
	"finmate/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportHandler exports the caller's transactions as CSV or XLSX.
type ExportHandler struct {
	DB *gorm.DB
}

func NewExportHandler(db *gorm.DB) *ExportHandler {
	return &ExportHandler{DB: db}
}

type exportRow struct {
	Type            string
	CategoryName    string
	Amount          string
	Note            string
	TransactionDate time.Time
}

func (h *ExportHandler) fetchRows(userID uint) ([]exportRow, error) {
	var rows []exportRow
	err := h.DB.Model(&models.Transaction{}).
		Select("transactions.type AS type, "+
			"categories.name AS category_name, "+
			"transactions.amount AS amount, "+
			"transactions.note AS note, "+
			"transactions.transaction_date AS transaction_date").
		Joins("JOIN categories ON categories.id = transactions.category_id").
		Where("transactions.user_id = ?", userID).
		Order("transactions.transaction_date DESC, transactions.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	return rows, nil
}

var exportHeader = []string{"Type", "Category", "Amount", "Note", "Date"}

func (r exportRow) record() []string {
	return []string{
		r.Type,
		r.CategoryName,
		r.Amount,
		r.Note,
		r.TransactionDate.Format("2006-01-02"),
	}
}

// ExportCSV writes the caller's transactions as a CSV attachment.
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	rows, err := h.fetchRows(user.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query transactions failed")
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s.csv\"",
		time.Now().Format("20060102")))

	// UTF-8 BOM so Excel detects the encoding
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(exportHeader)
	for _, r := range rows {
		writer.Write(r.record())
	}
}

// ExportXLSX writes the caller's transactions as an Excel workbook.
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	rows, err := h.fetchRows(user.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query transactions failed")
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Transactions"
	f.SetSheetName("Sheet1", sheet)

	for i, title := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, title)
	}
	for rowIdx, r := range rows {
		for colIdx, value := range r.record() {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "write workbook failed")
		return
	}
}
