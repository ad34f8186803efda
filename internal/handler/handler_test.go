package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"finmate/internal/database"
	"finmate/internal/middleware"
	"finmate/internal/models"
	"finmate/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testJWTSecret = "test-secret"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// newTestRouter wires the data routes behind real auth middleware.
func newTestRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	authHandler := NewAuthHandler(db, testJWTSecret, 24, 4) // low bcrypt cost for tests
	r.POST("/users/register", authHandler.Register)
	r.POST("/users/login", authHandler.Login)

	protected := r.Group("")
	protected.Use(middleware.AuthMiddleware(testJWTSecret, db))

	categoryHandler := NewCategoryHandler(db)
	protected.GET("/categories", categoryHandler.List)
	protected.POST("/categories", categoryHandler.Create)
	protected.PUT("/categories/:id", categoryHandler.Update)
	protected.DELETE("/categories/:id", categoryHandler.Delete)

	txHandler := NewTransactionHandler(db)
	statsHandler := NewStatsHandler(db)
	tx := protected.Group("/transactions")
	tx.GET("/summary", statsHandler.Summary)
	tx.GET("/statistics", statsHandler.Statistics)
	tx.GET("/calendar-view", statsHandler.CalendarView)
	tx.GET("/top-categories", statsHandler.TopCategories)
	tx.GET("/months-with-data", statsHandler.MonthsWithData)
	tx.GET("", txHandler.List)
	tx.POST("", txHandler.Create)
	tx.PUT("/:id", txHandler.Update)
	tx.DELETE("/:id", txHandler.Delete)

	goalHandler := NewGoalHandler(db)
	goals := protected.Group("/goals")
	goals.GET("", goalHandler.List)
	goals.POST("", goalHandler.Create)
	goals.PUT("/:id", goalHandler.Update)
	goals.DELETE("/:id", goalHandler.Delete)
	goals.POST("/:id/add-money", goalHandler.AddMoney)

	return r
}

func createTestUser(t *testing.T, db *gorm.DB, username string) (*models.User, string) {
	t.Helper()
	user := models.User{
		Username:     username,
		PasswordHash: "unused",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create test user: %v", err)
	}
	token, err := util.GenerateToken(testJWTSecret, user.ID, time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return &user, token
}

func createTestCategory(t *testing.T, db *gorm.DB, userID uint, name, catType string) *models.Category {
	t.Helper()
	cat := models.Category{
		UserID: userID,
		Name:   name,
		Type:   catType,
	}
	if err := db.Create(&cat).Error; err != nil {
		t.Fatalf("create test category: %v", err)
	}
	return &cat
}

func createTestTransaction(t *testing.T, db *gorm.DB, userID, categoryID uint, txType, amount string, date time.Time) *models.Transaction {
	t.Helper()
	amt, err := decimal.NewFromString(amount)
	if err != nil {
		t.Fatalf("parse amount %q: %v", amount, err)
	}
	tx := models.Transaction{
		UserID:          userID,
		CategoryID:      categoryID,
		Type:            txType,
		Amount:          amt,
		TransactionDate: date,
	}
	if err := db.Create(&tx).Error; err != nil {
		t.Fatalf("create test transaction: %v", err)
	}
	return &tx
}

// doJSON performs an authenticated request and decodes the envelope.
func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var envelope map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return w.Code, envelope
}

func dataOf(t *testing.T, envelope map[string]interface{}) map[string]interface{} {
	t.Helper()
	data, ok := envelope["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("response has no data object: %v", envelope)
	}
	return data
}

func localDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.Local)
}
