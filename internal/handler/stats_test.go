package handler

import (
	"net/http"
	"strconv"
	"testing"
	"time"
)

func TestSummary_MarchScenario(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	user, token := createTestUser(t, db, "alice")

	food := createTestCategory(t, db, user.ID, "Food", "expense")
	salary := createTestCategory(t, db, user.ID, "Salary", "income")

	createTestTransaction(t, db, user.ID, food.ID, "expense", "50000", localDate(2025, time.March, 10))
	createTestTransaction(t, db, user.ID, food.ID, "expense", "30000", localDate(2025, time.March, 20))
	createTestTransaction(t, db, user.ID, salary.ID, "income", "2000000", localDate(2025, time.March, 1))
	// outside the window, must not count
	createTestTransaction(t, db, user.ID, food.ID, "expense", "99999", localDate(2025, time.April, 1))

	code, envelope := doJSON(t, r, http.MethodGet, "/transactions/summary?month=3&year=2025", token, nil)
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %v", code, envelope)
	}

	data := dataOf(t, envelope)
	if got := data["totalIncome"]; got != "2000000" {
		t.Errorf("totalIncome = %v, want 2000000", got)
	}
	if got := data["totalExpense"]; got != "80000" {
		t.Errorf("totalExpense = %v, want 80000", got)
	}
	if got := data["balance"]; got != "1920000" {
		t.Errorf("balance = %v, want 1920000", got)
	}
}

func TestSummary_EmptyPeriodIsZero(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	_, token := createTestUser(t, db, "bob")

	code, envelope := doJSON(t, r, http.MethodGet, "/transactions/summary?month=1&year=2030", token, nil)
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %v", code, envelope)
	}

	data := dataOf(t, envelope)
	if data["totalIncome"] != "0" || data["totalExpense"] != "0" || data["balance"] != "0" {
		t.Errorf("empty period = %v, want all zeros", data)
	}
}

func TestSummary_RejectsBadParams(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	_, token := createTestUser(t, db, "carol")

	paths := []string{
		"/transactions/summary",
		"/transactions/summary?month=3",
		"/transactions/summary?month=13&year=2025",
		"/transactions/summary?month=abc&year=2025",
	}
	for _, path := range paths {
		code, _ := doJSON(t, r, http.MethodGet, path, token, nil)
		if code != http.StatusBadRequest {
			t.Errorf("GET %s status = %d, want 400", path, code)
		}
	}
}

func TestSummary_ScopedToOwner(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	alice, _ := createTestUser(t, db, "alice")
	_, bobToken := createTestUser(t, db, "bob")

	cat := createTestCategory(t, db, alice.ID, "Food", "expense")
	createTestTransaction(t, db, alice.ID, cat.ID, "expense", "500", localDate(2025, time.March, 5))

	code, envelope := doJSON(t, r, http.MethodGet, "/transactions/summary?month=3&year=2025", bobToken, nil)
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	data := dataOf(t, envelope)
	if data["totalExpense"] != "0" {
		t.Errorf("bob sees alice's expense: %v", data)
	}
}

func TestStatistics_MonthBreakdown(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	user, token := createTestUser(t, db, "alice")

	food := createTestCategory(t, db, user.ID, "Food", "expense")
	travel := createTestCategory(t, db, user.ID, "Travel", "expense")

	createTestTransaction(t, db, user.ID, food.ID, "expense", "100", localDate(2025, time.March, 3))
	createTestTransaction(t, db, user.ID, food.ID, "expense", "200", localDate(2025, time.March, 4))
	createTestTransaction(t, db, user.ID, travel.ID, "expense", "500", localDate(2025, time.March, 5))

	code, envelope := doJSON(t, r, http.MethodGet,
		"/transactions/statistics?periodType=month&month=3&year=2025", token, nil)
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %v", code, envelope)
	}

	data := dataOf(t, envelope)
	rows, ok := data["byExpense"].([]interface{})
	if !ok || len(rows) != 2 {
		t.Fatalf("byExpense = %v, want 2 rows", data["byExpense"])
	}

	// ordered by total descending: Travel 500 first
	first := rows[0].(map[string]interface{})
	if first["category_name"] != "Travel" {
		t.Errorf("first category = %v, want Travel", first["category_name"])
	}
	second := rows[1].(map[string]interface{})
	if second["category_name"] != "Food" {
		t.Errorf("second category = %v, want Food", second["category_name"])
	}
	if second["count"] != float64(2) {
		t.Errorf("Food count = %v, want 2", second["count"])
	}
}

func TestStatistics_WeekRange(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	user, token := createTestUser(t, db, "alice")
	cat := createTestCategory(t, db, user.ID, "Food", "expense")

	createTestTransaction(t, db, user.ID, cat.ID, "expense", "10", localDate(2025, time.March, 10))
	createTestTransaction(t, db, user.ID, cat.ID, "expense", "20", localDate(2025, time.March, 16)) // endDate inclusive
	createTestTransaction(t, db, user.ID, cat.ID, "expense", "40", localDate(2025, time.March, 17)) // outside

	code, envelope := doJSON(t, r, http.MethodGet,
		"/transactions/statistics?periodType=week&startDate=2025-03-10&endDate=2025-03-16", token, nil)
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %v", code, envelope)
	}

	data := dataOf(t, envelope)
	summary := data["summary"].(map[string]interface{})
	if summary["totalExpense"] != "30" {
		t.Errorf("totalExpense = %v, want 30", summary["totalExpense"])
	}
}

func TestStatistics_RejectsUnknownPeriodType(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	_, token := createTestUser(t, db, "alice")

	code, _ := doJSON(t, r, http.MethodGet, "/transactions/statistics?periodType=decade&year=2025", token, nil)
	if code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", code)
	}
}

func TestCalendarView(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	user, token := createTestUser(t, db, "alice")

	food := createTestCategory(t, db, user.ID, "Food", "expense")
	salary := createTestCategory(t, db, user.ID, "Salary", "income")

	createTestTransaction(t, db, user.ID, salary.ID, "income", "1000", localDate(2025, time.March, 5))
	createTestTransaction(t, db, user.ID, food.ID, "expense", "300", localDate(2025, time.March, 5))
	createTestTransaction(t, db, user.ID, food.ID, "expense", "50", localDate(2025, time.March, 9))

	code, envelope := doJSON(t, r, http.MethodGet, "/transactions/calendar-view?month=3&year=2025", token, nil)
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %v", code, envelope)
	}

	data := dataOf(t, envelope)

	days, ok := data["dailyNet"].([]interface{})
	if !ok || len(days) != 2 {
		t.Fatalf("dailyNet = %v, want 2 days", data["dailyNet"])
	}
	day5 := days[0].(map[string]interface{})
	if day5["date"] != "2025-03-05" || day5["net"] != "700" {
		t.Errorf("day5 = %v, want 2025-03-05 net 700", day5)
	}
	day9 := days[1].(map[string]interface{})
	if day9["date"] != "2025-03-09" || day9["net"] != "-50" {
		t.Errorf("day9 = %v, want 2025-03-09 net -50", day9)
	}

	txs, ok := data["transactions"].([]interface{})
	if !ok || len(txs) != 3 {
		t.Fatalf("transactions = %v, want 3 rows", data["transactions"])
	}

	summary := data["summary"].(map[string]interface{})
	if summary["balance"] != "650" {
		t.Errorf("balance = %v, want 650", summary["balance"])
	}
}

func TestTopCategories_LimitsToFive(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	user, token := createTestUser(t, db, "alice")

	names := []string{"A", "B", "C", "D", "E", "F", "G"}
	for i, name := range names {
		cat := createTestCategory(t, db, user.ID, name, "expense")
		amount := strconv.Itoa((i + 1) * 100) // distinct totals, G largest
		createTestTransaction(t, db, user.ID, cat.ID, "expense", amount, localDate(2025, time.March, 5))
	}

	code, envelope := doJSON(t, r, http.MethodGet, "/transactions/top-categories?month=3&year=2025", token, nil)
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %v", code, envelope)
	}

	data := dataOf(t, envelope)
	rows, ok := data["categories"].([]interface{})
	if !ok || len(rows) != 5 {
		t.Fatalf("categories = %v, want 5 rows", data["categories"])
	}
	first := rows[0].(map[string]interface{})
	if first["category_name"] != "G" {
		t.Errorf("first category = %v, want G", first["category_name"])
	}
}

func TestMonthsWithData(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	user, token := createTestUser(t, db, "alice")
	cat := createTestCategory(t, db, user.ID, "Food", "expense")

	createTestTransaction(t, db, user.ID, cat.ID, "expense", "10", localDate(2025, time.January, 5))
	createTestTransaction(t, db, user.ID, cat.ID, "expense", "10", localDate(2025, time.January, 20))
	createTestTransaction(t, db, user.ID, cat.ID, "expense", "10", localDate(2025, time.March, 5))
	createTestTransaction(t, db, user.ID, cat.ID, "expense", "10", localDate(2024, time.December, 31))

	code, envelope := doJSON(t, r, http.MethodGet, "/transactions/months-with-data", token, nil)
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %v", code, envelope)
	}

	data := dataOf(t, envelope)
	months, ok := data["months"].([]interface{})
	if !ok || len(months) != 3 {
		t.Fatalf("months = %v, want 3 entries", data["months"])
	}

	want := []struct{ year, month float64 }{
		{2025, 3},
		{2025, 1},
		{2024, 12},
	}
	for i, w := range want {
		m := months[i].(map[string]interface{})
		if m["year"] != w.year || m["month"] != w.month {
			t.Errorf("months[%d] = %v, want %v-%v", i, m, w.year, w.month)
		}
	}
}
