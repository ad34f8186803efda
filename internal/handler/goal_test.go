package handler

import (
	"fmt"
	"net/http"
	"testing"

	"finmate/internal/models"
)

func TestGoalAddMoney_OverTargetNotClamped(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	_, token := createTestUser(t, db, "alice")

	code, envelope := doJSON(t, r, http.MethodPost, "/goals", token, map[string]interface{}{
		"name":          "New laptop",
		"target_amount": "1000000",
	})
	if code != http.StatusOK {
		t.Fatalf("create goal status = %d: %v", code, envelope)
	}
	goalID := uint(dataOf(t, envelope)["goal"].(map[string]interface{})["id"].(float64))

	// deposit 900k then 150k; final amount exceeds the target and stays there
	for _, amount := range []string{"900000", "150000"} {
		code, envelope = doJSON(t, r, http.MethodPost,
			fmt.Sprintf("/goals/%d/add-money", goalID), token,
			map[string]interface{}{"amount": amount})
		if code != http.StatusOK {
			t.Fatalf("add-money status = %d: %v", code, envelope)
		}
	}

	goal := dataOf(t, envelope)["goal"].(map[string]interface{})
	if goal["current_amount"] != "1050000" {
		t.Errorf("current_amount = %v, want 1050000", goal["current_amount"])
	}

	var stored models.SavingsGoal
	if err := db.First(&stored, goalID).Error; err != nil {
		t.Fatalf("reload goal: %v", err)
	}
	if stored.CurrentAmount.String() != "1050000" {
		t.Errorf("stored current_amount = %s, want 1050000", stored.CurrentAmount)
	}
}

func TestGoalAddMoney_RejectsNonPositive(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	_, token := createTestUser(t, db, "alice")

	code, envelope := doJSON(t, r, http.MethodPost, "/goals", token, map[string]interface{}{
		"name":          "Trip",
		"target_amount": "500",
	})
	if code != http.StatusOK {
		t.Fatalf("create goal status = %d: %v", code, envelope)
	}
	goalID := uint(dataOf(t, envelope)["goal"].(map[string]interface{})["id"].(float64))

	for _, amount := range []string{"0", "-10"} {
		code, _ := doJSON(t, r, http.MethodPost,
			fmt.Sprintf("/goals/%d/add-money", goalID), token,
			map[string]interface{}{"amount": amount})
		if code != http.StatusBadRequest {
			t.Errorf("add-money %s status = %d, want 400", amount, code)
		}
	}
}

func TestGoal_OwnershipEnforced(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	_, aliceToken := createTestUser(t, db, "alice")
	_, bobToken := createTestUser(t, db, "bob")

	code, envelope := doJSON(t, r, http.MethodPost, "/goals", aliceToken, map[string]interface{}{
		"name":          "House",
		"target_amount": "1000",
	})
	if code != http.StatusOK {
		t.Fatalf("create goal status = %d: %v", code, envelope)
	}
	goalID := uint(dataOf(t, envelope)["goal"].(map[string]interface{})["id"].(float64))

	// bob cannot deposit into, update or delete alice's goal
	code, _ = doJSON(t, r, http.MethodPost,
		fmt.Sprintf("/goals/%d/add-money", goalID), bobToken,
		map[string]interface{}{"amount": "100"})
	if code != http.StatusNotFound {
		t.Errorf("foreign add-money status = %d, want 404", code)
	}

	code, _ = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/goals/%d", goalID), bobToken, nil)
	if code != http.StatusNotFound {
		t.Errorf("foreign delete status = %d, want 404", code)
	}

	// the row is untouched
	var stored models.SavingsGoal
	if err := db.First(&stored, goalID).Error; err != nil {
		t.Fatalf("goal was altered or deleted: %v", err)
	}
	if stored.CurrentAmount.String() != "0" {
		t.Errorf("current_amount = %s, want 0", stored.CurrentAmount)
	}
}
