package handler

import (
	"net/http"
	"testing"
)

func TestRegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)

	code, envelope := doJSON(t, r, http.MethodPost, "/users/register", "", map[string]interface{}{
		"username":         "alice_01",
		"password":         "Sup3rSecret",
		"confirm_password": "Sup3rSecret",
		"display_name":     "Alice",
	})
	if code != http.StatusOK {
		t.Fatalf("register status = %d: %v", code, envelope)
	}

	code, envelope = doJSON(t, r, http.MethodPost, "/users/login", "", map[string]interface{}{
		"username": "alice_01",
		"password": "Sup3rSecret",
	})
	if code != http.StatusOK {
		t.Fatalf("login status = %d: %v", code, envelope)
	}
	data := dataOf(t, envelope)
	token, ok := data["token"].(string)
	if !ok || token == "" {
		t.Fatalf("login returned no token: %v", data)
	}

	// the token opens protected endpoints
	code, _ = doJSON(t, r, http.MethodGet, "/transactions", token, nil)
	if code != http.StatusOK {
		t.Errorf("protected endpoint status = %d, want 200", code)
	}
}

func TestRegister_Validation(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)

	cases := []struct {
		name string
		body map[string]interface{}
		want int
	}{
		{"short username", map[string]interface{}{
			"username": "ab", "password": "Sup3rSecret", "confirm_password": "Sup3rSecret",
		}, http.StatusBadRequest},
		{"weak password", map[string]interface{}{
			"username": "alice_01", "password": "password", "confirm_password": "password",
		}, http.StatusBadRequest},
		{"mismatched confirm", map[string]interface{}{
			"username": "alice_01", "password": "Sup3rSecret", "confirm_password": "Different1",
		}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		code, _ := doJSON(t, r, http.MethodPost, "/users/register", "", tc.body)
		if code != tc.want {
			t.Errorf("%s: status = %d, want %d", tc.name, code, tc.want)
		}
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)

	body := map[string]interface{}{
		"username":         "alice_01",
		"password":         "Sup3rSecret",
		"confirm_password": "Sup3rSecret",
	}
	code, _ := doJSON(t, r, http.MethodPost, "/users/register", "", body)
	if code != http.StatusOK {
		t.Fatalf("first register status = %d", code)
	}

	// same name, different case
	body["username"] = "ALICE_01"
	code, _ = doJSON(t, r, http.MethodPost, "/users/register", "", body)
	if code != http.StatusConflict {
		t.Errorf("duplicate register status = %d, want 409", code)
	}
}

func TestProtectedEndpointsRequireToken(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)

	code, _ := doJSON(t, r, http.MethodGet, "/transactions", "", nil)
	if code != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want 401", code)
	}

	code, _ = doJSON(t, r, http.MethodGet, "/transactions", "not-a-jwt", nil)
	if code != http.StatusUnauthorized {
		t.Errorf("bad token status = %d, want 401", code)
	}
}
