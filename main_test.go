package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

// TestUser is an account created by the test helpers.
type TestUser struct {
	ID        int
	ProfileID uuid.UUID
	Email     string
	Password  string
	Token     string
}

// TestMain connects to the test database when TEST_DATABASE_URL is set.
// Without it, db stays nil and database-backed tests skip themselves via
// requireDB; the pure engine tests run either way.
func TestMain(m *testing.M) {
	if dsn := os.Getenv("TEST_DATABASE_URL"); dsn != "" {
		var err error
		db, err = sql.Open("postgres", dsn)
		if err == nil {
			err = db.Ping()
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, "cannot connect to test database:", err)
			os.Exit(1)
		}
	}

	code := m.Run()
	if db != nil {
		db.Close()
	}
	os.Exit(code)
}

func requireDB(t *testing.T) {
	t.Helper()
	if db == nil {
		t.Skip("TEST_DATABASE_URL not set")
	}
}

// createTestUser registers an account through the real handler and returns
// it with a fresh token.
func createTestUser(t *testing.T, email, password string) TestUser {
	t.Helper()

	cleanupTestData(email)

	reqBody := []byte(fmt.Sprintf(`{"email":%q,"password":%q,"name":"Test User"}`, email, password))
	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBuffer(reqBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	registerHandler(db).ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("registration failed for %s: status %d body %s", email, w.Code, w.Body.String())
	}

	var resp struct {
		Token     string    `json:"token"`
		ID        int       `json:"id"`
		ProfileID uuid.UUID `json:"profile_id"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding register response: %v", err)
	}

	return TestUser{
		ID:        resp.ID,
		ProfileID: resp.ProfileID,
		Email:     email,
		Password:  password,
		Token:     resp.Token,
	}
}

// loginUser logs in and returns the JWT token.
func loginUser(t *testing.T, email, password string) string {
	t.Helper()

	reqBody := []byte(fmt.Sprintf(`{"email":%q,"password":%q}`, email, password))
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBuffer(reqBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	loginHandler(db).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("login failed for %s: status %d", email, w.Code)
	}

	var resp map[string]interface{}
	json.NewDecoder(w.Body).Decode(&resp)
	token, ok := resp["token"].(string)
	if !ok {
		t.Fatalf("expected token in login response, got %v", resp)
	}
	return token
}

// updateTestProfile pushes a partial profile edit through the real handler.
func updateTestProfile(t *testing.T, user TestUser, update ProfileUpdate) {
	t.Helper()

	body, err := json.Marshal(update)
	if err != nil {
		t.Fatalf("marshaling profile update: %v", err)
	}

	req := httptest.NewRequest(http.MethodPut, "/me/profile", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+user.Token)
	w := httptest.NewRecorder()

	meProfileHandler(db).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("profile update failed for user %d: status %d body %s", user.ID, w.Code, w.Body.String())
	}
}

// datingTestProfile is a reasonable baseline profile for match tests.
func datingTestProfile() ProfileUpdate {
	return ProfileUpdate{
		Name:      ptr("Test User"),
		Bio:       ptr("Here for the tests"),
		Age:       ptr(30),
		Latitude:  ptr(52.52),
		Longitude: ptr(13.405),
		Hobbies:   []string{"hiking", "reading"},
		Religion:  ptr(ReligionAgnostic),
	}
}

// cleanupTestData removes accounts, profiles and likes for the given emails.
func cleanupTestData(emails ...string) {
	for _, email := range emails {
		db.Exec(`DELETE FROM likes WHERE liker_id IN
			(SELECT p.id FROM profiles p JOIN users u ON u.id = p.user_id WHERE u.email = $1)
			OR liked_id IN
			(SELECT p.id FROM profiles p JOIN users u ON u.id = p.user_id WHERE u.email = $1)`, email)
		db.Exec("DELETE FROM profiles WHERE user_id IN (SELECT id FROM users WHERE email = $1)", email)
		db.Exec("DELETE FROM users WHERE email = $1", email)
	}
}
