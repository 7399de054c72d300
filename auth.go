package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// UserIDKey is the key type for storing user ID in context
type UserIDKey string

const userIDKey UserIDKey = "userID"

func registerHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
			return
		}

		type RegisterRequest struct {
			Email    string `json:"email"`
			Password string `json:"password"`
			Name     string `json:"name"`
		}

		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json")
			return
		}

		req.Email = strings.TrimSpace(req.Email)
		req.Password = strings.TrimSpace(req.Password)
		if req.Email == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "missing_fields")
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "hash_error")
			logrus.WithError(err).Error("Error hashing password")
			return
		}

		var newID int
		profileID := uuid.New()
		err = withTx(r.Context(), db, func(tx *sql.Tx) error {
			if err := tx.QueryRow(
				"INSERT INTO users (email, password_hash) VALUES ($1, $2) RETURNING id",
				req.Email, string(hashedPassword),
			).Scan(&newID); err != nil {
				return err
			}
			// Every account starts with an empty, discoverable profile row.
			_, err := tx.Exec(
				"INSERT INTO profiles (id, user_id, name, last_active_at) VALUES ($1, $2, $3, NOW())",
				profileID, newID, req.Name,
			)
			return err
		})
		if err != nil {
			if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
				writeError(w, http.StatusConflict, "email_exists")
				return
			}
			writeError(w, http.StatusInternalServerError, "register_error")
			logrus.WithError(err).Error("Error saving user to database")
			return
		}

		tokenString, err := issueToken(newID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "token_generation_error")
			logrus.WithError(err).Error("Error generating token for new user")
			return
		}

		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"token":      tokenString,
			"id":         newID,
			"profile_id": profileID,
		})
	}
}

func loginHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
			return
		}

		type LoginRequest struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}

		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json")
			return
		}

		req.Email = strings.TrimSpace(req.Email)
		req.Password = strings.TrimSpace(req.Password)
		if req.Email == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "missing_fields")
			return
		}

		var userID int
		var passwordHash string
		err := db.QueryRow("SELECT id, password_hash FROM users WHERE email = $1", req.Email).Scan(&userID, &passwordHash)
		if err == sql.ErrNoRows {
			writeError(w, http.StatusUnauthorized, "invalid_credentials")
			return
		} else if err != nil {
			logrus.WithError(err).Error("Error querying user")
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)); err != nil {
			writeError(w, http.StatusUnauthorized, "invalid_credentials")
			return
		}

		// Logging in counts as activity for the recency boost
		if _, err := db.Exec("UPDATE profiles SET last_active_at = NOW() WHERE user_id = $1", userID); err != nil {
			logrus.WithError(err).Warn("Failed to update last_active_at on login")
		}

		tokenString, err := issueToken(userID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "token_generation_error")
			logrus.WithError(err).Error("Error generating token")
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{"token": tokenString, "id": userID})
	}
}

// GET /me - the authenticated account plus its profile id
func meHandler(db *sql.DB) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value(userIDKey).(int)

		var email string
		var profileID uuid.UUID
		err := db.QueryRow(`
			SELECT u.email, p.id
			FROM users u
			JOIN profiles p ON p.user_id = u.id
			WHERE u.id = $1
		`, userID).Scan(&email, &profileID)
		if err == sql.ErrNoRows {
			writeError(w, http.StatusNotFound, "not_found")
			return
		} else if err != nil {
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"id":         userID,
			"email":      email,
			"profile_id": profileID,
		})
	})
}

func issueToken(userID int) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"expires": time.Now().Add(24 * time.Hour).Unix(),
	})
	return token.SignedString(jwtSecret)
}

func authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := getUserIDFromBearer(r)
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	}
}

func getUserIDFromBearer(r *http.Request) (int, bool) {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return 0, false
	}
	return parseUserIDFromJWT(strings.TrimPrefix(auth, "Bearer "))
}

// getUserIDFromRequest also accepts a token query param, because browsers
// cannot set headers on websocket handshakes.
func getUserIDFromRequest(r *http.Request) (int, bool) {
	if id, ok := getUserIDFromBearer(r); ok {
		return id, true
	}
	if q := r.URL.Query().Get("token"); q != "" {
		return parseUserIDFromJWT(q)
	}
	return 0, false
}

func parseUserIDFromJWT(tokenStr string) (int, bool) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return 0, false
	}
	userID, ok := claims["user_id"].(float64)
	if !ok {
		return 0, false
	}
	return int(userID), true
}
