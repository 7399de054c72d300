package main

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// LikeType is what a swipe on a candidate recorded.
type LikeType string

const (
	LikeTypeLike LikeType = "like"
	LikeTypePass LikeType = "pass"
)

// POST /likes/{profileID} - like or pass on a candidate
func likeProfileHandler(db *sql.DB) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
			return
		}

		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) != 2 || parts[0] != "likes" {
			http.NotFound(w, r)
			return
		}
		targetID, err := uuid.Parse(parts[1])
		if err != nil {
			http.NotFound(w, r)
			return
		}

		likeType := LikeTypeLike
		if r.Body != nil {
			var body struct {
				Type LikeType `json:"type"`
			}
			// An empty body means a plain like.
			if err := json.NewDecoder(r.Body).Decode(&body); err == nil && body.Type != "" {
				if body.Type != LikeTypeLike && body.Type != LikeTypePass {
					writeError(w, http.StatusBadRequest, "invalid_like_type")
					return
				}
				likeType = body.Type
			}
		}

		userID := r.Context().Value(userIDKey).(int)
		seeker, err := loadProfileByUserID(db, userID)
		if err == sql.ErrNoRows {
			writeError(w, http.StatusNotFound, "profile_not_found")
			return
		} else if err != nil {
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}

		if targetID == seeker.ID {
			writeError(w, http.StatusBadRequest, "cannot_like_self")
			return
		}

		var status int
		var errCode string
		isMatch := false
		err = withTx(r.Context(), db, func(tx *sql.Tx) error {
			var discoverable bool
			err := tx.QueryRow("SELECT is_discoverable FROM profiles WHERE id = $1", targetID).Scan(&discoverable)
			if err == sql.ErrNoRows || (err == nil && !discoverable) {
				status, errCode = http.StatusNotFound, "not_found"
				return nil
			} else if err != nil {
				return err
			}

			res, err := tx.Exec(`
				INSERT INTO likes (liker_id, liked_id, like_type)
				VALUES ($1, $2, $3)
				ON CONFLICT (liker_id, liked_id) DO NOTHING
			`, seeker.ID, targetID, likeType)
			if err != nil {
				return err
			}
			if n, _ := res.RowsAffected(); n == 0 {
				status, errCode = http.StatusBadRequest, "already_swiped"
				return nil
			}

			if likeType != LikeTypeLike {
				return nil
			}

			if _, err := tx.Exec(
				"UPDATE profiles SET likes_received_count = likes_received_count + 1 WHERE id = $1",
				targetID,
			); err != nil {
				return err
			}

			// Mutual like means a match
			if err := tx.QueryRow(`
				SELECT EXISTS (
					SELECT 1 FROM likes
					WHERE liker_id = $1 AND liked_id = $2 AND like_type = 'like'
				)
			`, targetID, seeker.ID).Scan(&isMatch); err != nil {
				return err
			}
			if isMatch {
				_, err = tx.Exec(
					"UPDATE profiles SET matches_count = matches_count + 1 WHERE id = $1 OR id = $2",
					seeker.ID, targetID,
				)
				return err
			}
			return nil
		})
		if err != nil {
			logrus.WithError(err).Error("Error recording swipe")
			writeError(w, http.StatusInternalServerError, "like_error")
			return
		}
		if errCode != "" {
			writeError(w, status, errCode)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"type":     likeType,
			"is_match": isMatch,
		})
	})
}

// GET /likes/received - profiles that liked the caller
func likesReceivedHandler(db *sql.DB) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
			return
		}
		userID := r.Context().Value(userIDKey).(int)
		seeker, err := loadProfileByUserID(db, userID)
		if err == sql.ErrNoRows {
			writeError(w, http.StatusNotFound, "profile_not_found")
			return
		} else if err != nil {
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}

		rows, err := db.Query(`
			SELECT liker_id FROM likes
			WHERE liked_id = $1 AND like_type = 'like'
			ORDER BY created_at DESC
		`, seeker.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}
		defer rows.Close()

		var ids []uuid.UUID
		for rows.Next() {
			var id uuid.UUID
			if err := rows.Scan(&id); err == nil {
				ids = append(ids, id)
			}
		}

		profiles := hydrateProfiles(r, db, ids)
		views := make([]map[string]interface{}, 0, len(profiles))
		for _, p := range profiles {
			views = append(views, publicProfile(p))
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"likes": views,
			"total": len(views),
		})
	})
}

// GET /matches/mutual - profiles the caller matched with (mutual likes)
func mutualMatchesHandler(db *sql.DB) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
			return
		}
		userID := r.Context().Value(userIDKey).(int)
		seeker, err := loadProfileByUserID(db, userID)
		if err == sql.ErrNoRows {
			writeError(w, http.StatusNotFound, "profile_not_found")
			return
		} else if err != nil {
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}

		rows, err := db.Query(`
			SELECT l1.liked_id
			FROM likes l1
			JOIN likes l2 ON l2.liker_id = l1.liked_id AND l2.liked_id = l1.liker_id
			WHERE l1.liker_id = $1 AND l1.like_type = 'like' AND l2.like_type = 'like'
			ORDER BY l2.created_at DESC
		`, seeker.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}
		defer rows.Close()

		var ids []uuid.UUID
		for rows.Next() {
			var id uuid.UUID
			if err := rows.Scan(&id); err == nil {
				ids = append(ids, id)
			}
		}

		profiles := hydrateProfiles(r, db, ids)
		views := make([]map[string]interface{}, 0, len(profiles))
		for _, p := range profiles {
			views = append(views, publicProfile(p))
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"matches": views,
			"total":   len(views),
		})
	})
}

// hydrateProfiles resolves profile ids through the request's dataloader so
// repeated ids within a request coalesce into one query. Falls back to
// direct loads when no loader is attached (tests, bare handlers).
func hydrateProfiles(r *http.Request, db *sql.DB, ids []uuid.UUID) []*Profile {
	if len(ids) == 0 {
		return nil
	}

	profiles := make([]*Profile, 0, len(ids))
	if loaders := GetDataLoadersFromContext(r.Context()); loaders != nil {
		results, errs := loaders.ProfileLoader.LoadMany(r.Context(), ids)()
		for i, p := range results {
			if errs != nil && errs[i] != nil {
				logrus.WithError(errs[i]).Warn("Failed to hydrate profile")
				continue
			}
			if p != nil {
				profiles = append(profiles, p)
			}
		}
		return profiles
	}

	for _, id := range ids {
		p, err := loadProfileByID(db, id)
		if err != nil {
			continue
		}
		profiles = append(profiles, p)
	}
	return profiles
}
