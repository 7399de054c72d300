package main

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultMatchLimit = 20
	maxMatchLimit     = 50
)

// loadCandidatePool is the candidate supplier: every discoverable profile
// except the seeker's own and the ones the seeker has already swiped on.
// Hard filtering and scoring happen in-process, not in SQL.
func loadCandidatePool(db *sql.DB, seeker *Profile) ([]*Profile, error) {
	rows, err := db.Query(`
		SELECT `+profileColumns+`
		FROM profiles p
		WHERE p.id <> $1
		  AND p.is_discoverable = TRUE
		  AND NOT EXISTS (
		      SELECT 1 FROM likes l
		      WHERE l.liker_id = $1 AND l.liked_id = p.id
		  )
	`, seeker.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pool []*Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		pool = append(pool, p)
	}
	return pool, rows.Err()
}

// GET /matches?limit=&offset= - ranked, scored candidates for the caller
func matchesHandler(db *sql.DB) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
			return
		}
		userID := r.Context().Value(userIDKey).(int)
		limit, offset := parsePagination(r)

		seeker, err := loadProfileByUserID(db, userID)
		if err == sql.ErrNoRows {
			writeError(w, http.StatusNotFound, "profile_not_found")
			return
		} else if err != nil {
			logrus.WithError(err).Error("Error loading seeker profile")
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}

		pool, err := loadCandidatePool(db, seeker)
		if err != nil {
			logrus.WithError(err).Error("Error loading candidate pool")
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}

		ranked := findMatches(seeker, pool, time.Now().UTC(), offset, limit)

		matches := make([]map[string]interface{}, 0, len(ranked))
		for _, sc := range ranked {
			matches = append(matches, map[string]interface{}{
				"profile":          publicProfile(sc.Profile),
				"score":            roundScore(sc.Score),
				"match_percentage": roundScore(sc.RawScore),
			})
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"matches": matches,
			"total":   len(matches),
			"limit":   limit,
			"offset":  offset,
		})
	})
}

// GET /matches/count - how many candidates survive the hard filter
func matchCountHandler(db *sql.DB) http.HandlerFunc {
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
			logrus.WithError(err).Error("Error loading seeker profile")
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}

		pool, err := loadCandidatePool(db, seeker)
		if err != nil {
			logrus.WithError(err).Error("Error loading candidate pool")
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}

		writeJSON(w, http.StatusOK, map[string]int{
			"total_matches": len(applyFilters(seeker, pool)),
		})
	})
}

func parsePagination(r *http.Request) (limit, offset int) {
	limit = defaultMatchLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxMatchLimit {
		limit = maxMatchLimit
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			offset = n
		}
	}
	return limit, offset
}
