package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// profileColumns is the canonical column list for loading a Profile.
// Keep the order in lockstep with scanProfile.
const profileColumns = `p.id, p.user_id, p.name, p.bio,
	p.age, p.gender, p.height_cm, p.body_type, p.current_city, p.latitude, p.longitude,
	p.relationship_status, p.relationship_type_seeking, p.dating_goals_timeline,
	p.occupation, p.education_level, p.field_of_study,
	p.drinking_habit, p.smoking_habit, p.exercise_frequency, p.diet_preference,
	p.children_status, p.pet_preference,
	p.religion, p.life_values,
	p.personality_type, p.lifestyle_preference, p.communication_style,
	p.hobbies, p.interests, p.favorite_activities,
	p.preferred_age_min, p.preferred_age_max, p.preferred_genders, p.preferred_relationship_types,
	p.max_distance_km, p.deal_breakers, p.must_haves, p.match_weights,
	p.profile_completion, p.last_active_at, p.is_verified, p.is_discoverable,
	p.created_at, p.updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProfile(s rowScanner) (*Profile, error) {
	var p Profile
	var (
		age, heightCm, prefAgeMin, prefAgeMax, maxDistance   sql.NullInt64
		gender, bodyType, city, relStatus, relSeeking, goals sql.NullString
		occupation, education, fieldOfStudy                  sql.NullString
		drinking, smoking, exercise, diet                    sql.NullString
		children, pets, religion                             sql.NullString
		personality, lifestyle, communication                sql.NullString
		lat, lon                                             sql.NullFloat64
		weightsRaw                                           []byte
		lastActive                                           sql.NullTime
	)

	err := s.Scan(
		&p.ID, &p.UserID, &p.Name, &p.Bio,
		&age, &gender, &heightCm, &bodyType, &city, &lat, &lon,
		&relStatus, &relSeeking, &goals,
		&occupation, &education, &fieldOfStudy,
		&drinking, &smoking, &exercise, &diet,
		&children, &pets,
		&religion, pq.Array(&p.Values),
		&personality, &lifestyle, &communication,
		pq.Array(&p.Hobbies), pq.Array(&p.Interests), pq.Array(&p.FavoriteActivities),
		&prefAgeMin, &prefAgeMax, pq.Array(&p.PreferredGenders), pq.Array(&p.PreferredRelationshipTypes),
		&maxDistance, pq.Array(&p.DealBreakers), pq.Array(&p.MustHaves), &weightsRaw,
		&p.ProfileCompletion, &lastActive, &p.IsVerified, &p.IsDiscoverable,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Age = intPtr(age)
	p.Gender = (*Gender)(strPtr(gender))
	p.HeightCm = intPtr(heightCm)
	p.BodyType = (*BodyType)(strPtr(bodyType))
	p.CurrentCity = strPtr(city)
	p.Latitude = floatPtr(lat)
	p.Longitude = floatPtr(lon)
	p.RelationshipStatus = (*RelationshipStatus)(strPtr(relStatus))
	p.RelationshipTypeSeeking = (*RelationshipType)(strPtr(relSeeking))
	p.DatingGoalsTimeline = strPtr(goals)
	p.Occupation = strPtr(occupation)
	p.EducationLevel = (*EducationLevel)(strPtr(education))
	p.FieldOfStudy = strPtr(fieldOfStudy)
	p.DrinkingHabit = (*DrinkingHabit)(strPtr(drinking))
	p.SmokingHabit = (*SmokingHabit)(strPtr(smoking))
	p.ExerciseFrequency = strPtr(exercise)
	p.DietPreference = strPtr(diet)
	p.ChildrenStatus = (*ChildrenStatus)(strPtr(children))
	p.PetPreference = (*PetPreference)(strPtr(pets))
	p.Religion = (*Religion)(strPtr(religion))
	p.PersonalityType = (*PersonalityType)(strPtr(personality))
	p.LifestylePreference = (*LifestylePreference)(strPtr(lifestyle))
	p.CommunicationStyle = (*CommunicationStyle)(strPtr(communication))
	p.PreferredAgeMin = intPtr(prefAgeMin)
	p.PreferredAgeMax = intPtr(prefAgeMax)
	p.MaxDistanceKm = intPtr(maxDistance)
	p.LastActiveAt = timePtr(lastActive)

	if len(weightsRaw) > 0 {
		if err := json.Unmarshal(weightsRaw, &p.MatchWeights); err != nil {
			logrus.WithError(err).WithField("profile_id", p.ID).Warn("Dropping malformed match weights")
			p.MatchWeights = nil
		}
	}
	return &p, nil
}

func loadProfileByUserID(db *sql.DB, userID int) (*Profile, error) {
	row := db.QueryRow("SELECT "+profileColumns+" FROM profiles p WHERE p.user_id = $1", userID)
	return scanProfile(row)
}

func loadProfileByID(db *sql.DB, id uuid.UUID) (*Profile, error) {
	row := db.QueryRow("SELECT "+profileColumns+" FROM profiles p WHERE p.id = $1", id)
	return scanProfile(row)
}

func saveProfile(ctx context.Context, db *sql.DB, p *Profile) error {
	var weightsJSON []byte
	if p.MatchWeights != nil {
		weightsJSON, _ = json.Marshal(p.MatchWeights)
	}

	_, err := db.ExecContext(ctx, `
		UPDATE profiles SET
			name = $2, bio = $3, age = $4, gender = $5, height_cm = $6, body_type = $7,
			current_city = $8, latitude = $9, longitude = $10,
			relationship_status = $11, relationship_type_seeking = $12, dating_goals_timeline = $13,
			occupation = $14, education_level = $15, field_of_study = $16,
			drinking_habit = $17, smoking_habit = $18, exercise_frequency = $19, diet_preference = $20,
			children_status = $21, pet_preference = $22,
			religion = $23, life_values = $24,
			personality_type = $25, lifestyle_preference = $26, communication_style = $27,
			hobbies = $28, interests = $29, favorite_activities = $30,
			preferred_age_min = $31, preferred_age_max = $32, preferred_genders = $33,
			preferred_relationship_types = $34, max_distance_km = $35,
			deal_breakers = $36, must_haves = $37, match_weights = $38,
			profile_completion = $39, is_discoverable = $40, updated_at = NOW()
		WHERE id = $1
	`,
		p.ID, p.Name, p.Bio, p.Age, p.Gender, p.HeightCm, p.BodyType,
		p.CurrentCity, p.Latitude, p.Longitude,
		p.RelationshipStatus, p.RelationshipTypeSeeking, p.DatingGoalsTimeline,
		p.Occupation, p.EducationLevel, p.FieldOfStudy,
		p.DrinkingHabit, p.SmokingHabit, p.ExerciseFrequency, p.DietPreference,
		p.ChildrenStatus, p.PetPreference,
		p.Religion, pq.Array(p.Values),
		p.PersonalityType, p.LifestylePreference, p.CommunicationStyle,
		pq.Array(p.Hobbies), pq.Array(p.Interests), pq.Array(p.FavoriteActivities),
		p.PreferredAgeMin, p.PreferredAgeMax, pq.Array(p.PreferredGenders),
		pq.Array(p.PreferredRelationshipTypes), p.MaxDistanceKm,
		pq.Array(p.DealBreakers), pq.Array(p.MustHaves), weightsJSON,
		p.ProfileCompletion, p.IsDiscoverable,
	)
	return err
}

// GET / PUT /me/profile
func meProfileHandler(db *sql.DB) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value(userIDKey).(int)

		switch r.Method {
		case http.MethodGet:
			profile, err := loadProfileByUserID(db, userID)
			if err == sql.ErrNoRows {
				writeError(w, http.StatusNotFound, "profile_not_found")
				return
			} else if err != nil {
				logrus.WithError(err).Error("Error loading own profile")
				writeError(w, http.StatusInternalServerError, "db_error")
				return
			}
			writeJSON(w, http.StatusOK, profile)

		case http.MethodPut, http.MethodPatch:
			var update ProfileUpdate
			if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
				writeError(w, http.StatusBadRequest, "invalid_json")
				return
			}

			profile, err := loadProfileByUserID(db, userID)
			if err == sql.ErrNoRows {
				writeError(w, http.StatusNotFound, "profile_not_found")
				return
			} else if err != nil {
				logrus.WithError(err).Error("Error loading own profile")
				writeError(w, http.StatusInternalServerError, "db_error")
				return
			}

			applyProfileUpdate(profile, &update)

			// Preference invariants are enforced here, not in the engine.
			if profile.PreferredAgeMin != nil && profile.PreferredAgeMax != nil &&
				*profile.PreferredAgeMin > *profile.PreferredAgeMax {
				writeError(w, http.StatusBadRequest, "invalid_age_range")
				return
			}
			if (profile.Latitude == nil) != (profile.Longitude == nil) {
				writeError(w, http.StatusBadRequest, "invalid_coordinates")
				return
			}
			if !validWeights(profile.MatchWeights) {
				writeError(w, http.StatusBadRequest, "invalid_match_weights")
				return
			}

			profile.ProfileCompletion = calculateProfileCompletion(profile)

			if err := saveProfile(r.Context(), db, profile); err != nil {
				logrus.WithError(err).Error("Error saving profile")
				writeError(w, http.StatusInternalServerError, "profile_update_error")
				return
			}
			writeJSON(w, http.StatusOK, profile)

		default:
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
		}
	})
}

// GET /users/{profileID} - public profile view, discoverable profiles only
func userProfileHandler(db *sql.DB) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) != 2 || parts[0] != "users" {
			http.NotFound(w, r)
			return
		}
		profileID, err := uuid.Parse(parts[1])
		if err != nil {
			http.NotFound(w, r)
			return
		}

		profile, err := loadProfileByID(db, profileID)
		if err == sql.ErrNoRows || (err == nil && !profile.IsDiscoverable) {
			writeError(w, http.StatusNotFound, "not_found")
			return
		} else if err != nil {
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}

		view := publicProfile(profile)
		online := presence.isConnected(profile.UserID)
		if !online {
			// Fall back to the last_active_at TTL for clients that ping
			// instead of holding a websocket open.
			if dbOnline, err := isOnlineNow(db, profile.UserID); err == nil {
				online = dbOnline
			}
		}
		view["is_online"] = online

		writeJSON(w, http.StatusOK, view)
	})
}

// applyProfileUpdate merges a partial edit into the profile, one field at a
// time. Every updatable field is listed explicitly so new columns cannot be
// forgotten silently; nil update fields leave the profile untouched.
func applyProfileUpdate(p *Profile, u *ProfileUpdate) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Bio != nil {
		p.Bio = *u.Bio
	}
	if u.Age != nil {
		p.Age = u.Age
	}
	if u.Gender != nil {
		p.Gender = u.Gender
	}
	if u.HeightCm != nil {
		p.HeightCm = u.HeightCm
	}
	if u.BodyType != nil {
		p.BodyType = u.BodyType
	}
	if u.CurrentCity != nil {
		p.CurrentCity = u.CurrentCity
	}
	if u.Latitude != nil {
		p.Latitude = u.Latitude
	}
	if u.Longitude != nil {
		p.Longitude = u.Longitude
	}
	if u.RelationshipStatus != nil {
		p.RelationshipStatus = u.RelationshipStatus
	}
	if u.RelationshipTypeSeeking != nil {
		p.RelationshipTypeSeeking = u.RelationshipTypeSeeking
	}
	if u.DatingGoalsTimeline != nil {
		p.DatingGoalsTimeline = u.DatingGoalsTimeline
	}
	if u.Occupation != nil {
		p.Occupation = u.Occupation
	}
	if u.EducationLevel != nil {
		p.EducationLevel = u.EducationLevel
	}
	if u.FieldOfStudy != nil {
		p.FieldOfStudy = u.FieldOfStudy
	}
	if u.DrinkingHabit != nil {
		p.DrinkingHabit = u.DrinkingHabit
	}
	if u.SmokingHabit != nil {
		p.SmokingHabit = u.SmokingHabit
	}
	if u.ExerciseFrequency != nil {
		p.ExerciseFrequency = u.ExerciseFrequency
	}
	if u.DietPreference != nil {
		p.DietPreference = u.DietPreference
	}
	if u.ChildrenStatus != nil {
		p.ChildrenStatus = u.ChildrenStatus
	}
	if u.PetPreference != nil {
		p.PetPreference = u.PetPreference
	}
	if u.Religion != nil {
		p.Religion = u.Religion
	}
	if u.Values != nil {
		p.Values = u.Values
	}
	if u.PersonalityType != nil {
		p.PersonalityType = u.PersonalityType
	}
	if u.LifestylePreference != nil {
		p.LifestylePreference = u.LifestylePreference
	}
	if u.CommunicationStyle != nil {
		p.CommunicationStyle = u.CommunicationStyle
	}
	if u.Hobbies != nil {
		p.Hobbies = u.Hobbies
	}
	if u.Interests != nil {
		p.Interests = u.Interests
	}
	if u.FavoriteActivities != nil {
		p.FavoriteActivities = u.FavoriteActivities
	}
	if u.PreferredAgeMin != nil {
		p.PreferredAgeMin = u.PreferredAgeMin
	}
	if u.PreferredAgeMax != nil {
		p.PreferredAgeMax = u.PreferredAgeMax
	}
	if u.PreferredGenders != nil {
		p.PreferredGenders = u.PreferredGenders
	}
	if u.PreferredRelationshipTypes != nil {
		p.PreferredRelationshipTypes = u.PreferredRelationshipTypes
	}
	if u.MaxDistanceKm != nil {
		p.MaxDistanceKm = u.MaxDistanceKm
	}
	if u.DealBreakers != nil {
		p.DealBreakers = u.DealBreakers
	}
	if u.MustHaves != nil {
		p.MustHaves = u.MustHaves
	}
	if u.MatchWeights != nil {
		p.MatchWeights = u.MatchWeights
	}
	if u.IsDiscoverable != nil {
		p.IsDiscoverable = *u.IsDiscoverable
	}
}

// totalProfileFields is the number of checks in calculateProfileCompletion.
const totalProfileFields = 26

// calculateProfileCompletion returns how filled-in a profile is, 0-100.
// The checklist feeds the completeness boost, so keep it in sync with the
// fields users can actually edit.
func calculateProfileCompletion(p *Profile) int {
	completed := 0

	if p.Name != "" {
		completed++
	}
	if p.Bio != "" {
		completed++
	}
	if p.Age != nil {
		completed++
	}
	if p.Gender != nil {
		completed++
	}
	if p.HeightCm != nil {
		completed++
	}
	if p.CurrentCity != nil {
		completed++
	}
	if p.RelationshipTypeSeeking != nil {
		completed++
	}
	if p.Occupation != nil {
		completed++
	}
	if p.EducationLevel != nil {
		completed++
	}
	if p.DrinkingHabit != nil {
		completed++
	}
	if p.SmokingHabit != nil {
		completed++
	}
	if p.ExerciseFrequency != nil {
		completed++
	}
	if p.DietPreference != nil {
		completed++
	}
	if p.ChildrenStatus != nil {
		completed++
	}
	if p.PetPreference != nil {
		completed++
	}
	if p.Religion != nil {
		completed++
	}
	if len(p.Values) > 0 {
		completed++
	}
	if p.PersonalityType != nil {
		completed++
	}
	if p.LifestylePreference != nil {
		completed++
	}
	if p.CommunicationStyle != nil {
		completed++
	}
	if len(p.Hobbies) > 0 {
		completed++
	}
	if len(p.Interests) > 0 {
		completed++
	}
	if len(p.FavoriteActivities) > 0 {
		completed++
	}
	if p.PreferredAgeMin != nil && p.PreferredAgeMax != nil {
		completed++
	}
	if len(p.PreferredGenders) > 0 {
		completed++
	}
	if p.MaxDistanceKm != nil {
		completed++
	}

	return completed * 100 / totalProfileFields
}

// validWeights rejects weight overrides the engine would have to guess at.
func validWeights(weights map[string]float64) bool {
	for _, w := range weights {
		if w < 0 {
			return false
		}
	}
	return true
}

// publicProfile is the candidate-facing projection of a profile: no
// preference settings, no operational internals beyond trust signals.
func publicProfile(p *Profile) map[string]interface{} {
	view := map[string]interface{}{
		"id":                            p.ID,
		"name":                          p.Name,
		"bio":                           p.Bio,
		"age":                           p.Age,
		"gender":                        p.Gender,
		"height_cm":                     p.HeightCm,
		"body_type":                     p.BodyType,
		"current_city":                  p.CurrentCity,
		"relationship_type_seeking":     p.RelationshipTypeSeeking,
		"occupation":                    p.Occupation,
		"education_level":               p.EducationLevel,
		"drinking_habit":                p.DrinkingHabit,
		"smoking_habit":                 p.SmokingHabit,
		"children_status":               p.ChildrenStatus,
		"pet_preference":                p.PetPreference,
		"religion":                      p.Religion,
		"personality_type":              p.PersonalityType,
		"lifestyle_preference":          p.LifestylePreference,
		"communication_style":           p.CommunicationStyle,
		"hobbies":                       p.Hobbies,
		"interests":                     p.Interests,
		"favorite_activities":           p.FavoriteActivities,
		"profile_completion_percentage": p.ProfileCompletion,
		"is_verified":                   p.IsVerified,
		"last_active_at":                p.LastActiveAt,
	}
	return view
}

// --- sql.Null* to pointer helpers ---

func strPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func intPtr(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	i := int(ni.Int64)
	return &i
}

func floatPtr(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	f := nf.Float64
	return &f
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
