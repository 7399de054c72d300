package main

import (
	"time"

	"github.com/google/uuid"
)

// Enumerated profile attributes. The values are stored verbatim in postgres
// and travel over the wire unchanged, so they must stay snake_case.

type Gender string

const (
	GenderMale           Gender = "male"
	GenderFemale         Gender = "female"
	GenderNonBinary      Gender = "non_binary"
	GenderTransgender    Gender = "transgender"
	GenderPreferNotToSay Gender = "prefer_not_to_say"
	GenderOther          Gender = "other"
)

type RelationshipStatus string

const (
	RelStatusSingle       RelationshipStatus = "single"
	RelStatusDivorced     RelationshipStatus = "divorced"
	RelStatusWidowed      RelationshipStatus = "widowed"
	RelStatusSeparated    RelationshipStatus = "separated"
	RelStatusNeverMarried RelationshipStatus = "never_married"
)

type RelationshipType string

const (
	RelTypeCasualDating        RelationshipType = "casual_dating"
	RelTypeSeriousRelationship RelationshipType = "serious_relationship"
	RelTypeMarriage            RelationshipType = "marriage"
	RelTypeFriendship          RelationshipType = "friendship"
	RelTypeSomethingCasual     RelationshipType = "something_casual"
	RelTypeNotSure             RelationshipType = "not_sure"
)

type BodyType string

const (
	BodySlim           BodyType = "slim"
	BodyAthletic       BodyType = "athletic"
	BodyAverage        BodyType = "average"
	BodyCurvy          BodyType = "curvy"
	BodyMuscular       BodyType = "muscular"
	BodyLarge          BodyType = "large"
	BodyPreferNotToSay BodyType = "prefer_not_to_say"
)

type DrinkingHabit string

const (
	DrinkingNever          DrinkingHabit = "never"
	DrinkingOccasionally   DrinkingHabit = "occasionally"
	DrinkingSocial         DrinkingHabit = "social_drinker"
	DrinkingRegularly      DrinkingHabit = "regularly"
	DrinkingHeavily        DrinkingHabit = "heavily"
	DrinkingPreferNotToSay DrinkingHabit = "prefer_not_to_say"
)

// drinkingLevels orders drinking habits so "adjacent" habits can be
// compared numerically during lifestyle scoring.
var drinkingLevels = map[DrinkingHabit]int{
	DrinkingNever:        0,
	DrinkingOccasionally: 1,
	DrinkingSocial:       2,
	DrinkingRegularly:    3,
	DrinkingHeavily:      4,
}

// drinkingLevel maps a habit to its ordinal. Unrecognized habits
// ("prefer_not_to_say", legacy values) sit in the middle of the scale.
func drinkingLevel(h DrinkingHabit) int {
	if lvl, ok := drinkingLevels[h]; ok {
		return lvl
	}
	return 2
}

type SmokingHabit string

const (
	SmokingNever          SmokingHabit = "never"
	SmokingOccasionally   SmokingHabit = "occasionally"
	SmokingRegularly      SmokingHabit = "regularly"
	SmokingQuit           SmokingHabit = "quit"
	SmokingPreferNotToSay SmokingHabit = "prefer_not_to_say"
)

type EducationLevel string

const (
	EducationHighSchool     EducationLevel = "high_school"
	EducationSomeCollege    EducationLevel = "some_college"
	EducationBachelors      EducationLevel = "bachelors"
	EducationMasters        EducationLevel = "masters"
	EducationDoctorate      EducationLevel = "doctorate"
	EducationProfessional   EducationLevel = "professional"
	EducationPreferNotToSay EducationLevel = "prefer_not_to_say"
)

type Religion string

const (
	ReligionChristianity   Religion = "christianity"
	ReligionIslam          Religion = "islam"
	ReligionHinduism       Religion = "hinduism"
	ReligionBuddhism       Religion = "buddhism"
	ReligionJudaism        Religion = "judaism"
	ReligionSikhism        Religion = "sikhism"
	ReligionAtheist        Religion = "atheist"
	ReligionAgnostic       Religion = "agnostic"
	ReligionSpiritual      Religion = "spiritual"
	ReligionOther          Religion = "other"
	ReligionPreferNotToSay Religion = "prefer_not_to_say"
)

type ChildrenStatus string

const (
	ChildrenNone           ChildrenStatus = "no_children"
	ChildrenHas            ChildrenStatus = "has_children"
	ChildrenWants          ChildrenStatus = "wants_children"
	ChildrenDoesntWant     ChildrenStatus = "doesnt_want_children"
	ChildrenNotSure        ChildrenStatus = "not_sure"
	ChildrenPreferNotToSay ChildrenStatus = "prefer_not_to_say"
)

type PetPreference string

const (
	PetsLoves          PetPreference = "loves_pets"
	PetsHas            PetPreference = "has_pets"
	PetsAllergic       PetPreference = "allergic"
	PetsDoesntLike     PetPreference = "doesnt_like"
	PetsPreferNotToSay PetPreference = "prefer_not_to_say"
)

type PersonalityType string

const (
	PersonalityIntrovert PersonalityType = "introvert"
	PersonalityExtrovert PersonalityType = "extrovert"
	PersonalityAmbivert  PersonalityType = "ambivert"
)

type LifestylePreference string

const (
	LifestyleNightOwl        LifestylePreference = "night_owl"
	LifestyleEarlyBird       LifestylePreference = "early_bird"
	LifestyleHomeBody        LifestylePreference = "home_body"
	LifestyleAdventurous     LifestylePreference = "adventurous"
	LifestyleSocialButterfly LifestylePreference = "social_butterfly"
	LifestyleBalanced        LifestylePreference = "balanced"
)

type CommunicationStyle string

const (
	CommunicationDirect     CommunicationStyle = "direct"
	CommunicationGentle     CommunicationStyle = "gentle"
	CommunicationHumorous   CommunicationStyle = "humorous"
	CommunicationThoughtful CommunicationStyle = "thoughtful"
	CommunicationPlayful    CommunicationStyle = "playful"
)

// Profile is the full profile record as the match engine consumes it.
// Optional attributes are pointers; nil means "not provided", and the
// engine treats missing data as neutral rather than disqualifying.
// Latitude and longitude are either both set or both nil.
type Profile struct {
	ID     uuid.UUID `json:"id"`
	UserID int       `json:"-"`
	Name   string    `json:"name"`
	Bio    string    `json:"bio,omitempty"`

	// Demographics
	Age         *int      `json:"age,omitempty"`
	Gender      *Gender   `json:"gender,omitempty"`
	HeightCm    *int      `json:"height_cm,omitempty"`
	BodyType    *BodyType `json:"body_type,omitempty"`
	CurrentCity *string   `json:"current_city,omitempty"`
	Latitude    *float64  `json:"latitude,omitempty"`
	Longitude   *float64  `json:"longitude,omitempty"`

	// Relationship & dating
	RelationshipStatus      *RelationshipStatus `json:"relationship_status,omitempty"`
	RelationshipTypeSeeking *RelationshipType   `json:"relationship_type_seeking,omitempty"`
	DatingGoalsTimeline     *string             `json:"dating_goals_timeline,omitempty"`

	// Work & education
	Occupation     *string         `json:"occupation,omitempty"`
	EducationLevel *EducationLevel `json:"education_level,omitempty"`
	FieldOfStudy   *string         `json:"field_of_study,omitempty"`

	// Lifestyle & habits
	DrinkingHabit     *DrinkingHabit `json:"drinking_habit,omitempty"`
	SmokingHabit      *SmokingHabit  `json:"smoking_habit,omitempty"`
	ExerciseFrequency *string        `json:"exercise_frequency,omitempty"`
	DietPreference    *string        `json:"diet_preference,omitempty"`

	// Family & pets
	ChildrenStatus *ChildrenStatus `json:"children_status,omitempty"`
	PetPreference  *PetPreference  `json:"pet_preference,omitempty"`

	// Personal values
	Religion *Religion `json:"religion,omitempty"`
	Values   []string  `json:"values,omitempty"`

	// Personality
	PersonalityType     *PersonalityType     `json:"personality_type,omitempty"`
	LifestylePreference *LifestylePreference `json:"lifestyle_preference,omitempty"`
	CommunicationStyle  *CommunicationStyle  `json:"communication_style,omitempty"`

	// Interest tag sets
	Hobbies            []string `json:"hobbies,omitempty"`
	Interests          []string `json:"interests,omitempty"`
	FavoriteActivities []string `json:"favorite_activities,omitempty"`

	// Match preferences
	PreferredAgeMin            *int               `json:"preferred_age_min,omitempty"`
	PreferredAgeMax            *int               `json:"preferred_age_max,omitempty"`
	PreferredGenders           []string           `json:"preferred_genders,omitempty"`
	PreferredRelationshipTypes []string           `json:"preferred_relationship_types,omitempty"`
	MaxDistanceKm              *int               `json:"max_distance_km,omitempty"`
	DealBreakers               []string           `json:"deal_breakers,omitempty"`
	MustHaves                  []string           `json:"must_haves,omitempty"`
	MatchWeights               map[string]float64 `json:"match_score_weight_preferences,omitempty"`

	// Derived & operational
	ProfileCompletion int        `json:"profile_completion_percentage"`
	LastActiveAt      *time.Time `json:"last_active_at,omitempty"`
	IsVerified        bool       `json:"is_verified"`
	IsDiscoverable    bool       `json:"is_discoverable"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Profile) hasCoordinates() bool {
	return p != nil && p.Latitude != nil && p.Longitude != nil
}

// ProfileUpdate carries a partial profile edit. nil fields are left
// untouched; see applyProfileUpdate for the field-by-field merge.
type ProfileUpdate struct {
	Name *string `json:"name"`
	Bio  *string `json:"bio"`

	Age         *int      `json:"age"`
	Gender      *Gender   `json:"gender"`
	HeightCm    *int      `json:"height_cm"`
	BodyType    *BodyType `json:"body_type"`
	CurrentCity *string   `json:"current_city"`
	Latitude    *float64  `json:"latitude"`
	Longitude   *float64  `json:"longitude"`

	RelationshipStatus      *RelationshipStatus `json:"relationship_status"`
	RelationshipTypeSeeking *RelationshipType   `json:"relationship_type_seeking"`
	DatingGoalsTimeline     *string             `json:"dating_goals_timeline"`

	Occupation     *string         `json:"occupation"`
	EducationLevel *EducationLevel `json:"education_level"`
	FieldOfStudy   *string         `json:"field_of_study"`

	DrinkingHabit     *DrinkingHabit `json:"drinking_habit"`
	SmokingHabit      *SmokingHabit  `json:"smoking_habit"`
	ExerciseFrequency *string        `json:"exercise_frequency"`
	DietPreference    *string        `json:"diet_preference"`

	ChildrenStatus *ChildrenStatus `json:"children_status"`
	PetPreference  *PetPreference  `json:"pet_preference"`

	Religion *Religion `json:"religion"`
	Values   []string  `json:"values"`

	PersonalityType     *PersonalityType     `json:"personality_type"`
	LifestylePreference *LifestylePreference `json:"lifestyle_preference"`
	CommunicationStyle  *CommunicationStyle  `json:"communication_style"`

	Hobbies            []string `json:"hobbies"`
	Interests          []string `json:"interests"`
	FavoriteActivities []string `json:"favorite_activities"`

	PreferredAgeMin            *int               `json:"preferred_age_min"`
	PreferredAgeMax            *int               `json:"preferred_age_max"`
	PreferredGenders           []string           `json:"preferred_genders"`
	PreferredRelationshipTypes []string           `json:"preferred_relationship_types"`
	MaxDistanceKm              *int               `json:"max_distance_km"`
	DealBreakers               []string           `json:"deal_breakers"`
	MustHaves                  []string           `json:"must_haves"`
	MatchWeights               map[string]float64 `json:"match_score_weight_preferences"`

	IsDiscoverable *bool `json:"is_discoverable"`
}
