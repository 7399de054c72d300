package main

import (
	"math"
	"sort"
	"strings"
	"time"
)

// Point budgets per scoring dimension. They sum to 100 when every weight
// override is 1.0, so an unweighted perfect match scores exactly 100.
const (
	budgetAge         = 20.0
	budgetDistance    = 15.0
	budgetInterests   = 25.0
	budgetValues      = 15.0
	budgetLifestyle   = 10.0
	budgetPersonality = 10.0
	budgetBackground  = 5.0
)

// Fallback cap for distance scoring when the seeker has no max_distance_km.
const defaultMaxDistanceKm = 100.0

// ScoredCandidate pairs a candidate profile with its compatibility scores.
// Instances live for a single request; scores are never persisted.
type ScoredCandidate struct {
	Profile  *Profile
	RawScore float64 // compatibility score before boosts
	Score    float64 // final score after boosts, capped at 100
}

// findMatches runs the full pipeline for one seeker: hard filter, score,
// boost, rank, paginate. It is pure computation over the inputs; `now`
// anchors the recency boost so results are reproducible.
func findMatches(seeker *Profile, pool []*Profile, now time.Time, offset, limit int) []*ScoredCandidate {
	filtered := applyFilters(seeker, pool)
	scored := make([]*ScoredCandidate, 0, len(filtered))
	for _, c := range filtered {
		raw := compatibilityScore(seeker, c)
		scored = append(scored, &ScoredCandidate{Profile: c, RawScore: raw, Score: raw})
	}
	applyBoosts(scored, now)
	return rankMatches(scored, offset, limit)
}

// applyFilters removes candidates that violate a hard constraint. Every
// rule fails open: missing data on either side never rejects a candidate.
// Output preserves input order.
func applyFilters(seeker *Profile, candidates []*Profile) []*Profile {
	filtered := make([]*Profile, 0, len(candidates))
	for _, c := range candidates {
		// Age window
		if seeker.PreferredAgeMin != nil && c.Age != nil && *c.Age < *seeker.PreferredAgeMin {
			continue
		}
		if seeker.PreferredAgeMax != nil && c.Age != nil && *c.Age > *seeker.PreferredAgeMax {
			continue
		}

		// Distance cap, only when both sides have coordinates
		if seeker.MaxDistanceKm != nil && seeker.hasCoordinates() && c.hasCoordinates() {
			d := haversineKm(*seeker.Latitude, *seeker.Longitude, *c.Latitude, *c.Longitude)
			if d > float64(*seeker.MaxDistanceKm) {
				continue
			}
		}

		// Gender preference
		if len(seeker.PreferredGenders) > 0 && c.Gender != nil && !hasTag(seeker.PreferredGenders, string(*c.Gender)) {
			continue
		}

		if hasDealBreaker(seeker.DealBreakers, c) {
			continue
		}
		if !hasAllMustHaves(seeker.MustHaves, seeker, c) {
			continue
		}

		filtered = append(filtered, c)
	}
	return filtered
}

// hasDealBreaker reports whether the candidate trips any of the seeker's
// deal-breaker tags. Unknown tags are ignored.
func hasDealBreaker(dealBreakers []string, c *Profile) bool {
	if hasTag(dealBreakers, "smoking") && c.SmokingHabit != nil {
		if *c.SmokingHabit == SmokingRegularly || *c.SmokingHabit == SmokingOccasionally {
			return true
		}
	}
	if hasTag(dealBreakers, "no_kids") && c.ChildrenStatus != nil && *c.ChildrenStatus == ChildrenHas {
		return true
	}
	if hasTag(dealBreakers, "drinking") && c.DrinkingHabit != nil {
		if *c.DrinkingHabit == DrinkingRegularly || *c.DrinkingHabit == DrinkingHeavily {
			return true
		}
	}
	return false
}

// hasAllMustHaves reports whether the candidate satisfies every must-have
// tag the seeker declared. "Same" tags require the attribute on both sides.
func hasAllMustHaves(mustHaves []string, seeker, c *Profile) bool {
	if hasTag(mustHaves, "same_religion") {
		if c.Religion == nil || seeker.Religion == nil || *c.Religion != *seeker.Religion {
			return false
		}
	}
	if hasTag(mustHaves, "same_education") {
		if c.EducationLevel == nil || seeker.EducationLevel == nil || *c.EducationLevel != *seeker.EducationLevel {
			return false
		}
	}
	if hasTag(mustHaves, "no_children") {
		if c.ChildrenStatus != nil && *c.ChildrenStatus == ChildrenHas {
			return false
		}
	}
	return true
}

// compatibilityScore computes the weighted 0-100 compatibility score across
// the seven sub-dimensions. Each dimension yields a value in [0,1] that is
// multiplied by its point budget and the seeker's per-dimension weight
// override; the total is normalized by the weighted budget sum so neutral
// defaults for missing data don't skew the scale.
func compatibilityScore(seeker, candidate *Profile) float64 {
	dims := [...]struct {
		name   string
		budget float64
		value  float64
	}{
		{"age", budgetAge, scoreAge(seeker.Age, candidate.Age)},
		{"distance", budgetDistance, scoreDistance(seeker, candidate)},
		{"interests", budgetInterests, scoreInterests(seeker.Hobbies, candidate.Hobbies)},
		{"values", budgetValues, scoreValues(seeker, candidate)},
		{"lifestyle", budgetLifestyle, scoreLifestyle(seeker, candidate)},
		{"personality", budgetPersonality, scorePersonality(seeker, candidate)},
		{"background", budgetBackground, scoreBackground(seeker, candidate)},
	}

	total := 0.0
	weightedBudget := 0.0
	for _, d := range dims {
		w := dimensionWeight(seeker.MatchWeights, d.name)
		total += d.value * d.budget * w
		weightedBudget += d.budget * w
	}
	if weightedBudget == 0 {
		return 0
	}
	return total / weightedBudget * 100
}

// dimensionWeight returns the seeker's override for a dimension, defaulting
// to 1.0. Negative values are treated as 0; validation of preference data
// belongs to the boundary, not the engine.
func dimensionWeight(weights map[string]float64, name string) float64 {
	w, ok := weights[name]
	if !ok {
		return 1.0
	}
	if w < 0 {
		return 0
	}
	return w
}

// scoreAge is a step function of the absolute age difference. Symmetric in
// its arguments; neutral 0.5 when either age is unknown.
func scoreAge(a, b *int) float64 {
	if a == nil || b == nil {
		return 0.5
	}
	diff := *a - *b
	if diff < 0 {
		diff = -diff
	}
	switch {
	case diff == 0:
		return 1.0
	case diff <= 2:
		return 0.9
	case diff <= 5:
		return 0.7
	case diff <= 10:
		return 0.5
	default:
		return 0.3
	}
}

// scoreDistance maps great-circle distance onto [0,1] relative to the
// seeker's max-distance preference (100 km when unset): 1.0 at zero
// distance, a linear slide down to 0.75 as the ratio approaches 0.5, then
// steps to 0.5 at ratio 0.5 and 0.1 at ratio 1.0. The discontinuities are
// load-bearing; scores must reproduce across reimplementations.
func scoreDistance(seeker, candidate *Profile) float64 {
	if !seeker.hasCoordinates() || !candidate.hasCoordinates() {
		return 0.5
	}

	distance := haversineKm(*seeker.Latitude, *seeker.Longitude, *candidate.Latitude, *candidate.Longitude)
	if distance == 0 {
		return 1.0
	}

	maxDistance := defaultMaxDistanceKm
	if seeker.MaxDistanceKm != nil {
		maxDistance = float64(*seeker.MaxDistanceKm)
	}

	ratio := distance / maxDistance
	switch {
	case ratio >= 1.0:
		return 0.1
	case ratio >= 0.5:
		return 0.5
	default:
		return 1.0 - ratio*0.5
	}
}

// scoreInterests is the Jaccard similarity of two tag sets, with a 0.3
// short-circuit when either side declared nothing. The short-circuit runs
// before the Jaccard computation, so "both empty" is 0.3, not 0.
func scoreInterests(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.3
	}
	return jaccard(a, b)
}

// jaccard returns |a∩b| / |a∪b| over the distinct elements of each list,
// or 0 when the union is empty.
func jaccard(a, b []string) float64 {
	setA := make(map[string]struct{}, len(a))
	for _, s := range a {
		setA[s] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, s := range b {
		setB[s] = struct{}{}
	}

	intersection := 0
	for s := range setA {
		if _, ok := setB[s]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// scoreValues averages up to three sub-factors: religion match, children
// status match, and Jaccard of the free-text values tags. A factor only
// counts when both sides carry the attribute; with no factors, neutral 0.5.
func scoreValues(seeker, candidate *Profile) float64 {
	score := 0.0
	factors := 0

	if seeker.Religion != nil && candidate.Religion != nil {
		if *seeker.Religion == *candidate.Religion {
			score += 1.0
		}
		factors++
	}
	if seeker.ChildrenStatus != nil && candidate.ChildrenStatus != nil {
		if *seeker.ChildrenStatus == *candidate.ChildrenStatus {
			score += 1.0
		}
		factors++
	}
	if len(seeker.Values) > 0 && len(candidate.Values) > 0 {
		score += jaccard(seeker.Values, candidate.Values)
		factors++
	}

	if factors == 0 {
		return 0.5
	}
	return score / float64(factors)
}

// scoreLifestyle averages up to three sub-factors: drinking habit (exact
// match 1.0, adjacent ordinal 0.7, otherwise the factor counts but
// contributes 0), smoking habit, and lifestyle preference category.
func scoreLifestyle(seeker, candidate *Profile) float64 {
	score := 0.0
	factors := 0

	if seeker.DrinkingHabit != nil && candidate.DrinkingHabit != nil {
		if *seeker.DrinkingHabit == *candidate.DrinkingHabit {
			score += 1.0
		} else {
			diff := drinkingLevel(*seeker.DrinkingHabit) - drinkingLevel(*candidate.DrinkingHabit)
			if diff < 0 {
				diff = -diff
			}
			if diff <= 1 {
				score += 0.7
			}
		}
		factors++
	}
	if seeker.SmokingHabit != nil && candidate.SmokingHabit != nil {
		if *seeker.SmokingHabit == *candidate.SmokingHabit {
			score += 1.0
		}
		factors++
	}
	if seeker.LifestylePreference != nil && candidate.LifestylePreference != nil {
		if *seeker.LifestylePreference == *candidate.LifestylePreference {
			score += 1.0
		}
		factors++
	}

	if factors == 0 {
		return 0.5
	}
	return score / float64(factors)
}

// scorePersonality treats matching types as strong (0.8) and differing
// types as still reasonably compatible (0.6) rather than penalizing them.
func scorePersonality(seeker, candidate *Profile) float64 {
	if seeker.PersonalityType != nil && candidate.PersonalityType != nil {
		if *seeker.PersonalityType == *candidate.PersonalityType {
			return 0.8
		}
		return 0.6
	}
	return 0.5
}

// scoreBackground averages up to two sub-factors: education level match
// (1.0) and case-insensitive field-of-study match (0.5). The field-of-study
// factor maxes at 0.5 yet is averaged at equal weight; that asymmetry is
// preserved from observed behavior.
func scoreBackground(seeker, candidate *Profile) float64 {
	score := 0.0
	factors := 0

	if seeker.EducationLevel != nil && candidate.EducationLevel != nil {
		if *seeker.EducationLevel == *candidate.EducationLevel {
			score += 1.0
		}
		factors++
	}
	if seeker.FieldOfStudy != nil && candidate.FieldOfStudy != nil {
		if strings.EqualFold(*seeker.FieldOfStudy, *candidate.FieldOfStudy) {
			score += 0.5
		}
		factors++
	}

	if factors == 0 {
		return 0.5
	}
	return score / float64(factors)
}

// applyBoosts adds engagement/trust boosts on top of the raw score and caps
// the result at 100. Boosts are additive and never negative, so no floor
// clamp is needed.
func applyBoosts(scored []*ScoredCandidate, now time.Time) {
	for _, sc := range scored {
		s := sc.RawScore
		p := sc.Profile

		if p.LastActiveAt != nil {
			hoursAgo := now.Sub(*p.LastActiveAt).Hours()
			switch {
			case hoursAgo < 1:
				s += 5
			case hoursAgo < 24:
				s += 3
			case hoursAgo < 168:
				s += 1
			}
		}

		if p.ProfileCompletion >= 90 {
			s += 3
		} else if p.ProfileCompletion >= 70 {
			s += 1
		}

		if p.IsVerified {
			s += 2
		}

		sc.Score = math.Min(100, s)
	}
}

// rankMatches sorts by final score descending and returns the
// [offset, offset+limit) window. Ties break on profile id so the ordering
// is deterministic across runs.
func rankMatches(scored []*ScoredCandidate, offset, limit int) []*ScoredCandidate {
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Profile.ID.String() < scored[j].Profile.ID.String()
	})

	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}
	if offset >= len(scored) {
		return []*ScoredCandidate{}
	}
	end := offset + limit
	if end > len(scored) {
		end = len(scored)
	}
	return scored[offset:end]
}

// haversineKm is the great-circle distance between two coordinates in km.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKm = 6371

	dLat := (lat2 - lat1) * (math.Pi / 180)
	dLon := (lon2 - lon1) * (math.Pi / 180)
	lat1 = lat1 * (math.Pi / 180)
	lat2 = lat2 * (math.Pi / 180)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1)*math.Cos(lat2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// roundScore rounds an externally visible score to 2 decimal places.
func roundScore(v float64) float64 {
	return math.Round(v*100) / 100
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
