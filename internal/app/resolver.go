package app

import (
	"time"

	"stayops/internal/domain"
)

// ruleScope is one step of the fallback precedence search. Nil scope IDs on
// a rule are wildcards; the search prefers the most specific match.
type ruleScope struct {
	withStay bool
	withRoom bool
}

var rulePrecedence = []ruleScope{
	{withStay: true, withRoom: true},   // exact stay type + room type
	{withStay: false, withRoom: true},  // room type, any stay type
	{withStay: true, withRoom: false},  // stay type, any room type
	{withStay: false, withRoom: false}, // global fallback for the plan
}

// resolveRateRule finds the applicable rule for one date. Candidates are
// expected to belong to a single active rate plan. Returns nil when no rule
// covers the date; callers treat that as "no rate", not a failure.
func resolveRateRule(rules []domain.RateRule, stayTypeID, roomTypeID int64, date time.Time) *domain.RateRule {
	for _, scope := range rulePrecedence {
		for i := range rules {
			r := &rules[i]
			if !r.Covers(date) {
				continue
			}
			if scope.withStay {
				if r.StayTypeID == nil || *r.StayTypeID != stayTypeID {
					continue
				}
			} else if r.StayTypeID != nil {
				continue
			}
			if scope.withRoom {
				if r.RoomTypeID == nil || *r.RoomTypeID != roomTypeID {
					continue
				}
			} else if r.RoomTypeID != nil {
				continue
			}
			return r
		}
	}
	return nil
}
