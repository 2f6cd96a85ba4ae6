package domain

import (
	"strings"
	"time"
)

type GuestCategory string

const (
	CategoryInfant GuestCategory = "infant"
	CategoryChild  GuestCategory = "child"
	CategoryAdult  GuestCategory = "adult"
)

// ParseGuestCategory accepts the three bookable categories, case-insensitive.
// The legacy "teen" value still exists in old rows; it is read straight from
// storage but rejected on input.
func ParseGuestCategory(s string) (GuestCategory, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "infant":
		return CategoryInfant, nil
	case "child":
		return CategoryChild, nil
	case "adult":
		return CategoryAdult, nil
	}
	return "", &InvalidInputError{Field: "guest_category", Reason: "must be one of adult, child, infant"}
}

// AgePolicy holds a hotel's age thresholds. A nil threshold disables that
// bucket; the guest falls through to the next one.
type AgePolicy struct {
	InfantMaxAge *int `json:"infant_max_age"`
	ChildMaxAge  *int `json:"child_max_age"`
	AdultMinAge  *int `json:"adult_min_age"`
}

// Categorize maps an age (in whole years at check-in) to a guest category.
// Thresholds are inclusive upper bounds: age <= InfantMaxAge is an infant,
// else age <= ChildMaxAge is a child. When no child ceiling is configured,
// AdultMinAge acts as an exclusive lower bound for adults.
func (p AgePolicy) Categorize(age int) GuestCategory {
	if p.InfantMaxAge != nil && age <= *p.InfantMaxAge {
		return CategoryInfant
	}
	if p.ChildMaxAge != nil {
		if age <= *p.ChildMaxAge {
			return CategoryChild
		}
	} else if p.AdultMinAge != nil && age < *p.AdultMinAge {
		return CategoryChild
	}
	return CategoryAdult
}

// AgeAt computes whole years between birthdate and at, calendar-aware: the
// count decrements by one if the birthday has not yet occurred in the target
// year. Floors at zero.
func AgeAt(birthdate, at time.Time) int {
	years := at.Year() - birthdate.Year()
	if at.Month() < birthdate.Month() ||
		(at.Month() == birthdate.Month() && at.Day() < birthdate.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

// DateOnly normalizes a timestamp to its UTC calendar date. All stay dates
// in the system are midnight-UTC values.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
