package app

import (
	"time"

	"stayops/internal/domain"
)

// AgeClassifier maps a guest's birthdate to a category relative to a
// check-in date and a hotel age policy. Pure; safe to share.
type AgeClassifier struct{}

func NewAgeClassifier() *AgeClassifier { return &AgeClassifier{} }

const maxGuestAgeYears = 150

func (c *AgeClassifier) Classify(birthdate, checkIn time.Time, policy domain.AgePolicy) (domain.GuestCategory, error) {
	if birthdate.IsZero() {
		return "", &domain.InvalidInputError{Field: "birthdate", Reason: "required"}
	}
	if checkIn.IsZero() {
		return "", &domain.InvalidInputError{Field: "check_in", Reason: "required"}
	}
	birthdate = domain.DateOnly(birthdate)
	checkIn = domain.DateOnly(checkIn)
	if birthdate.After(checkIn) {
		return "", &domain.InvalidInputError{Field: "birthdate", Reason: "must not be after check-in date"}
	}
	age := domain.AgeAt(birthdate, checkIn)
	if age > maxGuestAgeYears {
		return "", &domain.InvalidInputError{Field: "birthdate", Reason: "more than 150 years before check-in date"}
	}
	return policy.Categorize(age), nil
}
