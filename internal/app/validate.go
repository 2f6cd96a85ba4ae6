package app

import (
	"fmt"
	"strings"
	"time"

	"stayops/internal/domain"
)

// BookingValidator cross-checks an assembled booking draft before it is
// persisted. Every check runs; errors and warnings accumulate.
type BookingValidator struct {
	classifier *AgeClassifier
}

func NewBookingValidator(classifier *AgeClassifier) *BookingValidator {
	return &BookingValidator{classifier: classifier}
}

// Validate runs the base checks: stay duration, guest count vs capacity,
// check-in date, per-guest fields, and total price.
func (v *BookingValidator) Validate(draft domain.BookingDraft) domain.ValidationResult {
	var res domain.ValidationResult

	v.checkStayDuration(draft, &res)
	v.checkGuestCount(draft, &res)
	v.checkCheckIn(draft, &res)
	v.checkGuests(draft, &res)

	if draft.TotalAmount <= 0 {
		res.AddError("total_price", "total price must be greater than zero")
	}
	return res
}

// ValidateWithAges additionally derives each guest's category from their
// birthdate under the hotel's age policy and flags disagreements with the
// declared category.
func (v *BookingValidator) ValidateWithAges(draft domain.BookingDraft) domain.ValidationResult {
	res := v.Validate(draft)
	for i, g := range draft.Guests {
		if g.Birthdate == nil {
			continue // already reported by the base checks
		}
		declared, err := domain.ParseGuestCategory(g.Category)
		if err != nil {
			continue
		}
		derived, err := v.classifier.Classify(*g.Birthdate, draft.CheckIn, draft.AgePolicy)
		if err != nil {
			res.AddError(guestField(i, "birthdate"), err.Error())
			continue
		}
		if derived != declared {
			res.AddError(guestField(i, "guest_category"),
				fmt.Sprintf("declared %s but age at check-in makes this guest a %s", declared, derived))
		}
	}
	return res
}

func (v *BookingValidator) checkStayDuration(draft domain.BookingDraft, res *domain.ValidationResult) {
	if draft.StayType == nil {
		res.AddError("stay_type", "stay type is required")
	} else if draft.StayType.Nights > 0 && draft.Nights != draft.StayType.Nights {
		res.AddError("nights", fmt.Sprintf("stay type %s is a fixed %d-night package", draft.StayType.Code, draft.StayType.Nights))
	}
	if draft.Nights <= 0 {
		res.AddError("nights", "stay must be at least one night")
	}
}

func (v *BookingValidator) checkGuestCount(draft domain.BookingDraft, res *domain.ValidationResult) {
	if draft.RoomType == nil {
		res.AddError("room_type", "room type is required")
		return
	}
	adults := 0
	for _, g := range draft.Guests {
		if strings.EqualFold(g.Category, string(domain.CategoryAdult)) {
			adults++
		}
	}
	if adults < 1 {
		res.AddError("guests", "at least one adult guest is required")
	}
	total := draft.Occupancy.Total()
	if total > draft.RoomType.MaxOccupancy {
		res.AddError("guests", fmt.Sprintf("%d guests exceed the room's maximum occupancy of %d", total, draft.RoomType.MaxOccupancy))
	} else if draft.RoomType.MaxOccupancy-total <= 1 {
		res.AddWarning("guests", "occupancy is at or near the room's maximum")
	}
	if draft.Occupancy.ExtraBeds > draft.RoomType.ExtraBedSlots {
		res.AddError("extra_beds", fmt.Sprintf("room supports at most %d extra beds", draft.RoomType.ExtraBedSlots))
	}
}

func (v *BookingValidator) checkCheckIn(draft domain.BookingDraft, res *domain.ValidationResult) {
	if draft.CheckIn.IsZero() {
		res.AddError("check_in", "check-in date is required")
		return
	}
	if domain.DateOnly(draft.CheckIn).Before(domain.DateOnly(time.Now())) {
		res.AddError("check_in", "check-in date must not be in the past")
	}
}

func (v *BookingValidator) checkGuests(draft domain.BookingDraft, res *domain.ValidationResult) {
	for i, g := range draft.Guests {
		if g.Birthdate == nil || g.Birthdate.IsZero() {
			res.AddError(guestField(i, "birthdate"), "birthdate is required")
		}
		if _, err := domain.ParseGuestCategory(g.Category); err != nil {
			res.AddError(guestField(i, "guest_category"), "must be one of adult, child, infant")
		}
	}
}

func guestField(i int, field string) string {
	return fmt.Sprintf("guests[%d].%s", i, field)
}
