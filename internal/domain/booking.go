package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	StatusPending    BookingStatus = "pending"
	StatusConfirmed  BookingStatus = "confirmed"
	StatusCancelled  BookingStatus = "cancelled"
	StatusCheckedIn  BookingStatus = "checked_in"
	StatusCheckedOut BookingStatus = "checked_out"
	StatusNoShow     BookingStatus = "no_show"
)

var transitions = map[BookingStatus][]BookingStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCancelled, StatusCheckedIn, StatusNoShow},
	StatusCheckedIn: {StatusCheckedOut},
}

func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// HoldsInventory reports whether a booking in this status still occupies
// allotment. Cancelling or no-showing such a booking must release it.
func (s BookingStatus) HoldsInventory() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCheckedIn:
		return true
	}
	return false
}

// Booking is a persisted reservation. The snapshot fields are immutable
// serialized copies of the rate rule, age policy, and price breakdown taken
// at creation time, so repricing rules later never changes what was sold.
type Booking struct {
	ID         int64
	Reference  string
	HotelID    int64
	StayTypeID int64
	RoomTypeID int64
	RatePlanID int64

	CheckIn  time.Time
	CheckOut time.Time
	Nights   int

	Occupancy Occupancy
	Status    BookingStatus

	TotalAmount int64 // minor units
	Currency    string

	RateRuleSnapshot  []byte
	AgePolicySnapshot []byte
	BreakdownSnapshot []byte

	Guests    []BookingGuest
	CreatedAt time.Time
}

func (b Booking) GuestCount() int { return len(b.Guests) }

type BookingGuest struct {
	ID        int64
	BookingID int64
	Name      string
	Birthdate *time.Time
	Category  GuestCategory
}

// NewBookingReference derives a short shareable reference from a UUID.
func NewBookingReference() string {
	u := uuid.New()
	return "BK-" + strings.ToUpper(strings.ReplaceAll(u.String(), "-", "")[:10])
}

// BookingDraft is the fully assembled candidate a caller submits for
// validation before persistence.
type BookingDraft struct {
	StayType  *StayType
	RoomType  *RoomType
	RatePlan  *RatePlan
	AgePolicy AgePolicy

	CheckIn     time.Time
	Nights      int
	Occupancy   Occupancy
	Guests      []DraftGuest
	TotalAmount int64
	Currency    string
}

type DraftGuest struct {
	Name      string
	Birthdate *time.Time
	Category  string // raw declared category, parsed during validation
}
