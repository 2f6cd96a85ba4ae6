package domain

import "time"

type PricingModel string

const (
	// PricingOccupancyBased charges the base price plus per-person and
	// per-extra-bed supplements.
	PricingOccupancyBased PricingModel = "occupancy_based"
	// PricingUnitIncluded charges a flat unit price covering
	// IncludedOccupancy guests, plus a surcharge for each guest beyond it.
	PricingUnitIncluded PricingModel = "unit_included_occupancy"
)

// StayType is a fixed-duration package (e.g. a 3-night tour).
type StayType struct {
	ID            int64
	HotelID       int64
	Code          string
	Name          string
	Nights        int
	IncludedBoard string // e.g. bb|hb|fb|ai
	Active        bool
}

type RoomType struct {
	ID                  int64
	HotelID             int64
	Code                string
	Name                string
	BaseOccupancy       int
	MaxOccupancy        int
	ExtraBedSlots       int
	SingleUseSupplement int64 // minor units, admin default for new rate rules
	Active              bool
}

type RatePlan struct {
	ID       int64
	HotelID  int64
	Code     string
	Name     string
	Currency string
	Model    PricingModel
	Active   bool
}

// RateRule is a date-ranged price definition scoped to a rate plan. Nil
// StayTypeID/RoomTypeID act as wildcards; the resolver prefers the most
// specific match. Monetary fields are minor units in the plan's currency.
// Rules are treated as point-in-time truth: bookings snapshot the rule they
// were priced against.
type RateRule struct {
	ID         int64
	RatePlanID int64
	StayTypeID *int64
	RoomTypeID *int64
	StartDate  time.Time
	EndDate    time.Time

	BasePrice           int64
	PerAdult            int64
	PerChild            int64
	PerInfant           int64
	PerExtraBed         int64
	PerExtraPerson      int64
	SingleUseSupplement int64
	IncludedOccupancy   *int // nil => DefaultIncludedOccupancy
}

const DefaultIncludedOccupancy = 2

func (r RateRule) Covers(date time.Time) bool {
	return !date.Before(r.StartDate) && !date.After(r.EndDate)
}

func (r RateRule) Included() int {
	if r.IncludedOccupancy != nil {
		return *r.IncludedOccupancy
	}
	return DefaultIncludedOccupancy
}
