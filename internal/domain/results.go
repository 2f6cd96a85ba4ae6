package domain

import "time"

// Restriction reason codes. Business outcomes are data, not errors: the
// boundary layer decides how to present them.
const (
	ReasonOccupancyExceeded = "occupancy_exceeded"
	ReasonNoRate            = "no_rate"
	ReasonStopSell          = "stop_sell"
	ReasonPastDate          = "past_date"
	ReasonMinimumStay       = "minimum_stay"
	ReasonMaximumStay       = "maximum_stay"
	ReasonSoldOut           = "sold_out"
	ReasonClosedToArrival   = "closed_to_arrival"
	ReasonClosedToDeparture = "closed_to_departure"
)

// PriceBreakdown is the priced decomposition of a stay. A zero breakdown
// (all components zero) is the canonical "unpriceable" sentinel returned
// when no rate rule resolves.
type PriceBreakdown struct {
	Base                 Money `json:"base"`
	AdultSupplement      Money `json:"adult_supplement"`
	ChildSupplement      Money `json:"child_supplement"`
	InfantSupplement     Money `json:"infant_supplement"`
	ExtraBedSupplement   Money `json:"extra_bed_supplement"`
	SingleUseSupplement  Money `json:"single_use_supplement"`
	ExtraOccupancyCharge Money `json:"extra_occupancy_charge"`

	Total    Money  `json:"total"`
	Currency string `json:"currency"`
}

func ZeroBreakdown(currency string) PriceBreakdown {
	z := ZeroMoney(currency)
	return PriceBreakdown{
		Base: z, AdultSupplement: z, ChildSupplement: z, InfantSupplement: z,
		ExtraBedSupplement: z, SingleUseSupplement: z, ExtraOccupancyCharge: z,
		Total: z, Currency: currency,
	}
}

func (b PriceBreakdown) IsZero() bool { return b.Total.IsZero() }

type NightPrice struct {
	Date  time.Time `json:"date"`
	Price Money     `json:"price"`
}

// AvailabilityResult is the outcome of evaluating one candidate stay.
// RateRule is the rule resolved for the check-in night; individual nights
// may have been priced by later rules when a rate change falls mid-stay.
type AvailabilityResult struct {
	Available      bool         `json:"available"`
	Reason         string       `json:"reason,omitempty"`
	Message        string       `json:"message,omitempty"`
	AvailableDates []time.Time  `json:"available_dates,omitempty"`
	Nights         []NightPrice `json:"nights,omitempty"`
	TotalPrice     Money        `json:"total_price"`
	RateRule       *RateRule    `json:"-"`
}

// AllotmentSnapshot is the raw inventory view embedded in calendar days.
type AllotmentSnapshot struct {
	Quantity  int  `json:"quantity"`
	Allocated int  `json:"allocated"`
	Remaining int  `json:"remaining"`
	StopSell  bool `json:"stop_sell"`
}

type CalendarDay struct {
	Date      time.Time          `json:"date"`
	Weekday   int                `json:"weekday"`
	Weekend   bool               `json:"weekend"`
	Available bool               `json:"available"`
	Blocked   bool               `json:"blocked"`
	Price     *Money             `json:"price,omitempty"`
	BasePrice *Money             `json:"base_price,omitempty"`
	Reason    *string            `json:"reason,omitempty"`
	Allotment *AllotmentSnapshot `json:"allotment,omitempty"`
}

type Calendar struct {
	Days          []CalendarDay `json:"days"`
	TotalDays     int           `json:"total_days"`
	AvailableDays int           `json:"available_days"`
}

type FieldMessage struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult is an explicit mutable accumulator, deliberately not a
// value object like Money or PriceBreakdown. Checks append; nothing
// short-circuits.
type ValidationResult struct {
	Errors   []FieldMessage `json:"errors"`
	Warnings []FieldMessage `json:"warnings"`
}

func (r *ValidationResult) AddError(field, message string) {
	r.Errors = append(r.Errors, FieldMessage{Field: field, Message: message})
}

func (r *ValidationResult) AddWarning(field, message string) {
	r.Warnings = append(r.Warnings, FieldMessage{Field: field, Message: message})
}

func (r *ValidationResult) Valid() bool { return len(r.Errors) == 0 }
