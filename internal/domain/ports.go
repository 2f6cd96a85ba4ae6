package domain

import (
	"context"
	"time"
)

type InventoryRepository interface {
	// Catalog reads
	GetStayType(ctx context.Context, id int64) (StayType, error)
	GetRoomType(ctx context.Context, id int64) (RoomType, error)
	GetRatePlan(ctx context.Context, id int64) (RatePlan, error)
	GetAgePolicy(ctx context.Context, hotelID int64) (AgePolicy, error)
	ListActiveRoomTypes(ctx context.Context) ([]RoomType, error)

	// Rate and inventory reads; from/to are inclusive date bounds.
	ListRateRules(ctx context.Context, ratePlanID int64, from, to time.Time) ([]RateRule, error)
	ListAllotments(ctx context.Context, roomTypeID int64, from, to time.Time) ([]Allotment, error)

	// Write paths
	UpsertAllotment(ctx context.Context, a Allotment) error
	// ReserveAllotments atomically takes n units on every date, or none.
	// Dates without an allotment row are unconstrained and skipped; a row
	// without n free units fails the whole reservation with ErrNoInventory.
	ReserveAllotments(ctx context.Context, roomTypeID int64, dates []time.Time, n int) error
	ReleaseAllotments(ctx context.Context, roomTypeID int64, dates []time.Time, n int) error
}

type BookingRepository interface {
	CreateBooking(ctx context.Context, b *Booking) error
	GetBookingByReference(ctx context.Context, ref string) (Booking, error)
	// UpdateBookingStatus succeeds only when the row is still in from;
	// returns ErrInvalidTransition otherwise.
	UpdateBookingStatus(ctx context.Context, id int64, from, to BookingStatus) error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
