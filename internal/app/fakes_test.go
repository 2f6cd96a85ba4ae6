package app_test

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"stayops/internal/domain"
)

// ---- fakes ----

type fakeInventory struct {
	mu         sync.Mutex
	stayTypes  map[int64]domain.StayType
	roomTypes  map[int64]domain.RoomType
	ratePlans  map[int64]domain.RatePlan
	policies   map[int64]domain.AgePolicy
	rules      []domain.RateRule
	allotments []domain.Allotment

	reserveErr    error
	reservedDates []time.Time
	releasedDates []time.Time
}

func (f *fakeInventory) GetStayType(_ context.Context, id int64) (domain.StayType, error) {
	st, ok := f.stayTypes[id]
	if !ok {
		return domain.StayType{}, domain.ErrNotFound
	}
	return st, nil
}

func (f *fakeInventory) GetRoomType(_ context.Context, id int64) (domain.RoomType, error) {
	rt, ok := f.roomTypes[id]
	if !ok {
		return domain.RoomType{}, domain.ErrNotFound
	}
	return rt, nil
}

func (f *fakeInventory) GetRatePlan(_ context.Context, id int64) (domain.RatePlan, error) {
	rp, ok := f.ratePlans[id]
	if !ok {
		return domain.RatePlan{}, domain.ErrNotFound
	}
	return rp, nil
}

func (f *fakeInventory) GetAgePolicy(_ context.Context, hotelID int64) (domain.AgePolicy, error) {
	p, ok := f.policies[hotelID]
	if !ok {
		return domain.AgePolicy{}, domain.ErrNotFound
	}
	return p, nil
}

func (f *fakeInventory) ListActiveRoomTypes(_ context.Context) ([]domain.RoomType, error) {
	var out []domain.RoomType
	for _, rt := range f.roomTypes {
		if rt.Active {
			out = append(out, rt)
		}
	}
	return out, nil
}

func (f *fakeInventory) ListRateRules(_ context.Context, ratePlanID int64, from, to time.Time) ([]domain.RateRule, error) {
	var out []domain.RateRule
	for _, r := range f.rules {
		if r.RatePlanID == ratePlanID && !r.EndDate.Before(from) && !r.StartDate.After(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeInventory) ListAllotments(_ context.Context, roomTypeID int64, from, to time.Time) ([]domain.Allotment, error) {
	var out []domain.Allotment
	for _, a := range f.allotments {
		if a.RoomTypeID == roomTypeID && !a.Date.Before(from) && !a.Date.After(to) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeInventory) UpsertAllotment(_ context.Context, a domain.Allotment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.allotments {
		if f.allotments[i].RoomTypeID == a.RoomTypeID && f.allotments[i].Date.Equal(a.Date) {
			f.allotments[i] = a
			return nil
		}
	}
	f.allotments = append(f.allotments, a)
	return nil
}

func (f *fakeInventory) ReserveAllotments(_ context.Context, _ int64, dates []time.Time, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reserveErr != nil {
		return f.reserveErr
	}
	f.reservedDates = append(f.reservedDates, dates...)
	return nil
}

func (f *fakeInventory) ReleaseAllotments(_ context.Context, _ int64, dates []time.Time, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.releasedDates = append(f.releasedDates, dates...)
	return nil
}

type fakeBookings struct {
	mu     sync.Mutex
	nextID int64
	byRef  map[string]domain.Booking
}

func newFakeBookings() *fakeBookings {
	return &fakeBookings{byRef: map[string]domain.Booking{}}
}

func (f *fakeBookings) CreateBooking(_ context.Context, b *domain.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	b.ID = f.nextID
	f.byRef[b.Reference] = *b
	return nil
}

func (f *fakeBookings) GetBookingByReference(_ context.Context, ref string) (domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.byRef[ref]
	if !ok {
		return domain.Booking{}, domain.ErrNotFound
	}
	return b, nil
}

func (f *fakeBookings) UpdateBookingStatus(_ context.Context, id int64, from, to domain.BookingStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ref, b := range f.byRef {
		if b.ID == id {
			if b.Status != from {
				return domain.ErrInvalidTransition
			}
			b.Status = to
			f.byRef[ref] = b
			return nil
		}
	}
	return domain.ErrNotFound
}

type fakeCache struct {
	mu    sync.Mutex
	store map[string][]byte
}

func (c *fakeCache) Get(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(_ context.Context, key string, v any, _ int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	return nil
}

// ---- fixture ----

const (
	hotelID    = int64(1)
	stayTypeID = int64(10)
	roomTypeID = int64(20)
	ratePlanID = int64(30)
)

func ptr[T any](v T) *T { return &v }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func tomorrow() time.Time {
	return domain.DateOnly(time.Now()).AddDate(0, 0, 1)
}

// newFixture seeds a 2-night package on a unit-included plan with a single
// global rule: base 150.00, 25.00 per extra person above 2 included.
func newFixture() *fakeInventory {
	today := domain.DateOnly(time.Now())
	return &fakeInventory{
		stayTypes: map[int64]domain.StayType{
			stayTypeID: {ID: stayTypeID, HotelID: hotelID, Code: "WKND", Name: "Weekend break", Nights: 2, IncludedBoard: "bb", Active: true},
		},
		roomTypes: map[int64]domain.RoomType{
			roomTypeID: {ID: roomTypeID, HotelID: hotelID, Code: "DBL", Name: "Double", BaseOccupancy: 2, MaxOccupancy: 3, ExtraBedSlots: 1, Active: true},
		},
		ratePlans: map[int64]domain.RatePlan{
			ratePlanID: {ID: ratePlanID, HotelID: hotelID, Code: "STD", Name: "Standard", Currency: "EUR", Model: domain.PricingUnitIncluded, Active: true},
		},
		policies: map[int64]domain.AgePolicy{
			hotelID: {InfantMaxAge: ptr(2), ChildMaxAge: ptr(12)},
		},
		rules: []domain.RateRule{{
			ID:             1,
			RatePlanID:     ratePlanID,
			StartDate:      today.AddDate(0, 0, -30),
			EndDate:        today.AddDate(1, 0, 0),
			BasePrice:      15000,
			PerExtraPerson: 2500,
		}},
	}
}

func mustOccupancy(adults, children, infants, extraBeds int) domain.Occupancy {
	o, err := domain.NewOccupancy(adults, children, infants, extraBeds)
	if err != nil {
		panic(err)
	}
	return o
}
