package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"stayops/internal/domain"
)

// BookingService owns the booking lifecycle: creation with atomic allotment
// reservation, and the status transitions that follow.
type BookingService struct {
	inv       domain.InventoryRepository
	bookings  domain.BookingRepository
	avail     *AvailabilityService
	validator *BookingValidator
	log       zerolog.Logger
}

func NewBookingService(
	inv domain.InventoryRepository,
	bookings domain.BookingRepository,
	avail *AvailabilityService,
	validator *BookingValidator,
	log zerolog.Logger,
) *BookingService {
	return &BookingService{inv: inv, bookings: bookings, avail: avail, validator: validator, log: log}
}

type CreateBookingInput struct {
	HotelID    int64
	StayTypeID int64
	RoomTypeID int64
	RatePlanID int64
	CheckIn    time.Time
	Adults     int
	Children   int
	Infants    int
	ExtraBeds  int
	Guests     []domain.DraftGuest
}

// CreateOutcome distinguishes the three non-error ways creation can end:
// a persisted booking, an unavailable stay, or a rejected draft. Only
// repository failures and bad inputs surface as errors.
type CreateOutcome struct {
	Booking      *domain.Booking
	Availability domain.AvailabilityResult
	Validation   domain.ValidationResult
}

func (s *BookingService) Create(ctx context.Context, in CreateBookingInput) (CreateOutcome, error) {
	occ, err := domain.NewOccupancy(in.Adults, in.Children, in.Infants, in.ExtraBeds)
	if err != nil {
		return CreateOutcome{}, err
	}
	checkIn := domain.DateOnly(in.CheckIn)

	avail, err := s.avail.CheckStay(ctx, StayQuery{
		StayTypeID: in.StayTypeID,
		RoomTypeID: in.RoomTypeID,
		RatePlanID: in.RatePlanID,
		CheckIn:    checkIn,
		Occupancy:  occ,
	})
	if err != nil {
		return CreateOutcome{}, err
	}
	if !avail.Available {
		return CreateOutcome{Availability: avail}, nil
	}

	stayType, roomType, plan, err := s.avail.loadTrio(ctx, in.StayTypeID, in.RoomTypeID, in.RatePlanID)
	if err != nil {
		return CreateOutcome{}, err
	}
	policy, err := s.inv.GetAgePolicy(ctx, in.HotelID)
	if err != nil {
		return CreateOutcome{}, fmt.Errorf("load age policy for hotel %d: %w", in.HotelID, err)
	}

	draft := domain.BookingDraft{
		StayType:    &stayType,
		RoomType:    &roomType,
		RatePlan:    &plan,
		AgePolicy:   policy,
		CheckIn:     checkIn,
		Nights:      stayType.Nights,
		Occupancy:   occ,
		Guests:      in.Guests,
		TotalAmount: avail.TotalPrice.Amount,
		Currency:    plan.Currency,
	}
	if vr := s.validator.ValidateWithAges(draft); !vr.Valid() {
		return CreateOutcome{Availability: avail, Validation: vr}, nil
	}

	if err := s.inv.ReserveAllotments(ctx, roomType.ID, avail.AvailableDates, 1); err != nil {
		return CreateOutcome{}, fmt.Errorf("reserve allotments: %w", err)
	}

	booking, err := s.assembleBooking(in, draft, avail)
	if err != nil {
		s.release(ctx, roomType.ID, avail.AvailableDates)
		return CreateOutcome{}, err
	}
	if err := s.bookings.CreateBooking(ctx, booking); err != nil {
		s.release(ctx, roomType.ID, avail.AvailableDates)
		return CreateOutcome{}, fmt.Errorf("persist booking: %w", err)
	}
	s.avail.InvalidateRoomType(ctx, roomType.ID)

	s.log.Info().
		Str("reference", booking.Reference).
		Int64("room_type", roomType.ID).
		Str("check_in", checkIn.Format("2006-01-02")).
		Int("nights", booking.Nights).
		Int64("total", booking.TotalAmount).
		Str("currency", booking.Currency).
		Msg("booking created")

	return CreateOutcome{Booking: booking, Availability: avail}, nil
}

// assembleBooking freezes the priced stay into a persistable record,
// snapshotting the rate rule, age policy, and breakdown as they were sold.
func (s *BookingService) assembleBooking(in CreateBookingInput, draft domain.BookingDraft, avail domain.AvailabilityResult) (*domain.Booking, error) {
	ruleSnap, err := json.Marshal(avail.RateRule)
	if err != nil {
		return nil, fmt.Errorf("snapshot rate rule: %w", err)
	}
	policySnap, err := json.Marshal(draft.AgePolicy)
	if err != nil {
		return nil, fmt.Errorf("snapshot age policy: %w", err)
	}
	breakdown := priceStay(avail.RateRule, draft.RatePlan.Model, draft.Currency, draft.Occupancy, draft.Nights)
	breakdownSnap, err := json.Marshal(breakdown)
	if err != nil {
		return nil, fmt.Errorf("snapshot breakdown: %w", err)
	}

	b := &domain.Booking{
		Reference:         domain.NewBookingReference(),
		HotelID:           in.HotelID,
		StayTypeID:        in.StayTypeID,
		RoomTypeID:        in.RoomTypeID,
		RatePlanID:        in.RatePlanID,
		CheckIn:           draft.CheckIn,
		CheckOut:          draft.CheckIn.AddDate(0, 0, draft.Nights),
		Nights:            draft.Nights,
		Occupancy:         draft.Occupancy,
		Status:            domain.StatusPending,
		TotalAmount:       avail.TotalPrice.Amount,
		Currency:          draft.Currency,
		RateRuleSnapshot:  ruleSnap,
		AgePolicySnapshot: policySnap,
		BreakdownSnapshot: breakdownSnap,
		CreatedAt:         time.Now().UTC(),
	}
	for _, g := range in.Guests {
		cat, err := domain.ParseGuestCategory(g.Category)
		if err != nil {
			return nil, err // validator has already vetted these
		}
		guest := domain.BookingGuest{Name: g.Name, Category: cat}
		if g.Birthdate != nil {
			bd := domain.DateOnly(*g.Birthdate)
			guest.Birthdate = &bd
		}
		b.Guests = append(b.Guests, guest)
	}
	return b, nil
}

func (s *BookingService) Get(ctx context.Context, reference string) (domain.Booking, error) {
	return s.bookings.GetBookingByReference(ctx, reference)
}

func (s *BookingService) Confirm(ctx context.Context, reference string) (domain.Booking, error) {
	return s.transition(ctx, reference, domain.StatusConfirmed)
}

func (s *BookingService) Cancel(ctx context.Context, reference string) (domain.Booking, error) {
	return s.transition(ctx, reference, domain.StatusCancelled)
}

func (s *BookingService) CheckIn(ctx context.Context, reference string) (domain.Booking, error) {
	return s.transition(ctx, reference, domain.StatusCheckedIn)
}

func (s *BookingService) CheckOut(ctx context.Context, reference string) (domain.Booking, error) {
	return s.transition(ctx, reference, domain.StatusCheckedOut)
}

func (s *BookingService) MarkNoShow(ctx context.Context, reference string) (domain.Booking, error) {
	return s.transition(ctx, reference, domain.StatusNoShow)
}

func (s *BookingService) transition(ctx context.Context, reference string, to domain.BookingStatus) (domain.Booking, error) {
	b, err := s.bookings.GetBookingByReference(ctx, reference)
	if err != nil {
		return domain.Booking{}, err
	}
	if !b.Status.CanTransitionTo(to) {
		return domain.Booking{}, fmt.Errorf("%s -> %s: %w", b.Status, to, domain.ErrInvalidTransition)
	}
	if err := s.bookings.UpdateBookingStatus(ctx, b.ID, b.Status, to); err != nil {
		return domain.Booking{}, err
	}

	// Cancellations and no-shows give the room nights back.
	if b.Status.HoldsInventory() && !to.HoldsInventory() && to != domain.StatusCheckedOut {
		s.release(ctx, b.RoomTypeID, stayDates(b.CheckIn, b.Nights))
		s.avail.InvalidateRoomType(ctx, b.RoomTypeID)
	}

	s.log.Info().
		Str("reference", b.Reference).
		Str("from", string(b.Status)).
		Str("to", string(to)).
		Msg("booking status changed")

	b.Status = to
	return b, nil
}

func (s *BookingService) release(ctx context.Context, roomTypeID int64, dates []time.Time) {
	if err := s.inv.ReleaseAllotments(ctx, roomTypeID, dates, 1); err != nil {
		s.log.Error().Err(err).Int64("room_type", roomTypeID).Msg("release allotments failed")
	}
}

func stayDates(checkIn time.Time, nights int) []time.Time {
	dates := make([]time.Time, 0, nights)
	for i := 0; i < nights; i++ {
		dates = append(dates, domain.DateOnly(checkIn).AddDate(0, 0, i))
	}
	return dates
}
