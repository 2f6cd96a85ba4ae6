package app

import (
	"context"
	"fmt"
	"time"

	"stayops/internal/domain"
)

const defaultMaxStay = 30

// AvailabilityService evaluates whether stays are bookable and produces
// per-day calendars. All "unavailable" outcomes are result data; the only
// errors it returns are repository failures.
type AvailabilityService struct {
	repo     domain.InventoryRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewAvailabilityService(repo domain.InventoryRepository, cache domain.Cache, ttl time.Duration) *AvailabilityService {
	return &AvailabilityService{repo: repo, cache: cache, cacheTTL: ttl}
}

type StayQuery struct {
	StayTypeID int64
	RoomTypeID int64
	RatePlanID int64
	CheckIn    time.Time
	Occupancy  domain.Occupancy
}

type CalendarQuery struct {
	StayTypeID int64
	RoomTypeID int64
	RatePlanID int64
	From       time.Time
	To         time.Time
	Occupancy  domain.Occupancy
}

func unavailable(reason, message string, currency string) domain.AvailabilityResult {
	return domain.AvailabilityResult{
		Available:  false,
		Reason:     reason,
		Message:    message,
		TotalPrice: domain.ZeroMoney(currency),
	}
}

// CheckStay walks the consecutive nights of a fixed-duration stay starting
// at check-in. Min/max-stay violations return their own specific result and
// stop the walk immediately; other restrictions return the generic
// unavailable shape with a reason code. The rule resolved for the check-in
// night is reported as the canonical rule of the stay even when later
// nights price under a different rule.
func (s *AvailabilityService) CheckStay(ctx context.Context, q StayQuery) (domain.AvailabilityResult, error) {
	stayType, roomType, plan, err := s.loadTrio(ctx, q.StayTypeID, q.RoomTypeID, q.RatePlanID)
	if err != nil {
		return domain.AvailabilityResult{}, err
	}
	if !stayType.Active || !roomType.Active || !plan.Active {
		return unavailable(domain.ReasonNoRate, "not open for sale", plan.Currency), nil
	}

	if q.Occupancy.Total() > roomType.MaxOccupancy {
		return unavailable(domain.ReasonOccupancyExceeded,
			fmt.Sprintf("room %s sleeps at most %d guests", roomType.Code, roomType.MaxOccupancy),
			plan.Currency), nil
	}

	nights := stayType.Nights
	checkIn := domain.DateOnly(q.CheckIn)
	departure := checkIn.AddDate(0, 0, nights)

	rules, err := s.repo.ListRateRules(ctx, plan.ID, checkIn, departure.AddDate(0, 0, -1))
	if err != nil {
		return domain.AvailabilityResult{}, err
	}
	allotments, err := s.allotmentsByDate(ctx, roomType.ID, checkIn, departure)
	if err != nil {
		return domain.AvailabilityResult{}, err
	}

	today := domain.DateOnly(time.Now())
	result := domain.AvailabilityResult{Available: true, TotalPrice: domain.ZeroMoney(plan.Currency)}

	for i := 0; i < nights; i++ {
		date := checkIn.AddDate(0, 0, i)

		rule := resolveRateRule(rules, q.StayTypeID, q.RoomTypeID, date)
		if rule == nil {
			return unavailable(domain.ReasonNoRate,
				fmt.Sprintf("no rate for %s", date.Format("2006-01-02")), plan.Currency), nil
		}

		alt, hasAlt := allotments[date]
		if hasAlt && alt.StopSell {
			return unavailable(domain.ReasonStopSell,
				fmt.Sprintf("sales stopped on %s", date.Format("2006-01-02")), plan.Currency), nil
		}
		if date.Before(today) {
			return unavailable(domain.ReasonPastDate, "stay starts in the past", plan.Currency), nil
		}

		minStay := stayType.Nights
		if hasAlt && alt.MinStay > 0 {
			minStay = alt.MinStay
		}
		maxStay := defaultMaxStay
		if hasAlt && alt.MaxStay > 0 {
			maxStay = alt.MaxStay
		}
		if nights < minStay {
			return unavailable(domain.ReasonMinimumStay,
				fmt.Sprintf("minimum stay is %d nights", minStay), plan.Currency), nil
		}
		if nights > maxStay {
			return unavailable(domain.ReasonMaximumStay,
				fmt.Sprintf("maximum stay is %d nights", maxStay), plan.Currency), nil
		}

		if hasAlt && alt.Remaining() <= 0 {
			return unavailable(domain.ReasonSoldOut,
				fmt.Sprintf("sold out on %s", date.Format("2006-01-02")), plan.Currency), nil
		}
		if i == 0 && hasAlt && alt.CTA {
			return unavailable(domain.ReasonClosedToArrival,
				fmt.Sprintf("arrivals closed on %s", date.Format("2006-01-02")), plan.Currency), nil
		}

		night := priceStay(rule, plan.Model, plan.Currency, q.Occupancy, 1)
		result.AvailableDates = append(result.AvailableDates, date)
		result.Nights = append(result.Nights, domain.NightPrice{Date: date, Price: night.Total})
		if result.RateRule == nil {
			result.RateRule = rule
		}
	}

	if dep, ok := allotments[departure]; ok && dep.CTD {
		return unavailable(domain.ReasonClosedToDeparture,
			fmt.Sprintf("departures closed on %s", departure.Format("2006-01-02")), plan.Currency), nil
	}

	for _, n := range result.Nights {
		total, err := result.TotalPrice.Add(n.Price)
		if err != nil {
			return domain.AvailabilityResult{}, err
		}
		result.TotalPrice = total
	}
	return result, nil
}

// Calendar evaluates every day of [from, to] independently; there is no
// min-stay short-circuit across days. Responses are cached per room type
// with a generation counter so bookings can invalidate without enumerating
// every cached range.
func (s *AvailabilityService) Calendar(ctx context.Context, q CalendarQuery) (domain.Calendar, error) {
	from := domain.DateOnly(q.From)
	to := domain.DateOnly(q.To)
	if to.Before(from) {
		return domain.Calendar{}, &domain.InvalidInputError{Field: "to", Reason: "must not be before from"}
	}

	key := s.calendarKey(ctx, q, from, to)
	if s.cache != nil {
		var cached domain.Calendar
		if ok, _ := s.cache.Get(ctx, key, &cached); ok {
			return cached, nil
		}
	}

	stayType, roomType, plan, err := s.loadTrio(ctx, q.StayTypeID, q.RoomTypeID, q.RatePlanID)
	if err != nil {
		return domain.Calendar{}, err
	}
	rules, err := s.repo.ListRateRules(ctx, plan.ID, from, to)
	if err != nil {
		return domain.Calendar{}, err
	}
	allotments, err := s.allotmentsByDate(ctx, roomType.ID, from, to)
	if err != nil {
		return domain.Calendar{}, err
	}

	today := domain.DateOnly(time.Now())
	sellable := stayType.Active && roomType.Active && plan.Active

	var cal domain.Calendar
	for date := from; !date.After(to); date = date.AddDate(0, 0, 1) {
		rule := resolveRateRule(rules, q.StayTypeID, q.RoomTypeID, date)
		alt, hasAlt := allotments[date]

		day := domain.CalendarDay{
			Date:    date,
			Weekday: int(date.Weekday()),
			Weekend: date.Weekday() == time.Saturday || date.Weekday() == time.Sunday,
		}
		if hasAlt {
			day.Allotment = &domain.AllotmentSnapshot{
				Quantity:  alt.Quantity,
				Allocated: alt.Allocated,
				Remaining: alt.Remaining(),
				StopSell:  alt.StopSell,
			}
		}

		var reason string
		switch {
		case rule == nil || !sellable:
			reason = domain.ReasonNoRate
		case date.Before(today):
			reason = domain.ReasonPastDate
		case hasAlt && alt.StopSell:
			reason = domain.ReasonStopSell
		case hasAlt && alt.Remaining() <= 0:
			reason = domain.ReasonSoldOut
		}

		if reason == "" {
			day.Available = true
			night := priceStay(rule, plan.Model, plan.Currency, q.Occupancy, 1)
			day.Price = &night.Total
			base := domain.Money{Amount: rule.BasePrice, Currency: plan.Currency}
			day.BasePrice = &base
			cal.AvailableDays++
		} else {
			r := reason
			day.Reason = &r
			if rule != nil && sellable {
				base := domain.Money{Amount: rule.BasePrice, Currency: plan.Currency}
				day.BasePrice = &base
			}
		}
		day.Blocked = rule == nil || !day.Available

		cal.Days = append(cal.Days, day)
		cal.TotalDays++
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, key, cal, int(s.cacheTTL.Seconds()))
	}
	return cal, nil
}

// InvalidateRoomType bumps the calendar cache generation for a room type.
// Called after anything that changes its inventory.
func (s *AvailabilityService) InvalidateRoomType(ctx context.Context, roomTypeID int64) {
	if s.cache == nil {
		return
	}
	gen := s.generation(ctx, roomTypeID) + 1
	_ = s.cache.Set(ctx, genKey(roomTypeID), gen, 0)
}

func (s *AvailabilityService) loadTrio(ctx context.Context, stayTypeID, roomTypeID, ratePlanID int64) (domain.StayType, domain.RoomType, domain.RatePlan, error) {
	stayType, err := s.repo.GetStayType(ctx, stayTypeID)
	if err != nil {
		return domain.StayType{}, domain.RoomType{}, domain.RatePlan{}, fmt.Errorf("load stay type %d: %w", stayTypeID, err)
	}
	roomType, err := s.repo.GetRoomType(ctx, roomTypeID)
	if err != nil {
		return domain.StayType{}, domain.RoomType{}, domain.RatePlan{}, fmt.Errorf("load room type %d: %w", roomTypeID, err)
	}
	plan, err := s.repo.GetRatePlan(ctx, ratePlanID)
	if err != nil {
		return domain.StayType{}, domain.RoomType{}, domain.RatePlan{}, fmt.Errorf("load rate plan %d: %w", ratePlanID, err)
	}
	return stayType, roomType, plan, nil
}

func (s *AvailabilityService) allotmentsByDate(ctx context.Context, roomTypeID int64, from, to time.Time) (map[time.Time]domain.Allotment, error) {
	list, err := s.repo.ListAllotments(ctx, roomTypeID, from, to)
	if err != nil {
		return nil, err
	}
	out := make(map[time.Time]domain.Allotment, len(list))
	for _, a := range list {
		out[domain.DateOnly(a.Date)] = a
	}
	return out, nil
}

func genKey(roomTypeID int64) string { return fmt.Sprintf("calgen:%d", roomTypeID) }

func (s *AvailabilityService) generation(ctx context.Context, roomTypeID int64) int {
	var gen int
	if ok, _ := s.cache.Get(ctx, genKey(roomTypeID), &gen); ok {
		return gen
	}
	return 0
}

func (s *AvailabilityService) calendarKey(ctx context.Context, q CalendarQuery, from, to time.Time) string {
	gen := 0
	if s.cache != nil {
		gen = s.generation(ctx, q.RoomTypeID)
	}
	return fmt.Sprintf("cal:%d:%d:%d:%d:%s:%s:%d:%d",
		gen, q.RoomTypeID, q.StayTypeID, q.RatePlanID,
		from.Format("2006-01-02"), to.Format("2006-01-02"),
		q.Occupancy.Adults, q.Occupancy.Children)
}
