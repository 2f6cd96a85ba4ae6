package app

import (
	"context"
	"time"

	"stayops/internal/domain"
)

// PricingService computes price breakdowns for stays.
type PricingService struct {
	repo domain.InventoryRepository
}

func NewPricingService(repo domain.InventoryRepository) *PricingService {
	return &PricingService{repo: repo}
}

type QuoteInput struct {
	StayTypeID int64
	RoomTypeID int64
	RatePlanID int64
	CheckIn    time.Time
	Occupancy  domain.Occupancy
}

// Quote resolves the rate rule for the check-in date and prices the full
// fixed-duration stay with it. A zero breakdown means "unpriceable"; callers
// must branch on it rather than expect an error.
func (s *PricingService) Quote(ctx context.Context, in QuoteInput) (domain.PriceBreakdown, error) {
	stayType, err := s.repo.GetStayType(ctx, in.StayTypeID)
	if err != nil {
		return domain.PriceBreakdown{}, err
	}
	plan, err := s.repo.GetRatePlan(ctx, in.RatePlanID)
	if err != nil {
		return domain.PriceBreakdown{}, err
	}
	if !plan.Active {
		return domain.ZeroBreakdown(plan.Currency), nil
	}
	checkIn := domain.DateOnly(in.CheckIn)
	rules, err := s.repo.ListRateRules(ctx, plan.ID, checkIn, checkIn)
	if err != nil {
		return domain.PriceBreakdown{}, err
	}
	rule := resolveRateRule(rules, in.StayTypeID, in.RoomTypeID, checkIn)
	return priceStay(rule, plan.Model, plan.Currency, in.Occupancy, stayType.Nights), nil
}

// priceStay is the pure pricing engine. All arithmetic is in minor units,
// so nothing here ever rounds; totals floor at zero.
func priceStay(rule *domain.RateRule, model domain.PricingModel, currency string, occ domain.Occupancy, nights int) domain.PriceBreakdown {
	if rule == nil || nights <= 0 {
		return domain.ZeroBreakdown(currency)
	}

	b := domain.ZeroBreakdown(currency)
	money := func(minor int64) domain.Money {
		if minor < 0 {
			minor = 0
		}
		return domain.Money{Amount: minor, Currency: currency}
	}

	b.Base = money(rule.BasePrice).MulInt(nights)

	switch model {
	case domain.PricingUnitIncluded:
		extra := occ.Total() - rule.Included()
		if extra > 0 {
			b.ExtraOccupancyCharge = money(rule.PerExtraPerson).MulInt(extra).MulInt(nights)
		}
	default: // occupancy-based
		b.AdultSupplement = money(rule.PerAdult).MulInt(occ.Adults).MulInt(nights)
		b.ChildSupplement = money(rule.PerChild).MulInt(occ.Children).MulInt(nights)
		b.InfantSupplement = money(rule.PerInfant).MulInt(occ.Infants).MulInt(nights)
		b.ExtraBedSupplement = money(rule.PerExtraBed).MulInt(occ.ExtraBeds).MulInt(nights)
		if occ.Total() == 1 && rule.SingleUseSupplement > 0 {
			b.SingleUseSupplement = money(rule.SingleUseSupplement).MulInt(nights)
		}
	}

	total := b.Base.Amount +
		b.AdultSupplement.Amount +
		b.ChildSupplement.Amount +
		b.InfantSupplement.Amount +
		b.ExtraBedSupplement.Amount +
		b.SingleUseSupplement.Amount +
		b.ExtraOccupancyCharge.Amount
	if total < 0 {
		total = 0
	}
	b.Total = money(total)
	return b
}
