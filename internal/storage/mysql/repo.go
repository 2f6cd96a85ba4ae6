package mysql

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"stayops/internal/domain"
)

const dateLayout = "2006-01-02"

func day(t time.Time) string { return t.Format(dateLayout) }

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
func int64Ptr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// ---------------------------------------------------------------------------
// Catalog
// ---------------------------------------------------------------------------

func (r *Repo) GetStayType(ctx context.Context, id int64) (domain.StayType, error) {
	var st domain.StayType
	err := r.db.QueryRowContext(ctx, getStayTypeSQL, id).Scan(
		&st.ID, &st.HotelID, &st.Code, &st.Name, &st.Nights, &st.IncludedBoard, &st.Active,
	)
	if err == sql.ErrNoRows {
		return domain.StayType{}, domain.ErrNotFound
	}
	return st, err
}

func scanRoomType(row interface{ Scan(...any) error }) (domain.RoomType, error) {
	var rt domain.RoomType
	err := row.Scan(
		&rt.ID, &rt.HotelID, &rt.Code, &rt.Name,
		&rt.BaseOccupancy, &rt.MaxOccupancy, &rt.ExtraBedSlots,
		&rt.SingleUseSupplement, &rt.Active,
	)
	return rt, err
}

func (r *Repo) GetRoomType(ctx context.Context, id int64) (domain.RoomType, error) {
	rt, err := scanRoomType(r.db.QueryRowContext(ctx, getRoomTypeSQL, id))
	if err == sql.ErrNoRows {
		return domain.RoomType{}, domain.ErrNotFound
	}
	return rt, err
}

func (r *Repo) ListActiveRoomTypes(ctx context.Context) ([]domain.RoomType, error) {
	rows, err := r.db.QueryContext(ctx, listActiveRoomTypesSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RoomType
	for rows.Next() {
		rt, err := scanRoomType(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

func (r *Repo) GetRatePlan(ctx context.Context, id int64) (domain.RatePlan, error) {
	var rp domain.RatePlan
	err := r.db.QueryRowContext(ctx, getRatePlanSQL, id).Scan(
		&rp.ID, &rp.HotelID, &rp.Code, &rp.Name, &rp.Currency, &rp.Model, &rp.Active,
	)
	if err == sql.ErrNoRows {
		return domain.RatePlan{}, domain.ErrNotFound
	}
	return rp, err
}

func (r *Repo) GetAgePolicy(ctx context.Context, hotelID int64) (domain.AgePolicy, error) {
	var infant, child, adult sql.NullInt64
	err := r.db.QueryRowContext(ctx, getAgePolicySQL, hotelID).Scan(&infant, &child, &adult)
	if err == sql.ErrNoRows {
		// Hotels without a policy row classify with the built-in fallbacks.
		return domain.AgePolicy{}, nil
	}
	if err != nil {
		return domain.AgePolicy{}, err
	}
	return domain.AgePolicy{
		InfantMaxAge: intPtr(infant),
		ChildMaxAge:  intPtr(child),
		AdultMinAge:  intPtr(adult),
	}, nil
}

// ---------------------------------------------------------------------------
// Rates and inventory
// ---------------------------------------------------------------------------

func (r *Repo) ListRateRules(ctx context.Context, ratePlanID int64, from, to time.Time) ([]domain.RateRule, error) {
	rows, err := r.db.QueryContext(ctx, listRateRulesSQL, ratePlanID, day(from), day(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RateRule
	for rows.Next() {
		var rr domain.RateRule
		var stayID, roomID, included sql.NullInt64
		if err := rows.Scan(
			&rr.ID, &rr.RatePlanID, &stayID, &roomID, &rr.StartDate, &rr.EndDate,
			&rr.BasePrice, &rr.PerAdult, &rr.PerChild, &rr.PerInfant, &rr.PerExtraBed,
			&rr.PerExtraPerson, &rr.SingleUseSupplement, &included,
		); err != nil {
			return nil, err
		}
		rr.StayTypeID = int64Ptr(stayID)
		rr.RoomTypeID = int64Ptr(roomID)
		rr.IncludedOccupancy = intPtr(included)
		out = append(out, rr)
	}
	return out, rows.Err()
}

func (r *Repo) ListAllotments(ctx context.Context, roomTypeID int64, from, to time.Time) ([]domain.Allotment, error) {
	rows, err := r.db.QueryContext(ctx, listAllotmentsSQL, roomTypeID, day(from), day(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Allotment
	for rows.Next() {
		var a domain.Allotment
		if err := rows.Scan(
			&a.ID, &a.RoomTypeID, &a.Date, &a.Quantity, &a.Allocated, &a.StopSell,
			&a.MinStay, &a.MaxStay, &a.CTA, &a.CTD,
		); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *Repo) UpsertAllotment(ctx context.Context, a domain.Allotment) error {
	_, err := r.db.ExecContext(ctx, upsertAllotmentSQL,
		a.RoomTypeID, day(a.Date), a.Quantity, a.Allocated, a.StopSell,
		a.MinStay, a.MaxStay, a.CTA, a.CTD,
	)
	return err
}

func (r *Repo) ReserveAllotments(ctx context.Context, roomTypeID int64, dates []time.Time, n int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, d := range dates {
		res, err := tx.ExecContext(ctx, reserveAllotmentSQL, n, roomTypeID, day(d), n)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected > 0 {
			continue
		}
		// No row changed: either the date has no allotment row and is
		// unconstrained, or another booking took the remaining units.
		var count int
		if err := tx.QueryRowContext(ctx, allotmentExistsSQL, roomTypeID, day(d)).Scan(&count); err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrNoInventory
		}
	}
	return tx.Commit()
}

func (r *Repo) ReleaseAllotments(ctx context.Context, roomTypeID int64, dates []time.Time, n int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, d := range dates {
		if _, err := tx.ExecContext(ctx, releaseAllotmentSQL, n, roomTypeID, day(d)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ---------------------------------------------------------------------------
// Bookings
// ---------------------------------------------------------------------------

func (r *Repo) CreateBooking(ctx context.Context, b *domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, insertBookingSQL,
		b.Reference, b.HotelID, b.StayTypeID, b.RoomTypeID, b.RatePlanID,
		day(b.CheckIn), day(b.CheckOut), b.Nights,
		b.Occupancy.Adults, b.Occupancy.Children, b.Occupancy.Infants, b.Occupancy.ExtraBeds,
		string(b.Status), b.TotalAmount, b.Currency,
		string(b.RateRuleSnapshot), string(b.AgePolicySnapshot), string(b.BreakdownSnapshot),
		b.CreatedAt,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = id

	if len(b.Guests) > 0 {
		values := make([]string, 0, len(b.Guests))
		args := make([]any, 0, len(b.Guests)*4)
		for _, g := range b.Guests {
			values = append(values, "(?,?,?,?)")
			var birth any
			if g.Birthdate != nil {
				birth = day(*g.Birthdate)
			}
			args = append(args, id, g.Name, birth, string(g.Category))
		}
		if _, err := tx.ExecContext(ctx, insertGuestsPrefix+strings.Join(values, ","), args...); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	for i := range b.Guests {
		b.Guests[i].BookingID = id
	}
	return nil
}

func (r *Repo) GetBookingByReference(ctx context.Context, ref string) (domain.Booking, error) {
	var b domain.Booking
	var status string
	var ruleSnap, policySnap, breakSnap []byte
	err := r.db.QueryRowContext(ctx, getBookingByRefSQL, ref).Scan(
		&b.ID, &b.Reference, &b.HotelID, &b.StayTypeID, &b.RoomTypeID, &b.RatePlanID,
		&b.CheckIn, &b.CheckOut, &b.Nights,
		&b.Occupancy.Adults, &b.Occupancy.Children, &b.Occupancy.Infants, &b.Occupancy.ExtraBeds,
		&status, &b.TotalAmount, &b.Currency,
		&ruleSnap, &policySnap, &breakSnap, &b.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return domain.Booking{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Booking{}, err
	}
	b.Status = domain.BookingStatus(status)
	b.RateRuleSnapshot = ruleSnap
	b.AgePolicySnapshot = policySnap
	b.BreakdownSnapshot = breakSnap

	rows, err := r.db.QueryContext(ctx, listGuestsSQL, b.ID)
	if err != nil {
		return domain.Booking{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var g domain.BookingGuest
		var birth sql.NullTime
		var cat string
		if err := rows.Scan(&g.ID, &g.BookingID, &g.Name, &birth, &cat); err != nil {
			return domain.Booking{}, err
		}
		if birth.Valid {
			bd := birth.Time
			g.Birthdate = &bd
		}
		g.Category = domain.GuestCategory(cat)
		b.Guests = append(b.Guests, g)
	}
	return b, rows.Err()
}

func (r *Repo) UpdateBookingStatus(ctx context.Context, id int64, from, to domain.BookingStatus) error {
	res, err := r.db.ExecContext(ctx, updateBookingStatusSQL, string(to), id, string(from))
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrInvalidTransition
	}
	return nil
}
