package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"stayops/internal/adapters/observability"
	"stayops/internal/app"
	"stayops/internal/domain"
)

const dateLayout = "2006-01-02"

var validate = validator.New()

type Handlers struct {
	Avail    *app.AvailabilityService
	Pricing  *app.PricingService
	Bookings *app.BookingService
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/availability/calendar", h.getCalendar)
	s.mux.Post("/v1/availability/check", h.checkAvailability)
	s.mux.Post("/v1/quotes", h.createQuote)
	s.mux.Post("/v1/bookings", h.createBooking)
	s.mux.Get("/v1/bookings/{ref}", h.getBooking)
	s.mux.Post("/v1/bookings/{ref}/confirm", h.transition("confirmed", h.Bookings.Confirm))
	s.mux.Post("/v1/bookings/{ref}/cancel", h.transition("cancelled", h.Bookings.Cancel))
	s.mux.Post("/v1/bookings/{ref}/checkin", h.transition("checked_in", h.Bookings.CheckIn))
	s.mux.Post("/v1/bookings/{ref}/checkout", h.transition("checked_out", h.Bookings.CheckOut))
	s.mux.Post("/v1/bookings/{ref}/no-show", h.transition("no_show", h.Bookings.MarkNoShow))
}

// ---------------------------------------------------------------------------
// Request/response shapes
// ---------------------------------------------------------------------------

type stayRequest struct {
	StayTypeID int64  `json:"stay_type_id" validate:"required,gt=0"`
	RoomTypeID int64  `json:"room_type_id" validate:"required,gt=0"`
	RatePlanID int64  `json:"rate_plan_id" validate:"required,gt=0"`
	CheckIn    string `json:"check_in" validate:"required,datetime=2006-01-02"`
	Adults     int    `json:"adults" validate:"required,gte=1,lte=20"`
	Children   int    `json:"children" validate:"gte=0,lte=20"`
	Infants    int    `json:"infants" validate:"gte=0,lte=20"`
	ExtraBeds  int    `json:"extra_beds" validate:"gte=0,lte=10"`
}

type guestRequest struct {
	Name      string `json:"name" validate:"required,max=255"`
	Birthdate string `json:"birthdate" validate:"omitempty,datetime=2006-01-02"`
	Category  string `json:"guest_category" validate:"required"`
}

type bookingRequest struct {
	stayRequest
	HotelID int64          `json:"hotel_id" validate:"required,gt=0"`
	Guests  []guestRequest `json:"guests" validate:"required,min=1,dive"`
}

type guestResponse struct {
	Name      string  `json:"name"`
	Birthdate *string `json:"birthdate,omitempty"`
	Category  string  `json:"guest_category"`
}

type bookingResponse struct {
	Reference  string `json:"reference"`
	Status     string `json:"status"`
	HotelID    int64  `json:"hotel_id"`
	StayTypeID int64  `json:"stay_type_id"`
	RoomTypeID int64  `json:"room_type_id"`
	RatePlanID int64  `json:"rate_plan_id"`

	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
	Nights   int    `json:"nights"`

	Adults    int `json:"adults"`
	Children  int `json:"children"`
	Infants   int `json:"infants"`
	ExtraBeds int `json:"extra_beds"`

	TotalAmount int64           `json:"total_amount"`
	Currency    string          `json:"currency"`
	Breakdown   json.RawMessage `json:"breakdown,omitempty"`

	Guests    []guestResponse `json:"guests"`
	CreatedAt time.Time       `json:"created_at"`
}

func toBookingResponse(b domain.Booking) bookingResponse {
	out := bookingResponse{
		Reference:  b.Reference,
		Status:     string(b.Status),
		HotelID:    b.HotelID,
		StayTypeID: b.StayTypeID,
		RoomTypeID: b.RoomTypeID,
		RatePlanID: b.RatePlanID,

		CheckIn:  b.CheckIn.Format(dateLayout),
		CheckOut: b.CheckOut.Format(dateLayout),
		Nights:   b.Nights,

		Adults:    b.Occupancy.Adults,
		Children:  b.Occupancy.Children,
		Infants:   b.Occupancy.Infants,
		ExtraBeds: b.Occupancy.ExtraBeds,

		TotalAmount: b.TotalAmount,
		Currency:    b.Currency,
		Breakdown:   json.RawMessage(b.BreakdownSnapshot),

		Guests:    []guestResponse{},
		CreatedAt: b.CreatedAt,
	}
	for _, g := range b.Guests {
		gr := guestResponse{Name: g.Name, Category: string(g.Category)}
		if g.Birthdate != nil {
			d := g.Birthdate.Format(dateLayout)
			gr.Birthdate = &d
		}
		out.Guests = append(out.Guests, gr)
	}
	return out
}

// ---------------------------------------------------------------------------
// Plumbing
// ---------------------------------------------------------------------------

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsInvalidInput(err):
		writeProblem(w, http.StatusBadRequest, "Invalid Input", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "resource not found")
	case errors.Is(err, domain.ErrInvalidTransition):
		writeProblem(w, http.StatusConflict, "Invalid Transition", err.Error())
	case errors.Is(err, domain.ErrNoInventory):
		writeProblem(w, http.StatusConflict, "No Inventory", "the requested nights were taken by another booking")
	default:
		log.Error().Err(err).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// decodeValid parses the body into dst and runs struct validation. Both
// failures are client errors; the response is already written on false.
func decodeValid(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeProblem(w, http.StatusBadRequest, "Malformed Body", err.Error())
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return false
	}
	return true
}

func mustDate(s string) time.Time {
	t, _ := time.Parse(dateLayout, s)
	return t
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeCacheable(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

// ---------------------------------------------------------------------------
// Availability
// ---------------------------------------------------------------------------

func (req stayRequest) toQuery() app.StayQuery {
	occ, _ := domain.NewOccupancy(req.Adults, req.Children, req.Infants, req.ExtraBeds)
	return app.StayQuery{
		StayTypeID: req.StayTypeID,
		RoomTypeID: req.RoomTypeID,
		RatePlanID: req.RatePlanID,
		CheckIn:    mustDate(req.CheckIn),
		Occupancy:  occ,
	}
}

func (h *Handlers) checkAvailability(w http.ResponseWriter, r *http.Request) {
	var req stayRequest
	if !decodeValid(w, r, &req) {
		return
	}
	res, err := h.Avail.CheckStay(r.Context(), req.toQuery())
	if err != nil {
		writeError(w, err)
		return
	}
	outcome := "available"
	if !res.Available {
		outcome = res.Reason
	}
	observability.ObserveAvailability(outcome)
	writeJSON(w, http.StatusOK, res)
}

func queryInt64(r *http.Request, key string) (int64, error) {
	v, err := strconv.ParseInt(r.URL.Query().Get(key), 10, 64)
	if err != nil || v <= 0 {
		return 0, &domain.InvalidInputError{Field: key, Reason: "must be a positive integer"}
	}
	return v, nil
}

func queryDate(r *http.Request, key string) (time.Time, error) {
	t, err := time.Parse(dateLayout, r.URL.Query().Get(key))
	if err != nil {
		return time.Time{}, &domain.InvalidInputError{Field: key, Reason: "must be a YYYY-MM-DD date"}
	}
	return t, nil
}

func (h *Handlers) getCalendar(w http.ResponseWriter, r *http.Request) {
	var q app.CalendarQuery
	var err error
	if q.StayTypeID, err = queryInt64(r, "stay_type_id"); err != nil {
		writeError(w, err)
		return
	}
	if q.RoomTypeID, err = queryInt64(r, "room_type_id"); err != nil {
		writeError(w, err)
		return
	}
	if q.RatePlanID, err = queryInt64(r, "rate_plan_id"); err != nil {
		writeError(w, err)
		return
	}
	if q.From, err = queryDate(r, "from"); err != nil {
		writeError(w, err)
		return
	}
	if q.To, err = queryDate(r, "to"); err != nil {
		writeError(w, err)
		return
	}
	adults := 2
	if a := r.URL.Query().Get("adults"); a != "" {
		if adults, err = strconv.Atoi(a); err != nil || adults < 1 {
			writeError(w, &domain.InvalidInputError{Field: "adults", Reason: "must be a positive integer"})
			return
		}
	}
	children := 0
	if c := r.URL.Query().Get("children"); c != "" {
		if children, err = strconv.Atoi(c); err != nil || children < 0 {
			writeError(w, &domain.InvalidInputError{Field: "children", Reason: "must be a non-negative integer"})
			return
		}
	}
	if q.Occupancy, err = domain.NewOccupancy(adults, children, 0, 0); err != nil {
		writeError(w, err)
		return
	}

	cal, err := h.Avail.Calendar(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeCacheable(w, r, cal)
}

// ---------------------------------------------------------------------------
// Quotes
// ---------------------------------------------------------------------------

func (h *Handlers) createQuote(w http.ResponseWriter, r *http.Request) {
	var req stayRequest
	if !decodeValid(w, r, &req) {
		return
	}
	q := req.toQuery()
	breakdown, err := h.Pricing.Quote(r.Context(), app.QuoteInput{
		StayTypeID: q.StayTypeID,
		RoomTypeID: q.RoomTypeID,
		RatePlanID: q.RatePlanID,
		CheckIn:    q.CheckIn,
		Occupancy:  q.Occupancy,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if breakdown.IsZero() {
		writeProblem(w, http.StatusUnprocessableEntity, "Unpriceable", "no rate rule covers the requested stay")
		return
	}
	writeJSON(w, http.StatusOK, breakdown)
}

// ---------------------------------------------------------------------------
// Bookings
// ---------------------------------------------------------------------------

func (h *Handlers) createBooking(w http.ResponseWriter, r *http.Request) {
	var req bookingRequest
	if !decodeValid(w, r, &req) {
		return
	}

	in := app.CreateBookingInput{
		HotelID:    req.HotelID,
		StayTypeID: req.StayTypeID,
		RoomTypeID: req.RoomTypeID,
		RatePlanID: req.RatePlanID,
		CheckIn:    mustDate(req.CheckIn),
		Adults:     req.Adults,
		Children:   req.Children,
		Infants:    req.Infants,
		ExtraBeds:  req.ExtraBeds,
	}
	for _, g := range req.Guests {
		dg := domain.DraftGuest{Name: g.Name, Category: g.Category}
		if g.Birthdate != "" {
			bd := mustDate(g.Birthdate)
			dg.Birthdate = &bd
		}
		in.Guests = append(in.Guests, dg)
	}

	out, err := h.Bookings.Create(r.Context(), in)
	if err != nil {
		observability.ObserveBooking("rejected")
		writeError(w, err)
		return
	}
	switch {
	case out.Booking != nil:
		observability.ObserveBooking("created")
		writeJSON(w, http.StatusCreated, toBookingResponse(*out.Booking))
	case !out.Availability.Available:
		observability.ObserveBooking("rejected")
		writeJSON(w, http.StatusConflict, out.Availability)
	default:
		observability.ObserveBooking("rejected")
		writeJSON(w, http.StatusUnprocessableEntity, out.Validation)
	}
}

func (h *Handlers) getBooking(w http.ResponseWriter, r *http.Request) {
	b, err := h.Bookings.Get(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeCacheable(w, r, toBookingResponse(b))
}

func (h *Handlers) transition(event string, fn func(context.Context, string) (domain.Booking, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := fn(r.Context(), chi.URLParam(r, "ref"))
		if err != nil {
			writeError(w, err)
			return
		}
		observability.ObserveBooking(event)
		writeJSON(w, http.StatusOK, toBookingResponse(b))
	}
}
