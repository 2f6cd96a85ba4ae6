package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	server "stayops/internal/adapters/http_server"
	"stayops/internal/app"
	"stayops/internal/domain"
)

// stubInventory is a fixed catalog with one unconstrained room; allotment
// behavior is steered per test through the allotments slice.
type stubInventory struct {
	allotments []domain.Allotment
	rules      []domain.RateRule
}

func (s *stubInventory) GetStayType(_ context.Context, id int64) (domain.StayType, error) {
	if id != 10 {
		return domain.StayType{}, domain.ErrNotFound
	}
	return domain.StayType{ID: 10, HotelID: 1, Code: "WKND", Nights: 2, IncludedBoard: "bb", Active: true}, nil
}

func (s *stubInventory) GetRoomType(_ context.Context, id int64) (domain.RoomType, error) {
	if id != 20 {
		return domain.RoomType{}, domain.ErrNotFound
	}
	return domain.RoomType{ID: 20, HotelID: 1, Code: "DBL", BaseOccupancy: 2, MaxOccupancy: 3, ExtraBedSlots: 1, Active: true}, nil
}

func (s *stubInventory) GetRatePlan(_ context.Context, id int64) (domain.RatePlan, error) {
	if id != 30 {
		return domain.RatePlan{}, domain.ErrNotFound
	}
	return domain.RatePlan{ID: 30, HotelID: 1, Code: "STD", Currency: "EUR", Model: domain.PricingUnitIncluded, Active: true}, nil
}

func (s *stubInventory) GetAgePolicy(_ context.Context, _ int64) (domain.AgePolicy, error) {
	infant, child := 2, 12
	return domain.AgePolicy{InfantMaxAge: &infant, ChildMaxAge: &child}, nil
}

func (s *stubInventory) ListActiveRoomTypes(_ context.Context) ([]domain.RoomType, error) {
	rt, _ := s.GetRoomType(context.Background(), 20)
	return []domain.RoomType{rt}, nil
}

func (s *stubInventory) ListRateRules(_ context.Context, _ int64, _, _ time.Time) ([]domain.RateRule, error) {
	return s.rules, nil
}

func (s *stubInventory) ListAllotments(_ context.Context, _ int64, _, _ time.Time) ([]domain.Allotment, error) {
	return s.allotments, nil
}

func (s *stubInventory) UpsertAllotment(_ context.Context, _ domain.Allotment) error { return nil }
func (s *stubInventory) ReserveAllotments(_ context.Context, _ int64, _ []time.Time, _ int) error {
	return nil
}
func (s *stubInventory) ReleaseAllotments(_ context.Context, _ int64, _ []time.Time, _ int) error {
	return nil
}

type stubBookings struct {
	nextID int64
	byRef  map[string]domain.Booking
}

func (s *stubBookings) CreateBooking(_ context.Context, b *domain.Booking) error {
	s.nextID++
	b.ID = s.nextID
	s.byRef[b.Reference] = *b
	return nil
}

func (s *stubBookings) GetBookingByReference(_ context.Context, ref string) (domain.Booking, error) {
	b, ok := s.byRef[ref]
	if !ok {
		return domain.Booking{}, domain.ErrNotFound
	}
	return b, nil
}

func (s *stubBookings) UpdateBookingStatus(_ context.Context, id int64, from, to domain.BookingStatus) error {
	for ref, b := range s.byRef {
		if b.ID == id && b.Status == from {
			b.Status = to
			s.byRef[ref] = b
			return nil
		}
	}
	return domain.ErrInvalidTransition
}

func newTestServer(inv *stubInventory) (*httptest.Server, *stubBookings) {
	avail := app.NewAvailabilityService(inv, nil, 0)
	pricing := app.NewPricingService(inv)
	validator := app.NewBookingValidator(app.NewAgeClassifier())
	store := &stubBookings{byRef: map[string]domain.Booking{}}
	bookings := app.NewBookingService(inv, store, avail, validator, zerolog.Nop())

	srv := server.New(0)
	srv.MountHandlers(&server.Handlers{Avail: avail, Pricing: pricing, Bookings: bookings})
	return httptest.NewServer(srv.Mux()), store
}

func pricedInventory() *stubInventory {
	today := domain.DateOnly(time.Now())
	return &stubInventory{
		rules: []domain.RateRule{{
			ID: 1, RatePlanID: 30,
			StartDate: today.AddDate(0, 0, -30), EndDate: today.AddDate(1, 0, 0),
			BasePrice: 15000, PerExtraPerson: 2500,
		}},
	}
}

func post(t *testing.T, url string, body string) *http.Response {
	t.Helper()
	res, err := http.Post(url, "application/json", bytes.NewReader([]byte(body)))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return res
}

func stayBody(checkIn time.Time) string {
	return `{"stay_type_id":10,"room_type_id":20,"rate_plan_id":30,"check_in":"` +
		checkIn.Format("2006-01-02") + `","adults":2}`
}

func TestHealthz(t *testing.T) {
	ts, _ := newTestServer(pricedInventory())
	defer ts.Close()
	res, err := http.Get(ts.URL + "/healthz")
	if err != nil || res.StatusCode != http.StatusOK {
		t.Fatalf("healthz: %v / %d", err, res.StatusCode)
	}
	res.Body.Close()
}

func TestCheckAvailability(t *testing.T) {
	ts, _ := newTestServer(pricedInventory())
	defer ts.Close()
	checkIn := domain.DateOnly(time.Now()).AddDate(0, 0, 1)

	res := post(t, ts.URL+"/v1/availability/check", stayBody(checkIn))
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d", res.StatusCode)
	}
	var out struct {
		Available  bool `json:"available"`
		TotalPrice struct {
			Amount int64 `json:"amount"`
		} `json:"total_price"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	res.Body.Close()
	if !out.Available || out.TotalPrice.Amount != 30000 {
		t.Fatalf("unexpected result: %+v", out)
	}
}

func TestCheckAvailability_BadPayload(t *testing.T) {
	ts, _ := newTestServer(pricedInventory())
	defer ts.Close()

	for _, body := range []string{
		`not json`,
		`{"stay_type_id":10}`,
		`{"stay_type_id":10,"room_type_id":20,"rate_plan_id":30,"check_in":"01/02/2026","adults":2}`,
	} {
		res := post(t, ts.URL+"/v1/availability/check", body)
		if res.StatusCode != http.StatusBadRequest {
			t.Fatalf("body %q: status %d, want 400", body, res.StatusCode)
		}
		if ct := res.Header.Get("Content-Type"); ct != "application/problem+json" {
			t.Fatalf("content type %q", ct)
		}
		res.Body.Close()
	}
}

func TestCalendar_QueryValidation(t *testing.T) {
	ts, _ := newTestServer(pricedInventory())
	defer ts.Close()

	res, err := http.Get(ts.URL + "/v1/availability/calendar?stay_type_id=10&room_type_id=20")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d, want 400 for missing params", res.StatusCode)
	}
	res.Body.Close()

	from := domain.DateOnly(time.Now()).Format("2006-01-02")
	to := domain.DateOnly(time.Now()).AddDate(0, 0, 6).Format("2006-01-02")
	res, err = http.Get(ts.URL + "/v1/availability/calendar?stay_type_id=10&room_type_id=20&rate_plan_id=30&from=" + from + "&to=" + to)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d", res.StatusCode)
	}
	var cal struct {
		TotalDays int `json:"total_days"`
	}
	if err := json.NewDecoder(res.Body).Decode(&cal); err != nil {
		t.Fatalf("decode: %v", err)
	}
	res.Body.Close()
	if cal.TotalDays != 7 {
		t.Fatalf("total_days = %d, want 7", cal.TotalDays)
	}
}

func TestQuote_Unpriceable(t *testing.T) {
	inv := pricedInventory()
	inv.rules = nil
	ts, _ := newTestServer(inv)
	defer ts.Close()

	checkIn := domain.DateOnly(time.Now()).AddDate(0, 0, 1)
	res := post(t, ts.URL+"/v1/quotes", stayBody(checkIn))
	if res.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status %d, want 422", res.StatusCode)
	}
	res.Body.Close()
}

func bookingBody(checkIn time.Time, category string) string {
	return `{"hotel_id":1,"stay_type_id":10,"room_type_id":20,"rate_plan_id":30,` +
		`"check_in":"` + checkIn.Format("2006-01-02") + `","adults":2,"guests":[` +
		`{"name":"Ada","birthdate":"1985-07-02","guest_category":"adult"},` +
		`{"name":"Grace","birthdate":"1990-11-23","guest_category":"` + category + `"}]}`
}

func TestCreateBooking_Statuses(t *testing.T) {
	checkIn := domain.DateOnly(time.Now()).AddDate(0, 0, 1)

	t.Run("created", func(t *testing.T) {
		ts, store := newTestServer(pricedInventory())
		defer ts.Close()
		res := post(t, ts.URL+"/v1/bookings", bookingBody(checkIn, "adult"))
		if res.StatusCode != http.StatusCreated {
			t.Fatalf("status %d, want 201", res.StatusCode)
		}
		var out struct {
			Reference string `json:"reference"`
			Status    string `json:"status"`
		}
		if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
			t.Fatalf("decode: %v", err)
		}
		res.Body.Close()
		if out.Status != "pending" || !strings.HasPrefix(out.Reference, "BK-") {
			t.Fatalf("unexpected booking: %+v", out)
		}
		if _, ok := store.byRef[out.Reference]; !ok {
			t.Fatalf("booking not persisted")
		}
	})

	t.Run("sold out conflicts", func(t *testing.T) {
		inv := pricedInventory()
		inv.allotments = []domain.Allotment{{RoomTypeID: 20, Date: checkIn, Quantity: 1, Allocated: 1}}
		ts, _ := newTestServer(inv)
		defer ts.Close()
		res := post(t, ts.URL+"/v1/bookings", bookingBody(checkIn, "adult"))
		if res.StatusCode != http.StatusConflict {
			t.Fatalf("status %d, want 409", res.StatusCode)
		}
		res.Body.Close()
	})

	t.Run("invalid draft unprocessable", func(t *testing.T) {
		ts, _ := newTestServer(pricedInventory())
		defer ts.Close()
		// Declared child with an adult birthdate fails age validation.
		res := post(t, ts.URL+"/v1/bookings", bookingBody(checkIn, "child"))
		if res.StatusCode != http.StatusUnprocessableEntity {
			t.Fatalf("status %d, want 422", res.StatusCode)
		}
		var out struct {
			Errors []struct {
				Field string `json:"field"`
			} `json:"errors"`
		}
		if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
			t.Fatalf("decode: %v", err)
		}
		res.Body.Close()
		if len(out.Errors) == 0 {
			t.Fatalf("expected field errors in the response")
		}
	})

	t.Run("no guests rejected", func(t *testing.T) {
		ts, _ := newTestServer(pricedInventory())
		defer ts.Close()
		body := `{"hotel_id":1,"stay_type_id":10,"room_type_id":20,"rate_plan_id":30,` +
			`"check_in":"` + checkIn.Format("2006-01-02") + `","adults":2,"guests":[]}`
		res := post(t, ts.URL+"/v1/bookings", body)
		if res.StatusCode != http.StatusBadRequest {
			t.Fatalf("status %d, want 400", res.StatusCode)
		}
		res.Body.Close()
	})
}

func TestBookingLifecycleOverHTTP(t *testing.T) {
	checkIn := domain.DateOnly(time.Now()).AddDate(0, 0, 1)
	ts, _ := newTestServer(pricedInventory())
	defer ts.Close()

	res := post(t, ts.URL+"/v1/bookings", bookingBody(checkIn, "adult"))
	var created struct {
		Reference string `json:"reference"`
	}
	if err := json.NewDecoder(res.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	res.Body.Close()

	res = post(t, ts.URL+"/v1/bookings/"+created.Reference+"/confirm", "")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("confirm status %d", res.StatusCode)
	}
	res.Body.Close()

	// checkout before checkin conflicts
	res = post(t, ts.URL+"/v1/bookings/"+created.Reference+"/checkout", "")
	if res.StatusCode != http.StatusConflict {
		t.Fatalf("checkout status %d, want 409", res.StatusCode)
	}
	res.Body.Close()

	res, err := http.Get(ts.URL + "/v1/bookings/BK-MISSING")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("status %d, want 404", res.StatusCode)
	}
	res.Body.Close()
}
