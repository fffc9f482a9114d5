package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"riopreto/internal/geo"
	"riopreto/internal/store"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func TestBookingFromPayload_Defaults(t *testing.T) {
	app := &application{}

	payload := BookingPayload{
		ChaletID:     3,
		GuestName:    "Maria",
		CheckinDate:  "2025-01-10",
		CheckoutDate: "2025-01-12",
	}

	var b store.Booking
	if err := app.bookingFromPayload(&payload, &b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if b.Adults != 2 {
		t.Fatalf("adults must default to 2, got %d", b.Adults)
	}
	if b.ArrivalTime != "14:00" {
		t.Fatalf("arrival must default to 14:00, got %s", b.ArrivalTime)
	}
	if b.Status != store.BookingStatusPending {
		t.Fatalf("status must default to pending, got %s", b.Status)
	}
	if b.IsLateArrival {
		t.Fatalf("14:00 arrival must not be late")
	}
}

func TestBookingFromPayload_RejectsInvertedRange(t *testing.T) {
	app := &application{}

	payload := BookingPayload{
		ChaletID:     3,
		GuestName:    "Maria",
		CheckinDate:  "2025-01-12",
		CheckoutDate: "2025-01-12",
	}

	var b store.Booking
	err := app.bookingFromPayload(&payload, &b)
	if err == nil {
		t.Fatalf("same-day checkout must be rejected")
	}
	if !strings.Contains(err.Error(), "checkout") {
		t.Fatalf("error should mention checkout: %v", err)
	}
}

func TestBookingFromPayload_LateArrival(t *testing.T) {
	app := &application{}

	payload := BookingPayload{
		ChaletID:     1,
		GuestName:    "Ana",
		CheckinDate:  "2025-01-10",
		CheckoutDate: "2025-01-11",
		ArrivalTime:  "17:00",
	}

	var b store.Booking
	if err := app.bookingFromPayload(&payload, &b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !b.IsLateArrival || b.LateFee == 0 {
		t.Fatalf("17:00 arrival must carry the late fee, got late=%v fee=%v", b.IsLateArrival, b.LateFee)
	}
}

func TestExtractPublicIDFromURL(t *testing.T) {
	url := "https://res.cloudinary.com/demo/image/upload/receipts/receipt_abc123.jpg"
	id, err := extractPublicIDFromURL(url)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "receipts/receipt_abc123.jpg" {
		t.Fatalf("wrong public ID: %s", id)
	}

	if _, err := extractPublicIDFromURL("https://example.com/no/marker.jpg"); err == nil {
		t.Fatalf("URLs without an upload segment must fail")
	}
}

type stubBookings struct {
	byID    map[int64]*store.Booking
	updated *store.Booking
}

func (s *stubBookings) GetByID(_ context.Context, id int64) (*store.Booking, error) {
	b, ok := s.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *stubBookings) GetForWindow(context.Context, store.Date, store.Date) ([]store.Booking, error) {
	return nil, nil
}

func (s *stubBookings) GetPublicForWindow(context.Context, store.Date, store.Date) ([]store.PublicBooking, error) {
	return nil, nil
}

func (s *stubBookings) Create(context.Context, *store.Booking) error { return nil }

func (s *stubBookings) CreateBatch(context.Context, []*store.Booking) error { return nil }

func (s *stubBookings) Update(_ context.Context, b *store.Booking) error {
	cp := *b
	s.updated = &cp
	return nil
}

func (s *stubBookings) Reassign(context.Context, int64, int) error { return nil }

func (s *stubBookings) UpdateStatus(context.Context, int64, string) error { return nil }

func (s *stubBookings) Delete(context.Context, int64) error { return nil }

type stubBlocked struct {
	writes int
}

func (s *stubBlocked) List(context.Context) ([]int, error) { return nil, nil }

func (s *stubBlocked) Block(context.Context, int, string) error { s.writes++; return nil }

func (s *stubBlocked) Unblock(context.Context, int) error { s.writes++; return nil }

type stubPushTokens struct{}

func (stubPushTokens) Save(context.Context, string) error { return nil }

func (stubPushTokens) List(context.Context) ([]string, error) { return nil, nil }

func newTestApp(bookings *stubBookings, blocked *stubBlocked) *application {
	return &application{
		logger: zap.NewNop().Sugar(),
		// Unroutable base: every lookup fails fast and falls back to Unknown.
		geo: geo.NewResolverWithBase("http://127.0.0.1:1", &http.Client{Timeout: 50 * time.Millisecond}),
		store: store.Storage{
			Bookings:   bookings,
			Blocked:    blocked,
			PushTokens: stubPushTokens{},
		},
	}
}

func routeRequest(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestUpdateBooking_PreservesStatusAndRecapturesAudit(t *testing.T) {
	checkin, _ := store.ParseDate("2025-02-10")
	checkout, _ := store.ParseDate("2025-02-12")
	bookings := &stubBookings{byID: map[int64]*store.Booking{1: {
		ID:           1,
		ChaletID:     4,
		CheckinDate:  checkin,
		CheckoutDate: checkout,
		GuestName:    "Maria",
		Status:       store.BookingStatusConfirmed,
		MadeBy:       "creator",
		Device:       "old-phone",
		Location:     "Old Town",
	}}}
	app := newTestApp(bookings, &stubBlocked{})

	// The client tries to sneak status back to pending; edits must ignore it.
	payload := `{"chalet_id":4,"guest_name":"Maria Silva","checkin_date":"2025-02-10","checkout_date":"2025-02-13","status":"pending"}`
	r := httptest.NewRequest(http.MethodPut, "/v1/admin/bookings/1", strings.NewReader(payload))
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("User-Agent", "new-phone")
	r = routeRequest(r, "bookingID", "1")
	r = r.WithContext(context.WithValue(r.Context(), actorCtx, "ana"))

	w := httptest.NewRecorder()
	app.updateBookingHandler(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", w.Code, w.Body.String())
	}
	if bookings.updated == nil {
		t.Fatalf("update never reached the store")
	}
	if bookings.updated.Status != store.BookingStatusConfirmed {
		t.Fatalf("editing must not touch status, got %s", bookings.updated.Status)
	}
	if bookings.updated.MadeBy != "ana" || bookings.updated.Device != "new-phone" {
		t.Fatalf("editing must re-capture audit fields, got made_by=%q device=%q",
			bookings.updated.MadeBy, bookings.updated.Device)
	}
	if bookings.updated.GuestName != "Maria Silva" {
		t.Fatalf("edited fields must land, got guest %q", bookings.updated.GuestName)
	}

	var resp struct {
		Data BookingMutationResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Data.Booking.Status != store.BookingStatusConfirmed {
		t.Fatalf("response must report the preserved status, got %s", resp.Data.Booking.Status)
	}
}

func TestBlockChalet_RejectsBadDateBeforeMutation(t *testing.T) {
	blocked := &stubBlocked{}
	app := newTestApp(&stubBookings{}, blocked)

	r := httptest.NewRequest(http.MethodPut, "/v1/admin/blocklist/3?date=not-a-date", nil)
	r = routeRequest(r, "chaletID", "3")

	w := httptest.NewRecorder()
	app.blockChaletHandler(w, r)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", w.Code)
	}
	if blocked.writes != 0 {
		t.Fatalf("a malformed date must be rejected before the blocklist write")
	}
}

func TestUnblockChalet_RejectsBadDateBeforeMutation(t *testing.T) {
	blocked := &stubBlocked{}
	app := newTestApp(&stubBookings{}, blocked)

	r := httptest.NewRequest(http.MethodDelete, "/v1/admin/blocklist/3?date=2025-13-99", nil)
	r = routeRequest(r, "chaletID", "3")

	w := httptest.NewRecorder()
	app.unblockChaletHandler(w, r)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", w.Code)
	}
	if blocked.writes != 0 {
		t.Fatalf("a malformed date must be rejected before the blocklist write")
	}
}

func TestValidateChaletTag(t *testing.T) {
	payload := BookingPayload{
		ChaletID:     11,
		GuestName:    "Maria",
		CheckinDate:  "2025-01-10",
		CheckoutDate: "2025-01-12",
	}
	if err := Validate.Struct(payload); err == nil {
		t.Fatalf("chalet 11 must fail validation")
	}

	payload.ChaletID = 10
	if err := Validate.Struct(payload); err != nil {
		t.Fatalf("chalet 10 must pass validation: %v", err)
	}
}
