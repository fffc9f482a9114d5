package availability

import (
	"reflect"
	"testing"

	"riopreto/internal/store"
)

func date(t *testing.T, s string) store.Date {
	t.Helper()
	d, err := store.ParseDate(s)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return d
}

func booking(t *testing.T, id int64, chalet int, checkin, checkout string) store.Booking {
	t.Helper()
	return store.Booking{
		ID:           id,
		ChaletID:     chalet,
		CheckinDate:  date(t, checkin),
		CheckoutDate: date(t, checkout),
		GuestName:    "Guest",
		Status:       store.BookingStatusConfirmed,
	}
}

func TestClassify_SingleBookingLifecycle(t *testing.T) {
	snap := NewSnapshot([]store.Booking{
		booking(t, 1, 3, "2025-01-10", "2025-01-12"),
	}, nil)

	cases := []struct {
		day  string
		want Status
	}{
		{"2025-01-09", StatusFree},
		{"2025-01-10", StatusCheckin},
		{"2025-01-11", StatusOccupied},
		{"2025-01-12", StatusCheckout},
		{"2025-01-13", StatusFree},
	}
	for _, tc := range cases {
		got := Classify(snap, 3, date(t, tc.day))
		if got.Type != tc.want {
			t.Fatalf("day %s: want %s, got %s", tc.day, tc.want, got.Type)
		}
	}
}

func TestClassify_OtherChaletUnaffected(t *testing.T) {
	snap := NewSnapshot([]store.Booking{
		booking(t, 1, 3, "2025-01-10", "2025-01-12"),
	}, nil)

	got := Classify(snap, 4, date(t, "2025-01-11"))
	if got.Type != StatusFree {
		t.Fatalf("want free for untouched chalet, got %s", got.Type)
	}
}

func TestClassify_SwapDayIsCheckoutNotConflict(t *testing.T) {
	a := booking(t, 1, 5, "2025-02-01", "2025-02-03")
	b := booking(t, 2, 5, "2025-02-03", "2025-02-05")
	snap := NewSnapshot([]store.Booking{a, b}, nil)

	got := Classify(snap, 5, date(t, "2025-02-03"))
	if got.Type != StatusCheckout {
		t.Fatalf("want checkout on swap day, got %s", got.Type)
	}
	if !got.Swap {
		t.Fatalf("swap day not flagged")
	}
	if got.Primary == nil || got.Primary.ID != a.ID {
		t.Fatalf("swap day must carry the departing booking as primary, got %+v", got.Primary)
	}
	if len(got.Bookings) != 2 {
		t.Fatalf("want both touching bookings listed, got %d", len(got.Bookings))
	}
}

func TestClassify_OverlappingSpansConflict(t *testing.T) {
	a := booking(t, 1, 2, "2025-01-05", "2025-01-10")
	b := booking(t, 2, 2, "2025-01-07", "2025-01-12")
	snap := NewSnapshot([]store.Booking{a, b}, nil)

	got := Classify(snap, 2, date(t, "2025-01-08"))
	if got.Type != StatusConflict {
		t.Fatalf("want conflict, got %s", got.Type)
	}
	if len(got.Bookings) != 2 {
		t.Fatalf("conflict must list the full touching set, got %d bookings", len(got.Bookings))
	}
	ids := map[int64]bool{got.Bookings[0].ID: true, got.Bookings[1].ID: true}
	if !ids[1] || !ids[2] {
		t.Fatalf("conflict set missing a booking: %v", ids)
	}
}

func TestClassify_DoubleEntrantConflict(t *testing.T) {
	snap := NewSnapshot([]store.Booking{
		booking(t, 1, 7, "2025-03-01", "2025-03-04"),
		booking(t, 2, 7, "2025-03-01", "2025-03-02"),
	}, nil)

	got := Classify(snap, 7, date(t, "2025-03-01"))
	if got.Type != StatusConflict {
		t.Fatalf("want conflict for two same-day entrants, got %s", got.Type)
	}
}

func TestClassify_EntrantIntoOccupiedConflict(t *testing.T) {
	snap := NewSnapshot([]store.Booking{
		booking(t, 1, 7, "2025-03-01", "2025-03-05"),
		booking(t, 2, 7, "2025-03-03", "2025-03-06"),
	}, nil)

	got := Classify(snap, 7, date(t, "2025-03-03"))
	if got.Type != StatusConflict {
		t.Fatalf("want conflict for entrant into occupied unit, got %s", got.Type)
	}
}

func TestClassify_ThreeWayPileupConflict(t *testing.T) {
	// departure + entrant + spanning on the same day: the swap pair alone
	// would be fine, the third booking makes it a conflict.
	snap := NewSnapshot([]store.Booking{
		booking(t, 1, 9, "2025-04-01", "2025-04-03"),
		booking(t, 2, 9, "2025-04-03", "2025-04-05"),
		booking(t, 3, 9, "2025-04-02", "2025-04-04"),
	}, nil)

	got := Classify(snap, 9, date(t, "2025-04-03"))
	if got.Type != StatusConflict {
		t.Fatalf("want conflict for 3-way overlap, got %s", got.Type)
	}
	if len(got.Bookings) != 3 {
		t.Fatalf("want all 3 bookings implicated, got %d", len(got.Bookings))
	}
}

func TestClassify_BlockedWinsOverEverything(t *testing.T) {
	snap := NewSnapshot([]store.Booking{
		booking(t, 1, 4, "2025-01-05", "2025-01-10"),
		booking(t, 2, 4, "2025-01-07", "2025-01-12"),
	}, []int{4})

	for _, day := range []string{"2025-01-04", "2025-01-08", "2025-01-20"} {
		got := Classify(snap, 4, date(t, day))
		if got.Type != StatusBlocked {
			t.Fatalf("day %s: blocked chalet must classify blocked, got %s", day, got.Type)
		}
	}
}

func TestClassify_Idempotent(t *testing.T) {
	snap := NewSnapshot([]store.Booking{
		booking(t, 1, 2, "2025-01-05", "2025-01-10"),
		booking(t, 2, 2, "2025-01-07", "2025-01-12"),
		booking(t, 3, 6, "2025-01-08", "2025-01-09"),
	}, []int{1})

	day := date(t, "2025-01-08")
	for id := MinChalet; id <= MaxChalet; id++ {
		first := Classify(snap, id, day)
		second := Classify(snap, id, day)
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("chalet %d: classification not idempotent:\nfirst  %+v\nsecond %+v", id, first, second)
		}
	}
}

func TestClassify_DeletionResolvesConflictMonotonically(t *testing.T) {
	a := booking(t, 1, 2, "2025-01-05", "2025-01-10")
	b := booking(t, 2, 2, "2025-01-07", "2025-01-12")
	day := date(t, "2025-01-08")

	before := Classify(NewSnapshot([]store.Booking{a, b}, nil), 2, day)
	if before.Type != StatusConflict {
		t.Fatalf("precondition failed: want conflict, got %s", before.Type)
	}

	// Reload after deleting one of the implicated bookings.
	after := Classify(NewSnapshot([]store.Booking{a}, nil), 2, day)
	if after.Type == StatusConflict {
		t.Fatalf("deleting one booking must not leave a conflict, got %s", after.Type)
	}
	if after.Type != StatusOccupied {
		t.Fatalf("want occupied after resolution, got %s", after.Type)
	}
}

func TestBoard_Counters(t *testing.T) {
	snap := NewSnapshot([]store.Booking{
		booking(t, 1, 1, "2025-05-01", "2025-05-03"), // occupied on the 2nd
		booking(t, 2, 2, "2025-05-02", "2025-05-04"), // check-in on the 2nd
		booking(t, 3, 3, "2025-05-01", "2025-05-02"), // checkout on the 2nd
		booking(t, 4, 4, "2025-05-01", "2025-05-03"),
		booking(t, 5, 4, "2025-05-01", "2025-05-04"), // conflict on chalet 4
	}, []int{10})

	units, sum := Board(snap, date(t, "2025-05-02"))
	if len(units) != NumChalets {
		t.Fatalf("want %d units, got %d", NumChalets, len(units))
	}
	if sum.Free != 5 {
		t.Fatalf("want 5 free, got %d", sum.Free)
	}
	if sum.Busy != 4 {
		t.Fatalf("want 4 busy, got %d", sum.Busy)
	}
	if sum.Swap != 1 {
		t.Fatalf("want 1 swap, got %d", sum.Swap)
	}
	if sum.Blocked != 1 {
		t.Fatalf("want 1 blocked, got %d", sum.Blocked)
	}
	if sum.Conflicts != 1 {
		t.Fatalf("want 1 conflict, got %d", sum.Conflicts)
	}
}

func TestBoard_DegradedSnapshotAllFree(t *testing.T) {
	units, sum := Board(EmptySnapshot(), date(t, "2025-01-01"))
	if sum.Free != NumChalets {
		t.Fatalf("degraded snapshot must render all-free, got %d free", sum.Free)
	}
	for _, u := range units {
		if u.Type != StatusFree {
			t.Fatalf("chalet %d: want free, got %s", u.ChaletID, u.Type)
		}
	}
}

func publicBooking(t *testing.T, chalet int, checkin, checkout, status string) store.PublicBooking {
	t.Helper()
	return store.PublicBooking{
		ChaletID:     chalet,
		CheckinDate:  date(t, checkin),
		CheckoutDate: date(t, checkout),
		Status:       status,
	}
}

func TestPublicStatus_CheckoutDayIsFree(t *testing.T) {
	snap := NewPublicSnapshot([]store.PublicBooking{
		publicBooking(t, 5, "2025-01-25", "2025-01-26", store.BookingStatusConfirmed),
	}, nil)

	if got := PublicStatus(snap, 5, date(t, "2025-01-25")); got != PublicBusy {
		t.Fatalf("check-in day: want busy, got %s", got)
	}
	// The departing guest leaves in the morning; the unit is bookable for a
	// new arrival the same day. Opposite of the admin board's semantics.
	if got := PublicStatus(snap, 5, date(t, "2025-01-26")); got != PublicFree {
		t.Fatalf("checkout day: want free on public map, got %s", got)
	}
}

func TestPublicStatus_PendingAndMaintenance(t *testing.T) {
	snap := NewPublicSnapshot([]store.PublicBooking{
		publicBooking(t, 2, "2025-01-10", "2025-01-12", store.BookingStatusPending),
		publicBooking(t, 3, "2025-01-10", "2025-01-12", store.BookingStatusConfirmed),
	}, []int{3})

	if got := PublicStatus(snap, 2, date(t, "2025-01-11")); got != PublicPending {
		t.Fatalf("want pending, got %s", got)
	}
	// Maintenance wins even while a booking covers the day.
	if got := PublicStatus(snap, 3, date(t, "2025-01-11")); got != PublicMaintenance {
		t.Fatalf("want maintenance, got %s", got)
	}
	if got := PublicStatus(snap, 4, date(t, "2025-01-11")); got != PublicFree {
		t.Fatalf("want free, got %s", got)
	}
}
