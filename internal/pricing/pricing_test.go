package pricing

import (
	"errors"
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

func TestCalculate_BaseCouple(t *testing.T) {
	// Monday check-in, 2 nights, no extras.
	q, err := Calculate(date(t, "2025-01-06"), date(t, "2025-01-08"), 2, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Nights != 2 {
		t.Fatalf("want 2 nights, got %d", q.Nights)
	}
	if q.Nightly != 280 {
		t.Fatalf("want nightly 280, got %v", q.Nightly)
	}
	if q.Total != 560 {
		t.Fatalf("want total 560, got %v", q.Total)
	}
	if q.WeekendPackage {
		t.Fatalf("weekday check-in must not get the weekend discount")
	}
}

func TestCalculate_ExtraGuests(t *testing.T) {
	// 4 adults and 1 child: 280 + 2*40 + 20 = 380 per night.
	q, err := Calculate(date(t, "2025-01-06"), date(t, "2025-01-07"), 4, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Nightly != 380 {
		t.Fatalf("want nightly 380, got %v", q.Nightly)
	}
	if q.Total != 380 {
		t.Fatalf("want total 380, got %v", q.Total)
	}
}

func TestCalculate_WeekendPackage(t *testing.T) {
	// 2025-01-10 is a Friday; two nights trigger the flat discount.
	q, err := Calculate(date(t, "2025-01-10"), date(t, "2025-01-12"), 2, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !q.WeekendPackage {
		t.Fatalf("Friday check-in with 2 nights must be a weekend package")
	}
	if q.Total != 2*280-40 {
		t.Fatalf("want total %v, got %v", 2*280-40, q.Total)
	}

	// One Friday night only: no package.
	q, err = Calculate(date(t, "2025-01-10"), date(t, "2025-01-11"), 2, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.WeekendPackage || q.Discount != 0 {
		t.Fatalf("single night must not get the weekend discount: %+v", q)
	}
}

func TestCalculate_InvalidStay(t *testing.T) {
	if _, err := Calculate(date(t, "2025-01-08"), date(t, "2025-01-08"), 2, 0); !errors.Is(err, ErrInvalidStay) {
		t.Fatalf("want ErrInvalidStay for zero nights, got %v", err)
	}
	if _, err := Calculate(date(t, "2025-01-08"), date(t, "2025-01-06"), 2, 0); !errors.Is(err, ErrInvalidStay) {
		t.Fatalf("want ErrInvalidStay for negative nights, got %v", err)
	}
}

func TestLateArrival(t *testing.T) {
	cases := []struct {
		in      string
		late    bool
		wantFee float64
	}{
		{"17:00", true, LateFee},
		{"17:01", true, LateFee},
		{"23:30", true, LateFee},
		{"16:59", false, 0},
		{"14:00", false, 0},
		{"", false, 0},
		{"soon", false, 0},
	}
	for _, tc := range cases {
		late, fee := LateArrival(tc.in)
		if late != tc.late || fee != tc.wantFee {
			t.Fatalf("%q: want (%v, %v), got (%v, %v)", tc.in, tc.late, tc.wantFee, late, fee)
		}
	}
}
