package intake

import (
	"strings"
	"testing"

	"riopreto/internal/availability"
	"riopreto/internal/store"
)

var testAudit = Audit{MadeBy: "AI/Unknown", Device: "test", Location: "test"}

func TestNormalize_DefaultsOneNightStay(t *testing.T) {
	res := Normalize([]Parsed{{
		GuestName:   "Maria",
		CheckinDate: "2025-06-10",
		ChaletID:    4,
	}}, "msg", "sender@example.com", "", testAudit)

	if len(res.Rejected) != 0 {
		t.Fatalf("unexpected rejections: %v", res.Rejected)
	}
	if len(res.Bookings) != 1 {
		t.Fatalf("want 1 booking, got %d", len(res.Bookings))
	}
	b := res.Bookings[0]
	if b.CheckoutDate.String() != "2025-06-11" {
		t.Fatalf("missing checkout must default to one night, got %s", b.CheckoutDate)
	}
	if b.Status != store.BookingStatusPending {
		t.Fatalf("intake must insert as pending, got %s", b.Status)
	}
	if b.Adults != 2 {
		t.Fatalf("adults must default to 2, got %d", b.Adults)
	}
	if b.ContactInfo != "sender@example.com" {
		t.Fatalf("contact must fall back to sender, got %q", b.ContactInfo)
	}
	if b.AutoAssigned {
		t.Fatalf("explicit chalet must not be flagged auto-assigned")
	}
}

func TestNormalize_AutoAssignsMissingChalet(t *testing.T) {
	res := Normalize([]Parsed{{
		GuestName:   "João",
		CheckinDate: "2025-06-10",
	}}, "msg", "sender", "", testAudit)

	if len(res.Bookings) != 1 {
		t.Fatalf("want 1 booking, got %d (rejected: %v)", len(res.Bookings), res.Rejected)
	}
	b := res.Bookings[0]
	if !availability.ValidChalet(b.ChaletID) {
		t.Fatalf("auto-assigned chalet out of range: %d", b.ChaletID)
	}
	if !b.AutoAssigned {
		t.Fatalf("random assignment must be flagged")
	}
}

func TestNormalize_RejectsIncompleteItems(t *testing.T) {
	res := Normalize([]Parsed{
		{CheckinDate: "2025-06-10"},                   // no name
		{GuestName: "Ana"},                            // no check-in
		{GuestName: "Bia", CheckinDate: "2025-06-10", // inverted range
			CheckoutDate: "2025-06-09"},
	}, "msg", "sender", "", testAudit)

	if len(res.Bookings) != 0 {
		t.Fatalf("want no bookings, got %d", len(res.Bookings))
	}
	if len(res.Rejected) != 3 {
		t.Fatalf("want 3 rejections, got %v", res.Rejected)
	}
	if !strings.Contains(res.Rejected[0], "guest name") {
		t.Fatalf("first rejection should mention guest name: %q", res.Rejected[0])
	}
	if !strings.Contains(res.Rejected[2], "checkout") {
		t.Fatalf("third rejection should mention checkout: %q", res.Rejected[2])
	}
}

func TestNormalize_CalculatorOverridesLowTotal(t *testing.T) {
	// Two nights for a couple: calculator says 560. The extraction caught
	// only the 300 advance, so the calculator wins.
	res := Normalize([]Parsed{{
		GuestName:      "Carlos",
		ChaletID:       2,
		CheckinDate:    "2025-06-09",
		CheckoutDate:   "2025-06-11",
		TotalPrice:     300,
		AdvancePayment: 300,
	}}, "msg", "sender", "", testAudit)

	b := res.Bookings[0]
	if b.TotalPrice != 560 {
		t.Fatalf("want calculator override to 560, got %v", b.TotalPrice)
	}
	if b.AdvancePayment != 300 {
		t.Fatalf("advance must be preserved, got %v", b.AdvancePayment)
	}
}

func TestNormalize_KeepsNegotiatedHigherTotal(t *testing.T) {
	res := Normalize([]Parsed{{
		GuestName:    "Dora",
		ChaletID:     2,
		CheckinDate:  "2025-06-09",
		CheckoutDate: "2025-06-11",
		TotalPrice:   600,
	}}, "msg", "sender", "", testAudit)

	if got := res.Bookings[0].TotalPrice; got != 600 {
		t.Fatalf("totals at or above the calculated price stay, got %v", got)
	}
}

func TestNormalize_LateArrivalFee(t *testing.T) {
	res := Normalize([]Parsed{{
		GuestName:   "Eva",
		ChaletID:    3,
		CheckinDate: "2025-06-10",
		ArrivalTime: "18:30",
	}}, "msg", "sender", "", testAudit)

	b := res.Bookings[0]
	if !b.IsLateArrival || b.LateFee == 0 {
		t.Fatalf("18:30 arrival must carry the late fee, got late=%v fee=%v", b.IsLateArrival, b.LateFee)
	}
}

func TestParseModelOutput_FencedAndTruncated(t *testing.T) {
	fenced := "```json\n[{\"guest_name\":\"Maria\",\"checkin_date\":\"2025-06-10\"}]\n```"
	items, err := ParseModelOutput(fenced)
	if err != nil {
		t.Fatalf("fenced output: %v", err)
	}
	if len(items) != 1 || items[0].GuestName != "Maria" {
		t.Fatalf("fenced output parsed wrong: %+v", items)
	}

	truncated := `[{"guest_name":"Maria","checkin_date":"2025-06-10"}`
	items, err = ParseModelOutput(truncated)
	if err != nil {
		t.Fatalf("truncated output: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("truncated output parsed wrong: %+v", items)
	}

	single := `{"guest_name":"Maria","checkin_date":"2025-06-10"}`
	items, err = ParseModelOutput(single)
	if err != nil {
		t.Fatalf("single object: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("single object parsed wrong: %+v", items)
	}
}
