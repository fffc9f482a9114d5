package intake

import (
	"encoding/json"
	"math/rand"
	"strings"

	"riopreto/internal/availability"
	"riopreto/internal/pricing"
	"riopreto/internal/store"
)

// Audit is the accountability trio recorded on every intake booking,
// resolved from the request when the message itself does not carry it.
type Audit struct {
	MadeBy   string
	Device   string
	Location string
}

// Result separates the bookings that passed normalization from the items
// rejected with a human-readable reason each.
type Result struct {
	Bookings []*store.Booking
	Rejected []string
}

// Normalize applies the intake rules to the model's extraction:
//
//   - guest name and check-in date are mandatory, anything else defaults;
//   - a missing checkout means a one-night stay (this default exists only
//     here, never on the manual form);
//   - a missing chalet gets a random unit, flagged auto_assigned so the
//     operator knows to double-check it;
//   - the price calculator overrides the extracted total whenever the
//     extraction looks like it caught only the advance payment;
//   - arrivals at or after 17:00 carry the flat late fee.
func Normalize(items []Parsed, original, sender, proofURL string, audit Audit) Result {
	var res Result

	for _, p := range items {
		var reasons []string
		if strings.TrimSpace(p.GuestName) == "" {
			reasons = append(reasons, "missing guest name")
		}
		if p.CheckinDate == "" {
			reasons = append(reasons, "missing check-in date")
		}

		var checkin, checkout store.Date
		if p.CheckinDate != "" {
			var err error
			checkin, err = store.ParseDate(p.CheckinDate)
			if err != nil {
				reasons = append(reasons, "unreadable check-in date")
			} else if p.CheckoutDate == "" {
				checkout = checkin.AddDays(1)
			} else {
				checkout, err = store.ParseDate(p.CheckoutDate)
				if err != nil {
					reasons = append(reasons, "unreadable checkout date")
				} else if !checkout.After(checkin.Time) {
					reasons = append(reasons, "checkout not after check-in")
				}
			}
		}

		if len(reasons) > 0 {
			res.Rejected = append(res.Rejected, strings.Join(reasons, ", "))
			continue
		}

		b := &store.Booking{
			ChaletID:       p.ChaletID,
			CheckinDate:    checkin,
			CheckoutDate:   checkout,
			GuestName:      p.GuestName,
			ContactInfo:    p.ContactInfo,
			Status:         store.BookingStatusPending,
			TotalPrice:     p.TotalPrice,
			AdvancePayment: p.AdvancePayment,
			ArrivalTime:    p.ArrivalTime,
			Adults:         p.Adults,
			MadeBy:         audit.MadeBy,
			Device:         audit.Device,
			Location:       audit.Location,
		}
		if b.ContactInfo == "" {
			b.ContactInfo = sender
		}
		if b.Adults == 0 {
			b.Adults = 2
		}
		if b.ArrivalTime == "" {
			b.ArrivalTime = "14:00"
		}
		if !availability.ValidChalet(b.ChaletID) {
			b.ChaletID = rand.Intn(availability.NumChalets) + availability.MinChalet
			b.AutoAssigned = true
		}
		if proofURL != "" {
			b.PaymentProofURL = &proofURL
		}

		// The calculator is the truth: when the extracted total is absent
		// or suspiciously below it (usually the model picked up only the
		// advance), the computed price wins.
		if q, err := pricing.Calculate(checkin, checkout, b.Adults, p.Children57); err == nil {
			if b.TotalPrice == 0 || b.TotalPrice < q.Total*0.95 {
				b.TotalPrice = q.Total
			}
		}

		b.IsLateArrival, b.LateFee = pricing.LateArrival(b.ArrivalTime)

		raw, err := json.Marshal(map[string]any{
			"original":  original,
			"ai_parsed": p,
		})
		if err == nil {
			s := string(raw)
			b.RawMessage = &s
		}

		res.Bookings = append(res.Bookings, b)
	}
	return res
}
