package availability

import "riopreto/internal/store"

// PublicState is the guest-facing availability of a chalet for a day. It is
// coarser than the admin classification on purpose: guests see whether they
// can book, not who is inside.
type PublicState string

const (
	PublicFree        PublicState = "free"
	PublicPending     PublicState = "pending"
	PublicBusy        PublicState = "busy"
	PublicMaintenance PublicState = "maintenance"
)

// PublicSnapshot is the projected, cancelled-filtered view the public map
// renders from.
type PublicSnapshot struct {
	Bookings []store.PublicBooking
	Blocked  map[int]bool
	Degraded bool
}

func NewPublicSnapshot(bookings []store.PublicBooking, blockedIDs []int) PublicSnapshot {
	blocked := make(map[int]bool, len(blockedIDs))
	for _, id := range blockedIDs {
		blocked[id] = true
	}
	return PublicSnapshot{Bookings: bookings, Blocked: blocked}
}

func EmptyPublicSnapshot() PublicSnapshot {
	return PublicSnapshot{Blocked: map[int]bool{}, Degraded: true}
}

// PublicStatus classifies one chalet for the public map.
//
// Unlike the admin board, the checkout day itself counts as free here: the
// guest leaves in the morning and the unit is bookable for a new arrival
// that afternoon. A booking occupies [checkin, checkout) exclusively.
func PublicStatus(snap PublicSnapshot, chaletID int, date store.Date) PublicState {
	if snap.Blocked[chaletID] {
		return PublicMaintenance
	}

	for _, b := range snap.Bookings {
		if b.ChaletID != chaletID {
			continue
		}
		covers := (b.CheckinDate.SameDay(date) || b.CheckinDate.Before(date.Time)) &&
			b.CheckoutDate.After(date.Time) && !b.CheckoutDate.SameDay(date)
		if !covers {
			continue
		}
		if b.Status == store.BookingStatusPending {
			return PublicPending
		}
		return PublicBusy
	}
	return PublicFree
}
