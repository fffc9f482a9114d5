// Package availability classifies each chalet's occupancy for a given day
// from a snapshot of bookings and the maintenance blocklist. The admin board
// and the public map run on different checkout-day semantics (see Classify
// and PublicStatus); keep them separate.
package availability

import (
	"riopreto/internal/store"
)

// The resort has a fixed inventory of ten chalets; units are not stored
// entities, just this integer range.
const (
	MinChalet  = 1
	MaxChalet  = 10
	NumChalets = MaxChalet - MinChalet + 1
)

func ValidChalet(id int) bool {
	return id >= MinChalet && id <= MaxChalet
}

// Status is the derived per-(unit, day) classification. It is recomputed
// from a fresh snapshot on every load and never persisted.
type Status string

const (
	StatusFree     Status = "free"
	StatusCheckin  Status = "checkin"
	StatusCheckout Status = "checkout"
	StatusOccupied Status = "occupied"
	StatusBlocked  Status = "blocked"
	StatusConflict Status = "conflict"
)

// Snapshot is an immutable view of the booking table for some window plus
// the full blocklist. Classification functions only read it.
type Snapshot struct {
	Bookings []store.Booking
	Blocked  map[int]bool
	// Degraded marks a snapshot assembled after a fetch failure: empty,
	// shown as all-free rather than crashing the board.
	Degraded bool
}

// NewSnapshot builds a snapshot from store results.
func NewSnapshot(bookings []store.Booking, blockedIDs []int) Snapshot {
	blocked := make(map[int]bool, len(blockedIDs))
	for _, id := range blockedIDs {
		blocked[id] = true
	}
	return Snapshot{Bookings: bookings, Blocked: blocked}
}

// EmptySnapshot is the degraded all-free view used when the store is
// unreachable. Overstating availability internally beats blinding the
// operator; the caller logs the discrepancy.
func EmptySnapshot() Snapshot {
	return Snapshot{Blocked: map[int]bool{}, Degraded: true}
}

// DayStatus is the classification of one chalet on one day.
type DayStatus struct {
	Type Status `json:"type"`
	// Swap marks a checkout day that also has a same-day check-in: the
	// departing guest's booking stays primary, the entrant is listed in
	// Bookings.
	Swap bool `json:"swap,omitempty"`
	// Primary is the booking driving the status (departing guest on a
	// checkout day, entrant on a check-in day). Nil for free and blocked.
	Primary *store.Booking `json:"primary,omitempty"`
	// Bookings is every booking touching the day. On a conflict this is the
	// full implicated set, not just the offending pair, so the operator can
	// see everything at once.
	Bookings []store.Booking `json:"bookings,omitempty"`
}

// Classify computes the admin-board status of one chalet on one date.
//
// Admin semantics are checkout-inclusive: a booking "touches" every day of
// [checkin, checkout], the checkout day included, because that day is still
// busy for cleaning even though it is bookable for a new arrival. The
// public map uses the exclusive variant (PublicStatus); do not unify them.
//
// The function is pure: same snapshot and date in, same status out, and the
// snapshot is never mutated.
func Classify(snap Snapshot, chaletID int, date store.Date) DayStatus {
	// Maintenance short-circuits everything else.
	if snap.Blocked[chaletID] {
		return DayStatus{Type: StatusBlocked}
	}

	var touching, entrants, departures, spanning []store.Booking
	for _, b := range snap.Bookings {
		if b.ChaletID != chaletID {
			continue
		}
		in := b.CheckinDate.SameDay(date)
		out := b.CheckoutDate.SameDay(date)
		within := b.CheckinDate.Before(date.Time) && b.CheckoutDate.After(date.Time)
		if !in && !out && !within {
			continue
		}
		touching = append(touching, b)
		switch {
		case in:
			entrants = append(entrants, b)
		case out:
			departures = append(departures, b)
		default:
			spanning = append(spanning, b)
		}
	}

	if isConflict(len(entrants), len(departures), len(spanning), len(touching)) {
		return DayStatus{Type: StatusConflict, Bookings: touching}
	}

	switch {
	case len(departures) == 1 && len(entrants) == 1:
		// Swap day: one guest leaves, another arrives. The departing
		// booking stays primary so the board shows who is checking out.
		return DayStatus{
			Type:     StatusCheckout,
			Swap:     true,
			Primary:  &departures[0],
			Bookings: touching,
		}
	case len(departures) == 1:
		return DayStatus{Type: StatusCheckout, Primary: &departures[0], Bookings: touching}
	case len(entrants) == 1:
		return DayStatus{Type: StatusCheckin, Primary: &entrants[0], Bookings: touching}
	case len(spanning) == 1:
		return DayStatus{Type: StatusOccupied, Primary: &spanning[0], Bookings: touching}
	}
	return DayStatus{Type: StatusFree}
}

// isConflict holds the overlap rules. Every condition independently implies
// a conflict, so the ordering is only an evaluation shortcut, never a
// semantic choice.
func isConflict(entrants, departures, spanning, touching int) bool {
	switch {
	case spanning > 1:
		// Two stays covering the same night.
		return true
	case entrants > 1:
		// Two parties told to arrive the same day.
		return true
	case spanning >= 1 && entrants >= 1:
		// Someone arriving into an already-occupied unit.
		return true
	case touching > 2:
		// Any 3-way pileup the partitions above did not isolate.
		return true
	case departures == 1 && entrants == 1 && touching > 2:
		// Defends against partition edge cases around a swap day;
		// subsumed by the previous rule but kept deliberately.
		return true
	}
	return false
}

// UnitStatus pairs a chalet with its classification for the board.
type UnitStatus struct {
	ChaletID int `json:"chalet_id"`
	DayStatus
}

// Summary carries the board counters: free cards, busy cards and swap days,
// plus the states the counters do not cover.
type Summary struct {
	Free      int `json:"free"`
	Busy      int `json:"busy"`
	Swap      int `json:"swap"`
	Blocked   int `json:"blocked"`
	Conflicts int `json:"conflicts"`
}

// Board classifies all chalets for one date.
func Board(snap Snapshot, date store.Date) ([]UnitStatus, Summary) {
	units := make([]UnitStatus, 0, NumChalets)
	var sum Summary

	for id := MinChalet; id <= MaxChalet; id++ {
		ds := Classify(snap, id, date)
		units = append(units, UnitStatus{ChaletID: id, DayStatus: ds})

		switch ds.Type {
		case StatusFree:
			sum.Free++
		case StatusBlocked:
			sum.Blocked++
		case StatusConflict:
			sum.Conflicts++
			sum.Busy++
		case StatusCheckout:
			sum.Swap++
			sum.Busy++
		default:
			sum.Busy++
		}
	}
	return units, sum
}
