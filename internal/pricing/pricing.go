// Package pricing holds the resort's one flat rate formula. It feeds the
// storefront simulator and the intake calculator; it is not a rate engine.
package pricing

import (
	"errors"
	"fmt"
	"time"

	"riopreto/internal/store"
)

const (
	// BaseNightly covers up to two adults.
	BaseNightly     = 280.0
	ExtraAdultRate  = 40.0
	ChildRate       = 20.0 // children aged 5-7; under 5 stay free
	WeekendDiscount = 40.0 // flat, Friday check-in with at least 2 nights
	LateFee         = 50.0
)

// Arrivals at or after this hour pay the late fee.
const lateArrivalHour = 17

var ErrInvalidStay = errors.New("checkout must be after checkin")

type Quote struct {
	Nights         int     `json:"nights"`
	Nightly        float64 `json:"nightly"`
	Subtotal       float64 `json:"subtotal"`
	Discount       float64 `json:"discount"`
	Total          float64 `json:"total"`
	WeekendPackage bool    `json:"weekend_package"`
}

// Calculate prices a stay. adults counts everyone aged 8+, children the
// 5-7 bracket.
func Calculate(checkin, checkout store.Date, adults, children int) (Quote, error) {
	nights := int(checkout.Sub(checkin.Time).Hours() / 24)
	if nights <= 0 {
		return Quote{}, ErrInvalidStay
	}

	nightly := BaseNightly
	if adults > 2 {
		nightly += float64(adults-2) * ExtraAdultRate
	}
	if children > 0 {
		nightly += float64(children) * ChildRate
	}

	q := Quote{
		Nights:   nights,
		Nightly:  nightly,
		Subtotal: nightly * float64(nights),
	}

	if checkin.Weekday() == time.Friday && nights >= 2 {
		q.WeekendPackage = true
		q.Discount = WeekendDiscount
	}
	q.Total = q.Subtotal - q.Discount
	return q, nil
}

// LateArrival reports whether an "HH:MM" arrival time is at or after 17:00
// and the flat fee it carries. Unparseable input is treated as on time.
func LateArrival(arrival string) (bool, float64) {
	var h, m int
	if _, err := fmt.Sscanf(arrival, "%d:%d", &h, &m); err != nil {
		return false, 0
	}
	if h >= lateArrivalHour {
		return true, LateFee
	}
	return false, 0
}
