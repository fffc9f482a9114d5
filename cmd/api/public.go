package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"riopreto/internal/availability"
	"riopreto/internal/pricing"
	"riopreto/internal/store"
)

var errInvalidGuestCount = errors.New("guest counts must be positive integers")

type PublicUnit struct {
	ChaletID int                      `json:"chalet_id"`
	Status   availability.PublicState `json:"status"`
}

type PublicMapResponse struct {
	Date     store.Date   `json:"date"`
	Units    []PublicUnit `json:"units"`
	Degraded bool         `json:"degraded"`
}

// publicMapHandler renders the guest-facing availability map. It only ever
// says whether a unit can be booked; names, prices and booking rows stay
// on the admin side.
//
//	@Summary		Public availability map
//	@Tags			public
//	@Produce		json
//	@Param			date	query		string	false	"Day to render (YYYY-MM-DD, defaults to today)"
//	@Success		200		{object}	PublicMapResponse
//	@Failure		400		{object}	error
//	@Router			/availability [get]
func (app *application) publicMapHandler(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), store.QueryTimeoutDuration)
	defer cancel()

	snap := app.loadPublicSnapshot(ctx, date)

	units := make([]PublicUnit, 0, availability.NumChalets)
	for id := availability.MinChalet; id <= availability.MaxChalet; id++ {
		units = append(units, PublicUnit{
			ChaletID: id,
			Status:   availability.PublicStatus(snap, id, date),
		})
	}

	resp := PublicMapResponse{Date: date, Units: units, Degraded: snap.Degraded}
	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) loadPublicSnapshot(ctx context.Context, date store.Date) availability.PublicSnapshot {
	windowStart, windowEnd := date.MonthWindow()

	bookings, err := app.store.Bookings.GetPublicForWindow(ctx, windowStart, windowEnd)
	if err != nil {
		app.logger.Warnw("public booking fetch failed, serving degraded map", "error", err)
		return availability.EmptyPublicSnapshot()
	}

	blocked, err := app.store.Blocked.List(ctx)
	if err != nil {
		app.logger.Warnw("blocklist fetch failed, serving degraded map", "error", err)
		return availability.EmptyPublicSnapshot()
	}

	return availability.NewPublicSnapshot(bookings, blocked)
}

type QuoteResponse struct {
	pricing.Quote
	IsLateArrival bool    `json:"is_late_arrival"`
	LateFee       float64 `json:"late_fee"`
}

// quoteHandler prices a stay for the public simulator.
//
//	@Summary		Price a stay
//	@Tags			public
//	@Produce		json
//	@Param			checkin			query		string	true	"Check-in (YYYY-MM-DD)"
//	@Param			checkout		query		string	true	"Checkout (YYYY-MM-DD)"
//	@Param			adults			query		int		false	"Guests aged 8+ (default 2)"
//	@Param			children		query		int		false	"Children aged 5-7"
//	@Param			arrival_time	query		string	false	"Arrival time (HH:MM)"
//	@Success		200				{object}	QuoteResponse
//	@Failure		400				{object}	error
//	@Router			/quote [get]
func (app *application) quoteHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	checkin, err := store.ParseDate(q.Get("checkin"))
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	checkout, err := store.ParseDate(q.Get("checkout"))
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	adults := 2
	if raw := q.Get("adults"); raw != "" {
		if adults, err = strconv.Atoi(raw); err != nil || adults < 1 {
			app.badRequestResponse(w, r, errInvalidGuestCount)
			return
		}
	}
	children := 0
	if raw := q.Get("children"); raw != "" {
		if children, err = strconv.Atoi(raw); err != nil || children < 0 {
			app.badRequestResponse(w, r, errInvalidGuestCount)
			return
		}
	}

	quote, err := pricing.Calculate(checkin, checkout, adults, children)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	resp := QuoteResponse{Quote: quote}
	if arrival := q.Get("arrival_time"); arrival != "" {
		resp.IsLateArrival, resp.LateFee = pricing.LateArrival(arrival)
	}

	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}
