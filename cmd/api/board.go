package main

import (
	"context"
	"net/http"
	"time"

	"riopreto/internal/availability"
	"riopreto/internal/store"
)

// loadSnapshot pulls everything the classifier needs for the month around
// date. A fetch failure never propagates: the caller gets an empty snapshot
// flagged degraded, so the board renders all-free with a warning instead
// of failing the request.
func (app *application) loadSnapshot(ctx context.Context, date store.Date) availability.Snapshot {
	windowStart, windowEnd := date.MonthWindow()

	bookings, err := app.store.Bookings.GetForWindow(ctx, windowStart, windowEnd)
	if err != nil {
		app.logger.Warnw("booking fetch failed, serving degraded board", "error", err)
		return availability.EmptySnapshot()
	}

	blocked, err := app.store.Blocked.List(ctx)
	if err != nil {
		app.logger.Warnw("blocklist fetch failed, serving degraded board", "error", err)
		return availability.EmptySnapshot()
	}

	return availability.NewSnapshot(bookings, blocked)
}

type BoardResponse struct {
	Date     store.Date                `json:"date"`
	Units    []availability.UnitStatus `json:"units"`
	Summary  availability.Summary      `json:"summary"`
	Degraded bool                      `json:"degraded"`
}

// boardFor rebuilds the board from a fresh snapshot. Every mutation handler
// returns this so the client never renders a stale optimistic view.
func (app *application) boardFor(ctx context.Context, date store.Date) BoardResponse {
	snap := app.loadSnapshot(ctx, date)
	units, summary := availability.Board(snap, date)
	return BoardResponse{Date: date, Units: units, Summary: summary, Degraded: snap.Degraded}
}

func dateParam(r *http.Request) (store.Date, error) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return store.NewDate(time.Now()), nil
	}
	return store.ParseDate(raw)
}

// getBoardHandler renders the operator board for one day.
//
//	@Summary		Day board for all chalets
//	@Tags			admin
//	@Produce		json
//	@Param			date	query		string	false	"Day to render (YYYY-MM-DD, defaults to today)"
//	@Success		200		{object}	BoardResponse
//	@Failure		400		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/admin/board [get]
func (app *application) getBoardHandler(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), store.QueryTimeoutDuration)
	defer cancel()

	board := app.boardFor(ctx, date)
	if err := app.jsonResponse(w, http.StatusOK, board); err != nil {
		app.internalServerError(w, r, err)
	}
}
