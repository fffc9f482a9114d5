package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"riopreto/internal/availability"
	"riopreto/internal/store"

	"github.com/go-chi/chi/v5"
)

type BlockChaletPayload struct {
	Reason string `json:"reason" validate:"omitempty,max=200"`
}

func chaletIDParam(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "chaletID"))
	if err != nil {
		return 0, err
	}
	if !availability.ValidChalet(id) {
		return 0, fmt.Errorf("chalet %d does not exist", id)
	}
	return id, nil
}

// listBlockedHandler returns the chalets currently under maintenance.
//
//	@Summary		List blocked chalets
//	@Tags			blocklist
//	@Produce		json
//	@Success		200	{object}	[]int
//	@Security		ApiKeyAuth
//	@Router			/admin/blocklist [get]
func (app *application) listBlockedHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), store.QueryTimeoutDuration)
	defer cancel()

	blocked, err := app.store.Blocked.List(ctx)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, blocked); err != nil {
		app.internalServerError(w, r, err)
	}
}

// blockChaletHandler takes a unit out of service. A blocked unit shows as
// maintenance everywhere, whatever bookings it holds.
//
//	@Summary		Block a chalet for maintenance
//	@Tags			blocklist
//	@Accept			json
//	@Produce		json
//	@Param			chaletID	path		int					true	"Chalet ID"
//	@Param			payload		body		BlockChaletPayload	false	"Reason"
//	@Success		200			{object}	BoardResponse
//	@Failure		409			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/admin/blocklist/{chaletID} [put]
func (app *application) blockChaletHandler(w http.ResponseWriter, r *http.Request) {
	id, err := chaletIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload BlockChaletPayload
	if r.ContentLength > 0 {
		if err := readJSON(w, r, &payload); err != nil {
			app.badRequestResponse(w, r, err)
			return
		}
		if err := Validate.Struct(payload); err != nil {
			app.badRequestResponse(w, r, err)
			return
		}
	}

	date, err := dateParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), store.QueryTimeoutDuration)
	defer cancel()

	if err := app.store.Blocked.Block(ctx, id, payload.Reason); err != nil {
		switch {
		case errors.Is(err, store.ErrConflict):
			app.conflictResponse(w, r, fmt.Errorf("chalet %d is already blocked", id))
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	board := app.boardFor(ctx, date)
	if err := app.jsonResponse(w, http.StatusOK, board); err != nil {
		app.internalServerError(w, r, err)
	}
}

// unblockChaletHandler returns a unit to service.
//
//	@Summary		Unblock a chalet
//	@Tags			blocklist
//	@Produce		json
//	@Param			chaletID	path		int	true	"Chalet ID"
//	@Success		200			{object}	BoardResponse
//	@Failure		404			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/admin/blocklist/{chaletID} [delete]
func (app *application) unblockChaletHandler(w http.ResponseWriter, r *http.Request) {
	id, err := chaletIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	date, err := dateParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), store.QueryTimeoutDuration)
	defer cancel()

	if err := app.store.Blocked.Unblock(ctx, id); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	board := app.boardFor(ctx, date)
	if err := app.jsonResponse(w, http.StatusOK, board); err != nil {
		app.internalServerError(w, r, err)
	}
}
