package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net"
	"net/http"
	"strconv"
	"strings"

	"riopreto/internal/availability"
	"riopreto/internal/notifications"
	"riopreto/internal/pricing"
	"riopreto/internal/store"

	"github.com/go-chi/chi/v5"
)

type BookingPayload struct {
	ChaletID       int     `json:"chalet_id" validate:"required,chalet"`
	GuestName      string  `json:"guest_name" validate:"required,max=120"`
	ContactInfo    string  `json:"contact_info" validate:"omitempty,max=160"`
	CheckinDate    string  `json:"checkin_date" validate:"required,datetime=2006-01-02"`
	CheckoutDate   string  `json:"checkout_date" validate:"required,datetime=2006-01-02"`
	Adults         int     `json:"adults" validate:"omitempty,min=1,max=12"`
	ArrivalTime    string  `json:"arrival_time" validate:"omitempty,datetime=15:04"`
	TotalPrice     float64 `json:"total_price" validate:"gte=0"`
	AdvancePayment float64 `json:"advance_payment" validate:"gte=0"`
	Status         string  `json:"status" validate:"omitempty,oneof=pending confirmed"`
}

type ReassignPayload struct {
	ChaletID int `json:"chalet_id" validate:"required,chalet"`
}

// BookingMutationResponse is what every write returns: the touched booking
// plus a board rebuilt from a fresh snapshot for the check-in day.
type BookingMutationResponse struct {
	Booking *store.Booking `json:"booking"`
	Board   BoardResponse  `json:"board"`
}

// decodeBookingPayload accepts either plain JSON or multipart form data
// with a "data" JSON field and an optional "proof" file. The manual form
// sends multipart when the operator attaches a payment receipt.
func decodeBookingPayload(w http.ResponseWriter, r *http.Request, payload *BookingPayload) (multipart.File, error) {
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "multipart/form-data") {
		return nil, readJSON(w, r, payload)
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(r.FormValue("data")), payload); err != nil {
		return nil, fmt.Errorf("invalid data field: %w", err)
	}

	file, _, err := r.FormFile("proof")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	return file, nil
}

// auditFrom resolves the accountability trio for a request. The geo lookup
// is best effort; a miss records Unknown rather than failing the write.
func (app *application) auditFrom(r *http.Request) (madeBy, device, location string) {
	madeBy = actorFromContext(r.Context())
	device = r.UserAgent()

	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	location, err := app.geo.Lookup(r.Context(), ip)
	if err != nil {
		app.logger.Warnw("geo lookup failed", "ip", ip, "error", err)
	}
	return madeBy, device, location
}

func (app *application) bookingFromPayload(p *BookingPayload, b *store.Booking) error {
	checkin, err := store.ParseDate(p.CheckinDate)
	if err != nil {
		return err
	}
	checkout, err := store.ParseDate(p.CheckoutDate)
	if err != nil {
		return err
	}
	if !checkout.After(checkin.Time) {
		return fmt.Errorf("checkout must be after check-in")
	}

	b.ChaletID = p.ChaletID
	b.GuestName = p.GuestName
	b.ContactInfo = p.ContactInfo
	b.CheckinDate = checkin
	b.CheckoutDate = checkout
	b.TotalPrice = p.TotalPrice
	b.AdvancePayment = p.AdvancePayment

	b.Adults = p.Adults
	if b.Adults == 0 {
		b.Adults = 2
	}
	b.ArrivalTime = p.ArrivalTime
	if b.ArrivalTime == "" {
		b.ArrivalTime = "14:00"
	}
	b.IsLateArrival, b.LateFee = pricing.LateArrival(b.ArrivalTime)

	b.Status = p.Status
	if b.Status == "" {
		b.Status = store.BookingStatusPending
	}
	return nil
}

// alertIfConflicted pushes a warning when the write left the check-in day
// of this chalet in conflict.
func (app *application) alertIfConflicted(board BoardResponse, b *store.Booking) {
	for _, unit := range board.Units {
		if unit.ChaletID == b.ChaletID && unit.Type == availability.StatusConflict {
			booking := *b
			notifications.CallAsync(func(ctx context.Context) error {
				tokens, err := app.store.PushTokens.List(ctx)
				if err != nil {
					app.logger.Warnw("push token fetch failed", "error", err)
					return nil
				}
				if err := notifications.SendBookingAlert(ctx, app.push, tokens, notifications.BookingConflict, &booking); err != nil {
					app.logger.Warnw("conflict alert failed", "error", err)
				}
				return nil
			})
			return
		}
	}
}

// createBookingHandler records a manual booking. A payment receipt, when
// attached, is uploaded first; an upload failure aborts the whole save so
// there is never a booking claiming a proof that does not exist.
//
//	@Summary		Create a booking
//	@Tags			bookings
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		BookingPayload	true	"Booking fields"
//	@Success		201		{object}	BookingMutationResponse
//	@Failure		400		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/admin/bookings [post]
func (app *application) createBookingHandler(w http.ResponseWriter, r *http.Request) {
	var payload BookingPayload
	proof, err := decodeBookingPayload(w, r, &payload)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if proof != nil {
		defer proof.Close()
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var booking store.Booking
	if err := app.bookingFromPayload(&payload, &booking); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	booking.MadeBy, booking.Device, booking.Location = app.auditFrom(r)

	if proof != nil {
		url, err := app.uploadProof(r.Context(), proof)
		if err != nil {
			app.internalServerError(w, r, fmt.Errorf("proof upload: %w", err))
			return
		}
		booking.PaymentProofURL = &url
	}

	ctx, cancel := context.WithTimeout(r.Context(), store.QueryTimeoutDuration)
	defer cancel()

	if err := app.store.Bookings.Create(ctx, &booking); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if ref, err := app.refcodes.Encode(booking.ID); err == nil {
		booking.Ref = ref
	} else {
		app.logger.Warnw("refcode encode failed", "bookingID", booking.ID, "error", err)
	}

	board := app.boardFor(ctx, booking.CheckinDate)
	app.alertIfConflicted(board, &booking)

	resp := BookingMutationResponse{Booking: &booking, Board: board}
	if err := app.jsonResponse(w, http.StatusCreated, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

func bookingIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "bookingID"), 10, 64)
}

// getBookingHandler returns one booking with its reference code.
//
//	@Summary		Fetch a booking
//	@Tags			bookings
//	@Produce		json
//	@Param			bookingID	path		int	true	"Booking ID"
//	@Success		200			{object}	store.Booking
//	@Failure		404			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/admin/bookings/{bookingID} [get]
func (app *application) getBookingHandler(w http.ResponseWriter, r *http.Request) {
	id, err := bookingIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), store.QueryTimeoutDuration)
	defer cancel()

	booking, err := app.store.Bookings.GetByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if ref, err := app.refcodes.Encode(booking.ID); err == nil {
		booking.Ref = ref
	}

	if err := app.jsonResponse(w, http.StatusOK, booking); err != nil {
		app.internalServerError(w, r, err)
	}
}

// updateBookingHandler rewrites a booking's fields. The chalet is
// deliberately not editable here; moving a booking goes through the
// reassign endpoint so the two operations stay independent.
//
//	@Summary		Update a booking
//	@Tags			bookings
//	@Accept			json
//	@Produce		json
//	@Param			bookingID	path		int				true	"Booking ID"
//	@Param			payload		body		BookingPayload	true	"Booking fields"
//	@Success		200			{object}	BookingMutationResponse
//	@Failure		404			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/admin/bookings/{bookingID} [put]
func (app *application) updateBookingHandler(w http.ResponseWriter, r *http.Request) {
	id, err := bookingIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload BookingPayload
	proof, err := decodeBookingPayload(w, r, &payload)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if proof != nil {
		defer proof.Close()
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), store.QueryTimeoutDuration)
	defer cancel()

	booking, err := app.store.Bookings.GetByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	// The chalet moves only through the reassign endpoint, and status only
	// through confirm; edits must not touch either.
	keepChalet := booking.ChaletID
	keepStatus := booking.Status
	if err := app.bookingFromPayload(&payload, booking); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	booking.ChaletID = keepChalet
	booking.Status = keepStatus

	booking.MadeBy, booking.Device, booking.Location = app.auditFrom(r)

	var oldProof string
	if proof != nil {
		if booking.PaymentProofURL != nil {
			oldProof = *booking.PaymentProofURL
		}
		url, err := app.uploadProof(r.Context(), proof)
		if err != nil {
			app.internalServerError(w, r, fmt.Errorf("proof upload: %w", err))
			return
		}
		booking.PaymentProofURL = &url
	}

	if err := app.store.Bookings.Update(ctx, booking); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if oldProof != "" {
		if err := app.deleteProofFromCloudinary(oldProof); err != nil {
			app.logger.Warnw("stale receipt cleanup failed", "url", oldProof, "error", err)
		}
	}

	board := app.boardFor(ctx, booking.CheckinDate)
	app.alertIfConflicted(board, booking)

	resp := BookingMutationResponse{Booking: booking, Board: board}
	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

// reassignChaletHandler moves a booking to another unit.
//
//	@Summary		Move a booking to another chalet
//	@Tags			bookings
//	@Accept			json
//	@Produce		json
//	@Param			bookingID	path		int				true	"Booking ID"
//	@Param			payload		body		ReassignPayload	true	"Target chalet"
//	@Success		200			{object}	BookingMutationResponse
//	@Failure		404			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/admin/bookings/{bookingID}/chalet [patch]
func (app *application) reassignChaletHandler(w http.ResponseWriter, r *http.Request) {
	id, err := bookingIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload ReassignPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), store.QueryTimeoutDuration)
	defer cancel()

	if err := app.store.Bookings.Reassign(ctx, id, payload.ChaletID); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	booking, err := app.store.Bookings.GetByID(ctx, id)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	board := app.boardFor(ctx, booking.CheckinDate)
	app.alertIfConflicted(board, booking)

	resp := BookingMutationResponse{Booking: booking, Board: board}
	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

// confirmBookingHandler promotes a pending booking. The transition is one
// way; a confirmed booking never goes back to pending.
//
//	@Summary		Confirm a pending booking
//	@Tags			bookings
//	@Produce		json
//	@Param			bookingID	path		int	true	"Booking ID"
//	@Success		200			{object}	BookingMutationResponse
//	@Failure		404			{object}	error
//	@Failure		409			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/admin/bookings/{bookingID}/confirm [post]
func (app *application) confirmBookingHandler(w http.ResponseWriter, r *http.Request) {
	id, err := bookingIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), store.QueryTimeoutDuration)
	defer cancel()

	booking, err := app.store.Bookings.GetByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if booking.Status != store.BookingStatusPending {
		app.conflictResponse(w, r, fmt.Errorf("booking is %s, only pending bookings can be confirmed", booking.Status))
		return
	}

	if err := app.store.Bookings.UpdateStatus(ctx, id, store.BookingStatusConfirmed); err != nil {
		app.internalServerError(w, r, err)
		return
	}
	booking.Status = store.BookingStatusConfirmed

	confirmed := *booking
	notifications.CallAsync(func(ctx context.Context) error {
		tokens, err := app.store.PushTokens.List(ctx)
		if err != nil {
			app.logger.Warnw("push token fetch failed", "error", err)
			return nil
		}
		if err := notifications.SendBookingAlert(ctx, app.push, tokens, notifications.BookingConfirmed, &confirmed); err != nil {
			app.logger.Warnw("confirmation alert failed", "error", err)
		}
		return nil
	})

	board := app.boardFor(ctx, booking.CheckinDate)
	resp := BookingMutationResponse{Booking: booking, Board: board}
	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteBookingHandler removes a booking outright. Deleting one side of a
// conflict resolves the day back to a normal state.
//
//	@Summary		Delete a booking
//	@Tags			bookings
//	@Produce		json
//	@Param			bookingID	path		int		true	"Booking ID"
//	@Param			date		query		string	false	"Board day to rebuild (YYYY-MM-DD)"
//	@Success		200			{object}	BoardResponse
//	@Failure		404			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/admin/bookings/{bookingID} [delete]
func (app *application) deleteBookingHandler(w http.ResponseWriter, r *http.Request) {
	id, err := bookingIDParam(r)
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

	if err := app.store.Bookings.Delete(ctx, id); err != nil {
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
