package main

import (
	"context"
	"net"
	"net/http"

	"riopreto/internal/intake"
	"riopreto/internal/mailer"
	"riopreto/internal/notifications"
	"riopreto/internal/store"
)

type IntakePayload struct {
	Text     string `json:"text" validate:"required,max=4000"`
	Sender   string `json:"sender" validate:"omitempty,max=160"`
	ProofURL string `json:"proof_url" validate:"omitempty,url"`
	MadeBy   string `json:"made_by" validate:"omitempty,max=60"`
}

type IntakeResponse struct {
	Created  []*store.Booking `json:"created"`
	Rejected []string         `json:"rejected,omitempty"`
}

// intakeHandler turns a forwarded WhatsApp message into pending bookings.
// Extraction failures are the caller's problem (502); normalization
// rejections come back itemized so the operator can fix the message.
//
//	@Summary		Ingest a reservation message
//	@Tags			intake
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		IntakePayload	true	"Raw message"
//	@Success		201		{object}	IntakeResponse
//	@Failure		422		{object}	error
//	@Security		BasicAuth
//	@Router			/intake [post]
func (app *application) intakeHandler(w http.ResponseWriter, r *http.Request) {
	var payload IntakePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	items, err := app.extractor.Extract(r.Context(), payload.Text)
	if err != nil {
		app.logger.Errorw("extraction failed", "error", err)
		writeJSONError(w, http.StatusBadGateway, "could not read the message, try again")
		return
	}
	if len(items) == 0 {
		app.unprocessableEntityResponse(w, r, "no reservation found in the message")
		return
	}

	audit := intake.Audit{
		MadeBy: payload.MadeBy,
		Device: r.UserAgent(),
	}
	if audit.MadeBy == "" {
		audit.MadeBy = "AI/Unknown"
	}
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	if audit.Location, err = app.geo.Lookup(r.Context(), ip); err != nil {
		app.logger.Warnw("geo lookup failed", "ip", ip, "error", err)
	}

	result := intake.Normalize(items, payload.Text, payload.Sender, payload.ProofURL, audit)
	if len(result.Bookings) == 0 {
		app.unprocessableEntityResponse(w, r, result.Rejected)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), store.QueryTimeoutDuration)
	defer cancel()

	if err := app.store.Bookings.CreateBatch(ctx, result.Bookings); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	for _, b := range result.Bookings {
		if ref, err := app.refcodes.Encode(b.ID); err == nil {
			b.Ref = ref
		}
	}

	app.notifyIntake(result.Bookings)

	resp := IntakeResponse{Created: result.Bookings, Rejected: result.Rejected}
	if err := app.jsonResponse(w, http.StatusCreated, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

// notifyIntake fans the new pre-reservations out to the operator phones
// and the owner's inbox. Both channels are best effort.
func (app *application) notifyIntake(bookings []*store.Booking) {
	for _, b := range bookings {
		booking := *b
		notifications.CallAsync(func(ctx context.Context) error {
			tokens, err := app.store.PushTokens.List(ctx)
			if err != nil {
				app.logger.Warnw("push token fetch failed", "error", err)
				return nil
			}
			if err := notifications.SendBookingAlert(ctx, app.push, tokens, notifications.BookingIntake, &booking); err != nil {
				app.logger.Warnw("intake alert failed", "bookingID", booking.ID, "error", err)
			}
			return nil
		})

		if app.config.ownerEmail == "" {
			continue
		}
		mail := intakeMailData{
			GuestName:      booking.GuestName,
			ChaletID:       booking.ChaletID,
			AutoAssigned:   booking.AutoAssigned,
			Checkin:        booking.CheckinDate.String(),
			Checkout:       booking.CheckoutDate.String(),
			TotalPrice:     booking.TotalPrice,
			AdvancePayment: booking.AdvancePayment,
		}
		go func() {
			if _, err := app.mailer.Send(mailer.IntakeTemplate, mailer.FromName, app.config.ownerEmail, mail); err != nil {
				app.logger.Warnw("intake mail failed", "error", err)
			}
		}()
	}
}

type intakeMailData struct {
	GuestName      string
	ChaletID       int
	AutoAssigned   bool
	Checkin        string
	Checkout       string
	TotalPrice     float64
	AdvancePayment float64
}
