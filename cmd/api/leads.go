package main

import (
	"context"
	"encoding/json"
	"net/http"

	"riopreto/internal/mailer"
	"riopreto/internal/store"
)

type CreateLeadPayload struct {
	Name      string          `json:"name" validate:"required,max=120"`
	Email     string          `json:"email" validate:"required,email,max=160"`
	Intention string          `json:"intention" validate:"omitempty,max=60"`
	Details   json.RawMessage `json:"details" validate:"omitempty"`
}

// createLeadHandler captures a marketing contact from the site (price
// simulator, newsletter box). The owner gets a mail alert in the
// background.
//
//	@Summary		Capture a lead
//	@Tags			leads
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateLeadPayload	true	"Lead fields"
//	@Success		201		{object}	store.Lead
//	@Failure		400		{object}	error
//	@Router			/leads [post]
func (app *application) createLeadHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateLeadPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	lead := &store.Lead{
		Name:      payload.Name,
		Email:     payload.Email,
		Intention: payload.Intention,
		Details:   payload.Details,
	}

	ctx, cancel := context.WithTimeout(r.Context(), store.QueryTimeoutDuration)
	defer cancel()

	if err := app.store.Leads.Create(ctx, lead); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if app.config.ownerEmail != "" {
		alert := leadMailData{
			Name:      lead.Name,
			Email:     lead.Email,
			Intention: lead.Intention,
			Details:   string(lead.Details),
		}
		go func() {
			if _, err := app.mailer.Send(mailer.LeadAlertTemplate, mailer.FromName, app.config.ownerEmail, alert); err != nil {
				app.logger.Warnw("lead mail failed", "leadID", lead.ID, "error", err)
			}
		}()
	}

	if err := app.jsonResponse(w, http.StatusCreated, lead); err != nil {
		app.internalServerError(w, r, err)
	}
}

type leadMailData struct {
	Name      string
	Email     string
	Intention string
	Details   string
}
