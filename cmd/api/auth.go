package main

import (
	"fmt"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

type CreateSessionPayload struct {
	Name     string `json:"name" validate:"omitempty,max=60"`
	Password string `json:"password" validate:"required"`
}

type RefreshSessionPayload struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type SessionResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// createAdminSessionHandler exchanges the shared operator secret for a
// short-lived token pair. The secret itself never travels past this
// handler; everything destructive runs on the tokens.
//
//	@Summary		Open an admin session
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateSessionPayload	true	"Operator secret"
//	@Success		201		{object}	SessionResponse
//	@Failure		401		{object}	error
//	@Router			/admin/session [post]
func (app *application) createAdminSessionHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateSessionPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword(
		[]byte(app.config.auth.adminDigest), []byte(payload.Password)); err != nil {
		app.unauthorizedErrorResponse(w, r, fmt.Errorf("invalid operator secret"))
		return
	}

	actor := payload.Name
	if actor == "" {
		actor = "operator"
	}

	access, refresh, err := app.authenticator.GenerateTokens(actor)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, SessionResponse{
		AccessToken:  access,
		RefreshToken: refresh,
	}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// refreshAdminSessionHandler rotates the token pair.
//
//	@Summary		Refresh an admin session
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		RefreshSessionPayload	true	"Refresh token"
//	@Success		200		{object}	SessionResponse
//	@Failure		401		{object}	error
//	@Router			/admin/session/refresh [post]
func (app *application) refreshAdminSessionHandler(w http.ResponseWriter, r *http.Request) {
	var payload RefreshSessionPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	jwtToken, err := app.authenticator.ValidateRefreshToken(payload.RefreshToken)
	if err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	actor, err := jwtToken.Claims.GetSubject()
	if err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	access, refresh, err := app.authenticator.GenerateTokens(actor)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, SessionResponse{
		AccessToken:  access,
		RefreshToken: refresh,
	}); err != nil {
		app.internalServerError(w, r, err)
	}
}
