package main

import (
	"context"
	"net/http"

	"riopreto/internal/store"
)

type RegisterPushTokenPayload struct {
	Token string `json:"token" validate:"required,max=200"`
}

// registerPushTokenHandler saves an Expo push token for the operator
// channel. Re-registering the same token is a no-op.
//
//	@Summary		Register an operator push token
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			payload	body	RegisterPushTokenPayload	true	"Expo push token"
//	@Success		204
//	@Failure		400	{object}	error
//	@Security		ApiKeyAuth
//	@Router			/admin/push-tokens [post]
func (app *application) registerPushTokenHandler(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPushTokenPayload
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

	if err := app.store.PushTokens.Save(ctx, payload.Token); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
