package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"riopreto/internal/store"

	"github.com/go-chi/chi/v5"
)

type PostResponse struct {
	Post    *store.BlogPost  `json:"post"`
	Related []store.BlogPost `json:"related"`
}

// listPostsHandler lists published posts, newest first.
//
//	@Summary		List blog posts
//	@Tags			blog
//	@Produce		json
//	@Param			limit	query		int	false	"Max posts to return (default 20)"
//	@Success		200		{object}	[]store.BlogPost
//	@Router			/blog [get]
func (app *application) listPostsHandler(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			app.badRequestResponse(w, r, errors.New("limit must be between 1 and 100"))
			return
		}
		limit = parsed
	}

	ctx, cancel := context.WithTimeout(r.Context(), store.QueryTimeoutDuration)
	defer cancel()

	posts, err := app.store.BlogPosts.ListPublished(ctx, limit)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, posts); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getPostHandler returns one published post plus a few related ones for
// the "keep reading" rail.
//
//	@Summary		Fetch a blog post
//	@Tags			blog
//	@Produce		json
//	@Param			slug	path		string	true	"Post slug"
//	@Success		200		{object}	PostResponse
//	@Failure		404		{object}	error
//	@Router			/blog/{slug} [get]
func (app *application) getPostHandler(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	ctx, cancel := context.WithTimeout(r.Context(), store.QueryTimeoutDuration)
	defer cancel()

	post, err := app.store.BlogPosts.GetBySlug(ctx, slug)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	related, err := app.store.BlogPosts.ListRelated(ctx, slug, 3)
	if err != nil {
		app.logger.Warnw("related posts fetch failed", "slug", slug, "error", err)
		related = nil
	}

	resp := PostResponse{Post: post, Related: related}
	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}
