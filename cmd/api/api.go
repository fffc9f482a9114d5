package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"riopreto/docs" //this is required to generate swagger docs
	"riopreto/internal/auth"
	"riopreto/internal/geo"
	"riopreto/internal/intake"
	"riopreto/internal/mailer"
	"riopreto/internal/notifications"
	"riopreto/internal/ratelimiter"
	"riopreto/internal/refcode"
	"riopreto/internal/store"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

type application struct {
	config        config
	store         store.Storage
	logger        *zap.SugaredLogger
	cld           *cloudinary.Cloudinary
	mailer        mailer.Client
	push          notifications.PushSender
	authenticator auth.Authenticator
	rateLimiter   ratelimiter.Limiter
	geo           *geo.Resolver
	extractor     intake.Extractor
	refcodes      *refcode.Coder
}

type config struct {
	addr        string
	env         string
	apiURL      string
	frontendURL string
	ownerEmail  string
	db          dbConfig
	auth        authConfig
	mail        mailConfig
	rateLimiter ratelimiter.Config
}

type authConfig struct {
	basic basicConfig
	token tokenConfig
	// adminDigest is the bcrypt hash of the single shared operator secret.
	// Known weak point: one credential for the whole team, kept only as a
	// deterrent in front of the session-token boundary.
	adminDigest string
}

type tokenConfig struct {
	secret          string
	refreshSecret   string
	accessTokenExp  time.Duration
	refreshTokenExp time.Duration
	iss             string
}

type basicConfig struct {
	user string
	pass string
}

type mailConfig struct {
	fromEmail string
	mailtrap  mailTrapConfig
}

type mailTrapConfig struct {
	apiKey string
}

type dbConfig struct {
	addr        string
	maxConns    int32
	maxIdleTime string
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.With(app.BasicAuthMiddleware()).Get("/health", app.healthCheckHandler)
		docsURL := fmt.Sprintf("%s/swagger/doc.json", app.config.addr)
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(docsURL)))
		r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)

		// Public storefront surface.
		r.Get("/availability", app.publicMapHandler)
		r.Get("/quote", app.quoteHandler)
		r.Route("/blog", func(r chi.Router) {
			r.Get("/", app.listPostsHandler)
			r.Get("/{slug}", app.getPostHandler)
		})
		r.With(app.RateLimiterMiddleware).Post("/leads", app.createLeadHandler)

		// The WhatsApp bridge posts raw operator messages here.
		r.With(app.BasicAuthMiddleware(), app.RateLimiterMiddleware).
			Post("/intake", app.intakeHandler)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/session", app.createAdminSessionHandler)
			r.Post("/session/refresh", app.refreshAdminSessionHandler)

			r.Group(func(r chi.Router) {
				r.Use(app.AdminTokenMiddleware)

				r.Get("/board", app.getBoardHandler)

				r.Route("/bookings", func(r chi.Router) {
					r.Post("/", app.createBookingHandler)
					r.Route("/{bookingID}", func(r chi.Router) {
						r.Get("/", app.getBookingHandler)
						r.Put("/", app.updateBookingHandler)
						r.Patch("/chalet", app.reassignChaletHandler)
						r.Post("/confirm", app.confirmBookingHandler)
						r.Delete("/", app.deleteBookingHandler)
					})
				})

				r.Route("/blocklist", func(r chi.Router) {
					r.Get("/", app.listBlockedHandler)
					r.Put("/{chaletID}", app.blockChaletHandler)
					r.Delete("/{chaletID}", app.unblockChaletHandler)
				})

				r.Post("/push-tokens", app.registerPushTokenHandler)
			})
		})
	})
	return r
}

func (app *application) run(mux http.Handler) error {
	docs.SwaggerInfo.Version = version
	docs.SwaggerInfo.Host = app.config.apiURL
	docs.SwaggerInfo.BasePath = "/v1"

	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())
		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	if err := <-shutdown; err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)
	return nil
}

func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	data := map[string]string{
		"status":  "ok",
		"env":     app.config.env,
		"version": version,
	}
	if err := app.jsonResponse(w, http.StatusOK, data); err != nil {
		app.internalServerError(w, r, err)
	}
}
