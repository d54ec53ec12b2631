package main

import (
	"context"
	"errors"
	"expvar"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"bazar/internal/auth"
	"bazar/internal/cache"
	"bazar/internal/domain/carts"
	"bazar/internal/domain/orders"
	"bazar/internal/domain/products"
	"bazar/internal/domain/users"
	"bazar/internal/domain/wishlists"
	"bazar/internal/events"
	"bazar/internal/mailer"
	"bazar/internal/ratelimiter"
)

type application struct {
	config        config
	pool          *pgxpool.Pool
	logger        *zap.SugaredLogger
	users         users.Store
	products      products.Store
	carts         carts.Store
	wishlists     wishlists.Store
	orders        orders.Store
	cartCache     cache.CartCache
	orderPaid     *events.Producer
	invUpdated    *events.Producer
	mailer        mailer.Client
	authenticator auth.Authenticator
	rateLimiter   ratelimiter.Limiter
	shareTokens   *wishlists.TokenCodec
	orderNumbers  *orders.OrderNumberGenerator
}

type config struct {
	addr        string
	env         string
	db          dbConfig
	auth        authConfig
	kafka       kafkaConfig
	redisAddr   string
	smtp        smtpConfig
	rateLimiter ratelimiter.Config
}

type authConfig struct {
	basic basicConfig
	token tokenConfig
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

type dbConfig struct {
	addr        string
	maxConns    int
	maxIdleTime string
}

type kafkaConfig struct {
	brokers []string
}

type smtpConfig struct {
	host      string
	port      int
	username  string
	password  string
	fromEmail string
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(app.RateLimiterMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Session-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.With(app.BasicAuthMiddleware()).Get("/health", app.healthCheckHandler)
		r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)

		r.Route("/authentication", func(r chi.Router) {
			r.Post("/user", app.registerUserHandler)
			r.Post("/token", app.createTokenHandler)
			r.Post("/refresh", app.refreshTokenHandler)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", app.listProductsHandler)
			r.Get("/{productID}", app.getProductHandler)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(app.OwnerMiddleware)
			r.Get("/", app.getCartHandler)
			r.Post("/items", app.addCartItemHandler)
			r.Patch("/items/{productID}", app.updateCartItemHandler)
			r.Delete("/items/{productID}", app.removeCartItemHandler)
			r.Delete("/", app.clearCartHandler)
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Use(app.OwnerMiddleware)
			r.Get("/", app.getWishlistHandler)
			r.Post("/items", app.addWishlistItemHandler)
			r.Patch("/items/{productID}", app.updateWishlistItemHandler)
			r.Delete("/items/{productID}", app.removeWishlistItemHandler)
			r.Delete("/", app.clearWishlistHandler)
			r.Post("/share", app.shareWishlistHandler)
		})
		r.Get("/wishlists/shared/{token}", app.getSharedWishlistHandler)

		r.Route("/checkout", func(r chi.Router) {
			r.Use(app.OwnerMiddleware)
			r.Post("/validate", app.validateCartHandler)
			r.With(app.AuthTokenMiddleware).Post("/", app.beginCheckoutHandler)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Get("/", app.listOrdersHandler)
			r.Get("/{orderID}", app.getOrderHandler)
		})

		r.With(app.BasicAuthMiddleware()).Post("/webhooks/payment", app.paymentWebhookHandler)
	})

	return r
}

func (app *application) run(mux http.Handler) error {
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

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}
