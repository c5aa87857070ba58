package api

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/natours/tour-booking-api/internal/api/crud"
	"github.com/natours/tour-booking-api/internal/api/handler"
	"github.com/natours/tour-booking-api/internal/api/middleware"
	"github.com/natours/tour-booking-api/internal/core/domain"
	"github.com/natours/tour-booking-api/internal/core/ports"
	"github.com/natours/tour-booking-api/internal/core/service"
	"github.com/natours/tour-booking-api/internal/infrastructure/config"
	mongodb "github.com/natours/tour-booking-api/internal/infrastructure/db/mongo"
	"github.com/natours/tour-booking-api/internal/infrastructure/db/redis"
	"github.com/natours/tour-booking-api/internal/infrastructure/email"
	"github.com/natours/tour-booking-api/internal/infrastructure/payment"
	"github.com/natours/tour-booking-api/pkg/logger"
)

// API-wide rate limit: requests per caller per window.
const (
	rateLimitMax    = 100
	rateLimitWindow = time.Hour
)

// Admin-facing field whitelists; the self-service routes carry their own.
var (
	tourWhitelist = crud.NewWhitelist(
		"name", "duration", "max_group_size", "difficulty",
		"price", "price_discount", "summary", "description",
		"image_cover", "images", "start_dates", "start_location",
		"locations", "guides", "secret",
	)
	userAdminWhitelist = crud.NewWhitelist("name", "email", "photo", "role", "active")
)

// NewRouter builds the Echo instance: dependencies, middleware and every
// route of the API and the rendered site.
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *goredis.Client) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true

	renderer, err := NewRenderer()
	if err != nil {
		return nil, err
	}
	e.Renderer = renderer
	e.HTTPErrorHandler = NewErrorHandler(cfg.IsProduction())

	v := validator.New()
	e.Validator = handler.NewValidator(v)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Secure())
	e.Use(echomiddleware.CORS())
	e.Use(echoprometheus.NewMiddleware("natours"))

	// --- Dependencies ---
	tokenTTL, err := time.ParseDuration(cfg.JWT.ExpiresIn)
	if err != nil {
		return nil, fmt.Errorf("parse JWT_EXPIRES_IN: %w", err)
	}

	var (
		tourCol    ports.Collection[domain.Tour]    = mongodb.NewTourCollection(db, v)
		userCol    ports.Collection[domain.User]    = mongodb.NewUserCollection(db, v)
		reviewCol  ports.Collection[domain.Review]  = mongodb.NewReviewCollection(db, v)
		bookingCol ports.Collection[domain.Booking] = mongodb.NewBookingCollection(db, v)
	)

	userRepo := mongodb.NewUserRepository(db)
	tourRepo := mongodb.NewTourRepository(db)
	reviewRepo := mongodb.NewReviewRepository(db)
	bookingRepo := mongodb.NewBookingRepository(db)

	mailer := email.NewMailer(cfg.Mail, cfg.IsProduction(), logger.With("mailer"))
	provider := payment.NewStripeProvider(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret)

	authService := service.NewAuthService(userRepo, mailer, cfg.JWT.Secret, tokenTTL, cfg.BaseURL, logger.With("auth"))
	tourService := service.NewTourService(tourRepo)
	reviewService := service.NewReviewService(reviewRepo, tourRepo, logger.With("reviews"))
	bookingService := service.NewBookingService(tourRepo, userRepo, bookingRepo, provider, cfg.BaseURL, logger.With("bookings"))

	authHandler := handler.NewAuthHandler(authService, cfg.JWT.CookieDays, cfg.IsProduction())
	userHandler := handler.NewUserHandler(userRepo, userCol)
	tourHandler := handler.NewTourHandler(tourService)
	reviewHandler := handler.NewReviewHandler(reviewCol, reviewService)
	bookingHandler := handler.NewBookingHandler(bookingService, bookingCol)
	viewHandler := handler.NewViewHandler(tourRepo, tourCol, reviewRepo, bookingRepo)

	protect := middleware.Protect(cfg.JWT.Secret, userRepo)
	loggedIn := middleware.IsLoggedIn(cfg.JWT.Secret, userRepo)
	limiter := redis.NewRateLimiter(rdb, rateLimitMax, rateLimitWindow)

	// --- Probes and metrics ---
	e.GET("/health", handler.Health)
	e.GET("/metrics", echoprometheus.NewHandler())

	// The webhook bypasses the API group: its raw body feeds signature
	// verification and must not pass the JSON body guard or rate limiter.
	// It still gets a body cap of its own.
	e.POST("/webhook-checkout", bookingHandler.Webhook,
		echomiddleware.BodyLimit(handler.WebhookBodyLimit))

	// --- API ---
	api := e.Group("/api", middleware.RateLimit(limiter))
	v1 := api.Group("/v1", echomiddleware.BodyLimit("50K"), middleware.RequireJSONBody())

	users := v1.Group("/users")
	users.POST("/signup", authHandler.Signup)
	users.POST("/login", authHandler.Login)
	users.GET("/logout", authHandler.Logout)
	users.POST("/forgotPassword", authHandler.ForgotPassword)
	users.PATCH("/resetPassword/:token", authHandler.ResetPassword)

	me := users.Group("", protect)
	me.PATCH("/updateMyPassword", authHandler.UpdatePassword)
	me.GET("/me", userHandler.Me)
	me.PATCH("/updateMe", userHandler.UpdateMe)
	me.PATCH("/disableMe", userHandler.DisableMe)
	me.DELETE("/deleteMe", userHandler.DeleteMe)

	usersAdmin := users.Group("", protect, middleware.RestrictTo(domain.RoleAdmin))
	usersAdmin.GET("", crud.GetAll(userCol))
	usersAdmin.POST("", userHandler.CreateUser)
	usersAdmin.GET("/:id", crud.GetOne(userCol))
	usersAdmin.PATCH("/:id", crud.UpdateOne(userCol, userAdminWhitelist))
	usersAdmin.DELETE("/:id", crud.DeleteOne(userCol))

	tours := v1.Group("/tours")
	tours.GET("", crud.GetAll(tourCol))
	tours.GET("/top-5-cheap", crud.GetAll(tourCol), handler.AliasTopTours)
	tours.GET("/tour-stats", tourHandler.Stats)
	tours.GET("/monthly-plan/:year", tourHandler.MonthlyPlan,
		protect, middleware.RestrictTo(domain.RoleAdmin, domain.RoleLeader, domain.RoleCoLeader))
	tours.GET("/tours-within/:distance/center/:latlng/unit/:unit", tourHandler.Within)
	tours.GET("/distances/:latlng/unit/:unit", tourHandler.Distances)
	tours.GET("/:id", crud.GetOne(tourCol, "reviews", "guides"))
	tours.POST("", crud.CreateOne(tourCol, tourWhitelist),
		protect, middleware.RestrictTo(domain.RoleAdmin, domain.RoleLeader))
	tours.PATCH("/:id", crud.UpdateOne(tourCol, tourWhitelist),
		protect, middleware.RestrictTo(domain.RoleAdmin, domain.RoleLeader))
	tours.DELETE("/:id", crud.DeleteOne(tourCol),
		protect, middleware.RestrictTo(domain.RoleAdmin, domain.RoleLeader))

	listReviews := crud.GetAll(reviewCol, crud.WithScope[domain.Review]("tourId", "tour"))

	reviews := v1.Group("/reviews", protect)
	reviews.GET("", listReviews)
	reviews.POST("", reviewHandler.Create(), middleware.RestrictTo(domain.RoleUser))
	reviews.GET("/:id", crud.GetOne(reviewCol, "author"))
	reviews.PATCH("/:id", reviewHandler.Update(), middleware.RestrictTo(domain.RoleUser, domain.RoleAdmin))
	reviews.DELETE("/:id", reviewHandler.Delete(), middleware.RestrictTo(domain.RoleUser, domain.RoleAdmin))

	nested := tours.Group("/:tourId/reviews", protect)
	nested.GET("", listReviews)
	nested.POST("", reviewHandler.Create(), middleware.RestrictTo(domain.RoleUser))

	bookings := v1.Group("/bookings", protect)
	bookings.GET("/checkout-session/:tourId", bookingHandler.CheckoutSession)

	bookingsAdmin := bookings.Group("", middleware.RestrictTo(domain.RoleAdmin, domain.RoleLeader))
	bookingsAdmin.GET("", crud.GetAll(bookingCol))
	bookingsAdmin.POST("", bookingHandler.AdminCreate())
	bookingsAdmin.GET("/:id", crud.GetOne(bookingCol))
	bookingsAdmin.PATCH("/:id", crud.UpdateOne(bookingCol, crud.NewWhitelist("tour", "user", "price", "paid")))
	bookingsAdmin.DELETE("/:id", crud.DeleteOne(bookingCol))

	// --- Rendered pages ---
	e.Static("/assets", "public")

	views := e.Group("", handler.Alert)
	views.GET("/", viewHandler.Overview, loggedIn)
	views.GET("/tour/:slug", viewHandler.TourDetail, loggedIn)
	views.GET("/login", viewHandler.LoginForm, loggedIn)
	views.GET("/signup", viewHandler.SignupForm, loggedIn)
	views.GET("/me", viewHandler.Account, protect)
	views.GET("/my-tours", viewHandler.MyTours, protect)
	views.GET("/my-reviews", viewHandler.MyReviews, protect)
	views.GET("/manage-tours", viewHandler.ManageTours,
		protect, middleware.RestrictTo(domain.RoleAdmin, domain.RoleLeader))

	return e, nil
}
