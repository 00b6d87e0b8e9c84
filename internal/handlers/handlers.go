package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"carhive/api/internal/config"
	"carhive/api/internal/mail"
	"carhive/api/internal/middleware"
	"carhive/api/internal/models"
	"carhive/api/internal/repository"
	"carhive/api/internal/service"
)

type HandlerSet struct {
	log       zerolog.Logger
	cfg       *config.AppConfig
	auth      *service.AuthService
	bookings  *service.BookingService
	dashboard *service.DashboardService
	cars      *repository.CarRepository
	providers *repository.ProviderRepository
	db        *pgxpool.Pool
	cache     *redis.Client
}

func NewHandlerSet(log zerolog.Logger, db *pgxpool.Pool, cache *redis.Client, notifier mail.Notifier, cfg *config.AppConfig) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	carRepo := repository.NewCarRepository(db)
	providerRepo := repository.NewProviderRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	return HandlerSet{
		log:       log,
		cfg:       cfg,
		auth:      service.NewAuthService(userRepo, notifier, cfg, log),
		bookings:  service.NewBookingService(bookingRepo, carRepo, providerRepo, log),
		dashboard: service.NewDashboardService(statsRepo, cache, cfg, log),
		cars:      carRepo,
		providers: providerRepo,
		db:        db,
		cache:     cache,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/register", h.RegisterUser)
		auth.POST("/login", h.Login)
		auth.GET("/logout", h.Logout)
		auth.POST("/forgotpassword", h.ForgotPassword)
		auth.PUT("/resetpassword/:resetToken", h.ResetPassword)
		auth.GET("/me", middleware.Auth(h.cfg), h.Me)
	}

	users := v1.Group("/users")
	users.Use(middleware.Auth(h.cfg))
	{
		users.GET("/me", h.Me)
		users.PUT("/me", h.UpdateMe)
		users.DELETE("/me", h.DeleteMe)
	}

	bookings := v1.Group("/bookings")
	bookings.Use(middleware.Auth(h.cfg))
	{
		bookings.GET("", h.ListBookings)
		bookings.POST("", middleware.RequireRoles(models.UserRoleUser), h.CreateBooking)
		bookings.GET("/:id", h.GetBooking)
		bookings.PUT("/:id", h.UpdateBooking)
		bookings.DELETE("/:id", h.DeleteBooking)
	}

	cars := v1.Group("/cars")
	{
		cars.GET("", h.ListCars)
		cars.GET("/:id", h.GetCar)

		carAdmin := cars.Group("")
		carAdmin.Use(middleware.Auth(h.cfg), middleware.RequireRoles(models.UserRoleAdmin))
		carAdmin.POST("", h.CreateCar)
		carAdmin.PUT("/:id", h.UpdateCar)
		carAdmin.DELETE("/:id", h.DeleteCar)
	}

	providers := v1.Group("/providers")
	{
		providers.GET("", h.ListProviders)
		providers.GET("/locations", h.ProviderLocations)
		providers.GET("/:id", h.GetProvider)
		providers.GET("/:id/cars", h.ListProviderCars)

		providerAdmin := providers.Group("")
		providerAdmin.Use(middleware.Auth(h.cfg), middleware.RequireRoles(models.UserRoleAdmin))
		providerAdmin.POST("", h.CreateProvider)
		providerAdmin.PUT("/:id", h.UpdateProvider)
		providerAdmin.DELETE("/:id", h.DeleteProvider)
	}

	dashboard := v1.Group("/dashboard")
	dashboard.Use(middleware.Auth(h.cfg), middleware.RequireRoles(models.UserRoleAdmin))
	dashboard.GET("", h.Dashboard)
}
