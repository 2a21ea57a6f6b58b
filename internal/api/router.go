package api

import (
	"fitbook/internal/api/controllers"
	"fitbook/internal/authz"
	"fitbook/pkg/config"
	"fitbook/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type RouterParams struct {
	fx.In

	Config   *config.Config
	Log      *zap.Logger
	Resolver middleware.ActorResolver

	Accounts   *controllers.AccountController
	Businesses *controllers.BusinessController
	Sessions   *controllers.SessionController
	Bookings   *controllers.BookingController
	Payments   *controllers.PaymentController
	Trainers   *controllers.TrainerController
	Dashboard  *controllers.DashboardController
	Health     *controllers.HealthController
}

func NewRouter(p RouterParams) *gin.Engine {
	if p.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.TraceIDMiddleware())
	r.Use(middleware.RequestLogger(p.Log))
	r.Use(middleware.CORSMiddleware(p.Config.AppBaseURL))
	r.Use(middleware.Authenticate(p.Resolver, p.Config.Session.CookieName))

	RegisterRoutes(r, p)
	return r
}

func RegisterRoutes(r *gin.Engine, p RouterParams) {
	r.GET("/healthz", p.Health.Healthz)

	api := r.Group("/api")
	auth := middleware.RequireAuth()

	authGroup := api.Group("/auth")
	authGroup.POST("/google", p.Accounts.GoogleSignIn)
	authGroup.GET("/google/login", p.Accounts.GoogleLogin)
	authGroup.GET("/google/callback", p.Accounts.GoogleCallback)
	authGroup.POST("/logout", p.Accounts.Logout)
	authGroup.GET("/me", auth, p.Accounts.Me)

	businesses := api.Group("/businesses")
	businesses.POST("", auth, p.Businesses.Register)
	businesses.GET("/my", auth, p.Businesses.GetMy)
	businesses.GET("/unclaimed", p.Businesses.ListUnclaimed)
	businesses.GET("/:id", p.Businesses.Get)
	businesses.POST("/:id/claim", auth, p.Businesses.Claim)
	businesses.POST("/:id/upgrade", auth, p.Businesses.Upgrade)

	api.GET("/session-types", p.Sessions.ListSessionTypes)

	sessions := api.Group("/sessions")
	sessions.POST("", auth, p.Sessions.Create)
	sessions.GET("/search", p.Sessions.Search)
	sessions.GET("/business/:businessId", auth, p.Sessions.ListByBusiness)
	sessions.GET("/:id", p.Sessions.Get)

	bookings := api.Group("/bookings", auth)
	bookings.POST("", p.Bookings.Create)
	bookings.GET("/my", p.Bookings.ListMy)
	bookings.PUT("/:id/status", p.Bookings.UpdateStatus)

	api.POST("/create-payment-intent", auth, p.Payments.CreatePaymentIntent)
	api.POST("/webhooks/stripe", p.Payments.HandleWebhook)

	trainers := api.Group("/personal-trainers")
	trainers.POST("", auth, p.Trainers.Apply)
	trainers.GET("/search", p.Trainers.Search)
	trainers.GET("/my", auth, p.Trainers.ListMy)
	trainers.GET("/:id", p.Trainers.Get)

	trainerBookings := api.Group("/trainer-bookings", auth)
	trainerBookings.POST("", p.Bookings.CreateTrainerBooking)
	trainerBookings.GET("/my", p.Bookings.ListMyTrainerBookings)
	trainerBookings.PUT("/:id/status", p.Bookings.UpdateTrainerBookingStatus)

	admin := api.Group("/admin", auth, middleware.RequireRole(authz.RoleAdmin))
	admin.GET("/stats", p.Dashboard.GetStats)
	admin.PUT("/users/:id/role", p.Accounts.SetRole)
	admin.POST("/businesses", p.Businesses.AddManual)
	admin.GET("/businesses/pending", p.Businesses.ListPending)
	admin.PUT("/businesses/:id/approve", p.Businesses.Approve)
	admin.GET("/claims/pending", p.Businesses.ListPendingClaims)
	admin.PUT("/claims/:id/decide", p.Businesses.DecideClaim)
	admin.GET("/sessions/pending", p.Sessions.ListPending)
	admin.PUT("/sessions/:id/approve", p.Sessions.Approve)
	admin.GET("/trainers/pending", p.Trainers.ListPending)
	admin.PUT("/trainers/:id/approve", p.Trainers.Approve)
	admin.PUT("/trainers/:id/booking", p.Trainers.SetBookingEnabled)
}
