package routes

import (
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"hotel-booking/controllers"
	"hotel-booking/middleware"
	"hotel-booking/utils"
)

func parseCorsOrigins() []string {
	raw := strings.TrimSpace(os.Getenv("CORS_ORIGINS"))
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// Controllers groups the handlers the router mounts.
type Controllers struct {
	Rooms    *controllers.RoomsController
	Currency *controllers.CurrencyController
	Sessions *controllers.BookingSessionController
	Payments *controllers.PaymentController
	Ezee     *controllers.EzeeController
	WhatsApp *controllers.WhatsAppController
	Chat     *controllers.ChatController
	Auth     *controllers.AuthController
}

// RegisterValidators installs the custom binding rules on gin's validator.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		log.Println("⚠️  gin validator engine is not go-playground; custom rules not registered")
		return
	}
	if err := utils.RegisterValidators(v); err != nil {
		log.Fatalf("❌ register validators: %v", err)
	}
}

func SetupRouter(ctl Controllers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger())

	origins := parseCorsOrigins()
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With",
			"X-Ezee-Url", "X-Ezee-Hotel", "X-Ezee-Auth",
		},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.GET("/rooms", ctl.Rooms.GetAvailableRooms)
		api.GET("/room-types", ctl.Rooms.GetRoomCategories)

		currency := api.Group("/currency")
		{
			currency.GET("/rate", ctl.Currency.GetRate)
			currency.GET("/convert", ctl.Currency.Convert)
		}

		sessions := api.Group("/booking-sessions")
		{
			sessions.POST("", ctl.Sessions.CreateSession)
			sessions.GET("/:id", ctl.Sessions.GetSession)
			sessions.DELETE("/:id", ctl.Sessions.DeleteSession)
			sessions.PUT("/:id/dates", ctl.Sessions.UpdateDates)
			sessions.PUT("/:id/guests", ctl.Sessions.UpdateGuests)
			sessions.PUT("/:id/room", ctl.Sessions.SelectRoom)
			sessions.PUT("/:id/services", ctl.Sessions.UpdateServices)
			sessions.PUT("/:id/guest", ctl.Sessions.UpdateGuestInfo)
			sessions.POST("/:id/member", ctl.Sessions.ApplyMember)
			sessions.POST("/:id/next", ctl.Sessions.Next)
			sessions.POST("/:id/back", ctl.Sessions.Back)
			sessions.POST("/:id/submit", ctl.Sessions.Submit)
		}

		api.GET("/payments/checkout.js", ctl.Payments.CheckoutScript)
		api.POST("/bookings/confirm", ctl.Payments.ConfirmBooking)
		api.GET("/verify-payment/:transactionId", ctl.Payments.VerifyPayment)

		api.POST("/ezee", ctl.Ezee.ProxyRequest)

		whatsapp := api.Group("/whatsapp")
		{
			whatsapp.POST("/send", ctl.WhatsApp.SendMessage)
			whatsapp.POST("/continue", ctl.WhatsApp.ContinueChat)
		}

		api.POST("/chat", ctl.Chat.HandleChat)

		auth := api.Group("/auth")
		{
			auth.POST("/register", ctl.Auth.Register)
			auth.POST("/signin", ctl.Auth.SignIn)
			auth.GET("/profile", ctl.Auth.Profile)
		}
	}

	return r
}
