package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"hotel-booking/config"
	"hotel-booking/controllers"
	"hotel-booking/routes"
	"hotel-booking/services"
	"hotel-booking/utils"
)

func main() {
	// Load .env (optional)
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env not found or couldn't load it; continuing with environment variables")
	}

	cfg := config.Load()
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	table, err := config.LoadRoomMappingTable(cfg.RoomMappingFile)
	if err != nil {
		log.Fatalf("❌ room mapping table: %v", err)
	}
	log.Printf("✅ Room mapping table loaded with %d categories", len(table.Mappings()))

	var drafts services.DraftStore
	if config.DatabaseConfigured() {
		if err := config.ConnectDatabase(); err != nil {
			log.Fatalf("❌ Database connect failed: %v", err)
		}
		drafts = services.NewGormDraftStore(config.DB)
		log.Println("✅ Database connection established; booking drafts stored in MySQL.")
	} else {
		drafts = services.NewMemoryDraftStore()
		log.Println("⚠️  No database configured; booking drafts are kept in memory.")
	}

	if cfg.EzeeHotelCode == "" || cfg.EzeeAuthCode == "" {
		log.Println("⚠️  EZEE_HOTEL_CODE / EZEE_AUTH_CODE not set; room availability will fail until configured.")
	}
	if cfg.FlutterwavePublicKey == "" || cfg.FlutterwaveSecretKey == "" {
		log.Println("⚠️  Flutterwave keys not set; online payment is disabled.")
	}

	// Initialize services
	ezee := services.NewEzeeClient(services.EzeeCredentials{
		URL:       cfg.EzeeURL,
		HotelCode: cfg.EzeeHotelCode,
		AuthCode:  cfg.EzeeAuthCode,
	}, cfg.EzeeTimeout, cfg.EzeeMaxRedirects)

	inventory := services.NewInventoryService(ezee, table, services.ExtraRatePolicy{
		UseVendorRates: cfg.ExtraRatesFromVendor,
		FallbackAdult:  cfg.ExtraAdultRate,
		FallbackChild:  cfg.ExtraChildRate,
	})

	payments := services.NewPaymentService(services.PaymentConfig{
		PublicKey:      cfg.FlutterwavePublicKey,
		SecretKey:      cfg.FlutterwaveSecretKey,
		EncryptionKey:  cfg.FlutterwaveEncryptionKey,
		APIURL:         cfg.FlutterwaveAPIURL,
		ScriptURL:      cfg.FlutterwaveScriptURL,
		RedirectURL:    cfg.PaymentRedirectURL,
		Currency:       cfg.PaymentCurrency,
		PaymentOptions: cfg.PaymentOptions,
		Title:          cfg.PaymentTitle,
		Description:    cfg.PaymentDescription,
		Logo:           cfg.PaymentLogo,
	})

	rules := services.PricingRules{
		ExtraAdultThreshold: cfg.ExtraAdultThreshold,
		ServiceFlatFee:      cfg.ServiceFlatFee,
		LongStay: services.LongStayDiscounts{
			Weekly:    cfg.LongStayWeekly,
			Monthly:   cfg.LongStayMonthly,
			Quarterly: cfg.LongStayQuarterly,
		},
		Currency: cfg.PaymentCurrency,
	}
	sessions := services.NewBookingSessionService(inventory, payments, drafts, rules, cfg.SessionTTL)
	defer sessions.Stop()

	events := services.NewEventPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer events.Close()

	confirmations := services.NewConfirmationService(payments, ezee, drafts, events)
	confirmations.OnConfirmed = sessions.Complete
	smtpCfg := utils.SMTPConfigFromEnv()
	if !smtpCfg.Complete() {
		log.Println("⚠️  SMTP not configured; booking emails are logged only.")
	}
	confirmations.Notify = func(email utils.BookingEmail) error {
		return utils.SendBookingEmail(smtpCfg, email)
	}

	currency := services.NewCurrencyService(cfg.DefaultExchangeRate, cfg.ExchangeRateURL)
	refreshCtx, stopRefresh := context.WithCancel(context.Background())
	defer stopRefresh()
	go currency.RunRefresher(refreshCtx, cfg.ExchangeRateInterval)

	if cfg.JWTSecret == "" {
		secret, err := utils.GenerateSecureToken(32)
		if err != nil {
			log.Fatalf("❌ generate JWT secret: %v", err)
		}
		cfg.JWTSecret = secret
		log.Println("⚠️  JWT_SECRET not set; using a random secret, member tokens end with the process.")
	}
	auth, err := services.NewAuthService(cfg.JWTSecret)
	if err != nil {
		log.Fatalf("❌ auth service: %v", err)
	}

	whatsapp := services.NewWhatsAppService(
		services.NewRelayClient(cfg.WhatsAppAPIURL, cfg.RelayTimeout),
		services.NewRelayClient(cfg.WahaURL, cfg.RelayTimeout),
		cfg.WhatsAppSession,
	)
	chat := services.NewChatService(services.NewRelayClient(cfg.AIChatURL, cfg.RelayTimeout))

	// Initialize controllers
	routes.RegisterValidators()
	router := routes.SetupRouter(routes.Controllers{
		Rooms:    controllers.NewRoomsController(inventory),
		Currency: controllers.NewCurrencyController(currency),
		Sessions: controllers.NewBookingSessionController(sessions, auth),
		Payments: controllers.NewPaymentController(payments, confirmations),
		Ezee:     controllers.NewEzeeController(ezee, cfg.EzeeAllowedHosts),
		WhatsApp: controllers.NewWhatsAppController(whatsapp),
		Chat:     controllers.NewChatController(chat),
		Auth:     controllers.NewAuthController(auth),
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		// room lookups may wait on the PMS for up to EZEE_TIMEOUT
		WriteTimeout: cfg.EzeeTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ ListenAndServe(): %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with timeout
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("⚠️  Shutdown signal received, shutting down server...")

	stopRefresh()
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
		return
	}

	log.Println("✅ Server stopped gracefully")
}
