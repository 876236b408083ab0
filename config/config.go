package config

import (
	"strings"
	"time"

	"hotel-booking/utils"
)

// Config is read once at process start. There is no hot reload.
type Config struct {
	AppEnv     string
	Port       string
	APIBaseURL string

	EzeeURL          string
	EzeeHotelCode    string
	EzeeAuthCode     string
	EzeeAllowedHosts []string
	EzeeTimeout      time.Duration
	EzeeMaxRedirects int

	FlutterwavePublicKey     string
	FlutterwaveSecretKey     string
	FlutterwaveEncryptionKey string
	FlutterwaveAPIURL        string
	FlutterwaveScriptURL     string
	PaymentRedirectURL       string
	PaymentCurrency          string
	PaymentOptions           string
	PaymentTitle             string
	PaymentDescription       string
	PaymentLogo              string

	WhatsAppAPIURL  string
	WhatsAppSession string
	WahaURL         string
	AIChatURL       string
	RelayTimeout    time.Duration

	ExchangeRateURL      string
	DefaultExchangeRate  float64
	ExchangeRateInterval time.Duration

	ServiceFlatFee       int64
	ExtraAdultThreshold  int
	ExtraAdultRate       int64
	ExtraChildRate       int64
	ExtraRatesFromVendor bool
	LongStayWeekly       float64
	LongStayMonthly      float64
	LongStayQuarterly    float64

	RoomMappingFile string
	SessionTTL      time.Duration
	JWTSecret       string

	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads the process environment. godotenv has already merged .env by
// the time this runs.
func Load() Config {
	cfg := Config{
		AppEnv:     strings.ToLower(utils.EnvOrDefault("APP_ENV", "development")),
		Port:       utils.EnvOrDefault("PORT", "8080"),
		APIBaseURL: utils.EnvOrDefault("API_BASE_URL", "http://localhost:8080"),

		EzeeURL:          utils.EnvOrDefault("EZEE_URL", "https://live.ipms247.com/pmsinterface/getdataAPI.php"),
		EzeeHotelCode:    utils.EnvOrDefault("EZEE_HOTEL_CODE", ""),
		EzeeAuthCode:     utils.EnvOrDefault("EZEE_AUTH_CODE", ""),
		EzeeAllowedHosts: utils.EnvList("EZEE_ALLOWED_HOSTS", []string{"live.ipms247.com"}),
		EzeeTimeout:      utils.EnvDuration("EZEE_TIMEOUT", 60*time.Second),
		EzeeMaxRedirects: utils.EnvInt("EZEE_MAX_REDIRECTS", 5),

		FlutterwavePublicKey:     utils.EnvOrDefault("FLUTTERWAVE_PUBLIC_KEY", ""),
		FlutterwaveSecretKey:     utils.EnvOrDefault("FLUTTERWAVE_SECRET_KEY", ""),
		FlutterwaveEncryptionKey: utils.EnvOrDefault("FLUTTERWAVE_ENCRYPTION_KEY", ""),
		FlutterwaveAPIURL:        utils.EnvOrDefault("FLUTTERWAVE_API_URL", "https://api.flutterwave.com/v3"),
		FlutterwaveScriptURL:     utils.EnvOrDefault("FLUTTERWAVE_SCRIPT_URL", "https://checkout.flutterwave.com/v3.js"),
		PaymentRedirectURL:       utils.EnvOrDefault("PAYMENT_REDIRECT_URL", "https://taarifa.hotelonline.co/payment/callback"),
		PaymentCurrency:          utils.EnvOrDefault("PAYMENT_CURRENCY", "KES"),
		PaymentOptions:           utils.EnvOrDefault("PAYMENT_OPTIONS", "card,mpesa"),
		PaymentTitle:             utils.EnvOrDefault("PAYMENT_TITLE", "Taarifa Suites"),
		PaymentDescription:       utils.EnvOrDefault("PAYMENT_DESCRIPTION", "Room booking payment"),
		PaymentLogo:              utils.EnvOrDefault("PAYMENT_LOGO", ""),

		WhatsAppAPIURL:  utils.EnvOrDefault("WHATSAPP_API", "https://wa.hotelonline.co/api"),
		WhatsAppSession: utils.EnvOrDefault("WHATSAPP_SESSION", "default"),
		WahaURL:         utils.EnvOrDefault("WAHA_URL", "https://wa.hotelonline.co"),
		AIChatURL:       utils.EnvOrDefault("AI_CHAT_SERVICE_URL", ""),
		RelayTimeout:    utils.EnvDuration("RELAY_TIMEOUT", 10*time.Second),

		ExchangeRateURL:      utils.EnvOrDefault("EXCHANGE_RATE_URL", "https://api.exchangerate-api.com/v4/latest/KES"),
		DefaultExchangeRate:  utils.EnvFloat("KES_TO_USD", 0.0074),
		ExchangeRateInterval: utils.EnvDuration("EXCHANGE_RATE_INTERVAL", time.Hour),

		ServiceFlatFee:       utils.EnvInt64("SERVICE_FLAT_FEE", 50),
		ExtraAdultThreshold:  utils.EnvInt("EXTRA_ADULT_THRESHOLD", 2),
		ExtraAdultRate:       utils.EnvInt64("EXTRA_ADULT_RATE", 0),
		ExtraChildRate:       utils.EnvInt64("EXTRA_CHILD_RATE", 0),
		ExtraRatesFromVendor: utils.EnvBool("EXTRA_RATES_FROM_VENDOR", true),
		LongStayWeekly:       utils.EnvFloat("LONG_STAY_WEEKLY_DISCOUNT", 10),
		LongStayMonthly:      utils.EnvFloat("LONG_STAY_MONTHLY_DISCOUNT", 20),
		LongStayQuarterly:    utils.EnvFloat("LONG_STAY_QUARTERLY_DISCOUNT", 30),

		RoomMappingFile: utils.EnvOrDefault("ROOM_MAPPING_FILE", ""),
		SessionTTL:      utils.EnvDuration("BOOKING_SESSION_TTL", 30*time.Minute),
		JWTSecret:       utils.EnvOrDefault("JWT_SECRET", ""),

		KafkaBrokers: utils.EnvList("KAFKA_BROKERS", nil),
		KafkaTopic:   utils.EnvOrDefault("KAFKA_TOPIC", "booking-events"),
	}
	return cfg
}

func (c Config) IsProduction() bool {
	return c.AppEnv == "production" || c.AppEnv == "prod"
}
