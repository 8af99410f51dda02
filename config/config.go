package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// ✅ Upstream ChMS backend (the REST API this gateway reconciles against)
	ChMSBaseURL        string
	ChMSAPIToken       string
	ChMSRequestTimeout time.Duration

	// ✅ Poll cadences for the realtime reconciler
	RealtimePollInterval  time.Duration
	EventListPollInterval time.Duration

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	JWTAccessSecret    string
	JWTRefreshSecret   string
	JWTAccessTTLHours  int
	JWTRefreshTTLHours int

	// ✅ Kiosk mode: bcrypt hash of the station unlock PIN
	StationPINHash string

	// ✅ Redis Config
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// ✅ Kafka Config
	KafkaBrokers    string
	KafkaAuditTopic string

	// ✅ SMTP Config
	SMTPHost      string
	SMTPPort      string
	SMTPUsername  string
	SMTPPassword  string
	SMTPFromName  string
	SMTPFromEmail string

	// ✅ Comma-separated emails that receive the event close summary
	CloseReportRecipients string

	// ✅ FCM Config
	FCMCredentialsPath string // Path to Firebase service account JSON
	FCMProjectID       string // Firebase Project ID (optional, can be in JSON)
}

// Load reads environment variables and returns a Config object
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file, using environment variables")
	}

	accessTTL, _ := strconv.Atoi(os.Getenv("JWT_ACCESS_TTL_HOURS"))
	refreshTTL, _ := strconv.Atoi(os.Getenv("JWT_REFRESH_TTL_HOURS"))
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))

	return &Config{
		Port: getEnv("PORT", "8080"),

		ChMSBaseURL:        os.Getenv("CHMS_BASE_URL"),
		ChMSAPIToken:       os.Getenv("CHMS_API_TOKEN"),
		ChMSRequestTimeout: getDurationEnv("CHMS_REQUEST_TIMEOUT", 15*time.Second),

		RealtimePollInterval:  getDurationEnv("REALTIME_POLL_INTERVAL", 5*time.Second),
		EventListPollInterval: getDurationEnv("EVENT_LIST_POLL_INTERVAL", 30*time.Second),

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),

		JWTAccessSecret:    os.Getenv("JWT_ACCESS_SECRET"),
		JWTRefreshSecret:   os.Getenv("JWT_REFRESH_SECRET"),
		JWTAccessTTLHours:  accessTTL,
		JWTRefreshTTLHours: refreshTTL,

		StationPINHash: os.Getenv("STATION_PIN_HASH"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,

		KafkaBrokers:    os.Getenv("KAFKA_BROKERS"),
		KafkaAuditTopic: getEnv("KAFKA_AUDIT_TOPIC", "checkin-audit"),

		SMTPHost:      os.Getenv("SMTP_HOST"),
		SMTPPort:      os.Getenv("SMTP_PORT"),
		SMTPUsername:  os.Getenv("SMTP_USERNAME"),
		SMTPPassword:  os.Getenv("SMTP_PASSWORD"),
		SMTPFromName:  os.Getenv("SMTP_FROM_NAME"),
		SMTPFromEmail: os.Getenv("SMTP_FROM_EMAIL"),

		CloseReportRecipients: os.Getenv("CLOSE_REPORT_RECIPIENTS"),

		FCMCredentialsPath: os.Getenv("FCM_CREDENTIALS_PATH"),
		FCMProjectID:       os.Getenv("FCM_PROJECT_ID"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("⚠️ Invalid duration for %s, using default %s", key, fallback)
	}
	return fallback
}
