package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"strings" // For normalizing driver names

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort        string // Application port
	DBDriver       string // mysql, postgres or sqlite
	DBUser         string // Database user
	DBPassword     string // Database password
	DBHost         string // Database host
	DBPort         string // Database port
	DBName         string // Database name (file path for sqlite)
	DBDSN          string // Full DSN, overrides the individual DB settings
	JWTSecret      string // JWT secret key
	JWTExpiryHours int    // Token lifetime in hours
	RedisAddr      string // Redis server address, empty disables caching
	RedisPass      string // Redis password
	RedisDB        int    // Redis database number
	KafkaBroker    string // Kafka broker address, empty disables event publishing
	KafkaTopic     string // Topic for notification events
	KafkaUsername  string // SASL username
	KafkaPassword  string // SASL password
	PublicURL      string // Base URL used to build links sent to users
	IsProd         bool   // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	expiry, err := strconv.Atoi(os.Getenv("JWT_EXPIRY_HOURS"))
	if err != nil || expiry <= 0 {
		expiry = 24
	}
	cfg := &Config{
		AppPort:        getEnv("APP_PORT", "8080"),
		DBDriver:       strings.ToLower(getEnv("DB_DRIVER", "mysql")),
		DBUser:         os.Getenv("DB_USER"),
		DBPassword:     os.Getenv("DB_PASSWORD"),
		DBHost:         getEnv("DB_HOST", "127.0.0.1"),
		DBPort:         os.Getenv("DB_PORT"),
		DBName:         getEnv("DB_NAME", "landestate"),
		DBDSN:          os.Getenv("DB_DSN"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		JWTExpiryHours: expiry,
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPass:      os.Getenv("REDIS_PASS"),
		RedisDB:        redisDB,
		KafkaBroker:    os.Getenv("KAFKA_BROKER"),
		KafkaTopic:     getEnv("KAFKA_TOPIC", "landestate.notifications"),
		KafkaUsername:  os.Getenv("KAFKA_USERNAME"),
		KafkaPassword:  os.Getenv("KAFKA_PASSWORD"),
		IsProd:         os.Getenv("IS_PROD") == "true",
	}
	cfg.PublicURL = strings.TrimRight(getEnv("PUBLIC_URL", "http://localhost:"+cfg.AppPort), "/")
	return cfg
}

// DSN builds the data source name for the configured driver.
func (c *Config) DSN() string {
	if c.DBDSN != "" {
		return c.DBDSN
	}
	switch c.DBDriver {
	case "postgres":
		port := c.DBPort
		if port == "" {
			port = "5432"
		}
		return "host=" + c.DBHost + " user=" + c.DBUser + " password=" + c.DBPassword +
			" dbname=" + c.DBName + " port=" + port + " sslmode=disable TimeZone=UTC"
	case "sqlite":
		return c.DBName + ".db"
	default:
		port := c.DBPort
		if port == "" {
			port = "3306"
		}
		return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + port + ")/" + c.DBName + "?parseTime=true"
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
