package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration. Logical DBs keep cache, live locations, codes
	// and the task queue apart on one instance.
	RedisAddr       string `mapstructure:"REDIS_ADDR"`
	RedisPassword   string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB    int    `mapstructure:"REDIS_CACHE_DB"`
	RedisLocationDB int    `mapstructure:"REDIS_LOCATION_DB"`
	RedisCodeDB     int    `mapstructure:"REDIS_CODE_DB"`
	RedisQueueDB    int    `mapstructure:"REDIS_QUEUE_DB"`

	// Dispatch tuning.
	SearchRadiusKm   float64 `mapstructure:"SEARCH_RADIUS_KM"`
	AssumedSpeedKmh  float64 `mapstructure:"ASSUMED_SPEED_KMH"`
	MinLeadTimeMins  int     `mapstructure:"MIN_LEAD_TIME_MINS"`
	CommissionRate   float64 `mapstructure:"COMMISSION_RATE"`
	PendingTTLMins   int     `mapstructure:"PENDING_TTL_MINS"` // 0 = pending bookings never auto-cancel
	FirebaseKeyPath  string  `mapstructure:"FIREBASE_KEY_PATH"`
	SMSGatewayURL    string  `mapstructure:"SMS_GATEWAY_URL"`
	SMSGatewayAPIKey string  `mapstructure:"SMS_GATEWAY_API_KEY"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "fixify")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_LOCATION_DB", 1)
	viper.SetDefault("REDIS_CODE_DB", 2)
	viper.SetDefault("REDIS_QUEUE_DB", 3)
	viper.SetDefault("SEARCH_RADIUS_KM", 10.0)
	viper.SetDefault("ASSUMED_SPEED_KMH", 30.0)
	viper.SetDefault("MIN_LEAD_TIME_MINS", 30)
	viper.SetDefault("COMMISSION_RATE", 0.15)
	viper.SetDefault("PENDING_TTL_MINS", 0)
	viper.SetDefault("FIREBASE_KEY_PATH", "serviceAccountKey.json")
	viper.SetDefault("SMS_GATEWAY_URL", "")
	viper.SetDefault("SMS_GATEWAY_API_KEY", "")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
