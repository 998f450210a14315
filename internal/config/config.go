package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	ServerAddress   string
	MongoURI        string
	MongoDatabase   string
	JWTSecret       string
	JWTExpiration   time.Duration
	FirebaseProject string
	FirebaseCreds   string
	UploadDir       string
	MaxUploadSizeMB int64
	GCSBucket       string
	SendGridAPIKey  string
	NotifyFromEmail string
	AllowedOrigins  []string
}

func Load() *Config {
	return &Config{
		ServerAddress:   getEnv("SERVER_ADDRESS", ":8080"),
		MongoURI:        getEnv("MONGO_URI", ""),
		MongoDatabase:   getEnv("MONGO_DB", "campusfound"),
		JWTSecret:       getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTExpiration:   24 * time.Hour,
		FirebaseProject: getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseCreds:   getEnv("FIREBASE_CREDENTIALS_JSON", ""),
		UploadDir:       getEnv("UPLOAD_DIR", "./uploads"),
		MaxUploadSizeMB: getEnvInt64("MAX_UPLOAD_SIZE_MB", 10),
		GCSBucket:       getEnv("GCS_BUCKET", ""),
		SendGridAPIKey:  getEnv("SENDGRID_API_KEY", ""),
		NotifyFromEmail: getEnv("NOTIFY_FROM_EMAIL", "no-reply@campusfound.app"),
		AllowedOrigins:  []string{getEnv("ALLOWED_ORIGIN", "*")},
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}
