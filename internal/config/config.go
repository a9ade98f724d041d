package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisURL string

	ServerPort string

	SessionMaxAge int // seconds

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPSSL      bool
	MailSender   string

	AvatarAccountID       string
	AvatarAccessKeyID     string
	AvatarSecretAccessKey string
	AvatarBucketName      string
	AvatarPublicURL       string
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found or error loading it, relying on environment variables")
	}

	sessionMaxAge, err := strconv.Atoi(os.Getenv("SESSION_MAX_AGE"))
	if err != nil || sessionMaxAge <= 0 {
		sessionMaxAge = 2592000 // 30 days
	}

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	smtpPort, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil || smtpPort <= 0 {
		smtpPort = 587
	}
	smtpSSL, _ := strconv.ParseBool(os.Getenv("SMTP_SSL"))

	return &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),

		RedisURL: redisURL,

		ServerPort: serverPort,

		SessionMaxAge: sessionMaxAge,

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     smtpPort,
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPSSL:      smtpSSL,
		MailSender:   os.Getenv("MAIL_SENDER"),

		AvatarAccountID:       os.Getenv("AVATAR_ACCOUNT_ID"),
		AvatarAccessKeyID:     os.Getenv("AVATAR_ACCESS_KEY_ID"),
		AvatarSecretAccessKey: os.Getenv("AVATAR_SECRET_ACCESS_KEY"),
		AvatarBucketName:      os.Getenv("AVATAR_BUCKET_NAME"),
		AvatarPublicURL:       os.Getenv("AVATAR_PUBLIC_URL"),
	}, nil
}
