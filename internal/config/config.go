package config

import (
	"time"

	"github.com/spf13/viper"
)

// The API and the worker run as separate pods; the database and queue settings
// come in as environment variables. The CLI client reads the same keys so a
// developer only has to export API_BASE_URL and HR_TIME_USER.

type Config struct {
	DBHost         string `mapstructure:"DB_HOST"`
	DBPort         string `mapstructure:"DB_PORT"`
	DBUser         string `mapstructure:"DB_USER"`
	DBPassword     string `mapstructure:"DB_PASSWORD"`
	DBName         string `mapstructure:"DB_NAME"`
	DBConnectTries uint   `mapstructure:"DB_CONNECT_TRIES"`
	ServerPort     string `mapstructure:"SERVER_PORT"`
	UserHeader     string `mapstructure:"USER_HEADER"`
	IsLocalDev     bool   `mapstructure:"LOCAL_DEV"`
	OTLPEndpoint   string `mapstructure:"OTLP_ENDPOINT"`

	AWSRegion          string `mapstructure:"AWS_REGION"`
	AWSEndpoint        string `mapstructure:"AWS_ENDPOINT"`
	CheckinSQSQueueURL string `mapstructure:"CHECKIN_SQS_QUEUE_URL"`
	EmailSender        string `mapstructure:"EMAIL_SENDER"`

	APIBaseURL            string        `mapstructure:"API_BASE_URL"`
	User                  string        `mapstructure:"HR_TIME_USER"`
	APITimeout            time.Duration `mapstructure:"API_TIMEOUT"`
	StatusRefreshInterval time.Duration `mapstructure:"STATUS_REFRESH_INTERVAL"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (config Config, err error) {
	viper.SetDefault("DB_HOST", "db")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "hr_time")
	viper.SetDefault("DB_CONNECT_TRIES", 5)
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("USER_HEADER", "X-User-Id")
	viper.SetDefault("LOCAL_DEV", false)
	viper.SetDefault("OTLP_ENDPOINT", "jaeger:4317")
	viper.SetDefault("AWS_REGION", "us-east-1")
	viper.SetDefault("AWS_ENDPOINT", "http://localstack:4566")
	viper.SetDefault("CHECKIN_SQS_QUEUE_URL", "http://localstack:4566/000000000000/checkin-queue")
	viper.SetDefault("EMAIL_SENDER", "hr-time@checkin-service.com")
	viper.SetDefault("API_BASE_URL", "http://localhost:8080")
	viper.SetDefault("HR_TIME_USER", "")
	viper.SetDefault("API_TIMEOUT", 10*time.Second)
	viper.SetDefault("STATUS_REFRESH_INTERVAL", 15*time.Second)

	viper.AutomaticEnv()

	err = viper.Unmarshal(&config)
	return
}
