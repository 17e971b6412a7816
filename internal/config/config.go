/**
 * @description
 * Configuration management for the tracker service. Settings are loaded from
 * environment variables via viper, with defaults for everything that has a
 * sensible one. DATABASE_URL and JWT_SECRET are required.
 */
package config

import (
	"errors"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	ServerPort             string `mapstructure:"SERVER_PORT"`
	DatabaseURL            string `mapstructure:"DATABASE_URL"`
	JWTSecret              string `mapstructure:"JWT_SECRET"`
	TokenTTLHours          int    `mapstructure:"TOKEN_TTL_HOURS"`
	AMQPURL                string `mapstructure:"AMQP_URL"`
	PostmarkServerToken    string `mapstructure:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken   string `mapstructure:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail            string `mapstructure:"SENDER_EMAIL"`
	DailyTickSchedule      string `mapstructure:"DAILY_TICK_SCHEDULE"`
	NotifierTimeoutSeconds int    `mapstructure:"NOTIFIER_TIMEOUT_SECONDS"`
	PremiumDurationDays    int    `mapstructure:"PREMIUM_DURATION_DAYS"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("TOKEN_TTL_HOURS", 168)              // 7 days
	viper.SetDefault("DAILY_TICK_SCHEDULE", "0 0 * * *")  // Midnight UTC, once per day.
	viper.SetDefault("NOTIFIER_TIMEOUT_SECONDS", 10)
	viper.SetDefault("PREMIUM_DURATION_DAYS", 30)
	viper.SetDefault("SENDER_EMAIL", "reminders@smartysub.app")
	viper.AutomaticEnv()

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("JWT_SECRET")
	_ = viper.BindEnv("TOKEN_TTL_HOURS")
	_ = viper.BindEnv("AMQP_URL")
	_ = viper.BindEnv("POSTMARK_SERVER_TOKEN")
	_ = viper.BindEnv("POSTMARK_ACCOUNT_TOKEN")
	_ = viper.BindEnv("SENDER_EMAIL")
	_ = viper.BindEnv("DAILY_TICK_SCHEDULE")
	_ = viper.BindEnv("NOTIFIER_TIMEOUT_SECONDS")
	_ = viper.BindEnv("PREMIUM_DURATION_DAYS")

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if config.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	return &config, nil
}
