package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config представляет конфигурацию приложения
type Config struct {
	Server struct {
		Port int
	}
	DB struct {
		Host     string
		Port     int
		User     string
		Password string
		DBName   string
	}
	SMTP struct {
		Host     string
		Port     int
		Username string
		Password string
		From     string
		// Адрес, на который отправляются уведомления о расбалансированных балансах
		ReviewRecipient string
	}
	PII struct {
		PrivateKey string // Приватный ключ для расшифровки SSN/EIN
		PublicKey  string // Публичный ключ для шифрования SSN/EIN
		HMACKey    string // Ключ для HMAC-индекса SSN/EIN
	}
}

// NewConfig создает новый экземпляр конфигурации.
// Значения берутся из переменных окружения с разумными значениями по умолчанию.
func NewConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	// Настройки сервера
	v.SetDefault("SERVER_PORT", 8080)

	// Настройки базы данных
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "opnlend_db")

	// Настройки SMTP
	v.SetDefault("SMTP_HOST", "smtp.gmail.com")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "your-email@gmail.com")
	v.SetDefault("SMTP_PASSWORD", "your-app-password")
	v.SetDefault("SMTP_FROM", "your-email@gmail.com")
	v.SetDefault("SMTP_REVIEW_RECIPIENT", "credit-review@example.com")

	// Ключи шифрования персональных данных
	v.SetDefault("PII_PRIVATE_KEY", "your-pii-private-key-here")
	v.SetDefault("PII_PUBLIC_KEY", "your-pii-public-key-here")
	v.SetDefault("PII_HMAC_KEY", "your-pii-hmac-key-here")

	cfg := &Config{}
	cfg.Server.Port = v.GetInt("SERVER_PORT")
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return nil, fmt.Errorf("неверный формат порта сервера: %d", cfg.Server.Port)
	}

	cfg.DB.Host = v.GetString("DB_HOST")
	cfg.DB.Port = v.GetInt("DB_PORT")
	if cfg.DB.Port <= 0 || cfg.DB.Port > 65535 {
		return nil, fmt.Errorf("неверный формат порта базы данных: %d", cfg.DB.Port)
	}
	cfg.DB.User = v.GetString("DB_USER")
	cfg.DB.Password = v.GetString("DB_PASSWORD")
	cfg.DB.DBName = v.GetString("DB_NAME")

	cfg.SMTP.Host = v.GetString("SMTP_HOST")
	cfg.SMTP.Port = v.GetInt("SMTP_PORT")
	if cfg.SMTP.Port <= 0 || cfg.SMTP.Port > 65535 {
		return nil, fmt.Errorf("неверный формат порта SMTP: %d", cfg.SMTP.Port)
	}
	cfg.SMTP.Username = v.GetString("SMTP_USERNAME")
	cfg.SMTP.Password = v.GetString("SMTP_PASSWORD")
	cfg.SMTP.From = v.GetString("SMTP_FROM")
	cfg.SMTP.ReviewRecipient = v.GetString("SMTP_REVIEW_RECIPIENT")

	cfg.PII.PrivateKey = v.GetString("PII_PRIVATE_KEY")
	cfg.PII.PublicKey = v.GetString("PII_PUBLIC_KEY")
	cfg.PII.HMACKey = v.GetString("PII_HMAC_KEY")

	return cfg, nil
}
