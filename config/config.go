package config

import (
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config представляет конфигурацию приложения.
// Собирается один раз при старте и передается компонентам явно.
type Config struct {
	Server struct {
		Port int
		Env  string // development | production
	}
	DB struct {
		Host     string
		Port     int
		User     string
		Password string
		DBName   string
		SSLMode  string
	}
	JWT struct {
		SecretKey string
		ExpiresIn int // в часах
	}
	SMTP struct {
		Host      string
		Port      int
		Username  string
		Password  string
		From      string
		ContactTo string // адрес для уведомлений формы обратной связи
	}
	S3 struct {
		Region string
		Bucket string
		Folder string
	}
	Log struct {
		Dir   string
		Level string
	}
	KeepAlive struct {
		Enabled   bool
		Spec      string
		TargetURL string
	}
	Admin struct {
		Email    string // если задан, при старте создается администратор
		Password string
	}
}

// NewConfig создает новый экземпляр конфигурации
func NewConfig() (*Config, error) {
	// .env подхватывается если есть, иначе читаем окружение напрямую
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", 5000)
	v.SetDefault("NODE_ENV", "development")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "aurelius_db")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("JWT_SECRET_KEY", "your-secret-key-here")
	v.SetDefault("JWT_EXPIRES_IN", 720) // 30 дней

	v.SetDefault("SMTP_HOST", "smtp.gmail.com")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_FROM", "no-reply@aurelius-capital.com")
	v.SetDefault("SMTP_CONTACT_TO", "")

	v.SetDefault("S3_REGION", "eu-central-1")
	v.SetDefault("S3_BUCKET", "aurelius-proofs")
	v.SetDefault("S3_FOLDER", "aurelius-capital")

	v.SetDefault("LOG_DIR", "logs")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("KEEPALIVE_ENABLED", false)
	v.SetDefault("KEEPALIVE_SPEC", "*/14 * * * *")
	v.SetDefault("KEEPALIVE_URL", "")

	v.SetDefault("ADMIN_EMAIL", "")
	v.SetDefault("ADMIN_PASSWORD", "")

	cfg := &Config{}

	cfg.Server.Port = v.GetInt("SERVER_PORT")
	cfg.Server.Env = v.GetString("NODE_ENV")

	cfg.DB.Host = v.GetString("DB_HOST")
	cfg.DB.Port = v.GetInt("DB_PORT")
	cfg.DB.User = v.GetString("DB_USER")
	cfg.DB.Password = v.GetString("DB_PASSWORD")
	cfg.DB.DBName = v.GetString("DB_NAME")
	cfg.DB.SSLMode = v.GetString("DB_SSLMODE")

	cfg.JWT.SecretKey = v.GetString("JWT_SECRET_KEY")
	cfg.JWT.ExpiresIn = v.GetInt("JWT_EXPIRES_IN")

	cfg.SMTP.Host = v.GetString("SMTP_HOST")
	cfg.SMTP.Port = v.GetInt("SMTP_PORT")
	cfg.SMTP.Username = v.GetString("SMTP_USERNAME")
	cfg.SMTP.Password = v.GetString("SMTP_PASSWORD")
	cfg.SMTP.From = v.GetString("SMTP_FROM")
	cfg.SMTP.ContactTo = v.GetString("SMTP_CONTACT_TO")

	cfg.S3.Region = v.GetString("S3_REGION")
	cfg.S3.Bucket = v.GetString("S3_BUCKET")
	cfg.S3.Folder = v.GetString("S3_FOLDER")

	cfg.Log.Dir = v.GetString("LOG_DIR")
	cfg.Log.Level = v.GetString("LOG_LEVEL")

	cfg.KeepAlive.Enabled = v.GetBool("KEEPALIVE_ENABLED")
	cfg.KeepAlive.Spec = v.GetString("KEEPALIVE_SPEC")
	cfg.KeepAlive.TargetURL = v.GetString("KEEPALIVE_URL")

	cfg.Admin.Email = v.GetString("ADMIN_EMAIL")
	cfg.Admin.Password = v.GetString("ADMIN_PASSWORD")

	return cfg, nil
}

// IsProduction сообщает, запущено ли приложение в боевом режиме
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}
