package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Database holds the connection parameters for the primary MySQL store.
type Database struct {
	User     string
	Password string
	Host     string
	Port     int
	Name     string
}

// DSN builds a go-sql-driver DSN. parseTime is required so gorm scans
// DATETIME columns into time.Time.
func (d Database) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=true&loc=Local",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

// BookData holds the credentials for the external book-metadata provider.
type BookData struct {
	Key    string
	Secret string
}

// Config is built once at process start and threaded explicitly into the
// components that need it. Nothing reads the environment after Load returns.
type Config struct {
	Development bool
	PublicHost  string
	HTTPPort    int
	SecretKey   string

	DB       Database
	BookData BookData
}

// ServerName is the public name the site is reachable under. The port is
// only included in development; in production we sit behind a reverse proxy.
func (c *Config) ServerName() string {
	if c.Development {
		return fmt.Sprintf("%s:%d", c.PublicHost, c.HTTPPort)
	}
	return c.PublicHost
}

var required = []string{
	"APP_ENV",
	"APP_SECRET",
	"PUBLIC_HOST",
	"HTTP_PORT",
	"MYSQL_USER",
	"MYSQL_PASSWORD",
	"MYSQL_DATABASE",
	"BOOKDATA_KEY",
	"BOOKDATA_SECRET",
}

// Load reads configuration from the environment. Every key in required must
// be present; a missing key is a startup failure, not a runtime one.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("MYSQL_HOST", "db")
	v.SetDefault("MYSQL_PORT", 3306)

	var missing []string
	for _, key := range required {
		if v.GetString(key) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	cfg := &Config{
		Development: v.GetString("APP_ENV") != "production",
		PublicHost:  v.GetString("PUBLIC_HOST"),
		HTTPPort:    v.GetInt("HTTP_PORT"),
		SecretKey:   v.GetString("APP_SECRET"),
		DB: Database{
			User:     v.GetString("MYSQL_USER"),
			Password: v.GetString("MYSQL_PASSWORD"),
			Host:     v.GetString("MYSQL_HOST"),
			Port:     v.GetInt("MYSQL_PORT"),
			Name:     v.GetString("MYSQL_DATABASE"),
		},
		BookData: BookData{
			Key:    v.GetString("BOOKDATA_KEY"),
			Secret: v.GetString("BOOKDATA_SECRET"),
		},
	}

	if cfg.HTTPPort == 0 {
		return nil, fmt.Errorf("HTTP_PORT is not a valid port number: %q", v.GetString("HTTP_PORT"))
	}

	return cfg, nil
}
