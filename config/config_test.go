package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "production")
	t.Setenv("APP_SECRET", "sekrit")
	t.Setenv("PUBLIC_HOST", "netsoc.example.org")
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("MYSQL_USER", "netsoc")
	t.Setenv("MYSQL_PASSWORD", "hunter2")
	t.Setenv("MYSQL_DATABASE", "netsoc")
	t.Setenv("BOOKDATA_KEY", "key")
	t.Setenv("BOOKDATA_SECRET", "secret")
}

func TestLoad(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.Development)
	assert.Equal(t, "netsoc.example.org", cfg.PublicHost)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "sekrit", cfg.SecretKey)
	assert.Equal(t, "key", cfg.BookData.Key)

	// MYSQL_HOST and MYSQL_PORT fall back to the compose defaults.
	assert.Equal(t, "netsoc:hunter2@tcp(db:3306)/netsoc?charset=utf8mb4&parseTime=true&loc=Local", cfg.DB.DSN())
}

func TestLoadDevelopment(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "development")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Development)
	assert.Equal(t, "netsoc.example.org:8080", cfg.ServerName())
}

func TestLoadMissingKey(t *testing.T) {
	setRequired(t)
	t.Setenv("BOOKDATA_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BOOKDATA_SECRET")
}

func TestLoadBadPort(t *testing.T) {
	setRequired(t)
	t.Setenv("HTTP_PORT", "not-a-port")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP_PORT")
}

func TestServerNameProduction(t *testing.T) {
	cfg := &Config{Development: false, PublicHost: "netsoc.example.org", HTTPPort: 8080}
	assert.Equal(t, "netsoc.example.org", cfg.ServerName())
}
