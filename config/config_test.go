package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_YAML(t *testing.T) {
	path := writeConfig(t, `
http:
  address: ":8080"
database:
  host: db
  port: 5432
  user: travel
  password: secret
  name: travel
  ssl_mode: disable
auth:
  access_secret: a
  refresh_secret: r
  access_ttl: 10m
kafka:
  brokers: ["kafka:9092"]
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, "host=db port=5432 user=travel password=secret dbname=travel sslmode=disable", cfg.Database.DSN())
	assert.Equal(t, 10*time.Minute, cfg.Auth.AccessTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.Auth.RefreshTTL)
	assert.Equal(t, []string{"kafka:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "booking-events", cfg.Kafka.BookingEventsTopic)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
database:
  url: postgres://from-file
`)
	t.Setenv("DATABASE_URL", "postgres://from-env")
	t.Setenv("JWT_ACCESS_SECRET", "access")
	t.Setenv("JWT_REFRESH_SECRET", "refresh")
	t.Setenv("REFRESH_TOKEN_EXPIRES", "48h")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://from-env", cfg.Database.DSN())
	assert.Equal(t, 48*time.Hour, cfg.Auth.RefreshTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestLoadConfig_MissingSecrets(t *testing.T) {
	path := writeConfig(t, `
database:
  url: postgres://localhost/travel
`)
	t.Setenv("JWT_ACCESS_SECRET", "")
	t.Setenv("JWT_REFRESH_SECRET", "")

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt access secret")
	assert.Contains(t, err.Error(), "jwt refresh secret")
}

func TestLoadConfig_InvalidDuration(t *testing.T) {
	path := writeConfig(t, `
database:
  url: postgres://localhost/travel
auth:
  access_secret: a
  refresh_secret: r
`)
	t.Setenv("ACCESS_TOKEN_EXPIRES", "fifteen")

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ACCESS_TOKEN_EXPIRES")
}
