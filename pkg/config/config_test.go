package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_ValoresPorDefecto(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, StorageDriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, "dev", cfg.DIAN.AppEnv)
	assert.Equal(t, 30*time.Second, cfg.DIAN.Timeout)
	assert.Equal(t, "facturas.email", cfg.RabbitMQ.EmailQueue)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestFromViper_DuracionesYBooleanos(t *testing.T) {
	v := viper.New()
	v.Set("DIAN_POLL_INTERVAL", "0")
	v.Set("DIAN_TIMEOUT", "45s")
	v.Set("METRICS_ENABLED", "false")
	v.Set("STORAGE_DRIVER", "MEMORY")
	v.Set("DIAN_ISSUER_NIT", "900123456")

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), cfg.DIAN.PollInterval)
	assert.Equal(t, 45*time.Second, cfg.DIAN.Timeout)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, StorageDriverMemory, cfg.Storage.Driver)
	assert.Equal(t, "900123456", cfg.RIPS.NitIPS, "el NIT del RIPS toma el del emisor")
}

func TestFromViper_ProduccionExigeCertificado(t *testing.T) {
	v := viper.New()
	v.Set("DIAN_APP_ENV", "prod")
	_, err := fromViper(v)
	assert.Error(t, err)
}

func TestDSN_EscapaContrasena(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:w/rd", DBName: "fact", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aw%2Frd@db:5432/fact?sslmode=disable", c.ConnectionString())
	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
