package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/price-catalog/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "price-catalog", cfg.App.Name)
	assert.Equal(t, 5*time.Minute, cfg.Catalog.CacheTTL)
	assert.Equal(t, 500, cfg.Catalog.PageSize)
	assert.Equal(t, 2000, cfg.Catalog.MaxPageSize)
	assert.Equal(t, 0, cfg.Cart.MinQty)
	assert.Equal(t, 9999, cfg.Cart.MaxQty)
	assert.Equal(t, "postgres", cfg.Cart.Storage)
	assert.Equal(t, "5", cfg.Pricing.Kurs.String())
	assert.Equal(t, "0.6", cfg.Pricing.GlobalMargin.String())
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("CART_STORAGE", "Memory")
	t.Setenv("CATALOG_CACHE_TTL_SECONDS", "60")
	t.Setenv("PRICING_KURS", "5.25")
	t.Setenv("HTTP_PORT", "9090")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Cart.Storage)
	assert.Equal(t, time.Minute, cfg.Catalog.CacheTTL)
	assert.Equal(t, "5.25", cfg.Pricing.Kurs.String())
	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
}

func TestLoad_Invalida(t *testing.T) {
	t.Setenv("CART_STORAGE", "redis")
	_, err := config.Load()
	assert.Error(t, err)

	t.Setenv("CART_STORAGE", "memory")
	t.Setenv("PRICING_GLOBAL_MARGIN", "sesenta")
	_, err = config.Load()
	assert.Error(t, err)
}

func TestDBConfig_ConnectionString(t *testing.T) {
	db := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss", DBName: "price_catalog", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss@db:5432/price_catalog?sslmode=disable", db.ConnectionString())

	db.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", db.ConnectionString())
}
