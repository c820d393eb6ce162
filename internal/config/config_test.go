package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/checkout"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SHOP_CONFIG", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.True(t, decimal.NewFromInt(2000).Equal(cfg.Shop.Delivery.FreeThreshold))
	assert.Equal(t, 5*time.Second, cfg.Shop.ReadTimeout)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shop.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
merchant:
  paybill: "522522"
  account_name: Tezzaz Salon
delivery:
  free_threshold: 3000
  base_fee: 250
  zones:
    Nairobi-CBD: 150
read_timeout: 3s
`), 0o600))
	t.Setenv("SHOP_CONFIG", path)
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("HTTP_ADDR", ":9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "522522", cfg.Shop.Merchant.Paybill)
	assert.Equal(t, 3*time.Second, cfg.Shop.ReadTimeout)

	policy := cfg.Shop.FeePolicy()
	assert.True(t, decimal.NewFromInt(150).Equal(policy.Fee(decimal.NewFromInt(1000), checkout.ZoneNairobiCBD)))
	assert.True(t, decimal.NewFromInt(250).Equal(policy.Fee(decimal.NewFromInt(1000), "kisumu")))
	assert.True(t, decimal.NewFromInt(250).Equal(policy.Fee(decimal.NewFromInt(1000), checkout.ZoneOutsideNairobi)))
	assert.True(t, policy.Fee(decimal.NewFromInt(3000), "kisumu").IsZero())
}

func writeShopConfig(t *testing.T, body string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shop.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	t.Setenv("SHOP_CONFIG", path)
}

func TestLoad_ZoneOverridesAreStable(t *testing.T) {
	writeShopConfig(t, "delivery:\n  zones:\n    Nairobi-CBD: 150\n")

	for i := 0; i < 50; i++ {
		cfg, err := Load()
		require.NoError(t, err)
		fee := cfg.Shop.FeePolicy().Fee(decimal.NewFromInt(1000), checkout.ZoneNairobiCBD)
		require.True(t, decimal.NewFromInt(150).Equal(fee), "load %d: fee = %s", i, fee)
	}
}

func TestLoad_EmptyZonesGivesFlatFee(t *testing.T) {
	writeShopConfig(t, "delivery:\n  zones: {}\n")

	cfg, err := Load()
	require.NoError(t, err)

	policy := cfg.Shop.FeePolicy()
	assert.True(t, decimal.NewFromInt(200).Equal(policy.Fee(decimal.NewFromInt(1000), checkout.ZoneOutsideNairobi)))
	assert.True(t, policy.KnownZone("mombasa"))
}

func TestLoad_OmittedZonesKeepDefaults(t *testing.T) {
	writeShopConfig(t, "delivery:\n  base_fee: 250\n")

	cfg, err := Load()
	require.NoError(t, err)

	fee := cfg.Shop.FeePolicy().Fee(decimal.NewFromInt(1000), checkout.ZoneOutsideNairobi)
	assert.True(t, decimal.NewFromInt(500).Equal(fee))
}

func TestLoad_RejectsZonesDifferingOnlyInCase(t *testing.T) {
	writeShopConfig(t, "delivery:\n  zones:\n    Nairobi-CBD: 150\n    nairobi-cbd: 100\n")

	_, err := Load()
	assert.ErrorContains(t, err, "same zone")
}

func TestLoad_RejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shop.yaml")
	require.NoError(t, os.WriteFile(path, []byte("paybil: 1\n"), 0o600))
	t.Setenv("SHOP_CONFIG", path)

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsNegativeFee(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shop.yaml")
	require.NoError(t, os.WriteFile(path, []byte("delivery:\n  base_fee: -5\n"), 0o600))
	t.Setenv("SHOP_CONFIG", path)

	_, err := Load()
	assert.Error(t, err)
}
