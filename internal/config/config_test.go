package config

import (
	"reflect"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "BASE_TARGET", "SMALL_CHANGE_THRESHOLD", "TIE_BREAK", "ADJUSTMENT_MODE", "COIN_DENOMINATIONS", "BILL_DENOMINATIONS", "AUTH_SECRET"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.AuthSecret != "" {
		t.Fatalf("expected empty AUTH_SECRET when unset, got %q", cfg.AuthSecret)
	}

	if cfg.Port != "8080" {
		t.Fatalf("default port = %s, want 8080", cfg.Port)
	}
	if cfg.Address() != ":8080" {
		t.Fatalf("address = %s, want :8080", cfg.Address())
	}
	if cfg.BaseTarget != 450000 {
		t.Fatalf("default base target = %d, want 450000", cfg.BaseTarget)
	}
	if cfg.SmallChangeThreshold != 10000 {
		t.Fatalf("default small change threshold = %d, want 10000", cfg.SmallChangeThreshold)
	}
	if cfg.TieBreak != "lower" || cfg.AdjustmentMode != "deduct" {
		t.Fatalf("unexpected policy defaults: tie=%s adjust=%s", cfg.TieBreak, cfg.AdjustmentMode)
	}
	if !reflect.DeepEqual(cfg.CoinDenominations, []int64{50, 100, 200, 500, 1000}) {
		t.Fatalf("unexpected coin defaults: %v", cfg.CoinDenominations)
	}
	if !reflect.DeepEqual(cfg.BillDenominations, []int64{2000, 5000, 10000, 20000, 50000, 100000}) {
		t.Fatalf("unexpected bill defaults: %v", cfg.BillDenominations)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("BASE_TARGET", "500000")
	t.Setenv("COIN_DENOMINATIONS", "100, 500, 1000")
	t.Setenv("SALES_CACHE_TTL_SECONDS", "60")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Fatalf("port = %s, want 9090", cfg.Port)
	}
	if cfg.BaseTarget != 500000 {
		t.Fatalf("base target = %d, want 500000", cfg.BaseTarget)
	}
	if !reflect.DeepEqual(cfg.CoinDenominations, []int64{100, 500, 1000}) {
		t.Fatalf("coin denominations = %v", cfg.CoinDenominations)
	}
	if cfg.SalesCacheTTLSeconds != 60 {
		t.Fatalf("sales cache ttl = %d, want 60", cfg.SalesCacheTTLSeconds)
	}
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	t.Setenv("BASE_TARGET", "mucho")
	t.Setenv("COIN_DENOMINATIONS", "100,abc,500")
	t.Setenv("ACCESS_TOKEN_TTL_MINUTES", "-5")

	cfg := Load()

	if cfg.BaseTarget != 450000 {
		t.Fatalf("malformed base target must fall back, got %d", cfg.BaseTarget)
	}
	if !reflect.DeepEqual(cfg.CoinDenominations, []int64{50, 100, 200, 500, 1000}) {
		t.Fatalf("malformed coin list must fall back whole, got %v", cfg.CoinDenominations)
	}
	if cfg.AccessTokenTTLMinutes != 480 {
		t.Fatalf("negative token ttl must fall back, got %d", cfg.AccessTokenTTLMinutes)
	}
}
