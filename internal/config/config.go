package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port          string
	AllowedOrigin string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	StoreID       string

	AuthSecret            string
	AccessTokenTTLMinutes int

	// Sales ledger (accounting API) credentials and endpoint.
	LedgerUser           string
	LedgerPassword       string
	LedgerBaseURL        string
	LedgerTimeoutSeconds int
	SalesCacheTTLSeconds int

	// Cash catalog and reconciliation targets, in whole pesos.
	BaseTarget           int64
	SmallChangeThreshold int64
	MaterialityThreshold int64
	CoinDenominations    []int64
	BillDenominations    []int64
	TieBreak             string
	AdjustmentMode       string
}

func Load() Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	tokenTTL, err := strconv.Atoi(getEnv("ACCESS_TOKEN_TTL_MINUTES", "480"))
	if err != nil || tokenTTL < 1 {
		tokenTTL = 480
	}
	ledgerTimeout, err := strconv.Atoi(getEnv("LEDGER_TIMEOUT_SECONDS", "15"))
	if err != nil || ledgerTimeout < 1 {
		ledgerTimeout = 15
	}
	salesTTL, err := strconv.Atoi(getEnv("SALES_CACHE_TTL_SECONDS", "300"))
	if err != nil || salesTTL < 1 {
		salesTTL = 300
	}

	cfg := Config{
		Port:          getEnv("PORT", "8080"),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "http://127.0.0.1:3000"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,
		StoreID:       getEnv("DEFAULT_STORE_ID", "main-store"),

		AuthSecret:            strings.TrimSpace(os.Getenv("AUTH_SECRET")),
		AccessTokenTTLMinutes: tokenTTL,

		LedgerUser:           strings.TrimSpace(os.Getenv("LEDGER_USER")),
		LedgerPassword:       strings.TrimSpace(os.Getenv("LEDGER_PASSWORD")),
		LedgerBaseURL:        getEnv("LEDGER_BASE_URL", "https://api.alegra.com/api/v1"),
		LedgerTimeoutSeconds: ledgerTimeout,
		SalesCacheTTLSeconds: salesTTL,

		BaseTarget:           getEnvInt64("BASE_TARGET", 450000),
		SmallChangeThreshold: getEnvInt64("SMALL_CHANGE_THRESHOLD", 10000),
		MaterialityThreshold: getEnvInt64("MATERIALITY_THRESHOLD", 0),
		CoinDenominations:    getEnvInt64List("COIN_DENOMINATIONS", []int64{50, 100, 200, 500, 1000}),
		BillDenominations:    getEnvInt64List("BILL_DENOMINATIONS", []int64{2000, 5000, 10000, 20000, 50000, 100000}),
		TieBreak:             getEnv("TIE_BREAK", "lower"),
		AdjustmentMode:       getEnv("ADJUSTMENT_MODE", "deduct"),
	}

	return cfg
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func getEnvInt64(key string, fallback int64) int64 {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(val, 10, 64)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}

// getEnvInt64List parses a comma-separated list of amounts. Any malformed
// entry invalidates the whole list and the fallback is used instead, so a
// typo cannot silently drop a denomination.
func getEnvInt64List(key string, fallback []int64) []int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parts := strings.Split(raw, ",")
	values := make([]int64, 0, len(parts))
	for _, part := range parts {
		parsed, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil || parsed <= 0 {
			return fallback
		}
		values = append(values, parsed)
	}
	return values
}
