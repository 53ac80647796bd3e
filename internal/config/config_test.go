package config

import (
	"testing"
	"time"

	"bullion/internal/ledger"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.PrimaryCurrency != "AED" {
			t.Errorf("expected AED, got %q", cfg.PrimaryCurrency)
		}
		if len(cfg.TrackedCurrencies) != 3 || cfg.TrackedCurrencies[2] != "XAU" {
			t.Errorf("unexpected tracked currencies %v", cfg.TrackedCurrencies)
		}
		if cfg.UnknownCurrency != ledger.UnknownIgnore {
			t.Errorf("expected ignore policy, got %q", cfg.UnknownCurrency)
		}
		if cfg.StatementCacheTTL != 5*time.Minute {
			t.Errorf("expected 5m TTL, got %v", cfg.StatementCacheTTL)
		}
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("LEDGER_TRACKED_CURRENCIES", "usd, inr ,,")
		t.Setenv("LEDGER_PRIMARY_CURRENCY", "inr")
		t.Setenv("LEDGER_EXCLUDED_TYPES", "vat")
		t.Setenv("LEDGER_UNKNOWN_CURRENCY", "fallback")
		t.Setenv("STATEMENT_CACHE_SIZE", "oops")
		t.Setenv("STATEMENT_CACHE_TTL", "30s")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(cfg.TrackedCurrencies) != 2 || cfg.TrackedCurrencies[0] != "USD" || cfg.TrackedCurrencies[1] != "INR" {
			t.Errorf("unexpected tracked currencies %v", cfg.TrackedCurrencies)
		}
		if cfg.PrimaryCurrency != "INR" {
			t.Errorf("expected INR, got %q", cfg.PrimaryCurrency)
		}
		if cfg.UnknownCurrency != ledger.UnknownFallback {
			t.Errorf("expected fallback policy, got %q", cfg.UnknownCurrency)
		}
		if cfg.StatementCacheSize != 256 {
			t.Errorf("expected fallback size 256, got %d", cfg.StatementCacheSize)
		}
		if cfg.StatementCacheTTL != 30*time.Second {
			t.Errorf("expected 30s TTL, got %v", cfg.StatementCacheTTL)
		}

		opts := cfg.LedgerOptions()
		if opts.Exclude == nil || !opts.Exclude(ledger.Transaction{Type: "VAT"}) {
			t.Error("expected VAT to be excluded")
		}
		if opts.FallbackCurrency != "INR" {
			t.Errorf("expected INR fallback, got %q", opts.FallbackCurrency)
		}
	})
}
