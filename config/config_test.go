package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CurrencySymbol != "$" {
		t.Errorf("CurrencySymbol = %q, want $", cfg.CurrencySymbol)
	}
	if cfg.StrictVariableNames {
		t.Error("StrictVariableNames should default to false")
	}
	if !cfg.SeedDemo {
		t.Error("SeedDemo should default to true")
	}
	if cfg.ExportSheetName != "Quote" {
		t.Errorf("ExportSheetName = %q, want Quote", cfg.ExportSheetName)
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	content := "currency_symbol: \"€\"\nstrict_variable_names: true\nexport_sheet_name: Devis\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CurrencySymbol != "€" {
		t.Errorf("CurrencySymbol = %q, want €", cfg.CurrencySymbol)
	}
	if !cfg.StrictVariableNames {
		t.Error("StrictVariableNames should be true")
	}
	if cfg.ExportSheetName != "Devis" {
		t.Errorf("ExportSheetName = %q, want Devis", cfg.ExportSheetName)
	}
	if !cfg.SeedDemo {
		t.Error("SeedDemo should keep its default")
	}
}

func TestLoad_DefaultFileInWorkingDir(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(DefaultConfigFile, []byte("seed_demo: false\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SeedDemo {
		t.Error("SeedDemo should be false from quotedesk.yaml")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quotedesk.yaml")
	if err := os.WriteFile(path, []byte("currency_symbol: \"£\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("QUOTEDESK_CURRENCY_SYMBOL", "CHF")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CurrencySymbol != "CHF" {
		t.Errorf("CurrencySymbol = %q, want %q", cfg.CurrencySymbol, "CHF")
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}
