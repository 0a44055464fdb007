package config

import "testing"

func TestValidate_InvalidTone(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Path: "data/movies.db"},
		Pipeline: PipelineConfig{Tone: "sarcastic"},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid tone")
	}

	expected := `pipeline.tone must be "concise", "friendly", or "neutral", got "sarcastic"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_ValidTones(t *testing.T) {
	validTones := []string{"concise", "friendly", "neutral"}

	for _, tone := range validTones {
		t.Run("tone="+tone, func(t *testing.T) {
			cfg := Config{
				HTTP:     HTTPConfig{Port: 8080},
				Database: DatabaseConfig{Path: "data/movies.db"},
				Pipeline: PipelineConfig{Tone: tone},
			}

			err := cfg.Validate()
			if err != nil {
				t.Fatalf("unexpected error for valid tone %q: %v", tone, err)
			}
		})
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 0},
		Database: DatabaseConfig{Path: "data/movies.db"},
		Pipeline: PipelineConfig{Tone: "concise"},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_LLMEnabledWithoutKey(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Path: "data/movies.db"},
		Pipeline: PipelineConfig{Tone: "concise"},
		LLM:      LLMConfig{Enabled: true},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for enabled llm without api key")
	}
}

func TestValidate_MaxResultsCap(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Path: "data/movies.db"},
		Pipeline: PipelineConfig{Tone: "concise", MaxResults: 100},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for max_results over 50")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 10 {
		t.Errorf("expected WriteTimeoutSec=10, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Database.Path == "" {
		t.Error("expected default database path")
	}
	if cfg.LLM.Provider != "openai" {
		t.Errorf("expected Provider='openai', got %q", cfg.LLM.Provider)
	}
	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("expected Model='gpt-4o-mini', got %q", cfg.LLM.Model)
	}
	if cfg.LLM.TimeoutSec != 30 {
		t.Errorf("expected TimeoutSec=30, got %d", cfg.LLM.TimeoutSec)
	}
	if cfg.Pipeline.MaxResults != 10 {
		t.Errorf("expected MaxResults=10, got %d", cfg.Pipeline.MaxResults)
	}
	if cfg.Pipeline.MinCountThreshold != 50 {
		t.Errorf("expected MinCountThreshold=50, got %d", cfg.Pipeline.MinCountThreshold)
	}
	if cfg.Pipeline.MaxFiltersLength != 160 {
		t.Errorf("expected MaxFiltersLength=160, got %d", cfg.Pipeline.MaxFiltersLength)
	}
	if cfg.Pipeline.Tone != "concise" {
		t.Errorf("expected Tone='concise', got %q", cfg.Pipeline.Tone)
	}
	if !cfg.Pipeline.DiversifyEnabled() {
		t.Error("expected diversify enabled by default")
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	off := false
	cfg := Config{
		HTTP:     HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Database: DatabaseConfig{Path: "/var/lib/cinequery/movies.db"},
		LLM:      LLMConfig{Provider: "openai", Model: "gpt-4o", TimeoutSec: 60},
		Pipeline: PipelineConfig{MaxResults: 25, MinCountThreshold: 100, MaxFiltersLength: 140, Diversify: &off, Tone: "friendly"},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Database.Path != "/var/lib/cinequery/movies.db" {
		t.Errorf("expected custom database path, got %q", cfg.Database.Path)
	}
	if cfg.LLM.Model != "gpt-4o" {
		t.Errorf("expected Model='gpt-4o', got %q", cfg.LLM.Model)
	}
	if cfg.Pipeline.MaxResults != 25 {
		t.Errorf("expected MaxResults=25, got %d", cfg.Pipeline.MaxResults)
	}
	if cfg.Pipeline.DiversifyEnabled() {
		t.Error("expected diversify disabled when set to false")
	}
	if cfg.Pipeline.Tone != "friendly" {
		t.Errorf("expected Tone='friendly', got %q", cfg.Pipeline.Tone)
	}
}
