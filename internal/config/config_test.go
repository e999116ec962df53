package config_test

import (
	"testing"

	"github.com/asmira/fleetdocs/internal/config"
)

func TestServerConfigDefaults(t *testing.T) {
	var cfg config.ServerConfig
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() error: %v", err)
	}

	if cfg.Addr() != "localhost:8080" {
		t.Errorf("Addr() = %q, want localhost:8080", cfg.Addr())
	}
	if cfg.ReadTimeoutDuration().Seconds() != 30 {
		t.Errorf("read timeout = %v, want 30s", cfg.ReadTimeoutDuration())
	}
}

func TestServerConfigEnvOverride(t *testing.T) {
	t.Setenv(config.EnvServerHost, "0.0.0.0")
	t.Setenv(config.EnvServerPort, "9090")

	var cfg config.ServerConfig
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() error: %v", err)
	}

	if cfg.Addr() != "0.0.0.0:9090" {
		t.Errorf("Addr() = %q, want 0.0.0.0:9090", cfg.Addr())
	}
}

func TestServerConfigInvalidDuration(t *testing.T) {
	cfg := config.ServerConfig{ReadTimeout: "not-a-duration"}
	if err := cfg.Finalize(); err == nil {
		t.Error("Finalize() accepted invalid duration")
	}
}

func TestServerConfigMerge(t *testing.T) {
	cfg := config.ServerConfig{Host: "localhost", Port: 8080, ShutdownTimeout: "30s"}
	cfg.Merge(&config.ServerConfig{Port: 9000})

	if cfg.Host != "localhost" {
		t.Errorf("Host = %q, overlay zero value should not overwrite", cfg.Host)
	}
	if cfg.Port != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Port)
	}
	if cfg.ShutdownTimeout != "30s" {
		t.Errorf("ShutdownTimeout = %q, want 30s", cfg.ShutdownTimeout)
	}
}

func TestStorageConfigDefaults(t *testing.T) {
	var cfg config.StorageConfig
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() error: %v", err)
	}

	if cfg.BasePath != ".data/documents" {
		t.Errorf("BasePath = %q", cfg.BasePath)
	}
	if cfg.MaxUploadSizeBytes() != 50_000_000 {
		t.Errorf("MaxUploadSizeBytes() = %d, want 50000000", cfg.MaxUploadSizeBytes())
	}
}

func TestStorageConfigSizeParsing(t *testing.T) {
	tests := []struct {
		size      string
		wantBytes int64
		wantErr   bool
	}{
		{"10MB", 10_000_000, false},
		{"1GB", 1_000_000_000, false},
		{"512kB", 512_000, false},
		{"banana", 0, true},
		{"-5MB", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.size, func(t *testing.T) {
			cfg := config.StorageConfig{BasePath: "/tmp/docs", MaxUploadSize: tt.size}
			err := cfg.Finalize()

			if tt.wantErr {
				if err == nil {
					t.Fatalf("Finalize() accepted %q", tt.size)
				}
				return
			}
			if err != nil {
				t.Fatalf("Finalize() error: %v", err)
			}
			if cfg.MaxUploadSizeBytes() != tt.wantBytes {
				t.Errorf("MaxUploadSizeBytes() = %d, want %d", cfg.MaxUploadSizeBytes(), tt.wantBytes)
			}
		})
	}
}

func TestComplianceConfigDefaults(t *testing.T) {
	var cfg config.ComplianceConfig
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() error: %v", err)
	}

	if cfg.WarningWindowDays != 15 {
		t.Errorf("WarningWindowDays = %d, want 15", cfg.WarningWindowDays)
	}
	if cfg.GraceWindowDays != 7 {
		t.Errorf("GraceWindowDays = %d, want 7", cfg.GraceWindowDays)
	}
}

func TestComplianceConfigEnvOverride(t *testing.T) {
	t.Setenv(config.EnvComplianceWarningWindow, "30")
	t.Setenv(config.EnvComplianceGraceWindow, "14")

	var cfg config.ComplianceConfig
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() error: %v", err)
	}

	if cfg.WarningWindowDays != 30 || cfg.GraceWindowDays != 14 {
		t.Errorf("windows = %d/%d, want 30/14", cfg.WarningWindowDays, cfg.GraceWindowDays)
	}
}

func TestComplianceConfigRejectsNegative(t *testing.T) {
	cfg := config.ComplianceConfig{WarningWindowDays: -1}
	if err := cfg.Finalize(); err == nil {
		t.Error("Finalize() accepted negative warning window")
	}
}
