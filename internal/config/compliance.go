package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	// EnvComplianceWarningWindow overrides the expiry warning window in days.
	EnvComplianceWarningWindow = "COMPLIANCE_WARNING_WINDOW_DAYS"

	// EnvComplianceGraceWindow overrides the post-expiry grace window in days.
	EnvComplianceGraceWindow = "COMPLIANCE_GRACE_WINDOW_DAYS"
)

// ComplianceConfig contains the expiry alert thresholds.
// Documents enter the alert feed at warning_window_days before expiry and
// leave it grace_window_days after expiry.
type ComplianceConfig struct {
	WarningWindowDays int `toml:"warning_window_days"`
	GraceWindowDays   int `toml:"grace_window_days"`
}

// Finalize applies defaults, loads environment overrides, and validates the compliance configuration.
func (c *ComplianceConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *ComplianceConfig) Merge(overlay *ComplianceConfig) {
	if overlay.WarningWindowDays != 0 {
		c.WarningWindowDays = overlay.WarningWindowDays
	}
	if overlay.GraceWindowDays != 0 {
		c.GraceWindowDays = overlay.GraceWindowDays
	}
}

func (c *ComplianceConfig) loadDefaults() {
	if c.WarningWindowDays == 0 {
		c.WarningWindowDays = 15
	}
	if c.GraceWindowDays == 0 {
		c.GraceWindowDays = 7
	}
}

func (c *ComplianceConfig) loadEnv() {
	if v := os.Getenv(EnvComplianceWarningWindow); v != "" {
		if days, err := strconv.Atoi(v); err == nil {
			c.WarningWindowDays = days
		}
	}
	if v := os.Getenv(EnvComplianceGraceWindow); v != "" {
		if days, err := strconv.Atoi(v); err == nil {
			c.GraceWindowDays = days
		}
	}
}

func (c *ComplianceConfig) validate() error {
	if c.WarningWindowDays < 0 {
		return fmt.Errorf("warning_window_days cannot be negative")
	}
	if c.GraceWindowDays < 0 {
		return fmt.Errorf("grace_window_days cannot be negative")
	}
	return nil
}
