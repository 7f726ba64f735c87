package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"nodepulse/config"
)

func TestCheckVersionStatus(t *testing.T) {
	policy := config.VersionsConfig{
		CurrentStable: "1.2.0",
		MinSupported:  "1.1.0",
		Deprecated:    "1.0.0",
	}

	tests := []struct {
		name         string
		version      string
		status       string
		needsUpgrade bool
		severity     string
	}{
		{"current", "1.2.0", "current", false, "none"},
		{"ahead of stable", "1.3.0", "current", false, "none"},
		{"v prefix stripped", "v1.2.0", "current", false, "none"},
		{"behind stable", "1.1.5", "outdated", true, "info"},
		{"below min supported", "1.0.5", "outdated", true, "warning"},
		{"deprecated", "1.0.0", "deprecated", true, "critical"},
		{"ancient", "0.9.0", "deprecated", true, "critical"},
		{"garbage", "not-a-version", "unknown", false, "info"},
		{"empty", "", "unknown", false, "info"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, needsUpgrade, severity := CheckVersionStatus(tt.version, policy)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.needsUpgrade, needsUpgrade)
			assert.Equal(t, tt.severity, severity)
		})
	}
}
