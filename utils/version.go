package utils

import (
	"strings"

	"github.com/hashicorp/go-version"

	"nodepulse/config"
)

// CheckVersionStatus evaluates a reported device_version against the
// configured policy. Unparseable versions are "unknown" rather than an
// error - devices in the field send all kinds of garbage.
func CheckVersionStatus(deviceVersion string, policy config.VersionsConfig) (status string, needsUpgrade bool, severity string) {
	deviceVersion = strings.TrimPrefix(deviceVersion, "v")

	ver, err := version.NewVersion(deviceVersion)
	if err != nil {
		return "unknown", false, "info"
	}

	current, err := version.NewVersion(policy.CurrentStable)
	if err != nil {
		return "unknown", false, "info"
	}
	minSupported, _ := version.NewVersion(policy.MinSupported)
	deprecated, _ := version.NewVersion(policy.Deprecated)

	if deprecated != nil && ver.LessThanOrEqual(deprecated) {
		return "deprecated", true, "critical"
	}
	if minSupported != nil && ver.LessThan(minSupported) {
		return "outdated", true, "warning"
	}
	if ver.LessThan(current) {
		return "outdated", true, "info"
	}

	return "current", false, "none"
}
