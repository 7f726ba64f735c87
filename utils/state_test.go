package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"nodepulse/models"
)

func TestDeriveState(t *testing.T) {
	threshold := 5 * time.Minute

	tests := []struct {
		name     string
		lastSeen time.Duration
		state    string
	}{
		{"just reported", 0, "online"},
		{"within threshold", 4 * time.Minute, "online"},
		{"past threshold", 6 * time.Minute, "warning"},
		{"near cutoff", 14 * time.Minute, "warning"},
		{"long gone", 16 * time.Minute, "offline"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			device := &models.Device{LastSeen: time.Now().Add(-tt.lastSeen)}
			DeriveState(device, threshold)
			assert.Equal(t, tt.state, device.State)
		})
	}
}
