package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequiredActionSet(t *testing.T) {
	cfg := AuditConfig{RequiredActions: "ONBOARDING_COMPLETED, IMPERSONATION_STARTED ,"}
	set := cfg.RequiredActionSet()
	assert.Equal(t, map[string]bool{
		"ONBOARDING_COMPLETED":  true,
		"IMPERSONATION_STARTED": true,
	}, set)

	assert.Empty(t, AuditConfig{}.RequiredActionSet())
}
