package config

import "strings"

// AuditConfig decides how audit write failures are handled.
//
// Most audit entries are side effects of an already-successful operation and
// are recorded best-effort. Actions listed in RequiredActions are part of the
// operation's completion contract: a failed write for one of those aborts the
// caller's operation instead of being swallowed.
type AuditConfig struct {
	// RequiredActions is a comma-separated list of action names whose audit
	// entries are load-bearing, e.g. "ONBOARDING_COMPLETED"
	RequiredActions string `env:"AUTHZ_AUDIT_REQUIRED_ACTIONS" env-default:"ONBOARDING_COMPLETED"`
}

// RequiredActionSet parses RequiredActions into a lookup set
func (a AuditConfig) RequiredActionSet() map[string]bool {
	set := make(map[string]bool)
	for _, action := range strings.Split(a.RequiredActions, ",") {
		action = strings.TrimSpace(action)
		if action != "" {
			set[action] = true
		}
	}
	return set
}
