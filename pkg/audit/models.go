package audit

import (
	"time"

	"github.com/google/uuid"
)

// Action names recorded by this service. Existing log consumers match on
// these strings verbatim, so both naming forms are kept as-is: dot-namespaced
// verbs for routine record changes and shout-case names for admin events.
const (
	ActionUserCreated            = "user.created"
	ActionUserPermissionsUpdated = "user.permissions_updated"
	ActionProjectCreate          = "project.create"
	ActionCampaignCreate         = "campaign.create"

	ActionImpersonationStarted = "IMPERSONATION_STARTED"
	ActionImpersonationEnded   = "IMPERSONATION_ENDED"
	ActionOrgCreated           = "ORG_CREATED"
	ActionOnboardingCompleted  = "ONBOARDING_COMPLETED"
)

// Entry is one immutable audit record. Rows are only ever appended; nothing
// in this service updates or deletes one.
type Entry struct {
	ID         uuid.UUID              `json:"id"`
	UserID     uuid.UUID              `json:"user_id"`
	UserName   string                 `json:"user_name"`
	Action     string                 `json:"action"`
	EntityType string                 `json:"entity_type"`
	EntityID   *uuid.UUID             `json:"entity_id,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
}

// RecordParams contains parameters for recording one audit entry
type RecordParams struct {
	UserID     uuid.UUID
	UserName   string
	Action     string
	EntityType string
	EntityID   *uuid.UUID
	Metadata   map[string]interface{}
}
