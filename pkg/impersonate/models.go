package impersonate

import (
	"time"

	"github.com/google/uuid"
)

// Session is one impersonation session row. A session row never becomes
// active again once ended; the impersonator starts a fresh row instead.
type Session struct {
	ID                 uuid.UUID  `json:"id"`
	ImpersonatorUserID uuid.UUID  `json:"impersonator_user_id"`
	ImpersonatedUserID uuid.UUID  `json:"impersonated_user_id"`
	ImpersonatedOrgID  uuid.UUID  `json:"impersonated_org_id"`
	IsActive           bool       `json:"is_active"`
	StartedAt          time.Time  `json:"started_at"`
	EndedAt            *time.Time `json:"ended_at,omitempty"`
}

// Target summarizes the user being impersonated, returned to the caller and
// snapshotted into the audit entry
type Target struct {
	ID               uuid.UUID `json:"id"`
	Email            string    `json:"email"`
	Name             string    `json:"name,omitempty"`
	RoleName         string    `json:"role"`
	OrganizationID   uuid.UUID `json:"organization_id"`
	OrganizationName string    `json:"organization"`
}
