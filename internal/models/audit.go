package models

import "time"

// AuditAction constants name the administrative operations worth a
// trail entry.
const (
	AuditActionHallCreate      = "HALL_CREATE"
	AuditActionHallReconfigure = "HALL_RECONFIGURE"
	AuditActionPlanReset       = "PLAN_RESET"
)

// AuditLog records who performed an administrative operation and what
// the request looked like.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
