package events

import "time"

const TenantLifecycleTopic = "hr.tenant.lifecycle.v1"

const EventTenantDeleted = "tenant_deleted"

// TenantDeletedEvent lists the stored objects left behind by a deleted tenant.
type TenantDeletedEvent struct {
	EventType    string    `json:"event_type"`
	CompanyID    string    `json:"company_id"`
	DocumentKeys []string  `json:"document_keys"`
	DeletedBy    string    `json:"deleted_by"`
	OccurredAt   time.Time `json:"occurred_at"`
}
