package model

import "time"

// ProvenanceEvent is one entry on a masterpiece's public timeline.
type ProvenanceEvent struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	MasterpieceID uint      `gorm:"not null;index" json:"masterpiece_id"`
	EventType     string    `gorm:"type:varchar(30)" json:"event_type"` // created, exhibited, sold, serviced, ...
	Title         string    `gorm:"not null" json:"title"`
	Description   string    `gorm:"type:text" json:"description"`
	OccurredAt    time.Time `json:"occurred_at"`
	RecordedByID  *uint     `json:"recorded_by_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func (ProvenanceEvent) TableName() string {
	return "provenance_timeline"
}

type ServiceType string

const (
	ServiceCleaning    ServiceType = "cleaning"
	ServiceRepair      ServiceType = "repair"
	ServiceAppraisal   ServiceType = "appraisal"
	ServiceRestoration ServiceType = "restoration"
)

// ServiceRecord documents atelier work performed on a piece after
// sale. Services raise the piece's valuation.
type ServiceRecord struct {
	ID            uint        `gorm:"primarykey" json:"id"`
	MasterpieceID uint        `gorm:"not null;index" json:"masterpiece_id"`
	ServiceType   ServiceType `gorm:"type:varchar(20);not null" json:"service_type"`
	Description   string      `gorm:"type:text" json:"description"`
	Cost          float64     `json:"cost"`
	PerformedAt   time.Time   `json:"performed_at"`
	CreatedAt     time.Time   `json:"created_at"`
}

func (ServiceRecord) TableName() string {
	return "service_history"
}

// AuditLog records privileged actions for review.
type AuditLog struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	ActorID   *uint     `gorm:"index" json:"actor_id,omitempty"`
	Action    string    `gorm:"type:varchar(50);not null;index" json:"action"`
	Entity    string    `gorm:"type:varchar(30)" json:"entity"`
	EntityID  uint      `json:"entity_id"`
	Detail    string    `gorm:"type:text" json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
