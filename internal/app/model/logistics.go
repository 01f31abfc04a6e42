package model

import (
	"time"

	"github.com/lib/pq"
)

// ProductionUpdate is one progress entry posted by the atelier while a
// commissioned piece is being made.
type ProductionUpdate struct {
	ID              uint      `gorm:"primarykey" json:"id"`
	WorkflowID      uint      `gorm:"not null;index" json:"workflow_id"`
	Stage           string    `gorm:"type:varchar(50)" json:"stage"` // design, casting, setting, polishing, ...
	Note            string    `gorm:"type:text" json:"note"`
	PercentComplete int       `json:"percent_complete"`
	MediaURL        string    `json:"media_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

func (ProductionUpdate) TableName() string {
	return "production_progress"
}

type DeliveryMethod string

const (
	DeliveryCourier    DeliveryMethod = "courier"
	DeliveryWhiteGlove DeliveryMethod = "white_glove" // accompanied hand delivery
	DeliveryPickup     DeliveryMethod = "pickup"
)

type DeliveryDetail struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	WorkflowID    uint           `gorm:"uniqueIndex;not null" json:"workflow_id"`
	Method        DeliveryMethod `gorm:"type:varchar(20);default:'courier'" json:"method"`
	Address       string         `gorm:"type:text" json:"address"`
	RecipientName string         `json:"recipient_name"`
	ScheduledAt   *time.Time     `json:"scheduled_at,omitempty"`
	DeliveredAt   *time.Time     `json:"delivered_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func (DeliveryDetail) TableName() string {
	return "delivery_details"
}

type ShippingStatus string

const (
	ShippingPreparing ShippingStatus = "preparing"
	ShippingInTransit ShippingStatus = "in_transit"
	ShippingDelivered ShippingStatus = "delivered"
)

// ShippingOrder tracks the physical movement of a piece. CustodyLog
// records every hand the piece passes through, oldest first.
type ShippingOrder struct {
	ID                uint           `gorm:"primarykey" json:"id"`
	WorkflowID        uint           `gorm:"not null;index" json:"workflow_id"`
	Carrier           string         `gorm:"type:varchar(50)" json:"carrier"`
	TrackingNumber    string         `gorm:"type:varchar(50)" json:"tracking_number"`
	Status            ShippingStatus `gorm:"type:varchar(20);default:'preparing'" json:"status"`
	CustodyLog        pq.StringArray `gorm:"type:text[]" json:"custody_log"`
	InsurancePolicyID *uint          `json:"insurance_policy_id,omitempty"`
	ShippedAt         *time.Time     `json:"shipped_at,omitempty"`
	DeliveredAt       *time.Time     `json:"delivered_at,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

func (ShippingOrder) TableName() string {
	return "shipping_orders"
}

type InsurancePolicy struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	MasterpieceID  uint      `gorm:"not null;index" json:"masterpiece_id"`
	Provider       string    `gorm:"type:varchar(100)" json:"provider"`
	PolicyNumber   string    `gorm:"type:varchar(50)" json:"policy_number"`
	CoverageAmount float64   `json:"coverage_amount"`
	ValidFrom      time.Time `json:"valid_from"`
	ValidUntil     time.Time `json:"valid_until"`
	CreatedAt      time.Time `json:"created_at"`
}

func (InsurancePolicy) TableName() string {
	return "insurance_policies"
}
