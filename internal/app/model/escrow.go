package model

import "time"

type EscrowStatus string
type EscrowSource string

const (
	EscrowHeld     EscrowStatus = "HELD"
	EscrowReleased EscrowStatus = "RELEASED"
	EscrowRefunded EscrowStatus = "REFUNDED"
	EscrowDisputed EscrowStatus = "DISPUTED"

	EscrowFromPurchase EscrowSource = "purchase"
	EscrowFromResale   EscrowSource = "resale"
)

// EscrowTransaction holds a buyer's final payment until the dispute
// window closes. HELD is the only state funds may leave from.
type EscrowTransaction struct {
	ID            uint         `gorm:"primarykey" json:"id"`
	WorkflowID    *uint        `gorm:"index" json:"workflow_id,omitempty"`
	ResaleID      *uint        `gorm:"index" json:"resale_id,omitempty"`
	BuyerID       uint         `gorm:"not null;index" json:"buyer_id"`
	Amount        float64      `gorm:"not null" json:"amount"`
	Status        EscrowStatus `gorm:"type:varchar(20);default:'HELD';index" json:"status"`
	Source        EscrowSource `gorm:"type:varchar(20);default:'purchase'" json:"source"`
	HeldAt        time.Time    `json:"held_at"`
	WindowEndsAt  time.Time    `gorm:"index" json:"window_ends_at"` // dispute window close
	ReleasedAt    *time.Time   `json:"released_at,omitempty"`
	RefundedAt    *time.Time   `json:"refunded_at,omitempty"`
	DisputedAt    *time.Time   `json:"disputed_at,omitempty"`
	DisputeReason string       `json:"dispute_reason,omitempty"`
	ResolvedByID  *uint        `json:"resolved_by_id,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

func (EscrowTransaction) TableName() string {
	return "escrow_transactions"
}
