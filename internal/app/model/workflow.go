package model

import (
	"time"

	"gorm.io/gorm"
)

// WorkflowStatus is the state of a purchase workflow. Transitions only
// move forward through AdvanceStep; there is no way to skip a state.
type WorkflowStatus string

const (
	WorkflowReserved          WorkflowStatus = "RESERVED"               // approved, deposit instruction issued
	WorkflowProductionStarted WorkflowStatus = "PRODUCTION_STARTED"     // deposit confirmed, piece in production
	WorkflowAwaitingFinal     WorkflowStatus = "AWAITING_FINAL_PAYMENT" // production done, final invoice issued
	WorkflowFundsHeld         WorkflowStatus = "FUNDS_HELD"             // final payment in escrow
	WorkflowDelivered         WorkflowStatus = "DELIVERED"              // piece handed over, dispute window running
	WorkflowCompleted         WorkflowStatus = "COMPLETED"              // escrow released, ownership transferred
	WorkflowCancelled         WorkflowStatus = "CANCELLED"
)

// WorkflowStep names the step commands a caller may submit.
type WorkflowStep string

const (
	StepDepositPaid        WorkflowStep = "deposit_paid"
	StepProductionFinished WorkflowStep = "production_finished"
	StepFinalPaymentPaid   WorkflowStep = "final_payment_paid"
	StepDelivered          WorkflowStep = "delivered"
	StepCompleted          WorkflowStep = "completed"
)

// PurchaseWorkflow exists only for approved purchases. A request that
// is declined, or never reviewed, leaves no workflow row behind.
type PurchaseWorkflow struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	MasterpieceID   uint           `gorm:"not null;index" json:"masterpiece_id"`
	BuyerID         uint           `gorm:"not null;index" json:"buyer_id"`
	Status          WorkflowStatus `gorm:"type:varchar(30);default:'RESERVED';index" json:"status"`
	TotalPrice      float64        `gorm:"not null" json:"total_price"`
	DepositAmount   float64        `json:"deposit_amount"`
	RemainingAmount float64        `json:"remaining_amount"`
	DepositRef      string         `gorm:"type:varchar(50)" json:"deposit_ref,omitempty"`
	InvoiceRef      string         `gorm:"type:varchar(50)" json:"invoice_ref,omitempty"`
	ApprovedByID    *uint          `json:"approved_by_id,omitempty"`
	ApprovedAt      *time.Time     `json:"approved_at,omitempty"`
	CompletedAt     *time.Time     `json:"completed_at,omitempty"`
	CancelledAt     *time.Time     `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	Masterpiece Masterpiece `gorm:"foreignKey:MasterpieceID" json:"masterpiece,omitempty"`
	Buyer       User        `gorm:"foreignKey:BuyerID" json:"buyer,omitempty"`
}

func (PurchaseWorkflow) TableName() string {
	return "purchase_workflows"
}

// IsClosed reports whether the workflow is in a terminal state.
func (w *PurchaseWorkflow) IsClosed() bool {
	switch w.Status {
	case WorkflowCompleted, WorkflowCancelled:
		return true
	}
	return false
}
