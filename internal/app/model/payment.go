package model

import "time"

type PaymentKind string
type PaymentState string

const (
	PaymentDeposit PaymentKind = "deposit"
	PaymentFinal   PaymentKind = "final"
	PaymentResale  PaymentKind = "resale"
	PaymentAuction PaymentKind = "auction"

	PaymentAwaitingDeposit PaymentState = "awaiting_deposit"
	PaymentAwaitingPayment PaymentState = "awaiting_payment"
	PaymentPaid            PaymentState = "paid"
	PaymentRefunded        PaymentState = "refunded"
)

// AwaitingState returns the open state a payment of the given kind
// starts in. Deposits await the deposit transfer, everything else
// awaits a regular payment.
func AwaitingState(kind PaymentKind) PaymentState {
	if kind == PaymentDeposit {
		return PaymentAwaitingDeposit
	}
	return PaymentAwaitingPayment
}

// Payment records a bank transfer against a workflow or sale. Payments
// are confirmed manually by staff once the transfer arrives.
type Payment struct {
	ID            uint         `gorm:"primarykey" json:"id"`
	WorkflowID    *uint        `gorm:"index" json:"workflow_id,omitempty"`
	MasterpieceID uint         `gorm:"not null;index" json:"masterpiece_id"`
	PayerID       uint         `gorm:"not null;index" json:"payer_id"`
	Kind          PaymentKind  `gorm:"type:varchar(20);not null" json:"kind"`
	Amount        float64      `gorm:"not null" json:"amount"`
	Reference     string       `gorm:"type:varchar(50);index" json:"reference"` // matches the issued document
	State         PaymentState `gorm:"type:varchar(20);not null" json:"state"`
	ConfirmedByID *uint        `json:"confirmed_by_id,omitempty"`
	ConfirmedAt   *time.Time   `json:"confirmed_at,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}
