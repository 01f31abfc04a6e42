package model

import "time"

type ContractStatus string
type ContractType string

const (
	ContractDraft    ContractStatus = "draft"
	ContractSigned   ContractStatus = "signed"
	ContractArchived ContractStatus = "archived"
	ContractVoid     ContractStatus = "void"

	ContractDeposit     ContractType = "deposit"
	ContractInvoice     ContractType = "invoice"
	ContractVIP         ContractType = "vip"
	ContractResale      ContractType = "resale"
	ContractCertificate ContractType = "certificate"
	ContractPurchase    ContractType = "purchase"
)

// Contract is a versioned agreement between the atelier and a buyer.
// A reissued contract points at the agreement it supersedes via
// ParentID. The deposit contract exists before any workflow does, so
// WorkflowID stays nil until approval attaches it.
type Contract struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	WorkflowID    *uint          `gorm:"index" json:"workflow_id,omitempty"`
	MasterpieceID uint           `gorm:"not null;index" json:"masterpiece_id"`
	BuyerID       uint           `gorm:"not null;index" json:"buyer_id"`
	Type          ContractType   `gorm:"type:varchar(20);not null;index" json:"type"`
	Version       int            `gorm:"default:1" json:"version"`
	ParentID      *uint          `gorm:"index" json:"parent_id,omitempty"`
	Reference     string         `gorm:"uniqueIndex;not null" json:"reference"`
	Content       string         `gorm:"type:text" json:"content"` // rendered agreement
	Status        ContractStatus `gorm:"type:varchar(20);default:'draft'" json:"status"`
	SignatureName string         `json:"signature_name,omitempty"` // typed signature
	SignedAt      *time.Time     `json:"signed_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func (Contract) TableName() string {
	return "contracts"
}
