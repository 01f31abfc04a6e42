package model

import "time"

// FractionalShare is one holder's stake in a masterpiece. Shares for a
// piece never sum above 100 percent.
type FractionalShare struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	MasterpieceID uint      `gorm:"not null;index;uniqueIndex:idx_shares_piece_holder" json:"masterpiece_id"`
	HolderID      uint      `gorm:"not null;uniqueIndex:idx_shares_piece_holder" json:"holder_id"`
	Percentage    float64   `gorm:"not null" json:"percentage"`
	AcquiredAt    time.Time `json:"acquired_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Holder User `gorm:"foreignKey:HolderID" json:"holder,omitempty"`
}

func (FractionalShare) TableName() string {
	return "fractional_shares"
}

type FractionalTransfer struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	MasterpieceID uint      `gorm:"not null;index" json:"masterpiece_id"`
	FromID        uint      `gorm:"not null" json:"from_id"`
	ToID          uint      `gorm:"not null" json:"to_id"`
	Percentage    float64   `gorm:"not null" json:"percentage"`
	Price         float64   `json:"price"`
	CreatedAt     time.Time `json:"created_at"`
}

func (FractionalTransfer) TableName() string {
	return "fractional_transfers"
}

type RevenueSource string

const (
	RevenueSale      RevenueSource = "sale"
	RevenueResaleFee RevenueSource = "resale_fee"
	RevenueAuction   RevenueSource = "auction"
	RevenueService   RevenueSource = "service"
)

// RevenueEntry is one line in the platform revenue ledger.
type RevenueEntry struct {
	ID            uint          `gorm:"primarykey" json:"id"`
	MasterpieceID *uint         `gorm:"index" json:"masterpiece_id,omitempty"`
	Source        RevenueSource `gorm:"type:varchar(20);not null;index" json:"source"`
	Amount        float64       `gorm:"not null" json:"amount"`
	Reference     string        `gorm:"type:varchar(50)" json:"reference"`
	CreatedAt     time.Time     `json:"created_at"`
}

func (RevenueEntry) TableName() string {
	return "revenue_ledger"
}
