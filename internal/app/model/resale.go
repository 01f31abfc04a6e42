package model

import "time"

type ResaleStatus string

const (
	ResaleRequested ResaleStatus = "requested" // owner asked to list
	ResaleApproved  ResaleStatus = "approved"  // visible, open to offers
	ResaleRejected  ResaleStatus = "rejected"
	ResaleAccepted  ResaleStatus = "accepted"  // offer accepted, payment pending
	ResaleCompleted ResaleStatus = "completed" // ownership transferred
	ResaleWithdrawn ResaleStatus = "withdrawn"
)

// ResaleListing is a secondary market listing. Only the registered
// owner may list, and every listing passes staff review first.
type ResaleListing struct {
	ID             uint         `gorm:"primarykey" json:"id"`
	MasterpieceID  uint         `gorm:"not null;index" json:"masterpiece_id"`
	SellerID       uint         `gorm:"not null;index" json:"seller_id"`
	AskingPrice    float64      `gorm:"not null" json:"asking_price"`
	PlatformFeePct float64      `json:"platform_fee_pct"` // captured at listing time
	Status         ResaleStatus `gorm:"type:varchar(20);default:'requested';index" json:"status"`
	ReviewedByID   *uint        `json:"reviewed_by_id,omitempty"`
	ReviewNote     string       `json:"review_note,omitempty"`
	BuyerID        *uint        `gorm:"index" json:"buyer_id,omitempty"`
	AgreedPrice    *float64     `json:"agreed_price,omitempty"`
	CompletedAt    *time.Time   `json:"completed_at,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`

	Masterpiece Masterpiece `gorm:"foreignKey:MasterpieceID" json:"masterpiece,omitempty"`
	Seller      User        `gorm:"foreignKey:SellerID" json:"seller,omitempty"`
}

func (ResaleListing) TableName() string {
	return "resale_listings"
}

// NegotiationMessage is one message in a resale negotiation thread.
// A message may carry a price offer.
type NegotiationMessage struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	ListingID uint      `gorm:"not null;index" json:"listing_id"`
	SenderID  uint      `gorm:"not null" json:"sender_id"`
	Body      string    `gorm:"type:text" json:"body"`
	Offer     *float64  `json:"offer,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	Sender User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}

func (NegotiationMessage) TableName() string {
	return "negotiation_messages"
}
