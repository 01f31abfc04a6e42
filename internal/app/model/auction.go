package model

import "time"

type AuctionStatus string

const (
	AuctionScheduled AuctionStatus = "scheduled"
	AuctionActive    AuctionStatus = "active"
	AuctionEnded     AuctionStatus = "ended"   // past end time, awaiting settlement
	AuctionSettled   AuctionStatus = "settled" // winner confirmed, sale recorded
	AuctionCancelled AuctionStatus = "cancelled"
)

type Auction struct {
	ID              uint          `gorm:"primarykey" json:"id"`
	MasterpieceID   uint          `gorm:"not null;index" json:"masterpiece_id"`
	StartingBid     float64       `gorm:"not null" json:"starting_bid"`
	ReservePrice    float64       `json:"reserve_price"` // hidden from bidders
	CurrentBid      float64       `json:"current_bid"`
	CurrentBidderID *uint         `json:"current_bidder_id,omitempty"`
	VIPOnly         bool          `gorm:"default:false" json:"vip_only"`
	Status          AuctionStatus `gorm:"type:varchar(20);default:'scheduled';index" json:"status"`
	StartsAt        time.Time     `json:"starts_at"`
	EndsAt          time.Time     `gorm:"index" json:"ends_at"`
	WinnerID        *uint         `json:"winner_id,omitempty"`
	SettledAt       *time.Time    `json:"settled_at,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`

	Masterpiece Masterpiece `gorm:"foreignKey:MasterpieceID" json:"masterpiece,omitempty"`
	Bids        []Bid       `gorm:"foreignKey:AuctionID" json:"bids,omitempty"`
}

func (Auction) TableName() string {
	return "auctions"
}

type Bid struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	AuctionID uint      `gorm:"not null;index" json:"auction_id"`
	BidderID  uint      `gorm:"not null;index" json:"bidder_id"`
	Amount    float64   `gorm:"not null" json:"amount"`
	CreatedAt time.Time `json:"created_at"`

	Bidder User `gorm:"foreignKey:BidderID" json:"bidder,omitempty"`
}

func (Bid) TableName() string {
	return "bids"
}
