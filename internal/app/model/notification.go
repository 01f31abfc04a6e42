package model

import (
	"time"

	"gorm.io/gorm"
)

type NotificationType string

const (
	NotifyPurchaseReviewed     NotificationType = "purchase_reviewed"
	NotifyWorkflowUpdated      NotificationType = "workflow_updated"
	NotifyPaymentConfirmed     NotificationType = "payment_confirmed"
	NotifyCertificateIssued    NotificationType = "certificate_issued"
	NotifyContractSigned       NotificationType = "contract_signed"
	NotifyOutbid               NotificationType = "outbid"
	NotifyAuctionWon           NotificationType = "auction_won"
	NotifyResaleReviewed       NotificationType = "resale_reviewed"
	NotifyResaleOffer          NotificationType = "resale_offer"
	NotifyProductionUpdate     NotificationType = "production_update"
	NotifyDeliveryUpdate       NotificationType = "delivery_update"
	NotifyEscrowReleased       NotificationType = "escrow_released"
	NotifyConciergeReply       NotificationType = "concierge_reply"
	NotifyWaitlistAvailable    NotificationType = "waitlist_available"
	NotifyTokenMinted          NotificationType = "token_minted"
	NotifyEventInvitation      NotificationType = "event_invitation"
)

type Notification struct {
	ID        uint             `gorm:"primarykey" json:"id"`
	UserID    uint             `gorm:"not null;index" json:"user_id"`
	Type      NotificationType `gorm:"type:varchar(30);not null" json:"type"`
	Title     string           `gorm:"not null" json:"title"`
	Message   string           `gorm:"type:text" json:"message"`
	Link      string           `json:"link,omitempty"` // client route to the related resource
	IsRead    bool             `gorm:"default:false;index" json:"is_read"`
	ReadAt    *time.Time       `json:"read_at,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	DeletedAt gorm.DeletedAt   `gorm:"index" json:"-"`
}

func (Notification) TableName() string {
	return "notifications"
}
