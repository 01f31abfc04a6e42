package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

type MasterpieceStatus string
type EditionType string

const (
	MasterpieceAvailable     MasterpieceStatus = "available" // open for purchase requests
	MasterpieceReserved      MasterpieceStatus = "reserved"  // held for a collector or an active purchase
	MasterpieceSold          MasterpieceStatus = "sold"
	MasterpieceAuction       MasterpieceStatus = "auction"        // consigned to a live auction
	MasterpieceResalePending MasterpieceStatus = "resell_pending" // resale listing awaiting review
	MasterpieceListedPrivate MasterpieceStatus = "listed_private" // approved for private negotiation
	MasterpieceEscrowPending MasterpieceStatus = "escrow_pending" // resale funds held, transfer pending

	EditionUnique   EditionType = "unique"
	EditionLimited  EditionType = "limited"
	EditionRare     EditionType = "rare"
	EditionStandard EditionType = "standard"
)

type Masterpiece struct {
	ID             uint              `gorm:"primarykey" json:"id"`
	Title          string            `gorm:"not null" json:"title"`
	Description    string            `gorm:"type:text" json:"description"`
	SerialNumber   string            `gorm:"uniqueIndex;not null" json:"serial_number"`
	Category       string            `gorm:"type:varchar(50)" json:"category"` // ring, necklace, brooch, ...
	Edition        EditionType       `gorm:"type:varchar(20);default:'standard'" json:"edition"`
	Materials      pq.StringArray    `gorm:"type:text[]" json:"materials"`
	Gemstones      pq.StringArray    `gorm:"type:text[]" json:"gemstones"`
	Price          float64           `gorm:"not null" json:"price"`
	DepositPct     float64           `json:"deposit_pct"` // 0 means platform default applies
	Status         MasterpieceStatus `gorm:"type:varchar(20);default:'available';index" json:"status"`
	VIPOnly        bool              `gorm:"default:false" json:"vip_only"`
	RarityScore    int               `json:"rarity_score"` // recomputed, never set by hand
	ImageURL       string            `json:"image_url"`
	YearCreated    int               `json:"year_created"`
	CurrentOwnerID *uint             `gorm:"index" json:"current_owner_id,omitempty"`
	ReservedByID   *uint             `json:"reserved_by_id,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	DeletedAt      gorm.DeletedAt    `gorm:"index" json:"-"`

	CurrentOwner *User `gorm:"foreignKey:CurrentOwnerID" json:"current_owner,omitempty"`
}

func (Masterpiece) TableName() string {
	return "masterpieces"
}

// OwnershipRecord is one entry in a masterpiece's chain of ownership.
type OwnershipRecord struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	MasterpieceID uint      `gorm:"not null;index" json:"masterpiece_id"`
	OwnerID       uint      `gorm:"not null;index" json:"owner_id"`
	AcquiredVia   string    `gorm:"type:varchar(20)" json:"acquired_via"` // purchase, resale, auction, transfer
	Price         float64   `json:"price"`
	TransferredAt time.Time `json:"transferred_at"`
	CreatedAt     time.Time `json:"created_at"`

	Owner User `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
}

func (OwnershipRecord) TableName() string {
	return "ownership_history"
}

type WaitlistEntry struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	MasterpieceID uint      `gorm:"not null;index;uniqueIndex:idx_waitlist_piece_user" json:"masterpiece_id"`
	UserID        uint      `gorm:"not null;uniqueIndex:idx_waitlist_piece_user" json:"user_id"`
	Note          string    `json:"note"`
	Position      int       `json:"position"`
	CreatedAt     time.Time `json:"created_at"`
}

func (WaitlistEntry) TableName() string {
	return "waitlist"
}

type ReservationStatus string

const (
	ReservationActive    ReservationStatus = "active"
	ReservationExpired   ReservationStatus = "expired"
	ReservationConverted ReservationStatus = "converted" // turned into a purchase workflow
	ReservationCancelled ReservationStatus = "cancelled"
)

type Reservation struct {
	ID            uint              `gorm:"primarykey" json:"id"`
	MasterpieceID uint              `gorm:"not null;index" json:"masterpiece_id"`
	UserID        uint              `gorm:"not null;index" json:"user_id"`
	Status        ReservationStatus `gorm:"type:varchar(20);default:'active'" json:"status"`
	ExpiresAt     time.Time         `json:"expires_at"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

func (Reservation) TableName() string {
	return "reservations"
}

// AtelierMoment is a behind-the-scenes post from the workshop,
// optionally tied to a piece.
type AtelierMoment struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	MasterpieceID *uint     `gorm:"index" json:"masterpiece_id,omitempty"`
	Title         string    `gorm:"not null" json:"title"`
	Body          string    `gorm:"type:text" json:"body"`
	MediaURL      string    `json:"media_url"`
	PostedByID    uint      `gorm:"not null" json:"posted_by_id"`
	CreatedAt     time.Time `json:"created_at"`
}

func (AtelierMoment) TableName() string {
	return "atelier_moments"
}
