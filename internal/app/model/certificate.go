package model

import "time"

// Certificate is the certificate of authenticity issued when a
// purchase completes. The verification token allows public lookups
// without exposing the owner.
type Certificate struct {
	ID                uint       `gorm:"primarykey" json:"id"`
	MasterpieceID     uint       `gorm:"not null;index" json:"masterpiece_id"`
	OwnerID           uint       `gorm:"not null;index" json:"owner_id"`
	Number            string     `gorm:"uniqueIndex;not null" json:"number"`
	VerificationToken string     `gorm:"uniqueIndex;not null" json:"verification_token"`
	Content           string     `gorm:"type:text" json:"content"` // rendered certificate
	RarityScore       int        `json:"rarity_score"`             // score at time of issue
	IssuedAt          time.Time  `json:"issued_at"`
	TokenID           string     `gorm:"type:varchar(64)" json:"token_id,omitempty"` // digital token, set after minting
	TokenTxHash       string     `gorm:"type:varchar(80)" json:"token_tx_hash,omitempty"`
	TokenContract     string     `gorm:"type:varchar(64)" json:"token_contract,omitempty"`
	MintedAt          *time.Time `json:"minted_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`

	Masterpiece Masterpiece `gorm:"foreignKey:MasterpieceID" json:"masterpiece,omitempty"`
}

func (Certificate) TableName() string {
	return "certificates"
}
