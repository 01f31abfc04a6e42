package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleCollector UserRole = "collector" // approved client
	RoleVIP       UserRole = "vip"       // vip clientele, sees private catalog
	RoleInvestor  UserRole = "investor"  // read access to investment figures
	RoleAdmin     UserRole = "admin"     // atelier staff
)

type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Name         string         `gorm:"not null" json:"name"`
	Phone        string         `json:"phone"`
	Country      string         `json:"country"`
	Role         UserRole       `gorm:"type:varchar(20);default:'collector'" json:"role"`
	VIPSince     *time.Time     `json:"vip_since,omitempty"` // set when promoted to vip
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Profile *CollectorProfile `gorm:"foreignKey:UserID" json:"profile,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// CollectorProfile holds the concierge facing view of a client.
type CollectorProfile struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	UserID          uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	Bio             string         `gorm:"type:text" json:"bio"`
	PreferredStyles pq.StringArray `gorm:"type:text[]" json:"preferred_styles"`
	AnnualBudget    float64        `json:"annual_budget"` // self declared, informational
	ConciergeNotes  string         `gorm:"type:text" json:"-"` // staff only
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func (CollectorProfile) TableName() string {
	return "collector_profiles"
}
