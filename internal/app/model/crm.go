package model

import "time"

type ConciergeStatus string

const (
	ConciergeOpen       ConciergeStatus = "open"
	ConciergeInProgress ConciergeStatus = "in_progress"
	ConciergeClosed     ConciergeStatus = "closed"
)

// ConciergeRequest is a client's private request thread with the house.
type ConciergeRequest struct {
	ID           uint            `gorm:"primarykey" json:"id"`
	UserID       uint            `gorm:"not null;index" json:"user_id"`
	Topic        string          `gorm:"not null" json:"topic"`
	Status       ConciergeStatus `gorm:"type:varchar(20);default:'open';index" json:"status"`
	AssignedToID *uint           `json:"assigned_to_id,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`

	Messages []ConciergeMessage `gorm:"foreignKey:RequestID" json:"messages,omitempty"`
}

func (ConciergeRequest) TableName() string {
	return "concierge_requests"
}

type ConciergeMessage struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	RequestID uint      `gorm:"not null;index" json:"request_id"`
	SenderID  uint      `gorm:"not null" json:"sender_id"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

func (ConciergeMessage) TableName() string {
	return "concierge_messages"
}

// CRMInteraction is a staff note about contact with a client.
type CRMInteraction struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	StaffID    uint      `gorm:"not null" json:"staff_id"`
	Channel    string    `gorm:"type:varchar(20)" json:"channel"` // call, email, visit, event
	Note       string    `gorm:"type:text" json:"note"`
	OccurredAt time.Time `json:"occurred_at"`
	CreatedAt  time.Time `json:"created_at"`
}

func (CRMInteraction) TableName() string {
	return "crm_interactions"
}

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

// UserApplication is a membership application from a prospective
// collector. Approval creates the account.
type UserApplication struct {
	ID           uint              `gorm:"primarykey" json:"id"`
	Email        string            `gorm:"not null;index" json:"email"`
	Name         string            `gorm:"not null" json:"name"`
	Motivation   string            `gorm:"type:text" json:"motivation"`
	ReferredBy   string            `json:"referred_by,omitempty"`
	Status       ApplicationStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	ReviewedByID *uint             `json:"reviewed_by_id,omitempty"`
	ReviewNote   string            `json:"review_note,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

func (UserApplication) TableName() string {
	return "user_applications"
}

// InvestorRequest asks for read access to platform revenue figures.
type InvestorRequest struct {
	ID           uint              `gorm:"primarykey" json:"id"`
	UserID       uint              `gorm:"not null;index" json:"user_id"`
	Organization string            `json:"organization"`
	Message      string            `gorm:"type:text" json:"message"`
	Status       ApplicationStatus `gorm:"type:varchar(20);default:'pending'" json:"status"`
	ReviewedByID *uint             `json:"reviewed_by_id,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

func (InvestorRequest) TableName() string {
	return "investor_requests"
}

type PrivateEvent struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	Capacity    int       `json:"capacity"`
	VIPOnly     bool      `gorm:"default:false" json:"vip_only"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (PrivateEvent) TableName() string {
	return "private_events"
}

type RSVPStatus string

const (
	RSVPConfirmed  RSVPStatus = "confirmed"
	RSVPDeclined   RSVPStatus = "declined"
	RSVPWaitlisted RSVPStatus = "waitlisted" // event at capacity
)

type EventRSVP struct {
	ID        uint       `gorm:"primarykey" json:"id"`
	EventID   uint       `gorm:"not null;index;uniqueIndex:idx_rsvp_event_user" json:"event_id"`
	UserID    uint       `gorm:"not null;uniqueIndex:idx_rsvp_event_user" json:"user_id"`
	Status    RSVPStatus `gorm:"type:varchar(20);default:'confirmed'" json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (EventRSVP) TableName() string {
	return "event_rsvps"
}
