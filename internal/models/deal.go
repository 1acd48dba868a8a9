package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DealStatus string

const (
	DealDraft      DealStatus = "DRAFT"
	DealPending    DealStatus = "PENDING"
	DealAccepted   DealStatus = "ACCEPTED"
	DealRejected   DealStatus = "REJECTED"
	DealInProgress DealStatus = "IN_PROGRESS"
	DealCompleted  DealStatus = "COMPLETED"
	DealCancelled  DealStatus = "CANCELLED"
)

type CollaborationStatus string

const (
	CollaborationInProgress CollaborationStatus = "IN_PROGRESS"
	CollaborationCompleted  CollaborationStatus = "COMPLETED"
	CollaborationCancelled  CollaborationStatus = "CANCELLED"
)

type DeliverableStatus string

const (
	DeliverablePending   DeliverableStatus = "PENDING"
	DeliverableSubmitted DeliverableStatus = "SUBMITTED"
	DeliverableApproved  DeliverableStatus = "APPROVED"
	DeliverableRejected  DeliverableStatus = "REJECTED"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
	PaymentFailed  PaymentStatus = "FAILED"
)

// Deal is a collaboration proposal from a brand to an influencer.
// Timeline is a duration in days.
type Deal struct {
	ID           uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	BrandID      uuid.UUID     `gorm:"type:uuid;not null;index" json:"brand_id"`
	InfluencerID uuid.UUID     `gorm:"type:uuid;not null;index" json:"influencer_id"`
	Title        string        `gorm:"size:255;not null" json:"title"`
	Description  string        `gorm:"type:text;not null" json:"description"`
	Requirements string        `gorm:"type:text" json:"requirements"`
	Deliverables string        `gorm:"type:text" json:"deliverables"`
	Budget       float64       `gorm:"not null" json:"budget"`
	Timeline     int           `gorm:"not null" json:"timeline"`
	Status       DealStatus    `gorm:"size:20;not null;default:'DRAFT';index" json:"status"`
	Niches       []Niche       `gorm:"many2many:deal_niches" json:"niches"`
	ContentTypes []ContentType `gorm:"many2many:deal_content_types" json:"contentTypes"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func (d *Deal) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// Collaboration is created when a deal is accepted, one per deal.
type Collaboration struct {
	ID            uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	DealID        uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex" json:"deal_id"`
	BrandID       uuid.UUID           `gorm:"type:uuid;not null;index" json:"brand_id"`
	InfluencerID  uuid.UUID           `gorm:"type:uuid;not null;index" json:"influencer_id"`
	StartDate     time.Time           `gorm:"not null" json:"start_date"`
	EndDate       *time.Time          `json:"end_date"`
	Status        CollaborationStatus `gorm:"size:20;not null;default:'IN_PROGRESS'" json:"status"`
	PaymentStatus PaymentStatus       `gorm:"size:20;not null;default:'PENDING'" json:"payment_status"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

func (c *Collaboration) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type Deliverable struct {
	ID              uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	CollaborationID uuid.UUID         `gorm:"type:uuid;not null;index" json:"collaboration_id"`
	Description     string            `gorm:"type:text;not null" json:"description"`
	DueDate         time.Time         `gorm:"not null" json:"due_date"`
	Status          DeliverableStatus `gorm:"size:20;not null;default:'PENDING'" json:"status"`
	SubmissionURL   string            `gorm:"size:512" json:"submission_url"`
	Feedback        string            `gorm:"type:text" json:"feedback"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

func (d *Deliverable) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// Milestone is a scheduled payment within a collaboration.
type Milestone struct {
	ID              uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	CollaborationID uuid.UUID     `gorm:"type:uuid;not null;index" json:"collaboration_id"`
	WalletID        uuid.UUID     `gorm:"type:uuid;not null" json:"wallet_id"`
	Amount          float64       `gorm:"not null" json:"amount"`
	Description     string        `gorm:"type:text;not null" json:"description"`
	DueDate         time.Time     `gorm:"not null" json:"due_date"`
	Status          PaymentStatus `gorm:"size:20;not null;default:'PENDING'" json:"status"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

func (m *Milestone) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Review is left by a brand for an influencer after a completed
// collaboration, one per brand+influencer pair.
type Review struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BrandID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_brand_influencer" json:"brand_id"`
	InfluencerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_brand_influencer" json:"influencer_id"`
	Rating       float64   `gorm:"not null" json:"rating"`
	Content      string    `gorm:"type:text;not null" json:"content"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
