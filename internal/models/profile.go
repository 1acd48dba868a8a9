package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Platform string

const (
	PlatformInstagram Platform = "INSTAGRAM"
	PlatformTikTok    Platform = "TIKTOK"
	PlatformYouTube   Platform = "YOUTUBE"
	PlatformTwitter   Platform = "TWITTER"
	PlatformLinkedIn  Platform = "LINKEDIN"
	PlatformFacebook  Platform = "FACEBOOK"
)

// Influencer is the one-to-one profile extension of a User with role
// INFLUENCER, created during onboarding.
type Influencer struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	FirstName      string          `gorm:"size:100;not null" json:"firstName"`
	LastName       string          `gorm:"size:100;not null" json:"lastName"`
	Bio            string          `gorm:"type:text" json:"bio"`
	Location       string          `gorm:"size:255" json:"location"`
	Website        string          `gorm:"size:255" json:"website"`
	Avatar         string          `gorm:"size:512" json:"avatar"`
	CoverImage     string          `gorm:"size:512" json:"coverImage"`
	TotalEarnings  float64         `gorm:"default:0" json:"totalEarnings"`
	Rating         float64         `gorm:"default:0" json:"rating"`
	RatingCount    int             `gorm:"default:0" json:"ratingCount"`
	Niches         []Niche         `gorm:"many2many:influencer_niches" json:"niches"`
	ContentTypes   []ContentType   `gorm:"many2many:influencer_content_types" json:"contentTypes"`
	SocialAccounts []SocialAccount `gorm:"foreignKey:InfluencerID" json:"socialAccounts"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (i *Influencer) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Brand is the one-to-one profile extension of a User with role BRAND.
// IsVerified is settable only through the admin endpoint.
type Brand struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	CompanyName     string    `gorm:"size:255;not null" json:"companyName"`
	Industry        string    `gorm:"size:100;not null" json:"industry"`
	Description     string    `gorm:"type:text" json:"description"`
	Website         string    `gorm:"size:255" json:"website"`
	Logo            string    `gorm:"size:512" json:"logo"`
	CoverImage      string    `gorm:"size:512" json:"coverImage"`
	IsVerified      bool      `gorm:"default:false" json:"isVerified"`
	VerificationDoc string    `gorm:"size:512" json:"verificationDoc"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (b *Brand) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// SocialAccount is one linked platform account per influencer, unique per
// influencer+platform pair.
type SocialAccount struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	InfluencerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_social_influencer_platform" json:"influencer_id"`
	Platform     Platform  `gorm:"size:20;not null;uniqueIndex:idx_social_influencer_platform" json:"platform"`
	Username     string    `gorm:"size:100;not null" json:"username"`
	URL          string    `gorm:"size:512;not null" json:"url"`
	Followers    int       `gorm:"default:0" json:"followers"`
	Engagement   float64   `gorm:"default:0" json:"engagement"`
	IsVerified   bool      `gorm:"default:false" json:"isVerified"`
	LastUpdated  time.Time `json:"lastUpdated"`
}

func (s *SocialAccount) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
