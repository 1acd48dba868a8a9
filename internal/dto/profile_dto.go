package dto

import (
	"github.com/google/uuid"

	"github.com/inflowhq/inflow-backend/internal/models"
)

// UserProfileResponse carries the derived onboarding state. ProfileID is
// nil until the role-matching Brand/Influencer row exists.
type UserProfileResponse struct {
	ID                     uuid.UUID       `json:"id"`
	Email                  string          `json:"email"`
	Role                   models.UserRole `json:"role"`
	HasCompletedOnboarding bool            `json:"hasCompletedOnboarding"`
	ProfileID              *uuid.UUID      `json:"profileId"`
	BrandID                *uuid.UUID      `json:"brandId"`
	InfluencerID           *uuid.UUID      `json:"influencerId"`
}

type ProfileDetailsResponse struct {
	UserProfileResponse
	Profile interface{} `json:"profile"`
}

type BrandOnboardingRequest struct {
	CompanyName string `json:"companyName" validate:"required"`
	Industry    string `json:"industry" validate:"required"`
	Description string `json:"description"`
	Website     string `json:"website"`
}

type InfluencerOnboardingRequest struct {
	FirstName    string   `json:"firstName" validate:"required"`
	LastName     string   `json:"lastName" validate:"required"`
	Bio          string   `json:"bio"`
	Location     string   `json:"location"`
	Website      string   `json:"website"`
	Niches       []string `json:"niches"`
	ContentTypes []string `json:"contentTypes"`
}

type BrandUpdateRequest struct {
	CompanyName     string `json:"companyName" validate:"required"`
	Industry        string `json:"industry" validate:"required"`
	Description     string `json:"description"`
	Website         string `json:"website"`
	Logo            string `json:"logo"`
	CoverImage      string `json:"coverImage"`
	VerificationDoc string `json:"verificationDoc"`
}

type SocialAccountInput struct {
	Platform   models.Platform `json:"platform" validate:"required"`
	Username   string          `json:"username" validate:"required"`
	URL        string          `json:"url" validate:"required"`
	Followers  int             `json:"followers"`
	Engagement float64         `json:"engagement"`
}

type InfluencerUpdateRequest struct {
	FirstName      string               `json:"firstName" validate:"required"`
	LastName       string               `json:"lastName" validate:"required"`
	Bio            string               `json:"bio"`
	Location       string               `json:"location"`
	Website        string               `json:"website"`
	Avatar         string               `json:"avatar"`
	CoverImage     string               `json:"coverImage"`
	Niches         []string             `json:"niches"`
	ContentTypes   []string             `json:"contentTypes"`
	SocialAccounts []SocialAccountInput `json:"socialAccounts"`
}

type OnboardingResponse struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	ProfileID uuid.UUID `json:"profileId"`
}
