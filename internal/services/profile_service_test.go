package services

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inflowhq/inflow-backend/internal/dto"
	"github.com/inflowhq/inflow-backend/internal/models"
)

func seedUser(t *testing.T, db *gorm.DB, email string, role models.UserRole) *models.User {
	t.Helper()
	user := models.User{Email: email, Password: "hash", Role: role}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return &user
}

func TestOnboardBrand(t *testing.T) {
	db := setupTestDB(t)
	svc := NewProfileService(db)
	user := seedUser(t, db, "brand@example.com", models.RoleBrand)

	id, err := svc.OnboardBrand(user.ID, &dto.BrandOnboardingRequest{
		CompanyName: "Acme", Industry: "Consumer Goods",
	})
	if err != nil {
		t.Fatalf("onboard: %v", err)
	}

	profile, err := svc.GetUserProfile(user.ID)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if !profile.HasCompletedOnboarding {
		t.Fatalf("onboarding should be complete")
	}
	if profile.ProfileID == nil || *profile.ProfileID != id {
		t.Fatalf("profileId should match the created brand")
	}

	// Second attempt conflicts but still reports the existing id.
	existingID, err := svc.OnboardBrand(user.ID, &dto.BrandOnboardingRequest{
		CompanyName: "Other", Industry: "Tech",
	})
	if !errors.Is(err, ErrProfileExists) {
		t.Fatalf("expected ErrProfileExists, got %v", err)
	}
	if existingID != id {
		t.Fatalf("expected existing profile id %s, got %s", id, existingID)
	}
}

func TestGetUserProfileMissingUserFailsFast(t *testing.T) {
	db := setupTestDB(t)
	svc := NewProfileService(db)

	// A missing row is deterministic: no backoff sleeps, immediate 404.
	start := time.Now()
	_, err := svc.GetUserProfile(uuid.New())
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 400*time.Millisecond {
		t.Fatalf("not-found lookup took %s, should not sleep through retries", elapsed)
	}
}

func TestOnboardRoleMismatch(t *testing.T) {
	db := setupTestDB(t)
	svc := NewProfileService(db)
	user := seedUser(t, db, "brand@example.com", models.RoleBrand)

	_, err := svc.OnboardInfluencer(user.ID, &dto.InfluencerOnboardingRequest{
		FirstName: "Jo", LastName: "Doe",
	})
	if !errors.Is(err, ErrRoleMismatch) {
		t.Fatalf("expected ErrRoleMismatch, got %v", err)
	}
}

func TestOnboardInfluencerReconcilesTags(t *testing.T) {
	db := setupTestDB(t)
	svc := NewProfileService(db)

	first := seedUser(t, db, "one@example.com", models.RoleInfluencer)
	second := seedUser(t, db, "two@example.com", models.RoleInfluencer)

	req := func() *dto.InfluencerOnboardingRequest {
		return &dto.InfluencerOnboardingRequest{
			FirstName: "Jo", LastName: "Doe",
			Niches:       []string{"Fashion", "Travel", "Fashion", " Travel "},
			ContentTypes: []string{"Video"},
		}
	}

	if _, err := svc.OnboardInfluencer(first.ID, req()); err != nil {
		t.Fatalf("first onboard: %v", err)
	}
	if _, err := svc.OnboardInfluencer(second.ID, req()); err != nil {
		t.Fatalf("second onboard: %v", err)
	}

	var nicheCount int64
	db.Model(&models.Niche{}).Count(&nicheCount)
	if nicheCount != 2 {
		t.Fatalf("expected 2 niche rows, got %d", nicheCount)
	}

	details, err := svc.GetProfileDetails(first.ID)
	if err != nil {
		t.Fatalf("details: %v", err)
	}
	influencer, ok := details.Profile.(models.Influencer)
	if !ok {
		t.Fatalf("expected influencer profile, got %T", details.Profile)
	}
	if len(influencer.Niches) != 2 {
		t.Fatalf("expected 2 linked niches, got %d", len(influencer.Niches))
	}
}

func TestUpdateInfluencerReplacesTagsAndAccounts(t *testing.T) {
	db := setupTestDB(t)
	svc := NewProfileService(db)
	user := seedUser(t, db, "inf@example.com", models.RoleInfluencer)

	if _, err := svc.OnboardInfluencer(user.ID, &dto.InfluencerOnboardingRequest{
		FirstName: "Jo", LastName: "Doe",
		Niches: []string{"Fashion", "Travel"},
	}); err != nil {
		t.Fatalf("onboard: %v", err)
	}

	updated, err := svc.UpdateInfluencer(user.ID, &dto.InfluencerUpdateRequest{
		FirstName: "Jo", LastName: "Doe", Bio: "updated",
		Niches: []string{"Gaming"},
		SocialAccounts: []dto.SocialAccountInput{
			{Platform: models.PlatformInstagram, Username: "jo", URL: "https://instagram.com/jo", Followers: 1000},
		},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if len(updated.Niches) != 1 || updated.Niches[0].Name != "Gaming" {
		t.Fatalf("niches should be replaced, got %+v", updated.Niches)
	}
	if len(updated.SocialAccounts) != 1 {
		t.Fatalf("expected 1 social account, got %d", len(updated.SocialAccounts))
	}

	// Dropping the account from the submitted set removes the row.
	updated, err = svc.UpdateInfluencer(user.ID, &dto.InfluencerUpdateRequest{
		FirstName: "Jo", LastName: "Doe",
		Niches: []string{"Gaming"},
	})
	if err != nil {
		t.Fatalf("second update: %v", err)
	}
	if len(updated.SocialAccounts) != 0 {
		t.Fatalf("expected social accounts removed, got %d", len(updated.SocialAccounts))
	}
}

func TestVerifyBrandFlag(t *testing.T) {
	db := setupTestDB(t)
	svc := NewProfileService(db)
	user := seedUser(t, db, "b@example.com", models.RoleBrand)

	id, err := svc.OnboardBrand(user.ID, &dto.BrandOnboardingRequest{CompanyName: "Acme", Industry: "Tech"})
	if err != nil {
		t.Fatalf("onboard: %v", err)
	}

	// Regular profile updates cannot flip verification.
	if _, err := svc.UpdateBrand(user.ID, &dto.BrandUpdateRequest{CompanyName: "Acme", Industry: "Tech"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	var brand models.Brand
	db.First(&brand, "id = ?", id)
	if brand.IsVerified {
		t.Fatalf("update must not set verification")
	}

	if _, err := svc.VerifyBrand(id, true); err != nil {
		t.Fatalf("verify: %v", err)
	}
	db.First(&brand, "id = ?", id)
	if !brand.IsVerified {
		t.Fatalf("expected brand verified")
	}
}
