package services

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inflowhq/inflow-backend/internal/dto"
	"github.com/inflowhq/inflow-backend/internal/models"
	"github.com/inflowhq/inflow-backend/internal/retry"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrProfileExists   = errors.New("profile already exists")
	ErrRoleMismatch    = errors.New("operation not allowed for this role")
)

type ProfileService struct {
	db *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db}
}

// GetUserProfile returns the identity record with the derived onboarding
// state. Reads go through the backoff wrapper; transient connection drops
// on this hot path were the original motivation for it.
func (s *ProfileService) GetUserProfile(userID uuid.UUID) (*dto.UserProfileResponse, error) {
	user, err := retry.Do(retry.DefaultAttempts, retry.DefaultDelay, func() (*models.User, error) {
		var u models.User
		if err := s.db.First(&u, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, retry.Permanent(err)
			}
			return nil, err
		}
		return &u, nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	resp := &dto.UserProfileResponse{
		ID:    user.ID,
		Email: user.Email,
		Role:  user.Role,
	}

	switch user.Role {
	case models.RoleBrand:
		var brand models.Brand
		if err := s.db.Select("id").Where("user_id = ?", userID).First(&brand).Error; err == nil {
			resp.HasCompletedOnboarding = true
			resp.ProfileID = &brand.ID
			resp.BrandID = &brand.ID
		}
	case models.RoleInfluencer:
		var influencer models.Influencer
		if err := s.db.Select("id").Where("user_id = ?", userID).First(&influencer).Error; err == nil {
			resp.HasCompletedOnboarding = true
			resp.ProfileID = &influencer.ID
			resp.InfluencerID = &influencer.ID
		}
	case models.RoleAdmin:
		resp.HasCompletedOnboarding = true
	}

	return resp, nil
}

// GetProfileDetails returns the onboarding state plus the full profile
// object. Influencer tag and social-account relations are preloaded.
func (s *ProfileService) GetProfileDetails(userID uuid.UUID) (*dto.ProfileDetailsResponse, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	resp := &dto.ProfileDetailsResponse{
		UserProfileResponse: dto.UserProfileResponse{
			ID:    user.ID,
			Email: user.Email,
			Role:  user.Role,
		},
	}

	switch user.Role {
	case models.RoleBrand:
		var brand models.Brand
		if err := s.db.Where("user_id = ?", userID).First(&brand).Error; err == nil {
			resp.HasCompletedOnboarding = true
			resp.ProfileID = &brand.ID
			resp.BrandID = &brand.ID
			resp.Profile = brand
		}
	case models.RoleInfluencer:
		var influencer models.Influencer
		err := s.db.Preload("Niches").Preload("ContentTypes").Preload("SocialAccounts").
			Where("user_id = ?", userID).First(&influencer).Error
		if err == nil {
			resp.HasCompletedOnboarding = true
			resp.ProfileID = &influencer.ID
			resp.InfluencerID = &influencer.ID
			resp.Profile = influencer
		}
	case models.RoleAdmin:
		resp.HasCompletedOnboarding = true
	}

	return resp, nil
}

// OnboardBrand creates the brand profile. Returns the existing profile id
// with ErrProfileExists when onboarding was already completed.
func (s *ProfileService) OnboardBrand(userID uuid.UUID, req *dto.BrandOnboardingRequest) (uuid.UUID, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return uuid.Nil, ErrUserNotFound
	}
	if user.Role != models.RoleBrand {
		return uuid.Nil, ErrRoleMismatch
	}

	var existing models.Brand
	if err := s.db.Select("id").Where("user_id = ?", userID).First(&existing).Error; err == nil {
		return existing.ID, ErrProfileExists
	}

	brand := models.Brand{
		UserID:      userID,
		CompanyName: req.CompanyName,
		Industry:    req.Industry,
		Description: req.Description,
		Website:     req.Website,
	}
	if err := s.db.Create(&brand).Error; err != nil {
		return uuid.Nil, err
	}

	return brand.ID, nil
}

// OnboardInfluencer creates the influencer profile, reconciling niche and
// content-type labels and linking them, all in one transaction.
func (s *ProfileService) OnboardInfluencer(userID uuid.UUID, req *dto.InfluencerOnboardingRequest) (uuid.UUID, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return uuid.Nil, ErrUserNotFound
	}
	if user.Role != models.RoleInfluencer {
		return uuid.Nil, ErrRoleMismatch
	}

	var existing models.Influencer
	if err := s.db.Select("id").Where("user_id = ?", userID).First(&existing).Error; err == nil {
		return existing.ID, ErrProfileExists
	}

	influencer := models.Influencer{
		UserID:    userID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Location:  req.Location,
		Website:   req.Website,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		niches, err := reconcileNiches(tx, req.Niches)
		if err != nil {
			return err
		}
		contentTypes, err := reconcileContentTypes(tx, req.ContentTypes)
		if err != nil {
			return err
		}

		if err := tx.Create(&influencer).Error; err != nil {
			return err
		}

		if len(niches) > 0 {
			if err := tx.Model(&influencer).Association("Niches").Append(niches); err != nil {
				return err
			}
		}
		if len(contentTypes) > 0 {
			if err := tx.Model(&influencer).Association("ContentTypes").Append(contentTypes); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	return influencer.ID, nil
}

// UpdateBrand replaces the mutable brand fields. IsVerified is not
// touchable from here.
func (s *ProfileService) UpdateBrand(userID uuid.UUID, req *dto.BrandUpdateRequest) (*models.Brand, error) {
	var brand models.Brand
	if err := s.db.Where("user_id = ?", userID).First(&brand).Error; err != nil {
		return nil, ErrProfileNotFound
	}

	updates := map[string]interface{}{
		"company_name":     req.CompanyName,
		"industry":         req.Industry,
		"description":      req.Description,
		"website":          req.Website,
		"logo":             req.Logo,
		"cover_image":      req.CoverImage,
		"verification_doc": req.VerificationDoc,
	}
	if err := s.db.Model(&brand).Updates(updates).Error; err != nil {
		return nil, err
	}

	return &brand, nil
}

// UpdateInfluencer replaces the profile fields and reconciles tag links
// and social accounts against the submitted sets in one transaction.
func (s *ProfileService) UpdateInfluencer(userID uuid.UUID, req *dto.InfluencerUpdateRequest) (*models.Influencer, error) {
	var influencer models.Influencer
	if err := s.db.Where("user_id = ?", userID).First(&influencer).Error; err != nil {
		return nil, ErrProfileNotFound
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"first_name":  req.FirstName,
			"last_name":   req.LastName,
			"bio":         req.Bio,
			"location":    req.Location,
			"website":     req.Website,
			"avatar":      req.Avatar,
			"cover_image": req.CoverImage,
		}
		if err := tx.Model(&influencer).Updates(updates).Error; err != nil {
			return err
		}

		niches, err := reconcileNiches(tx, req.Niches)
		if err != nil {
			return err
		}
		if err := tx.Model(&influencer).Association("Niches").Replace(niches); err != nil {
			return err
		}

		contentTypes, err := reconcileContentTypes(tx, req.ContentTypes)
		if err != nil {
			return err
		}
		if err := tx.Model(&influencer).Association("ContentTypes").Replace(contentTypes); err != nil {
			return err
		}

		return reconcileSocialAccounts(tx, influencer.ID, req.SocialAccounts)
	})
	if err != nil {
		return nil, err
	}

	err = s.db.Preload("Niches").Preload("ContentTypes").Preload("SocialAccounts").
		First(&influencer, "id = ?", influencer.ID).Error
	return &influencer, err
}

// VerifyBrand flips the verification flag; reachable only through the
// admin gate.
func (s *ProfileService) VerifyBrand(brandID uuid.UUID, verified bool) (*models.Brand, error) {
	var brand models.Brand
	if err := s.db.First(&brand, "id = ?", brandID).Error; err != nil {
		return nil, ErrProfileNotFound
	}
	if err := s.db.Model(&brand).Update("is_verified", verified).Error; err != nil {
		return nil, err
	}
	return &brand, nil
}

// reconcileNiches resolves label names to rows, inserting any that do not
// exist yet. Matching is case-sensitive on the unique name column, so the
// same label never produces a duplicate row.
func reconcileNiches(tx *gorm.DB, names []string) ([]models.Niche, error) {
	result := make([]models.Niche, 0, len(names))
	for _, name := range dedupe(names) {
		var niche models.Niche
		if err := tx.Where(models.Niche{Name: name}).FirstOrCreate(&niche).Error; err != nil {
			return nil, err
		}
		result = append(result, niche)
	}
	return result, nil
}

func reconcileContentTypes(tx *gorm.DB, names []string) ([]models.ContentType, error) {
	result := make([]models.ContentType, 0, len(names))
	for _, name := range dedupe(names) {
		var ct models.ContentType
		if err := tx.Where(models.ContentType{Name: name}).FirstOrCreate(&ct).Error; err != nil {
			return nil, err
		}
		result = append(result, ct)
	}
	return result, nil
}

// reconcileSocialAccounts upserts one row per platform and removes
// platforms absent from the submitted set.
func reconcileSocialAccounts(tx *gorm.DB, influencerID uuid.UUID, accounts []dto.SocialAccountInput) error {
	keep := make([]models.Platform, 0, len(accounts))
	for _, in := range accounts {
		keep = append(keep, in.Platform)

		var account models.SocialAccount
		err := tx.Where("influencer_id = ? AND platform = ?", influencerID, in.Platform).First(&account).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			account = models.SocialAccount{
				InfluencerID: influencerID,
				Platform:     in.Platform,
				Username:     in.Username,
				URL:          in.URL,
				Followers:    in.Followers,
				Engagement:   in.Engagement,
				LastUpdated:  time.Now(),
			}
			if err := tx.Create(&account).Error; err != nil {
				return err
			}
			continue
		} else if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"username":     in.Username,
			"url":          in.URL,
			"followers":    in.Followers,
			"engagement":   in.Engagement,
			"last_updated": time.Now(),
		}
		if err := tx.Model(&account).Updates(updates).Error; err != nil {
			return err
		}
	}

	query := tx.Where("influencer_id = ?", influencerID)
	if len(keep) > 0 {
		query = query.Where("platform NOT IN ?", keep)
	}
	return query.Delete(&models.SocialAccount{}).Error
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	result := make([]string, 0, len(names))
	for _, name := range names {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}
