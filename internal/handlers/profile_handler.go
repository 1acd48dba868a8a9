package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/inflowhq/inflow-backend/internal/dto"
	"github.com/inflowhq/inflow-backend/internal/middleware"
	"github.com/inflowhq/inflow-backend/internal/services"
)

type ProfileHandler struct {
	profileService *services.ProfileService
}

func NewProfileHandler(profileService *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// Me returns the caller's identity with the derived onboarding state.
func (h *ProfileHandler) Me(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	resp, err := h.profileService.GetUserProfile(userID)
	if err != nil {
		return profileError(c, err)
	}
	return c.JSON(resp)
}

// Details returns the onboarding state plus the full profile object.
func (h *ProfileHandler) Details(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	resp, err := h.profileService.GetProfileDetails(userID)
	if err != nil {
		return profileError(c, err)
	}
	return c.JSON(resp)
}

func (h *ProfileHandler) OnboardBrand(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.BrandOnboardingRequest
	if !parseBody(c, &req) {
		return nil
	}

	profileID, err := h.profileService.OnboardBrand(userID, &req)
	if errors.Is(err, services.ErrProfileExists) {
		return c.Status(fiber.StatusConflict).JSON(dto.OnboardingResponse{
			Status:    "exists",
			Message:   "Onboarding already completed",
			ProfileID: profileID,
		})
	}
	if err != nil {
		return profileError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.OnboardingResponse{
		Status:    "created",
		Message:   "Brand profile created",
		ProfileID: profileID,
	})
}

func (h *ProfileHandler) OnboardInfluencer(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.InfluencerOnboardingRequest
	if !parseBody(c, &req) {
		return nil
	}

	profileID, err := h.profileService.OnboardInfluencer(userID, &req)
	if errors.Is(err, services.ErrProfileExists) {
		return c.Status(fiber.StatusConflict).JSON(dto.OnboardingResponse{
			Status:    "exists",
			Message:   "Onboarding already completed",
			ProfileID: profileID,
		})
	}
	if err != nil {
		return profileError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.OnboardingResponse{
		Status:    "created",
		Message:   "Influencer profile created",
		ProfileID: profileID,
	})
}

func (h *ProfileHandler) UpdateBrand(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.BrandUpdateRequest
	if !parseBody(c, &req) {
		return nil
	}

	brand, err := h.profileService.UpdateBrand(userID, &req)
	if err != nil {
		return profileError(c, err)
	}
	return c.JSON(brand)
}

func (h *ProfileHandler) UpdateInfluencer(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.InfluencerUpdateRequest
	if !parseBody(c, &req) {
		return nil
	}

	influencer, err := h.profileService.UpdateInfluencer(userID, &req)
	if err != nil {
		return profileError(c, err)
	}
	return c.JSON(influencer)
}

// VerifyBrand is the admin verification toggle.
func (h *ProfileHandler) VerifyBrand(c *fiber.Ctx) error {
	brandID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid brand id",
		})
	}

	var req dto.VerifyBrandRequest
	if !parseBody(c, &req) {
		return nil
	}

	brand, err := h.profileService.VerifyBrand(brandID, req.Verified)
	if err != nil {
		return profileError(c, err)
	}
	return c.JSON(brand)
}

func profileError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrUserNotFound), errors.Is(err, services.ErrProfileNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrRoleMismatch):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Internal server error",
	})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: true, Message: "Unauthorized",
	})
}
