package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/inflowhq/inflow-backend/internal/dto"
	"github.com/inflowhq/inflow-backend/internal/middleware"
	"github.com/inflowhq/inflow-backend/internal/models"
	"github.com/inflowhq/inflow-backend/internal/services"
)

type DealHandler struct {
	dealService *services.DealService
}

func NewDealHandler(dealService *services.DealService) *DealHandler {
	return &DealHandler{dealService: dealService}
}

func (h *DealHandler) Create(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.CreateDealRequest
	if !parseBody(c, &req) {
		return nil
	}

	deal, err := h.dealService.Propose(userID, &req)
	if err != nil {
		return dealError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(deal)
}

func (h *DealHandler) List(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	deals, err := h.dealService.List(userID)
	if err != nil {
		return dealError(c, err)
	}
	return c.JSON(deals)
}

func (h *DealHandler) UpdateStatus(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	dealID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid deal id",
		})
	}

	var req dto.UpdateDealStatusRequest
	if !parseBody(c, &req) {
		return nil
	}

	deal, err := h.dealService.UpdateStatus(userID, dealID, req.Status)
	if err != nil {
		return dealError(c, err)
	}
	return c.JSON(deal)
}

func (h *DealHandler) ListCollaborations(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	collaborations, err := h.dealService.ListCollaborations(userID)
	if err != nil {
		return dealError(c, err)
	}
	return c.JSON(collaborations)
}

func (h *DealHandler) CompleteCollaboration(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	collaborationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid collaboration id",
		})
	}

	var req struct {
		Status string `json:"status" validate:"required,oneof=COMPLETED CANCELLED"`
	}
	if !parseBody(c, &req) {
		return nil
	}

	collaboration, err := h.dealService.CompleteCollaboration(userID, collaborationID, models.CollaborationStatus(req.Status))
	if err != nil {
		return dealError(c, err)
	}
	return c.JSON(collaboration)
}

func (h *DealHandler) AddDeliverable(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	collaborationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid collaboration id",
		})
	}

	var req dto.CreateDeliverableRequest
	if !parseBody(c, &req) {
		return nil
	}

	deliverable, err := h.dealService.AddDeliverable(userID, collaborationID, &req)
	if err != nil {
		return dealError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(deliverable)
}

func (h *DealHandler) UpdateDeliverable(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	deliverableID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid deliverable id",
		})
	}

	var req dto.UpdateDeliverableRequest
	if !parseBody(c, &req) {
		return nil
	}

	deliverable, err := h.dealService.UpdateDeliverable(userID, deliverableID, &req)
	if err != nil {
		return dealError(c, err)
	}
	return c.JSON(deliverable)
}

func (h *DealHandler) CreateReview(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.CreateReviewRequest
	if !parseBody(c, &req) {
		return nil
	}

	review, err := h.dealService.Review(userID, &req)
	if err != nil {
		return dealError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}

func (h *DealHandler) ListReviews(c *fiber.Ctx) error {
	influencerID, err := uuid.Parse(c.Params("influencerId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid influencer id",
		})
	}

	reviews, err := h.dealService.ListReviews(influencerID)
	if err != nil {
		return dealError(c, err)
	}
	return c.JSON(reviews)
}

func dealError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrDealNotFound),
		errors.Is(err, services.ErrCollaborationNotFound),
		errors.Is(err, services.ErrDeliverableNotFound),
		errors.Is(err, services.ErrInfluencerNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrNotDealParticipant), errors.Is(err, services.ErrRoleMismatch):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrReviewNotAllowed),
		errors.Is(err, services.ErrSubmissionRequired):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrReviewExists):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Internal server error",
	})
}
